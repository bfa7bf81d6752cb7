package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/kassist/internal/core/domain"
)

var (
	askJSON    bool
	askSources bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question about your documents",
	Long: `Retrieves the passages closest to the question and asks the language model
to answer from them only. The answer is followed by its sources in the form
"<document> - Page <n>".`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the answer as JSON")
	askCmd.Flags().BoolVarP(&askSources, "show-passages", "p", false, "print the retrieved passages and their scores")
	rootCmd.AddCommand(askCmd)
}

// askResult is the JSON form of an answer.
type askResult struct {
	Question    string       `json:"question"`
	Answer      string       `json:"answer"`
	Citations   []string     `json:"citations"`
	NoKnowledge bool         `json:"no_knowledge,omitempty"`
	Passages    []askPassage `json:"passages,omitempty"`
}

type askPassage struct {
	Citation   string  `json:"citation"`
	Similarity float64 `json:"similarity"`
	Text       string  `json:"text"`
}

func runAsk(cmd *cobra.Command, args []string) error {
	if answerService == nil {
		return errors.New("answer service not configured")
	}

	question := strings.Join(args, " ")
	answer, err := answerService.Answer(cmd.Context(), question)
	if err != nil {
		return describeAnswerError(err)
	}

	if askJSON {
		return outputAnswerJSON(cmd, answer)
	}

	cmd.Println(answer.Text)
	if len(answer.Citations) > 0 {
		cmd.Println()
		cmd.Println("Sources:")
		for _, c := range answer.Citations {
			cmd.Printf("  - %s\n", c)
		}
	}
	if askSources {
		for i := range answer.Sources {
			src := answer.Sources[i]
			cmd.Printf("\n[%d] %s (similarity %.4f)\n%s\n", i+1, src.Citation(), src.Similarity, src.Chunk.Content)
		}
	}
	return nil
}

func outputAnswerJSON(cmd *cobra.Command, answer *domain.Answer) error {
	result := askResult{
		Question:    answer.Question,
		Answer:      answer.Text,
		Citations:   answer.Citations,
		NoKnowledge: answer.NoKnowledge,
	}
	if result.Citations == nil {
		result.Citations = []string{}
	}
	if askSources {
		for i := range answer.Sources {
			result.Passages = append(result.Passages, askPassage{
				Citation:   answer.Sources[i].Citation(),
				Similarity: answer.Sources[i].Similarity,
				Text:       answer.Sources[i].Chunk.Content,
			})
		}
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal answer: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

// describeAnswerError adds a hint for the failures a user can fix.
func describeAnswerError(err error) error {
	switch {
	case errors.Is(err, domain.ErrEmbeddingUnavailable):
		return fmt.Errorf("%w\nCheck the embedding provider with 'kassist settings show'", err)
	case errors.Is(err, domain.ErrLLMUnavailable):
		return fmt.Errorf("%w\nConfigure a language model with 'kassist settings llm'", err)
	case errors.Is(err, domain.ErrModelMismatch), errors.Is(err, domain.ErrDimensionMismatch):
		return fmt.Errorf("%w\nThe index was built with a different embedding model", err)
	case errors.Is(err, domain.ErrGenerationTimeout):
		return fmt.Errorf("%w\nRaise llm.timeout_seconds with 'kassist settings set'", err)
	default:
		return err
	}
}
