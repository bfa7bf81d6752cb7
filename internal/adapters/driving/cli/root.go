// Package cli provides the kassist command line interface.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/kassist/internal/core/ports/driving"
	"github.com/custodia-labs/kassist/internal/logger"
)

// version is set at build time via SetVersion.
var version = "dev"

// Persistent flags.
var (
	verbose bool
	dataDir string
)

// skipServices marks commands that run without the core services.
const skipServices = "skip-services"

// Services holds the core services the commands drive.
type Services struct {
	Document driving.DocumentService
	Answer   driving.AnswerService
	Index    driving.IndexService
	History  driving.HistoryService
	Settings driving.SettingsService
}

// Options carries flag values the bootstrap needs.
type Options struct {
	// DataDir overrides the configured data directory when set.
	DataDir string
}

// Bootstrap builds the services once per process. The returned cleanup is
// called after the command finishes.
type Bootstrap func(opts Options) (*Services, func(), error)

var (
	documentService driving.DocumentService
	answerService   driving.AnswerService
	indexService    driving.IndexService
	historyService  driving.HistoryService
	settingsService driving.SettingsService

	bootstrap Bootstrap
	cleanup   func()
)

var rootCmd = &cobra.Command{
	Use:   "kassist",
	Short: "Local knowledge assistant",
	Long: `kassist ingests your documents into a local knowledge base and answers
questions about them with cited, grounded answers.

Documents are split into passages, embedded and stored in a flat vector
index. Questions retrieve the closest passages and a language model writes
an answer from them.`,
	SilenceUsage:      true,
	PersistentPreRunE: prepare,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "data directory (default ~/.kassist/data)")
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

// SetBootstrap sets the function that builds services before a command runs.
func SetBootstrap(b Bootstrap) {
	bootstrap = b
}

// SetServices injects the core services directly.
func SetServices(s *Services) {
	if s == nil {
		s = &Services{}
	}
	documentService = s.Document
	answerService = s.Answer
	indexService = s.Index
	historyService = s.History
	settingsService = s.Settings
}

// Execute runs the root command.
func Execute() error {
	defer runCleanup()
	return rootCmd.Execute()
}

func prepare(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)

	if bootstrap == nil || cmd.Annotations[skipServices] == "true" {
		return nil
	}

	services, done, err := bootstrap(Options{DataDir: dataDir})
	if err != nil {
		return err
	}
	SetServices(services)
	cleanup = done
	return nil
}

func runCleanup() {
	if cleanup != nil {
		cleanup()
		cleanup = nil
	}
}
