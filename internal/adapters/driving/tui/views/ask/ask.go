// Package ask provides the question and answer view for the TUI.
package ask

import (
	"context"
	"errors"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/kassist/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/kassist/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/kassist/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/kassist/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/kassist/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/kassist/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/kassist/internal/core/domain"
	"github.com/custodia-labs/kassist/internal/core/ports/driving"
)

// View shows a question box, the latest answer with its citations and,
// on request, the passages the answer was grounded on.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	input     *input.QuestionInput
	passages  *list.PassageList
	statusbar *status.Bar

	answerService driving.AnswerService
	ctx           context.Context

	answer       *domain.Answer
	width        int
	height       int
	ready        bool
	err          error
	focusInput   bool
	showPassages bool
}

// NewView creates a new ask view.
func NewView(s *styles.Styles, km *keymap.KeyMap, answerService driving.AnswerService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &View{
		styles:        s,
		keymap:        km,
		input:         input.NewQuestionInput(s),
		passages:      list.NewPassageList(s),
		statusbar:     status.NewBar(s, km),
		answerService: answerService,
		ctx:           context.Background(),
		width:         80,
		height:        24,
		focusInput:    true,
	}
}

// WithContext sets the context used for answer requests.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return v.input.Init()
}

// Update handles messages for the ask view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.AnswerReceived:
		v.handleAnswer(msg)
		return v, nil

	case messages.ErrorOccurred:
		v.setError(msg.Err)
		return v, nil
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	if msg.Type == tea.KeyEsc {
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}
	}

	if v.focusInput {
		if msg.Type == tea.KeyEnter {
			question := strings.TrimSpace(v.input.Value())
			if question == "" {
				return v, nil
			}
			v.statusbar.SetState(status.StateAnswering)
			v.statusbar.SetMessage("")
			v.err = nil
			v.focusInput = false
			v.input.Blur()
			return v, v.askQuestion(question)
		}
		var cmd tea.Cmd
		v.input, cmd = v.input.Update(msg)
		return v, cmd
	}

	switch msg.String() {
	case "n":
		v.focusInput = true
		v.showPassages = false
		v.input.SetValue("")
		return v, v.input.Focus()
	case "p":
		v.showPassages = !v.showPassages
		return v, nil
	case "up", "k", "down", "j":
		if v.showPassages {
			v.passages, _ = v.passages.Update(msg)
		}
		return v, nil
	}

	return v, nil
}

// askQuestion calls the answer service off the UI loop.
func (v *View) askQuestion(question string) tea.Cmd {
	return func() tea.Msg {
		if v.answerService == nil {
			return messages.ErrorOccurred{Err: ErrNoAnswerService}
		}
		answer, err := v.answerService.Answer(v.ctx, question)
		return messages.AnswerReceived{Answer: answer, Err: err}
	}
}

func (v *View) handleAnswer(msg messages.AnswerReceived) {
	if msg.Err != nil {
		v.setError(msg.Err)
		return
	}

	v.err = nil
	v.answer = msg.Answer
	v.passages.SetPassages(msg.Answer.Sources)
	v.statusbar.SetState(status.StateAnswered)
	v.statusbar.SetSourceCount(len(msg.Answer.Sources))
	v.statusbar.SetMessage("")
	if msg.Answer.NoKnowledge {
		v.statusbar.SetMessage("No documents indexed yet")
	}
}

func (v *View) setError(err error) {
	v.err = err
	v.statusbar.SetState(status.StateError)
	v.statusbar.SetMessage(describeError(err))
	// let the user retype straight away
	v.focusInput = true
	v.input.Focus()
}

func describeError(err error) string {
	switch {
	case errors.Is(err, domain.ErrGenerationTimeout):
		return "the language model took too long to answer"
	case errors.Is(err, domain.ErrEmbeddingUnavailable), errors.Is(err, domain.ErrLLMUnavailable):
		return "AI service unavailable, check 'kassist settings'"
	case errors.Is(err, domain.ErrDimensionMismatch), errors.Is(err, domain.ErrModelMismatch):
		return "index was built with a different embedding model"
	default:
		return err.Error()
	}
}

// View renders the ask view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := make([]string, 0, 12)
	sections = append(sections, v.styles.Title.Render("kassist"), "", v.input.View(), "")

	if v.err != nil {
		sections = append(sections, v.styles.Error.Render("Error: "+v.err.Error()), "")
	}

	if v.answer != nil && v.err == nil {
		sections = append(sections, v.renderAnswer(), "")
		if v.showPassages {
			sections = append(sections, v.passages.View(), "")
		}
	}

	sections = append(sections, v.statusbar.View())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (v *View) renderAnswer() string {
	body := v.styles.Answer.Width(max(v.width-4, 20)).Render(v.answer.Text)
	if len(v.answer.Citations) == 0 {
		return body
	}

	lines := make([]string, 0, len(v.answer.Citations)+2)
	lines = append(lines, body, "", v.styles.Subtitle.Render("Sources"))
	for _, c := range v.answer.Citations {
		lines = append(lines, v.styles.Citation.Render("  "+c))
	}
	return strings.Join(lines, "\n")
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	v.input.SetWidth(width)
	v.passages.SetDimensions(width, height/2)
	v.statusbar.SetWidth(width)
}

// Reset returns the view to an empty question box.
func (v *View) Reset() {
	v.focusInput = true
	v.showPassages = false
	v.input.Focus()
	v.input.SetValue("")
	v.answer = nil
	v.passages.SetPassages(nil)
	v.err = nil
	v.statusbar.Clear()
}

// Question returns the text in the question box.
func (v *View) Question() string {
	return v.input.Value()
}

// SetQuestion sets the text in the question box.
func (v *View) SetQuestion(q string) {
	v.input.SetValue(q)
}

// Answer returns the latest answer, or nil.
func (v *View) Answer() *domain.Answer {
	return v.answer
}

// Err returns the current error, if any.
func (v *View) Err() error {
	return v.err
}

// Ready returns whether the view is ready to render.
func (v *View) Ready() bool {
	return v.ready
}

// InputFocused returns whether the question box has focus.
func (v *View) InputFocused() bool {
	return v.focusInput
}

// PassagesVisible returns whether the passage list is shown.
func (v *View) PassagesVisible() bool {
	return v.showPassages
}
