package status

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/kassist/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/kassist/internal/adapters/driving/tui/styles"
)

func TestNewBar(t *testing.T) {
	bar := NewBar(styles.DefaultStyles(), keymap.DefaultKeyMap())

	require.NotNil(t, bar)
	assert.Equal(t, StateReady, bar.State())
	assert.Equal(t, 0, bar.SourceCount())
	assert.Equal(t, 80, bar.Width())
}

func TestNewBar_NilDependencies(t *testing.T) {
	bar := NewBar(nil, nil)

	require.NotNil(t, bar)
	assert.NotNil(t, bar.styles)
	assert.NotNil(t, bar.keymap)
}

func TestBar_InitAndUpdateArePassive(t *testing.T) {
	bar := NewBar(nil, nil)

	assert.Nil(t, bar.Init())

	updated, cmd := bar.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Same(t, bar, updated)
	assert.Nil(t, cmd)
}

func TestBar_Setters(t *testing.T) {
	bar := NewBar(nil, nil)

	bar.SetState(StateAnswered)
	bar.SetMessage("no knowledge")
	bar.SetSourceCount(3)
	bar.SetWidth(120)

	assert.Equal(t, StateAnswered, bar.State())
	assert.Equal(t, "no knowledge", bar.Message())
	assert.Equal(t, 3, bar.SourceCount())
	assert.Equal(t, 120, bar.Width())
}

func TestBar_Clear(t *testing.T) {
	bar := NewBar(nil, nil)
	bar.SetState(StateError)
	bar.SetMessage("boom")
	bar.SetSourceCount(2)

	bar.Clear()

	assert.Equal(t, StateReady, bar.State())
	assert.Empty(t, bar.Message())
	assert.Zero(t, bar.SourceCount())
}

func TestBar_View(t *testing.T) {
	tests := []struct {
		name     string
		state    State
		message  string
		sources  int
		contains []string
	}{
		{"ready", StateReady, "", 0, []string{"Ready", "quit"}},
		{"answering", StateAnswering, "", 0, []string{"Thinking..."}},
		{"error without message", StateError, "", 0, []string{"Error"}},
		{"error with message", StateError, "generator timed out", 0, []string{"Error: generator timed out"}},
		{"help", StateHelp, "", 0, []string{"Help"}},
		{"answered", StateAnswered, "", 3, []string{"3 sources", "new question", "passages"}},
		{"answered with note", StateAnswered, "No knowledge yet", 0, []string{"No knowledge yet"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bar := NewBar(nil, nil)
			bar.SetWidth(200)
			bar.SetState(tt.state)
			bar.SetMessage(tt.message)
			bar.SetSourceCount(tt.sources)

			view := bar.View()
			for _, want := range tt.contains {
				assert.Contains(t, view, want)
			}
		})
	}
}

func TestState_Constants(t *testing.T) {
	assert.Equal(t, State("ready"), StateReady)
	assert.Equal(t, State("answering"), StateAnswering)
	assert.Equal(t, State("error"), StateError)
	assert.Equal(t, State("help"), StateHelp)
	assert.Equal(t, State("answered"), StateAnswered)
}
