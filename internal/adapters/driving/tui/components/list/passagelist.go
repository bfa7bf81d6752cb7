// Package list provides list display components for the TUI.
package list

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/kassist/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/kassist/internal/core/domain"
)

// PassageList displays the passages an answer was grounded on.
type PassageList struct {
	passages []domain.ScoredChunk
	selected int
	styles   *styles.Styles
	width    int
	height   int
}

// NewPassageList creates a new passage list component.
func NewPassageList(s *styles.Styles) *PassageList {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &PassageList{
		styles: s,
		width:  80,
		height: 10,
	}
}

// Init initialises the passage list.
func (p *PassageList) Init() tea.Cmd {
	return nil
}

// Update handles list navigation messages.
func (p *PassageList) Update(msg tea.Msg) (*PassageList, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "up", "k":
			p.MoveUp()
		case "down", "j":
			p.MoveDown()
		}
	}
	return p, nil
}

// View renders the passage list.
func (p *PassageList) View() string {
	if len(p.passages) == 0 {
		return p.styles.Muted.Render("No passages")
	}

	lines := make([]string, 0, len(p.passages)+2)
	lines = append(lines, p.styles.Subtitle.Render(fmt.Sprintf("Passages (%d)", len(p.passages))), "")

	// each passage renders as two lines plus a citation
	visible := max((p.height-4)/3, 1)

	start := 0
	if p.selected >= visible {
		start = p.selected - visible + 1
	}
	end := min(start+visible, len(p.passages))

	for i := start; i < end; i++ {
		lines = append(lines, p.renderPassage(i, &p.passages[i]))
	}

	return strings.Join(lines, "\n")
}

func (p *PassageList) renderPassage(index int, sc *domain.ScoredChunk) string {
	indicator := "  "
	if index == p.selected {
		indicator = "> "
	}

	citation := truncate(citationOf(sc), max(p.width-20, 10))
	score := fmt.Sprintf("%.3f", sc.Similarity)

	var head string
	if index == p.selected {
		head = p.styles.Selected.Render(fmt.Sprintf("%s%s  %s", indicator, citation, score))
	} else {
		head = p.styles.Citation.Render(indicator+citation) + "  " + p.styles.Muted.Render(score)
	}

	text := ""
	if sc.Chunk != nil {
		text = strings.Join(strings.Fields(sc.Chunk.Content), " ")
	}
	preview := p.styles.Muted.Render("    " + truncate(text, max(p.width-6, 20)))

	return head + "\n" + preview
}

func citationOf(sc *domain.ScoredChunk) string {
	if sc.Chunk == nil || sc.Document == nil {
		return fmt.Sprintf("slot %d", sc.Slot)
	}
	return sc.Citation()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}

// SetPassages replaces the list contents and resets the selection.
func (p *PassageList) SetPassages(passages []domain.ScoredChunk) {
	p.passages = passages
	p.selected = 0
}

// Passages returns the current passages.
func (p *PassageList) Passages() []domain.ScoredChunk {
	return p.passages
}

// Selected returns the index of the selected passage.
func (p *PassageList) Selected() int {
	return p.selected
}

// SelectedPassage returns the selected passage, or nil if the list is empty.
func (p *PassageList) SelectedPassage() *domain.ScoredChunk {
	if p.selected < 0 || p.selected >= len(p.passages) {
		return nil
	}
	return &p.passages[p.selected]
}

// MoveUp moves selection up.
func (p *PassageList) MoveUp() {
	if p.selected > 0 {
		p.selected--
	}
}

// MoveDown moves selection down.
func (p *PassageList) MoveDown() {
	if p.selected < len(p.passages)-1 {
		p.selected++
	}
}

// SetDimensions sets the component dimensions.
func (p *PassageList) SetDimensions(width, height int) {
	p.width = width
	p.height = height
}

// Count returns the number of passages.
func (p *PassageList) Count() int {
	return len(p.passages)
}
