package markdown

import (
	"context"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/custodia-labs/kassist/internal/core/domain"
	"github.com/custodia-labs/kassist/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

var (
	codeBlockRe     = regexp.MustCompile("(?s)```[^`]*```")
	inlineCodeRe    = regexp.MustCompile("`[^`]+`")
	imageRe         = regexp.MustCompile(`!\[[^\]]*\]\([^)]+\)`)
	linkRe          = regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`)
	headingRe       = regexp.MustCompile(`(?m)^#{1,6}[ \t]+`)
	blockquoteRe    = regexp.MustCompile(`(?m)^>[ \t]*`)
	ruleRe          = regexp.MustCompile(`(?m)^[-*_]{3,}[ \t]*$`)
	listMarkerRe    = regexp.MustCompile(`(?m)^[ \t]*[-*+][ \t]+`)
	numberedListRe  = regexp.MustCompile(`(?m)^[ \t]*\d+\.[ \t]+`)
	multiNewlinesRe = regexp.MustCompile(`\n{3,}`)
)

// Normaliser handles Markdown documents.
type Normaliser struct{}

// New creates a new Markdown normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedKinds returns the source kinds this normaliser handles.
func (n *Normaliser) SupportedKinds() []domain.SourceKind {
	return []domain.SourceKind{domain.SourceKindMarkdown}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50
}

// Normalise converts a markdown document to a normalised document.
// The Content field contains the text with markdown formatting simplified.
// Paragraph breaks are preserved for the chunker.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	rawContent := strings.ReplaceAll(string(raw.Content), "\r\n", "\n")

	doc := domain.Document{
		URI:     raw.URI,
		Title:   extractMarkdownTitle(rawContent, raw.URI),
		Kind:    domain.SourceKindMarkdown,
		Content: stripMarkdown(rawContent),
	}

	return &driven.NormaliseResult{
		Document: doc,
	}, nil
}

// extractMarkdownTitle extracts a title from the first H1 heading or falls back to filename.
func extractMarkdownTitle(content, uri string) string {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "# ") {
			return strings.TrimSpace(strings.TrimPrefix(line, "#"))
		}
	}

	filename := filepath.Base(uri)
	if ext := filepath.Ext(filename); ext != "" {
		filename = strings.TrimSuffix(filename, ext)
	}
	filename = strings.ReplaceAll(filename, "_", " ")
	filename = strings.ReplaceAll(filename, "-", " ")
	return filename
}

// stripMarkdown removes common markdown formatting for plain text content.
// This is a simplified implementation that handles common cases.
func stripMarkdown(content string) string {
	content = codeBlockRe.ReplaceAllString(content, "")
	content = inlineCodeRe.ReplaceAllString(content, "")
	content = imageRe.ReplaceAllString(content, "")
	content = linkRe.ReplaceAllString(content, "$1")
	content = headingRe.ReplaceAllString(content, "")

	// Bold and italic markers
	content = strings.ReplaceAll(content, "**", "")
	content = strings.ReplaceAll(content, "__", "")
	content = strings.ReplaceAll(content, "*", "")
	content = strings.ReplaceAll(content, "_", " ")

	content = blockquoteRe.ReplaceAllString(content, "")
	content = ruleRe.ReplaceAllString(content, "")
	content = listMarkerRe.ReplaceAllString(content, "")
	content = numberedListRe.ReplaceAllString(content, "")
	content = multiNewlinesRe.ReplaceAllString(content, "\n\n")

	return strings.TrimSpace(content)
}
