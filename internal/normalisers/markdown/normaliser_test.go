package markdown

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/kassist/internal/core/domain"
	"github.com/custodia-labs/kassist/internal/core/ports/driven"
)

func TestSupportedKinds(t *testing.T) {
	assert.Equal(t, []domain.SourceKind{domain.SourceKindMarkdown}, New().SupportedKinds())
}

func TestPriority(t *testing.T) {
	assert.Equal(t, 50, New().Priority())
}

func TestNormalise_Success(t *testing.T) {
	raw := &domain.RawDocument{
		URI:     "/path/to/document.md",
		Kind:    domain.SourceKindMarkdown,
		Content: []byte("# Hello World\r\n\r\nThis is a test."),
	}

	result, err := New().Normalise(context.Background(), raw)
	require.NoError(t, err)
	require.NotNil(t, result)

	doc := result.Document
	assert.Equal(t, raw.URI, doc.URI)
	assert.Equal(t, "Hello World", doc.Title)
	assert.Equal(t, domain.SourceKindMarkdown, doc.Kind)
	assert.Equal(t, "Hello World\n\nThis is a test.", doc.Content)
}

func TestNormalise_NilDocument(t *testing.T) {
	result, err := New().Normalise(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Nil(t, result)
}

func TestExtractMarkdownTitle(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		uri      string
		expected string
	}{
		{name: "first h1", content: "intro\n# Guide\n## Part", uri: "/a.md", expected: "Guide"},
		{name: "h2 is not a title", content: "## Part\nbody", uri: "/user_manual.md", expected: "user manual"},
		{name: "empty content", content: "", uri: "/path/release-notes.markdown", expected: "release notes"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, extractMarkdownTitle(tc.content, tc.uri))
		})
	}
}

func TestStripMarkdown(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "headings removed",
			input:    "# Title\n## Subtitle\n### Third",
			expected: "Title\nSubtitle\nThird",
		},
		{
			name:     "bold removed",
			input:    "This is **bold** text",
			expected: "This is bold text",
		},
		{
			name:     "links converted",
			input:    "Click [here](https://example.com)",
			expected: "Click here",
		},
		{
			name:     "images removed",
			input:    "See ![alt text](image.png) here",
			expected: "See  here",
		},
		{
			name:     "code blocks removed",
			input:    "Before\n```go\ncode here\n```\nAfter",
			expected: "Before\n\nAfter",
		},
		{
			name:     "inline code removed",
			input:    "Use `code` here",
			expected: "Use  here",
		},
		{
			name:     "blockquotes cleaned",
			input:    "> This is a quote",
			expected: "This is a quote",
		},
		{
			name:     "list markers removed",
			input:    "- Item 1\n- Item 2",
			expected: "Item 1\nItem 2",
		},
		{
			name:     "numbered list markers removed",
			input:    "1. First\n2. Second",
			expected: "First\nSecond",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result := stripMarkdown(tc.input)
			assert.Equal(t, tc.expected, result)
		})
	}
}

func TestNormalise_KeepsParagraphBreaks(t *testing.T) {
	content := "# Setup\n\nInstall the **tool**.\n\n\n\n- Run it\n- Check [docs](https://x.test)"
	raw := &domain.RawDocument{URI: "/setup.md", Content: []byte(content)}

	result, err := New().Normalise(context.Background(), raw)
	require.NoError(t, err)
	assert.Equal(t, "Setup\n\nInstall the tool.\n\nRun it\nCheck docs", result.Document.Content)
}

func TestInterfaceCompliance(t *testing.T) {
	var _ driven.Normaliser = (*Normaliser)(nil)
}
