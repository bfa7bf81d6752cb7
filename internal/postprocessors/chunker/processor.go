// Package chunker splits document text into paragraph passages.
package chunker

import (
	"regexp"
	"strings"

	"github.com/custodia-labs/kassist/internal/core/domain"
	"github.com/custodia-labs/kassist/internal/core/ports/driven"
)

// DefaultLeadingChars are stripped from the start of every passage.
// They remove list and section numbering such as "1.", "(2)" or "3.1 ".
const DefaultLeadingChars = "0123456789.() "

// Ensure Processor implements the interface.
var _ driven.Chunker = (*Processor)(nil)

// blankLine matches a paragraph break: a newline, optional horizontal
// whitespace, and another newline.
var blankLine = regexp.MustCompile(`\n[ \t]*\n`)

// Processor splits text into cleaned paragraph passages.
type Processor struct {
	leadingChars string
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithLeadingChars sets the characters stripped from the start of passages.
func WithLeadingChars(chars string) Option {
	return func(p *Processor) {
		p.leadingChars = chars
	}
}

// New creates a new chunker processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{
		leadingChars: DefaultLeadingChars,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// Chunk splits text into passages.
//
// Paginated kinds are split on form feeds and each passage carries its
// physical page (1-based). Flat kinds are chunked as a single page and
// passages are numbered 1..n in order.
func (p *Processor) Chunk(text string, kind domain.SourceKind) []domain.Passage {
	text = strings.ReplaceAll(text, "\r\n", "\n")

	if !kind.IsPaginated() {
		paragraphs := p.split(text)
		passages := make([]domain.Passage, 0, len(paragraphs))
		for i, para := range paragraphs {
			passages = append(passages, domain.Passage{Text: para, PageNumber: i + 1})
		}
		return passages
	}

	var passages []domain.Passage
	for i, page := range strings.Split(text, "\f") {
		for _, para := range p.split(page) {
			passages = append(passages, domain.Passage{Text: para, PageNumber: i + 1})
		}
	}
	return passages
}

// split breaks one page into cleaned, non-empty paragraphs.
func (p *Processor) split(page string) []string {
	raw := nonBlank(blankLine.Split(page, -1))
	if len(raw) == 1 {
		raw = nonBlank(strings.Split(raw[0], "\n"))
	}

	out := make([]string, 0, len(raw))
	for _, para := range raw {
		if cleaned := p.Clean(para); cleaned != "" {
			out = append(out, cleaned)
		}
	}
	return out
}

// Clean strips leading numbering and surrounding whitespace.
// Clean(Clean(s)) == Clean(s) for every s.
func (p *Processor) Clean(s string) string {
	s = strings.TrimSpace(s)
	for {
		next := strings.TrimSpace(strings.TrimLeft(s, p.leadingChars))
		if next == s {
			return s
		}
		s = next
	}
}

func nonBlank(parts []string) []string {
	out := parts[:0]
	for _, part := range parts {
		if strings.TrimSpace(part) != "" {
			out = append(out, part)
		}
	}
	return out
}
