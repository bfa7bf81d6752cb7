package normalisers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/kassist/internal/core/domain"
	"github.com/custodia-labs/kassist/internal/core/ports/driven"
)

// stubNormaliser tags its output so tests can see which one ran.
type stubNormaliser struct {
	tag      string
	priority int
	kinds    []domain.SourceKind
}

func (s *stubNormaliser) SupportedKinds() []domain.SourceKind { return s.kinds }
func (s *stubNormaliser) Priority() int                       { return s.priority }

func (s *stubNormaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	return &driven.NormaliseResult{Document: domain.Document{Title: s.tag, URI: raw.URI}}, nil
}

func TestRegistry_PicksHighestPriority(t *testing.T) {
	r := NewRegistry()
	r.Register(&stubNormaliser{tag: "low", priority: 1, kinds: []domain.SourceKind{domain.SourceKindPlaintext}})
	r.Register(&stubNormaliser{tag: "high", priority: 90, kinds: []domain.SourceKind{domain.SourceKindPlaintext}})
	r.Register(&stubNormaliser{tag: "mid", priority: 50, kinds: []domain.SourceKind{domain.SourceKindPlaintext}})

	result, err := r.Normalise(context.Background(), &domain.RawDocument{Kind: domain.SourceKindPlaintext})

	require.NoError(t, err)
	assert.Equal(t, "high", result.Document.Title)
}

func TestRegistry_UnsupportedKind(t *testing.T) {
	r := NewRegistry()

	_, err := r.Normalise(context.Background(), &domain.RawDocument{Kind: domain.SourceKindPDF})
	assert.ErrorIs(t, err, domain.ErrUnsupportedType)

	_, err = r.Normalise(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestDefaultRegistry(t *testing.T) {
	r := NewDefaultRegistry()

	assert.Equal(t, []domain.SourceKind{
		domain.SourceKindMarkdown,
		domain.SourceKindPDF,
		domain.SourceKindPlaintext,
	}, r.SupportedKinds())

	result, err := r.Normalise(context.Background(), &domain.RawDocument{
		URI:     "/notes/guide.md",
		Kind:    domain.SourceKindMarkdown,
		Content: []byte("# Guide\n\nBody text."),
	})
	require.NoError(t, err)
	assert.Equal(t, "Guide", result.Document.Title)
}
