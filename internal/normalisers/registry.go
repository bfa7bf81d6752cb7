package normalisers

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/custodia-labs/kassist/internal/core/domain"
	"github.com/custodia-labs/kassist/internal/core/ports/driven"
	"github.com/custodia-labs/kassist/internal/normalisers/markdown"
	"github.com/custodia-labs/kassist/internal/normalisers/pdf"
	"github.com/custodia-labs/kassist/internal/normalisers/plaintext"
)

// Ensure Registry implements the interface.
var _ driven.NormaliserRegistry = (*Registry)(nil)

// Registry selects the highest priority normaliser for a source kind.
type Registry struct {
	mu     sync.RWMutex
	byKind map[domain.SourceKind][]driven.Normaliser
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byKind: make(map[domain.SourceKind][]driven.Normaliser)}
}

// NewDefaultRegistry creates a registry with the built-in normalisers.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	RegisterDefaults(r)
	return r
}

// RegisterDefaults registers all built-in normalisers with the registry.
func RegisterDefaults(r driven.NormaliserRegistry) {
	r.Register(plaintext.New())
	r.Register(markdown.New())
	r.Register(pdf.New())
}

// Register adds a normaliser for each kind it supports.
func (r *Registry) Register(n driven.Normaliser) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, kind := range n.SupportedKinds() {
		list := append(r.byKind[kind], n)
		sort.SliceStable(list, func(i, j int) bool { return list[i].Priority() > list[j].Priority() })
		r.byKind[kind] = list
	}
}

// Normalise transforms a raw document using the best matching normaliser.
func (r *Registry) Normalise(ctx context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	r.mu.RLock()
	list := r.byKind[raw.Kind]
	r.mu.RUnlock()

	if len(list) == 0 {
		return nil, fmt.Errorf("%w: no normaliser for %q", domain.ErrUnsupportedType, raw.Kind)
	}
	return list[0].Normalise(ctx, raw)
}

// SupportedKinds returns all source kinds that can be normalised.
func (r *Registry) SupportedKinds() []domain.SourceKind {
	r.mu.RLock()
	defer r.mu.RUnlock()
	kinds := make([]domain.SourceKind, 0, len(r.byKind))
	for kind := range r.byKind {
		kinds = append(kinds, kind)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}
