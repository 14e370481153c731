package chunking

import (
	"fmt"
	"sort"

	"github.com/archivist-labs/docq-cli/internal/core/domain"
	"github.com/archivist-labs/docq-cli/internal/core/ports/driven"
)

// DefaultStrategy is the strategy used when none is named.
const DefaultStrategy = "hybrid"

// Registry maps strategy names to their implementations.
// It allows strategy selection from configuration or CLI flags.
type Registry struct {
	strategies map[string]driven.ChunkStrategy
}

// NewRegistry creates a registry with every built-in strategy
// registered.
func NewRegistry() *Registry {
	r := &Registry{strategies: make(map[string]driven.ChunkStrategy)}
	for _, s := range []driven.ChunkStrategy{
		NewFixed(),
		NewParagraph(),
		NewSentence(),
		NewPageMerge(),
		NewHeading(),
		NewHybrid(),
	} {
		r.Register(s)
	}
	return r
}

// Register adds a strategy under its own Name().
func (r *Registry) Register(s driven.ChunkStrategy) {
	r.strategies[s.Name()] = s
}

// Get returns the strategy with the given name; an empty name selects
// DefaultStrategy. Returns domain.ErrUnknownStrategy for unknown names.
func (r *Registry) Get(name string) (driven.ChunkStrategy, error) {
	if name == "" {
		name = DefaultStrategy
	}
	s, ok := r.strategies[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownStrategy, name)
	}
	return s, nil
}

// Has reports whether a strategy with the given name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.strategies[name]
	return ok
}

// Names returns all registered strategy names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.strategies))
	for name := range r.strategies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
