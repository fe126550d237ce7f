package sources

import (
	"context"

	"genecrawler/internal/person"
)

// Searcher is the search capability one external service implements. Search
// yields every candidate found for the person, bounded by the source's
// pagination policy. A transient failure mid-search returns the candidates
// collected so far together with the error; callers decide whether that
// aborts anything beyond the current (person, source) pair.
type Searcher interface {
	ID() ID
	Search(ctx context.Context, p *person.Person) ([]Candidate, error)
}

// Registry holds the enabled searchers in canonical source order.
type Registry struct {
	order     []ID
	searchers map[ID]Searcher
}

// NewRegistry builds a registry from the provided searchers. Later duplicates
// replace earlier ones.
func NewRegistry(searchers ...Searcher) *Registry {
	r := &Registry{searchers: make(map[ID]Searcher, len(searchers))}
	for _, s := range searchers {
		if s == nil {
			continue
		}
		if _, exists := r.searchers[s.ID()]; !exists {
			r.order = append(r.order, s.ID())
		}
		r.searchers[s.ID()] = s
	}
	return r
}

// Get returns the searcher for a source, if registered.
func (r *Registry) Get(id ID) (Searcher, bool) {
	s, ok := r.searchers[id]
	return s, ok
}

// Ordered returns the registered searchers in registration order.
func (r *Registry) Ordered() []Searcher {
	out := make([]Searcher, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.searchers[id])
	}
	return out
}

// Len reports how many searchers are registered.
func (r *Registry) Len() int {
	return len(r.order)
}
