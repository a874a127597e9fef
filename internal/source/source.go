// Package source fetches escrow account records and normalises them into the
// allocator's data model.
package source

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/cleared-dev/disburse/internal/model"
)

// ErrUnknownSource is returned by Registry.Get for an unregistered kind.
var ErrUnknownSource = errors.New("unknown record source")

// Source returns the account records belonging to an owner.
type Source interface {
	Fetch(ctx context.Context, ownerID string) ([]model.AccountRecord, error)
	Kind() string
}

// Registry holds named sources.
type Registry struct {
	sources map[string]Source
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{sources: make(map[string]Source)}
}

// Register adds a source. Panics on duplicate kind.
func (r *Registry) Register(s Source) {
	key := strings.ToLower(s.Kind())
	if _, ok := r.sources[key]; ok {
		panic("duplicate record source: " + key)
	}
	r.sources[key] = s
}

// Get returns the source registered under kind.
func (r *Registry) Get(kind string) (Source, error) {
	s, ok := r.sources[strings.ToLower(kind)]
	if !ok {
		return nil, fmt.Errorf("%w: %q (available: %s)", ErrUnknownSource, kind, strings.Join(r.Kinds(), ", "))
	}
	return s, nil
}

// Kinds returns the registered kinds, sorted.
func (r *Registry) Kinds() []string {
	out := make([]string, 0, len(r.sources))
	for k := range r.sources {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
