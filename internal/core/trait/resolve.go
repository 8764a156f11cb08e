package trait

import (
	"github.com/zeusync/traitquery/internal/core/store"
)

type resolutionState uint8

const (
	unresolved resolutionState = iota
	resolvedTable
	resolvedSparse
)

// resolution is the backend holding the single implementor of an archetype.
type resolution[T any] struct {
	state     resolutionState
	component store.ComponentID
	ctor      Ctor[T]
	table     *store.Table
	set       *store.SparseSet
}

// resolve finds the implementor of r held by a, probing the table before the sparse sets.
// It panics with InvariantError when a holds none, which only happens if the caller
// skipped the match check.
func resolve[T any](r *Registry[T], a *store.Archetype, sets *store.SparseSets) resolution[T] {
	table := a.Table()
	for id, ctor := range r.TableEntries() {
		if table.Has(id) {
			return resolution[T]{state: resolvedTable, component: id, ctor: ctor, table: table}
		}
	}
	for id, ctor := range r.SparseEntries() {
		if !a.Contains(id) {
			continue
		}
		if set, ok := sets.Get(id); ok {
			return resolution[T]{state: resolvedSparse, component: id, ctor: ctor, set: set}
		}
	}
	panic(&InvariantError{
		Trait:     r.name,
		Archetype: a.ID(),
		Reason:    "no implementor in table or sparse storage",
	})
}

func unresolvedFetch(trait string) *InvariantError {
	return &InvariantError{Trait: trait, Reason: "fetch before the archetype was set"}
}
