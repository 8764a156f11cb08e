package trait

import (
	"github.com/zeusync/traitquery/internal/core/access"
	"github.com/zeusync/traitquery/internal/core/query"
	"github.com/zeusync/traitquery/internal/core/store"
	"github.com/zeusync/traitquery/internal/core/tick"
)

// All fetches every implementor of T an entity holds, as ReadTraits. It matches
// archetypes holding at least one implementor.
type All[T any] struct {
	registry *Registry[T]
}

func NewAll[T any](r *Registry[T]) All[T] {
	return All[T]{registry: r}
}

func (q All[T]) UpdateAccess(acc *access.FilteredAccess) {
	UpdateAccessAll(q.registry, acc)
}

func (q All[T]) Matches(a *store.Archetype) bool {
	return q.registry.MatchesAny(a.Contains)
}

func (q All[T]) Begin(w *store.World, window tick.Window) query.Fetch[ReadTraits[T]] {
	return &allFetch[T]{registry: q.registry, sets: w.SparseSets(), window: window}
}

type allFetch[T any] struct {
	registry *Registry[T]
	sets     *store.SparseSets
	window   tick.Window
	table    *store.Table
}

func (f *allFetch[T]) SetArchetype(a *store.Archetype) {
	f.table = a.Table()
}

func (f *allFetch[T]) Fetch(_ store.Entity, row store.TableRow) ReadTraits[T] {
	return NewReadTraits(f.registry, f.table, row, f.sets, f.window)
}
