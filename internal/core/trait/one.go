package trait

import (
	"github.com/zeusync/traitquery/internal/core/access"
	"github.com/zeusync/traitquery/internal/core/query"
	"github.com/zeusync/traitquery/internal/core/store"
	"github.com/zeusync/traitquery/internal/core/tick"
)

// One fetches the single implementor of T an entity holds. It matches archetypes holding
// exactly one implementor.
type One[T any] struct {
	registry *Registry[T]
}

func NewOne[T any](r *Registry[T]) One[T] {
	return One[T]{registry: r}
}

func (q One[T]) UpdateAccess(acc *access.FilteredAccess) {
	UpdateAccessOne(q.registry, acc)
}

func (q One[T]) Matches(a *store.Archetype) bool {
	return q.registry.MatchesOne(a.Contains)
}

func (q One[T]) Begin(w *store.World, window tick.Window) query.Fetch[Ref[T]] {
	return &oneFetch[T]{registry: q.registry, sets: w.SparseSets(), window: window}
}

type oneFetch[T any] struct {
	registry *Registry[T]
	sets     *store.SparseSets
	window   tick.Window
	res      resolution[T]
	adapter  adapter
}

func (f *oneFetch[T]) SetArchetype(a *store.Archetype) {
	f.res = resolve(f.registry, a, f.sets)
	if f.res.state == resolvedTable {
		f.adapter = tableAdapter{table: f.res.table}
	} else {
		f.adapter = sparseAdapter{sets: f.sets}
	}
}

func (f *oneFetch[T]) Fetch(e store.Entity, row store.TableRow) Ref[T] {
	if f.res.state == unresolved {
		panic(unresolvedFetch(f.registry.name))
	}
	got, ok := f.adapter.fetch(f.res.component, locator{entity: e, row: row})
	if !ok {
		panic(&InvariantError{
			Trait:  f.registry.name,
			Reason: "resolved implementor missing for entity",
		})
	}
	return newRef(f.res.ctor(got.ptr), f.res.component, got, f.window)
}
