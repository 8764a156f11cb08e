package trait

import (
	"github.com/zeusync/traitquery/internal/core/access"
	"github.com/zeusync/traitquery/internal/core/query"
	"github.com/zeusync/traitquery/internal/core/store"
	"github.com/zeusync/traitquery/internal/core/tick"
)

type tickKind uint8

const (
	changedTick tickKind = iota
	addedTick
)

// OneChanged passes entities whose single implementor of T was added or written since the
// system last ran. It reads only change ticks and never builds a reference.
type OneChanged[T any] struct {
	registry *Registry[T]
}

func NewOneChanged[T any](r *Registry[T]) OneChanged[T] {
	return OneChanged[T]{registry: r}
}

func (q OneChanged[T]) UpdateAccess(acc *access.FilteredAccess) {
	UpdateAccessOne(q.registry, acc)
}

func (q OneChanged[T]) Matches(a *store.Archetype) bool {
	return q.registry.MatchesOne(a.Contains)
}

func (q OneChanged[T]) Begin(w *store.World, window tick.Window) query.Fetch[bool] {
	return newChangeDetectionFetch(q.registry, w.SparseSets(), window, changedTick)
}

// OneAdded passes entities whose single implementor of T was added since the system last
// ran.
type OneAdded[T any] struct {
	registry *Registry[T]
}

func NewOneAdded[T any](r *Registry[T]) OneAdded[T] {
	return OneAdded[T]{registry: r}
}

func (q OneAdded[T]) UpdateAccess(acc *access.FilteredAccess) {
	UpdateAccessOne(q.registry, acc)
}

func (q OneAdded[T]) Matches(a *store.Archetype) bool {
	return q.registry.MatchesOne(a.Contains)
}

func (q OneAdded[T]) Begin(w *store.World, window tick.Window) query.Fetch[bool] {
	return newChangeDetectionFetch(q.registry, w.SparseSets(), window, addedTick)
}

// changeDetectionFetch resolves the implementor's backend once per archetype and then
// answers per entity from the tick column or sparse set alone.
type changeDetectionFetch[T any] struct {
	registry *Registry[T]
	sets     *store.SparseSets
	window   tick.Window
	kind     tickKind

	state     resolutionState
	archetype store.ArchetypeID
	ticks     []tick.Tick
	set       *store.SparseSet
}

func newChangeDetectionFetch[T any](r *Registry[T], sets *store.SparseSets, window tick.Window, kind tickKind) *changeDetectionFetch[T] {
	return &changeDetectionFetch[T]{registry: r, sets: sets, window: window, kind: kind}
}

func (f *changeDetectionFetch[T]) SetArchetype(a *store.Archetype) {
	res := resolve(f.registry, a, f.sets)
	f.archetype = a.ID()
	f.state = res.state
	f.ticks, f.set = nil, nil

	switch res.state {
	case resolvedTable:
		if f.kind == addedTick {
			f.ticks, _ = res.table.AddedTicks(res.component)
		} else {
			f.ticks, _ = res.table.ChangedTicks(res.component)
		}
	case resolvedSparse:
		f.set = res.set
	}
}

func (f *changeDetectionFetch[T]) Fetch(e store.Entity, row store.TableRow) bool {
	var t tick.Tick
	switch f.state {
	case resolvedTable:
		t = f.ticks[row]
	case resolvedSparse:
		var ok bool
		if f.kind == addedTick {
			t, ok = f.set.AddedTick(e)
		} else {
			t, ok = f.set.ChangedTick(e)
		}
		if !ok {
			panic(&InvariantError{
				Trait:     f.registry.name,
				Archetype: f.archetype,
				Reason:    "entity missing from its implementor's sparse set",
			})
		}
	default:
		panic(unresolvedFetch(f.registry.name))
	}
	return t.IsNewerThan(f.window.LastRun, f.window.ThisRun)
}
