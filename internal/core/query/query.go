// Package query runs fetches over the archetypes of a world. A Query computes its access
// once at construction; each execution captures a tick window and walks every matching
// archetype, entity by entity.
package query

import (
	"iter"

	"github.com/google/uuid"

	"github.com/zeusync/traitquery/internal/core/access"
	"github.com/zeusync/traitquery/internal/core/observability/metrics"
	"github.com/zeusync/traitquery/internal/core/store"
	"github.com/zeusync/traitquery/internal/core/tick"
)

// Query fetches Item for every entity matched by its data and filters.
type Query[Item any] struct {
	id      uuid.UUID
	name    string
	data    Data[Item]
	filters []Filter
	access  *access.FilteredAccess
	metrics *metrics.Collector
}

// New builds a query. Access is declared data first, then filters in order; New panics
// when two of them conflict, for example a filter reading a trait implementor that the
// data writes.
func New[Item any](name string, data Data[Item], filters ...Filter) *Query[Item] {
	acc := access.NewFiltered()
	data.UpdateAccess(acc)
	for _, f := range filters {
		f.UpdateAccess(acc)
	}
	return &Query[Item]{
		id:      uuid.New(),
		name:    name,
		data:    data,
		filters: filters,
		access:  acc,
	}
}

// WithMetrics reports executions to c.
func (q *Query[Item]) WithMetrics(c *metrics.Collector) *Query[Item] {
	q.metrics = c
	return q
}

func (q *Query[Item]) ID() uuid.UUID {
	return q.id
}

func (q *Query[Item]) Name() string {
	return q.name
}

// Access returns the components the query reads and writes. It must not be modified.
func (q *Query[Item]) Access() *access.FilteredAccess {
	return q.access
}

// Matches reports whether the query visits entities of a.
func (q *Query[Item]) Matches(a *store.Archetype) bool {
	if !q.data.Matches(a) {
		return false
	}
	for _, f := range q.filters {
		if !f.Matches(a) {
			return false
		}
	}
	return true
}

// Iter yields every matching entity with its item. The window is fixed for the whole
// execution; the world must not be mutated until iteration ends.
func (q *Query[Item]) Iter(w *store.World, window tick.Window) iter.Seq2[store.Entity, Item] {
	return func(yield func(store.Entity, Item) bool) {
		fetch := q.data.Begin(w, window)
		filters := make([]Fetch[bool], len(q.filters))
		for i, f := range q.filters {
			filters[i] = f.Begin(w, window)
		}

		var archetypes, entities int
		defer func() {
			q.metrics.ObserveQuery(q.name, archetypes, entities)
		}()

		for _, a := range w.Archetypes() {
			if a.Len() == 0 || !q.Matches(a) {
				continue
			}
			archetypes++
			fetch.SetArchetype(a)
			for _, f := range filters {
				f.SetArchetype(a)
			}
			for _, ae := range a.Entities() {
				if !passes(filters, ae) {
					continue
				}
				entities++
				if !yield(ae.Entity, fetch.Fetch(ae.Entity, ae.Row)) {
					return
				}
			}
		}
	}
}

// Run executes the query for a system that last ran at lastRun, advancing the world's
// change tick to open the window.
func (q *Query[Item]) Run(w *store.World, lastRun tick.Tick) (iter.Seq2[store.Entity, Item], tick.Window) {
	window := tick.Window{LastRun: lastRun, ThisRun: w.IncrementChangeTick()}
	return q.Iter(w, window), window
}

// Collect executes the query and returns the items in iteration order.
func (q *Query[Item]) Collect(w *store.World, window tick.Window) []Item {
	var out []Item
	for _, item := range q.Iter(w, window) {
		out = append(out, item)
	}
	return out
}

func passes(filters []Fetch[bool], ae store.ArchetypeEntity) bool {
	for _, f := range filters {
		if !f.Fetch(ae.Entity, ae.Row) {
			return false
		}
	}
	return true
}
