package trait

import (
	"github.com/zeusync/traitquery/internal/core/store"
	"github.com/zeusync/traitquery/internal/core/tick"
	"github.com/zeusync/traitquery/pkg/sequence"
)

// ReadTraits is the view of every implementor of T held by one entity. It is cheap to
// copy and holds no storage of its own.
type ReadTraits[T any] struct {
	registry *Registry[T]
	table    *store.Table
	row      store.TableRow
	sets     *store.SparseSets
	window   tick.Window
}

// NewReadTraits builds the view of the entity stored at row of table. window must be the
// tick window captured when the query started.
func NewReadTraits[T any](r *Registry[T], table *store.Table, row store.TableRow, sets *store.SparseSets, window tick.Window) ReadTraits[T] {
	return ReadTraits[T]{registry: r, table: table, row: row, sets: sets, window: window}
}

// Entity returns the entity the view belongs to.
func (r ReadTraits[T]) Entity() store.Entity {
	return r.table.Entities()[r.row]
}

// Window returns the tick window the view compares against.
func (r ReadTraits[T]) Window() tick.Window {
	return r.window
}

// Iter yields a Ref for every implementor the entity holds: table implementors first,
// then sparse ones, each in registration order. The iterator may be consumed any number
// of times and yields the same sequence while the store is unchanged.
func (r ReadTraits[T]) Iter() *sequence.Iterator[Ref[T]] {
	return sequence.FromSeq(r.scan)
}

// IterAdded yields the implementors added since the system last ran.
func (r ReadTraits[T]) IterAdded() *sequence.Iterator[Ref[T]] {
	return r.Iter().Filter(Ref[T].IsAdded)
}

// IterChanged yields the implementors added or written since the system last ran.
func (r ReadTraits[T]) IterChanged() *sequence.Iterator[Ref[T]] {
	return r.Iter().Filter(Ref[T].IsChanged)
}

// Len returns the number of implementors the entity holds.
func (r ReadTraits[T]) Len() int {
	return r.Iter().Count()
}

func (r ReadTraits[T]) scan(yield func(Ref[T]) bool) {
	at := locator{entity: r.Entity(), row: r.row}
	for _, b := range backends(r.registry, r.table, r.sets) {
		for i, id := range b.components {
			f, ok := b.adapter.fetch(id, at)
			if !ok {
				continue
			}
			if !yield(newRef(b.ctors[i](f.ptr), id, f, r.window)) {
				return
			}
		}
	}
}
