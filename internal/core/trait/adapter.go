package trait

import (
	"unsafe"

	"github.com/zeusync/traitquery/internal/core/store"
	"github.com/zeusync/traitquery/internal/core/tick"
)

// fetched is one stored component value with its change metadata.
type fetched struct {
	ptr       unsafe.Pointer
	ticks     tick.ComponentTicks
	changedBy string
}

// locator addresses an entity in every backend: tables by row, sparse sets by entity.
type locator struct {
	entity store.Entity
	row    store.TableRow
}

// adapter gives the iteration engine read-only access to one storage backend. Absence is
// reported with false, never as an error.
type adapter interface {
	contains(id store.ComponentID) bool
	fetch(id store.ComponentID, at locator) (fetched, bool)
}

type tableAdapter struct {
	table *store.Table
}

func (a tableAdapter) contains(id store.ComponentID) bool {
	return a.table != nil && a.table.Has(id)
}

func (a tableAdapter) fetch(id store.ComponentID, at locator) (fetched, bool) {
	if a.table == nil {
		return fetched{}, false
	}
	ptr, ok := a.table.Component(id, at.row)
	if !ok {
		return fetched{}, false
	}
	ticks, _ := a.table.Ticks(id, at.row)
	by, _ := a.table.ChangedBy(id, at.row)
	return fetched{ptr: ptr, ticks: ticks, changedBy: by}, true
}

type sparseAdapter struct {
	sets *store.SparseSets
}

func (a sparseAdapter) contains(id store.ComponentID) bool {
	_, ok := a.sets.Get(id)
	return ok
}

func (a sparseAdapter) fetch(id store.ComponentID, at locator) (fetched, bool) {
	set, ok := a.sets.Get(id)
	if !ok {
		return fetched{}, false
	}
	ptr, ticks, by, ok := set.GetWithTicks(at.entity)
	if !ok {
		return fetched{}, false
	}
	return fetched{ptr: ptr, ticks: ticks, changedBy: by}, true
}

// backend pairs an adapter with the registry entries it stores. Backends are probed in
// slice order.
type backend[T any] struct {
	adapter    adapter
	components []store.ComponentID
	ctors      []Ctor[T]
}

func backends[T any](r *Registry[T], table *store.Table, sets *store.SparseSets) []backend[T] {
	return []backend[T]{
		{adapter: tableAdapter{table: table}, components: r.tableComponents, ctors: r.tableCtors},
		{adapter: sparseAdapter{sets: sets}, components: r.sparseComponents, ctors: r.sparseCtors},
	}
}
