package query

import (
	"fmt"
	"unsafe"

	"github.com/zeusync/traitquery/internal/core/access"
	"github.com/zeusync/traitquery/internal/core/store"
	"github.com/zeusync/traitquery/internal/core/tick"
)

// componentFetch locates one component by storage type.
type componentFetch struct {
	id     store.ComponentID
	sparse bool
	set    *store.SparseSet
	table  *store.Table
}

func newComponentFetch(w *store.World, id store.ComponentID) componentFetch {
	info, _ := w.Components().Info(id)
	f := componentFetch{id: id, sparse: info.Storage == store.StorageSparseSet}
	if f.sparse {
		f.set, _ = w.SparseSets().Get(id)
	}
	return f
}

func (f *componentFetch) setArchetype(a *store.Archetype) {
	f.table = a.Table()
}

func (f *componentFetch) ptr(e store.Entity, row store.TableRow) unsafe.Pointer {
	var (
		p  unsafe.Pointer
		ok bool
	)
	if f.sparse {
		if f.set != nil {
			p, ok = f.set.Get(e)
		}
	} else {
		p, ok = f.table.Component(f.id, row)
	}
	if !ok {
		panic(fmt.Sprintf("query: component %d missing for entity %d", f.id, e))
	}
	return p
}

// Read fetches a shared pointer to component C. The value must not be modified.
type Read[C any] struct {
	id store.ComponentID
}

// NewRead panics if C is not registered with components.
func NewRead[C any](components *store.Components) Read[C] {
	return Read[C]{id: store.MustComponentID[C](components)}
}

func (r Read[C]) UpdateAccess(acc *access.FilteredAccess) {
	if acc.Access().HasWrite(r.id) {
		panic(fmt.Errorf("%w: read of component %d after a write", ErrAccessConflict, r.id))
	}
	acc.AddRead(r.id)
}

func (r Read[C]) Matches(a *store.Archetype) bool {
	return a.Contains(r.id)
}

func (r Read[C]) Begin(w *store.World, _ tick.Window) Fetch[*C] {
	return &readFetch[C]{componentFetch: newComponentFetch(w, r.id)}
}

type readFetch[C any] struct {
	componentFetch
}

func (f *readFetch[C]) SetArchetype(a *store.Archetype) {
	f.setArchetype(a)
}

func (f *readFetch[C]) Fetch(e store.Entity, row store.TableRow) *C {
	return (*C)(f.ptr(e, row))
}

// Write fetches an exclusive pointer to component C and records a change for every
// fetched entity at the execution's thisRun tick.
type Write[C any] struct {
	id store.ComponentID
	by string
}

// NewWrite panics if C is not registered with components. by is recorded as the writer.
func NewWrite[C any](components *store.Components, by string) Write[C] {
	return Write[C]{id: store.MustComponentID[C](components), by: by}
}

func (q Write[C]) UpdateAccess(acc *access.FilteredAccess) {
	if acc.Access().HasRead(q.id) {
		panic(fmt.Errorf("%w: write of component %d after a read", ErrAccessConflict, q.id))
	}
	acc.AddWrite(q.id)
}

func (q Write[C]) Matches(a *store.Archetype) bool {
	return a.Contains(q.id)
}

func (q Write[C]) Begin(w *store.World, window tick.Window) Fetch[*C] {
	return &writeFetch[C]{componentFetch: newComponentFetch(w, q.id), now: window.ThisRun, by: q.by}
}

type writeFetch[C any] struct {
	componentFetch
	now tick.Tick
	by  string
}

func (f *writeFetch[C]) SetArchetype(a *store.Archetype) {
	f.setArchetype(a)
}

func (f *writeFetch[C]) Fetch(e store.Entity, row store.TableRow) *C {
	p := f.ptr(e, row)
	if f.sparse {
		f.set.MarkChanged(e, f.now, f.by)
	} else {
		f.table.MarkChanged(f.id, row, f.now, f.by)
	}
	return (*C)(p)
}

// With passes entities holding component C without reading it.
type With[C any] struct {
	id store.ComponentID
}

func NewWith[C any](components *store.Components) With[C] {
	return With[C]{id: store.MustComponentID[C](components)}
}

func (q With[C]) UpdateAccess(acc *access.FilteredAccess) {
	acc.AndWith(q.id)
}

func (q With[C]) Matches(a *store.Archetype) bool {
	return a.Contains(q.id)
}

func (q With[C]) Begin(*store.World, tick.Window) Fetch[bool] {
	return passAll{}
}

// Without passes entities not holding component C.
type Without[C any] struct {
	id store.ComponentID
}

func NewWithout[C any](components *store.Components) Without[C] {
	return Without[C]{id: store.MustComponentID[C](components)}
}

func (q Without[C]) UpdateAccess(acc *access.FilteredAccess) {
	acc.AndWithout(q.id)
}

func (q Without[C]) Matches(a *store.Archetype) bool {
	return !a.Contains(q.id)
}

func (q Without[C]) Begin(*store.World, tick.Window) Fetch[bool] {
	return passAll{}
}

type passAll struct{}

func (passAll) SetArchetype(*store.Archetype) {}

func (passAll) Fetch(store.Entity, store.TableRow) bool {
	return true
}

// Entities fetches the entity itself.
type Entities struct{}

func (Entities) UpdateAccess(*access.FilteredAccess) {}

func (Entities) Matches(*store.Archetype) bool {
	return true
}

func (Entities) Begin(*store.World, tick.Window) Fetch[store.Entity] {
	return entityFetch{}
}

type entityFetch struct{}

func (entityFetch) SetArchetype(*store.Archetype) {}

func (entityFetch) Fetch(e store.Entity, _ store.TableRow) store.Entity {
	return e
}
