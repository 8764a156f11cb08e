// Package store is an in-memory component store with two physically different backends:
// archetype tables for dense storage and per-component sparse sets keyed by entity.
// Every stored value carries added/changed ticks and the location of its last writer.
//
// The store is not synchronized. Mutation must not overlap query execution; the
// schedule package arbitrates read access for concurrent queries.
package store

import (
	"fmt"
	"reflect"
	"runtime"
	"slices"
	"sync/atomic"

	"github.com/zeusync/traitquery/internal/core/observability/log"
	"github.com/zeusync/traitquery/internal/core/tick"
)

const defaultTableCapacity = 16

// location is where an entity currently lives.
type location struct {
	archetype    ArchetypeID
	archetypeRow int
	tableRow     TableRow
}

// World owns component storage and the change tick.
type World struct {
	log        log.Log
	components *Components
	sparse     *SparseSets

	tables     []*Table
	tableIndex map[uint64][]TableID

	archetypes     []*Archetype
	archetypeIndex map[uint64][]ArchetypeID

	locations  map[Entity]location
	nextEntity Entity

	changeTick    atomic.Uint32
	lastCheckTick tick.Tick
	capacity      int
}

type WorldOption func(*World)

// WithLogger sets the logger used for storage events.
func WithLogger(l log.Log) WorldOption {
	return func(w *World) {
		if l != nil {
			w.log = l
		}
	}
}

// WithComponents uses an existing component registry.
func WithComponents(c *Components) WorldOption {
	return func(w *World) {
		if c != nil {
			w.components = c
		}
	}
}

// WithTableCapacity sets the initial row capacity of new tables.
func WithTableCapacity(n int) WorldOption {
	return func(w *World) {
		if n > 0 {
			w.capacity = n
		}
	}
}

// NewWorld creates a world holding the empty archetype. The change tick starts at 1 so
// that a system that has never run (lastRun 0) sees everything spawned before it.
func NewWorld(opts ...WorldOption) *World {
	w := &World{
		log:            log.Nop(),
		components:     NewComponents(nil),
		sparse:         newSparseSets(),
		tableIndex:     make(map[uint64][]TableID),
		archetypeIndex: make(map[uint64][]ArchetypeID),
		locations:      make(map[Entity]location),
		capacity:       defaultTableCapacity,
	}
	for _, opt := range opts {
		opt(w)
	}
	w.changeTick.Store(1)
	w.getOrCreateArchetype(nil)
	return w
}

func (w *World) Components() *Components {
	return w.components
}

func (w *World) SparseSets() *SparseSets {
	return w.sparse
}

// Archetypes returns every archetype in creation order. The slice must not be modified.
func (w *World) Archetypes() []*Archetype {
	return w.archetypes
}

// Tables returns every table in creation order. The slice must not be modified.
func (w *World) Tables() []*Table {
	return w.tables
}

// Len returns the number of live entities.
func (w *World) Len() int {
	return len(w.locations)
}

// ChangeTick returns the tick stamped on writes made now.
func (w *World) ChangeTick() tick.Tick {
	return tick.Tick(w.changeTick.Load())
}

// IncrementChangeTick advances the change tick and returns its previous value, which is
// the thisRun tick of the run starting now.
func (w *World) IncrementChangeTick() tick.Tick {
	return tick.Tick(w.changeTick.Add(1) - 1)
}

// CheckChangeTicks clamps every stored tick once CheckThreshold ticks have passed since
// the previous check. Returns true if a check ran.
func (w *World) CheckChangeTicks() bool {
	now := w.ChangeTick()
	if uint32(now.RelativeTo(w.lastCheckTick)) < tick.CheckThreshold {
		return false
	}
	for _, t := range w.tables {
		t.checkTicks(now)
	}
	w.sparse.checkTicks(now)
	w.lastCheckTick = now
	w.log.Debug("change ticks checked", log.Uint32("tick", uint32(now)))
	return true
}

// Spawn creates an entity holding values. Every value's type must be registered.
func (w *World) Spawn(values ...any) (Entity, error) {
	return w.spawn(caller(2), values)
}

// Insert adds values to e. Values whose component is already present replace the old
// value and are marked changed; new components move e to another archetype.
func (w *World) Insert(e Entity, values ...any) error {
	if _, ok := w.locations[e]; !ok {
		return fmt.Errorf("insert into %d: %w", e, ErrEntityNotFound)
	}
	return w.insert(e, caller(2), values)
}

// Set replaces e's value of the component type of value and marks it changed.
func (w *World) Set(e Entity, value any) error {
	loc, ok := w.locations[e]
	if !ok {
		return fmt.Errorf("set on %d: %w", e, ErrEntityNotFound)
	}
	id, v, err := w.resolve(value)
	if err != nil {
		return err
	}
	if !w.archetypes[loc.archetype].Contains(id) {
		return fmt.Errorf("set %s on %d: %w", w.components.Name(id), e, ErrComponentNotFound)
	}
	w.write(e, loc, id, v, caller(2))
	return nil
}

// Get returns a pointer to e's T value. Reads do not mark anything changed.
func Get[T any](w *World, e Entity) (*T, bool) {
	id, ok := ComponentIDOf[T](w.components)
	if !ok {
		return nil, false
	}
	loc, ok := w.locations[e]
	if !ok {
		return nil, false
	}
	info, _ := w.components.Info(id)
	if info.Storage == StorageSparseSet {
		set, ok := w.sparse.Get(id)
		if !ok {
			return nil, false
		}
		p, ok := set.Get(e)
		return (*T)(p), ok
	}
	p, ok := w.archetypes[loc.archetype].table.Component(id, loc.tableRow)
	return (*T)(p), ok
}

// Contains reports whether e is alive and has component id.
func (w *World) Contains(e Entity, id ComponentID) bool {
	loc, ok := w.locations[e]
	return ok && w.archetypes[loc.archetype].Contains(id)
}

// Locate returns e's archetype and table row.
func (w *World) Locate(e Entity) (*Archetype, TableRow, bool) {
	loc, ok := w.locations[e]
	if !ok {
		return nil, 0, false
	}
	return w.archetypes[loc.archetype], loc.tableRow, true
}

func (w *World) spawn(by string, values []any) (Entity, error) {
	e := w.nextEntity
	w.nextEntity++

	empty := w.archetypes[0]
	row := empty.table.allocate(e)
	w.locations[e] = location{archetype: empty.id, archetypeRow: empty.push(e, row), tableRow: row}

	if err := w.insert(e, by, values); err != nil {
		w.detach(e, w.locations[e])
		delete(w.locations, e)
		return 0, err
	}
	return e, nil
}

func (w *World) insert(e Entity, by string, values []any) error {
	ids := make([]ComponentID, len(values))
	vals := make([]reflect.Value, len(values))
	for i, value := range values {
		id, v, err := w.resolve(value)
		if err != nil {
			return err
		}
		if slices.Contains(ids[:i], id) {
			return fmt.Errorf("%w: %s", ErrDuplicateComponent, w.components.Name(id))
		}
		ids[i], vals[i] = id, v
	}

	loc := w.locations[e]
	from := w.archetypes[loc.archetype]
	added := make([]ComponentID, 0, len(ids))
	for _, id := range ids {
		if !from.Contains(id) {
			added = append(added, id)
		}
	}
	if len(added) > 0 {
		loc = w.move(e, loc, append(from.Components(), added...))
	}

	now := w.ChangeTick()
	to := w.archetypes[loc.archetype]
	for i, id := range ids {
		if slices.Contains(added, id) {
			w.initialize(e, to, loc.tableRow, id, vals[i], now, by)
			continue
		}
		w.write(e, loc, id, vals[i], by)
	}
	return nil
}

// resolve maps a value to its registered component.
func (w *World) resolve(value any) (ComponentID, reflect.Value, error) {
	t := reflect.TypeOf(value)
	id, ok := w.components.Lookup(t)
	if !ok {
		return 0, reflect.Value{}, fmt.Errorf("%w: %v", ErrUnknownComponent, t)
	}
	return id, reflect.ValueOf(value), nil
}

// write replaces an existing value.
func (w *World) write(e Entity, loc location, id ComponentID, v reflect.Value, by string) {
	now := w.ChangeTick()
	info, _ := w.components.Info(id)
	if info.Storage == StorageSparseSet {
		w.sparse.getOrCreate(info).insert(e, v, now, by)
		return
	}
	col := w.archetypes[loc.archetype].table.columns[id]
	col.replace(int(loc.tableRow), v, now, by)
}

// initialize stores the first value of id for e.
func (w *World) initialize(e Entity, a *Archetype, row TableRow, id ComponentID, v reflect.Value, now tick.Tick, by string) {
	info, _ := w.components.Info(id)
	if info.Storage == StorageSparseSet {
		w.sparse.getOrCreate(info).insert(e, v, now, by)
		return
	}
	col := a.table.columns[id]
	col.push(v, tick.NewComponentTicks(now), by)
	if col.len() != int(row)+1 {
		panic(fmt.Sprintf("store: column %s out of step with table %d", info.Name, a.table.id))
	}
}

// move relocates e into the archetype for components. Table values shared by both tables
// are carried over with their ticks; new table columns are left for the caller to fill.
func (w *World) move(e Entity, loc location, components []ComponentID) location {
	from := w.archetypes[loc.archetype]
	to := w.getOrCreateArchetype(components)

	row := loc.tableRow
	if to.table != from.table {
		row = to.table.allocate(e)
		for cid, src := range from.table.columns {
			dst, ok := to.table.columns[cid]
			if !ok {
				continue
			}
			i := int(loc.tableRow)
			dst.push(src.value(i), src.ticks(i), src.changedBy[i])
		}
		w.removeTableRow(from.table, loc.tableRow)
	}
	w.removeArchetypeRow(from, loc.archetypeRow)

	next := location{archetype: to.id, archetypeRow: to.push(e, row), tableRow: row}
	w.locations[e] = next
	return next
}

// detach removes e from its table, archetype and sparse sets.
func (w *World) detach(e Entity, loc location) {
	a := w.archetypes[loc.archetype]
	for _, cid := range a.sparse {
		if set, ok := w.sparse.Get(cid); ok {
			set.remove(e)
		}
	}
	w.removeTableRow(a.table, loc.tableRow)
	w.removeArchetypeRow(a, loc.archetypeRow)
}

func (w *World) removeTableRow(t *Table, row TableRow) {
	moved, ok := t.swapRemove(row)
	if !ok {
		return
	}
	ml := w.locations[moved]
	ml.tableRow = row
	w.locations[moved] = ml
	w.archetypes[ml.archetype].entities[ml.archetypeRow].Row = row
}

func (w *World) removeArchetypeRow(a *Archetype, i int) {
	moved, ok := a.swapRemove(i)
	if !ok {
		return
	}
	ml := w.locations[moved]
	ml.archetypeRow = i
	w.locations[moved] = ml
}

func (w *World) getOrCreateArchetype(components []ComponentID) *Archetype {
	components = slices.Clone(components)
	slices.Sort(components)
	components = slices.Compact(components)

	key := hashComponents(components)
	for _, id := range w.archetypeIndex[key] {
		if slices.Equal(w.archetypes[id].components, components) {
			return w.archetypes[id]
		}
	}

	var tableComponents, sparse []ComponentID
	for _, cid := range components {
		info, _ := w.components.Info(cid)
		if info.Storage == StorageSparseSet {
			sparse = append(sparse, cid)
		} else {
			tableComponents = append(tableComponents, cid)
		}
	}

	a := newArchetype(ArchetypeID(len(w.archetypes)), w.getOrCreateTable(tableComponents), components, sparse)
	w.archetypes = append(w.archetypes, a)
	w.archetypeIndex[key] = append(w.archetypeIndex[key], a.id)
	w.log.Debug("archetype created",
		log.Uint32("archetype", uint32(a.id)),
		log.Uint32("table", uint32(a.table.id)),
		log.Int("components", len(components)),
	)
	return a
}

func (w *World) getOrCreateTable(components []ComponentID) *Table {
	key := hashComponents(components)
	for _, id := range w.tableIndex[key] {
		if slices.Equal(w.tables[id].components, components) {
			return w.tables[id]
		}
	}
	t := newTable(TableID(len(w.tables)), components, w.components, w.capacity)
	w.tables = append(w.tables, t)
	w.tableIndex[key] = append(w.tableIndex[key], t.id)
	return t
}

// caller returns "file:line" of the frame skip levels above caller's caller.
func caller(skip int) string {
	_, file, line, ok := runtime.Caller(skip)
	if !ok {
		return "unknown"
	}
	return fmt.Sprintf("%s:%d", file, line)
}
