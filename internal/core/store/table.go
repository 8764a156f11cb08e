package store

import (
	"slices"
	"unsafe"

	"github.com/zeusync/traitquery/internal/core/tick"
)

// Table is dense storage for every entity whose table-resident components are identical.
// Several archetypes may share one table when they differ only in sparse components.
type Table struct {
	id         TableID
	components []ComponentID // sorted
	columns    map[ComponentID]*column
	entities   []Entity
}

func newTable(id TableID, components []ComponentID, infos *Components, capacity int) *Table {
	t := &Table{
		id:         id,
		components: components,
		columns:    make(map[ComponentID]*column, len(components)),
		entities:   make([]Entity, 0, capacity),
	}
	for _, cid := range components {
		info, _ := infos.Info(cid)
		t.columns[cid] = newColumn(info.Type, capacity)
	}
	return t
}

func (t *Table) ID() TableID {
	return t.id
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.entities)
}

// Entities returns the entity stored at each row. The slice must not be modified.
func (t *Table) Entities() []Entity {
	return t.entities
}

// Components returns the sorted IDs of the columns of t.
func (t *Table) Components() []ComponentID {
	return slices.Clone(t.components)
}

// Has reports whether t has a column for id.
func (t *Table) Has(id ComponentID) bool {
	_, ok := t.columns[id]
	return ok
}

// Component returns the address of id's value at row, or false if t has no such column
// or row.
func (t *Table) Component(id ComponentID, row TableRow) (unsafe.Pointer, bool) {
	col, ok := t.cell(id, row)
	if !ok {
		return nil, false
	}
	return col.ptr(int(row)), true
}

// Ticks returns the added and changed ticks of id at row.
func (t *Table) Ticks(id ComponentID, row TableRow) (tick.ComponentTicks, bool) {
	col, ok := t.cell(id, row)
	if !ok {
		return tick.ComponentTicks{}, false
	}
	return col.ticks(int(row)), true
}

// ChangedBy returns the code location that last wrote id at row.
func (t *Table) ChangedBy(id ComponentID, row TableRow) (string, bool) {
	col, ok := t.cell(id, row)
	if !ok {
		return "", false
	}
	return col.changedBy[row], true
}

// ChangedTicks returns the changed-tick column of id, indexed by row.
func (t *Table) ChangedTicks(id ComponentID) ([]tick.Tick, bool) {
	col, ok := t.columns[id]
	if !ok {
		return nil, false
	}
	return col.changed, true
}

// AddedTicks returns the added-tick column of id, indexed by row.
func (t *Table) AddedTicks(id ComponentID) ([]tick.Tick, bool) {
	col, ok := t.columns[id]
	if !ok {
		return nil, false
	}
	return col.added, true
}

// MarkChanged records a write of id at row during tick now.
func (t *Table) MarkChanged(id ComponentID, row TableRow, now tick.Tick, by string) bool {
	col, ok := t.cell(id, row)
	if !ok {
		return false
	}
	col.markChanged(int(row), now, by)
	return true
}

func (t *Table) cell(id ComponentID, row TableRow) (*column, bool) {
	col, ok := t.columns[id]
	if !ok || int(row) >= len(t.entities) {
		return nil, false
	}
	return col, true
}

// allocate appends a row for e. Callers must push one value into every column.
func (t *Table) allocate(e Entity) TableRow {
	t.entities = append(t.entities, e)
	return TableRow(len(t.entities) - 1)
}

// swapRemove deletes row and returns the entity that moved into it, if any.
func (t *Table) swapRemove(row TableRow) (Entity, bool) {
	last := len(t.entities) - 1
	for _, col := range t.columns {
		col.swapRemove(int(row))
	}
	moved := t.entities[last]
	t.entities[row] = moved
	t.entities = t.entities[:last]
	return moved, int(row) != last
}

func (t *Table) checkTicks(now tick.Tick) {
	for _, col := range t.columns {
		col.checkTicks(now)
	}
}
