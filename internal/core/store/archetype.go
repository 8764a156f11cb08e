package store

import (
	"encoding/binary"
	"slices"

	"github.com/cespare/xxhash/v2"
)

// ArchetypeEntity is an entity together with its row in the archetype's table.
type ArchetypeEntity struct {
	Entity Entity
	Row    TableRow
}

// Archetype groups every entity that has exactly the same set of components.
type Archetype struct {
	id         ArchetypeID
	table      *Table
	components []ComponentID // sorted, table and sparse
	sparse     []ComponentID // sorted
	set        map[ComponentID]struct{}
	entities   []ArchetypeEntity
}

func newArchetype(id ArchetypeID, table *Table, components, sparse []ComponentID) *Archetype {
	set := make(map[ComponentID]struct{}, len(components))
	for _, cid := range components {
		set[cid] = struct{}{}
	}
	return &Archetype{
		id:         id,
		table:      table,
		components: components,
		sparse:     sparse,
		set:        set,
		entities:   make([]ArchetypeEntity, 0, 16),
	}
}

func (a *Archetype) ID() ArchetypeID {
	return a.id
}

// Table returns the table backing the table-resident components of a.
func (a *Archetype) Table() *Table {
	return a.table
}

// Contains reports whether every entity of a has component id, in either backend.
func (a *Archetype) Contains(id ComponentID) bool {
	_, ok := a.set[id]
	return ok
}

// Components returns the sorted component set of a.
func (a *Archetype) Components() []ComponentID {
	return slices.Clone(a.components)
}

// SparseComponents returns the sorted sparse-set resident components of a.
func (a *Archetype) SparseComponents() []ComponentID {
	return slices.Clone(a.sparse)
}

// Entities returns the entities of a with their table rows. The slice must not be modified.
func (a *Archetype) Entities() []ArchetypeEntity {
	return a.entities
}

func (a *Archetype) Len() int {
	return len(a.entities)
}

func (a *Archetype) push(e Entity, row TableRow) int {
	a.entities = append(a.entities, ArchetypeEntity{Entity: e, Row: row})
	return len(a.entities) - 1
}

// swapRemove deletes index i and returns the entity that moved into it, if any.
func (a *Archetype) swapRemove(i int) (Entity, bool) {
	last := len(a.entities) - 1
	moved := a.entities[last]
	a.entities[i] = moved
	a.entities = a.entities[:last]
	return moved.Entity, i != last
}

// hashComponents keys a sorted component set.
func hashComponents(ids []ComponentID) uint64 {
	buf := make([]byte, 0, 4*len(ids))
	for _, id := range ids {
		buf = binary.LittleEndian.AppendUint32(buf, uint32(id))
	}
	return xxhash.Sum64(buf)
}
