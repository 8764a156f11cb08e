package store

import (
	"reflect"
	"unsafe"

	"github.com/zeusync/traitquery/internal/core/tick"
)

// SparseSet stores the values of one component type keyed directly by entity.
type SparseSet struct {
	id       ComponentID
	dense    *column
	entities []Entity
	sparse   map[Entity]int
}

func newSparseSet(id ComponentID, t reflect.Type) *SparseSet {
	return &SparseSet{
		id:       id,
		dense:    newColumn(t, 8),
		entities: make([]Entity, 0, 8),
		sparse:   make(map[Entity]int, 8),
	}
}

func (s *SparseSet) ID() ComponentID {
	return s.id
}

func (s *SparseSet) Len() int {
	return len(s.entities)
}

// Contains reports whether e has a value in s.
func (s *SparseSet) Contains(e Entity) bool {
	_, ok := s.sparse[e]
	return ok
}

// Get returns the address of e's value.
func (s *SparseSet) Get(e Entity) (unsafe.Pointer, bool) {
	i, ok := s.sparse[e]
	if !ok {
		return nil, false
	}
	return s.dense.ptr(i), true
}

// GetWithTicks returns e's value address, its ticks and the location of its last writer.
func (s *SparseSet) GetWithTicks(e Entity) (unsafe.Pointer, tick.ComponentTicks, string, bool) {
	i, ok := s.sparse[e]
	if !ok {
		return nil, tick.ComponentTicks{}, "", false
	}
	return s.dense.ptr(i), s.dense.ticks(i), s.dense.changedBy[i], true
}

// ChangedTick returns the changed tick of e's value.
func (s *SparseSet) ChangedTick(e Entity) (tick.Tick, bool) {
	i, ok := s.sparse[e]
	if !ok {
		return 0, false
	}
	return s.dense.changed[i], true
}

// AddedTick returns the added tick of e's value.
func (s *SparseSet) AddedTick(e Entity) (tick.Tick, bool) {
	i, ok := s.sparse[e]
	if !ok {
		return 0, false
	}
	return s.dense.added[i], true
}

// MarkChanged records a write of e's value during tick now.
func (s *SparseSet) MarkChanged(e Entity, now tick.Tick, by string) bool {
	i, ok := s.sparse[e]
	if !ok {
		return false
	}
	s.dense.markChanged(i, now, by)
	return true
}

// Entities returns the entities in dense order. The slice must not be modified.
func (s *SparseSet) Entities() []Entity {
	return s.entities
}

// insert stores v for e. An existing value is replaced and marked changed.
func (s *SparseSet) insert(e Entity, v reflect.Value, now tick.Tick, caller string) {
	if i, ok := s.sparse[e]; ok {
		s.dense.replace(i, v, now, caller)
		return
	}
	s.sparse[e] = len(s.entities)
	s.entities = append(s.entities, e)
	s.dense.push(v, tick.NewComponentTicks(now), caller)
}

func (s *SparseSet) remove(e Entity) bool {
	i, ok := s.sparse[e]
	if !ok {
		return false
	}
	last := len(s.entities) - 1
	s.dense.swapRemove(i)
	if i != last {
		moved := s.entities[last]
		s.entities[i] = moved
		s.sparse[moved] = i
	}
	s.entities = s.entities[:last]
	delete(s.sparse, e)
	return true
}

// SparseSets holds one SparseSet per sparse component that has ever been inserted.
type SparseSets struct {
	sets map[ComponentID]*SparseSet
}

func newSparseSets() *SparseSets {
	return &SparseSets{sets: make(map[ComponentID]*SparseSet)}
}

// Get returns the set for id, if one exists.
func (s *SparseSets) Get(id ComponentID) (*SparseSet, bool) {
	set, ok := s.sets[id]
	return set, ok
}

func (s *SparseSets) getOrCreate(info ComponentInfo) *SparseSet {
	set, ok := s.sets[info.ID]
	if !ok {
		set = newSparseSet(info.ID, info.Type)
		s.sets[info.ID] = set
	}
	return set
}

func (s *SparseSets) checkTicks(now tick.Tick) {
	for _, set := range s.sets {
		set.dense.checkTicks(now)
	}
}
