package store

import (
	"fmt"
	"strings"
)

// ComponentID is a dense identifier assigned to a component type when it is registered.
type ComponentID uint32

// Entity is an opaque key for one logical record.
type Entity uint64

// TableID indexes World tables.
type TableID uint32

// TableRow is an entity's position inside its table.
type TableRow uint32

// ArchetypeID indexes World archetypes.
type ArchetypeID uint32

// StorageType selects the backend that holds a component's values.
type StorageType uint8

const (
	// StorageTable keeps values in dense columns shared by every entity of an archetype.
	StorageTable StorageType = iota
	// StorageSparseSet keeps values in a per-component set keyed by entity.
	StorageSparseSet
)

func (s StorageType) String() string {
	switch s {
	case StorageTable:
		return "table"
	case StorageSparseSet:
		return "sparse"
	default:
		return fmt.Sprintf("storage(%d)", uint8(s))
	}
}

// ParseStorageType accepts "table", "sparse" or "sparse_set".
func ParseStorageType(s string) (StorageType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "table", "dense":
		return StorageTable, nil
	case "sparse", "sparse_set", "sparseset":
		return StorageSparseSet, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownStorage, s)
	}
}
