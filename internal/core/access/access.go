// Package access describes which components a query reads and writes, so a scheduler can
// decide ahead of execution whether two queries may run at the same time.
package access

import (
	"github.com/zeusync/traitquery/internal/core/store"
)

// Access is a set of read and write declarations. A write implies a read.
type Access struct {
	reads  set
	writes set
}

func (a *Access) AddRead(id store.ComponentID) {
	a.reads.insert(id)
}

func (a *Access) AddWrite(id store.ComponentID) {
	a.reads.insert(id)
	a.writes.insert(id)
}

func (a *Access) HasRead(id store.ComponentID) bool {
	return a.reads.has(id)
}

func (a *Access) HasWrite(id store.ComponentID) bool {
	return a.writes.has(id)
}

// Extend adds every declaration of other to a.
func (a *Access) Extend(other *Access) {
	a.reads.union(other.reads)
	a.writes.union(other.writes)
}

// IsCompatible reports whether a and other can be held at the same time: neither writes
// a component the other reads or writes.
func (a *Access) IsCompatible(other *Access) bool {
	return !a.writes.intersects(other.reads) && !other.writes.intersects(a.reads)
}

// Conflicts lists the components that make a and other incompatible.
func (a *Access) Conflicts(other *Access) []store.ComponentID {
	var c set
	for _, id := range a.writes.intersection(other.reads) {
		c.insert(id)
	}
	for _, id := range other.writes.intersection(a.reads) {
		c.insert(id)
	}
	return c.ones()
}

func (a *Access) Reads() []store.ComponentID {
	return a.reads.ones()
}

func (a *Access) Writes() []store.ComponentID {
	return a.writes.ones()
}

func (a *Access) Clone() Access {
	return Access{reads: a.reads.clone(), writes: a.writes.clone()}
}
