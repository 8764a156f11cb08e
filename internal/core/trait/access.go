package trait

import (
	"github.com/zeusync/traitquery/internal/core/access"
)

// UpdateAccessOne declares the reads of a query over the single implementor of r's trait.
// Which implementor an entity holds is only known per archetype, so the declaration covers
// every candidate: the first candidate is required and read, and each further candidate
// is appended as an alternative. It panics with AccessConflictError when acc already
// declares write access to any candidate.
func UpdateAccessOne[T any](r *Registry[T], acc *access.FilteredAccess) {
	updateAccess(r, acc)
}

// UpdateAccessAll declares the reads of a query over every implementor of r's trait. The
// resulting filter matches entities holding at least one candidate. It panics with
// AccessConflictError like UpdateAccessOne.
func UpdateAccessAll[T any](r *Registry[T], acc *access.FilteredAccess) {
	updateAccess(r, acc)
}

func updateAccess[T any](r *Registry[T], acc *access.FilteredAccess) {
	next := acc.Clone()
	first := true
	for _, id := range r.Components() {
		if acc.Access().HasWrite(id) {
			panic(&AccessConflictError{Trait: r.name, Component: id, Name: r.componentName(id)})
		}
		if first {
			next.AndWith(id)
			next.Access().AddRead(id)
			first = false
			continue
		}
		alt := acc.Clone()
		alt.AndWith(id)
		alt.Access().AddRead(id)
		next.AppendOr(alt)
		next.ExtendAccess(alt)
	}
	*acc = *next
}
