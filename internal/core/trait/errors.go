package trait

import (
	"errors"
	"fmt"

	"github.com/zeusync/traitquery/internal/core/store"
)

var (
	ErrRegistrySealed = errors.New("trait registry is sealed")
	ErrCatalogSealed  = errors.New("trait catalog is sealed")
	ErrDuplicateImpl  = errors.New("component is already registered for this trait")
	ErrDuplicateTrait = errors.New("trait already has a registry in this catalog")
	ErrNotImplemented = errors.New("component does not implement trait")
	ErrNotInterface   = errors.New("trait type must be an interface")
)

// InvariantError reports a state the query engine must never reach, such as a filter that
// matched an archetype holding none of its implementors.
type InvariantError struct {
	Trait     string
	Archetype store.ArchetypeID
	Reason    string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("trait %s: archetype %d: %s", e.Trait, e.Archetype, e.Reason)
}

// AccessConflictError reports a query that reads a trait implementor it also writes.
type AccessConflictError struct {
	Trait     string
	Component store.ComponentID
	Name      string
}

func (e *AccessConflictError) Error() string {
	return fmt.Sprintf(
		"&%s conflicts with a previous access in this query. Shared access cannot coincide with exclusive access (component %s, id %d)",
		e.Trait, e.Name, e.Component,
	)
}
