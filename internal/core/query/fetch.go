package query

import (
	"github.com/zeusync/traitquery/internal/core/access"
	"github.com/zeusync/traitquery/internal/core/store"
	"github.com/zeusync/traitquery/internal/core/tick"
)

// Data describes what a query fetches for each matched entity.
type Data[Item any] interface {
	// UpdateAccess adds the components the fetch reads or writes to acc. It panics when
	// the fetch conflicts with an access already declared in acc.
	UpdateAccess(acc *access.FilteredAccess)
	// Matches reports whether entities of the archetype can be fetched.
	Matches(a *store.Archetype) bool
	// Begin prepares a fetch over w for one query execution.
	Begin(w *store.World, window tick.Window) Fetch[Item]
}

// Fetch produces items for one query execution. SetArchetype is called before the
// entities of each matched archetype are fetched.
type Fetch[Item any] interface {
	SetArchetype(a *store.Archetype)
	Fetch(e store.Entity, row store.TableRow) Item
}

// Filter is a Data yielding whether an entity passes.
type Filter = Data[bool]
