package trait

import (
	"github.com/zeusync/traitquery/internal/core/store"
	"github.com/zeusync/traitquery/internal/core/tick"
)

// Ref is a read-only view of one trait implementor, bundled with the change ticks it had
// when it was fetched and the window of the query that fetched it.
type Ref[T any] struct {
	value     T
	component store.ComponentID
	ticks     tick.ComponentTicks
	window    tick.Window
	changedBy string
}

func newRef[T any](value T, id store.ComponentID, f fetched, window tick.Window) Ref[T] {
	return Ref[T]{
		value:     value,
		component: id,
		ticks:     f.ticks,
		window:    window,
		changedBy: f.changedBy,
	}
}

func (r Ref[T]) Value() T {
	return r.value
}

// Component returns the concrete component behind the reference.
func (r Ref[T]) Component() store.ComponentID {
	return r.component
}

// IsAdded reports whether the value was added after the system last ran.
func (r Ref[T]) IsAdded() bool {
	return r.ticks.IsAdded(r.window.LastRun, r.window.ThisRun)
}

// IsChanged reports whether the value was added or written after the system last ran.
func (r Ref[T]) IsChanged() bool {
	return r.ticks.IsChanged(r.window.LastRun, r.window.ThisRun)
}

func (r Ref[T]) Added() tick.Tick {
	return r.ticks.Added
}

func (r Ref[T]) LastChanged() tick.Tick {
	return r.ticks.Changed
}

// ChangedBy returns the code location that last wrote the value.
func (r Ref[T]) ChangedBy() string {
	return r.changedBy
}
