// Package tick implements the change-detection clock shared by the component store and
// queries. Ticks are 32-bit counters that wrap; comparisons are always made relative to the
// tick of the current run, so wraparound is harmless as long as stored ticks are
// periodically clamped with Check.
package tick

import "math"

// CheckThreshold is the number of ticks that may elapse between two calls to
// ComponentTicks.Check before stale ticks risk being read as new.
const CheckThreshold uint32 = 518_400_000

// MaxChangeAge is the largest age a tick can report. Anything older is clamped to it.
const MaxChangeAge uint32 = math.MaxUint32 - (2*CheckThreshold - 1)

// Tick identifies a run boundary.
type Tick uint32

// Max is the oldest representable age.
const Max = Tick(MaxChangeAge)

// RelativeTo returns the number of ticks from other to t, wrapping on overflow.
func (t Tick) RelativeTo(other Tick) Tick {
	return t - other
}

// IsNewerThan reports whether t happened after lastRun and no later than thisRun.
//
// A tick equal to lastRun is not newer; a tick equal to thisRun is newer, provided the
// window is not empty.
func (t Tick) IsNewerThan(lastRun, thisRun Tick) bool {
	sinceInsert := min(uint32(thisRun.RelativeTo(t)), MaxChangeAge)
	sinceSystem := min(uint32(thisRun.RelativeTo(lastRun)), MaxChangeAge)
	return sinceSystem > sinceInsert
}

// Check clamps t so that it is never older than MaxChangeAge relative to now.
// Returns true if t was modified.
func (t *Tick) Check(now Tick) bool {
	if uint32(now.RelativeTo(*t)) > MaxChangeAge {
		*t = now.RelativeTo(Max)
		return true
	}
	return false
}

// Window is the (lastRun, thisRun) pair captured once when a query starts.
type Window struct {
	LastRun Tick
	ThisRun Tick
}

// Contains reports whether t falls in the window.
func (w Window) Contains(t Tick) bool {
	return t.IsNewerThan(w.LastRun, w.ThisRun)
}

// ComponentTicks are the added and changed ticks stored next to every component value.
type ComponentTicks struct {
	Added   Tick
	Changed Tick
}

// NewComponentTicks returns ticks for a value inserted at t.
func NewComponentTicks(t Tick) ComponentTicks {
	return ComponentTicks{Added: t, Changed: t}
}

// IsAdded reports whether the value was inserted inside the window.
func (c ComponentTicks) IsAdded(lastRun, thisRun Tick) bool {
	return c.Added.IsNewerThan(lastRun, thisRun)
}

// IsChanged reports whether the value was inserted or mutated inside the window.
func (c ComponentTicks) IsChanged(lastRun, thisRun Tick) bool {
	return c.Changed.IsNewerThan(lastRun, thisRun)
}

// SetChanged records a mutation at t.
func (c *ComponentTicks) SetChanged(t Tick) {
	c.Changed = t
}

// Check clamps both ticks. See Tick.Check.
func (c *ComponentTicks) Check(now Tick) bool {
	added := c.Added.Check(now)
	changed := c.Changed.Check(now)
	return added || changed
}
