package store

import (
	"reflect"
	"unsafe"

	"github.com/zeusync/traitquery/internal/core/tick"
)

// column stores the values of one component type contiguously, together with their
// change-detection ticks and the location of the last writer.
type column struct {
	data      reflect.Value // []T
	added     []tick.Tick
	changed   []tick.Tick
	changedBy []string
}

func newColumn(t reflect.Type, capacity int) *column {
	return &column{
		data:      reflect.MakeSlice(reflect.SliceOf(t), 0, capacity),
		added:     make([]tick.Tick, 0, capacity),
		changed:   make([]tick.Tick, 0, capacity),
		changedBy: make([]string, 0, capacity),
	}
}

func (c *column) len() int {
	return len(c.added)
}

func (c *column) push(v reflect.Value, ticks tick.ComponentTicks, caller string) {
	c.data = reflect.Append(c.data, v)
	c.added = append(c.added, ticks.Added)
	c.changed = append(c.changed, ticks.Changed)
	c.changedBy = append(c.changedBy, caller)
}

// replace overwrites the value at i and records a change at t.
func (c *column) replace(i int, v reflect.Value, t tick.Tick, caller string) {
	c.data.Index(i).Set(v)
	c.changed[i] = t
	c.changedBy[i] = caller
}

func (c *column) markChanged(i int, t tick.Tick, caller string) {
	c.changed[i] = t
	c.changedBy[i] = caller
}

// ptr returns the address of the value at i. It stays valid until the column grows or
// the row is removed.
func (c *column) ptr(i int) unsafe.Pointer {
	return c.data.Index(i).Addr().UnsafePointer()
}

func (c *column) value(i int) reflect.Value {
	return c.data.Index(i)
}

func (c *column) ticks(i int) tick.ComponentTicks {
	return tick.ComponentTicks{Added: c.added[i], Changed: c.changed[i]}
}

// swapRemove moves the last element into i and truncates.
func (c *column) swapRemove(i int) {
	last := c.len() - 1
	if i != last {
		c.data.Index(i).Set(c.data.Index(last))
		c.added[i] = c.added[last]
		c.changed[i] = c.changed[last]
		c.changedBy[i] = c.changedBy[last]
	}
	c.data.Index(last).SetZero()
	c.data = c.data.Slice(0, last)
	c.added = c.added[:last]
	c.changed = c.changed[:last]
	c.changedBy = c.changedBy[:last]
}

func (c *column) checkTicks(now tick.Tick) {
	for i := range c.added {
		c.added[i].Check(now)
		c.changed[i].Check(now)
	}
}
