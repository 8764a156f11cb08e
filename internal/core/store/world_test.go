package store

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zeusync/traitquery/internal/core/tick"
)

type position struct{ X, Y float64 }

type velocity struct{ DX, DY float64 }

type marker struct{ Label string }

func newTestWorld() (*World, ComponentID, ComponentID, ComponentID) {
	w := NewWorld()
	pos := RegisterComponent[position](w.Components(), StorageTable)
	vel := RegisterComponent[velocity](w.Components(), StorageTable)
	mark := RegisterComponent[marker](w.Components(), StorageSparseSet)
	return w, pos, vel, mark
}

func TestComponents(t *testing.T) {
	t.Run("Register Is Idempotent", func(t *testing.T) {
		c := NewComponents(nil)
		a := RegisterComponent[position](c, StorageTable)
		b := RegisterComponent[position](c, StorageSparseSet)
		require.Equal(t, a, b)

		info, ok := c.Info(a)
		require.True(t, ok)
		require.Equal(t, StorageTable, info.Storage)
		require.Equal(t, 1, c.Len())
	})

	t.Run("Overrides Win", func(t *testing.T) {
		c := NewComponents(map[string]StorageType{"position": StorageSparseSet})
		id := RegisterComponent[position](c, StorageTable)
		info, _ := c.Info(id)
		require.Equal(t, StorageSparseSet, info.Storage)
	})

	t.Run("Pointer Types Rejected", func(t *testing.T) {
		c := NewComponents(nil)
		require.Panics(t, func() { RegisterComponent[*position](c, StorageTable) })
	})

	t.Run("ParseStorageType", func(t *testing.T) {
		s, err := ParseStorageType("Sparse")
		require.NoError(t, err)
		require.Equal(t, StorageSparseSet, s)

		_, err = ParseStorageType("heap")
		require.ErrorIs(t, err, ErrUnknownStorage)
	})
}

func TestWorld_Spawn(t *testing.T) {
	t.Run("Splits Backends", func(t *testing.T) {
		w, pos, vel, mark := newTestWorld()

		e, err := w.Spawn(position{X: 1}, marker{Label: "a"})
		require.NoError(t, err)

		a, row, ok := w.Locate(e)
		require.True(t, ok)
		require.True(t, a.Contains(pos))
		require.True(t, a.Contains(mark))
		require.False(t, a.Contains(vel))
		require.True(t, a.Table().Has(pos))
		require.False(t, a.Table().Has(mark))
		require.Equal(t, []ComponentID{mark}, a.SparseComponents())

		p, ok := a.Table().Component(pos, row)
		require.True(t, ok)
		require.Equal(t, 1.0, (*position)(p).X)

		set, ok := w.SparseSets().Get(mark)
		require.True(t, ok)
		ptr, ticks, by, ok := set.GetWithTicks(e)
		require.True(t, ok)
		require.Equal(t, "a", (*marker)(ptr).Label)
		require.Equal(t, tick.NewComponentTicks(w.ChangeTick()), ticks)
		require.Contains(t, by, "world_test.go")
	})

	t.Run("Unknown Component", func(t *testing.T) {
		w, _, _, _ := newTestWorld()
		_, err := w.Spawn(struct{ Z int }{})
		require.ErrorIs(t, err, ErrUnknownComponent)
		require.Equal(t, 0, w.Len())
	})

	t.Run("Duplicate Component", func(t *testing.T) {
		w, _, _, _ := newTestWorld()
		_, err := w.Spawn(position{}, position{})
		require.ErrorIs(t, err, ErrDuplicateComponent)
	})

	t.Run("Archetypes Shared", func(t *testing.T) {
		w, _, _, _ := newTestWorld()
		a, _ := w.Spawn(position{}, velocity{})
		b, _ := w.Spawn(velocity{}, position{})
		c, _ := w.Spawn(position{}, velocity{}, marker{})

		aa, _, _ := w.Locate(a)
		ba, _, _ := w.Locate(b)
		ca, _, _ := w.Locate(c)
		require.Same(t, aa, ba)
		require.NotSame(t, aa, ca)
		require.Same(t, aa.Table(), ca.Table(), "sparse components do not split tables")
	})
}

func TestWorld_Insert(t *testing.T) {
	t.Run("Moves Table Rows And Keeps Ticks", func(t *testing.T) {
		w, pos, vel, _ := newTestWorld()
		first, _ := w.Spawn(position{X: 1})
		second, _ := w.Spawn(position{X: 2})
		spawnTick := w.ChangeTick()

		w.IncrementChangeTick()
		require.NoError(t, w.Insert(first, velocity{DX: 3}))

		a, row, _ := w.Locate(first)
		require.True(t, a.Contains(vel))
		ticks, ok := a.Table().Ticks(pos, row)
		require.True(t, ok)
		require.Equal(t, spawnTick, ticks.Added)
		velTicks, _ := a.Table().Ticks(vel, row)
		require.Equal(t, spawnTick+1, velTicks.Added)

		p, ok := Get[position](w, first)
		require.True(t, ok)
		require.Equal(t, 1.0, p.X)

		p, ok = Get[position](w, second)
		require.True(t, ok)
		require.Equal(t, 2.0, p.X)
		sa, srow, _ := w.Locate(second)
		require.Equal(t, []ArchetypeEntity{{Entity: second, Row: srow}}, sa.Entities())
	})

	t.Run("Replace Marks Changed", func(t *testing.T) {
		w, pos, _, mark := newTestWorld()
		e, _ := w.Spawn(position{}, marker{Label: "old"})
		before := w.ChangeTick()
		w.IncrementChangeTick()

		require.NoError(t, w.Insert(e, marker{Label: "new"}))
		require.NoError(t, w.Set(e, position{X: 9}))

		set, _ := w.SparseSets().Get(mark)
		added, _ := set.AddedTick(e)
		changed, _ := set.ChangedTick(e)
		require.Equal(t, before, added)
		require.Equal(t, before+1, changed)

		a, row, _ := w.Locate(e)
		ticks, _ := a.Table().Ticks(pos, row)
		require.Equal(t, before, ticks.Added)
		require.Equal(t, before+1, ticks.Changed)
	})

	t.Run("Errors", func(t *testing.T) {
		w, _, _, _ := newTestWorld()
		e, _ := w.Spawn(position{})
		require.ErrorIs(t, w.Insert(Entity(99), position{}), ErrEntityNotFound)
		require.ErrorIs(t, w.Set(e, velocity{}), ErrComponentNotFound)
		require.ErrorIs(t, w.Set(Entity(99), velocity{}), ErrEntityNotFound)
	})
}

func TestWorld_ChangeTicks(t *testing.T) {
	t.Run("Increment Returns Previous", func(t *testing.T) {
		w := NewWorld()
		require.Equal(t, tick.Tick(1), w.ChangeTick())
		require.Equal(t, tick.Tick(1), w.IncrementChangeTick())
		require.Equal(t, tick.Tick(2), w.ChangeTick())
	})

	t.Run("Check Clamps Stale Ticks", func(t *testing.T) {
		w, pos, _, mark := newTestWorld()
		e, _ := w.Spawn(position{}, marker{})
		require.False(t, w.CheckChangeTicks())

		w.changeTick.Store(tick.MaxChangeAge + 100)
		require.True(t, w.CheckChangeTicks())

		now := w.ChangeTick()
		a, row, _ := w.Locate(e)
		ticks, _ := a.Table().Ticks(pos, row)
		require.Equal(t, tick.Max, now.RelativeTo(ticks.Added))

		set, _ := w.SparseSets().Get(mark)
		changed, _ := set.ChangedTick(e)
		require.Equal(t, tick.Max, now.RelativeTo(changed))
	})
}
