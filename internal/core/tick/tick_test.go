package tick

import (
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestTick_IsNewerThan(t *testing.T) {
	t.Run("Window Boundaries", func(t *testing.T) {
		lastRun, thisRun := Tick(10), Tick(20)

		require.False(t, Tick(10).IsNewerThan(lastRun, thisRun), "tick equal to lastRun is not newer")
		require.True(t, Tick(20).IsNewerThan(lastRun, thisRun), "tick equal to thisRun is newer")
		require.True(t, Tick(11).IsNewerThan(lastRun, thisRun))
		require.False(t, Tick(5).IsNewerThan(lastRun, thisRun))
	})

	t.Run("Empty Window", func(t *testing.T) {
		require.False(t, Tick(7).IsNewerThan(7, 7))
	})

	t.Run("Wraparound", func(t *testing.T) {
		lastRun := Tick(^uint32(0) - 5)
		thisRun := Tick(4)

		require.True(t, Tick(0).IsNewerThan(lastRun, thisRun))
		require.True(t, Tick(^uint32(0)).IsNewerThan(lastRun, thisRun))
		require.False(t, Tick(^uint32(0)-10).IsNewerThan(lastRun, thisRun))
	})
}

func TestTick_Check(t *testing.T) {
	t.Run("Recent Tick Untouched", func(t *testing.T) {
		v := Tick(100)
		require.False(t, v.Check(200))
		require.Equal(t, Tick(100), v)
	})

	t.Run("Stale Tick Clamped", func(t *testing.T) {
		v := Tick(0)
		now := Tick(MaxChangeAge + 10)
		require.True(t, v.Check(now))
		require.Equal(t, Max, now.RelativeTo(v))
	})

	t.Run("ComponentTicks", func(t *testing.T) {
		c := NewComponentTicks(0)
		c.SetChanged(Tick(MaxChangeAge + 5))
		require.True(t, c.Check(Tick(MaxChangeAge+10)))
		require.Equal(t, Tick(10), c.Added)
		require.Equal(t, Tick(MaxChangeAge+5), c.Changed)
	})
}

func TestComponentTicks_Predicates(t *testing.T) {
	c := ComponentTicks{Added: 3, Changed: 8}

	require.False(t, c.IsAdded(3, 10))
	require.True(t, c.IsAdded(2, 10))
	require.True(t, c.IsChanged(3, 8))
	require.False(t, c.IsChanged(8, 10))
	require.True(t, Window{LastRun: 7, ThisRun: 8}.Contains(c.Changed))
}

func TestTick_IsNewerThanProperties(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		lastRun := Tick(rapid.Uint32().Draw(rt, "lastRun"))
		span := rapid.Uint32Range(1, MaxChangeAge).Draw(rt, "span")
		thisRun := lastRun + Tick(span)
		offset := rapid.Uint32Range(0, span).Draw(rt, "offset")
		v := lastRun + Tick(offset)

		// Inside the window exactly when strictly after lastRun.
		require.Equal(rt, offset > 0, v.IsNewerThan(lastRun, thisRun))
		require.False(rt, lastRun.IsNewerThan(lastRun, thisRun))
		require.True(rt, thisRun.IsNewerThan(lastRun, thisRun))
	})
}
