package query

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/traitquery/internal/core/access"
	"github.com/zeusync/traitquery/internal/core/observability/metrics"
	"github.com/zeusync/traitquery/internal/core/store"
	"github.com/zeusync/traitquery/internal/core/tick"
)

type position struct{ X, Y float64 }

type velocity struct{ DX, DY float64 }

type frozen struct{}

func newWorld(t *testing.T) (*store.World, []store.Entity) {
	w := store.NewWorld()
	store.RegisterComponent[position](w.Components(), store.StorageTable)
	store.RegisterComponent[velocity](w.Components(), store.StorageTable)
	store.RegisterComponent[frozen](w.Components(), store.StorageSparseSet)

	var entities []store.Entity
	for _, values := range [][]any{
		{position{X: 1}, velocity{DX: 1}},
		{position{X: 2}, velocity{DX: 2}, frozen{}},
		{position{X: 3}},
	} {
		e, err := w.Spawn(values...)
		require.NoError(t, err)
		entities = append(entities, e)
	}
	return w, entities
}

func TestQuery(t *testing.T) {
	t.Run("Filters Archetypes", func(t *testing.T) {
		w, es := newWorld(t)
		c := w.Components()
		window := tick.Window{ThisRun: w.ChangeTick()}

		moving := New[*velocity]("moving", NewRead[velocity](c))
		require.Len(t, moving.Collect(w, window), 2)

		thawed := New[store.Entity]("thawed", Entities{}, NewWith[velocity](c), NewWithout[frozen](c))
		require.Equal(t, []store.Entity{es[0]}, thawed.Collect(w, window))

		still := New[*position]("still", NewRead[position](c), NewWithout[velocity](c))
		got := still.Collect(w, window)
		require.Len(t, got, 1)
		require.Equal(t, 3.0, got[0].X)
	})

	t.Run("Write Marks Changed", func(t *testing.T) {
		w, es := newWorld(t)
		c := w.Components()
		move := New[*position]("move", NewWrite[position](c, "move"), NewWith[velocity](c))
		w.IncrementChangeTick()

		seq, window := move.Run(w, 0)
		for _, p := range seq {
			p.Y = 5
		}

		for i, e := range es[:2] {
			p, ok := store.Get[position](w, e)
			require.True(t, ok)
			require.Equal(t, 5.0, p.Y, "entity %d", i)
		}

		a, row, _ := w.Locate(es[0])
		ticks, _ := a.Table().Ticks(store.MustComponentID[position](c), row)
		require.Equal(t, window.ThisRun, ticks.Changed)
		by, _ := a.Table().ChangedBy(store.MustComponentID[position](c), row)
		require.Equal(t, "move", by)

		a, row, _ = w.Locate(es[2])
		ticks, _ = a.Table().Ticks(store.MustComponentID[position](c), row)
		require.Equal(t, tick.Tick(1), ticks.Changed)
	})

	t.Run("Sparse Write", func(t *testing.T) {
		w, es := newWorld(t)
		q := New[*frozen]("freeze", NewWrite[frozen](w.Components(), "freeze"))
		w.IncrementChangeTick()
		_, window := q.Run(w, 0)
		require.Len(t, q.Collect(w, window), 1)

		set, ok := w.SparseSets().Get(store.MustComponentID[frozen](w.Components()))
		require.True(t, ok)
		changed, ok := set.ChangedTick(es[1])
		require.True(t, ok)
		require.Equal(t, window.ThisRun, changed)
	})

	t.Run("Early Break", func(t *testing.T) {
		w, _ := newWorld(t)
		q := New[store.Entity]("all", Entities{})
		n := 0
		for range q.Iter(w, tick.Window{}) {
			n++
			break
		}
		require.Equal(t, 1, n)
	})

	t.Run("Metrics", func(t *testing.T) {
		w, _ := newWorld(t)
		reg := prometheus.NewRegistry()
		q := New[*position]("positions", NewRead[position](w.Components())).WithMetrics(metrics.NewCollector("test", reg))
		q.Collect(w, tick.Window{})

		count, err := testutil.GatherAndCount(reg, "test_query_runs_total")
		require.NoError(t, err)
		require.Equal(t, 1, count)
	})
}

func TestAccess(t *testing.T) {
	w, _ := newWorld(t)
	c := w.Components()

	t.Run("Declared", func(t *testing.T) {
		q := New[*position]("move", NewWrite[position](c, "move"), NewWith[velocity](c), NewWithout[frozen](c))
		acc := q.Access()
		require.True(t, acc.Access().HasWrite(store.MustComponentID[position](c)))
		require.False(t, acc.Access().HasRead(store.MustComponentID[velocity](c)))
		require.Len(t, acc.FilterSets(), 1)
		require.Len(t, acc.FilterSets()[0].Without(), 1)

		reader := New[*position]("read", NewRead[position](c), NewWith[frozen](c))
		require.True(t, q.Access().IsCompatible(reader.Access()))
	})

	t.Run("Read After Write Panics", func(t *testing.T) {
		acc := access.NewFiltered()
		NewWrite[position](c, "x").UpdateAccess(acc)
		defer func() {
			err, ok := recover().(error)
			require.True(t, ok)
			require.True(t, errors.Is(err, ErrAccessConflict))
		}()
		NewRead[position](c).UpdateAccess(acc)
	})

	t.Run("Write After Read Panics", func(t *testing.T) {
		acc := access.NewFiltered()
		NewRead[position](c).UpdateAccess(acc)
		require.Panics(t, func() { NewWrite[position](c, "x").UpdateAccess(acc) })
	})
}
