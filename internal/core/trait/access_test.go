package trait

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/zeusync/traitquery/internal/core/access"
	"github.com/zeusync/traitquery/internal/core/query"
	"github.com/zeusync/traitquery/internal/core/store"
)

func TestUpdateAccess(t *testing.T) {
	t.Run("Reads Every Candidate", func(t *testing.T) {
		f := newFixture()
		acc := access.NewFiltered()
		UpdateAccessOne(f.registry, acc)

		require.ElementsMatch(t, f.registry.Components(), acc.Access().Reads())
		require.Empty(t, acc.Access().Writes())
		require.Len(t, acc.FilterSets(), f.registry.Len())
		for i, fs := range acc.FilterSets() {
			require.Equal(t, []store.ComponentID{f.registry.Components()[i]}, fs.With())
		}
	})

	t.Run("Read Only Queries Compose", func(t *testing.T) {
		f := newFixture()
		acc := access.NewFiltered()
		require.NotPanics(t, func() {
			UpdateAccessOne(f.registry, acc)
			UpdateAccessAll(f.registry, acc)
		})

		a := query.New[store.Entity]("a", query.Entities{}, NewOneChanged(f.registry))
		b := query.New[ReadTraits[Describer]]("b", NewAll(f.registry))
		require.True(t, a.Access().IsCompatible(b.Access()))
	})

	t.Run("Write Then Read Panics", func(t *testing.T) {
		f := newFixture()
		err, ok := panicValue(func() {
			query.New[*armor]("bad", query.NewWrite[armor](f.world.Components(), "test"), NewOneChanged(f.registry))
		}).(error)
		require.True(t, ok)

		var conflict *AccessConflictError
		require.ErrorAs(t, err, &conflict)
		require.Equal(t, f.ids["armor"], conflict.Component)
		require.Contains(t, err.Error(), "&trait.Describer conflicts with a previous access in this query")
	})

	t.Run("Writer And Reader Conflict", func(t *testing.T) {
		f := newFixture()
		writer := query.New[*badge]("writer", query.NewWrite[badge](f.world.Components(), "test"))
		reader := query.New[store.Entity]("reader", query.Entities{}, NewOneChanged(f.registry))

		require.False(t, writer.Access().IsCompatible(reader.Access()))
		require.Equal(t, []store.ComponentID{f.ids["badge"]}, writer.Access().Conflicts(reader.Access()))
	})

	t.Run("Unrelated Writer Is Compatible", func(t *testing.T) {
		f := newFixture()
		writer := query.New[*position]("writer", query.NewWrite[position](f.world.Components(), "test"))
		reader := query.New[ReadTraits[Describer]]("reader", NewAll(f.registry))
		require.True(t, writer.Access().IsCompatible(reader.Access()))
	})
}

func TestUpdateAccess_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		candidates := rapid.SliceOfNDistinct(rapid.Uint32Range(0, 200), 1, 8, rapid.ID[uint32]).Draw(rt, "candidates")
		writes := rapid.SliceOfDistinct(rapid.Uint32Range(0, 200), rapid.ID[uint32]).Draw(rt, "writes")

		r := &Registry[Describer]{name: "Describer"}
		for _, c := range candidates {
			r.tableComponents = append(r.tableComponents, store.ComponentID(c))
			r.tableCtors = append(r.tableCtors, nil)
		}
		acc := access.NewFiltered()
		for _, w := range writes {
			acc.Access().AddWrite(store.ComponentID(w))
		}

		conflicting := slices.ContainsFunc(candidates, func(c uint32) bool { return slices.Contains(writes, c) })
		v := panicValue(func() { UpdateAccessOne(r, acc) })
		if conflicting {
			_, ok := v.(*AccessConflictError)
			require.True(rt, ok, "expected access conflict, got %v", v)
			return
		}
		require.Nil(rt, v)
		for _, c := range candidates {
			require.True(rt, acc.Access().HasRead(store.ComponentID(c)))
		}
		require.Len(rt, acc.FilterSets(), len(candidates))
	})
}
