package trait

import (
	"fmt"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"

	"github.com/zeusync/traitquery/internal/core/store"
	"github.com/zeusync/traitquery/internal/core/tick"
)

type Describer interface {
	Describe() string
}

type health struct{ HP int }

func (h health) Describe() string { return fmt.Sprintf("health:%d", h.HP) }

type armor struct{ AC int }

func (a armor) Describe() string { return fmt.Sprintf("armor:%d", a.AC) }

type shield struct{ Charge int }

func (s shield) Describe() string { return fmt.Sprintf("shield:%d", s.Charge) }

type tag struct{ Name string }

func (t tag) Describe() string { return "tag:" + t.Name }

type badge struct{ Rank int }

func (b badge) Describe() string { return fmt.Sprintf("badge:%d", b.Rank) }

type aura struct{ Level int }

func (a aura) Describe() string { return fmt.Sprintf("aura:%d", a.Level) }

type position struct{ X float64 }

type fixture struct {
	world    *store.World
	registry *Registry[Describer]
	ids      map[string]store.ComponentID
}

// newFixture registers table and sparse implementors interleaved, so registration order
// differs from storage grouping.
func newFixture() *fixture {
	w := store.NewWorld()
	b := NewBuilder[Describer](w.Components(), nil)
	ids := map[string]store.ComponentID{
		"health": Register[Describer, health](b, store.StorageTable),
		"tag":    Register[Describer, tag](b, store.StorageSparseSet),
		"armor":  Register[Describer, armor](b, store.StorageTable),
		"badge":  Register[Describer, badge](b, store.StorageSparseSet),
		"shield": Register[Describer, shield](b, store.StorageTable),
		"aura":   Register[Describer, aura](b, store.StorageSparseSet),
	}
	ids["position"] = store.RegisterComponent[position](w.Components(), store.StorageTable)
	return &fixture{world: w, registry: b.Build(), ids: ids}
}

func (f *fixture) spawn(t require.TestingT, values ...any) store.Entity {
	e, err := f.world.Spawn(values...)
	require.NoError(t, err)
	return e
}

func (f *fixture) view(t require.TestingT, e store.Entity, window tick.Window) ReadTraits[Describer] {
	a, row, ok := f.world.Locate(e)
	require.True(t, ok)
	return NewReadTraits(f.registry, a.Table(), row, f.world.SparseSets(), window)
}

func describe(refs []Ref[Describer]) []string {
	out := make([]string, 0, len(refs))
	for _, r := range refs {
		out = append(out, r.Value().Describe())
	}
	return out
}

// panicValue runs fn and returns what it panicked with.
func panicValue(fn func()) (v any) {
	defer func() { v = recover() }()
	fn()
	return nil
}

func TestBuilder(t *testing.T) {
	t.Run("Splits By Storage", func(t *testing.T) {
		f := newFixture()
		r := f.registry

		require.Equal(t, len(r.tableComponents), len(r.tableCtors))
		require.Equal(t, len(r.sparseComponents), len(r.sparseCtors))
		require.Equal(t, []store.ComponentID{f.ids["health"], f.ids["armor"], f.ids["shield"]}, r.tableComponents)
		require.Equal(t, []store.ComponentID{f.ids["tag"], f.ids["badge"], f.ids["aura"]}, r.sparseComponents)
		require.Equal(t, 6, r.Len())
		require.Equal(t, append(append([]store.ComponentID{}, r.tableComponents...), r.sparseComponents...), r.Components())
		require.Equal(t, "trait.Describer", r.Name())
	})

	t.Run("Entries In Registration Order", func(t *testing.T) {
		f := newFixture()
		var ids []store.ComponentID
		for id, ctor := range f.registry.TableEntries() {
			require.NotNil(t, ctor)
			ids = append(ids, id)
		}
		for id := range f.registry.SparseEntries() {
			ids = append(ids, id)
		}
		require.Equal(t, f.registry.Components(), ids)
	})

	t.Run("Duplicate Panics", func(t *testing.T) {
		w := store.NewWorld()
		b := NewBuilder[Describer](w.Components(), nil)
		Register[Describer, health](b, store.StorageTable)
		require.PanicsWithError(t, ErrDuplicateImpl.Error(), func() {
			Register[Describer, health](b, store.StorageTable)
		})
	})

	t.Run("Sealed After Build", func(t *testing.T) {
		w := store.NewWorld()
		b := NewBuilder[Describer](w.Components(), nil)
		b.Build()
		require.PanicsWithError(t, ErrRegistrySealed.Error(), func() {
			Register[Describer, health](b, store.StorageTable)
		})
	})

	t.Run("Rejects Non Implementor", func(t *testing.T) {
		w := store.NewWorld()
		b := NewBuilder[Describer](w.Components(), nil)
		require.PanicsWithError(t, ErrNotImplemented.Error(), func() {
			Register[Describer, position](b, store.StorageTable)
		})
		require.PanicsWithError(t, ErrNotInterface.Error(), func() {
			NewBuilder[health](w.Components(), nil)
		})
	})

	t.Run("Unknown Component Panics", func(t *testing.T) {
		w := store.NewWorld()
		b := NewBuilder[Describer](w.Components(), nil)
		ctor, ok := CtorFor[Describer, health]()
		require.True(t, ok)
		require.PanicsWithError(t, store.ErrUnknownComponent.Error(), func() {
			b.Add(store.ComponentID(42), ctor)
		})
	})

	t.Run("Matches", func(t *testing.T) {
		f := newFixture()
		has := func(names ...string) func(store.ComponentID) bool {
			return func(id store.ComponentID) bool {
				for _, n := range names {
					if f.ids[n] == id {
						return true
					}
				}
				return false
			}
		}
		require.True(t, f.registry.MatchesOne(has("badge", "position")))
		require.False(t, f.registry.MatchesOne(has("health", "tag")))
		require.False(t, f.registry.MatchesOne(has("position")))
		require.True(t, f.registry.MatchesAny(has("health", "tag")))
		require.False(t, f.registry.MatchesAny(has("position")))
	})
}

func TestCatalog(t *testing.T) {
	f := newFixture()
	c := NewCatalog()

	_, ok := Lookup[Describer](c)
	require.False(t, ok)

	Put(c, f.registry)
	r, ok := Lookup[Describer](c)
	require.True(t, ok)
	require.Same(t, f.registry, r)
	require.Equal(t, 1, c.Len())

	require.PanicsWithError(t, ErrDuplicateTrait.Error(), func() { Put(c, f.registry) })

	c.Seal()
	require.True(t, c.Sealed())
	require.PanicsWithError(t, ErrCatalogSealed.Error(), func() { Put[fmt.Stringer](c, &Registry[fmt.Stringer]{}) })
}

func TestCtorFor(t *testing.T) {
	ctor, ok := CtorFor[Describer, armor]()
	require.True(t, ok)

	a := armor{AC: 7}
	d := ctor(unsafe.Pointer(&a))
	require.Equal(t, "armor:7", d.Describe())

	a.AC = 8
	require.Equal(t, "armor:8", d.Describe(), "reference aliases the stored value")

	_, ok = CtorFor[Describer, position]()
	require.False(t, ok)
}
