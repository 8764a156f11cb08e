// Package trait queries components through the interfaces they implement. A Registry
// records which component types implement a trait and how to view their storage as that
// trait; the fetches in this package walk an entity's table and sparse storage to produce
// those views and to detect which implementors were added or changed since a system last ran.
package trait

import (
	"iter"
	"reflect"

	"github.com/zeusync/traitquery/internal/core/observability/log"
	"github.com/zeusync/traitquery/internal/core/store"
)

// Entry is one implementation of a trait.
type Entry[T any] struct {
	Component store.ComponentID
	Ctor      Ctor[T]
}

// Registry lists the implementors of trait T, split by storage backend. Entries keep
// registration order and each component list is index aligned with its ctor list.
// A Registry is immutable once built.
type Registry[T any] struct {
	name       string
	components *store.Components

	tableComponents  []store.ComponentID
	tableCtors       []Ctor[T]
	sparseComponents []store.ComponentID
	sparseCtors      []Ctor[T]
}

// Name returns the trait's type name.
func (r *Registry[T]) Name() string {
	return r.name
}

// TableEntries yields the table-stored implementors in registration order.
func (r *Registry[T]) TableEntries() iter.Seq2[store.ComponentID, Ctor[T]] {
	return entries(r.tableComponents, r.tableCtors)
}

// SparseEntries yields the sparse-stored implementors in registration order.
func (r *Registry[T]) SparseEntries() iter.Seq2[store.ComponentID, Ctor[T]] {
	return entries(r.sparseComponents, r.sparseCtors)
}

// Components returns every implementor, table components first.
func (r *Registry[T]) Components() []store.ComponentID {
	out := make([]store.ComponentID, 0, r.Len())
	out = append(out, r.tableComponents...)
	return append(out, r.sparseComponents...)
}

// Len returns the number of implementors.
func (r *Registry[T]) Len() int {
	return len(r.tableComponents) + len(r.sparseComponents)
}

// MatchesOne reports whether exactly one implementor satisfies contains.
func (r *Registry[T]) MatchesOne(contains func(store.ComponentID) bool) bool {
	n := 0
	for _, id := range r.Components() {
		if contains(id) {
			n++
		}
	}
	return n == 1
}

// MatchesAny reports whether at least one implementor satisfies contains.
func (r *Registry[T]) MatchesAny(contains func(store.ComponentID) bool) bool {
	for _, id := range r.Components() {
		if contains(id) {
			return true
		}
	}
	return false
}

func (r *Registry[T]) componentName(id store.ComponentID) string {
	if r.components == nil {
		return ""
	}
	return r.components.Name(id)
}

func entries[T any](ids []store.ComponentID, ctors []Ctor[T]) iter.Seq2[store.ComponentID, Ctor[T]] {
	return func(yield func(store.ComponentID, Ctor[T]) bool) {
		for i, id := range ids {
			if !yield(id, ctors[i]) {
				return
			}
		}
	}
}

// Builder collects the implementors of T during startup. It is not safe for concurrent use.
type Builder[T any] struct {
	log        log.Log
	components *store.Components
	registry   *Registry[T]
	seen       map[store.ComponentID]struct{}
	sealed     bool
}

// NewBuilder starts a registry for trait T. It panics with ErrNotInterface if T is not an
// interface type. A nil logger discards output.
func NewBuilder[T any](components *store.Components, logger log.Log) *Builder[T] {
	t := reflect.TypeFor[T]()
	if t.Kind() != reflect.Interface {
		panic(ErrNotInterface)
	}
	if logger == nil {
		logger = log.Nop()
	}
	return &Builder[T]{
		log:        logger,
		components: components,
		registry:   &Registry[T]{name: t.String(), components: components},
		seen:       make(map[store.ComponentID]struct{}),
	}
}

// Add appends an implementor to the list of its storage backend. It panics with
// ErrRegistrySealed after Build, ErrDuplicateImpl if id was already added and
// store.ErrUnknownComponent if id is not registered with the store.
func (b *Builder[T]) Add(id store.ComponentID, ctor Ctor[T]) *Builder[T] {
	if b.sealed {
		panic(ErrRegistrySealed)
	}
	if _, ok := b.seen[id]; ok {
		panic(ErrDuplicateImpl)
	}
	info, ok := b.components.Info(id)
	if !ok {
		panic(store.ErrUnknownComponent)
	}
	b.seen[id] = struct{}{}

	r := b.registry
	switch info.Storage {
	case store.StorageSparseSet:
		r.sparseComponents = append(r.sparseComponents, id)
		r.sparseCtors = append(r.sparseCtors, ctor)
	default:
		r.tableComponents = append(r.tableComponents, id)
		r.tableCtors = append(r.tableCtors, ctor)
	}
	return b
}

// Build seals the builder and returns the registry.
func (b *Builder[T]) Build() *Registry[T] {
	b.sealed = true
	b.log.Info("trait registry built",
		log.String("trait", b.registry.name),
		log.Int("table", len(b.registry.tableComponents)),
		log.Int("sparse", len(b.registry.sparseComponents)),
	)
	return b.registry
}

// Register adds component type C as an implementor of T, registering C with the store
// under storage if needed. It panics with ErrNotImplemented if *C does not implement T.
func Register[T, C any](b *Builder[T], storage store.StorageType) store.ComponentID {
	ctor, ok := CtorFor[T, C]()
	if !ok {
		panic(ErrNotImplemented)
	}
	id := store.RegisterComponent[C](b.components, storage)
	b.Add(id, ctor)
	return id
}
