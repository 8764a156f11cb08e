package trait

import (
	"reflect"
	"sync"
)

// Catalog holds one Registry per trait type. Registries are put during startup and looked
// up afterwards from any goroutine.
type Catalog struct {
	mu         sync.RWMutex
	registries map[reflect.Type]any
	sealed     bool
}

func NewCatalog() *Catalog {
	return &Catalog{registries: make(map[reflect.Type]any)}
}

// Put stores r as the registry of T. It panics with ErrCatalogSealed after Seal and with
// ErrDuplicateTrait if T already has a registry.
func Put[T any](c *Catalog, r *Registry[T]) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.sealed {
		panic(ErrCatalogSealed)
	}
	key := reflect.TypeFor[T]()
	if _, ok := c.registries[key]; ok {
		panic(ErrDuplicateTrait)
	}
	c.registries[key] = r
}

// Lookup returns the registry of T.
func Lookup[T any](c *Catalog) (*Registry[T], bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	r, ok := c.registries[reflect.TypeFor[T]()]
	if !ok {
		return nil, false
	}
	return r.(*Registry[T]), true
}

// Seal freezes the catalog.
func (c *Catalog) Seal() {
	c.mu.Lock()
	c.sealed = true
	c.mu.Unlock()
}

func (c *Catalog) Sealed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sealed
}

func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.registries)
}
