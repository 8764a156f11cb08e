package store

import (
	"fmt"
	"reflect"
)

// ComponentInfo describes a registered component type.
type ComponentInfo struct {
	ID      ComponentID
	Name    string
	Type    reflect.Type
	Storage StorageType
}

// Components is the component type registry of a World.
//
// Storage overrides, keyed by type name ("Health") or qualified name ("game.Health"),
// take precedence over the storage type passed at registration.
type Components struct {
	infos     []ComponentInfo
	byType    map[reflect.Type]ComponentID
	overrides map[string]StorageType
}

// NewComponents creates an empty registry with optional storage overrides.
func NewComponents(overrides map[string]StorageType) *Components {
	return &Components{
		infos:     make([]ComponentInfo, 0, 16),
		byType:    make(map[reflect.Type]ComponentID, 16),
		overrides: overrides,
	}
}

// RegisterComponent registers T and returns its ID. Registering an already known type
// returns the existing ID and keeps its original storage type.
func RegisterComponent[T any](c *Components, storage StorageType) ComponentID {
	return c.register(reflect.TypeFor[T](), storage)
}

// ComponentIDOf returns the ID of T if it has been registered.
func ComponentIDOf[T any](c *Components) (ComponentID, bool) {
	id, ok := c.byType[reflect.TypeFor[T]()]
	return id, ok
}

// MustComponentID returns the ID of T or panics if T is unknown.
func MustComponentID[T any](c *Components) ComponentID {
	id, ok := ComponentIDOf[T](c)
	if !ok {
		panic(fmt.Errorf("%w: %s", ErrUnknownComponent, reflect.TypeFor[T]()))
	}
	return id
}

func (c *Components) register(t reflect.Type, storage StorageType) ComponentID {
	if t == nil || t.Kind() == reflect.Pointer || t.Kind() == reflect.Interface {
		panic(fmt.Sprintf("store: component type must be a non-pointer concrete type, got %v", t))
	}
	if id, ok := c.byType[t]; ok {
		return id
	}
	if s, ok := c.overrides[t.String()]; ok {
		storage = s
	} else if s, ok = c.overrides[t.Name()]; ok {
		storage = s
	}
	id := ComponentID(len(c.infos))
	c.infos = append(c.infos, ComponentInfo{
		ID:      id,
		Name:    t.String(),
		Type:    t,
		Storage: storage,
	})
	c.byType[t] = id
	return id
}

// Lookup returns the ID registered for t.
func (c *Components) Lookup(t reflect.Type) (ComponentID, bool) {
	id, ok := c.byType[t]
	return id, ok
}

// Info returns the registration for id.
func (c *Components) Info(id ComponentID) (ComponentInfo, bool) {
	if int(id) >= len(c.infos) {
		return ComponentInfo{}, false
	}
	return c.infos[id], true
}

// Name returns the registered name of id, or a placeholder for unknown IDs.
func (c *Components) Name(id ComponentID) string {
	if info, ok := c.Info(id); ok {
		return info.Name
	}
	return fmt.Sprintf("component#%d", id)
}

// Len returns the number of registered component types.
func (c *Components) Len() int {
	return len(c.infos)
}
