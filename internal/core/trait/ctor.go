package trait

import (
	"unsafe"
)

// Ctor reinterprets the address of a stored component value as a reference of the trait
// type T. The returned value aliases the storage; it is valid for as long as the address is.
type Ctor[T any] func(ptr unsafe.Pointer) T

// CtorFor derives the constructor for component type C. It reports false when *C does
// not implement T.
func CtorFor[T, C any]() (Ctor[T], bool) {
	if _, ok := any((*C)(nil)).(T); !ok {
		return nil, false
	}
	return func(ptr unsafe.Pointer) T {
		return any((*C)(ptr)).(T)
	}, true
}
