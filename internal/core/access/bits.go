package access

import (
	"math/bits"

	"github.com/zeusync/traitquery/internal/core/store"
)

const bitsPerWord = 64

// set is a growable bitmask of component IDs.
type set []uint64

func (s set) has(id store.ComponentID) bool {
	word := int(id / bitsPerWord)
	if word >= len(s) {
		return false
	}
	return s[word]&(1<<(id%bitsPerWord)) != 0
}

func (s *set) insert(id store.ComponentID) {
	word := int(id / bitsPerWord)
	for word >= len(*s) {
		*s = append(*s, 0)
	}
	(*s)[word] |= 1 << (id % bitsPerWord)
}

func (s *set) union(other set) {
	for len(*s) < len(other) {
		*s = append(*s, 0)
	}
	for i, w := range other {
		(*s)[i] |= w
	}
}

func (s set) intersects(other set) bool {
	n := min(len(s), len(other))
	for i := 0; i < n; i++ {
		if s[i]&other[i] != 0 {
			return true
		}
	}
	return false
}

func (s set) intersection(other set) []store.ComponentID {
	var out []store.ComponentID
	n := min(len(s), len(other))
	for i := 0; i < n; i++ {
		out = appendOnes(out, i, s[i]&other[i])
	}
	return out
}

func (s set) ones() []store.ComponentID {
	var out []store.ComponentID
	for i, w := range s {
		out = appendOnes(out, i, w)
	}
	return out
}

func (s set) clone() set {
	if s == nil {
		return nil
	}
	out := make(set, len(s))
	copy(out, s)
	return out
}

func appendOnes(out []store.ComponentID, word int, w uint64) []store.ComponentID {
	for w != 0 {
		bit := bits.TrailingZeros64(w)
		out = append(out, store.ComponentID(word*bitsPerWord+bit))
		w &^= 1 << bit
	}
	return out
}
