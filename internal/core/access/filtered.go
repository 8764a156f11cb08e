package access

import (
	"github.com/zeusync/traitquery/internal/core/store"
)

// Filters is one conjunction of required and excluded components.
type Filters struct {
	with    set
	without set
}

// With returns the components this conjunction requires.
func (f Filters) With() []store.ComponentID {
	return f.with.ones()
}

// Without returns the components this conjunction excludes.
func (f Filters) Without() []store.ComponentID {
	return f.without.ones()
}

// IsRuledOutBy reports whether no entity can satisfy both f and other.
func (f Filters) IsRuledOutBy(other Filters) bool {
	return f.with.intersects(other.without) || f.without.intersects(other.with)
}

func (f Filters) clone() Filters {
	return Filters{with: f.with.clone(), without: f.without.clone()}
}

// FilteredAccess is an Access restricted to the entities matched by a disjunction of
// Filters. Two accesses whose filters can never match the same entity never conflict.
type FilteredAccess struct {
	access     Access
	required   set
	filterSets []Filters
}

// NewFiltered returns an access matching every entity and touching nothing.
func NewFiltered() *FilteredAccess {
	return &FilteredAccess{filterSets: []Filters{{}}}
}

func (f *FilteredAccess) Access() *Access {
	return &f.access
}

// AddRead declares a read of id and requires id to be present.
func (f *FilteredAccess) AddRead(id store.ComponentID) {
	f.access.AddRead(id)
	f.required.insert(id)
	f.AndWith(id)
}

// AddWrite declares a write of id and requires id to be present.
func (f *FilteredAccess) AddWrite(id store.ComponentID) {
	f.access.AddWrite(id)
	f.required.insert(id)
	f.AndWith(id)
}

// AndWith requires id in every conjunction.
func (f *FilteredAccess) AndWith(id store.ComponentID) {
	for i := range f.filterSets {
		f.filterSets[i].with.insert(id)
	}
}

// AndWithout excludes id in every conjunction.
func (f *FilteredAccess) AndWithout(id store.ComponentID) {
	for i := range f.filterSets {
		f.filterSets[i].without.insert(id)
	}
}

// AppendOr adds the conjunctions of other as alternatives.
func (f *FilteredAccess) AppendOr(other *FilteredAccess) {
	for _, fs := range other.filterSets {
		f.filterSets = append(f.filterSets, fs.clone())
	}
}

// ExtendAccess merges the read/write declarations of other without touching filters.
func (f *FilteredAccess) ExtendAccess(other *FilteredAccess) {
	f.access.Extend(&other.access)
}

// Extend combines f with other as a conjunction: both must match.
func (f *FilteredAccess) Extend(other *FilteredAccess) {
	f.access.Extend(&other.access)
	f.required.union(other.required)

	combined := make([]Filters, 0, len(f.filterSets)*len(other.filterSets))
	for _, a := range f.filterSets {
		for _, b := range other.filterSets {
			c := a.clone()
			c.with.union(b.with)
			c.without.union(b.without)
			combined = append(combined, c)
		}
	}
	f.filterSets = combined
}

// Required returns the components every matched entity must have.
func (f *FilteredAccess) Required() []store.ComponentID {
	return f.required.ones()
}

// FilterSets returns the conjunctions of f. The slice must not be modified.
func (f *FilteredAccess) FilterSets() []Filters {
	return f.filterSets
}

// IsCompatible reports whether f and other may run at the same time, either because their
// accesses do not overlap or because every pair of conjunctions is mutually exclusive.
func (f *FilteredAccess) IsCompatible(other *FilteredAccess) bool {
	if f.access.IsCompatible(&other.access) {
		return true
	}
	for _, a := range f.filterSets {
		for _, b := range other.filterSets {
			if !a.IsRuledOutBy(b) {
				return false
			}
		}
	}
	return true
}

// Conflicts lists the components that make f and other incompatible, or nil.
func (f *FilteredAccess) Conflicts(other *FilteredAccess) []store.ComponentID {
	if f.IsCompatible(other) {
		return nil
	}
	return f.access.Conflicts(&other.access)
}

func (f *FilteredAccess) Clone() *FilteredAccess {
	out := &FilteredAccess{
		access:     f.access.Clone(),
		required:   f.required.clone(),
		filterSets: make([]Filters, len(f.filterSets)),
	}
	for i, fs := range f.filterSets {
		out.filterSets[i] = fs.clone()
	}
	return out
}
