package cvrdt

import mapset "github.com/deckarep/golang-set/v2"

// GSet is a grow-only set. Merge is set union.
type GSet[X comparable] struct {
	values mapset.Set[X]
}

var _ Grow[*GSet[string], mapset.Set[string], string, string, bool] = (*GSet[string])(nil)

// NewGSet returns a set holding a copy of the given elements. A nil
// payload is the empty set.
func NewGSet[X comparable](payload mapset.Set[X]) *GSet[X] {
	return &GSet[X]{values: copySet(payload)}
}

func (s *GSet[X]) Clone() *GSet[X] {
	return &GSet[X]{values: s.values.Clone()}
}

// Payload returns a copy of the elements. The copy is not safe for
// concurrent use.
func (s *GSet[X]) Payload() mapset.Set[X] {
	return s.values.Clone()
}

// Add inserts an element.
func (s *GSet[X]) Add(x X) error {
	s.values.Add(x)
	return nil
}

func (s *GSet[X]) Le(other *GSet[X]) (bool, error) {
	return s.values.IsSubset(other.values), nil
}

func (s *GSet[X]) Merge(other *GSet[X]) (*GSet[X], error) {
	return &GSet[X]{values: s.values.Union(other.values)}, nil
}

// Query reports whether x is in the set.
func (s *GSet[X]) Query(x X) bool {
	return s.values.Contains(x)
}

// Len returns the number of elements.
func (s *GSet[X]) Len() int {
	return s.values.Cardinality()
}

// copySet copies any mapset.Set into a thread-unsafe one. Binary set
// operations of mapset require both operands to have the same
// implementation, so every set a CvRDT holds comes from here.
func copySet[X comparable](in mapset.Set[X]) mapset.Set[X] {
	out := mapset.NewThreadUnsafeSet[X]()
	if in == nil {
		return out
	}
	in.Each(func(x X) bool {
		out.Add(x)
		return false
	})
	return out
}
