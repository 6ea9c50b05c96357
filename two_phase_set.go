package cvrdt

import (
	"fmt"

	mapset "github.com/deckarep/golang-set/v2"
)

// TwoPhaseSetPayload is the state of a TwoPhaseSet: every element ever
// added, and the tombstones of those removed since.
type TwoPhaseSetPayload[X comparable] struct {
	Added   mapset.Set[X]
	Removed mapset.Set[X]
}

// TwoPhaseSet is a set supporting removal, where a removed element can
// never come back. It is a pair of grow-only sets; an element is a member
// when it has been added and not removed.
type TwoPhaseSet[X comparable] struct {
	added   mapset.Set[X]
	removed mapset.Set[X]
}

var _ Shrink[*TwoPhaseSet[string], TwoPhaseSetPayload[string], string, string, bool] = (*TwoPhaseSet[string])(nil)

// NewTwoPhaseSet validates the payload and returns a set holding a copy of
// it. Nil sets are empty. Every tombstone must belong to an added element.
func NewTwoPhaseSet[X comparable](payload TwoPhaseSetPayload[X]) (*TwoPhaseSet[X], error) {
	s := &TwoPhaseSet[X]{
		added:   copySet(payload.Added),
		removed: copySet(payload.Removed),
	}
	if !s.removed.IsSubset(s.added) {
		stray := s.removed.Difference(s.added)
		return nil, violation("TwoPhaseSet", "removed elements were never added",
			"%d stray, e.g. %v", stray.Cardinality(), firstOf(stray))
	}
	return s, nil
}

func (s *TwoPhaseSet[X]) Clone() *TwoPhaseSet[X] {
	return &TwoPhaseSet[X]{
		added:   s.added.Clone(),
		removed: s.removed.Clone(),
	}
}

// Payload returns a copy of both sets. The copies are not safe for
// concurrent use.
func (s *TwoPhaseSet[X]) Payload() TwoPhaseSetPayload[X] {
	return TwoPhaseSetPayload[X]{
		Added:   s.added.Clone(),
		Removed: s.removed.Clone(),
	}
}

// Add inserts an element. Adding an element that was already removed has
// no visible effect.
func (s *TwoPhaseSet[X]) Add(x X) error {
	s.added.Add(x)
	return nil
}

// Del removes a member of the set, permanently.
func (s *TwoPhaseSet[X]) Del(x X) error {
	if !s.Query(x) {
		return violation("TwoPhaseSet", "only members can be removed", "%v", x)
	}
	s.removed.Add(x)
	return nil
}

func (s *TwoPhaseSet[X]) Le(other *TwoPhaseSet[X]) (bool, error) {
	return s.added.IsSubset(other.added) && s.removed.IsSubset(other.removed), nil
}

func (s *TwoPhaseSet[X]) Merge(other *TwoPhaseSet[X]) (*TwoPhaseSet[X], error) {
	return &TwoPhaseSet[X]{
		added:   s.added.Union(other.added),
		removed: s.removed.Union(other.removed),
	}, nil
}

// Query reports whether x is a member: added, and not removed.
func (s *TwoPhaseSet[X]) Query(x X) bool {
	return s.added.Contains(x) && !s.removed.Contains(x)
}

// Members returns the current members, in no particular order.
func (s *TwoPhaseSet[X]) Members() []X {
	return s.added.Difference(s.removed).ToSlice()
}

// firstOf returns the element with the smallest printed form, so error
// text doesn't depend on map iteration order.
func firstOf[X comparable](s mapset.Set[X]) interface{} {
	var first interface{}
	var firstText string
	found := false
	s.Each(func(x X) bool {
		text := fmt.Sprint(x)
		if !found || text < firstText {
			first, firstText, found = x, text, true
		}
		return false
	})
	return first
}
