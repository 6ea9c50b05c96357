// Package cvrdttest checks that a CvRDT implementation obeys the laws of
// a join-semilattice, using gopter property tests.
//
// A law suite is described by generators of payloads, a constructor that
// rebuilds an instance from a payload, and optionally an equality on
// payloads for types whose payloads reflect.DeepEqual cannot compare,
// such as sets:
//
//	cvrdttest.CheckGrow(t, cvrdttest.GrowLaws[*cvrdt.GCounter, cvrdt.GCounterPayload, cvrdt.Unit]{
//		Two:    cvrdttest.SizedPairs[cvrdt.GCounterPayload](sizes, counterOfSize),
//		Three:  cvrdttest.SizedTriples[cvrdt.GCounterPayload](sizes, counterOfSize),
//		Update: cvrdttest.WithUpdates[cvrdt.GCounterPayload, cvrdt.Unit](counters, gen.Const(cvrdt.Unit{})),
//		New:    cvrdt.NewGCounter,
//	})
package cvrdttest

import (
	"reflect"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/prop"
)

// Lattice is the part of cvrdt.Grow the laws exercise.
type Lattice[T, P, U any] interface {
	Clone() T
	Payload() P
	Add(U) error
	Le(T) (bool, error)
	Merge(T) (T, error)
}

// Shrinkable is the part of cvrdt.Shrink the laws exercise.
type Shrinkable[T, P, U any] interface {
	Lattice[T, P, U]
	Del(U) error
}

type Pair[T any] struct {
	X, Y T
}

type Triple[T any] struct {
	X, Y, Z T
}

// WithUpdate is an instance's payload and an update to apply to it.
type WithUpdate[T, U any] struct {
	X T
	U U
}

// Pairs draws two independent values from g.
func Pairs[T any](g gopter.Gen) gopter.Gen {
	return gopter.CombineGens(g, g).Map(func(vs []interface{}) Pair[T] {
		return Pair[T]{X: vs[0].(T), Y: vs[1].(T)}
	})
}

// Triples draws three independent values from g.
func Triples[T any](g gopter.Gen) gopter.Gen {
	return gopter.CombineGens(g, g, g).Map(func(vs []interface{}) Triple[T] {
		return Triple[T]{X: vs[0].(T), Y: vs[1].(T), Z: vs[2].(T)}
	})
}

// SizedPairs draws a size from sizes, then two values of that size. Types
// that only merge with instances of the same shape, like counters over a
// fixed number of replicas, need this.
func SizedPairs[T any](sizes gopter.Gen, of func(size int) gopter.Gen) gopter.Gen {
	return sizes.FlatMap(func(v interface{}) gopter.Gen {
		return Pairs[T](of(v.(int)))
	}, reflect.TypeOf(Pair[T]{}))
}

// SizedTriples is SizedPairs with three values.
func SizedTriples[T any](sizes gopter.Gen, of func(size int) gopter.Gen) gopter.Gen {
	return sizes.FlatMap(func(v interface{}) gopter.Gen {
		return Triples[T](of(v.(int)))
	}, reflect.TypeOf(Triple[T]{}))
}

// WithUpdates draws an instance payload and an independent update.
func WithUpdates[T, U any](instances, updates gopter.Gen) gopter.Gen {
	return gopter.CombineGens(instances, updates).Map(func(vs []interface{}) WithUpdate[T, U] {
		return WithUpdate[T, U]{X: vs[0].(T), U: vs[1].(U)}
	})
}

// WithDependentUpdates draws an instance payload, then an update chosen
// for it, e.g. one of its members to delete.
func WithDependentUpdates[T, U any](instances gopter.Gen, updates func(T) gopter.Gen) gopter.Gen {
	return instances.FlatMap(func(v interface{}) gopter.Gen {
		x := v.(T)
		return updates(x).Map(func(u U) WithUpdate[T, U] {
			return WithUpdate[T, U]{X: x, U: u}
		})
	}, reflect.TypeOf(WithUpdate[T, U]{}))
}

// GrowLaws describes how to check the laws every CvRDT obeys.
type GrowLaws[T, P, U any] struct {
	// Two generates Pair[P] of mergeable payloads.
	Two gopter.Gen
	// Three generates Triple[P] of mergeable payloads.
	Three gopter.Gen
	// Update generates WithUpdate[P, U] of updates Add accepts.
	Update gopter.Gen
	// New builds an instance from a payload.
	New func(P) (T, error)
	// Equal compares payloads. Defaults to reflect.DeepEqual.
	Equal func(P, P) bool
	// Parameters default to gopter.DefaultTestParameters().
	Parameters *gopter.TestParameters
}

// ShrinkLaws describes how to check the additional laws of a CvRDT that
// supports Del.
type ShrinkLaws[T, P, U any] struct {
	// Deletion generates WithUpdate[P, U] of updates Del accepts.
	Deletion gopter.Gen
	// New builds an instance from a payload.
	New func(P) (T, error)
	// Equal compares payloads. Defaults to reflect.DeepEqual.
	Equal func(P, P) bool
	// Parameters default to gopter.DefaultTestParameters().
	Parameters *gopter.TestParameters
}

type checker[T Lattice[T, P, U], P, U any] struct {
	t     *testing.T
	ctor  func(P) (T, error)
	equal func(P, P) bool
}

func newChecker[T Lattice[T, P, U], P, U any](t *testing.T, ctor func(P) (T, error), equal func(P, P) bool) checker[T, P, U] {
	if ctor == nil {
		t.Fatal("New is required")
	}
	if equal == nil {
		equal = func(a, b P) bool { return reflect.DeepEqual(a, b) }
	}
	return checker[T, P, U]{t: t, ctor: ctor, equal: equal}
}

func (c checker[T, P, U]) build(ps ...P) ([]T, bool) {
	res := make([]T, 0, len(ps))
	for _, p := range ps {
		x, err := c.ctor(p)
		if err != nil {
			c.t.Logf("new %+v: %v", p, err)
			return nil, false
		}
		res = append(res, x)
	}
	return res, true
}

func (c checker[T, P, U]) merge(x, y T) (T, bool) {
	m, err := x.Merge(y)
	if err != nil {
		c.t.Logf("merge %+v with %+v: %v", x.Payload(), y.Payload(), err)
		return m, false
	}
	return m, true
}

func (c checker[T, P, U]) le(x, y T) bool {
	le, err := x.Le(y)
	if err != nil {
		c.t.Logf("le %+v, %+v: %v", x.Payload(), y.Payload(), err)
		return false
	}
	return le
}

func (c checker[T, P, U]) same(what string, x, y T) bool {
	if !c.equal(x.Payload(), y.Payload()) {
		c.t.Logf("%s: %+v != %+v", what, x.Payload(), y.Payload())
		return false
	}
	return true
}

func parameters(p *gopter.TestParameters) *gopter.TestParameters {
	if p == nil {
		return gopter.DefaultTestParameters()
	}
	return p
}

// CheckGrow checks that merge is associative, commutative and idempotent,
// that it is the least upper bound for Le, and that Add only moves up.
func CheckGrow[T Lattice[T, P, U], P, U any](t *testing.T, laws GrowLaws[T, P, U]) {
	t.Helper()
	c := newChecker[T, P, U](t, laws.New, laws.Equal)
	properties := gopter.NewProperties(parameters(laws.Parameters))

	properties.Property("merge is associative", prop.ForAll(
		func(in Triple[P]) bool {
			xs, ok := c.build(in.X, in.Y, in.Z)
			if !ok {
				return false
			}
			x, y, z := xs[0], xs[1], xs[2]
			xy, ok1 := c.merge(x, y)
			yz, ok2 := c.merge(y, z)
			if !ok1 || !ok2 {
				return false
			}
			left, ok1 := c.merge(xy, z)
			right, ok2 := c.merge(x, yz)
			return ok1 && ok2 && c.same("associativity", left, right)
		}, laws.Three))

	properties.Property("merge is commutative", prop.ForAll(
		func(in Pair[P]) bool {
			xs, ok := c.build(in.X, in.Y)
			if !ok {
				return false
			}
			xy, ok1 := c.merge(xs[0], xs[1])
			yx, ok2 := c.merge(xs[1], xs[0])
			return ok1 && ok2 && c.same("commutativity", xy, yx)
		}, laws.Two))

	properties.Property("merge is idempotent", prop.ForAll(
		func(in Pair[P]) bool {
			xs, ok := c.build(in.X, in.Y)
			if !ok {
				return false
			}
			x, y := xs[0], xs[1]
			xx, ok := c.merge(x, x)
			if !ok || !c.same("self-merge", xx, x) {
				return false
			}
			xy, ok := c.merge(x, y)
			if !ok {
				return false
			}
			xyy, ok := c.merge(xy, y)
			return ok && c.same("idempotence", xyy, xy)
		}, laws.Two))

	properties.Property("merge does not modify its operands", prop.ForAll(
		func(in Pair[P]) bool {
			xs, ok := c.build(in.X, in.Y)
			if !ok {
				return false
			}
			if _, ok := c.merge(xs[0], xs[1]); !ok {
				return false
			}
			return c.equal(xs[0].Payload(), in.X) && c.equal(xs[1].Payload(), in.Y)
		}, laws.Two))

	properties.Property("merge is an upper bound", prop.ForAll(
		func(in Pair[P]) bool {
			xs, ok := c.build(in.X, in.Y)
			if !ok {
				return false
			}
			xy, ok := c.merge(xs[0], xs[1])
			return ok && c.le(xs[0], xy) && c.le(xs[1], xy)
		}, laws.Two))

	properties.Property("le agrees with merge", prop.ForAll(
		func(in Pair[P]) bool {
			xs, ok := c.build(in.X, in.Y)
			if !ok {
				return false
			}
			x, y := xs[0], xs[1]
			xy, ok := c.merge(x, y)
			if !ok {
				return false
			}
			le, err := x.Le(y)
			if err != nil {
				return false
			}
			return le == c.le(xy, y)
		}, laws.Two))

	properties.Property("le is reflexive", prop.ForAll(
		func(in Pair[P]) bool {
			xs, ok := c.build(in.X)
			return ok && c.le(xs[0], xs[0])
		}, laws.Two))

	properties.Property("payload round trips", prop.ForAll(
		func(in Pair[P]) bool {
			xs, ok := c.build(in.X)
			return ok && c.equal(xs[0].Payload(), in.X)
		}, laws.Two))

	properties.Property("add is monotonic", prop.ForAll(
		func(in WithUpdate[P, U]) bool {
			xs, ok := c.build(in.X)
			if !ok {
				return false
			}
			x := xs[0]
			added := x.Clone()
			if err := added.Add(in.U); err != nil {
				t.Logf("add %+v to %+v: %v", in.U, in.X, err)
				return false
			}
			return c.le(x, added)
		}, laws.Update))

	properties.Property("add to a clone leaves the original alone", prop.ForAll(
		func(in WithUpdate[P, U]) bool {
			xs, ok := c.build(in.X)
			if !ok {
				return false
			}
			x := xs[0]
			if err := x.Clone().Add(in.U); err != nil {
				return false
			}
			return c.equal(x.Payload(), in.X)
		}, laws.Update))

	properties.TestingRun(t)
}

// CheckShrink checks that Del only moves up the lattice too.
func CheckShrink[T Shrinkable[T, P, U], P, U any](t *testing.T, laws ShrinkLaws[T, P, U]) {
	t.Helper()
	c := newChecker[T, P, U](t, laws.New, laws.Equal)
	properties := gopter.NewProperties(parameters(laws.Parameters))

	properties.Property("del is monotonic", prop.ForAll(
		func(in WithUpdate[P, U]) bool {
			xs, ok := c.build(in.X)
			if !ok {
				return false
			}
			x := xs[0]
			deleted := x.Clone()
			if err := deleted.Del(in.U); err != nil {
				t.Logf("del %+v from %+v: %v", in.U, in.X, err)
				return false
			}
			return c.le(x, deleted)
		}, laws.Deletion))

	properties.Property("del from a clone leaves the original alone", prop.ForAll(
		func(in WithUpdate[P, U]) bool {
			xs, ok := c.build(in.X)
			if !ok {
				return false
			}
			x := xs[0]
			if err := x.Clone().Del(in.U); err != nil {
				return false
			}
			return c.equal(x.Payload(), in.X)
		}, laws.Deletion))

	properties.TestingRun(t)
}
