package cvrdt

import (
	"math"
	"reflect"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/jrhy/cvrdt/cvrdttest"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
)

const (
	maxReplicas = 100
	maxElement  = 50
)

var defaultGopterParameters = gopter.DefaultTestParameters()

// Counts stay far enough from MaxUint64 that a few increments, or the
// sum over every replica, cannot overflow.
func counts(n int) gopter.Gen {
	return gen.SliceOfN(n, gen.UInt64Range(0, math.MaxUint32))
}

func replicas() gopter.Gen {
	return gen.IntRange(1, maxReplicas)
}

func gCounterOfSize(n int) gopter.Gen {
	return gopter.CombineGens(gen.IntRange(0, n-1), counts(n)).
		Map(func(vs []interface{}) GCounterPayload {
			return GCounterPayload{ID: vs[0].(int), Counts: vs[1].([]uint64)}
		})
}

func gCounters() gopter.Gen {
	return replicas().FlatMap(func(v interface{}) gopter.Gen {
		return gCounterOfSize(v.(int))
	}, reflect.TypeOf(GCounterPayload{}))
}

func pnCounterOfSize(n int) gopter.Gen {
	return gopter.CombineGens(gen.IntRange(0, n-1), counts(n), counts(n)).
		Map(func(vs []interface{}) PNCounterPayload {
			return PNCounterPayload{
				ID:       vs[0].(int),
				Positive: vs[1].([]uint64),
				Negative: vs[2].([]uint64),
			}
		})
}

func pnCounters() gopter.Gen {
	return replicas().FlatMap(func(v interface{}) gopter.Gen {
		return pnCounterOfSize(v.(int))
	}, reflect.TypeOf(PNCounterPayload{}))
}

func elements() gopter.Gen {
	return gen.SliceOf(gen.IntRange(0, maxElement))
}

func gSets() gopter.Gen {
	return elements().Map(func(xs []int) mapset.Set[int] {
		return mapset.NewThreadUnsafeSet(xs...)
	})
}

func setsEqual(a, b mapset.Set[int]) bool {
	return a.Equal(b)
}

func twoPhaseSets() gopter.Gen {
	return gopter.CombineGens(elements(), elements()).
		Map(func(vs []interface{}) TwoPhaseSetPayload[int] {
			added := mapset.NewThreadUnsafeSet(vs[0].([]int)...)
			removed := mapset.NewThreadUnsafeSet(vs[1].([]int)...).Intersect(added)
			return TwoPhaseSetPayload[int]{Added: added, Removed: removed}
		})
}

func twoPhaseSetsEqual(a, b TwoPhaseSetPayload[int]) bool {
	return a.Added.Equal(b.Added) && a.Removed.Equal(b.Removed)
}

// Timestamps stay below any HybridClock reading, so Add always succeeds.
func lwwRegisters() gopter.Gen {
	return gopter.CombineGens(gen.AlphaString(), gen.Int64Range(0, 1<<50)).
		Map(func(vs []interface{}) LWWRegisterPayload[string] {
			return LWWRegisterPayload[string]{
				Value:     vs[0].(string),
				Timestamp: Timestamp(vs[1].(int64)),
			}
		})
}

type pair = cvrdttest.Pair[LWWRegisterPayload[string]]

type triple = cvrdttest.Triple[LWWRegisterPayload[string]]

// Replicas never write at the same timestamp, so neither do generated
// registers that get merged.
func distinctPairs(p pair) bool {
	return p.X.Timestamp != p.Y.Timestamp
}

func distinctTriples(p triple) bool {
	return p.X.Timestamp != p.Y.Timestamp &&
		p.Y.Timestamp != p.Z.Timestamp &&
		p.X.Timestamp != p.Z.Timestamp
}
