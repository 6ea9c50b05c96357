package cvrdt

import "math"

// GCounterPayload is the state of a GCounter: the local replica's index
// and one count per replica.
type GCounterPayload struct {
	ID     int
	Counts []uint64
}

// GCounter is a grow-only counter. Each replica only increments its own
// slot; merging takes the pointwise maximum, and the value is the sum.
//
// The number of replicas is fixed when the counter is created, and all
// replicas must agree on it and on which index is whose.
type GCounter struct {
	id     int
	counts []uint64
}

var _ Grow[*GCounter, GCounterPayload, Unit, Unit, uint64] = (*GCounter)(nil)

// NewGCounter validates the payload and returns a counter holding a copy of it.
func NewGCounter(payload GCounterPayload) (*GCounter, error) {
	if payload.ID < 0 || payload.ID >= len(payload.Counts) {
		return nil, violation("GCounter", "replica id out of range",
			"id=%d, len(counts)=%d", payload.ID, len(payload.Counts))
	}
	return &GCounter{
		id:     payload.ID,
		counts: append([]uint64(nil), payload.Counts...),
	}, nil
}

func (g *GCounter) compatibleLen(other *GCounter) (int, error) {
	if len(g.counts) != len(other.counts) {
		return 0, violation("GCounter", "incompatible lengths",
			"len(counts)=%d, other len(counts)=%d", len(g.counts), len(other.counts))
	}
	return len(g.counts), nil
}

func (g *GCounter) Clone() *GCounter {
	return &GCounter{
		id:     g.id,
		counts: append([]uint64(nil), g.counts...),
	}
}

func (g *GCounter) Payload() GCounterPayload {
	return GCounterPayload{
		ID:     g.id,
		Counts: append([]uint64(nil), g.counts...),
	}
}

// ID returns the index of the slot this replica increments.
func (g *GCounter) ID() int {
	return g.id
}

// Add increments this replica's slot.
func (g *GCounter) Add(Unit) error {
	if g.counts[g.id] == math.MaxUint64 {
		return violation("GCounter", "counter overflow", "id=%d", g.id)
	}
	g.counts[g.id]++
	return nil
}

func (g *GCounter) Le(other *GCounter) (bool, error) {
	n, err := g.compatibleLen(other)
	if err != nil {
		return false, err
	}
	for i := 0; i < n; i++ {
		if g.counts[i] > other.counts[i] {
			return false, nil
		}
	}
	return true, nil
}

// Merge returns the pointwise maximum of both counters. The merged id is
// the smaller of the two; it carries no meaning for the lattice.
func (g *GCounter) Merge(other *GCounter) (*GCounter, error) {
	n, err := g.compatibleLen(other)
	if err != nil {
		return nil, err
	}
	merged := &GCounter{
		id:     minInt(g.id, other.id),
		counts: make([]uint64, n),
	}
	for i := 0; i < n; i++ {
		merged.counts[i] = maxUint64(g.counts[i], other.counts[i])
	}
	return merged, nil
}

// Query returns the sum of all replicas' counts. The sum wraps modulo
// 2^64; each slot may hold up to MaxUint64, so a total beyond that is not
// representable.
func (g *GCounter) Query(Unit) uint64 {
	var sum uint64
	for _, c := range g.counts {
		sum += c
	}
	return sum
}

func minInt(x, y int) int {
	if x < y {
		return x
	}
	return y
}

func maxUint64(x, y uint64) uint64 {
	if x > y {
		return x
	}
	return y
}
