package cvrdt

import "math"

// PNCounterPayload is the state of a PNCounter: the local replica's index,
// and per-replica counts of increments and decrements.
type PNCounterPayload struct {
	ID       int
	Positive []uint64
	Negative []uint64
}

// PNCounter is a counter that supports both increments (Add) and
// decrements (Del), as a pair of grow-only vectors.
type PNCounter struct {
	id       int
	positive []uint64
	negative []uint64
}

var _ Shrink[*PNCounter, PNCounterPayload, Unit, Unit, int64] = (*PNCounter)(nil)

// NewPNCounter validates the payload and returns a counter holding a copy of it.
func NewPNCounter(payload PNCounterPayload) (*PNCounter, error) {
	if len(payload.Positive) != len(payload.Negative) {
		return nil, violation("PNCounter", "incompatible positive & negative lengths",
			"len(positive)=%d, len(negative)=%d", len(payload.Positive), len(payload.Negative))
	}
	if payload.ID < 0 || payload.ID >= len(payload.Positive) {
		return nil, violation("PNCounter", "replica id out of range",
			"id=%d, len(positive)=%d", payload.ID, len(payload.Positive))
	}
	return &PNCounter{
		id:       payload.ID,
		positive: append([]uint64(nil), payload.Positive...),
		negative: append([]uint64(nil), payload.Negative...),
	}, nil
}

// Both vectors of a PNCounter have the same length from construction on,
// so only the two instances need comparing.
func (c *PNCounter) compatibleLen(other *PNCounter) (int, error) {
	if len(c.positive) != len(other.positive) {
		return 0, violation("PNCounter", "incompatible positive lengths",
			"len(positive)=%d, other len(positive)=%d", len(c.positive), len(other.positive))
	}
	if len(c.negative) != len(other.negative) {
		return 0, violation("PNCounter", "incompatible negative lengths",
			"len(negative)=%d, other len(negative)=%d", len(c.negative), len(other.negative))
	}
	return len(c.positive), nil
}

func (c *PNCounter) Clone() *PNCounter {
	return &PNCounter{
		id:       c.id,
		positive: append([]uint64(nil), c.positive...),
		negative: append([]uint64(nil), c.negative...),
	}
}

func (c *PNCounter) Payload() PNCounterPayload {
	return PNCounterPayload{
		ID:       c.id,
		Positive: append([]uint64(nil), c.positive...),
		Negative: append([]uint64(nil), c.negative...),
	}
}

// ID returns the index of the slots this replica increments.
func (c *PNCounter) ID() int {
	return c.id
}

// Add increments the counter.
func (c *PNCounter) Add(Unit) error {
	if c.positive[c.id] == math.MaxUint64 {
		return violation("PNCounter", "positive counter overflow", "id=%d", c.id)
	}
	c.positive[c.id]++
	return nil
}

// Del decrements the counter.
func (c *PNCounter) Del(Unit) error {
	if c.negative[c.id] == math.MaxUint64 {
		return violation("PNCounter", "negative counter overflow", "id=%d", c.id)
	}
	c.negative[c.id]++
	return nil
}

func (c *PNCounter) Le(other *PNCounter) (bool, error) {
	n, err := c.compatibleLen(other)
	if err != nil {
		return false, err
	}
	for i := 0; i < n; i++ {
		if c.positive[i] > other.positive[i] || c.negative[i] > other.negative[i] {
			return false, nil
		}
	}
	return true, nil
}

// Merge returns the pointwise maximum of both vectors. As with GCounter,
// the merged id is the smaller of the two and carries no meaning.
func (c *PNCounter) Merge(other *PNCounter) (*PNCounter, error) {
	n, err := c.compatibleLen(other)
	if err != nil {
		return nil, err
	}
	merged := &PNCounter{
		id:       minInt(c.id, other.id),
		positive: make([]uint64, n),
		negative: make([]uint64, n),
	}
	for i := 0; i < n; i++ {
		merged.positive[i] = maxUint64(c.positive[i], other.positive[i])
		merged.negative[i] = maxUint64(c.negative[i], other.negative[i])
	}
	return merged, nil
}

// Query returns the number of increments minus the number of decrements.
// The arithmetic wraps, so the result is exact whenever the true value
// fits in an int64.
func (c *PNCounter) Query(Unit) int64 {
	var p, n uint64
	for i := range c.positive {
		p += c.positive[i]
		n += c.negative[i]
	}
	return int64(p - n)
}
