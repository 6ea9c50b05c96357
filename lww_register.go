package cvrdt

// LWWRegisterPayload is the state of an LWWRegister: the current value
// and the timestamp it was written at.
type LWWRegisterPayload[X any] struct {
	Value     X
	Timestamp Timestamp
}

// LWWRegister is a last-writer-wins register: merging keeps whichever
// value was written at the later timestamp.
//
// When both timestamps are equal, Merge keeps the receiver's value, so
// replicas must never write different values at the same timestamp.
// Registers sharing one HybridClock per replica, with distinct clocks on
// distinct replicas, satisfy this in practice.
type LWWRegister[X any] struct {
	value     X
	timestamp Timestamp
	clock     Clock
}

var _ Grow[*LWWRegister[string], LWWRegisterPayload[string], string, Unit, string] = (*LWWRegister[string])(nil)

// NewLWWRegister returns a register with the given payload, stamping local
// writes with clock. A nil clock selects a process-wide HybridClock.
func NewLWWRegister[X any](payload LWWRegisterPayload[X], clock Clock) *LWWRegister[X] {
	if clock == nil {
		clock = defaultClock
	}
	return &LWWRegister[X]{
		value:     payload.Value,
		timestamp: payload.Timestamp,
		clock:     clock,
	}
}

// Clone returns a register with the same payload and clock. The value
// itself is copied shallowly.
func (r *LWWRegister[X]) Clone() *LWWRegister[X] {
	c := *r
	return &c
}

func (r *LWWRegister[X]) Payload() LWWRegisterPayload[X] {
	return LWWRegisterPayload[X]{Value: r.value, Timestamp: r.timestamp}
}

// Add writes a new value at the clock's current time. A clock that can
// Observe is first moved past the stored timestamp.
func (r *LWWRegister[X]) Add(value X) error {
	if o, ok := r.clock.(observer); ok {
		o.Observe(r.timestamp)
	}
	now := r.clock.Now()
	if now < r.timestamp {
		return violation("LWWRegister", "time should be monotonic",
			"now=%d, stored=%d", now, r.timestamp)
	}
	r.value = value
	r.timestamp = now
	return nil
}

func (r *LWWRegister[X]) Le(other *LWWRegister[X]) (bool, error) {
	return r.timestamp <= other.timestamp, nil
}

// Merge returns a copy of whichever register was written later, keeping
// this register's clock.
func (r *LWWRegister[X]) Merge(other *LWWRegister[X]) (*LWWRegister[X], error) {
	merged := *r
	if r.timestamp < other.timestamp {
		merged.value = other.value
		merged.timestamp = other.timestamp
	}
	return &merged, nil
}

func (r *LWWRegister[X]) Query(Unit) X {
	return r.value
}
