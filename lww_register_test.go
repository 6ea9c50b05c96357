package cvrdt

import (
	"testing"

	"github.com/jrhy/cvrdt/cvrdttest"
	"github.com/leanovate/gopter/gen"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLWWRegister(p LWWRegisterPayload[string]) (*LWWRegister[string], error) {
	return NewLWWRegister(p, nil), nil
}

func TestLWWRegisterLaws(t *testing.T) {
	t.Parallel()
	cvrdttest.CheckGrow(t, cvrdttest.GrowLaws[*LWWRegister[string], LWWRegisterPayload[string], string]{
		Two:        cvrdttest.Pairs[LWWRegisterPayload[string]](lwwRegisters()).SuchThat(distinctPairs),
		Three:      cvrdttest.Triples[LWWRegisterPayload[string]](lwwRegisters()).SuchThat(distinctTriples),
		Update:     cvrdttest.WithUpdates[LWWRegisterPayload[string], string](lwwRegisters(), gen.AlphaString()),
		New:        newLWWRegister,
		Parameters: defaultGopterParameters,
	})
}

// steppingClock returns the given timestamps in order.
func steppingClock(ts ...Timestamp) Clock {
	return ClockFunc(func() Timestamp {
		next := ts[0]
		ts = ts[1:]
		return next
	})
}

func TestLWWRegisterLatestWins(t *testing.T) {
	t.Parallel()
	r := NewLWWRegister(LWWRegisterPayload[string]{Value: "a", Timestamp: 10}, steppingClock(20, 30))
	require.NoError(t, r.Add("b"))
	require.NoError(t, r.Add("c"))
	assert.Equal(t, "c", r.Query(Unit{}))
	assert.Equal(t, Timestamp(30), r.Payload().Timestamp)

	z := NewLWWRegister(LWWRegisterPayload[string]{Value: "z", Timestamp: 40}, nil)
	m, err := r.Merge(z)
	require.NoError(t, err)
	assert.Equal(t, "z", m.Query(Unit{}))
	m, err = z.Merge(r)
	require.NoError(t, err)
	assert.Equal(t, "z", m.Query(Unit{}))
	assert.Equal(t, "c", r.Query(Unit{}))

	le, err := r.Le(z)
	require.NoError(t, err)
	assert.True(t, le)
	le, err = z.Le(r)
	require.NoError(t, err)
	assert.False(t, le)
}

func TestLWWRegisterTieKeepsReceiver(t *testing.T) {
	t.Parallel()
	x := NewLWWRegister(LWWRegisterPayload[string]{Value: "x", Timestamp: 5}, nil)
	y := NewLWWRegister(LWWRegisterPayload[string]{Value: "y", Timestamp: 5}, nil)
	m, err := x.Merge(y)
	require.NoError(t, err)
	assert.Equal(t, "x", m.Query(Unit{}))
	m, err = y.Merge(x)
	require.NoError(t, err)
	assert.Equal(t, "y", m.Query(Unit{}))
}

func TestLWWRegisterClockGoesBackwards(t *testing.T) {
	t.Parallel()
	r := NewLWWRegister(LWWRegisterPayload[string]{Value: "a", Timestamp: 10}, steppingClock(9))
	err := r.Add("b")
	require.ErrorIs(t, err, ErrContractViolation)
	assert.Contains(t, err.Error(), "time should be monotonic")
	assert.Equal(t, LWWRegisterPayload[string]{Value: "a", Timestamp: 10}, r.Payload())
}

func TestLWWRegisterWritesAfterAdoptingRemoteValue(t *testing.T) {
	t.Parallel()
	clock := NewHybridClock()
	local := NewLWWRegister(LWWRegisterPayload[string]{Value: "local"}, clock)
	require.NoError(t, local.Add("mine"))

	// a remote replica whose wall clock runs far ahead
	future := clock.Now() + 1<<40
	remote := NewLWWRegister(LWWRegisterPayload[string]{Value: "remote", Timestamp: future}, nil)
	merged, err := local.Merge(remote)
	require.NoError(t, err)
	assert.Equal(t, "remote", merged.Query(Unit{}))

	require.NoError(t, merged.Add("mine again"))
	assert.Equal(t, "mine again", merged.Query(Unit{}))
	assert.Greater(t, merged.Payload().Timestamp, future)
}
