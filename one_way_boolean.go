package cvrdt

// OneWayBoolean is a flag that, once true, can never revert to false.
type OneWayBoolean struct {
	flag bool
}

var _ Grow[*OneWayBoolean, bool, Unit, Unit, bool] = (*OneWayBoolean)(nil)

// NewOneWayBoolean returns a flag with the given payload.
func NewOneWayBoolean(flag bool) *OneWayBoolean {
	return &OneWayBoolean{flag: flag}
}

func (b *OneWayBoolean) Clone() *OneWayBoolean {
	return &OneWayBoolean{flag: b.flag}
}

func (b *OneWayBoolean) Payload() bool {
	return b.flag
}

// Add sets the flag.
func (b *OneWayBoolean) Add(Unit) error {
	b.flag = true
	return nil
}

func (b *OneWayBoolean) Le(other *OneWayBoolean) (bool, error) {
	return !b.flag || other.flag, nil
}

func (b *OneWayBoolean) Merge(other *OneWayBoolean) (*OneWayBoolean, error) {
	return &OneWayBoolean{flag: b.flag || other.flag}, nil
}

func (b *OneWayBoolean) Query(Unit) bool {
	return b.flag
}
