package cvrdt

import (
	"errors"
	"fmt"
)

// Unit is the Update or Query of operations that need no argument, such
// as incrementing a counter.
type Unit = struct{}

// Grow is implemented by every CvRDT. T is the implementing type itself,
// P its Payload, U the Update accepted by Add, Q the Query accepted by
// Query, and V the Value it returns.
type Grow[T, P, U, Q, V any] interface {
	// Clone returns an independent copy that can evolve separately.
	Clone() T
	// Payload returns a copy of the complete internal state, sufficient
	// to rebuild the instance with the type's constructor.
	Payload() P
	// Add applies a local update, moving the state up the lattice.
	Add(update U) error
	// Le reports whether this instance is less than or equal to other in
	// the partial order induced by Merge.
	Le(other T) (bool, error)
	// Merge returns the least upper bound of this instance and other.
	// Neither operand is modified.
	Merge(other T) (T, error)
	// Query reads a Value from the current state.
	Query(query Q) V
}

// Shrink is implemented by CvRDTs that can also remove, while still only
// moving up the lattice.
type Shrink[T, P, U, Q, V any] interface {
	Grow[T, P, U, Q, V]
	// Del applies a local removal.
	Del(update U) error
}

// ErrContractViolation is wrapped by every error that reports misuse of
// a CvRDT, such as merging incompatible shapes or deleting a non-member.
var ErrContractViolation = errors.New("contract violation")

// ViolationError identifies the invariant a caller broke.
type ViolationError struct {
	// Type is the name of the CvRDT, e.g. "GCounter".
	Type string
	// Invariant is a short description of the broken invariant.
	Invariant string
	// Detail carries the offending values.
	Detail string
}

func (e *ViolationError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s: %s: %s", e.Type, ErrContractViolation, e.Invariant)
	}
	return fmt.Sprintf("%s: %s: %s (%s)", e.Type, ErrContractViolation, e.Invariant, e.Detail)
}

func (e *ViolationError) Unwrap() error {
	return ErrContractViolation
}

func violation(typ, invariant, format string, args ...interface{}) error {
	return &ViolationError{
		Type:      typ,
		Invariant: invariant,
		Detail:    fmt.Sprintf(format, args...),
	}
}
