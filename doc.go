/*
Package cvrdt provides state-based conflict-free replicated data types
(CvRDTs): values that can be copied to independent replicas, updated
locally without coordination, and reconciled by a merge that converges
to the same result no matter the order, grouping, or repetition of
merges.

What makes a CvRDT

Every type here implements Grow, and some also Shrink. The payloads
of a type, ordered by Le, form a join-semilattice, and Merge computes
the least upper bound. For any x, y and z of the same type:

	x.Merge(y)             == y.Merge(x)
	x.Merge(y.Merge(z))    == x.Merge(y).Merge(z)
	x.Merge(y).Merge(y)    == x.Merge(y)

and every Add (or Del) moves the receiver up the lattice, never down.
Replicas that keep exchanging payloads and merging them therefore end
up equal once every update has reached every replica, without locks or
ordering protocols.

Types

- OneWayBoolean, a flag that once true stays true.

- GCounter, a grow-only counter with one slot per replica.

- GSet, a grow-only set.

- LWWRegister, a last-writer-wins register keyed by Timestamp.

- PNCounter, a counter supporting increments (Add) and decrements (Del).

- TwoPhaseSet, a set whose removals are permanent tombstones.

Misuse

Structural misuse, such as merging counters sized for different replica
sets or deleting an element that is not in a TwoPhaseSet, is reported
as a *ViolationError wrapping ErrContractViolation. Constructors are the
single validation checkpoint for a payload; such errors indicate a bug
in the caller and should not be retried.

Transmission

This package does not move payloads between replicas. The Marshal and
Unmarshal functions produce a compact, self-describing binary encoding,
Digest names an encoding by its content, and Snapshots stores encodings
in any Persist (see persist/file and persist/s3).

Verification

Package cvrdttest checks the lattice laws for any implementation with
property-based tests, and is used to test every type here.

References

"A comprehensive study of Convergent and Commutative Replicated Data
Types", by Marc Shapiro, Nuno Preguiça, Carlos Baquero and Marek
Zawirski, 2011 (https://hal.inria.fr/inria-00555588/).
*/
package cvrdt
