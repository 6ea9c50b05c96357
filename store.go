package cvrdt

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/minio/blake2b-simd"
)

// Persist is the interface for storing and loading encoded snapshots. The
// given string identity is the Digest of the content, which is therefore
// never modified.
type Persist interface {
	// Store makes the given bytes accessible by the given name.
	Store(context.Context, string, []byte) error
	// Load retrieves the previously-stored bytes by the given name.
	Load(context.Context, string) ([]byte, error)
}

// Digest names an encoded payload by its content: a base64url blake2b-256
// hash. Replicas with equal payloads have equal digests, and can skip
// exchanging them.
func Digest(encoded []byte) string {
	hashBytes := blake2b.Sum256(encoded)
	return base64.RawURLEncoding.EncodeToString(hashBytes[:])
}

// SnapshotConfig controls how snapshots are persisted and loaded.
type SnapshotConfig struct {
	// StoreWith is used to store and load encoded snapshots.
	StoreWith Persist

	// Cache remembers persisted snapshots and may be shared across
	// multiple Snapshots with the same StoreWith. Optional.
	Cache SnapshotCache
}

// Snapshots keeps content-addressed copies of encoded payloads, e.g. as
// produced by MarshalGCounter.
type Snapshots struct {
	persist Persist
	cache   SnapshotCache
}

// NewSnapshots returns Snapshots using the given config.
func NewSnapshots(config SnapshotConfig) (*Snapshots, error) {
	if config.StoreWith == nil {
		return nil, fmt.Errorf("no persistence mechanism set; set SnapshotConfig.StoreWith")
	}
	return &Snapshots{
		persist: config.StoreWith,
		cache:   config.Cache,
	}, nil
}

// Save persists an encoded payload, unless the cache shows it already is,
// and returns the link to load it by.
func (s *Snapshots) Save(ctx context.Context, encoded []byte) (string, error) {
	link := Digest(encoded)
	if s.cache != nil && s.cache.Contains(link) {
		return link, nil
	}
	err := s.persist.Store(ctx, link, encoded)
	if err != nil {
		return "", fmt.Errorf("persist store: %w", err)
	}
	if s.cache != nil {
		s.cache.Add(link, append([]byte(nil), encoded...))
	}
	return link, nil
}

// Load retrieves the encoded payload saved under link, and checks that it
// is intact.
func (s *Snapshots) Load(ctx context.Context, link string) ([]byte, error) {
	if s.cache != nil {
		if cached, ok := s.cache.Get(link); ok {
			return append([]byte(nil), cached.([]byte)...), nil
		}
	}
	encoded, err := s.persist.Load(ctx, link)
	if err != nil {
		return nil, fmt.Errorf("persist load %s: %w", link, err)
	}
	if got := Digest(encoded); got != link {
		return nil, fmt.Errorf("snapshot %s is corrupt: content hashes to %s", link, got)
	}
	if s.cache != nil {
		s.cache.Add(link, append([]byte(nil), encoded...))
	}
	return encoded, nil
}
