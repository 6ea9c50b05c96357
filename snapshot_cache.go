package cvrdt

import lru "github.com/hashicorp/golang-lru"

// SnapshotCache remembers snapshots that are already persisted, so
// saving an unchanged payload again costs no Store, and loading a
// recently seen one costs no Load. Switch or clear the cache when the
// Persist is changed.
type SnapshotCache interface {
	// Add records a freshly-persisted snapshot.
	Add(key, value interface{})
	// Contains indicates the snapshot with the given link has already been persisted.
	Contains(key interface{}) bool
	// Get retrieves the encoded snapshot with the given link, if cached.
	Get(key interface{}) (value interface{}, ok bool)
}

// NewSnapshotCache creates a new LRU-based snapshot cache of the given
// size. One cache can be shared by any number of Snapshots using the same
// Persist.
func NewSnapshotCache(size int) SnapshotCache {
	cache, err := lru.NewARC(size)
	if err != nil {
		panic(err)
	}
	return cache
}
