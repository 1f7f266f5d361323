// Package dupmap implements the duplicate map: once the visited tree
// proves two files are byte-identical, both are recorded here, keyed by
// hash, in an ordered list the orchestrator later hands to the origin
// selector.
package dupmap

import (
	"sync"

	"github.com/ttkb-oss/dedup/internal/model"
)

// Map is the duplicate map. It is safe for concurrent use.
type Map struct {
	mu      sync.Mutex
	buckets map[[model.HashSize]byte][]*model.FileMetadata
}

// New creates an empty duplicate map.
func New() *Map {
	return &Map{buckets: make(map[[model.HashSize]byte][]*model.FileMetadata)}
}

// Record files the fact that current duplicates prior. current must already
// have its hash computed (true of any FileMetadata the visited tree reports
// as a duplicate). On the bucket's first collision, a deep copy of prior is
// filed first, so the bucket holds every member of the equivalence class
// including the one that originally became the visited-tree shortcut.
func (m *Map) Record(prior, current *model.FileMetadata) {
	hash, ok := current.Hash()
	if !ok {
		panic("dupmap.Record called with an unhashed FileMetadata")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	bucket, exists := m.buckets[hash]
	if !exists {
		bucket = append(bucket, prior.Clone())
	}
	bucket = append(bucket, current)
	m.buckets[hash] = bucket
}

// Each invokes fn once per equivalence class (bucket), in no particular
// order — ordering within a bucket is insertion order; ordering across
// buckets doesn't matter, since the orchestrator treats each bucket
// independently.
func (m *Map) Each(fn func(hash [model.HashSize]byte, members []*model.FileMetadata)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for hash, members := range m.buckets {
		fn(hash, members)
	}
}

// Len returns the number of equivalence classes recorded.
func (m *Map) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.buckets)
}
