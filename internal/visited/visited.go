// Package visited implements the visited tree, the centerpiece of the
// dedup engine: a lazy, nested index that partitions files into
// equivalence classes — keyed first by (device, size, first byte, last
// byte), which the fingerprint stage computes cheaply (stat plus two
// one-byte reads) — without
// hashing file contents unless two files actually collide on that prefix.
//
// The index is logically a chain device -> size -> first -> last -> hash
// -> FileMetadata; Go's built-in maps serve that purpose directly, since
// nothing in the algorithm depends on iteration order (lookups are always
// exact-key), only on the mutual exclusivity of a node's shortcut and its
// hash-keyed children.
package visited

import (
	"sync"

	"github.com/ttkb-oss/dedup/internal/contenthash"
	"github.com/ttkb-oss/dedup/internal/dederrors"
	"github.com/ttkb-oss/dedup/internal/logging"
	"github.com/ttkb-oss/dedup/internal/model"
)

// lastNode holds either a single "shortcut" FileMetadata or a non-empty map
// of hash -> FileMetadata, never both. The zero value is a valid empty node.
type lastNode struct {
	shortcut *model.FileMetadata
	children map[[model.HashSize]byte]*model.FileMetadata
}

// Tree is the visited tree. It is safe for concurrent use: a single mutex
// guards every node transition, which is the only ordering the algorithm
// depends on.
type Tree struct {
	mu     sync.Mutex
	byKey  map[treeKey]*lastNode
	logger *logging.Logger
}

type treeKey struct {
	device uint64
	size   uint64
	first  byte
	last   byte
}

// New creates an empty visited tree.
func New(logger *logging.Logger) *Tree {
	return &Tree{
		byKey:  make(map[treeKey]*lastNode),
		logger: logger.Sublogger("visited"),
	}
}

// Insert files m into the tree. It returns the prior file m duplicates, if
// any (nil if m established a new equivalence class). If hashing is
// required and fails for m, Insert returns a *dederrors.Error of kind
// KindHash and the caller should drop m (the tree is left exactly as if m
// had never been inserted).
func (t *Tree) Insert(m *model.FileMetadata) (*model.FileMetadata, error) {
	if m.Size == 0 {
		panic("visited tree invariant violated: zero-size FileMetadata inserted")
	}

	key := treeKey{device: m.Device, size: m.Size, first: m.First, last: m.Last}

	t.mu.Lock()
	defer t.mu.Unlock()

	node, ok := t.byKey[key]
	if !ok {
		node = &lastNode{}
		t.byKey[key] = node
	}

	// Case A: empty node.
	if node.shortcut == nil && len(node.children) == 0 {
		node.shortcut = m
		return nil, nil
	}

	// Case B: shortcut present, no children.
	if node.shortcut != nil {
		s := node.shortcut

		sHash, err := ensureHash(s)
		if err != nil {
			// Hashing failed for the held shortcut: discard it and install
			// m in its place.
			t.logger.Warnf("discarding shortcut %s, unable to hash: %v", s.Path, err)
			node.shortcut = m
			return nil, nil
		}

		mHash, err := ensureHash(m)
		if err != nil {
			// Leave s as shortcut; m is dropped.
			return nil, dederrors.New(dederrors.KindHash, m.Path, err)
		}

		if sHash == mHash {
			return s, nil
		}

		// Promote: both go into the hash-keyed children map.
		node.children = map[[model.HashSize]byte]*model.FileMetadata{
			sHash: s,
			mHash: m,
		}
		node.shortcut = nil
		return nil, nil
	}

	// Case C: children present.
	mHash, err := ensureHash(m)
	if err != nil {
		return nil, dederrors.New(dederrors.KindHash, m.Path, err)
	}

	if existing, ok := node.children[mHash]; ok {
		return existing, nil
	}

	node.children[mHash] = m
	return nil, nil
}

// ensureHash returns m's content hash, computing and caching it on first
// use: a hash, once computed, is never recomputed.
func ensureHash(m *model.FileMetadata) ([model.HashSize]byte, error) {
	if hash, ok := m.Hash(); ok {
		return hash, nil
	}
	hash, err := contenthash.Compute(m.Path)
	if err != nil {
		return hash, err
	}
	m.SetHash(hash)
	return hash, nil
}

// Len returns the number of distinct (device, size, first, last) prefixes
// currently held, for metrics/testing purposes.
func (t *Tree) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.byKey)
}
