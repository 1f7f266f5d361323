package dupmap

import (
	"testing"

	"github.com/ttkb-oss/dedup/internal/model"
)

func hashed(path string, b byte) *model.FileMetadata {
	m := &model.FileMetadata{PathEntry: model.PathEntry{Path: path, Size: 1}}
	var h [model.HashSize]byte
	h[0] = b
	m.SetHash(h)
	return m
}

func TestRecordFirstCollisionIncludesPrior(t *testing.T) {
	m := New()
	prior := hashed("/a", 0xAA)
	current := hashed("/b", 0xAA)

	m.Record(prior, current)

	var members []*model.FileMetadata
	m.Each(func(hash [model.HashSize]byte, ms []*model.FileMetadata) {
		members = ms
	})

	if len(members) != 2 {
		t.Fatalf("expected 2 members, got %d", len(members))
	}
	if members[0] == prior {
		t.Error("expected bucket to hold a deep copy of prior, not the same pointer")
	}
	if members[0].Path != prior.Path {
		t.Errorf("expected copy to preserve path, got %q", members[0].Path)
	}
	if members[1] != current {
		t.Error("expected current to be inserted by pointer")
	}
}

func TestRecordSubsequentCollisionAppendsOnly(t *testing.T) {
	m := New()
	prior := hashed("/a", 0xBB)
	b := hashed("/b", 0xBB)
	c := hashed("/c", 0xBB)

	m.Record(prior, b)
	m.Record(prior, c)

	var members []*model.FileMetadata
	m.Each(func(hash [model.HashSize]byte, ms []*model.FileMetadata) {
		members = ms
	})

	if len(members) != 3 {
		t.Fatalf("expected 3 members (prior copy + b + c), got %d", len(members))
	}
}

func TestRecordPanicsOnUnhashedCurrent(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected Record to panic on an unhashed current entry")
		}
	}()
	m := New()
	prior := hashed("/a", 0xCC)
	current := &model.FileMetadata{PathEntry: model.PathEntry{Path: "/b", Size: 1}}
	m.Record(prior, current)
}

func TestLenCountsDistinctBuckets(t *testing.T) {
	m := New()
	m.Record(hashed("/a", 0x01), hashed("/b", 0x01))
	m.Record(hashed("/c", 0x02), hashed("/d", 0x02))

	if got := m.Len(); got != 2 {
		t.Errorf("Len() = %d, want 2", got)
	}
}
