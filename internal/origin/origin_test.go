package origin

import (
	"testing"

	"github.com/ttkb-oss/dedup/internal/model"
)

func meta(path string, nlink, cloneID uint64, size uint64, compressed bool) *model.FileMetadata {
	var flags uint32
	if compressed {
		flags |= model.FlagCompressed
	}
	return &model.FileMetadata{
		PathEntry: model.PathEntry{Path: path, Nlink: nlink, Size: size, Flags: flags},
		CloneID:   cloneID,
	}
}

func TestSelectPrefersGreatestNlink(t *testing.T) {
	members := []*model.FileMetadata{
		meta("/b1", 2, 1, 100, false),
		meta("/b2", 1, 2, 100, false),
		meta("/b3", 2, 1, 100, false), // shares inode with b1
	}
	sel := Select(members)
	if sel.Reason != ReasonHardlink {
		t.Fatalf("expected ReasonHardlink, got %v", sel.Reason)
	}
	if sel.Origin != members[0] {
		t.Errorf("expected first max-nlink member as origin (tie broken by insertion order), got %v", sel.Origin.Path)
	}
}

func TestSelectSingleBucketSkipsAsAlreadyCloned(t *testing.T) {
	members := []*model.FileMetadata{
		meta("/a", 1, 7, 100, false),
		meta("/b", 1, 7, 100, false),
		meta("/c", 1, 7, 100, false),
	}
	sel := Select(members)
	if !sel.Skip || sel.Reason != ReasonAlreadyCloned {
		t.Fatalf("expected skip/ReasonAlreadyCloned, got %+v", sel)
	}
	if sel.AlreadySavedBytes != 200 {
		t.Errorf("expected 200 already-saved bytes, got %d", sel.AlreadySavedBytes)
	}
}

func TestSelectAllDistinctPicksFirstNonCompressed(t *testing.T) {
	members := []*model.FileMetadata{
		meta("/a", 1, 1, 100, true),
		meta("/b", 1, 2, 100, false),
		meta("/c", 1, 3, 100, false),
	}
	sel := Select(members)
	if sel.Reason != ReasonFirstSeen {
		t.Fatalf("expected ReasonFirstSeen, got %v", sel.Reason)
	}
	if sel.Origin != members[1] {
		t.Errorf("expected /b (first non-compressed) as origin, got %v", sel.Origin.Path)
	}
}

func TestSelectAllDistinctAllCompressedSkips(t *testing.T) {
	members := []*model.FileMetadata{
		meta("/a", 1, 1, 100, true),
		meta("/b", 1, 2, 100, true),
	}
	sel := Select(members)
	if !sel.Skip || sel.Reason != ReasonFirstSeen {
		t.Fatalf("expected skip/ReasonFirstSeen when all compressed, got %+v", sel)
	}
	if sel.Origin != nil {
		t.Errorf("expected nil origin, got %v", sel.Origin.Path)
	}
}

func TestSelectPicksLargestCloneBucket(t *testing.T) {
	members := []*model.FileMetadata{
		meta("/a", 1, 1, 100, false),
		meta("/b", 1, 1, 100, false),
		meta("/c", 1, 2, 100, false),
	}
	sel := Select(members)
	if sel.Reason != ReasonMostClones {
		t.Fatalf("expected ReasonMostClones, got %v", sel.Reason)
	}
	if sel.Origin.CloneID != 1 {
		t.Errorf("expected origin from clone id 1 (2 members), got clone id %d", sel.Origin.CloneID)
	}
}

func TestSelectPanicsOnTooFewMembers(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for a set with fewer than 2 members")
		}
	}()
	Select([]*model.FileMetadata{meta("/a", 1, 1, 100, false)})
}
