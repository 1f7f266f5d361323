package replace

import (
	"errors"
	"os"
	"path/filepath"
	"syscall"
	"testing"

	"github.com/ttkb-oss/dedup/internal/dederrors"
	"github.com/ttkb-oss/dedup/internal/model"
)

func writeMember(t *testing.T, dir, name string, contents []byte) *model.FileMetadata {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, contents, 0644); err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	stat := info.Sys().(*syscall.Stat_t)
	return &model.FileMetadata{PathEntry: model.PathEntry{
		Path:  path,
		Size:  uint64(len(contents)),
		Inode: uint64(stat.Ino),
	}}
}

func TestReplaceSkipsImmutableMember(t *testing.T) {
	dir := t.TempDir()
	origin := writeMember(t, dir, "origin", []byte("hello"))
	member := writeMember(t, dir, "member", []byte("hello"))
	member.Flags |= model.FlagUserImmutable

	r := New(ModeHardlink, false, false, nil)
	outcome, err := r.Replace(origin, member)
	if err != nil {
		t.Fatalf("Replace failed: %v", err)
	}
	if !outcome.Skipped {
		t.Error("expected immutable member to be skipped")
	}
}

func TestReplaceSkipsExtraHardlinkedMemberWithoutForce(t *testing.T) {
	dir := t.TempDir()
	origin := writeMember(t, dir, "origin", []byte("hello"))
	member := writeMember(t, dir, "member", []byte("hello"))
	member.Nlink = 2

	r := New(ModeHardlink, false, false, nil)
	outcome, err := r.Replace(origin, member)
	if err != nil {
		t.Fatalf("Replace failed: %v", err)
	}
	if !outcome.Skipped {
		t.Error("expected member with nlink>1 to be skipped without force")
	}
}

func TestReplaceDryRunDoesNotTouchFilesystem(t *testing.T) {
	dir := t.TempDir()
	origin := writeMember(t, dir, "origin", []byte("hello"))
	member := writeMember(t, dir, "member", []byte("hello"))

	r := New(ModeHardlink, true, false, nil)
	outcome, err := r.Replace(origin, member)
	if err != nil {
		t.Fatalf("Replace failed: %v", err)
	}
	if outcome.SavedBytes != member.Size {
		t.Errorf("expected dry-run to report %d saved bytes, got %d", member.Size, outcome.SavedBytes)
	}
	if _, err := os.Lstat(member.Path); err != nil {
		t.Errorf("dry-run must leave the original file in place: %v", err)
	}
}

func TestReplaceWithHardlinkSharesInode(t *testing.T) {
	dir := t.TempDir()
	origin := writeMember(t, dir, "origin", []byte("hello"))
	member := writeMember(t, dir, "member", []byte("hello"))

	r := New(ModeHardlink, false, false, nil)
	outcome, err := r.Replace(origin, member)
	if err != nil {
		t.Fatalf("Replace failed: %v", err)
	}
	if outcome.Skipped {
		t.Fatal("expected the replacement to proceed")
	}

	originInfo, _ := os.Stat(origin.Path)
	memberInfo, _ := os.Stat(member.Path)
	if !os.SameFile(originInfo, memberInfo) {
		t.Error("expected member to share an inode with origin after hardlink replacement")
	}
}

func TestReplaceWithSymlinkPointsToOrigin(t *testing.T) {
	dir := t.TempDir()
	origin := writeMember(t, dir, "origin", []byte("hello"))
	member := writeMember(t, dir, "member", []byte("hello"))

	r := New(ModeSymlink, false, false, nil)
	outcome, err := r.Replace(origin, member)
	if err != nil {
		t.Fatalf("Replace failed: %v", err)
	}
	if outcome.Skipped {
		t.Fatal("expected the replacement to proceed")
	}

	resolved, err := filepath.EvalSymlinks(member.Path)
	if err != nil {
		t.Fatalf("unable to resolve symlink: %v", err)
	}
	absOrigin, _ := filepath.Abs(origin.Path)
	if resolved != absOrigin {
		t.Errorf("expected symlink to resolve to %s, got %s", absOrigin, resolved)
	}

	// Running again should now detect the existing symlink as a no-op.
	member2 := &model.FileMetadata{PathEntry: model.PathEntry{Path: member.Path, Size: member.Size}}
	outcome, err = r.Replace(origin, member2)
	if err != nil {
		t.Fatalf("second Replace failed: %v", err)
	}
	if !outcome.Skipped {
		t.Error("expected a second run to detect the symlink already points to origin")
	}
}

func TestReplaceWithCloneReturnsReplacementErrorWhenUnsupported(t *testing.T) {
	dir := t.TempDir()
	origin := writeMember(t, dir, "origin", []byte("hello"))
	member := writeMember(t, dir, "member", []byte("hello"))
	member.CloneID = origin.CloneID + 1 // force past the no-op skip check

	r := New(ModeClone, false, false, nil)
	_, err := r.Replace(origin, member)
	if err == nil {
		t.Skip("clone primitive is supported on this platform; nothing to assert")
	}
	var derr *dederrors.Error
	if !errors.As(err, &derr) || derr.Kind != dederrors.KindReplacement {
		t.Errorf("expected a KindReplacement error, got %v", err)
	}
}
