package engine

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ttkb-oss/dedup/internal/replace"
	"github.com/ttkb-oss/dedup/internal/volume"
)

func TestRunNoDuplicatesForDistinctContent(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "big", []byte{'A'})
	write(t, dir, "big2", []byte{'B'})

	result, err := Run(Config{Roots: []string{dir}, Threads: 0, Mode: replace.ModeHardlink})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if result.Found != 0 {
		t.Errorf("expected 0 duplicates found, got %d", result.Found)
	}
}

func TestRunEmptyFilesAreIgnored(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "a", nil)
	write(t, dir, "b", nil)

	result, err := Run(Config{Roots: []string{dir}, Threads: 0, Mode: replace.ModeHardlink})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if result.Found != 0 {
		t.Errorf("expected 0 duplicates for empty files, got %d", result.Found)
	}

	infoA, _ := os.Lstat(filepath.Join(dir, "a"))
	infoB, _ := os.Lstat(filepath.Join(dir, "b"))
	if os.SameFile(infoA, infoB) {
		t.Error("empty files must never be merged")
	}
}

func TestRunHardlinkModeDeduplicatesIdenticalFiles(t *testing.T) {
	dir := t.TempDir()
	contents := []byte("identical contents across every file in this set")
	write(t, dir, "b1", contents)
	write(t, dir, "b2", contents)
	write(t, dir, "b3", contents)

	result, err := Run(Config{Roots: []string{dir}, Threads: 0, Mode: replace.ModeHardlink})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if result.Found != 2 {
		t.Errorf("expected 2 duplicates found among 3 identical files, got %d", result.Found)
	}
	if result.Saved != uint64(2*len(contents)) {
		t.Errorf("expected %d bytes saved, got %d", 2*len(contents), result.Saved)
	}

	infoA, _ := os.Stat(filepath.Join(dir, "b1"))
	infoB, _ := os.Stat(filepath.Join(dir, "b2"))
	infoC, _ := os.Stat(filepath.Join(dir, "b3"))
	if !os.SameFile(infoA, infoB) || !os.SameFile(infoA, infoC) {
		t.Error("expected all three files to share an inode after hardlink-mode dedup")
	}
}

func TestRunDryRunLeavesFilesUntouched(t *testing.T) {
	dir := t.TempDir()
	contents := []byte("duplicate")
	write(t, dir, "a", contents)
	write(t, dir, "b", contents)

	result, err := Run(Config{Roots: []string{dir}, Threads: 0, Mode: replace.ModeHardlink, DryRun: true})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if result.Saved != uint64(len(contents)) {
		t.Errorf("expected dry-run to still report saved bytes, got %d", result.Saved)
	}

	infoA, _ := os.Lstat(filepath.Join(dir, "a"))
	infoB, _ := os.Lstat(filepath.Join(dir, "b"))
	if os.SameFile(infoA, infoB) {
		t.Error("dry-run must not actually merge files")
	}
}

func TestRunCloneModeSkipsNonCloningVolume(t *testing.T) {
	dir := t.TempDir()
	contents := []byte("duplicate")
	write(t, dir, "a", contents)
	write(t, dir, "b", contents)

	if format, err := volume.QueryFormat(dir); err == nil && format.SupportsClone() {
		t.Skip("test volume supports clone; nothing to verify here")
	}

	result, err := Run(Config{Roots: []string{dir}, Threads: 0, Mode: replace.ModeClone})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if result.Found != 0 {
		t.Errorf("expected 0 duplicates found on a non-cloning volume, got %d", result.Found)
	}
	if result.Saved != 0 {
		t.Errorf("expected 0 bytes saved on a non-cloning volume, got %d", result.Saved)
	}
}

func write(t *testing.T, dir, name string, contents []byte) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), contents, 0644); err != nil {
		t.Fatal(err)
	}
}
