package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRunRejectsNegativeThreadCount(t *testing.T) {
	dir := t.TempDir()
	var stdout, stderr bytes.Buffer

	code := run([]string{"-t", "-1", dir}, &stdout, &stderr)
	if code != 1 {
		t.Errorf("expected exit code 1 for negative thread count, got %d", code)
	}
}

func TestRunRejectsConflictingModeFlags(t *testing.T) {
	dir := t.TempDir()
	var stdout, stderr bytes.Buffer

	code := run([]string{"-l", "-s", dir}, &stdout, &stderr)
	if code != 1 {
		t.Errorf("expected exit code 1 for conflicting --link/--symlink, got %d", code)
	}
}

func TestRunVersionExitsOne(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{"-V"}, &stdout, &stderr)
	if code != 1 {
		t.Errorf("expected exit code 1 for --version, got %d", code)
	}
	if stdout.Len() == 0 {
		t.Error("expected version string on stdout")
	}
}

func TestRunPrintsSummaryForDeduplicatedFiles(t *testing.T) {
	dir := t.TempDir()
	contents := []byte("identical file contents")
	if err := os.WriteFile(filepath.Join(dir, "a"), contents, 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "b"), contents, 0644); err != nil {
		t.Fatal(err)
	}

	var stdout, stderr bytes.Buffer
	code := run([]string{"-l", "-P", "-t", "0", dir}, &stdout, &stderr)
	if code != 0 {
		t.Fatalf("expected exit code 0, got %d (stderr: %s)", code, stderr.String())
	}
	if !strings.Contains(stdout.String(), "duplicates found: 1") {
		t.Errorf("expected summary to report 1 duplicate, got %q", stdout.String())
	}
}

func TestRunDefaultsToCurrentDirectoryArgument(t *testing.T) {
	dir := t.TempDir()
	cwd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	defer os.Chdir(cwd)

	var stdout, stderr bytes.Buffer
	code := run([]string{"-P"}, &stdout, &stderr)
	if code != 0 {
		t.Fatalf("expected exit code 0 for empty directory, got %d (stderr: %s)", code, stderr.String())
	}
}
