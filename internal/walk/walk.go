// Package walk implements the filesystem adapter: it walks one or more
// root paths and yields PathEntry values for every regular, non-empty
// file, skipping staging artifacts from prior crashed runs and
// (optionally) paths matching user-supplied exclusion globs. It honors a
// maximum recursion depth and an optional same-device restriction.
//
// This avoids sorting directory entries and visits a directory's own
// metadata before recursing into its contents, but doesn't attempt a
// race-free *at-based directory type, since dedup isn't meant to be safe
// against a concurrently-mutating tree.
package walk

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/pkg/errors"
	"golang.org/x/text/unicode/norm"

	"github.com/ttkb-oss/dedup/internal/dederrors"
	"github.com/ttkb-oss/dedup/internal/logging"
	"github.com/ttkb-oss/dedup/internal/model"
	"github.com/ttkb-oss/dedup/internal/volume"
)

// stagingPrefix is the basename prefix used for intermediate clone-replace
// staging files. A file whose basename begins with this prefix is always
// skipped, since encountering one means a prior run crashed
// mid-replacement.
const stagingPrefix = ".~."

// Visitor is invoked once per discovered regular, non-empty file that
// wasn't excluded. A non-nil error from Visitor aborts the walk for that
// root.
type Visitor func(model.PathEntry) error

// DiagnosticFunc receives non-fatal per-entry walk errors
// (dederrors.KindWalker): permission failures, broken symlinks
// encountered during traversal, and similar.
type DiagnosticFunc func(*dederrors.Error)

// Options configures a walk.
type Options struct {
	// OneFileSystem, if true, prevents the walk from crossing device
	// boundaries (-x/--one-file-system).
	OneFileSystem bool
	// MaxDepth, if non-negative, is the maximum recursion depth relative to
	// each root (-d/--depth). A negative value means unlimited.
	MaxDepth int
	// Exclude holds doublestar glob patterns; any path matching one of them
	// is skipped, along with (for directories) its entire subtree.
	Exclude []string
	// RequireCloneSupport, if true, skips every path whose volume doesn't
	// support copy-on-write clones, along with (for directories) its
	// entire subtree. Set this only in clone mode; hardlink and symlink
	// mode walk every volume.
	RequireCloneSupport bool
	// Logger receives diagnostic and trace output.
	Logger *logging.Logger
}

// Walk walks each of the given roots, invoking visit for every eligible
// regular, non-empty file. Per-entry errors are reported via diagnostic and
// do not stop the walk; only a visit error or a failure to stat a root
// itself returns an error.
func Walk(roots []string, opts Options, visit Visitor, diagnostic DiagnosticFunc) error {
	if opts.MaxDepth < 0 {
		opts.MaxDepth = -1
	}
	if diagnostic == nil {
		diagnostic = func(*dederrors.Error) {}
	}

	for _, root := range roots {
		info, err := os.Lstat(root)
		if err != nil {
			return errors.Wrapf(err, "unable to stat root %q", root)
		}

		var rootDevice uint64
		if opts.OneFileSystem {
			entry, err := entryFromInfo(root, info, 0)
			if err != nil {
				return errors.Wrapf(err, "unable to query root %q", root)
			}
			rootDevice = entry.Device
		}

		w := &walker{
			opts:         opts,
			visit:        visit,
			diagnostic:   diagnostic,
			rootDevice:   rootDevice,
			cloneSupport: make(map[uint64]bool),
		}
		if err := w.walk(root, info, 0); err != nil {
			return err
		}
	}

	return nil
}

type walker struct {
	opts         Options
	visit        Visitor
	diagnostic   DiagnosticFunc
	rootDevice   uint64
	cloneSupport map[uint64]bool
}

// cloneSupported reports whether path's volume supports copy-on-write
// clones, caching the result per device so each volume is only probed
// once. Always true when the walk wasn't configured to require clone
// support.
func (w *walker) cloneSupported(path string, info fs.FileInfo) bool {
	if !w.opts.RequireCloneSupport {
		return true
	}

	entry, err := entryFromInfo(path, info, 0)
	if err != nil {
		return true
	}
	if supported, ok := w.cloneSupport[entry.Device]; ok {
		return supported
	}

	format, err := volume.QueryFormat(path)
	supported := err == nil && format.SupportsClone()
	w.cloneSupport[entry.Device] = supported
	return supported
}

func (w *walker) excluded(path string) bool {
	if len(w.opts.Exclude) == 0 {
		return false
	}
	normalized := norm.NFC.String(path)
	base := filepath.Base(normalized)
	for _, pattern := range w.opts.Exclude {
		if ok, _ := doublestar.PathMatch(pattern, normalized); ok {
			return true
		}
		if ok, _ := doublestar.Match(pattern, base); ok {
			return true
		}
	}
	return false
}

func (w *walker) walk(path string, info fs.FileInfo, depth uint16) error {
	if strings.HasPrefix(filepath.Base(path), stagingPrefix) {
		w.opts.Logger.Tracef("skipping staging artifact %s", path)
		return nil
	}
	if w.excluded(path) {
		w.opts.Logger.Tracef("skipping excluded path %s", path)
		return nil
	}
	if !w.cloneSupported(path, info) {
		w.opts.Logger.Tracef("skipping %s, volume does not support clone", path)
		return nil
	}

	if info.IsDir() {
		if w.opts.MaxDepth >= 0 && int(depth) > w.opts.MaxDepth {
			return nil
		}

		entries, err := os.ReadDir(path)
		if err != nil {
			w.diagnostic(dederrors.New(dederrors.KindWalker, path, errors.Wrap(err, "unable to read directory")))
			return nil
		}

		for _, entry := range entries {
			childInfo, err := entry.Info()
			if err != nil {
				w.diagnostic(dederrors.New(dederrors.KindWalker, filepath.Join(path, entry.Name()), errors.Wrap(err, "unable to stat entry")))
				continue
			}
			childPath := filepath.Join(path, entry.Name())
			if err := w.walk(childPath, childInfo, depth+1); err != nil {
				return err
			}
		}

		return nil
	}

	if !info.Mode().IsRegular() {
		return nil
	}
	if info.Size() == 0 {
		return nil
	}

	entry, err := entryFromInfo(path, info, depth)
	if err != nil {
		w.diagnostic(dederrors.New(dederrors.KindWalker, path, err))
		return nil
	}

	if w.opts.OneFileSystem && depth > 0 && entry.Device != w.rootDevice {
		w.opts.Logger.Tracef("skipping %s, different device", path)
		return nil
	}

	if err := w.visit(entry); err != nil {
		return err
	}

	return nil
}
