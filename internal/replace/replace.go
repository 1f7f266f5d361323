// Package replace implements the replacer: for a chosen origin and a
// non-origin member of a duplicate set, it performs an atomic,
// metadata-preserving clone replacement, or a simpler hardlink or symlink
// replacement, depending on the run's fixed mode.
package replace

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/ttkb-oss/dedup/internal/clonefile"
	"github.com/ttkb-oss/dedup/internal/dederrors"
	"github.com/ttkb-oss/dedup/internal/logging"
	"github.com/ttkb-oss/dedup/internal/model"
	"github.com/ttkb-oss/dedup/internal/must"
	"github.com/ttkb-oss/dedup/internal/volume"
)

// Mode is a replacement strategy, fixed for the entire run.
type Mode int

const (
	ModeClone Mode = iota
	ModeHardlink
	ModeSymlink
)

// stagingPrefix marks an in-progress clone replacement's temporary file.
// The walker skips any basename carrying this prefix.
const stagingPrefix = ".~."

// maxPathLength bounds the staging path the same way the underlying
// platform does; it's a conservative value that holds on every target
// platform's PATH_MAX.
const maxPathLength = 1024

// Outcome describes what happened to a single non-origin member.
type Outcome struct {
	// SavedBytes is added to the run's "saved" counter.
	SavedBytes uint64
	// AlreadySavedBytes is added to the run's "already saved" counter
	// (post-clone private-size reconciliation).
	AlreadySavedBytes uint64
	// Skipped is true when the member was left untouched (nlink > 1
	// without force, immutable, or already a no-op for this mode).
	Skipped bool
	// SkipReason explains why, when Skipped is true.
	SkipReason string
}

// Replacer performs replacements in one fixed Mode.
type Replacer struct {
	Mode   Mode
	DryRun bool
	Force  bool
	logger *logging.Logger
}

// New creates a Replacer.
func New(mode Mode, dryRun, force bool, logger *logging.Logger) *Replacer {
	return &Replacer{Mode: mode, DryRun: dryRun, Force: force, logger: logger.Sublogger("replace")}
}

// Replace replaces member with a reference to origin, per the configured
// mode. It never returns an error for a condition that's a legitimate
// skip; it returns an error only for *dederrors.Error-wrapped failures,
// which the caller should log and move on from — other members of the
// set are unaffected.
func (r *Replacer) Replace(origin, member *model.FileMetadata) (Outcome, error) {
	if skip, reason := r.skipCondition(origin, member); skip {
		return Outcome{Skipped: true, SkipReason: reason}, nil
	}

	if r.DryRun {
		r.logger.Infof("would replace %s with %s (%s)", member.Path, origin.Path, r.Mode)
		return Outcome{SavedBytes: member.Size}, nil
	}

	switch r.Mode {
	case ModeClone:
		return r.replaceWithClone(origin, member)
	case ModeHardlink:
		return r.replaceWithHardlink(origin, member)
	case ModeSymlink:
		return r.replaceWithSymlink(origin, member)
	default:
		panic("unknown replace mode")
	}
}

func (r *Replacer) skipCondition(origin, member *model.FileMetadata) (bool, string) {
	if member.Nlink > 1 && !r.Force {
		return true, "has other hard links"
	}
	if member.Immutable() {
		return true, "immutable"
	}

	switch r.Mode {
	case ModeClone:
		if member.CloneID == origin.CloneID {
			return true, "already a clone of the origin"
		}
	case ModeHardlink:
		if member.Inode == origin.Inode {
			return true, "already hardlinked to the origin"
		}
	case ModeSymlink:
		if alreadyLinked, err := symlinksToOrigin(member.Path, origin.Path); err == nil && alreadyLinked {
			return true, "already a symlink to the origin"
		}
	}

	return false, ""
}

func (m Mode) String() string {
	switch m {
	case ModeClone:
		return "clone"
	case ModeHardlink:
		return "hardlink"
	case ModeSymlink:
		return "symlink"
	default:
		return "unknown"
	}
}

// stagingPath computes dirname(dst) + "/.~." + basename(dst).
func stagingPath(dst string) (string, error) {
	staging := filepath.Join(filepath.Dir(dst), stagingPrefix+filepath.Base(dst))
	if len(staging) > maxPathLength {
		return "", dederrors.New(dederrors.KindReplacement, dst, errors.New("staging path too long"))
	}
	return staging, nil
}

// replaceWithClone implements the atomic metadata-preserving clone
// replacement protocol: clone, validate, metadata-copy-check, metadata
// copy, re-validate, atomic rename.
func (r *Replacer) replaceWithClone(origin, member *model.FileMetadata) (Outcome, error) {
	staging, err := stagingPath(member.Path)
	if err != nil {
		return Outcome{}, err
	}

	if _, err := os.Stat(staging); err == nil {
		return Outcome{}, dederrors.New(dederrors.KindReplacement, member.Path,
			errors.Errorf("staging file %s already exists; remove it to retry", staging))
	}

	if err := clonefile.Clone(origin.Path, staging); err != nil {
		must.OSRemove(staging, r.logger)
		return Outcome{}, dederrors.New(dederrors.KindReplacement, member.Path, errors.Wrap(err, "clone failed"))
	}

	if err := validateStaging(staging); err != nil {
		must.OSRemove(staging, r.logger)
		return Outcome{}, dederrors.New(dederrors.KindReplacement, member.Path, err)
	}

	wouldCopyData, err := clonefile.CopyMetadataCheck(staging, member.Path)
	if err != nil {
		must.OSRemove(staging, r.logger)
		return Outcome{}, dederrors.New(dederrors.KindReplacement, member.Path, errors.Wrap(err, "metadata-copy check failed"))
	}
	if wouldCopyData {
		must.OSRemove(staging, r.logger)
		return Outcome{}, dederrors.New(dederrors.KindReplacement, member.Path,
			errors.New("metadata copy would also copy data; aborting"))
	}

	if err := clonefile.CopyMetadata(staging, member.Path); err != nil {
		must.OSRemove(staging, r.logger)
		return Outcome{}, dederrors.New(dederrors.KindReplacement, member.Path, errors.Wrap(err, "metadata copy failed"))
	}

	if err := validateStaging(staging); err != nil {
		must.OSRemove(staging, r.logger)
		return Outcome{}, dederrors.New(dederrors.KindReplacement, member.Path, err)
	}

	if err := os.Rename(staging, member.Path); err != nil {
		must.OSRemove(staging, r.logger)
		return Outcome{}, dederrors.New(dederrors.KindReplacement, member.Path, errors.Wrap(err, "rename over destination failed"))
	}

	return r.reconcileAfterClone(origin, member), nil
}

// reconcileAfterClone reconciles the post-clone state: after a clone,
// re-read the member's clone id. A mismatch against the origin isn't
// necessarily a failure — if the filesystem reports a private size of
// zero, the file is nonetheless a clone, counted as "already saved"
// rather than "saved".
func (r *Replacer) reconcileAfterClone(origin, member *model.FileMetadata) Outcome {
	newCloneID, err := volume.QueryCloneID(member.Path)
	if err != nil {
		r.logger.Warnf("unable to re-query clone id for %s after clone: %v", member.Path, err)
		return Outcome{SavedBytes: member.Size}
	}
	if newCloneID == origin.CloneID {
		return Outcome{SavedBytes: member.Size}
	}

	privateSize, err := volume.QueryPrivateSize(member.Path)
	if err != nil {
		r.logger.Warnf("unable to query private size for %s: %v", member.Path, err)
		return Outcome{SavedBytes: member.Size}
	}
	if privateSize == 0 {
		return Outcome{AlreadySavedBytes: member.Size}
	}

	r.logger.Warnf("clone of %s reports nonzero private size %d with a different clone id than %s", member.Path, privateSize, origin.Path)
	return Outcome{SavedBytes: member.Size}
}

func validateStaging(staging string) error {
	info, err := os.Stat(staging)
	if err != nil {
		return errors.Wrap(err, "staging file stat failed")
	}
	if info.Size() == 0 {
		return errors.New("staging file is empty")
	}

	file, err := os.OpenFile(staging, os.O_RDWR, 0)
	if err != nil {
		return errors.Wrap(err, "staging file not readable/writable")
	}
	must.Close(file, nil)

	return nil
}

// replaceWithHardlink unlinks member and replaces it with a hardlink to
// origin. member's prior metadata is lost; this is the accepted cost of
// the mode.
func (r *Replacer) replaceWithHardlink(origin, member *model.FileMetadata) (Outcome, error) {
	if err := os.Remove(member.Path); err != nil {
		return Outcome{}, dederrors.New(dederrors.KindReplacement, member.Path, errors.Wrap(err, "unable to remove destination"))
	}
	if err := os.Link(origin.Path, member.Path); err != nil {
		return Outcome{}, dederrors.New(dederrors.KindReplacement, member.Path, errors.Wrap(err, "unable to create hard link"))
	}
	return Outcome{SavedBytes: member.Size}, nil
}

// replaceWithSymlink unlinks member and replaces it with a relative
// symlink to origin.
func (r *Replacer) replaceWithSymlink(origin, member *model.FileMetadata) (Outcome, error) {
	target, err := relativeSymlinkTarget(member.Path, origin.Path)
	if err != nil {
		return Outcome{}, dederrors.New(dederrors.KindReplacement, member.Path, err)
	}
	if err := os.Remove(member.Path); err != nil {
		return Outcome{}, dederrors.New(dederrors.KindReplacement, member.Path, errors.Wrap(err, "unable to remove destination"))
	}
	if err := os.Symlink(target, member.Path); err != nil {
		return Outcome{}, dederrors.New(dederrors.KindReplacement, member.Path, errors.Wrap(err, "unable to create symlink"))
	}
	return Outcome{SavedBytes: member.Size}, nil
}

// relativeSymlinkTarget computes a relative path from dirname(dst) to src:
// resolve both to canonical absolute paths, strip the longest common
// directory prefix, emit one ".." per remaining directory on dst's side,
// then append src's tail.
func relativeSymlinkTarget(dst, src string) (string, error) {
	absSrc, err := filepath.Abs(src)
	if err == nil {
		absSrc, err = filepath.EvalSymlinks(absSrc)
	}
	if err != nil {
		return "", errors.Wrap(err, "unable to resolve source path")
	}
	absDstDir, err := filepath.Abs(filepath.Dir(dst))
	if err == nil {
		absDstDir, err = filepath.EvalSymlinks(absDstDir)
	}
	if err != nil {
		return "", errors.Wrap(err, "unable to resolve destination directory")
	}

	rel, err := filepath.Rel(absDstDir, absSrc)
	if err != nil {
		return "", errors.Wrap(err, "unable to compute relative path")
	}
	return rel, nil
}

// symlinksToOrigin reports whether path is currently a symlink resolving
// to origin.
func symlinksToOrigin(path, origin string) (bool, error) {
	target, err := os.Readlink(path)
	if err != nil {
		return false, err
	}
	if !filepath.IsAbs(target) {
		target = filepath.Join(filepath.Dir(path), target)
	}
	absOrigin, err := filepath.Abs(origin)
	if err != nil {
		return false, err
	}
	return filepath.Clean(target) == filepath.Clean(absOrigin), nil
}
