// Package clonefile provides the clone primitive: an abstract clone(src,
// dst) operation, plus a "check metadata-only copy" probe and a
// metadata-copy operation, both backed by platform-specific system calls
// on Darwin/APFS (clonefile(2), copyfile(3)) and returning ErrUnsupported
// everywhere else.
package clonefile

import "errors"

// ErrUnsupported is returned by every operation in this package on a
// platform or volume that doesn't support CoW file clones.
var ErrUnsupported = errors.New("clone primitive not supported on this platform")

// Clone creates dst as a copy-on-write clone of src. dst must not already
// exist. It is the sole entry point for the OS-specific CoW call; callers
// never invoke a platform syscall directly.
func Clone(src, dst string) error {
	return clone(src, dst)
}

// CopyMetadataCheck reports whether copying dst's metadata onto staging
// would also copy data, without performing the copy. A true result means
// the caller must abort the replacement.
func CopyMetadataCheck(staging, dst string) (wouldCopyData bool, err error) {
	return copyMetadataCheck(staging, dst)
}

// CopyMetadata copies dst's metadata (mode, flags, ACLs, extended
// attributes) onto staging, without touching staging's data.
func CopyMetadata(staging, dst string) error {
	return copyMetadata(staging, dst)
}
