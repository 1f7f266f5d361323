// Package volume probes per-volume filesystem capabilities (clone support,
// extended attributes) and queries per-file opaque filesystem identifiers
// (clone id, private size) that the fingerprint and replacer components
// need. It is the one place in the engine that talks directly to
// platform-specific filesystem attribute APIs.
package volume

// Format identifies a filesystem's on-disk format, to the extent dedup
// cares: whether it is known to support copy-on-write file clones.
type Format uint8

const (
	// FormatUnknown is returned for any filesystem dedup doesn't
	// specifically recognize.
	FormatUnknown Format = iota
	// FormatAPFS is Apple's copy-on-write-capable filesystem.
	FormatAPFS
	// FormatHFS is HFS+ (or a variant), which does not support clonefile.
	FormatHFS
)

// SupportsClone reports whether files on a volume of this format can be
// cloned with copy-on-write semantics.
func (f Format) SupportsClone() bool {
	return f == FormatAPFS
}

// String returns a human-readable name for the format.
func (f Format) String() string {
	switch f {
	case FormatAPFS:
		return "apfs"
	case FormatHFS:
		return "hfs"
	default:
		return "unknown"
	}
}
