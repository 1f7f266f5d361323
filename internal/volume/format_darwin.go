package volume

import (
	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// metadataRepresentsAPFS returns whether or not the specified filesystem
// metadata represents an APFS filesystem.
func metadataRepresentsAPFS(metadata *unix.Statfs_t) bool {
	name := metadata.Fstypename
	return len(name) >= 4 && name[0] == 'a' && name[1] == 'p' && name[2] == 'f' && name[3] == 's'
}

// metadataRepresentsHFS returns whether or not the specified filesystem
// metadata represents an HFS filesystem or a variant thereof.
func metadataRepresentsHFS(metadata *unix.Statfs_t) bool {
	name := metadata.Fstypename
	return len(name) >= 3 && name[0] == 'h' && name[1] == 'f' && name[2] == 's'
}

func formatFromStatfs(metadata *unix.Statfs_t) Format {
	if metadataRepresentsAPFS(metadata) {
		return FormatAPFS
	} else if metadataRepresentsHFS(metadata) {
		return FormatHFS
	}
	return FormatUnknown
}

// QueryFormat queries the filesystem format for the volume containing path.
func QueryFormat(path string) (Format, error) {
	var metadata unix.Statfs_t
	if err := unix.Statfs(path, &metadata); err != nil {
		return FormatUnknown, errors.Wrap(err, "unable to query filesystem metadata")
	}
	return formatFromStatfs(&metadata), nil
}
