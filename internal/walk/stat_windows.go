//go:build windows

package walk

import (
	"io/fs"

	"github.com/ttkb-oss/dedup/internal/model"
)

// entryFromInfo builds a PathEntry on Windows. Device/inode/nlink/flags
// have no direct os.FileInfo equivalent here without an extra
// GetFileInformationByHandle round trip; clone mode is unavailable on
// Windows regardless (internal/volume.QueryFormat never reports clone
// support there), so this path only needs to support the hardlink and
// symlink replace modes, for which device/inode act purely as metrics —
// zero values are safe defaults.
func entryFromInfo(path string, info fs.FileInfo, depth uint16) (model.PathEntry, error) {
	return model.PathEntry{
		Path:  path,
		Size:  uint64(info.Size()),
		Depth: depth,
	}, nil
}
