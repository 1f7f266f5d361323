//go:build !windows

package walk

import (
	"io/fs"
	"syscall"

	"github.com/pkg/errors"

	"github.com/ttkb-oss/dedup/internal/model"
)

// entryFromInfo builds a PathEntry from an already-retrieved os.FileInfo,
// extracting device/inode/nlink/flags from the platform-specific stat
// structure.
func entryFromInfo(path string, info fs.FileInfo, depth uint16) (model.PathEntry, error) {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return model.PathEntry{}, errors.New("unable to extract raw filesystem information")
	}

	return model.PathEntry{
		Path:   path,
		Device: uint64(stat.Dev),
		Inode:  uint64(stat.Ino),
		Nlink:  uint64(stat.Nlink),
		Flags:  platformFlags(stat),
		Size:   uint64(info.Size()),
		Depth:  depth,
	}, nil
}
