package walk

import (
	"syscall"

	"github.com/ttkb-oss/dedup/internal/model"
)

// BSD/Darwin st_flags bits dedup cares about (sys/stat.h).
const (
	ufImmutable  = 0x00000002
	ufCompressed = 0x00000020
	sfImmutable  = 0x00020000
)

// platformFlags maps Darwin's st_flags onto dedup's normalized flag bits.
func platformFlags(stat *syscall.Stat_t) uint32 {
	var flags uint32
	if stat.Flags&ufImmutable != 0 {
		flags |= model.FlagUserImmutable
	}
	if stat.Flags&sfImmutable != 0 {
		flags |= model.FlagSystemImmutable
	}
	if stat.Flags&ufCompressed != 0 {
		flags |= model.FlagCompressed
	}
	return flags
}
