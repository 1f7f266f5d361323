//go:build !windows && !darwin

package walk

import "syscall"

// platformFlags has no equivalent of Darwin's st_flags on this platform, so
// dedup's immutable/compressed bits are never set here. Clone mode is
// unavailable outside Darwin/APFS anyway (internal/volume.QueryFormat), so
// the only consequence is that the hardlink and symlink replace modes don't
// get an immutable-skip signal on these platforms.
func platformFlags(_ *syscall.Stat_t) uint32 {
	return 0
}
