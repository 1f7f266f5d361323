//go:build !darwin

package volume

import "github.com/pkg/errors"

// QueryFormat queries the filesystem format for the volume containing path.
// Clone-capable formats are currently only recognized on Darwin (APFS), so
// every other platform reports FormatUnknown, which SupportsClone treats as
// not clone-capable.
func QueryFormat(_ string) (Format, error) {
	return FormatUnknown, errors.New("clone-capable filesystem detection is only supported on darwin")
}
