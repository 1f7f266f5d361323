//go:build !darwin

package volume

import (
	"encoding/binary"

	"github.com/google/uuid"
)

// QueryCloneID synthesizes a process-unique, non-colliding placeholder
// clone id on platforms without a real clone-id attribute (clone mode is
// unavailable there anyway — see QueryFormat). This still gives the origin
// selector's clone-id histogram a consistent story: every file observed
// on such a platform is its own singleton bucket, exactly as if a real
// attribute query had found no two files already sharing blocks.
func QueryCloneID(_ string) (uint64, error) {
	id := uuid.New()
	return binary.BigEndian.Uint64(id[:8]), nil
}

// QueryMayShareBlocks always reports false outside of Darwin/APFS, where
// the attribute does not exist.
func QueryMayShareBlocks(_ string) (bool, error) {
	return false, nil
}

// QueryPrivateSize always reports zero outside of Darwin/APFS. The
// post-clone check that consumes it is itself unreachable off Darwin,
// since QueryFormat never reports clone support there.
func QueryPrivateSize(_ string) (uint64, error) {
	return 0, nil
}
