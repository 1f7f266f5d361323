// Package contenthash computes the collision-resistant content hash used
// by the visited tree to discriminate files that share (device, size,
// first byte, last byte). SHA-256 is used via the standard library, which
// dispatches to hardware-accelerated implementations on amd64/arm64 — any
// 256-bit collision-resistant digest would serve equally well here.
package contenthash

import (
	"crypto/sha256"
	"io"
	"os"

	"github.com/pkg/errors"

	"github.com/ttkb-oss/dedup/internal/model"
)

// Compute streams a file's entire contents through SHA-256 and returns the
// resulting digest. A hash, once computed by a caller, must never be
// recomputed; this function itself is pure and doesn't enforce that —
// model.FileMetadata.SetHash does.
func Compute(path string) ([model.HashSize]byte, error) {
	var digest [model.HashSize]byte

	file, err := os.Open(path)
	if err != nil {
		return digest, errors.Wrap(err, "unable to open file for hashing")
	}
	defer file.Close()

	hasher := sha256.New()
	if _, err := io.Copy(hasher, file); err != nil {
		return digest, errors.Wrap(err, "unable to read file for hashing")
	}

	copy(digest[:], hasher.Sum(nil))
	return digest, nil
}
