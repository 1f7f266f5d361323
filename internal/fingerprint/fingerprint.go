// Package fingerprint implements the per-file fingerprint stage: given a
// PathEntry, it queries the file's clone id and reads its first and last
// bytes. Hashing is deliberately deferred to the visited tree
// (internal/visited), which only computes it when a collision forces
// discrimination.
package fingerprint

import (
	"io"
	"os"

	"github.com/pkg/errors"

	"github.com/ttkb-oss/dedup/internal/dederrors"
	"github.com/ttkb-oss/dedup/internal/model"
	"github.com/ttkb-oss/dedup/internal/volume"
)

// Compute builds a FileMetadata from a PathEntry, querying the file's clone
// id and reading its first and last bytes. Any failure is returned as a
// *dederrors.Error of kind KindFingerprint; the caller should log it and
// drop the entry rather than propagate it as fatal.
func Compute(entry model.PathEntry) (*model.FileMetadata, error) {
	cloneID, err := volume.QueryCloneID(entry.Path)
	if err != nil {
		return nil, dederrors.New(dederrors.KindFingerprint, entry.Path, errors.Wrap(err, "unable to query clone id"))
	}

	mayShareBlocks, err := volume.QueryMayShareBlocks(entry.Path)
	if err != nil {
		// This attribute is a preserved-but-unused future hook; its
		// absence shouldn't drop an otherwise fingerprintable file.
		mayShareBlocks = false
	}

	first, last, err := firstAndLastByte(entry.Path, entry.Size)
	if err != nil {
		return nil, dederrors.New(dederrors.KindFingerprint, entry.Path, err)
	}

	return &model.FileMetadata{
		PathEntry:      entry,
		CloneID:        cloneID,
		First:          first,
		Last:           last,
		MayShareBlocks: mayShareBlocks,
	}, nil
}

// firstAndLastByte reads a file's first and last bytes without reading
// (or mapping) the whole thing: open, read byte 0, seek to size-1, read,
// close.
func firstAndLastByte(path string, size uint64) (byte, byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, 0, errors.Wrap(err, "unable to open file")
	}
	defer file.Close()

	var firstBuf [1]byte
	if _, err := io.ReadFull(file, firstBuf[:]); err != nil {
		return 0, 0, errors.Wrap(err, "unable to read first byte")
	}

	if size > 1 {
		if _, err := file.Seek(int64(size-1), io.SeekStart); err != nil {
			return 0, 0, errors.Wrap(err, "unable to seek to last byte")
		}
		var lastBuf [1]byte
		if _, err := io.ReadFull(file, lastBuf[:]); err != nil {
			return 0, 0, errors.Wrap(err, "unable to read last byte")
		}
		return firstBuf[0], lastBuf[0], nil
	}

	return firstBuf[0], firstBuf[0], nil
}
