package volume

import (
	"unsafe"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// attrBitmapCount mirrors ATTR_BIT_MAP_COUNT: the number of attribute group
// words in an attrlist structure.
const attrBitmapCount = 5

const (
	// attrCmnExtCloneID mirrors ATTR_CMNEXT_CLONEID, the extended common
	// attribute requesting a file's clone identifier.
	attrCmnExtCloneID = 0x00000100
	// attrCmnExtExtFlags mirrors ATTR_CMNEXT_EXT_FLAGS, the extended common
	// attribute exposing extended flags such as EF_MAY_SHARE_BLOCKS.
	attrCmnExtExtFlags = 0x00000200
	// attrCmnExtPrivateSize mirrors ATTR_CMNEXT_PRIVATESIZE, the extended
	// common attribute reporting bytes not shared with any other file.
	attrCmnExtPrivateSize = 0x00000008
	// efMayShareBlocks mirrors EF_MAY_SHARE_BLOCKS.
	efMayShareBlocks = 0x00000001

	// fsoptAttrCmnExtended mirrors FSOPT_ATTR_CMN_EXTENDED, the getattrlist
	// option enabling the extended common attribute group.
	fsoptAttrCmnExtended = 0x00000020
)

// uint64Ref mirrors getattrlist's packed return buffer for a single
// extended attribute: a length-prefixed uint64 value.
type uint64Ref struct {
	length uint32
	value  uint64
}

// QueryCloneID queries a file's opaque clone identifier via getattrlist.
// Two files with equal clone ids share blocks; the converse is not
// guaranteed.
func QueryCloneID(path string) (uint64, error) {
	attrList := unix.Attrlist{
		Bitmapcount: attrBitmapCount,
		Forkattr:    attrCmnExtCloneID,
	}

	var ref uint64Ref
	buf := (*[unsafe.Sizeof(ref)]byte)(unsafe.Pointer(&ref))[:]

	if err := unix.Getattrlist(path, &attrList, buf, fsoptAttrCmnExtended); err != nil {
		return 0, errors.Wrap(err, "unable to query clone id")
	}

	return ref.value, nil
}

// QueryMayShareBlocks queries a file's EF_MAY_SHARE_BLOCKS extended flag.
// It is computed for every file but never consulted by any replacement
// decision — preserved purely as a future hook.
func QueryMayShareBlocks(path string) (bool, error) {
	attrList := unix.Attrlist{
		Bitmapcount: attrBitmapCount,
		Forkattr:    attrCmnExtExtFlags,
	}

	var ref uint64Ref
	buf := (*[unsafe.Sizeof(ref)]byte)(unsafe.Pointer(&ref))[:]

	if err := unix.Getattrlist(path, &attrList, buf, fsoptAttrCmnExtended); err != nil {
		return false, errors.Wrap(err, "unable to query extended flags")
	}

	return ref.value&efMayShareBlocks != 0, nil
}

// QueryPrivateSize queries the number of bytes in a file that are not
// shared with any other file. Used post-clone to distinguish a successful
// clone whose clone id briefly disagrees with the origin's (private size
// zero: already saved) from a genuine anomaly (private size nonzero: a
// diagnostic, not an error).
func QueryPrivateSize(path string) (uint64, error) {
	attrList := unix.Attrlist{
		Bitmapcount: attrBitmapCount,
		Forkattr:    attrCmnExtPrivateSize,
	}

	var ref uint64Ref
	buf := (*[unsafe.Sizeof(ref)]byte)(unsafe.Pointer(&ref))[:]

	if err := unix.Getattrlist(path, &attrList, buf, fsoptAttrCmnExtended); err != nil {
		return 0, errors.Wrap(err, "unable to query private size")
	}

	return ref.value, nil
}
