package clonefile

/*
#include <stdlib.h>
#include <sys/clonefile.h>
#include <copyfile.h>
#include <errno.h>
*/
import "C"

import (
	"unsafe"

	"github.com/pkg/errors"
)

func clone(src, dst string) error {
	csrc := C.CString(src)
	defer C.free(unsafe.Pointer(csrc))
	cdst := C.CString(dst)
	defer C.free(unsafe.Pointer(cdst))

	if rc, err := C.clonefile(csrc, cdst, 0); rc != 0 {
		return errors.Wrap(err, "clonefile(2) failed")
	}
	return nil
}

func copyMetadataCheck(staging, dst string) (bool, error) {
	cdst := C.CString(dst)
	defer C.free(unsafe.Pointer(cdst))
	cstaging := C.CString(staging)
	defer C.free(unsafe.Pointer(cstaging))

	flags := C.copyfile_flags_t(C.COPYFILE_CHECK | C.COPYFILE_METADATA)
	result, err := C.copyfile(cdst, cstaging, nil, flags)
	if result < 0 {
		return false, errors.Wrap(err, "copyfile(3) check failed")
	}

	wouldCopyData := (result & C.COPYFILE_DATA) != 0
	return wouldCopyData, nil
}

func copyMetadata(staging, dst string) error {
	cdst := C.CString(dst)
	defer C.free(unsafe.Pointer(cdst))
	cstaging := C.CString(staging)
	defer C.free(unsafe.Pointer(cstaging))

	flags := C.copyfile_flags_t(C.COPYFILE_METADATA)
	if rc, err := C.copyfile(cdst, cstaging, nil, flags); rc != 0 {
		return errors.Wrap(err, "copyfile(3) metadata copy failed")
	}
	return nil
}
