//go:build darwin && !ios

package platform

/*
#include <semaphore.h>
#include <fcntl.h>
#include <errno.h>
#include <stdlib.h>

static sem_t *flshm_sem_open(const char *name) {
	sem_t *s = sem_open(name, O_CREAT, 0600, 1);
	return s;
}
*/
import "C"

import (
	"fmt"
	"unsafe"
)

// posixSemaphore is a named POSIX semaphore, the mechanism spec §1/§6
// call for on macOS ("a string name for the named POSIX semaphore").
// sem_open with O_CREAT and no O_EXCL either creates it with the given
// initial value or attaches to the existing one unchanged — exactly the
// "create if absent, otherwise attach" contract spec §4.1 asks for, with
// no separate race-prone create/attach dance needed (unlike the SysV
// semaphore backends).
type posixSemaphore struct {
	sem unsafe.Pointer
}

func openPosixSemaphore(name string) (*posixSemaphore, error) {
	cName := C.CString(name)
	defer C.free(unsafe.Pointer(cName))

	s := C.flshm_sem_open(cName)
	if s == nil {
		return nil, fmt.Errorf("%w: sem_open %s failed", ErrUnavailable, name)
	}
	return &posixSemaphore{sem: unsafe.Pointer(s)}, nil
}

func (p *posixSemaphore) lock() error {
	if C.sem_wait((*C.sem_t)(p.sem)) != 0 {
		return fmt.Errorf("%w: sem_wait failed", ErrLockLost)
	}
	return nil
}

func (p *posixSemaphore) unlock() error {
	if C.sem_post((*C.sem_t)(p.sem)) != 0 {
		return fmt.Errorf("%w: sem_post failed", ErrLockLost)
	}
	return nil
}
