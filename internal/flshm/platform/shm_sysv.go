//go:build linux || (darwin && !ios)

package platform

import (
	"fmt"
	"strconv"

	"golang.org/x/sys/unix"
)

// sysvSegment is a SysV shared-memory segment mapped into this process.
// Shared by the darwin and generic-unix backends: both use SysV shmget/
// shmat for the segment even though they differ on the semaphore
// mechanism (spec §6: macOS still uses "a numeric key for the SysV
// shared-memory segment").
//
// This uses golang.org/x/sys/unix's SysvShmGet/SysvShmAttach/SysvShmDetach
// rather than raw unix.Syscall(unix.SYS_SHMGET, ...) calls: on Darwin,
// unix.Syscall dispatches its first argument as a libc function pointer,
// not a BSD trap number, so a numeric SYS_SHM* constant there jumps to
// garbage. SysvShmGet/Attach/Detach resolve the correct libc entry point
// per platform internally.
type sysvSegment struct {
	id   int
	data []byte
}

func attachSysvSegment(shmKey string, size int) (*sysvSegment, error) {
	key, err := strconv.Atoi(shmKey)
	if err != nil {
		return nil, fmt.Errorf("%w: bad shm key %q: %v", ErrUnavailable, shmKey, err)
	}

	id, err := unix.SysvShmGet(key, size, unix.IPC_CREAT|0600)
	if err != nil {
		return nil, fmt.Errorf("%w: shmget: %v", ErrUnavailable, err)
	}

	data, err := unix.SysvShmAttach(id, 0, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: shmat: %v", ErrUnavailable, err)
	}

	return &sysvSegment{id: id, data: data}, nil
}

func (s *sysvSegment) detach() error {
	if s == nil || s.data == nil {
		return nil
	}
	err := unix.SysvShmDetach(s.data)
	s.data = nil
	if err != nil {
		return fmt.Errorf("%w: shmdt: %v", ErrLockLost, err)
	}
	return nil
}
