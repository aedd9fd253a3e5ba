//go:build linux

package platform

import (
	"fmt"
	"strconv"

	"golang.org/x/sys/unix"
)

// sysvSemaphore is a single-valued SysV semaphore used as a mutex. The
// Linux backend (spec §1: "POSIX+SysV on other Unix with a SysV
// semaphore") guards the region with this instead of a named POSIX
// semaphore. Scoped to linux alongside platform_unix.go/shm_sysv.go; see
// those files for why this module's "other Unix" backend does not
// currently extend to non-Linux BSDs.
type sysvSemaphore struct {
	id int
}

// openSysvSemaphore creates the semaphore if absent, initialized so the
// first Lock succeeds without blocking (spec §4.1: "created
// counting-initialized such that its first lock succeeds without
// blocking"), or attaches to it if another process already created it.
func openSysvSemaphore(semKey string) (*sysvSemaphore, error) {
	key, err := strconv.Atoi(semKey)
	if err != nil {
		return nil, fmt.Errorf("%w: bad sem key %q: %v", ErrUnavailable, semKey, err)
	}

	id, err := unix.Semget(key, 1, unix.IPC_CREAT|unix.IPC_EXCL|0600)
	if err == nil {
		if _, serr := unix.SemctlInt(id, 0, unix.SETVAL, 1); serr != nil {
			return nil, fmt.Errorf("%w: semctl SETVAL: %v", ErrUnavailable, serr)
		}
		return &sysvSemaphore{id: id}, nil
	}
	if err != unix.EEXIST {
		return nil, fmt.Errorf("%w: semget: %v", ErrUnavailable, err)
	}

	id, err = unix.Semget(key, 1, 0600)
	if err != nil {
		return nil, fmt.Errorf("%w: semget (attach): %v", ErrUnavailable, err)
	}
	return &sysvSemaphore{id: id}, nil
}

func (s *sysvSemaphore) lock() error {
	ops := []unix.Sembuf{{SemNum: 0, SemOp: -1, SemFlg: 0}}
	if err := unix.Semop(s.id, ops, nil); err != nil {
		return fmt.Errorf("%w: semop lock: %v", ErrLockLost, err)
	}
	return nil
}

func (s *sysvSemaphore) unlock() error {
	ops := []unix.Sembuf{{SemNum: 0, SemOp: 1, SemFlg: 0}}
	if err := unix.Semop(s.id, ops, nil); err != nil {
		return fmt.Errorf("%w: semop unlock: %v", ErrLockLost, err)
	}
	return nil
}
