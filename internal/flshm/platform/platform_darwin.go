//go:build darwin && !ios

package platform

import (
	"fmt"
	"os"
)

// darwinInfo backs the region on macOS: a named POSIX semaphore plus a
// SysV shared-memory segment (spec §1/§6: "POSIX+SysV on macOS with a
// named semaphore").
type darwinInfo struct {
	sem *posixSemaphore
	seg *sysvSegment
}

// DeriveKeys derives the POSIX semaphore name and the SysV segment key
// for this host, scoped per-user or per-host per isPerUser.
func DeriveKeys(isPerUser bool) (Keys, error) {
	path, err := ftokPath(isPerUser)
	if err != nil {
		return Keys{}, err
	}
	shmKey, err := ftok(path, 'M')
	if err != nil {
		return Keys{}, err
	}
	semName := "/flshm"
	if isPerUser {
		semName = fmt.Sprintf("/flshm.u%d", os.Getuid())
	}
	return Keys{Sem: semName, Shm: fmt.Sprintf("%d", shmKey)}, nil
}

// Open creates or attaches the semaphore and segment for this scope and
// maps the segment into this process.
func Open(isPerUser bool) (Info, error) {
	keys, err := DeriveKeys(isPerUser)
	if err != nil {
		return nil, err
	}
	sem, err := openPosixSemaphore(keys.Sem)
	if err != nil {
		return nil, err
	}
	seg, err := attachSysvSegment(keys.Shm, RegionSize)
	if err != nil {
		return nil, err
	}
	return &darwinInfo{sem: sem, seg: seg}, nil
}

func (i *darwinInfo) Bytes() []byte { return i.seg.data }
func (i *darwinInfo) Lock() error   { return i.sem.lock() }
func (i *darwinInfo) Unlock() error { return i.sem.unlock() }

// Close detaches the segment. The POSIX semaphore handle opened by Open is
// not closed; it stays open until the process exits.
func (i *darwinInfo) Close() error { return i.seg.detach() }
