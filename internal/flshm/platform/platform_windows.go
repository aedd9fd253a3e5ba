//go:build windows

package platform

import (
	"fmt"
	"os/user"
	"unsafe"

	"golang.org/x/sys/windows"
)

// windowsInfo backs the region on Windows: a named mutex guarding a named
// file mapping backed by the system paging file (spec §1/§6: "Windows
// named objects").
type windowsInfo struct {
	mutex   windows.Handle
	mapping windows.Handle
	addr    uintptr
	data    []byte
}

// maxWindowsNameLen is spec §6's bound: Windows object names here must fit
// in 23 characters plus a NUL.
const maxWindowsNameLen = 23

// DeriveKeys derives the two named-object strings Windows needs: one for
// the mutex, one for the file mapping (spec §4.1/§6).
func DeriveKeys(isPerUser bool) (Keys, error) {
	suffix := ""
	if isPerUser {
		u, err := user.Current()
		if err != nil {
			return Keys{}, fmt.Errorf("%w: current user: %v", ErrUnavailable, err)
		}
		suffix = "_" + u.Uid
	}
	mutexName := truncateName("FLSHM_MTX"+suffix, maxWindowsNameLen)
	mapName := truncateName("FLSHM_MAP"+suffix, maxWindowsNameLen)
	return Keys{Sem: mutexName, Shm: mapName}, nil
}

func truncateName(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// Open creates (if absent) the named mutex and file mapping, maps the
// mapping into this process's address space, and returns the handle.
func Open(isPerUser bool) (Info, error) {
	keys, err := DeriveKeys(isPerUser)
	if err != nil {
		return nil, err
	}

	mutexNamePtr, err := windows.UTF16PtrFromString(keys.Sem)
	if err != nil {
		return nil, fmt.Errorf("%w: mutex name: %v", ErrUnavailable, err)
	}
	// CreateMutex creates the object counting-initialized as
	// not-owned/available, so the first WaitForSingleObject (our Lock)
	// succeeds without blocking, whether we created it or merely opened
	// an existing one (spec §4.1).
	mutex, err := windows.CreateMutex(nil, false, mutexNamePtr)
	if err != nil {
		return nil, fmt.Errorf("%w: CreateMutex: %v", ErrUnavailable, err)
	}

	mapNamePtr, err := windows.UTF16PtrFromString(keys.Shm)
	if err != nil {
		windows.CloseHandle(mutex)
		return nil, fmt.Errorf("%w: mapping name: %v", ErrUnavailable, err)
	}
	mapping, err := windows.CreateFileMapping(
		windows.InvalidHandle, // backed by the system paging file
		nil,
		windows.PAGE_READWRITE,
		0, RegionSize,
		mapNamePtr,
	)
	if err != nil {
		windows.CloseHandle(mutex)
		return nil, fmt.Errorf("%w: CreateFileMapping: %v", ErrUnavailable, err)
	}

	addr, err := windows.MapViewOfFile(mapping, windows.FILE_MAP_ALL_ACCESS, 0, 0, RegionSize)
	if err != nil {
		windows.CloseHandle(mapping)
		windows.CloseHandle(mutex)
		return nil, fmt.Errorf("%w: MapViewOfFile: %v", ErrUnavailable, err)
	}

	data := unsafe.Slice((*byte)(unsafe.Pointer(addr)), RegionSize)
	return &windowsInfo{mutex: mutex, mapping: mapping, addr: addr, data: data}, nil
}

func (i *windowsInfo) Bytes() []byte { return i.data }

func (i *windowsInfo) Lock() error {
	ev, err := windows.WaitForSingleObject(i.mutex, windows.INFINITE)
	if err != nil || ev == windows.WAIT_FAILED {
		return fmt.Errorf("%w: WaitForSingleObject: %v", ErrLockLost, err)
	}
	return nil
}

func (i *windowsInfo) Unlock() error {
	if err := windows.ReleaseMutex(i.mutex); err != nil {
		return fmt.Errorf("%w: ReleaseMutex: %v", ErrLockLost, err)
	}
	return nil
}

func (i *windowsInfo) Close() error {
	if i.addr != 0 {
		windows.UnmapViewOfFile(i.addr)
		i.addr = 0
	}
	windows.CloseHandle(i.mapping)
	windows.CloseHandle(i.mutex)
	return nil
}
