//go:build linux

package platform

// unixInfo backs the region on Linux: SysV semaphore plus SysV shared
// memory, both keyed by ftok-derived numeric keys (spec §1/§6).
//
// This backend is restricted to Linux rather than every non-Darwin,
// non-Windows host: its segment half is built on
// golang.org/x/sys/unix's SysvShmGet/SysvShmAttach/SysvShmDetach (see
// shm_sysv.go), which that package only provides for linux and
// darwin/!ios. Other BSDs have no SysV-segment backend in this module;
// see DESIGN.md for the tradeoff.
type unixInfo struct {
	sem *sysvSemaphore
	seg *sysvSegment
}

// DeriveKeys derives the SysV semaphore and segment keys for this host,
// scoped per-user or per-host per isPerUser (spec §4.1 keys()).
func DeriveKeys(isPerUser bool) (Keys, error) {
	return sysvKeys(isPerUser, 'S', 'M')
}

// Open creates (if absent) and attaches the semaphore and segment for
// this scope, mapping the segment into this process (spec §4.1 open()).
func Open(isPerUser bool) (Info, error) {
	keys, err := DeriveKeys(isPerUser)
	if err != nil {
		return nil, err
	}
	sem, err := openSysvSemaphore(keys.Sem)
	if err != nil {
		return nil, err
	}
	seg, err := attachSysvSegment(keys.Shm, RegionSize)
	if err != nil {
		return nil, err
	}
	return &unixInfo{sem: sem, seg: seg}, nil
}

func (i *unixInfo) Bytes() []byte { return i.seg.data }
func (i *unixInfo) Lock() error   { return i.sem.lock() }
func (i *unixInfo) Unlock() error { return i.sem.unlock() }
func (i *unixInfo) Close() error  { return i.seg.detach() }
