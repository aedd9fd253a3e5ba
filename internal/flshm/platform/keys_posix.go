//go:build !windows

package platform

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// ftokPath is the file ftok-style key derivation stats to fold into the
// IPC key. It must exist and be stable for the lifetime of the channel,
// which is why it is created (not merely named) before stat'ing it.
func ftokPath(isPerUser bool) (string, error) {
	dir := os.TempDir()
	name := ".flshm"
	if isPerUser {
		name = fmt.Sprintf(".flshm-%d", os.Getuid())
	}
	path := filepath.Join(dir, name)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDONLY, 0644)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	f.Close()
	return path, nil
}

// ftok reproduces the classic SysV ftok(3) key derivation: fold a path's
// device and inode numbers together with a project identifier byte. Two
// processes that agree on path and projID always derive the same key,
// which is the entire point of ftok — it is the "opaque contract" spec §4.1
// asks platform key derivation to honor.
func ftok(path string, projID byte) (int32, error) {
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		return 0, fmt.Errorf("%w: stat %s: %v", ErrUnavailable, path, err)
	}
	key := (int32(projID) << 24) | (int32(st.Dev&0xff) << 16) | int32(st.Ino&0xffff)
	return key, nil
}

// sysvKeys derives the two SysV IPC keys (semaphore, segment) this host
// family's backend needs, using two distinct project identifiers so the
// independent SysV key->id namespaces never collide.
func sysvKeys(isPerUser bool, semProj, shmProj byte) (Keys, error) {
	path, err := ftokPath(isPerUser)
	if err != nil {
		return Keys{}, err
	}
	semKey, err := ftok(path, semProj)
	if err != nil {
		return Keys{}, err
	}
	shmKey, err := ftok(path, shmProj)
	if err != nil {
		return Keys{}, err
	}
	return Keys{Sem: fmt.Sprintf("%d", semKey), Shm: fmt.Sprintf("%d", shmKey)}, nil
}
