//go:build !windows

package reaper

import (
	"errors"
	"os"
	"syscall"
)

// DefaultLiveness probes process liveness with a signal-0 send, the usual
// Unix idiom for "does this PID still exist" without actually affecting
// the target process.
func DefaultLiveness(pid int) bool {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	// EPERM means the process exists but belongs to another user.
	err = proc.Signal(syscall.Signal(0))
	return err == nil || errors.Is(err, syscall.EPERM)
}
