//go:build windows

package reaper

import "golang.org/x/sys/windows"

// DefaultLiveness probes process liveness by attempting to open a query
// handle on the PID; os.FindProcess always succeeds on Windows regardless
// of whether the process exists, so it cannot be used for this check.
func DefaultLiveness(pid int) bool {
	h, err := windows.OpenProcess(windows.PROCESS_QUERY_LIMITED_INFORMATION, false, uint32(pid))
	if err != nil {
		return false
	}
	defer windows.CloseHandle(h)

	var code uint32
	if err := windows.GetExitCodeProcess(h, &code); err != nil {
		return false
	}
	return code == uint32(windows.STATUS_PENDING)
}
