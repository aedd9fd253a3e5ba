// Package flshm implements the shared-memory IPC channel historically used
// by the Flash ActionScript VM's LocalConnection facility: a single named
// shared-memory region, guarded by a named semaphore, carrying one
// tick-gated message slot and a capacity-8 connection registry.
package flshm

import "errors"

// Error discriminants returned by the core operations. Every operation
// that can fail returns one of these (possibly wrapped with fmt.Errorf's
// %w) rather than swallowing the failure.
var (
	// ErrUnavailable means the semaphore or segment could not be opened or
	// attached (permissions, exhaustion).
	ErrUnavailable = errors.New("flshm: semaphore/segment unavailable")

	// ErrLockLost means an OS-level lock or unlock call failed.
	ErrLockLost = errors.New("flshm: lock lost")

	// ErrTooLarge means a serialized message would exceed the 40,960-byte
	// body cap. The region is left unchanged.
	ErrTooLarge = errors.New("flshm: message too large")

	// ErrCorrupt means a read found size out of range or a frame field
	// missing/unterminated. The reader should treat the slot as empty.
	ErrCorrupt = errors.New("flshm: corrupt message frame")

	// ErrFull means the connection registry already holds 8 entries.
	ErrFull = errors.New("flshm: connection registry full")

	// ErrNotFound means a remove target was not present in the registry.
	ErrNotFound = errors.New("flshm: connection not found")

	// ErrInvalidName means a connection name failed the validity predicate.
	ErrInvalidName = errors.New("flshm: invalid connection name")

	// ErrInvalidArgument means a field value (version, sandbox, amfv, ...)
	// is outside its enumerated set.
	ErrInvalidArgument = errors.New("flshm: invalid argument")
)
