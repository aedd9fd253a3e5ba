package flshm

import (
	"fmt"

	"github.com/fantao963/flshm/internal/flshm/platform"
)

// Channel is an opened handle to the shared-memory region and its
// guarding semaphore. All operations lock the region for their duration
// and unlock it via a scoped release before returning, even on error
// paths (spec §5 Resource policy), so callers never need their own
// lock/unlock calls.
type Channel struct {
	info platform.Info
}

// Open opens (creating if absent) the semaphore and region for the given
// scope and maps it into the caller's address space (spec §4.1 open()).
func Open(isPerUser bool) (*Channel, error) {
	info, err := platform.Open(isPerUser)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return &Channel{info: info}, nil
}

// Close detaches the local mapping and releases local handles. The
// kernel-level semaphore and segment are left intact for other processes
// (spec §5).
func (c *Channel) Close() error {
	return c.info.Close()
}

// withLock runs fn with the region locked, guaranteeing Unlock runs on
// every exit path including a panic unwinding through fn.
func (c *Channel) withLock(fn func(region []byte) error) error {
	if err := c.info.Lock(); err != nil {
		return fmt.Errorf("%w: %v", ErrLockLost, err)
	}
	defer func() {
		if uerr := c.info.Unlock(); uerr != nil {
			// Unlock failures are not surfaced past a successful fn: the
			// caller already has fn's result, and a failed unlock is a
			// platform-level condition the caller cannot act on beyond
			// what ErrLockLost already communicated on the Lock side.
			_ = uerr
		}
	}()
	return fn(c.info.Bytes())
}

// Write serializes and publishes m, overwriting whatever previously
// occupied the single message slot (spec §4.3 Write protocol). There is
// no queue: writers overwrite, readers poll.
func (c *Channel) Write(m *Message) error {
	return c.withLock(func(region []byte) error {
		return writeMessage(region, m)
	})
}

// Read parses the message currently in the slot. It returns (nil, nil)
// when the slot is empty.
func (c *Channel) Read() (*Message, error) {
	var out *Message
	err := c.withLock(func(region []byte) error {
		m, err := readMessage(region)
		out = m
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Clear empties the message slot. It is idempotent.
func (c *Channel) Clear() error {
	return c.withLock(func(region []byte) error {
		clearMessage(region)
		return nil
	})
}

// TickOf returns the slot's current tick without parsing it, for
// receivers that poll for a new message by comparing against the tick
// they last consumed.
func (c *Channel) TickOf() (uint32, error) {
	var t uint32
	err := c.withLock(func(region []byte) error {
		t = tickOf(region)
		return nil
	})
	return t, err
}

// List returns a copy of the up-to-8 registered connections, in
// insertion order.
func (c *Channel) List() ([]Connection, error) {
	var out []Connection
	err := c.withLock(func(region []byte) error {
		out = listRegistry(region)
		return nil
	})
	return out, err
}

// AddConnection registers conn. It fails with ErrInvalidName,
// ErrInvalidArgument (application sandbox, bad version, or duplicate
// name) or ErrFull without modifying the region.
func (c *Channel) AddConnection(conn Connection) error {
	return c.withLock(func(region []byte) error {
		return addRegistry(region, conn)
	})
}

// RemoveConnection unregisters the first entry matching conn exactly,
// compacting the table and preserving the order of the remaining
// entries. It fails with ErrNotFound if no entry matches.
func (c *Channel) RemoveConnection(conn Connection) error {
	return c.withLock(func(region []byte) error {
		return removeRegistry(region, conn)
	})
}

// watchPather is satisfied by a platform backend that can name a
// filesystem path standing in for its segment (see the watch package).
type watchPather interface {
	WatchPath() (string, bool)
}

// WatchPath reports a filesystem path the watch package can observe for
// this channel's segment, if the underlying platform backend exposes
// one. None of this module's three backends currently do.
func (c *Channel) WatchPath() (string, bool) {
	if p, ok := c.info.(watchPather); ok {
		return p.WatchPath()
	}
	return "", false
}
