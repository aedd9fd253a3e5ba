package flshm

import (
	"sync"
	"testing"
)

// fakeInfo is a platform.Info stand-in backed by a plain buffer, used so
// Channel's locking/orchestration logic can be tested without a real OS
// semaphore or shared segment.
type fakeInfo struct {
	mu     sync.Mutex
	region []byte
}

func newFakeChannel() *Channel {
	return &Channel{info: &fakeInfo{region: newRegion()}}
}

func (f *fakeInfo) Bytes() []byte { return f.region }
func (f *fakeInfo) Lock() error   { f.mu.Lock(); return nil }
func (f *fakeInfo) Unlock() error { f.mu.Unlock(); return nil }
func (f *fakeInfo) Close() error  { return nil }

func TestChannelWriteReadClear(t *testing.T) {
	c := newFakeChannel()

	if err := c.Write(&Message{Tick: 1, Name: "a", Host: "h", Method: "ping", Version: Version1}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := c.Read()
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got.Method != "ping" {
		t.Fatalf("expected method ping, got %q", got.Method)
	}

	tick, err := c.TickOf()
	if err != nil || tick != 1 {
		t.Fatalf("TickOf: got %d, %v", tick, err)
	}

	if err := c.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	got, err = c.Read()
	if err != nil || got != nil {
		t.Fatalf("expected no message after clear, got %+v, %v", got, err)
	}
}

func TestChannelRegistryRoundTrip(t *testing.T) {
	c := newFakeChannel()

	c1 := Connection{Name: "one", Version: Version1, Sandbox: SandboxRemote}
	c2 := Connection{Name: "two", Version: Version2, Sandbox: SandboxLocalTrusted}

	if err := c.AddConnection(c1); err != nil {
		t.Fatalf("add c1: %v", err)
	}
	if err := c.AddConnection(c2); err != nil {
		t.Fatalf("add c2: %v", err)
	}

	list, err := c.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 connections, got %d", len(list))
	}

	if err := c.RemoveConnection(c1); err != nil {
		t.Fatalf("remove c1: %v", err)
	}
	list, err = c.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 1 || list[0].Name != "two" {
		t.Fatalf("expected only 'two' left, got %+v", list)
	}
}
