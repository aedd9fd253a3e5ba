package reaper

import (
	"path/filepath"
	"testing"

	"github.com/fantao963/flshm/internal/flshm"
)

// fakeChannel is an in-memory stand-in for *flshm.Channel.
type fakeChannel struct {
	conns []flshm.Connection
}

func (f *fakeChannel) List() ([]flshm.Connection, error) {
	out := make([]flshm.Connection, len(f.conns))
	copy(out, f.conns)
	return out, nil
}

func (f *fakeChannel) RemoveConnection(c flshm.Connection) error {
	for i, e := range f.conns {
		if e.Equal(c) {
			f.conns = append(f.conns[:i], f.conns[i+1:]...)
			return nil
		}
	}
	return flshm.ErrNotFound
}

// TestReaperLiveness is testable property 8 from SPEC_FULL.md.
func TestReaperLiveness(t *testing.T) {
	ch := &fakeChannel{conns: []flshm.Connection{
		{Name: "dead", Version: flshm.Version1, Sandbox: flshm.SandboxRemote},
		{Name: "alive", Version: flshm.Version1, Sandbox: flshm.SandboxRemote},
	}}

	alive := map[int]bool{1: true, 2: false}
	r := New(ch, func(pid int) bool { return alive[pid] })
	r.Track("dead", 2)
	r.Track("alive", 1)

	n, err := r.Sweep()
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 removed, got %d", n)
	}

	remaining, err := ch.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(remaining) != 1 || remaining[0].Name != "alive" {
		t.Fatalf("expected only 'alive' left, got %+v", remaining)
	}
}

func TestReaperIgnoresUntrackedEntries(t *testing.T) {
	ch := &fakeChannel{conns: []flshm.Connection{
		{Name: "untracked", Version: flshm.Version1, Sandbox: flshm.SandboxRemote},
	}}
	r := New(ch, func(pid int) bool { return false })

	n, err := r.Sweep()
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if n != 0 {
		t.Fatalf("expected 0 removed for an untracked entry, got %d", n)
	}
}

// TestPersistentReaperReapsAcrossProcesses simulates the standalone
// cmd/flshmreap case: a writer process Tracks a connection through a
// Store-backed Reaper, and a second, independently constructed Reaper
// pointed at the same side file (standing in for a separate process)
// must be able to reap it once its owner is dead.
func TestPersistentReaperReapsAcrossProcesses(t *testing.T) {
	ownersFile := filepath.Join(t.TempDir(), "owners.json")

	ch := &fakeChannel{conns: []flshm.Connection{
		{Name: "svc", Version: flshm.Version1, Sandbox: flshm.SandboxRemote},
	}}

	writer, err := NewPersistent(ch, func(int) bool { return true }, ownersFile)
	if err != nil {
		t.Fatalf("NewPersistent (writer): %v", err)
	}
	writer.Track("svc", 999)

	sweeper, err := NewPersistent(ch, func(int) bool { return false }, ownersFile)
	if err != nil {
		t.Fatalf("NewPersistent (sweeper): %v", err)
	}

	n, err := sweeper.Sweep()
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected the second Reaper to reap the entry the first Tracked, got %d removed", n)
	}

	remaining, err := ch.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(remaining) != 0 {
		t.Fatalf("expected registry empty, got %+v", remaining)
	}
}

func TestStoreLoadMissingFileReturnsEmptyMap(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "does-not-exist.json"))
	m, err := store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(m) != 0 {
		t.Fatalf("expected empty map, got %+v", m)
	}
}
