// Package reaper periodically sweeps the connection registry for entries
// whose owning process has exited without calling remove — the stale
// entries spec.md's Lifecycle section (§3) warns "persist" otherwise. It
// is pure hygiene: nothing it does is load-bearing for protocol
// correctness. A Reaper's in-memory ownership table only ever reflects
// what it was directly Tracked with; NewPersistent backs that table with
// a Store so a standalone sweep process can also reap entries Tracked by
// a different process.
package reaper

import (
	"context"
	"log"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/fantao963/flshm/internal/flshm"
)

// Channel is the subset of *flshm.Channel the reaper needs, so it can be
// exercised against a fake in tests without a real OS segment.
type Channel interface {
	List() ([]flshm.Connection, error)
	RemoveConnection(flshm.Connection) error
}

// LivenessFunc reports whether the process that owns a tracked connection
// is still alive. The default (Unix/Windows process-probe) is
// DefaultLiveness; New and NewPersistent take the function as an argument,
// so callers may inject their own for tests.
type LivenessFunc func(pid int) bool

// Reaper owns a PID side-table (name -> owning pid) populated by Track,
// since the region itself carries no PID field (spec §3/§4.4 define only
// name/version/sandbox per entry — adding a PID would be a protocol
// change, which is out of scope here). Without a Store, that table is
// process-local: a Reaper only ever reaps what it was itself Track'd
// with (see NewPersistent for the cross-process case).
type Reaper struct {
	ch       Channel
	alive    LivenessFunc
	store    *Store
	mu       sync.Mutex
	ownerPID map[string]int

	cron *cron.Cron
}

// New creates a Reaper over ch using alive to test liveness. Its
// ownership table lives only in this process's memory: Track calls made
// on a different Reaper instance (in this process or another) are
// invisible to it. Use NewPersistent to share that table across
// processes via a Store.
func New(ch Channel, alive LivenessFunc) *Reaper {
	return &Reaper{ch: ch, alive: alive, ownerPID: make(map[string]int)}
}

// NewPersistent creates a Reaper whose ownership table is backed by a
// Store at path: Track persists to it immediately, and Sweep reloads it
// first, so a Reaper in one process can reap an entry Tracked by a
// Reaper in another — the scenario a standalone sweep process such as
// cmd/flshmreap needs in order to ever reap anything.
func NewPersistent(ch Channel, alive LivenessFunc, path string) (*Reaper, error) {
	store := NewStore(path)
	loaded, err := store.Load()
	if err != nil {
		return nil, err
	}
	return &Reaper{ch: ch, alive: alive, store: store, ownerPID: loaded}, nil
}

// Track records that pid owns the registry entry named name, so a future
// Sweep can decide whether to reap it. Call this immediately after a
// successful AddConnection.
func (r *Reaper) Track(name string, pid int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ownerPID[name] = pid
	if r.store != nil {
		if err := r.store.Save(r.ownerPID); err != nil {
			log.Printf("WARN: reaper: failed to persist ownership table: %v", err)
		}
	}
}

// Sweep lists the registry, removes every entry whose tracked owner is no
// longer alive (per alive), and forgets the PID mapping for entries no
// longer present. It returns the number of entries removed. Entries with
// no tracked owner (e.g. registered by a process that started before this
// reaper did, and never Tracked through a shared Store) are left alone:
// Sweep can only reap what it has observed, directly or via its Store.
func (r *Reaper) Sweep() (int, error) {
	conns, err := r.ch.List()
	if err != nil {
		return 0, err
	}

	r.mu.Lock()
	if r.store != nil {
		if fresh, err := r.store.Load(); err != nil {
			log.Printf("WARN: reaper: failed to reload ownership table: %v", err)
		} else {
			for name, pid := range fresh {
				r.ownerPID[name] = pid
			}
		}
	}
	present := make(map[string]bool, len(conns))
	for _, c := range conns {
		present[c.Name] = true
	}
	for name := range r.ownerPID {
		if !present[name] {
			delete(r.ownerPID, name)
		}
	}
	toCheck := make(map[string]int, len(r.ownerPID))
	for name, pid := range r.ownerPID {
		toCheck[name] = pid
	}
	r.mu.Unlock()

	removed := 0
	for _, c := range conns {
		pid, tracked := toCheck[c.Name]
		if !tracked || r.alive(pid) {
			continue
		}
		if err := r.ch.RemoveConnection(c); err != nil {
			log.Printf("WARN: reaper: failed to remove stale connection %q: %v", c.Name, err)
			continue
		}
		r.mu.Lock()
		delete(r.ownerPID, c.Name)
		r.mu.Unlock()
		removed++
		log.Printf("INFO: reaper: removed stale connection %q (pid %d no longer alive)", c.Name, pid)
	}

	r.mu.Lock()
	if r.store != nil {
		if err := r.store.Save(r.ownerPID); err != nil {
			log.Printf("WARN: reaper: failed to persist ownership table: %v", err)
		}
	}
	r.mu.Unlock()

	return removed, nil
}

// Start runs Sweep on the given cron schedule (standard 5-field
// expression) until ctx is cancelled.
func (r *Reaper) Start(ctx context.Context, schedule string) error {
	r.cron = cron.New()
	_, err := r.cron.AddFunc(schedule, func() {
		if n, err := r.Sweep(); err != nil {
			log.Printf("ERROR: reaper: sweep failed: %v", err)
		} else if n > 0 {
			log.Printf("INFO: reaper: swept %d stale connection(s)", n)
		}
	})
	if err != nil {
		return err
	}
	r.cron.Start()
	go func() {
		<-ctx.Done()
		r.cron.Stop()
	}()
	return nil
}
