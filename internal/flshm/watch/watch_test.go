package watch

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

type fakeSource struct {
	path string
	ok   bool
}

func (f fakeSource) WatchPath() (string, bool) { return f.path, f.ok }

type fakeTicks struct{ tick uint32 }

func (f *fakeTicks) TickOf() (uint32, error) { return f.tick, nil }

func TestNewReturnsErrUnwatchableWithoutPath(t *testing.T) {
	_, err := New(fakeSource{ok: false}, &fakeTicks{}, func(uint32) {})
	if err != ErrUnwatchable {
		t.Fatalf("expected ErrUnwatchable, got %v", err)
	}
}

func TestNewFiresCallbackOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "segment")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("seed file: %v", err)
	}

	ticks := &fakeTicks{tick: 42}
	got := make(chan uint32, 1)

	w, err := New(fakeSource{path: path, ok: true}, ticks, func(tick uint32) {
		select {
		case got <- tick:
		default:
		}
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer w.Close()

	if err := os.WriteFile(path, []byte("y"), 0o644); err != nil {
		t.Fatalf("rewrite: %v", err)
	}

	select {
	case tick := <-got:
		if tick != 42 {
			t.Fatalf("expected tick 42, got %d", tick)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for watch callback")
	}
}
