package inspect

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/fantao963/flshm/internal/flshm"
)

type fakeChannel struct {
	conns []flshm.Connection
	msg   *flshm.Message
	tick  uint32
	err   error
}

func (f *fakeChannel) List() ([]flshm.Connection, error) { return f.conns, f.err }
func (f *fakeChannel) Read() (*flshm.Message, error)      { return f.msg, f.err }
func (f *fakeChannel) TickOf() (uint32, error)            { return f.tick, f.err }

func TestRefreshPopulatesModel(t *testing.T) {
	ch := &fakeChannel{
		conns: []flshm.Connection{{Name: "a", Version: flshm.Version1, Sandbox: flshm.SandboxRemote}},
		msg:   &flshm.Message{Name: "a", Method: "ping", Tick: 7},
		tick:  7,
	}
	m := New(ch)

	cmd := m.refresh()
	out := cmd()
	r, ok := out.(refreshedMsg)
	if !ok {
		t.Fatalf("expected refreshedMsg, got %T", out)
	}
	if r.err != nil {
		t.Fatalf("unexpected error: %v", r.err)
	}
	updated, _ := m.Update(r)
	m2 := updated.(Model)

	view := m2.View()
	if !strings.Contains(view, "ping") {
		t.Fatalf("expected view to mention last message method, got:\n%s", view)
	}
	if !strings.Contains(view, "(1/8)") {
		t.Fatalf("expected connection count in view, got:\n%s", view)
	}
}

func TestRefreshSurfacesError(t *testing.T) {
	ch := &fakeChannel{err: errors.New("boom")}
	m := New(ch)

	r := m.refresh()().(refreshedMsg)
	if r.err == nil {
		t.Fatal("expected error to propagate")
	}
	updated, _ := m.Update(r)
	m2 := updated.(Model)
	if !strings.Contains(m2.View(), "boom") {
		t.Fatalf("expected error text in view, got:\n%s", m2.View())
	}
}

func TestQuitKey(t *testing.T) {
	m := New(&fakeChannel{})
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("expected a quit command")
	}
}
