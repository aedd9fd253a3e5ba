// Package inspect implements a read-only live dashboard over a shared
// connection segment: it polls the tick and registry on an interval and
// renders a table of registered connections, plus the most recent
// message's header fields. It never calls Write, AddConnection, or
// RemoveConnection — a purely observational tool for diagnosing a stuck
// or misbehaving segment (spec §4's operations remain the only way to
// mutate state).
package inspect

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/fantao963/flshm/internal/flshm"
)

const pollInterval = 250 * time.Millisecond

// Channel is the subset of *flshm.Channel the inspector reads.
type Channel interface {
	List() ([]flshm.Connection, error)
	Read() (*flshm.Message, error)
	TickOf() (uint32, error)
}

// Model is the BubbleTea model for the inspector dashboard.
type Model struct {
	ch Channel

	conns   []flshm.Connection
	lastMsg *flshm.Message
	tick    uint32

	err error

	width  int
	height int
}

// New creates an inspector model over ch.
func New(ch Channel) Model {
	return Model{ch: ch}
}

type tickMsg struct{}

type refreshedMsg struct {
	conns   []flshm.Connection
	lastMsg *flshm.Message
	tick    uint32
	err     error
}

func pollTick() tea.Cmd {
	return tea.Tick(pollInterval, func(time.Time) tea.Msg { return tickMsg{} })
}

func (m Model) refresh() tea.Cmd {
	return func() tea.Msg {
		conns, err := m.ch.List()
		if err != nil {
			return refreshedMsg{err: err}
		}
		msg, err := m.ch.Read()
		if err != nil {
			return refreshedMsg{err: err}
		}
		tick, err := m.ch.TickOf()
		if err != nil {
			return refreshedMsg{err: err}
		}
		return refreshedMsg{conns: conns, lastMsg: msg, tick: tick}
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(tea.SetWindowTitle("flshm inspect"), m.refresh(), pollTick())
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}
		return m, nil

	case tickMsg:
		return m, tea.Batch(m.refresh(), pollTick())

	case refreshedMsg:
		m.err = msg.err
		if msg.err == nil {
			m.conns = msg.conns
			m.lastMsg = msg.lastMsg
			m.tick = msg.tick
		}
		return m, nil
	}
	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	return render(m)
}
