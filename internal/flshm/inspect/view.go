package inspect

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("4")).
			Bold(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("12"))

	rowStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("7"))

	errStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("8"))
)

func render(m Model) string {
	var b strings.Builder

	b.WriteString(headerStyle.Render(fmt.Sprintf(" flshm inspect — tick %d ", m.tick)))
	b.WriteString("\n\n")

	if m.err != nil {
		b.WriteString(errStyle.Render("error: "+m.err.Error()) + "\n\n")
	}

	b.WriteString(labelStyle.Render(fmt.Sprintf("connections (%d/8)", len(m.conns))) + "\n")
	if len(m.conns) == 0 {
		b.WriteString(rowStyle.Render("  (none registered)") + "\n")
	}
	for _, c := range m.conns {
		b.WriteString(rowStyle.Render(fmt.Sprintf("  %-24s v%d  sandbox=%d", c.Name, c.Version, c.Sandbox)) + "\n")
	}

	b.WriteString("\n" + labelStyle.Render("last message") + "\n")
	if m.lastMsg == nil {
		b.WriteString(rowStyle.Render("  (slot empty)") + "\n")
	} else {
		msg := m.lastMsg
		b.WriteString(rowStyle.Render(fmt.Sprintf("  %s.%s -> host=%q tick=%d bytes=%d",
			msg.Name, msg.Method, msg.Host, msg.Tick, len(msg.Data))) + "\n")
	}

	b.WriteString("\n" + helpStyle.Render("q to quit") + "\n")
	return b.String()
}
