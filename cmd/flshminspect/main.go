// Command flshminspect runs the live read-only inspector dashboard over
// a shared segment. It is a supplemental, non-normative tool: nothing
// about it is required for specification compliance.
package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/fantao963/flshm/internal/flshm"
	"github.com/fantao963/flshm/internal/flshm/inspect"
)

func main() {
	ch, err := flshm.Open(true)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open: %v\n", err)
		os.Exit(1)
	}
	defer ch.Close()

	m := inspect.New(ch)
	if _, err := tea.NewProgram(m).Run(); err != nil {
		fmt.Fprintf(os.Stderr, "run: %v\n", err)
		os.Exit(1)
	}
}
