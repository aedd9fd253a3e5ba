// Command flshmwatch watches a shared segment's backing path for write
// events and prints the tick on each one, falling back to a message
// explaining that the platform backend offers no such path. It is a
// supplemental, non-normative tool: nothing about it is required for
// specification compliance.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fantao963/flshm/internal/flshm"
	"github.com/fantao963/flshm/internal/flshm/watch"
)

func main() {
	ch, err := flshm.Open(true)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open: %v\n", err)
		os.Exit(1)
	}
	defer ch.Close()

	w, err := watch.New(ch, ch, func(tick uint32) {
		fmt.Printf("tick=%d\n", tick)
	})
	if err == watch.ErrUnwatchable {
		fmt.Println("this platform backend exposes no watchable path; poll flshmtick instead")
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "watch: %v\n", err)
		os.Exit(1)
	}
	defer w.Close()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig
}
