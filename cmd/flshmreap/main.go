// Command flshmreap runs the connection reaper once or on a cron
// schedule. It is a supplemental, non-normative tool: nothing about it
// is required for specification compliance.
//
// It can only reap a connection whose owning process was Tracked
// through the same -owners-file this process reads. A connection added
// via Channel.AddConnection by a process that never called
// reaper.Reaper.Track (directly, or via a Reaper backed by that same
// file) is invisible to flshmreap and will never be swept by it,
// regardless of whether its process has exited — the registry itself
// carries no owning-PID field to discover that independently.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fantao963/flshm/internal/flshm"
	"github.com/fantao963/flshm/internal/flshm/reaper"
)

func defaultOwnersFile() string {
	return filepath.Join(os.TempDir(), "flshm-reaper-owners.json")
}

func main() {
	schedule := flag.String("schedule", "", "cron schedule to sweep on (e.g. \"*/5 * * * *\"); if empty, sweeps once and exits")
	ownersFile := flag.String("owners-file", defaultOwnersFile(), "path to the shared owner-PID side file; only connections Tracked through this same file (by this or another flshm-embedding process) can be reaped")
	flag.Parse()

	ch, err := flshm.Open(true)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open: %v\n", err)
		os.Exit(1)
	}
	defer ch.Close()

	r, err := reaper.NewPersistent(ch, reaper.DefaultLiveness, *ownersFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load owners file: %v\n", err)
		os.Exit(1)
	}

	if *schedule == "" {
		n, err := r.Sweep()
		if err != nil {
			fmt.Fprintf(os.Stderr, "sweep: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("swept %d stale connection(s)\n", n)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := r.Start(ctx, *schedule); err != nil {
		fmt.Fprintf(os.Stderr, "start: %v\n", err)
		os.Exit(1)
	}
	<-ctx.Done()
}
