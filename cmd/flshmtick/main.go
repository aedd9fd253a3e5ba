// Command flshmtick prints the current message tick of the shared
// segment. It is a specification-compliant consumer of the flshm
// library, not part of the library itself.
package main

import (
	"fmt"
	"os"

	"github.com/fantao963/flshm/internal/flshm"
)

func main() {
	ch, err := flshm.Open(true)
	if err != nil {
		fmt.Printf("open: %v\n", err)
		os.Exit(1)
	}
	defer ch.Close()

	tick, err := ch.TickOf()
	if err != nil {
		fmt.Printf("tick_of: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(tick)
}
