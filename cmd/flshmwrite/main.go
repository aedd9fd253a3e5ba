// Command flshmwrite constructs a Message from positional arguments and
// publishes it to the shared segment. It is a specification-compliant
// consumer of the flshm library, not part of the library itself.
package main

import (
	"encoding/hex"
	"fmt"
	"os"
	"strconv"

	"github.com/fantao963/flshm/internal/flshm"
)

const usage = `usage: flshmwrite tick name host version sandboxed https sandbox swfv filepath amfv method size data-as-hex

  tick        uint32, non-zero (0 marks an empty slot and is rejected)
  name        connection name
  host        originating host
  version     1-4
  sandboxed   0 or 1 (meaningful when version >= 2)
  https       0 or 1 (meaningful when version >= 2)
  sandbox     -1,0,1,2,3,5 (meaningful when version >= 3)
  swfv        uint32 (meaningful when version >= 3)
  filepath    string, "-" for none (used when version >= 3 and sandbox == 1)
  amfv        0 or 3 (meaningful when version >= 4)
  method      method name
  size        expected length in bytes of the decoded payload, checked
              against data-as-hex but not itself stored in the frame
  data-as-hex hex-encoded payload bytes, "" for empty
`

func fail(stage string, err error) {
	fmt.Printf("%s: %v\n", stage, err)
	os.Exit(1)
}

func parseUint32(s string) (uint32, error) {
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, err
	}
	return uint32(n), nil
}

func parseBool(s string) (bool, error) {
	switch s {
	case "0":
		return false, nil
	case "1":
		return true, nil
	default:
		return false, fmt.Errorf("expected 0 or 1, got %q", s)
	}
}

func main() {
	args := os.Args[1:]
	if len(args) != 13 {
		fmt.Print(usage)
		os.Exit(2)
	}

	tick, err := parseUint32(args[0])
	if err != nil {
		fail("parse tick", err)
	}
	if tick == 0 {
		fail("validate tick", fmt.Errorf("tick must be non-zero (0 marks an empty slot)"))
	}
	name := args[1]
	host := args[2]

	versionN, err := strconv.Atoi(args[3])
	if err != nil {
		fail("parse version", err)
	}
	version := flshm.Version(versionN)

	sandboxed, err := parseBool(args[4])
	if err != nil {
		fail("parse sandboxed", err)
	}
	https, err := parseBool(args[5])
	if err != nil {
		fail("parse https", err)
	}

	sandboxN, err := strconv.Atoi(args[6])
	if err != nil {
		fail("parse sandbox", err)
	}
	sandbox := flshm.Sandbox(sandboxN)

	swfv, err := parseUint32(args[7])
	if err != nil {
		fail("parse swfv", err)
	}

	filePath := args[8]
	if filePath == "-" {
		filePath = ""
	}

	amfvN, err := strconv.Atoi(args[9])
	if err != nil {
		fail("parse amfv", err)
	}
	amfv := flshm.AMFVersion(amfvN)

	method := args[10]

	wantSize, err := strconv.Atoi(args[11])
	if err != nil {
		fail("parse size", err)
	}

	data, err := hex.DecodeString(args[12])
	if err != nil {
		fail("parse data-as-hex", err)
	}
	if len(data) != wantSize {
		fail("validate size", fmt.Errorf("size=%d does not match decoded data length=%d", wantSize, len(data)))
	}

	m := &flshm.Message{
		Tick:      tick,
		Name:      name,
		Host:      host,
		Method:    method,
		Version:   version,
		Sandboxed: sandboxed,
		HTTPS:     https,
		Sandbox:   sandbox,
		SWFV:      swfv,
		Filepath:  filePath,
		AMFV:      amfv,
		Data:      data,
	}

	ch, err := flshm.Open(true)
	if err != nil {
		fail("open", err)
	}
	defer ch.Close()

	if err := ch.Write(m); err != nil {
		fail("write", err)
	}
}
