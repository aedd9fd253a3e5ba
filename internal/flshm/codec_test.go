package flshm

import (
	"bytes"
	"errors"
	"testing"
)

func newRegion() []byte {
	return make([]byte, RegionSize)
}

func TestWriteReadRoundTripAllVersions(t *testing.T) {
	sandboxes := []Sandbox{SandboxNone, SandboxRemote, SandboxLocalWithFile, SandboxLocalWithNet, SandboxLocalTrusted, SandboxApplication}
	sizes := []int{0, 1, 1024, 40000}

	for _, version := range []Version{Version1, Version2, Version3, Version4} {
		for _, sb := range sandboxes {
			for _, n := range sizes {
				region := newRegion()
				data := bytes.Repeat([]byte{0xAB}, n)

				m := &Message{
					Tick:    42,
					Name:    "_foo",
					Host:    "localhost",
					Method:  "ping",
					Version: version,
					Data:    data,
				}
				if version >= Version2 {
					m.Sandboxed = true
					m.HTTPS = sb == SandboxLocalTrusted
				}
				if version >= Version3 {
					m.Sandbox = sb
					m.SWFV = 9
					if sb == SandboxLocalWithFile {
						m.Filepath = "/tmp/a.swf"
					}
				}
				if version >= Version4 {
					m.AMFV = AMF3
				}

				if err := writeMessage(region, m); err != nil {
					t.Fatalf("v%d sb%d n%d: write: %v", version, sb, n, err)
				}
				got, err := readMessage(region)
				if err != nil {
					t.Fatalf("v%d sb%d n%d: read: %v", version, sb, n, err)
				}
				if got == nil {
					t.Fatalf("v%d sb%d n%d: expected a message, got none", version, sb, n)
				}
				if got.Name != m.Name || got.Host != m.Host || got.Method != m.Method {
					t.Fatalf("v%d sb%d n%d: identity mismatch: %+v", version, sb, n, got)
				}
				if !bytes.Equal(got.Data, data) {
					t.Fatalf("v%d sb%d n%d: payload mismatch", version, sb, n)
				}
				if version < Version3 && got.Filepath != "" {
					t.Fatalf("v%d: filepath should be absent, got %q", version, got.Filepath)
				}
				if version >= Version3 && sb == SandboxLocalWithFile && got.Filepath != m.Filepath {
					t.Fatalf("v%d: expected filepath %q, got %q", version, m.Filepath, got.Filepath)
				}
				if version >= Version3 && sb != SandboxLocalWithFile && got.Filepath != "" {
					t.Fatalf("v%d sb%d: filepath should be absent, got %q", version, sb, got.Filepath)
				}
			}
		}
	}
}

// TestS1WriteReadVersion1 is scenario S1 from the spec: a version-1
// message round-trips with all version-gated fields absent.
func TestS1WriteReadVersion1(t *testing.T) {
	region := newRegion()
	m := &Message{Tick: 42, Name: "_foo", Host: "localhost", Version: Version1, Method: "ping"}
	if err := writeMessage(region, m); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := readMessage(region)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if got.Tick != 42 || got.Name != "_foo" || got.Host != "localhost" || got.Method != "ping" {
		t.Fatalf("unexpected message: %+v", got)
	}
	if len(got.Data) != 0 {
		t.Fatalf("expected empty payload, got %d bytes", len(got.Data))
	}
	if tickOf(region) != 42 {
		t.Fatalf("tickOf: expected 42, got %d", tickOf(region))
	}
}

// TestS2FilepathPresenceGating is scenario S2.
func TestS2FilepathPresenceGating(t *testing.T) {
	region := newRegion()
	m := &Message{
		Name: "a", Host: "h", Method: "m", Version: Version3,
		Sandbox: SandboxLocalWithFile, Filepath: "/tmp/a.swf", SWFV: 9,
	}
	if err := writeMessage(region, m); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := readMessage(region)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if got.Filepath != "/tmp/a.swf" {
		t.Fatalf("expected filepath, got %q", got.Filepath)
	}

	m2 := &Message{Name: "a", Host: "h", Method: "m", Version: Version3, Sandbox: SandboxRemote, SWFV: 9}
	if err := writeMessage(region, m2); err != nil {
		t.Fatalf("write: %v", err)
	}
	got2, err := readMessage(region)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if got2.Filepath != "" {
		t.Fatalf("expected no filepath, got %q", got2.Filepath)
	}
}

// TestS5LargePayload is scenario S5.
func TestS5LargePayload(t *testing.T) {
	region := newRegion()
	data := bytes.Repeat([]byte{0x42}, 40000)
	m := &Message{Name: "a", Host: "h", Method: "m", Version: Version1, Data: data}
	if err := writeMessage(region, m); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := readMessage(region)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Equal(got.Data, data) {
		t.Fatal("payload bytes differ after round-trip")
	}
}

// TestS6CorruptSizeThenClear is scenario S6.
func TestS6CorruptSizeThenClear(t *testing.T) {
	region := newRegion()
	m := &Message{Name: "a", Host: "h", Method: "m", Version: Version1}
	if err := writeMessage(region, m); err != nil {
		t.Fatalf("write: %v", err)
	}
	// Corrupt size to 50000 while "holding the lock".
	region[sizeOffset] = 0x50
	region[sizeOffset+1] = 0xC3
	region[sizeOffset+2] = 0
	region[sizeOffset+3] = 0

	_, err := readMessage(region)
	if !errors.Is(err, ErrCorrupt) {
		t.Fatalf("expected ErrCorrupt, got %v", err)
	}

	clearMessage(region)
	if tickOf(region) != 0 {
		t.Fatal("expected tick 0 after clear")
	}
	got, err := readMessage(region)
	if err != nil || got != nil {
		t.Fatalf("expected no message after clear, got %+v err=%v", got, err)
	}
}

func TestClearIdempotent(t *testing.T) {
	region := newRegion()
	m := &Message{Name: "a", Host: "h", Method: "m", Version: Version1}
	if err := writeMessage(region, m); err != nil {
		t.Fatalf("write: %v", err)
	}
	clearMessage(region)
	clearMessage(region)
	if tickOf(region) != 0 {
		t.Fatal("expected tick 0")
	}
	got, err := readMessage(region)
	if err != nil || got != nil {
		t.Fatalf("expected no message, got %+v err=%v", got, err)
	}
}

func TestPublicationAtomicity(t *testing.T) {
	region := newRegion()
	m := &Message{Tick: 7, Name: "a", Host: "h", Method: "m", Version: Version1}
	if err := writeMessage(region, m); err != nil {
		t.Fatalf("write: %v", err)
	}
	if tickOf(region) != 7 {
		t.Fatalf("expected tick 7, got %d", tickOf(region))
	}

	m2 := &Message{Tick: 8, Name: "a", Host: "h", Method: "m2", Version: Version1}
	if err := writeMessage(region, m2); err != nil {
		t.Fatalf("write: %v", err)
	}
	if tickOf(region) != 8 {
		t.Fatalf("expected tick 8, got %d", tickOf(region))
	}
}

func TestSizeCapBoundary(t *testing.T) {
	// Build a frame that lands exactly at bodyCap, and one byte over.
	base := &Message{Name: "n", Host: "h", Method: "m", Version: Version1}
	frame, err := serializeFrame(base)
	if err != nil {
		t.Fatalf("serializeFrame: %v", err)
	}
	headroom := bodyCap - len(frame)

	ok := &Message{Name: "n", Host: "h", Method: "m", Version: Version1, Data: bytes.Repeat([]byte{1}, headroom)}
	if _, err := serializeFrame(ok); err != nil {
		t.Fatalf("expected exactly-40960 frame to succeed, got %v", err)
	}

	tooBig := &Message{Name: "n", Host: "h", Method: "m", Version: Version1, Data: bytes.Repeat([]byte{1}, headroom+1)}
	if _, err := serializeFrame(tooBig); !errors.Is(err, ErrTooLarge) {
		t.Fatalf("expected ErrTooLarge, got %v", err)
	}
}

func TestInvalidAMFVRejected(t *testing.T) {
	m := &Message{Name: "n", Host: "h", Method: "m", Version: Version4, AMFV: AMFVersion(99)}
	if _, err := serializeFrame(m); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}
