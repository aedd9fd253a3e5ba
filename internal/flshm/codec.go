package flshm

import (
	"encoding/binary"
	"fmt"
	"strconv"
)

// Frame field keys, in on-wire order. version is always present and is
// read before any version-gated field so the parser knows which of the
// rest to expect (spec §4.3: "version taken from the frame itself, ...
// before the version-gated segments").
const (
	fieldName     = "name"
	fieldHost     = "host"
	fieldVersion  = "version"
	fieldFlags    = "flags"
	fieldSandbox  = "sandbox"
	fieldSWFV     = "swfv"
	fieldFilepath = "filepath"
	fieldAMFV     = "amfv"
	fieldMethod   = "method"
)

const (
	flagSandboxed = 1 << 0
	flagHTTPS     = 1 << 1
)

// serializeFrame builds the on-wire representation of m: a sequence of
// "key=value\x00" fields in fixed order followed by the raw payload
// (spec §4.3, with the Open Question on frame layout resolved in
// SPEC_FULL.md §3). It does not touch the region; callers copy the result
// in under lock.
func serializeFrame(m *Message) ([]byte, error) {
	if !m.Version.Valid() {
		return nil, fmt.Errorf("%w: version %d", ErrInvalidArgument, m.Version)
	}
	if m.Version >= Version4 && !m.AMFV.Valid() {
		return nil, fmt.Errorf("%w: amfv %d", ErrInvalidArgument, m.AMFV)
	}
	if !m.Sandbox.Valid() && m.Version >= Version3 {
		return nil, fmt.Errorf("%w: sandbox %d", ErrInvalidArgument, m.Sandbox)
	}

	var buf []byte
	buf = appendField(buf, fieldName, []byte(m.Name))
	buf = appendField(buf, fieldHost, []byte(m.Host))
	buf = appendField(buf, fieldVersion, []byte(strconv.FormatUint(uint64(m.Version), 10)))

	if m.Version >= Version2 {
		flags := 0
		if m.Sandboxed {
			flags |= flagSandboxed
		}
		if m.HTTPS {
			flags |= flagHTTPS
		}
		buf = appendField(buf, fieldFlags, []byte(strconv.Itoa(flags)))
	}

	if m.Version >= Version3 {
		buf = appendField(buf, fieldSandbox, []byte(strconv.FormatInt(int64(m.Sandbox), 10)))
		buf = appendField(buf, fieldSWFV, []byte(strconv.FormatUint(uint64(m.SWFV), 10)))
		// filepath is serialized iff version>=3 AND sandbox==local-with-file;
		// writing it under any other condition would be a programmer error,
		// so it is silently omitted here rather than surfaced as a field
		// (spec §4.3 edge cases).
		if m.Sandbox == SandboxLocalWithFile {
			buf = appendField(buf, fieldFilepath, []byte(m.Filepath))
		}
	}

	if m.Version >= Version4 {
		buf = appendField(buf, fieldAMFV, []byte(strconv.FormatUint(uint64(m.AMFV), 10)))
	}

	buf = appendField(buf, fieldMethod, []byte(m.Method))
	buf = append(buf, m.Data...)

	if len(buf) > bodyCap {
		return nil, fmt.Errorf("%w: serialized frame is %d bytes, cap is %d", ErrTooLarge, len(buf), bodyCap)
	}
	return buf, nil
}

func appendField(buf []byte, key string, value []byte) []byte {
	buf = append(buf, key...)
	buf = append(buf, '=')
	buf = append(buf, value...)
	buf = append(buf, 0)
	return buf
}

// parseFrame parses frame (exactly size bytes taken from the region body)
// into a Message. Textual fields must each be terminated by a NUL within
// frame; absence is ErrCorrupt.
func parseFrame(frame []byte) (*Message, error) {
	m := &Message{}
	rest := frame

	var err error
	if rest, m.Name, err = takeField(rest, fieldName); err != nil {
		return nil, err
	}
	if rest, m.Host, err = takeField(rest, fieldHost); err != nil {
		return nil, err
	}
	var versionStr string
	if rest, versionStr, err = takeField(rest, fieldVersion); err != nil {
		return nil, err
	}
	v, err := strconv.ParseUint(versionStr, 10, 32)
	if err != nil {
		return nil, fmt.Errorf("%w: bad version %q", ErrCorrupt, versionStr)
	}
	m.Version = Version(v)
	if !m.Version.Valid() {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrCorrupt, m.Version)
	}

	if m.Version >= Version2 {
		var flagsStr string
		if rest, flagsStr, err = takeField(rest, fieldFlags); err != nil {
			return nil, err
		}
		flags, perr := strconv.Atoi(flagsStr)
		if perr != nil {
			return nil, fmt.Errorf("%w: bad flags %q", ErrCorrupt, flagsStr)
		}
		m.Sandboxed = flags&flagSandboxed != 0
		m.HTTPS = flags&flagHTTPS != 0
	}

	if m.Version >= Version3 {
		var sandboxStr, swfvStr string
		if rest, sandboxStr, err = takeField(rest, fieldSandbox); err != nil {
			return nil, err
		}
		sb, perr := strconv.ParseInt(sandboxStr, 10, 32)
		if perr != nil {
			return nil, fmt.Errorf("%w: bad sandbox %q", ErrCorrupt, sandboxStr)
		}
		m.Sandbox = Sandbox(sb)

		if rest, swfvStr, err = takeField(rest, fieldSWFV); err != nil {
			return nil, err
		}
		swfv, perr := strconv.ParseUint(swfvStr, 10, 32)
		if perr != nil {
			return nil, fmt.Errorf("%w: bad swfv %q", ErrCorrupt, swfvStr)
		}
		m.SWFV = uint32(swfv)

		if m.Sandbox == SandboxLocalWithFile {
			if rest, m.Filepath, err = takeField(rest, fieldFilepath); err != nil {
				return nil, err
			}
		}
	}

	if m.Version >= Version4 {
		var amfvStr string
		if rest, amfvStr, err = takeField(rest, fieldAMFV); err != nil {
			return nil, err
		}
		amfv, perr := strconv.ParseUint(amfvStr, 10, 32)
		if perr != nil {
			return nil, fmt.Errorf("%w: bad amfv %q", ErrCorrupt, amfvStr)
		}
		m.AMFV = AMFVersion(amfv)
	}

	if rest, m.Method, err = takeField(rest, fieldMethod); err != nil {
		return nil, err
	}

	m.Data = append([]byte(nil), rest...)
	return m, nil
}

// takeField consumes one "key=value\x00" token from the front of buf,
// verifying its key matches want, and returns the remaining bytes and the
// decoded value.
func takeField(buf []byte, want string) (rest []byte, value string, err error) {
	if len(buf) <= len(want)+1 || string(buf[:len(want)]) != want || buf[len(want)] != '=' {
		return nil, "", fmt.Errorf("%w: expected field %q", ErrCorrupt, want)
	}
	valStart := len(want) + 1
	nul := indexByte(buf[valStart:], 0)
	if nul < 0 {
		return nil, "", fmt.Errorf("%w: field %q unterminated", ErrCorrupt, want)
	}
	return buf[valStart+nul+1:], string(buf[valStart : valStart+nul]), nil
}

// writeMessage serializes m and publishes it into region. Precondition:
// caller holds the lock. Per the write protocol (spec §4.3), the body is
// copied in, then size, then tick is stored last so that publication is
// atomic to any receiver who also obeys the lock.
func writeMessage(region []byte, m *Message) error {
	frame, err := serializeFrame(m)
	if err != nil {
		return err
	}
	body := region[bodyOffset : bodyOffset+bodyCap]
	for i := range body {
		body[i] = 0
	}
	copy(body, frame)
	binary.LittleEndian.PutUint32(region[sizeOffset:sizeOffset+sizeSize], uint32(len(frame)))

	t := m.Tick
	if t == 0 {
		t = nextTick()
	}
	storeTick(region, t)
	return nil
}

// readMessage parses the message currently in region's slot. It returns
// (nil, nil) when the slot is empty (tick == 0), matching spec §4.3's
// "no message" read outcome.
func readMessage(region []byte) (*Message, error) {
	t := loadTick(region)
	if t == 0 {
		return nil, nil
	}
	size := binary.LittleEndian.Uint32(region[sizeOffset : sizeOffset+sizeSize])
	if size == 0 || size > bodyCap {
		return nil, fmt.Errorf("%w: size %d out of range", ErrCorrupt, size)
	}
	frame := region[bodyOffset : bodyOffset+int(size)]
	m, err := parseFrame(frame)
	if err != nil {
		return nil, err
	}
	m.Tick = t
	return m, nil
}

// clearMessage zeroes tick and size and the first header bytes of the
// body, per spec §4.3's Clear contract. It is idempotent.
func clearMessage(region []byte) {
	storeTick(region, 0)
	binary.LittleEndian.PutUint32(region[sizeOffset:sizeOffset+sizeSize], 0)
	head := bodyOffset + 32
	if head > bodyOffset+bodyCap {
		head = bodyOffset + bodyCap
	}
	for i := bodyOffset; i < head; i++ {
		region[i] = 0
	}
}

// tickOf peeks the slot's tick without parsing, for receivers that poll
// for a new message by comparing against the tick they last consumed.
func tickOf(region []byte) uint32 {
	return loadTick(region)
}

func loadTick(region []byte) uint32 {
	return binary.LittleEndian.Uint32(region[tickOffset : tickOffset+tickSize])
}

// storeTick writes the tick word last, as spec §9's conservative
// recommendation: a full fence before the store, on top of whatever
// ordering the caller's lock already provides, to defend against weaker
// semaphore memory-ordering semantics on some backends.
func storeTick(region []byte, t uint32) {
	fence()
	binary.LittleEndian.PutUint32(region[tickOffset:tickOffset+tickSize], t)
}
