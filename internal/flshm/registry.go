package flshm

import (
	"encoding/binary"
	"fmt"
)

// Registry layout within the region's registry table (offset
// registryOffset, span RegistrySize): a 4-byte count followed by 8
// fixed-size slots, each holding a NUL-padded name, a 4-byte version and a
// 4-byte (signed) sandbox. A handful of trailing bytes are unused padding
// (spec §3: "any remaining trailing bytes... are unused padding").
const (
	maxConnections = 8

	registryCountSize = 4
	registrySlotSize  = (RegistrySize - registryCountSize) / maxConnections

	slotVersionSize = 4
	slotSandboxSize = 4
	// slotNameSize is the fixed byte budget for a NUL-padded name within
	// one slot.
	slotNameSize = registrySlotSize - slotVersionSize - slotSandboxSize
)

// maxNameLen is the longest connection name the registry can hold,
// reserving one byte for the terminating NUL (spec §4.5).
const maxNameLen = slotNameSize - 1

func registryCount(region []byte) uint32 {
	return binary.LittleEndian.Uint32(region[registryOffset : registryOffset+registryCountSize])
}

func setRegistryCount(region []byte, n uint32) {
	binary.LittleEndian.PutUint32(region[registryOffset:registryOffset+registryCountSize], n)
}

func slotOffset(i int) int {
	return registryOffset + registryCountSize + i*registrySlotSize
}

func readSlot(region []byte, i int) Connection {
	off := slotOffset(i)
	nameBytes := region[off : off+slotNameSize]
	nul := indexByte(nameBytes, 0)
	if nul < 0 {
		nul = len(nameBytes)
	}
	name := string(nameBytes[:nul])
	version := Version(binary.LittleEndian.Uint32(region[off+slotNameSize : off+slotNameSize+slotVersionSize]))
	sandbox := Sandbox(int32(binary.LittleEndian.Uint32(region[off+slotNameSize+slotVersionSize : off+registrySlotSize])))
	return Connection{Name: name, Version: version, Sandbox: sandbox}
}

func writeSlot(region []byte, i int, c Connection) {
	off := slotOffset(i)
	nameField := region[off : off+slotNameSize]
	for j := range nameField {
		nameField[j] = 0
	}
	copy(nameField, c.Name)
	binary.LittleEndian.PutUint32(region[off+slotNameSize:off+slotNameSize+slotVersionSize], uint32(c.Version))
	binary.LittleEndian.PutUint32(region[off+slotNameSize+slotVersionSize:off+registrySlotSize], uint32(int32(c.Sandbox)))
}

func indexByte(b []byte, c byte) int {
	for i, v := range b {
		if v == c {
			return i
		}
	}
	return -1
}

// listRegistry reads count, then count entries, from region. Returned
// connections are copies; region need only remain valid for the call.
func listRegistry(region []byte) []Connection {
	n := registryCount(region)
	if n > maxConnections {
		n = maxConnections
	}
	out := make([]Connection, 0, n)
	for i := 0; i < int(n); i++ {
		out = append(out, readSlot(region, i))
	}
	return out
}

// addRegistry appends conn at index count and increments count.
// Preconditions enforced here: conn.Name validity, conn.Sandbox !=
// SandboxApplication, and no existing entry with the same name.
func addRegistry(region []byte, conn Connection) error {
	if !ValidName(conn.Name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, conn.Name)
	}
	if conn.Sandbox == SandboxApplication {
		return fmt.Errorf("%w: sandbox application not allowed in registry", ErrInvalidArgument)
	}
	if !conn.Version.Valid() {
		return fmt.Errorf("%w: version %d", ErrInvalidArgument, conn.Version)
	}
	n := registryCount(region)
	for i := 0; i < int(n) && i < maxConnections; i++ {
		if readSlot(region, i).Name == conn.Name {
			return fmt.Errorf("%w: %q already registered", ErrInvalidArgument, conn.Name)
		}
	}
	if n >= maxConnections {
		return ErrFull
	}
	writeSlot(region, int(n), conn)
	setRegistryCount(region, n+1)
	return nil
}

// removeRegistry finds the first entry matching (name, version, sandbox)
// and compacts the table, preserving registration order of the remaining
// entries.
func removeRegistry(region []byte, conn Connection) error {
	n := registryCount(region)
	idx := -1
	for i := 0; i < int(n) && i < maxConnections; i++ {
		if readSlot(region, i).Equal(conn) {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrNotFound
	}
	for i := idx; i < int(n)-1; i++ {
		writeSlot(region, i, readSlot(region, i+1))
	}
	zeroSlot(region, int(n)-1)
	setRegistryCount(region, n-1)
	return nil
}

func zeroSlot(region []byte, i int) {
	off := slotOffset(i)
	for j := off; j < off+registrySlotSize; j++ {
		region[j] = 0
	}
}
