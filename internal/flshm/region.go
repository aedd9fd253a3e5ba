package flshm

// Region layout. All offsets and sizes are fixed constants and form the
// compatibility contract described in spec §3/§6; they must never change
// independently of a protocol version bump.
const (
	// RegionSize is the total size in bytes of the mapped shared-memory
	// segment.
	RegionSize = 64528

	// reservedOffset/reservedSize cover the leading 8 bytes the core does
	// not use.
	reservedOffset = 0
	reservedSize   = 8

	// tickOffset holds the 32-bit message tick. Zero means the slot is
	// empty; any other value means a message is published.
	tickOffset = 8
	tickSize   = 4

	// sizeOffset holds the 32-bit length of the serialized message body
	// currently occupying bodyOffset.
	sizeOffset = 12
	sizeSize   = 4

	// bodyOffset is where the framed message starts. bodyCap is the
	// maximum number of bytes a serialized frame may occupy there.
	bodyOffset = 16
	bodyCap    = 40960

	// registryOffset/RegistrySize mark the fixed-capacity connection
	// table. It starts immediately after the largest possible message
	// body (bodyOffset + bodyCap), at the offset spec §3 fixes: 40,976.
	registryOffset = 40976
	// RegistrySize is the byte span of the connection registry table.
	RegistrySize = 23552
)

func init() {
	// Compile-time-equivalent sanity check of the fixed layout: the
	// region must be large enough to hold the registry at its fixed
	// offset. This never fires in a correct build; it guards against a
	// future edit to the constants above silently breaking the contract.
	if registryOffset+RegistrySize > RegionSize {
		panic("flshm: region layout constants overflow RegionSize")
	}
}
