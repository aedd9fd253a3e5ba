package flshm

import "strings"

// maxNameLen (the per-slot length budget derived from the registry table
// size) is defined in registry.go alongside the slot layout it comes from.

// unreservedNameChars are the characters the ASVM permits in an
// unqualified connection name.
const unreservedNameChars = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789_-."

// ValidName reports whether name satisfies the connection-name validity
// predicate (spec §4.5): non-empty, no embedded NUL, within the per-slot
// length budget, and either built entirely from the unreserved identifier
// set or in the reserved "{digits}:{name}" fully-qualified form.
func ValidName(name string) bool {
	if name == "" || len(name) > maxNameLen {
		return false
	}
	if strings.IndexByte(name, 0) >= 0 {
		return false
	}
	if rest, ok := splitReservedPrefix(name); ok {
		return rest != "" && isUnreserved(rest)
	}
	return isUnreserved(name)
}

// splitReservedPrefix recognizes the "{digits}:{name}" fully-qualified
// reference form and returns the part after the colon.
func splitReservedPrefix(name string) (rest string, ok bool) {
	i := 0
	for i < len(name) && name[i] >= '0' && name[i] <= '9' {
		i++
	}
	if i == 0 || i >= len(name) || name[i] != ':' {
		return "", false
	}
	return name[i+1:], true
}

func isUnreserved(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if strings.IndexByte(unreservedNameChars, s[i]) < 0 {
			return false
		}
	}
	return true
}
