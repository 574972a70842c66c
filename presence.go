package azchat

// Presence is the bit flag collected by WithMeta APIs.
type Presence uint8

const (
	PresenceSeen    Presence = 1 << iota // Field appeared in the input.
	PresenceWasNull                      // Field value was explicit null.
)

// PresenceMap maps JSON Pointers to Presence flags.
//
// The decoder records presence for the optional top-level and per-choice
// fields whose null-vs-absent distinction is observable (for example
// /system_fingerprint). A field absent from the map was absent from the
// input.
type PresenceMap map[string]Presence

// Decoded carries the decoded value along with presence metadata.
type Decoded[T any] struct {
	Value    T
	Presence PresenceMap
}

// Seen reports whether the field at the given JSON Pointer appeared in
// the input, whatever its value.
func (pm PresenceMap) Seen(path string) bool { return pm[path]&PresenceSeen != 0 }

// WasNull reports whether the field at the given JSON Pointer was an
// explicit null in the input.
func (pm PresenceMap) WasNull(path string) bool { return pm[path]&PresenceWasNull != 0 }

func (pm PresenceMap) mark(path string, p Presence) {
	pm[path] |= p
}
