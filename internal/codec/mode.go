package codec

import "strings"

// Mode selects where markers are inserted.
type Mode string

const (
	PerCharacter Mode = "char" // Marker after every character (default).
	MidWord      Mode = "mid"  // One marker near the middle of each word.
)

// Valid reports whether m is one of the known modes.
func (m Mode) Valid() bool {
	return m == PerCharacter || m == MidWord
}

func (m Mode) String() string { return string(m) }

// ParseMode maps user input to a Mode. Matching is case-insensitive and
// accepts a few long spellings used in config files.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "char", "per-character", "percharacter", "every":
		return PerCharacter, nil
	case "mid", "midword", "mid-word", "single":
		return MidWord, nil
	default:
		return "", &InvalidModeError{Mode: Mode(s)}
	}
}
