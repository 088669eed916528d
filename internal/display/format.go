// Package display formats values for console output: byte sizes, marker
// code points, and statistics blocks.
package display

import (
	"fmt"
	"strings"

	"github.com/backmassage/cloak/internal/stats"
)

// FormatBytes returns a human-readable size (B, KiB, MiB, GiB, TiB, PiB).
func FormatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	suffixes := []string{"KiB", "MiB", "GiB", "TiB", "PiB", "EiB"}
	if exp >= len(suffixes) {
		exp = len(suffixes) - 1
		div = 1
		for i := 0; i <= exp; i++ {
			div *= unit
		}
	}
	return fmt.Sprintf("%.1f %s", float64(bytes)/float64(div), suffixes[exp])
}

// FormatBytesWithSign prefixes with + or - for delta display (e.g. "+ 1.2 KiB").
func FormatBytesWithSign(bytes int64) string {
	sign := ""
	if bytes > 0 {
		sign = "+ "
	} else if bytes < 0 {
		sign = "- "
		bytes = -bytes
	}
	return sign + FormatBytes(bytes)
}

// markerNames covers the invisible format characters people actually use.
var markerNames = map[rune]string{
	'\u00AD': "SOFT HYPHEN",
	'\u200B': "ZERO WIDTH SPACE",
	'\u200C': "ZERO WIDTH NON-JOINER",
	'\u200D': "ZERO WIDTH JOINER",
	'\u200E': "LEFT-TO-RIGHT MARK",
	'\u200F': "RIGHT-TO-LEFT MARK",
	'\u2060': "WORD JOINER",
	'\u2062': "INVISIBLE TIMES",
	'\u2063': "INVISIBLE SEPARATOR",
	'\uFEFF': "ZERO WIDTH NO-BREAK SPACE",
}

// FormatMarker renders a code point as "U+200E" plus its name when known.
func FormatMarker(r rune) string {
	s := fmt.Sprintf("U+%04X", r)
	if name, ok := markerNames[r]; ok {
		s += " " + name
	}
	return s
}

// FormatStats renders a statistics report as aligned "Label: value" lines.
func FormatStats(r stats.Report) []string {
	lines := r.Lines()
	width := 0
	for _, l := range lines {
		if len(l.Label) > width {
			width = len(l.Label)
		}
	}
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = l.Label + ":" + strings.Repeat(" ", width-len(l.Label)+1) + l.Value
	}
	return out
}
