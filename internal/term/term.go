// Package term decides whether output is colored and paints text when it is.
//
// The on/off state is process-wide: logging and display both read it, and
// [Configure] sets it once during startup.
package term

import (
	"os"
	"strings"
	"sync/atomic"

	"github.com/backmassage/cloak/internal/config"
)

// Color is a bold bright ANSI foreground color. The zero value paints
// nothing.
type Color uint8

const (
	None Color = iota
	Red
	Green
	Yellow
	Blue
	Magenta
	Cyan
)

const reset = "\033[0m"

// sgr holds the select-graphic-rendition parameters per color.
var sgr = [...]string{
	Red:     "1;91",
	Green:   "1;92",
	Yellow:  "1;93",
	Blue:    "1;94",
	Magenta: "1;95",
	Cyan:    "1;96",
}

var enabled atomic.Bool

// Configure turns color on or off for the process. Called from
// [logging.NewLogger].
func Configure(mode config.ColorMode) {
	enabled.Store(resolve(mode, os.Stdout, os.Getenv))
}

// Enabled reports whether color is on.
func Enabled() bool { return enabled.Load() }

// Paint wraps s in c's escape sequence, or returns s unchanged when color
// is off.
func (c Color) Paint(s string) string {
	if c == None || int(c) >= len(sgr) || !Enabled() {
		return s
	}
	return "\033[" + sgr[c] + "m" + s + reset
}

// resolve applies the color mode. Auto means out is a terminal, NO_COLOR
// (https://no-color.org) is unset, and TERM is not "dumb".
func resolve(mode config.ColorMode, out *os.File, getenv func(string) string) bool {
	switch mode {
	case config.ColorAlways:
		return true
	case config.ColorNever:
		return false
	}
	if getenv("NO_COLOR") != "" || strings.EqualFold(getenv("TERM"), "dumb") {
		return false
	}
	return IsTerminal(out)
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	return isTerminal(f)
}
