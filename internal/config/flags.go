package config

// This file maps command-line flag values onto a Config.
// Flags are captured as raw strings so that an unset flag leaves the
// default (or config-file) value in place.

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/backmassage/cloak/internal/codec"
)

// Overrides holds flag values collected by the CLI. Zero values mean "not
// given on the command line".
type Overrides struct {
	Mode      string
	Marker    string
	Extension string
	OutputDir string
	Workers   int
	Debounce  int // Milliseconds.
	Report    string
	LogFile   string
	Color     string
	NoColor   bool
	DryRun    bool
	Verbose   bool
}

// Apply copies the non-zero override values into cfg.
func (o *Overrides) Apply(cfg *Config) error {
	if o.Mode != "" {
		m, err := codec.ParseMode(o.Mode)
		if err != nil {
			return err
		}
		cfg.Mode = m
	}
	if o.Marker != "" {
		r, err := ParseMarker(o.Marker)
		if err != nil {
			return err
		}
		cfg.Marker = r
	}
	if o.Extension != "" {
		cfg.Extension = o.Extension
	}
	if o.OutputDir != "" {
		cfg.OutputDir = NormalizeDirArg(o.OutputDir)
	}
	if o.Workers != 0 {
		cfg.Workers = o.Workers
	}
	if o.Debounce != 0 {
		cfg.DebounceMillis = o.Debounce
	}
	if o.Report != "" {
		cfg.ReportPath = o.Report
	}
	if o.LogFile != "" {
		cfg.LogFile = o.LogFile
	}
	if o.DryRun {
		cfg.DryRun = true
	}
	if o.Verbose {
		cfg.Verbose = true
	}
	if o.NoColor {
		cfg.ColorMode = ColorNever
	} else if o.Color != "" {
		cm, err := ParseColorMode(o.Color)
		if err != nil {
			return err
		}
		cfg.ColorMode = cm
	}
	return nil
}

// ParseMarker accepts "U+200E", `\u200e`, "0x200E", or the literal
// character itself.
func ParseMarker(s string) (rune, error) {
	raw := strings.TrimSpace(s)
	if raw == "" {
		// A literal whitespace marker is rejected later by ValidateMarker.
		raw = s
	}
	lower := strings.ToLower(raw)
	for _, prefix := range []string{"u+", `\u`, "0x"} {
		if strings.HasPrefix(lower, prefix) {
			n, err := strconv.ParseUint(raw[len(prefix):], 16, 32)
			if err != nil {
				return 0, fmt.Errorf("invalid marker %q: %v", s, err)
			}
			return rune(n), nil
		}
	}
	r, size := utf8.DecodeRuneInString(raw)
	if r == utf8.RuneError || size != len(raw) {
		return 0, fmt.Errorf("invalid marker %q (use a single character or U+XXXX)", s)
	}
	return r, nil
}

// ParseColorMode maps a flag or config value to a ColorMode.
func ParseColorMode(s string) (ColorMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "auto":
		return ColorAuto, nil
	case "always":
		return ColorAlways, nil
	case "never":
		return ColorNever, nil
	default:
		return "", fmt.Errorf("invalid color mode %q (use 'auto', 'always' or 'never')", s)
	}
}
