// Package config holds runtime configuration: defaults, config-file
// loading, flag overrides, and validation. Defaults are per-character
// markers, U+200E, and ".txt" sources.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/backmassage/cloak/internal/codec"
)

// ColorMode controls ANSI color output.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"   // Enable colors when stdout is a TTY (default).
	ColorAlways ColorMode = "always" // Force colors on.
	ColorNever  ColorMode = "never"  // Disable colors entirely.
)

// Config holds all runtime settings. It is populated by [DefaultConfig],
// then by [LoadFile] and [Overrides.Apply], before being passed (by
// pointer) to packages that need it.
type Config struct {
	// Codec settings.
	Mode      codec.Mode // Default: "char".
	Marker    rune       // Default: U+200E.
	Extension string     // Directory source filter. Default: ".txt".

	// Batch behavior.
	OutputDir  string // Empty means "next to the inputs".
	Workers    int    // Default: 1 (sequential).
	DryRun     bool   // Process but write nothing.
	ReportPath string // Optional JSON manifest path.

	// Watch mode.
	DebounceMillis int // Quiet period before a changed file is processed. Default: 500.

	// Display and logging.
	Verbose   bool
	ColorMode ColorMode // Default: "auto".
	LogFile   string    // Optional log file path.
}

// DefaultConfig returns a Config with every default applied.
func DefaultConfig() Config {
	return Config{
		Mode:           codec.PerCharacter,
		Marker:         codec.DefaultMarker,
		Extension:      ".txt",
		Workers:        1,
		DebounceMillis: 500,
		ColorMode:      ColorAuto,
	}
}

// NormalizeDirArg strips trailing slashes from a directory path.
// The filesystem root "/" is returned unchanged so we don't produce an empty string.
func NormalizeDirArg(path string) string {
	if path == "/" {
		return "/"
	}
	return strings.TrimRight(path, "/")
}

// NormalizeExtension trims ext and adds a leading dot when missing. Case is
// kept; file names are matched exactly.
func NormalizeExtension(ext string) string {
	ext = strings.TrimSpace(ext)
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

// Validate checks enum fields and numeric ranges and canonicalizes the
// extension filter.
func (c *Config) Validate() error {
	if !c.Mode.Valid() {
		return &codec.InvalidModeError{Mode: c.Mode}
	}
	if err := codec.ValidateMarker(c.Marker); err != nil {
		return err
	}

	switch c.ColorMode {
	case ColorAuto, ColorAlways, ColorNever:
		// valid
	default:
		return errors.New("invalid color mode (use 'auto', 'always' or 'never')")
	}

	c.Extension = NormalizeExtension(c.Extension)
	if c.Extension == "" || c.Extension == "." {
		return errors.New("extension filter must not be empty")
	}
	if strings.ContainsAny(c.Extension, `/\`) {
		return fmt.Errorf("invalid extension filter %q", c.Extension)
	}

	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1 (got %d)", c.Workers)
	}
	if c.DebounceMillis < 0 {
		return fmt.Errorf("debounce must not be negative (got %dms)", c.DebounceMillis)
	}
	return nil
}

// Codec returns a codec for the configured marker.
func (c *Config) Codec() (*codec.Codec, error) {
	return codec.New(c.Marker)
}
