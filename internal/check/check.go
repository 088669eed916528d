// Package check provides system diagnostics (the check command) and
// pre-run validation (CheckDeps) of the marker, the codec, the output
// directory, and the clipboard backends.
package check

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/backmassage/cloak/internal/clipboard"
	"github.com/backmassage/cloak/internal/codec"
	"github.com/backmassage/cloak/internal/config"
	"github.com/backmassage/cloak/internal/display"
	"github.com/backmassage/cloak/internal/term"
)

// Sentinel errors returned by CheckDeps.
var (
	ErrOutputNotDir      = errors.New("output path exists and is not a directory")
	ErrOutputNotWritable = errors.New("output directory is not writable")
	ErrRoundTripFailed   = errors.New("codec round trip failed")
)

// roundTripSample exercises multi-byte runes, one-character words, and
// whitespace collapse.
const roundTripSample = "  I saw  the naïve café\n at 9 "

// Logger is the minimal logging interface needed by RunCheck.
// Defined here (rather than importing the logging package) so that check
// remains dependency-light and testable with a mock logger.
type Logger interface {
	Info(string, ...interface{})
	Success(string, ...interface{})
	Warn(string, ...interface{})
	Error(string, ...interface{})
	Debug(bool, string, ...interface{})
}

// RunCheck runs the interactive check flow: marker, codec round trip,
// output directory, clipboard backends, and terminal colors.
// This is informational only; it does not stop on failure.
func RunCheck(ctx context.Context, cfg *config.Config, log Logger) {
	log.Info("=== System Check ===")

	checkMarker(cfg, log)
	checkRoundTrip(cfg, log)
	checkOutputDir(cfg, log)
	checkClipboard(ctx, cfg, log)
	checkTerminal(log)
}

func checkMarker(cfg *config.Config, log Logger) {
	if err := codec.ValidateMarker(cfg.Marker); err != nil {
		log.Error("Marker %s: %v", display.FormatMarker(cfg.Marker), err)
		return
	}
	log.Success("Marker: %s (invisible format character)", display.FormatMarker(cfg.Marker))
}

func checkRoundTrip(cfg *config.Config, log Logger) {
	if err := roundTrip(cfg); err != nil {
		log.Error("%v", err)
		return
	}
	log.Success("Codec round trip OK (%s and %s modes)", codec.PerCharacter, codec.MidWord)
}

func checkOutputDir(cfg *config.Config, log Logger) {
	if cfg.OutputDir == "" {
		log.Info("Output: next to the inputs")
		return
	}
	if err := checkDir(cfg.OutputDir); err != nil {
		log.Error("Output %s: %v", cfg.OutputDir, err)
		return
	}
	if _, err := os.Stat(cfg.OutputDir); os.IsNotExist(err) {
		log.Info("Output: %s (will be created)", cfg.OutputDir)
		return
	}
	log.Success("Output: %s (writable)", cfg.OutputDir)
}

func checkClipboard(ctx context.Context, cfg *config.Config, log Logger) {
	log.Info("Clipboard backends:")
	found := false
	for _, s := range clipboard.Probe(ctx) {
		if s.Available {
			found = true
			log.Info("  %s: available", s.Name)
		} else {
			log.Debug(cfg.Verbose, "  %s: unavailable", s.Name)
		}
	}
	if !found {
		log.Warn("No clipboard backend found (--copy will be skipped)")
		return
	}
	log.Success("Clipboard: %s", clipboard.Detect(ctx).Name())
}

func checkTerminal(log Logger) {
	if term.Enabled() {
		log.Info("Colors: on")
	} else {
		log.Info("Colors: off")
	}
}

// CheckDeps is the pre-run validation: the marker must be invisible, the
// codec must round-trip, and an existing output path must be a writable
// directory. A missing output directory is fine; the batch creates it.
func CheckDeps(cfg *config.Config) error {
	if err := codec.ValidateMarker(cfg.Marker); err != nil {
		return err
	}
	if err := roundTrip(cfg); err != nil {
		return err
	}
	if cfg.OutputDir != "" {
		if err := checkDir(cfg.OutputDir); err != nil {
			return err
		}
	}
	return nil
}

// --- internal helpers ---

// roundTrip encodes and decodes a sample in both modes with the
// configured marker.
func roundTrip(cfg *config.Config) error {
	c, err := cfg.Codec()
	if err != nil {
		return err
	}
	want := codec.NormalizeWhitespace(roundTripSample)
	for _, mode := range []codec.Mode{codec.PerCharacter, codec.MidWord} {
		enc, err := c.Encode(roundTripSample, mode)
		if err != nil {
			return err
		}
		if got := c.Decode(enc); got != want {
			return fmt.Errorf("%w (%s mode): got %q, want %q", ErrRoundTripFailed, mode, got, want)
		}
	}
	return nil
}

// checkDir verifies that dir, if it exists, is a directory we can create
// files in.
func checkDir(dir string) error {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrOutputNotWritable, err)
	}
	if !info.IsDir() {
		return ErrOutputNotDir
	}
	f, err := os.CreateTemp(dir, ".cloak-check-*")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrOutputNotWritable, err)
	}
	name := f.Name()
	f.Close()
	os.Remove(name)
	return nil
}
