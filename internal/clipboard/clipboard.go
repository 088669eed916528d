// Package clipboard copies transformed text to the desktop clipboard. The
// codec never touches the clipboard itself; callers inject a Clipboard and
// treat ErrNoClipboard as a warning, never as a failed transform.
package clipboard

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
)

// ErrNoClipboard is returned when no clipboard backend is reachable.
var ErrNoClipboard = errors.New("no clipboard available")

// Clipboard is the copy capability handed to callers.
type Clipboard interface {
	Name() string
	Copy(ctx context.Context, text string) error
}

// Backend is a Clipboard that can report whether it is usable here.
type Backend interface {
	Clipboard
	Available(ctx context.Context) bool
}

// Status is one row of a backend availability listing.
type Status struct {
	Name      string
	Available bool
}

// Indirections for tests.
var (
	lookPath = exec.LookPath
	getenv   = os.Getenv
	goos     = runtime.GOOS
)

// Candidates returns the backends worth trying on this platform, in order
// of preference.
func Candidates() []Backend {
	switch goos {
	case "darwin":
		return []Backend{&Command{Tool: "pbcopy"}}
	case "windows":
		return []Backend{&Command{Tool: "clip.exe"}}
	default:
		return []Backend{
			&Command{Tool: "wl-copy", Env: "WAYLAND_DISPLAY"},
			&Klipper{},
			&Command{Tool: "xclip", Args: []string{"-selection", "clipboard"}, Env: "DISPLAY"},
			&Command{Tool: "xsel", Args: []string{"--clipboard", "--input"}, Env: "DISPLAY"},
			// WSL exposes the Windows clipboard through clip.exe on PATH.
			&Command{Tool: "clip.exe"},
		}
	}
}

// Detect returns the first available backend, or Nop when there is none.
func Detect(ctx context.Context) Clipboard {
	for _, b := range Candidates() {
		if b.Available(ctx) {
			return b
		}
	}
	return Nop{}
}

// Probe reports the availability of every candidate backend.
func Probe(ctx context.Context) []Status {
	var out []Status
	for _, b := range Candidates() {
		out = append(out, Status{Name: b.Name(), Available: b.Available(ctx)})
	}
	return out
}

// Nop is the clipboard of a headless session.
type Nop struct{}

func (Nop) Name() string { return "none" }

func (Nop) Copy(context.Context, string) error { return ErrNoClipboard }

// sessionBusConfigured reports whether a D-Bus session bus address can be
// found without autolaunching a bus.
func sessionBusConfigured() bool {
	if getenv("DBUS_SESSION_BUS_ADDRESS") != "" {
		return true
	}
	if dir := getenv("XDG_RUNTIME_DIR"); dir != "" {
		if _, err := os.Stat(filepath.Join(dir, "bus")); err == nil {
			return true
		}
	}
	return false
}
