//go:build !linux && !darwin && !freebsd && !netbsd && !openbsd

package term

import "os"

// isTerminal falls back to the character-device check where no termios
// ioctl is available.
func isTerminal(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}
