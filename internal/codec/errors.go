package codec

import (
	"errors"
	"fmt"
)

// Sentinel errors for codec construction and encoding.
var (
	ErrInvalidMode   = errors.New("invalid insertion mode")
	ErrVisibleMarker = errors.New("marker is not an invisible format character")
	ErrInvalidUTF8   = errors.New("text is not valid UTF-8")
)

// InvalidModeError reports an insertion mode outside the closed set of
// modes. It matches ErrInvalidMode with errors.Is.
type InvalidModeError struct {
	Mode Mode
}

func (e *InvalidModeError) Error() string {
	return fmt.Sprintf("invalid insertion mode %q (use 'char' or 'mid')", string(e.Mode))
}

func (e *InvalidModeError) Is(target error) bool { return target == ErrInvalidMode }
