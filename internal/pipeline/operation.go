package pipeline

import (
	"fmt"
	"strings"
)

// Operation is the transform applied to every batch item.
type Operation string

const (
	OpEncode Operation = "encode"
	OpDecode Operation = "decode"
)

// Prefix is prepended to a source's base name to form its output name.
func (op Operation) Prefix() string {
	switch op {
	case OpDecode:
		return "decoded_"
	default:
		return "encoded_"
	}
}

// Valid reports whether op is a known operation.
func (op Operation) Valid() bool {
	return op == OpEncode || op == OpDecode
}

// ParseOperation maps user input to an Operation (case-insensitive).
func ParseOperation(s string) (Operation, error) {
	switch op := Operation(strings.ToLower(strings.TrimSpace(s))); op {
	case OpEncode, OpDecode:
		return op, nil
	default:
		return "", fmt.Errorf("invalid operation %q (use 'encode' or 'decode')", s)
	}
}
