package pipeline

import (
	"errors"
	"fmt"
)

// Sentinel errors. Match with errors.Is against the typed errors below.
var (
	ErrSourceUnavailable = errors.New("batch source unavailable")
	ErrItemProcessing    = errors.New("batch item failed")
)

// SourceUnavailableError reports a directory source that cannot be listed.
// It is fatal to the whole batch: nothing is collected.
type SourceUnavailableError struct {
	Path string
	Err  error
}

func (e *SourceUnavailableError) Error() string {
	return fmt.Sprintf("source unavailable: %s: %v", e.Path, e.Err)
}

func (e *SourceUnavailableError) Unwrap() error { return e.Err }

func (e *SourceUnavailableError) Is(target error) bool { return target == ErrSourceUnavailable }

// ItemError wraps a read, transform or write failure of a single item. It is
// recorded in the batch result and never aborts sibling items.
type ItemError struct {
	Source string
	Stage  Stage
	Err    error
}

func (e *ItemError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage.verb(), e.Err)
}

func (e *ItemError) Unwrap() error { return e.Err }

func (e *ItemError) Is(target error) bool { return target == ErrItemProcessing }
