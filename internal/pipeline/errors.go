package pipeline

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by Advance when no recording exists for the id.
var ErrNotFound = errors.New("recording not found")

// StageError wraps a failure inside a named pipeline stage. It is recorded on
// the recording row rather than propagated to callers.
type StageError struct {
	Stage string
	Cause error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s failed: %v", e.Stage, e.Cause)
}

func (e *StageError) Unwrap() error {
	return e.Cause
}
