package rollerr

import (
	"errors"
	"fmt"
)

// Configuration errors returned synchronously by New. They are never retried.
var (
	ErrNoFilename   = errors.New("no log file path configured")
	ErrModeConflict = errors.New("maxBytes and datePattern are mutually exclusive")
	ErrBadFlags     = errors.New(`open flags must be "a" (append) or "w" (truncate)`)
	ErrBadEncoding  = errors.New("only utf8 encoding is supported")
	ErrClosed       = errors.New("roller is closed")
)

// OpenError reports a mkdir or open failure. Open failures are fatal: the
// roller enters its terminal failed state and every later call returns the
// same error.
type OpenError struct {
	Path string
	Err  error
}

func (e *OpenError) Error() string {
	return fmt.Sprintf("opening log file %s: %v", e.Path, e.Err)
}

func (e *OpenError) Unwrap() error { return e.Err }

// WriteError reports an OS-level write failure for a single chunk. The roller
// stays usable; only the affected write is lost.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("writing log file %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// RotationError reports a failed step of the rotation pipeline. Step is
// either "close" or "rotate", so tests can inject a failure at each stage
// and assert where the pipeline stopped. A reopen failure is an OpenError
// instead. Rotation failures are not sticky: the handle is left closed, the
// triggering write reports the error, and the next write reopens the file.
type RotationError struct {
	Step string
	Err  error
}

func (e *RotationError) Error() string {
	return fmt.Sprintf("rotation failed at %s: %v", e.Step, e.Err)
}

func (e *RotationError) Unwrap() error { return e.Err }
