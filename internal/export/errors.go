// Package export holds what the export backends share: the error type every
// backend returns and the output file naming rule.
package export

import (
	"errors"
	"fmt"
)

// Sentinel errors for export failure conditions.
var (
	ErrInvalidDocument = errors.New("export: invalid document")
	ErrEngine          = errors.New("export: rendering engine failed")
	ErrNotPDF          = errors.New("export: engine output is not a PDF")
	ErrFontTimeout     = errors.New("export: fonts did not load in time")
	ErrSuperseded      = errors.New("export: superseded by a newer export")
	ErrTimeout         = errors.New("export: timed out")
)

// Error is the single terminal error of a failed export. Op names the stage
// that failed, e.g. "validate", "render", "print".
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("export.%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("export.%s: unknown error", e.Op)
}

func (e *Error) Unwrap() error { return e.Err }

// Wrap returns err as an *Error for op. An err that already is an *Error is
// returned unchanged so the innermost stage is reported.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	return &Error{Op: op, Err: err}
}
