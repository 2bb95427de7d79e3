package emulator

import (
	"github.com/ramlab/ramsim/translate"
)

var f = translate.From

// ErrRuntime ties a runtime error to the source line of the
// instruction that failed.
type ErrRuntime struct {
	LineNo int
	Err    error
}

func (err *ErrRuntime) Error() string {
	return f("line %d %v", err.LineNo, err.Err)
}

func (err *ErrRuntime) Unwrap() error {
	return err.Err
}
