package io

import (
	"errors"

	"github.com/ramlab/ramsim/translate"
)

var f = translate.From

var (
	// Channel errors
	ErrInputInvalid  = errors.New(f("input invalid"))
	ErrInputEmpty    = errors.New(f("input exhausted"))
	ErrOutputInvalid = errors.New(f("output invalid"))
)

// ErrInputMalformed reports an input line that is not an integer.
type ErrInputMalformed string

func (err ErrInputMalformed) Error() string {
	return f("input '%v' is not a number", string(err))
}
