package io

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Tape adapts a line-oriented reader and writer pair into a machine
// channel. Every value occupies one line of decimal text.
type Tape struct {
	Input  io.Reader
	Output io.Writer

	scanner *bufio.Scanner
}

var _ Channel = (*Tape)(nil)

// Rewind cannot reposition the underlying streams. It only drops the
// line scanner, so a caller that swapped Input gets a fresh one.
func (tape *Tape) Rewind() {
	tape.scanner = nil
}

// ReadInt consumes one line of input and parses it as a signed 32-bit
// integer. Surrounding whitespace is ignored.
func (tape *Tape) ReadInt() (value int32, err error) {
	if tape.Input == nil {
		err = ErrInputInvalid
		return
	}
	if tape.scanner == nil {
		tape.scanner = bufio.NewScanner(tape.Input)
	}

	if !tape.scanner.Scan() {
		err = tape.scanner.Err()
		if err == nil {
			err = ErrInputEmpty
		}
		return
	}

	text := strings.TrimSpace(tape.scanner.Text())
	v64, perr := strconv.ParseInt(text, 10, 32)
	if perr != nil {
		err = ErrInputMalformed(text)
		return
	}
	value = int32(v64)
	return
}

// WriteInt emits one value as a line of decimal text.
func (tape *Tape) WriteInt(value int32) (err error) {
	if tape.Output == nil {
		err = ErrOutputInvalid
		return
	}
	_, err = fmt.Fprintf(tape.Output, "%d\n", value)
	return
}
