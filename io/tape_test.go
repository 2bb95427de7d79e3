package io

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTape_ReadInt(t *testing.T) {
	assert := assert.New(t)

	tape := &Tape{Input: strings.NewReader("5\n  -3 \n2147483647\n")}

	value, err := tape.ReadInt()
	assert.NoError(err)
	assert.Equal(int32(5), value)

	value, err = tape.ReadInt()
	assert.NoError(err)
	assert.Equal(int32(-3), value)

	value, err = tape.ReadInt()
	assert.NoError(err)
	assert.Equal(int32(2147483647), value)

	_, err = tape.ReadInt()
	assert.Equal(ErrInputEmpty, err)
}

func TestTape_ReadInt_Malformed(t *testing.T) {
	assert := assert.New(t)

	tape := &Tape{Input: strings.NewReader("abc\n99999999999\n")}

	_, err := tape.ReadInt()
	assert.Equal(ErrInputMalformed("abc"), err)

	// Out of 32-bit range reads are malformed too.
	_, err = tape.ReadInt()
	assert.Equal(ErrInputMalformed("99999999999"), err)
}

func TestTape_ReadInt_NoInput(t *testing.T) {
	assert := assert.New(t)

	tape := &Tape{}
	_, err := tape.ReadInt()
	assert.Equal(ErrInputInvalid, err)
}

func TestTape_ReadInt_ReadError(t *testing.T) {
	assert := assert.New(t)

	tape := &Tape{Input: &errorReader{}}
	_, err := tape.ReadInt()
	assert.Equal(io.ErrUnexpectedEOF, err)
}

type errorReader struct{}

func (er *errorReader) Read(p []byte) (n int, err error) {
	return 0, io.ErrUnexpectedEOF
}

func TestTape_WriteInt(t *testing.T) {
	assert := assert.New(t)

	output := &bytes.Buffer{}
	tape := &Tape{Output: output}

	assert.NoError(tape.WriteInt(7))
	assert.NoError(tape.WriteInt(-12))

	assert.Equal("7\n-12\n", output.String())
}

func TestTape_WriteInt_NoOutput(t *testing.T) {
	assert := assert.New(t)

	tape := &Tape{}
	assert.Equal(ErrOutputInvalid, tape.WriteInt(1))
}

func TestTape_Rewind(t *testing.T) {
	assert := assert.New(t)

	tape := &Tape{Input: strings.NewReader("1\n")}

	value, err := tape.ReadInt()
	assert.NoError(err)
	assert.Equal(int32(1), value)

	// Rewind drops the scanner so a swapped input reads fresh.
	tape.Input = strings.NewReader("2\n")
	tape.Rewind()

	value, err = tape.ReadInt()
	assert.NoError(err)
	assert.Equal(int32(2), value)
}
