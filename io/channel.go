// Package io provides the I/O channels of the RAM machine. A channel
// carries signed 32-bit integers: Tape adapts line-oriented text
// streams, and Buffer keeps an in-memory queue for hosts and tests.
package io

// Channel is the interface between the machine and one I/O stream.
type Channel interface {
	// Rewind resets the channel to its initial state.
	Rewind()
	// ReadInt consumes the next value from the channel.
	ReadInt() (int32, error)
	// WriteInt appends a value to the channel.
	WriteInt(value int32) error
}
