// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package emulator

import (
	"fmt"
	"io"

	"github.com/ramlab/ramsim/ram"

	ramio "github.com/ramlab/ramsim/io"
)

// Emulator state. Machine + program + IO channels.
type Emulator struct {
	Verbose      bool         // If set, enables verbose logging.
	*ram.Machine              // Reference to the machine simulation.
	Program      *ram.Program // Reference to the currently loaded program.

	Tape  ramio.Tape // Line-oriented IO channel pair for READ and WRITE.
	Trace io.Writer  // If set, receives one line per executed instruction.
}

// NewEmulator creates a new emulator.
func NewEmulator() (emu *Emulator) {
	emu = &Emulator{
		Program: &ram.Program{},
	}
	emu.attach()

	return
}

// attach builds a fresh machine for the current program and wires the
// tape to it.
func (emu *Emulator) attach() {
	emu.Machine = ram.NewMachine(emu.Program)
	emu.Machine.Verbose = emu.Verbose
	emu.Machine.In = &emu.Tape
	emu.Machine.Out = &emu.Tape
}

// Reset discards all machine state. Registers return to zero and the
// instruction pointer to address 0.
func (emu *Emulator) Reset() {
	emu.attach()
	emu.Tape.Rewind()
}

// LineNo returns the source line number of the instruction under the
// instruction pointer.
func (emu *Emulator) LineNo() int {
	return emu.Program.LineNo(emu.Machine.IP())
}

// Tick performs a single step of the emulator.
func (emu *Emulator) Tick() (done bool, err error) {
	// Set machine verbosity
	emu.Machine.Verbose = emu.Verbose

	lineno := emu.LineNo()
	defer func() {
		if err != nil {
			err = &ErrRuntime{LineNo: lineno, Err: err}
		}
	}()

	inst, ok, err := emu.Machine.Step()
	if err != nil {
		return
	}
	if !ok {
		done = true
		return
	}

	if emu.Trace != nil {
		fmt.Fprintf(emu.Trace, "Executed: %v\n", inst)
	}

	return
}

// Run executes the loaded program until the machine halts.
func (emu *Emulator) Run() (err error) {
	var done bool
	for !done {
		done, err = emu.Tick()
		if err != nil {
			return
		}
	}
	return
}
