package ram

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Registers is the machine's register file: a sparse, zero-initialized
// mapping from non-negative indexes to signed 32-bit values. Indirect
// addressing can name arbitrarily large indexes, so storage is allocated
// only for registers actually written.
type Registers struct {
	data map[int32]int32
}

// Get returns the value of the register at index.
// A register never written reads as zero.
func (regs *Registers) Get(index int32) (value int32, err error) {
	if index < 0 {
		err = ErrRegisterInvalid(index)
		return
	}
	value = regs.data[index]
	return
}

// Set stores value into the register at index.
func (regs *Registers) Set(index int32, value int32) (err error) {
	if index < 0 {
		err = ErrRegisterInvalid(index)
		return
	}
	if regs.data == nil {
		regs.data = make(map[int32]int32, 16)
	}
	regs.data[index] = value
	return
}

// Touched returns the indexes of every register written so far, ascending.
func (regs *Registers) Touched() (indexes []int32) {
	indexes = slices.Collect(maps.Keys(regs.data))
	slices.Sort(indexes)
	return indexes
}

// Reset returns every register to zero.
func (regs *Registers) Reset() {
	clear(regs.data)
}

// String renders the written registers, one per line.
func (regs *Registers) String() string {
	report := &strings.Builder{}
	for _, index := range regs.Touched() {
		fmt.Fprintf(report, "% 5v: %v\n", index, regs.data[index])
	}
	return report.String()
}
