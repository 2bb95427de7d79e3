package ram

import (
	"fmt"
	"iter"
	"strings"
)

// Program is a fully resolved instruction sequence plus the label table
// it was assembled with.
type Program struct {
	Instructions []Instruction  // Resolved instructions, in address order.
	Labels       map[string]int // Map of label names to instruction addresses.
}

// At returns the instruction at address ip.
func (prog *Program) At(ip int) (inst Instruction, ok bool) {
	if ip < 0 || ip >= len(prog.Instructions) {
		return
	}
	return prog.Instructions[ip], true
}

// LineNo returns the source line of the instruction at ip, or 0 when ip
// is outside the program.
func (prog *Program) LineNo(ip int) (lineno int) {
	inst, ok := prog.At(ip)
	if ok {
		lineno = inst.LineNo
	}
	return
}

// Codes iterates over the program's (address, instruction) pairs.
func (prog *Program) Codes() iter.Seq2[int, Instruction] {
	return func(yield func(int, Instruction) bool) {
		for n, inst := range prog.Instructions {
			if !yield(n, inst) {
				return
			}
		}
	}
}

// Listing renders the program as an assembly listing, one instruction
// per line, marking the instruction at ip with '>'.
func (prog *Program) Listing(ip int) string {
	listing := &strings.Builder{}
	for n, inst := range prog.Codes() {
		marker := " "
		if n == ip {
			marker = ">"
		}
		fmt.Fprintf(listing, "%v %3d: %v\n", marker, n, inst)
	}
	return listing.String()
}
