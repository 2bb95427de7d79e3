package ram

import (
	"fmt"
)

// OpCode of a machine instruction.
type OpCode int

const (
	OP_LOAD  = OpCode(0)  // LOAD
	OP_STORE = OpCode(1)  // STORE
	OP_ADD   = OpCode(2)  // ADD
	OP_SUB   = OpCode(3)  // SUB
	OP_MULT  = OpCode(4)  // MULT
	OP_DIV   = OpCode(5)  // DIV
	OP_READ  = OpCode(6)  // READ
	OP_WRITE = OpCode(7)  // WRITE
	OP_JUMP  = OpCode(8)  // JUMP
	OP_JGTZ  = OpCode(9)  // JGTZ
	OP_JZERO = OpCode(10) // JZERO
	OP_HALT  = OpCode(11) // HALT
)

// opNames holds the assembly mnemonic of each opcode.
var opNames = [...]string{
	"LOAD", "STORE", "ADD", "SUB", "MULT", "DIV",
	"READ", "WRITE", "JUMP", "JGTZ", "JZERO", "HALT",
}

// opMap maps mnemonics to opcodes. Mnemonics are case sensitive.
var opMap = map[string]OpCode{
	"LOAD":  OP_LOAD,
	"STORE": OP_STORE,
	"ADD":   OP_ADD,
	"SUB":   OP_SUB,
	"MULT":  OP_MULT,
	"DIV":   OP_DIV,
	"READ":  OP_READ,
	"WRITE": OP_WRITE,
	"JUMP":  OP_JUMP,
	"JGTZ":  OP_JGTZ,
	"JZERO": OP_JZERO,
	"HALT":  OP_HALT,
}

func (op OpCode) String() string {
	if op < 0 || int(op) >= len(opNames) {
		return fmt.Sprintf("OpCode(%d)", int(op))
	}
	return opNames[op]
}

// NeedsOperand reports whether the opcode requires an operand.
// HALT is the only opcode that takes none.
func (op OpCode) NeedsOperand() bool {
	return op != OP_HALT
}

// IsJump reports whether the opcode can redirect the instruction pointer.
func (op OpCode) IsJump() bool {
	switch op {
	case OP_JUMP, OP_JGTZ, OP_JZERO:
		return true
	}
	return false
}

// AddrMode selects how an instruction's operand is interpreted.
type AddrMode int

const (
	MODE_REGISTER  = AddrMode(0) // register
	MODE_IMMEDIATE = AddrMode(1) // immediate
	MODE_INDIRECT  = AddrMode(2) // indirect
	MODE_NONE      = AddrMode(3) // none
)

var modeNames = [...]string{"register", "immediate", "indirect", "none"}

func (mode AddrMode) String() string {
	if mode < 0 || int(mode) >= len(modeNames) {
		return fmt.Sprintf("AddrMode(%d)", int(mode))
	}
	return modeNames[mode]
}

const (
	// ACC_REGISTER is the index of the accumulator register.
	ACC_REGISTER = int32(0)

	// OPERAND_PLACEHOLDER fills the operand of an instruction whose
	// label reference has not been resolved yet.
	OPERAND_PLACEHOLDER = int32(-1)
)

// Instruction is a single decoded machine operation.
type Instruction struct {
	Op      OpCode   // Operation to perform.
	Mode    AddrMode // Addressing mode of the operand.
	Operand int32    // Register index or literal value.
	LineNo  int      // Source line the instruction came from, 1-based.
}

// MakeInst creates an instruction with no source line attached.
func MakeInst(op OpCode, mode AddrMode, operand int32) Instruction {
	return Instruction{Op: op, Mode: mode, Operand: operand}
}

// String renders the instruction in assembly listing form.
func (inst Instruction) String() (out string) {
	switch inst.Mode {
	case MODE_IMMEDIATE:
		out = fmt.Sprintf("%v\t=%v", inst.Op, inst.Operand)
	case MODE_INDIRECT:
		out = fmt.Sprintf("%v\t*%v", inst.Op, inst.Operand)
	case MODE_NONE:
		out = inst.Op.String()
	default:
		out = fmt.Sprintf("%v\t %v", inst.Op, inst.Operand)
	}
	return out
}
