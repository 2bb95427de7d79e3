package ram

import (
	"errors"
	"fmt"
	"log"

	"github.com/ramlab/ramsim/io"
)

// Machine executes a resolved Program against a register file.
//
// Each Step fetches the instruction under the instruction pointer,
// advances the pointer, and then executes. Jumps overwrite the already
// advanced pointer. The machine halts on HALT, on walking off the end
// of the program, or on the first runtime error.
type Machine struct {
	Verbose bool // If set, verbosely logs each executed instruction.

	Registers Registers  // Register file. Register 0 is the accumulator.
	In        io.Channel // Input channel consumed by READ.
	Out       io.Channel // Output channel fed by WRITE.

	program *Program
	ip      int
	halted  bool
	steps   int
}

// NewMachine creates a halted-at-start machine for prog, with all
// registers zero and the instruction pointer at address 0.
func NewMachine(prog *Program) (m *Machine) {
	m = &Machine{program: prog}
	return
}

// Program returns the program the machine executes.
func (m *Machine) Program() *Program {
	return m.program
}

// IP returns the current instruction pointer.
func (m *Machine) IP() int {
	return m.ip
}

// Steps returns the count of instructions executed so far.
func (m *Machine) Steps() int {
	return m.steps
}

// Halted reports whether the machine has stopped for good.
func (m *Machine) Halted() bool {
	return m.halted
}

// acc reads the accumulator.
func (m *Machine) acc() int32 {
	value, _ := m.Registers.Get(ACC_REGISTER)
	return value
}

// setAcc writes the accumulator.
func (m *Machine) setAcc(value int32) {
	_ = m.Registers.Set(ACC_REGISTER, value)
}

// Step executes a single instruction.
//
// It returns the instruction executed, with ok false once the machine
// has halted and nothing ran. A runtime error halts the machine; the
// returned instruction is then the one that failed.
func (m *Machine) Step() (inst Instruction, ok bool, err error) {
	if m.halted {
		return
	}

	if m.ip >= len(m.program.Instructions) {
		// Walked off the end of the program.
		m.halted = true
		return
	}

	inst = m.program.Instructions[m.ip]
	m.ip += 1

	err = m.Execute(inst)
	if err != nil {
		m.halted = true
		return
	}

	m.steps += 1
	ok = true
	return
}

// Run executes instructions until the machine halts.
func (m *Machine) Run() (err error) {
	var ok bool
	for {
		_, ok, err = m.Step()
		if err != nil || !ok {
			return
		}
	}
}

// Execute applies one instruction to the machine state. The instruction
// pointer has already moved past inst; jumps overwrite it.
func (m *Machine) Execute(inst Instruction) (err error) {
	defer func() {
		if err != nil {
			err = errors.Join(ErrInstruction(inst), err)
		}
	}()

	if m.Verbose {
		log.Printf("%3d: %v\n", m.ip-1, inst)
	}

	switch inst.Op {
	case OP_LOAD:
		var value int32
		value, err = m.value(inst)
		if err != nil {
			return
		}
		m.setAcc(value)

	case OP_STORE:
		var target int32
		target, err = m.target(inst)
		if err != nil {
			return
		}
		err = m.Registers.Set(target, m.acc())

	case OP_ADD, OP_SUB, OP_MULT, OP_DIV:
		var value int32
		value, err = m.value(inst)
		if err != nil {
			return
		}
		value, err = arith(inst.Op, m.acc(), value)
		if err != nil {
			return
		}
		m.setAcc(value)

	case OP_READ:
		var target int32
		target, err = m.target(inst)
		if err != nil {
			return
		}
		if m.In == nil {
			err = ErrChannelInvalid
			return
		}
		var value int32
		value, err = m.In.ReadInt()
		if err != nil {
			return
		}
		err = m.Registers.Set(target, value)

	case OP_WRITE:
		var value int32
		value, err = m.value(inst)
		if err != nil {
			return
		}
		if m.Out == nil {
			err = ErrChannelInvalid
			return
		}
		err = m.Out.WriteInt(value)

	case OP_JUMP:
		err = m.jump(inst, true)

	case OP_JGTZ:
		err = m.jump(inst, m.acc() > 0)

	case OP_JZERO:
		err = m.jump(inst, m.acc() == 0)

	case OP_HALT:
		// A stray operand on HALT is ignored.
		m.halted = true

	default:
		err = ErrInstructionInvalid(inst.Op.String())
	}

	return
}

// value decodes the operand as a source value.
func (m *Machine) value(inst Instruction) (value int32, err error) {
	switch inst.Mode {
	case MODE_IMMEDIATE:
		value = inst.Operand
	case MODE_REGISTER:
		value, err = m.Registers.Get(inst.Operand)
	case MODE_INDIRECT:
		var index int32
		index, err = m.Registers.Get(inst.Operand)
		if err != nil {
			return
		}
		value, err = m.Registers.Get(index)
	default:
		err = ErrModeMismatch{Op: inst.Op, Mode: inst.Mode}
	}
	return
}

// target decodes the operand as a destination register index.
// An immediate operand never names a destination.
func (m *Machine) target(inst Instruction) (index int32, err error) {
	switch inst.Mode {
	case MODE_REGISTER:
		index = inst.Operand
	case MODE_INDIRECT:
		index, err = m.Registers.Get(inst.Operand)
		if err != nil {
			return
		}
	default:
		err = ErrModeMismatch{Op: inst.Op, Mode: inst.Mode}
		return
	}
	if index < 0 {
		err = ErrRegisterInvalid(index)
	}
	return
}

// jump decodes the target address and redirects the instruction pointer
// when taken. The address is validated even when the jump is not taken;
// one past the last instruction is legal and halts on the next step.
func (m *Machine) jump(inst Instruction, taken bool) (err error) {
	var target int32
	target, err = m.value(inst)
	if err != nil {
		return
	}
	if target < 0 || int(target) > len(m.program.Instructions) {
		err = ErrJumpBounds(target)
		return
	}
	if taken {
		m.ip = int(target)
	}
	return
}

// arith applies an arithmetic opcode to the accumulator value.
// Overflow wraps around; DIV truncates toward zero.
func arith(op OpCode, acc, value int32) (out int32, err error) {
	switch op {
	case OP_ADD:
		out = acc + value
	case OP_SUB:
		out = acc - value
	case OP_MULT:
		out = acc * value
	case OP_DIV:
		if value == 0 {
			err = ErrDivideByZero
			return
		}
		out = acc / value
	}
	return
}

// String renders the machine state for debugging.
func (m *Machine) String() string {
	state := "running"
	if m.halted {
		state = "halted"
	}
	return fmt.Sprintf("ip: %v  steps: %v  state: %v\nacc: %v\n%v",
		m.ip, m.steps, state, m.acc(), &m.Registers)
}
