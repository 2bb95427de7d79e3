package ram

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAssembler(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}

	prog, err := asm.Parse(strings.NewReader(""))
	assert.NoError(err)
	assert.Equal(0, len(prog.Instructions))

	assert.Equal("0", asm.Equate["LINENO"])
	assert.Equal(fmt.Sprintf("%v", ACC_REGISTER), asm.Equate["ACC"])
}

func instEqual(t *testing.T, expected, insts []Instruction) {
	assert := assert.New(t)

	assert.Equal(len(expected), len(insts))
	if len(expected) == len(insts) {
		for n := range len(expected) {
			assert.Equal(expected[n], insts[n])
		}
	}
}

func TestAssemblerModes(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}

	program := []string{
		"LOAD =5",
		"LOAD =-5",
		"STORE 1",
		"ADD *2",
		"SUB = 3", // marker and value may be separated
		"MULT 0",
		"DIV =2",
		"READ 3",
		"WRITE *1",
		"JUMP =0",
		"JGTZ 7",
		"JZERO *8",
		"HALT",
		"HALT 5", // stray operand is kept but never used
	}

	prog, err := asm.Parse(strings.NewReader(strings.Join(program, "\n")))
	assert.NoError(err)
	if err != nil {
		t.Fatal(err)
		return
	}

	expected := []Instruction{
		{OP_LOAD, MODE_IMMEDIATE, 5, 1},
		{OP_LOAD, MODE_IMMEDIATE, -5, 2},
		{OP_STORE, MODE_REGISTER, 1, 3},
		{OP_ADD, MODE_INDIRECT, 2, 4},
		{OP_SUB, MODE_IMMEDIATE, 3, 5},
		{OP_MULT, MODE_REGISTER, 0, 6},
		{OP_DIV, MODE_IMMEDIATE, 2, 7},
		{OP_READ, MODE_REGISTER, 3, 8},
		{OP_WRITE, MODE_INDIRECT, 1, 9},
		{OP_JUMP, MODE_IMMEDIATE, 0, 10},
		{OP_JGTZ, MODE_REGISTER, 7, 11},
		{OP_JZERO, MODE_INDIRECT, 8, 12},
		{OP_HALT, MODE_NONE, 0, 13},
		{OP_HALT, MODE_REGISTER, 5, 14},
	}

	instEqual(t, expected, prog.Instructions)
}

func TestAssemblerLabel(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}

	program := []string{
		"JUMP end",
		"again: LOAD =1",
		"JGTZ again",
		"end: AND_ALSO:",
		"",
		"JUMP *end ; marker ignored, labels are addresses",
		"HALT",
	}

	prog, err := asm.Parse(strings.NewReader(strings.Join(program, "\n")))
	assert.NoError(err)

	expected := []Instruction{
		{OP_JUMP, MODE_IMMEDIATE, 3, 1},
		{OP_LOAD, MODE_IMMEDIATE, 1, 2},
		{OP_JGTZ, MODE_IMMEDIATE, 1, 3},
		{OP_JUMP, MODE_IMMEDIATE, 3, 6},
		{OP_HALT, MODE_NONE, 0, 7},
	}

	instEqual(t, expected, prog.Instructions)

	assert.Equal(1, prog.Labels["again"])
	assert.Equal(3, prog.Labels["end"])
	assert.Equal(3, prog.Labels["AND_ALSO"])
}

func TestAssemblerEqu(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}

	program := []string{
		".equ TEN 10",
		"LOAD =TEN",
		"ADD =$(TEN + TEN)",
		".equ THIRTY $(2 * TEN + TEN)",
		"STORE THIRTY",
		"STORE ACC",
		"WRITE =$(LINENO * 8 + 2)",
		"HALT",
	}

	prog, err := asm.Parse(strings.NewReader(strings.Join(program, "\n")))
	assert.NoError(err)
	if err != nil {
		t.Fatal(errors.Unwrap(err))
	}

	expected := []Instruction{
		{OP_LOAD, MODE_IMMEDIATE, 10, 2},
		{OP_ADD, MODE_IMMEDIATE, 20, 3},
		{OP_STORE, MODE_REGISTER, 30, 5},
		{OP_STORE, MODE_REGISTER, 0, 6},
		{OP_WRITE, MODE_IMMEDIATE, 58, 7},
		{OP_HALT, MODE_NONE, 0, 8},
	}

	instEqual(t, expected, prog.Instructions)
}

func TestAssemblerMacro(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}

	program := []string{
		".macro WRITETWICE value",
		"WRITE =value",
		"WRITE =value",
		".endm",
		"WRITETWICE 3",
		".equ TEN 10",
		"WRITETWICE TEN",
		"WRITETWICE $(TEN + 1)",
		"HALT",
	}

	prog, err := asm.Parse(strings.NewReader(strings.Join(program, "\n")))
	assert.NoError(err)
	if err != nil {
		t.Fatal(err)
	}

	expected := []Instruction{
		{OP_WRITE, MODE_IMMEDIATE, 3, 2},
		{OP_WRITE, MODE_IMMEDIATE, 3, 3},
		{OP_WRITE, MODE_IMMEDIATE, 10, 2},
		{OP_WRITE, MODE_IMMEDIATE, 10, 3},
		{OP_WRITE, MODE_IMMEDIATE, 11, 2},
		{OP_WRITE, MODE_IMMEDIATE, 11, 3},
		{OP_HALT, MODE_NONE, 0, 9},
	}

	instEqual(t, expected, prog.Instructions)
}

func TestAssemblerMacroLabels(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}

	program := []string{
		".macro COUNTDOWN start",
		"LOAD =start",
		"@loop: WRITE 0",
		"SUB =1",
		"JGTZ @loop",
		".endm",
		"COUNTDOWN 3",
		"COUNTDOWN 2",
		"HALT",
	}

	prog, err := asm.Parse(strings.NewReader(strings.Join(program, "\n")))
	assert.NoError(err)
	if err != nil {
		t.Fatal(err)
	}

	expected := []Instruction{
		{OP_LOAD, MODE_IMMEDIATE, 3, 2},
		{OP_WRITE, MODE_REGISTER, 0, 3},
		{OP_SUB, MODE_IMMEDIATE, 1, 4},
		{OP_JGTZ, MODE_IMMEDIATE, 1, 5},
		{OP_LOAD, MODE_IMMEDIATE, 2, 2},
		{OP_WRITE, MODE_REGISTER, 0, 3},
		{OP_SUB, MODE_IMMEDIATE, 1, 4},
		{OP_JGTZ, MODE_IMMEDIATE, 5, 5},
		{OP_HALT, MODE_NONE, 0, 9},
	}

	instEqual(t, expected, prog.Instructions)
}

func TestAssemblerMacroShadow(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}

	program := []string{
		".macro HALT",
		"WRITE =0",
		".endm",
		"HALT",
	}

	prog, err := asm.Parse(strings.NewReader(strings.Join(program, "\n")))
	assert.NoError(err)

	expected := []Instruction{
		{OP_WRITE, MODE_IMMEDIATE, 0, 2},
	}

	instEqual(t, expected, prog.Instructions)
}

func TestAssemblerPredefine(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	asm.Predefine("LIMIT", "5")

	prog, err := asm.Parse(strings.NewReader("LOAD =LIMIT\nHALT\n"))
	assert.NoError(err)

	expected := []Instruction{
		{OP_LOAD, MODE_IMMEDIATE, 5, 1},
		{OP_HALT, MODE_NONE, 0, 2},
	}
	instEqual(t, expected, prog.Instructions)

	// Predefines survive a re-parse.
	prog, err = asm.Parse(strings.NewReader("WRITE =$(LIMIT * 2)\nHALT\n"))
	assert.NoError(err)
	assert.Equal(int32(10), prog.Instructions[0].Operand)
}

func TestAssemblerReuse(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}

	_, err := asm.Parse(strings.NewReader(".macro M\nHALT\n.endm\nx: M\n"))
	assert.NoError(err)

	// Macros and labels do not leak into the next parse.
	_, err = asm.Parse(strings.NewReader("M\n"))
	assert.NotNil(err)

	_, err = asm.Parse(strings.NewReader("JUMP x\nHALT\n"))
	assert.NotNil(err)
}

func TestAssemblerErrSyntax(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}

	// Various syntax errors
	table := [](struct {
		prog string
		line int
	}){
		{"DUP:\nDUP:\n", 2},
		{":\n", 1},
		{"LOAD\n", 1},
		{"LOAD =\n", 1},
		{"NOP\n", 1},
		{"load =1\n", 1},
		{"LOAD =1 2\n", 1},
		{"JUMP nowhere\nHALT\n", 1},
		{"start: JUMP start\nHALT\nJUMP nowhere\n", 3},
		{"JUMP 2147483648\nHALT\n", 1},
		{".equ\n", 1},
		{".equ A\n", 1},
		{".equ A 1 2\n", 1},
		{".equ A 1\n.equ A 2\n", 2},
		{"lbl: .equ A 1\n", 1},
		{".macro\n", 1},
		{".macro A\n.macro B\n", 2},
		{".macro A\n.endm\n.macro A\n.endm\n", 3},
		{".endm\n", 1},
		{".macro A\nWRITE =1\n", 2},
		{".macro A B\n.endm\nA 1 2\n", 3},
		{".macro A\nNOP\n.endm\nA\n", 4},
		{".macro A\nA\n.endm\nA\n", 4},
		{"WRITE =$(bogus)\n", 1},
		{"WRITE =$(\"aaa\")\n", 1},
		{"WRITE =$(1 << 40)\n", 1},
	}

	for _, entry := range table {
		_, err := asm.Parse(strings.NewReader(entry.prog))
		var se *ErrSyntax
		assert.NotNil(err, entry.prog)
		if err != nil {
			assert.True(errors.As(err, &se), entry.prog)
			assert.Equal(entry.line, se.LineNo, entry.prog)
		}
	}
}

func TestAssemblerErrTargets(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}

	_, err := asm.Parse(strings.NewReader("JUMP nowhere\nHALT\n"))
	var missing ErrLabelMissing
	assert.True(errors.As(err, &missing))
	assert.Equal("nowhere", string(missing))

	_, err = asm.Parse(strings.NewReader("NOP\n"))
	var invalid ErrInstructionInvalid
	assert.True(errors.As(err, &invalid))
	assert.Equal("NOP", string(invalid))

	_, err = asm.Parse(strings.NewReader("LOAD\n"))
	var operand ErrOperandMissing
	assert.True(errors.As(err, &operand))
	assert.Equal(OP_LOAD, OpCode(operand))

	_, err = asm.Parse(strings.NewReader(".equ A 1\n.equ A 2\n"))
	assert.ErrorIs(err, ErrEquateDuplicate)

	_, err = asm.Parse(strings.NewReader("DUP:\nDUP:\n"))
	var dup ErrLabelDuplicate
	assert.True(errors.As(err, &dup))
	assert.Equal("DUP", string(dup))

	_, err = asm.Parse(strings.NewReader(".macro A\nA\n.endm\nA\n"))
	assert.ErrorIs(err, ErrMacroRecursion)
}
