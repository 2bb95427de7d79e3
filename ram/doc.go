// Package ram implements the assembler and execution engine of a
// classic random access machine.
//
// The machine owns an unbounded file of signed 32-bit registers and an
// instruction pointer over a fixed program. Register 0 is the
// accumulator, which the arithmetic operations implicitly read and
// write. Twelve opcodes are defined:
//
//	LOAD STORE ADD SUB MULT DIV READ WRITE JUMP JGTZ JZERO HALT
//
// An operand names a register directly, a literal value (written =n),
// or a register holding the index of another register (written *n).
// Arithmetic wraps around on int32 overflow and DIV truncates toward
// zero.
//
// The assembler turns line-oriented source text into a Program. Beyond
// the instruction set it supports labels with forward references,
// .equ equates, .macro/.endm macros, and compile-time $(...) integer
// expressions evaluated by Starlark.
package ram
