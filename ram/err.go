package ram

import (
	"errors"

	"github.com/ramlab/ramsim/translate"
)

var f = translate.From

var (
	// Machine errors
	ErrChannelInvalid = errors.New(f("channel invalid"))
	ErrDivideByZero   = errors.New(f("division by zero"))

	// Assembler errors
	ErrEquateSyntax    = errors.New(f(".equ syntax"))
	ErrEquateDuplicate = errors.New(f(".equ duplicated"))
	ErrMacroSyntax     = errors.New(f(".macro syntax"))
	ErrMacroNesting    = errors.New(f(".macro in .macro prohibited"))
	ErrMacroDuplicate  = errors.New(f(".macro duplicated"))
	ErrMacroLonely     = errors.New(f(".macro without .endm"))
	ErrMacroLonelyEndm = errors.New(f(".endm without .macro"))
	ErrMacroRecursion  = errors.New(f(".macro expansion too deep"))
	ErrLabelEmpty      = errors.New(f("label empty"))
	ErrOperandExtra    = errors.New(f("excessive arguments"))
)

// ErrLabelMissing reports a label that was referenced but never declared.
type ErrLabelMissing string

func (err ErrLabelMissing) Error() string {
	return f("label %v missing", string(err))
}

// ErrLabelDuplicate reports a label declared more than once.
type ErrLabelDuplicate string

func (err ErrLabelDuplicate) Error() string {
	return f("label %v duplicated", string(err))
}

// ErrInstructionInvalid reports a mnemonic that names no opcode or macro.
type ErrInstructionInvalid string

func (err ErrInstructionInvalid) Error() string {
	return f("instruction '%v' invalid", string(err))
}

// ErrOperandMissing reports an opcode that requires an operand but got none.
type ErrOperandMissing OpCode

func (err ErrOperandMissing) Error() string {
	return f("%v needs an operand", OpCode(err))
}

// ErrRegisterInvalid reports a negative register index.
type ErrRegisterInvalid int32

func (err ErrRegisterInvalid) Error() string {
	return f("register %v invalid", int32(err))
}

// ErrJumpBounds reports a jump target outside the program.
type ErrJumpBounds int32

func (err ErrJumpBounds) Error() string {
	return f("jump target %v out of range", int32(err))
}

// ErrModeMismatch reports an addressing mode the opcode cannot decode.
type ErrModeMismatch struct {
	Op   OpCode
	Mode AddrMode
}

func (em ErrModeMismatch) Error() string {
	return f("%v cannot use %v addressing", em.Op, em.Mode)
}

func (em ErrModeMismatch) Is(err error) (ok bool) {
	_, ok = err.(ErrModeMismatch)
	return
}

// ErrInstruction marks the instruction a runtime error came from.
type ErrInstruction Instruction

func (ei ErrInstruction) Error() string {
	return f("instruction '%v'", Instruction(ei).String())
}

func (ei ErrInstruction) Is(err error) (ok bool) {
	_, ok = err.(ErrInstruction)
	return
}

type ErrParseExpression string

func (err ErrParseExpression) Error() string {
	return f("$(%v) is not a valid expression", string(err))
}

// ErrSyntax wraps an assembly error with its source location.
type ErrSyntax struct {
	LineNo int
	Line   string
	Err    error
}

func (err ErrSyntax) Error() string {
	return f("line %d '%v' %v", err.LineNo, err.Line, err.Err)
}

func (err ErrSyntax) Unwrap() error {
	return err.Err
}

// ErrMacro wraps an error raised while expanding a macro body.
type ErrMacro struct {
	Macro string
	Line  int
	Err   error
}

func (err ErrMacro) Error() string {
	return f("macro %v line %v %v", err.Macro, err.Line, err.Err.Error())
}

func (err ErrMacro) Unwrap() error {
	return err.Err
}
