// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package ram

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"maps"
	"math"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// Macro represents a macro definition in the assembly language.
type Macro struct {
	LineNo int      // Line number of the macro definition.
	Args   []string // Arguments for the macro.
	Lines  []string // Lines of macro text to expand.
}

// MACRO_DEPTH_LIMIT caps recursive macro expansion.
const MACRO_DEPTH_LIMIT = 16

// Predefined system equates
var sysEquate = map[string]string{
	"LINENO": "0",
	"ACC":    fmt.Sprintf("%v", ACC_REGISTER),
}

// pendingLabel is a label reference awaiting its declaration.
type pendingLabel struct {
	Label  string // Referenced label name.
	Index  int    // Instruction whose operand gets patched.
	LineNo int    // Source line of the reference.
	Line   string // Text of the referencing line.
}

// Assembler is a single pass macro assembler for RAM machine programs.
type Assembler struct {
	Verbose     bool          // If set, verbosely logs the assembler actions.
	Instruction []Instruction // List of generated instructions.

	predefine map[string]string   // Predefines
	Label     map[string]int      // Map of labels to instruction addresses.
	Equate    map[string]string   // Map of equates.
	Macro     map[string](*Macro) // Map of macros.

	pending   []pendingLabel // Label references awaiting resolution.
	depth     int            // Current macro expansion depth.
	expansion int            // Count of macro expansions, for unique labels.
}

// Predefine defines a new equate or redefines an existing equate.
func (asm *Assembler) Predefine(equ string, value string) {
	if asm.predefine == nil {
		asm.predefine = map[string]string{equ: value}
	} else {
		asm.predefine[equ] = value
	}
}

// parenRe matches a $(...) expression in a source line.
var parenRe = regexp.MustCompile(`\$\([^\$]*\)`)

// parenEval does compile-time $(...) evaluations.
func (asm *Assembler) parenEval(expr string) (value int32, err error) {
	thread := starlark.Thread{}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for key, str := range asm.Equate {
		v64, verr := strconv.ParseInt(str, 10, 32)
		if verr != nil {
			// Ignore non-integer equates. They may be labels
			// or something else.
			continue
		}
		pred[key] = starlark.MakeInt64(v64)
	}
	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
		return
	}
	st_rc, ok := dict["rc"]
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int, ok := st_rc.(starlark.Int)
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int64, ok := st_int.Int64()
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	if st_int64 > math.MaxInt32 || st_int64 < math.MinInt32 {
		err = ErrParseExpression(expr)
		return
	}
	value = int32(st_int64)
	return
}

// splitComment splits a source line at the first semicolon.
func splitComment(text string) (code, comment string) {
	if n := strings.IndexByte(text, ';'); n >= 0 {
		return text[:n], text[n:]
	}
	return text, ""
}

// setLabel declares a label at the next instruction address.
func (asm *Assembler) setLabel(label string) (err error) {
	if len(label) == 0 {
		err = ErrLabelEmpty
		return
	}
	if _, ok := asm.Label[label]; ok {
		err = ErrLabelDuplicate(label)
		return
	}
	if asm.Label == nil {
		asm.Label = make(map[string]int, 16)
	}
	asm.Label[label] = len(asm.Instruction)
	return
}

// parseLine assembles a single line into at most one instruction.
// The comment text, if any, still includes its leading semicolon.
func (asm *Assembler) parseLine(line string, comment string, lineno int) (err error) {
	// Set line number.
	asm.Equate["LINENO"] = fmt.Sprintf("%v", lineno)

	// Do $() evaluations
	line = parenRe.ReplaceAllStringFunc(line, func(str string) string {
		value, _err := asm.parenEval(str[2 : len(str)-1])
		if _err != nil {
			err = _err
		}
		return fmt.Sprintf("%v", value)
	})
	if err != nil {
		return
	}

	// .equ CONST VALUE
	words := strings.Fields(line)
	if len(words) > 0 && words[0] == ".equ" {
		if len(words) != 3 {
			err = ErrEquateSyntax
			return
		}
		_, ok := asm.Equate[words[1]]
		if ok {
			err = ErrEquateDuplicate
			return
		}
		asm.Equate[words[1]] = words[2]
		return
	}

	var mnemonic string
	var args []string
	var marker string

	for _, token := range Tokenize(line + comment) {
		switch token.Kind {
		case TOKEN_COMMENT, TOKEN_EOL:
			// Nothing to assemble.
		case TOKEN_LABEL:
			err = asm.setLabel(token.Text)
			if err != nil {
				return
			}
		case TOKEN_MNEMONIC:
			mnemonic = token.Text
			if equate, ok := asm.Equate[mnemonic]; ok {
				mnemonic = equate
			}
		case TOKEN_MARKER:
			marker += token.Text
		case TOKEN_VALUE:
			text := token.Text
			if equate, ok := asm.Equate[text]; ok {
				text = equate
			}
			args = append(args, marker+text)
			marker = ""
		}
	}
	if len(marker) > 0 {
		args = append(args, marker)
	}

	if len(mnemonic) == 0 {
		// Blank, labels only, or comment only.
		return
	}

	// Macro expansion. A macro may shadow an opcode mnemonic.
	if macro, ok := asm.Macro[mnemonic]; ok {
		return asm.expandMacro(mnemonic, macro, args)
	}

	op, ok := opMap[mnemonic]
	if !ok {
		err = ErrInstructionInvalid(mnemonic)
		return
	}

	if len(args) > 1 {
		err = ErrOperandExtra
		return
	}

	inst := MakeInst(op, MODE_NONE, 0)
	inst.LineNo = lineno

	if len(args) == 0 {
		if op.NeedsOperand() {
			err = ErrOperandMissing(op)
			return
		}
		asm.Instruction = append(asm.Instruction, inst)
		return
	}

	// Classify the addressing mode by the operand's leading marker.
	text := args[0]
	inst.Mode = MODE_REGISTER
	switch text[0] {
	case '=':
		inst.Mode = MODE_IMMEDIATE
		text = text[1:]
	case '*':
		inst.Mode = MODE_INDIRECT
		text = text[1:]
	}
	if len(text) == 0 {
		err = ErrOperandMissing(op)
		return
	}

	value, perr := strconv.ParseInt(text, 10, 32)
	if perr == nil {
		inst.Operand = int32(value)
		asm.Instruction = append(asm.Instruction, inst)
		return
	}

	// Not a number, so treat it as a label reference. Labels resolve to
	// absolute instruction addresses, which makes the mode immediate no
	// matter what marker was written.
	inst.Mode = MODE_IMMEDIATE
	inst.Operand = OPERAND_PLACEHOLDER
	asm.pending = append(asm.pending, pendingLabel{
		Label:  text,
		Index:  len(asm.Instruction),
		LineNo: lineno,
		Line:   line,
	})
	asm.Instruction = append(asm.Instruction, inst)
	return
}

// expandMacro assembles the lines of a macro body with its arguments
// bound as equates.
func (asm *Assembler) expandMacro(name string, macro *Macro, args []string) (err error) {
	if len(args) != len(macro.Args) {
		err = ErrMacroSyntax
		return
	}

	asm.depth += 1
	defer func() { asm.depth -= 1 }()
	if asm.depth > MACRO_DEPTH_LIMIT {
		err = ErrMacroRecursion
		return
	}

	// Turn args into equs
	old_equate := maps.Clone(asm.Equate)
	for n, arg := range macro.Args {
		asm.Equate[arg] = args[n]
	}
	defer func() { asm.Equate = old_equate }()

	// '@' prefixed names become unique per expansion, so a macro
	// declaring labels can be invoked more than once.
	asm.expansion += 1
	unique := fmt.Sprintf("%v_%v_", name, asm.expansion)

	for n, text := range macro.Lines {
		lineno := macro.LineNo + n

		text = strings.ReplaceAll(text, "@", unique)
		err = asm.parseLine(text, "", lineno)
		if err != nil {
			err = &ErrMacro{Macro: name, Line: lineno, Err: err}
			err = &ErrSyntax{LineNo: lineno, Line: text, Err: err}
			return
		}
	}

	return
}

// Parse assembles an input stream into a Program.
func (asm *Assembler) Parse(input io.Reader) (prog *Program, err error) {
	scanner := bufio.NewScanner(input)

	var line string
	var lineno int
	var macro *Macro

	defer func() {
		if err != nil {
			err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
		}
	}()

	clear(asm.Label)
	asm.Instruction = asm.Instruction[:0]
	asm.pending = asm.pending[:0]
	if asm.Macro == nil {
		asm.Macro = make(map[string](*Macro))
	}
	clear(asm.Macro)
	asm.Equate = maps.Clone(sysEquate)
	for attr, val := range asm.predefine {
		asm.Equate[attr] = val
	}
	asm.depth = 0
	asm.expansion = 0

	for scanner.Scan() {
		text := scanner.Text()
		lineno += 1

		if asm.Verbose {
			log.Printf("%v: %v\n", lineno, text)
		}

		code, comment := splitComment(text)
		line = strings.TrimSpace(code)
		words := strings.Fields(line)

		// .macro NAME arg...
		if len(words) > 0 && words[0] == ".macro" {
			if macro != nil {
				err = ErrMacroNesting
				return
			}
			if len(words) < 2 {
				err = ErrMacroSyntax
				return
			}
			if _, ok := asm.Macro[words[1]]; ok {
				err = ErrMacroDuplicate
				return
			}
			macro = &Macro{
				LineNo: lineno + 1,
			}
			if len(words) > 2 {
				macro.Args = words[2:]
			}
			asm.Macro[words[1]] = macro
			continue
		}

		if len(words) > 0 && words[0] == ".endm" {
			if macro == nil {
				err = ErrMacroLonelyEndm
				return
			}
			macro = nil
			continue
		}

		if macro != nil {
			macro.Lines = append(macro.Lines, line)
			continue
		}

		err = asm.parseLine(line, comment, lineno)
		if err != nil {
			return
		}
	}

	if err = scanner.Err(); err != nil {
		return
	}

	if macro != nil {
		err = ErrMacroLonely
		return
	}

	// Resolve forward label references.
	for _, pend := range asm.pending {
		ip, ok := asm.Label[pend.Label]
		if !ok {
			lineno = pend.LineNo
			line = pend.Line
			err = ErrLabelMissing(pend.Label)
			return
		}
		asm.Instruction[pend.Index].Operand = int32(ip)
	}

	prog = &Program{
		Instructions: slices.Clone(asm.Instruction),
		Labels:       maps.Clone(asm.Label),
	}

	return
}

// Assemble assembles source text into a Program.
func Assemble(text string) (prog *Program, err error) {
	asm := &Assembler{}
	return asm.Parse(strings.NewReader(text))
}
