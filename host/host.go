// Package host provides an interactive monitor for the RAM machine:
// a command driven shell that assembles programs, steps or runs them,
// manages breakpoints, and inspects registers and I/O.
package host

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/beevik/cmd"

	"github.com/ramlab/ramsim/ram"

	ramio "github.com/ramlab/ramsim/io"
)

var cmds *cmd.Tree

func init() {
	// Create a command tree, where the parameter stored with each command
	// is a host callback capable of handling the command.
	cmds = cmd.NewTree("ramsim", []cmd.Command{
		{
			Name:     "help",
			Shortcut: "?",
			Data:     (*Host).cmdHelp,
		},
		{
			Name:     "assemble",
			Shortcut: "a",
			Brief:    "Assemble a source file",
			Description: "Assemble the named source file and load the" +
				" resulting program into a fresh machine. The input queue," +
				" output, and breakpoints are cleared.",
			HelpText: "assemble <filename>",
			Data:     (*Host).cmdAssemble,
		},
		{
			Name:     "breakpoint",
			Shortcut: "b",
			Brief:    "Breakpoint commands",
			Subcommands: cmd.NewTree("Breakpoint", []cmd.Command{
				{
					Name:        "list",
					Brief:       "List breakpoints",
					Description: "List all current breakpoints.",
					HelpText:    "breakpoint list",
					Data:        (*Host).cmdBreakpointList,
				},
				{
					Name:  "add",
					Brief: "Add a breakpoint",
					Description: "Add a breakpoint at an instruction" +
						" address or label. A run stops before executing the" +
						" instruction at that address.",
					HelpText: "breakpoint add <address|label>",
					Data:     (*Host).cmdBreakpointAdd,
				},
				{
					Name:  "remove",
					Brief: "Remove a breakpoint",
					Description: "Remove the breakpoint at an instruction" +
						" address or label.",
					HelpText: "breakpoint remove <address|label>",
					Data:     (*Host).cmdBreakpointRemove,
				},
			}),
		},
		{
			Name:     "input",
			Shortcut: "i",
			Brief:    "Queue machine input",
			Description: "Queue integer values for READ instructions to" +
				" consume. Without arguments, display the values still queued.",
			HelpText: "input [<value> ...]",
			Data:     (*Host).cmdInput,
		},
		{
			Name:     "list",
			Shortcut: "l",
			Brief:    "List the program",
			Description: "Display the assembled program listing. The" +
				" instruction under the instruction pointer is marked with '>'.",
			HelpText: "list",
			Data:     (*Host).cmdList,
		},
		{
			Name:        "output",
			Shortcut:    "o",
			Brief:       "Show machine output",
			Description: "Display every value the program has written so far.",
			HelpText:    "output",
			Data:        (*Host).cmdOutput,
		},
		{
			Name:        "quit",
			Shortcut:    "q",
			Brief:       "Quit the program",
			Description: "Quit the program.",
			HelpText:    "quit",
			Data:        (*Host).cmdQuit,
		},
		{
			Name:     "registers",
			Shortcut: "r",
			Brief:    "Display machine state",
			Description: "Display the instruction pointer, step count, halt" +
				" state, and every register written so far.",
			HelpText: "registers",
			Data:     (*Host).cmdRegisters,
		},
		{
			Name:  "reset",
			Brief: "Reset the machine",
			Description: "Reset the machine: zero the registers, rewind the" +
				" input queue, discard output, and move the instruction" +
				" pointer to 0. The program and breakpoints are kept.",
			HelpText: "reset",
			Data:     (*Host).cmdReset,
		},
		{
			Name:  "run",
			Brief: "Run the machine",
			Description: "Run the machine until it halts, hits a breakpoint," +
				" needs input, fails, or the maxsteps setting is reached." +
				" Press ctrl-C to break.",
			HelpText: "run",
			Data:     (*Host).cmdRun,
		},
		{
			Name:  "set",
			Brief: "Set a configuration variable",
			Description: "Set the value of a configuration variable. Type the" +
				" set command without arguments to display the current values.",
			HelpText: "set <var> <value>",
			Data:     (*Host).cmdSet,
		},
		{
			Name:     "step",
			Shortcut: "s",
			Brief:    "Step the machine",
			Description: "Execute one instruction, or a counted number of" +
				" instructions.",
			HelpText: "step [<count>]",
			Data:     (*Host).cmdStep,
		},

		// Aliases for nested commands
		{Name: "ba", Alias: "breakpoint add"},
		{Name: "br", Alias: "breakpoint remove"},
		{Name: "bl", Alias: "breakpoint list"},
	})
}

// A Host couples a RAM machine with a command shell: an assembler, an
// I/O buffer standing in for the machine's tapes, breakpoints, and a
// handful of inspection commands.
type Host struct {
	input       *bufio.Scanner
	output      *bufio.Writer
	interactive bool
	lastCmd     *cmd.Selection

	mach        *ram.Machine
	prog        *ram.Program
	buf         ramio.Buffer
	settings    *settings
	breakpoints map[int]bool
	predefines  map[string]string
	interrupt   atomic.Bool
}

// New creates a host with an empty program loaded.
func New() *Host {
	h := &Host{
		settings:    newSettings(),
		breakpoints: make(map[int]bool),
		prog:        &ram.Program{},
	}
	h.reset()

	return h
}

// Predefine adds an equate definition applied to every assembly.
func (h *Host) Predefine(name string, value string) {
	if h.predefines == nil {
		h.predefines = make(map[string]string)
	}
	h.predefines[name] = value
}

// reset builds a fresh machine over the current program and rewinds the
// I/O buffer so queued input replays from the start.
func (h *Host) reset() {
	h.mach = ram.NewMachine(h.prog)
	h.mach.In = &h.buf
	h.mach.Out = &h.buf
	h.buf.Rewind()
}

// RunCommands accepts host commands from a reader and outputs the
// results to a writer. If the commands are interactive, a prompt is
// displayed while the host waits for the next command, and an empty
// line repeats the last command.
func (h *Host) RunCommands(r io.Reader, w io.Writer, interactive bool) {
	h.input = bufio.NewScanner(r)
	h.output = bufio.NewWriter(w)
	h.interactive = interactive

	if interactive {
		h.println()
		h.displayIP()
	}

	for {
		h.prompt()

		line, err := h.getLine()
		if err != nil {
			break
		}

		var c cmd.Selection
		if line != "" {
			c, err = cmds.Lookup(line)
			switch {
			case err == cmd.ErrNotFound:
				h.println("Command not found.")
				continue
			case err == cmd.ErrAmbiguous:
				h.println("Command is ambiguous.")
				continue
			case err != nil:
				h.printf("ERROR: %v.\n", err)
				continue
			}
		} else if h.lastCmd != nil {
			c = *h.lastCmd
		}

		if c.Command == nil {
			continue
		}
		h.lastCmd = &c

		if c.Command.Data == nil {
			h.displayCommands(c.Command.Subcommands)
			continue
		}

		handler := c.Command.Data.(func(*Host, cmd.Selection) error)
		err = handler(h, c)
		if err != nil {
			break
		}
	}

	h.flush()
}

// Break interrupts a running machine. It is safe to call from another
// goroutine, typically a signal handler.
func (h *Host) Break() {
	h.interrupt.Store(true)
}

func (h *Host) print(args ...any) {
	fmt.Fprint(h.output, args...)
}

func (h *Host) printf(format string, args ...any) {
	fmt.Fprintf(h.output, format, args...)
	h.flush()
}

func (h *Host) println(args ...any) {
	fmt.Fprintln(h.output, args...)
	h.flush()
}

func (h *Host) flush() {
	h.output.Flush()
}

func (h *Host) getLine() (string, error) {
	if h.input.Scan() {
		return h.input.Text(), nil
	}
	if h.input.Err() != nil {
		return "", h.input.Err()
	}
	return "", io.EOF
}

func (h *Host) prompt() {
	if h.interactive {
		h.printf("* ")
	}
}

func (h *Host) displayIP() {
	if h.interactive {
		if inst, ok := h.prog.At(h.mach.IP()); ok {
			h.printf("%3d: %v\n", h.mach.IP(), inst)
		}
	}
}

// step executes one instruction. It reports false when a run loop
// should stop: the machine halted, wants input, or failed.
func (h *Host) step() bool {
	h.mach.Verbose = h.settings.Verbose

	if inst, ok := h.prog.At(h.mach.IP()); ok {
		if inst.Op == ram.OP_READ && len(h.buf.Pending()) == 0 {
			h.println("Machine wants input. Queue values with 'input <value> ...'.")
			return false
		}
	}

	inst, ok, err := h.mach.Step()
	if err != nil {
		h.printf("line %d: %v\n", inst.LineNo, err)
		return false
	}
	if !ok {
		return false
	}

	if h.settings.Trace {
		h.printf("Executed: %v\n", inst)
	}
	return true
}

func (h *Host) cmdHelp(c cmd.Selection) error {
	switch {
	case len(c.Args) == 0:
		h.displayCommands(cmds)
	default:
		s, err := cmds.Lookup(strings.Join(c.Args, " "))
		if err != nil {
			h.printf("%v\n", err)
		} else {
			switch {
			case s.Command == nil:
				h.println("Command not found.")
			case s.Command.Subcommands != nil:
				h.displayCommands(s.Command.Subcommands)
			default:
				if s.Command.HelpText != "" {
					h.printf("Syntax: %s\n", s.Command.HelpText)
				}
				if s.Command.Description != "" {
					h.printf("%s\n", s.Command.Description)
				}
			}
		}
	}
	return nil
}

func (h *Host) cmdAssemble(c cmd.Selection) error {
	if len(c.Args) < 1 {
		h.displayHelpText(c.Command)
		return nil
	}

	filename := c.Args[0]
	file, err := os.Open(filename)
	if err != nil {
		h.printf("%v\n", err)
		return nil
	}
	defer file.Close()

	asm := &ram.Assembler{Verbose: h.settings.Verbose}
	for name, value := range h.predefines {
		asm.Predefine(name, value)
	}
	prog, err := asm.Parse(file)
	if err != nil {
		h.printf("%v\n", err)
		return nil
	}

	h.prog = prog
	h.buf = ramio.Buffer{}
	clear(h.breakpoints)
	h.reset()

	h.printf("Assembled %d instructions from %s.\n", len(prog.Instructions), filename)
	return nil
}

func (h *Host) cmdBreakpointList(c cmd.Selection) error {
	h.println("Breakpoints:")
	for _, addr := range slices.Sorted(maps.Keys(h.breakpoints)) {
		if inst, ok := h.prog.At(addr); ok {
			h.printf("    %3d: %v\n", addr, inst)
		} else {
			h.printf("    %3d\n", addr)
		}
	}
	return nil
}

func (h *Host) cmdBreakpointAdd(c cmd.Selection) error {
	if len(c.Args) < 1 {
		h.displayHelpText(c.Command)
		return nil
	}

	addr, err := h.resolveAddress(c.Args[0])
	if err != nil {
		h.printf("%v\n", err)
		return nil
	}

	h.breakpoints[addr] = true
	h.printf("Breakpoint added at %d.\n", addr)
	return nil
}

func (h *Host) cmdBreakpointRemove(c cmd.Selection) error {
	if len(c.Args) < 1 {
		h.displayHelpText(c.Command)
		return nil
	}

	addr, err := h.resolveAddress(c.Args[0])
	if err != nil {
		h.printf("%v\n", err)
		return nil
	}

	if !h.breakpoints[addr] {
		h.printf("No breakpoint at %d.\n", addr)
		return nil
	}

	delete(h.breakpoints, addr)
	h.printf("Breakpoint removed from %d.\n", addr)
	return nil
}

// resolveAddress parses a breakpoint argument as a label or an
// instruction address.
func (h *Host) resolveAddress(arg string) (addr int, err error) {
	if ip, ok := h.prog.Labels[arg]; ok {
		return ip, nil
	}

	addr, aerr := strconv.Atoi(arg)
	if aerr != nil || addr < 0 || addr > len(h.prog.Instructions) {
		err = fmt.Errorf("no label or address '%s'", arg)
	}
	return
}

func (h *Host) cmdInput(c cmd.Selection) error {
	if len(c.Args) == 0 {
		h.printf("Input queue: %v\n", h.buf.Pending())
		return nil
	}

	for _, arg := range c.Args {
		value, err := strconv.ParseInt(arg, 10, 32)
		if err != nil {
			h.printf("Invalid value '%s'.\n", arg)
			return nil
		}
		h.buf.Feed(int32(value))
	}

	h.printf("Queued %d values.\n", len(c.Args))
	return nil
}

func (h *Host) cmdList(c cmd.Selection) error {
	if len(h.prog.Instructions) == 0 {
		h.println("No program assembled.")
		return nil
	}

	h.print(h.prog.Listing(h.mach.IP()))
	h.flush()
	return nil
}

func (h *Host) cmdOutput(c cmd.Selection) error {
	for _, value := range h.buf.Out {
		h.printf("%d\n", value)
	}
	return nil
}

func (h *Host) cmdQuit(c cmd.Selection) error {
	return errors.New("Exiting program")
}

func (h *Host) cmdRegisters(c cmd.Selection) error {
	h.print(h.mach.String())
	h.flush()
	h.displayIP()
	return nil
}

func (h *Host) cmdReset(c cmd.Selection) error {
	h.reset()
	h.println("Machine reset.")
	return nil
}

func (h *Host) cmdRun(c cmd.Selection) error {
	if len(h.prog.Instructions) == 0 {
		h.println("No program assembled.")
		return nil
	}
	if h.mach.Halted() {
		h.println("Machine is halted. 'reset' to run again.")
		return nil
	}

	h.interrupt.Store(false)
	for steps := 0; !h.mach.Halted(); steps += 1 {
		if steps >= h.settings.MaxSteps {
			h.printf("Paused after %d steps. 'run' continues.\n", steps)
			return nil
		}
		if h.interrupt.Load() {
			h.println("Interrupted.")
			h.displayIP()
			return nil
		}
		if !h.step() {
			if !h.mach.Halted() {
				return nil
			}
			break
		}
		if !h.mach.Halted() && h.breakpoints[h.mach.IP()] {
			h.printf("Breakpoint at %d.\n", h.mach.IP())
			h.displayIP()
			return nil
		}
	}

	h.printf("Halted after %d steps.\n", h.mach.Steps())
	return nil
}

func (h *Host) cmdSet(c cmd.Selection) error {
	switch len(c.Args) {
	case 0:
		h.println("Variables:")
		h.settings.Display(h.output)
		h.flush()

	case 1:
		h.displayHelpText(c.Command)

	default:
		key, value := strings.ToLower(c.Args[0]), c.Args[1]

		var err error
		switch h.settings.Kind(key) {
		case reflect.Invalid:
			err = fmt.Errorf("setting '%s' not found", key)
		case reflect.Bool:
			var v bool
			v, err = strconv.ParseBool(value)
			if err == nil {
				err = h.settings.Set(key, v)
			}
		case reflect.Int:
			var v int
			v, err = strconv.Atoi(value)
			if err == nil {
				err = h.settings.Set(key, v)
			}
		default:
			err = h.settings.Set(key, value)
		}

		if err == nil {
			h.println("Setting updated.")
		} else {
			h.printf("%v\n", err)
		}
	}

	return nil
}

func (h *Host) cmdStep(c cmd.Selection) error {
	count := 1
	if len(c.Args) > 0 {
		n, err := strconv.Atoi(c.Args[0])
		if err != nil || n < 1 {
			h.printf("Invalid step count '%s'.\n", c.Args[0])
			return nil
		}
		count = n
	}

	h.interrupt.Store(false)
	for n := 0; n < count && !h.mach.Halted(); n += 1 {
		if h.interrupt.Load() {
			break
		}
		if !h.step() {
			break
		}
	}

	h.displayIP()
	return nil
}

func (h *Host) displayHelpText(c *cmd.Command) {
	if c.HelpText != "" {
		h.printf("Syntax: %s\n", c.HelpText)
	} else {
		h.println("<no help text>")
	}
}

func (h *Host) displayCommands(commands *cmd.Tree) {
	h.printf("%s commands:\n", commands.Title)
	for _, c := range commands.Commands {
		if c.Brief != "" {
			h.printf("    %-15s  %s\n", c.Name, c.Brief)
		}
	}
	h.flush()
}
