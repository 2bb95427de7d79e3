// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"

	"github.com/tebeka/atexit"

	"github.com/ramlab/ramsim/emulator"
	"github.com/ramlab/ramsim/host"
	"github.com/ramlab/ramsim/ram"
)

func main() {
	var input string
	var output string
	var trace bool
	var verbose bool
	var monitor bool

	defines := map[string]string{}

	flag.StringVar(&input, "i", "-", "Tape input")
	flag.StringVar(&output, "o", "-", "Tape output")
	flag.BoolVar(&trace, "t", false, "Trace executed instructions")
	flag.BoolVar(&verbose, "v", false, "Verbose mode")
	flag.BoolVar(&monitor, "m", false, "Interactive monitor")
	flag.Func("D", "Predefine NAME=VALUE as an equate", func(arg string) error {
		name, value, ok := strings.Cut(arg, "=")
		if !ok {
			return fmt.Errorf("expected NAME=VALUE, got '%v'", arg)
		}
		defines[name] = value
		return nil
	})

	flag.Parse()

	if flag.NArg() > 1 {
		log.Fatalf("%v: Unknown arguments: %v", os.Args[0], flag.Args()[1:])
	}

	if monitor {
		runMonitor(flag.Arg(0), trace, verbose, defines)
		atexit.Exit(0)
	}

	if flag.NArg() != 1 {
		log.Fatalf("%v: A program file is required", os.Args[0])
	}

	program := flag.Arg(0)
	inf, err := os.Open(program)
	if err != nil {
		log.Fatalf("%v: %v", program, err)
	}
	defer inf.Close()

	asm := &ram.Assembler{Verbose: verbose}
	for key, value := range defines {
		asm.Predefine(key, value)
	}
	prog, err := asm.Parse(inf)
	if err != nil {
		log.Fatalf("%v: %v", program, err)
	}

	emu := emulator.NewEmulator()
	emu.Program = prog
	emu.Verbose = verbose

	if input == "-" {
		emu.Tape.Input = os.Stdin
	} else {
		inf, err := os.Open(input)
		if err != nil {
			log.Fatalf("%v: %v", input, err)
		}
		defer inf.Close()
		emu.Tape.Input = inf
	}

	if output == "-" {
		emu.Tape.Output = os.Stdout
	} else {
		ouf, err := os.Create(output)
		if err != nil {
			log.Fatalf("%v: %v", output, err)
		}
		atexit.Register(func() { ouf.Close() })
		emu.Tape.Output = ouf
	}

	if trace {
		fmt.Println("--------")
		fmt.Print(prog.Listing(-1))
		emu.Trace = os.Stdout
	}

	emu.Reset()
	if err = emu.Run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		atexit.Exit(1)
	}

	atexit.Exit(0)
}

// runMonitor starts the interactive monitor, optionally preloading a
// program file.
func runMonitor(program string, trace, verbose bool, defines map[string]string) {
	h := host.New()
	for key, value := range defines {
		h.Predefine(key, value)
	}

	// Break on Ctrl-C.
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt)
	go handleInterrupt(h, c)

	var script strings.Builder
	if trace {
		fmt.Fprintln(&script, "set trace true")
	}
	if verbose {
		fmt.Fprintln(&script, "set verbose true")
	}
	if program != "" {
		fmt.Fprintln(&script, "assemble", program)
	}
	if script.Len() > 0 {
		h.RunCommands(strings.NewReader(script.String()), os.Stdout, false)
	}

	h.RunCommands(os.Stdin, os.Stdout, true)
}

func handleInterrupt(h *host.Host, c chan os.Signal) {
	for {
		<-c
		h.Break()
	}
}
