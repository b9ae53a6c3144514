// cmd/ascension/main.go
package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	"ascension/internal/compiler"
	aerr "ascension/internal/errors"
	"ascension/internal/host"
	"ascension/internal/source"
	"ascension/internal/vm"
)

const VERSION = "1.0.0"

func main() {
	args := os.Args[1:]
	if len(args) == 0 {
		showUsage()
		os.Exit(1)
	}

	switch args[0] {
	case "--help", "-h", "help":
		showUsage()
		return
	case "--version", "-v", "version":
		fmt.Printf("ascension %s\n", VERSION)
		return
	}

	debug := false
	var filename string
	for _, arg := range args {
		if arg == "--debug" || arg == "-debug" || arg == "-d" {
			debug = true
			continue
		}
		if filename == "" && !strings.HasPrefix(arg, "-") {
			filename = arg
		}
	}
	if filename == "" {
		log.Fatal("no script file provided")
	}

	if err := run(filename, debug); err != nil {
		if ae, ok := err.(*aerr.AscensionError); ok {
			fmt.Fprintf(os.Stderr, "Uncaught @ IP %d: %s\n", ae.IP, ae.Error())
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func run(filename string, debug bool) error {
	src, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("could not read file: %w", err)
	}

	baseDir := "."
	if idx := strings.LastIndexByte(filename, '/'); idx >= 0 {
		baseDir = filename[:idx]
	}

	cleaned := source.Clean(string(src))
	stmts := source.SplitStatements(cleaned)

	prog, structs, err := compiler.Compile(stmts, baseDir)
	if err != nil {
		return err
	}

	if debug {
		for _, line := range prog.Disassemble() {
			fmt.Println(line)
		}
	}

	printer := vm.NewStdoutPrinter(os.Stdout)
	machine := vm.New(prog, structs, host.NewDefault(), printer)
	runErr := machine.Run()
	printer.Flush()
	return runErr
}

func showUsage() {
	fmt.Println(`ascension - run Ascension scripts

Usage:
  ascension <file.asc> [-debug]

Flags:
  -debug, --debug   print the disassembled bytecode before running
  -h, --help        show this message
  -v, --version     show the version`)
}
