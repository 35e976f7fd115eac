package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// command is the compiler's entire CLI surface: one positional argument,
// no flags.
var command = &cobra.Command{
	Use:   "compiler <input-file>",
	Short: "Compile a preprocessed C translation unit to x86-64 assembly",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(args[0])
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func run(path string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	toks, err := Tokenize(path, src)
	if err != nil {
		return prefixed(path, err)
	}
	prog, err := Parse(toks)
	if err != nil {
		return prefixed(path, err)
	}
	asm, err := Generate(prog)
	if err != nil {
		return prefixed(path, err)
	}
	_, err = os.Stdout.WriteString(asm)
	return err
}

// prefixed turns a CompileError's "row:col: message" into the external
// interface's "<file>:row:col: message" form; any other error (I/O failure)
// passes through unchanged.
func prefixed(path string, err error) error {
	if ce, ok := err.(*CompileError); ok {
		return fmt.Errorf("%s:%s", path, ce.Error())
	}
	return err
}

func main() {
	if err := command.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
