// A miniJava compiler producing mJAM object files.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/xiaobogaga/minijava/compiler/internal"
	"github.com/xiaobogaga/minijava/mjam"
)

// exitInvalidProgram is the exit status for a program that fails to compile.
const exitInvalidProgram = 4

var (
	output  string
	asm     bool
	run     bool
	dumpAST bool
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:           "minijava <file.java>",
	Short:         "Compile a miniJava program to mJAM object code",
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return compile(cmd, args[0])
	},
}

func init() {
	rootCmd.Flags().StringVarP(&output, "output", "o", "", "object file path (default: source path with .mJAM extension)")
	rootCmd.Flags().BoolVar(&asm, "asm", false, "also write a disassembly next to the object file")
	rootCmd.Flags().BoolVar(&run, "run", false, "run the program after compiling it")
	rootCmd.Flags().BoolVar(&dumpAST, "dump-ast", false, "print the parsed tree")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "print compiler progress")
}

func compile(cmd *cobra.Command, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	options := internal.Options{}
	if verbose {
		options.Trace = cmd.ErrOrStderr()
	}
	if dumpAST {
		options.DumpAST = cmd.OutOrStdout()
	}
	reporter := internal.NewErrorReporter(cmd.ErrOrStderr())
	result, err := internal.Compile(f, reporter, options)
	if err != nil {
		return err
	}
	objectPath := output
	if objectPath == "" {
		objectPath = strings.TrimSuffix(path, filepath.Ext(path)) + ".mJAM"
	}
	code := result.Code.Code
	if err = mjam.SaveObjectFile(objectPath, code); err != nil {
		return err
	}
	if verbose {
		fmt.Fprintf(cmd.ErrOrStderr(), "compiler: saved object file %s\n", objectPath)
	}
	if asm {
		if err = saveDisassembly(strings.TrimSuffix(objectPath, filepath.Ext(objectPath))+".asm", code); err != nil {
			return err
		}
	}
	if run {
		return mjam.NewInterpreter(code, cmd.InOrStdin(), cmd.OutOrStdout()).Run()
	}
	return nil
}

func saveDisassembly(path string, code []mjam.Instruction) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err = mjam.Disassemble(f, code); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func main() {
	err := rootCmd.Execute()
	if err == nil {
		return
	}
	if errors.Is(err, internal.ErrInvalidProgram) {
		fmt.Fprintln(os.Stderr, "[Compiler]: compilation failed")
		os.Exit(exitInvalidProgram)
	}
	fmt.Fprintf(os.Stderr, "[Compiler]: %v\n", err)
	os.Exit(1)
}
