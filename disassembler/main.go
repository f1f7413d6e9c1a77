// A program to list mJAM object files in assembler form.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/xiaobogaga/minijava/mjam"
)

var output string

var rootCmd = &cobra.Command{
	Use:           "mjam-dis <file.mJAM>",
	Short:         "Disassemble an mJAM object file",
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		code, err := mjam.LoadObjectFile(args[0])
		if err != nil {
			return err
		}
		if output == "" {
			return mjam.Disassemble(cmd.OutOrStdout(), code)
		}
		f, err := os.Create(output)
		if err != nil {
			return err
		}
		if err = mjam.Disassemble(f, code); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	},
}

func init() {
	rootCmd.Flags().StringVarP(&output, "output", "o", "", "the saved path (default: standard output)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "[Disassembler]: %v\n", err)
		os.Exit(1)
	}
}
