// A program to run mJAM object files.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/xiaobogaga/minijava/mjam"
)

var trace bool

var rootCmd = &cobra.Command{
	Use:           "mjam-run <file.mJAM>",
	Short:         "Execute an mJAM object file",
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		code, err := mjam.LoadObjectFile(args[0])
		if err != nil {
			return err
		}
		it := mjam.NewInterpreter(code, cmd.InOrStdin(), cmd.OutOrStdout())
		err = it.Run()
		if trace {
			fmt.Fprintf(cmd.ErrOrStderr(), "[Interpreter]: executed %d instructions\n", it.Steps)
		}
		return err
	},
}

func init() {
	rootCmd.Flags().BoolVarP(&trace, "verbose", "v", false, "print the number of executed instructions")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "[Interpreter]: %v\n", err)
		os.Exit(1)
	}
}
