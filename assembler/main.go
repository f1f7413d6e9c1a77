// A program accepts an mJAM assembler file, as written by mjam-dis or minijava --asm,
// and saves the corresponding mJAM object file.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/xiaobogaga/minijava/mjam"
)

var (
	output  string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:           "mjam-asm <file.asm>",
	Short:         "Assemble mJAM assembler text into an object file",
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to open file: %s, err: %w", args[0], err)
		}
		defer f.Close()
		code, err := mjam.NewAssembler().Parse(f)
		if err != nil {
			return fmt.Errorf("failed to parse file, err: %w", err)
		}
		if verbose {
			if err = mjam.Disassemble(cmd.OutOrStdout(), code); err != nil {
				return err
			}
		}
		if err = mjam.SaveObjectFile(output, code); err != nil {
			return fmt.Errorf("failed to save to path: %s, err: %w", output, err)
		}
		return nil
	},
}

func init() {
	rootCmd.Flags().StringVarP(&output, "output", "o", "./output.mJAM", "the output mJAM object file path")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "whether print all assembled instructions")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "[Assembler]: %v\n", err)
		os.Exit(1)
	}
}
