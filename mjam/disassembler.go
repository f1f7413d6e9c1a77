package mjam

import (
	"bufio"
	"fmt"
	"io"
)

// Disassemble writes one line per instruction: the code address followed by the
// instruction in assembler form.
func Disassemble(w io.Writer, code []Instruction) error {
	bw := bufio.NewWriter(w)
	for addr, instr := range code {
		if _, err := fmt.Fprintf(bw, "%4d  %s\n", addr, instr); err != nil {
			return err
		}
	}
	return bw.Flush()
}
