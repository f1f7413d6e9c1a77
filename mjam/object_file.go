package mjam

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
)

// An object file is the code store as big endian int32 words, four per instruction:
// op, n, r, d.

func WriteObjectFile(w io.Writer, code []Instruction) error {
	bw := bufio.NewWriter(w)
	for _, instr := range code {
		words := [4]int32{int32(instr.Op), int32(instr.N), int32(instr.R), int32(instr.D)}
		if err := binary.Write(bw, binary.BigEndian, words); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func ReadObjectFile(r io.Reader) ([]Instruction, error) {
	br := bufio.NewReader(r)
	var code []Instruction
	for {
		var words [4]int32
		err := binary.Read(br, binary.BigEndian, &words)
		if err == io.EOF {
			return code, nil
		}
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("mjam: truncated object file after %d instructions", len(code))
		}
		if err != nil {
			return nil, err
		}
		code = append(code, Instruction{Op: Op(words[0]), N: int(words[1]), R: Reg(words[2]), D: int(words[3])})
	}
}

func SaveObjectFile(path string, code []Instruction) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err = WriteObjectFile(f, code); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func LoadObjectFile(path string) ([]Instruction, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadObjectFile(f)
}
