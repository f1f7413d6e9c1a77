package mjam

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
)

// An assembler for mJAM text, the form Disassemble writes. Every non empty line is
// one of:
// * an instruction, optionally preceded by its code address: `12  LOAD   -2[LB]`.
// * a label declaration `(loop)`, naming the address of the next instruction.
// Jump and call targets may be written as a label, `JUMP loop[CB]`, and labels may be
// used before they are declared. `//` starts a comment.

var (
	opByName   = map[string]Op{}
	regByName  = map[string]Reg{}
	primByName = map[string]Prim{}
)

func init() {
	for op, name := range opNames {
		opByName[name] = op
	}
	for i, name := range regNames {
		regByName[name] = Reg(i)
	}
	for i, name := range primNames {
		primByName[name] = Prim(i)
	}
}

var (
	labelFormat   = regexp.MustCompile(`^[A-Za-z_.$:][0-9A-Za-z_.$:]*$`)
	operandFormat = regexp.MustCompile(`^(?:\((-?\d+)\))?\s*([A-Za-z_.$:][0-9A-Za-z_.$:]*|-?\d+)?(?:\[([A-Z]+)\])?$`)
)

type Assembler struct {
	line             int
	code             []Instruction
	labelLocationMap map[string]int
	symbolLocations  []symbolLocation
}

// symbolLocation is an instruction whose displacement is a label.
type symbolLocation struct {
	symbol string
	line   int
	addr   int
}

func NewAssembler() *Assembler {
	return &Assembler{line: 1, labelLocationMap: map[string]int{}}
}

// operand is the parsed text after the op name.
type operand struct {
	n, d        int
	hasN, hasD  bool
	symbol, reg string
}

// Parse reads mJAM text from rd and returns the code it denotes.
func (asm *Assembler) Parse(rd io.Reader) ([]Instruction, error) {
	bfReader := bufio.NewReader(rd)
	for {
		line, err := bfReader.ReadBytes('\n')
		if err != nil && err != io.EOF {
			return nil, err
		}
		if trimmed, ok := asm.trimLine(line); ok {
			if transformErr := asm.transformLine(trimmed); transformErr != nil {
				return nil, transformErr
			}
		}
		if err == io.EOF {
			break
		}
		asm.line++
	}
	if err := asm.resolveSymbols(); err != nil {
		return nil, err
	}
	return asm.code, nil
}

// resolveSymbols patches every instruction that names a label, once all labels are
// declared.
func (asm *Assembler) resolveSymbols() error {
	for _, location := range asm.symbolLocations {
		addr, exist := asm.labelLocationMap[location.symbol]
		if !exist {
			return asm.makeSyntaxErrAtSpecificLine(location.line, fmt.Sprintf("undefined label %s", location.symbol))
		}
		asm.code[location.addr].D = addr
	}
	return nil
}

// trimLine removes spaces and comments and reports whether anything is left.
func (asm *Assembler) trimLine(line []byte) ([]byte, bool) {
	if index := bytes.Index(line, []byte("//")); index != -1 {
		line = line[:index]
	}
	line = bytes.TrimSpace(line)
	return line, len(line) > 0
}

func (asm *Assembler) transformLine(line []byte) error {
	if line[0] == '(' {
		return asm.transformLabel(line)
	}
	return asm.transformInstruction(string(line))
}

func (asm *Assembler) transformLabel(line []byte) error {
	if line[len(line)-1] != ')' {
		return asm.makeSyntaxErr("wrong label format")
	}
	label := string(line[1 : len(line)-1])
	if !labelFormat.MatchString(label) {
		return asm.makeSyntaxErr("wrong label format")
	}
	if _, exist := asm.labelLocationMap[label]; exist {
		return asm.makeSyntaxErr("found duplicate label")
	}
	asm.labelLocationMap[label] = len(asm.code)
	return nil
}

func (asm *Assembler) transformInstruction(line string) error {
	fields := strings.Fields(line)
	if addr, err := strconv.Atoi(fields[0]); err == nil {
		if addr != len(asm.code) {
			return asm.makeSyntaxErr(fmt.Sprintf("address %d given to instruction %d", addr, len(asm.code)))
		}
		fields = fields[1:]
		if len(fields) == 0 {
			return asm.makeSyntaxErr("missing instruction")
		}
	}
	op, exist := opByName[fields[0]]
	if !exist {
		return asm.makeSyntaxErr(fmt.Sprintf("unknown op %s", fields[0]))
	}
	opd, err := asm.parseOperand(strings.Join(fields[1:], " "))
	if err != nil {
		return err
	}
	instr, err := asm.buildInstruction(op, opd)
	if err != nil {
		return err
	}
	// A primitive name is not a label.
	if opd.symbol != "" && instr.R != PB {
		asm.symbolLocations = append(asm.symbolLocations, symbolLocation{
			symbol: opd.symbol,
			line:   asm.line,
			addr:   len(asm.code),
		})
	}
	asm.code = append(asm.code, instr)
	return nil
}

func (asm *Assembler) parseOperand(text string) (operand, error) {
	var opd operand
	match := operandFormat.FindStringSubmatch(text)
	if match == nil {
		return opd, asm.makeSyntaxErr(fmt.Sprintf("wrong operand format near %s", text))
	}
	if match[1] != "" {
		opd.n, _ = strconv.Atoi(match[1])
		opd.hasN = true
	}
	if match[2] != "" {
		if d, err := strconv.Atoi(match[2]); err == nil {
			opd.d, opd.hasD = d, true
		} else {
			opd.symbol = match[2]
		}
	}
	opd.reg = match[3]
	return opd, nil
}

// buildInstruction checks that op has the operands its form requires.
func (asm *Assembler) buildInstruction(op Op, opd operand) (Instruction, error) {
	instr := Instruction{Op: op, R: ZR}
	hasValue := opd.hasD || opd.symbol != ""
	switch op {
	case LOADI, STOREI, JUMPI, HALT:
		if opd.hasN || hasValue || opd.reg != "" {
			return instr, asm.makeSyntaxErr(fmt.Sprintf("%s takes no operand", op))
		}
		return instr, nil
	case LOADL, PUSH, POP:
		if opd.hasN || !opd.hasD || opd.reg != "" {
			return instr, asm.makeSyntaxErr(fmt.Sprintf("%s takes a number", op))
		}
		instr.D = opd.d
		return instr, nil
	case RETURN:
		if !opd.hasN || !opd.hasD || opd.reg != "" {
			return instr, asm.makeSyntaxErr("RETURN takes (n) d")
		}
		instr.N, instr.D = opd.n, opd.d
		return instr, nil
	case CALL:
		if prim, exist := primByName[opd.symbol]; exist && opd.reg == "" && !opd.hasN {
			instr.R, instr.D = PB, int(prim)
			return instr, nil
		}
	case JUMPIF:
		if !opd.hasN {
			return instr, asm.makeSyntaxErr("JUMPIF takes (n) d[r]")
		}
		instr.N = opd.n
	case LOAD, LOADA, STORE:
		if opd.hasN || !opd.hasD || opd.reg == "" {
			return instr, asm.makeSyntaxErr(fmt.Sprintf("%s takes d[r]", op))
		}
	}
	if op != JUMPIF && opd.hasN {
		return instr, asm.makeSyntaxErr(fmt.Sprintf("%s takes no (n)", op))
	}
	if !hasValue {
		return instr, asm.makeSyntaxErr(fmt.Sprintf("%s needs a displacement", op))
	}
	// Code addresses are relative to CB unless a register is given.
	instr.R = CB
	if opd.reg != "" {
		reg, exist := regByName[opd.reg]
		if !exist {
			return instr, asm.makeSyntaxErr(fmt.Sprintf("unknown register %s", opd.reg))
		}
		instr.R = reg
	}
	instr.D = opd.d
	return instr, nil
}

func (asm *Assembler) makeSyntaxErr(msg string) error {
	return asm.makeSyntaxErrAtSpecificLine(asm.line, msg)
}

func (asm *Assembler) makeSyntaxErrAtSpecificLine(line int, msg string) error {
	return errors.New(fmt.Sprintf("syntax err at line %d: %s", line, msg))
}
