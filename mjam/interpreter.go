package mjam

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
)

const defaultMemorySize = 1 << 16

// arrayClassObject marks the class header word of an array.
const arrayClassObject = -2

type RuntimeError struct {
	Addr int
	Msg  string
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("mjam: runtime error at code address %d: %s", e.Addr, e.Msg)
}

// Interpreter executes a code store. The stack grows up from SB = 0, the heap grows
// down from the top of data memory. Every heap block carries two header words in
// front of its address: the class object (or -2 for arrays) and the size.
type Interpreter struct {
	code []Instruction
	data []int
	in   *bufio.Reader
	out  io.Writer

	st, lb, ob, ht, cp int
	// Steps counts executed instructions.
	Steps int
}

func NewInterpreter(code []Instruction, in io.Reader, out io.Writer) *Interpreter {
	it := &Interpreter{
		code: code,
		data: make([]int, defaultMemorySize),
		out:  out,
	}
	if in != nil {
		it.in = bufio.NewReader(in)
	}
	it.ht = len(it.data)
	return it
}

func (it *Interpreter) fail(format string, args ...interface{}) error {
	return &RuntimeError{Addr: it.cp, Msg: fmt.Sprintf(format, args...)}
}

func (it *Interpreter) regValue(r Reg) int {
	switch r {
	case CT:
		return len(it.code)
	case PT:
		return int(primCount)
	case ST:
		return it.st
	case LB:
		return it.lb
	case HB:
		return len(it.data)
	case HT:
		return it.ht
	case OB:
		return it.ob
	case CP:
		return it.cp
	}
	// CB, PB, SB and ZR are all based at zero.
	return 0
}

func (it *Interpreter) push(v int) error {
	if it.st >= it.ht {
		return it.fail("stack overflow")
	}
	it.data[it.st] = v
	it.st++
	return nil
}

func (it *Interpreter) pop() (int, error) {
	if it.st <= 0 {
		return 0, it.fail("stack underflow")
	}
	it.st--
	return it.data[it.st], nil
}

func (it *Interpreter) popN(n int) ([]int, error) {
	values := make([]int, n)
	for i := n - 1; i >= 0; i-- {
		v, err := it.pop()
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return values, nil
}

func (it *Interpreter) checkAddr(addr int) error {
	if addr < 0 || addr >= len(it.data) {
		return it.fail("data address %d out of range", addr)
	}
	if addr >= it.st && addr < it.ht {
		return it.fail("data address %d between stack top and heap top", addr)
	}
	return nil
}

func (it *Interpreter) load(addr int) (int, error) {
	if err := it.checkAddr(addr); err != nil {
		return 0, err
	}
	return it.data[addr], nil
}

func (it *Interpreter) store(addr int, v int) error {
	if err := it.checkAddr(addr); err != nil {
		return err
	}
	it.data[addr] = v
	return nil
}

// Run executes from code address 0 until HALT or a runtime error.
func (it *Interpreter) Run() error {
	for {
		if it.cp < 0 || it.cp >= len(it.code) {
			return it.fail("code address out of range")
		}
		instr := it.code[it.cp]
		it.Steps++
		if instr.Op == HALT {
			return nil
		}
		if err := it.execute(instr); err != nil {
			return err
		}
	}
}

func (it *Interpreter) execute(instr Instruction) error {
	next := it.cp + 1
	var err error
	switch instr.Op {
	case LOAD:
		var v int
		if v, err = it.load(it.regValue(instr.R) + instr.D); err == nil {
			err = it.push(v)
		}
	case LOADA:
		err = it.push(it.regValue(instr.R) + instr.D)
	case LOADI:
		var addr, v int
		if addr, err = it.pop(); err == nil {
			if v, err = it.load(addr); err == nil {
				err = it.push(v)
			}
		}
	case LOADL:
		err = it.push(instr.D)
	case STORE:
		var v int
		if v, err = it.pop(); err == nil {
			err = it.store(it.regValue(instr.R)+instr.D, v)
		}
	case STOREI:
		var values []int
		if values, err = it.popN(2); err == nil {
			err = it.store(values[1], values[0])
		}
	case CALL:
		if instr.R == PB {
			err = it.callPrimitive(Prim(instr.D))
			break
		}
		err = it.call(it.regValue(instr.R)+instr.D, it.ob)
		next = it.cp
	case CALLI:
		var instance int
		if instance, err = it.pop(); err == nil {
			err = it.call(it.regValue(instr.R)+instr.D, instance)
			next = it.cp
		}
	case RETURN:
		err = it.ret(instr.N, instr.D)
		next = it.cp
	case PUSH:
		for i := 0; i < instr.D && err == nil; i++ {
			err = it.push(0)
		}
	case POP:
		if instr.D > it.st {
			err = it.fail("pop of %d words below stack base", instr.D)
			break
		}
		it.st -= instr.D
	case JUMP:
		next = it.regValue(instr.R) + instr.D
	case JUMPI:
		next, err = it.pop()
	case JUMPIF:
		var v int
		if v, err = it.pop(); err == nil && v == instr.N {
			next = it.regValue(instr.R) + instr.D
		}
	default:
		err = it.fail("unknown op %s", instr.Op)
	}
	if err != nil {
		return err
	}
	it.cp = next
	return nil
}

func (it *Interpreter) call(addr int, instance int) error {
	frame := it.st
	for _, v := range []int{it.ob, it.lb, it.cp + 1} {
		if err := it.push(v); err != nil {
			return err
		}
	}
	it.lb, it.ob, it.cp = frame, instance, addr
	return nil
}

func (it *Interpreter) ret(n int, argSize int) error {
	results, err := it.popN(n)
	if err != nil {
		return err
	}
	frame := it.lb
	savedOB, savedLB, retAddr := it.data[frame], it.data[frame+1], it.data[frame+2]
	it.st = frame - argSize
	if it.st < 0 {
		return it.fail("return discards %d arguments below stack base", argSize)
	}
	for _, v := range results {
		if err := it.push(v); err != nil {
			return err
		}
	}
	it.lb, it.ob, it.cp = savedLB, savedOB, retAddr
	return nil
}

func toRep(b bool) int {
	if b {
		return TrueRep
	}
	return FalseRep
}

func (it *Interpreter) allocate(class int, size int) (int, error) {
	if size < 0 {
		return 0, it.fail("negative allocation size %d", size)
	}
	if it.ht-size-2 <= it.st {
		return 0, it.fail("heap exhausted")
	}
	it.ht -= size + 2
	it.data[it.ht] = class
	it.data[it.ht+1] = size
	addr := it.ht + 2
	for i := 0; i < size; i++ {
		it.data[addr+i] = 0
	}
	return addr, nil
}

// element checks that index selects a word of the heap block at addr.
func (it *Interpreter) element(addr int, index int, array bool) (int, error) {
	if addr == NullRep {
		return 0, it.fail("null pointer dereference")
	}
	if addr-2 < it.ht || addr > len(it.data) {
		return 0, it.fail("address %d is not a heap block", addr)
	}
	if array && it.data[addr-2] != arrayClassObject {
		return 0, it.fail("address %d is not an array", addr)
	}
	if index < 0 || index >= it.data[addr-1] {
		return 0, it.fail("index %d out of range [0, %d)", index, it.data[addr-1])
	}
	return addr + index, nil
}

func (it *Interpreter) callPrimitive(p Prim) error {
	switch p {
	case PrimID:
		return nil
	case PrimNot, PrimNeg, PrimSucc, PrimPred:
		v, err := it.pop()
		if err != nil {
			return err
		}
		switch p {
		case PrimNot:
			v = toRep(v == FalseRep)
		case PrimNeg:
			v = -v
		case PrimSucc:
			v++
		default:
			v--
		}
		return it.push(v)
	case PrimAnd, PrimOr, PrimAdd, PrimSub, PrimMult, PrimDiv, PrimMod,
		PrimLt, PrimLe, PrimGe, PrimGt, PrimEq, PrimNe:
		operands, err := it.popN(2)
		if err != nil {
			return err
		}
		v, err := it.binary(p, operands[0], operands[1])
		if err != nil {
			return err
		}
		return it.push(v)
	case PrimEol, PrimEof:
		return it.push(toRep(it.peekInput(p == PrimEol)))
	case PrimGet:
		c, err := it.readByte()
		if err != nil {
			return err
		}
		return it.push(c)
	case PrimGeteol:
		for {
			c, err := it.readByte()
			if err != nil || c == '\n' || c == -1 {
				return err
			}
		}
	case PrimGetint:
		v, err := it.readInt()
		if err != nil {
			return err
		}
		return it.push(v)
	case PrimPut:
		v, err := it.pop()
		if err != nil {
			return err
		}
		return it.write(string(rune(v)))
	case PrimPuteol:
		return it.write("\n")
	case PrimPutint, PrimPutintnl:
		v, err := it.pop()
		if err != nil {
			return err
		}
		s := strconv.Itoa(v)
		if p == PrimPutintnl {
			s += "\n"
		}
		return it.write(s)
	case PrimAlloc:
		size, err := it.pop()
		if err != nil {
			return err
		}
		addr, err := it.allocate(0, size)
		if err != nil {
			return err
		}
		return it.push(addr)
	case PrimDispose:
		_, err := it.popN(2)
		return err
	case PrimNewobj:
		operands, err := it.popN(2)
		if err != nil {
			return err
		}
		addr, err := it.allocate(operands[0], operands[1])
		if err != nil {
			return err
		}
		return it.push(addr)
	case PrimNewarr:
		size, err := it.pop()
		if err != nil {
			return err
		}
		addr, err := it.allocate(arrayClassObject, size)
		if err != nil {
			return err
		}
		return it.push(addr)
	case PrimArraylen:
		addr, err := it.pop()
		if err != nil {
			return err
		}
		if addr == NullRep {
			return it.fail("null pointer dereference")
		}
		if addr-2 < it.ht || addr > len(it.data) || it.data[addr-2] != arrayClassObject {
			return it.fail("address %d is not an array", addr)
		}
		return it.push(it.data[addr-1])
	case PrimArrayref, PrimFieldref:
		operands, err := it.popN(2)
		if err != nil {
			return err
		}
		at, err := it.element(operands[0], operands[1], p == PrimArrayref)
		if err != nil {
			return err
		}
		return it.push(it.data[at])
	case PrimArrayupd, PrimFieldupd:
		operands, err := it.popN(3)
		if err != nil {
			return err
		}
		at, err := it.element(operands[0], operands[1], p == PrimArrayupd)
		if err != nil {
			return err
		}
		it.data[at] = operands[2]
		return nil
	}
	return it.fail("unknown primitive %d", int(p))
}

func (it *Interpreter) binary(p Prim, a int, b int) (int, error) {
	switch p {
	case PrimAnd:
		return toRep(a != FalseRep && b != FalseRep), nil
	case PrimOr:
		return toRep(a != FalseRep || b != FalseRep), nil
	case PrimAdd:
		return int(int32(a + b)), nil
	case PrimSub:
		return int(int32(a - b)), nil
	case PrimMult:
		return int(int32(a * b)), nil
	case PrimDiv, PrimMod:
		if b == 0 {
			return 0, it.fail("division by zero")
		}
		if p == PrimDiv {
			return int(int32(a / b)), nil
		}
		return a % b, nil
	case PrimLt:
		return toRep(a < b), nil
	case PrimLe:
		return toRep(a <= b), nil
	case PrimGe:
		return toRep(a >= b), nil
	case PrimGt:
		return toRep(a > b), nil
	case PrimEq:
		return toRep(a == b), nil
	}
	return toRep(a != b), nil
}

func (it *Interpreter) write(s string) error {
	if it.out == nil {
		return nil
	}
	_, err := io.WriteString(it.out, s)
	return err
}

// readByte returns -1 at end of input.
func (it *Interpreter) readByte() (int, error) {
	if it.in == nil {
		return -1, nil
	}
	c, err := it.in.ReadByte()
	if err == io.EOF {
		return -1, nil
	}
	if err != nil {
		return 0, err
	}
	return int(c), nil
}

func (it *Interpreter) peekInput(eol bool) bool {
	if it.in == nil {
		return true
	}
	b, err := it.in.Peek(1)
	if err != nil {
		return true
	}
	return eol && b[0] == '\n'
}

func (it *Interpreter) readInt() (int, error) {
	if it.in == nil {
		return 0, it.fail("no input")
	}
	var v int
	if _, err := fmt.Fscan(it.in, &v); err != nil {
		return 0, it.fail("getint: %v", err)
	}
	return v, nil
}
