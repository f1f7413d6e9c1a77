package mjam

import "fmt"

// mJAM is a small stack machine. Code lives in a code store addressed from CB,
// statics are pushed on the stack from SB, and objects and arrays live on a heap
// growing down from HB.

type Op int

const (
	LOAD Op = iota
	LOADA
	LOADI
	LOADL
	STORE
	STOREI
	CALL
	CALLI
	RETURN
	PUSH
	POP
	JUMP
	JUMPI
	JUMPIF
	HALT
)

var opNames = map[Op]string{
	LOAD: "LOAD", LOADA: "LOADA", LOADI: "LOADI", LOADL: "LOADL", STORE: "STORE", STOREI: "STOREI",
	CALL: "CALL", CALLI: "CALLI", RETURN: "RETURN", PUSH: "PUSH", POP: "POP", JUMP: "JUMP",
	JUMPI: "JUMPI", JUMPIF: "JUMPIF", HALT: "HALT",
}

func (op Op) String() string {
	if name, ok := opNames[op]; ok {
		return name
	}
	return fmt.Sprintf("OP(%d)", int(op))
}

type Reg int

const (
	ZR Reg = iota // unused register field
	CB            // code base
	CT            // code top
	PB            // primitives base
	PT            // primitives top
	SB            // stack base
	ST            // stack top
	LB            // local base
	HB            // heap base
	HT            // heap top
	OB            // object base
	CP            // code pointer
)

var regNames = []string{"ZR", "CB", "CT", "PB", "PT", "SB", "ST", "LB", "HB", "HT", "OB", "CP"}

func (r Reg) String() string {
	if r >= 0 && int(r) < len(regNames) {
		return regNames[r]
	}
	return fmt.Sprintf("R(%d)", int(r))
}

// Prim identifies a primitive routine, invoked by CALL PB[prim].
type Prim int

const (
	PrimID Prim = iota
	PrimNot
	PrimAnd
	PrimOr
	PrimSucc
	PrimPred
	PrimNeg
	PrimAdd
	PrimSub
	PrimMult
	PrimDiv
	PrimMod
	PrimLt
	PrimLe
	PrimGe
	PrimGt
	PrimEq
	PrimNe
	PrimEol
	PrimEof
	PrimGet
	PrimPut
	PrimGeteol
	PrimPuteol
	PrimGetint
	PrimPutint
	PrimPutintnl
	PrimAlloc
	PrimDispose
	PrimNewobj
	PrimNewarr
	PrimArrayref
	PrimArraylen
	PrimArrayupd
	PrimFieldref
	PrimFieldupd
	primCount
)

var primNames = []string{
	"id", "not", "and", "or", "succ", "pred", "neg", "add", "sub", "mult", "div", "mod",
	"lt", "le", "ge", "gt", "eq", "ne", "eol", "eof", "get", "put", "geteol", "puteol",
	"getint", "putint", "putintnl", "alloc", "dispose", "newobj", "newarr", "arrayref",
	"arraylen", "arrayupd", "fieldref", "fieldupd",
}

func (p Prim) String() string {
	if p >= 0 && p < primCount {
		return primNames[p]
	}
	return fmt.Sprintf("prim(%d)", int(p))
}

const (
	LinkDataSize = 3
	TrueRep      = 1
	FalseRep     = 0
	NullRep      = 0

	// Unresolved is the displacement of a call whose target address is not known yet.
	Unresolved = -1
)

type Instruction struct {
	Op Op
	N  int
	R  Reg
	D  int
}

func (instr Instruction) String() string {
	switch instr.Op {
	case LOADI, STOREI, JUMPI, HALT:
		return instr.Op.String()
	case LOADL, PUSH, POP:
		return fmt.Sprintf("%-7s%d", instr.Op, instr.D)
	case RETURN:
		return fmt.Sprintf("%-7s(%d) %d", instr.Op, instr.N, instr.D)
	case JUMPIF:
		return fmt.Sprintf("%-7s(%d) %d[%s]", instr.Op, instr.N, instr.D, instr.R)
	case CALL:
		if instr.R == PB {
			return fmt.Sprintf("%-7s%s", instr.Op, Prim(instr.D))
		}
	}
	return fmt.Sprintf("%-7s%d[%s]", instr.Op, instr.D, instr.R)
}

// Machine is the code store the code generator emits into.
type Machine struct {
	Code []Instruction
}

func NewMachine() *Machine {
	return &Machine{}
}

// Emit appends an instruction and returns its code address.
func (m *Machine) Emit(op Op, n int, r Reg, d int) int {
	m.Code = append(m.Code, Instruction{Op: op, N: n, R: r, D: d})
	return len(m.Code) - 1
}

func (m *Machine) EmitPrim(p Prim) int {
	return m.Emit(CALL, 0, PB, int(p))
}

func (m *Machine) NextInstrAddr() int {
	return len(m.Code)
}

// Patch sets the displacement of a previously emitted instruction.
func (m *Machine) Patch(addr int, d int) {
	if addr < 0 || addr >= len(m.Code) {
		panic(fmt.Sprintf("mjam: patch of address %d outside code store of size %d", addr, len(m.Code)))
	}
	m.Code[addr].D = d
}
