package internal

import (
	"fmt"

	"github.com/xiaobogaga/minijava/mjam"
)

// Runtime entities describe where the code generator placed a declaration.

type RuntimeEntity interface {
	runtimeEntity()
}

// ClassLayout gives the number of instance fields of a class.
type ClassLayout struct {
	Size int
}

// FieldLayout places a static field relative to SB, or an instance field inside its
// object.
type FieldLayout struct {
	Offset int
	Static bool
}

type MethodLayout struct {
	CodeAddr int
	ArgSize  int
	// FrameSize is the number of words above LB in use at the current point of the
	// method body, link data included.
	FrameSize    int
	MaxFrameSize int
}

// VarLayout places a parameter or a local variable relative to LB.
type VarLayout struct {
	Offset int
}

func (*ClassLayout) runtimeEntity()  {}
func (*FieldLayout) runtimeEntity()  {}
func (*MethodLayout) runtimeEntity() {}
func (*VarLayout) runtimeEntity()    {}

type patchEntry struct {
	addr   int
	method *MethodDecl
}

// CodeGenerator lowers a checked program to mJAM code.
type CodeGenerator struct {
	machine    *mjam.Machine
	bindings   Bindings
	layouts    map[Declaration]RuntimeEntity
	classes    map[string]*ClassDecl
	patches    []patchEntry
	staticSize int
	frame      *MethodLayout
}

func NewCodeGenerator(bindings Bindings) *CodeGenerator {
	return &CodeGenerator{
		machine:  mjam.NewMachine(),
		bindings: bindings,
		layouts:  map[Declaration]RuntimeEntity{},
		classes:  map[string]*ClassDecl{},
	}
}

// Layout returns the runtime entity of decl, or nil before decl is laid out.
func (g *CodeGenerator) Layout(decl Declaration) RuntimeEntity {
	return g.layouts[decl]
}

// Generate emits the whole program: static storage, the entry sequence calling main,
// then every method. Call targets are patched once all methods are emitted.
func (g *CodeGenerator) Generate(pkg *Package, main *MethodDecl) (*mjam.Machine, error) {
	if main == nil {
		return nil, fmt.Errorf("code generator: no main method")
	}
	classes := allClasses(pkg)
	for _, classDecl := range classes {
		g.classes[classDecl.Name] = classDecl
		g.layoutClass(classDecl)
	}
	g.emitLiteral(0)
	g.machine.EmitPrim(mjam.PrimNewarr)
	g.emitCall(mjam.CALL, main)
	g.emit(mjam.HALT, 0, mjam.ZR, 0)
	for _, classDecl := range classes {
		if isStandardClass(classDecl) {
			continue
		}
		for _, method := range classDecl.Methods {
			g.generateMethod(method)
		}
	}
	if err := g.patch(); err != nil {
		return nil, err
	}
	return g.machine, nil
}

func (g *CodeGenerator) emit(op mjam.Op, n int, r mjam.Reg, d int) int {
	return g.machine.Emit(op, n, r, d)
}

func (g *CodeGenerator) emitLiteral(v int) {
	g.emit(mjam.LOADL, 0, mjam.ZR, v)
}

// emitCall emits a call to method with an unresolved target and records it for
// patching.
func (g *CodeGenerator) emitCall(op mjam.Op, method *MethodDecl) {
	addr := g.emit(op, 0, mjam.CB, mjam.Unresolved)
	g.patches = append(g.patches, patchEntry{addr: addr, method: method})
}

func (g *CodeGenerator) patch() error {
	for _, entry := range g.patches {
		layout, ok := g.layouts[entry.method].(*MethodLayout)
		if !ok {
			return fmt.Errorf("code generator: no code address for method %s", entry.method.Name)
		}
		g.machine.Patch(entry.addr, layout.CodeAddr)
	}
	g.patches = nil
	return nil
}

// layoutClass reserves one stack word per static field and numbers the instance
// fields.
func (g *CodeGenerator) layoutClass(classDecl *ClassDecl) {
	size := 0
	for _, field := range classDecl.Fields {
		if field.IsStatic {
			g.emit(mjam.PUSH, 0, mjam.ZR, 1)
			g.layouts[field] = &FieldLayout{Offset: g.staticSize, Static: true}
			g.staticSize++
			continue
		}
		g.layouts[field] = &FieldLayout{Offset: size}
		size++
	}
	g.layouts[classDecl] = &ClassLayout{Size: size}
}

func (g *CodeGenerator) generateMethod(method *MethodDecl) {
	g.frame = &MethodLayout{
		CodeAddr:     g.machine.NextInstrAddr(),
		ArgSize:      len(method.Parameters),
		FrameSize:    mjam.LinkDataSize,
		MaxFrameSize: mjam.LinkDataSize,
	}
	g.layouts[method] = g.frame
	// Arguments sit just below the link data, the last one at LB-1.
	for i, param := range method.Parameters {
		g.layouts[param] = &VarLayout{Offset: i - len(method.Parameters)}
	}
	for _, statement := range method.Statements {
		g.generateStatement(statement)
	}
	n := len(method.Statements)
	if n == 0 {
		g.generateStatement(&ReturnStatement{})
	} else if _, ok := method.Statements[n-1].(*ReturnStatement); !ok {
		g.generateStatement(&ReturnStatement{})
	}
	g.frame.FrameSize = mjam.LinkDataSize
}

func (g *CodeGenerator) allocateLocal(varDecl *VarDecl) {
	g.layouts[varDecl] = &VarLayout{Offset: g.frame.FrameSize}
	g.frame.FrameSize++
	if g.frame.FrameSize > g.frame.MaxFrameSize {
		g.frame.MaxFrameSize = g.frame.FrameSize
	}
}

func (g *CodeGenerator) generateStatement(statement Statement) {
	switch s := statement.(type) {
	case *BlockStatement:
		saved := g.frame.FrameSize
		for _, inner := range s.Statements {
			g.generateStatement(inner)
		}
		if n := g.frame.FrameSize - saved; n > 0 {
			g.emit(mjam.POP, 0, mjam.ZR, n)
		}
		g.frame.FrameSize = saved
	case *VarDeclareStatement:
		// The value of the initializer stays on the stack as the variable.
		g.allocateLocal(s.Var)
		g.generateExpression(s.Init)
	case *AssignStatement:
		g.generateAssign(s.Ref, s.Value)
	case *IndexAssignStatement:
		g.generateReference(s.Ref)
		g.generateExpression(s.Index)
		g.generateExpression(s.Value)
		g.machine.EmitPrim(mjam.PrimArrayupd)
	case *CallStatement:
		method := g.generateCall(s.MethodRef, s.Args)
		if method.Type.Kind() != VoidTypeKind {
			g.emit(mjam.POP, 0, mjam.ZR, 1)
		}
	case *ReturnStatement:
		if s.Value != nil {
			g.generateExpression(s.Value)
			g.emit(mjam.RETURN, 1, mjam.ZR, g.frame.ArgSize)
		} else {
			g.emit(mjam.RETURN, 0, mjam.ZR, g.frame.ArgSize)
		}
	case *IfStatement:
		g.generateIfStatement(s)
	case *WhileStatement:
		g.generateWhileStatement(s)
	default:
		panic(fmt.Sprintf("code generator: unknown statement %T", statement))
	}
}

//     cond
//     JUMPIF(0) else
//     then
//     JUMP end
// else:
//     else
// end:
func (g *CodeGenerator) generateIfStatement(s *IfStatement) {
	g.generateExpression(s.Condition)
	jumpToElse := g.emit(mjam.JUMPIF, mjam.FalseRep, mjam.CB, mjam.Unresolved)
	g.generateStatement(s.Then)
	if s.Else == nil {
		g.machine.Patch(jumpToElse, g.machine.NextInstrAddr())
		return
	}
	jumpToEnd := g.emit(mjam.JUMP, 0, mjam.CB, mjam.Unresolved)
	g.machine.Patch(jumpToElse, g.machine.NextInstrAddr())
	g.generateStatement(s.Else)
	g.machine.Patch(jumpToEnd, g.machine.NextInstrAddr())
}

//     JUMP test
// body:
//     body
// test:
//     cond
//     JUMPIF(1) body
func (g *CodeGenerator) generateWhileStatement(s *WhileStatement) {
	jumpToTest := g.emit(mjam.JUMP, 0, mjam.CB, mjam.Unresolved)
	body := g.machine.NextInstrAddr()
	g.generateStatement(s.Body)
	g.machine.Patch(jumpToTest, g.machine.NextInstrAddr())
	g.generateExpression(s.Condition)
	g.emit(mjam.JUMPIF, mjam.TrueRep, mjam.CB, body)
}

var binaryOperatorPrims = map[string]mjam.Prim{
	"+": mjam.PrimAdd, "-": mjam.PrimSub, "*": mjam.PrimMult, "/": mjam.PrimDiv,
	"<": mjam.PrimLt, "<=": mjam.PrimLe, ">": mjam.PrimGt, ">=": mjam.PrimGe,
	"==": mjam.PrimEq, "!=": mjam.PrimNe,
}

func (g *CodeGenerator) generateExpression(expr Expression) {
	switch e := expr.(type) {
	case *UnaryExpression:
		g.generateExpression(e.Operand)
		if e.Op.Spelling == "!" {
			g.machine.EmitPrim(mjam.PrimNot)
		} else {
			g.machine.EmitPrim(mjam.PrimNeg)
		}
	case *BinaryExpression:
		switch e.Op.Spelling {
		case "&&":
			g.generateShortCircuit(e, mjam.FalseRep)
		case "||":
			g.generateShortCircuit(e, mjam.TrueRep)
		default:
			g.generateExpression(e.Left)
			g.generateExpression(e.Right)
			g.machine.EmitPrim(binaryOperatorPrims[e.Op.Spelling])
		}
	case *RefExpression:
		g.generateReference(e.Ref)
	case *IndexExpression:
		g.generateReference(e.Ref)
		g.generateExpression(e.Index)
		g.machine.EmitPrim(mjam.PrimArrayref)
	case *CallExpression:
		g.generateCall(e.MethodRef, e.Args)
	case *LiteralExpression:
		if e.Kind == NullLiteral {
			g.emitLiteral(mjam.NullRep)
		} else {
			g.emitLiteral(e.Value)
		}
	case *NewObjectExpression:
		classLayout := g.layouts[g.classes[e.Class.ClassName.Spelling]].(*ClassLayout)
		g.emitLiteral(-1)
		g.emitLiteral(classLayout.Size)
		g.machine.EmitPrim(mjam.PrimNewobj)
	case *NewArrayExpression:
		g.generateExpression(e.Size)
		g.machine.EmitPrim(mjam.PrimNewarr)
	default:
		panic(fmt.Sprintf("code generator: unknown expression %T", expr))
	}
}

// generateShortCircuit evaluates the right operand only when the left one does not
// already decide the result, which is shortCircuit.
//     left
//     JUMPIF(shortCircuit) sc
//     right
//     JUMP end
// sc: LOADL shortCircuit
// end:
func (g *CodeGenerator) generateShortCircuit(e *BinaryExpression, shortCircuit int) {
	g.generateExpression(e.Left)
	jumpToShortCircuit := g.emit(mjam.JUMPIF, shortCircuit, mjam.CB, mjam.Unresolved)
	g.generateExpression(e.Right)
	jumpToEnd := g.emit(mjam.JUMP, 0, mjam.CB, mjam.Unresolved)
	g.machine.Patch(jumpToShortCircuit, g.machine.NextInstrAddr())
	g.emitLiteral(shortCircuit)
	g.machine.Patch(jumpToEnd, g.machine.NextInstrAddr())
}

func (g *CodeGenerator) fieldLayout(decl Declaration) *FieldLayout {
	return g.layouts[decl].(*FieldLayout)
}

func (g *CodeGenerator) varLayout(decl Declaration) *VarLayout {
	return g.layouts[decl].(*VarLayout)
}

// generateReference pushes the value of ref.
func (g *CodeGenerator) generateReference(ref Reference) {
	switch r := ref.(type) {
	case *ThisRef:
		g.emit(mjam.LOADA, 0, mjam.OB, 0)
	case *IdRef:
		switch decl := g.bindings[r].(type) {
		case *FieldDecl:
			layout := g.fieldLayout(decl)
			if layout.Static {
				g.emit(mjam.LOAD, 0, mjam.SB, layout.Offset)
			} else {
				g.emit(mjam.LOAD, 0, mjam.OB, layout.Offset)
			}
		case *ParameterDecl, *VarDecl:
			g.emit(mjam.LOAD, 0, mjam.LB, g.varLayout(decl).Offset)
		default:
			panic(fmt.Sprintf("code generator: %s does not denote a value", r.Id.Spelling))
		}
	case *QualRef:
		decl := g.bindings[r]
		if decl == LengthDecl {
			g.generateReference(r.Ref)
			g.machine.EmitPrim(mjam.PrimArraylen)
			return
		}
		layout := g.fieldLayout(decl)
		if layout.Static {
			g.emit(mjam.LOAD, 0, mjam.SB, layout.Offset)
			return
		}
		if _, ok := r.Ref.(*ThisRef); ok {
			g.emit(mjam.LOAD, 0, mjam.OB, layout.Offset)
			return
		}
		g.generateReference(r.Ref)
		g.emitLiteral(layout.Offset)
		g.machine.EmitPrim(mjam.PrimFieldref)
	default:
		panic(fmt.Sprintf("code generator: unknown reference %T", ref))
	}
}

// generateAssign stores the value of value into the location denoted by ref.
func (g *CodeGenerator) generateAssign(ref Reference, value Expression) {
	switch r := ref.(type) {
	case *IdRef:
		switch decl := g.bindings[r].(type) {
		case *FieldDecl:
			layout := g.fieldLayout(decl)
			g.generateExpression(value)
			if layout.Static {
				g.emit(mjam.STORE, 0, mjam.SB, layout.Offset)
			} else {
				g.emit(mjam.STORE, 0, mjam.OB, layout.Offset)
			}
		case *ParameterDecl, *VarDecl:
			g.generateExpression(value)
			g.emit(mjam.STORE, 0, mjam.LB, g.varLayout(decl).Offset)
		default:
			panic(fmt.Sprintf("code generator: cannot assign to %s", r.Id.Spelling))
		}
	case *QualRef:
		layout := g.fieldLayout(g.bindings[r])
		if layout.Static {
			g.generateExpression(value)
			g.emit(mjam.STORE, 0, mjam.SB, layout.Offset)
			return
		}
		if _, ok := r.Ref.(*ThisRef); ok {
			g.generateExpression(value)
			g.emit(mjam.STORE, 0, mjam.OB, layout.Offset)
			return
		}
		g.generateReference(r.Ref)
		g.emitLiteral(layout.Offset)
		g.generateExpression(value)
		g.machine.EmitPrim(mjam.PrimFieldupd)
	default:
		panic(fmt.Sprintf("code generator: cannot assign to %T", ref))
	}
}

// generateCall pushes the arguments left to right, then the receiver of an instance
// method, and calls. println is the putintnl primitive.
func (g *CodeGenerator) generateCall(methodRef Reference, args []Expression) *MethodDecl {
	method := g.bindings[methodRef].(*MethodDecl)
	for _, arg := range args {
		g.generateExpression(arg)
	}
	if method == PrintlnDecl {
		g.machine.EmitPrim(mjam.PrimPutintnl)
		return method
	}
	if method.IsStatic {
		g.emitCall(mjam.CALL, method)
		return method
	}
	if qualRef, ok := methodRef.(*QualRef); ok {
		g.generateReference(qualRef.Ref)
	} else {
		g.emit(mjam.LOADA, 0, mjam.OB, 0)
	}
	g.emitCall(mjam.CALLI, method)
	return method
}
