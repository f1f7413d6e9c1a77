package internal

// Every node carries its source position. Later passes never write into the tree,
// they keep what they learn in side tables keyed by node pointer.

type Node interface {
	Position() SourcePosition
}

type Identifier struct {
	Spelling string
	Pos      SourcePosition
}

func (id *Identifier) Position() SourcePosition { return id.Pos }

// Package is the root of a parsed program.
type Package struct {
	Classes []*ClassDecl
	Pos     SourcePosition
}

func (p *Package) Position() SourcePosition { return p.Pos }

// Declarations.

type DeclarationBase struct {
	Name string
	Type TypeDenoter
	Pos  SourcePosition
	// Duplicated is set by identification when the name was already declared in scope.
	Duplicated bool
}

func (d *DeclarationBase) Position() SourcePosition { return d.Pos }

func (d *DeclarationBase) base() *DeclarationBase { return d }

// Declaration is implemented by *ClassDecl, *FieldDecl, *MethodDecl, *ParameterDecl
// and *VarDecl.
type Declaration interface {
	Node
	base() *DeclarationBase
}

func declName(decl Declaration) string {
	return decl.base().Name
}

func declType(decl Declaration) TypeDenoter {
	return decl.base().Type
}

type ClassDecl struct {
	DeclarationBase
	Fields  []*FieldDecl
	Methods []*MethodDecl
}

type MemberBase struct {
	DeclarationBase
	IsPrivate bool
	IsStatic  bool
}

func (m *MemberBase) member() *MemberBase { return m }

// Member is implemented by *FieldDecl and *MethodDecl.
type Member interface {
	Declaration
	member() *MemberBase
}

type FieldDecl struct {
	MemberBase
}

type MethodDecl struct {
	MemberBase
	Parameters []*ParameterDecl
	Statements []Statement
}

type ParameterDecl struct {
	DeclarationBase
}

// VarDecl declares a local variable.
type VarDecl struct {
	DeclarationBase
}

// Statements.

type Statement interface {
	Node
	statementNode()
}

type BlockStatement struct {
	Statements []Statement
	Pos        SourcePosition
}

type VarDeclareStatement struct {
	Var  *VarDecl
	Init Expression
	Pos  SourcePosition
}

type AssignStatement struct {
	Ref   Reference
	Value Expression
	Pos   SourcePosition
}

type IndexAssignStatement struct {
	Ref   Reference
	Index Expression
	Value Expression
	Pos   SourcePosition
}

type CallStatement struct {
	MethodRef Reference
	Args      []Expression
	Pos       SourcePosition
}

type ReturnStatement struct {
	// Value is nil for a bare return.
	Value Expression
	Pos   SourcePosition
}

type IfStatement struct {
	Condition Expression
	Then      Statement
	// Else is nil when there is no else branch.
	Else Statement
	Pos  SourcePosition
}

type WhileStatement struct {
	Condition Expression
	Body      Statement
	Pos       SourcePosition
}

func (s *BlockStatement) Position() SourcePosition       { return s.Pos }
func (s *VarDeclareStatement) Position() SourcePosition  { return s.Pos }
func (s *AssignStatement) Position() SourcePosition      { return s.Pos }
func (s *IndexAssignStatement) Position() SourcePosition { return s.Pos }
func (s *CallStatement) Position() SourcePosition        { return s.Pos }
func (s *ReturnStatement) Position() SourcePosition      { return s.Pos }
func (s *IfStatement) Position() SourcePosition          { return s.Pos }
func (s *WhileStatement) Position() SourcePosition       { return s.Pos }

func (s *BlockStatement) statementNode()       {}
func (s *VarDeclareStatement) statementNode()  {}
func (s *AssignStatement) statementNode()      {}
func (s *IndexAssignStatement) statementNode() {}
func (s *CallStatement) statementNode()        {}
func (s *ReturnStatement) statementNode()      {}
func (s *IfStatement) statementNode()          {}
func (s *WhileStatement) statementNode()       {}

// Expressions.

type Expression interface {
	Node
	expressionNode()
}

type Operator struct {
	Spelling string
	Pos      SourcePosition
}

type UnaryExpression struct {
	Op      *Operator
	Operand Expression
	Pos     SourcePosition
}

type BinaryExpression struct {
	Op    *Operator
	Left  Expression
	Right Expression
	Pos   SourcePosition
}

type RefExpression struct {
	Ref Reference
	Pos SourcePosition
}

type IndexExpression struct {
	Ref   Reference
	Index Expression
	Pos   SourcePosition
}

type CallExpression struct {
	MethodRef Reference
	Args      []Expression
	Pos       SourcePosition
}

type LiteralKind int

const (
	IntLiteral LiteralKind = iota
	BooleanLiteral
	NullLiteral
)

type LiteralExpression struct {
	Kind     LiteralKind
	Spelling string
	// Value holds the integer or boolean value.
	Value int
	Pos   SourcePosition
}

type NewObjectExpression struct {
	Class *ClassType
	Pos   SourcePosition
}

type NewArrayExpression struct {
	ElementType TypeDenoter
	Size        Expression
	Pos         SourcePosition
}

func (e *UnaryExpression) Position() SourcePosition     { return e.Pos }
func (e *BinaryExpression) Position() SourcePosition    { return e.Pos }
func (e *RefExpression) Position() SourcePosition       { return e.Pos }
func (e *IndexExpression) Position() SourcePosition     { return e.Pos }
func (e *CallExpression) Position() SourcePosition      { return e.Pos }
func (e *LiteralExpression) Position() SourcePosition   { return e.Pos }
func (e *NewObjectExpression) Position() SourcePosition { return e.Pos }
func (e *NewArrayExpression) Position() SourcePosition  { return e.Pos }

func (e *UnaryExpression) expressionNode()     {}
func (e *BinaryExpression) expressionNode()    {}
func (e *RefExpression) expressionNode()       {}
func (e *IndexExpression) expressionNode()     {}
func (e *CallExpression) expressionNode()      {}
func (e *LiteralExpression) expressionNode()   {}
func (e *NewObjectExpression) expressionNode() {}
func (e *NewArrayExpression) expressionNode()  {}

// References.

type Reference interface {
	Node
	referenceNode()
}

type ThisRef struct {
	Pos SourcePosition
}

type IdRef struct {
	Id *Identifier
}

// QualRef is Ref.Id.
type QualRef struct {
	Ref Reference
	Id  *Identifier
	Pos SourcePosition
}

func (r *ThisRef) Position() SourcePosition { return r.Pos }
func (r *IdRef) Position() SourcePosition   { return r.Id.Pos }
func (r *QualRef) Position() SourcePosition { return r.Pos }

func (r *ThisRef) referenceNode() {}
func (r *IdRef) referenceNode()   {}
func (r *QualRef) referenceNode() {}

// Side tables.

// Bindings maps every reference to the declaration it denotes. Written by
// identification only.
type Bindings map[Reference]Declaration

// TypeTable maps expressions and references to their types. Written by the checker
// only.
type TypeTable map[Node]TypeDenoter
