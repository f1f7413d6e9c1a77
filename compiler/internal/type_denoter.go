package internal

type TypeKind int

const (
	IntTypeKind TypeKind = iota
	BooleanTypeKind
	ClassTypeKind
	ArrayTypeKind
	VoidTypeKind
	NullTypeKind
	// ErrorTypeKind is given to ill typed expressions so that enclosing expressions
	// are not reported again.
	ErrorTypeKind
)

type TypeDenoter interface {
	Kind() TypeKind
	String() string
}

type BaseType struct {
	TypeKind TypeKind
	Pos      SourcePosition
}

func (t *BaseType) Kind() TypeKind { return t.TypeKind }

func (t *BaseType) String() string {
	switch t.TypeKind {
	case IntTypeKind:
		return "int"
	case BooleanTypeKind:
		return "boolean"
	case VoidTypeKind:
		return "void"
	case NullTypeKind:
		return "null"
	}
	return "error"
}

type ClassType struct {
	ClassName *Identifier
}

func (t *ClassType) Kind() TypeKind { return ClassTypeKind }

func (t *ClassType) String() string { return t.ClassName.Spelling }

type ArrayType struct {
	ElementType TypeDenoter
	Pos         SourcePosition
}

func (t *ArrayType) Kind() TypeKind { return ArrayTypeKind }

func (t *ArrayType) String() string { return t.ElementType.String() + "[]" }

func newBaseType(kind TypeKind, pos SourcePosition) *BaseType {
	return &BaseType{TypeKind: kind, Pos: pos}
}

var (
	intType     = &BaseType{TypeKind: IntTypeKind}
	booleanType = &BaseType{TypeKind: BooleanTypeKind}
	voidType    = &BaseType{TypeKind: VoidTypeKind}
	nullType    = &BaseType{TypeKind: NullTypeKind}
	errorType   = &BaseType{TypeKind: ErrorTypeKind}
)

func newClassType(name string) *ClassType {
	return &ClassType{ClassName: &Identifier{Spelling: name}}
}

// EqualTypes compares types by structure. Class types are equal when they name the
// same class, array types when their element types are equal.
func EqualTypes(a TypeDenoter, b TypeDenoter) bool {
	if a == nil || b == nil || a.Kind() != b.Kind() {
		return false
	}
	switch a.Kind() {
	case ClassTypeKind:
		return a.(*ClassType).ClassName.Spelling == b.(*ClassType).ClassName.Spelling
	case ArrayTypeKind:
		return EqualTypes(a.(*ArrayType).ElementType, b.(*ArrayType).ElementType)
	}
	return true
}

func IsReferenceType(t TypeDenoter) bool {
	return t.Kind() == ClassTypeKind || t.Kind() == ArrayTypeKind
}

// CanAssign reports whether a value of type source may be stored into a location of
// type target: the types are equal, or target is a reference type and source is null.
func CanAssign(target TypeDenoter, source TypeDenoter) bool {
	if EqualTypes(target, source) {
		return true
	}
	return IsReferenceType(target) && source.Kind() == NullTypeKind
}

func isErrorType(t TypeDenoter) bool {
	return t == nil || t.Kind() == ErrorTypeKind
}
