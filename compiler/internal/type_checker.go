package internal

import "fmt"

// TypeChecker computes the type of every expression and reference and reports type
// errors. It does not stop at the first error: an ill typed expression gets the error
// type and expressions built on it are not reported again.
type TypeChecker struct {
	reporter      *ErrorReporter
	bindings      Bindings
	types         TypeTable
	currentClass  *ClassDecl
	currentMethod *MethodDecl
}

// CheckResult is what code generation needs from the checker.
type CheckResult struct {
	Types TypeTable
	// Main is the entry method, nil when the program has none.
	Main *MethodDecl
}

func NewTypeChecker(reporter *ErrorReporter, bindings Bindings) *TypeChecker {
	return &TypeChecker{reporter: reporter, bindings: bindings}
}

func (checker *TypeChecker) makeError(pos SourcePosition, format string, args ...interface{}) {
	checker.reporter.ReportError("Type error: "+fmt.Sprintf(format, args...), pos)
}

// Check type checks pkg. Errors go to the reporter; the caller decides from it
// whether the program is valid.
func (checker *TypeChecker) Check(pkg *Package) *CheckResult {
	checker.types = TypeTable{}
	result := &CheckResult{Types: checker.types}
	result.Main = checker.findMainMethod(pkg)
	if result.Main == nil {
		return result
	}
	for _, classDecl := range pkg.Classes {
		checker.currentClass = classDecl
		for _, method := range classDecl.Methods {
			checker.checkMethod(method)
		}
	}
	return result
}

// isMainMethod reports whether method has the entry signature:
// public static void main(String[] args).
func isMainMethod(method *MethodDecl) bool {
	if method.Name != "main" || method.IsPrivate || !method.IsStatic || method.Type.Kind() != VoidTypeKind {
		return false
	}
	if len(method.Parameters) != 1 {
		return false
	}
	return EqualTypes(method.Parameters[0].Type, &ArrayType{ElementType: newClassType(stringClassName)})
}

func (checker *TypeChecker) findMainMethod(pkg *Package) *MethodDecl {
	var mains []*MethodDecl
	for _, classDecl := range pkg.Classes {
		for _, method := range classDecl.Methods {
			if isMainMethod(method) {
				mains = append(mains, method)
			}
		}
	}
	switch len(mains) {
	case 0:
		checker.makeError(pkg.Pos, "no method public static void main(String[] args) found")
		return nil
	case 1:
	default:
		checker.makeError(mains[1].Pos, "more than one main method")
	}
	return mains[0]
}

func (checker *TypeChecker) checkMethod(method *MethodDecl) {
	checker.currentMethod = method
	for _, statement := range method.Statements {
		checker.checkStatement(statement)
	}
	if method.Type.Kind() == VoidTypeKind {
		return
	}
	if n := len(method.Statements); n == 0 {
		checker.makeError(method.Pos, "method %s must end with a return statement", method.Name)
	} else if _, ok := method.Statements[n-1].(*ReturnStatement); !ok {
		checker.makeError(method.Statements[n-1].Position(), "method %s must end with a return statement", method.Name)
	}
}

// checkAssignable reports an error unless a value of type source can be stored in a
// location of type target.
func (checker *TypeChecker) checkAssignable(target TypeDenoter, source TypeDenoter, pos SourcePosition) {
	if isErrorType(target) || isErrorType(source) {
		return
	}
	if !CanAssign(target, source) {
		checker.makeError(pos, "expected type %s but found %s", target, source)
	}
}

func (checker *TypeChecker) checkExpected(expected TypeDenoter, expr Expression, what string) {
	actual := checker.checkExpression(expr)
	if isErrorType(actual) || EqualTypes(expected, actual) {
		return
	}
	checker.makeError(expr.Position(), "%s must be %s but found %s", what, expected, actual)
}

// checkBranch checks the body of an if or a while, which may not be a lone variable
// declaration.
func (checker *TypeChecker) checkBranch(statement Statement) {
	if _, ok := statement.(*VarDeclareStatement); ok {
		checker.makeError(statement.Position(), "variable declaration cannot be the only statement of a branch")
	}
	checker.checkStatement(statement)
}

func (checker *TypeChecker) checkStatement(statement Statement) {
	switch s := statement.(type) {
	case *BlockStatement:
		for _, inner := range s.Statements {
			checker.checkStatement(inner)
		}
	case *VarDeclareStatement:
		initType := checker.checkExpression(s.Init)
		checker.checkAssignable(s.Var.Type, initType, s.Pos)
	case *AssignStatement:
		targetType := checker.checkAssignTarget(s.Ref)
		valueType := checker.checkExpression(s.Value)
		checker.checkAssignable(targetType, valueType, s.Pos)
	case *IndexAssignStatement:
		elementType := checker.checkIndexed(s.Ref)
		checker.checkExpected(intType, s.Index, "array index")
		valueType := checker.checkExpression(s.Value)
		checker.checkAssignable(elementType, valueType, s.Pos)
	case *CallStatement:
		checker.checkCall(s.MethodRef, s.Args, s.Pos)
	case *ReturnStatement:
		checker.checkReturn(s)
	case *IfStatement:
		checker.checkExpected(booleanType, s.Condition, "if condition")
		checker.checkBranch(s.Then)
		if s.Else != nil {
			checker.checkBranch(s.Else)
		}
	case *WhileStatement:
		checker.checkExpected(booleanType, s.Condition, "while condition")
		checker.checkBranch(s.Body)
	default:
		panic(fmt.Sprintf("type checker: unknown statement %T", statement))
	}
}

func (checker *TypeChecker) checkReturn(s *ReturnStatement) {
	methodType := checker.currentMethod.Type
	if s.Value == nil {
		if methodType.Kind() != VoidTypeKind {
			checker.makeError(s.Pos, "method %s must return a value of type %s", checker.currentMethod.Name, methodType)
		}
		return
	}
	valueType := checker.checkExpression(s.Value)
	if methodType.Kind() == VoidTypeKind {
		checker.makeError(s.Pos, "void method %s cannot return a value", checker.currentMethod.Name)
		return
	}
	checker.checkAssignable(methodType, valueType, s.Pos)
}

// checkAssignTarget returns the type of a location assigned to. Only variables,
// parameters and fields other than length can be assigned.
func (checker *TypeChecker) checkAssignTarget(ref Reference) TypeDenoter {
	tp := checker.checkReference(ref)
	switch decl := checker.bindings[ref].(type) {
	case *FieldDecl:
		if decl == LengthDecl {
			checker.makeError(ref.Position(), "cannot assign to the length of an array")
			return errorType
		}
	case *ClassDecl:
		if _, ok := ref.(*ThisRef); ok {
			checker.makeError(ref.Position(), "cannot assign to 'this'")
		} else {
			checker.makeError(ref.Position(), "cannot assign to class %s", decl.Name)
		}
		return errorType
	case *MethodDecl:
		checker.makeError(ref.Position(), "cannot assign to method %s", decl.Name)
		return errorType
	}
	return tp
}

// checkIndexed returns the element type of the array denoted by ref.
func (checker *TypeChecker) checkIndexed(ref Reference) TypeDenoter {
	tp := checker.checkValueReference(ref)
	if isErrorType(tp) {
		return errorType
	}
	arrayType, ok := tp.(*ArrayType)
	if !ok {
		checker.makeError(ref.Position(), "indexed value must be an array but found %s", tp)
		return errorType
	}
	return arrayType.ElementType
}

// checkReference records and returns the type of the declaration ref denotes.
func (checker *TypeChecker) checkReference(ref Reference) TypeDenoter {
	if qualRef, ok := ref.(*QualRef); ok {
		checker.checkReference(qualRef.Ref)
	}
	decl := checker.bindings[ref]
	if decl == nil {
		checker.types[ref] = errorType
		return errorType
	}
	tp := declType(decl)
	checker.types[ref] = tp
	return tp
}

// checkValueReference is checkReference for a reference used as a value, which
// cannot denote a method or a class.
func (checker *TypeChecker) checkValueReference(ref Reference) TypeDenoter {
	tp := checker.checkReference(ref)
	switch decl := checker.bindings[ref].(type) {
	case *MethodDecl:
		checker.makeError(ref.Position(), "method %s used as a value", decl.Name)
		return errorType
	case *ClassDecl:
		if _, ok := ref.(*ThisRef); !ok {
			checker.makeError(ref.Position(), "class %s used as a value", decl.Name)
			return errorType
		}
	}
	return tp
}

// checkCall checks the arguments of a call against the parameters of its target and
// returns the result type.
func (checker *TypeChecker) checkCall(methodRef Reference, args []Expression, pos SourcePosition) TypeDenoter {
	checker.checkReference(methodRef)
	argTypes := make([]TypeDenoter, len(args))
	for i, arg := range args {
		argTypes[i] = checker.checkExpression(arg)
	}
	method, ok := checker.bindings[methodRef].(*MethodDecl)
	if !ok {
		checker.makeError(methodRef.Position(), "%s is not a method", referenceName(methodRef))
		return errorType
	}
	if len(args) != len(method.Parameters) {
		checker.makeError(pos, "method %s expects %d arguments but found %d", method.Name, len(method.Parameters), len(args))
		return errorType
	}
	for i, param := range method.Parameters {
		if isErrorType(argTypes[i]) {
			return errorType
		}
		if !CanAssign(param.Type, argTypes[i]) {
			checker.makeError(args[i].Position(), "argument %d of %s must be %s but found %s",
				i+1, method.Name, param.Type, argTypes[i])
			return errorType
		}
	}
	return method.Type
}

func referenceName(ref Reference) string {
	switch r := ref.(type) {
	case *IdRef:
		return r.Id.Spelling
	case *QualRef:
		return r.Id.Spelling
	}
	return "this"
}

func (checker *TypeChecker) checkExpression(expr Expression) TypeDenoter {
	tp := checker.expressionType(expr)
	checker.types[expr] = tp
	return tp
}

func (checker *TypeChecker) expressionType(expr Expression) TypeDenoter {
	switch e := expr.(type) {
	case *UnaryExpression:
		return checker.checkUnary(e)
	case *BinaryExpression:
		return checker.checkBinary(e)
	case *RefExpression:
		return checker.checkValueReference(e.Ref)
	case *IndexExpression:
		elementType := checker.checkIndexed(e.Ref)
		checker.checkExpected(intType, e.Index, "array index")
		return elementType
	case *CallExpression:
		return checker.checkCall(e.MethodRef, e.Args, e.Pos)
	case *LiteralExpression:
		switch e.Kind {
		case IntLiteral:
			return intType
		case BooleanLiteral:
			return booleanType
		}
		return nullType
	case *NewObjectExpression:
		return e.Class
	case *NewArrayExpression:
		checker.checkExpected(intType, e.Size, "array size")
		return &ArrayType{ElementType: e.ElementType, Pos: e.Pos}
	}
	panic(fmt.Sprintf("type checker: unknown expression %T", expr))
}

func (checker *TypeChecker) checkUnary(e *UnaryExpression) TypeDenoter {
	operandType := checker.checkExpression(e.Operand)
	expected := intType
	if e.Op.Spelling == "!" {
		expected = booleanType
	}
	if isErrorType(operandType) {
		return errorType
	}
	if !EqualTypes(expected, operandType) {
		checker.makeError(e.Pos, "operator %s expects %s but found %s", e.Op.Spelling, expected, operandType)
		return errorType
	}
	return expected
}

func (checker *TypeChecker) checkBinary(e *BinaryExpression) TypeDenoter {
	left := checker.checkExpression(e.Left)
	right := checker.checkExpression(e.Right)
	if isErrorType(left) || isErrorType(right) {
		return errorType
	}
	switch e.Op.Spelling {
	case "&&", "||":
		return checker.checkOperands(e, booleanType, booleanType, left, right)
	case "+", "-", "*", "/":
		return checker.checkOperands(e, intType, intType, left, right)
	case "<", "<=", ">", ">=":
		return checker.checkOperands(e, intType, booleanType, left, right)
	}
	if left.Kind() == VoidTypeKind || right.Kind() == VoidTypeKind {
		checker.makeError(e.Pos, "operator %s cannot compare %s with %s", e.Op.Spelling, left, right)
		return errorType
	}
	// == and != compare two values of the same type, or a reference with null.
	if EqualTypes(left, right) || CanAssign(left, right) || CanAssign(right, left) {
		return booleanType
	}
	checker.makeError(e.Pos, "operator %s cannot compare %s with %s", e.Op.Spelling, left, right)
	return errorType
}

func (checker *TypeChecker) checkOperands(e *BinaryExpression, operand TypeDenoter, result TypeDenoter,
	left TypeDenoter, right TypeDenoter) TypeDenoter {
	if EqualTypes(operand, left) && EqualTypes(operand, right) {
		return result
	}
	checker.makeError(e.Pos, "operator %s expects %s operands but found %s and %s", e.Op.Spelling, operand, left, right)
	return errorType
}
