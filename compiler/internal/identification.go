package internal

import "fmt"

// Identification links every reference of a program to its declaration. It stops at
// the first error, which is reported and returned.
type Identification struct {
	reporter      *ErrorReporter
	table         *IdentificationTable
	bindings      Bindings
	currentClass  *ClassDecl
	currentMethod *MethodDecl
}

func NewIdentification(reporter *ErrorReporter) *Identification {
	return &Identification{reporter: reporter}
}

// Identify resolves the references of pkg against the declarations of pkg and the
// standard classes.
func (identification *Identification) Identify(pkg *Package) (Bindings, error) {
	identification.table = NewIdentificationTable()
	identification.bindings = Bindings{}
	for _, classDecl := range standardClasses {
		identification.table.Enter(classDecl.Name, classDecl)
	}
	for _, classDecl := range pkg.Classes {
		if !identification.table.Enter(classDecl.Name, classDecl) {
			return nil, identification.makeError(classDecl.Pos, "duplicate declaration of class %s", classDecl.Name)
		}
	}
	for _, classDecl := range pkg.Classes {
		if err := identification.visitClass(classDecl); err != nil {
			return nil, err
		}
	}
	return identification.bindings, nil
}

func (identification *Identification) makeError(pos SourcePosition, format string, args ...interface{}) error {
	msg := fmt.Sprintf(format, args...)
	identification.reporter.ReportError("Identification error: "+msg, pos)
	return makeSemanticError("identification error at line %d: %s", pos.Start, msg)
}

func (identification *Identification) visitClass(classDecl *ClassDecl) error {
	identification.currentClass = classDecl
	identification.table.OpenScope()
	defer identification.table.CloseScope()
	// Members are entered up front so that methods may refer to members declared
	// after them.
	for _, field := range classDecl.Fields {
		if !identification.table.Enter(field.Name, field) {
			return identification.makeError(field.Pos, "duplicate declaration of %s in class %s", field.Name, classDecl.Name)
		}
	}
	for _, method := range classDecl.Methods {
		if !identification.table.Enter(method.Name, method) {
			return identification.makeError(method.Pos, "duplicate declaration of %s in class %s", method.Name, classDecl.Name)
		}
	}
	for _, field := range classDecl.Fields {
		if err := identification.visitType(field.Type); err != nil {
			return err
		}
	}
	for _, method := range classDecl.Methods {
		if err := identification.visitMethod(method); err != nil {
			return err
		}
	}
	return nil
}

func (identification *Identification) visitMethod(method *MethodDecl) error {
	identification.currentMethod = method
	if err := identification.visitType(method.Type); err != nil {
		return err
	}
	identification.table.OpenScope()
	defer identification.table.CloseScope()
	for _, param := range method.Parameters {
		if err := identification.visitType(param.Type); err != nil {
			return err
		}
		if !identification.table.Enter(param.Name, param) {
			return identification.makeError(param.Pos, "duplicate declaration of parameter %s", param.Name)
		}
	}
	return identification.visitStatements(method.Statements)
}

func (identification *Identification) visitType(tp TypeDenoter) error {
	switch t := tp.(type) {
	case *ClassType:
		if identification.table.RetrieveClass(t.ClassName.Spelling) == nil {
			return identification.makeError(t.ClassName.Pos, "undeclared class %s", t.ClassName.Spelling)
		}
	case *ArrayType:
		return identification.visitType(t.ElementType)
	}
	return nil
}

func (identification *Identification) visitStatements(statements []Statement) error {
	for _, statement := range statements {
		if err := identification.visitStatement(statement); err != nil {
			return err
		}
	}
	return nil
}

// visitScopedStatement visits the branch of an if or the body of a while in its own
// scope.
func (identification *Identification) visitScopedStatement(statement Statement) error {
	identification.table.OpenScope()
	defer identification.table.CloseScope()
	return identification.visitStatement(statement)
}

func (identification *Identification) visitStatement(statement Statement) error {
	switch s := statement.(type) {
	case *BlockStatement:
		identification.table.OpenScope()
		defer identification.table.CloseScope()
		return identification.visitStatements(s.Statements)
	case *VarDeclareStatement:
		if err := identification.visitType(s.Var.Type); err != nil {
			return err
		}
		if !identification.table.Enter(s.Var.Name, s.Var) {
			return identification.makeError(s.Var.Pos, "duplicate declaration of variable %s", s.Var.Name)
		}
		identification.table.StartDeclaring(s.Var.Name)
		defer identification.table.FinishDeclaring()
		return identification.visitExpression(s.Init)
	case *AssignStatement:
		if _, err := identification.visitReference(s.Ref); err != nil {
			return err
		}
		return identification.visitExpression(s.Value)
	case *IndexAssignStatement:
		if _, err := identification.visitReference(s.Ref); err != nil {
			return err
		}
		if err := identification.visitExpression(s.Index); err != nil {
			return err
		}
		return identification.visitExpression(s.Value)
	case *CallStatement:
		return identification.visitCall(s.MethodRef, s.Args)
	case *ReturnStatement:
		if s.Value == nil {
			return nil
		}
		return identification.visitExpression(s.Value)
	case *IfStatement:
		if err := identification.visitExpression(s.Condition); err != nil {
			return err
		}
		if err := identification.visitScopedStatement(s.Then); err != nil {
			return err
		}
		if s.Else == nil {
			return nil
		}
		return identification.visitScopedStatement(s.Else)
	case *WhileStatement:
		if err := identification.visitExpression(s.Condition); err != nil {
			return err
		}
		return identification.visitScopedStatement(s.Body)
	}
	panic(fmt.Sprintf("identification: unknown statement %T", statement))
}

func (identification *Identification) visitExpressions(exprs []Expression) error {
	for _, expr := range exprs {
		if err := identification.visitExpression(expr); err != nil {
			return err
		}
	}
	return nil
}

func (identification *Identification) visitExpression(expr Expression) error {
	switch e := expr.(type) {
	case *UnaryExpression:
		return identification.visitExpression(e.Operand)
	case *BinaryExpression:
		if err := identification.visitExpression(e.Left); err != nil {
			return err
		}
		return identification.visitExpression(e.Right)
	case *RefExpression:
		_, err := identification.visitReference(e.Ref)
		return err
	case *IndexExpression:
		if _, err := identification.visitReference(e.Ref); err != nil {
			return err
		}
		return identification.visitExpression(e.Index)
	case *CallExpression:
		return identification.visitCall(e.MethodRef, e.Args)
	case *LiteralExpression:
		return nil
	case *NewObjectExpression:
		return identification.visitType(e.Class)
	case *NewArrayExpression:
		if err := identification.visitType(e.ElementType); err != nil {
			return err
		}
		return identification.visitExpression(e.Size)
	}
	panic(fmt.Sprintf("identification: unknown expression %T", expr))
}

// visitCall resolves the target of a call. A bare name only denotes a method of the
// current class.
func (identification *Identification) visitCall(methodRef Reference, args []Expression) error {
	switch ref := methodRef.(type) {
	case *IdRef:
		method := identification.table.RetrieveMethod(ref.Id.Spelling)
		if method == nil {
			return identification.makeError(ref.Id.Pos, "undeclared method %s", ref.Id.Spelling)
		}
		if identification.currentMethod.IsStatic && !method.IsStatic {
			return identification.makeError(ref.Id.Pos, "cannot call instance method %s from static method %s",
				method.Name, identification.currentMethod.Name)
		}
		identification.bindings[ref] = method
	case *ThisRef:
		return identification.makeError(ref.Pos, "'this' is not a method")
	case *QualRef:
		decl, err := identification.visitReference(ref)
		if err != nil {
			return err
		}
		if _, ok := decl.(*MethodDecl); !ok {
			return identification.makeError(ref.Id.Pos, "%s is not a method", declName(decl))
		}
	default:
		panic(fmt.Sprintf("identification: unknown method reference %T", methodRef))
	}
	return identification.visitExpressions(args)
}

func (identification *Identification) visitReference(ref Reference) (Declaration, error) {
	switch r := ref.(type) {
	case *ThisRef:
		if identification.currentMethod.IsStatic {
			return nil, identification.makeError(r.Pos, "'this' used in static method %s", identification.currentMethod.Name)
		}
		identification.bindings[r] = identification.currentClass
		return identification.currentClass, nil
	case *IdRef:
		name := r.Id.Spelling
		if identification.table.IsBeingDeclared(name) {
			return nil, identification.makeError(r.Id.Pos, "variable %s used in its own initializer", name)
		}
		decl := identification.table.Retrieve(name)
		if decl == nil {
			return nil, identification.makeError(r.Id.Pos, "undeclared identifier %s", name)
		}
		if member, ok := decl.(Member); ok && identification.currentMethod.IsStatic && !member.member().IsStatic {
			return nil, identification.makeError(r.Id.Pos, "cannot reference instance member %s from static method %s",
				name, identification.currentMethod.Name)
		}
		identification.bindings[r] = decl
		return decl, nil
	case *QualRef:
		qualifier, err := identification.visitReference(r.Ref)
		if err != nil {
			return nil, err
		}
		member, err := identification.resolveMember(r, qualifier)
		if err != nil {
			return nil, err
		}
		identification.bindings[r] = member
		return member, nil
	}
	panic(fmt.Sprintf("identification: unknown reference %T", ref))
}

// resolveMember finds the member named by ref.Id in the type of the qualifier.
func (identification *Identification) resolveMember(ref *QualRef, qualifier Declaration) (Declaration, error) {
	name := ref.Id.Spelling
	if _, ok := qualifier.(*MethodDecl); ok {
		return nil, identification.makeError(ref.Pos, "method %s cannot be qualified", declName(qualifier))
	}
	switch t := declType(qualifier).(type) {
	case *ArrayType:
		if name != LengthDecl.Name {
			return nil, identification.makeError(ref.Id.Pos, "arrays have no member %s", name)
		}
		return LengthDecl, nil
	case *ClassType:
		classDecl := identification.table.RetrieveClass(t.ClassName.Spelling)
		if classDecl == nil {
			return nil, identification.makeError(ref.Pos, "undeclared class %s", t.ClassName.Spelling)
		}
		member := findMember(classDecl, name)
		if member == nil {
			return nil, identification.makeError(ref.Id.Pos, "%s is not a member of class %s", name, classDecl.Name)
		}
		if member.member().IsPrivate && classDecl != identification.currentClass {
			return nil, identification.makeError(ref.Id.Pos, "%s is private in class %s", name, classDecl.Name)
		}
		if idRef, ok := ref.Ref.(*IdRef); ok && idRef.Id.Spelling == classDecl.Name && !member.member().IsStatic {
			return nil, identification.makeError(ref.Id.Pos, "instance member %s referenced through class %s",
				name, classDecl.Name)
		}
		return member, nil
	}
	return nil, identification.makeError(ref.Pos, "%s has no members", declName(qualifier))
}

// findMember looks name up among the fields, then the methods of classDecl.
func findMember(classDecl *ClassDecl, name string) Member {
	for _, field := range classDecl.Fields {
		if field.Name == name {
			return field
		}
	}
	for _, method := range classDecl.Methods {
		if method.Name == name {
			return method
		}
	}
	return nil
}
