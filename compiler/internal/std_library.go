package internal

// The standard library of miniJava: System.out.println(int) and String, whose only
// use is the parameter type of main. These declarations are shared by every
// compilation and never modified.

const (
	systemClassName      = "System"
	printStreamClassName = "_PrintStream"
	stringClassName      = "String"
)

var (
	// LengthDecl is the field denoted by arr.length on every array.
	LengthDecl = &FieldDecl{MemberBase{DeclarationBase: DeclarationBase{Name: "length", Type: intType}}}

	// PrintlnDecl is _PrintStream.println(int n).
	PrintlnDecl = &MethodDecl{
		MemberBase: MemberBase{DeclarationBase: DeclarationBase{Name: "println", Type: voidType}},
		Parameters: []*ParameterDecl{{DeclarationBase{Name: "n", Type: intType}}},
	}

	standardClasses = []*ClassDecl{
		{
			DeclarationBase: DeclarationBase{Name: systemClassName, Type: newClassType(systemClassName)},
			Fields: []*FieldDecl{{MemberBase{
				DeclarationBase: DeclarationBase{Name: "out", Type: newClassType(printStreamClassName)},
				IsStatic:        true,
			}}},
		},
		{
			DeclarationBase: DeclarationBase{Name: printStreamClassName, Type: newClassType(printStreamClassName)},
			Methods:         []*MethodDecl{PrintlnDecl},
		},
		{
			DeclarationBase: DeclarationBase{Name: stringClassName, Type: newClassType(stringClassName)},
		},
	}
)

// allClasses lists the classes of pkg followed by the standard classes.
func allClasses(pkg *Package) []*ClassDecl {
	classes := make([]*ClassDecl, 0, len(pkg.Classes)+len(standardClasses))
	classes = append(classes, pkg.Classes...)
	return append(classes, standardClasses...)
}

func isStandardClass(decl *ClassDecl) bool {
	for _, c := range standardClasses {
		if c == decl {
			return true
		}
	}
	return false
}
