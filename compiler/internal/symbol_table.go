package internal

import (
	"errors"
	"fmt"
)

// Scope levels of the identification table.
const (
	classScopeLevel  = 0
	memberScopeLevel = 1
	// Parameters live at level 2, locals of nested blocks above it.
	localScopeLevel = 2
)

// IdentificationTable is a stack of scopes mapping names to declarations.
type IdentificationTable struct {
	scopes []map[string]Declaration
	// declaring is the name of the local variable whose initializer is being
	// resolved, or empty.
	declaring string
}

func NewIdentificationTable() *IdentificationTable {
	table := &IdentificationTable{}
	table.OpenScope()
	return table
}

func (table *IdentificationTable) OpenScope() {
	table.scopes = append(table.scopes, map[string]Declaration{})
}

func (table *IdentificationTable) CloseScope() {
	table.scopes = table.scopes[:len(table.scopes)-1]
}

func (table *IdentificationTable) Level() int {
	return len(table.scopes) - 1
}

// Enter declares name at the current level. A name already declared at the current
// level, or at any enclosing local level, makes decl a duplicate: it is marked and
// not entered.
func (table *IdentificationTable) Enter(name string, decl Declaration) bool {
	current := table.Level()
	for level := current; level >= 0; level-- {
		if level != current && level < localScopeLevel {
			break
		}
		if _, ok := table.scopes[level][name]; ok {
			decl.base().Duplicated = true
			return false
		}
	}
	table.scopes[current][name] = decl
	return true
}

// Retrieve returns the innermost declaration of name, or nil.
func (table *IdentificationTable) Retrieve(name string) Declaration {
	for level := table.Level(); level >= 0; level-- {
		if decl, ok := table.scopes[level][name]; ok {
			return decl
		}
	}
	return nil
}

func (table *IdentificationTable) RetrieveClass(name string) *ClassDecl {
	classDecl, _ := table.scopes[classScopeLevel][name].(*ClassDecl)
	return classDecl
}

// RetrieveMethod looks name up among the methods of the class being identified.
func (table *IdentificationTable) RetrieveMethod(name string) *MethodDecl {
	if table.Level() < memberScopeLevel {
		return nil
	}
	method, _ := table.scopes[memberScopeLevel][name].(*MethodDecl)
	return method
}

func (table *IdentificationTable) StartDeclaring(name string) {
	table.declaring = name
}

func (table *IdentificationTable) FinishDeclaring() {
	table.declaring = ""
}

func (table *IdentificationTable) IsBeingDeclared(name string) bool {
	return table.declaring != "" && table.declaring == name
}

func makeSemanticError(format string, msg ...interface{}) error {
	return errors.New(fmt.Sprintf(format, msg...))
}
