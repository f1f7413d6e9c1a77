package internal

import (
	"errors"
	"fmt"
)

// Parser is a recursive descent parser with one token of lookahead. The first
// syntax error is reported and parsing stops.
type Parser struct {
	tokenizer *Tokenizer
	reporter  *ErrorReporter
	token     *Token
	// previousPos is the position of the last consumed token.
	previousPos SourcePosition
}

func NewParser(tokenizer *Tokenizer, reporter *ErrorReporter) *Parser {
	return &Parser{tokenizer: tokenizer, reporter: reporter}
}

// Parse parses a whole program:
// Program ::= (ClassDeclaration)* EOT
func (parser *Parser) Parse() (*Package, error) {
	parser.stepForward()
	pkg := &Package{Pos: parser.token.pos}
	for parser.matchToken(ClassTP) {
		classDecl, err := parser.parseClassDeclaration()
		if err != nil {
			return nil, err
		}
		pkg.Classes = append(pkg.Classes, classDecl)
	}
	if _, err := parser.expectToken(EndOfTextTP); err != nil {
		return nil, err
	}
	pkg.Pos = span(pkg.Pos, parser.previousPos)
	return pkg, nil
}

func (parser *Parser) stepForward() {
	if parser.token != nil {
		parser.previousPos = parser.token.pos
	}
	parser.token = parser.tokenizer.Scan()
}

func (parser *Parser) matchToken(tp TokenType) bool {
	return parser.token.tp == tp
}

func (parser *Parser) expectToken(tp TokenType) (*Token, error) {
	if !parser.matchToken(tp) {
		return nil, parser.makeError("expecting '%s' but found '%s'", tp, parser.token)
	}
	token := parser.token
	parser.stepForward()
	return token, nil
}

// makeError reports a syntax error at the current token. Error tokens were already
// reported by the tokenizer.
func (parser *Parser) makeError(format string, args ...interface{}) error {
	if parser.token.tp != ErrorTP {
		parser.reporter.ReportError("Parse error: "+fmt.Sprintf(format, args...), parser.token.pos)
	}
	return errors.New(fmt.Sprintf("syntax error near %s at line %d", parser.token, parser.token.pos.Start))
}

func (parser *Parser) parseIdentifier() (*Identifier, error) {
	token, err := parser.expectToken(IdentifierTP)
	if err != nil {
		return nil, err
	}
	return &Identifier{Spelling: token.content, Pos: token.pos}, nil
}

// class id { (FieldDeclaration | MethodDeclaration)* }
func (parser *Parser) parseClassDeclaration() (*ClassDecl, error) {
	start := parser.token.pos
	parser.stepForward()
	name, err := parser.parseIdentifier()
	if err != nil {
		return nil, err
	}
	if _, err = parser.expectToken(LeftBraceTP); err != nil {
		return nil, err
	}
	classDecl := &ClassDecl{DeclarationBase: DeclarationBase{Name: name.Spelling, Type: &ClassType{ClassName: name}}}
	for !parser.matchToken(RightBraceTP) {
		field, method, err := parser.parseMemberDeclaration()
		if err != nil {
			return nil, err
		}
		if field != nil {
			classDecl.Fields = append(classDecl.Fields, field)
		} else {
			classDecl.Methods = append(classDecl.Methods, method)
		}
	}
	parser.stepForward()
	classDecl.Pos = span(start, parser.previousPos)
	return classDecl, nil
}

// Visibility Access (Type | void) id ( ; | ( ParameterList? ) { Statement* } )
// Exactly one of the returned field and method is set.
func (parser *Parser) parseMemberDeclaration() (*FieldDecl, *MethodDecl, error) {
	start := parser.token.pos
	member := MemberBase{}
	switch parser.token.tp {
	case PublicTP:
		parser.stepForward()
	case PrivateTP:
		member.IsPrivate = true
		parser.stepForward()
	}
	if parser.matchToken(StaticTP) {
		member.IsStatic = true
		parser.stepForward()
	}
	if parser.matchToken(VoidTP) {
		member.Type = newBaseType(VoidTypeKind, parser.token.pos)
		parser.stepForward()
	} else {
		tp, err := parser.parseType()
		if err != nil {
			return nil, nil, err
		}
		member.Type = tp
	}
	name, err := parser.parseIdentifier()
	if err != nil {
		return nil, nil, err
	}
	member.Name = name.Spelling
	if parser.matchToken(SemiColonTP) && member.Type.Kind() != VoidTypeKind {
		parser.stepForward()
		member.Pos = span(start, parser.previousPos)
		return &FieldDecl{MemberBase: member}, nil, nil
	}
	method := &MethodDecl{MemberBase: member}
	if _, err = parser.expectToken(LeftParentThesesTP); err != nil {
		return nil, nil, err
	}
	if !parser.matchToken(RightParentThesesTP) {
		if method.Parameters, err = parser.parseParameters(); err != nil {
			return nil, nil, err
		}
	}
	if _, err = parser.expectToken(RightParentThesesTP); err != nil {
		return nil, nil, err
	}
	if _, err = parser.expectToken(LeftBraceTP); err != nil {
		return nil, nil, err
	}
	if method.Statements, err = parser.parseStatementsUntilRightBrace(); err != nil {
		return nil, nil, err
	}
	method.Pos = span(start, parser.previousPos)
	return nil, method, nil
}

// Type id (, Type id)*
func (parser *Parser) parseParameters() (params []*ParameterDecl, err error) {
	for {
		start := parser.token.pos
		tp, err := parser.parseType()
		if err != nil {
			return nil, err
		}
		name, err := parser.parseIdentifier()
		if err != nil {
			return nil, err
		}
		params = append(params, &ParameterDecl{DeclarationBase{Name: name.Spelling, Type: tp, Pos: span(start, name.Pos)}})
		if !parser.matchToken(CommaTP) {
			return params, nil
		}
		parser.stepForward()
	}
}

// int | int[] | boolean | id | id[]
func (parser *Parser) parseType() (TypeDenoter, error) {
	var elementType TypeDenoter
	start := parser.token.pos
	switch parser.token.tp {
	case BooleanTP:
		parser.stepForward()
		return newBaseType(BooleanTypeKind, start), nil
	case IntTP:
		elementType = newBaseType(IntTypeKind, start)
		parser.stepForward()
	case IdentifierTP:
		name, _ := parser.parseIdentifier()
		elementType = &ClassType{ClassName: name}
	default:
		return nil, parser.makeError("expecting a type but found '%s'", parser.token)
	}
	if !parser.matchToken(LeftSquareBracketTP) {
		return elementType, nil
	}
	parser.stepForward()
	if _, err := parser.expectToken(RightSquareBracketTP); err != nil {
		return nil, err
	}
	return &ArrayType{ElementType: elementType, Pos: span(start, parser.previousPos)}, nil
}

// parseStatementsUntilRightBrace parses Statement* } where the opening brace is
// already consumed.
func (parser *Parser) parseStatementsUntilRightBrace() (statements []Statement, err error) {
	for !parser.matchToken(RightBraceTP) {
		statement, err := parser.parseStatement()
		if err != nil {
			return nil, err
		}
		statements = append(statements, statement)
	}
	parser.stepForward()
	return statements, nil
}

func (parser *Parser) parseStatement() (Statement, error) {
	start := parser.token.pos
	switch parser.token.tp {
	case LeftBraceTP:
		parser.stepForward()
		statements, err := parser.parseStatementsUntilRightBrace()
		if err != nil {
			return nil, err
		}
		return &BlockStatement{Statements: statements, Pos: span(start, parser.previousPos)}, nil
	case IntTP, BooleanTP:
		tp, err := parser.parseType()
		if err != nil {
			return nil, err
		}
		return parser.parseVarDeclareRest(tp, start)
	case IdentifierTP:
		return parser.parseIdentifierStatement()
	case ThisTP:
		ref, err := parser.parseReference()
		if err != nil {
			return nil, err
		}
		return parser.parseReferenceStatementRest(ref, start)
	case ReturnTP:
		return parser.parseReturnStatement()
	case IfTP:
		return parser.parseIfStatement()
	case WhileTP:
		return parser.parseWhileStatement()
	}
	return nil, parser.makeError("expecting a statement but found '%s'", parser.token)
}

// A statement starting with an identifier is told apart by the tokens after it:
//   id id        local variable of class type
//   id [ ] id    local variable of array type
//   id [ e ] =   indexed assignment
//   otherwise    a statement on the reference starting with id
func (parser *Parser) parseIdentifierStatement() (Statement, error) {
	start := parser.token.pos
	id, _ := parser.parseIdentifier()
	switch parser.token.tp {
	case IdentifierTP:
		return parser.parseVarDeclareRest(&ClassType{ClassName: id}, start)
	case LeftSquareBracketTP:
		parser.stepForward()
		if parser.matchToken(RightSquareBracketTP) {
			parser.stepForward()
			arrayType := &ArrayType{ElementType: &ClassType{ClassName: id}, Pos: span(start, parser.previousPos)}
			return parser.parseVarDeclareRest(arrayType, start)
		}
		return parser.parseIndexAssignRest(&IdRef{Id: id}, start)
	}
	ref, err := parser.parseQualifiedReferenceRest(&IdRef{Id: id})
	if err != nil {
		return nil, err
	}
	return parser.parseReferenceStatementRest(ref, start)
}

// id = Expression ;
func (parser *Parser) parseVarDeclareRest(tp TypeDenoter, start SourcePosition) (Statement, error) {
	name, err := parser.parseIdentifier()
	if err != nil {
		return nil, err
	}
	varDecl := &VarDecl{DeclarationBase{Name: name.Spelling, Type: tp, Pos: span(start, name.Pos)}}
	if _, err = parser.expectToken(AssignTP); err != nil {
		return nil, err
	}
	init, err := parser.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err = parser.expectToken(SemiColonTP); err != nil {
		return nil, err
	}
	return &VarDeclareStatement{Var: varDecl, Init: init, Pos: span(start, parser.previousPos)}, nil
}

// Reference ( = Expression ; | [ Expression ] = Expression ; | ( ArgumentList? ) ; )
func (parser *Parser) parseReferenceStatementRest(ref Reference, start SourcePosition) (Statement, error) {
	switch parser.token.tp {
	case AssignTP:
		parser.stepForward()
		value, err := parser.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err = parser.expectToken(SemiColonTP); err != nil {
			return nil, err
		}
		return &AssignStatement{Ref: ref, Value: value, Pos: span(start, parser.previousPos)}, nil
	case LeftSquareBracketTP:
		parser.stepForward()
		return parser.parseIndexAssignRest(ref, start)
	case LeftParentThesesTP:
		args, err := parser.parseArguments()
		if err != nil {
			return nil, err
		}
		if _, err = parser.expectToken(SemiColonTP); err != nil {
			return nil, err
		}
		return &CallStatement{MethodRef: ref, Args: args, Pos: span(start, parser.previousPos)}, nil
	}
	return nil, parser.makeError("expecting '=', '[' or '(' but found '%s'", parser.token)
}

// Expression ] = Expression ; where the opening bracket is already consumed.
func (parser *Parser) parseIndexAssignRest(ref Reference, start SourcePosition) (Statement, error) {
	index, err := parser.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err = parser.expectToken(RightSquareBracketTP); err != nil {
		return nil, err
	}
	if _, err = parser.expectToken(AssignTP); err != nil {
		return nil, err
	}
	value, err := parser.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err = parser.expectToken(SemiColonTP); err != nil {
		return nil, err
	}
	return &IndexAssignStatement{Ref: ref, Index: index, Value: value, Pos: span(start, parser.previousPos)}, nil
}

// return Expression? ;
func (parser *Parser) parseReturnStatement() (Statement, error) {
	start := parser.token.pos
	parser.stepForward()
	statement := &ReturnStatement{}
	if !parser.matchToken(SemiColonTP) {
		value, err := parser.parseExpression()
		if err != nil {
			return nil, err
		}
		statement.Value = value
	}
	if _, err := parser.expectToken(SemiColonTP); err != nil {
		return nil, err
	}
	statement.Pos = span(start, parser.previousPos)
	return statement, nil
}

// ( Expression )
func (parser *Parser) parseCondition() (Expression, error) {
	if _, err := parser.expectToken(LeftParentThesesTP); err != nil {
		return nil, err
	}
	condition, err := parser.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err = parser.expectToken(RightParentThesesTP); err != nil {
		return nil, err
	}
	return condition, nil
}

// if ( Expression ) Statement (else Statement)?
func (parser *Parser) parseIfStatement() (Statement, error) {
	start := parser.token.pos
	parser.stepForward()
	condition, err := parser.parseCondition()
	if err != nil {
		return nil, err
	}
	statement := &IfStatement{Condition: condition}
	if statement.Then, err = parser.parseStatement(); err != nil {
		return nil, err
	}
	if parser.matchToken(ElseTP) {
		parser.stepForward()
		if statement.Else, err = parser.parseStatement(); err != nil {
			return nil, err
		}
	}
	statement.Pos = span(start, parser.previousPos)
	return statement, nil
}

// while ( Expression ) Statement
func (parser *Parser) parseWhileStatement() (Statement, error) {
	start := parser.token.pos
	parser.stepForward()
	condition, err := parser.parseCondition()
	if err != nil {
		return nil, err
	}
	body, err := parser.parseStatement()
	if err != nil {
		return nil, err
	}
	return &WhileStatement{Condition: condition, Body: body, Pos: span(start, parser.previousPos)}, nil
}

// (this | id) (. id)*
func (parser *Parser) parseReference() (Reference, error) {
	var ref Reference
	switch parser.token.tp {
	case ThisTP:
		ref = &ThisRef{Pos: parser.token.pos}
		parser.stepForward()
	case IdentifierTP:
		id, _ := parser.parseIdentifier()
		ref = &IdRef{Id: id}
	default:
		return nil, parser.makeError("expecting a reference but found '%s'", parser.token)
	}
	return parser.parseQualifiedReferenceRest(ref)
}

func (parser *Parser) parseQualifiedReferenceRest(ref Reference) (Reference, error) {
	for parser.matchToken(DotTP) {
		parser.stepForward()
		id, err := parser.parseIdentifier()
		if err != nil {
			return nil, err
		}
		ref = &QualRef{Ref: ref, Id: id, Pos: span(ref.Position(), id.Pos)}
	}
	return ref, nil
}
