package internal

import (
	"strconv"
)

// binaryOperatorPriority is the precedence of every binary operator, higher binds
// tighter. All binary operators are left associative.
var binaryOperatorPriority = map[string]int{
	"||": 1,
	"&&": 2,
	"==": 3, "!=": 3,
	"<": 4, "<=": 4, ">": 4, ">=": 4,
	"+": 5, "-": 5,
	"*": 6, "/": 6,
}

// buildExpressionsTree folds a flat list of terms t0 op0 t1 op1 ... tn into a tree by
// precedence climbing.
func buildExpressionsTree(ops []*Operator, exprTerms []Expression) Expression {
	ret, _ := buildExpressionsTree0(ops, exprTerms, 0, 0)
	return ret
}

// buildExpressionsTree0 builds the expression starting at term loc whose operators
// all have priority at least minPriority. It returns the expression and the index of
// the first operator it did not consume. exprTerms[i] always holds the expression
// built so far that ends at term i.
func buildExpressionsTree0(ops []*Operator, exprTerms []Expression, loc int, minPriority int) (Expression, int) {
	lhs := exprTerms[loc]
	i := loc
	for i < len(ops) && binaryOperatorPriority[ops[i].Spelling] >= minPriority {
		op := ops[i]
		priority := binaryOperatorPriority[op.Spelling]
		rhs := exprTerms[i+1]
		j := i + 1
		for j < len(ops) && binaryOperatorPriority[ops[j].Spelling] > priority {
			rhs, j = buildExpressionsTree0(ops, exprTerms, j, binaryOperatorPriority[ops[j].Spelling])
		}
		lhs = &BinaryExpression{Op: op, Left: lhs, Right: rhs, Pos: span(lhs.Position(), rhs.Position())}
		exprTerms[j] = lhs
		i = j
	}
	return lhs, i
}

// Expression ::= BottomExpression (binop BottomExpression)*
func (parser *Parser) parseExpression() (Expression, error) {
	term, err := parser.parseBottomExpression()
	if err != nil {
		return nil, err
	}
	var ops []*Operator
	exprTerms := []Expression{term}
	for parser.matchToken(BinaryOpTP) {
		op := &Operator{Spelling: parser.token.content, Pos: parser.token.pos}
		parser.stepForward()
		term, err = parser.parseBottomExpression()
		if err != nil {
			return nil, err
		}
		ops = append(ops, op)
		exprTerms = append(exprTerms, term)
	}
	return buildExpressionsTree(ops, exprTerms), nil
}

// ( Expression (, Expression)* )?  including the parentheses.
func (parser *Parser) parseArguments() (args []Expression, err error) {
	if _, err = parser.expectToken(LeftParentThesesTP); err != nil {
		return nil, err
	}
	if parser.matchToken(RightParentThesesTP) {
		parser.stepForward()
		return nil, nil
	}
	for {
		arg, err := parser.parseExpression()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if !parser.matchToken(CommaTP) {
			break
		}
		parser.stepForward()
	}
	if _, err = parser.expectToken(RightParentThesesTP); err != nil {
		return nil, err
	}
	return args, nil
}

func (parser *Parser) parseBottomExpression() (Expression, error) {
	start := parser.token.pos
	switch parser.token.tp {
	case UnaryOpTP:
		return parser.parseUnaryExpression()
	case BinaryOpTP:
		// A minus in operand position is a negation.
		if parser.token.content == "-" {
			return parser.parseUnaryExpression()
		}
	case LeftParentThesesTP:
		parser.stepForward()
		expr, err := parser.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err = parser.expectToken(RightParentThesesTP); err != nil {
			return nil, err
		}
		return expr, nil
	case IntegerTP:
		value, err := strconv.ParseInt(parser.token.content, 10, 32)
		if err != nil {
			return nil, parser.makeError("integer literal %s out of range", parser.token.content)
		}
		literal := &LiteralExpression{Kind: IntLiteral, Spelling: parser.token.content, Value: int(value), Pos: start}
		parser.stepForward()
		return literal, nil
	case TrueTP, FalseTP:
		literal := &LiteralExpression{Kind: BooleanLiteral, Spelling: parser.token.content, Pos: start}
		if parser.matchToken(TrueTP) {
			literal.Value = 1
		}
		parser.stepForward()
		return literal, nil
	case NullTP:
		parser.stepForward()
		return &LiteralExpression{Kind: NullLiteral, Spelling: "null", Pos: start}, nil
	case NewTP:
		return parser.parseNewExpression()
	case IdentifierTP, ThisTP:
		return parser.parseReferenceExpression()
	}
	return nil, parser.makeError("expecting an expression but found '%s'", parser.token)
}

func (parser *Parser) parseUnaryExpression() (Expression, error) {
	op := &Operator{Spelling: parser.token.content, Pos: parser.token.pos}
	parser.stepForward()
	operand, err := parser.parseBottomExpression()
	if err != nil {
		return nil, err
	}
	return &UnaryExpression{Op: op, Operand: operand, Pos: span(op.Pos, operand.Position())}, nil
}

// Reference | Reference [ Expression ] | Reference ( ArgumentList? )
func (parser *Parser) parseReferenceExpression() (Expression, error) {
	start := parser.token.pos
	ref, err := parser.parseReference()
	if err != nil {
		return nil, err
	}
	switch parser.token.tp {
	case LeftSquareBracketTP:
		parser.stepForward()
		index, err := parser.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err = parser.expectToken(RightSquareBracketTP); err != nil {
			return nil, err
		}
		return &IndexExpression{Ref: ref, Index: index, Pos: span(start, parser.previousPos)}, nil
	case LeftParentThesesTP:
		args, err := parser.parseArguments()
		if err != nil {
			return nil, err
		}
		return &CallExpression{MethodRef: ref, Args: args, Pos: span(start, parser.previousPos)}, nil
	}
	return &RefExpression{Ref: ref, Pos: ref.Position()}, nil
}

// new ( id ( ) | int [ Expression ] | id [ Expression ] )
func (parser *Parser) parseNewExpression() (Expression, error) {
	start := parser.token.pos
	parser.stepForward()
	var elementType TypeDenoter
	switch parser.token.tp {
	case IntTP:
		elementType = newBaseType(IntTypeKind, parser.token.pos)
		parser.stepForward()
	case IdentifierTP:
		name, _ := parser.parseIdentifier()
		classType := &ClassType{ClassName: name}
		if parser.matchToken(LeftParentThesesTP) {
			parser.stepForward()
			if _, err := parser.expectToken(RightParentThesesTP); err != nil {
				return nil, err
			}
			return &NewObjectExpression{Class: classType, Pos: span(start, parser.previousPos)}, nil
		}
		elementType = classType
	default:
		return nil, parser.makeError("expecting 'int' or a class name after 'new' but found '%s'", parser.token)
	}
	if _, err := parser.expectToken(LeftSquareBracketTP); err != nil {
		return nil, err
	}
	size, err := parser.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err = parser.expectToken(RightSquareBracketTP); err != nil {
		return nil, err
	}
	return &NewArrayExpression{ElementType: elementType, Size: size, Pos: span(start, parser.previousPos)}, nil
}
