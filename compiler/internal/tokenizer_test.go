package internal

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func scanAll(content string) ([]*Token, *ErrorReporter) {
	reporter := NewErrorReporter(nil)
	tokenizer := NewTokenizer(strings.NewReader(content), reporter)
	var tokens []*Token
	for {
		token := tokenizer.Scan()
		tokens = append(tokens, token)
		if token.tp == EndOfTextTP {
			return tokens, reporter
		}
	}
}

func TestTokenizer_Scan(t *testing.T) {
	content := `class A {
	// a line comment
	private static int[] x; /* a comment
	over two lines */ boolean b = !c != d && e <= 10 || f / g;
}`
	tokens, reporter := scanAll(content)
	assert.False(t, reporter.HasErrors())
	expected := []struct {
		Tp      TokenType
		Content string
		Line    int
	}{
		{ClassTP, "class", 1}, {IdentifierTP, "A", 1}, {LeftBraceTP, "{", 1},
		{PrivateTP, "private", 3}, {StaticTP, "static", 3}, {IntTP, "int", 3}, {LeftSquareBracketTP, "[", 3},
		{RightSquareBracketTP, "]", 3}, {IdentifierTP, "x", 3}, {SemiColonTP, ";", 3},
		{BooleanTP, "boolean", 4}, {IdentifierTP, "b", 4}, {AssignTP, "=", 4}, {UnaryOpTP, "!", 4},
		{IdentifierTP, "c", 4}, {BinaryOpTP, "!=", 4}, {IdentifierTP, "d", 4}, {BinaryOpTP, "&&", 4},
		{IdentifierTP, "e", 4}, {BinaryOpTP, "<=", 4}, {IntegerTP, "10", 4}, {BinaryOpTP, "||", 4},
		{IdentifierTP, "f", 4}, {BinaryOpTP, "/", 4}, {IdentifierTP, "g", 4}, {SemiColonTP, ";", 4},
		{RightBraceTP, "}", 5}, {EndOfTextTP, "", 5},
	}
	assert.Equal(t, len(expected), len(tokens))
	for i, data := range expected {
		if i >= len(tokens) {
			break
		}
		assert.Equal(t, data.Tp, tokens[i].tp, "token %d", i)
		assert.Equal(t, data.Content, tokens[i].content, "token %d", i)
		assert.Equal(t, data.Line, tokens[i].pos.Start, "token %d", i)
	}
}

func TestTokenizer_Operators(t *testing.T) {
	testData := []struct {
		Content string
		Tp      TokenType
	}{
		{Content: "+", Tp: BinaryOpTP},
		{Content: "-", Tp: BinaryOpTP},
		{Content: "*", Tp: BinaryOpTP},
		{Content: "<", Tp: BinaryOpTP},
		{Content: ">", Tp: BinaryOpTP},
		{Content: ">=", Tp: BinaryOpTP},
		{Content: "==", Tp: BinaryOpTP},
		{Content: "=", Tp: AssignTP},
		{Content: "!", Tp: UnaryOpTP},
		{Content: "true", Tp: TrueTP},
		{Content: "null", Tp: NullTP},
		{Content: "while", Tp: WhileTP},
		{Content: "while_1", Tp: IdentifierTP},
	}
	for _, data := range testData {
		tokens, reporter := scanAll(data.Content)
		assert.False(t, reporter.HasErrors(), data.Content)
		assert.Equal(t, data.Tp, tokens[0].tp, data.Content)
		assert.Equal(t, data.Content, tokens[0].content, data.Content)
	}
}

func TestTokenizer_EndOfTextRepeats(t *testing.T) {
	reporter := NewErrorReporter(nil)
	tokenizer := NewTokenizer(strings.NewReader("  // only a comment"), reporter)
	for i := 0; i < 3; i++ {
		assert.Equal(t, EndOfTextTP, tokenizer.Scan().tp)
	}
}

func TestTokenizer_Errors(t *testing.T) {
	testData := []struct {
		Content string
		Msg     string
	}{
		{Content: "a & b", Msg: "incomplete operator"},
		{Content: "a | b", Msg: "incomplete operator"},
		{Content: "x = #;", Msg: "unrecognized character"},
		{Content: "_x", Msg: "unrecognized character"},
		{Content: "a /* never closed\n b", Msg: "unterminated comment"},
	}
	for _, data := range testData {
		tokens, reporter := scanAll(data.Content)
		assert.True(t, reporter.HasErrors(), data.Content)
		found := false
		for _, token := range tokens {
			found = found || token.tp == ErrorTP
		}
		assert.True(t, found, data.Content)
		assert.Contains(t, reporter.Messages()[0], data.Msg)
		assert.True(t, strings.HasPrefix(reporter.Messages()[0], "*** line "), reporter.Messages()[0])
	}
}
