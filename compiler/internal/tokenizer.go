package internal

import (
	"bufio"
	"fmt"
	"io"

	"github.com/xiaobogaga/minijava/util"
)

// A lazy tokenizer for miniJava.

// miniJava has those elements:
// * KeyWord: class, void, public, private, static, int, boolean, this, return, if, while, new, else,
//            true, false, null.
// * Symbol: {, }, (, ), [, ], ., ,, ;, =.
// * Operator: +, -, *, /, <, <=, >, >=, ==, !=, &&, ||, !.
// * Constant: integer.
// * Identifier: letters, digits, underscore, starting with a letter.
// * Comment: /**/, //.

type TokenType int

const (
	EndOfTextTP          TokenType = iota
	IdentifierTP                   // varA
	IntegerTP                      // 1010
	TrueTP                         // true
	FalseTP                        // false
	NullTP                         // null
	DotTP                          // .
	CommaTP                        // ,
	SemiColonTP                    // ;
	LeftParentThesesTP             // (
	RightParentThesesTP            // )
	LeftSquareBracketTP            // [
	RightSquareBracketTP           // ]
	LeftBraceTP                    // {
	RightBraceTP                   // }
	AssignTP                       // =
	ClassTP                        // class
	VoidTP                         // void
	PublicTP                       // public
	PrivateTP                      // private
	StaticTP                       // static
	IntTP                          // int
	BooleanTP                      // boolean
	ThisTP                         // this
	ReturnTP                       // return
	IfTP                           // if
	WhileTP                        // while
	NewTP                          // new
	ElseTP                         // else
	BinaryOpTP                     // + - * / < <= > >= == != && ||
	UnaryOpTP                      // !
	ErrorTP
)

var tokenTypeNames = map[TokenType]string{
	EndOfTextTP: "end of text", IdentifierTP: "identifier", IntegerTP: "integer", TrueTP: "true",
	FalseTP: "false", NullTP: "null", DotTP: ".", CommaTP: ",", SemiColonTP: ";", LeftParentThesesTP: "(",
	RightParentThesesTP: ")", LeftSquareBracketTP: "[", RightSquareBracketTP: "]", LeftBraceTP: "{",
	RightBraceTP: "}", AssignTP: "=", ClassTP: "class", VoidTP: "void", PublicTP: "public",
	PrivateTP: "private", StaticTP: "static", IntTP: "int", BooleanTP: "boolean", ThisTP: "this",
	ReturnTP: "return", IfTP: "if", WhileTP: "while", NewTP: "new", ElseTP: "else",
	BinaryOpTP: "binary operator", UnaryOpTP: "unary operator", ErrorTP: "error",
}

func (tp TokenType) String() string {
	return tokenTypeNames[tp]
}

// keyWordTokenTPMap is the mapping from identifier to the corresponding TokenTP.
var keyWordTokenTPMap = map[string]TokenType{
	"class":   ClassTP,
	"void":    VoidTP,
	"public":  PublicTP,
	"private": PrivateTP,
	"static":  StaticTP,
	"int":     IntTP,
	"boolean": BooleanTP,
	"this":    ThisTP,
	"return":  ReturnTP,
	"if":      IfTP,
	"while":   WhileTP,
	"new":     NewTP,
	"else":    ElseTP,
	"true":    TrueTP,
	"false":   FalseTP,
	"null":    NullTP,
}

// simpleSymbolTokenTPMap is the mapping from single character symbols to the corresponding TokenTP.
var simpleSymbolTokenTPMap = map[byte]TokenType{
	'{': LeftBraceTP,
	'}': RightBraceTP,
	'(': LeftParentThesesTP,
	')': RightParentThesesTP,
	'[': LeftSquareBracketTP,
	']': RightSquareBracketTP,
	'.': DotTP,
	',': CommaTP,
	';': SemiColonTP,
	'+': BinaryOpTP,
	'-': BinaryOpTP,
	'*': BinaryOpTP,
}

// SourcePosition is a range of source lines.
type SourcePosition struct {
	Start  int
	Finish int
}

func (pos SourcePosition) String() string {
	if pos.Start == pos.Finish {
		return fmt.Sprintf("line %d", pos.Start)
	}
	return fmt.Sprintf("lines %d-%d", pos.Start, pos.Finish)
}

// span is the smallest position covering both from and to.
func span(from SourcePosition, to SourcePosition) SourcePosition {
	return SourcePosition{Start: from.Start, Finish: to.Finish}
}

type Token struct {
	content string
	tp      TokenType
	pos     SourcePosition
}

func (t *Token) String() string {
	if t.tp == EndOfTextTP {
		return t.tp.String()
	}
	return t.content
}

type Tokenizer struct {
	reader      *bufio.Reader
	reporter    *ErrorReporter
	line        []byte
	currentPos  int
	currentLine int
	eof         bool
}

func NewTokenizer(rd io.Reader, reporter *ErrorReporter) *Tokenizer {
	return &Tokenizer{reader: bufio.NewReader(rd), reporter: reporter}
}

// Scan returns the next token of the source. At the end of input it returns an
// EndOfTextTP token, on every call from then on.
func (tokenizer *Tokenizer) Scan() *Token {
	if errToken := tokenizer.skipSpaceAndComments(); errToken != nil {
		return errToken
	}
	if tokenizer.eof {
		return tokenizer.makeToken(EndOfTextTP, "")
	}
	c := tokenizer.line[tokenizer.currentPos]
	if tp, ok := simpleSymbolTokenTPMap[c]; ok {
		tokenizer.currentPos++
		return tokenizer.makeToken(tp, string(c))
	}
	switch c {
	case '/':
		tokenizer.currentPos++
		return tokenizer.makeToken(BinaryOpTP, "/")
	case '<', '>':
		return tokenizer.tokenOptionalEqual(c, BinaryOpTP, BinaryOpTP)
	case '=':
		return tokenizer.tokenOptionalEqual(c, AssignTP, BinaryOpTP)
	case '!':
		return tokenizer.tokenOptionalEqual(c, UnaryOpTP, BinaryOpTP)
	case '&', '|':
		return tokenizer.tokenDoubled(c)
	}
	if util.IsNumber(c) {
		return tokenizer.tokenNumber()
	}
	if util.IsLetter(c) {
		return tokenizer.tokenKeywordOrIdentifier()
	}
	tokenizer.currentPos++
	return tokenizer.makeError(string(c), "unrecognized character")
}

func (tokenizer *Tokenizer) makeToken(tp TokenType, content string) *Token {
	return &Token{
		content: content,
		tp:      tp,
		pos:     SourcePosition{Start: tokenizer.currentLine, Finish: tokenizer.currentLine},
	}
}

func (tokenizer *Tokenizer) makeError(near string, msg string) *Token {
	token := tokenizer.makeToken(ErrorTP, near)
	tokenizer.reporter.ReportError(fmt.Sprintf("Scan error: %s near %q", msg, near), token.pos)
	return token
}

// nextLine loads the next source line. It sets eof once the input is exhausted.
func (tokenizer *Tokenizer) nextLine() {
	line, err := tokenizer.reader.ReadBytes('\n')
	if len(line) == 0 && err != nil {
		tokenizer.eof = true
		tokenizer.line, tokenizer.currentPos = nil, 0
		return
	}
	tokenizer.currentLine++
	tokenizer.line, tokenizer.currentPos = line, 0
}

func (tokenizer *Tokenizer) hasRemainCharacters() bool {
	return tokenizer.currentPos < len(tokenizer.line)
}

func (tokenizer *Tokenizer) peek(offset int) (byte, bool) {
	if tokenizer.currentPos+offset >= len(tokenizer.line) {
		return 0, false
	}
	return tokenizer.line[tokenizer.currentPos+offset], true
}

// skipSpaceAndComments steps over blanks and comments until it reaches the start of a
// token or the end of input. An unterminated block comment yields an error token.
func (tokenizer *Tokenizer) skipSpaceAndComments() *Token {
	for !tokenizer.eof {
		if !tokenizer.hasRemainCharacters() {
			tokenizer.nextLine()
			continue
		}
		c := tokenizer.line[tokenizer.currentPos]
		if util.IsSpace(c) {
			tokenizer.currentPos++
			continue
		}
		if c != '/' {
			return nil
		}
		next, _ := tokenizer.peek(1)
		switch next {
		case '/':
			tokenizer.currentPos = len(tokenizer.line)
		case '*':
			if errToken := tokenizer.skipBlockComment(); errToken != nil {
				return errToken
			}
		default:
			return nil
		}
	}
	return nil
}

func (tokenizer *Tokenizer) skipBlockComment() *Token {
	openLine := tokenizer.currentLine
	tokenizer.currentPos += 2
	for {
		for tokenizer.hasRemainCharacters() {
			if next, _ := tokenizer.peek(1); tokenizer.line[tokenizer.currentPos] == '*' && next == '/' {
				tokenizer.currentPos += 2
				return nil
			}
			tokenizer.currentPos++
		}
		tokenizer.nextLine()
		if tokenizer.eof {
			token := &Token{content: "/*", tp: ErrorTP, pos: SourcePosition{Start: openLine, Finish: openLine}}
			tokenizer.reporter.ReportError("Scan error: unterminated comment", token.pos)
			return token
		}
	}
}

// tokenOptionalEqual scans c or c followed by '='.
func (tokenizer *Tokenizer) tokenOptionalEqual(c byte, single TokenType, withEqual TokenType) *Token {
	tokenizer.currentPos++
	if next, ok := tokenizer.peek(0); ok && next == '=' {
		tokenizer.currentPos++
		return tokenizer.makeToken(withEqual, string([]byte{c, '='}))
	}
	return tokenizer.makeToken(single, string(c))
}

// tokenDoubled scans && and ||, a single & or | is not part of the language.
func (tokenizer *Tokenizer) tokenDoubled(c byte) *Token {
	tokenizer.currentPos++
	if next, ok := tokenizer.peek(0); ok && next == c {
		tokenizer.currentPos++
		return tokenizer.makeToken(BinaryOpTP, string([]byte{c, c}))
	}
	return tokenizer.makeError(string(c), "incomplete operator")
}

func (tokenizer *Tokenizer) tokenNumber() *Token {
	startPos := tokenizer.currentPos
	for tokenizer.hasRemainCharacters() && util.IsNumber(tokenizer.line[tokenizer.currentPos]) {
		tokenizer.currentPos++
	}
	return tokenizer.makeToken(IntegerTP, string(tokenizer.line[startPos:tokenizer.currentPos]))
}

func (tokenizer *Tokenizer) tokenKeywordOrIdentifier() *Token {
	startPos := tokenizer.currentPos
	for tokenizer.hasRemainCharacters() && util.IsLetterOrUnderscoreOrNumber(tokenizer.line[tokenizer.currentPos]) {
		tokenizer.currentPos++
	}
	word := string(tokenizer.line[startPos:tokenizer.currentPos])
	if tp, isKeyWord := keyWordTokenTPMap[word]; isKeyWord {
		return tokenizer.makeToken(tp, word)
	}
	return tokenizer.makeToken(IdentifierTP, word)
}
