package internal

import (
	"errors"
	"fmt"
	"io"

	"github.com/davecgh/go-spew/spew"
	"github.com/xiaobogaga/minijava/mjam"
)

// ErrInvalidProgram is returned by Compile when any pass reported an error.
var ErrInvalidProgram = errors.New("compiler: invalid miniJava program")

type Options struct {
	// Trace receives one progress line per pass when not nil.
	Trace io.Writer
	// DumpAST receives the parsed tree when not nil.
	DumpAST io.Writer
}

type Result struct {
	Package *Package
	Code    *mjam.Machine
}

func (options Options) trace(msg string) {
	if options.Trace != nil {
		fmt.Fprintln(options.Trace, "compiler: "+msg)
	}
}

// Compile runs scanning and parsing, identification, type checking and code
// generation over the program read from source. Diagnostics go to reporter.
func Compile(source io.Reader, reporter *ErrorReporter, options Options) (*Result, error) {
	options.trace("start parser")
	parser := NewParser(NewTokenizer(source, reporter), reporter)
	pkg, err := parser.Parse()
	if err != nil || reporter.HasErrors() {
		return nil, ErrInvalidProgram
	}
	if options.DumpAST != nil {
		DumpAST(options.DumpAST, pkg)
	}
	options.trace("start identification")
	bindings, err := NewIdentification(reporter).Identify(pkg)
	if err != nil {
		return nil, ErrInvalidProgram
	}
	options.trace("start type checker")
	checked := NewTypeChecker(reporter, bindings).Check(pkg)
	if reporter.HasErrors() {
		return nil, ErrInvalidProgram
	}
	options.trace("start generate codes")
	code, err := NewCodeGenerator(bindings).Generate(pkg, checked.Main)
	if err != nil {
		return nil, err
	}
	options.trace(fmt.Sprintf("generated %d instructions", code.NextInstrAddr()))
	return &Result{Package: pkg, Code: code}, nil
}

var astDumpConfig = spew.ConfigState{
	Indent:                  "  ",
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
}

// DumpAST writes a structural dump of the tree.
func DumpAST(w io.Writer, pkg *Package) {
	astDumpConfig.Fdump(w, pkg)
}
