package internal

import (
	"fmt"
	"io"
)

// ErrorReporter collects diagnostics from every pass and prints them as they arrive.
type ErrorReporter struct {
	out      io.Writer
	messages []string
}

func NewErrorReporter(out io.Writer) *ErrorReporter {
	return &ErrorReporter{out: out}
}

func (reporter *ErrorReporter) ReportError(msg string, pos SourcePosition) {
	line := fmt.Sprintf("*** line %d: %s", pos.Start, msg)
	reporter.messages = append(reporter.messages, line)
	if reporter.out != nil {
		fmt.Fprintln(reporter.out, line)
	}
}

func (reporter *ErrorReporter) HasErrors() bool {
	return len(reporter.messages) > 0
}

func (reporter *ErrorReporter) ErrorCount() int {
	return len(reporter.messages)
}

// Messages returns every reported diagnostic in order.
func (reporter *ErrorReporter) Messages() []string {
	return reporter.messages
}
