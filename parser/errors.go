package parser

import (
	"errors"
	"fmt"

	jsparser "github.com/dop251/goja/parser"
	"github.com/risor-io/sanitizer/token"
)

// Error is a syntax error reported while parsing. It carries the location the
// underlying grammar reported, translated into the coordinates of the input
// the caller supplied.
type Error struct {
	// The error message
	Message string
	// Location of the offending text
	Span token.Span
	// The wrapped error
	cause error
}

func (e *Error) Error() string {
	pos := e.Span.Start
	if pos.File != "" {
		return fmt.Sprintf("syntax error: %s at %s:%d:%d", e.Message, pos.File, pos.LineNumber(), pos.ColumnNumber())
	}
	return fmt.Sprintf("syntax error: %s at line %d, column %d", e.Message, pos.LineNumber(), pos.ColumnNumber())
}

func (e *Error) Unwrap() error {
	return e.cause
}

// StartPosition returns the position where the error begins.
func (e *Error) StartPosition() token.Position {
	return e.Span.Start
}

// EndPosition returns the position immediately after the error.
func (e *Error) EndPosition() token.Position {
	return e.Span.End
}

// newError translates an error returned by the JavaScript grammar. shift is
// the number of bytes the parser saw on the first line before the caller's
// input began.
func newError(f *token.File, err error, shift int) *Error {
	var first *jsparser.Error
	var list jsparser.ErrorList
	switch {
	case errors.As(err, &list) && len(list) > 0:
		first = list[0]
	case errors.As(err, &first):
	default:
		return &Error{Message: err.Error(), Span: f.Span(0, 0), cause: err}
	}
	line, column := first.Position.Line, first.Position.Column
	if line <= 1 {
		line = 1
		column -= shift
	}
	offset := f.Offset(line, column)
	return &Error{
		Message: first.Message,
		Span:    f.Span(offset, offset+1),
		cause:   err,
	}
}
