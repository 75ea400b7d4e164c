// Package token defines source positions and spans used to locate syntax nodes
// and violations within a script.
package token

import "fmt"

// Position points to a particular location in an input string.
type Position struct {
	Char      int    // byte offset within the file
	LineStart int    // byte offset of the start of the current line
	Line      int    // 0-indexed line number
	Column    int    // 0-indexed column number (bytes)
	File      string // filename
}

// LineNumber returns the 1-indexed line number for this position in the input.
func (p Position) LineNumber() int {
	return p.Line + 1
}

// ColumnNumber returns the 1-indexed column number for this position in the input.
func (p Position) ColumnNumber() int {
	return p.Column + 1
}

// IsValid returns true if this position has been set.
func (p Position) IsValid() bool {
	return p.File != "" || p.Line > 0 || p.Column > 0 || p.Char > 0
}

// String returns "line:column" using 1-indexed numbers, prefixed by the file
// name when one is known.
func (p Position) String() string {
	if p.File != "" {
		return fmt.Sprintf("%s:%d:%d", p.File, p.LineNumber(), p.ColumnNumber())
	}
	return fmt.Sprintf("%d:%d", p.LineNumber(), p.ColumnNumber())
}

// NoPos is the zero value Position, representing an invalid/unset position.
var NoPos = Position{}

// Span is a half-open range of source text. End is the position of the first
// byte immediately after the range.
type Span struct {
	Start Position
	End   Position
}

// Offset returns the byte offset of the first byte of the span.
func (s Span) Offset() int {
	return s.Start.Char
}

// Length returns the number of bytes covered by the span.
func (s Span) Length() int {
	if s.End.Char < s.Start.Char {
		return 0
	}
	return s.End.Char - s.Start.Char
}

// Contains reports whether other lies entirely within s.
func (s Span) Contains(other Span) bool {
	return other.Start.Char >= s.Start.Char && other.End.Char <= s.End.Char
}
