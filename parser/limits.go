package parser

import (
	"fmt"

	"github.com/risor-io/sanitizer/token"
)

// LimitError reports input rejected before parsing because it is larger or
// more deeply nested than the caller allows. The grammar recurses once per
// nesting level, so such input is never handed to it.
type LimitError struct {
	// The error message
	Message string
	// Location where the limit was crossed
	Span token.Span
}

func (e *LimitError) Error() string {
	pos := e.Span.Start
	if pos.File != "" {
		return fmt.Sprintf("limit exceeded: %s at %s:%d:%d", e.Message, pos.File, pos.LineNumber(), pos.ColumnNumber())
	}
	return fmt.Sprintf("limit exceeded: %s at line %d, column %d", e.Message, pos.LineNumber(), pos.ColumnNumber())
}

// checkLimits applies the size and nesting bounds of cfg to input. A zero
// bound is not enforced.
func checkLimits(f *token.File, input string, cfg config) error {
	if cfg.maxSize > 0 && len(input) > cfg.maxSize {
		return &LimitError{
			Message: fmt.Sprintf("source size of %d bytes exceeds the limit of %d", len(input), cfg.maxSize),
			Span:    f.Span(cfg.maxSize, len(input)),
		}
	}
	if cfg.maxDepth > 0 {
		if at := nestingOverflow(input, cfg.maxDepth); at >= 0 {
			return &LimitError{
				Message: fmt.Sprintf("nesting depth exceeds the limit of %d", cfg.maxDepth),
				Span:    f.Span(at, at+1),
			}
		}
	}
	return nil
}

// nestingOverflow scans src for bracket nesting deeper than limit and returns
// the offset of the first bracket past the limit, or -1. Brackets inside
// strings, comments, template text and regular expression literals are not
// counted. A closing bracket only pops an opener of the same kind, so
// unbalanced closers cannot lower the count of what is still open.
func nestingOverflow(src string, limit int) int {
	s := scanner{src: src, last: -1}
	for s.pos < len(src) {
		if s.inTemplate() {
			s.templateText()
			continue
		}
		c := src[s.pos]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\v' || c == '\f':
			s.pos++
			continue
		case c == '/' && s.peek(1) == '/':
			s.skipLine()
			continue
		case c == '/' && s.peek(1) == '*':
			s.skipBlockComment()
			continue
		case c == '\'' || c == '"':
			s.skipString(c)
		case c == '`':
			s.push('`')
			s.pos++
		case c == '/' && s.regexAllowed():
			s.skipRegExp()
		case c == '(' || c == '[' || c == '{':
			if s.push(c) > limit {
				return s.pos
			}
			s.pos++
		case c == ')' || c == ']' || c == '}':
			s.close(c)
			s.pos++
		default:
			s.pos++
		}
		s.last = s.pos - 1
	}
	return -1
}

// scanner tracks the bracket stack of a nesting scan. A '`' entry marks
// template text and a '$' entry a substitution inside it. Brackets and
// substitutions count towards the depth; template text does not.
type scanner struct {
	src   string
	pos   int
	last  int // offset of the last significant byte, -1 before the first
	stack []byte
	depth int
}

func (s *scanner) peek(n int) byte {
	if s.pos+n < len(s.src) {
		return s.src[s.pos+n]
	}
	return 0
}

func (s *scanner) push(b byte) int {
	s.stack = append(s.stack, b)
	if b != '`' {
		s.depth++
	}
	return s.depth
}

func (s *scanner) pop() {
	if s.stack[len(s.stack)-1] != '`' {
		s.depth--
	}
	s.stack = s.stack[:len(s.stack)-1]
}

func (s *scanner) inTemplate() bool {
	return len(s.stack) > 0 && s.stack[len(s.stack)-1] == '`'
}

func (s *scanner) close(c byte) {
	if len(s.stack) == 0 {
		return
	}
	switch top := s.stack[len(s.stack)-1]; {
	case c == ')' && top == '(', c == ']' && top == '[', c == '}' && top == '{':
		s.pop()
	case c == '}' && top == '$':
		// The substitution ends and the template text resumes.
		s.pop()
	}
}

// templateText consumes template characters up to the closing backquote or
// the start of a substitution.
func (s *scanner) templateText() {
	for s.pos < len(s.src) {
		switch s.src[s.pos] {
		case '\\':
			s.pos += 2
		case '`':
			s.pop()
			s.last = s.pos
			s.pos++
			return
		case '$':
			if s.peek(1) == '{' {
				s.push('$')
				s.pos += 2
				s.last = s.pos - 1
				return
			}
			s.pos++
		default:
			s.pos++
		}
	}
}

func (s *scanner) skipLine() {
	for s.pos < len(s.src) && s.src[s.pos] != '\n' {
		s.pos++
	}
}

func (s *scanner) skipBlockComment() {
	s.pos += 2
	for s.pos < len(s.src) {
		if s.src[s.pos] == '*' && s.peek(1) == '/' {
			s.pos += 2
			return
		}
		s.pos++
	}
}

// skipString consumes a quoted string, stopping early at an unescaped line
// break.
func (s *scanner) skipString(quote byte) {
	s.pos++
	for s.pos < len(s.src) {
		switch s.src[s.pos] {
		case '\\':
			s.pos += 2
			continue
		case quote, '\n':
			s.pos++
			return
		}
		s.pos++
	}
}

// skipRegExp consumes a regular expression literal. A literal cannot span
// lines, so when no closing slash is found on the line the slash is treated
// as division and only it is consumed.
func (s *scanner) skipRegExp() {
	start := s.pos
	class := false
	for i := s.pos + 1; i < len(s.src); i++ {
		switch s.src[i] {
		case '\\':
			i++
		case '[':
			class = true
		case ']':
			class = false
		case '/':
			if !class {
				s.pos = i + 1
				return
			}
		case '\n', '\r':
			s.pos = start + 1
			return
		}
	}
	s.pos = start + 1
}

// regexKeywords may directly precede a regular expression literal.
var regexKeywords = map[string]bool{
	"return": true, "typeof": true, "instanceof": true, "in": true, "of": true,
	"new": true, "delete": true, "void": true, "throw": true, "case": true,
	"do": true, "else": true, "yield": true, "await": true,
}

// regexAllowed reports whether the slash at pos starts a regular expression
// rather than a division. Ambiguous positions are read as division so that
// the bytes after the slash are still scanned.
func (s *scanner) regexAllowed() bool {
	if s.last < 0 {
		return true
	}
	prev := s.src[s.last]
	switch {
	case prev == ')' || prev == ']' || prev == '}' || prev == '/':
		return false
	case prev == '\'' || prev == '"' || prev == '`':
		return false
	case prev == '+' || prev == '-':
		// a++ / b
		return s.last == 0 || s.src[s.last-1] != prev
	case isWordByte(prev):
		start := s.last
		for start > 0 && isWordByte(s.src[start-1]) {
			start--
		}
		if !regexKeywords[s.src[start:s.last+1]] {
			return false
		}
		// A keyword read as a member name, as in x.return / y.
		before := start - 1
		for before >= 0 && (s.src[before] == ' ' || s.src[before] == '\t') {
			before--
		}
		return before < 0 || s.src[before] != '.'
	}
	return true
}

func isWordByte(b byte) bool {
	return b == '_' || b == '$' || b >= 0x80 ||
		'a' <= b && b <= 'z' || 'A' <= b && b <= 'Z' || '0' <= b && b <= '9'
}
