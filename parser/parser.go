// Package parser turns JavaScript source text into the normalized syntax tree
// defined by package ast.
//
// The grammar itself is provided by github.com/dop251/goja. This package
// only drives it and translates its tree, so a syntax error is reported the
// same way regardless of which construct triggered it.
package parser

import (
	"fmt"

	jsparser "github.com/dop251/goja/parser"
	"github.com/risor-io/sanitizer/ast"
	"github.com/risor-io/sanitizer/token"
)

// Parser produces syntax trees. Implementations must be safe for concurrent
// use; the sanitizer shares one Parser across all checks.
type Parser interface {
	// Parse parses input as a script: a list of zero or more statements.
	Parse(input string, options ...Option) (*ast.Node, error)

	// ParseExpression parses input as a single parenthesized expression.
	// The result is a Program node whose statements wrap the expression.
	ParseExpression(input string, options ...Option) (*ast.Node, error)
}

// Option is a configuration function for a parse call.
type Option func(*config)

type config struct {
	filename string
	maxDepth int
	maxSize  int
}

// WithFilename sets the file name recorded in every position.
func WithFilename(filename string) Option {
	return func(c *config) {
		c.filename = filename
	}
}

// WithMaxDepth rejects input whose bracket nesting is deeper than depth with
// a *LimitError, before the grammar sees it. Zero disables the check.
func WithMaxDepth(depth int) Option {
	return func(c *config) {
		c.maxDepth = depth
	}
}

// WithMaxSize rejects input longer than size bytes with a *LimitError. Zero
// disables the check.
func WithMaxSize(size int) Option {
	return func(c *config) {
		c.maxSize = size
	}
}

// JavaScript is the Parser for ECMAScript source. The zero value is ready to
// use.
type JavaScript struct{}

// New returns the default JavaScript parser.
func New() *JavaScript {
	return &JavaScript{}
}

// Parse implements Parser.
func (JavaScript) Parse(input string, options ...Option) (*ast.Node, error) {
	return Parse(input, options...)
}

// ParseExpression implements Parser.
func (JavaScript) ParseExpression(input string, options ...Option) (*ast.Node, error) {
	return ParseExpression(input, options...)
}

// Parse the provided input as a JavaScript script and return the syntax tree.
// Syntax errors are returned as *Error and input over the configured limits
// as *LimitError.
func Parse(input string, options ...Option) (*ast.Node, error) {
	return parse(input, false, options)
}

// ParseExpression parses input as a single expression. The input is wrapped in
// parentheses before parsing so that anonymous function expressions and object
// literals are read as expressions rather than statements. Positions in the
// result refer to the unwrapped input.
func ParseExpression(input string, options ...Option) (*ast.Node, error) {
	return parse(input, true, options)
}

func parse(input string, expression bool, options []Option) (program *ast.Node, err error) {
	var cfg config
	for _, opt := range options {
		opt(&cfg)
	}
	file := token.NewFile(cfg.filename, input)
	if err := checkLimits(file, input, cfg); err != nil {
		return nil, err
	}

	text, shift := input, 0
	if expression {
		// The newline keeps a trailing line comment from swallowing the ")".
		text, shift = "("+input+"\n)", 1
	}

	defer func() {
		if r := recover(); r != nil {
			program = nil
			err = &Error{
				Message: fmt.Sprintf("parser failure: %v", r),
				Span:    file.Span(0, 0),
			}
		}
	}()

	tree, perr := jsparser.ParseFile(nil, cfg.filename, text, 0)
	if perr != nil {
		return nil, newError(file, perr, shift)
	}
	c := &converter{file: file, src: input, shift: shift}
	return c.program(tree), nil
}
