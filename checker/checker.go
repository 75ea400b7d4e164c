// Package checker binds a policy to the shape of input a host expects and
// exposes the single operation hosts call: Validate.
//
// Every checker parses the source, verifies its top-level shape, walks the
// tree with the policy validator and any extra validators, and returns a
// Result. Checkers hold no mutable state and may be shared between
// goroutines.
package checker

import (
	"errors"

	"github.com/risor-io/sanitizer/ast"
	"github.com/risor-io/sanitizer/parser"
	"github.com/risor-io/sanitizer/policy"
	"github.com/risor-io/sanitizer/syntax"
	"github.com/risor-io/sanitizer/token"
	"github.com/rs/zerolog"
)

// Checker validates source text of one expected shape.
type Checker interface {
	// Validate parses and checks source. It never returns nil and never
	// panics on malformed input.
	Validate(source string) *Result
}

// Option is a configuration function for a checker.
type Option func(*options)

type options struct {
	parser     parser.Parser
	validators []syntax.Validator
	logger     zerolog.Logger
	filename   string
}

// WithParser replaces the default JavaScript parser.
func WithParser(p parser.Parser) Option {
	return func(o *options) {
		o.parser = p
	}
}

// WithValidators adds validators that run after the policy validator. Their
// violations are merged with the policy's.
func WithValidators(validators ...syntax.Validator) Option {
	return func(o *options) {
		o.validators = append(o.validators, validators...)
	}
}

// WithLogger sets the logger that receives one debug event per decision.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithFilename sets the file name recorded in violation positions.
func WithFilename(filename string) Option {
	return func(o *options) {
		o.filename = filename
	}
}

// base holds what every checker shares.
type base struct {
	name      string
	policy    *policy.Policy
	parser    parser.Parser
	validator syntax.Validator
	logger    zerolog.Logger
	filename  string
}

func newBase(name string, p *policy.Policy, opts []Option) base {
	o := options{parser: parser.New(), logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(&o)
	}
	validators := append([]syntax.Validator{syntax.NewPolicyValidator(p)}, o.validators...)
	return base{
		name:      name,
		policy:    p,
		parser:    o.parser,
		validator: syntax.Chain(validators...),
		logger:    o.logger.With().Str("checker", name).Str("policy", p.Name()).Logger(),
		filename:  o.filename,
	}
}

// Policy returns the policy the checker enforces.
func (b *base) Policy() *policy.Policy {
	return b.policy
}

func (b *base) parseOptions() []parser.Option {
	return []parser.Option{
		parser.WithFilename(b.filename),
		parser.WithMaxDepth(b.policy.MaxDepth()),
		parser.WithMaxSize(b.policy.MaxSourceSize()),
	}
}

func (b *base) parse(source string) (*ast.Node, error) {
	return b.parser.Parse(source, b.parseOptions()...)
}

func (b *base) parseExpression(source string) (*ast.Node, error) {
	return b.parser.ParseExpression(source, b.parseOptions()...)
}

// finish runs the validators over tree and builds the result, merging in the
// shape violations found by the caller.
func (b *base) finish(shape ast.Kind, tree *ast.Node, shapeViolations []syntax.Violation) *Result {
	violations := append(shapeViolations, b.validator.Validate(tree)...)
	var result *Result
	if len(violations) == 0 {
		result = accept(shape, tree)
	} else {
		result = reject(tree, violations)
	}
	b.log(result)
	return result
}

// syntaxError rejects source the parser refused. Input refused for its size
// or nesting is reported as a resource violation.
func (b *base) syntaxError(source string, err error) *Result {
	var perr *parser.Error
	var lerr *parser.LimitError
	code := syntax.SyntaxError
	message := err.Error()
	span := token.NewFile(b.filename, source).Span(0, 0)
	switch {
	case errors.As(err, &lerr):
		code, message, span = syntax.ResourceLimitExceeded, lerr.Message, lerr.Span
	case errors.As(err, &perr):
		message, span = perr.Message, perr.Span
	}
	result := reject(nil, []syntax.Violation{{
		Code:     code,
		Message:  message,
		Span:     span,
		Severity: syntax.SeverityError,
	}})
	b.log(result)
	return result
}

func (b *base) empty(source string) *Result {
	f := token.NewFile(b.filename, source)
	result := reject(nil, []syntax.Violation{{
		Code:     syntax.EmptySource,
		Message:  "source contains no code",
		Span:     f.Span(0, f.Size()),
		Severity: syntax.SeverityError,
	}})
	b.log(result)
	return result
}

func (b *base) log(r *Result) {
	event := b.logger.Debug().
		Bool("accepted", r.Accepted()).
		Int("node_count", r.NodeCount())
	if r.Accepted() {
		event = event.Stringer("shape", r.Shape())
	} else {
		first := r.violations[0]
		event = event.
			Int("violations", len(r.violations)).
			Stringer("first_code", first.Code).
			Stringer("first_pos", first.Span.Start)
	}
	event.Msg("validated source")
}

// unitViolation reports a top-level statement count other than one.
func unitViolation(stmts []*ast.Node, want string) syntax.Violation {
	return syntax.NewViolation(syntax.UnexpectedTopLevelShape, stmts[1],
		"expected exactly one %s, found %d top-level statements", want, len(stmts))
}

// expressionOf returns the expression wrapped by an expression statement.
func expressionOf(stmt *ast.Node) *ast.Node {
	if stmt.Kind != ast.ExpressionStatement || len(stmt.Children) != 1 {
		return nil
	}
	return stmt.Children[0]
}
