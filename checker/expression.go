package checker

import (
	"github.com/risor-io/sanitizer/ast"
	"github.com/risor-io/sanitizer/policy"
	"github.com/risor-io/sanitizer/syntax"
)

// Expression accepts exactly one expression, such as a predicate or a
// computed value supplied by a user.
type Expression struct {
	base
}

// NewExpression returns a single-expression checker for the policy.
func NewExpression(p *policy.Policy, opts ...Option) *Expression {
	return &Expression{base: newBase("expression", p, opts)}
}

// Validate implements Checker.
func (c *Expression) Validate(source string) *Result {
	tree, err := c.parseExpression(source)
	if err != nil {
		// Whitespace and comments do not form an expression, but they are
		// empty input rather than a syntax error.
		if script, serr := c.parse(source); serr == nil && len(script.Statements()) == 0 {
			return c.empty(source)
		}
		return c.syntaxError(source, err)
	}

	stmts := tree.Statements()
	switch {
	case len(stmts) == 0:
		return c.empty(source)
	case len(stmts) > 1:
		return c.finish(ast.Invalid, tree, []syntax.Violation{unitViolation(stmts, "expression")})
	}

	expr := expressionOf(stmts[0])
	if expr == nil {
		return c.finish(ast.Invalid, tree, []syntax.Violation{
			syntax.NewViolation(syntax.UnexpectedTopLevelShape, stmts[0],
				"expected an expression, found %s", stmts[0].Kind),
		})
	}
	return c.finish(expr.Kind, tree, nil)
}
