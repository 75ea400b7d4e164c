package checker

import (
	"github.com/risor-io/sanitizer/ast"
	"github.com/risor-io/sanitizer/policy"
	"github.com/risor-io/sanitizer/syntax"
)

// AnyArity disables the parameter count check of a FunctionShape.
const AnyArity = -1

// FunctionShape constrains the single function a Function checker accepts.
type FunctionShape struct {
	// Name is the required function name. Empty accepts any name, including
	// anonymous functions.
	Name string
	// Arity is the required number of declared parameters, not counting a
	// rest parameter. AnyArity accepts any count.
	Arity int
}

// Function accepts exactly one function: a declaration, a function
// expression or an arrow function.
type Function struct {
	base
	shape FunctionShape
}

// NewFunction returns a function checker for the policy and shape.
func NewFunction(p *policy.Policy, shape FunctionShape, opts ...Option) *Function {
	return &Function{base: newBase("function", p, opts), shape: shape}
}

// Shape returns the constraint the checker enforces.
func (c *Function) Shape() FunctionShape {
	return c.shape
}

// Validate implements Checker. Source that does not parse as a script, such
// as an anonymous `function (a) {}`, is parsed again as an expression; if
// that also fails the original syntax error is reported.
func (c *Function) Validate(source string) *Result {
	tree, err := c.parse(source)
	if err != nil {
		exprTree, exprErr := c.parseExpression(source)
		if exprErr != nil {
			return c.syntaxError(source, err)
		}
		tree = exprTree
	}

	stmts := tree.Statements()
	switch {
	case len(stmts) == 0:
		return c.empty(source)
	case len(stmts) > 1:
		return c.finish(ast.Invalid, tree, []syntax.Violation{unitViolation(stmts, "function")})
	}

	fn := functionOf(stmts[0])
	if fn == nil {
		return c.finish(ast.Invalid, tree, []syntax.Violation{
			syntax.NewViolation(syntax.UnexpectedTopLevelShape, stmts[0],
				"expected a function, found %s", describe(stmts[0])),
		})
	}

	var violations []syntax.Violation
	if c.shape.Name != "" && fn.Name != c.shape.Name {
		violations = append(violations, syntax.NewViolation(syntax.DisallowedStatementShape, fn,
			"function name %q does not match the required name %q", fn.Name, c.shape.Name))
	}
	if c.shape.Arity >= 0 && fn.Arity != c.shape.Arity {
		violations = append(violations, syntax.NewViolation(syntax.DisallowedStatementShape, fn,
			"function declares %d parameters, %d required", fn.Arity, c.shape.Arity))
	}
	return c.finish(fn.Kind, tree, violations)
}

func functionOf(stmt *ast.Node) *ast.Node {
	if stmt.Kind == ast.FunctionDeclaration {
		return stmt
	}
	if expr := expressionOf(stmt); expr != nil && expr.Kind.IsFunction() {
		return expr
	}
	return nil
}

// describe names the construct a top-level statement holds.
func describe(stmt *ast.Node) string {
	if expr := expressionOf(stmt); expr != nil {
		return expr.Kind.String()
	}
	return stmt.Kind.String()
}
