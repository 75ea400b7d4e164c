package checker

import (
	"github.com/risor-io/sanitizer/ast"
	"github.com/risor-io/sanitizer/policy"
	"github.com/risor-io/sanitizer/syntax"
)

// ClassShape constrains the single class a Class checker accepts.
type ClassShape struct {
	// Name is the required class name. Empty accepts any name.
	Name string
}

// Class accepts exactly one class declaration or class expression.
type Class struct {
	base
	shape ClassShape
}

// NewClass returns a class checker for the policy and shape.
func NewClass(p *policy.Policy, shape ClassShape, opts ...Option) *Class {
	return &Class{base: newBase("class", p, opts), shape: shape}
}

// Validate implements Checker. Anonymous class expressions are parsed in
// expression mode, like anonymous functions.
func (c *Class) Validate(source string) *Result {
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
		return c.finish(ast.Invalid, tree, []syntax.Violation{unitViolation(stmts, "class")})
	}

	cl := classOf(stmts[0])
	if cl == nil {
		return c.finish(ast.Invalid, tree, []syntax.Violation{
			syntax.NewViolation(syntax.UnexpectedTopLevelShape, stmts[0],
				"expected a class, found %s", describe(stmts[0])),
		})
	}

	var violations []syntax.Violation
	if c.shape.Name != "" && cl.Name != c.shape.Name {
		violations = append(violations, syntax.NewViolation(syntax.DisallowedStatementShape, cl,
			"class name %q does not match the required name %q", cl.Name, c.shape.Name))
	}
	return c.finish(cl.Kind, tree, violations)
}

func classOf(stmt *ast.Node) *ast.Node {
	if stmt.Kind == ast.ClassDeclaration {
		return stmt
	}
	if expr := expressionOf(stmt); expr != nil && expr.Kind == ast.Class {
		return expr
	}
	return nil
}
