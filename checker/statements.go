package checker

import (
	"github.com/risor-io/sanitizer/ast"
	"github.com/risor-io/sanitizer/policy"
)

// StatementList accepts zero or more top-level statements. The kind of each
// statement is checked against the policy's top-level shapes.
type StatementList struct {
	base
}

// NewStatementList returns a statement-list checker for the policy.
func NewStatementList(p *policy.Policy, opts ...Option) *StatementList {
	return &StatementList{base: newBase("statements", p, opts)}
}

// Validate implements Checker. Empty source is accepted.
func (c *StatementList) Validate(source string) *Result {
	tree, err := c.parse(source)
	if err != nil {
		return c.syntaxError(source, err)
	}
	return c.finish(ast.Program, tree, nil)
}
