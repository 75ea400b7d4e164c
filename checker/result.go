package checker

import (
	"sort"

	"github.com/risor-io/sanitizer/ast"
	"github.com/risor-io/sanitizer/syntax"
)

// Result is the outcome of a check. Exactly one of two states holds: an
// accepted result carries the root shape, node count and tree; a rejected
// result carries a non-empty list of violations.
type Result struct {
	shape      ast.Kind
	nodeCount  int
	tree       *ast.Node
	violations []syntax.Violation
}

func accept(shape ast.Kind, tree *ast.Node) *Result {
	return &Result{shape: shape, nodeCount: ast.Count(tree), tree: tree}
}

// reject orders the violations by source offset. The sort is stable, so
// violations at the same offset keep the order in which they were found.
func reject(tree *ast.Node, violations []syntax.Violation) *Result {
	if len(violations) == 0 {
		panic("checker: rejected result without violations")
	}
	sorted := append([]syntax.Violation(nil), violations...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Span.Offset() < sorted[j].Span.Offset()
	})
	r := &Result{violations: sorted}
	if tree != nil {
		r.nodeCount = ast.Count(tree)
	}
	return r
}

// Accepted reports whether the source passed every check.
func (r *Result) Accepted() bool {
	return len(r.violations) == 0
}

// Shape returns the kind of the accepted unit: Program for a statement list,
// or the kind of the function, class or expression node. It is Invalid for a
// rejected result.
func (r *Result) Shape() ast.Kind {
	return r.shape
}

// NodeCount returns the number of nodes in the parsed tree, or zero when the
// source did not parse.
func (r *Result) NodeCount() int {
	return r.nodeCount
}

// Tree returns the syntax tree of an accepted source, or nil.
func (r *Result) Tree() *ast.Node {
	return r.tree
}

// Violations returns a copy of the violations of a rejected source, ordered
// by source position.
func (r *Result) Violations() []syntax.Violation {
	return append([]syntax.Violation(nil), r.violations...)
}

// Err returns nil for an accepted result and otherwise an error listing
// every violation, one per line.
func (r *Result) Err() error {
	return syntax.Join(r.violations)
}

// Report is the serializable form of a Result.
type Report struct {
	Accepted   bool              `json:"accepted"`
	Shape      string            `json:"shape,omitempty"`
	NodeCount  int               `json:"node_count"`
	Violations []ReportViolation `json:"violations"`
}

// ReportViolation is the serializable form of a syntax.Violation. Line and
// column are 1-based; offset and length are in bytes.
type ReportViolation struct {
	Code     syntax.Code     `json:"code"`
	Message  string          `json:"message"`
	Name     string          `json:"name,omitempty"`
	Severity syntax.Severity `json:"severity"`
	Line     int             `json:"line"`
	Column   int             `json:"column"`
	Offset   int             `json:"offset"`
	Length   int             `json:"length"`
}

// Report returns the serializable form of the result.
func (r *Result) Report() Report {
	rep := Report{
		Accepted:   r.Accepted(),
		NodeCount:  r.nodeCount,
		Violations: make([]ReportViolation, 0, len(r.violations)),
	}
	if rep.Accepted {
		rep.Shape = r.shape.String()
	}
	for _, v := range r.violations {
		rep.Violations = append(rep.Violations, ReportViolation{
			Code:     v.Code,
			Message:  v.Message,
			Name:     v.Name,
			Severity: v.Severity,
			Line:     v.Span.Start.LineNumber(),
			Column:   v.Span.Start.ColumnNumber(),
			Offset:   v.Span.Offset(),
			Length:   v.Span.Length(),
		})
	}
	return rep
}
