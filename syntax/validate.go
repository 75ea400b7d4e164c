package syntax

import (
	"github.com/risor-io/sanitizer/ast"
	"github.com/risor-io/sanitizer/policy"
)

// PolicyValidator validates a tree against a Policy.
type PolicyValidator struct {
	policy *policy.Policy
}

// NewPolicyValidator creates a validator for the given policy.
func NewPolicyValidator(p *policy.Policy) *PolicyValidator {
	if p == nil {
		panic("syntax: nil policy")
	}
	return &PolicyValidator{policy: p}
}

// Policy returns the policy the validator enforces.
func (v *PolicyValidator) Policy() *policy.Policy {
	return v.policy
}

// Validate walks the tree in pre-order and returns every violation in the
// order the offending nodes were visited. Policy breaches are returned as
// data; only a nil tree, which no parser produces, causes a panic.
//
// The walk is bounded by the policy's limits. A node deeper than MaxDepth is
// reported once and its subtree skipped. When more than MaxNodeCount nodes
// have been visited the overflow is reported once and the walk stops.
func (v *PolicyValidator) Validate(program *ast.Node) []Violation {
	if program == nil {
		panic("syntax: nil program")
	}
	w := &walker{policy: v.policy}
	w.visit(program, 0, false)
	return w.violations
}

// walker holds the state of a single Validate call.
type walker struct {
	policy     *policy.Policy
	count      int
	halted     bool
	violations []Violation
}

func (w *walker) report(code Code, node *ast.Node, format string, args ...any) {
	w.violations = append(w.violations, NewViolation(code, node, format, args...))
}

// reportName records a violation that names the rejected identifier,
// keyword, property or callee.
func (w *walker) reportName(code Code, node *ast.Node, name, format string) {
	v := NewViolation(code, node, format, name)
	v.Name = name
	w.violations = append(w.violations, v)
}

// contextualKeywords are reserved words the grammar reads as plain
// identifiers in some contexts, such as await outside an async function.
// They are still subject to the keyword layer.
var contextualKeywords = map[string]bool{
	"async": true, "await": true, "let": true, "static": true, "yield": true,
}

func (w *walker) visit(node *ast.Node, depth int, topLevel bool) {
	if node == nil || w.halted {
		return
	}
	w.count++
	if w.count > w.policy.MaxNodeCount() {
		w.report(ResourceLimitExceeded, node, "node count exceeds the limit of %d", w.policy.MaxNodeCount())
		w.halted = true
		return
	}
	if depth > w.policy.MaxDepth() {
		w.report(ResourceLimitExceeded, node, "nesting depth exceeds the limit of %d", w.policy.MaxDepth())
		return
	}
	if topLevel && !w.policy.IsTopLevelShapeAllowed(node.Kind) {
		w.report(UnexpectedTopLevelShape, node, "top-level %s is not allowed", node.Kind)
	}
	w.check(node)
	w.checkBindings(node, topLevel)

	childrenTopLevel := node.Kind == ast.Program && depth == 0
	for _, child := range node.Children {
		w.visit(child, depth+1, childrenTopLevel)
	}
}

func (w *walker) check(node *ast.Node) {
	switch node.Kind {
	case ast.Identifier:
		if contextualKeywords[node.Name] && !w.policy.IsKeywordAllowed(node.Name) {
			w.reportName(DisallowedKeyword, node, node.Name, "keyword %q is not allowed")
		}
		if !w.policy.IsIdentifierAllowed(node.Name) {
			w.reportName(DisallowedIdentifier, node, node.Name, "identifier %q is not allowed")
		}

	case ast.Keyword:
		if !w.policy.IsKeywordAllowed(node.Name) {
			w.reportName(DisallowedKeyword, node, node.Name, "keyword %q is not allowed")
		}

	case ast.MemberAccess:
		if !node.Computed && !w.policy.IsPropertyAllowed(node.Name) {
			w.reportName(DisallowedProperty, node, node.Name, "access to property %q is not allowed")
		}

	case ast.Property:
		if !node.Computed && !w.policy.IsPropertyAllowed(node.Name) {
			w.reportName(DisallowedProperty, node, node.Name, "definition of property %q is not allowed")
		}

	case ast.Bad, ast.Invalid:
		w.report(DisallowedStatementShape, node, "unsupported construct")
	}

	// Calls, new expressions and tagged templates share the callee rule.
	if node.Kind.IsCall() {
		w.checkCallee(node)
	}
}

func (w *walker) checkCallee(node *ast.Node) {
	if node.Computed {
		if !w.policy.AllowsDynamicCallees() {
			w.report(DisallowedCallee, node, "call target cannot be resolved statically")
		}
		return
	}
	if !w.policy.IsCalleeAllowed(node.Name) {
		w.reportName(DisallowedCallee, node, node.Name, "call to %q is not allowed")
	}
}
