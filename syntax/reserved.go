package syntax

import "github.com/risor-io/sanitizer/ast"

// checkBindings applies the reserved-name rules to the names node declares
// or assigns. topLevel is set for statements directly under the program.
func (w *walker) checkBindings(node *ast.Node, topLevel bool) {
	switch node.Kind {
	case ast.VariableDeclaration:
		for _, child := range node.Children {
			if child.Kind != ast.Keyword {
				w.declares(child, false)
			}
		}

	case ast.FunctionDeclaration, ast.Function, ast.ArrowFunction:
		name, params := signature(node)
		if name != nil {
			w.declare(name, node.Kind == ast.FunctionDeclaration && topLevel)
		}
		for _, p := range params {
			w.declares(p, false)
		}

	case ast.ClassDeclaration, ast.Class:
		if node.Name != "" {
			if name := firstNonKeyword(node.Children); name != nil && name.Kind == ast.Identifier {
				w.declare(name, false)
			}
		}

	case ast.Catch:
		if len(node.Children) > 2 {
			w.declares(node.Children[1], false)
		}

	case ast.Assign:
		if len(node.Children) > 0 {
			w.assigns(node.Children[0])
		}

	case ast.Update:
		if len(node.Children) > 0 {
			w.assigns(node.Children[len(node.Children)-1])
		}

	case ast.ForIn, ast.ForOf:
		// for (x in o) assigns x; a declaration is handled on its own.
		if into := firstNonKeyword(node.Children); into != nil && into.Kind != ast.VariableDeclaration {
			w.assigns(into)
		}
	}
}

func (w *walker) declares(target *ast.Node, topLevelFunction bool) {
	for _, name := range boundNames(target) {
		w.declare(name, topLevelFunction)
	}
}

func (w *walker) declare(name *ast.Node, topLevelFunction bool) {
	switch {
	case w.policy.IsReservedFunction(name.Name):
		if !topLevelFunction {
			w.reportName(ReservedIdentifier, name, name.Name, "reserved function %q may only be declared as a top-level function")
		}
	case w.policy.IsBuiltInObject(name.Name), w.policy.IsReservedIdentifier(name.Name):
		w.reportName(ReservedIdentifier, name, name.Name, "declaration of reserved identifier %q is not allowed")
	}
}

func (w *walker) assigns(target *ast.Node) {
	for _, name := range boundNames(target) {
		reserved := w.policy.IsBuiltInObject(name.Name) ||
			w.policy.IsReservedIdentifier(name.Name) ||
			w.policy.IsReservedFunction(name.Name)
		if reserved && !w.policy.IsMutableIdentifier(name.Name) {
			w.reportName(ReservedIdentifier, name, name.Name, "assignment to reserved identifier %q is not allowed")
		}
	}
}

// boundNames returns the identifiers a declaration or assignment target
// binds, looking through destructuring patterns, defaults and rest elements.
// Member targets such as a.b bind no name.
func boundNames(target *ast.Node) []*ast.Node {
	if target == nil {
		return nil
	}
	switch target.Kind {
	case ast.Identifier:
		return []*ast.Node{target}
	case ast.Binding, ast.Assign, ast.Spread:
		if len(target.Children) > 0 {
			return boundNames(target.Children[0])
		}
	case ast.ArrayPattern, ast.ObjectPattern:
		var names []*ast.Node
		for _, child := range target.Children {
			names = append(names, boundNames(child)...)
		}
		return names
	case ast.Property:
		// {a} and {a = 1} bind their first child; {a: b} and {[k]: b} bind
		// their value, which is the last.
		if len(target.Children) == 0 {
			return nil
		}
		if target.Computed {
			return boundNames(target.Children[len(target.Children)-1])
		}
		return boundNames(target.Children[0])
	}
	return nil
}

// signature splits a function's children into its name, if any, and its
// parameters. A rest parameter is the Spread following the counted ones.
func signature(fn *ast.Node) (*ast.Node, []*ast.Node) {
	rest := fn.Children
	for len(rest) > 0 && rest[0].Kind == ast.Keyword {
		rest = rest[1:]
	}
	var name *ast.Node
	if fn.Kind != ast.ArrowFunction && fn.Name != "" && len(rest) > 0 && rest[0].Kind == ast.Identifier {
		name, rest = rest[0], rest[1:]
	}
	n := fn.Arity
	if n > len(rest) {
		n = len(rest)
	}
	params := rest[:n:n]
	if n < len(rest) && rest[n].Kind == ast.Spread {
		params = append(params, rest[n])
	}
	return name, params
}

func firstNonKeyword(nodes []*ast.Node) *ast.Node {
	for _, n := range nodes {
		if n.Kind != ast.Keyword {
			return n
		}
	}
	return nil
}
