// Package ast defines the normalized syntax tree that the sanitizer inspects.
//
// Front ends translate their grammar-specific trees into Nodes. A Node is a
// closed tagged variant: the Kind selects which of the optional fields carry
// meaning, and every rule in the validator is a single switch over Kind.
package ast

import (
	"fmt"

	"github.com/risor-io/sanitizer/token"
)

// Node represents a portion of the syntax tree. Trees are built once by a
// parser and only read afterwards.
type Node struct {
	// Kind is the node's tag.
	Kind Kind

	// Span locates the node in the source text.
	Span token.Span

	// Name carries the textual value of the node, depending on Kind:
	//   Identifier            the identifier
	//   Keyword               the reserved word
	//   MemberAccess          the accessed property name, if static
	//   Property              the defined property name, if static
	//   Call, New,
	//   TaggedTemplate        the resolved callee name, if static
	//   Function, Class, ...  the declared name, if any
	//   Literal               the literal's string value
	Name string

	// Computed is set when Name could not be determined statically, as in
	// obj[key] or f()().
	Computed bool

	// Arity is the number of declared parameters of a function node.
	Arity int

	// Children holds the child nodes in source order.
	Children []*Node
}

// Pos returns the position of the first character belonging to the node.
func (n *Node) Pos() token.Position {
	return n.Span.Start
}

// End returns the position of the first character immediately after the node.
func (n *Node) End() token.Position {
	return n.Span.End
}

// String returns a short description such as `Identifier(eval)@1:1`.
func (n *Node) String() string {
	if n == nil {
		return "<nil>"
	}
	if n.Name != "" {
		return fmt.Sprintf("%s(%s)@%s", n.Kind, n.Name, n.Span.Start)
	}
	return fmt.Sprintf("%s@%s", n.Kind, n.Span.Start)
}

// Child returns the first child of the given kind, or nil.
func (n *Node) Child(kind Kind) *Node {
	for _, c := range n.Children {
		if c.Kind == kind {
			return c
		}
	}
	return nil
}

// Statements returns the children of n that are statements. For a Program
// these are the top-level statements.
func (n *Node) Statements() []*Node {
	var stmts []*Node
	for _, c := range n.Children {
		if c.Kind.IsStatement() {
			stmts = append(stmts, c)
		}
	}
	return stmts
}

// Keywords returns the reserved words attached directly to n.
func (n *Node) Keywords() []string {
	var words []string
	for _, c := range n.Children {
		if c.Kind == Keyword {
			words = append(words, c.Name)
		}
	}
	return words
}
