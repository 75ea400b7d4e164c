package ast

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func kindsOf(nodes []*Node) []string {
	names := make([]string, len(nodes))
	for i, n := range nodes {
		names[i] = n.Kind.String()
	}
	return names
}

func TestInspect(t *testing.T) {
	var visited []*Node
	Inspect(sample(), func(n *Node) bool {
		visited = append(visited, n)
		return true
	})
	require.Equal(t, []string{
		"Program", "With", "Keyword", "Identifier", "ExpressionStatement", "Call", "Identifier", "Identifier",
	}, kindsOf(visited))
}

func TestInspectSkipsChildren(t *testing.T) {
	var visited []*Node
	Inspect(sample(), func(n *Node) bool {
		visited = append(visited, n)
		return n.Kind != ExpressionStatement
	})
	require.Equal(t, []string{
		"Program", "With", "Keyword", "Identifier", "ExpressionStatement",
	}, kindsOf(visited))
}

type countingVisitor struct {
	counts map[Kind]int
}

func (v *countingVisitor) Visit(n *Node) Visitor {
	v.counts[n.Kind]++
	return v
}

func TestWalk(t *testing.T) {
	v := &countingVisitor{counts: map[Kind]int{}}
	Walk(v, sample())
	require.Equal(t, 3, v.counts[Identifier])
	require.Equal(t, 1, v.counts[Keyword])
	require.Equal(t, 1, v.counts[Call])

	// A nil node is ignored.
	Walk(v, nil)
}

func TestPreorderStopsEarly(t *testing.T) {
	var visited []*Node
	for n := range Preorder(sample()) {
		if n.Kind == Call {
			break
		}
		visited = append(visited, n)
	}
	require.Equal(t, []string{
		"Program", "With", "Keyword", "Identifier", "ExpressionStatement",
	}, kindsOf(visited))
}

func TestCountAndDepth(t *testing.T) {
	program := sample()
	require.Equal(t, 8, Count(program))
	require.Equal(t, 4, Depth(program))
	require.Equal(t, 0, Count(nil))
	require.Equal(t, 0, Depth(&Node{Kind: Program}))
}
