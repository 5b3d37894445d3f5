package ast

import "fmt"

// Visitor handles each node kind. Implementations return a result of type R.
type Visitor[R any] interface {
	VisitComparison(n *Comparison) (R, error)
	VisitAnd(n *And) (R, error)
	VisitOr(n *Or) (R, error)
}

// Accept dispatches node to the matching visitor method.
func Accept[R any](node Node, v Visitor[R]) (R, error) {
	switch n := node.(type) {
	case *Comparison:
		return v.VisitComparison(n)
	case *And:
		return v.VisitAnd(n)
	case *Or:
		return v.VisitOr(n)
	default:
		// Only nil reaches here; the interface is sealed.
		var zero R
		return zero, fmt.Errorf("cannot visit node of type %T", node)
	}
}

// Walk calls fn for node and its descendants in pre-order.
// Returning false from fn skips the children of that node.
func Walk(node Node, fn func(Node) bool) {
	if node == nil || !fn(node) {
		return
	}
	switch n := node.(type) {
	case *And:
		for _, c := range n.children {
			Walk(c, fn)
		}
	case *Or:
		for _, c := range n.children {
			Walk(c, fn)
		}
	}
}

// Selectors returns the distinct selectors referenced by node, in first
// occurrence order.
func Selectors(node Node) []string {
	var out []string
	seen := make(map[string]bool)
	Walk(node, func(n Node) bool {
		if c, ok := n.(*Comparison); ok && !seen[c.selector] {
			seen[c.selector] = true
			out = append(out, c.selector)
		}
		return true
	})
	return out
}
