package ast

import (
	"slices"

	"github.com/roach88/rsql/internal/operator"
)

// Node is a node of the syntax tree.
//
// This is a sealed interface - only *Comparison, *And and *Or implement it.
type Node interface {
	node() // Marker method - seals interface to this package

	// String renders the node as RSQL text that parses back to an equal tree.
	String() string
}

// Logical is implemented by *And and *Or.
type Logical interface {
	Node

	// Operator returns operator.And or operator.Or.
	Operator() operator.Logical

	// Children returns a copy of the ordered children (always two or more).
	Children() []Node
}

// Comparison is a "selector operator arguments" constraint.
//
// Semantics:
//
//	<selector> <operator> <argument> | (<argument>, <argument>, ...)
//
// Arguments hold the exact decoded text: the inner content of quoted
// values, the raw token of unquoted ones.
type Comparison struct {
	selector  string
	op        *operator.Comparison
	arguments []string
}

func (*Comparison) node() {}

// Selector returns the left-hand identifier.
func (c *Comparison) Selector() string {
	return c.selector
}

// Operator returns the canonical operator resolved from the registry.
func (c *Comparison) Operator() *operator.Comparison {
	return c.op
}

// Arguments returns a copy of the argument values in textual order.
func (c *Comparison) Arguments() []string {
	return slices.Clone(c.arguments)
}

// Argument returns the first argument; convenient for single-value operators.
func (c *Comparison) Argument() string {
	return c.arguments[0]
}

// And is a conjunction of two or more nodes.
type And struct {
	children []Node
}

func (*And) node() {}

// Operator returns operator.And.
func (*And) Operator() operator.Logical {
	return operator.And
}

// Children returns a copy of the children in textual order.
func (a *And) Children() []Node {
	return slices.Clone(a.children)
}

// Or is a disjunction of two or more nodes.
type Or struct {
	children []Node
}

func (*Or) node() {}

// Operator returns operator.Or.
func (*Or) Operator() operator.Logical {
	return operator.Or
}

// Children returns a copy of the children in textual order.
func (o *Or) Children() []Node {
	return slices.Clone(o.children)
}

// Equal reports whether two trees are structurally equal.
func Equal(a, b Node) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	switch x := a.(type) {
	case *Comparison:
		y, ok := b.(*Comparison)
		if !ok {
			return false
		}
		return x.selector == y.selector &&
			x.op.Equal(y.op) &&
			slices.Equal(x.arguments, y.arguments)
	case *And:
		y, ok := b.(*And)
		return ok && equalChildren(x.children, y.children)
	case *Or:
		y, ok := b.(*Or)
		return ok && equalChildren(x.children, y.children)
	default:
		return false
	}
}

func equalChildren(a, b []Node) bool {
	return slices.EqualFunc(a, b, Equal)
}
