// Package ast provides the immutable syntax tree produced by the RSQL parser
// and the Factory that validates and builds its nodes.
//
// SEALED VARIANT:
//
// Node is a sealed interface using the marker method pattern. Exactly three
// types implement it:
//
//	*Comparison   selector, operator, arguments   (sel=op=arg)
//	*And          two or more children            (a;b;c)
//	*Or           two or more children            (a,b,c)
//
// Logical nodes are n-ary: "a;b;c" is one And with three children, never a
// chain of binary nodes. A parenthesised single expression is the
// expression itself, so no logical node ever has fewer than two children.
//
// Consumers dispatch through Visitor, which has one method per node kind.
// Adding a kind adds a method, and every visitor stops compiling until it
// handles the new kind:
//
//	type printer struct{}
//
//	func (printer) VisitComparison(n *ast.Comparison) (string, error) { ... }
//	func (printer) VisitAnd(n *ast.And) (string, error)               { ... }
//	func (printer) VisitOr(n *ast.Or) (string, error)                 { ... }
//
//	s, err := ast.Accept[string](node, printer{})
//
// IMMUTABILITY:
//
// Node fields are unexported and accessors return copies. Trees may be
// shared freely between goroutines once built.
//
// EQUALITY:
//
// Equal compares structure: operator, selector, ordered arguments and
// ordered children. Operators compare by symbols and arity, so nodes built
// from "<" and "=lt=" are equal.
package ast
