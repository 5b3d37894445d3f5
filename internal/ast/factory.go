package ast

import (
	"fmt"
	"slices"

	"github.com/roach88/rsql/internal/operator"
)

// Factory validates and builds nodes against a registry.
//
// Thread-safety: Factory holds no mutable state and is safe for concurrent use.
type Factory struct {
	registry *operator.Registry
}

// NewFactory creates a Factory. A nil registry means operator.Default().
func NewFactory(registry *operator.Registry) *Factory {
	if registry == nil {
		registry = operator.Default()
	}
	return &Factory{registry: registry}
}

// Registry returns the registry symbols are resolved against.
func (f *Factory) Registry() *operator.Registry {
	return f.registry
}

// CreateComparison builds a comparison node.
//
// The symbol may be canonical or alternative; the node always references
// the registry's operator, so "<" and "=lt=" yield equal nodes.
// Checks run in order: operator, selector, arity.
func (f *Factory) CreateComparison(symbol, selector string, arguments []string) (*Comparison, error) {
	op, ok := f.registry.Lookup(symbol)
	if !ok {
		return nil, &NodeError{
			Code:    ErrCodeUnknownOperator,
			Message: fmt.Sprintf("unknown comparison operator %q", symbol),
		}
	}

	if selector == "" {
		return nil, &NodeError{
			Code:    ErrCodeEmptySelector,
			Message: "selector must not be empty",
		}
	}

	if !op.Arity().Accepts(len(arguments)) {
		return nil, &NodeError{
			Code: ErrCodeArityMismatch,
			Message: fmt.Sprintf("operator %s takes %s argument(s), got %d",
				op.Symbol(), op.Arity(), len(arguments)),
		}
	}

	return &Comparison{
		selector:  selector,
		op:        op,
		arguments: slices.Clone(arguments),
	}, nil
}

// CreateLogical builds an *And or *Or node.
//
// Fewer than two children is an invariant violation: the parser collapses
// single terms and never calls this with less.
func (f *Factory) CreateLogical(op operator.Logical, children []Node) (Logical, error) {
	if len(children) < 2 {
		return nil, &NodeError{
			Code:    ErrCodeInvariant,
			Message: fmt.Sprintf("%s node requires at least two children, got %d", op, len(children)),
		}
	}
	if slices.Contains(children, nil) {
		return nil, &NodeError{
			Code:    ErrCodeInvariant,
			Message: fmt.Sprintf("%s node has a nil child", op),
		}
	}

	switch op {
	case operator.And:
		return &And{children: slices.Clone(children)}, nil
	case operator.Or:
		return &Or{children: slices.Clone(children)}, nil
	default:
		return nil, &NodeError{
			Code:    ErrCodeInvariant,
			Message: fmt.Sprintf("unknown logical operator %d", int(op)),
		}
	}
}

// WithChildren returns a node of the same logical operator as node with
// the given children.
func (f *Factory) WithChildren(node Logical, children []Node) (Logical, error) {
	return f.CreateLogical(node.Operator(), children)
}
