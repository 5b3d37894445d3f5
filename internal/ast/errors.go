package ast

import (
	"errors"
	"fmt"
)

// NodeErrorCode categorizes node construction failures.
type NodeErrorCode string

const (
	// ErrCodeUnknownOperator indicates a symbol the registry does not know.
	ErrCodeUnknownOperator NodeErrorCode = "UNKNOWN_OPERATOR"

	// ErrCodeEmptySelector indicates a comparison without a selector.
	ErrCodeEmptySelector NodeErrorCode = "EMPTY_SELECTOR"

	// ErrCodeArityMismatch indicates an argument count the operator rejects.
	ErrCodeArityMismatch NodeErrorCode = "ARITY_MISMATCH"

	// ErrCodeInvariant indicates a caller broke a structural invariant,
	// such as a logical node with fewer than two children.
	ErrCodeInvariant NodeErrorCode = "INVARIANT_VIOLATION"
)

// NodeError is returned by Factory when a node cannot be built.
type NodeError struct {
	Code    NodeErrorCode
	Message string
}

// Error implements the error interface.
func (e *NodeError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsNodeError returns true if err wraps a NodeError with the given code.
func IsNodeError(err error, code NodeErrorCode) bool {
	var ne *NodeError
	if errors.As(err, &ne) {
		return ne.Code == code
	}
	return false
}
