package eval

import (
	"errors"
	"fmt"
)

// EvalError represents a failure to evaluate a tree against a record.
type EvalError struct {
	// Code identifies the error category.
	Code EvalErrorCode

	// Message is a human-readable description.
	Message string

	// Selector is the selector of the comparison being evaluated.
	Selector string

	// Operator is the canonical symbol of that comparison's operator.
	Operator string
}

// EvalErrorCode categorizes evaluation errors.
type EvalErrorCode string

const (
	// ErrCodeUnsupportedOperator indicates an operator with no built-in
	// semantics and no registered Func.
	ErrCodeUnsupportedOperator EvalErrorCode = "UNSUPPORTED_OPERATOR"

	// ErrCodeOperatorFailed indicates a registered Func returned an error.
	ErrCodeOperatorFailed EvalErrorCode = "OPERATOR_FAILED"
)

// Error implements the error interface.
func (e *EvalError) Error() string {
	return fmt.Sprintf("%s: %s (selector=%s, operator=%s)", e.Code, e.Message, e.Selector, e.Operator)
}

// IsUnsupportedOperator returns true if err is an unsupported operator error.
// Uses errors.As to handle wrapped errors.
func IsUnsupportedOperator(err error) bool {
	var ee *EvalError
	if errors.As(err, &ee) {
		return ee.Code == ErrCodeUnsupportedOperator
	}
	return false
}
