package parser

import (
	"errors"
	"fmt"
)

// ErrInvalidArgument is returned when there is no query text to parse.
var ErrInvalidArgument = errors.New("invalid argument")

// ErrorCode categorizes parse failures.
type ErrorCode string

const (
	// ErrCodeSyntax indicates a token the grammar does not allow here,
	// typically a reserved character where a selector or value was expected.
	ErrCodeSyntax ErrorCode = "SYNTAX"

	// ErrCodeUnterminatedQuote indicates a quoted argument without its closing quote.
	ErrCodeUnterminatedQuote ErrorCode = "UNTERMINATED_QUOTE"

	// ErrCodeUnknownOperator indicates an unrecognized or bare-'=' operator symbol.
	ErrCodeUnknownOperator ErrorCode = "UNKNOWN_OPERATOR"

	// ErrCodeUnmatchedParen indicates an unclosed '(' or a stray ')'.
	ErrCodeUnmatchedParen ErrorCode = "UNMATCHED_PAREN"

	// ErrCodeTrailingInput indicates input left over after a complete query.
	ErrCodeTrailingInput ErrorCode = "TRAILING_INPUT"

	// ErrCodeInvalidEncoding indicates input that is not valid UTF-8.
	ErrCodeInvalidEncoding ErrorCode = "INVALID_ENCODING"

	// ErrCodeNestingTooDeep indicates parentheses nested beyond the parser limit.
	ErrCodeNestingTooDeep ErrorCode = "NESTING_TOO_DEEP"

	// ErrCodeArityMismatch indicates an argument count the operator rejects.
	ErrCodeArityMismatch ErrorCode = "ARITY_MISMATCH"

	// ErrCodeEmptySelector indicates a comparison without selector.
	ErrCodeEmptySelector ErrorCode = "EMPTY_SELECTOR"

	// ErrCodeInvariant indicates an internal invariant violation.
	ErrCodeInvariant ErrorCode = "INVARIANT_VIOLATION"
)

// ParseError describes the first problem found in a query.
//
// Every lexical and grammatical failure, including node construction
// failures, is reported as a ParseError. Err holds the underlying
// *ast.NodeError when the node factory rejected a comparison.
type ParseError struct {
	Code    ErrorCode
	Message string
	Offset  int    // byte offset into the query
	Token   string // offending text, empty at end of input
	Err     error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Token != "" {
		return fmt.Sprintf("%s at offset %d near %q: %s", e.Code, e.Offset, e.Token, e.Message)
	}
	return fmt.Sprintf("%s at offset %d: %s", e.Code, e.Offset, e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// IsParseError returns true if err is or wraps a ParseError.
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}

// IsInvalidArgument returns true if err reports missing query text.
func IsInvalidArgument(err error) bool {
	return errors.Is(err, ErrInvalidArgument)
}

// IsArityMismatch returns true if err is a ParseError for a wrong argument count.
func IsArityMismatch(err error) bool {
	return hasCode(err, ErrCodeArityMismatch)
}

// IsUnknownOperator returns true if err is a ParseError for an unrecognized operator.
func IsUnknownOperator(err error) bool {
	return hasCode(err, ErrCodeUnknownOperator)
}

// Code returns the ErrorCode of a ParseError, or "" for other errors.
func Code(err error) ErrorCode {
	var pe *ParseError
	if errors.As(err, &pe) {
		return pe.Code
	}
	return ""
}

func hasCode(err error, code ErrorCode) bool {
	return Code(err) == code
}
