package operator

import (
	"fmt"
	"slices"
	"strings"
)

// Arity classifies how many arguments a comparison operator accepts.
type Arity int

const (
	// ExactlyOne operators take a single argument, bare or as a one-element group.
	ExactlyOne Arity = iota + 1
	// OneOrMore operators take one or more arguments.
	OneOrMore
)

// Accepts reports whether n arguments satisfy the arity class.
func (a Arity) Accepts(n int) bool {
	switch a {
	case ExactlyOne:
		return n == 1
	case OneOrMore:
		return n >= 1
	default:
		return false
	}
}

func (a Arity) String() string {
	switch a {
	case ExactlyOne:
		return "exactly-one"
	case OneOrMore:
		return "one-or-more"
	default:
		return fmt.Sprintf("Arity(%d)", int(a))
	}
}

// symbolStart holds the characters a comparison symbol may begin with.
// They are all reserved, so a symbol can never be confused with a selector
// or an unquoted argument.
const symbolStart = "=<>!~"

// symbolForbidden holds characters that would make a symbol unlexable.
const symbolForbidden = "\"'();, \t\r\n"

// Comparison is a comparison operator: a canonical symbol, optional
// alternative symbols and an arity class.
//
// Values are immutable. Nodes reference the operator resolved from the
// registry, so "<" and "=lt=" produce the same *Comparison.
type Comparison struct {
	symbols []string // symbols[0] is canonical
	arity   Arity
}

// NewComparison creates a comparison operator.
//
// Every symbol must start with one of "=", "<", ">", "!", "~" and must not
// contain quotes, parentheses, ";", "," or whitespace. A lone "=" is never
// a valid symbol.
func NewComparison(arity Arity, symbol string, alternatives ...string) (*Comparison, error) {
	if arity != ExactlyOne && arity != OneOrMore {
		return nil, &ConfigurationError{Symbol: symbol, Message: fmt.Sprintf("invalid arity %d", int(arity))}
	}

	symbols := make([]string, 0, 1+len(alternatives))
	symbols = append(symbols, symbol)
	symbols = append(symbols, alternatives...)

	for i, s := range symbols {
		if err := validateSymbol(s); err != nil {
			return nil, err
		}
		if slices.Contains(symbols[:i], s) {
			return nil, &ConfigurationError{Symbol: s, Message: "symbol listed twice for the same operator"}
		}
	}

	return &Comparison{symbols: symbols, arity: arity}, nil
}

// MustComparison is like NewComparison but panics on error.
// Intended for package-level operator declarations.
func MustComparison(arity Arity, symbol string, alternatives ...string) *Comparison {
	op, err := NewComparison(arity, symbol, alternatives...)
	if err != nil {
		panic(err)
	}
	return op
}

func validateSymbol(s string) error {
	if s == "" {
		return &ConfigurationError{Message: "empty operator symbol"}
	}
	if s == "=" {
		return &ConfigurationError{Symbol: s, Message: "bare '=' is not a valid operator symbol"}
	}
	if !strings.ContainsRune(symbolStart, rune(s[0])) {
		return &ConfigurationError{Symbol: s, Message: fmt.Sprintf("symbol must start with one of %q", symbolStart)}
	}
	if i := strings.IndexAny(s, symbolForbidden); i >= 0 {
		return &ConfigurationError{Symbol: s, Message: fmt.Sprintf("symbol contains reserved character %q", s[i])}
	}
	return nil
}

// Symbol returns the canonical symbol.
func (c *Comparison) Symbol() string {
	return c.symbols[0]
}

// Alternatives returns the alternative symbols, possibly empty.
func (c *Comparison) Alternatives() []string {
	return slices.Clone(c.symbols[1:])
}

// Symbols returns the canonical symbol followed by the alternatives.
func (c *Comparison) Symbols() []string {
	return slices.Clone(c.symbols)
}

// Arity returns the operator's arity class.
func (c *Comparison) Arity() Arity {
	return c.arity
}

// IsMultiValue reports whether the operator accepts more than one argument.
func (c *Comparison) IsMultiValue() bool {
	return c.arity == OneOrMore
}

// Equal reports whether two operators have the same symbols and arity.
func (c *Comparison) Equal(other *Comparison) bool {
	if c == other {
		return true
	}
	if c == nil || other == nil {
		return false
	}
	return c.arity == other.arity && slices.Equal(c.symbols, other.symbols)
}

// String returns the canonical symbol.
func (c *Comparison) String() string {
	return c.Symbol()
}

// Logical is one of the two logical operators.
type Logical int

const (
	// And binds tighter than Or.
	And Logical = iota + 1
	// Or is the lowest-precedence operator.
	Or
)

// Symbol returns the single-character symbol: ";" for And, "," for Or.
func (l Logical) Symbol() string {
	switch l {
	case And:
		return ";"
	case Or:
		return ","
	default:
		return ""
	}
}

// Alias returns the textual alias including its mandatory surrounding spaces.
func (l Logical) Alias() string {
	switch l {
	case And:
		return " and "
	case Or:
		return " or "
	default:
		return ""
	}
}

// Precedence returns the binding strength; higher binds tighter.
func (l Logical) Precedence() int {
	switch l {
	case And:
		return 2
	case Or:
		return 1
	default:
		return 0
	}
}

func (l Logical) String() string {
	switch l {
	case And:
		return "AND"
	case Or:
		return "OR"
	default:
		return fmt.Sprintf("Logical(%d)", int(l))
	}
}
