package operator

import (
	"fmt"
	"slices"
	"strings"
)

// Built-in comparison operators.
var (
	Equal              = MustComparison(ExactlyOne, "==")
	NotEqual           = MustComparison(ExactlyOne, "!=")
	GreaterThan        = MustComparison(ExactlyOne, "=gt=", ">")
	GreaterThanOrEqual = MustComparison(ExactlyOne, "=ge=", ">=")
	LessThan           = MustComparison(ExactlyOne, "=lt=", "<")
	LessThanOrEqual    = MustComparison(ExactlyOne, "=le=", "<=")
	In                 = MustComparison(OneOrMore, "=in=")
	NotIn              = MustComparison(OneOrMore, "=out=")
)

var defaultRegistry = mustRegistry(DefaultOperators()...)

// DefaultOperators returns the built-in comparison operators in table order.
func DefaultOperators() []*Comparison {
	return []*Comparison{
		Equal,
		NotEqual,
		GreaterThan,
		GreaterThanOrEqual,
		LessThan,
		LessThanOrEqual,
		In,
		NotIn,
	}
}

// Default returns the shared registry of DefaultOperators.
func Default() *Registry {
	return defaultRegistry
}

// Registry is an immutable set of comparison operators.
//
// Thread-safety: a Registry is never modified after NewRegistry returns and
// is safe for concurrent use.
type Registry struct {
	operators []*Comparison
	bySymbol  map[string]*Comparison
	symbols   []string // longest first, ties in lexical order
}

// NewRegistry builds a registry from the given operators.
//
// Returns a ConfigurationError when the list is empty, contains nil, or when
// two operators share a symbol.
func NewRegistry(ops ...*Comparison) (*Registry, error) {
	if len(ops) == 0 {
		return nil, &ConfigurationError{Message: "registry requires at least one comparison operator"}
	}

	r := &Registry{
		operators: make([]*Comparison, 0, len(ops)),
		bySymbol:  make(map[string]*Comparison),
	}

	for i, op := range ops {
		if op == nil {
			return nil, &ConfigurationError{Message: fmt.Sprintf("operator %d is nil", i)}
		}
		for _, s := range op.symbols {
			if prev, ok := r.bySymbol[s]; ok {
				return nil, &ConfigurationError{
					Symbol:  s,
					Message: fmt.Sprintf("symbol already used by operator %s", prev.Symbol()),
				}
			}
			r.bySymbol[s] = op
			r.symbols = append(r.symbols, s)
		}
		r.operators = append(r.operators, op)
	}

	slices.SortFunc(r.symbols, func(a, b string) int {
		if len(a) != len(b) {
			return len(b) - len(a)
		}
		return strings.Compare(a, b)
	})

	return r, nil
}

func mustRegistry(ops ...*Comparison) *Registry {
	r, err := NewRegistry(ops...)
	if err != nil {
		panic(err)
	}
	return r
}

// Operators returns the registry's comparison operators in registration order.
func (r *Registry) Operators() []*Comparison {
	return slices.Clone(r.operators)
}

// Lookup resolves a canonical or alternative symbol.
func (r *Registry) Lookup(symbol string) (*Comparison, bool) {
	op, ok := r.bySymbol[symbol]
	return op, ok
}

// Symbols returns every known symbol, longest first.
func (r *Registry) Symbols() []string {
	return slices.Clone(r.symbols)
}

// Match returns the longest known symbol that prefixes input.
func (r *Registry) Match(input string) (string, bool) {
	for _, s := range r.symbols {
		if strings.HasPrefix(input, s) {
			return s, true
		}
	}
	return "", false
}

// ConfigurationError reports an invalid operator or registry definition.
type ConfigurationError struct {
	Symbol  string
	Message string
}

func (e *ConfigurationError) Error() string {
	if e.Symbol != "" {
		return fmt.Sprintf("operator configuration: %q: %s", e.Symbol, e.Message)
	}
	return "operator configuration: " + e.Message
}
