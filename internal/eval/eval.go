// Package eval evaluates RSQL trees against in-memory records.
//
// A record is a map decoded from JSON or YAML. Dotted selectors walk nested
// maps ("author.name"). A selector that resolves to a list matches when any
// element does.
//
// Built-in operators:
//
//	==, !=        equality; '*' in the argument is a wildcard
//	=gt= =ge=     ordering; numeric when both sides parse as numbers,
//	=lt= =le=     otherwise by NFC-normalized text
//	=in=, =out=   membership
//
// A comparison on a missing or null field is false, so "!=" and "=out="
// are true for it. Other operators need a Func registered with
// WithOperator.
package eval

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/roach88/rsql/internal/ast"
	"github.com/roach88/rsql/internal/operator"
)

// Record is a decoded JSON or YAML object.
type Record = map[string]any

// Func evaluates a custom comparison. present is false when the selector
// does not resolve in the record, in which case value is nil.
type Func func(value any, present bool, args []string) (bool, error)

// Evaluator matches trees against records.
// Safe for concurrent use once constructed.
type Evaluator struct {
	funcs map[string]Func
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithOperator registers fn for the operator whose canonical symbol is
// symbol. It takes precedence over built-in semantics.
func WithOperator(symbol string, fn Func) Option {
	return func(e *Evaluator) {
		e.funcs[symbol] = fn
	}
}

// New creates an Evaluator.
func New(opts ...Option) *Evaluator {
	e := &Evaluator{funcs: make(map[string]Func)}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

var defaultEvaluator = New()

// Match reports whether record satisfies node using built-in operators.
func Match(node ast.Node, record Record) (bool, error) {
	return defaultEvaluator.Match(node, record)
}

// Filter returns the records satisfying node using built-in operators.
func Filter(node ast.Node, records []Record) ([]Record, error) {
	return defaultEvaluator.Filter(node, records)
}

// Match reports whether record satisfies node. A nil node matches everything.
func (e *Evaluator) Match(node ast.Node, record Record) (bool, error) {
	if node == nil {
		return true, nil
	}
	return ast.Accept[bool](node, &matcher{e: e, record: record})
}

// Filter returns the records satisfying node, preserving order.
// Returns an empty slice (not nil) when nothing matches.
func (e *Evaluator) Filter(node ast.Node, records []Record) ([]Record, error) {
	out := []Record{}
	for i, r := range records {
		ok, err := e.Match(node, r)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		if ok {
			out = append(out, r)
		}
	}
	return out, nil
}

// matcher evaluates one record. AND and OR short-circuit.
type matcher struct {
	e      *Evaluator
	record Record
}

func (m *matcher) VisitAnd(n *ast.And) (bool, error) {
	for _, child := range n.Children() {
		ok, err := ast.Accept[bool](child, m)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

func (m *matcher) VisitOr(n *ast.Or) (bool, error) {
	for _, child := range n.Children() {
		ok, err := ast.Accept[bool](child, m)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

func (m *matcher) VisitComparison(n *ast.Comparison) (bool, error) {
	op := n.Operator()
	value, present := lookup(m.record, n.Selector())

	if fn, ok := m.e.funcs[op.Symbol()]; ok {
		matched, err := fn(value, present, n.Arguments())
		if err != nil {
			return false, &EvalError{
				Code:     ErrCodeOperatorFailed,
				Message:  err.Error(),
				Selector: n.Selector(),
				Operator: op.Symbol(),
			}
		}
		return matched, nil
	}

	args := n.Arguments()
	switch {
	case op.Equal(operator.Equal):
		return present && anyElement(value, func(v any) bool { return equals(v, args[0]) }), nil
	case op.Equal(operator.NotEqual):
		return !(present && anyElement(value, func(v any) bool { return equals(v, args[0]) })), nil
	case op.Equal(operator.GreaterThan):
		return present && anyElement(value, func(v any) bool { return compare(v, args[0]) > 0 }), nil
	case op.Equal(operator.GreaterThanOrEqual):
		return present && anyElement(value, func(v any) bool { return compare(v, args[0]) >= 0 }), nil
	case op.Equal(operator.LessThan):
		return present && anyElement(value, func(v any) bool { return compare(v, args[0]) < 0 }), nil
	case op.Equal(operator.LessThanOrEqual):
		return present && anyElement(value, func(v any) bool { return compare(v, args[0]) <= 0 }), nil
	case op.Equal(operator.In):
		return present && anyElement(value, func(v any) bool { return member(v, args) }), nil
	case op.Equal(operator.NotIn):
		return !(present && anyElement(value, func(v any) bool { return member(v, args) })), nil
	default:
		return false, &EvalError{
			Code:     ErrCodeUnsupportedOperator,
			Message:  "no evaluation registered for operator",
			Selector: n.Selector(),
			Operator: op.Symbol(),
		}
	}
}

// lookup resolves a dotted selector. A key containing dots is tried whole
// before being split.
func lookup(record Record, selector string) (any, bool) {
	if record == nil {
		return nil, false
	}
	if v, ok := record[selector]; ok {
		return v, v != nil
	}

	head, rest, found := strings.Cut(selector, ".")
	if !found {
		return nil, false
	}
	nested, ok := record[head].(map[string]any)
	if !ok {
		return nil, false
	}
	return lookup(nested, rest)
}

// anyElement applies pred to value, or to each element if value is a list.
func anyElement(value any, pred func(any) bool) bool {
	list, ok := value.([]any)
	if !ok {
		return pred(value)
	}
	for _, v := range list {
		if v != nil && pred(v) {
			return true
		}
	}
	return false
}

func member(value any, args []string) bool {
	for _, a := range args {
		if equals(value, a) {
			return true
		}
	}
	return false
}

func equals(value any, arg string) bool {
	if strings.Contains(arg, "*") {
		return glob(normalize(arg), normalize(text(value)))
	}
	if x, ok := number(value); ok {
		if y, ok := parseFinite(arg); ok {
			return x == y
		}
	}
	return normalize(text(value)) == normalize(arg)
}

// compare orders value against arg.
func compare(value any, arg string) int {
	if x, ok := number(value); ok {
		if y, ok := parseFinite(arg); ok {
			switch {
			case x < y:
				return -1
			case x > y:
				return 1
			default:
				return 0
			}
		}
	}
	return strings.Compare(normalize(text(value)), normalize(arg))
}

// number returns value as a float64 if it is a finite number or finite
// numeric text. NaN and infinities compare as text.
func number(value any) (float64, bool) {
	var f float64
	switch v := value.(type) {
	case float64:
		f = v
	case float32:
		f = float64(v)
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint64:
		return float64(v), true
	case fmt.Stringer:
		return parseFinite(v.String())
	case string:
		return parseFinite(v)
	default:
		return 0, false
	}
	return f, !math.IsNaN(f) && !math.IsInf(f, 0)
}

// parseFinite parses s as a float, rejecting NaN and infinities, which
// strconv accepts under several spellings.
func parseFinite(s string) (float64, bool) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// text renders a scalar the way it would be written in a query.
func text(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

func normalize(s string) string {
	return norm.NFC.String(s)
}

// glob matches s against pattern where '*' matches any run of characters.
func glob(pattern, s string) bool {
	parts := strings.Split(pattern, "*")
	if len(parts) == 1 {
		return pattern == s
	}

	if !strings.HasPrefix(s, parts[0]) {
		return false
	}
	s = s[len(parts[0]):]

	last := parts[len(parts)-1]
	for _, part := range parts[1 : len(parts)-1] {
		i := strings.Index(s, part)
		if i < 0 {
			return false
		}
		s = s[i+len(part):]
	}
	return strings.HasSuffix(s, last)
}
