// Package opspec loads comparison operator sets declared in CUE.
//
// A spec file looks like:
//
//	include_defaults: true
//	operator: {
//		like:  {symbol: "=like=", arity: "one"}
//		regex: {symbol: "=re=", alternatives: ["~="], arity: "one"}
//		all:   {symbol: "=all=", arity: "many"}
//	}
//
// include_defaults defaults to true. arity is "one" or "many" and defaults
// to "one". Operators are registered in declaration order, after the
// defaults when those are included.
package opspec

import (
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/rsql/internal/operator"
)

// Arity spellings accepted in spec files.
const (
	ArityOne  = "one"
	ArityMany = "many"
)

// CompileError describes an invalid operator spec, with the CUE position
// when one is known.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// LoadFile reads and compiles the CUE spec at path.
func LoadFile(path string) (*operator.Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read operator spec: %w", err)
	}

	ctx := cuecontext.New()
	v := ctx.CompileBytes(data, cue.Filename(path))
	return Compile(v)
}

// Compile builds a registry from a CUE value.
func Compile(v cue.Value) (*operator.Registry, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	includeDefaults := true
	if iv := v.LookupPath(cue.ParsePath("include_defaults")); iv.Exists() {
		b, err := iv.Bool()
		if err != nil {
			return nil, formatCUEError(err)
		}
		includeDefaults = b
	}

	var ops []*operator.Comparison
	if includeDefaults {
		ops = operator.DefaultOperators()
	}

	opsVal := v.LookupPath(cue.ParsePath("operator"))
	if opsVal.Exists() {
		iter, err := opsVal.Fields()
		if err != nil {
			return nil, formatCUEError(err)
		}
		for iter.Next() {
			op, err := compileOperator(iter.Label(), iter.Value())
			if err != nil {
				return nil, err
			}
			ops = append(ops, op)
		}
	}

	if len(ops) == 0 {
		return nil, &CompileError{
			Field:   "operator",
			Message: "at least one operator is required when include_defaults is false",
			Pos:     v.Pos(),
		}
	}

	reg, err := operator.NewRegistry(ops...)
	if err != nil {
		return nil, &CompileError{
			Field:   "operator",
			Message: err.Error(),
			Pos:     opsVal.Pos(),
		}
	}
	return reg, nil
}

func compileOperator(name string, v cue.Value) (*operator.Comparison, error) {
	field := "operator." + name

	symVal := v.LookupPath(cue.ParsePath("symbol"))
	if !symVal.Exists() {
		return nil, &CompileError{
			Field:   field + ".symbol",
			Message: "symbol is required",
			Pos:     v.Pos(),
		}
	}
	symbol, err := symVal.String()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var alternatives []string
	if altVal := v.LookupPath(cue.ParsePath("alternatives")); altVal.Exists() {
		iter, err := altVal.List()
		if err != nil {
			return nil, formatCUEError(err)
		}
		for iter.Next() {
			alt, err := iter.Value().String()
			if err != nil {
				return nil, formatCUEError(err)
			}
			alternatives = append(alternatives, alt)
		}
	}

	arity := operator.ExactlyOne
	if arityVal := v.LookupPath(cue.ParsePath("arity")); arityVal.Exists() {
		s, err := arityVal.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		switch s {
		case ArityOne:
		case ArityMany:
			arity = operator.OneOrMore
		default:
			return nil, &CompileError{
				Field:   field + ".arity",
				Message: fmt.Sprintf("arity must be %q or %q, got %q", ArityOne, ArityMany, s),
				Pos:     arityVal.Pos(),
			}
		}
	}

	op, err := operator.NewComparison(arity, symbol, alternatives...)
	if err != nil {
		return nil, &CompileError{
			Field:   field,
			Message: err.Error(),
			Pos:     symVal.Pos(),
		}
	}
	return op, nil
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
