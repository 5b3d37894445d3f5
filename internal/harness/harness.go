package harness

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/roach88/rsql/internal/ast"
	"github.com/roach88/rsql/internal/astjson"
	"github.com/roach88/rsql/internal/eval"
	"github.com/roach88/rsql/internal/operator"
	"github.com/roach88/rsql/internal/opspec"
	"github.com/roach88/rsql/internal/parser"
)

// ErrCodeInvalidArgument is the expected error for an empty query.
const ErrCodeInvalidArgument = "INVALID_ARGUMENT"

// Harness runs scenarios.
type Harness struct {
	logger *slog.Logger
}

// Option configures a Harness.
type Option func(*Harness)

// WithLogger sets the logger for per-case tracing.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Harness) {
		h.logger = logger
	}
}

// New creates a Harness.
func New(opts ...Option) *Harness {
	h := &Harness{logger: slog.Default()}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Run executes a scenario with a default Harness.
func Run(scenario *Scenario) (*Result, error) {
	return New().Run(scenario)
}

// Run executes every case of scenario.
//
// Returns an error only when the scenario itself cannot run, e.g. its
// operator spec fails to load. Case failures are reported in the Result.
func (h *Harness) Run(scenario *Scenario) (*Result, error) {
	registry := operator.Default()
	if scenario.Operators != "" {
		reg, err := opspec.LoadFile(scenario.Operators)
		if err != nil {
			return nil, fmt.Errorf("load operators: %w", err)
		}
		registry = reg
	}

	var popts []parser.Option
	if scenario.MaxDepth > 0 {
		popts = append(popts, parser.WithMaxDepth(scenario.MaxDepth))
	}
	p := parser.New(registry, popts...)

	records := make([]eval.Record, len(scenario.Records))
	for i, r := range scenario.Records {
		records[i] = r
	}

	result := NewResult()
	for _, c := range scenario.Cases {
		cr := h.runCase(p, records, c)
		h.logger.Debug("case finished",
			"scenario", scenario.Name,
			"case", c.Name,
			"pass", cr.Pass)
		result.AddCase(cr)
	}

	h.logger.Info("scenario finished",
		"scenario", scenario.Name,
		"cases", len(result.Cases),
		"pass", result.Pass)

	return result, nil
}

func (h *Harness) runCase(p *parser.Parser, records []eval.Record, c Case) CaseResult {
	cr := CaseResult{Name: c.Name, Query: c.Query}
	fail := func(format string, args ...any) {
		cr.Errors = append(cr.Errors, fmt.Sprintf(format, args...))
	}

	node, err := p.Parse(c.Query)
	if err != nil {
		cr.ErrorCode = errorCode(err)
		switch {
		case c.Expect.Error == "":
			fail("unexpected error: %v", err)
		case c.Expect.Error != cr.ErrorCode:
			fail("expected error %s, got %s: %v", c.Expect.Error, cr.ErrorCode, err)
		}
		cr.Pass = len(cr.Errors) == 0
		return cr
	}

	cr.Tree = node.String()
	data, err := astjson.Marshal(node)
	if err != nil {
		fail("encode tree: %v", err)
	} else {
		cr.JSON = data
		cr.Hash = astjson.HashJSON(data)
	}

	if c.Expect.Error != "" {
		fail("expected error %s, parsed %s", c.Expect.Error, cr.Tree)
	}

	if c.Expect.Tree != "" && c.Expect.Tree != cr.Tree {
		fail("tree mismatch: expected %s, got %s", c.Expect.Tree, cr.Tree)
	}

	if c.Expect.JSON != "" {
		want, err := astjson.Unmarshal([]byte(c.Expect.JSON), p.Registry())
		switch {
		case err != nil:
			fail("invalid expected json: %v", err)
		case !ast.Equal(want, node):
			fail("json mismatch: expected %s, got %s", want, cr.Tree)
		}
	}

	if c.Expect.Matches != nil {
		matches, err := matchRecords(node, records)
		if err != nil {
			fail("evaluate: %v", err)
		}
		cr.Matches = matches
		if !slices.Equal(*c.Expect.Matches, matches) {
			fail("matches mismatch: expected %v, got %v", *c.Expect.Matches, matches)
		}
	}

	cr.Pass = len(cr.Errors) == 0
	return cr
}

// matchRecords returns the indices of records matching node.
func matchRecords(node ast.Node, records []eval.Record) ([]int, error) {
	matches := []int{}
	for i, r := range records {
		ok, err := eval.Match(node, r)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		if ok {
			matches = append(matches, i)
		}
	}
	return matches, nil
}

// errorCode names a parse failure the way scenarios spell it.
func errorCode(err error) string {
	if errors.Is(err, parser.ErrInvalidArgument) {
		return ErrCodeInvalidArgument
	}
	if code := parser.Code(err); code != "" {
		return string(code)
	}
	return err.Error()
}
