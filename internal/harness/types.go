package harness

import (
	"encoding/json"
	"fmt"
)

// CaseResult is the outcome of one case.
type CaseResult struct {
	Name  string `json:"name"`
	Query string `json:"query"`
	Pass  bool   `json:"pass"`

	// Tree is the String() rendering of the parsed tree.
	Tree string `json:"tree,omitempty"`

	// JSON is the canonical encoding of the parsed tree.
	JSON json.RawMessage `json:"json,omitempty"`

	// Hash is the content hash of the parsed tree.
	Hash string `json:"hash,omitempty"`

	// ErrorCode is set when parsing failed.
	ErrorCode string `json:"error,omitempty"`

	// Matches lists matching record indices, when the case expects matches.
	Matches []int `json:"matches,omitempty"`

	Errors []string `json:"errors,omitempty"`
}

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass is true if every case passed.
	Pass bool `json:"pass"`

	Cases []CaseResult `json:"cases"`

	// Errors collects every case failure, prefixed with the case name.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
// Used as the starting point for test execution.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Cases:  []CaseResult{},
		Errors: []string{},
	}
}

// AddCase records a case outcome and folds its errors into the result.
func (r *Result) AddCase(c CaseResult) {
	r.Cases = append(r.Cases, c)
	for _, e := range c.Errors {
		r.AddError(fmt.Sprintf("case %q: %s", c.Name, e))
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
