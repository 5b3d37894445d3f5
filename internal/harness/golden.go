package harness

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// ScenarioSnapshot captures what a scenario produced, for golden comparison.
// The content hash is left out; JSON already pins the tree.
type ScenarioSnapshot struct {
	Scenario string         `json:"scenario"`
	Cases    []CaseSnapshot `json:"cases"`
}

// CaseSnapshot is the golden view of a CaseResult.
type CaseSnapshot struct {
	Name    string          `json:"name"`
	Query   string          `json:"query"`
	Tree    string          `json:"tree,omitempty"`
	JSON    json.RawMessage `json:"json,omitempty"`
	Error   string          `json:"error,omitempty"`
	Matches []int           `json:"matches,omitempty"`
}

// Snapshot renders result as indented JSON with HTML escaping disabled.
// Equal results always produce identical bytes.
func Snapshot(scenarioName string, result *Result) ([]byte, error) {
	snap := ScenarioSnapshot{
		Scenario: scenarioName,
		Cases:    make([]CaseSnapshot, len(result.Cases)),
	}
	for i, c := range result.Cases {
		snap.Cases[i] = CaseSnapshot{
			Name:    c.Name,
			Query:   c.Query,
			Tree:    c.Tree,
			JSON:    c.JSON,
			Error:   c.ErrorCode,
			Matches: c.Matches,
		}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// RunWithGolden executes a scenario and compares its snapshot against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if the snapshot doesn't match.
func RunWithGolden(t *testing.T, scenario *Scenario) error {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return err
	}
	return AssertGolden(t, scenario.Name, result)
}

// AssertGolden compares an existing result against its golden file.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	data, err := Snapshot(scenarioName, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)

	return nil
}
