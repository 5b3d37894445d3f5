package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Scenario defines a conformance test scenario.
type Scenario struct {
	// Name uniquely identifies this scenario. Also names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Operators is an optional CUE operator spec. Relative paths are
	// resolved against the scenario file's directory by LoadScenario.
	Operators string `yaml:"operators,omitempty"`

	// MaxDepth overrides the parser's nesting limit when positive.
	MaxDepth int `yaml:"max_depth,omitempty"`

	// Records are evaluated by cases that expect matches.
	Records []map[string]any `yaml:"records,omitempty"`

	// Cases are run in order.
	Cases []Case `yaml:"cases"`
}

// Case is a single query and its expected outcome.
type Case struct {
	Name   string `yaml:"name"`
	Query  string `yaml:"query"`
	Expect Expect `yaml:"expect"`
}

// Expect specifies what parsing a query must produce.
// Tree, JSON and Matches may be combined; Error excludes them.
type Expect struct {
	// Tree is the expected String() rendering.
	Tree string `yaml:"tree,omitempty"`

	// JSON is the expected tree in the astjson encoding.
	JSON string `yaml:"json,omitempty"`

	// Error is the expected error code, or INVALID_ARGUMENT.
	Error string `yaml:"error,omitempty"`

	// Matches lists the indices of Records the query must match.
	// A pointer so that "matches: []" can be told apart from no expectation.
	Matches *[]int `yaml:"matches,omitempty"`
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}

	if scenario.Operators != "" && !filepath.IsAbs(scenario.Operators) {
		scenario.Operators = filepath.Join(filepath.Dir(path), scenario.Operators)
	}
	if scenario.Operators != "" {
		if _, err := os.Stat(scenario.Operators); os.IsNotExist(err) {
			return nil, fmt.Errorf("invalid scenario: operator spec not found: %s", scenario.Operators)
		}
	}

	return scenario, nil
}

// ParseScenario parses scenario YAML. Operator paths are left as written.
func ParseScenario(data []byte) (*Scenario, error) {
	// Strict field validation catches typos like "case:" vs "cases:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Cases) == 0 {
		return fmt.Errorf("cases list is required and must be non-empty")
	}

	if s.MaxDepth < 0 {
		return fmt.Errorf("max_depth must not be negative")
	}

	seen := make(map[string]bool, len(s.Cases))
	for i, c := range s.Cases {
		if c.Name == "" {
			return fmt.Errorf("cases[%d]: name is required", i)
		}
		if seen[c.Name] {
			return fmt.Errorf("cases[%d]: duplicate case name %q", i, c.Name)
		}
		seen[c.Name] = true

		e := c.Expect
		if e.Tree == "" && e.JSON == "" && e.Error == "" && e.Matches == nil {
			return fmt.Errorf("cases[%d].expect: one of tree, json, error or matches is required", i)
		}
		if e.Error != "" && (e.Tree != "" || e.JSON != "" || e.Matches != nil) {
			return fmt.Errorf("cases[%d].expect: error cannot be combined with other expectations", i)
		}
		if e.Matches != nil {
			for _, idx := range *e.Matches {
				if idx < 0 || idx >= len(s.Records) {
					return fmt.Errorf("cases[%d].expect.matches: index %d out of range (%d records)", i, idx, len(s.Records))
				}
			}
		}
	}

	return nil
}
