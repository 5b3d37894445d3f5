// Package harness provides conformance testing for RSQL parsers.
//
// A scenario lists queries and what parsing each one must produce: the
// rendered tree, the tree as canonical JSON, an error code, or the indices
// of the scenario's records the query matches.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	operators: ops.cue        # optional, relative to the scenario file
//	max_depth: 8              # optional nesting limit
//	records:                  # optional, used by expect.matches
//	  - {title: Dune, year: 1965}
//	cases:
//	  - name: simple equality
//	    query: "title==Dune"
//	    expect:
//	      tree: "title==Dune"
//	      matches: [0]
//	  - name: bare equals
//	    query: "title=Dune"
//	    expect:
//	      error: UNKNOWN_OPERATOR
//
// expect.json holds a tree in the astjson encoding; it is compared
// structurally, so key order and whitespace do not matter.
//
// # Golden Files
//
// Snapshot renders a result as indented JSON with a stable field order.
// RunWithGolden compares that snapshot against testdata/golden/{name}.golden.
//
// # Usage
//
//	scenario, err := harness.LoadScenario("testdata/scenarios/basic.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := harness.Run(scenario)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if !result.Pass {
//	    for _, e := range result.Errors {
//	        log.Println(e)
//	    }
//	}
package harness
