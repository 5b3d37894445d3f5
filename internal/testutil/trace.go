package testutil

// FixedTraceGenerator generates the same trace ID every time.
//
// This enables deterministic CLI output and golden comparison: the same
// command with the same FixedTraceGenerator prints byte-identical JSON.
//
// Thread-safety: FixedTraceGenerator is stateless and safe for concurrent use.
type FixedTraceGenerator struct {
	id string
}

// NewFixedTraceGenerator creates a new fixed trace ID generator.
//
// If id is empty, Generate() returns "test-trace-default".
func NewFixedTraceGenerator(id string) *FixedTraceGenerator {
	if id == "" {
		id = "test-trace-default"
	}
	return &FixedTraceGenerator{id: id}
}

// Generate returns the fixed trace ID.
//
// Implements cli.TraceIDGenerator.
func (g *FixedTraceGenerator) Generate() string {
	return g.id
}
