package cli

import "github.com/google/uuid"

// TraceIDGenerator generates trace IDs for CLI responses.
type TraceIDGenerator interface {
	Generate() string
}

// UUIDv7Generator produces time-ordered UUIDv7 trace IDs.
type UUIDv7Generator struct{}

// Generate returns a new UUIDv7 string.
func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}
