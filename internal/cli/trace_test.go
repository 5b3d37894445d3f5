package cli

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/rsql/internal/testutil"
)

func TestUUIDv7Generator(t *testing.T) {
	gen := UUIDv7Generator{}

	a := gen.Generate()
	b := gen.Generate()
	assert.NotEqual(t, a, b)

	id, err := uuid.Parse(a)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), id.Version())
}

func TestFixedTraceGenerator_SatisfiesInterface(t *testing.T) {
	var gen TraceIDGenerator = testutil.NewFixedTraceGenerator("fixed")
	assert.Equal(t, "fixed", gen.Generate())
}
