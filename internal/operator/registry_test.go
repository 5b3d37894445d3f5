package operator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultOperators_Table(t *testing.T) {
	testCases := []struct {
		op           *Comparison
		symbol       string
		alternatives []string
		arity        Arity
	}{
		{Equal, "==", nil, ExactlyOne},
		{NotEqual, "!=", nil, ExactlyOne},
		{GreaterThan, "=gt=", []string{">"}, ExactlyOne},
		{GreaterThanOrEqual, "=ge=", []string{">="}, ExactlyOne},
		{LessThan, "=lt=", []string{"<"}, ExactlyOne},
		{LessThanOrEqual, "=le=", []string{"<="}, ExactlyOne},
		{In, "=in=", nil, OneOrMore},
		{NotIn, "=out=", nil, OneOrMore},
	}

	ops := DefaultOperators()
	require.Len(t, ops, len(testCases))

	for i, tc := range testCases {
		t.Run(tc.symbol, func(t *testing.T) {
			assert.Same(t, tc.op, ops[i])
			assert.Equal(t, tc.symbol, tc.op.Symbol())
			assert.Equal(t, tc.arity, tc.op.Arity())
			if tc.alternatives == nil {
				assert.Empty(t, tc.op.Alternatives())
			} else {
				assert.Equal(t, tc.alternatives, tc.op.Alternatives())
			}
		})
	}
}

func TestDefault_LookupResolvesAlternatives(t *testing.T) {
	reg := Default()

	pairs := map[string]string{
		"<":  "=lt=",
		">":  "=gt=",
		"<=": "=le=",
		">=": "=ge=",
	}
	for alt, canonical := range pairs {
		a, ok := reg.Lookup(alt)
		require.True(t, ok, alt)
		c, ok := reg.Lookup(canonical)
		require.True(t, ok, canonical)
		assert.Same(t, c, a, "%s must resolve to %s", alt, canonical)
	}

	_, ok := reg.Lookup("=")
	assert.False(t, ok, "bare '=' is never an operator")
}

func TestDefault_IsShared(t *testing.T) {
	assert.Same(t, Default(), Default())
}

func TestRegistry_MatchIsGreedy(t *testing.T) {
	reg := Default()

	testCases := []struct {
		input string
		want  string
		ok    bool
	}{
		{"==a", "==", true},
		{"<=5", "<=", true},
		{"<5", "<", true},
		{">=5", ">=", true},
		{"=gt=5", "=gt=", true},
		{"=out=(a)", "=out=", true},
		{"!=x", "!=", true},
		{"=x", "", false},
		{"~=x", "", false},
		{"", "", false},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			got, ok := reg.Match(tc.input)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestRegistry_SymbolsLongestFirst(t *testing.T) {
	symbols := Default().Symbols()
	for i := 1; i < len(symbols); i++ {
		assert.GreaterOrEqual(t, len(symbols[i-1]), len(symbols[i]), "%v", symbols)
	}
}

func TestNewRegistry_DuplicateSymbol(t *testing.T) {
	dup := MustComparison(ExactlyOne, "=lt=")

	_, err := NewRegistry(Equal, LessThan, dup)
	require.Error(t, err)

	var cfgErr *ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "=lt=", cfgErr.Symbol)
}

func TestNewRegistry_DuplicateAlternative(t *testing.T) {
	clash := MustComparison(ExactlyOne, "=before=", "<")

	_, err := NewRegistry(LessThan, clash)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"<"`)
}

func TestNewRegistry_Empty(t *testing.T) {
	_, err := NewRegistry()
	require.Error(t, err)
}

func TestNewRegistry_Nil(t *testing.T) {
	_, err := NewRegistry(Equal, nil)
	require.Error(t, err)
}

func TestNewRegistry_Custom(t *testing.T) {
	like := MustComparison(ExactlyOne, "=like=", "~")
	reg, err := NewRegistry(append(DefaultOperators(), like)...)
	require.NoError(t, err)

	got, ok := reg.Lookup("~")
	require.True(t, ok)
	assert.Same(t, like, got)
	assert.Len(t, reg.Operators(), 9)

	sym, ok := reg.Match("=like=foo")
	require.True(t, ok)
	assert.Equal(t, "=like=", sym)
}

func TestNewComparison_InvalidSymbols(t *testing.T) {
	testCases := []struct {
		name   string
		symbol string
	}{
		{"empty", ""},
		{"bare equals", "="},
		{"letter start", "lt"},
		{"contains paren", "=(="},
		{"contains comma", "=,="},
		{"contains semicolon", "=;="},
		{"contains quote", "='="},
		{"contains space", "= ="},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewComparison(ExactlyOne, tc.symbol)
			require.Error(t, err)
			var cfgErr *ConfigurationError
			assert.True(t, errors.As(err, &cfgErr))
		})
	}
}

func TestNewComparison_InvalidArity(t *testing.T) {
	_, err := NewComparison(Arity(0), "=x=")
	require.Error(t, err)
}

func TestNewComparison_RepeatedSymbol(t *testing.T) {
	_, err := NewComparison(ExactlyOne, "=x=", "=x=")
	require.Error(t, err)
}

func TestComparison_SymbolsAreCopies(t *testing.T) {
	syms := LessThan.Symbols()
	syms[0] = "mutated"
	assert.Equal(t, "=lt=", LessThan.Symbol())
}

func TestComparison_Equal(t *testing.T) {
	assert.True(t, LessThan.Equal(LessThan))
	assert.True(t, LessThan.Equal(MustComparison(ExactlyOne, "=lt=", "<")))
	assert.False(t, LessThan.Equal(MustComparison(OneOrMore, "=lt=", "<")))
	assert.False(t, LessThan.Equal(nil))
}

func TestArity_Accepts(t *testing.T) {
	assert.False(t, ExactlyOne.Accepts(0))
	assert.True(t, ExactlyOne.Accepts(1))
	assert.False(t, ExactlyOne.Accepts(2))

	assert.False(t, OneOrMore.Accepts(0))
	assert.True(t, OneOrMore.Accepts(1))
	assert.True(t, OneOrMore.Accepts(5))
}

func TestLogical(t *testing.T) {
	assert.Equal(t, ";", And.Symbol())
	assert.Equal(t, " and ", And.Alias())
	assert.Equal(t, ",", Or.Symbol())
	assert.Equal(t, " or ", Or.Alias())
	assert.Greater(t, And.Precedence(), Or.Precedence())
	assert.Equal(t, "AND", And.String())
	assert.Equal(t, "OR", Or.String())
}
