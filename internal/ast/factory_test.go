package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/rsql/internal/operator"
)

func mustComparison(t *testing.T, symbol, selector string, args ...string) *Comparison {
	t.Helper()
	n, err := NewFactory(nil).CreateComparison(symbol, selector, args)
	require.NoError(t, err)
	return n
}

func mustLogical(t *testing.T, op operator.Logical, children ...Node) Logical {
	t.Helper()
	n, err := NewFactory(nil).CreateLogical(op, children)
	require.NoError(t, err)
	return n
}

func TestCreateComparison_Canonical(t *testing.T) {
	n := mustComparison(t, "==", "name", "alice")

	assert.Equal(t, "name", n.Selector())
	assert.Same(t, operator.Equal, n.Operator())
	assert.Equal(t, []string{"alice"}, n.Arguments())
	assert.Equal(t, "alice", n.Argument())
}

func TestCreateComparison_AlternativeResolvesToCanonical(t *testing.T) {
	pairs := []struct{ alt, canonical string }{
		{"<", "=lt="},
		{">", "=gt="},
		{"<=", "=le="},
		{">=", "=ge="},
	}

	for _, p := range pairs {
		t.Run(p.alt, func(t *testing.T) {
			a := mustComparison(t, p.alt, "age", "18")
			c := mustComparison(t, p.canonical, "age", "18")
			assert.Same(t, c.Operator(), a.Operator())
			assert.True(t, Equal(a, c))
		})
	}
}

func TestCreateComparison_UnknownOperator(t *testing.T) {
	_, err := NewFactory(nil).CreateComparison("=like=", "name", []string{"a"})
	require.Error(t, err)
	assert.True(t, IsNodeError(err, ErrCodeUnknownOperator))
}

func TestCreateComparison_EmptySelector(t *testing.T) {
	_, err := NewFactory(nil).CreateComparison("==", "", []string{"a"})
	require.Error(t, err)
	assert.True(t, IsNodeError(err, ErrCodeEmptySelector))
}

func TestCreateComparison_Arity(t *testing.T) {
	testCases := []struct {
		name   string
		symbol string
		args   []string
		ok     bool
	}{
		{"equal one", "==", []string{"a"}, true},
		{"equal none", "==", nil, false},
		{"equal two", "==", []string{"a", "b"}, false},
		{"in one", "=in=", []string{"a"}, true},
		{"in many", "=in=", []string{"a", "b", "c"}, true},
		{"in none", "=in=", []string{}, false},
		{"out two", "=out=", []string{"a", "b"}, true},
		{"lt two", "<", []string{"1", "2"}, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewFactory(nil).CreateComparison(tc.symbol, "sel", tc.args)
			if tc.ok {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.True(t, IsNodeError(err, ErrCodeArityMismatch), err.Error())
			}
		})
	}
}

func TestCreateComparison_CopiesArguments(t *testing.T) {
	args := []string{"a", "b"}
	n := mustComparison(t, "=in=", "sel", args...)
	args[0] = "mutated"

	got := n.Arguments()
	assert.Equal(t, []string{"a", "b"}, got)

	got[1] = "mutated"
	assert.Equal(t, []string{"a", "b"}, n.Arguments())
}

func TestCreateComparison_CustomRegistry(t *testing.T) {
	like := operator.MustComparison(operator.ExactlyOne, "=like=")
	reg, err := operator.NewRegistry(like)
	require.NoError(t, err)

	f := NewFactory(reg)
	n, err := f.CreateComparison("=like=", "name", []string{"al*"})
	require.NoError(t, err)
	assert.Same(t, like, n.Operator())

	_, err = f.CreateComparison("==", "name", []string{"al"})
	assert.True(t, IsNodeError(err, ErrCodeUnknownOperator))
}

func TestCreateLogical(t *testing.T) {
	a := mustComparison(t, "==", "a", "1")
	b := mustComparison(t, "==", "b", "2")
	c := mustComparison(t, "==", "c", "3")

	and := mustLogical(t, operator.And, a, b, c)
	require.IsType(t, &And{}, and)
	assert.Equal(t, operator.And, and.Operator())
	assert.Len(t, and.Children(), 3)

	or := mustLogical(t, operator.Or, a, b)
	require.IsType(t, &Or{}, or)
	assert.Equal(t, operator.Or, or.Operator())
}

func TestCreateLogical_TooFewChildren(t *testing.T) {
	a := mustComparison(t, "==", "a", "1")

	for _, children := range [][]Node{nil, {}, {a}} {
		_, err := NewFactory(nil).CreateLogical(operator.And, children)
		require.Error(t, err)
		assert.True(t, IsNodeError(err, ErrCodeInvariant))
	}
}

func TestCreateLogical_NilChild(t *testing.T) {
	a := mustComparison(t, "==", "a", "1")
	_, err := NewFactory(nil).CreateLogical(operator.Or, []Node{a, nil})
	assert.True(t, IsNodeError(err, ErrCodeInvariant))
}

func TestCreateLogical_UnknownOperator(t *testing.T) {
	a := mustComparison(t, "==", "a", "1")
	_, err := NewFactory(nil).CreateLogical(operator.Logical(9), []Node{a, a})
	assert.True(t, IsNodeError(err, ErrCodeInvariant))
}

func TestWithChildren(t *testing.T) {
	a := mustComparison(t, "==", "a", "1")
	b := mustComparison(t, "==", "b", "2")
	c := mustComparison(t, "==", "c", "3")

	or := mustLogical(t, operator.Or, a, b)
	replaced, err := NewFactory(nil).WithChildren(or, []Node{c, a})
	require.NoError(t, err)

	require.IsType(t, &Or{}, replaced)
	assert.True(t, Equal(c, replaced.Children()[0]))
	assert.True(t, Equal(a, or.Children()[0]), "original must be untouched")
}

func TestEqual(t *testing.T) {
	a1 := mustComparison(t, "==", "a", "1")
	a1bis := mustComparison(t, "==", "a", "1")
	a2 := mustComparison(t, "==", "a", "2")
	na1 := mustComparison(t, "!=", "a", "1")
	b1 := mustComparison(t, "==", "b", "1")

	assert.True(t, Equal(a1, a1bis))
	assert.False(t, Equal(a1, a2))
	assert.False(t, Equal(a1, na1))
	assert.False(t, Equal(a1, b1))

	and := mustLogical(t, operator.And, a1, b1)
	andBis := mustLogical(t, operator.And, a1bis, b1)
	andSwapped := mustLogical(t, operator.And, b1, a1)
	or := mustLogical(t, operator.Or, a1, b1)

	assert.True(t, Equal(and, andBis))
	assert.False(t, Equal(and, andSwapped), "child order matters")
	assert.False(t, Equal(and, or))
	assert.False(t, Equal(and, a1))

	assert.True(t, Equal(nil, nil))
	assert.False(t, Equal(a1, nil))
}
