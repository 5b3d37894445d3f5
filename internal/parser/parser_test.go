package parser

import (
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/rsql/internal/ast"
	"github.com/roach88/rsql/internal/operator"
)

// Tree builders for expected values.

func eq(t *testing.T, symbol, selector string, args ...string) ast.Node {
	t.Helper()
	n, err := ast.NewFactory(nil).CreateComparison(symbol, selector, args)
	require.NoError(t, err)
	return n
}

func and(t *testing.T, children ...ast.Node) ast.Node {
	t.Helper()
	n, err := ast.NewFactory(nil).CreateLogical(operator.And, children)
	require.NoError(t, err)
	return n
}

func or(t *testing.T, children ...ast.Node) ast.Node {
	t.Helper()
	n, err := ast.NewFactory(nil).CreateLogical(operator.Or, children)
	require.NoError(t, err)
	return n
}

func assertTree(t *testing.T, want ast.Node, query string) {
	t.Helper()
	got, err := Parse(query)
	require.NoError(t, err, query)
	assert.True(t, ast.Equal(want, got), "query %q\nwant %s\ngot  %s", query, want, got)
}

func TestParse_Empty(t *testing.T) {
	_, err := Parse("")
	require.Error(t, err)
	assert.True(t, IsInvalidArgument(err))
	assert.False(t, IsParseError(err))
}

func TestParse_EveryDefaultOperator(t *testing.T) {
	for _, op := range operator.DefaultOperators() {
		t.Run(op.Symbol(), func(t *testing.T) {
			node, err := Parse("sel" + op.Symbol() + "val")
			require.NoError(t, err)

			cmp, ok := node.(*ast.Comparison)
			require.True(t, ok, "got %T", node)
			assert.Same(t, op, cmp.Operator())
			assert.Equal(t, "sel", cmp.Selector())
			assert.Equal(t, []string{"val"}, cmp.Arguments())
		})
	}
}

func TestParse_AlternativeSymbols(t *testing.T) {
	pairs := []struct{ alt, canonical string }{
		{"<", "=lt="},
		{">", "=gt="},
		{"<=", "=le="},
		{">=", "=ge="},
	}

	for _, p := range pairs {
		t.Run(p.alt, func(t *testing.T) {
			a, err := Parse("sel" + p.alt + "val")
			require.NoError(t, err)
			c, err := Parse("sel" + p.canonical + "val")
			require.NoError(t, err)

			assert.Same(t, c.(*ast.Comparison).Operator(), a.(*ast.Comparison).Operator())
			assert.True(t, ast.Equal(a, c))
		})
	}
}

func TestParse_BareEqualsRejected(t *testing.T) {
	_, err := Parse("sel=val")
	require.Error(t, err)
	assert.True(t, IsParseError(err))
	assert.True(t, IsUnknownOperator(err))

	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, 3, pe.Offset)
	assert.Equal(t, "=", pe.Token)
}

func TestParse_UnknownFIQLOperator(t *testing.T) {
	_, err := Parse("sel=foo=val")
	require.Error(t, err)
	assert.True(t, IsUnknownOperator(err))
	assert.Contains(t, err.Error(), "=foo=")
}

func TestParse_ReservedCharacters(t *testing.T) {
	for _, c := range reservedChars {
		c := string(c)
		queries := []string{
			c + "==val",
			"ill" + c + "==val",
			"ill" + c + "ness==val",
			"sel==" + c,
			"sel==" + c + "val",
			"sel==val" + c + "ness",
		}
		for _, q := range queries {
			t.Run(q, func(t *testing.T) {
				_, err := Parse(q)
				require.Error(t, err, "query %q must be rejected", q)
				assert.True(t, IsParseError(err), "query %q: %v", q, err)
			})
		}
	}
}

func TestParse_QuotedArguments(t *testing.T) {
	testCases := []struct {
		query string
		want  string
	}{
		{`sel=="a'b"`, "a'b"},
		{`sel=='a"b'`, `a"b`},
		{`sel=="hello world"`, "hello world"},
		{`sel=='(;,=<>!~)'`, "(;,=<>!~)"},
		{`sel=='a\'`, `a\`},
		{`sel==""`, ""},
		{`sel==' and '`, " and "},
	}

	for _, tc := range testCases {
		t.Run(tc.query, func(t *testing.T) {
			assertTree(t, eq(t, "==", "sel", tc.want), tc.query)
		})
	}
}

func TestParse_UnterminatedQuote(t *testing.T) {
	for _, q := range []string{`sel=="abc`, `sel=='abc`, `sel=='abc"`, `sel=in=('a,b)`} {
		_, err := Parse(q)
		require.Error(t, err, q)
		assert.Equal(t, ErrCodeUnterminatedQuote, Code(err), q)
	}
}

func TestParse_UnicodeSelectorsAndValues(t *testing.T) {
	assertTree(t, eq(t, "==", "název", "čínština"), "název==čínština")
	assertTree(t, eq(t, "=in=", "城市", "東京", "大阪"), "城市=in=(東京,大阪)")
}

func TestParse_InvalidUTF8(t *testing.T) {
	_, err := Parse("sel==\xff")
	require.Error(t, err)
	assert.Equal(t, ErrCodeInvalidEncoding, Code(err))

	_, err = Parse("sel=='\xff'")
	require.Error(t, err)
	assert.Equal(t, ErrCodeInvalidEncoding, Code(err))
}

func TestParse_ArgumentGroup(t *testing.T) {
	assertTree(t, eq(t, "=in=", "sel", "a", "b", "c d"), "sel=in=(a,b,'c d')")
	assertTree(t, eq(t, "=out=", "sel", "a"), "sel=out=(a)")
	assertTree(t, eq(t, "=in=", "sel", "a"), "sel=in=a")
	assertTree(t, eq(t, "==", "sel", "a"), "sel==(a)")
}

func TestParse_ArgumentGroupErrors(t *testing.T) {
	testCases := []struct {
		query string
		code  ErrorCode
	}{
		{"sel=in=()", ErrCodeSyntax},
		{"sel=in=(a,)", ErrCodeSyntax},
		{"sel=in=(,a)", ErrCodeSyntax},
		{"sel=in=(a;b)", ErrCodeSyntax},
		{"sel=in=(a or b)", ErrCodeSyntax},
		{"sel=in=(a,b", ErrCodeUnmatchedParen},
		{"sel=in=((a))", ErrCodeSyntax},
	}

	for _, tc := range testCases {
		t.Run(tc.query, func(t *testing.T) {
			_, err := Parse(tc.query)
			require.Error(t, err)
			assert.Equal(t, tc.code, Code(err), err.Error())
		})
	}
}

func TestParse_Arity(t *testing.T) {
	_, err := Parse("sel==(a,b)")
	require.Error(t, err)
	assert.True(t, IsArityMismatch(err))
	assert.True(t, IsParseError(err))
	assert.True(t, ast.IsNodeError(err, ast.ErrCodeArityMismatch), "underlying node error is wrapped")

	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, 0, pe.Offset)
	assert.Equal(t, "sel", pe.Token)

	_, err = Parse("a==1;sel=gt=(1,2)")
	require.Error(t, err)
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, 5, pe.Offset)
}

func TestParse_Precedence(t *testing.T) {
	s0 := eq(t, "==", "s0", "a0")
	s1 := eq(t, "==", "s1", "a1")
	s2 := eq(t, "==", "s2", "a2")

	assertTree(t, or(t, s0, and(t, s1, s2)), "s0==a0,s1==a1;s2==a2")
	assertTree(t, or(t, and(t, s0, s1), s2), "s0==a0;s1==a1,s2==a2")
	assertTree(t, and(t, or(t, s0, s1), s2), "(s0==a0,s1==a1);s2==a2")
	assertTree(t, and(t, s0, or(t, s1, s2)), "s0==a0;(s1==a1,s2==a2)")
}

func TestParse_TextualAliases(t *testing.T) {
	s0 := eq(t, "==", "s0", "a0")
	s1 := eq(t, "==", "s1", "a1")
	s2 := eq(t, "==", "s2", "a2")

	assertTree(t, or(t, s0, and(t, s1, s2)), "s0==a0 or s1==a1 and s2==a2")
	assertTree(t, and(t, s0, s1, s2), "s0==a0 and s1==a1;s2==a2")
	assertTree(t, or(t, s0, s1), "s0==a0 or s1==a1")
}

func TestParse_AliasesAreCaseSensitive(t *testing.T) {
	for _, q := range []string{"a==1 AND b==2", "a==1 Or b==2", "a==1  and b==2", "a==1 and  b==2"} {
		_, err := Parse(q)
		assert.True(t, IsParseError(err), q)
	}
}

func TestParse_FlatNAry(t *testing.T) {
	s := make([]ast.Node, 4)
	parts := make([]string, 4)
	for i := range s {
		s[i] = eq(t, "==", fmt.Sprintf("s%d", i), fmt.Sprintf("a%d", i))
		parts[i] = fmt.Sprintf("s%d==a%d", i, i)
	}

	assertTree(t, and(t, s...), strings.Join(parts, ";"))
	assertTree(t, or(t, s...), strings.Join(parts, ","))
}

func TestParse_GroupedLogicalKeepsNesting(t *testing.T) {
	s0 := eq(t, "==", "s0", "a0")
	s1 := eq(t, "==", "s1", "a1")
	s2 := eq(t, "==", "s2", "a2")

	assertTree(t, and(t, and(t, s0, s1), s2), "(s0==a0;s1==a1);s2==a2")
}

func TestParse_RedundantParenthesesCollapse(t *testing.T) {
	s0 := eq(t, "==", "s0", "a0")
	s1 := eq(t, "==", "s1", "a1")

	assertTree(t, s0, "((s0==a0))")
	assertTree(t, s0, "(s0==a0)")
	assertTree(t, and(t, s0, s1), "((s0==a0));(((s1==a1)))")
	assertTree(t, or(t, s0, s1), "((s0==a0,s1==a1))")
}

func TestParse_UnmatchedParentheses(t *testing.T) {
	for _, q := range []string{
		"(s0==a0;s1!=a1",
		"s0==a0)",
		"s0==a;(s1=in=(b,c),s2!=d",
		"((s0==a0)",
		"(s0==a0))",
	} {
		t.Run(q, func(t *testing.T) {
			_, err := Parse(q)
			require.Error(t, err)
			assert.True(t, IsParseError(err))
			assert.Equal(t, ErrCodeUnmatchedParen, Code(err), err.Error())
		})
	}
}

func TestParse_SyntaxErrors(t *testing.T) {
	testCases := []struct {
		query string
		code  ErrorCode
	}{
		{" ", ErrCodeSyntax},
		{"sel", ErrCodeSyntax},
		{"sel==", ErrCodeSyntax},
		{"==val", ErrCodeSyntax},
		{"()", ErrCodeSyntax},
		{"a==1;", ErrCodeSyntax},
		{",a==1", ErrCodeSyntax},
		{"a==1;;b==2", ErrCodeSyntax},
		{"'sel'==val", ErrCodeSyntax},
		{"a==1 ", ErrCodeSyntax},
		{"a == 1", ErrCodeSyntax},
		{"a==1(b==2)", ErrCodeTrailingInput},
		{"a==b==c", ErrCodeTrailingInput},
		{"a==1'x'", ErrCodeTrailingInput},
	}

	for _, tc := range testCases {
		t.Run(tc.query, func(t *testing.T) {
			_, err := Parse(tc.query)
			require.Error(t, err)
			assert.Equal(t, tc.code, Code(err), err.Error())
		})
	}
}

func TestParse_ErrorCarriesOffset(t *testing.T) {
	_, err := Parse("name==alice;age=x=5")

	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, ErrCodeUnknownOperator, pe.Code)
	assert.Equal(t, 15, pe.Offset)
	assert.Contains(t, pe.Error(), "offset 15")
}

func TestParse_MaxDepth(t *testing.T) {
	deep := strings.Repeat("(", 5) + "a==1" + strings.Repeat(")", 5)

	p := New(nil, WithMaxDepth(4))
	_, err := p.Parse(deep)
	require.Error(t, err)
	assert.Equal(t, ErrCodeNestingTooDeep, Code(err))

	p = New(nil, WithMaxDepth(5))
	_, err = p.Parse(deep)
	require.NoError(t, err)
}

func TestParse_DefaultMaxDepth(t *testing.T) {
	n := DefaultMaxDepth + 1
	deep := strings.Repeat("(", n) + "a==1" + strings.Repeat(")", n)

	_, err := Parse(deep)
	assert.Equal(t, ErrCodeNestingTooDeep, Code(err))
}

func TestParse_DepthIsPerNesting(t *testing.T) {
	// Sibling groups do not accumulate depth.
	parts := make([]string, 10)
	for i := range parts {
		parts[i] = "(a==1)"
	}
	_, err := New(nil, WithMaxDepth(1)).Parse(strings.Join(parts, ";"))
	require.NoError(t, err)
}

func TestParse_CustomRegistry(t *testing.T) {
	like := operator.MustComparison(operator.ExactlyOne, "=like=", "~")
	all := operator.MustComparison(operator.OneOrMore, "=all=")
	reg, err := operator.NewRegistry(append(operator.DefaultOperators(), like, all)...)
	require.NoError(t, err)

	p := New(reg)

	node, err := p.Parse("name~al*;tags=all=(a,b)")
	require.NoError(t, err)

	children := node.(*ast.And).Children()
	require.Len(t, children, 2)
	assert.Same(t, like, children[0].(*ast.Comparison).Operator())
	assert.Same(t, all, children[1].(*ast.Comparison).Operator())

	_, err = Parse("name=like=x")
	assert.True(t, IsUnknownOperator(err), "default parser must not know =like=")
}

func TestParse_RoundTrip(t *testing.T) {
	queries := []string{
		"a==1",
		"a=in=(x,'y z',\"q'r\")",
		"a==1;b!=2,c=gt=3",
		"(a==1,b==2);(c<3,d>=4)",
		"(a==1;b==2);c==3",
		"name=='a;b'",
		"name==''",
	}

	for _, q := range queries {
		t.Run(q, func(t *testing.T) {
			first, err := Parse(q)
			require.NoError(t, err)
			second, err := Parse(first.String())
			require.NoError(t, err, first.String())
			assert.True(t, ast.Equal(first, second), "%s -> %s", q, first.String())
		})
	}
}

func TestParse_Concurrent(t *testing.T) {
	p := New(nil)
	want, err := p.Parse("a==1,b=in=(x,y);c<3")
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make(chan error, 32)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := p.Parse("a==1,b=in=(x,y);c<3")
			if err != nil {
				errs <- err
				return
			}
			if !ast.Equal(want, got) {
				errs <- fmt.Errorf("trees differ: %s vs %s", want, got)
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
}
