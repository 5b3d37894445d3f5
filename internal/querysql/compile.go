// Package querysql compiles RSQL syntax trees to parameterized SQL for SQLite.
//
// CRITICAL: values are always bound as parameters, never interpolated.
// CRITICAL: selectors reach SQL only as allowlisted or validated identifiers.
package querysql

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/roach88/rsql/internal/ast"
	"github.com/roach88/rsql/internal/operator"
)

// identifier matches column and table names that are safe to emit unquoted.
var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// SQLCompiler compiles ast.Node trees to SQL WHERE fragments.
type SQLCompiler struct {
	// Columns maps selectors to column names. When non-empty it is an
	// allowlist: selectors missing from it are rejected. When empty, a
	// selector is used as the column name if it is a plain identifier.
	Columns map[string]string
}

// NewSQLCompiler creates a new SQLCompiler.
func NewSQLCompiler() *SQLCompiler {
	return &SQLCompiler{
		Columns: make(map[string]string),
	}
}

// Compile converts a tree to a WHERE fragment.
// Returns (sql, params, error) tuple.
func (c *SQLCompiler) Compile(node ast.Node) (string, []any, error) {
	if node == nil {
		return "", nil, fmt.Errorf("cannot compile nil node")
	}
	f, err := ast.Accept[fragment](node, c)
	if err != nil {
		return "", nil, err
	}
	return f.sql, f.params, nil
}

// CompileSelect builds a full SELECT over table. A nil node selects every
// row. Columns default to "*".
//
// MANDATORY: every query ends with ORDER BY rowid for deterministic results.
func (c *SQLCompiler) CompileSelect(table string, columns []string, node ast.Node) (string, []any, error) {
	if !identifier.MatchString(table) {
		return "", nil, fmt.Errorf("invalid table name %q", table)
	}

	selectClause := "*"
	if len(columns) > 0 {
		for _, col := range columns {
			if !identifier.MatchString(col) {
				return "", nil, fmt.Errorf("invalid column name %q", col)
			}
		}
		selectClause = strings.Join(columns, ", ")
	}

	var whereClause string
	var params []any
	if node != nil {
		where, whereParams, err := c.Compile(node)
		if err != nil {
			return "", nil, fmt.Errorf("compile filter: %w", err)
		}
		whereClause = " WHERE " + where
		params = whereParams
	}

	sql := fmt.Sprintf("SELECT %s FROM %s%s ORDER BY rowid ASC",
		selectClause,
		table,
		whereClause)

	return sql, params, nil
}

// fragment is a compiled piece of SQL and its parameters.
type fragment struct {
	sql    string
	params []any
}

// VisitAnd joins the children with AND.
func (c *SQLCompiler) VisitAnd(n *ast.And) (fragment, error) {
	return c.compileLogical(n.Children(), " AND ")
}

// VisitOr joins the children with OR.
func (c *SQLCompiler) VisitOr(n *ast.Or) (fragment, error) {
	return c.compileLogical(n.Children(), " OR ")
}

func (c *SQLCompiler) compileLogical(children []ast.Node, sep string) (fragment, error) {
	parts := make([]string, 0, len(children))
	var params []any

	for _, child := range children {
		f, err := ast.Accept[fragment](child, c)
		if err != nil {
			return fragment{}, err
		}
		parts = append(parts, f.sql)
		params = append(params, f.params...)
	}

	return fragment{
		sql:    "(" + strings.Join(parts, sep) + ")",
		params: params,
	}, nil
}

// VisitComparison compiles a single constraint.
func (c *SQLCompiler) VisitComparison(n *ast.Comparison) (fragment, error) {
	column, err := c.column(n.Selector())
	if err != nil {
		return fragment{}, err
	}

	args := n.Arguments()
	op := n.Operator()

	switch {
	case op.Equal(operator.Equal):
		return compileEquality(column, args[0], "=", "LIKE"), nil
	case op.Equal(operator.NotEqual):
		return compileEquality(column, args[0], "<>", "NOT LIKE"), nil
	case op.Equal(operator.GreaterThan):
		return binary(column, ">", args[0]), nil
	case op.Equal(operator.GreaterThanOrEqual):
		return binary(column, ">=", args[0]), nil
	case op.Equal(operator.LessThan):
		return binary(column, "<", args[0]), nil
	case op.Equal(operator.LessThanOrEqual):
		return binary(column, "<=", args[0]), nil
	case op.Equal(operator.In):
		return list(column, "IN", args), nil
	case op.Equal(operator.NotIn):
		return list(column, "NOT IN", args), nil
	default:
		return fragment{}, fmt.Errorf("unsupported operator %s for SQL", op.Symbol())
	}
}

// column resolves a selector to a column name.
func (c *SQLCompiler) column(selector string) (string, error) {
	if len(c.Columns) > 0 {
		col, ok := c.Columns[selector]
		if !ok {
			return "", fmt.Errorf("unknown selector %q", selector)
		}
		if !identifier.MatchString(col) {
			return "", fmt.Errorf("invalid column name %q for selector %q", col, selector)
		}
		return col, nil
	}
	if !identifier.MatchString(selector) {
		return "", fmt.Errorf("selector %q is not a valid column name", selector)
	}
	return selector, nil
}

// compileEquality handles "==" and "!=". An argument containing '*' is a
// wildcard pattern and compiles to LIKE.
func compileEquality(column, arg, cmp, like string) fragment {
	if !strings.Contains(arg, "*") {
		return binary(column, cmp, arg)
	}
	return fragment{
		sql:    fmt.Sprintf(`%s %s ? ESCAPE '\'`, column, like),
		params: []any{likePattern(arg)},
	}
}

func binary(column, cmp, arg string) fragment {
	return fragment{
		sql:    fmt.Sprintf("%s %s ?", column, cmp),
		params: []any{arg},
	}
}

func list(column, keyword string, args []string) fragment {
	params := make([]any, len(args))
	for i, a := range args {
		params[i] = a
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(args)), ", ")
	return fragment{
		sql:    fmt.Sprintf("%s %s (%s)", column, keyword, placeholders),
		params: params,
	}
}

// likePattern turns an RSQL wildcard into a LIKE pattern: '*' becomes '%',
// and literal '%', '_' and '\' are escaped.
func likePattern(arg string) string {
	var b strings.Builder
	for _, r := range arg {
		switch r {
		case '*':
			b.WriteByte('%')
		case '%', '_', '\\':
			b.WriteByte('\\')
			b.WriteRune(r)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
