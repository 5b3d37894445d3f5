package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/roach88/rsql/internal/ast"
	"github.com/roach88/rsql/internal/querysql"
)

// Select returns the rows of table matching filter, in insertion order.
// A nil filter returns every row.
//
// Selectors resolve to columns of the table: either the column of the same
// name or, for dotted selectors, the underscore-joined column Load creates.
// Unknown selectors are an error.
func (s *Store) Select(ctx context.Context, table string, filter ast.Node) ([]Row, error) {
	columns, err := s.Columns(ctx, table)
	if err != nil {
		return nil, err
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("table %q does not exist", table)
	}

	mapping, err := resolveSelectors(filter, columns)
	if err != nil {
		return nil, fmt.Errorf("select from %s: %w", table, err)
	}

	compiler := &querysql.SQLCompiler{Columns: mapping}
	query, params, err := compiler.CompileSelect(table, nil, filter)
	if err != nil {
		return nil, fmt.Errorf("select from %s: %w", table, err)
	}

	s.logger.Debug("select", "table", table, "sql", query, "params", len(params))

	rows, err := s.db.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", table, err)
	}
	defer rows.Close()

	names, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("query columns: %w", err)
	}

	result := []Row{}
	for rows.Next() {
		values := make([]any, len(names))
		ptrs := make([]any, len(names))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}

		row := make(Row, len(names))
		for i, name := range names {
			if b, ok := values[i].([]byte); ok {
				row[name] = string(b)
				continue
			}
			row[name] = values[i]
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return result, nil
}

// resolveSelectors maps each selector in filter onto a table column.
func resolveSelectors(filter ast.Node, columns []string) (map[string]string, error) {
	have := make(map[string]bool, len(columns))
	for _, col := range columns {
		have[col] = true
	}

	mapping := make(map[string]string)
	if filter == nil {
		return mapping, nil
	}
	for _, sel := range ast.Selectors(filter) {
		if have[sel] {
			mapping[sel] = sel
			continue
		}
		flat := strings.ReplaceAll(sel, ".", "_")
		if !have[flat] {
			return nil, fmt.Errorf("unknown selector %q", sel)
		}
		mapping[sel] = flat
	}
	return mapping, nil
}
