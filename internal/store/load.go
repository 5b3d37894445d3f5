package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var identifierRE = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func isIdentifier(s string) bool {
	return identifierRE.MatchString(s)
}

// Load inserts rows into table, creating the table or adding missing
// columns as needed. Nested objects are flattened into underscore-joined
// columns. All rows are inserted in one transaction.
//
// Returns the number of rows inserted.
func (s *Store) Load(ctx context.Context, table string, rows []Row) (int, error) {
	if !isIdentifier(table) {
		return 0, fmt.Errorf("invalid table name %q", table)
	}

	flat := make([]Row, len(rows))
	for i, row := range rows {
		f := Row{}
		if err := flatten("", row, f); err != nil {
			return 0, fmt.Errorf("row %d: %w", i, err)
		}
		flat[i] = f
	}

	columns, types := inferColumns(flat)
	if len(columns) == 0 {
		return 0, nil
	}

	if err := s.ensureTable(ctx, table, columns, types); err != nil {
		return 0, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin load: %w", err)
	}
	defer tx.Rollback()

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ")
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		table, strings.Join(columns, ", "), placeholders))
	if err != nil {
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, row := range flat {
		values := make([]any, len(columns))
		for j, col := range columns {
			values[j] = row[col]
		}
		if _, err := stmt.ExecContext(ctx, values...); err != nil {
			return 0, fmt.Errorf("insert row %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit load: %w", err)
	}

	s.logger.Debug("rows loaded", "table", table, "rows", len(flat), "columns", len(columns))
	return len(flat), nil
}

// ensureTable creates table or adds the columns it is missing.
func (s *Store) ensureTable(ctx context.Context, table string, columns []string, types map[string]string) error {
	existing, err := s.Columns(ctx, table)
	if err != nil {
		return err
	}

	if len(existing) == 0 {
		defs := make([]string, len(columns))
		for i, col := range columns {
			defs[i] = col + " " + types[col]
		}
		stmt := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", table, strings.Join(defs, ", "))
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create table %s: %w", table, err)
		}
		return nil
	}

	have := make(map[string]bool, len(existing))
	for _, col := range existing {
		have[col] = true
	}
	for _, col := range columns {
		if have[col] {
			continue
		}
		stmt := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", table, col, types[col])
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("add column %s.%s: %w", table, col, err)
		}
	}
	return nil
}

// flatten copies src into dst, joining nested keys with '_' and converting
// values to what SQLite stores.
func flatten(prefix string, src map[string]any, dst Row) error {
	for key, value := range src {
		name := key
		if prefix != "" {
			name = prefix + "_" + key
		}

		if nested, ok := value.(map[string]any); ok {
			if err := flatten(name, nested, dst); err != nil {
				return err
			}
			continue
		}
		if nested, ok := value.(Row); ok {
			if err := flatten(name, nested, dst); err != nil {
				return err
			}
			continue
		}

		if !isIdentifier(name) {
			return fmt.Errorf("field %q is not a valid column name", name)
		}
		if _, dup := dst[name]; dup {
			return fmt.Errorf("field %q collides with a flattened nested field", name)
		}
		v, err := columnValue(value)
		if err != nil {
			return fmt.Errorf("field %q: %w", name, err)
		}
		dst[name] = v
	}
	return nil
}

// columnValue converts a decoded JSON or YAML value to a SQLite value.
// Booleans are stored as "true"/"false" so they compare equal to the
// query text; lists are stored as JSON.
func columnValue(v any) (any, error) {
	switch x := v.(type) {
	case nil:
		return nil, nil
	case string:
		return x, nil
	case bool:
		return strconv.FormatBool(x), nil
	case int:
		return int64(x), nil
	case int64:
		return x, nil
	case uint64:
		return strconv.FormatUint(x, 10), nil
	case float64:
		return x, nil
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return i, nil
		}
		f, err := x.Float64()
		if err != nil {
			return nil, err
		}
		return f, nil
	default:
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		if err := enc.Encode(x); err != nil {
			return nil, fmt.Errorf("unsupported value %T: %w", v, err)
		}
		return strings.TrimSpace(buf.String()), nil
	}
}

// inferColumns returns the sorted column names across rows and the declared
// type of each: NUMERIC when every non-null value is a number, else TEXT.
func inferColumns(rows []Row) ([]string, map[string]string) {
	types := make(map[string]string)
	for _, row := range rows {
		for col, v := range row {
			if _, seen := types[col]; !seen {
				types[col] = "NUMERIC"
			}
			switch v.(type) {
			case nil, int64, float64:
			default:
				types[col] = "TEXT"
			}
		}
	}

	columns := make([]string, 0, len(types))
	for col := range types {
		columns = append(columns, col)
	}
	sort.Strings(columns)
	return columns, types
}
