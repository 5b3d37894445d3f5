// Package store runs RSQL filters against records held in SQLite.
//
// Records are flat rows keyed by column name. Load flattens nested objects
// into underscore-joined columns ("author.name" is stored as author_name)
// and Select maps dotted selectors back onto those columns, so the same
// query text works in memory and in the database.
//
// # Critical Patterns
//
// Deterministic Query Results
//   - Every SELECT ends with ORDER BY rowid ASC
//   - Rows come back in insertion order regardless of the query plan
//
// Parameterised Queries
//   - Argument values are always bound, never interpolated
//   - Selectors resolve only to columns the table actually has
//
// Column Affinity
//   - A column whose loaded values are all numbers is declared NUMERIC,
//     every other column TEXT
//   - SQLite then compares "age>18" numerically and "name>m" as text
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
