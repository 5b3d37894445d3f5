package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/rsql/internal/store"
)

// QueryOptions holds flags for the query command.
type QueryOptions struct {
	*RootOptions
	Database string
	Table    string
	Load     string // optional records file inserted before querying
}

// QueryResult is the JSON payload of the query command.
type QueryResult struct {
	Table  string      `json:"table"`
	Loaded int         `json:"loaded,omitempty"`
	Rows   []store.Row `json:"rows"`
}

// NewQueryCommand creates the query command.
func NewQueryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &QueryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "query <query>",
		Short: "Run a query against a SQLite table",
		Long: `Compile a query to SQL and run it against a table in a SQLite database.

With --load, records from a JSON or YAML file are inserted first; the
table is created or widened to fit them. Nested objects become
underscore-joined columns, so 'director.name' selects director_name.

Examples:
  rsql query --db movies.db --table movies 'year=gt=2000'
  rsql query --db movies.db --table movies --load movies.json 'genres==drama'`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	cmd.Flags().StringVar(&opts.Table, "table", "", "table to query (required)")
	cmd.Flags().StringVar(&opts.Load, "load", "", "records file to insert before querying")
	_ = cmd.MarkFlagRequired("db")
	_ = cmd.MarkFlagRequired("table")

	return cmd
}

func runQuery(opts *QueryOptions, args []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())
	logger := opts.Logger()

	node, err := parseQuery(opts.RootOptions, formatter, args)
	if err != nil {
		return err
	}

	if opts.Load == "" && opts.Database != ":memory:" {
		if _, err := os.Stat(opts.Database); os.IsNotExist(err) {
			return formatter.Fail(ExitCommandError, ErrCodeStore,
				fmt.Errorf("database not found: %s", opts.Database), nil)
		}
	}

	st, err := store.Open(opts.Database, store.WithLogger(logger))
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeStore, err, nil)
	}
	defer st.Close()

	ctx := cmd.Context()
	result := QueryResult{Table: opts.Table}

	if opts.Load != "" {
		records, err := readRecords(opts.Load)
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeReadFailed, err, map[string]string{"path": opts.Load})
		}
		rows := make([]store.Row, len(records))
		for i, r := range records {
			rows[i] = r
		}
		n, err := st.Load(ctx, opts.Table, rows)
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeStore, err, nil)
		}
		result.Loaded = n
		logger.Info("records loaded", "table", opts.Table, "rows", n)
	}

	rows, err := st.Select(ctx, opts.Table, node)
	if err != nil {
		return formatter.Fail(ExitFailure, ErrCodeStore, err, nil)
	}
	result.Rows = rows

	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	lines := make([]map[string]any, len(rows))
	for i, r := range rows {
		lines[i] = r
	}
	return writeRecordLines(formatter, lines, len(rows))
}
