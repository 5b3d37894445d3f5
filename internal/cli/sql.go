package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/rsql/internal/querysql"
)

// SQLOptions holds flags for the sql command.
type SQLOptions struct {
	*RootOptions
	Table   string
	Columns map[string]string // selector -> column
}

// SQLResult is the JSON payload of the sql command.
type SQLResult struct {
	SQL    string `json:"sql"`
	Params []any  `json:"params"`
}

// NewSQLCommand creates the sql command.
func NewSQLCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SQLOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "sql <query>",
		Short: "Compile a query to parameterised SQL",
		Long: `Compile a query to a SQL WHERE clause with ? placeholders.

With --table the output is a complete SELECT ordered by rowid. Each --map
entry renames a selector to a column; when any mapping is given, selectors
without one are rejected.

Examples:
  rsql sql 'year=ge=2000;genres=in=(drama,war)'
  rsql sql --table movies --map director.name=director 'director.name==Nolan'`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSQL(opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Table, "table", "", "emit a full SELECT over this table")
	cmd.Flags().StringToStringVar(&opts.Columns, "map", nil, "selector=column mapping (repeatable)")

	return cmd
}

func runSQL(opts *SQLOptions, args []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	node, err := parseQuery(opts.RootOptions, formatter, args)
	if err != nil {
		return err
	}

	compiler := querysql.NewSQLCompiler()
	for selector, column := range opts.Columns {
		compiler.Columns[selector] = column
	}

	var query string
	var params []any
	if opts.Table != "" {
		query, params, err = compiler.CompileSelect(opts.Table, nil, node)
	} else {
		query, params, err = compiler.Compile(node)
	}
	if err != nil {
		return formatter.Fail(ExitFailure, ErrCodeSQL, err, nil)
	}

	if params == nil {
		params = []any{}
	}
	if formatter.Format == "json" {
		return formatter.Success(SQLResult{SQL: query, Params: params})
	}

	fmt.Fprintln(formatter.Writer, query)
	for i, p := range params {
		fmt.Fprintf(formatter.Writer, "  $%d = %q\n", i+1, p)
	}
	return nil
}
