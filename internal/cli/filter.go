package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/rsql/internal/eval"
)

// FilterResult is the JSON payload of the filter command.
type FilterResult struct {
	Total   int              `json:"total"`
	Matched int              `json:"matched"`
	Records []map[string]any `json:"records"`
}

// NewFilterCommand creates the filter command.
func NewFilterCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "filter <query> <records-file>",
		Short: "Evaluate a query against records in memory",
		Long: `Evaluate a query against a JSON or YAML list of records and print
the matching ones, in input order.

Dotted selectors walk nested objects. Operators declared with --operators
have no in-memory semantics and fail here.

Examples:
  rsql filter 'year=gt=2000' movies.json
  rsql filter --format json 'director.name==Nolan' movies.yaml`,
		Args:          cobra.MaximumNArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFilter(rootOpts, args, cmd)
		},
	}
	return cmd
}

func runFilter(opts *RootOptions, args []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	node, err := parseQuery(opts, formatter, args)
	if err != nil {
		return err
	}
	if len(args) < 2 {
		return formatter.Fail(ExitCommandError, ErrCodeInvalidArgument, fmt.Errorf("records file is required"), nil)
	}

	records, err := readRecords(args[1])
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeReadFailed, err, map[string]string{"path": args[1]})
	}

	matched := make([]map[string]any, 0, len(records))
	for i, r := range records {
		ok, err := eval.Match(node, r)
		if err != nil {
			return formatter.Fail(ExitFailure, ErrCodeEval, fmt.Errorf("record %d: %w", i, err), nil)
		}
		if ok {
			matched = append(matched, r)
		}
	}

	opts.Logger().Debug("filtered records",
		"query", node.String(),
		"total", len(records),
		"matched", len(matched))

	if formatter.Format == "json" {
		return formatter.Success(FilterResult{
			Total:   len(records),
			Matched: len(matched),
			Records: matched,
		})
	}

	return writeRecordLines(formatter, matched, len(records))
}

// writeRecordLines prints one compact JSON object per line, then a summary.
func writeRecordLines(formatter *OutputFormatter, records []map[string]any, total int) error {
	for _, r := range records {
		line, err := json.Marshal(r)
		if err != nil {
			return err
		}
		fmt.Fprintln(formatter.Writer, string(line))
	}
	formatter.VerboseLog("%d of %d record(s) matched", len(records), total)
	return nil
}
