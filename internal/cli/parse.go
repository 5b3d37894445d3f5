package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/rsql/internal/ast"
	"github.com/roach88/rsql/internal/astjson"
	"github.com/roach88/rsql/internal/parser"
)

// Command-level error codes. Parse failures use the parser's own codes.
const (
	ErrCodeInvalidArgument = "INVALID_ARGUMENT"
	ErrCodeOperatorSpec    = "OPERATOR_SPEC"
	ErrCodeReadFailed      = "READ_FAILED"
	ErrCodeSQL             = "SQL_COMPILE"
	ErrCodeEval            = "EVAL_FAILED"
	ErrCodeStore           = "STORE_FAILED"
)

// ParseResult is the JSON payload of the parse command.
type ParseResult struct {
	Query     string          `json:"query"`
	Tree      string          `json:"tree"`
	AST       json.RawMessage `json:"ast"`
	Hash      string          `json:"hash"`
	Selectors []string        `json:"selectors"`
}

// NewParseCommand creates the parse command.
func NewParseCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse <query>",
		Short: "Parse a query and print its canonical form",
		Long: `Parse an RSQL/FIQL query and print the normalized tree.

With --format json the response carries the canonical JSON encoding of
the tree and its SHA-256 content hash.

Examples:
  rsql parse 'name=="Kill Bill";year=gt=2003'
  rsql parse --format json 'genres=in=(sci-fi,action)'`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParse(rootOpts, args, cmd)
		},
	}
	return cmd
}

func runParse(opts *RootOptions, args []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	node, err := parseQuery(opts, formatter, args)
	if err != nil {
		return err
	}

	data, err := astjson.Marshal(node)
	if err != nil {
		return formatter.Fail(ExitFailure, string(parser.ErrCodeInvariant), err, nil)
	}
	hash, err := astjson.Hash(node)
	if err != nil {
		return formatter.Fail(ExitFailure, string(parser.ErrCodeInvariant), err, nil)
	}

	result := ParseResult{
		Query:     args[0],
		Tree:      node.String(),
		AST:       data,
		Hash:      hash,
		Selectors: ast.Selectors(node),
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	fmt.Fprintln(formatter.Writer, result.Tree)
	formatter.VerboseLog("hash: %s", result.Hash)
	formatter.VerboseLog("selectors: %s", strings.Join(result.Selectors, ", "))
	return nil
}

// parseQuery parses the single query argument, reporting failures through
// formatter. A missing or empty query is a command error; a rejected
// query is a failure carrying the parser's error code.
func parseQuery(opts *RootOptions, formatter *OutputFormatter, args []string) (ast.Node, error) {
	if len(args) == 0 {
		return nil, formatter.Fail(ExitCommandError, ErrCodeInvalidArgument, parser.ErrInvalidArgument, nil)
	}

	p, err := opts.Parser()
	if err != nil {
		return nil, formatter.Fail(ExitCommandError, ErrCodeOperatorSpec, err, map[string]string{"path": opts.Operators})
	}

	node, err := p.Parse(args[0])
	if err == nil {
		opts.Logger().Debug("parsed query", "query", args[0], "tree", node.String())
		return node, nil
	}

	if errors.Is(err, parser.ErrInvalidArgument) {
		return nil, formatter.Fail(ExitCommandError, ErrCodeInvalidArgument, err, nil)
	}

	var pe *parser.ParseError
	if errors.As(err, &pe) {
		return nil, formatter.Fail(ExitFailure, string(pe.Code), err, map[string]any{
			"offset": pe.Offset,
			"token":  pe.Token,
		})
	}
	return nil, formatter.Fail(ExitFailure, string(parser.ErrCodeInvariant), err, nil)
}
