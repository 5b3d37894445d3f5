package cli

import (
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/rsql/internal/operator"
	"github.com/roach88/rsql/internal/opspec"
	"github.com/roach88/rsql/internal/parser"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose   bool
	Format    string // "json" | "text"
	Operators string // CUE operator spec; empty means the default set
	MaxDepth  int    // 0 keeps the parser default

	// Trace generates the trace_id attached to JSON responses.
	// Nil means UUIDv7.
	Trace TraceIDGenerator

	logger *slog.Logger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the rsql CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "rsql",
		Short: "RSQL / FIQL query toolkit",
		Long: `Parse RSQL/FIQL filter expressions into a canonical tree, compile
them to SQL, and evaluate them against records or a SQLite table.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return usageError(cmd, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			if opts.MaxDepth < 0 {
				return usageError(cmd, "max-depth must not be negative")
			}
			opts.logger = newLogger(cmd.ErrOrStderr(), opts.Verbose)
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Operators, "operators", "", "CUE file declaring the comparison operators")
	cmd.PersistentFlags().IntVar(&opts.MaxDepth, "max-depth", 0, "maximum parenthesis nesting (0 = default)")

	cmd.AddCommand(NewParseCommand(opts))
	cmd.AddCommand(NewSQLCommand(opts))
	cmd.AddCommand(NewFilterCommand(opts))
	cmd.AddCommand(NewQueryCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

// usageError reports a bad global flag on stderr. Output format is not
// known yet, so it is always plain text.
func usageError(cmd *cobra.Command, message string) error {
	fmt.Fprintf(cmd.ErrOrStderr(), "Error: %s\n", message)
	return NewExitError(ExitCommandError, message)
}

// newLogger builds the diagnostic logger. Logs go to stderr so JSON on
// stdout stays parseable.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// Logger returns the configured logger, discarding output when the
// command runs without the root's pre-run hook.
func (o *RootOptions) Logger() *slog.Logger {
	if o.logger == nil {
		o.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return o.logger
}

// Parser builds a parser from the --operators and --max-depth flags.
func (o *RootOptions) Parser() (*parser.Parser, error) {
	registry := operator.Default()
	if o.Operators != "" {
		reg, err := opspec.LoadFile(o.Operators)
		if err != nil {
			return nil, err
		}
		registry = reg
		o.Logger().Debug("loaded operator spec",
			"path", o.Operators,
			"symbols", len(reg.Symbols()))
	}

	var popts []parser.Option
	if o.MaxDepth > 0 {
		popts = append(popts, parser.WithMaxDepth(o.MaxDepth))
	}
	return parser.New(registry, popts...), nil
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}
