package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/barklog/pkg/config"
	"github.com/ccollicutt/barklog/pkg/output"
	"github.com/ccollicutt/barklog/pkg/store"
)

// ShowOptions holds command-line options for the show command.
type ShowOptions struct {
	Output  string
	Verbose bool
}

// NewShowCommand creates the show command.
func NewShowCommand() *cobra.Command {
	opts := &ShowOptions{}

	cmd := &cobra.Command{
		Use:   "show <config-file> <date>",
		Short: "Show a saved day",
		Long: `Render a day previously saved with 'barklog analyze --save'.

The date is a calendar day in the configured timezone, as YYYY-MM-DD.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "text", "Output format (text|json)")
	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "v", false, "List bark event ids of each violation")

	return cmd
}

func runShow(cmd *cobra.Command, args []string, opts *ShowOptions) error {
	configPath, date := args[0], args[1]
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	st, err := openStore(ctx, configPath)
	if err != nil {
		return err
	}

	rec, err := st.Load(date)
	if err != nil {
		return fmt.Errorf("loading %s: %w", date, err)
	}

	return renderReport(ctx, cmd.OutOrStdout(), opts.Output,
		output.FormatOptions{Verbose: opts.Verbose}, output.NewStoredReport(rec))
}

// openStore loads the config at path and opens its store.
func openStore(ctx context.Context, path string) (*store.Store, error) {
	cfg, err := config.Load(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if cfg.Store.Dir == "" {
		return nil, fmt.Errorf("store.dir is not set in %s", path)
	}
	return store.New(cfg.Store.Dir)
}

// renderReport writes report in the named format.
func renderReport(ctx context.Context, w io.Writer, format string, fo output.FormatOptions, report *output.Report) error {
	formatter, err := output.NewFormatter(format, fo)
	if err != nil {
		return err
	}
	if err := formatter.Format(ctx, report, w); err != nil {
		return fmt.Errorf("formatting output: %w", err)
	}
	return nil
}
