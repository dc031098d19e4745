package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/barklog/pkg/config"
	"github.com/ccollicutt/barklog/pkg/events"
)

// NewValidateCommand creates the validate command.
func NewValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <config-file>",
		Short: "Validate a configuration file",
		Long: `Validate a barklog configuration file without running analysis.

Checks:
  - YAML syntax
  - Event format and timestamp patterns
  - Thresholds are positive
  - Timezone is known
  - Event source file existence (warning only)`,
		Args: cobra.ExactArgs(1),
		RunE: runValidate,
	}
}

func runValidate(cmd *cobra.Command, args []string) error {
	configPath := args[0]
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	w := cmd.OutOrStdout()

	fmt.Fprintf(w, "Validating %s...\n", configPath)

	cfg, err := config.Load(ctx, configPath)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	t := cfg.Thresholds
	fmt.Fprintf(w, "\nConfiguration valid!\n")
	fmt.Fprintf(w, "  Event sources: %d pattern(s)\n", len(cfg.EventSources))
	fmt.Fprintf(w, "  Format:        %s\n", cfg.Format)
	fmt.Fprintf(w, "  Timezone:      %s\n", cfg.Location())
	fmt.Fprintf(w, "  Continuous:    gap %s, minimum %s\n", t.ContinuousGap, t.ContinuousMinDuration)
	fmt.Fprintf(w, "  Sporadic:      gap %s, minimum %s\n", t.SporadicGap, t.SporadicMinDuration)
	if cfg.Store.Dir != "" {
		fmt.Fprintf(w, "  Store:         %s\n", cfg.Store.Dir)
	}
	if len(cfg.Webhooks) > 0 {
		fmt.Fprintf(w, "  Webhooks:      %d\n", len(cfg.Webhooks))
	}

	for _, warning := range config.Warnings(cfg) {
		fmt.Fprintf(w, "\nWarning: %s\n", warning)
	}

	// Check if event sources exist (warnings only)
	files, err := events.ExpandGlobs(cfg.EventSources)
	if err != nil {
		fmt.Fprintf(w, "\nWarning: Error expanding event source patterns: %v\n", err)
	} else if len(files) == 0 {
		fmt.Fprintf(w, "\nWarning: No files match event source patterns\n")
	} else {
		fmt.Fprintf(w, "\nEvent files matched: %d\n", len(files))
		for _, f := range files {
			fmt.Fprintf(w, "  - %s\n", f)
		}
	}

	return nil
}
