package commands

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ccollicutt/barklog/pkg/analyzer"
	"github.com/ccollicutt/barklog/pkg/config"
	"github.com/ccollicutt/barklog/pkg/events"
	"github.com/ccollicutt/barklog/pkg/metrics"
	"github.com/ccollicutt/barklog/pkg/output"
	"github.com/ccollicutt/barklog/pkg/store"
	"github.com/ccollicutt/barklog/pkg/violation"
	"github.com/ccollicutt/barklog/pkg/webhook"
)

// Exit codes.
const (
	ExitOK         = 0
	ExitViolations = 1
	ExitError      = 2
)

// ExitCode is set by commands to indicate the result
var ExitCode = ExitOK

// envPrefix namespaces the environment variables bound to flags.
const envPrefix = "BARKLOG"

// AnalyzeOptions holds command-line options for the analyze command.
type AnalyzeOptions struct {
	Output      string
	Dates       []string
	Since       string
	Verbose     bool
	Quiet       bool
	Concurrency int

	// Threshold overrides; zero keeps the configured value.
	ContinuousGap         time.Duration
	ContinuousMinDuration time.Duration
	SporadicGap           time.Duration
	SporadicMinDuration   time.Duration

	Save        bool
	MetricsFile string

	// Webhook options
	WebhookURL     string
	WebhookToken   string
	WebhookTrigger string
}

// NewAnalyzeCommand creates the analyze command.
func NewAnalyzeCommand() *cobra.Command {
	opts := &AnalyzeOptions{}

	cmd := &cobra.Command{
		Use:   "analyze <config-file>",
		Short: "Classify bark events into violations",
		Long: `Analyze the configured bark event files day by day.

Detects:
  - Continuous violations (sustained barking with short gaps)
  - Sporadic violations (intermittent barking accumulating over longer gaps)

Threshold flags can also be set through the environment, for example
BARKLOG_CONTINUOUS_GAP=15s.

Exit codes:
  0 - No violations detected
  1 - Violations detected
  2 - Configuration or runtime error`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := bindEnv(cmd, opts); err != nil {
				return err
			}
			return runAnalyze(cmd, args, opts)
		},
	}

	// Flags
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "text", "Output format (text|json)")
	cmd.Flags().StringSliceVar(&opts.Dates, "date", nil, "Analyze specific day(s) only, YYYY-MM-DD (can be repeated)")
	cmd.Flags().StringVar(&opts.Since, "since", "", "Limit analysis to a recent window (e.g., 24h, 168h)")
	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "v", false, "List bark event ids of each violation")
	cmd.Flags().BoolVarP(&opts.Quiet, "quiet", "q", false, "Summary only, no details")
	cmd.Flags().IntVar(&opts.Concurrency, "concurrency", 0, "Days classified in parallel (default: number of CPUs)")

	cmd.Flags().DurationVar(&opts.ContinuousGap, "continuous-gap", 0, "Override thresholds.continuous_gap")
	cmd.Flags().DurationVar(&opts.ContinuousMinDuration, "continuous-min-duration", 0, "Override thresholds.continuous_min_duration")
	cmd.Flags().DurationVar(&opts.SporadicGap, "sporadic-gap", 0, "Override thresholds.sporadic_gap")
	cmd.Flags().DurationVar(&opts.SporadicMinDuration, "sporadic-min-duration", 0, "Override thresholds.sporadic_min_duration")

	cmd.Flags().BoolVar(&opts.Save, "save", false, "Save each day to the configured store")
	cmd.Flags().StringVar(&opts.MetricsFile, "metrics-file", "", "Write Prometheus metrics to this textfile")

	// Webhook flags
	cmd.Flags().StringVar(&opts.WebhookURL, "webhook-url", "", "Webhook endpoint URL")
	cmd.Flags().StringVar(&opts.WebhookToken, "webhook-token", "", "Bearer token for webhook auth")
	cmd.Flags().StringVar(&opts.WebhookTrigger, "webhook-trigger", string(config.WebhookTriggerOnViolations), "When to fire webhook (on_violations|always|never)")

	return cmd
}

// bindEnv lets BARKLOG_* environment variables fill flags that were not
// given on the command line.
func bindEnv(cmd *cobra.Command, opts *AnalyzeOptions) error {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("binding flags: %w", err)
	}

	opts.Output = v.GetString("output")
	opts.ContinuousGap = v.GetDuration("continuous-gap")
	opts.ContinuousMinDuration = v.GetDuration("continuous-min-duration")
	opts.SporadicGap = v.GetDuration("sporadic-gap")
	opts.SporadicMinDuration = v.GetDuration("sporadic-min-duration")
	opts.MetricsFile = v.GetString("metrics-file")
	opts.WebhookURL = v.GetString("webhook-url")
	opts.WebhookToken = v.GetString("webhook-token")
	opts.WebhookTrigger = v.GetString("webhook-trigger")
	return nil
}

func runAnalyze(cmd *cobra.Command, args []string, opts *AnalyzeOptions) error {
	configPath := args[0]
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ExitCode = ExitOK

	// Load configuration
	cfg, err := config.Load(ctx, configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	formatter, err := output.NewFormatter(opts.Output, output.FormatOptions{
		Verbose: opts.Verbose,
		Quiet:   opts.Quiet,
	})
	if err != nil {
		return err
	}

	var st *store.Store
	if opts.Save {
		if cfg.Store.Dir == "" {
			return fmt.Errorf("--save requires store.dir in %s", configPath)
		}
		if st, err = store.New(cfg.Store.Dir); err != nil {
			return err
		}
	}

	analyzerOpts, err := buildAnalyzerOptions(cfg, opts)
	if err != nil {
		return err
	}

	// Create analyzer
	a, err := analyzer.NewAnalyzer(cfg, analyzerOpts...)
	if err != nil {
		return fmt.Errorf("creating analyzer: %w", err)
	}

	// Expand event source globs
	files, err := events.ExpandGlobs(cfg.EventSources)
	if err != nil {
		return fmt.Errorf("expanding event sources: %w", err)
	}
	if len(files) == 0 {
		return fmt.Errorf("no event files matched patterns: %v", cfg.EventSources)
	}
	slog.Debug("event files", "count", len(files), "files", files)

	source, err := events.Open(files, cfg.EventOptions())
	if err != nil {
		return fmt.Errorf("opening event sources: %w", err)
	}
	defer source.Close()

	// Run analysis
	result, err := a.Analyze(ctx, source)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	report := output.NewReport(result, configPath)

	if err := formatter.Format(ctx, report, cmd.OutOrStdout()); err != nil {
		return fmt.Errorf("formatting output: %w", err)
	}

	if st != nil {
		if err := saveDays(st, result); err != nil {
			return err
		}
	}

	if opts.MetricsFile != "" {
		rec := metrics.NewRecorder()
		rec.Observe(report)
		if err := rec.WriteTextfile(opts.MetricsFile); err != nil {
			return err
		}
		slog.Info("metrics written", "path", opts.MetricsFile)
	}

	// Send webhooks (errors logged but don't fail analysis)
	sendWebhooks(ctx, cfg, opts, report)

	// Set exit code based on results
	if report.HasViolations() {
		ExitCode = ExitViolations
	}

	return nil
}

func buildAnalyzerOptions(cfg *config.Config, opts *AnalyzeOptions) ([]analyzer.AnalyzerOption, error) {
	var analyzerOpts []analyzer.AnalyzerOption

	if opts.Since != "" {
		duration, err := time.ParseDuration(opts.Since)
		if err != nil {
			return nil, fmt.Errorf("invalid since %q: %w", opts.Since, err)
		}
		end := time.Now()
		analyzerOpts = append(analyzerOpts, analyzer.WithTimeRange(end.Add(-duration), end))
	}

	if len(opts.Dates) > 0 {
		analyzerOpts = append(analyzerOpts, analyzer.WithDates(opts.Dates))
	}

	if opts.Concurrency > 0 {
		analyzerOpts = append(analyzerOpts, analyzer.WithConcurrency(opts.Concurrency))
	}

	analyzerOpts = append(analyzerOpts, analyzer.WithThresholds(overrideThresholds(cfg.Thresholds.Thresholds(), opts)))

	return analyzerOpts, nil
}

// overrideThresholds applies the non-zero threshold flags to t.
func overrideThresholds(t violation.Thresholds, opts *AnalyzeOptions) violation.Thresholds {
	if opts.ContinuousGap != 0 {
		t.ContinuousGap = opts.ContinuousGap
	}
	if opts.ContinuousMinDuration != 0 {
		t.ContinuousMinDuration = opts.ContinuousMinDuration
	}
	if opts.SporadicGap != 0 {
		t.SporadicGap = opts.SporadicGap
	}
	if opts.SporadicMinDuration != 0 {
		t.SporadicMinDuration = opts.SporadicMinDuration
	}
	return t
}

func saveDays(st *store.Store, result *analyzer.AnalysisResult) error {
	for _, rec := range output.NewDayRecords(result) {
		if err := st.Save(rec); err != nil {
			return fmt.Errorf("saving %s: %w", rec.Date, err)
		}
		slog.Info("day saved", "date", rec.Date, "violations", len(rec.Violations), "dir", st.Dir())
	}
	return nil
}

// sendWebhooks sends the report to all configured webhooks.
// Errors are logged but don't fail the analysis.
func sendWebhooks(ctx context.Context, cfg *config.Config, opts *AnalyzeOptions, report *output.Report) {
	webhooks := collectWebhooks(cfg, opts)
	if len(webhooks) == 0 {
		return
	}

	client := webhook.NewClient()

	for _, wh := range webhooks {
		if !webhook.ShouldFire(wh.Trigger, report.HasViolations()) {
			continue
		}

		resp := client.Send(ctx, report, webhook.Options(wh))

		name := wh.Name
		if name == "" {
			name = wh.URL
		}

		if resp.Success() {
			slog.Info("webhook sent", "webhook", name, "status", resp.StatusCode, "duration", resp.Duration)
		} else {
			slog.Warn("webhook failed", "webhook", name, "error", resp.Error)
		}
	}
}

// collectWebhooks merges config file webhooks with CLI webhook.
func collectWebhooks(cfg *config.Config, opts *AnalyzeOptions) []config.WebhookConfig {
	webhooks := make([]config.WebhookConfig, 0, len(cfg.Webhooks)+1)
	webhooks = append(webhooks, cfg.Webhooks...)

	if opts.WebhookURL != "" {
		trigger := config.WebhookTrigger(opts.WebhookTrigger)
		if trigger == "" {
			trigger = config.WebhookTriggerOnViolations
		}

		webhooks = append(webhooks, config.WebhookConfig{
			Name:    "cli",
			URL:     opts.WebhookURL,
			Token:   opts.WebhookToken,
			Trigger: trigger,
			Timeout: config.DefaultWebhookTimeout,
		})
	}

	return webhooks
}
