package config

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ccollicutt/barklog/pkg/events"
)

// Load reads and validates a configuration file.
func Load(_ context.Context, path string) (*Config, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- user-provided config path is expected
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.applyEnvironmentOverrides()

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Validate checks a configuration for errors, compiles patterns and
// resolves the timezone.
func Validate(cfg *Config) error {
	if len(cfg.EventSources) == 0 {
		return errors.New("event_sources: at least one event source is required")
	}

	switch cfg.Format {
	case "":
		cfg.Format = events.FormatJSON
	case events.FormatJSON:
	case events.FormatLog:
		if err := validateTimestampFormat(&cfg.TimestampFormat); err != nil {
			return fmt.Errorf("timestamp_format: %w", err)
		}
		if cfg.IDPattern != "" {
			re, err := regexp.Compile(cfg.IDPattern)
			if err != nil {
				return fmt.Errorf("id_pattern: invalid pattern: %w", err)
			}
			if re.NumSubexp() < 1 {
				return errors.New("id_pattern: pattern must have a capture group for the id")
			}
			cfg.compiledIDPattern = re
		}
	default:
		return fmt.Errorf("format: invalid value %q (must be json or log)", cfg.Format)
	}

	if cfg.MinConfidence < 0 || cfg.MinConfidence > 1 {
		return fmt.Errorf("min_confidence: must be between 0 and 1, got %g", cfg.MinConfidence)
	}

	tz := cfg.Timezone
	if tz == "" {
		tz = DefaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return fmt.Errorf("timezone: %w", err)
	}
	cfg.location = loc

	if err := validateThresholds(&cfg.Thresholds); err != nil {
		return fmt.Errorf("thresholds: %w", err)
	}

	for i := range cfg.Webhooks {
		if err := validateWebhook(&cfg.Webhooks[i]); err != nil {
			name := cfg.Webhooks[i].Name
			if name == "" {
				name = cfg.Webhooks[i].URL
			}
			return fmt.Errorf("webhooks[%d] (%s): %w", i, name, err)
		}
	}

	return nil
}

// Warnings returns non-fatal observations about a validated configuration.
func Warnings(cfg *Config) []string {
	var warnings []string
	t := cfg.Thresholds
	if t.SporadicGap < t.ContinuousGap {
		warnings = append(warnings, fmt.Sprintf(sporadicGapWarningTemplate, t.SporadicGap, t.ContinuousGap))
	}
	if t.SporadicMinDuration < t.ContinuousMinDuration {
		warnings = append(warnings, fmt.Sprintf("sporadic_min_duration (%s) is shorter than continuous_min_duration (%s)",
			t.SporadicMinDuration, t.ContinuousMinDuration))
	}
	return warnings
}

func validateTimestampFormat(tf *TimestampConfig) error {
	if tf.Pattern == "" {
		return errors.New("pattern is required")
	}

	re, err := regexp.Compile(tf.Pattern)
	if err != nil {
		return fmt.Errorf("invalid pattern: %w", err)
	}
	if re.NumSubexp() < 1 {
		return errors.New("pattern must have at least one capture group for the timestamp")
	}
	tf.compiledPattern = re

	if tf.Layout == "" {
		return errors.New("layout is required")
	}

	return nil
}

func validateThresholds(t *ThresholdsConfig) error {
	fields := []struct {
		name  string
		value time.Duration
	}{
		{"continuous_gap", t.ContinuousGap},
		{"continuous_min_duration", t.ContinuousMinDuration},
		{"sporadic_gap", t.SporadicGap},
		{"sporadic_min_duration", t.SporadicMinDuration},
	}
	for _, f := range fields {
		if f.value <= 0 {
			return fmt.Errorf("%s must be positive, got %s", f.name, f.value)
		}
	}
	return nil
}

func validateWebhook(wh *WebhookConfig) error {
	if wh.URL == "" {
		return errors.New("url is required")
	}

	u, err := url.Parse(wh.URL)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("url scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return errors.New("url must have a host")
	}

	wh.Token = expandEnvVar(wh.Token)

	switch wh.Trigger {
	case "":
		wh.Trigger = WebhookTriggerOnViolations
	case WebhookTriggerOnViolations, WebhookTriggerAlways, WebhookTriggerNever:
	default:
		return fmt.Errorf("invalid trigger %q (must be on_violations, always, or never)", wh.Trigger)
	}

	if wh.Timeout <= 0 {
		wh.Timeout = DefaultWebhookTimeout
	}

	return nil
}

// expandEnvVar expands a value of the form ${VAR} or $VAR.
func expandEnvVar(s string) string {
	if strings.HasPrefix(s, "${") && strings.HasSuffix(s, "}") {
		return os.Getenv(s[2 : len(s)-1])
	}
	if strings.HasPrefix(s, "$") {
		return os.Getenv(s[1:])
	}
	return s
}
