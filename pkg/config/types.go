// Package config provides configuration loading and validation for barklog.
package config

import (
	"regexp"
	"time"

	"github.com/ccollicutt/barklog/pkg/events"
	"github.com/ccollicutt/barklog/pkg/violation"
)

// Config is the root configuration structure loaded from YAML.
type Config struct {
	EventSources    []string         `yaml:"event_sources"`
	Format          events.Format    `yaml:"format,omitempty"`
	TimestampFormat TimestampConfig  `yaml:"timestamp_format,omitempty"`
	IDPattern       string           `yaml:"id_pattern,omitempty"`
	MinConfidence   float64          `yaml:"min_confidence,omitempty"`
	Timezone        string           `yaml:"timezone,omitempty"`
	Thresholds      ThresholdsConfig `yaml:"thresholds"`
	Store           StoreConfig      `yaml:"store,omitempty"`
	Server          ServerConfig     `yaml:"server,omitempty"`
	Webhooks        []WebhookConfig  `yaml:"webhooks,omitempty"`

	// Populated during validation.
	compiledIDPattern *regexp.Regexp
	location          *time.Location
}

// CompiledIDPattern returns the compiled id pattern, or nil if none is set.
func (c *Config) CompiledIDPattern() *regexp.Regexp {
	return c.compiledIDPattern
}

// Location returns the zone used to group events into calendar days.
func (c *Config) Location() *time.Location {
	if c.location == nil {
		return time.Local
	}
	return c.location
}

// EventOptions returns the options for opening the configured event files.
func (c *Config) EventOptions() events.Options {
	return events.Options{
		Format:           c.Format,
		TimestampPattern: c.TimestampFormat.CompiledPattern(),
		TimestampLayout:  c.TimestampFormat.Layout,
		IDPattern:        c.compiledIDPattern,
		MinConfidence:    c.MinConfidence,
		Location:         c.Location(),
	}
}

// TimestampConfig defines how to extract timestamps from log-format event
// lines. It is ignored for JSON event files.
type TimestampConfig struct {
	// Pattern is a regex that captures the timestamp portion of a line.
	// Must contain at least one capture group.
	Pattern string `yaml:"pattern"`

	// Layout is the Go time layout for the captured timestamp.
	Layout string `yaml:"layout"`

	compiledPattern *regexp.Regexp
}

// CompiledPattern returns the pre-compiled regex pattern.
func (t *TimestampConfig) CompiledPattern() *regexp.Regexp {
	return t.compiledPattern
}

// ThresholdsConfig holds the bylaw thresholds. Municipalities differ, so
// none of these are fixed in code.
type ThresholdsConfig struct {
	ContinuousGap         time.Duration `yaml:"continuous_gap"`
	ContinuousMinDuration time.Duration `yaml:"continuous_min_duration"`
	SporadicGap           time.Duration `yaml:"sporadic_gap"`
	SporadicMinDuration   time.Duration `yaml:"sporadic_min_duration"`
}

// Thresholds converts the configuration into detector parameters.
func (t ThresholdsConfig) Thresholds() violation.Thresholds {
	return violation.Thresholds{
		ContinuousGap:         t.ContinuousGap,
		ContinuousMinDuration: t.ContinuousMinDuration,
		SporadicGap:           t.SporadicGap,
		SporadicMinDuration:   t.SporadicMinDuration,
	}
}

// StoreConfig locates the date-keyed violation store.
type StoreConfig struct {
	// Dir is the store root. Empty disables persistence.
	Dir string `yaml:"dir,omitempty"`
}

// ServerConfig configures the read-only HTTP API.
type ServerConfig struct {
	Addr         string        `yaml:"addr,omitempty"`
	ReadTimeout  time.Duration `yaml:"read_timeout,omitempty"`
	WriteTimeout time.Duration `yaml:"write_timeout,omitempty"`
}

// WebhookTrigger determines when a webhook fires.
type WebhookTrigger string

const (
	// WebhookTriggerOnViolations fires only when violations are found (default).
	WebhookTriggerOnViolations WebhookTrigger = "on_violations"
	// WebhookTriggerAlways fires after every analysis.
	WebhookTriggerAlways WebhookTrigger = "always"
	// WebhookTriggerNever disables the webhook.
	WebhookTriggerNever WebhookTrigger = "never"
)

// WebhookConfig defines a webhook endpoint for sending reports.
type WebhookConfig struct {
	// Name is an optional identifier for the webhook.
	Name string `yaml:"name,omitempty"`

	// URL is the webhook endpoint (required).
	URL string `yaml:"url"`

	// Token is an optional bearer token. ${VAR} and $VAR are expanded.
	Token string `yaml:"token,omitempty"`

	// Trigger defaults to on_violations.
	Trigger WebhookTrigger `yaml:"trigger,omitempty"`

	// Timeout defaults to 10s.
	Timeout time.Duration `yaml:"timeout,omitempty"`
}
