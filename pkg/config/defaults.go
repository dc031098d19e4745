package config

import (
	"os"
	"strings"
	"time"

	"github.com/ccollicutt/barklog/pkg/events"
	"github.com/ccollicutt/barklog/pkg/violation"
)

// Default values for configuration.
const (
	DefaultWebhookTimeout      = 10 * time.Second
	DefaultServerAddr          = ":9464"
	DefaultServerReadTimeout   = 5 * time.Second
	DefaultServerWriteTimeout  = 10 * time.Second
	DefaultTimestampPattern    = `^\[(\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}\.\d{3})\]`
	DefaultTimestampLayout     = "2006-01-02 15:04:05.000"
	DefaultTimezone            = "Local"
	sporadicGapWarningTemplate = "sporadic_gap (%s) is shorter than continuous_gap (%s)"
)

// Environment variable names.
const (
	EnvEventSources = "BARKLOG_EVENT_SOURCES"
	EnvTimezone     = "BARKLOG_TIMEZONE"
	EnvStoreDir     = "BARKLOG_STORE_DIR"
)

// DefaultConfig returns a configuration with the commonly observed bylaw
// thresholds.
func DefaultConfig() *Config {
	t := violation.DefaultThresholds()
	return &Config{
		EventSources: []string{},
		Format:       events.FormatJSON,
		TimestampFormat: TimestampConfig{
			Pattern: DefaultTimestampPattern,
			Layout:  DefaultTimestampLayout,
		},
		Timezone: DefaultTimezone,
		Thresholds: ThresholdsConfig{
			ContinuousGap:         t.ContinuousGap,
			ContinuousMinDuration: t.ContinuousMinDuration,
			SporadicGap:           t.SporadicGap,
			SporadicMinDuration:   t.SporadicMinDuration,
		},
		Server: ServerConfig{
			Addr:         DefaultServerAddr,
			ReadTimeout:  DefaultServerReadTimeout,
			WriteTimeout: DefaultServerWriteTimeout,
		},
	}
}

// applyEnvironmentOverrides applies environment variable overrides to the config.
func (c *Config) applyEnvironmentOverrides() {
	if sources := os.Getenv(EnvEventSources); sources != "" {
		c.EventSources = strings.Split(sources, string(os.PathListSeparator))
	}
	if tz := os.Getenv(EnvTimezone); tz != "" {
		c.Timezone = tz
	}
	if dir := os.Getenv(EnvStoreDir); dir != "" {
		c.Store.Dir = dir
	}
}
