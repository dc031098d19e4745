package cli

import (
	"bytes"
	"strings"
	"testing"
)

func TestNewRootCommand(t *testing.T) {
	cmd := NewRootCommand()

	want := []string{"analyze", "validate", "show", "serve", "version"}
	for _, name := range want {
		found := false
		for _, sub := range cmd.Commands() {
			if sub.Name() == name {
				found = true
			}
		}
		if !found {
			t.Errorf("missing subcommand %s", name)
		}
	}

	if cmd.PersistentFlags().Lookup("log-level") == nil {
		t.Error("missing --log-level flag")
	}
}

func TestNewLogger(t *testing.T) {
	tests := []struct {
		level   string
		wantErr bool
	}{
		{"debug", false},
		{"info", false},
		{"WARN", false},
		{"error", false},
		{"loud", true},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			_, err := NewLogger(&bytes.Buffer{}, tt.level)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewLogger(%q) error = %v, wantErr %v", tt.level, err, tt.wantErr)
			}
		})
	}
}

func TestNewLogger_FiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(&buf, "warn")
	if err != nil {
		t.Fatal(err)
	}

	logger.Info("hidden")
	logger.Warn("shown")

	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "shown") {
		t.Errorf("log output = %q", buf.String())
	}
}

func TestRootCommand_InvalidLogLevel(t *testing.T) {
	cmd := NewRootCommand()
	cmd.SetArgs([]string{"--log-level", "loud", "version"})
	cmd.SetOut(&bytes.Buffer{})

	if err := cmd.Execute(); err == nil {
		t.Error("expected error for invalid log level")
	}
}
