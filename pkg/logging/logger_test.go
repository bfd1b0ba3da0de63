package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Level != LevelInfo {
		t.Errorf("Expected default level to be Info, got %s", cfg.Level)
	}

	if cfg.Pretty != false {
		t.Error("Expected default pretty to be false")
	}
}

func TestSetup(t *testing.T) {
	tests := []struct {
		name     string
		level    LogLevel
		logAt    func(logger zerolog.Logger, msg string)
		testMsg  string
		expected bool
	}{
		{
			name:  "info logged at info level",
			level: LevelInfo,
			logAt: func(logger zerolog.Logger, msg string) {
				logger.Info().Msg(msg)
			},
			testMsg:  "test info message",
			expected: true,
		},
		{
			name:  "debug suppressed at info level",
			level: LevelInfo,
			logAt: func(logger zerolog.Logger, msg string) {
				logger.Debug().Msg(msg)
			},
			testMsg:  "test debug message",
			expected: false,
		},
		{
			name:  "warn logged at warn level",
			level: LevelWarn,
			logAt: func(logger zerolog.Logger, msg string) {
				logger.Warn().Msg(msg)
			},
			testMsg:  "test warn message",
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			logger, closer, err := Setup(Config{Level: tt.level, Output: buf})
			if err != nil {
				t.Fatalf("Setup() error = %v", err)
			}
			if closer != nil {
				t.Error("expected no closer without a file path")
			}

			tt.logAt(logger, tt.testMsg)

			got := strings.Contains(buf.String(), tt.testMsg)
			if got != tt.expected {
				t.Errorf("output contains %q = %v, want %v (output: %s)",
					tt.testMsg, got, tt.expected, buf.String())
			}
		})
	}
}

func TestSetup_FileDestination(t *testing.T) {
	path := filepath.Join(t.TempDir(), "client.log")

	logger, closer, err := Setup(Config{Level: LevelInfo, FilePath: path})
	if err != nil {
		t.Fatalf("Setup() error = %v", err)
	}
	if closer == nil {
		t.Fatal("expected a closer for the log file")
	}

	logger.Info().Msg("written to file")
	if err := closer.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !strings.Contains(string(data), "written to file") {
		t.Errorf("log file missing message, got: %s", data)
	}
}

func TestSetup_FileOpenError(t *testing.T) {
	_, _, err := Setup(Config{
		Level:    LevelInfo,
		FilePath: filepath.Join(t.TempDir(), "missing", "client.log"),
	})
	if err == nil {
		t.Fatal("expected error opening file in missing directory")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    LogLevel
		expected zerolog.Level
	}{
		{LevelDebug, zerolog.DebugLevel},
		{LevelInfo, zerolog.InfoLevel},
		{LevelWarn, zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{LevelError, zerolog.ErrorLevel},
		{"bogus", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(string(tt.input), func(t *testing.T) {
			if got := parseLevel(tt.input); got != tt.expected {
				t.Errorf("parseLevel(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestNewLogger(t *testing.T) {
	buf := &bytes.Buffer{}
	if _, _, err := Setup(Config{Level: LevelInfo, Output: buf}); err != nil {
		t.Fatalf("Setup() error = %v", err)
	}

	logger := NewLogger("test-component")
	logger.Info().Msg("component message")

	if !strings.Contains(buf.String(), "test-component") {
		t.Errorf("expected component field in output: %s", buf.String())
	}
}
