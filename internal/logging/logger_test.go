package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLevel_String(t *testing.T) {
	tests := []struct {
		level Level
		want  string
	}{
		{LevelDebug, "DEBUG"},
		{LevelInfo, "INFO"},
		{LevelWarn, "WARN"},
		{LevelError, "ERROR"},
		{Level(99), "UNKNOWN"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.level.String(); got != tt.want {
				t.Errorf("Level.String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"debug", LevelDebug},
		{"info", LevelInfo},
		{"warn", LevelWarn},
		{"warning", LevelWarn},
		{"error", LevelError},
		{"bogus", LevelInfo},
		{"", LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseLevel(tt.in); got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestNew_CreatesLogFile(t *testing.T) {
	dir := t.TempDir()
	logger, err := New(&Config{Level: LevelDebug, LogDir: dir})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	defer logger.Close()

	logger.Info("checking pins", "manifest", "requirements.txt", "count", 12)

	path := logger.LogPath()
	if path == "" {
		t.Fatal("LogPath() is empty")
	}
	if !strings.HasPrefix(filepath.Base(path), "reqpin_") {
		t.Errorf("log file %q does not use the reqpin_ prefix", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error: %v", err)
	}
	if !strings.Contains(string(data), "checking pins") {
		t.Errorf("log file missing message: %s", data)
	}
	if !strings.Contains(string(data), "requirements.txt") {
		t.Errorf("log file missing attribute: %s", data)
	}
}

func TestNew_RespectsLevel(t *testing.T) {
	dir := t.TempDir()
	logger, err := New(&Config{Level: LevelError, LogDir: dir})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	defer logger.Close()

	logger.Debug("too quiet")
	logger.Info("still too quiet")
	logger.Error("loud")

	data, _ := os.ReadFile(logger.LogPath())
	if strings.Contains(string(data), "too quiet") {
		t.Error("messages below the configured level were written")
	}
	if !strings.Contains(string(data), "loud") {
		t.Error("error message was not written")
	}
}

func TestNew_JSONFormat(t *testing.T) {
	dir := t.TempDir()
	logger, err := New(&Config{Level: LevelInfo, LogDir: dir, JSONFormat: true})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	defer logger.Close()

	logger.Info("hello")

	data, _ := os.ReadFile(logger.LogPath())
	if !strings.HasPrefix(strings.TrimSpace(string(data)), "{") {
		t.Errorf("JSON log does not look like JSON: %s", data)
	}
}

func TestCleanup_RemovesOldFiles(t *testing.T) {
	dir := t.TempDir()

	// Seed an old log file well past the max age.
	old := filepath.Join(dir, "reqpin_20200101_000000.log")
	if err := os.WriteFile(old, []byte("old"), 0644); err != nil {
		t.Fatal(err)
	}
	past := time.Now().Add(-30 * 24 * time.Hour)
	if err := os.Chtimes(old, past, past); err != nil {
		t.Fatal(err)
	}

	logger, err := New(&Config{Level: LevelInfo, LogDir: dir, MaxLogAge: 7 * 24 * time.Hour})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	defer logger.Close()

	if err := logger.Cleanup(); err != nil {
		t.Fatalf("Cleanup() error: %v", err)
	}

	if _, err := os.Stat(old); !os.IsNotExist(err) {
		t.Error("old log file was not removed")
	}
	if _, err := os.Stat(logger.LogPath()); err != nil {
		t.Error("current log file was removed")
	}
}

func TestGlobal_DefaultsToNoop(t *testing.T) {
	SetGlobal(nil)
	t.Cleanup(func() { SetGlobal(nil) })

	// Must not panic and must return a usable logger.
	Global().Info("into the void")
	Info("also into the void")
}

func TestSetGlobal(t *testing.T) {
	dir := t.TempDir()
	logger, err := New(&Config{Level: LevelInfo, LogDir: dir})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	SetGlobal(logger)
	t.Cleanup(func() {
		CloseGlobal()
	})

	Info("from the global logger")

	data, _ := os.ReadFile(logger.LogPath())
	if !strings.Contains(string(data), "from the global logger") {
		t.Error("global logger did not write to the configured file")
	}
}
