package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, DefaultConfigName)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestLoadConfig_Full(t *testing.T) {
	path := writeConfig(t, `
registry:
  index_url: https://mirror.example.org
  timeout: 30s
  concurrency: 4
  allow_prereleases: true
lint:
  rules:
    pins-only: warning
    unsorted: error
format:
  sort: true
log:
  level: debug
  console: true
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Registry.IndexURL != "https://mirror.example.org" {
		t.Errorf("IndexURL = %q", cfg.Registry.IndexURL)
	}
	if cfg.Registry.Timeout != 30*time.Second {
		t.Errorf("Timeout = %v, want 30s", cfg.Registry.Timeout)
	}
	if cfg.Registry.Concurrency != 4 {
		t.Errorf("Concurrency = %d, want 4", cfg.Registry.Concurrency)
	}
	if !cfg.Registry.AllowPrereleases {
		t.Error("AllowPrereleases = false, want true")
	}
	if cfg.Lint.Rules["pins-only"] != RuleWarning {
		t.Errorf("pins-only = %q, want warning", cfg.Lint.Rules["pins-only"])
	}
	if cfg.Lint.Rules["unsorted"] != RuleError {
		t.Errorf("unsorted = %q, want error", cfg.Lint.Rules["unsorted"])
	}
	if !cfg.Format.Sort {
		t.Error("Format.Sort = false, want true")
	}
	if cfg.Log.Level != "debug" || !cfg.Log.Console {
		t.Errorf("Log = %+v", cfg.Log)
	}
}

func TestLoadConfig_PartialAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
registry:
  concurrency: 2
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Registry.Concurrency != 2 {
		t.Errorf("Concurrency = %d, want 2", cfg.Registry.Concurrency)
	}
	if cfg.Registry.IndexURL != DefaultIndexURL {
		t.Errorf("IndexURL = %q, want default", cfg.Registry.IndexURL)
	}
	if cfg.Registry.Timeout != DefaultTimeout {
		t.Errorf("Timeout = %v, want default", cfg.Registry.Timeout)
	}
}

func TestLoadConfig_RuleOffLiteral(t *testing.T) {
	// YAML 1.1 parses a bare `off` as boolean false; the decode hook must
	// map it back to RuleOff.
	path := writeConfig(t, `
lint:
  rules:
    unsorted: off
    trailing-whitespace: "off"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Lint.Rules["unsorted"] != RuleOff {
		t.Errorf("unsorted = %q, want off", cfg.Lint.Rules["unsorted"])
	}
	if cfg.Lint.Rules["trailing-whitespace"] != RuleOff {
		t.Errorf("trailing-whitespace = %q, want off", cfg.Lint.Rules["trailing-whitespace"])
	}
}

func TestLoadConfig_NotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), DefaultConfigName))
	if err == nil {
		t.Fatal("Load() succeeded for missing file")
	}
	if _, ok := err.(*LoadError); !ok {
		t.Errorf("error type = %T, want *LoadError", err)
	}
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "registry: [not: a map\n")
	if _, err := Load(path); err == nil {
		t.Error("Load() accepted invalid YAML")
	}
}

func TestLoadConfig_ValidationFailure(t *testing.T) {
	path := writeConfig(t, `
lint:
  rules:
    pins-only: shout
`)
	if _, err := Load(path); err == nil {
		t.Error("Load() accepted an invalid rule setting")
	}
}

func TestLoadOrDefault_MissingFile(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), DefaultConfigName))
	if err != nil {
		t.Fatalf("LoadOrDefault() error: %v", err)
	}
	if cfg.Registry.IndexURL != DefaultIndexURL {
		t.Errorf("IndexURL = %q, want default", cfg.Registry.IndexURL)
	}
}

func TestLoadOrDefault_ExistingFile(t *testing.T) {
	path := writeConfig(t, "registry:\n  concurrency: 3\n")
	cfg, err := LoadOrDefault(path)
	if err != nil {
		t.Fatalf("LoadOrDefault() error: %v", err)
	}
	if cfg.Registry.Concurrency != 3 {
		t.Errorf("Concurrency = %d, want 3", cfg.Registry.Concurrency)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("REQPIN_REGISTRY_INDEX_URL", "https://env.example.org")
	t.Setenv("REQPIN_REGISTRY_TIMEOUT", "42s")
	t.Setenv("REQPIN_REGISTRY_ALLOW_PRERELEASES", "yes")
	t.Setenv("REQPIN_LOG_LEVEL", "debug")

	path := writeConfig(t, "registry:\n  timeout: 5s\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Registry.IndexURL != "https://env.example.org" {
		t.Errorf("IndexURL = %q, want env override", cfg.Registry.IndexURL)
	}
	if cfg.Registry.Timeout != 42*time.Second {
		t.Errorf("Timeout = %v, want env override 42s", cfg.Registry.Timeout)
	}
	if !cfg.Registry.AllowPrereleases {
		t.Error("AllowPrereleases = false, want env override true")
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want debug", cfg.Log.Level)
	}
}

func TestParseBool(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"true", true},
		{"TRUE", true},
		{"1", true},
		{"yes", true},
		{"false", false},
		{"0", false},
		{"no", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := parseBool(tt.in); got != tt.want {
				t.Errorf("parseBool(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
