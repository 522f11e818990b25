// Package config provides configuration data structures for reqpin.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config represents the complete reqpin configuration loaded from .reqpin.yaml.
type Config struct {
	Registry RegistryConfig `yaml:"registry" json:"registry" mapstructure:"registry"`
	Lint     LintConfig     `yaml:"lint"     json:"lint"     mapstructure:"lint"`
	Format   FormatConfig   `yaml:"format"   json:"format"   mapstructure:"format"`
	Log      LogConfig      `yaml:"log"      json:"log"      mapstructure:"log"`
}

// RegistryConfig configures access to the package registry.
type RegistryConfig struct {
	// IndexURL is the registry base URL (default: https://pypi.org).
	IndexURL string `yaml:"index_url" json:"index_url" mapstructure:"index_url"`
	// Timeout is the per-request timeout (default: 10s).
	Timeout time.Duration `yaml:"timeout" json:"timeout" mapstructure:"timeout"`
	// Concurrency is the number of parallel registry requests (default: 8).
	Concurrency int `yaml:"concurrency" json:"concurrency" mapstructure:"concurrency"`
	// AllowPrereleases includes pre-release and dev versions when
	// resolving the latest version (default: false).
	AllowPrereleases bool `yaml:"allow_prereleases" json:"allow_prereleases" mapstructure:"allow_prereleases"`
}

// RuleSetting is the configured severity for a lint rule.
type RuleSetting string

const (
	// RuleError reports findings as errors (non-zero exit).
	RuleError RuleSetting = "error"
	// RuleWarning reports findings as warnings.
	RuleWarning RuleSetting = "warning"
	// RuleInfo reports findings as informational notes.
	RuleInfo RuleSetting = "info"
	// RuleOff disables the rule.
	RuleOff RuleSetting = "off"
)

// IsValid returns true if the setting is a known valid setting.
func (s RuleSetting) IsValid() bool {
	switch s {
	case RuleError, RuleWarning, RuleInfo, RuleOff:
		return true
	default:
		return false
	}
}

// LintConfig configures the lint rule set.
type LintConfig struct {
	// Rules maps rule IDs to severity overrides. Absent rules use their
	// built-in defaults.
	Rules map[string]RuleSetting `yaml:"rules" json:"rules" mapstructure:"rules"`
}

// FormatConfig configures canonical formatting.
type FormatConfig struct {
	// Sort orders requirements alphabetically within each block (default: false).
	Sort bool `yaml:"sort" json:"sort" mapstructure:"sort"`
}

// LogConfig configures logging.
type LogConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info).
	Level string `yaml:"level" json:"level" mapstructure:"level"`
	// Dir is the log directory (default: .reqpin/logs). Empty disables file logging.
	Dir string `yaml:"dir" json:"dir" mapstructure:"dir"`
	// Console enables logging to stderr (default: false).
	Console bool `yaml:"console" json:"console" mapstructure:"console"`
	// JSON uses JSON output format (default: false).
	JSON bool `yaml:"json" json:"json" mapstructure:"json"`
	// MaxFiles is the maximum number of log files to keep (default: 10).
	MaxFiles int `yaml:"max_files" json:"max_files" mapstructure:"max_files"`
	// MaxAge is the maximum age of log files before cleanup (default: 168h).
	MaxAge time.Duration `yaml:"max_age" json:"max_age" mapstructure:"max_age"`
}

// Default values.
const (
	DefaultIndexURL    = "https://pypi.org"
	DefaultTimeout     = 10 * time.Second
	DefaultConcurrency = 8
	DefaultLogLevel    = "info"
	DefaultLogDir      = ".reqpin/logs"
	DefaultMaxLogFiles = 10
	DefaultMaxLogAge   = 7 * 24 * time.Hour
)

// NewConfig returns a new Config with default values applied.
func NewConfig() *Config {
	return &Config{
		Registry: RegistryConfig{
			IndexURL:         DefaultIndexURL,
			Timeout:          DefaultTimeout,
			Concurrency:      DefaultConcurrency,
			AllowPrereleases: false,
		},
		Lint: LintConfig{
			Rules: map[string]RuleSetting{},
		},
		Format: FormatConfig{
			Sort: false,
		},
		Log: LogConfig{
			Level:    DefaultLogLevel,
			Dir:      DefaultLogDir,
			Console:  false,
			JSON:     false,
			MaxFiles: DefaultMaxLogFiles,
			MaxAge:   DefaultMaxLogAge,
		},
	}
}

// ApplyDefaults applies default values to any unset fields.
// This is used after loading config from file to fill in missing values.
func (c *Config) ApplyDefaults() {
	defaults := NewConfig()

	if c.Registry.IndexURL == "" {
		c.Registry.IndexURL = defaults.Registry.IndexURL
	}
	if c.Registry.Timeout == 0 {
		c.Registry.Timeout = defaults.Registry.Timeout
	}
	if c.Registry.Concurrency == 0 {
		c.Registry.Concurrency = defaults.Registry.Concurrency
	}

	if c.Lint.Rules == nil {
		c.Lint.Rules = map[string]RuleSetting{}
	}

	if c.Log.Level == "" {
		c.Log.Level = defaults.Log.Level
	}
	if c.Log.MaxFiles == 0 {
		c.Log.MaxFiles = defaults.Log.MaxFiles
	}
	if c.Log.MaxAge == 0 {
		c.Log.MaxAge = defaults.Log.MaxAge
	}
}

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []*ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}
	msg := "multiple validation errors:"
	for _, err := range e {
		msg += "\n  - " + err.Error()
	}
	return msg
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidationErrors

	if c.Registry.IndexURL != "" &&
		!strings.HasPrefix(c.Registry.IndexURL, "https://") &&
		!strings.HasPrefix(c.Registry.IndexURL, "http://") {
		errs = append(errs, &ValidationError{
			Field:   "registry.index_url",
			Message: "must be an http(s) URL",
		})
	}
	if c.Registry.Timeout < 0 {
		errs = append(errs, &ValidationError{Field: "registry.timeout", Message: "must be non-negative"})
	}
	if c.Registry.Concurrency < 0 {
		errs = append(errs, &ValidationError{Field: "registry.concurrency", Message: "must be non-negative"})
	}

	for id, setting := range c.Lint.Rules {
		if !setting.IsValid() {
			errs = append(errs, &ValidationError{
				Field:   fmt.Sprintf("lint.rules.%s", id),
				Message: "must be 'error', 'warning', 'info', or 'off'",
			})
		}
	}

	if c.Log.Level != "" {
		switch c.Log.Level {
		case "debug", "info", "warn", "warning", "error":
			// valid
		default:
			errs = append(errs, &ValidationError{
				Field:   "log.level",
				Message: "must be 'debug', 'info', 'warn', or 'error'",
			})
		}
	}
	if c.Log.MaxFiles < 0 {
		errs = append(errs, &ValidationError{Field: "log.max_files", Message: "must be non-negative"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
