// Package lint checks parsed requirements manifests against a
// configurable rule set and reports findings.
package lint

import (
	"fmt"
	"sort"

	"github.com/reqpin/reqpin/internal/config"
	"github.com/reqpin/reqpin/internal/errors"
	"github.com/reqpin/reqpin/internal/manifest"
)

// Severity classifies a finding.
type Severity string

const (
	// SeverityError findings fail the lint run.
	SeverityError Severity = "error"
	// SeverityWarning findings are reported but do not fail the run.
	SeverityWarning Severity = "warning"
	// SeverityInfo findings are informational notes.
	SeverityInfo Severity = "info"
)

// Finding is a single lint result.
type Finding struct {
	// Rule is the ID of the rule that produced the finding.
	Rule string `json:"rule" yaml:"rule"`
	// Severity is the effective severity after config overrides.
	Severity Severity `json:"severity" yaml:"severity"`
	// Path is the manifest path, empty for in-memory manifests.
	Path string `json:"path,omitempty" yaml:"path,omitempty"`
	// Line is the 1-based line number the finding refers to.
	Line int `json:"line" yaml:"line"`
	// Message describes the problem.
	Message string `json:"message" yaml:"message"`
}

// String renders the finding in the familiar path:line: severity form.
func (f Finding) String() string {
	path := f.Path
	if path == "" {
		path = "<input>"
	}
	return fmt.Sprintf("%s:%d: %s: %s (%s)", path, f.Line, f.Severity, f.Message, f.Rule)
}

// Rule checks one property of a manifest.
type Rule interface {
	// ID is the stable identifier used in configuration.
	ID() string
	// DefaultSeverity is the severity when config does not override it.
	DefaultSeverity() Severity
	// Check returns findings for the file. Severity and Path are filled
	// in by the runner.
	Check(f *manifest.File) []Finding
}

// builtinRules are all known rules in reporting order.
func builtinRules() []Rule {
	return []Rule{
		syntaxRule{},
		pinsOnlyRule{},
		wellFormedVersionRule{},
		duplicatePackageRule{},
		nonNormalizedNameRule{},
		unsortedRule{},
		trailingWhitespaceRule{},
	}
}

// KnownRuleIDs returns the IDs of all built-in rules, sorted.
func KnownRuleIDs() []string {
	rules := builtinRules()
	ids := make([]string, len(rules))
	for i, r := range rules {
		ids[i] = r.ID()
	}
	sort.Strings(ids)
	return ids
}

// defaultOff marks rules that are disabled unless config enables them.
var defaultOff = map[string]bool{
	"unsorted": true,
}

// Runner applies a configured rule set to manifests.
type Runner struct {
	rules    []Rule
	severity map[string]Severity
}

// NewRunner builds a runner from the lint configuration. Rule IDs in the
// config that no built-in rule declares are rejected.
func NewRunner(cfg config.LintConfig) (*Runner, error) {
	known := map[string]Rule{}
	for _, r := range builtinRules() {
		known[r.ID()] = r
	}

	for id := range cfg.Rules {
		if _, ok := known[id]; !ok {
			return nil, errors.UnknownLintRule(id, KnownRuleIDs())
		}
	}

	r := &Runner{severity: map[string]Severity{}}
	for _, rule := range builtinRules() {
		setting, overridden := cfg.Rules[rule.ID()]
		switch {
		case !overridden && defaultOff[rule.ID()]:
			continue
		case !overridden:
			r.severity[rule.ID()] = rule.DefaultSeverity()
		case setting == config.RuleOff:
			// Syntax errors cannot be silenced: an unparseable line makes
			// the rest of the report unreliable.
			if rule.ID() == "syntax" {
				r.severity[rule.ID()] = SeverityError
				break
			}
			continue
		default:
			r.severity[rule.ID()] = severityFromSetting(setting)
		}
		r.rules = append(r.rules, rule)
	}

	return r, nil
}

func severityFromSetting(s config.RuleSetting) Severity {
	switch s {
	case config.RuleWarning:
		return SeverityWarning
	case config.RuleInfo:
		return SeverityInfo
	default:
		return SeverityError
	}
}

// Report is the outcome of linting one manifest.
type Report struct {
	// Path is the manifest path.
	Path string `json:"path,omitempty" yaml:"path,omitempty"`
	// Findings are all findings, in line order.
	Findings []Finding `json:"findings" yaml:"findings"`
}

// HasErrors reports whether any finding has error severity.
func (r *Report) HasErrors() bool {
	for _, f := range r.Findings {
		if f.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Counts returns the number of findings per severity.
func (r *Report) Counts() (errs, warnings, infos int) {
	for _, f := range r.Findings {
		switch f.Severity {
		case SeverityError:
			errs++
		case SeverityWarning:
			warnings++
		case SeverityInfo:
			infos++
		}
	}
	return
}

// Run lints the file with the configured rule set.
func (r *Runner) Run(f *manifest.File) *Report {
	report := &Report{Path: f.Path}

	for _, rule := range r.rules {
		severity := r.severity[rule.ID()]
		for _, finding := range rule.Check(f) {
			finding.Rule = rule.ID()
			finding.Severity = severity
			finding.Path = f.Path
			report.Findings = append(report.Findings, finding)
		}
	}

	sort.SliceStable(report.Findings, func(i, j int) bool {
		return report.Findings[i].Line < report.Findings[j].Line
	})

	return report
}
