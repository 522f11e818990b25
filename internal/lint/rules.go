package lint

import (
	"fmt"
	"strings"

	"github.com/reqpin/reqpin/internal/manifest"
	"github.com/reqpin/reqpin/internal/pep440"
)

// syntaxRule reports lines that failed to parse.
type syntaxRule struct{}

func (syntaxRule) ID() string                { return "syntax" }
func (syntaxRule) DefaultSeverity() Severity { return SeverityError }

func (syntaxRule) Check(f *manifest.File) []Finding {
	var findings []Finding
	for _, line := range f.InvalidLines() {
		findings = append(findings, Finding{
			Line:    line.Number,
			Message: line.Err.Error(),
		})
	}
	return findings
}

// pinsOnlyRule requires every requirement to be a single exact pin.
type pinsOnlyRule struct{}

func (pinsOnlyRule) ID() string                { return "pins-only" }
func (pinsOnlyRule) DefaultSeverity() Severity { return SeverityError }

func (pinsOnlyRule) Check(f *manifest.File) []Finding {
	var findings []Finding
	for _, line := range f.Lines {
		if line.Kind != manifest.LineRequirement {
			continue
		}
		if _, ok := line.Requirement.Pin(); ok {
			continue
		}
		msg := fmt.Sprintf("%q is not pinned to an exact version", line.Requirement.Name)
		if len(line.Requirement.Specifiers) > 1 {
			msg = fmt.Sprintf("%q uses a version range instead of an exact pin", line.Requirement.Name)
		}
		findings = append(findings, Finding{Line: line.Number, Message: msg})
	}
	return findings
}

// wellFormedVersionRule requires pinned versions to parse under PEP 440.
type wellFormedVersionRule struct{}

func (wellFormedVersionRule) ID() string                { return "well-formed-version" }
func (wellFormedVersionRule) DefaultSeverity() Severity { return SeverityError }

func (wellFormedVersionRule) Check(f *manifest.File) []Finding {
	var findings []Finding
	for _, line := range f.Lines {
		if line.Kind != manifest.LineRequirement {
			continue
		}
		for _, spec := range line.Requirement.Specifiers {
			// Arbitrary equality intentionally escapes version syntax.
			if spec.Op == "===" {
				continue
			}
			if !pep440.Valid(spec.Version) {
				findings = append(findings, Finding{
					Line:    line.Number,
					Message: fmt.Sprintf("%q is not a well-formed version", spec.Version),
				})
			}
		}
	}
	return findings
}

// duplicatePackageRule reports packages that appear more than once.
type duplicatePackageRule struct{}

func (duplicatePackageRule) ID() string                { return "duplicate-package" }
func (duplicatePackageRule) DefaultSeverity() Severity { return SeverityError }

func (duplicatePackageRule) Check(f *manifest.File) []Finding {
	first := map[string]int{}
	var findings []Finding
	for _, line := range f.Lines {
		if line.Kind != manifest.LineRequirement {
			continue
		}
		name := line.Requirement.NormalizedName()
		if prev, seen := first[name]; seen {
			findings = append(findings, Finding{
				Line:    line.Number,
				Message: fmt.Sprintf("%q already declared on line %d", line.Requirement.Name, prev),
			})
			continue
		}
		first[name] = line.Number
	}
	return findings
}

// nonNormalizedNameRule reports names that differ from their PEP 503
// normal form. A pure case difference is common and intentional (Sphinx,
// Django), so it is reported only when separators differ.
type nonNormalizedNameRule struct{}

func (nonNormalizedNameRule) ID() string                { return "non-normalized-name" }
func (nonNormalizedNameRule) DefaultSeverity() Severity { return SeverityWarning }

func (nonNormalizedNameRule) Check(f *manifest.File) []Finding {
	var findings []Finding
	for _, line := range f.Lines {
		if line.Kind != manifest.LineRequirement {
			continue
		}
		name := line.Requirement.Name
		normalized := line.Requirement.NormalizedName()
		if strings.ToLower(name) == normalized {
			continue
		}
		findings = append(findings, Finding{
			Line:    line.Number,
			Message: fmt.Sprintf("%q should be written as %q", name, normalized),
		})
	}
	return findings
}

// unsortedRule reports requirements out of alphabetical order within
// their blank-line-separated section. Off by default.
type unsortedRule struct{}

func (unsortedRule) ID() string                { return "unsorted" }
func (unsortedRule) DefaultSeverity() Severity { return SeverityWarning }

func (unsortedRule) Check(f *manifest.File) []Finding {
	var findings []Finding
	prev := ""
	for _, line := range f.Lines {
		switch line.Kind {
		case manifest.LineBlank:
			prev = ""
		case manifest.LineRequirement:
			name := line.Requirement.NormalizedName()
			if prev != "" && name < prev {
				findings = append(findings, Finding{
					Line:    line.Number,
					Message: fmt.Sprintf("%q is out of order", line.Requirement.Name),
				})
			}
			prev = name
		}
	}
	return findings
}

// trailingWhitespaceRule reports lines ending in spaces or tabs.
type trailingWhitespaceRule struct{}

func (trailingWhitespaceRule) ID() string                { return "trailing-whitespace" }
func (trailingWhitespaceRule) DefaultSeverity() Severity { return SeverityWarning }

func (trailingWhitespaceRule) Check(f *manifest.File) []Finding {
	var findings []Finding
	for _, line := range f.Lines {
		if line.Kind == manifest.LineBlank {
			continue
		}
		if strings.TrimRight(line.Raw, " \t") != line.Raw {
			findings = append(findings, Finding{
				Line:    line.Number,
				Message: "trailing whitespace",
			})
		}
	}
	return findings
}
