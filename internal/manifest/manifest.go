// Package manifest provides a line-preserving model of Python
// requirements files: newline-separated entries that are blank, comments,
// or requirements such as "numpy==1.26.4".
package manifest

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// LineKind classifies a single manifest line.
type LineKind string

const (
	// LineBlank is a line with no content.
	LineBlank LineKind = "blank"
	// LineComment is a line whose first non-space character is '#'.
	LineComment LineKind = "comment"
	// LineRequirement is a parseable requirement entry.
	LineRequirement LineKind = "requirement"
	// LineInvalid is a line that could not be parsed as any of the above.
	LineInvalid LineKind = "invalid"
)

// Specifier is a single version constraint, e.g. "==1.26.4".
type Specifier struct {
	// Op is the comparison operator: ==, !=, <=, >=, <, >, ~=, or ===.
	Op string
	// Version is the version text to the right of the operator.
	Version string
}

// String returns the specifier in canonical form (no interior spaces).
func (s Specifier) String() string {
	return s.Op + s.Version
}

// Requirement is a parsed requirement entry.
type Requirement struct {
	// Name is the package name exactly as written.
	Name string
	// Extras are the bracketed extras, e.g. ["socks"] for requests[socks].
	Extras []string
	// Specifiers are the version constraints, in written order.
	Specifiers []Specifier
	// Marker is the raw environment marker after ';', without the semicolon.
	Marker string
	// Comment is the inline comment without the leading '#'.
	Comment string
}

// NormalizedName returns the requirement's PEP 503 normalized name.
func (r *Requirement) NormalizedName() string {
	return NormalizeName(r.Name)
}

// Pin returns the exact pinned version when the requirement consists of a
// single == or === specifier.
func (r *Requirement) Pin() (string, bool) {
	if len(r.Specifiers) != 1 {
		return "", false
	}
	op := r.Specifiers[0].Op
	if op != "==" && op != "===" {
		return "", false
	}
	return r.Specifiers[0].Version, true
}

// String returns the requirement in canonical form:
// name[extras]==version ; marker  # comment
func (r *Requirement) String() string {
	var sb strings.Builder
	sb.WriteString(r.Name)
	if len(r.Extras) > 0 {
		sb.WriteString("[" + strings.Join(r.Extras, ",") + "]")
	}
	specs := make([]string, len(r.Specifiers))
	for i, s := range r.Specifiers {
		specs[i] = s.String()
	}
	sb.WriteString(strings.Join(specs, ","))
	if r.Marker != "" {
		sb.WriteString(" ; " + r.Marker)
	}
	if r.Comment != "" {
		sb.WriteString("  # " + r.Comment)
	}
	return sb.String()
}

// Line is a single line of a requirements file.
type Line struct {
	// Number is the 1-based line number.
	Number int
	// Raw is the line text without the trailing newline.
	Raw string
	// Kind classifies the line.
	Kind LineKind
	// Requirement is set for LineRequirement lines.
	Requirement *Requirement
	// Err is set for LineInvalid lines.
	Err error
}

// File is a parsed requirements file.
type File struct {
	// Path is the source path, empty when parsed from a reader or string.
	Path string
	// Lines are all lines of the file in order.
	Lines []*Line
}

// normalizeSeparators folds runs of '-', '_', and '.' for PEP 503.
var normalizeSeparators = regexp.MustCompile(`[-_.]+`)

// NormalizeName returns the PEP 503 normalized form of a package name:
// lowercase, with runs of '-', '_', and '.' replaced by a single '-'.
func NormalizeName(name string) string {
	return normalizeSeparators.ReplaceAllString(strings.ToLower(name), "-")
}

var (
	namePattern        = regexp.MustCompile(`^([A-Za-z0-9](?:[A-Za-z0-9._-]*[A-Za-z0-9])?)\s*(.*)$`)
	extrasPattern      = regexp.MustCompile(`^\[([^\]]*)\]\s*(.*)$`)
	specifierPattern   = regexp.MustCompile(`^(===|==|!=|<=|>=|~=|<|>)\s*([^\s,;#]+)$`)
	optionLinePattern  = regexp.MustCompile(`^-`)
	inlineCommentSplit = regexp.MustCompile(`(^|\s)#`)
)

// Parse reads a requirements file from r. Lines that cannot be parsed do
// not abort the parse; they are recorded as LineInvalid with the error
// attached so callers can report all problems at once.
func Parse(r io.Reader) (*File, error) {
	f := &File{}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	num := 0
	for scanner.Scan() {
		num++
		raw := strings.TrimSuffix(scanner.Text(), "\r")
		f.Lines = append(f.Lines, parseLine(num, raw))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	return f, nil
}

// ParseString parses a requirements file from a string.
func ParseString(s string) (*File, error) {
	return Parse(strings.NewReader(s))
}

// ParseFile parses the requirements file at path.
func ParseFile(path string) (*File, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()

	f, err := Parse(fh)
	if err != nil {
		return nil, err
	}
	f.Path = path
	return f, nil
}

// parseLine classifies and parses a single line.
func parseLine(num int, raw string) *Line {
	line := &Line{Number: num, Raw: raw}
	trimmed := strings.TrimSpace(raw)

	switch {
	case trimmed == "":
		line.Kind = LineBlank
	case strings.HasPrefix(trimmed, "#"):
		line.Kind = LineComment
	case optionLinePattern.MatchString(trimmed):
		line.Kind = LineInvalid
		line.Err = fmt.Errorf("pip option lines (%q) are not supported", firstField(trimmed))
	default:
		req, err := parseRequirement(trimmed)
		if err != nil {
			line.Kind = LineInvalid
			line.Err = err
		} else {
			line.Kind = LineRequirement
			line.Requirement = req
		}
	}

	return line
}

func firstField(s string) string {
	if fields := strings.Fields(s); len(fields) > 0 {
		return fields[0]
	}
	return s
}

// parseRequirement parses a requirement entry, already trimmed of
// surrounding whitespace.
func parseRequirement(s string) (*Requirement, error) {
	req := &Requirement{}

	// Inline comment: the first '#' at the start of a whitespace-separated
	// field. Package names and versions cannot contain '#'.
	if loc := inlineCommentSplit.FindStringIndex(s); loc != nil {
		comment := s[loc[1]:]
		req.Comment = strings.TrimSpace(comment)
		s = strings.TrimSpace(s[:loc[0]])
		if s == "" {
			return nil, fmt.Errorf("comment with no requirement")
		}
	}

	// Environment marker after ';' is preserved verbatim.
	if idx := strings.Index(s, ";"); idx >= 0 {
		req.Marker = strings.TrimSpace(s[idx+1:])
		s = strings.TrimSpace(s[:idx])
		if req.Marker == "" {
			return nil, fmt.Errorf("empty environment marker")
		}
	}

	m := namePattern.FindStringSubmatch(s)
	if m == nil {
		return nil, fmt.Errorf("invalid package name in %q", s)
	}
	req.Name = m[1]
	rest := m[2]

	if em := extrasPattern.FindStringSubmatch(rest); em != nil {
		for _, extra := range strings.Split(em[1], ",") {
			extra = strings.TrimSpace(extra)
			if extra == "" {
				return nil, fmt.Errorf("empty extra in %q", req.Name)
			}
			req.Extras = append(req.Extras, extra)
		}
		rest = em[2]
	}

	rest = strings.TrimSpace(rest)
	if rest == "" {
		return req, nil // bare requirement, no version constraint
	}

	for _, part := range strings.Split(rest, ",") {
		part = strings.TrimSpace(part)
		sm := specifierPattern.FindStringSubmatch(part)
		if sm == nil {
			return nil, fmt.Errorf("invalid version specifier %q", part)
		}
		req.Specifiers = append(req.Specifiers, Specifier{Op: sm[1], Version: sm[2]})
	}

	return req, nil
}

// Requirements returns all requirement entries in file order.
func (f *File) Requirements() []*Requirement {
	var reqs []*Requirement
	for _, line := range f.Lines {
		if line.Kind == LineRequirement {
			reqs = append(reqs, line.Requirement)
		}
	}
	return reqs
}

// InvalidLines returns all lines that failed to parse.
func (f *File) InvalidLines() []*Line {
	var lines []*Line
	for _, line := range f.Lines {
		if line.Kind == LineInvalid {
			lines = append(lines, line)
		}
	}
	return lines
}

// Lookup returns the first requirement line whose normalized name matches
// name, or nil.
func (f *File) Lookup(name string) *Line {
	want := NormalizeName(name)
	for _, line := range f.Lines {
		if line.Kind == LineRequirement && line.Requirement.NormalizedName() == want {
			return line
		}
	}
	return nil
}

// SetPin rewrites the pin for the named package in place, preserving the
// written name, extras, marker, and inline comment. It touches exactly
// one line. Returns an error when the package is not present.
func (f *File) SetPin(name, version string) error {
	line := f.Lookup(name)
	if line == nil {
		return fmt.Errorf("package %q not found in manifest", name)
	}
	line.Requirement.Specifiers = []Specifier{{Op: "==", Version: version}}
	line.Raw = line.Requirement.String()
	return nil
}

// String renders the file. Untouched lines are reproduced byte for byte;
// output always ends with a newline unless the file is empty.
func (f *File) String() string {
	if len(f.Lines) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, line := range f.Lines {
		sb.WriteString(line.Raw)
		sb.WriteString("\n")
	}
	return sb.String()
}

// WriteFile writes the rendered file to path atomically: the content goes
// to a temp file in the same directory which is then renamed over path.
func (f *File) WriteFile(path string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".reqpin-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.WriteString(f.String()); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("writing manifest: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replacing manifest: %w", err)
	}
	return nil
}
