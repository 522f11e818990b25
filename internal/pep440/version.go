// Package pep440 implements parsing, canonicalization, and ordering of
// Python package versions as defined by PEP 440.
package pep440

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// PreRelease is a pre-release segment (a, b, or rc plus a number).
type PreRelease struct {
	// Label is the canonical pre-release label: "a", "b", or "rc".
	Label string
	// Number is the pre-release number (0 when omitted in the source).
	Number int
}

// Version is a parsed PEP 440 version.
type Version struct {
	// Epoch is the version epoch (0 unless written as "N!").
	Epoch int
	// Release is the dotted release segment (at least one component).
	Release []int
	// Pre is the pre-release segment, nil for non-pre-release versions.
	Pre *PreRelease
	// Post is the post-release number, nil when absent.
	Post *int
	// Dev is the development release number, nil when absent.
	Dev *int
	// Local is the local version label split on separators, nil when absent.
	Local []string

	original string
}

// versionPattern is the PEP 440 version grammar, including the permissive
// spellings PEP 440 requires parsers to accept (case, separators, aliases).
var versionPattern = regexp.MustCompile(`^v?` +
	`(?:(\d+)!)?` + // epoch
	`(\d+(?:\.\d+)*)` + // release
	`(?:[-_.]?(a|b|c|rc|alpha|beta|pre|preview)[-_.]?(\d+)?)?` + // pre
	`(?:(?:-(\d+))|(?:[-_.]?(post|rev|r)[-_.]?(\d+)?))?` + // post
	`(?:[-_.]?(dev)[-_.]?(\d+)?)?` + // dev
	`(?:\+([a-z0-9]+(?:[-_.][a-z0-9]+)*))?` + // local
	`$`)

// preAliases maps the alternate pre-release spellings to canonical labels.
var preAliases = map[string]string{
	"a": "a", "alpha": "a",
	"b": "b", "beta": "b",
	"rc": "rc", "c": "rc", "pre": "rc", "preview": "rc",
}

// Parse parses a version string according to PEP 440.
// It accepts the full permissive grammar (mixed case, "-"/"_"/"." as
// separators, label aliases like "alpha" or "rev") and records the
// canonical interpretation.
func Parse(s string) (*Version, error) {
	original := s
	normalized := strings.ToLower(strings.TrimSpace(s))
	m := versionPattern.FindStringSubmatch(normalized)
	if m == nil {
		return nil, fmt.Errorf("invalid version %q", original)
	}

	v := &Version{original: original}

	if m[1] != "" {
		epoch, err := strconv.Atoi(m[1])
		if err != nil {
			return nil, fmt.Errorf("invalid epoch in %q", original)
		}
		v.Epoch = epoch
	}

	for _, part := range strings.Split(m[2], ".") {
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid release segment in %q", original)
		}
		v.Release = append(v.Release, n)
	}

	if m[3] != "" {
		v.Pre = &PreRelease{Label: preAliases[m[3]], Number: atoiOrZero(m[4])}
	}

	// Post releases have two spellings: the implicit "-N" form and the
	// explicit "post"/"rev"/"r" form.
	if m[5] != "" {
		n := atoiOrZero(m[5])
		v.Post = &n
	} else if m[6] != "" {
		n := atoiOrZero(m[7])
		v.Post = &n
	}

	if m[8] != "" {
		n := atoiOrZero(m[9])
		v.Dev = &n
	}

	if m[10] != "" {
		v.Local = splitLocal(m[10])
	}

	return v, nil
}

func atoiOrZero(s string) int {
	if s == "" {
		return 0
	}
	n, _ := strconv.Atoi(s)
	return n
}

func splitLocal(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == '-' || r == '_' || r == '.'
	})
}

// MustParse parses a version and panics on error. For tests and constants.
func MustParse(s string) *Version {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

// Valid reports whether s is a well-formed PEP 440 version.
func Valid(s string) bool {
	_, err := Parse(s)
	return err == nil
}

// Original returns the version exactly as it was written.
func (v *Version) Original() string {
	return v.original
}

// IsPrerelease reports whether the version is a pre-release or dev release.
func (v *Version) IsPrerelease() bool {
	return v.Pre != nil || v.Dev != nil
}

// IsStable reports whether the version is a final release (no pre, no dev).
func (v *Version) IsStable() bool {
	return !v.IsPrerelease()
}

// String returns the canonical form of the version.
func (v *Version) String() string {
	var sb strings.Builder

	if v.Epoch > 0 {
		fmt.Fprintf(&sb, "%d!", v.Epoch)
	}

	parts := make([]string, len(v.Release))
	for i, n := range v.Release {
		parts[i] = strconv.Itoa(n)
	}
	sb.WriteString(strings.Join(parts, "."))

	if v.Pre != nil {
		fmt.Fprintf(&sb, "%s%d", v.Pre.Label, v.Pre.Number)
	}
	if v.Post != nil {
		fmt.Fprintf(&sb, ".post%d", *v.Post)
	}
	if v.Dev != nil {
		fmt.Fprintf(&sb, ".dev%d", *v.Dev)
	}
	if len(v.Local) > 0 {
		sb.WriteString("+")
		sb.WriteString(strings.Join(v.Local, "."))
	}

	return sb.String()
}

// Compare returns 1 if a > b, -1 if a < b, and 0 if they are equal under
// PEP 440 ordering.
func Compare(a, b *Version) int {
	if a.Epoch != b.Epoch {
		return cmpInt(a.Epoch, b.Epoch)
	}
	if c := compareRelease(a.Release, b.Release); c != 0 {
		return c
	}
	if c := comparePre(a, b); c != 0 {
		return c
	}
	if c := comparePost(a.Post, b.Post); c != 0 {
		return c
	}
	if c := compareDev(a.Dev, b.Dev); c != 0 {
		return c
	}
	return compareLocal(a.Local, b.Local)
}

// compareRelease compares release tuples with implicit zero padding,
// so 1.0 == 1.0.0.
func compareRelease(a, b []int) int {
	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		var av, bv int
		if i < len(a) {
			av = a[i]
		}
		if i < len(b) {
			bv = b[i]
		}
		if av != bv {
			return cmpInt(av, bv)
		}
	}
	return 0
}

// preRank orders the three pre-release labels.
var preRank = map[string]int{"a": 0, "b": 1, "rc": 2}

// comparePre orders the pre-release segment. A dev release with no pre
// and no post segment sorts before any pre-release of the same release
// (1.0.dev1 < 1.0a1); a version with no pre-release sorts after all
// pre-releases (1.0a1 < 1.0).
func comparePre(a, b *Version) int {
	return cmpInt(preKeyRank(a), preKeyRank(b))
}

func preKeyRank(v *Version) int {
	// Encode the pre segment as a single comparable integer:
	// dev-only sorts lowest, absent pre sorts highest, and real pre
	// segments in between ordered by (label, number).
	const span = 1 << 20
	if v.Pre == nil {
		if v.Post == nil && v.Dev != nil {
			return -1
		}
		return 3*span + 1
	}
	return preRank[v.Pre.Label]*span + v.Pre.Number
}

// comparePost orders post-release segments; absent sorts first.
func comparePost(a, b *int) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	default:
		return cmpInt(*a, *b)
	}
}

// compareDev orders dev segments; absent sorts last (1.0.dev1 < 1.0).
func compareDev(a, b *int) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	default:
		return cmpInt(*a, *b)
	}
}

// compareLocal orders local version labels: absent sorts first, numeric
// segments sort higher than alphanumeric ones, numeric segments compare
// numerically and alphanumeric ones lexically.
func compareLocal(a, b []string) int {
	switch {
	case len(a) == 0 && len(b) == 0:
		return 0
	case len(a) == 0:
		return -1
	case len(b) == 0:
		return 1
	}

	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		an, aIsNum := localNum(a[i])
		bn, bIsNum := localNum(b[i])
		switch {
		case aIsNum && bIsNum:
			if an != bn {
				return cmpInt(an, bn)
			}
		case aIsNum:
			return 1
		case bIsNum:
			return -1
		default:
			if a[i] != b[i] {
				if a[i] < b[i] {
					return -1
				}
				return 1
			}
		}
	}
	return cmpInt(len(a), len(b))
}

func localNum(s string) (int, bool) {
	n, err := strconv.Atoi(s)
	return n, err == nil
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// Sort sorts versions in ascending PEP 440 order.
func Sort(versions []*Version) {
	sort.SliceStable(versions, func(i, j int) bool {
		return Compare(versions[i], versions[j]) < 0
	})
}
