// Package diff compares two requirements manifests pin by pin.
package diff

import (
	"fmt"
	"sort"
	"strings"

	"github.com/reqpin/reqpin/internal/manifest"
	"github.com/reqpin/reqpin/internal/pep440"
)

// ChangeKind classifies a single change between two manifests.
type ChangeKind string

const (
	// KindAdded means the package exists only in the new manifest.
	KindAdded ChangeKind = "added"
	// KindRemoved means the package exists only in the old manifest.
	KindRemoved ChangeKind = "removed"
	// KindUpgraded means the pinned version increased.
	KindUpgraded ChangeKind = "upgraded"
	// KindDowngraded means the pinned version decreased.
	KindDowngraded ChangeKind = "downgraded"
	// KindChanged means the requirement changed in a way version
	// ordering cannot classify (non-pin specifiers, unparseable
	// versions, extras, or markers).
	KindChanged ChangeKind = "changed"
)

// Change is one difference between the manifests.
type Change struct {
	// Name is the normalized package name.
	Name string
	// Old is the requirement in the old manifest, nil for added packages.
	Old *manifest.Requirement
	// New is the requirement in the new manifest, nil for removed packages.
	New *manifest.Requirement
	// Kind classifies the change.
	Kind ChangeKind
}

// String renders the change as a single report line.
func (c Change) String() string {
	switch c.Kind {
	case KindAdded:
		return fmt.Sprintf("+ %s %s", c.Name, specText(c.New))
	case KindRemoved:
		return fmt.Sprintf("- %s %s", c.Name, specText(c.Old))
	case KindUpgraded:
		return fmt.Sprintf("↑ %s %s -> %s", c.Name, specText(c.Old), specText(c.New))
	case KindDowngraded:
		return fmt.Sprintf("↓ %s %s -> %s", c.Name, specText(c.Old), specText(c.New))
	default:
		return fmt.Sprintf("~ %s %s -> %s", c.Name, specText(c.Old), specText(c.New))
	}
}

func specText(r *manifest.Requirement) string {
	if r == nil {
		return ""
	}
	if len(r.Specifiers) == 0 {
		return "(unpinned)"
	}
	parts := make([]string, len(r.Specifiers))
	for i, s := range r.Specifiers {
		parts[i] = s.String()
	}
	return strings.Join(parts, ",")
}

// Result is the full comparison of two manifests.
type Result struct {
	// Changes are all differences, sorted by package name.
	Changes []Change
	// Unchanged counts packages present in both manifests with
	// identical requirements.
	Unchanged int
}

// Empty reports whether the manifests agree on every package.
func (r *Result) Empty() bool {
	return len(r.Changes) == 0
}

// Summary returns per-kind counts.
func (r *Result) Summary() map[ChangeKind]int {
	counts := map[ChangeKind]int{}
	for _, c := range r.Changes {
		counts[c.Kind]++
	}
	return counts
}

// String renders the result, one line per change.
func (r *Result) String() string {
	if r.Empty() {
		return "No differences.\n"
	}
	var sb strings.Builder
	for _, c := range r.Changes {
		sb.WriteString(c.String())
		sb.WriteString("\n")
	}
	return sb.String()
}

// Compare diffs two manifests. Packages are matched by normalized name;
// duplicate declarations use the first occurrence, matching resolver
// behavior.
func Compare(oldFile, newFile *manifest.File) *Result {
	oldReqs := byName(oldFile)
	newReqs := byName(newFile)

	result := &Result{}

	for name, oldReq := range oldReqs {
		newReq, ok := newReqs[name]
		if !ok {
			result.Changes = append(result.Changes, Change{Name: name, Old: oldReq, Kind: KindRemoved})
			continue
		}
		if sameRequirement(oldReq, newReq) {
			result.Unchanged++
			continue
		}
		result.Changes = append(result.Changes, Change{
			Name: name,
			Old:  oldReq,
			New:  newReq,
			Kind: classify(oldReq, newReq),
		})
	}

	for name, newReq := range newReqs {
		if _, ok := oldReqs[name]; !ok {
			result.Changes = append(result.Changes, Change{Name: name, New: newReq, Kind: KindAdded})
		}
	}

	sort.Slice(result.Changes, func(i, j int) bool {
		return result.Changes[i].Name < result.Changes[j].Name
	})

	return result
}

func byName(f *manifest.File) map[string]*manifest.Requirement {
	m := map[string]*manifest.Requirement{}
	for _, req := range f.Requirements() {
		name := req.NormalizedName()
		if _, ok := m[name]; !ok {
			m[name] = req
		}
	}
	return m
}

// sameRequirement compares the resolution-relevant parts of two
// requirements; inline comments are ignored.
func sameRequirement(a, b *manifest.Requirement) bool {
	if specText(a) != specText(b) {
		return false
	}
	if strings.Join(a.Extras, ",") != strings.Join(b.Extras, ",") {
		return false
	}
	return a.Marker == b.Marker
}

// classify decides the change kind for a package present on both sides.
func classify(oldReq, newReq *manifest.Requirement) ChangeKind {
	oldPin, oldOK := oldReq.Pin()
	newPin, newOK := newReq.Pin()
	if !oldOK || !newOK {
		return KindChanged
	}

	oldVer, errOld := pep440.Parse(oldPin)
	newVer, errNew := pep440.Parse(newPin)
	if errOld != nil || errNew != nil {
		return KindChanged
	}

	switch pep440.Compare(newVer, oldVer) {
	case 1:
		return KindUpgraded
	case -1:
		return KindDowngraded
	default:
		// Same version but different extras or markers.
		return KindChanged
	}
}
