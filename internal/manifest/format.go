package manifest

import (
	"sort"
	"strings"
)

// FormatOptions control canonical formatting.
type FormatOptions struct {
	// Sort orders requirements alphabetically by normalized name within
	// each blank-line-separated block. A comment directly above a
	// requirement moves with it.
	Sort bool
}

// Format returns the canonical rendering of the file:
//   - trailing whitespace removed
//   - runs of blank lines collapsed to one, leading/trailing blanks dropped
//   - requirement lines rewritten as "name[extras]==version  # comment"
//   - invalid lines reproduced as written (lint reports them instead)
func Format(f *File, opts FormatOptions) string {
	lines := canonicalLines(f)
	if opts.Sort {
		lines = sortBlocks(lines)
	}

	var out []string
	blankPending := false
	for _, l := range lines {
		if l.Kind == LineBlank {
			blankPending = len(out) > 0
			continue
		}
		if blankPending {
			out = append(out, "")
			blankPending = false
		}
		out = append(out, l.Raw)
	}

	if len(out) == 0 {
		return ""
	}
	return strings.Join(out, "\n") + "\n"
}

// canonicalLines rewrites each line into canonical form without
// reordering anything.
func canonicalLines(f *File) []*Line {
	lines := make([]*Line, len(f.Lines))
	for i, l := range f.Lines {
		nl := &Line{Number: l.Number, Kind: l.Kind, Requirement: l.Requirement, Err: l.Err}
		switch l.Kind {
		case LineBlank:
			nl.Raw = ""
		case LineRequirement:
			nl.Raw = l.Requirement.String()
		default:
			nl.Raw = strings.TrimRight(l.Raw, " \t")
		}
		lines[i] = nl
	}
	return lines
}

// block is a sortable unit: a requirement plus the comment lines
// directly above it, or a non-sortable run of other lines.
type block struct {
	lines []*Line
	key   string // normalized name; empty for non-sortable blocks
}

// sortBlocks sorts requirement blocks within each blank-separated
// section, keeping attached comments with their requirement. Sections,
// blanks, and free-standing comments keep their positions.
func sortBlocks(lines []*Line) []*Line {
	var result []*Line
	var section []*Line

	flush := func() {
		result = append(result, sortSection(section)...)
		section = nil
	}

	for _, l := range lines {
		if l.Kind == LineBlank {
			flush()
			result = append(result, l)
			continue
		}
		section = append(section, l)
	}
	flush()
	return result
}

// sortSection sorts one contiguous section of non-blank lines.
func sortSection(section []*Line) []*Line {
	if len(section) == 0 {
		return nil
	}

	var blocks []block
	var pendingComments []*Line

	for _, l := range section {
		switch l.Kind {
		case LineComment:
			pendingComments = append(pendingComments, l)
		case LineRequirement:
			b := block{key: l.Requirement.NormalizedName()}
			b.lines = append(b.lines, pendingComments...)
			b.lines = append(b.lines, l)
			pendingComments = nil
			blocks = append(blocks, b)
		default:
			// Invalid lines anchor the section: sorting around them
			// could change their meaning, so leave the section as is.
			return section
		}
	}

	if len(blocks) == 0 {
		return section
	}

	// Comments with no requirement below them stay at the end.
	trailing := pendingComments

	sort.SliceStable(blocks, func(i, j int) bool {
		return blocks[i].key < blocks[j].key
	})

	var out []*Line
	for _, b := range blocks {
		out = append(out, b.lines...)
	}
	out = append(out, trailing...)
	return out
}
