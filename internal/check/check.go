// Package check compares manifest pins against the package registry.
package check

import (
	"context"
	"sync"

	"github.com/reqpin/reqpin/internal/manifest"
	"github.com/reqpin/reqpin/internal/pep440"
)

// DefaultConcurrency bounds parallel registry lookups.
const DefaultConcurrency = 8

// State classifies one requirement relative to the registry.
type State string

const (
	// StateUpToDate means the pin matches the latest release.
	StateUpToDate State = "up-to-date"
	// StateOutdated means a newer release exists.
	StateOutdated State = "outdated"
	// StateYanked means the pinned release was yanked from the registry.
	StateYanked State = "yanked"
	// StateUnpinned means the requirement carries no exact == pin.
	StateUnpinned State = "unpinned"
	// StateUnknown means the registry lookup failed.
	StateUnknown State = "unknown"
)

// Registry is the slice of the registry client check needs.
type Registry interface {
	LatestVersion(ctx context.Context, name string, includePre bool) (string, error)
	IsYanked(ctx context.Context, name, version string) (bool, string, error)
}

// Result is the registry verdict for one requirement.
type Result struct {
	// Requirement is the manifest entry that was checked.
	Requirement *manifest.Requirement
	// Line is the 1-based manifest line of the requirement.
	Line int
	// Current is the pinned version, empty when unpinned.
	Current string
	// Latest is the newest registry release, empty when unknown.
	Latest string
	// State classifies the requirement.
	State State
	// YankReason is set when State is StateYanked and the registry
	// recorded a reason.
	YankReason string
	// Err holds the lookup failure when State is StateUnknown.
	Err error
}

// Options tunes an Outdated run.
type Options struct {
	// Concurrency is the number of parallel registry lookups.
	// Zero or negative means DefaultConcurrency.
	Concurrency int
	// IncludePrereleases considers pre-release and dev versions
	// when resolving the latest release.
	IncludePrereleases bool
}

func (o Options) concurrency() int {
	if o.Concurrency <= 0 {
		return DefaultConcurrency
	}
	return o.Concurrency
}

// Outdated checks every requirement of the manifest against the
// registry. Lookups run in parallel; results come back in manifest
// order. A cancelled context stops new lookups and marks the
// remaining requirements unknown.
func Outdated(ctx context.Context, registry Registry, file *manifest.File, opts Options) []Result {
	var reqLines []*manifest.Line
	for _, line := range file.Lines {
		if line.Kind == manifest.LineRequirement {
			reqLines = append(reqLines, line)
		}
	}

	results := make([]Result, len(reqLines))
	sem := make(chan struct{}, opts.concurrency())
	var wg sync.WaitGroup

	for i, line := range reqLines {
		wg.Add(1)
		go func(i int, line *manifest.Line) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				results[i] = Result{
					Requirement: line.Requirement,
					Line:        line.Number,
					State:       StateUnknown,
					Err:         ctx.Err(),
				}
				return
			}

			results[i] = checkOne(ctx, registry, line, opts)
		}(i, line)
	}
	wg.Wait()

	return results
}

func checkOne(ctx context.Context, registry Registry, line *manifest.Line, opts Options) Result {
	req := line.Requirement
	result := Result{Requirement: req, Line: line.Number}

	pin, ok := req.Pin()
	if !ok {
		result.State = StateUnpinned
		return result
	}
	result.Current = pin

	latest, err := registry.LatestVersion(ctx, req.Name, opts.IncludePrereleases)
	if err != nil {
		result.State = StateUnknown
		result.Err = err
		return result
	}
	result.Latest = latest

	yanked, reason, err := registry.IsYanked(ctx, req.Name, pin)
	if err == nil && yanked {
		result.State = StateYanked
		result.YankReason = reason
		return result
	}

	result.State = classify(pin, latest)
	return result
}

// classify compares the pinned version against the latest release.
// Versions PEP 440 cannot parse fall back to string equality.
func classify(pin, latest string) State {
	current, errCur := pep440.Parse(pin)
	newest, errNew := pep440.Parse(latest)
	if errCur != nil || errNew != nil {
		if pin == latest {
			return StateUpToDate
		}
		return StateOutdated
	}
	if pep440.Compare(current, newest) < 0 {
		return StateOutdated
	}
	return StateUpToDate
}

// Summary counts results per state.
func Summary(results []Result) map[State]int {
	counts := map[State]int{}
	for _, r := range results {
		counts[r.State]++
	}
	return counts
}
