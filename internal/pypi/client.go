// Package pypi provides a read-only client for the PyPI JSON API.
package pypi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	reqerrors "github.com/reqpin/reqpin/internal/errors"
	"github.com/reqpin/reqpin/internal/manifest"
	"github.com/reqpin/reqpin/internal/pep440"
)

// DefaultBaseURL is the canonical package index.
const DefaultBaseURL = "https://pypi.org"

// defaultTimeout bounds a single API request.
const defaultTimeout = 10 * time.Second

// Project is the registry's view of a package.
type Project struct {
	// Name is the package name as the registry spells it.
	Name string
	// LatestVersion is the registry's current default version.
	LatestVersion string
	// Summary is the one-line project description.
	Summary string
}

// releaseFile is one distribution file of a release.
type releaseFile struct {
	Yanked       bool   `json:"yanked"`
	YankedReason string `json:"yanked_reason"`
}

// projectDoc is the subset of the JSON API payload reqpin reads.
type projectDoc struct {
	Info struct {
		Name    string `json:"name"`
		Version string `json:"version"`
		Summary string `json:"summary"`
	} `json:"info"`
	Releases map[string][]releaseFile `json:"releases"`
}

// Client queries the package registry. It caches project payloads for
// its lifetime, which spans a single CLI invocation.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string

	mu    sync.Mutex
	cache map[string]*projectDoc
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at a different index (e.g. a mirror).
func WithBaseURL(url string) Option {
	return func(c *Client) {
		c.baseURL = url
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// NewClient creates a registry client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: defaultTimeout},
		baseURL:    DefaultBaseURL,
		userAgent:  "reqpin",
		cache:      map[string]*projectDoc{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ClearCache drops all cached project payloads.
func (c *Client) ClearCache() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache = map[string]*projectDoc{}
}

// fetch returns the project payload for name, from cache when possible.
func (c *Client) fetch(ctx context.Context, name string) (*projectDoc, error) {
	key := manifest.NormalizeName(name)

	c.mu.Lock()
	if doc, ok := c.cache[key]; ok {
		c.mu.Unlock()
		return doc, nil
	}
	c.mu.Unlock()

	url := fmt.Sprintf("%s/pypi/%s/json", c.baseURL, key)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, reqerrors.ContextCancelled("registry request")
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, reqerrors.OperationTimeout("registry request", c.httpClient.Timeout)
		}
		return nil, reqerrors.RegistryUnavailable(c.baseURL, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		io.Copy(io.Discard, resp.Body)
		return nil, reqerrors.PackageNotFound(name)
	case resp.StatusCode != http.StatusOK:
		io.Copy(io.Discard, resp.Body)
		return nil, reqerrors.RegistryStatusError(name, resp.StatusCode)
	}

	var doc projectDoc
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, reqerrors.RegistryDecodeError(name, err)
	}

	c.mu.Lock()
	c.cache[key] = &doc
	c.mu.Unlock()

	return &doc, nil
}

// Project returns registry metadata for the named package.
func (c *Client) Project(ctx context.Context, name string) (*Project, error) {
	doc, err := c.fetch(ctx, name)
	if err != nil {
		return nil, err
	}
	return &Project{
		Name:          doc.Info.Name,
		LatestVersion: doc.Info.Version,
		Summary:       doc.Info.Summary,
	}, nil
}

// Releases returns all release versions of the package in ascending
// PEP 440 order. Versions the registry knows but PEP 440 cannot parse
// are skipped.
func (c *Client) Releases(ctx context.Context, name string) ([]string, error) {
	doc, err := c.fetch(ctx, name)
	if err != nil {
		return nil, err
	}

	var versions []*pep440.Version
	for key := range doc.Releases {
		v, err := pep440.Parse(key)
		if err != nil {
			continue
		}
		versions = append(versions, v)
	}
	pep440.Sort(versions)

	out := make([]string, len(versions))
	for i, v := range versions {
		out[i] = v.Original()
	}
	return out, nil
}

// LatestVersion returns the highest release of the package. Unless
// includePre is set, pre-releases and dev releases are skipped; when
// only pre-releases exist, the highest of those is returned.
func (c *Client) LatestVersion(ctx context.Context, name string, includePre bool) (string, error) {
	doc, err := c.fetch(ctx, name)
	if err != nil {
		return "", err
	}

	var best, bestPre *pep440.Version
	for key, files := range doc.Releases {
		v, err := pep440.Parse(key)
		if err != nil {
			continue
		}
		if allYanked(files) {
			continue
		}
		if v.IsPrerelease() {
			if bestPre == nil || pep440.Compare(v, bestPre) > 0 {
				bestPre = v
			}
			continue
		}
		if best == nil || pep440.Compare(v, best) > 0 {
			best = v
		}
	}

	if includePre && bestPre != nil && (best == nil || pep440.Compare(bestPre, best) > 0) {
		return bestPre.Original(), nil
	}
	if best != nil {
		return best.Original(), nil
	}
	if bestPre != nil {
		return bestPre.Original(), nil
	}
	return "", reqerrors.Newf(reqerrors.ErrRegistry, "package %q has no releases", name)
}

// IsYanked reports whether every file of the given release is yanked,
// along with the first yank reason.
func (c *Client) IsYanked(ctx context.Context, name, version string) (bool, string, error) {
	doc, err := c.fetch(ctx, name)
	if err != nil {
		return false, "", err
	}

	files, ok := lookupRelease(doc.Releases, version)
	if !ok {
		return false, "", reqerrors.Newf(reqerrors.ErrNotFound,
			"version %q of %q not found on the registry", version, name)
	}
	if len(files) == 0 {
		return false, "", nil
	}
	if !allYanked(files) {
		return false, "", nil
	}

	reason := ""
	for _, f := range files {
		if f.YankedReason != "" {
			reason = f.YankedReason
			break
		}
	}
	return true, reason, nil
}

// lookupRelease finds a release by version, tolerating spelling
// differences (1.0 vs 1.0.0) via canonical comparison.
func lookupRelease(releases map[string][]releaseFile, version string) ([]releaseFile, bool) {
	if files, ok := releases[version]; ok {
		return files, true
	}
	want, err := pep440.Parse(version)
	if err != nil {
		return nil, false
	}
	for key, files := range releases {
		v, err := pep440.Parse(key)
		if err != nil {
			continue
		}
		if pep440.Compare(v, want) == 0 {
			return files, true
		}
	}
	return nil, false
}

func allYanked(files []releaseFile) bool {
	if len(files) == 0 {
		return false
	}
	for _, f := range files {
		if !f.Yanked {
			return false
		}
	}
	return true
}
