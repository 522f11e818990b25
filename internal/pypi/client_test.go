package pypi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	reqerrors "github.com/reqpin/reqpin/internal/errors"
)

// fakeIndex serves a minimal PyPI JSON API for tests.
func fakeIndex(t *testing.T, payloads map[string]string) (*httptest.Server, *atomic.Int64) {
	t.Helper()
	var hits atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		for name, payload := range payloads {
			if r.URL.Path == "/pypi/"+name+"/json" {
				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(payload))
				return
			}
		}
		http.NotFound(w, r)
	}))
	t.Cleanup(server.Close)
	return server, &hits
}

const numpyPayload = `{
  "info": {"name": "numpy", "version": "2.0.0", "summary": "Array computing"},
  "releases": {
    "1.26.4": [{"yanked": false}],
    "2.0.0": [{"yanked": false}, {"yanked": false}],
    "2.1.0rc1": [{"yanked": false}],
    "1.99.0": [{"yanked": true, "yanked_reason": "broken wheel"}],
    "not-a-version": [{"yanked": false}]
  }
}`

func TestClient_Project(t *testing.T) {
	server, _ := fakeIndex(t, map[string]string{"numpy": numpyPayload})
	client := NewClient(WithBaseURL(server.URL))

	project, err := client.Project(context.Background(), "numpy")
	if err != nil {
		t.Fatalf("Project() error: %v", err)
	}
	if project.Name != "numpy" || project.LatestVersion != "2.0.0" {
		t.Errorf("Project() = %+v", project)
	}
	if project.Summary != "Array computing" {
		t.Errorf("Summary = %q", project.Summary)
	}
}

func TestClient_ProjectNormalizesName(t *testing.T) {
	server, _ := fakeIndex(t, map[string]string{"ffmpeg-python": `{"info": {"name": "ffmpeg-python", "version": "0.2.0"}, "releases": {}}`})
	client := NewClient(WithBaseURL(server.URL))

	// The request path must use the normalized name.
	if _, err := client.Project(context.Background(), "FFmpeg_Python"); err != nil {
		t.Fatalf("Project() error: %v", err)
	}
}

func TestClient_NotFound(t *testing.T) {
	server, _ := fakeIndex(t, nil)
	client := NewClient(WithBaseURL(server.URL))

	_, err := client.Project(context.Background(), "no-such-package")
	if !errors.Is(err, reqerrors.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestClient_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	t.Cleanup(server.Close)
	client := NewClient(WithBaseURL(server.URL))

	_, err := client.Project(context.Background(), "numpy")
	if !errors.Is(err, reqerrors.ErrRegistry) {
		t.Errorf("error = %v, want ErrRegistry", err)
	}
}

func TestClient_BadJSON(t *testing.T) {
	server, _ := fakeIndex(t, map[string]string{"numpy": `{"info": [`})
	client := NewClient(WithBaseURL(server.URL))

	_, err := client.Project(context.Background(), "numpy")
	if !errors.Is(err, reqerrors.ErrRegistry) {
		t.Errorf("error = %v, want ErrRegistry", err)
	}
}

func TestClient_Unreachable(t *testing.T) {
	client := NewClient(
		WithBaseURL("http://127.0.0.1:1"),
		WithTimeout(500*time.Millisecond),
	)

	_, err := client.Project(context.Background(), "numpy")
	if !errors.Is(err, reqerrors.ErrNetwork) {
		t.Errorf("error = %v, want ErrNetwork", err)
	}
}

func TestClient_CachesPayloads(t *testing.T) {
	server, hits := fakeIndex(t, map[string]string{"numpy": numpyPayload})
	client := NewClient(WithBaseURL(server.URL))
	ctx := context.Background()

	if _, err := client.Project(ctx, "numpy"); err != nil {
		t.Fatal(err)
	}
	if _, err := client.Releases(ctx, "numpy"); err != nil {
		t.Fatal(err)
	}
	if _, err := client.LatestVersion(ctx, "NumPy", false); err != nil {
		t.Fatal(err)
	}

	if got := hits.Load(); got != 1 {
		t.Errorf("registry hit %d times, want 1 (cache miss only once)", got)
	}

	client.ClearCache()
	if _, err := client.Project(ctx, "numpy"); err != nil {
		t.Fatal(err)
	}
	if got := hits.Load(); got != 2 {
		t.Errorf("registry hit %d times after ClearCache, want 2", got)
	}
}

func TestClient_Releases(t *testing.T) {
	server, _ := fakeIndex(t, map[string]string{"numpy": numpyPayload})
	client := NewClient(WithBaseURL(server.URL))

	releases, err := client.Releases(context.Background(), "numpy")
	if err != nil {
		t.Fatalf("Releases() error: %v", err)
	}

	// Ascending PEP 440 order, unparseable keys skipped.
	want := []string{"1.26.4", "1.99.0", "2.0.0", "2.1.0rc1"}
	if len(releases) != len(want) {
		t.Fatalf("Releases() = %v, want %v", releases, want)
	}
	for i := range want {
		if releases[i] != want[i] {
			t.Errorf("Releases()[%d] = %q, want %q", i, releases[i], want[i])
		}
	}
}

func TestClient_LatestVersion(t *testing.T) {
	server, _ := fakeIndex(t, map[string]string{"numpy": numpyPayload})
	client := NewClient(WithBaseURL(server.URL))
	ctx := context.Background()

	tests := []struct {
		name       string
		includePre bool
		want       string
	}{
		// Stable only: the yanked 1.99.0 and the rc are skipped.
		{"stable", false, "2.0.0"},
		{"with prereleases", true, "2.1.0rc1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := client.LatestVersion(ctx, "numpy", tt.includePre)
			if err != nil {
				t.Fatalf("LatestVersion() error: %v", err)
			}
			if got != tt.want {
				t.Errorf("LatestVersion(includePre=%v) = %q, want %q", tt.includePre, got, tt.want)
			}
		})
	}
}

func TestClient_LatestVersion_OnlyPrereleases(t *testing.T) {
	payload := `{"info": {"name": "pkg", "version": "1.0rc1"}, "releases": {"1.0rc1": [{"yanked": false}]}}`
	server, _ := fakeIndex(t, map[string]string{"pkg": payload})
	client := NewClient(WithBaseURL(server.URL))

	got, err := client.LatestVersion(context.Background(), "pkg", false)
	if err != nil {
		t.Fatalf("LatestVersion() error: %v", err)
	}
	if got != "1.0rc1" {
		t.Errorf("LatestVersion() = %q, want the only available prerelease", got)
	}
}

func TestClient_LatestVersion_NoReleases(t *testing.T) {
	payload := `{"info": {"name": "pkg", "version": ""}, "releases": {}}`
	server, _ := fakeIndex(t, map[string]string{"pkg": payload})
	client := NewClient(WithBaseURL(server.URL))

	_, err := client.LatestVersion(context.Background(), "pkg", false)
	if !errors.Is(err, reqerrors.ErrRegistry) {
		t.Errorf("error = %v, want ErrRegistry", err)
	}
}

func TestClient_IsYanked(t *testing.T) {
	server, _ := fakeIndex(t, map[string]string{"numpy": numpyPayload})
	client := NewClient(WithBaseURL(server.URL))
	ctx := context.Background()

	yanked, reason, err := client.IsYanked(ctx, "numpy", "1.99.0")
	if err != nil {
		t.Fatalf("IsYanked() error: %v", err)
	}
	if !yanked || reason != "broken wheel" {
		t.Errorf("IsYanked(1.99.0) = %v, %q; want true, broken wheel", yanked, reason)
	}

	yanked, _, err = client.IsYanked(ctx, "numpy", "2.0.0")
	if err != nil {
		t.Fatalf("IsYanked() error: %v", err)
	}
	if yanked {
		t.Error("IsYanked(2.0.0) = true, want false")
	}

	if _, _, err := client.IsYanked(ctx, "numpy", "9.9.9"); !errors.Is(err, reqerrors.ErrNotFound) {
		t.Errorf("IsYanked(unknown version) error = %v, want ErrNotFound", err)
	}
}

func TestClient_IsYanked_SpellingTolerant(t *testing.T) {
	payload := `{"info": {"name": "pkg", "version": "1.0"}, "releases": {"1.0": [{"yanked": false}]}}`
	server, _ := fakeIndex(t, map[string]string{"pkg": payload})
	client := NewClient(WithBaseURL(server.URL))

	if _, _, err := client.IsYanked(context.Background(), "pkg", "1.0.0"); err != nil {
		t.Errorf("IsYanked(1.0.0) should match the 1.0 release key: %v", err)
	}
}

func TestClient_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	t.Cleanup(server.Close)
	client := NewClient(WithBaseURL(server.URL))

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	_, err := client.Project(ctx, "numpy")
	if !errors.Is(err, reqerrors.ErrTimeout) {
		t.Errorf("error = %v, want ErrTimeout (cancellation)", err)
	}
}
