package release

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newReleaseServer(t *testing.T, releases []map[string]any, files map[string]string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/nushell/nushell/releases", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(releases)
	})
	mux.HandleFunc("/repos/nushell/nushell.github.io/contents/", func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path[len("/repos/nushell/nushell.github.io/contents/"):]
		content, ok := files[path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{
			"encoding": "base64",
			"content":  base64.StdEncoding.EncodeToString([]byte(content)),
		})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestReleasesBetweenWindowAndPatchExclusion(t *testing.T) {
	srv := newReleaseServer(t, []map[string]any{
		{"tag_name": "0.108.0", "body": ""},
		{"tag_name": "0.107.0", "body": "see https://www.nushell.sh/blog/2025-07-01-nushell_0_107_0.html"},
		{"tag_name": "0.106.1", "body": ""},
		{"tag_name": "0.106.0", "body": ""},
		{"tag_name": "0.105.0", "body": ""},
		{"tag_name": "0.104.0", "body": ""},
	}, nil)
	c := NewWithBaseURL("", srv.URL, zap.NewNop())

	got, err := c.ReleasesBetween(context.Background(), "0.105.0", "0.107.0")
	require.NoError(t, err)

	versions := make([]string, len(got))
	for i, r := range got {
		versions[i] = r.Version
	}
	assert.Equal(t, []string{"0.105.0", "0.106.0", "0.107.0"}, versions)
}

func TestReleasesBetweenExtractsBlogURL(t *testing.T) {
	srv := newReleaseServer(t, []map[string]any{
		{"tag_name": "0.107.0", "body": "Notes: https://www.nushell.sh/blog/2025-07-01-nushell_0_107_0.html enjoy"},
	}, nil)
	c := NewWithBaseURL("", srv.URL, zap.NewNop())

	got, err := c.ReleasesBetween(context.Background(), "0.107.0", "0.107.0")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "https://www.nushell.sh/blog/2025-07-01-nushell_0_107_0.html", got[0].BlogPostURL)
}

func TestReleasesSkipDraftsAndPrereleases(t *testing.T) {
	srv := newReleaseServer(t, []map[string]any{
		{"tag_name": "0.108.0", "body": "", "draft": true},
		{"tag_name": "0.107.0-rc1", "body": "", "prerelease": true},
		{"tag_name": "0.106.0", "body": ""},
	}, nil)
	c := NewWithBaseURL("", srv.URL, zap.NewNop())

	latest, err := c.LatestVersion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "0.106.0", latest)
}

func TestFetchBlogContent(t *testing.T) {
	srv := newReleaseServer(t, nil, map[string]string{
		"blog/2025-07-01-nushell_0_107_0.md": "# Nushell 0.107.0\nbreaking changes...",
	})
	c := NewWithBaseURL("", srv.URL, zap.NewNop())

	content, ok := c.FetchBlogContent(context.Background(), &Release{
		Version:     "0.107.0",
		BlogPostURL: "https://www.nushell.sh/blog/2025-07-01-nushell_0_107_0.html",
	})
	require.True(t, ok)
	assert.Contains(t, content, "breaking changes")
}

func TestFetchBlogContentAbsent(t *testing.T) {
	srv := newReleaseServer(t, nil, nil)
	c := NewWithBaseURL("", srv.URL, zap.NewNop())

	_, ok := c.FetchBlogContent(context.Background(), &Release{
		Version:     "0.107.0",
		BlogPostURL: "https://www.nushell.sh/blog/missing.html",
	})
	assert.False(t, ok)

	_, ok = c.FetchBlogContent(context.Background(), &Release{Version: "0.107.0"})
	assert.False(t, ok, "release without a blog link yields no content")
}

func TestBlogPathMapping(t *testing.T) {
	path, ok := blogPath("https://www.nushell.sh/blog/2023-10-10-nushell_0_85_0.html")
	require.True(t, ok)
	assert.Equal(t, "blog/2023-10-10-nushell_0_85_0.md", path)

	_, ok = blogPath("https://example.com/other.html")
	assert.False(t, ok)
}

func TestReleasesAPIFailureIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)
	c := NewWithBaseURL("", srv.URL, zap.NewNop())

	_, err := c.ReleasesBetween(context.Background(), "0.105.0", "0.107.0")
	assert.Error(t, err)
}
