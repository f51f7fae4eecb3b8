package release

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os/exec"
	"regexp"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"nuverify/internal/version"
)

const (
	defaultBaseURL = "https://api.github.com"
	nushellRepo    = "nushell/nushell"
	blogRepo       = "nushell/nushell.github.io"
)

var (
	blogURLPattern  = regexp.MustCompile(`https://www\.nushell\.sh/blog/[\w\-/]+\.html`)
	blogPathPattern = regexp.MustCompile(`https://www\.nushell\.sh/blog/(.+)\.html`)
)

// Client talks to the GitHub API for releases and raw blog content.
type Client struct {
	token      string
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// New creates a release client. An empty token is allowed; unauthenticated
// requests are subject to GitHub's anonymous rate limits.
func New(token string, logger *zap.Logger) *Client {
	return NewWithBaseURL(token, defaultBaseURL, logger)
}

// NewWithBaseURL creates a client against a specific API base URL.
func NewWithBaseURL(token, baseURL string, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		token:   token,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}
}

// GhCLIToken asks the GitHub CLI for an auth token. It fails silently and
// returns "" when gh is missing, unauthenticated, or slow; discovering a
// credential must never block the pipeline.
func GhCLIToken() string {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	out, err := exec.CommandContext(ctx, "gh", "auth", "token").Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}

// HasToken reports whether the client sends authenticated requests.
func (c *Client) HasToken() bool {
	return c.token != ""
}

// LatestVersion returns the tag of the newest non-draft, non-prerelease
// Nushell release.
func (c *Client) LatestVersion(ctx context.Context) (string, error) {
	releases, err := c.releases(ctx, 1)
	if err != nil {
		return "", err
	}
	if len(releases) == 0 {
		return "", fmt.Errorf("could not determine latest Nushell version: no releases returned")
	}
	return releases[0].Version, nil
}

// ReleasesBetween returns every non-patch release in [start, end] inclusive,
// in ascending version order. Drafts and prereleases are never included.
func (c *Client) ReleasesBetween(ctx context.Context, start, end string) ([]*Release, error) {
	all, err := c.releases(ctx, 100)
	if err != nil {
		return nil, err
	}

	var filtered []*Release
	for _, rel := range all {
		if !version.IsSameOrAfter(rel.Version, start) || !version.IsSameOrAfter(end, rel.Version) {
			continue
		}
		if version.IsPatchRelease(rel.Version) {
			continue
		}
		filtered = append(filtered, rel)
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		return version.Compare(filtered[i].Version, filtered[j].Version) < 0
	})
	return filtered, nil
}

// ReleaseByVersion finds a single release by tag, tolerating a missing or
// present "v" prefix on either side.
func (c *Client) ReleaseByVersion(ctx context.Context, v string) (*Release, bool, error) {
	all, err := c.releases(ctx, 100)
	if err != nil {
		return nil, false, err
	}
	for _, rel := range all {
		if version.Compare(rel.Version, v) == 0 {
			return rel, true, nil
		}
	}
	return nil, false, nil
}

// FetchBlogContent retrieves the release-notes blog post for a release.
// The second return is false when the release has no discoverable post or
// the content path does not exist; that is an expected condition, not an
// error, and the release then contributes no instructions.
func (c *Client) FetchBlogContent(ctx context.Context, rel *Release) (string, bool) {
	if rel.BlogPostURL == "" {
		return "", false
	}
	path, ok := blogPath(rel.BlogPostURL)
	if !ok {
		return "", false
	}
	return c.fetchFileContent(ctx, blogRepo, path)
}

// apiRelease is the subset of the GitHub release payload the verifier needs.
type apiRelease struct {
	TagName    string `json:"tag_name"`
	Body       string `json:"body"`
	Draft      bool   `json:"draft"`
	Prerelease bool   `json:"prerelease"`
}

func (c *Client) releases(ctx context.Context, perPage int) ([]*Release, error) {
	url := fmt.Sprintf("%s/repos/%s/releases?per_page=%d", c.baseURL, nushellRepo, perPage)
	body, status, err := c.get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch releases: %w", err)
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch releases: GitHub API returned status %d: %s", status, strings.TrimSpace(string(body)))
	}

	var payload []apiRelease
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("failed to parse releases response: %w", err)
	}

	var out []*Release
	for _, r := range payload {
		if r.Draft || r.Prerelease {
			continue
		}
		out = append(out, &Release{
			Version:     r.TagName,
			BlogPostURL: blogURLPattern.FindString(r.Body),
		})
	}
	return out, nil
}

// apiContent is the GitHub contents API payload for a file.
type apiContent struct {
	Encoding string `json:"encoding"`
	Content  string `json:"content"`
}

// fetchFileContent reads a repository file via the contents API. Any failure
// is reported as absent content.
func (c *Client) fetchFileContent(ctx context.Context, repo, path string) (string, bool) {
	url := fmt.Sprintf("%s/repos/%s/contents/%s", c.baseURL, repo, path)
	body, status, err := c.get(ctx, url)
	if err != nil || status != http.StatusOK {
		c.logger.Debug("content fetch missed",
			zap.String("repo", repo), zap.String("path", path),
			zap.Int("status", status), zap.Error(err))
		return "", false
	}

	var payload apiContent
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", false
	}
	if payload.Encoding != "base64" {
		return "", false
	}

	// The contents API wraps base64 at 60 columns.
	raw := strings.ReplaceAll(payload.Content, "\n", "")
	decoded, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return "", false
	}
	return string(decoded), true
}

func (c *Client) get(ctx context.Context, url string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	if c.token != "" {
		req.Header.Set("Authorization", "token "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, err
	}
	return body, resp.StatusCode, nil
}

// blogPath maps a published blog URL onto its markdown source path in the
// blog repository:
//
//	https://www.nushell.sh/blog/2023-10-10-nushell_0_85_0.html
//	-> blog/2023-10-10-nushell_0_85_0.md
func blogPath(blogURL string) (string, bool) {
	m := blogPathPattern.FindStringSubmatch(blogURL)
	if m == nil {
		return "", false
	}
	return "blog/" + m[1] + ".md", true
}
