package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/blackwell-systems/updatewatch/internal/version"
)

const defaultGitHubBaseURL = "https://api.github.com"

// defaultTimeout bounds a single release lookup so one hung repository cannot
// stall an entire check pass.
const defaultTimeout = 15 * time.Second

// GitHub fetches the latest release tag of a repository via the GitHub REST
// API. An access token raises the rate limit and allows private repositories;
// without one, unauthenticated limits apply.
type GitHub struct {
	baseURL string
	token   string
	client  *http.Client
}

// GitHubOption configures a GitHub provider.
type GitHubOption func(*GitHub)

// WithToken sets a personal access token used as a bearer credential.
func WithToken(token string) GitHubOption {
	return func(g *GitHub) {
		g.token = token
	}
}

// WithBaseURL overrides the API endpoint. Used by tests and GitHub
// Enterprise setups.
func WithBaseURL(url string) GitHubOption {
	return func(g *GitHub) {
		g.baseURL = url
	}
}

// NewGitHub creates a GitHub release provider.
func NewGitHub(opts ...GitHubOption) *GitHub {
	g := &GitHub{
		baseURL: defaultGitHubBaseURL,
		client:  &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// LatestVersion returns the tag name of the repository's latest release.
func (g *GitHub) LatestVersion(ctx context.Context, repository string) (version.Version, error) {
	url := fmt.Sprintf("%s/repos/%s/releases/latest", g.baseURL, repository)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build release request for %s: %w", repository, err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("User-Agent", "updatewatch")
	if g.token != "" {
		req.Header.Set("Authorization", "Bearer "+g.token)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("release request for %s failed: %w", repository, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		// fall through to decode
	case resp.StatusCode == http.StatusNotFound:
		return "", fmt.Errorf("repository %s: %w", repository, ErrNotFound)
	case resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusTooManyRequests:
		return "", fmt.Errorf("repository %s: %w", repository, ErrRateLimited)
	default:
		return "", fmt.Errorf("release request for %s returned status %s", repository, resp.Status)
	}

	var release struct {
		TagName string `json:"tag_name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return "", fmt.Errorf("failed to decode release response for %s: %w", repository, err)
	}
	if release.TagName == "" {
		return "", fmt.Errorf("release response for %s contained no tag_name", repository)
	}

	return version.Version(release.TagName), nil
}
