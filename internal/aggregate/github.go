package aggregate

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/agentstation/toolindex/internal/storage"
	"github.com/agentstation/toolindex/pkg/catalog"
)

const githubAPIBase = "https://api.github.com"

var githubRepoPatterns = []*regexp.Regexp{
	regexp.MustCompile(`github\.com/([^/]+)/([^/?#]+)`),
	regexp.MustCompile(`raw\.githubusercontent\.com/([^/]+)/([^/]+)`),
}

// ExtractGitHubRepo pulls an owner/repo pair out of any URL that
// references a GitHub repository. The repo name is cleaned of trailing
// slashes and a .git suffix.
func ExtractGitHubRepo(url string) (owner, repo string, ok bool) {
	if url == "" {
		return "", "", false
	}
	for _, pattern := range githubRepoPatterns {
		if m := pattern.FindStringSubmatch(url); m != nil {
			repo = strings.TrimSuffix(strings.TrimRight(m[2], "/"), ".git")
			return m[1], repo, true
		}
	}
	return "", "", false
}

// GitHub fetches repository metrics from the GitHub REST API. With a token
// the rate limit is 5,000 requests/hour; without one it is 60, which is
// not enough for batch runs.
type GitHub struct {
	fetcher *fetcher
	token   string
}

// NewGitHub creates a GitHub aggregator. token may be empty.
func NewGitHub(cache storage.Cache, token string) *GitHub {
	return &GitHub{fetcher: newFetcher(cache), token: token}
}

type githubRepoResponse struct {
	StargazersCount int    `json:"stargazers_count"`
	ForksCount      int    `json:"forks_count"`
	Language        string `json:"language"`
	Archived        bool   `json:"archived"`
	PushedAt        string `json:"pushed_at"`
	License         *struct {
		SPDXID string `json:"spdx_id"`
		Name   string `json:"name"`
	} `json:"license"`
}

// Fetch returns repository stats for any URL referencing a GitHub repo.
// A URL without a repo reference yields (nil, nil).
func (g *GitHub) Fetch(ctx context.Context, url string) (*catalog.RepoStats, error) {
	owner, repo, ok := ExtractGitHubRepo(url)
	if !ok {
		return nil, nil
	}

	headers := map[string]string{"Accept": "application/vnd.github.v3+json"}
	if g.token != "" {
		headers["Authorization"] = "Bearer " + g.token
	}

	var resp githubRepoResponse
	endpoint := fmt.Sprintf("%s/repos/%s/%s", githubAPIBase, owner, repo)
	if err := g.fetcher.getJSON(ctx, "github", endpoint, headers, &resp); err != nil {
		return nil, err
	}

	stats := &catalog.RepoStats{
		Owner:     owner,
		Repo:      repo,
		Stars:     resp.StargazersCount,
		Forks:     resp.ForksCount,
		Language:  resp.Language,
		Archived:  resp.Archived,
		PushedAt:  resp.PushedAt,
		FetchedAt: time.Now().UTC(),
	}
	if resp.License != nil {
		stats.License = resp.License.SPDXID
		if stats.License == "" {
			stats.License = resp.License.Name
		}
	}
	return stats, nil
}
