package aggregate

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/agentstation/toolindex/internal/storage"
	"github.com/agentstation/toolindex/pkg/catalog"
	"github.com/agentstation/toolindex/pkg/logging"
)

const (
	pypiAPIBase      = "https://pypi.org/pypi"
	pypiStatsAPIBase = "https://pypistats.org/api/packages"
	npmRegistryBase  = "https://registry.npmjs.org"
	npmDownloadsBase = "https://api.npmjs.org/downloads"
)

// Package registries.
const (
	RegistryPyPI = "pypi"
	RegistryNPM  = "npm"
)

var (
	pypiURLPattern   = regexp.MustCompile(`pypi\.org/project/([^/?#]+)`)
	pipInstallRe     = regexp.MustCompile(`pip\s+install\s+([a-zA-Z0-9_-]+)`)
	npmURLPattern    = regexp.MustCompile(`npmjs\.com/package/(@?[^/?#]+(?:/[^/?#]+)?)`)
	npmInstallRe     = regexp.MustCompile(`npm\s+install\s+(@?[a-zA-Z0-9_/-]+)`)
)

// ExtractPyPIPackage pulls a PyPI package name from a project URL or a
// "pip install" snippet.
func ExtractPyPIPackage(text string) (string, bool) {
	if text == "" {
		return "", false
	}
	if m := pypiURLPattern.FindStringSubmatch(text); m != nil {
		return strings.ToLower(strings.TrimRight(m[1], "/")), true
	}
	if m := pipInstallRe.FindStringSubmatch(text); m != nil {
		return strings.ToLower(m[1]), true
	}
	return "", false
}

// ExtractNPMPackage pulls an npm package name (scoped packages included)
// from a registry URL or an "npm install" snippet.
func ExtractNPMPackage(text string) (string, bool) {
	if text == "" {
		return "", false
	}
	if m := npmURLPattern.FindStringSubmatch(text); m != nil {
		return strings.TrimRight(m[1], "/"), true
	}
	if m := npmInstallRe.FindStringSubmatch(text); m != nil {
		return m[1], true
	}
	return "", false
}

// Packages fetches download metrics from the PyPI and npm registries.
// Both APIs are public and unauthenticated.
type Packages struct {
	fetcher *fetcher
}

// NewPackages creates a package-registry aggregator.
func NewPackages(cache storage.Cache) *Packages {
	return &Packages{fetcher: newFetcher(cache)}
}

// Fetch tries both registries against the tool's URL and description and
// returns the first match, or (nil, nil) when neither references a package.
func (p *Packages) Fetch(ctx context.Context, url, description string) (*catalog.PackageStats, error) {
	for _, text := range []string{url, description} {
		if name, ok := ExtractPyPIPackage(text); ok {
			return p.fetchPyPI(ctx, name)
		}
		if name, ok := ExtractNPMPackage(text); ok {
			return p.fetchNPM(ctx, name)
		}
	}
	return nil, nil
}

type pypiResponse struct {
	Info struct {
		Name    string `json:"name"`
		Version string `json:"version"`
	} `json:"info"`
	URLs []struct {
		UploadTime string `json:"upload_time_iso_8601"`
	} `json:"urls"`
}

type pypiStatsResponse struct {
	Data struct {
		LastMonth int `json:"last_month"`
	} `json:"data"`
}

func (p *Packages) fetchPyPI(ctx context.Context, name string) (*catalog.PackageStats, error) {
	var meta pypiResponse
	if err := p.fetcher.getJSON(ctx, RegistryPyPI, pypiAPIBase+"/"+name+"/json", nil, &meta); err != nil {
		return nil, err
	}

	stats := &catalog.PackageStats{
		Registry:      RegistryPyPI,
		Name:          meta.Info.Name,
		LatestVersion: meta.Info.Version,
		FetchedAt:     time.Now().UTC(),
	}
	if stats.Name == "" {
		stats.Name = name
	}
	if len(meta.URLs) > 0 {
		stats.LatestReleaseDate = meta.URLs[0].UploadTime
	}

	// Download counts come from a second, best-effort API.
	var downloads pypiStatsResponse
	if err := p.fetcher.getJSON(ctx, RegistryPyPI, pypiStatsAPIBase+"/"+name+"/recent", nil, &downloads); err != nil {
		logging.Ctx(ctx).Debug().Err(err).Str("package", name).Msg("pypistats fetch failed")
	} else {
		stats.MonthlyDownloads = downloads.Data.LastMonth
	}

	return stats, nil
}

type npmMetaResponse struct {
	Name     string            `json:"name"`
	DistTags map[string]string `json:"dist-tags"`
	Time     map[string]string `json:"time"`
}

type npmDownloadsResponse struct {
	Downloads int `json:"downloads"`
}

func (p *Packages) fetchNPM(ctx context.Context, name string) (*catalog.PackageStats, error) {
	// Scoped package names need their slash encoded.
	encoded := strings.ReplaceAll(name, "/", "%2F")

	var meta npmMetaResponse
	if err := p.fetcher.getJSON(ctx, RegistryNPM, npmRegistryBase+"/"+encoded, nil, &meta); err != nil {
		return nil, err
	}

	stats := &catalog.PackageStats{
		Registry:      RegistryNPM,
		Name:          meta.Name,
		LatestVersion: meta.DistTags["latest"],
		FetchedAt:     time.Now().UTC(),
	}
	if stats.Name == "" {
		stats.Name = name
	}
	if stats.LatestVersion != "" {
		stats.LatestReleaseDate = meta.Time[stats.LatestVersion]
	}

	var downloads npmDownloadsResponse
	if err := p.fetcher.getJSON(ctx, RegistryNPM, npmDownloadsBase+"/point/last-month/"+encoded, nil, &downloads); err != nil {
		logging.Ctx(ctx).Debug().Err(err).Str("package", name).Msg("npm downloads fetch failed")
	} else {
		stats.MonthlyDownloads = downloads.Downloads
	}

	return stats, nil
}
