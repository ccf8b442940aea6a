// Package catalog defines the core data model for the toolindex system:
// cataloged tools, their externally aggregated metrics, generated content,
// and the document layout persisted to object storage.
package catalog

import (
	"strings"
	"time"
)

// Tool represents one cataloged software tool or model being tracked.
//
// Fields populated by the maintenance pipeline (tier, score, enhanced
// content, external metrics) are optional; raw catalog entries carry only
// the identity and description fields.
type Tool struct {
	ID          string   `json:"id" yaml:"id"`
	Name        string   `json:"name" yaml:"name"`
	URL         string   `json:"url,omitempty" yaml:"url,omitempty"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Category    string   `json:"category,omitempty" yaml:"category,omitempty"`
	Tags        []string `json:"tags,omitempty" yaml:"tags,omitempty"`
	Pricing     string   `json:"pricing,omitempty" yaml:"pricing,omitempty"`

	// Slug is the canonical public identifier assigned by the slug registry.
	Slug string `json:"slug,omitempty" yaml:"slug,omitempty"`

	// External holds the most recently aggregated external metrics,
	// keyed by source. Missing sources simply contribute nothing to scoring.
	External *ExternalData `json:"external_data,omitempty" yaml:"external_data,omitempty"`

	// Enhanced holds generated content from the enrichment pipeline.
	Enhanced *EnhancedContent `json:"enhanced_content,omitempty" yaml:"enhanced_content,omitempty"`

	// EnhancedAt is the RFC 3339 timestamp of the last successful enrichment.
	// Kept as text: a malformed value must schedule regeneration, not fail a load.
	EnhancedAt string `json:"enhanced_at,omitempty" yaml:"enhanced_at,omitempty"`

	// Comparisons maps partner tool IDs to generated comparison content.
	Comparisons map[string]*Comparison `json:"comparisons,omitempty" yaml:"comparisons,omitempty"`

	// Tier and Score are denormalized from the most recent maintenance run
	// for display; they are recomputed fresh each run and never trusted as input.
	Tier  string `json:"tier,omitempty" yaml:"tier,omitempty"`
	Score int    `json:"importance_score,omitempty" yaml:"importance_score,omitempty"`
}

// HasEnhancedContent reports whether the tool has any prior generated content.
func (t *Tool) HasEnhancedContent() bool {
	return t.Enhanced != nil && len(t.Enhanced.Sections) > 0
}

// HasComparisons reports whether the tool has any generated comparison content.
func (t *Tool) HasComparisons() bool {
	return len(t.Comparisons) > 0
}

// EnhancedTime parses the last-enhanced timestamp. The boolean is false when
// the timestamp is absent or malformed.
func (t *Tool) EnhancedTime() (time.Time, bool) {
	raw := strings.TrimSpace(t.EnhancedAt)
	if raw == "" {
		return time.Time{}, false
	}
	ts, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, false
	}
	return ts, true
}

// EnhancedContent is the output of the enrichment pipeline for one tool.
type EnhancedContent struct {
	// Sections maps section names (overview, key_features, ...) to
	// generated markdown/plain-text bodies.
	Sections map[string]string `json:"sections" yaml:"sections"`

	// Tier records the tier the tool occupied when the content was generated.
	Tier string `json:"tier,omitempty" yaml:"tier,omitempty"`

	// Model is the LLM used to generate the content.
	Model string `json:"model,omitempty" yaml:"model,omitempty"`

	GeneratedAt time.Time `json:"generated_at" yaml:"generated_at"`
}

// Comparison is generated head-to-head content between two tools.
type Comparison struct {
	Slug        string    `json:"slug" yaml:"slug"`
	PartnerID   string    `json:"partner_id" yaml:"partner_id"`
	PartnerName string    `json:"partner_name,omitempty" yaml:"partner_name,omitempty"`
	Body        string    `json:"body,omitempty" yaml:"body,omitempty"`
	GeneratedAt time.Time `json:"generated_at" yaml:"generated_at"`
}

// ExternalData aggregates per-source metrics fetched by the collaborator
// aggregators. Every field is optional; scoring treats a nil source as
// contributing zero points.
type ExternalData struct {
	Repo    *RepoStats    `json:"repo_stats,omitempty" yaml:"repo_stats,omitempty"`
	Model   *ModelStats   `json:"model_stats,omitempty" yaml:"model_stats,omitempty"`
	Package *PackageStats `json:"package_stats,omitempty" yaml:"package_stats,omitempty"`
	Traffic *TrafficStats `json:"traffic_stats,omitempty" yaml:"traffic_stats,omitempty"`
}

// RepoStats are source-repository metrics (GitHub and compatible hosts).
type RepoStats struct {
	Owner    string `json:"owner" yaml:"owner"`
	Repo     string `json:"repo" yaml:"repo"`
	Stars    int    `json:"stars" yaml:"stars"`
	Forks    int    `json:"forks,omitempty" yaml:"forks,omitempty"`
	License  string `json:"license,omitempty" yaml:"license,omitempty"`
	Language string `json:"language,omitempty" yaml:"language,omitempty"`
	Archived bool   `json:"archived,omitempty" yaml:"archived,omitempty"`

	// PushedAt is the RFC 3339 timestamp of the most recent push, as
	// reported by the host API. Malformed values contribute no activity bonus.
	PushedAt  string    `json:"pushed_at,omitempty" yaml:"pushed_at,omitempty"`
	FetchedAt time.Time `json:"fetched_at" yaml:"fetched_at"`
}

// ModelStats are hosted-model metrics (Hugging Face and compatible hubs).
type ModelStats struct {
	ModelID   string    `json:"model_id" yaml:"model_id"`
	Kind      string    `json:"kind,omitempty" yaml:"kind,omitempty"` // model, space, dataset
	Downloads int       `json:"downloads" yaml:"downloads"`
	Likes     int       `json:"likes,omitempty" yaml:"likes,omitempty"`
	FetchedAt time.Time `json:"fetched_at" yaml:"fetched_at"`
}

// PackageStats are package-registry metrics (PyPI, npm).
type PackageStats struct {
	Registry          string    `json:"registry" yaml:"registry"` // pypi, npm
	Name              string    `json:"name" yaml:"name"`
	MonthlyDownloads  int       `json:"monthly_downloads,omitempty" yaml:"monthly_downloads,omitempty"`
	LatestVersion     string    `json:"latest_version,omitempty" yaml:"latest_version,omitempty"`
	LatestReleaseDate string    `json:"latest_release_date,omitempty" yaml:"latest_release_date,omitempty"`
	FetchedAt         time.Time `json:"fetched_at" yaml:"fetched_at"`
}

// TrafficStats are site-analytics metrics for the tool's own page.
type TrafficStats struct {
	Pageviews30d int       `json:"pageviews_30d" yaml:"pageviews_30d"`
	TrafficScore int       `json:"traffic_score" yaml:"traffic_score"` // percentile-based, 0-25
	FetchedAt    time.Time `json:"fetched_at" yaml:"fetched_at"`
}
