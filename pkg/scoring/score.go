// Package scoring ranks cataloged tools for enrichment budget allocation.
// It computes a 0-100 importance score per tool from external metrics and
// content signals, partitions the catalog into quality tiers by rank, and
// decides when a tool's generated content is stale enough to regenerate.
package scoring

import (
	"strings"
	"time"

	"github.com/agentstation/toolindex/pkg/catalog"
)

// Static fallback category lists, used when no dynamic traffic-derived
// category scores are available.
var (
	highValueCategories = []string{
		"language models",
		"image generation",
		"code assistants",
		"chatbots",
		"agents",
		"developer tools",
	}
	mediumValueCategories = []string{
		"audio",
		"video",
		"data analysis",
		"automation",
		"writing",
	}
)

// maxScore caps the summed bucket contributions.
const maxScore = 100

// Score calculates the importance score for a tool, in [0,100].
//
// The score is a sum of capped point buckets: repository stars, hosted-model
// downloads, category popularity, content completeness, prior enrichment,
// and a precomputed traffic percentile. Missing or malformed metrics
// contribute zero points; this never errors. categoryScores may be nil, in
// which case static category lists are consulted.
func Score(tool *catalog.Tool, external *catalog.ExternalData, categoryScores map[string]int) int {
	if external == nil {
		external = tool.External
	}
	if external == nil {
		external = &catalog.ExternalData{}
	}

	score := 0
	score += repoPoints(external.Repo)
	score += modelPoints(external.Model)
	score += categoryPoints(tool.Category, categoryScores)
	score += contentPoints(tool)
	score += enrichmentPoints(tool)
	score += trafficPoints(external.Traffic)

	if score > maxScore {
		return maxScore
	}
	return score
}

// repoPoints maps repository stars to decreasing point bands, max 35,
// plus a small bonus for recent push activity.
func repoPoints(stats *catalog.RepoStats) int {
	if stats == nil {
		return 0
	}

	points := 0
	switch stars := stats.Stars; {
	case stars >= 50000:
		points = 35
	case stars >= 20000:
		points = 30
	case stars >= 10000:
		points = 25
	case stars >= 5000:
		points = 20
	case stars >= 1000:
		points = 15
	case stars >= 500:
		points = 10
	case stars >= 100:
		points = 5
	}

	points += recentPushBonus(stats.PushedAt, time.Now())
	return points
}

// recentPushBonus rewards active development: +5 for a push within 30 days,
// +3 within 90. An absent or unparsable timestamp contributes nothing.
func recentPushBonus(pushedAt string, now time.Time) int {
	raw := strings.TrimSpace(pushedAt)
	if raw == "" {
		return 0
	}
	pushed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return 0
	}
	switch daysAgo := int(now.Sub(pushed).Hours() / 24); {
	case daysAgo <= 30:
		return 5
	case daysAgo <= 90:
		return 3
	default:
		return 0
	}
}

// modelPoints maps hosted-model downloads to decreasing point bands,
// max 35, plus a likes bonus.
func modelPoints(stats *catalog.ModelStats) int {
	if stats == nil {
		return 0
	}

	points := 0
	switch downloads := stats.Downloads; {
	case downloads >= 10_000_000:
		points = 35
	case downloads >= 1_000_000:
		points = 30
	case downloads >= 500_000:
		points = 25
	case downloads >= 100_000:
		points = 20
	case downloads >= 50_000:
		points = 15
	case downloads >= 10_000:
		points = 10
	case downloads >= 1_000:
		points = 5
	}

	switch likes := stats.Likes; {
	case likes >= 1000:
		points += 5
	case likes >= 100:
		points += 3
	}

	return points
}

// categoryPoints prefers the dynamic traffic-derived category map when it
// covers the tool's category, falling back to static list membership.
func categoryPoints(category string, categoryScores map[string]int) int {
	normalized := strings.ToLower(strings.TrimSpace(category))

	if points, ok := categoryScores[normalized]; ok {
		return points
	}

	for _, cat := range highValueCategories {
		if strings.Contains(normalized, cat) {
			return 15
		}
	}
	for _, cat := range mediumValueCategories {
		if strings.Contains(normalized, cat) {
			return 10
		}
	}
	return 5 // base category score
}

// contentPoints rewards content completeness: description length bands,
// URL presence, and a tag-count threshold. Max 10.
func contentPoints(tool *catalog.Tool) int {
	points := 0

	switch length := len(tool.Description); {
	case length >= 200:
		points += 5
	case length >= 100:
		points += 3
	case length >= 50:
		points += 1
	}

	if tool.URL != "" {
		points += 2
	}
	if len(tool.Tags) >= 3 {
		points += 3
	}

	return points
}

// enrichmentPoints rewards tools that already carry generated content:
// +2 for enhanced content, +3 more when comparison content also exists.
func enrichmentPoints(tool *catalog.Tool) int {
	if !tool.HasEnhancedContent() {
		return 0
	}
	points := 2
	if tool.HasComparisons() {
		points += 3
	}
	return points
}

// trafficPoints contributes the precomputed percentile-based traffic score.
func trafficPoints(stats *catalog.TrafficStats) int {
	if stats == nil || stats.TrafficScore < 0 {
		return 0
	}
	return stats.TrafficScore
}
