package scoring

import (
	"sort"
	"strings"

	"github.com/agentstation/toolindex/pkg/catalog"
)

// Category score bands assigned by traffic percentile.
const (
	categoryBandHigh   = 15
	categoryBandMedium = 10
	categoryBandLow    = 5
)

// CategoryScoresFromTraffic computes dynamic category scores from actual
// pageview data, replacing the static category lists when traffic exists.
//
// Pageviews are aggregated per category (joined through each tool's slug)
// and categories are bucketed by percentile: the top 20% of categories by
// total traffic get the high band, the next 30% the medium band, and the
// remainder the low band. An empty traffic map yields an empty result so
// callers fall back to the static lists.
func CategoryScoresFromTraffic(tools []*catalog.Tool, trafficBySlug map[string]*catalog.TrafficStats) map[string]int {
	if len(trafficBySlug) == 0 {
		return map[string]int{}
	}

	categoryTraffic := make(map[string]int)
	for _, tool := range tools {
		category := strings.ToLower(strings.TrimSpace(tool.Category))
		if category == "" {
			continue
		}
		slug := strings.ToLower(tool.Slug)
		if stats, ok := trafficBySlug[slug]; ok {
			categoryTraffic[category] += stats.Pageviews30d
		}
	}

	if len(categoryTraffic) == 0 {
		return map[string]int{}
	}

	ordered := make([]string, 0, len(categoryTraffic))
	for category := range categoryTraffic {
		ordered = append(ordered, category)
	}
	sort.Slice(ordered, func(i, j int) bool {
		if categoryTraffic[ordered[i]] != categoryTraffic[ordered[j]] {
			return categoryTraffic[ordered[i]] > categoryTraffic[ordered[j]]
		}
		return ordered[i] < ordered[j] // deterministic order for equal traffic
	})

	total := len(ordered)
	top20 := total * 20 / 100
	top50 := total * 50 / 100

	scores := make(map[string]int, total)
	for i, category := range ordered {
		switch {
		case i < top20:
			scores[category] = categoryBandHigh
		case i < top50:
			scores[category] = categoryBandMedium
		default:
			scores[category] = categoryBandLow
		}
	}

	return scores
}
