package scoring

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/toolindex/pkg/catalog"
)

func TestCategoryScoresFromTraffic_EmptyTraffic(t *testing.T) {
	tools := []*catalog.Tool{{Category: "Chatbots", Slug: "bot"}}

	assert.Empty(t, CategoryScoresFromTraffic(tools, nil))
	assert.Empty(t, CategoryScoresFromTraffic(tools, map[string]*catalog.TrafficStats{}))
}

func TestCategoryScoresFromTraffic_PercentileBands(t *testing.T) {
	// Ten categories with strictly decreasing traffic: top 2 (20%) high,
	// next 3 (to 50%) medium, remaining 5 low.
	tools := make([]*catalog.Tool, 0, 10)
	traffic := make(map[string]*catalog.TrafficStats, 10)
	for i := 0; i < 10; i++ {
		slug := fmt.Sprintf("tool-%d", i)
		tools = append(tools, &catalog.Tool{
			Category: fmt.Sprintf("Category %d", i),
			Slug:     slug,
		})
		traffic[slug] = &catalog.TrafficStats{Pageviews30d: 1000 - i*100}
	}

	scores := CategoryScoresFromTraffic(tools, traffic)
	require.Len(t, scores, 10)

	assert.Equal(t, categoryBandHigh, scores["category 0"])
	assert.Equal(t, categoryBandHigh, scores["category 1"])
	assert.Equal(t, categoryBandMedium, scores["category 2"])
	assert.Equal(t, categoryBandMedium, scores["category 4"])
	assert.Equal(t, categoryBandLow, scores["category 5"])
	assert.Equal(t, categoryBandLow, scores["category 9"])
}

func TestCategoryScoresFromTraffic_AggregatesPerCategory(t *testing.T) {
	tools := []*catalog.Tool{
		{Category: "Chatbots", Slug: "bot-a"},
		{Category: "chatbots", Slug: "bot-b"},
		{Category: "Writing", Slug: "writer"},
	}
	traffic := map[string]*catalog.TrafficStats{
		"bot-a":  {Pageviews30d: 100},
		"bot-b":  {Pageviews30d: 100},
		"writer": {Pageviews30d: 150},
	}

	scores := CategoryScoresFromTraffic(tools, traffic)
	require.Len(t, scores, 2)

	// Chatbots aggregates to 200 and outranks writing's 150. With two
	// categories only the low band can split them (20% and 50% of 2 round
	// down to 0 and 1).
	assert.Equal(t, categoryBandMedium, scores["chatbots"])
	assert.Equal(t, categoryBandLow, scores["writing"])
}

func TestCategoryScoresFromTraffic_IgnoresUntrackedTools(t *testing.T) {
	tools := []*catalog.Tool{
		{Category: "Chatbots", Slug: "tracked"},
		{Category: "", Slug: "uncategorized"},
		{Category: "Ghost Town", Slug: "no-traffic"},
	}
	traffic := map[string]*catalog.TrafficStats{
		"tracked":       {Pageviews30d: 10},
		"uncategorized": {Pageviews30d: 500},
	}

	scores := CategoryScoresFromTraffic(tools, traffic)

	assert.Contains(t, scores, "chatbots")
	assert.NotContains(t, scores, "ghost town")
	assert.NotContains(t, scores, "")
}
