package scoring

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/agentstation/toolindex/pkg/catalog"
)

func TestScore_EmptyToolIsBaseline(t *testing.T) {
	// No metrics, no content, no URL: only the base category points apply.
	score := Score(&catalog.Tool{}, nil, nil)
	assert.Equal(t, 5, score)
}

func TestScore_StarBands(t *testing.T) {
	tests := []struct {
		stars int
		want  int
	}{
		{60000, 35},
		{50000, 35},
		{20000, 30},
		{10000, 25},
		{5000, 20},
		{1000, 15},
		{500, 10},
		{100, 5},
		{99, 0},
		{0, 0},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("stars_%d", tt.stars), func(t *testing.T) {
			got := repoPoints(&catalog.RepoStats{Stars: tt.stars})
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRecentPushBonus(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	stamp := func(daysAgo int) string {
		return now.AddDate(0, 0, -daysAgo).Format(time.RFC3339)
	}

	assert.Equal(t, 5, recentPushBonus(stamp(10), now))
	assert.Equal(t, 5, recentPushBonus(stamp(30), now))
	assert.Equal(t, 3, recentPushBonus(stamp(60), now))
	assert.Equal(t, 3, recentPushBonus(stamp(90), now))
	assert.Equal(t, 0, recentPushBonus(stamp(91), now))
	assert.Equal(t, 0, recentPushBonus("", now))
	assert.Equal(t, 0, recentPushBonus("last tuesday", now))
}

func TestScore_DownloadBands(t *testing.T) {
	tests := []struct {
		downloads int
		want      int
	}{
		{20_000_000, 35},
		{10_000_000, 35},
		{1_000_000, 30},
		{500_000, 25},
		{100_000, 20},
		{50_000, 15},
		{10_000, 10},
		{1_000, 5},
		{999, 0},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("downloads_%d", tt.downloads), func(t *testing.T) {
			got := modelPoints(&catalog.ModelStats{Downloads: tt.downloads})
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestScore_LikesBonus(t *testing.T) {
	assert.Equal(t, 5, modelPoints(&catalog.ModelStats{Likes: 1000}))
	assert.Equal(t, 3, modelPoints(&catalog.ModelStats{Likes: 100}))
	assert.Equal(t, 0, modelPoints(&catalog.ModelStats{Likes: 99}))
}

func TestCategoryPoints(t *testing.T) {
	dynamic := map[string]int{"language models": 15, "niche": 5}

	// Dynamic map takes precedence, case and whitespace insensitive.
	assert.Equal(t, 15, categoryPoints("  Language Models ", dynamic))
	assert.Equal(t, 5, categoryPoints("Niche", dynamic))

	// Static fallback when the category is absent from the map.
	assert.Equal(t, 15, categoryPoints("Code Assistants", dynamic))
	assert.Equal(t, 10, categoryPoints("Data Analysis", nil))
	assert.Equal(t, 5, categoryPoints("Gardening", nil))
	assert.Equal(t, 5, categoryPoints("", nil))
}

func TestContentPoints(t *testing.T) {
	long := make([]byte, 200)
	for i := range long {
		long[i] = 'x'
	}

	tool := &catalog.Tool{
		Description: string(long),
		URL:         "https://example.com",
		Tags:        []string{"a", "b", "c"},
	}
	assert.Equal(t, 10, contentPoints(tool))

	assert.Equal(t, 3, contentPoints(&catalog.Tool{Description: string(long[:100])}))
	assert.Equal(t, 1, contentPoints(&catalog.Tool{Description: string(long[:50])}))
	assert.Equal(t, 0, contentPoints(&catalog.Tool{Description: string(long[:49])}))
	assert.Equal(t, 2, contentPoints(&catalog.Tool{URL: "https://example.com"}))
	assert.Equal(t, 0, contentPoints(&catalog.Tool{Tags: []string{"a", "b"}}))
}

func TestEnrichmentPoints(t *testing.T) {
	assert.Equal(t, 0, enrichmentPoints(&catalog.Tool{}))

	enhanced := &catalog.Tool{Enhanced: &catalog.EnhancedContent{
		Sections: map[string]string{"overview": "text"},
	}}
	assert.Equal(t, 2, enrichmentPoints(enhanced))

	enhanced.Comparisons = map[string]*catalog.Comparison{
		"other": {Body: "versus"},
	}
	assert.Equal(t, 5, enrichmentPoints(enhanced))
}

func TestScore_CappedAtHundred(t *testing.T) {
	external := &catalog.ExternalData{
		Repo: &catalog.RepoStats{
			Stars:    100000,
			PushedAt: time.Now().UTC().Format(time.RFC3339),
		},
		Model:   &catalog.ModelStats{Downloads: 50_000_000, Likes: 5000},
		Traffic: &catalog.TrafficStats{TrafficScore: 25},
	}
	tool := &catalog.Tool{
		Category:    "Language Models",
		Description: string(make([]byte, 250)),
		URL:         "https://example.com",
		Tags:        []string{"a", "b", "c"},
	}

	assert.Equal(t, 100, Score(tool, external, nil))
}

func TestScore_FallsBackToEmbeddedExternal(t *testing.T) {
	tool := &catalog.Tool{
		External: &catalog.ExternalData{
			Repo: &catalog.RepoStats{Stars: 20000},
		},
	}

	// No explicit external data: the tool's own snapshot is used.
	assert.Equal(t, 35, Score(tool, nil, nil)) // 30 stars + 5 base category
}

func TestTrafficPoints(t *testing.T) {
	assert.Equal(t, 0, trafficPoints(nil))
	assert.Equal(t, 0, trafficPoints(&catalog.TrafficStats{TrafficScore: -1}))
	assert.Equal(t, 25, trafficPoints(&catalog.TrafficStats{TrafficScore: 25}))
}
