package scoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNeedsRefresh(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	weekly := TierConfig{Name: TierOne, RefreshDays: 7}
	never := TierConfig{Name: TierNoIndex, RefreshDays: 0}
	stamp := func(d time.Duration) string {
		return now.Add(-d).Format(time.RFC3339)
	}

	tests := []struct {
		name       string
		enhancedAt string
		tier       TierConfig
		force      bool
		want       bool
		reason     string
	}{
		{"force overrides fresh content", stamp(time.Hour), weekly, true, true, "forced"},
		{"force overrides never-refresh tier", stamp(time.Hour), never, true, true, "forced"},
		{"zero interval never refreshes", "", never, false, false, "tier never refreshes"},
		{"never enhanced", "", weekly, false, true, "never enhanced"},
		{"unparsable timestamp fails open", "yesterday-ish", weekly, false, true, "unparsable timestamp"},
		{"fresh content", stamp(6 * 24 * time.Hour), weekly, false, false, "fresh"},
		{"interval exactly elapsed", stamp(7 * 24 * time.Hour), weekly, false, true, "interval elapsed"},
		{"interval long elapsed", stamp(30 * 24 * time.Hour), weekly, false, true, "interval elapsed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision := refreshDecision(tt.enhancedAt, tt.tier, now, tt.force)
			assert.Equal(t, tt.want, decision.Stale)
			assert.Equal(t, tt.reason, decision.Reason)
			assert.Equal(t, tt.want, NeedsRefresh(tt.enhancedAt, tt.tier, now, tt.force))
		})
	}
}
