package scoring

import "time"

// RefreshDecision explains a staleness check, for logging and tests.
type RefreshDecision struct {
	Stale  bool
	Reason string
}

// NeedsRefresh reports whether a tool's generated content is due for
// regeneration under the given tier configuration.
//
// A zero refresh interval means the tier never refreshes, independent of
// the timestamp. Otherwise a tool with no prior enhancement is stale, a
// malformed timestamp is stale (fail open toward regeneration), and a
// parsed timestamp is stale once the interval has fully elapsed. The force
// flag overrides everything.
func NeedsRefresh(enhancedAt string, tier TierConfig, now time.Time, force bool) bool {
	return refreshDecision(enhancedAt, tier, now, force).Stale
}

func refreshDecision(enhancedAt string, tier TierConfig, now time.Time, force bool) RefreshDecision {
	if force {
		return RefreshDecision{Stale: true, Reason: "forced"}
	}
	if tier.RefreshInterval() == 0 {
		return RefreshDecision{Stale: false, Reason: "tier never refreshes"}
	}
	if enhancedAt == "" {
		return RefreshDecision{Stale: true, Reason: "never enhanced"}
	}

	ts, err := time.Parse(time.RFC3339, enhancedAt)
	if err != nil {
		// Fail open: a timestamp we cannot read schedules regeneration
		// rather than silently skipping it.
		return RefreshDecision{Stale: true, Reason: "unparsable timestamp"}
	}

	if now.Sub(ts) >= tier.RefreshInterval() {
		return RefreshDecision{Stale: true, Reason: "interval elapsed"}
	}
	return RefreshDecision{Stale: false, Reason: "fresh"}
}
