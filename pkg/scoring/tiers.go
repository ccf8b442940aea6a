package scoring

import (
	"context"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/goccy/go-yaml"

	"github.com/agentstation/toolindex/pkg/catalog"
	"github.com/agentstation/toolindex/pkg/errors"
	"github.com/agentstation/toolindex/pkg/logging"
)

// Well-known tier names.
const (
	TierOne     = "tier1"
	TierTwo     = "tier2"
	TierThree   = "tier3"
	TierNoIndex = "noindex"
)

// minDescriptionCharsForIndex is the description length below which a tool
// without prior enrichment is considered too thin to publish.
const minDescriptionCharsForIndex = 60

// TierConfig describes one quality tier: its capacity, refresh cadence, and
// the enrichment budget hints the content pipeline consumes.
type TierConfig struct {
	Name string `json:"name" yaml:"name"`

	// MinScore is the nominal score floor documented for the tier. Rank-based
	// filling does not consult it; it is retained for reporting only.
	MinScore int `json:"min_score" yaml:"min_score"`

	// MaxCount bounds the tier; zero means unbounded.
	MaxCount int `json:"max_count,omitempty" yaml:"max_count,omitempty"`

	// WebSearches and LLMCalls are enrichment budget hints per tool.
	WebSearches int `json:"web_searches" yaml:"web_searches"`
	LLMCalls    int `json:"llm_calls" yaml:"llm_calls"`

	// RefreshDays is the regeneration cadence; zero means never refresh.
	RefreshDays int `json:"refresh_days" yaml:"refresh_days"`

	// NoIndex marks the tier excluded from publishing.
	NoIndex bool `json:"noindex,omitempty" yaml:"noindex,omitempty"`
}

// RefreshInterval returns the tier's refresh cadence as a duration.
// Zero means the tier never refreshes.
func (tc TierConfig) RefreshInterval() time.Duration {
	return time.Duration(tc.RefreshDays) * 24 * time.Hour
}

// TierSet is the ordered tier table: bounded ranked tiers filled top-down,
// one unbounded overflow tier (the last ranked entry), and a separate
// exclusion tier for tools that fail the indexability gate.
type TierSet struct {
	Ranked  []TierConfig `json:"ranked" yaml:"ranked"`
	Exclude TierConfig   `json:"exclude" yaml:"exclude"`
}

// DefaultTiers returns the standard tier table: top 50 tools get deep
// research and weekly refresh, the next 150 standard treatment, the rest
// a single-pass monthly refresh, and unindexable tools no budget at all.
func DefaultTiers() TierSet {
	return TierSet{
		Ranked: []TierConfig{
			{Name: TierOne, MinScore: 80, MaxCount: 50, WebSearches: 5, LLMCalls: 3, RefreshDays: 7},
			{Name: TierTwo, MinScore: 50, MaxCount: 150, WebSearches: 2, LLMCalls: 2, RefreshDays: 14},
			{Name: TierThree, MinScore: 20, WebSearches: 0, LLMCalls: 1, RefreshDays: 30},
		},
		Exclude: TierConfig{Name: TierNoIndex, RefreshDays: 0, NoIndex: true},
	}
}

// LoadTiers reads a tier table from a YAML file, falling back to the
// defaults when the path is empty.
func LoadTiers(path string) (TierSet, error) {
	if path == "" {
		return DefaultTiers(), nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return TierSet{}, errors.WrapIO("load", path, err)
	}

	var tiers TierSet
	if err := yaml.Unmarshal(raw, &tiers); err != nil {
		return TierSet{}, errors.WrapParse("yaml", path, err)
	}
	if len(tiers.Ranked) == 0 {
		return TierSet{}, &errors.ValidationError{Field: "ranked", Message: "tier table needs at least one ranked tier"}
	}
	return tiers, nil
}

// Config returns the tier configuration by name; unknown names resolve to
// the exclusion tier.
func (ts TierSet) Config(name string) TierConfig {
	for _, tier := range ts.Ranked {
		if tier.Name == name {
			return tier
		}
	}
	return ts.Exclude
}

// Indexable is the minimum-content gate: a tool page is worth publishing
// only if it has a URL and either a long-enough description or prior
// enrichment content. Kept intentionally conservative.
func Indexable(tool *catalog.Tool) bool {
	if tool.URL == "" {
		return false
	}
	if len(strings.TrimSpace(tool.Description)) >= minDescriptionCharsForIndex {
		return true
	}
	return tool.HasEnhancedContent()
}

// ScoredTool pairs a tool with its freshly computed score for partitioning.
type ScoredTool struct {
	Tool  *catalog.Tool
	Score int
}

// Partition assigns every scored tool to exactly one tier and returns the
// mapping from tier name to tool list.
//
// Tools failing the indexability gate route straight to the exclusion tier
// regardless of score. The rest are sorted by score descending (stable, so
// equal scores keep their input order) and filled greedily into the ranked
// tiers by capacity. Filling is rank-based, not threshold-based: the top
// tier is always populated up to capacity when enough indexable tools
// exist, even if their absolute scores are low. Tier name and score are
// denormalized onto each tool for downstream consumers.
func (ts TierSet) Partition(ctx context.Context, scored []ScoredTool) map[string][]*catalog.Tool {
	tiered := make(map[string][]*catalog.Tool, len(ts.Ranked)+1)
	for _, tier := range ts.Ranked {
		tiered[tier.Name] = []*catalog.Tool{}
	}
	tiered[ts.Exclude.Name] = []*catalog.Tool{}

	ranked := make([]ScoredTool, len(scored))
	copy(ranked, scored)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	overflow := ts.Ranked[len(ts.Ranked)-1].Name

	for _, st := range ranked {
		name := overflow
		if !Indexable(st.Tool) {
			name = ts.Exclude.Name
		} else {
			for _, tier := range ts.Ranked {
				if tier.MaxCount == 0 || len(tiered[tier.Name]) < tier.MaxCount {
					name = tier.Name
					break
				}
			}
		}

		tiered[name] = append(tiered[name], st.Tool)
		st.Tool.Tier = name
		st.Tool.Score = st.Score
	}

	event := logging.Ctx(ctx).Info()
	for _, tier := range ts.Ranked {
		event = event.Int(tier.Name, len(tiered[tier.Name]))
	}
	event.Int(ts.Exclude.Name, len(tiered[ts.Exclude.Name])).
		Int("total", len(scored)).
		Msg("Partitioned tools into tiers")

	return tiered
}
