// Package maintenance orchestrates a full catalog maintenance run:
// metric aggregation, classification, scoring, tier partitioning,
// LLM enrichment of stale tools, slug assignment, and persistence.
// External coordination guarantees at most one concurrent run.
package maintenance

import (
	"context"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/agentstation/toolindex/internal/history"
	"github.com/agentstation/toolindex/internal/scrape"
	"github.com/agentstation/toolindex/internal/storage"
	"github.com/agentstation/toolindex/pkg/catalog"
	"github.com/agentstation/toolindex/pkg/classify"
	"github.com/agentstation/toolindex/pkg/logging"
	"github.com/agentstation/toolindex/pkg/scoring"
	"github.com/agentstation/toolindex/pkg/slugs"
)

// PipelineName identifies maintenance runs in run history.
const PipelineName = "maintain"

const (
	defaultTrafficDays       = 30
	defaultScrapeConcurrency = 4
)

// MetricsFetcher aggregates external metrics for a batch of tools.
type MetricsFetcher interface {
	FetchAll(ctx context.Context, tools []*catalog.Tool, hints map[string][]string) map[string]*catalog.ExternalData
}

// TrafficSource reports recent pageviews keyed by tool slug.
type TrafficSource interface {
	Fetch(ctx context.Context, days int) map[string]*catalog.TrafficStats
}

// Enhancer generates enriched content sections for a tool.
type Enhancer interface {
	Enhance(ctx context.Context, tool *catalog.Tool, result classify.Result, tier scoring.TierConfig) (*catalog.EnhancedContent, error)
}

// PageScraper pulls homepage metadata for tools missing a description.
type PageScraper interface {
	Fetch(ctx context.Context, url string) (*scrape.PageMeta, error)
}

// Options control a single maintenance run.
type Options struct {
	Tiers scoring.TierSet

	// Tier restricts enrichment to one tier when non-empty.
	Tier string
	// MaxPerRun caps how many tools get enriched per run. Zero or
	// negative means no cap.
	MaxPerRun int
	// DryRun computes everything but persists nothing.
	DryRun bool
	// Force treats every enrichable tool as stale.
	Force bool
	// TrafficDays is the pageview lookback window.
	TrafficDays int
}

// Summary reports what a run did.
type Summary struct {
	RunID      string
	Started    time.Time
	Duration   time.Duration
	Tools      int
	Scraped    int
	Fetched    int
	Enhanced   int
	TierCensus map[string]int
	DryRun     bool
}

// Deps are the pipeline's collaborators. Store is required; every other
// field may be nil, turning the corresponding step into a no-op.
type Deps struct {
	Store    storage.Store
	Metrics  MetricsFetcher
	Traffic  TrafficSource
	Enhancer Enhancer
	Scraper  PageScraper
	Runs     *history.Store
}

// Runner executes maintenance runs against a storage backend.
type Runner struct {
	deps Deps
	opts Options
}

// NewRunner wires a runner.
func NewRunner(deps Deps, opts Options) *Runner {
	if opts.Tiers.Ranked == nil {
		opts.Tiers = scoring.DefaultTiers()
	}
	if opts.TrafficDays <= 0 {
		opts.TrafficDays = defaultTrafficDays
	}
	return &Runner{deps: deps, opts: opts}
}

// Run executes the full pipeline and returns a summary. Document and
// registry load failures are fatal; per-tool metric and enrichment
// failures degrade gracefully.
func (r *Runner) Run(ctx context.Context) (*Summary, error) {
	runID := uuid.NewString()
	started := time.Now()
	ctx = logging.WithRunID(ctx, runID)
	log := logging.Ctx(ctx)

	summary := &Summary{RunID: runID, Started: started, DryRun: r.opts.DryRun}

	doc, err := catalog.Load(ctx, r.deps.Store)
	if err != nil {
		r.recordRun(ctx, summary, history.StatusError, err)
		return nil, err
	}
	registry, err := slugs.Load(ctx, r.deps.Store)
	if err != nil {
		r.recordRun(ctx, summary, history.StatusError, err)
		return nil, err
	}
	summary.Tools = len(doc.Tools)
	log.Info().Int("tools", len(doc.Tools)).Msg("maintenance run starting")

	summary.Scraped = r.backfillDescriptions(ctx, doc.Tools)

	// Classification is cheap and pure; do it up front so the metric
	// fan-out only queries the sources that matter for each tool type.
	results := classifyAll(ctx, doc.Tools)

	if r.deps.Metrics != nil {
		hints := make(map[string][]string, len(doc.Tools))
		for _, tool := range doc.Tools {
			hints[tool.ID] = results[tool.ID].Aggregators
		}
		external := r.deps.Metrics.FetchAll(ctx, doc.Tools, hints)
		for _, tool := range doc.Tools {
			if ext := external[tool.ID]; ext != nil {
				tool.External = ext
				summary.Fetched++
			}
		}
	}

	var trafficBySlug map[string]*catalog.TrafficStats
	if r.deps.Traffic != nil {
		trafficBySlug = r.deps.Traffic.Fetch(ctx, r.opts.TrafficDays)
		applyTraffic(doc.Tools, trafficBySlug)
	}
	categoryScores := scoring.CategoryScoresFromTraffic(doc.Tools, trafficBySlug)

	scored := scoreAll(ctx, doc.Tools, categoryScores)

	tiered := r.opts.Tiers.Partition(ctx, scored)
	summary.TierCensus = make(map[string]int, len(tiered))
	for name, tools := range tiered {
		summary.TierCensus[name] = len(tools)
	}

	summary.Enhanced = r.enhanceStale(ctx, tiered, results)

	assignSlugs(registry, doc.Tools)

	if r.opts.DryRun {
		log.Info().Msg("dry run, skipping persistence")
	} else {
		if err := catalog.Save(ctx, r.deps.Store, doc); err != nil {
			r.recordRun(ctx, summary, history.StatusError, err)
			return nil, err
		}
		if err := slugs.Save(ctx, r.deps.Store, registry); err != nil {
			r.recordRun(ctx, summary, history.StatusError, err)
			return nil, err
		}
	}

	summary.Duration = time.Since(started)
	r.recordRun(ctx, summary, history.StatusSuccess, nil)
	log.Info().
		Dur("duration", summary.Duration).
		Int("enhanced", summary.Enhanced).
		Msg("maintenance run finished")
	return summary, nil
}

// backfillDescriptions scrapes homepage metadata for tools that arrived
// without a description, so classification and the indexability gate see
// real text. Existing text is never replaced.
func (r *Runner) backfillDescriptions(ctx context.Context, tools []*catalog.Tool) int {
	if r.deps.Scraper == nil {
		return 0
	}
	log := logging.Ctx(ctx)

	var mu sync.Mutex
	scraped := 0

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(defaultScrapeConcurrency)
	for _, tool := range tools {
		if tool.URL == "" || strings.TrimSpace(tool.Description) != "" {
			continue
		}
		g.Go(func() error {
			meta, err := r.deps.Scraper.Fetch(gctx, tool.URL)
			if err != nil {
				log.Debug().Err(err).Str("tool", tool.ID).Msg("homepage scrape failed")
				return nil
			}
			if meta.Description == "" {
				return nil
			}
			mu.Lock()
			tool.Description = meta.Description
			scraped++
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return scraped
}

func classifyAll(ctx context.Context, tools []*catalog.Tool) map[string]classify.Result {
	results := make([]classify.Result, len(tools))

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, tool := range tools {
		g.Go(func() error {
			results[i] = classify.Classify(tool)
			return nil
		})
	}
	_ = g.Wait()

	byID := make(map[string]classify.Result, len(tools))
	for i, tool := range tools {
		byID[tool.ID] = results[i]
	}
	return byID
}

func scoreAll(ctx context.Context, tools []*catalog.Tool, categoryScores map[string]int) []scoring.ScoredTool {
	scored := make([]scoring.ScoredTool, len(tools))

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, tool := range tools {
		g.Go(func() error {
			scored[i] = scoring.ScoredTool{
				Tool:  tool,
				Score: scoring.Score(tool, tool.External, categoryScores),
			}
			return nil
		})
	}
	_ = g.Wait()
	return scored
}

func applyTraffic(tools []*catalog.Tool, trafficBySlug map[string]*catalog.TrafficStats) {
	for _, tool := range tools {
		stats, ok := trafficBySlug[tool.Slug]
		if !ok {
			continue
		}
		if tool.External == nil {
			tool.External = &catalog.ExternalData{}
		}
		tool.External.Traffic = stats
	}
}

// enhanceStale walks the ranked tiers in priority order and refreshes
// stale tools until the per-run budget is spent. Enrichment failures
// are logged and skipped so one bad tool never stalls the run.
func (r *Runner) enhanceStale(ctx context.Context, tiered map[string][]*catalog.Tool, results map[string]classify.Result) int {
	if r.deps.Enhancer == nil {
		return 0
	}
	log := logging.Ctx(ctx)
	now := time.Now()

	enhanced := 0
	for _, tier := range r.opts.Tiers.Ranked {
		if r.opts.Tier != "" && r.opts.Tier != tier.Name {
			continue
		}
		for _, tool := range tiered[tier.Name] {
			if r.opts.MaxPerRun > 0 && enhanced >= r.opts.MaxPerRun {
				return enhanced
			}
			if !scoring.NeedsRefresh(tool.EnhancedAt, tier, now, r.opts.Force) {
				continue
			}
			if r.opts.DryRun {
				log.Info().Str("tool", tool.ID).Str("tier", tier.Name).Msg("would enhance")
				enhanced++
				continue
			}
			content, err := r.deps.Enhancer.Enhance(ctx, tool, results[tool.ID], tier)
			if err != nil {
				log.Warn().Err(err).Str("tool", tool.ID).Msg("enrichment failed")
				continue
			}
			tool.Enhanced = content
			tool.EnhancedAt = now.UTC().Format(time.RFC3339)
			enhanced++
		}
	}
	return enhanced
}

// assignSlugs gives every tool a canonical slug and registers existing
// comparison pages, keeping uniqueness across currents and history.
func assignSlugs(registry *slugs.Registry, tools []*catalog.Tool) {
	used := registry.UsedSlugs()

	for _, tool := range tools {
		registry.ReserveCurrent(tool.ID, used)

		base := tool.Slug
		if base == "" {
			base = slugs.ForTool(tool.Name, "", "")
		}
		if base == "" {
			// Name folded away entirely. Fall back to an
			// ID-derived disambiguator so the tool stays routable.
			base = slugs.ForTool(tool.Name, "", shortID(tool.ID))
		}
		if base == "" {
			continue
		}
		unique := slugs.EnsureUnique(base, used)
		registry.RegisterTool(tool.ID, unique)
		tool.Slug = unique
	}

	byID := make(map[string]*catalog.Tool, len(tools))
	for _, tool := range tools {
		byID[tool.ID] = tool
	}

	// A pair listed on both participants shares one registry entry:
	// each key is assigned once and the slug mirrored to both sides.
	assigned := make(map[string]string)
	for _, tool := range tools {
		for partnerID, cmp := range tool.Comparisons {
			key := slugs.PairKey(tool.ID, partnerID)
			if slug, done := assigned[key]; done {
				cmp.Slug = slug
				continue
			}
			partner := byID[partnerID]
			slug := cmp.Slug
			if slug == "" {
				if entry, ok := registry.Comparisons[key]; ok {
					slug = entry.Current
				}
			}
			if slug == "" {
				if partner == nil {
					continue
				}
				// Derive in key order so either side produces
				// the same slug.
				first, second := tool.Slug, partner.Slug
				if partner.ID < tool.ID {
					first, second = second, first
				}
				slug = slugs.ForPair(first, second)
			}
			registry.ReserveComparisonCurrent(key, used)
			slug = slugs.EnsureUnique(slug, used)

			participants := map[string]string{tool.ID: tool.Name}
			if partner != nil {
				participants[partnerID] = partner.Name
			} else if cmp.PartnerName != "" {
				participants[partnerID] = cmp.PartnerName
			}
			registry.RegisterComparison(key, slug, participants)
			cmp.Slug = slug
			assigned[key] = slug
		}
	}
}

func shortID(id string) string {
	if len(id) > 6 {
		return id[:6]
	}
	return id
}

func (r *Runner) recordRun(ctx context.Context, summary *Summary, status string, runErr error) {
	run := history.Run{
		ID:              summary.RunID,
		Pipeline:        PipelineName,
		Status:          status,
		StartedAt:       summary.Started,
		FinishedAt:      time.Now(),
		DurationSeconds: time.Since(summary.Started).Seconds(),
		Metrics: map[string]int{
			"tools":    summary.Tools,
			"scraped":  summary.Scraped,
			"fetched":  summary.Fetched,
			"enhanced": summary.Enhanced,
		},
	}
	for name, count := range summary.TierCensus {
		run.Metrics["tier_"+name] = count
	}
	if runErr != nil {
		run.ErrorNote = runErr.Error()
	}
	r.deps.Runs.Record(ctx, run)
}
