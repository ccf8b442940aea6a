package aggregate

import (
	"context"
	"sort"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/agentstation/toolindex/pkg/catalog"
	"github.com/agentstation/toolindex/pkg/logging"
)

const (
	// minViewsThreshold filters bot noise: pages under it are not counted.
	minViewsThreshold = 10

	// minTotalViewsSanity guards against a broken analytics pipeline: when
	// the whole site sums below it, traffic data is discarded for the run.
	minTotalViewsSanity = 100
)

// pageviewQuery aggregates 30-day pageviews per tool slug from the
// analytics event table. The slug is the fourth path segment of
// /aitools/tools/<slug>; query strings are stripped before splitting.
const pageviewQuery = `
SELECT LOWER(split_part(split_part(url_path, '?', 1), '/', 4)) AS slug,
       COUNT(*) AS views
FROM website_event
WHERE website_id = $1
  AND url_path LIKE '/aitools/tools/%'
  AND url_path NOT LIKE '/aitools/tools/%/%'
  AND created_at > NOW() - ($2 || ' days')::interval
GROUP BY 1
HAVING COUNT(*) >= $3
ORDER BY views DESC`

// Traffic reads pageview metrics straight from the analytics Postgres and
// converts them to percentile-ranked traffic scores.
type Traffic struct {
	db        *sqlx.DB
	websiteID string
}

// NewTraffic creates a traffic aggregator over an open analytics database
// handle. db may be nil, in which case Fetch returns no data.
func NewTraffic(db *sqlx.DB, websiteID string) *Traffic {
	return &Traffic{db: db, websiteID: websiteID}
}

type pageviewRow struct {
	Slug  string `db:"slug"`
	Views int    `db:"views"`
}

// Fetch returns per-slug traffic stats with precomputed percentile scores,
// looking back the given number of days. Analytics failures and
// suspiciously low totals both yield an empty map so scoring falls back
// to its static inputs.
func (t *Traffic) Fetch(ctx context.Context, days int) map[string]*catalog.TrafficStats {
	log := logging.Ctx(ctx)
	if t.db == nil {
		return map[string]*catalog.TrafficStats{}
	}

	var rows []pageviewRow
	if err := t.db.SelectContext(ctx, &rows, pageviewQuery, t.websiteID, days, minViewsThreshold); err != nil {
		log.Warn().Err(err).Msg("traffic query failed, skipping traffic scores")
		return map[string]*catalog.TrafficStats{}
	}

	pageviews := make(map[string]int, len(rows))
	total := 0
	for _, row := range rows {
		if row.Slug == "" {
			continue
		}
		pageviews[row.Slug] = row.Views
		total += row.Views
	}

	if total < minTotalViewsSanity && len(pageviews) > 0 {
		log.Warn().Int("total_views", total).Int("sanity_floor", minTotalViewsSanity).
			Msg("total views below sanity floor, skipping traffic scores")
		return map[string]*catalog.TrafficStats{}
	}

	scores := TrafficScores(pageviews)
	fetchedAt := time.Now().UTC()

	stats := make(map[string]*catalog.TrafficStats, len(pageviews))
	for slug, views := range pageviews {
		stats[slug] = &catalog.TrafficStats{
			Pageviews30d: views,
			TrafficScore: scores[slug],
			FetchedAt:    fetchedAt,
		}
	}

	log.Info().Int("pages", len(stats)).Int("total_views", total).Msg("fetched traffic stats")
	return stats
}

// TrafficScores assigns each slug a score from its percentile rank by
// pageviews rather than absolute thresholds, so the bands auto-adjust as
// overall traffic grows: top 5% score 25, top 15% 20, top 30% 15, top 50%
// 10, top 75% 5, and the bottom quartile 0.
func TrafficScores(pageviews map[string]int) map[string]int {
	if len(pageviews) == 0 {
		return map[string]int{}
	}

	ordered := make([]string, 0, len(pageviews))
	for slug := range pageviews {
		ordered = append(ordered, slug)
	}
	sort.Slice(ordered, func(i, j int) bool {
		if pageviews[ordered[i]] != pageviews[ordered[j]] {
			return pageviews[ordered[i]] > pageviews[ordered[j]]
		}
		return ordered[i] < ordered[j]
	})

	total := len(ordered)
	scores := make(map[string]int, total)
	for rank, slug := range ordered {
		percentile := float64(rank) / float64(total) * 100
		switch {
		case percentile <= 5:
			scores[slug] = 25
		case percentile <= 15:
			scores[slug] = 20
		case percentile <= 30:
			scores[slug] = 15
		case percentile <= 50:
			scores[slug] = 10
		case percentile <= 75:
			scores[slug] = 5
		default:
			scores[slug] = 0
		}
	}
	return scores
}
