package aggregate

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/agentstation/toolindex/internal/storage"
	"github.com/agentstation/toolindex/pkg/catalog"
	"github.com/agentstation/toolindex/pkg/errors"
	"github.com/agentstation/toolindex/pkg/logging"
)

// defaultConcurrency bounds the per-tool fetch fan-out.
const defaultConcurrency = 8

// Source names used in classification aggregator hints.
const (
	SourceGitHub      = "github"
	SourceHuggingFace = "huggingface"
	SourcePyPI        = "pypi"
	SourceNPM         = "npm"
)

// Client fans external-metric fetches out across the catalog, one bounded
// goroutine per tool, and joins the results into per-tool ExternalData.
type Client struct {
	github      *GitHub
	huggingface *HuggingFace
	packages    *Packages
	concurrency int
}

// Options configures a metrics client.
type Options struct {
	Cache            storage.Cache
	GitHubToken      string
	HuggingFaceToken string
	Concurrency      int
}

// NewClient creates a metrics client over the shared response cache.
func NewClient(opts Options) *Client {
	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	return &Client{
		github:      NewGitHub(opts.Cache, opts.GitHubToken),
		huggingface: NewHuggingFace(opts.Cache, opts.HuggingFaceToken),
		packages:    NewPackages(opts.Cache),
		concurrency: concurrency,
	}
}

// FetchAll collects external metrics for every tool, consulting hints to
// decide which sources are worth querying per tool (keyed by tool ID; a
// missing entry queries every source). Per-tool failures degrade to absent
// metrics with a warning; the returned map always covers every tool.
func (c *Client) FetchAll(ctx context.Context, tools []*catalog.Tool, hints map[string][]string) map[string]*catalog.ExternalData {
	results := make(map[string]*catalog.ExternalData, len(tools))
	var mu sync.Mutex

	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(c.concurrency)

	for _, tool := range tools {
		group.Go(func() error {
			external := c.fetchOne(ctx, tool, hints[tool.ID])
			mu.Lock()
			results[tool.ID] = external
			mu.Unlock()
			return nil
		})
	}

	// Workers never return errors; Wait is the fan-in barrier.
	_ = group.Wait()
	return results
}

// fetchOne queries the hinted sources for a single tool. Prior stats are
// carried forward when a source fails so transient outages do not erase
// known metrics.
func (c *Client) fetchOne(ctx context.Context, tool *catalog.Tool, sources []string) *catalog.ExternalData {
	log := logging.Ctx(ctx)
	external := &catalog.ExternalData{}
	if tool.External != nil {
		*external = *tool.External
	}

	want := func(source string) bool {
		if len(sources) == 0 {
			return true
		}
		for _, s := range sources {
			if s == source {
				return true
			}
		}
		return false
	}

	if want(SourceGitHub) {
		if stats, err := c.github.Fetch(ctx, tool.URL); err != nil {
			logFetchFailure(log, "github", tool.ID, err)
		} else if stats != nil {
			external.Repo = stats
		}
	}

	if want(SourceHuggingFace) {
		if stats, err := c.huggingface.Fetch(ctx, tool.URL); err != nil {
			logFetchFailure(log, "huggingface", tool.ID, err)
		} else if stats != nil {
			external.Model = stats
		}
	}

	if want(SourcePyPI) || want(SourceNPM) {
		if stats, err := c.packages.Fetch(ctx, tool.URL, tool.Description); err != nil {
			logFetchFailure(log, "packages", tool.ID, err)
		} else if stats != nil {
			external.Package = stats
		}
	}

	return external
}

func logFetchFailure(log *zerolog.Logger, source, toolID string, err error) {
	event := log.Warn()
	if errors.Is(err, errors.ErrNotFound) {
		event = log.Debug()
	}
	event.Err(err).Str("source", source).Str("tool", toolID).Msg("metric fetch failed")
}
