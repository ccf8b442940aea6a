// Package aggregate fetches the external metrics that feed importance
// scoring: repository stats, hosted-model stats, package-registry download
// counts, and site traffic. Every fetch is best-effort; a failed source
// degrades to nil stats and a warning, never a failed run.
package aggregate

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/agentstation/toolindex/internal/storage"
	"github.com/agentstation/toolindex/pkg/errors"
	"github.com/agentstation/toolindex/pkg/logging"
)

const (
	defaultTimeout  = 15 * time.Second
	defaultCacheTTL = 6 * time.Hour
	userAgent       = "toolindex/1.0"

	// maxResponseBytes bounds upstream response bodies.
	maxResponseBytes = 4 << 20
)

// fetcher is the shared HTTP layer for the API-backed aggregators: timeout,
// common headers, JSON decoding, and a TTL cache keyed by URL.
type fetcher struct {
	http  *http.Client
	cache storage.Cache
	ttl   time.Duration
}

func newFetcher(cache storage.Cache) *fetcher {
	if cache == nil {
		cache = storage.NopCache{}
	}
	return &fetcher{
		http:  &http.Client{Timeout: defaultTimeout},
		cache: cache,
		ttl:   defaultCacheTTL,
	}
}

// getJSON fetches url and decodes the response into out. Responses are
// served from and written to the cache. A 404 maps to ErrNotFound; other
// non-2xx statuses map to APIError so rate limits stay distinguishable.
func (f *fetcher) getJSON(ctx context.Context, source, url string, headers map[string]string, out any) error {
	if data, ok := f.cache.Get(ctx, url); ok {
		return json.Unmarshal(data, out)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return errors.WrapAPI(source, 0, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := f.http.Do(req)
	if err != nil {
		return errors.WrapAPI(source, 0, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return errors.ErrNotFound
	case resp.StatusCode != http.StatusOK:
		return &errors.APIError{Source: source, StatusCode: resp.StatusCode, Message: "unexpected status"}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return errors.WrapAPI(source, resp.StatusCode, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return errors.WrapParse("json", url, err)
	}

	f.cache.Set(ctx, url, data, f.ttl)
	logging.Ctx(ctx).Debug().Str("source", source).Str("url", url).Msg("fetched upstream metrics")
	return nil
}
