package cmd

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/agentstation/toolindex/internal/aggregate"
	"github.com/agentstation/toolindex/internal/config"
	"github.com/agentstation/toolindex/internal/enhance"
	"github.com/agentstation/toolindex/internal/history"
	"github.com/agentstation/toolindex/internal/storage"
	"github.com/agentstation/toolindex/pkg/logging"
	"github.com/agentstation/toolindex/pkg/scoring"
)

// openStore builds the configured storage backend.
func openStore() (storage.Store, error) {
	return storage.New(config.StorageConfig())
}

// newCache returns the Redis response cache when configured, otherwise a
// no-op cache so aggregators always hit the network.
func newCache() storage.Cache {
	addr := config.GetString(config.KeyRedisAddr)
	if addr == "" {
		return storage.NopCache{}
	}
	return storage.NewRedisCache(addr, config.GetString(config.KeyRedisPassword), 0, "toolindex")
}

// newMetricsClient wires the external metric aggregators.
func newMetricsClient() *aggregate.Client {
	return aggregate.NewClient(aggregate.Options{
		Cache:            newCache(),
		GitHubToken:      config.GetString(config.KeyGitHubToken),
		HuggingFaceToken: config.GetString(config.KeyHuggingFaceToken),
	})
}

// newTraffic connects to the analytics database when configured. A missing
// DSN disables traffic scoring rather than failing the command.
func newTraffic(ctx context.Context) *aggregate.Traffic {
	dsn := config.GetString(config.KeyAnalyticsDSN)
	if dsn == "" {
		return nil
	}
	db, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("analytics database unavailable, skipping traffic scores")
		return nil
	}
	return aggregate.NewTraffic(db, config.GetString(config.KeyAnalyticsWebsiteID))
}

// newEnhancer builds the LLM enrichment client when an API key is present.
func newEnhancer(ctx context.Context) *enhance.Client {
	apiKey := config.GetString(config.KeyGeminiAPIKey)
	if apiKey == "" {
		return nil
	}
	client, err := enhance.New(ctx, apiKey, config.GetString(config.KeyGeminiModel))
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("enrichment client unavailable, skipping enhancement")
		return nil
	}
	return client
}

// openHistory connects to run history storage; nil when unconfigured.
func openHistory() (*history.Store, error) {
	return history.Open(config.GetString(config.KeyHistoryDSN))
}

// loadTiers reads the tier configuration file when one is configured,
// falling back to the built-in defaults.
func loadTiers(path string) (scoring.TierSet, error) {
	if path == "" {
		path = config.GetString(config.KeyTiersFile)
	}
	if path == "" {
		return scoring.DefaultTiers(), nil
	}
	return scoring.LoadTiers(path)
}
