// Package history records maintenance pipeline runs in Postgres so
// operators can see run status, duration, and outcome metrics over time.
// Recording is best-effort: a missing or unreachable database degrades to
// a warning, never a failed run.
package history

import (
	"context"
	"encoding/json"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // postgres driver

	"github.com/agentstation/toolindex/pkg/errors"
	"github.com/agentstation/toolindex/pkg/logging"
)

// Run statuses.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Schema is the pipeline_runs table DDL, applied idempotently on open.
const Schema = `
CREATE TABLE IF NOT EXISTS pipeline_runs (
    id UUID PRIMARY KEY,
    pipeline TEXT NOT NULL,
    status TEXT NOT NULL,
    started_at TIMESTAMPTZ NOT NULL,
    finished_at TIMESTAMPTZ,
    duration_seconds DOUBLE PRECISION,
    metrics JSONB,
    error_note TEXT,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// Run is one recorded pipeline execution.
type Run struct {
	ID              string         `db:"id"`
	Pipeline        string         `db:"pipeline"`
	Status          string         `db:"status"`
	StartedAt       time.Time      `db:"started_at"`
	FinishedAt      time.Time      `db:"finished_at"`
	DurationSeconds float64        `db:"duration_seconds"`
	Metrics         map[string]int `db:"-"`
	MetricsRaw      []byte         `db:"metrics"`
	ErrorNote       string         `db:"error_note"`
}

// Store persists pipeline runs.
type Store struct {
	db      *sqlx.DB
	builder sq.StatementBuilderType
}

// Open connects to Postgres at dsn and ensures the schema exists. An empty
// dsn returns (nil, nil) so callers can treat history as optional.
func Open(dsn string) (*Store, error) {
	if dsn == "" {
		return nil, nil
	}
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, &errors.ConfigError{Component: "history", Message: "postgres connect failed", Err: err}
	}
	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, errors.WrapIO("migrate", "pipeline_runs", err)
	}
	return &Store{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	return s.db.Close()
}

// Record inserts a completed run. A nil store or an insert failure logs a
// warning and returns; history never fails the pipeline.
func (s *Store) Record(ctx context.Context, run Run) {
	log := logging.Ctx(ctx)
	if s == nil {
		return
	}

	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	metrics, err := json.Marshal(run.Metrics)
	if err != nil {
		metrics = []byte("{}")
	}

	query, args, err := s.builder.
		Insert("pipeline_runs").
		Columns("id", "pipeline", "status", "started_at", "finished_at", "duration_seconds", "metrics", "error_note").
		Values(run.ID, run.Pipeline, run.Status, run.StartedAt, run.FinishedAt, run.DurationSeconds, metrics, run.ErrorNote).
		ToSql()
	if err != nil {
		log.Warn().Err(err).Msg("building run-history insert failed")
		return
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		log.Warn().Err(err).Str("run_id", run.ID).Msg("recording pipeline run failed")
		return
	}
	log.Info().Str("run_id", run.ID).Str("status", run.Status).Msg("recorded pipeline run")
}

// Recent returns the most recent runs, optionally filtered by pipeline.
func (s *Store) Recent(ctx context.Context, pipeline string, limit int) ([]Run, error) {
	if s == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 50
	}

	builder := s.builder.
		Select("id", "pipeline", "status", "started_at", "finished_at", "duration_seconds", "metrics", "error_note").
		From("pipeline_runs").
		OrderBy("started_at DESC").
		Limit(uint64(limit))
	if pipeline != "" {
		builder = builder.Where(sq.Eq{"pipeline": pipeline})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}

	var runs []Run
	if err := s.db.SelectContext(ctx, &runs, query, args...); err != nil {
		return nil, errors.WrapIO("query", "pipeline_runs", err)
	}
	for i := range runs {
		if len(runs[i].MetricsRaw) > 0 {
			_ = json.Unmarshal(runs[i].MetricsRaw, &runs[i].Metrics)
		}
	}
	return runs, nil
}
