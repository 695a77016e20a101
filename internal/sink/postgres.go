package sink

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alcoccoque/pbirs-connector/internal/core/cdm"
)

// DefaultTable receives work units when PostgresConfig.Table is empty.
const DefaultTable = "metadata_change_units"

// PostgresConfig configures the PostgreSQL sink.
type PostgresConfig struct {
	DSN   string `yaml:"dsn,omitempty"`
	Table string `yaml:"table,omitempty"`
}

// PostgresSink upserts every work unit by id, so replaying a run is a no-op.
type PostgresSink struct {
	pool   *pgxpool.Pool
	table  string
	runID  string
	logger *slog.Logger
}

// NewPostgresSink connects and ensures the target table exists.
func NewPostgresSink(ctx context.Context, cfg PostgresConfig, run Run, logger *slog.Logger) (*PostgresSink, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("postgres sink: dsn is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	table := cfg.Table
	if table == "" {
		table = DefaultTable
	}

	pool, err := pgxpool.New(ctx, cfg.DSN)
	if err != nil {
		return nil, wrapError(CodeEndpointUnreachable, true, fmt.Errorf("connect postgres: %w", err))
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, wrapError(CodeEndpointUnreachable, true, fmt.Errorf("ping postgres: %w", err))
	}

	s := &PostgresSink{
		pool:   pool,
		table:  pgx.Identifier{table}.Sanitize(),
		runID:  run.ID,
		logger: logger,
	}
	if err := s.ensureTable(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func (s *PostgresSink) ensureTable(ctx context.Context) error {
	ddl := fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %s (
  id text PRIMARY KEY,
  entity_type text NOT NULL,
  entity_urn text NOT NULL,
  change_type text NOT NULL,
  aspect_name text NOT NULL,
  aspect jsonb NOT NULL,
  run_id text NOT NULL,
  updated_at timestamptz NOT NULL DEFAULT now()
);`, s.table)
	if _, err := s.pool.Exec(ctx, ddl); err != nil {
		return wrapError(CodePermissionDenied, false, fmt.Errorf("create table: %w", err))
	}
	return nil
}

func (s *PostgresSink) Write(ctx context.Context, wu *cdm.WorkUnit) error {
	if wu.Proposal == nil {
		return wrapError(CodeSinkWriteFailed, false, fmt.Errorf("work unit %s has no proposal", wu.ID))
	}
	aspect, err := wu.AspectJSON()
	if err != nil {
		return wrapError(CodeSinkWriteFailed, false, fmt.Errorf("encode %s: %w", wu.ID, err))
	}

	stmt := fmt.Sprintf(`INSERT INTO %s (id, entity_type, entity_urn, change_type, aspect_name, aspect, run_id)
VALUES ($1, $2, $3, $4, $5, $6::jsonb, $7)
ON CONFLICT (id) DO UPDATE SET
  entity_type = EXCLUDED.entity_type,
  entity_urn = EXCLUDED.entity_urn,
  change_type = EXCLUDED.change_type,
  aspect_name = EXCLUDED.aspect_name,
  aspect = EXCLUDED.aspect,
  run_id = EXCLUDED.run_id,
  updated_at = now();`, s.table)

	p := wu.Proposal
	_, err = s.pool.Exec(ctx, stmt, wu.ID, p.EntityType, p.EntityURN, string(p.ChangeType), p.AspectName, string(aspect), s.runID)
	if err != nil {
		return wrapError(CodeSinkWriteFailed, true, fmt.Errorf("upsert %s: %w", wu.ID, err))
	}
	return nil
}

func (s *PostgresSink) Close(ctx context.Context) error {
	s.pool.Close()
	return nil
}
