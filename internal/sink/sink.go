// Package sink delivers work units to their destination: JSON lines on
// stdout or in a file, one object per run in MinIO/S3 (or a local directory),
// or an upsert table in PostgreSQL.
package sink

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/alcoccoque/pbirs-connector/internal/core/cdm"
)

// Sink types.
const (
	TypeStdout      = "stdout"
	TypeFile        = "file"
	TypeObjectStore = "objectstore"
	TypePostgres    = "postgres"
)

// Sink receives the work units of one run. Writing the same unit twice must
// leave the destination unchanged.
type Sink interface {
	Write(ctx context.Context, wu *cdm.WorkUnit) error
	Close(ctx context.Context) error
}

// Config selects and configures a sink.
type Config struct {
	Type        string            `yaml:"type"`
	Path        string            `yaml:"path,omitempty"`
	ObjectStore ObjectStoreConfig `yaml:"objectstore,omitempty"`
	Postgres    PostgresConfig    `yaml:"postgres,omitempty"`
}

// Run identifies the run a sink writes for.
type Run struct {
	ID       string
	Platform string
}

// New builds the sink described by cfg.
func New(ctx context.Context, cfg Config, run Run, logger *slog.Logger) (Sink, error) {
	if logger == nil {
		logger = slog.Default()
	}
	switch cfg.Type {
	case "", TypeStdout:
		return NewJSONLSink(os.Stdout), nil
	case TypeFile:
		return OpenFileSink(cfg.Path)
	case TypeObjectStore:
		store, err := NewObjectStore(cfg.ObjectStore, logger)
		if err != nil {
			return nil, err
		}
		if err := store.Ping(ctx); err != nil {
			return nil, err
		}
		return NewObjectStoreSink(store, cfg.ObjectStore, run, logger), nil
	case TypePostgres:
		return NewPostgresSink(ctx, cfg.Postgres, run, logger)
	default:
		return nil, fmt.Errorf("unknown sink type: %s", cfg.Type)
	}
}
