package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/alcoccoque/pbirs-connector/internal/core/cdm"
)

// ObjectStoreSink buffers a run's work units as JSON lines and stores them as
// one object, <prefix>/<platform>/<runId>.jsonl, when the run closes.
// Re-running with the same run id overwrites the same object.
type ObjectStoreSink struct {
	store  ObjectStore
	bucket string
	key    string
	logger *slog.Logger

	buf   bytes.Buffer
	count int
}

// NewObjectStoreSink creates a sink writing into store.
func NewObjectStoreSink(store ObjectStore, cfg ObjectStoreConfig, run Run, logger *slog.Logger) *ObjectStoreSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &ObjectStoreSink{
		store:  store,
		bucket: cfg.bucket(),
		key:    objectKey(cfg.prefix(), run.Platform, run.ID),
		logger: logger,
	}
}

func objectKey(prefix, platform, runID string) string {
	return strings.Trim(strings.Join([]string{prefix, platform, runID + ".jsonl"}, "/"), "/")
}

// Location returns the URI of the object the run is written to.
func (s *ObjectStoreSink) Location() string {
	return fmt.Sprintf("minio://%s/%s", s.bucket, s.key)
}

func (s *ObjectStoreSink) Write(ctx context.Context, wu *cdm.WorkUnit) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	line, err := json.Marshal(wu)
	if err != nil {
		return wrapError(CodeSinkWriteFailed, false, fmt.Errorf("encode %s: %w", wu.ID, err))
	}
	s.buf.Write(line)
	s.buf.WriteByte('\n')
	s.count++
	return nil
}

func (s *ObjectStoreSink) Close(ctx context.Context) error {
	if s.count == 0 {
		s.logger.Info("no work units to store", slog.String("location", s.Location()))
		return nil
	}
	if err := s.store.EnsureBucket(ctx, s.bucket); err != nil {
		return err
	}
	if err := s.store.PutObject(ctx, s.bucket, s.key, s.buf.Bytes()); err != nil {
		return err
	}
	s.logger.Info("work units stored",
		slog.String("location", s.Location()),
		slog.Int("count", s.count))
	s.buf.Reset()
	s.count = 0
	return nil
}
