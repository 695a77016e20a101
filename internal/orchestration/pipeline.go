// Package orchestration drives a source run into a sink.
package orchestration

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/alcoccoque/pbirs-connector/internal/core/cdm"
	"github.com/alcoccoque/pbirs-connector/internal/endpoint"
	"github.com/alcoccoque/pbirs-connector/internal/sink"
)

// Result summarizes one pipeline run.
type Result struct {
	RunID      string                 `json:"runId"`
	Written    int                    `json:"written"`
	Duration   time.Duration          `json:"duration"`
	Report     *endpoint.SourceReport `json:"report,omitempty"`
	SinkTarget string                 `json:"sinkTarget,omitempty"`
}

// SinkFactory builds the sink once the run id is known.
type SinkFactory func(ctx context.Context, run sink.Run) (sink.Sink, error)

// Run pulls every work unit from src and writes it to the sink built by
// newSink. The sink is closed even when the run fails.
func Run(ctx context.Context, src endpoint.Source, platform string, newSink SinkFactory, logger *slog.Logger) (*Result, error) {
	if src == nil {
		return nil, fmt.Errorf("source is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	started := time.Now()

	units := src.WorkUnits(ctx)
	defer units.Close()

	report := src.Report()
	run := sink.Run{ID: report.RunID, Platform: platform}
	out, err := newSink(ctx, run)
	if err != nil {
		return nil, fmt.Errorf("open sink: %w", err)
	}

	result := &Result{RunID: run.ID, Report: report}
	if located, ok := out.(interface{ Location() string }); ok {
		result.SinkTarget = located.Location()
	}

	written, drainErr := Drain(ctx, units, out)
	result.Written = written
	closeErr := out.Close(ctx)
	result.Duration = time.Since(started)

	if drainErr == nil && closeErr != nil {
		drainErr = fmt.Errorf("close sink: %w", closeErr)
	}
	if drainErr != nil {
		logger.Error("pipeline failed",
			slog.String("runId", run.ID),
			slog.Int("written", written),
			slog.Bool("retryable", sink.IsRetryable(drainErr)),
			slog.Any("error", drainErr))
		return result, drainErr
	}

	logger.Info("pipeline finished",
		slog.String("runId", run.ID),
		slog.Int("written", written),
		slog.Duration("duration", result.Duration))
	return result, nil
}

// Drain writes every unit of it to out and returns how many were written.
func Drain(ctx context.Context, it endpoint.Iterator[*cdm.WorkUnit], out sink.Sink) (int, error) {
	written := 0
	for it.Next() {
		if err := out.Write(ctx, it.Value()); err != nil {
			return written, fmt.Errorf("write work unit: %w", err)
		}
		written++
	}
	if err := it.Err(); err != nil {
		return written, fmt.Errorf("read work units: %w", err)
	}
	return written, nil
}
