// Package endpoint defines the contracts shared by connectors, sinks, and the
// ingestion pipeline.
//
// Architecture:
//
//	Source    - Produces a finite, lazily consumed stream of work units
//	Iterator  - Pull-based streaming access (Next/Value/Err/Close)
//	Registry  - Source factories indexed by template ID
//	SourceReport - Per-run counters and warnings for post-run inspection
package endpoint

import (
	"context"

	"github.com/alcoccoque/pbirs-connector/internal/core/cdm"
)

// Source is the contract every metadata connector implements.
type Source interface {
	// ID returns the unique template identifier (e.g., "http.pbirs").
	ID() string

	// ValidateConfig tests configuration validity and connectivity.
	ValidateConfig(ctx context.Context) (*ValidationResult, error)

	// GetDescriptor returns metadata about this source type.
	GetDescriptor() *Descriptor

	// WorkUnits starts a fresh run. The iterator is not restartable; calling
	// WorkUnits again performs a new fetch.
	WorkUnits(ctx context.Context) Iterator[*cdm.WorkUnit]

	// Report returns the report of the most recent run.
	Report() *SourceReport

	// Close releases any resources held by the source.
	Close() error
}
