package endpoint

import (
	"time"

	"github.com/google/uuid"
)

// Warning is a non-fatal problem recorded against an entity.
type Warning struct {
	Key     string `json:"key"`
	Message string `json:"message"`
}

// SourceReport accumulates per-run bookkeeping. It is written by a single
// producer goroutine and read after the run.
type SourceReport struct {
	RunID           string    `json:"runId"`
	StartedAt       time.Time `json:"startedAt"`
	ScannedReports  int       `json:"scannedReports"`
	FilteredReports []string  `json:"filteredReports"`
	WorkUnits       int       `json:"workUnits"`
	Warnings        []Warning `json:"warnings"`
}

// NewSourceReport starts a report with a fresh run id.
func NewSourceReport() *SourceReport {
	return &SourceReport{
		RunID:           uuid.NewString(),
		StartedAt:       time.Now().UTC(),
		FilteredReports: []string{},
		Warnings:        []Warning{},
	}
}

// ReportScanned increments the scanned counter.
func (r *SourceReport) ReportScanned(count int) {
	r.ScannedReports += count
}

// ReportDropped records an entity skipped by filtering.
func (r *SourceReport) ReportDropped(id string) {
	r.FilteredReports = append(r.FilteredReports, id)
}

// ReportWorkUnit counts an emitted work unit.
func (r *SourceReport) ReportWorkUnit() {
	r.WorkUnits++
}

// ReportWarning records a non-fatal problem.
func (r *SourceReport) ReportWarning(key, message string) {
	r.Warnings = append(r.Warnings, Warning{Key: key, Message: message})
}

// WarningsFor returns the warnings recorded against key.
func (r *SourceReport) WarningsFor(key string) []string {
	var out []string
	for _, w := range r.Warnings {
		if w.Key == key {
			out = append(out, w.Message)
		}
	}
	return out
}
