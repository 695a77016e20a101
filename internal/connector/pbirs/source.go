package pbirs

import (
	"context"
	"log/slog"
	nethttp "net/http"

	"github.com/alcoccoque/pbirs-connector/internal/core/cdm"
	"github.com/alcoccoque/pbirs-connector/internal/endpoint"
)

// =============================================================================
// PBIRS SOURCE
// Implements endpoint.Source
// =============================================================================

// Ensure interface compliance
var _ endpoint.Source = (*PBIRS)(nil)

// PBIRS is the Power BI Report Server metadata source.
type PBIRS struct {
	*API
	mapper *Mapper
	report *endpoint.SourceReport
}

// New creates a source with the default transport.
func New(config *Config, logger *slog.Logger) (*PBIRS, error) {
	return NewWithTransport(config, nil, logger)
}

// NewWithTransport creates a source whose requests go through transport.
func NewWithTransport(config *Config, transport nethttp.RoundTripper, logger *slog.Logger) (*PBIRS, error) {
	api, err := NewAPI(config, transport, logger)
	if err != nil {
		return nil, err
	}
	return &PBIRS{
		API:    api,
		mapper: NewMapper(config.PlatformName, api.Logger),
		report: endpoint.NewSourceReport(),
	}, nil
}

// GetDescriptor returns the report server endpoint descriptor.
func (s *PBIRS) GetDescriptor() *endpoint.Descriptor {
	return &endpoint.Descriptor{
		ID:          TemplateID,
		Family:      "http",
		Title:       "Power BI Report Server",
		Vendor:      "Microsoft",
		Description: "Report Server REST v2.0 connector for reports, owners, and datasets",
		Categories:  []string{"bi", "dashboards"},
		Protocols:   []string{"http"},
		DocsURL:     "https://learn.microsoft.com/en-us/power-bi/report-server/rest-api",
		Fields: []*endpoint.FieldDescriptor{
			{Key: "workstation_name", Label: "Server Host", ValueType: "string", Placeholder: DefaultWorkstationName},
			{Key: "report_virtual_directory_name", Label: "Portal Virtual Directory", ValueType: "string", Required: true, Placeholder: "Reports"},
			{Key: "report_server_virtual_directory_name", Label: "Server Virtual Directory", ValueType: "string", Required: true, Placeholder: "ReportServer"},
			{Key: "username", Label: "Username", ValueType: "string", Required: true},
			{Key: "password", Label: "Password", ValueType: "password", Required: true, Sensitive: true},
			{Key: "dataset_type_mapping", Label: "Data Source Type Mapping", ValueType: "map", Description: "Data source types treated as relational"},
			{Key: "platform_name", Label: "Platform Name", ValueType: "string", Placeholder: DefaultPlatformName},
		},
	}
}

// Report returns the report of the most recent run.
func (s *PBIRS) Report() *endpoint.SourceReport {
	return s.report
}

// WorkUnits starts a fresh run. Nothing is fetched until the first call to
// Next, and each report is enriched and mapped only when the consumer has
// drained the units of the previous one.
func (s *PBIRS) WorkUnits(ctx context.Context) endpoint.Iterator[*cdm.WorkUnit] {
	s.report = endpoint.NewSourceReport()
	return &runIterator{source: s, ctx: ctx, report: s.report}
}

// processReport runs filter, owner enrichment and mapping for one report.
func (s *PBIRS) processReport(ctx context.Context, report *endpoint.SourceReport, r CatalogReport) []*cdm.WorkUnit {
	item := r.Item()
	if !s.config.ReportPattern.Allowed(item.Path) {
		s.Logger.Debug("report filtered", slog.String("id", item.Id), slog.String("path", item.Path))
		report.ReportDropped(item.Id)
		return nil
	}

	if item.CreatedBy != nil {
		owner, err := s.FetchUserPolicy(ctx, *item.CreatedBy)
		switch {
		case err != nil:
			enrichErr := &EnrichmentError{ReportID: item.Id, Err: err}
			s.Logger.Warn("owner lookup failed",
				slog.String("report", item.Name),
				slog.String("id", item.Id),
				slog.Any("error", enrichErr))
			report.ReportWarning(item.Id, enrichErr.Error())
		case owner == nil:
			s.Logger.Debug("owner has no system policy",
				slog.String("id", item.Id),
				slog.String("createdBy", *item.CreatedBy))
		default:
			r = r.WithOwner(owner)
		}
	}

	report.ReportScanned(1)
	return s.mapper.BuildWorkUnits(r)
}

// =============================================================================
// RUN ITERATOR
// =============================================================================

// runIterator walks START -> FETCH_REPORTS -> (ENRICH -> MAP -> EMIT)* -> DONE.
type runIterator struct {
	source *PBIRS
	ctx    context.Context
	report *endpoint.SourceReport

	started bool
	reports []CatalogReport
	next    int
	pending []*cdm.WorkUnit
	current *cdm.WorkUnit
	err     error
	done    bool
}

func (it *runIterator) Next() bool {
	if it.done || it.err != nil {
		return false
	}
	if !it.started {
		it.started = true
		if !it.fetchReports() {
			return false
		}
	}

	for len(it.pending) == 0 {
		if err := it.ctx.Err(); err != nil {
			it.err = err
			return false
		}
		if it.next >= len(it.reports) {
			it.done = true
			it.source.Logger.Info("run finished",
				slog.String("runId", it.report.RunID),
				slog.Int("scanned", it.report.ScannedReports),
				slog.Int("filtered", len(it.report.FilteredReports)),
				slog.Int("workUnits", it.report.WorkUnits),
				slog.Int("warnings", len(it.report.Warnings)))
			return false
		}
		r := it.reports[it.next]
		it.next++
		it.pending = it.source.processReport(it.ctx, it.report, r)
	}

	it.current = it.pending[0]
	it.pending = it.pending[1:]
	it.report.ReportWorkUnit()
	return true
}

func (it *runIterator) fetchReports() bool {
	it.source.Logger.Info("run started", slog.String("runId", it.report.RunID))

	reports, failures := it.source.FetchAllReports(it.ctx)
	if err := it.ctx.Err(); err != nil {
		it.err = err
		return false
	}
	for _, f := range failures {
		it.report.ReportWarning(f.URL, f.Error())
	}
	it.reports = reports
	return true
}

func (it *runIterator) Value() *cdm.WorkUnit {
	return it.current
}

func (it *runIterator) Err() error {
	return it.err
}

func (it *runIterator) Close() error {
	it.done = true
	it.pending = nil
	return nil
}
