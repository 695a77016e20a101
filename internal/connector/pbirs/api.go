package pbirs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	nethttp "net/http"

	"github.com/alcoccoque/pbirs-connector/internal/connector/http"
	"github.com/alcoccoque/pbirs-connector/internal/endpoint"
)

// =============================================================================
// REPORT SERVER API CLIENT
// Typed GET operations against the REST v2.0 API.
// =============================================================================

// API is the report server REST client. It holds one static NTLM credential
// and one HTTP client, both read-only after construction.
type API struct {
	*http.Base
	config  *Config
	baseURL string
}

// NewAPI validates config and builds the client. transport may be nil.
func NewAPI(config *Config, transport nethttp.RoundTripper, logger *slog.Logger) (*API, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	httpConfig := http.DefaultClientConfig()
	httpConfig.BaseURL = config.BaseAPIURL()
	httpConfig.Auth = http.NewNTLMAuth(config.WorkstationName, config.Username, config.Password)
	httpConfig.Timeout = config.RequestTimeout
	httpConfig.RateLimit = config.RateLimit
	httpConfig.MaxRetries = 0
	httpConfig.Transport = transport
	httpConfig.Headers["Accept"] = "application/json"

	return &API{
		Base:    http.NewBase(TemplateID, "Power BI Report Server", "Microsoft", httpConfig, logger),
		config:  config,
		baseURL: httpConfig.BaseURL,
	}, nil
}

// Config returns the validated configuration.
func (a *API) Config() *Config {
	return a.config
}

// ValidateConfig checks connectivity by reading the System resource.
func (a *API) ValidateConfig(ctx context.Context) (*endpoint.ValidationResult, error) {
	system, err := a.FetchSystem(ctx)
	if err != nil {
		var upstream *UpstreamError
		if errors.As(err, &upstream) && upstream.StatusCode != 0 {
			return &endpoint.ValidationResult{
				Valid:   false,
				Message: fmt.Sprintf("Connection failed: HTTP %d", upstream.StatusCode),
			}, nil
		}
		return nil, err
	}

	a.Version = system.ProductVersion
	return &endpoint.ValidationResult{
		Valid:           true,
		Message:         "Connection successful",
		DetectedVersion: a.Version,
	}, nil
}

// =============================================================================
// SYSTEM AND USERS
// =============================================================================

// FetchSystem reads the server description.
func (a *API) FetchSystem(ctx context.Context) (*System, error) {
	target := a.resolve(EndpointSystem, "")
	body, err := a.get(ctx, "fetch system", target)
	if err != nil {
		return nil, err
	}
	var system System
	if err := json.Unmarshal(body, &system); err != nil {
		return nil, &UpstreamError{Operation: "fetch system", URL: target, Err: err}
	}
	return &system, nil
}

// FetchUserPolicies lists every system policy.
func (a *API) FetchUserPolicies(ctx context.Context) ([]SystemPolicies, error) {
	const op = "fetch user policies"
	target := a.resolve(EndpointSystemPolicies, "")
	body, err := a.get(ctx, op, target)
	if err != nil {
		return nil, err
	}
	coll, err := http.DecodeCollection[SystemPolicies](body)
	if err != nil {
		return nil, &UpstreamError{Operation: op, URL: target, Err: err}
	}
	a.warnIfPaged(coll.HasMore(), target)
	return coll.Value, nil
}

// FetchUserPolicy finds the policy of one user or group by exact name.
// It returns nil when nobody matches.
func (a *API) FetchUserPolicy(ctx context.Context, groupUserName string) (*SystemPolicies, error) {
	policies, err := a.FetchUserPolicies(ctx)
	if err != nil {
		return nil, err
	}
	for i := range policies {
		if policies[i].GroupUserName == groupUserName {
			return &policies[i], nil
		}
	}
	return nil, nil
}

// =============================================================================
// REPORTS
// =============================================================================

// FetchReport reads one paginated report. An empty id returns nil without
// calling the server.
func (a *API) FetchReport(ctx context.Context, id string) (*Report, error) {
	return fetchItem[Report](ctx, a, "fetch report", EndpointReport, id)
}

// FetchPowerBiReport reads one Power BI report.
func (a *API) FetchPowerBiReport(ctx context.Context, id string) (*PowerBiReport, error) {
	return fetchItem[PowerBiReport](ctx, a, "fetch powerbi report", EndpointPowerBiReport, id)
}

// FetchLinkedReport reads one linked report.
func (a *API) FetchLinkedReport(ctx context.Context, id string) (*LinkedReport, error) {
	return fetchItem[LinkedReport](ctx, a, "fetch linked report", EndpointLinkedReport, id)
}

// FetchMobileReport reads one mobile report.
func (a *API) FetchMobileReport(ctx context.Context, id string) (*MobileReport, error) {
	return fetchItem[MobileReport](ctx, a, "fetch mobile report", EndpointMobileReport, id)
}

type reportLeg struct {
	kind     ReportKind
	endpoint string
	decode   func(body []byte) ([]CatalogReport, bool, error)
}

var reportLegs = []reportLeg{
	{KindReport, EndpointReports, decodeReports[Report]},
	{KindMobileReport, EndpointMobileReports, decodeReports[MobileReport]},
	{KindLinkedReport, EndpointLinkedReports, decodeReports[LinkedReport]},
	{KindPowerBiReport, EndpointPowerBiReports, decodeReports[PowerBiReport]},
}

// FetchAllReports lists every report type in a fixed order: reports,
// mobile reports, linked reports, Power BI reports. A type that fails is
// logged, returned in the failure list, and contributes nothing; the call
// itself never fails.
func (a *API) FetchAllReports(ctx context.Context) ([]CatalogReport, []*UpstreamError) {
	var (
		reports  []CatalogReport
		failures []*UpstreamError
	)

	for _, leg := range reportLegs {
		op := fmt.Sprintf("fetch %s list", leg.kind)
		target := a.resolve(leg.endpoint, "")

		body, err := a.get(ctx, op, target)
		if err == nil {
			var items []CatalogReport
			var paged bool
			items, paged, err = leg.decode(body)
			if err == nil {
				a.warnIfPaged(paged, target)
				reports = append(reports, items...)
				continue
			}
			err = &UpstreamError{Operation: op, URL: target, Err: err}
		}

		var upstream *UpstreamError
		if !errors.As(err, &upstream) {
			upstream = &UpstreamError{Operation: op, URL: target, Err: err}
		}
		a.Logger.Warn("report type skipped",
			slog.String("kind", string(leg.kind)),
			slog.String("url", target),
			slog.Int("status", upstream.StatusCode),
			slog.Any("error", upstream))
		failures = append(failures, upstream)
	}

	return reports, failures
}

func decodeReports[T CatalogReport](body []byte) ([]CatalogReport, bool, error) {
	coll, err := http.DecodeCollection[T](body)
	if err != nil {
		return nil, false, err
	}
	out := make([]CatalogReport, 0, len(coll.Value))
	for _, r := range coll.Value {
		item := r.Item()
		if err := item.validate(); err != nil {
			return nil, false, err
		}
		out = append(out, r)
	}
	return out, coll.HasMore(), nil
}

// =============================================================================
// DATASETS AND DATA SOURCES
// =============================================================================

// FetchDataset reads one shared dataset. An empty id returns nil without
// calling the server.
func (a *API) FetchDataset(ctx context.Context, id string) (*DataSet, error) {
	return fetchItem[DataSet](ctx, a, "fetch dataset", EndpointDataset, id)
}

// FetchDatasets lists the shared datasets.
func (a *API) FetchDatasets(ctx context.Context) ([]DataSet, error) {
	const op = "fetch datasets"
	target := a.resolve(EndpointDatasets, "")
	body, err := a.get(ctx, op, target)
	if err != nil {
		return nil, err
	}
	coll, err := http.DecodeCollection[DataSet](body)
	if err != nil {
		return nil, &UpstreamError{Operation: op, URL: target, Err: err}
	}
	for i := range coll.Value {
		if err := coll.Value[i].validate(); err != nil {
			return nil, &UpstreamError{Operation: op, URL: target, Err: err}
		}
	}
	a.warnIfPaged(coll.HasMore(), target)
	return coll.Value, nil
}

// FetchDataSource resolves the data source behind dataset. Only the first
// entry of the server's list is used; datasets with several sources are
// not modeled further. It returns nil when the dataset has no source.
func (a *API) FetchDataSource(ctx context.Context, dataset *DataSet) (*DataSource, error) {
	if dataset == nil || dataset.Id == "" {
		return nil, nil
	}

	const op = "fetch data source"
	target := a.resolve(EndpointDatasetDataSources, dataset.Id)
	body, err := a.get(ctx, op, target)
	if err != nil {
		return nil, err
	}

	coll, err := http.DecodeCollection[json.RawMessage](body)
	if err != nil {
		return nil, &UpstreamError{Operation: op, URL: target, Err: err}
	}
	if len(coll.Value) == 0 {
		a.Logger.Info("data source not found for dataset",
			slog.String("dataset", dataset.Name),
			slog.String("datasetId", dataset.Id))
		return nil, nil
	}

	raw := coll.Value[0]
	var ds DataSource
	if err := json.Unmarshal(raw, &ds); err != nil {
		return nil, &UpstreamError{Operation: op, URL: target, Err: err}
	}
	if err := ds.validate(); err != nil {
		return nil, &UpstreamError{Operation: op, URL: target, Err: err}
	}

	var extra struct {
		ConnectionDetails *ConnectionDetails `json:"connectionDetails"`
	}
	if err := json.Unmarshal(raw, &extra); err != nil {
		return nil, &UpstreamError{Operation: op, URL: target, Err: err}
	}
	if _, mapped := a.config.DatasetTypeMapping[ds.Type]; mapped && extra.ConnectionDetails == nil {
		a.Logger.Warn("relational data source has no connection details",
			slog.String("datasetId", dataset.Id),
			slog.String("dataSourceId", ds.Id),
			slog.String("type", ds.Type))
	}

	resolved := ResolveDataSource(ds, a.config.DatasetTypeMapping, extra.ConnectionDetails)
	return &resolved, nil
}

// =============================================================================
// HELPERS
// =============================================================================

func (a *API) resolve(name, id string) string {
	return ResolveEndpoint(name, a.baseURL, id)
}

// get issues one GET and returns the body of a 200 response. Every other
// outcome becomes an *UpstreamError.
func (a *API) get(ctx context.Context, operation, target string) ([]byte, error) {
	resp, err := a.Client.Get(ctx, target, nil)
	if err != nil {
		var httpErr *http.HTTPError
		if errors.As(err, &httpErr) {
			return nil, &UpstreamError{
				Operation:  operation,
				URL:        target,
				StatusCode: httpErr.StatusCode,
				Body:       httpErr.Message,
			}
		}
		return nil, &UpstreamError{Operation: operation, URL: target, Err: err}
	}
	if resp.StatusCode != nethttp.StatusOK {
		return nil, &UpstreamError{
			Operation:  operation,
			URL:        target,
			StatusCode: resp.StatusCode,
			Body:       string(resp.Body),
		}
	}
	return resp.Body, nil
}

func (a *API) warnIfPaged(paged bool, target string) {
	if paged {
		a.Logger.Warn("response has further pages that are not followed", slog.String("url", target))
	}
}

func fetchItem[T any](ctx context.Context, a *API, operation, endpointName, id string) (*T, error) {
	if id == "" {
		return nil, nil
	}
	target := a.resolve(endpointName, id)
	body, err := a.get(ctx, operation, target)
	if err != nil {
		return nil, err
	}

	var item T
	if err := json.Unmarshal(body, &item); err != nil {
		return nil, &UpstreamError{Operation: operation, URL: target, Err: err}
	}
	if v, ok := any(&item).(interface{ validate() error }); ok {
		if err := v.validate(); err != nil {
			return nil, &UpstreamError{Operation: operation, URL: target, Err: err}
		}
	}
	return &item, nil
}
