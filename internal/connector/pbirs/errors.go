package pbirs

import "fmt"

// UpstreamError reports a failed call to the report server: a non-200
// status, a transport failure, or a body that could not be decoded.
type UpstreamError struct {
	Operation  string
	URL        string
	StatusCode int
	Body       string
	Err        error
}

func (e *UpstreamError) Error() string {
	switch {
	case e.StatusCode != 0:
		return fmt.Sprintf("%s: %s returned HTTP %d: %s", e.Operation, e.URL, e.StatusCode, e.Body)
	case e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Operation, e.URL, e.Err)
	default:
		return fmt.Sprintf("%s: %s failed", e.Operation, e.URL)
	}
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// EnrichmentError reports a failed owner lookup for one report. It never
// stops a run.
type EnrichmentError struct {
	ReportID string
	Err      error
}

func (e *EnrichmentError) Error() string {
	return fmt.Sprintf("enrich report %s: %v", e.ReportID, e.Err)
}

func (e *EnrichmentError) Unwrap() error {
	return e.Err
}
