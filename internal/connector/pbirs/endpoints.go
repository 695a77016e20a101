package pbirs

import (
	"fmt"
	"net/url"
	"strings"
)

// Logical operation names.
const (
	EndpointSystem             = "SYSTEM"
	EndpointSystemPolicies     = "SYSTEM_POLICIES"
	EndpointReports            = "REPORTS"
	EndpointReport             = "REPORT"
	EndpointMobileReports      = "MOBILE_REPORTS"
	EndpointMobileReport       = "MOBILE_REPORT"
	EndpointLinkedReports      = "LINKED_REPORTS"
	EndpointLinkedReport       = "LINKED_REPORT"
	EndpointPowerBiReports     = "POWERBI_REPORTS"
	EndpointPowerBiReport      = "POWERBI_REPORT"
	EndpointDatasets           = "DATASETS"
	EndpointDataset            = "DATASET"
	EndpointDatasetDataSources = "DATASET_DATASOURCES"
)

const (
	placeholderBaseURL = "{BASE_URL}"
	placeholderID      = "{ID}"
)

var endpointTemplates = map[string]string{
	EndpointSystem:             "{BASE_URL}System",
	EndpointSystemPolicies:     "{BASE_URL}System/Policies",
	EndpointReports:            "{BASE_URL}Reports",
	EndpointReport:             "{BASE_URL}Reports({ID})",
	EndpointMobileReports:      "{BASE_URL}MobileReports",
	EndpointMobileReport:       "{BASE_URL}MobileReports({ID})",
	EndpointLinkedReports:      "{BASE_URL}LinkedReports",
	EndpointLinkedReport:       "{BASE_URL}LinkedReports({ID})",
	EndpointPowerBiReports:     "{BASE_URL}PowerBiReports",
	EndpointPowerBiReport:      "{BASE_URL}PowerBiReports({ID})",
	EndpointDatasets:           "{BASE_URL}Datasets",
	EndpointDataset:            "{BASE_URL}Datasets({ID})",
	EndpointDatasetDataSources: "{BASE_URL}Datasets({ID})/DataSources",
}

// ResolveEndpoint substitutes the base URL and id into the named template.
// An unknown name or a placeholder left unresolved is a programming error
// and panics.
func ResolveEndpoint(name, baseURL, id string) string {
	tmpl, ok := endpointTemplates[name]
	if !ok {
		panic(fmt.Sprintf("pbirs: unknown endpoint %q", name))
	}
	resolved := strings.ReplaceAll(tmpl, placeholderBaseURL, baseURL)
	if strings.Contains(resolved, placeholderID) {
		if id == "" {
			panic(fmt.Sprintf("pbirs: endpoint %q requires an id", name))
		}
		resolved = strings.ReplaceAll(resolved, placeholderID, url.PathEscape(id))
	}
	if strings.Contains(resolved, "{") {
		panic(fmt.Sprintf("pbirs: unresolved placeholder in %q", resolved))
	}
	return resolved
}
