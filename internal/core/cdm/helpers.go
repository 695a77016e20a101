package cdm

import "fmt"

// =============================================================================
// URN HELPERS
// Deterministic identifiers for normalized entities.
// =============================================================================

// DataPlatformURN generates the URN of a data platform.
func DataPlatformURN(platform string) string {
	return fmt.Sprintf("urn:li:dataPlatform:%s", platform)
}

// DashboardURN generates a dashboard URN scoped to a platform.
func DashboardURN(platform, name string) string {
	return fmt.Sprintf("urn:li:dashboard:(%s,%s)", platform, name)
}

// CorpUserURN generates a user URN.
func CorpUserURN(username string) string {
	return fmt.Sprintf("urn:li:corpuser:%s", username)
}

// WorkUnitID generates the identifier of a work unit. Two work units with the
// same id carry the same upsert.
func WorkUnitID(platform, entityURN, aspectName string) string {
	return fmt.Sprintf("%s-%s-%s", platform, entityURN, aspectName)
}
