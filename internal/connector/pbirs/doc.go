// Package pbirs implements a Power BI Report Server metadata connector.
// It reads the REST v2.0 API of an on-premises report server and emits
// normalized catalog work units.
//
// CDM Mappings:
//   - Reports, PowerBiReports, LinkedReports, MobileReports → cdm dashboard
//   - System/Policies (report owner)                        → cdm corpuser
//   - report owner                                          → dashboard ownership
package pbirs
