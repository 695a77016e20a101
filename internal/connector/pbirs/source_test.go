package pbirs

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alcoccoque/pbirs-connector/internal/core/cdm"
	"github.com/alcoccoque/pbirs-connector/internal/endpoint"
)

func newTestSource(t *testing.T, stub *stubServer, mutate func(*Config)) *PBIRS {
	t.Helper()
	cfg := testConfig()
	if mutate != nil {
		mutate(cfg)
	}
	src, err := NewWithTransport(cfg, stub, discardLogger())
	require.NoError(t, err)
	return src
}

func drain(t *testing.T, it endpoint.Iterator[*cdm.WorkUnit]) []*cdm.WorkUnit {
	t.Helper()
	defer it.Close()
	var units []*cdm.WorkUnit
	for it.Next() {
		units = append(units, it.Value())
	}
	require.NoError(t, it.Err())
	return units
}

func bobStub() *stubServer {
	return newStubServer().
		on("Reports", http.StatusOK, `{"value":[{"Id":"r1","Name":"Sales","Path":"/Sales","CreatedBy":"DOM\\bob"}]}`).
		on("MobileReports", http.StatusOK, emptyCollection).
		on("LinkedReports", http.StatusOK, emptyCollection).
		on("PowerBiReports", http.StatusOK, emptyCollection).
		on("System/Policies", http.StatusOK, `{"value":[{"GroupUserName":"DOM\\bob","Roles":[{"Name":"Browser"}]}]}`)
}

func TestSource_EndToEnd(t *testing.T) {
	stub := bobStub()
	src := newTestSource(t, stub, nil)

	units := drain(t, src.WorkUnits(context.Background()))

	require.Len(t, units, 8)
	for _, u := range units {
		assert.True(t, strings.HasPrefix(u.ID, DefaultPlatformName+"-"), u.ID)
	}

	var userUnits, dashboardUnits int
	var ownership cdm.Ownership
	for _, u := range units {
		switch u.Proposal.EntityType {
		case cdm.EntityCorpUser:
			userUnits++
		case cdm.EntityDashboard:
			dashboardUnits++
			if o, ok := u.Proposal.Aspect.(cdm.Ownership); ok {
				ownership = o
			}
		}
	}
	assert.Equal(t, 3, userUnits)
	assert.Equal(t, 5, dashboardUnits)
	require.Len(t, ownership.Owners, 1)
	assert.Equal(t, `urn:li:corpuser:users.DOM\bob`, ownership.Owners[0].Owner)

	report := src.Report()
	assert.Equal(t, 1, report.ScannedReports)
	assert.Equal(t, 8, report.WorkUnits)
	assert.Empty(t, report.Warnings)
	assert.NotEmpty(t, report.RunID)

	payload, err := json.Marshal(units[0])
	require.NoError(t, err)
	assert.Contains(t, string(payload), `"aspectName":"corpUserInfo"`)
}

func TestSource_IsLazy(t *testing.T) {
	stub := bobStub()
	src := newTestSource(t, stub, nil)

	it := src.WorkUnits(context.Background())
	assert.Equal(t, 0, stub.callCount(), "nothing is fetched before the first Next")

	require.True(t, it.Next())
	assert.Equal(t, 5, stub.callCount(), "four report types and one owner lookup")

	for it.Next() {
	}
	require.NoError(t, it.Err())
	assert.Equal(t, 5, stub.callCount())
	assert.False(t, it.Next(), "iterator is not restartable")
	require.NoError(t, it.Close())
}

func TestSource_EnrichmentFailureIsNonFatal(t *testing.T) {
	stub := bobStub().
		on("Reports", http.StatusOK, `{"value":[
			{"Id":"r1","Name":"Sales","CreatedBy":"DOM\\bob"},
			{"Id":"r2","Name":"Costs"}
		]}`).
		on("System/Policies", http.StatusInternalServerError, `down`)
	src := newTestSource(t, stub, nil)

	units := drain(t, src.WorkUnits(context.Background()))

	require.Len(t, units, 10, "two dashboards without owners")
	warnings := src.Report().WarningsFor("r1")
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "enrich report r1")
	assert.Empty(t, src.Report().WarningsFor("r2"))
	assert.Equal(t, 2, src.Report().ScannedReports)
}

func TestSource_FailedReportTypeIsWarning(t *testing.T) {
	stub := bobStub().on("MobileReports", http.StatusServiceUnavailable, `maintenance`)
	src := newTestSource(t, stub, nil)

	units := drain(t, src.WorkUnits(context.Background()))

	assert.Len(t, units, 8)
	require.Len(t, src.Report().Warnings, 1)
	assert.Contains(t, src.Report().Warnings[0].Key, "MobileReports")
	assert.Equal(t, []string{"Reports", "MobileReports", "LinkedReports", "PowerBiReports", "System/Policies"}, stub.paths())
}

func TestSource_FiltersReportsByPath(t *testing.T) {
	stub := bobStub().
		on("Reports", http.StatusOK, `{"value":[
			{"Id":"r1","Name":"Sales","Path":"/Finance/Sales"},
			{"Id":"r2","Name":"Old","Path":"/Archive/Old"}
		]}`)
	src := newTestSource(t, stub, func(c *Config) {
		c.ReportPattern.Deny = []string{"/Archive/**"}
	})

	units := drain(t, src.WorkUnits(context.Background()))

	assert.Len(t, units, 5)
	assert.Equal(t, []string{"r2"}, src.Report().FilteredReports)
	assert.Equal(t, 1, src.Report().ScannedReports)
}

func TestSource_CanceledContext(t *testing.T) {
	stub := bobStub()
	src := newTestSource(t, stub, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	it := src.WorkUnits(ctx)
	assert.False(t, it.Next())
	assert.ErrorIs(t, it.Err(), context.Canceled)
}

func TestSource_Registered(t *testing.T) {
	src, err := endpoint.DefaultRegistry().Create(TemplateID, map[string]any{
		"username":                             "svc",
		"password":                             "secret",
		"report_virtual_directory_name":        "Reports",
		"report_server_virtual_directory_name": "ReportServer",
		"dataset_type_mapping":                 map[string]any{"SQL": "mssql"},
		"request_timeout":                      "30s",
		"report_pattern":                       map[string]any{"deny": []any{"/Archive/**"}},
	}, discardLogger())
	require.NoError(t, err)
	defer src.Close()

	assert.Equal(t, TemplateID, src.ID())
	assert.Equal(t, TemplateID, src.GetDescriptor().ID)

	cfg := src.(*PBIRS).Config()
	assert.Equal(t, "mssql", cfg.DatasetTypeMapping["SQL"])
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.Equal(t, []string{"/Archive/**"}, cfg.ReportPattern.Deny)
	assert.Equal(t, DefaultWorkstationName, cfg.WorkstationName)

	_, err = endpoint.DefaultRegistry().Create(TemplateID, map[string]any{"username": "svc"}, discardLogger())
	var vErr *ValidationError
	assert.ErrorAs(t, err, &vErr)
}
