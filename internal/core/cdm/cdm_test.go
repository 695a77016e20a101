package cdm

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestURNHelpers(t *testing.T) {
	assert.Equal(t, "urn:li:dataPlatform:powerbi", DataPlatformURN("powerbi"))
	assert.Equal(t, "urn:li:dashboard:(powerbi,dashboards.r1)", DashboardURN("powerbi", "dashboards.r1"))
	assert.Equal(t, "urn:li:corpuser:users.DOM\\bob", CorpUserURN(`users.DOM\bob`))
	assert.Equal(t, "p-urn:x-status", WorkUnitID("p", "urn:x", "status"))
}

func TestNewWorkUnit(t *testing.T) {
	urn := DashboardURN("powerbi", "dashboards.r1")
	wu := NewWorkUnit("powerbi", NewUpsert(EntityDashboard, urn, Status{}))

	assert.Equal(t, WorkUnitID("powerbi", urn, AspectStatus), wu.ID)
	assert.Equal(t, AspectStatus, wu.Proposal.AspectName)
	assert.Equal(t, ChangeTypeUpsert, wu.Proposal.ChangeType)
}

func TestWorkUnit_MarshalJSON(t *testing.T) {
	wu := NewWorkUnit("powerbi", NewUpsert(EntityCorpUser, CorpUserURN("users.bob"), CorpUserKey{Username: "bob"}))

	data, err := json.Marshal(wu)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, wu.ID, decoded["id"])
	assert.Equal(t, "corpuser", decoded["entityType"])
	assert.Equal(t, "urn:li:corpuser:users.bob", decoded["entityUrn"])
	assert.Equal(t, "UPSERT", decoded["changeType"])
	assert.Equal(t, "corpUserKey", decoded["aspectName"])
	assert.Equal(t, map[string]any{"username": "bob"}, decoded["aspect"])
}

func TestWorkUnit_AspectJSON(t *testing.T) {
	wu := NewWorkUnit("powerbi", NewUpsert(EntityDashboard, "urn:d", Status{Removed: false}))
	data, err := wu.AspectJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{"removed":false}`, string(data))

	empty := &WorkUnit{ID: "x"}
	data, err = empty.AspectJSON()
	require.NoError(t, err)
	assert.Equal(t, "null", string(data))
}

func TestDashboardInfo_OmitsEmptyStamps(t *testing.T) {
	data, err := json.Marshal(DashboardInfo{Title: "Sales", Charts: []string{}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"title":"Sales","description":"","charts":[],"lastModified":{},"customProperties":null}`, string(data))
}
