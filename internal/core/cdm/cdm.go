// Package cdm provides the normalized metadata model emitted by connectors.
// Every record is an aspect of a catalog entity (dashboard, user) and travels
// as an idempotent upsert proposal wrapped in a WorkUnit.
package cdm

// Entity types.
const (
	EntityDashboard = "dashboard"
	EntityCorpUser  = "corpuser"
)

// Aspect names.
const (
	AspectBrowsePaths   = "browsePaths"
	AspectDashboardInfo = "dashboardInfo"
	AspectDashboardKey  = "dashboardKey"
	AspectStatus        = "status"
	AspectOwnership     = "ownership"
	AspectCorpUserInfo  = "corpUserInfo"
	AspectCorpUserKey   = "corpUserKey"
)

// ChangeType describes how the catalog applies a proposal.
type ChangeType string

const (
	ChangeTypeUpsert ChangeType = "UPSERT"
)

// OwnershipType classifies an owner edge.
type OwnershipType string

// OwnershipConsumer marks a user who consumes the entity.
const OwnershipConsumer OwnershipType = "CONSUMER"

// Aspect is a named facet of a catalog entity.
type Aspect interface {
	AspectName() string
}

// =============================================================================
// DASHBOARD ASPECTS
// =============================================================================

// BrowsePaths places an entity in the catalog's browse tree.
type BrowsePaths struct {
	Paths []string `json:"paths"`
}

func (BrowsePaths) AspectName() string { return AspectBrowsePaths }

// AuditStamp records who changed something and when (epoch millis).
type AuditStamp struct {
	Time  int64  `json:"time"`
	Actor string `json:"actor"`
}

// ChangeAuditStamps carries optional creation and modification stamps.
type ChangeAuditStamps struct {
	Created      *AuditStamp `json:"created,omitempty"`
	LastModified *AuditStamp `json:"lastModified,omitempty"`
}

// DashboardInfo is the descriptive aspect of a dashboard.
type DashboardInfo struct {
	Title            string            `json:"title"`
	Description      string            `json:"description"`
	Charts           []string          `json:"charts"`
	LastModified     ChangeAuditStamps `json:"lastModified"`
	DashboardURL     string            `json:"dashboardUrl,omitempty"`
	CustomProperties map[string]string `json:"customProperties"`
}

func (DashboardInfo) AspectName() string { return AspectDashboardInfo }

// DashboardKey identifies a dashboard within its tool.
type DashboardKey struct {
	DashboardTool string `json:"dashboardTool"`
	DashboardID   string `json:"dashboardId"`
}

func (DashboardKey) AspectName() string { return AspectDashboardKey }

// Status marks an entity as present or soft-deleted.
type Status struct {
	Removed bool `json:"removed"`
}

func (Status) AspectName() string { return AspectStatus }

// Owner is a single ownership edge.
type Owner struct {
	Owner string        `json:"owner"`
	Type  OwnershipType `json:"type"`
}

// Ownership lists the owners of an entity.
type Ownership struct {
	Owners []Owner `json:"owners"`
}

func (Ownership) AspectName() string { return AspectOwnership }

// =============================================================================
// USER ASPECTS
// =============================================================================

// CorpUserInfo is the profile aspect of a user.
type CorpUserInfo struct {
	DisplayName string  `json:"displayName"`
	Title       string  `json:"title"`
	Email       *string `json:"email,omitempty"`
	Active      bool    `json:"active"`
}

func (CorpUserInfo) AspectName() string { return AspectCorpUserInfo }

// CorpUserKey carries the raw account name of a user.
type CorpUserKey struct {
	Username string `json:"username"`
}

func (CorpUserKey) AspectName() string { return AspectCorpUserKey }
