package pbirs

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/alcoccoque/pbirs-connector/internal/core/cdm"
)

// =============================================================================
// CDM MAPPER
// Maps report server entities to dashboard and user change proposals.
// =============================================================================

// DashboardIDFormat is the stable dashboard id carried by the key aspect.
const DashboardIDFormat = "powerbi.linkedin.com/dashboards/%s"

// Mapper converts reports and their owners into work units for one platform.
type Mapper struct {
	platform string
	logger   *slog.Logger
}

// NewMapper creates a mapper scoped to platform.
func NewMapper(platform string, logger *slog.Logger) *Mapper {
	if logger == nil {
		logger = slog.Default()
	}
	return &Mapper{platform: platform, logger: logger}
}

// BuildUserChangeUnits maps a policy to user info, status and key
// proposals, in that order.
func (m *Mapper) BuildUserChangeUnits(user SystemPolicies) []*cdm.ChangeProposal {
	m.logger.Debug("mapping user", slog.String("user", user.GroupUserName))

	urn := cdm.CorpUserURN(user.URNPart())
	return []*cdm.ChangeProposal{
		cdm.NewUpsert(cdm.EntityCorpUser, urn, cdm.CorpUserInfo{
			DisplayName: user.DisplayName(),
			Title:       user.DisplayName(),
			Active:      true,
		}),
		cdm.NewUpsert(cdm.EntityCorpUser, urn, cdm.Status{Removed: false}),
		cdm.NewUpsert(cdm.EntityCorpUser, urn, cdm.CorpUserKey{Username: user.GroupUserName}),
	}
}

// BuildDashboardChangeUnits maps a report to browse path, info, status, key
// and ownership proposals, in that order. Chart and owner references are
// deduplicated by URN.
func (m *Mapper) BuildDashboardChangeUnits(report CatalogReport, charts, users []*cdm.ChangeProposal) []*cdm.ChangeProposal {
	item := report.Item()
	urn := cdm.DashboardURN(m.platform, report.URNPart())

	owners := []cdm.Owner{}
	for _, userURN := range ToURNSet(users) {
		owners = append(owners, cdm.Owner{Owner: userURN, Type: cdm.OwnershipConsumer})
	}

	info := cdm.DashboardInfo{
		Title:        item.Name,
		Description:  item.Name,
		Charts:       ToURNSet(charts),
		LastModified: auditStamps(item),
		DashboardURL: item.Path,
		CustomProperties: map[string]string{
			"chartCount":    "0",
			"workspaceName": "",
			"workspaceId":   item.Id,
		},
	}

	return []*cdm.ChangeProposal{
		cdm.NewUpsert(cdm.EntityDashboard, urn, cdm.BrowsePaths{
			Paths: []string{"/powerbi/" + m.platform},
		}),
		cdm.NewUpsert(cdm.EntityDashboard, urn, info),
		cdm.NewUpsert(cdm.EntityDashboard, urn, cdm.Status{Removed: false}),
		cdm.NewUpsert(cdm.EntityDashboard, urn, cdm.DashboardKey{
			DashboardTool: m.platform,
			DashboardID:   fmt.Sprintf(DashboardIDFormat, item.Id),
		}),
		cdm.NewUpsert(cdm.EntityDashboard, urn, cdm.Ownership{Owners: owners}),
	}
}

// BuildWorkUnits assembles every work unit of one report: its owner (when
// enriched) followed by the dashboard. Units are unique by id and keep the
// order of first occurrence.
func (m *Mapper) BuildWorkUnits(report CatalogReport) []*cdm.WorkUnit {
	item := report.Item()
	m.logger.Debug("mapping report", slog.String("report", item.Name), slog.String("id", item.Id))

	var userProposals []*cdm.ChangeProposal
	if owner := report.Owner(); owner != nil {
		userProposals = m.BuildUserChangeUnits(*owner)
	}

	// Dataset and chart modeling is out of scope; both stay empty.
	var datasetProposals, chartProposals []*cdm.ChangeProposal
	dashboardProposals := m.BuildDashboardChangeUnits(report, chartProposals, userProposals)

	proposals := make([]*cdm.ChangeProposal, 0, len(userProposals)+len(dashboardProposals))
	proposals = append(proposals, datasetProposals...)
	proposals = append(proposals, userProposals...)
	proposals = append(proposals, chartProposals...)
	proposals = append(proposals, dashboardProposals...)

	seen := make(map[string]struct{}, len(proposals))
	units := make([]*cdm.WorkUnit, 0, len(proposals))
	for _, p := range proposals {
		if p == nil {
			continue
		}
		wu := cdm.NewWorkUnit(m.platform, p)
		if _, dup := seen[wu.ID]; dup {
			continue
		}
		seen[wu.ID] = struct{}{}
		units = append(units, wu)
	}
	return units
}

// ToURNSet returns the entity URNs of proposals without blanks or repeats,
// in order of first occurrence.
func ToURNSet(proposals []*cdm.ChangeProposal) []string {
	seen := make(map[string]struct{}, len(proposals))
	urns := []string{}
	for _, p := range proposals {
		if p == nil || p.EntityURN == "" {
			continue
		}
		if _, ok := seen[p.EntityURN]; ok {
			continue
		}
		seen[p.EntityURN] = struct{}{}
		urns = append(urns, p.EntityURN)
	}
	return urns
}

func auditStamps(item CatalogItem) cdm.ChangeAuditStamps {
	return cdm.ChangeAuditStamps{
		Created:      auditStamp(item.CreatedBy, item.CreatedDate),
		LastModified: auditStamp(item.ModifiedBy, item.ModifiedDate),
	}
}

func auditStamp(actor *string, at *time.Time) *cdm.AuditStamp {
	if actor == nil || at == nil {
		return nil
	}
	return &cdm.AuditStamp{
		Time:  at.UnixMilli(),
		Actor: cdm.CorpUserURN(NewSystemPolicies(*actor, nil).URNPart()),
	}
}
