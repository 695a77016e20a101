package pbirs

import (
	"encoding/json"
	"errors"
	"strings"
	"time"
)

// =============================================================================
// REPORT SERVER API RESPONSE TYPES
// Optional fields are pointers: nil means the server omitted them.
// =============================================================================

// CatalogItem is the shape shared by every server-managed content object.
type CatalogItem struct {
	Id             string     `json:"Id"`
	Name           string     `json:"Name"`
	Description    *string    `json:"Description,omitempty"`
	Path           string     `json:"Path"`
	Type           string     `json:"Type"`
	Hidden         bool       `json:"Hidden"`
	Size           int64      `json:"Size"`
	ModifiedBy     *string    `json:"ModifiedBy,omitempty"`
	ModifiedDate   *time.Time `json:"ModifiedDate,omitempty"`
	CreatedBy      *string    `json:"CreatedBy,omitempty"`
	CreatedDate    *time.Time `json:"CreatedDate,omitempty"`
	ParentFolderId *string    `json:"ParentFolderId,omitempty"`
	ContentType    *string    `json:"ContentType,omitempty"`
	Content        string     `json:"Content"`
	IsFavorite     bool       `json:"IsFavorite"`
}

var errMissingID = errors.New(`required field "Id" is missing`)

func (c *CatalogItem) validate() error {
	if c.Id == "" {
		return errMissingID
	}
	return nil
}

// ReportKind tags the four report variants.
type ReportKind string

const (
	KindReport        ReportKind = "Report"
	KindMobileReport  ReportKind = "MobileReport"
	KindLinkedReport  ReportKind = "LinkedReport"
	KindPowerBiReport ReportKind = "PowerBIReport"
)

// CatalogReport is the capability every report variant exposes. The mapper
// and the orchestrator only ever see this interface.
type CatalogReport interface {
	Kind() ReportKind
	Item() CatalogItem
	URNPart() string

	// Owner returns the enriched owner policy, or nil before enrichment.
	Owner() *SystemPolicies

	// WithOwner returns a copy of the report with the owner attached.
	WithOwner(owner *SystemPolicies) CatalogReport
}

func reportURNPart(id string) string {
	return "dashboards." + id
}

// Report is a paginated (.rdl) report.
type Report struct {
	CatalogItem
	HasDataSources    bool `json:"HasDataSources"`
	HasSharedDataSets bool `json:"HasSharedDataSets"`
	HasParameters     bool `json:"HasParameters"`

	UserInfo *SystemPolicies `json:"-"`
}

func (r Report) Kind() ReportKind       { return KindReport }
func (r Report) Item() CatalogItem      { return r.CatalogItem }
func (r Report) URNPart() string        { return reportURNPart(r.Id) }
func (r Report) Owner() *SystemPolicies { return r.UserInfo }

func (r Report) WithOwner(owner *SystemPolicies) CatalogReport {
	r.UserInfo = owner
	return r
}

// PowerBiReport is a Power BI (.pbix) report.
type PowerBiReport struct {
	CatalogItem
	HasDataSources bool `json:"HasDataSources"`

	UserInfo *SystemPolicies `json:"-"`
}

func (r PowerBiReport) Kind() ReportKind       { return KindPowerBiReport }
func (r PowerBiReport) Item() CatalogItem      { return r.CatalogItem }
func (r PowerBiReport) URNPart() string        { return reportURNPart(r.Id) }
func (r PowerBiReport) Owner() *SystemPolicies { return r.UserInfo }

func (r PowerBiReport) WithOwner(owner *SystemPolicies) CatalogReport {
	r.UserInfo = owner
	return r
}

// LinkedReport points at another report with its own parameters.
type LinkedReport struct {
	CatalogItem
	HasParameters bool   `json:"HasParameters"`
	Link          string `json:"Link"`

	UserInfo *SystemPolicies `json:"-"`
}

func (r LinkedReport) Kind() ReportKind       { return KindLinkedReport }
func (r LinkedReport) Item() CatalogItem      { return r.CatalogItem }
func (r LinkedReport) URNPart() string        { return reportURNPart(r.Id) }
func (r LinkedReport) Owner() *SystemPolicies { return r.UserInfo }

func (r LinkedReport) WithOwner(owner *SystemPolicies) CatalogReport {
	r.UserInfo = owner
	return r
}

// ManifestItem is one resource bundled with a mobile report.
type ManifestItem struct {
	Id   string `json:"Id"`
	Name string `json:"Name"`
	Path string `json:"Path"`
}

// ManifestResourceGroup groups bundled resources of one type, e.g. "Images".
type ManifestResourceGroup struct {
	Type  string         `json:"Type"`
	Items []ManifestItem `json:"Items"`
}

// Manifest lists the resources bundled with a mobile report.
type Manifest struct {
	Resources []ManifestResourceGroup `json:"Resources"`
}

// MobileReport is a mobile (.rsmobile) report.
type MobileReport struct {
	CatalogItem
	AllowCaching bool     `json:"AllowCaching"`
	Manifest     Manifest `json:"Manifest"`

	UserInfo *SystemPolicies `json:"-"`
}

func (r MobileReport) Kind() ReportKind       { return KindMobileReport }
func (r MobileReport) Item() CatalogItem      { return r.CatalogItem }
func (r MobileReport) URNPart() string        { return reportURNPart(r.Id) }
func (r MobileReport) Owner() *SystemPolicies { return r.UserInfo }

func (r MobileReport) WithOwner(owner *SystemPolicies) CatalogReport {
	r.UserInfo = owner
	return r
}

// DataSet is a shared dataset. Identity is Key(), never structural.
type DataSet struct {
	CatalogItem
	HasParameters         bool `json:"HasParameters"`
	QueryExecutionTimeOut int  `json:"QueryExecutionTimeOut"`
}

// URNPart returns the stable identifier fragment of the dataset.
func (d DataSet) URNPart() string {
	return "datasets." + d.Id
}

// DataModelDataSource describes the connection of a Power BI data model.
type DataModelDataSource struct {
	AuthType            *string   `json:"AuthType,omitempty"`
	SupportedAuthTypes  []*string `json:"SupportedAuthTypes,omitempty"`
	Kind                *string   `json:"Kind,omitempty"`
	ModelConnectionName string    `json:"ModelConnectionName"`
	Secret              string    `json:"Secret"`
	Type                *string   `json:"Type,omitempty"`
	Username            string    `json:"Username"`
}

// CredentialsByUser prompts the viewer for credentials.
type CredentialsByUser struct {
	DisplayText             string `json:"DisplayText"`
	UseAsWindowsCredentials bool   `json:"UseAsWindowsCredentials"`
}

// CredentialsInServer stores credentials on the server.
type CredentialsInServer struct {
	UserName                     string `json:"UserName"`
	Password                     string `json:"Password"`
	UseAsWindowsCredentials      bool   `json:"UseAsWindowsCredentials"`
	ImpersonateAuthenticatedUser bool   `json:"ImpersonateAuthenticatedUser"`
}

// MetaData is attached to a data source by ResolveDataSource.
type MetaData struct {
	IsRelational bool `json:"is_relational"`
}

// DataSource is the connection behind a dataset. Identity is Key(), never
// structural. MetaData, Database and Server are nil until resolution.
type DataSource struct {
	CatalogItem
	IsEnabled                                 bool                 `json:"IsEnabled"`
	ConnectionString                          *string              `json:"ConnectionString,omitempty"`
	DataModelDataSource                       *DataModelDataSource `json:"DataModelDataSource,omitempty"`
	DataSourceSubType                         *string              `json:"DataSourceSubType,omitempty"`
	DataSourceType                            *string              `json:"DataSourceType,omitempty"`
	IsOriginalConnectionStringExpressionBased bool                 `json:"IsOriginalConnectionStringExpressionBased"`
	IsConnectionStringOverridden              bool                 `json:"IsConnectionStringOverridden"`
	CredentialsByUser                         *CredentialsByUser   `json:"CredentialsByUser,omitempty"`
	CredentialsInServer                       *CredentialsInServer `json:"CredentialsInServer,omitempty"`
	IsReference                               bool                 `json:"IsReference"`

	MetaData *MetaData `json:"MetaData,omitempty"`
	Database *string   `json:"database,omitempty"`
	Server   *string   `json:"server,omitempty"`
}

// UnmarshalJSON leaves the resolved fields unset whatever the payload says;
// only ResolveDataSource fills them.
func (d *DataSource) UnmarshalJSON(data []byte) error {
	type plain DataSource
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	p.MetaData, p.Database, p.Server = nil, nil, nil
	*d = DataSource(p)
	return nil
}

// Redacted returns a copy without stored passwords or model secrets.
func (d DataSource) Redacted() DataSource {
	if d.CredentialsInServer != nil {
		creds := *d.CredentialsInServer
		creds.Password = ""
		d.CredentialsInServer = &creds
	}
	if d.DataModelDataSource != nil {
		model := *d.DataModelDataSource
		model.Secret = ""
		d.DataModelDataSource = &model
	}
	return d
}

// ConnectionDetails is the raw connection block of a data source payload.
type ConnectionDetails struct {
	Database string `json:"database"`
	Server   string `json:"server"`
}

// Role is a role granted by a system policy.
type Role struct {
	Name        string `json:"Name"`
	Description string `json:"Description"`
}

// SystemPolicies maps a user or group to its system roles. The display name
// is always derived from GroupUserName.
type SystemPolicies struct {
	GroupUserName string `json:"GroupUserName"`
	Roles         []Role `json:"Roles"`
	displayName   string
}

// NewSystemPolicies builds a policy and derives its display name.
func NewSystemPolicies(groupUserName string, roles []Role) SystemPolicies {
	return SystemPolicies{
		GroupUserName: groupUserName,
		Roles:         roles,
		displayName:   deriveDisplayName(groupUserName),
	}
}

// DisplayName returns the last `\`-separated segment of GroupUserName.
func (p SystemPolicies) DisplayName() string {
	if p.displayName == "" {
		return deriveDisplayName(p.GroupUserName)
	}
	return p.displayName
}

// URNPart returns the stable identifier fragment of the user.
func (p SystemPolicies) URNPart() string {
	return "users." + p.GroupUserName
}

// UnmarshalJSON ignores any DisplayName sent by the server.
func (p *SystemPolicies) UnmarshalJSON(data []byte) error {
	var raw struct {
		GroupUserName *string `json:"GroupUserName"`
		Roles         []Role  `json:"Roles"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.GroupUserName == nil {
		return errors.New(`required field "GroupUserName" is missing`)
	}
	*p = NewSystemPolicies(*raw.GroupUserName, raw.Roles)
	return nil
}

// MarshalJSON includes the derived display name.
func (p SystemPolicies) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		GroupUserName string `json:"GroupUserName"`
		Roles         []Role `json:"Roles"`
		DisplayName   string `json:"DisplayName"`
	}{p.GroupUserName, p.Roles, p.DisplayName()})
}

func deriveDisplayName(groupUserName string) string {
	parts := strings.Split(groupUserName, `\`)
	return parts[len(parts)-1]
}

// System describes the report server installation.
type System struct {
	ReportServerAbsoluteUrl string `json:"ReportServerAbsoluteUrl"`
	ReportServerRelativeUrl string `json:"ReportServerRelativeUrl"`
	WebPortalRelativeUrl    string `json:"WebPortalRelativeUrl"`
	ProductName             string `json:"ProductName"`
	ProductVersion          string `json:"ProductVersion"`
	ProductType             string `json:"ProductType"`
	TimeZone                string `json:"TimeZone"`
}
