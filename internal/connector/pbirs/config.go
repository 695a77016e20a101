package pbirs

import (
	"fmt"
	"time"

	"github.com/bmatcuk/doublestar/v4"
)

// Defaults applied by Validate.
const (
	DefaultWorkstationName = "localhost"
	DefaultPlatformName    = "powerbireportserver"
	DefaultScanTimeout     = 60
	DefaultRateLimit       = 10.0
)

// Config holds report server connection configuration.
type Config struct {
	// Username is the Windows account name (without domain).
	Username string `json:"username" yaml:"username"`

	// Password is the Windows account password.
	Password string `json:"password" yaml:"password"`

	// WorkstationName is the report server host; it also qualifies the account.
	WorkstationName string `json:"workstation_name" yaml:"workstation_name"`

	// ReportVirtualDirectoryName is the web portal virtual directory (e.g. "Reports").
	ReportVirtualDirectoryName string `json:"report_virtual_directory_name" yaml:"report_virtual_directory_name"`

	// ReportServerVirtualDirectoryName is the report server virtual directory (e.g. "ReportServer").
	ReportServerVirtualDirectoryName string `json:"report_server_virtual_directory_name" yaml:"report_server_virtual_directory_name"`

	// DatasetTypeMapping maps data source type strings to target platforms.
	// A type present here is treated as relational.
	DatasetTypeMapping map[string]string `json:"dataset_type_mapping" yaml:"dataset_type_mapping"`

	// ScanTimeout is kept for config compatibility; the active pipeline does
	// not poll scan jobs.
	ScanTimeout int `json:"scan_timeout" yaml:"scan_timeout"`

	// PlatformName prefixes work unit ids and scopes dashboard URNs.
	PlatformName string `json:"platform_name,omitempty" yaml:"platform_name,omitempty"`

	// ReportPattern filters reports by catalog path.
	ReportPattern ReportPattern `json:"report_pattern,omitempty" yaml:"report_pattern,omitempty"`

	// RateLimit caps outbound requests per second.
	RateLimit float64 `json:"rate_limit,omitempty" yaml:"rate_limit,omitempty"`

	// RequestTimeout bounds a single request. Zero disables the timeout.
	RequestTimeout time.Duration `json:"request_timeout,omitempty" yaml:"request_timeout,omitempty"`
}

// ReportPattern holds doublestar globs matched against report paths.
// An empty Allow list allows everything; Deny wins over Allow.
type ReportPattern struct {
	Allow []string `json:"allow,omitempty" yaml:"allow,omitempty"`
	Deny  []string `json:"deny,omitempty" yaml:"deny,omitempty"`
}

// Validate checks required fields and applies defaults.
func (c *Config) Validate() error {
	if c.Username == "" {
		return &ValidationError{Field: "username", Message: "required"}
	}
	if c.Password == "" {
		return &ValidationError{Field: "password", Message: "required"}
	}
	if c.ReportVirtualDirectoryName == "" {
		return &ValidationError{Field: "report_virtual_directory_name", Message: "required"}
	}
	if c.ReportServerVirtualDirectoryName == "" {
		return &ValidationError{Field: "report_server_virtual_directory_name", Message: "required"}
	}
	if c.WorkstationName == "" {
		c.WorkstationName = DefaultWorkstationName
	}
	if c.ScanTimeout <= 0 {
		c.ScanTimeout = DefaultScanTimeout
	}
	if c.PlatformName == "" {
		c.PlatformName = DefaultPlatformName
	}
	if c.RateLimit <= 0 {
		c.RateLimit = DefaultRateLimit
	}
	if c.DatasetTypeMapping == nil {
		c.DatasetTypeMapping = map[string]string{}
	}
	for _, p := range append(append([]string{}, c.ReportPattern.Allow...), c.ReportPattern.Deny...) {
		if !doublestar.ValidatePattern(p) {
			return &ValidationError{Field: "report_pattern", Message: fmt.Sprintf("invalid pattern %q", p)}
		}
	}
	return nil
}

// BaseAPIURL returns the REST v2.0 root, always ending in a slash.
func (c *Config) BaseAPIURL() string {
	return fmt.Sprintf("http://%s/%s/api/v2.0/", c.WorkstationName, c.ReportVirtualDirectoryName)
}

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}
