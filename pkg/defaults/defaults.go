// Package defaults provides canonical default values for the entire codebase.
// This is the SINGLE SOURCE OF TRUTH for runtime configuration defaults.
//
// Usage:
//
//	req.Header.Set("Content-Type", defaults.ContentTypeJSON)
//	cfg.Timeout = defaults.HTTPTimeout
//
// DO NOT hardcode values like `Timeout: 30 * time.Second` anywhere.
// Reference the appropriate constant from this package instead.
package defaults

import "time"

// ToolName is the canonical name used in User-Agent strings, logger names
// and metric namespaces.
const ToolName = "dradis-mcp"

// Version is the current dradis-mcp version.
const Version = "2.1.0"

// ============================================================================
// REMOTE API
// ============================================================================

const (
	// APIPrefix is the path prefix of every Dradis Pro REST endpoint.
	APIPrefix = "/pro/api"

	// ProjectHeader carries the current project id on project-scoped calls.
	// The header name is part of the Dradis wire contract.
	ProjectHeader = "Dradis-Project-Id"

	// ContentTypeJSON is the content type sent on every API request.
	ContentTypeJSON = "application/json"

	// ItemsPerPage is the fixed page size the Dradis issue list endpoint
	// returns. Reported in list envelopes so clients can paginate.
	ItemsPerPage = 25
)

// ============================================================================
// HTTP CLIENT
// ============================================================================

const (
	// HTTPTimeout is the total request timeout for Dradis API calls.
	HTTPTimeout = 30 * time.Second

	// DialTimeout is the timeout for establishing TCP connections.
	DialTimeout = 10 * time.Second

	// TLSHandshakeTimeout bounds the TLS handshake.
	TLSHandshakeTimeout = 10 * time.Second

	// IdleConnTimeout is how long idle connections stay pooled.
	IdleConnTimeout = 90 * time.Second

	// MaxIdleConns is the connection pool size. The server talks to a
	// single Dradis host, so a small pool is plenty.
	MaxIdleConns = 10
)

// ============================================================================
// SERVER
// ============================================================================

const (
	// ShutdownTimeout bounds graceful HTTP server shutdown.
	ShutdownTimeout = 15 * time.Second

	// ReadHeaderTimeout protects the HTTP transport against slowloris.
	ReadHeaderTimeout = 10 * time.Second
)

// ============================================================================
// ENVIRONMENT VARIABLES
// ============================================================================

const (
	// EnvURL is the Dradis instance base URL (required).
	EnvURL = "DRADIS_URL"

	// EnvAPIToken is the Dradis API token (required).
	EnvAPIToken = "DRADIS_API_TOKEN"

	// EnvDefaultTeamID is the default team id for project creation.
	EnvDefaultTeamID = "DRADIS_DEFAULT_TEAM_ID"

	// EnvDefaultTemplateID is the default report template properties id.
	EnvDefaultTemplateID = "DRADIS_DEFAULT_TEMPLATE_ID"

	// EnvDefaultTemplate is the default project template name.
	EnvDefaultTemplate = "DRADIS_DEFAULT_TEMPLATE"

	// EnvVulnerabilityParameters is the comma-separated ordered list of
	// vulnerability field names driving tool schemas and the field codec.
	EnvVulnerabilityParameters = "DRADIS_VULNERABILITY_PARAMETERS"

	// EnvHTTPAddr is the HTTP listen address (same as --http).
	EnvHTTPAddr = "DRADIS_MCP_HTTP_ADDR"

	// EnvConfigFile points at an optional YAML configuration file.
	EnvConfigFile = "DRADIS_MCP_CONFIG"

	// EnvOTLPEndpoint enables OTLP trace export when set (host:port).
	EnvOTLPEndpoint = "DRADIS_MCP_OTLP_ENDPOINT"
)
