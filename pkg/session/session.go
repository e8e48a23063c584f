// Package session holds the per-process Dradis session state and gates
// every project-scoped operation on it.
//
// The Orchestrator is the single source of truth for "which project am I
// operating on". It validates preconditions before any remote call is
// attempted: precondition failures (ErrNoProject and friends) short-circuit
// with zero network I/O, which keeps them cheaply distinguishable from
// remote failures.
//
// Concurrency: the current project id is a single unlocked cell. MCP hosts
// run one tool call to completion before dispatching the next, so the
// orchestrator assumes single-flight access. If the surrounding host ever
// dispatches concurrent calls, the client's read-then-merge updates can
// lose a concurrent write (see the dradis package comment); the remote API
// offers no concurrency token, so this is documented rather than papered
// over with a local lock that could not fix the remote half anyway.
package session

import (
	"context"

	"github.com/dradis-tools/dradis-mcp/pkg/dradis"
)

// API is the slice of the Dradis client the orchestrator consumes.
// Tests substitute a mock to assert call counts.
type API interface {
	GetProjectDetails(ctx context.Context, projectID int) (*dradis.ProjectDetails, error)
	CreateProject(ctx context.Context, project dradis.CreateProject) (*dradis.ProjectDetails, error)
	GetVulnerabilities(ctx context.Context, projectID, page int) ([]dradis.VulnerabilityListItem, error)
	GetAllVulnerabilityDetails(ctx context.Context, projectID, page int) ([]dradis.VulnerabilityListItem, error)
	GetVulnerability(ctx context.Context, projectID, vulnerabilityID int) (map[string]any, error)
	CreateVulnerability(ctx context.Context, projectID int, fields dradis.FieldBag) (*dradis.Vulnerability, error)
	UpdateVulnerability(ctx context.Context, projectID, issueID int, fields dradis.FieldBag) (*dradis.Vulnerability, error)
	GetContentBlocks(ctx context.Context, projectID int) ([]dradis.ContentBlockSummary, error)
	UpdateContentBlock(ctx context.Context, projectID, blockID int, blockGroup string, content map[string]any) (*dradis.ContentBlock, error)
	GetDocumentProperties(ctx context.Context, projectID int) ([]dradis.DocumentProperty, error)
	UpsertDocumentProperty(ctx context.Context, projectID int, name, value string) (dradis.DocumentProperty, error)
}

// Defaults are the configured fallbacks applied during project creation.
type Defaults struct {
	TeamID     int
	TemplateID int
	Template   string
}

// Orchestrator owns the current-project cell and delegates validated
// operations to the API client. Construct one per server lifetime.
type Orchestrator struct {
	api       API
	defaults  Defaults
	projectID int // 0 = unset; never reset except process restart
}

// New creates an Orchestrator with no current project.
func New(api API, defaults Defaults) *Orchestrator {
	return &Orchestrator{api: api, defaults: defaults}
}

// CurrentProjectID returns the current project id, or 0 when unset.
func (o *Orchestrator) CurrentProjectID() int { return o.projectID }

// requireProject is the precondition gate for project-scoped operations.
func (o *Orchestrator) requireProject() (int, error) {
	if o.projectID == 0 {
		return 0, ErrNoProject
	}
	return o.projectID, nil
}
