package session

import (
	"context"
	"fmt"

	"github.com/dradis-tools/dradis-mcp/pkg/defaults"
	"github.com/dradis-tools/dradis-mcp/pkg/dradis"
)

// SetProjectResult confirms a project switch.
type SetProjectResult struct {
	Message   string `json:"message"`
	ProjectID int    `json:"project_id"`
}

// CreateProjectResult carries the creation confirmation and the record.
type CreateProjectResult struct {
	Message string                 `json:"message"`
	Project *dradis.ProjectDetails `json:"project"`
}

// VulnerabilityPage is the envelope both list operations return.
type VulnerabilityPage struct {
	Page            int                            `json:"page"`
	ItemsPerPage    int                            `json:"items_per_page"`
	Vulnerabilities []dradis.VulnerabilityListItem `json:"vulnerabilities"`
}

// VulnerabilityResult carries a write confirmation and the record.
type VulnerabilityResult struct {
	Message       string                `json:"message"`
	Vulnerability *dradis.Vulnerability `json:"vulnerability"`
}

// SetProject validates that the project exists remotely, then commits it
// as the current project. Validate-before-commit: if the remote fetch
// fails, the session is left unchanged (including "unset").
func (o *Orchestrator) SetProject(ctx context.Context, projectID int) (*SetProjectResult, error) {
	if projectID <= 0 {
		return nil, ErrInvalidProjectID
	}
	if _, err := o.api.GetProjectDetails(ctx, projectID); err != nil {
		return nil, err
	}
	o.projectID = projectID
	return &SetProjectResult{
		Message:   fmt.Sprintf("Project ID set to %d", projectID),
		ProjectID: projectID,
	}, nil
}

// CreateProjectSpec are the caller-supplied project creation arguments.
// Unset team/template values fall back to the configured defaults.
type CreateProjectSpec struct {
	Name                       string
	TeamID                     int
	ReportTemplatePropertiesID int
	AuthorIDs                  []int
	Template                   string
}

// CreateProject applies configured defaults, creates the project, and on
// success adopts the new project as current, overwriting any prior value.
// The session is untouched when creation fails.
func (o *Orchestrator) CreateProject(ctx context.Context, spec CreateProjectSpec) (*CreateProjectResult, error) {
	if spec.TeamID == 0 {
		spec.TeamID = o.defaults.TeamID
	}
	if spec.ReportTemplatePropertiesID == 0 {
		spec.ReportTemplatePropertiesID = o.defaults.TemplateID
	}
	if spec.Template == "" {
		spec.Template = o.defaults.Template
	}
	if spec.TeamID == 0 {
		return nil, ErrTeamRequired
	}

	project, err := o.api.CreateProject(ctx, dradis.CreateProject{
		Name:                       spec.Name,
		TeamID:                     spec.TeamID,
		ReportTemplatePropertiesID: spec.ReportTemplatePropertiesID,
		AuthorIDs:                  spec.AuthorIDs,
		Template:                   spec.Template,
	})
	if err != nil {
		return nil, err
	}

	o.projectID = project.ID // a project you just created becomes current
	return &CreateProjectResult{
		Message: fmt.Sprintf("Project created successfully with ID %d", project.ID),
		Project: project,
	}, nil
}

// ProjectDetails fetches the current project's record.
func (o *Orchestrator) ProjectDetails(ctx context.Context) (*dradis.ProjectDetails, error) {
	projectID, err := o.requireProject()
	if err != nil {
		return nil, err
	}
	return o.api.GetProjectDetails(ctx, projectID)
}

// Vulnerabilities lists the current project's vulnerabilities in the
// narrow {id, title, Rating} projection.
func (o *Orchestrator) Vulnerabilities(ctx context.Context, page int) (*VulnerabilityPage, error) {
	projectID, err := o.requireProject()
	if err != nil {
		return nil, err
	}
	items, err := o.api.GetVulnerabilities(ctx, projectID, page)
	if err != nil {
		return nil, err
	}
	return vulnerabilityPage(page, items), nil
}

// AllVulnerabilityDetails lists the current project's vulnerabilities
// with full field bags.
func (o *Orchestrator) AllVulnerabilityDetails(ctx context.Context, page int) (*VulnerabilityPage, error) {
	projectID, err := o.requireProject()
	if err != nil {
		return nil, err
	}
	items, err := o.api.GetAllVulnerabilityDetails(ctx, projectID, page)
	if err != nil {
		return nil, err
	}
	return vulnerabilityPage(page, items), nil
}

func vulnerabilityPage(page int, items []dradis.VulnerabilityListItem) *VulnerabilityPage {
	if page <= 0 {
		page = 1
	}
	return &VulnerabilityPage{
		Page:            page,
		ItemsPerPage:    defaults.ItemsPerPage,
		Vulnerabilities: items,
	}
}

// Vulnerability fetches one vulnerability, flattened to
// {id, author, <field>: <value>, ...}.
func (o *Orchestrator) Vulnerability(ctx context.Context, vulnerabilityID int) (map[string]any, error) {
	projectID, err := o.requireProject()
	if err != nil {
		return nil, err
	}
	return o.api.GetVulnerability(ctx, projectID, vulnerabilityID)
}

// CreateVulnerability creates a new vulnerability from the field bag.
func (o *Orchestrator) CreateVulnerability(ctx context.Context, fields dradis.FieldBag) (*VulnerabilityResult, error) {
	projectID, err := o.requireProject()
	if err != nil {
		return nil, err
	}
	created, err := o.api.CreateVulnerability(ctx, projectID, fields)
	if err != nil {
		return nil, err
	}
	return &VulnerabilityResult{
		Message:       "Vulnerability created successfully",
		Vulnerability: created,
	}, nil
}

// UpdateVulnerability merge-updates an existing vulnerability.
func (o *Orchestrator) UpdateVulnerability(ctx context.Context, issueID int, fields dradis.FieldBag) (*VulnerabilityResult, error) {
	projectID, err := o.requireProject()
	if err != nil {
		return nil, err
	}
	updated, err := o.api.UpdateVulnerability(ctx, projectID, issueID, fields)
	if err != nil {
		return nil, err
	}
	return &VulnerabilityResult{
		Message:       "Vulnerability updated successfully",
		Vulnerability: updated,
	}, nil
}

// ContentBlocks lists the current project's content blocks.
func (o *Orchestrator) ContentBlocks(ctx context.Context) ([]dradis.ContentBlockSummary, error) {
	projectID, err := o.requireProject()
	if err != nil {
		return nil, err
	}
	return o.api.GetContentBlocks(ctx, projectID)
}

// UpdateContentBlock merge-updates a content block.
func (o *Orchestrator) UpdateContentBlock(ctx context.Context, blockID int, blockGroup string, content map[string]any) (*dradis.ContentBlock, error) {
	projectID, err := o.requireProject()
	if err != nil {
		return nil, err
	}
	return o.api.UpdateContentBlock(ctx, projectID, blockID, blockGroup, content)
}

// DocumentProperties lists the current project's document properties.
func (o *Orchestrator) DocumentProperties(ctx context.Context) ([]dradis.DocumentProperty, error) {
	projectID, err := o.requireProject()
	if err != nil {
		return nil, err
	}
	return o.api.GetDocumentProperties(ctx, projectID)
}

// UpsertDocumentProperty creates or updates a document property.
func (o *Orchestrator) UpsertDocumentProperty(ctx context.Context, name, value string) (dradis.DocumentProperty, error) {
	projectID, err := o.requireProject()
	if err != nil {
		return nil, err
	}
	return o.api.UpsertDocumentProperty(ctx, projectID, name, value)
}
