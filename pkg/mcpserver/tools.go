package mcpserver

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/dradis-tools/dradis-mcp/pkg/dradis"
	"github.com/dradis-tools/dradis-mcp/pkg/jsonutil"
	"github.com/dradis-tools/dradis-mcp/pkg/session"
)

// Presentation hints appended to list results. The Dradis web UI renders
// these resources as flat lists; the hints keep model output consistent
// with that shape.
const (
	vulnListHint      = "Generate the results as a list of '<ID>: <Rating> - <title>'"
	contentBlocksHint = "Output the content blocks in a list, with the ID followed by the fields (even empty fields with no values):"
	docPropertiesHint = "List the following properties with <name>: <value>. Don't change any details of the names and values:"
)

// registerTools adds all Dradis tools to the MCP server.
func (s *Server) registerTools() {
	s.addSetProjectTool()
	s.addGetProjectDetailsTool()
	s.addCreateProjectTool()
	s.addCreateVulnerabilityTool()
	s.addGetVulnerabilitiesTool()
	s.addGetAllVulnerabilityDetailsTool()
	s.addGetVulnerabilityTool()
	s.addUpdateVulnerabilityTool()
	s.addGetContentBlocksTool()
	s.addUpdateContentBlockTool()
	s.addGetDocumentPropertiesTool()
	s.addUpsertDocumentPropertyTool()
}

// ═══════════════════════════════════════════════════════════════════════════
// Project management
// ═══════════════════════════════════════════════════════════════════════════

func (s *Server) addSetProjectTool() {
	s.mcp.AddTool(
		&mcp.Tool{
			Name:  "set_project",
			Title: "Set Current Project",
			Description: `Select the Dradis project all subsequent tools operate on.

Run this FIRST (or create_project): every vulnerability, content-block and
document-property tool is scoped to the current project and fails until one
is selected. The project id is verified against the Dradis server before it
is committed; a nonexistent id leaves the previous selection untouched.

EXAMPLE INPUT: {"project_id": 42}`,
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"project_id": map[string]any{
						"type":        "integer",
						"minimum":     1,
						"description": "The ID of the project to set as current.",
					},
				},
				"required": []string{"project_id"},
			},
			Annotations: &mcp.ToolAnnotations{
				IdempotentHint: true,
				OpenWorldHint:  boolPtr(true),
				Title:          "Set Current Project",
			},
		},
		s.handleSetProject,
	)
}

type setProjectArgs struct {
	ProjectID int `json:"project_id"`
}

func (s *Server) handleSetProject(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args setProjectArgs
	if err := parseArgs(req, &args); err != nil {
		return errorResult(fmt.Sprintf("invalid arguments: %v. Expected 'project_id' (positive integer).", err)), nil
	}
	if args.ProjectID <= 0 {
		return errorResult("project_id must be a positive integer"), nil
	}

	result, err := s.orch.SetProject(ctx, args.ProjectID)
	if err != nil {
		return errorResult(err.Error()), nil
	}
	return jsonResult(result, "")
}

func (s *Server) addGetProjectDetailsTool() {
	s.mcp.AddTool(
		&mcp.Tool{
			Name:  "get_project_details",
			Title: "Get Project Details",
			Description: `Fetch the full record of the current project: name, client, authors,
owners, timestamps, custom fields, and creation state. Requires a current
project (set_project / create_project).`,
			InputSchema: map[string]any{
				"type":       "object",
				"properties": map[string]any{},
			},
			Annotations: &mcp.ToolAnnotations{
				ReadOnlyHint:   true,
				IdempotentHint: true,
				OpenWorldHint:  boolPtr(true),
				Title:          "Get Project Details",
			},
		},
		s.handleGetProjectDetails,
	)
}

func (s *Server) handleGetProjectDetails(ctx context.Context, _ *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	details, err := s.orch.ProjectDetails(ctx)
	if err != nil {
		return errorResult(err.Error()), nil
	}
	return jsonResult(details, "")
}

func (s *Server) addCreateProjectTool() {
	s.mcp.AddTool(
		&mcp.Tool{
			Name:  "create_project",
			Title: "Create Project",
			Description: `Create a new Dradis project and make it the current project.

team_id, report_template_properties_id and template fall back to the
configured defaults when omitted; team_id is required if no default team is
configured. On success the new project automatically becomes the current
project for all subsequent tools.

EXAMPLE INPUT: {"name": "ACME external pentest", "team_id": 3}`,
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"name": map[string]any{
						"type":        "string",
						"minLength":   1,
						"description": "Name of the project.",
					},
					"team_id": map[string]any{
						"type":        "integer",
						"minimum":     1,
						"description": "Team ID. Optional when a default team is configured.",
					},
					"report_template_properties_id": map[string]any{
						"type":        "integer",
						"minimum":     1,
						"description": "Report template properties ID. Optional when a default is configured.",
					},
					"author_ids": map[string]any{
						"type":        "array",
						"items":       map[string]any{"type": "integer"},
						"description": "User IDs to add as project authors.",
					},
					"template": map[string]any{
						"type":        "string",
						"description": "Project template name. Optional when a default is configured.",
					},
				},
				"required": []string{"name"},
			},
			Annotations: &mcp.ToolAnnotations{
				OpenWorldHint: boolPtr(true),
				Title:         "Create Project",
			},
		},
		s.handleCreateProject,
	)
}

type createProjectArgs struct {
	Name                       string `json:"name"`
	TeamID                     int    `json:"team_id"`
	ReportTemplatePropertiesID int    `json:"report_template_properties_id"`
	AuthorIDs                  []int  `json:"author_ids"`
	Template                   string `json:"template"`
}

func (s *Server) handleCreateProject(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args createProjectArgs
	if err := parseArgs(req, &args); err != nil {
		return errorResult(fmt.Sprintf("invalid arguments: %v. Expected 'name' (string) plus optional team/template fields.", err)), nil
	}
	if args.Name == "" {
		return errorResult("name is required and must be a non-empty string"), nil
	}

	result, err := s.orch.CreateProject(ctx, session.CreateProjectSpec{
		Name:                       args.Name,
		TeamID:                     args.TeamID,
		ReportTemplatePropertiesID: args.ReportTemplatePropertiesID,
		AuthorIDs:                  args.AuthorIDs,
		Template:                   args.Template,
	})
	if err != nil {
		return errorResult(err.Error()), nil
	}
	return jsonResult(result, "")
}

// ═══════════════════════════════════════════════════════════════════════════
// Vulnerability management
// ═══════════════════════════════════════════════════════════════════════════

func (s *Server) addCreateVulnerabilityTool() {
	s.mcp.AddTool(
		&mcp.Tool{
			Name:  "create_vulnerability",
			Title: "Create Vulnerability",
			Description: `Create a new vulnerability in the current project.

Accepts one string argument per configured vulnerability field (see the
input schema; the field set is operator-configured, not fixed). Values are
stored verbatim in Dradis; use Textile markup where the report template
expects it. Requires a current project.`,
			InputSchema: s.vulnerabilityCreateSchema(),
			Annotations: &mcp.ToolAnnotations{
				OpenWorldHint: boolPtr(true),
				Title:         "Create Vulnerability",
			},
		},
		s.handleCreateVulnerability,
	)
}

func (s *Server) handleCreateVulnerability(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args map[string]any
	if err := parseArgs(req, &args); err != nil {
		return errorResult(fmt.Sprintf("invalid arguments: %v. Expected one string per vulnerability field.", err)), nil
	}

	fields := make(dradis.FieldBag, len(args))
	for key, value := range args {
		if value == nil {
			continue
		}
		fields[key] = fmt.Sprint(value)
	}
	if len(fields) == 0 {
		return errorResult("at least one vulnerability field is required"), nil
	}

	result, err := s.orch.CreateVulnerability(ctx, fields)
	if err != nil {
		return errorResult(err.Error()), nil
	}
	return jsonResult(result, "")
}

func (s *Server) addGetVulnerabilitiesTool() {
	s.mcp.AddTool(
		&mcp.Tool{
			Name:  "get_vulnerabilities",
			Title: "List Vulnerabilities",
			Description: `List the current project's vulnerabilities in summary form: id, title
and Rating only. 25 items per page; pass 'page' for more. Use
get_all_vulnerability_details for full fields, or get_vulnerability for a
single record.`,
			InputSchema: pageSchema(),
			Annotations: &mcp.ToolAnnotations{
				ReadOnlyHint:   true,
				IdempotentHint: true,
				OpenWorldHint:  boolPtr(true),
				Title:          "List Vulnerabilities",
			},
		},
		s.handleGetVulnerabilities,
	)
}

type pageArgs struct {
	Page int `json:"page"`
}

func (s *Server) handleGetVulnerabilities(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args pageArgs
	if err := parseArgs(req, &args); err != nil {
		return errorResult(fmt.Sprintf("invalid arguments: %v. Expected optional 'page' (positive integer).", err)), nil
	}
	if args.Page < 0 {
		return errorResult("page must be a positive integer"), nil
	}

	result, err := s.orch.Vulnerabilities(ctx, args.Page)
	if err != nil {
		return errorResult(err.Error()), nil
	}
	return jsonResult(result, vulnListHint)
}

func (s *Server) addGetAllVulnerabilityDetailsTool() {
	s.mcp.AddTool(
		&mcp.Tool{
			Name:  "get_all_vulnerability_details",
			Title: "List Vulnerabilities (Full Details)",
			Description: `List the current project's vulnerabilities with the complete field bag
for each, with no projection. Large projects produce large output; prefer
get_vulnerabilities for browsing. 25 items per page.`,
			InputSchema: pageSchema(),
			Annotations: &mcp.ToolAnnotations{
				ReadOnlyHint:   true,
				IdempotentHint: true,
				OpenWorldHint:  boolPtr(true),
				Title:          "List Vulnerabilities (Full Details)",
			},
		},
		s.handleGetAllVulnerabilityDetails,
	)
}

func (s *Server) handleGetAllVulnerabilityDetails(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args pageArgs
	if err := parseArgs(req, &args); err != nil {
		return errorResult(fmt.Sprintf("invalid arguments: %v. Expected optional 'page' (positive integer).", err)), nil
	}
	if args.Page < 0 {
		return errorResult("page must be a positive integer"), nil
	}

	result, err := s.orch.AllVulnerabilityDetails(ctx, args.Page)
	if err != nil {
		return errorResult(err.Error()), nil
	}
	return jsonResult(result, vulnListHint)
}

func (s *Server) addGetVulnerabilityTool() {
	s.mcp.AddTool(
		&mcp.Tool{
			Name:  "get_vulnerability",
			Title: "Get Vulnerability",
			Description: `Fetch a single vulnerability from the current project. The field bag is
flattened to the top level alongside id and author, so every configured
field appears as its own key.

EXAMPLE INPUT: {"vulnerability_id": 17}`,
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"vulnerability_id": map[string]any{
						"type":        "integer",
						"minimum":     1,
						"description": "ID of the vulnerability to retrieve.",
					},
				},
				"required": []string{"vulnerability_id"},
			},
			Annotations: &mcp.ToolAnnotations{
				ReadOnlyHint:   true,
				IdempotentHint: true,
				OpenWorldHint:  boolPtr(true),
				Title:          "Get Vulnerability",
			},
		},
		s.handleGetVulnerability,
	)
}

type getVulnerabilityArgs struct {
	VulnerabilityID int `json:"vulnerability_id"`
}

func (s *Server) handleGetVulnerability(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args getVulnerabilityArgs
	if err := parseArgs(req, &args); err != nil {
		return errorResult(fmt.Sprintf("invalid arguments: %v. Expected 'vulnerability_id' (positive integer).", err)), nil
	}
	if args.VulnerabilityID <= 0 {
		return errorResult("vulnerability_id must be a positive integer"), nil
	}

	vulnerability, err := s.orch.Vulnerability(ctx, args.VulnerabilityID)
	if err != nil {
		return errorResult(err.Error()), nil
	}
	return jsonResult(vulnerability, "")
}

func (s *Server) addUpdateVulnerabilityTool() {
	s.mcp.AddTool(
		&mcp.Tool{
			Name:  "update_vulnerability",
			Title: "Update Vulnerability",
			Description: `Update fields of an existing vulnerability in the current project.

This is a MERGE, not a replace: the current record is fetched first and
only the fields you supply are overwritten; everything else is preserved.
An explicitly supplied empty string clears that field. Send only what you
want to change.

EXAMPLE INPUT: {"issue_id": 17, "Rating": "High"}`,
			InputSchema: s.vulnerabilityUpdateSchema(),
			Annotations: &mcp.ToolAnnotations{
				IdempotentHint: true,
				OpenWorldHint:  boolPtr(true),
				Title:          "Update Vulnerability",
			},
		},
		s.handleUpdateVulnerability,
	)
}

func (s *Server) handleUpdateVulnerability(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args map[string]any
	if err := parseArgs(req, &args); err != nil {
		return errorResult(fmt.Sprintf("invalid arguments: %v. Expected 'issue_id' plus the fields to update.", err)), nil
	}

	issueID, ok := positiveInt(args["issue_id"])
	if !ok {
		return errorResult("issue_id must be a positive integer"), nil
	}
	delete(args, "issue_id")

	fields := make(dradis.FieldBag, len(args))
	for key, value := range args {
		if value == nil {
			continue
		}
		fields[key] = fmt.Sprint(value)
	}
	if len(fields) == 0 {
		return errorResult("supply at least one field to update"), nil
	}

	result, err := s.orch.UpdateVulnerability(ctx, issueID, fields)
	if err != nil {
		return errorResult(err.Error()), nil
	}
	return jsonResult(result, "")
}

// ═══════════════════════════════════════════════════════════════════════════
// Content blocks
// ═══════════════════════════════════════════════════════════════════════════

func (s *Server) addGetContentBlocksTool() {
	s.mcp.AddTool(
		&mcp.Tool{
			Name:  "get_content_blocks",
			Title: "List Content Blocks",
			Description: `List all content blocks in the current project as {id, fields} pairs.
Content blocks hold report boilerplate (scope, conclusions, methodology)
grouped by block_group; update them with update_content_block.`,
			InputSchema: map[string]any{
				"type":       "object",
				"properties": map[string]any{},
			},
			Annotations: &mcp.ToolAnnotations{
				ReadOnlyHint:   true,
				IdempotentHint: true,
				OpenWorldHint:  boolPtr(true),
				Title:          "List Content Blocks",
			},
		},
		s.handleGetContentBlocks,
	)
}

func (s *Server) handleGetContentBlocks(ctx context.Context, _ *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	blocks, err := s.orch.ContentBlocks(ctx)
	if err != nil {
		return errorResult(err.Error()), nil
	}

	data, err := jsonutil.MarshalIndent(blocks, "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling result: %w", err)
	}
	return textResult(contentBlocksHint + " " + string(data)), nil
}

func (s *Server) addUpdateContentBlockTool() {
	s.mcp.AddTool(
		&mcp.Tool{
			Name:  "update_content_block",
			Title: "Update Content Block",
			Description: `Update a content block in the current project.

This is a MERGE: the block's current fields are fetched first and only the
keys present in 'content' are overwritten. Non-string values in 'content'
are ignored.

EXAMPLE INPUT: {"block_id": 5, "block_group": "Conclusions", "content": {"Summary": "No critical findings."}}`,
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"block_id": map[string]any{
						"type":        "integer",
						"minimum":     1,
						"description": "ID of the content block to update.",
					},
					"block_group": map[string]any{
						"type":        "string",
						"minLength":   1,
						"description": "Block group name the block belongs to.",
					},
					"content": map[string]any{
						"type":                 "object",
						"minProperties":        1,
						"additionalProperties": map[string]any{"type": "string"},
						"description":          "Field names and values to overwrite.",
					},
				},
				"required": []string{"block_id", "block_group", "content"},
			},
			Annotations: &mcp.ToolAnnotations{
				IdempotentHint: true,
				OpenWorldHint:  boolPtr(true),
				Title:          "Update Content Block",
			},
		},
		s.handleUpdateContentBlock,
	)
}

type updateContentBlockArgs struct {
	BlockID    int            `json:"block_id"`
	BlockGroup string         `json:"block_group"`
	Content    map[string]any `json:"content"`
}

func (s *Server) handleUpdateContentBlock(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args updateContentBlockArgs
	if err := parseArgs(req, &args); err != nil {
		return errorResult(fmt.Sprintf("invalid arguments: %v. Expected 'block_id', 'block_group' and 'content'.", err)), nil
	}
	if args.BlockID <= 0 {
		return errorResult("block_id must be a positive integer"), nil
	}
	if args.BlockGroup == "" {
		return errorResult("block_group is required and must be a non-empty string"), nil
	}
	if len(args.Content) == 0 {
		return errorResult("content must contain at least one field"), nil
	}

	block, err := s.orch.UpdateContentBlock(ctx, args.BlockID, args.BlockGroup, args.Content)
	if err != nil {
		return errorResult(err.Error()), nil
	}
	return jsonResult(block, "")
}

// ═══════════════════════════════════════════════════════════════════════════
// Document properties
// ═══════════════════════════════════════════════════════════════════════════

func (s *Server) addGetDocumentPropertiesTool() {
	s.mcp.AddTool(
		&mcp.Tool{
			Name:  "get_document_properties",
			Title: "List Document Properties",
			Description: `List all document properties of the current project. Each property is a
single {name: value} mapping (e.g. dradis.client, dradis.project_date).`,
			InputSchema: map[string]any{
				"type":       "object",
				"properties": map[string]any{},
			},
			Annotations: &mcp.ToolAnnotations{
				ReadOnlyHint:   true,
				IdempotentHint: true,
				OpenWorldHint:  boolPtr(true),
				Title:          "List Document Properties",
			},
		},
		s.handleGetDocumentProperties,
	)
}

func (s *Server) handleGetDocumentProperties(ctx context.Context, _ *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	properties, err := s.orch.DocumentProperties(ctx)
	if err != nil {
		return errorResult(err.Error()), nil
	}

	data, err := jsonutil.MarshalIndent(properties, "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling result: %w", err)
	}
	return textResult(docPropertiesHint + " \n" + string(data)), nil
}

func (s *Server) addUpsertDocumentPropertyTool() {
	s.mcp.AddTool(
		&mcp.Tool{
			Name:  "upsert_document_property",
			Title: "Upsert Document Property",
			Description: `Create or update a document property in the current project. The full
property list is scanned for the name first: an existing property is
updated in place, a missing one is created.

EXAMPLE INPUT: {"property_name": "dradis.client", "value": "ACME Corp"}`,
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"property_name": map[string]any{
						"type":        "string",
						"minLength":   1,
						"description": "Name of the property (e.g. dradis.client).",
					},
					"value": map[string]any{
						"type":        "string",
						"description": "Value to set.",
					},
				},
				"required": []string{"property_name", "value"},
			},
			Annotations: &mcp.ToolAnnotations{
				IdempotentHint: true,
				OpenWorldHint:  boolPtr(true),
				Title:          "Upsert Document Property",
			},
		},
		s.handleUpsertDocumentProperty,
	)
}

type upsertDocumentPropertyArgs struct {
	PropertyName string `json:"property_name"`
	Value        string `json:"value"`
}

func (s *Server) handleUpsertDocumentProperty(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args upsertDocumentPropertyArgs
	if err := parseArgs(req, &args); err != nil {
		return errorResult(fmt.Sprintf("invalid arguments: %v. Expected 'property_name' and 'value' (strings).", err)), nil
	}
	if args.PropertyName == "" {
		return errorResult("property_name is required and must be a non-empty string"), nil
	}

	property, err := s.orch.UpsertDocumentProperty(ctx, args.PropertyName, args.Value)
	if err != nil {
		return errorResult(err.Error()), nil
	}
	return jsonResult(property, "")
}

// ---------------------------------------------------------------------------
// Schema helpers
// ---------------------------------------------------------------------------

func pageSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"page": map[string]any{
				"type":        "integer",
				"minimum":     1,
				"description": "Page number for pagination (25 items per page).",
			},
		},
	}
}

// vulnerabilityCreateSchema builds the create_vulnerability input schema
// from the configured field list: one required string property per field.
// With no configured fields it falls back to Title/Description.
func (s *Server) vulnerabilityCreateSchema() map[string]any {
	fields := s.fields
	if len(fields) == 0 {
		fields = []string{"Title", "Description"}
	}

	properties := make(map[string]any, len(fields))
	required := make([]string, 0, len(fields))
	for _, name := range fields {
		properties[name] = map[string]any{
			"type":        "string",
			"description": name + " field",
		}
		required = append(required, name)
	}

	return map[string]any{
		"type":       "object",
		"properties": properties,
		"required":   required,
	}
}

// vulnerabilityUpdateSchema builds the update_vulnerability input schema:
// required issue_id plus one optional string property per configured field.
func (s *Server) vulnerabilityUpdateSchema() map[string]any {
	fields := s.fields
	if len(fields) == 0 {
		fields = []string{"Title", "Description"}
	}

	properties := make(map[string]any, len(fields)+1)
	properties["issue_id"] = map[string]any{
		"type":        "integer",
		"minimum":     1,
		"description": "ID of the vulnerability to update.",
	}
	for _, name := range fields {
		properties[name] = map[string]any{
			"type":        "string",
			"description": name + " field (omit to leave unchanged)",
		}
	}

	return map[string]any{
		"type":       "object",
		"properties": properties,
		"required":   []string{"issue_id"},
	}
}

// positiveInt coerces a JSON number into a positive int.
func positiveInt(v any) (int, bool) {
	f, ok := v.(float64)
	if !ok || f != float64(int(f)) || int(f) <= 0 {
		return 0, false
	}
	return int(f), true
}
