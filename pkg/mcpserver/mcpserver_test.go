package mcpserver_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/dradis-tools/dradis-mcp/pkg/dradis"
	"github.com/dradis-tools/dradis-mcp/pkg/mcpserver"
	"github.com/dradis-tools/dradis-mcp/pkg/session"
)

// stubAPI implements session.API with canned responses.
type stubAPI struct {
	projectDetails *dradis.ProjectDetails
}

func (s *stubAPI) GetProjectDetails(context.Context, int) (*dradis.ProjectDetails, error) {
	return s.projectDetails, nil
}

func (s *stubAPI) CreateProject(context.Context, dradis.CreateProject) (*dradis.ProjectDetails, error) {
	return s.projectDetails, nil
}

func (s *stubAPI) GetVulnerabilities(context.Context, int, int) ([]dradis.VulnerabilityListItem, error) {
	return []dradis.VulnerabilityListItem{
		{ID: 1, Title: "XSS", Fields: dradis.FieldBag{"Rating": "High"}},
	}, nil
}

func (s *stubAPI) GetAllVulnerabilityDetails(context.Context, int, int) ([]dradis.VulnerabilityListItem, error) {
	return nil, nil
}

func (s *stubAPI) GetVulnerability(_ context.Context, _, id int) (map[string]any, error) {
	return map[string]any{"id": id, "Title": "XSS"}, nil
}

func (s *stubAPI) CreateVulnerability(_ context.Context, _ int, fields dradis.FieldBag) (*dradis.Vulnerability, error) {
	return &dradis.Vulnerability{ID: 99, Fields: fields}, nil
}

func (s *stubAPI) UpdateVulnerability(_ context.Context, _, id int, fields dradis.FieldBag) (*dradis.Vulnerability, error) {
	return &dradis.Vulnerability{ID: id, Fields: fields}, nil
}

func (s *stubAPI) GetContentBlocks(context.Context, int) ([]dradis.ContentBlockSummary, error) {
	return []dradis.ContentBlockSummary{{ID: 5, Fields: dradis.FieldBag{"Summary": "s"}}}, nil
}

func (s *stubAPI) UpdateContentBlock(_ context.Context, _, id int, group string, _ map[string]any) (*dradis.ContentBlock, error) {
	return &dradis.ContentBlock{ID: id, BlockGroup: group}, nil
}

func (s *stubAPI) GetDocumentProperties(context.Context, int) ([]dradis.DocumentProperty, error) {
	return []dradis.DocumentProperty{{"dradis.client": "ACME"}}, nil
}

func (s *stubAPI) UpsertDocumentProperty(_ context.Context, _ int, name, value string) (dradis.DocumentProperty, error) {
	return dradis.DocumentProperty{name: value}, nil
}

func newTestServer(fields []string) *mcpserver.Server {
	orch := session.New(
		&stubAPI{projectDetails: &dradis.ProjectDetails{ID: 42, Name: "ACME external"}},
		session.Defaults{TeamID: 3},
	)
	return mcpserver.New(&mcpserver.Config{
		Orchestrator:        orch,
		VulnerabilityFields: fields,
	})
}

// newTestSession creates a connected client↔server session for testing.
func newTestSession(t *testing.T, srv *mcpserver.Server) *mcp.ClientSession {
	t.Helper()

	clientTransport, serverTransport := mcp.NewInMemoryTransports()

	client := mcp.NewClient(&mcp.Implementation{
		Name:    "test-client",
		Version: "0.0.1",
	}, nil)

	ctx := context.Background()

	go func() {
		// Server errors surface through the client-side assertions.
		_ = srv.MCPServer().Run(ctx, serverTransport)
	}()

	cs, err := client.Connect(ctx, clientTransport, nil)
	if err != nil {
		t.Fatalf("client.Connect: %v", err)
	}
	t.Cleanup(func() { cs.Close() })
	return cs
}

func callTool(t *testing.T, cs *mcp.ClientSession, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	result, err := cs.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      name,
		Arguments: args,
	})
	if err != nil {
		t.Fatalf("CallTool(%s): %v", name, err)
	}
	return result
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if len(result.Content) == 0 {
		t.Fatal("result has no content")
	}
	text, ok := result.Content[0].(*mcp.TextContent)
	if !ok {
		t.Fatalf("content[0] is %T, want *mcp.TextContent", result.Content[0])
	}
	return text.Text
}

// ═══════════════════════════════════════════════════════════════════════════
// Server creation and registration
// ═══════════════════════════════════════════════════════════════════════════

func TestNew(t *testing.T) {
	srv := newTestServer(nil)
	if srv == nil {
		t.Fatal("New() returned nil")
	}
	if srv.MCPServer() == nil {
		t.Fatal("MCPServer() returned nil")
	}
}

func TestListTools(t *testing.T) {
	cs := newTestSession(t, newTestServer(nil))

	result, err := cs.ListTools(context.Background(), &mcp.ListToolsParams{})
	if err != nil {
		t.Fatalf("ListTools: %v", err)
	}

	expectedTools := []string{
		"set_project", "get_project_details", "create_project",
		"create_vulnerability", "get_vulnerabilities",
		"get_all_vulnerability_details", "get_vulnerability",
		"update_vulnerability", "get_content_blocks", "update_content_block",
		"get_document_properties", "upsert_document_property",
	}

	if len(result.Tools) != len(expectedTools) {
		t.Errorf("got %d tools, want %d", len(result.Tools), len(expectedTools))
		for _, tool := range result.Tools {
			t.Logf("  tool: %s", tool.Name)
		}
	}

	toolNames := make(map[string]bool)
	for _, tool := range result.Tools {
		toolNames[tool.Name] = true
	}
	for _, name := range expectedTools {
		if !toolNames[name] {
			t.Errorf("missing tool: %s", name)
		}
	}
}

func TestToolsHaveDescriptionsAndSchemas(t *testing.T) {
	cs := newTestSession(t, newTestServer(nil))

	result, err := cs.ListTools(context.Background(), &mcp.ListToolsParams{})
	if err != nil {
		t.Fatalf("ListTools: %v", err)
	}

	for _, tool := range result.Tools {
		if tool.Description == "" {
			t.Errorf("tool %q has empty description", tool.Name)
		}
		if tool.InputSchema == nil {
			t.Errorf("tool %q has nil input schema", tool.Name)
		}
		if tool.Annotations == nil {
			t.Errorf("tool %q has nil annotations", tool.Name)
		}
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Tool behavior
// ═══════════════════════════════════════════════════════════════════════════

func TestProjectScopedToolsFailWithoutProject(t *testing.T) {
	cs := newTestSession(t, newTestServer(nil))

	for _, name := range []string{
		"get_project_details", "get_vulnerabilities", "get_content_blocks",
		"get_document_properties",
	} {
		result := callTool(t, cs, name, nil)
		if !result.IsError {
			t.Errorf("%s without a project must return IsError", name)
			continue
		}
		if text := resultText(t, result); !strings.Contains(text, "no project set") {
			t.Errorf("%s error = %q, want it to mention the missing project", name, text)
		}
	}
}

func TestSetProjectThenGetDetails(t *testing.T) {
	cs := newTestSession(t, newTestServer(nil))

	result := callTool(t, cs, "set_project", map[string]any{"project_id": 42})
	if result.IsError {
		t.Fatalf("set_project failed: %s", resultText(t, result))
	}
	if text := resultText(t, result); !strings.Contains(text, "42") {
		t.Errorf("set_project result = %q, want the project id echoed", text)
	}

	result = callTool(t, cs, "get_project_details", nil)
	if result.IsError {
		t.Fatalf("get_project_details failed: %s", resultText(t, result))
	}
	if text := resultText(t, result); !strings.Contains(text, "ACME external") {
		t.Errorf("details = %q, want the project name", text)
	}
}

func TestSetProjectRejectsBadID(t *testing.T) {
	cs := newTestSession(t, newTestServer(nil))

	result := callTool(t, cs, "set_project", map[string]any{"project_id": 0})
	if !result.IsError {
		t.Fatal("set_project with id 0 must return IsError")
	}
}

func TestGetVulnerabilitiesIncludesHint(t *testing.T) {
	cs := newTestSession(t, newTestServer(nil))
	callTool(t, cs, "set_project", map[string]any{"project_id": 42})

	result := callTool(t, cs, "get_vulnerabilities", nil)
	if result.IsError {
		t.Fatalf("get_vulnerabilities failed: %s", resultText(t, result))
	}
	text := resultText(t, result)
	if !strings.Contains(text, `"items_per_page"`) {
		t.Errorf("result = %q, want the pagination envelope", text)
	}
	if !strings.Contains(text, "<ID>: <Rating> - <title>") {
		t.Errorf("result = %q, want the presentation hint appended", text)
	}
}

func TestCreateVulnerability(t *testing.T) {
	cs := newTestSession(t, newTestServer([]string{"Title", "Rating"}))
	callTool(t, cs, "set_project", map[string]any{"project_id": 42})

	result := callTool(t, cs, "create_vulnerability", map[string]any{
		"Title":  "XSS",
		"Rating": "High",
	})
	if result.IsError {
		t.Fatalf("create_vulnerability failed: %s", resultText(t, result))
	}
	if text := resultText(t, result); !strings.Contains(text, "created successfully") {
		t.Errorf("result = %q", text)
	}
}

func TestCreateVulnerabilityRequiresFields(t *testing.T) {
	cs := newTestSession(t, newTestServer(nil))
	callTool(t, cs, "set_project", map[string]any{"project_id": 42})

	result := callTool(t, cs, "create_vulnerability", nil)
	if !result.IsError {
		t.Fatal("create_vulnerability with no fields must return IsError")
	}
}

func TestUpdateVulnerabilityRequiresIssueID(t *testing.T) {
	cs := newTestSession(t, newTestServer(nil))
	callTool(t, cs, "set_project", map[string]any{"project_id": 42})

	result := callTool(t, cs, "update_vulnerability", map[string]any{"Rating": "High"})
	if !result.IsError {
		t.Fatal("update_vulnerability without issue_id must return IsError")
	}

	result = callTool(t, cs, "update_vulnerability", map[string]any{
		"issue_id": 17,
		"Rating":   "High",
	})
	if result.IsError {
		t.Fatalf("update_vulnerability failed: %s", resultText(t, result))
	}
}

func TestContentBlockTools(t *testing.T) {
	cs := newTestSession(t, newTestServer(nil))
	callTool(t, cs, "set_project", map[string]any{"project_id": 42})

	result := callTool(t, cs, "get_content_blocks", nil)
	if result.IsError {
		t.Fatalf("get_content_blocks failed: %s", resultText(t, result))
	}
	if text := resultText(t, result); !strings.HasPrefix(text, "Output the content blocks") {
		t.Errorf("result = %q, want the hint as prefix", text)
	}

	result = callTool(t, cs, "update_content_block", map[string]any{
		"block_id":    5,
		"block_group": "Conclusions",
		"content":     map[string]any{"Summary": "done"},
	})
	if result.IsError {
		t.Fatalf("update_content_block failed: %s", resultText(t, result))
	}

	result = callTool(t, cs, "update_content_block", map[string]any{
		"block_id": 5,
		"content":  map[string]any{"Summary": "done"},
	})
	if !result.IsError {
		t.Error("update_content_block without block_group must return IsError")
	}
}

func TestDocumentPropertyTools(t *testing.T) {
	cs := newTestSession(t, newTestServer(nil))
	callTool(t, cs, "set_project", map[string]any{"project_id": 42})

	result := callTool(t, cs, "get_document_properties", nil)
	if result.IsError {
		t.Fatalf("get_document_properties failed: %s", resultText(t, result))
	}
	if text := resultText(t, result); !strings.HasPrefix(text, "List the following properties") {
		t.Errorf("result = %q, want the hint as prefix", text)
	}

	result = callTool(t, cs, "upsert_document_property", map[string]any{
		"property_name": "dradis.client",
		"value":         "ACME Corp",
	})
	if result.IsError {
		t.Fatalf("upsert_document_property failed: %s", resultText(t, result))
	}

	result = callTool(t, cs, "upsert_document_property", map[string]any{"value": "x"})
	if !result.IsError {
		t.Error("upsert_document_property without property_name must return IsError")
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// HTTP transport
// ═══════════════════════════════════════════════════════════════════════════

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(nil)
	ts := httptest.NewServer(srv.HTTPHandler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/health")
	if err != nil {
		t.Fatalf("GET /health: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("before MarkReady: status = %d, want 503", resp.StatusCode)
	}

	srv.MarkReady()
	resp, err = http.Get(ts.URL + "/health")
	if err != nil {
		t.Fatalf("GET /health: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("after MarkReady: status = %d, want 200", resp.StatusCode)
	}
}

func TestHealthEndpointRejectsPost(t *testing.T) {
	srv := newTestServer(nil)
	ts := httptest.NewServer(srv.HTTPHandler())
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/health", "application/json", nil)
	if err != nil {
		t.Fatalf("POST /health: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", resp.StatusCode)
	}
}

func TestCORSPreflight(t *testing.T) {
	srv := newTestServer(nil)
	ts := httptest.NewServer(srv.HTTPHandler())
	defer ts.Close()

	req, _ := http.NewRequest(http.MethodOptions, ts.URL+"/mcp", nil)
	req.Header.Set("Origin", "https://example.com")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("OPTIONS /mcp: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("status = %d, want 204", resp.StatusCode)
	}
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "https://example.com" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}
}
