package restapi_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dradis-tools/dradis-mcp/pkg/dradis"
	"github.com/dradis-tools/dradis-mcp/pkg/restapi"
	"github.com/dradis-tools/dradis-mcp/pkg/session"
)

// stubAPI implements session.API with canned responses and optional errors.
type stubAPI struct {
	projectDetailsErr error
	createErr         error
}

func (s *stubAPI) GetProjectDetails(context.Context, int) (*dradis.ProjectDetails, error) {
	if s.projectDetailsErr != nil {
		return nil, s.projectDetailsErr
	}
	return &dradis.ProjectDetails{ID: 42, Name: "ACME external"}, nil
}

func (s *stubAPI) CreateProject(context.Context, dradis.CreateProject) (*dradis.ProjectDetails, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	return &dradis.ProjectDetails{ID: 7, Name: "New"}, nil
}

func (s *stubAPI) GetVulnerabilities(context.Context, int, int) ([]dradis.VulnerabilityListItem, error) {
	return []dradis.VulnerabilityListItem{{ID: 1, Title: "XSS"}}, nil
}

func (s *stubAPI) GetAllVulnerabilityDetails(context.Context, int, int) ([]dradis.VulnerabilityListItem, error) {
	return nil, nil
}

func (s *stubAPI) GetVulnerability(_ context.Context, _, id int) (map[string]any, error) {
	return map[string]any{"id": id}, nil
}

func (s *stubAPI) CreateVulnerability(_ context.Context, _ int, fields dradis.FieldBag) (*dradis.Vulnerability, error) {
	return &dradis.Vulnerability{ID: 99, Fields: fields}, nil
}

func (s *stubAPI) UpdateVulnerability(_ context.Context, _, id int, fields dradis.FieldBag) (*dradis.Vulnerability, error) {
	return &dradis.Vulnerability{ID: id, Fields: fields}, nil
}

func (s *stubAPI) GetContentBlocks(context.Context, int) ([]dradis.ContentBlockSummary, error) {
	return []dradis.ContentBlockSummary{{ID: 5}}, nil
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

func newTestFacade(t *testing.T, api session.API) *httptest.Server {
	t.Helper()
	h := restapi.New(session.New(api, session.Defaults{TeamID: 3}), nil)
	ts := httptest.NewServer(h.Router())
	t.Cleanup(ts.Close)
	return ts
}

func doJSON(t *testing.T, method, url, body string) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	data, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	return resp, data
}

func selectProject(t *testing.T, ts *httptest.Server) {
	t.Helper()
	resp, body := doJSON(t, http.MethodPut, ts.URL+"/api/project", `{"project_id": 42}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("selecting project: status %d, body %s", resp.StatusCode, body)
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Project routes
// ═══════════════════════════════════════════════════════════════════════════

func TestSetProjectRoute(t *testing.T) {
	ts := newTestFacade(t, &stubAPI{})

	resp, body := doJSON(t, http.MethodPut, ts.URL+"/api/project", `{"project_id": 42}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, body %s", resp.StatusCode, body)
	}

	var result struct {
		ProjectID int `json:"project_id"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if result.ProjectID != 42 {
		t.Errorf("project_id = %d, want 42", result.ProjectID)
	}
}

func TestSetProjectRouteRejectsBadID(t *testing.T) {
	ts := newTestFacade(t, &stubAPI{})

	resp, _ := doJSON(t, http.MethodPut, ts.URL+"/api/project", `{"project_id": 0}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}

	resp, _ = doJSON(t, http.MethodPut, ts.URL+"/api/project", `not json`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("invalid JSON: status = %d, want 400", resp.StatusCode)
	}
}

func TestProjectDetailsRoute(t *testing.T) {
	ts := newTestFacade(t, &stubAPI{})
	selectProject(t, ts)

	resp, body := doJSON(t, http.MethodGet, ts.URL+"/api/project", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if !strings.Contains(string(body), "ACME external") {
		t.Errorf("body = %s", body)
	}
}

func TestCreateProjectRoute(t *testing.T) {
	ts := newTestFacade(t, &stubAPI{})

	resp, body := doJSON(t, http.MethodPost, ts.URL+"/api/projects", `{"name": "New"}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, body %s", resp.StatusCode, body)
	}

	resp, _ = doJSON(t, http.MethodPost, ts.URL+"/api/projects", `{}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("missing name: status = %d, want 400", resp.StatusCode)
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Error mapping
// ═══════════════════════════════════════════════════════════════════════════

func TestNoProjectMapsToConflict(t *testing.T) {
	ts := newTestFacade(t, &stubAPI{})

	for _, route := range []string{
		"/api/project", "/api/vulnerabilities", "/api/content-blocks",
		"/api/document-properties",
	} {
		resp, body := doJSON(t, http.MethodGet, ts.URL+route, "")
		if resp.StatusCode != http.StatusConflict {
			t.Errorf("GET %s without project: status = %d, want 409 (body %s)",
				route, resp.StatusCode, body)
		}
	}
}

func TestRemoteErrorStatusPassesThrough(t *testing.T) {
	api := &stubAPI{projectDetailsErr: &dradis.RequestError{
		Status:     http.StatusNotFound,
		StatusText: "Not Found",
		URL:        "https://dradis.example.com/pro/api/projects/42",
		Body:       `{"message":"not found"}`,
	}}
	ts := newTestFacade(t, api)

	resp, _ := doJSON(t, http.MethodPut, ts.URL+"/api/project", `{"project_id": 42}`)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want the remote 404 passed through", resp.StatusCode)
	}
}

func TestNetworkErrorMapsToBadGateway(t *testing.T) {
	api := &stubAPI{projectDetailsErr: &dradis.NetworkError{
		URL: "https://dradis.example.com",
		Err: errors.New("connection refused"),
	}}
	ts := newTestFacade(t, api)

	resp, _ := doJSON(t, http.MethodPut, ts.URL+"/api/project", `{"project_id": 42}`)
	if resp.StatusCode != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", resp.StatusCode)
	}
}

func TestTeamRequiredMapsToConflict(t *testing.T) {
	api := &stubAPI{}
	h := restapi.New(session.New(api, session.Defaults{}), nil) // no default team
	ts := httptest.NewServer(h.Router())
	t.Cleanup(ts.Close)

	resp, _ := doJSON(t, http.MethodPost, ts.URL+"/api/projects", `{"name": "New"}`)
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("status = %d, want 409", resp.StatusCode)
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Vulnerability routes
// ═══════════════════════════════════════════════════════════════════════════

func TestVulnerabilityRoutes(t *testing.T) {
	ts := newTestFacade(t, &stubAPI{})
	selectProject(t, ts)

	resp, body := doJSON(t, http.MethodGet, ts.URL+"/api/vulnerabilities", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list: status = %d", resp.StatusCode)
	}
	if !strings.Contains(string(body), `"items_per_page"`) {
		t.Errorf("list body = %s, want the pagination envelope", body)
	}

	resp, _ = doJSON(t, http.MethodGet, ts.URL+"/api/vulnerabilities?page=abc", "")
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("bad page: status = %d, want 400", resp.StatusCode)
	}

	resp, _ = doJSON(t, http.MethodGet, ts.URL+"/api/vulnerabilities/17", "")
	if resp.StatusCode != http.StatusOK {
		t.Errorf("get one: status = %d", resp.StatusCode)
	}

	resp, _ = doJSON(t, http.MethodGet, ts.URL+"/api/vulnerabilities/abc", "")
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("bad id: status = %d, want 400", resp.StatusCode)
	}

	resp, _ = doJSON(t, http.MethodPost, ts.URL+"/api/vulnerabilities",
		`{"Title": "XSS", "Rating": "High"}`)
	if resp.StatusCode != http.StatusCreated {
		t.Errorf("create: status = %d, want 201", resp.StatusCode)
	}

	resp, _ = doJSON(t, http.MethodPost, ts.URL+"/api/vulnerabilities", `{}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("create with no fields: status = %d, want 400", resp.StatusCode)
	}

	resp, _ = doJSON(t, http.MethodPut, ts.URL+"/api/vulnerabilities/17", `{"Rating": "High"}`)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("update: status = %d", resp.StatusCode)
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Content block and document property routes
// ═══════════════════════════════════════════════════════════════════════════

func TestContentBlockRoutes(t *testing.T) {
	ts := newTestFacade(t, &stubAPI{})
	selectProject(t, ts)

	resp, _ := doJSON(t, http.MethodGet, ts.URL+"/api/content-blocks", "")
	if resp.StatusCode != http.StatusOK {
		t.Errorf("list: status = %d", resp.StatusCode)
	}

	resp, _ = doJSON(t, http.MethodPut, ts.URL+"/api/content-blocks/5",
		`{"block_group": "Conclusions", "content": {"Summary": "ok"}}`)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("update: status = %d", resp.StatusCode)
	}

	resp, _ = doJSON(t, http.MethodPut, ts.URL+"/api/content-blocks/5",
		`{"content": {"Summary": "ok"}}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("missing block_group: status = %d, want 400", resp.StatusCode)
	}
}

func TestDocumentPropertyRoutes(t *testing.T) {
	ts := newTestFacade(t, &stubAPI{})
	selectProject(t, ts)

	resp, body := doJSON(t, http.MethodGet, ts.URL+"/api/document-properties", "")
	if resp.StatusCode != http.StatusOK {
		t.Errorf("list: status = %d", resp.StatusCode)
	}
	if !strings.Contains(string(body), "dradis.client") {
		t.Errorf("list body = %s", body)
	}

	resp, _ = doJSON(t, http.MethodPut, ts.URL+"/api/document-properties/dradis.client",
		`{"value": "ACME Corp"}`)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("upsert: status = %d", resp.StatusCode)
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Middleware
// ═══════════════════════════════════════════════════════════════════════════

func TestRequestIDHeader(t *testing.T) {
	ts := newTestFacade(t, &stubAPI{})

	resp, _ := doJSON(t, http.MethodPost, ts.URL+"/api/projects", `{"name": "New"}`)
	if resp.Header.Get("X-Request-Id") == "" {
		t.Error("response missing generated X-Request-Id")
	}

	req, _ := http.NewRequest(http.MethodPost, ts.URL+"/api/projects",
		strings.NewReader(`{"name": "New"}`))
	req.Header.Set("X-Request-Id", "caller-supplied")
	resp2, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	resp2.Body.Close()
	if got := resp2.Header.Get("X-Request-Id"); got != "caller-supplied" {
		t.Errorf("X-Request-Id = %q, want the caller's id echoed", got)
	}
}
