// Package restapi is the HTTP/REST facade mirroring the MCP tool surface.
// It shares the session orchestrator with the MCP server, so a project
// selected over REST is current for MCP calls and vice versa; there is
// exactly one session per process.
package restapi

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/dradis-tools/dradis-mcp/pkg/defaults"
	"github.com/dradis-tools/dradis-mcp/pkg/dradis"
	"github.com/dradis-tools/dradis-mcp/pkg/jsonutil"
	"github.com/dradis-tools/dradis-mcp/pkg/session"
)

// Handler serves the REST facade.
type Handler struct {
	orch   *session.Orchestrator
	logger *slog.Logger
}

// New creates the facade handler. A nil logger falls back to slog.Default().
func New(orch *session.Orchestrator, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{orch: orch, logger: logger}
}

// Router returns the facade's routes mounted under /api/, wrapped in the
// request-id and access-log middleware.
func (h *Handler) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("PUT /api/project", h.setProject)
	mux.HandleFunc("GET /api/project", h.projectDetails)
	mux.HandleFunc("POST /api/projects", h.createProject)

	mux.HandleFunc("GET /api/vulnerabilities", h.vulnerabilities)
	mux.HandleFunc("GET /api/vulnerabilities/all", h.allVulnerabilityDetails)
	mux.HandleFunc("GET /api/vulnerabilities/{id}", h.vulnerability)
	mux.HandleFunc("POST /api/vulnerabilities", h.createVulnerability)
	mux.HandleFunc("PUT /api/vulnerabilities/{id}", h.updateVulnerability)

	mux.HandleFunc("GET /api/content-blocks", h.contentBlocks)
	mux.HandleFunc("PUT /api/content-blocks/{id}", h.updateContentBlock)

	mux.HandleFunc("GET /api/document-properties", h.documentProperties)
	mux.HandleFunc("PUT /api/document-properties/{name}", h.upsertDocumentProperty)

	return withLogging(h.logger, mux)
}

// ---------------------------------------------------------------------------
// Handlers
// ---------------------------------------------------------------------------

func (h *Handler) setProject(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ProjectID int `json:"project_id"`
	}
	if !h.decode(w, r, &body) {
		return
	}
	if body.ProjectID <= 0 {
		h.writeError(w, http.StatusBadRequest, "project_id must be a positive integer")
		return
	}

	result, err := h.orch.SetProject(r.Context(), body.ProjectID)
	if err != nil {
		h.writeOperationError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

func (h *Handler) projectDetails(w http.ResponseWriter, r *http.Request) {
	details, err := h.orch.ProjectDetails(r.Context())
	if err != nil {
		h.writeOperationError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, details)
}

func (h *Handler) createProject(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name                       string `json:"name"`
		TeamID                     int    `json:"team_id"`
		ReportTemplatePropertiesID int    `json:"report_template_properties_id"`
		AuthorIDs                  []int  `json:"author_ids"`
		Template                   string `json:"template"`
	}
	if !h.decode(w, r, &body) {
		return
	}
	if body.Name == "" {
		h.writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	result, err := h.orch.CreateProject(r.Context(), session.CreateProjectSpec{
		Name:                       body.Name,
		TeamID:                     body.TeamID,
		ReportTemplatePropertiesID: body.ReportTemplatePropertiesID,
		AuthorIDs:                  body.AuthorIDs,
		Template:                   body.Template,
	})
	if err != nil {
		h.writeOperationError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, result)
}

func (h *Handler) vulnerabilities(w http.ResponseWriter, r *http.Request) {
	page, ok := h.pageParam(w, r)
	if !ok {
		return
	}
	result, err := h.orch.Vulnerabilities(r.Context(), page)
	if err != nil {
		h.writeOperationError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

func (h *Handler) allVulnerabilityDetails(w http.ResponseWriter, r *http.Request) {
	page, ok := h.pageParam(w, r)
	if !ok {
		return
	}
	result, err := h.orch.AllVulnerabilityDetails(r.Context(), page)
	if err != nil {
		h.writeOperationError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

func (h *Handler) vulnerability(w http.ResponseWriter, r *http.Request) {
	id, ok := h.idParam(w, r, "id")
	if !ok {
		return
	}
	result, err := h.orch.Vulnerability(r.Context(), id)
	if err != nil {
		h.writeOperationError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

func (h *Handler) createVulnerability(w http.ResponseWriter, r *http.Request) {
	var fields dradis.FieldBag
	if !h.decode(w, r, &fields) {
		return
	}
	if len(fields) == 0 {
		h.writeError(w, http.StatusBadRequest, "at least one vulnerability field is required")
		return
	}

	result, err := h.orch.CreateVulnerability(r.Context(), fields)
	if err != nil {
		h.writeOperationError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, result)
}

func (h *Handler) updateVulnerability(w http.ResponseWriter, r *http.Request) {
	id, ok := h.idParam(w, r, "id")
	if !ok {
		return
	}
	var fields dradis.FieldBag
	if !h.decode(w, r, &fields) {
		return
	}
	if len(fields) == 0 {
		h.writeError(w, http.StatusBadRequest, "supply at least one field to update")
		return
	}

	result, err := h.orch.UpdateVulnerability(r.Context(), id, fields)
	if err != nil {
		h.writeOperationError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

func (h *Handler) contentBlocks(w http.ResponseWriter, r *http.Request) {
	result, err := h.orch.ContentBlocks(r.Context())
	if err != nil {
		h.writeOperationError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

func (h *Handler) updateContentBlock(w http.ResponseWriter, r *http.Request) {
	id, ok := h.idParam(w, r, "id")
	if !ok {
		return
	}
	var body struct {
		BlockGroup string         `json:"block_group"`
		Content    map[string]any `json:"content"`
	}
	if !h.decode(w, r, &body) {
		return
	}
	if body.BlockGroup == "" {
		h.writeError(w, http.StatusBadRequest, "block_group is required")
		return
	}
	if len(body.Content) == 0 {
		h.writeError(w, http.StatusBadRequest, "content must contain at least one field")
		return
	}

	result, err := h.orch.UpdateContentBlock(r.Context(), id, body.BlockGroup, body.Content)
	if err != nil {
		h.writeOperationError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

func (h *Handler) documentProperties(w http.ResponseWriter, r *http.Request) {
	result, err := h.orch.DocumentProperties(r.Context())
	if err != nil {
		h.writeOperationError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

func (h *Handler) upsertDocumentProperty(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if name == "" {
		h.writeError(w, http.StatusBadRequest, "property name is required")
		return
	}
	var body struct {
		Value string `json:"value"`
	}
	if !h.decode(w, r, &body) {
		return
	}

	result, err := h.orch.UpsertDocumentProperty(r.Context(), name, body.Value)
	if err != nil {
		h.writeOperationError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := jsonutil.UnmarshalRead(r.Body, dst); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return false
	}
	return true
}

func (h *Handler) pageParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("page")
	if raw == "" {
		return 0, true
	}
	page, err := strconv.Atoi(raw)
	if err != nil || page < 1 {
		h.writeError(w, http.StatusBadRequest, "page must be a positive integer")
		return 0, false
	}
	return page, true
}

func (h *Handler) idParam(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	id, err := strconv.Atoi(r.PathValue(name))
	if err != nil || id < 1 {
		h.writeError(w, http.StatusBadRequest, name+" must be a positive integer")
		return 0, false
	}
	return id, true
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", defaults.ContentTypeJSON)
	w.WriteHeader(status)
	if err := jsonutil.MarshalWrite(w, v); err != nil {
		h.logger.Warn("writing response", slog.String("error", err.Error()))
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, msg string) {
	h.writeJSON(w, status, map[string]string{"error": msg})
}

// writeOperationError maps orchestrator/client errors onto HTTP statuses:
// precondition failures are 409 (the caller must select a project first),
// remote API errors pass their status through, network failures are 502.
func (h *Handler) writeOperationError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, session.ErrNoProject),
		errors.Is(err, session.ErrTeamRequired):
		h.writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, session.ErrInvalidProjectID):
		h.writeError(w, http.StatusBadRequest, err.Error())
	default:
		var reqErr *dradis.RequestError
		if errors.As(err, &reqErr) {
			h.writeError(w, reqErr.Status, err.Error())
			return
		}
		var netErr *dradis.NetworkError
		if errors.As(err, &netErr) {
			h.writeError(w, http.StatusBadGateway, err.Error())
			return
		}
		h.writeError(w, http.StatusInternalServerError, err.Error())
	}
}
