package dradis

import (
	"context"
	"fmt"
	"net/http"

	"github.com/dradis-tools/dradis-mcp/pkg/defaults"
)

// GetProjectDetails fetches a single project record.
func (c *Client) GetProjectDetails(ctx context.Context, projectID int) (*ProjectDetails, error) {
	var details ProjectDetails
	endpoint := fmt.Sprintf("%s/projects/%d", defaults.APIPrefix, projectID)
	if err := c.request(ctx, http.MethodGet, endpoint, 0, nil, &details); err != nil {
		return nil, err
	}
	return &details, nil
}

// CreateProject creates a new project and returns the created record.
func (c *Client) CreateProject(ctx context.Context, project CreateProject) (*ProjectDetails, error) {
	payload := map[string]any{"project": project}
	var details ProjectDetails
	endpoint := defaults.APIPrefix + "/projects"
	if err := c.request(ctx, http.MethodPost, endpoint, 0, payload, &details); err != nil {
		return nil, err
	}
	return &details, nil
}
