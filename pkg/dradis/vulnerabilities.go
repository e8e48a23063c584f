package dradis

import (
	"context"
	"fmt"
	"net/http"

	"github.com/dradis-tools/dradis-mcp/pkg/defaults"
)

func issuesEndpoint(page int) string {
	endpoint := defaults.APIPrefix + "/issues"
	if page > 0 {
		endpoint += fmt.Sprintf("?page=%d", page)
	}
	return endpoint
}

// GetVulnerabilities lists the project's vulnerabilities, reduced to the
// narrow list projection: id, title, and the Rating field only.
func (c *Client) GetVulnerabilities(ctx context.Context, projectID, page int) ([]VulnerabilityListItem, error) {
	var issues []Vulnerability
	if err := c.request(ctx, http.MethodGet, issuesEndpoint(page), projectID, nil, &issues); err != nil {
		return nil, err
	}

	items := make([]VulnerabilityListItem, 0, len(issues))
	for _, issue := range issues {
		items = append(items, VulnerabilityListItem{
			ID:     issue.ID,
			Title:  issue.Title,
			Fields: FieldBag{"Rating": issue.Fields["Rating"]},
		})
	}
	return items, nil
}

// GetAllVulnerabilityDetails lists the project's vulnerabilities with the
// full field bag, no projection.
func (c *Client) GetAllVulnerabilityDetails(ctx context.Context, projectID, page int) ([]VulnerabilityListItem, error) {
	var issues []Vulnerability
	if err := c.request(ctx, http.MethodGet, issuesEndpoint(page), projectID, nil, &issues); err != nil {
		return nil, err
	}

	items := make([]VulnerabilityListItem, 0, len(issues))
	for _, issue := range issues {
		items = append(items, VulnerabilityListItem{
			ID:     issue.ID,
			Title:  issue.Title,
			Fields: issue.Fields,
		})
	}
	return items, nil
}

// GetVulnerability fetches one vulnerability, flattened: the field bag is
// spread to the top level alongside id and author.
func (c *Client) GetVulnerability(ctx context.Context, projectID, vulnerabilityID int) (map[string]any, error) {
	var issue Vulnerability
	endpoint := fmt.Sprintf("%s/issues/%d", defaults.APIPrefix, vulnerabilityID)
	if err := c.request(ctx, http.MethodGet, endpoint, projectID, nil, &issue); err != nil {
		return nil, err
	}

	flattened := map[string]any{
		"id":     issue.ID,
		"author": issue.Author,
	}
	for key, value := range issue.Fields {
		flattened[key] = value
	}
	return flattened, nil
}

// CreateVulnerability encodes the field bag through the field codec and
// creates a new issue from the resulting text blob. Pure creation, no merge.
func (c *Client) CreateVulnerability(ctx context.Context, projectID int, fields FieldBag) (*Vulnerability, error) {
	payload := map[string]any{
		"issue": map[string]string{"text": EncodeFields(fields, c.fieldOrder)},
	}

	var created Vulnerability
	endpoint := defaults.APIPrefix + "/issues"
	if err := c.request(ctx, http.MethodPost, endpoint, projectID, payload, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateVulnerability performs a merge update: fetch the current record,
// overlay the supplied fields, re-encode, PUT. Any explicitly supplied key
// overwrites, including empty strings: an empty value is an intentional
// clear, never silently dropped. The Dradis API has no field-level PATCH;
// this read-modify-write is the only way to avoid clobbering fields the
// caller did not mention. See the package comment for the lost-update
// caveat.
func (c *Client) UpdateVulnerability(ctx context.Context, projectID, issueID int, fields FieldBag) (*Vulnerability, error) {
	current, err := c.GetVulnerability(ctx, projectID, issueID)
	if err != nil {
		return nil, err
	}

	merged := make(FieldBag, len(current)+len(fields))
	for key, value := range current {
		merged[key] = fmt.Sprint(value)
	}
	for key, value := range fields {
		merged[key] = value
	}

	payload := map[string]any{
		"issue": map[string]string{"text": EncodeFields(merged, c.fieldOrder)},
	}

	var updated Vulnerability
	endpoint := fmt.Sprintf("%s/issues/%d", defaults.APIPrefix, issueID)
	if err := c.request(ctx, http.MethodPut, endpoint, projectID, payload, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}
