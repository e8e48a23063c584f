package dradis

import (
	"context"
	"net/http"
	"net/url"

	"github.com/dradis-tools/dradis-mcp/pkg/defaults"
)

// GetDocumentProperties fetches all document properties for a project as
// a list of single-key {name: value} mappings.
func (c *Client) GetDocumentProperties(ctx context.Context, projectID int) ([]DocumentProperty, error) {
	var props []DocumentProperty
	endpoint := defaults.APIPrefix + "/document_properties"
	if err := c.request(ctx, http.MethodGet, endpoint, projectID, nil, &props); err != nil {
		return nil, err
	}
	return props, nil
}

// UpsertDocumentProperty creates or updates a document property. The API
// has no get-single-property endpoint, so existence is decided by scanning
// the full property list for name with a non-null value: found means PUT
// to the named property, not found means POST a new one.
func (c *Client) UpsertDocumentProperty(ctx context.Context, projectID int, name, value string) (DocumentProperty, error) {
	props, err := c.GetDocumentProperties(ctx, projectID)
	if err != nil {
		return nil, err
	}

	exists := false
	for _, prop := range props {
		if v, ok := prop[name]; ok && v != nil {
			exists = true
			break
		}
	}

	var result DocumentProperty
	if exists {
		endpoint := defaults.APIPrefix + "/document_properties/" + url.PathEscape(name)
		payload := map[string]any{
			"document_property": map[string]string{"value": value},
		}
		if err := c.request(ctx, http.MethodPut, endpoint, projectID, payload, &result); err != nil {
			return nil, err
		}
		return result, nil
	}

	endpoint := defaults.APIPrefix + "/document_properties"
	payload := map[string]any{
		"document_properties": map[string]string{name: value},
	}
	if err := c.request(ctx, http.MethodPost, endpoint, projectID, payload, &result); err != nil {
		return nil, err
	}
	return result, nil
}
