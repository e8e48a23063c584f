package dradis

import (
	"context"
	"fmt"
	"net/http"

	"github.com/dradis-tools/dradis-mcp/pkg/defaults"
)

// GetContentBlocks lists the project's content blocks, projected down to
// id and the field bag.
func (c *Client) GetContentBlocks(ctx context.Context, projectID int) ([]ContentBlockSummary, error) {
	var blocks []ContentBlock
	endpoint := defaults.APIPrefix + "/content_blocks"
	if err := c.request(ctx, http.MethodGet, endpoint, projectID, nil, &blocks); err != nil {
		return nil, err
	}

	summaries := make([]ContentBlockSummary, 0, len(blocks))
	for _, block := range blocks {
		summaries = append(summaries, ContentBlockSummary{
			ID:     block.ID,
			Fields: block.Fields,
		})
	}
	return summaries, nil
}

// GetContentBlock fetches one full content block. Used internally to
// support the merge half of UpdateContentBlock.
func (c *Client) GetContentBlock(ctx context.Context, projectID, blockID int) (*ContentBlock, error) {
	var block ContentBlock
	endpoint := fmt.Sprintf("%s/content_blocks/%d", defaults.APIPrefix, blockID)
	if err := c.request(ctx, http.MethodGet, endpoint, projectID, nil, &block); err != nil {
		return nil, err
	}
	return &block, nil
}

// UpdateContentBlock performs a merge update: fetch the current block,
// overlay the string-valued keys of content onto its field bag, re-encode,
// PUT with the supplied block_group. Non-string values in content are
// dropped during the merge.
func (c *Client) UpdateContentBlock(ctx context.Context, projectID, blockID int, blockGroup string, content map[string]any) (*ContentBlock, error) {
	current, err := c.GetContentBlock(ctx, projectID, blockID)
	if err != nil {
		return nil, err
	}

	merged := make(FieldBag, len(current.Fields)+len(content))
	for key, value := range current.Fields {
		merged[key] = value
	}
	for key, value := range content {
		if s, ok := value.(string); ok {
			merged[key] = s
		}
	}

	payload := map[string]any{
		"content_block": map[string]string{
			"block_group": blockGroup,
			"content":     EncodeFields(merged, nil),
		},
	}

	var updated ContentBlock
	endpoint := fmt.Sprintf("%s/content_blocks/%d", defaults.APIPrefix, blockID)
	if err := c.request(ctx, http.MethodPut, endpoint, projectID, payload, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}
