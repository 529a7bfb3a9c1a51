package confluence

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

// ListSpaces lists spaces visible to the authenticated user. A limit
// of zero returns all spaces.
func (c *Client) ListSpaces(ctx context.Context, limit int) ([]Space, error) {
	raw, err := c.paginate(ctx, "/spaces", nil, limit)
	if err != nil {
		return nil, err
	}
	return decodeList[Space](raw)
}

// GetSpaceByKey looks up a space by its key.
func (c *Client) GetSpaceByKey(ctx context.Context, key string) (*Space, error) {
	query := url.Values{"keys": {strings.ToUpper(key)}}
	raw, err := c.paginate(ctx, "/spaces", query, 1)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, goerrors.Wrap(
			fmt.Errorf("no space with key %q", key),
			goerrors.CategoryNotFound, "space not found").
			WithTextCode(notFoundCode)
	}

	spaces, err := decodeList[Space](raw)
	if err != nil {
		return nil, err
	}
	return &spaces[0], nil
}

// CreateSpace creates a new space. Keys are uppercased; Confluence
// rejects lowercase space keys.
func (c *Client) CreateSpace(ctx context.Context, key, name, description string) (*Space, error) {
	payload := map[string]any{
		"key":  strings.ToUpper(key),
		"name": name,
	}
	if description != "" {
		payload["description"] = map[string]any{
			"representation": "plain",
			"value":          description,
		}
	}

	data, err := c.do(ctx, http.MethodPost, "/spaces", nil, payload)
	if err != nil {
		return nil, err
	}

	var space Space
	if err := json.Unmarshal(data, &space); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryExternal, "failed to decode space").
			WithTextCode(requestFailedCode)
	}
	c.logger.Info("created space", "id", space.ID, "key", space.Key)
	return &space, nil
}
