package confluence

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"

	goerrors "github.com/goliatone/go-errors"
)

// GetLabels lists the labels attached to a page.
func (c *Client) GetLabels(ctx context.Context, pageID string) ([]Label, error) {
	raw, err := c.paginate(ctx, "/pages/"+pageID+"/labels", nil, 0)
	if err != nil {
		return nil, err
	}
	return decodeList[Label](raw)
}

// AddLabels attaches labels to a page. Label management still lives on
// the v1 API, so this call leaves the v2 path prefix behind.
func (c *Client) AddLabels(ctx context.Context, pageID string, names []string) error {
	if len(names) == 0 {
		return nil
	}

	payload := make([]map[string]string, 0, len(names))
	for _, name := range names {
		payload = append(payload, map[string]string{
			"prefix": "global",
			"name":   name,
		})
	}

	path := fmt.Sprintf("/rest/api/content/%s/label", pageID)
	if _, err := c.do(ctx, http.MethodPost, path, nil, payload); err != nil {
		return err
	}
	c.logger.Info("added labels", "page_id", pageID, "count", len(names))
	return nil
}

// GetContentProperty fetches a single content property by key.
func (c *Client) GetContentProperty(ctx context.Context, pageID, key string) (*ContentProperty, error) {
	query := url.Values{"key": {key}}
	raw, err := c.paginate(ctx, "/pages/"+pageID+"/properties", query, 1)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, goerrors.Wrap(
			fmt.Errorf("no property %q on page %s", key, pageID),
			goerrors.CategoryNotFound, "content property not found").
			WithTextCode(notFoundCode)
	}

	props, err := decodeList[ContentProperty](raw)
	if err != nil {
		return nil, err
	}
	return &props[0], nil
}

// ListContentProperties lists all content properties on a page.
func (c *Client) ListContentProperties(ctx context.Context, pageID string) ([]ContentProperty, error) {
	raw, err := c.paginate(ctx, "/pages/"+pageID+"/properties", nil, 0)
	if err != nil {
		return nil, err
	}
	return decodeList[ContentProperty](raw)
}

// SetContentProperty creates a content property, updating it in place
// when the key already exists.
func (c *Client) SetContentProperty(ctx context.Context, pageID, key string, value any) error {
	payload := map[string]any{
		"key":   key,
		"value": value,
	}

	_, err := c.do(ctx, http.MethodPost, "/pages/"+pageID+"/properties", nil, payload)
	if err == nil {
		c.logger.Debug("set content property", "page_id", pageID, "key", key)
		return nil
	}
	if !IsConflict(err) {
		return err
	}

	existing, err := c.GetContentProperty(ctx, pageID, key)
	if err != nil {
		return err
	}

	version := 1
	if existing.Version != nil {
		version = existing.Version.Number
	}
	update := map[string]any{
		"key":   key,
		"value": value,
		"version": map[string]any{
			"number": version + 1,
		},
	}
	if _, err := c.do(ctx, http.MethodPut, "/pages/"+pageID+"/properties/"+existing.ID, nil, update); err != nil {
		return err
	}
	c.logger.Debug("updated content property", "page_id", pageID, "key", key)
	return nil
}

// ListAttachments lists the attachments on a page.
func (c *Client) ListAttachments(ctx context.Context, pageID string) ([]Attachment, error) {
	raw, err := c.paginate(ctx, "/pages/"+pageID+"/attachments", nil, 0)
	if err != nil {
		return nil, err
	}
	return decodeList[Attachment](raw)
}

// UploadAttachment attaches a local file to a page. Attachment upload
// is a v1-only endpoint.
func (c *Client) UploadAttachment(ctx context.Context, pageID, filePath, comment string) error {
	file, err := os.Open(filePath)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryValidation, "failed to open attachment file").
			WithTextCode(requestInvalidCode)
	}
	defer file.Close()

	fields := map[string]string{}
	if comment != "" {
		fields["comment"] = comment
	}

	path := fmt.Sprintf("/rest/api/content/%s/child/attachment", pageID)
	if _, err := c.doMultipart(ctx, path, filepath.Base(filePath), file, fields); err != nil {
		return err
	}
	c.logger.Info("uploaded attachment", "page_id", pageID, "file", filepath.Base(filePath))
	return nil
}

// DownloadAttachment streams an attachment's content to the writer.
func (c *Client) DownloadAttachment(ctx context.Context, downloadLink string, w io.Writer) error {
	endpoint := downloadLink
	if u, err := url.Parse(downloadLink); err == nil && !u.IsAbs() {
		base, err := url.Parse(c.baseURL)
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid base URL").
				WithTextCode(requestInvalidCode)
		}
		endpoint = base.Scheme + "://" + base.Host + downloadLink
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryValidation, "failed to build request").
			WithTextCode(requestInvalidCode)
	}
	req.Header.Set("Authorization", c.authHeader)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryExternal, "download request failed").
			WithTextCode(requestFailedCode)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		return apiError(resp.StatusCode, body)
	}
	if _, err := io.Copy(w, resp.Body); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryExternal, "failed to write attachment content").
			WithTextCode(requestFailedCode)
	}
	return nil
}

// ListFooterComments lists the footer comments on a page.
func (c *Client) ListFooterComments(ctx context.Context, pageID string) ([]Comment, error) {
	query := url.Values{"body-format": {"storage"}}
	raw, err := c.paginate(ctx, "/pages/"+pageID+"/footer-comments", query, 0)
	if err != nil {
		return nil, err
	}
	return decodeList[Comment](raw)
}

// AddFooterComment adds a footer comment to a page, threaded under
// parentCommentID when it is set.
func (c *Client) AddFooterComment(ctx context.Context, pageID, body, parentCommentID string) (*Comment, error) {
	payload := map[string]any{
		"pageId": pageID,
		"body":   storageBody(body),
	}
	if parentCommentID != "" {
		payload["parentCommentId"] = parentCommentID
	}

	data, err := c.do(ctx, http.MethodPost, "/footer-comments", nil, payload)
	if err != nil {
		return nil, err
	}

	var comment Comment
	if err := json.Unmarshal(data, &comment); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryExternal, "failed to decode comment").
			WithTextCode(requestFailedCode)
	}
	c.logger.Info("added footer comment", "page_id", pageID, "comment_id", comment.ID)
	return &comment, nil
}
