package confluence

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	goerrors "github.com/goliatone/go-errors"
)

// CreatePageRequest describes a new page.
type CreatePageRequest struct {
	SpaceID  string
	Title    string
	ParentID string
	// Body is Confluence storage format XHTML.
	Body string
}

// Validate checks the fields the API requires.
func (r CreatePageRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.SpaceID, validation.Required),
		validation.Field(&r.Title, validation.Required),
	)
}

// UpdatePageRequest describes a page content update.
type UpdatePageRequest struct {
	Title string
	// Body is Confluence storage format XHTML.
	Body string
	// Version is the new version number, current version plus one.
	Version int
	// Message is an optional version comment.
	Message string
}

// Validate checks the fields the API requires.
func (r UpdatePageRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required),
		validation.Field(&r.Version, validation.Min(1)),
	)
}

type pagePayload struct {
	ID       string          `json:"id,omitempty"`
	Status   string          `json:"status"`
	Title    string          `json:"title"`
	SpaceID  string          `json:"spaceId,omitempty"`
	ParentID string          `json:"parentId,omitempty"`
	Body     map[string]any  `json:"body,omitempty"`
	Version  *versionPayload `json:"version,omitempty"`
}

type versionPayload struct {
	Number  int    `json:"number"`
	Message string `json:"message,omitempty"`
}

func storageBody(value string) map[string]any {
	return map[string]any{
		"representation": "storage",
		"value":          value,
	}
}

// CreatePage creates a page in the given space, optionally under a
// parent page.
func (c *Client) CreatePage(ctx context.Context, req CreatePageRequest) (*Page, error) {
	if err := req.Validate(); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid create page request").
			WithTextCode(requestInvalidCode)
	}

	payload := pagePayload{
		Status:   "current",
		Title:    req.Title,
		SpaceID:  req.SpaceID,
		ParentID: req.ParentID,
		Body:     storageBody(req.Body),
	}

	data, err := c.do(ctx, http.MethodPost, "/pages", nil, payload)
	if err != nil {
		return nil, err
	}

	var page Page
	if err := json.Unmarshal(data, &page); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryExternal, "failed to decode page").
			WithTextCode(requestFailedCode)
	}
	c.logger.Info("created page", "id", page.ID, "title", page.Title)
	return &page, nil
}

// GetPage fetches a page with its storage format body.
func (c *Client) GetPage(ctx context.Context, pageID string) (*Page, error) {
	query := url.Values{"body-format": {"storage"}}
	data, err := c.do(ctx, http.MethodGet, "/pages/"+pageID, query, nil)
	if err != nil {
		return nil, err
	}

	var page Page
	if err := json.Unmarshal(data, &page); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryExternal, "failed to decode page").
			WithTextCode(requestFailedCode)
	}
	return &page, nil
}

// UpdatePage replaces a page's title and body at the given version.
// The caller supplies the next version number; fetch the page first to
// learn the current one.
func (c *Client) UpdatePage(ctx context.Context, pageID string, req UpdatePageRequest) (*Page, error) {
	if err := req.Validate(); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid update page request").
			WithTextCode(requestInvalidCode)
	}

	payload := pagePayload{
		ID:     pageID,
		Status: "current",
		Title:  req.Title,
		Body:   storageBody(req.Body),
		Version: &versionPayload{
			Number:  req.Version,
			Message: req.Message,
		},
	}

	data, err := c.do(ctx, http.MethodPut, "/pages/"+pageID, nil, payload)
	if err != nil {
		return nil, err
	}

	var page Page
	if err := json.Unmarshal(data, &page); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryExternal, "failed to decode page").
			WithTextCode(requestFailedCode)
	}
	c.logger.Info("updated page", "id", page.ID, "version", req.Version)
	return &page, nil
}

// DeletePage deletes a page. Deleted pages go to the space trash.
func (c *Client) DeletePage(ctx context.Context, pageID string) error {
	if _, err := c.do(ctx, http.MethodDelete, "/pages/"+pageID, nil, nil); err != nil {
		return err
	}
	c.logger.Info("deleted page", "id", pageID)
	return nil
}

// ListPages lists pages in a space. A limit of zero returns all pages.
func (c *Client) ListPages(ctx context.Context, spaceID string, limit int) ([]Page, error) {
	query := url.Values{"space-id": {spaceID}}
	raw, err := c.paginate(ctx, "/pages", query, limit)
	if err != nil {
		return nil, err
	}
	return decodeList[Page](raw)
}

// FindPageByTitle looks up a page by exact title within a space.
// Returns a not-found error when no page matches.
func (c *Client) FindPageByTitle(ctx context.Context, spaceID, title string) (*Page, error) {
	query := url.Values{
		"space-id": {spaceID},
		"title":    {title},
	}
	raw, err := c.paginate(ctx, "/pages", query, 1)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, goerrors.Wrap(
			fmt.Errorf("no page titled %q in space %s", title, spaceID),
			goerrors.CategoryNotFound, "page not found").
			WithTextCode(notFoundCode)
	}

	pages, err := decodeList[Page](raw)
	if err != nil {
		return nil, err
	}
	return &pages[0], nil
}

// GetChildPages lists the direct children of a page.
func (c *Client) GetChildPages(ctx context.Context, pageID string) ([]Page, error) {
	raw, err := c.paginate(ctx, "/pages/"+pageID+"/children", nil, 0)
	if err != nil {
		return nil, err
	}
	return decodeList[Page](raw)
}

// CreatePageModernEditor creates a page that opens in the new
// Confluence editor. The editor is selected by a content property that
// must exist before the page has a body, so the page is created blank,
// tagged, and then filled in.
func (c *Client) CreatePageModernEditor(ctx context.Context, req CreatePageRequest) (*Page, error) {
	if err := req.Validate(); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid create page request").
			WithTextCode(requestInvalidCode)
	}

	blank := req
	blank.Body = ""
	page, err := c.CreatePage(ctx, blank)
	if err != nil {
		return nil, err
	}

	if err := c.SetContentProperty(ctx, page.ID, "editor", "v2"); err != nil {
		return nil, err
	}

	if req.Body == "" {
		return page, nil
	}

	version := 1
	if page.Version != nil {
		version = page.Version.Number
	}
	return c.UpdatePage(ctx, page.ID, UpdatePageRequest{
		Title:   req.Title,
		Body:    req.Body,
		Version: version + 1,
		Message: "initial content",
	})
}

// CopyPage copies a page's current content into a new page, in the
// same space unless targetSpaceID says otherwise.
func (c *Client) CopyPage(ctx context.Context, pageID, newTitle, targetSpaceID string) (*Page, error) {
	source, err := c.GetPage(ctx, pageID)
	if err != nil {
		return nil, err
	}

	spaceID := targetSpaceID
	if spaceID == "" {
		spaceID = source.SpaceID
	}
	title := newTitle
	if title == "" {
		title = source.Title + " (copy)"
	}

	return c.CreatePage(ctx, CreatePageRequest{
		SpaceID: spaceID,
		Title:   title,
		Body:    source.StorageValue(),
	})
}

// CreateBlogPost publishes a blog post in the given space.
func (c *Client) CreateBlogPost(ctx context.Context, spaceID, title, body string) (*BlogPost, error) {
	payload := map[string]any{
		"spaceId": spaceID,
		"status":  "current",
		"title":   title,
		"body":    storageBody(body),
	}

	data, err := c.do(ctx, http.MethodPost, "/blogposts", nil, payload)
	if err != nil {
		return nil, err
	}

	var post BlogPost
	if err := json.Unmarshal(data, &post); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryExternal, "failed to decode blog post").
			WithTextCode(requestFailedCode)
	}
	c.logger.Info("created blog post", "id", post.ID, "title", post.Title)
	return &post, nil
}

// GetBlogPost fetches a blog post with its storage body.
func (c *Client) GetBlogPost(ctx context.Context, id string) (*BlogPost, error) {
	query := url.Values{"body-format": {"storage"}}
	data, err := c.do(ctx, http.MethodGet, "/blogposts/"+id, query, nil)
	if err != nil {
		return nil, err
	}

	var post BlogPost
	if err := json.Unmarshal(data, &post); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryExternal, "failed to decode blog post").
			WithTextCode(requestFailedCode)
	}
	return &post, nil
}

// SearchResult is one hit from a CQL search.
type SearchResult struct {
	ID    string `json:"id"`
	Type  string `json:"type"`
	Title string `json:"title"`
}

// SearchCQL runs a CQL query against the v1 search endpoint and
// returns matching content. A limit of zero returns all matches.
func (c *Client) SearchCQL(ctx context.Context, cql string, limit int) ([]SearchResult, error) {
	query := url.Values{"cql": {cql}}
	raw, err := c.paginate(ctx, "/rest/api/content/search", query, limit)
	if err != nil {
		return nil, err
	}
	return decodeList[SearchResult](raw)
}

// ListBlogPosts lists blog posts in a space. A limit of zero returns
// all posts.
func (c *Client) ListBlogPosts(ctx context.Context, spaceID string, limit int) ([]BlogPost, error) {
	query := url.Values{"space-id": {spaceID}}
	raw, err := c.paginate(ctx, "/blogposts", query, limit)
	if err != nil {
		return nil, err
	}
	return decodeList[BlogPost](raw)
}
