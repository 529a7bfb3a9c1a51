package confluence

// BodyValue is a content body in a given representation, used both in
// requests and inside response body envelopes.
type BodyValue struct {
	Value          string `json:"value"`
	Representation string `json:"representation"`
}

// PageBody is the body envelope returned by the API when a body
// format is requested.
type PageBody struct {
	Storage *BodyValue `json:"storage,omitempty"`
}

// Version carries the version metadata of a piece of content.
type Version struct {
	Number  int    `json:"number"`
	Message string `json:"message,omitempty"`
}

// Page represents a Confluence page.
type Page struct {
	ID       string    `json:"id,omitempty"`
	Status   string    `json:"status,omitempty"`
	Title    string    `json:"title,omitempty"`
	SpaceID  string    `json:"spaceId,omitempty"`
	ParentID string    `json:"parentId,omitempty"`
	Body     *PageBody `json:"body,omitempty"`
	Version  *Version  `json:"version,omitempty"`
}

// StorageValue returns the page's storage format body, or the empty
// string when no body was requested.
func (p *Page) StorageValue() string {
	if p.Body == nil || p.Body.Storage == nil {
		return ""
	}
	return p.Body.Storage.Value
}

// BlogPost represents a Confluence blog post.
type BlogPost struct {
	ID      string    `json:"id,omitempty"`
	Status  string    `json:"status,omitempty"`
	Title   string    `json:"title,omitempty"`
	SpaceID string    `json:"spaceId,omitempty"`
	Body    *PageBody `json:"body,omitempty"`
	Version *Version  `json:"version,omitempty"`
}

// Space represents a Confluence space.
type Space struct {
	ID     string `json:"id,omitempty"`
	Key    string `json:"key,omitempty"`
	Name   string `json:"name,omitempty"`
	Type   string `json:"type,omitempty"`
	Status string `json:"status,omitempty"`
}

// Label is a content label.
type Label struct {
	ID     string `json:"id,omitempty"`
	Name   string `json:"name"`
	Prefix string `json:"prefix,omitempty"`
}

// ContentProperty is a key-value property attached to a page.
type ContentProperty struct {
	ID      string   `json:"id,omitempty"`
	Key     string   `json:"key"`
	Value   any      `json:"value"`
	Version *Version `json:"version,omitempty"`
}

// Attachment represents a file attached to a page.
type Attachment struct {
	ID        string `json:"id,omitempty"`
	Title     string `json:"title,omitempty"`
	MediaType string `json:"mediaType,omitempty"`
	FileSize  int64  `json:"fileSize,omitempty"`
	PageID    string `json:"pageId,omitempty"`
	Comment   string `json:"comment,omitempty"`
	// DownloadLink is site-relative, e.g. "/wiki/download/...".
	DownloadLink string `json:"downloadLink,omitempty"`
}

// Comment is a footer comment on a page.
type Comment struct {
	ID       string    `json:"id,omitempty"`
	Status   string    `json:"status,omitempty"`
	Title    string    `json:"title,omitempty"`
	PageID   string    `json:"pageId,omitempty"`
	ParentID string    `json:"parentCommentId,omitempty"`
	Body     *PageBody `json:"body,omitempty"`
	Version  *Version  `json:"version,omitempty"`
}
