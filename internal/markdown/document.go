// Package markdown loads Markdown documents and their publishing
// metadata. Documents may begin with a YAML front matter block that
// tells the publisher where the page belongs.
package markdown

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/adrg/frontmatter"
	goerrors "github.com/goliatone/go-errors"
)

// Meta is the YAML front matter of a publishable document.
type Meta struct {
	Title    string   `yaml:"title"`
	SpaceID  string   `yaml:"space_id"`
	SpaceKey string   `yaml:"space_key"`
	PageID   string   `yaml:"page_id"`
	ParentID string   `yaml:"parent_id"`
	Labels   []string `yaml:"labels"`
	// Editor selects the page editor, "v2" for the new editor.
	Editor string `yaml:"editor"`
	// Custom carries any extra keys, stored as content properties.
	Custom map[string]any `yaml:"custom"`
}

// Document is a loaded Markdown file with its metadata separated out.
type Document struct {
	// Path is the source file path, empty for stdin input.
	Path string
	Meta Meta
	// Body is the Markdown content with the front matter stripped.
	Body string
}

var firstHeadingPattern = regexp.MustCompile(`(?m)^# (.+)$`)

// Load reads a Markdown file and parses its front matter.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryValidation,
			fmt.Sprintf("failed to read %s", path)).
			WithTextCode("DOCUMENT_READ_FAILED")
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, err
	}
	doc.Path = path
	return doc, nil
}

// Parse splits front matter from body. Input without front matter is
// returned whole with empty metadata.
func Parse(src []byte) (*Document, error) {
	var meta Meta
	body, err := frontmatter.Parse(bytes.NewReader(src), &meta)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid front matter").
			WithTextCode("FRONT_MATTER_INVALID")
	}

	return &Document{
		Meta: meta,
		Body: string(body),
	}, nil
}

// Title resolves the page title: front matter first, then the first
// level-one heading, then the file name without its extension.
func (d *Document) Title() string {
	if d.Meta.Title != "" {
		return d.Meta.Title
	}
	if m := firstHeadingPattern.FindStringSubmatch(d.Body); m != nil {
		return strings.TrimSpace(m[1])
	}
	if d.Path != "" {
		base := filepath.Base(d.Path)
		return strings.TrimSuffix(base, filepath.Ext(base))
	}
	return "Untitled"
}
