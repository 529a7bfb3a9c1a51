package markdown

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseFrontMatter(t *testing.T) {
	src := `---
title: Release Notes
space_key: DOCS
parent_id: "12345"
labels:
  - release
  - notes
editor: v2
---
# Release Notes

Body text.
`
	doc, err := Parse([]byte(src))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if doc.Meta.Title != "Release Notes" {
		t.Errorf("Title = %q, want %q", doc.Meta.Title, "Release Notes")
	}
	if doc.Meta.SpaceKey != "DOCS" {
		t.Errorf("SpaceKey = %q, want %q", doc.Meta.SpaceKey, "DOCS")
	}
	if doc.Meta.ParentID != "12345" {
		t.Errorf("ParentID = %q, want %q", doc.Meta.ParentID, "12345")
	}
	if len(doc.Meta.Labels) != 2 || doc.Meta.Labels[0] != "release" {
		t.Errorf("Labels = %v, want [release notes]", doc.Meta.Labels)
	}
	if doc.Meta.Editor != "v2" {
		t.Errorf("Editor = %q, want %q", doc.Meta.Editor, "v2")
	}
}

func TestParseStripsFrontMatterFromBody(t *testing.T) {
	src := "---\ntitle: Doc\n---\n# Heading\n\ncontent\n"
	doc, err := Parse([]byte(src))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if doc.Body != "# Heading\n\ncontent\n" {
		t.Errorf("Body = %q, want front matter stripped", doc.Body)
	}
}

func TestParseWithoutFrontMatter(t *testing.T) {
	src := "# Just a Heading\n\ntext\n"
	doc, err := Parse([]byte(src))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if doc.Meta.Title != "" {
		t.Errorf("Title = %q, want empty", doc.Meta.Title)
	}
	if doc.Body != src {
		t.Errorf("Body = %q, want input unchanged", doc.Body)
	}
}

func TestParseCustomKeys(t *testing.T) {
	src := `---
title: Doc
custom:
  team: platform
  reviewed: true
---
body
`
	doc, err := Parse([]byte(src))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if doc.Meta.Custom["team"] != "platform" {
		t.Errorf("Custom[team] = %v, want platform", doc.Meta.Custom["team"])
	}
	if doc.Meta.Custom["reviewed"] != true {
		t.Errorf("Custom[reviewed] = %v, want true", doc.Meta.Custom["reviewed"])
	}
}

func TestTitleFallback(t *testing.T) {
	tests := []struct {
		name string
		doc  Document
		want string
	}{
		{
			name: "front matter wins",
			doc: Document{
				Meta: Meta{Title: "From Meta"},
				Body: "# From Heading",
				Path: "/docs/from-file.md",
			},
			want: "From Meta",
		},
		{
			name: "first heading",
			doc: Document{
				Body: "intro\n\n# From Heading\n\ntext",
				Path: "/docs/from-file.md",
			},
			want: "From Heading",
		},
		{
			name: "file name",
			doc: Document{
				Body: "no headings here",
				Path: "/docs/from-file.md",
			},
			want: "from-file",
		},
		{
			name: "nothing to go on",
			doc:  Document{Body: "plain"},
			want: "Untitled",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.doc.Title(); got != tt.want {
				t.Errorf("Title() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "guide.md")
	content := "---\ntitle: Guide\n---\n# Guide\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	doc, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if doc.Meta.Title != "Guide" {
		t.Errorf("Title = %q, want Guide", doc.Meta.Title)
	}
	if doc.Path != path {
		t.Errorf("Path = %q, want %q", doc.Path, path)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.md")); err == nil {
		t.Fatal("Load() expected error for missing file")
	}
}
