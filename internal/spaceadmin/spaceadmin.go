// Package spaceadmin automates space-level workflows: scaffolding a
// project space with a standard page layout, auditing a space's
// content, and cloning a space's page tree.
package spaceadmin

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	goerrors "github.com/goliatone/go-errors"
	glog "github.com/goliatone/go-logger/glog"

	"github.com/docbridge-io/confluence-md/internal/confluence"
)

// maxKeyLength is the longest space key Confluence accepts here.
const maxKeyLength = 10

// API is the slice of the Confluence client this package uses.
type API interface {
	CreateSpace(ctx context.Context, key, name, description string) (*confluence.Space, error)
	GetSpaceByKey(ctx context.Context, key string) (*confluence.Space, error)
	CreatePage(ctx context.Context, req confluence.CreatePageRequest) (*confluence.Page, error)
	ListPages(ctx context.Context, spaceID string, limit int) ([]confluence.Page, error)
	GetPage(ctx context.Context, pageID string) (*confluence.Page, error)
	GetLabels(ctx context.Context, pageID string) ([]confluence.Label, error)
}

// Service runs space administration workflows.
type Service struct {
	api    API
	logger glog.Logger
}

// NewService creates a space administration service.
func NewService(api API, logger glog.Logger) *Service {
	if logger == nil {
		logger = glog.NewLogger(glog.WithLevel(glog.Error))
	}
	return &Service{api: api, logger: logger}
}

// defaultSections are the pages scaffolded under a new project
// space's home page.
var defaultSections = []string{
	"Project Overview",
	"Meeting Notes",
	"Decisions",
	"How-to Guides",
}

// KeyFromName derives a space key from a project name: the initials
// of its words, uppercased, truncated to the maximum key length. A
// single-word name uses the word itself.
func KeyFromName(name string) string {
	words := strings.FieldsFunc(name, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	if len(words) == 0 {
		return ""
	}

	var key string
	if len(words) == 1 {
		key = words[0]
	} else {
		var b strings.Builder
		for _, word := range words {
			b.WriteRune([]rune(word)[0])
		}
		key = b.String()
	}

	key = strings.ToUpper(key)
	// Truncate on runes so multi-byte initials are not cut mid-rune.
	if runes := []rune(key); len(runes) > maxKeyLength {
		key = string(runes[:maxKeyLength])
	}
	return key
}

// CreateProjectSpace creates a space named after the project and
// scaffolds a home page with the standard section pages under it.
// An empty key is derived from the project name.
func (s *Service) CreateProjectSpace(ctx context.Context, name, key, description string) (*confluence.Space, error) {
	if key == "" {
		key = KeyFromName(name)
	}
	if key == "" {
		return nil, goerrors.Wrap(
			fmt.Errorf("cannot derive a space key from %q", name),
			goerrors.CategoryValidation, "invalid project name").
			WithTextCode("SPACE_KEY_INVALID")
	}

	space, err := s.api.CreateSpace(ctx, key, name, description)
	if err != nil {
		return nil, err
	}

	home, err := s.api.CreatePage(ctx, confluence.CreatePageRequest{
		SpaceID: space.ID,
		Title:   name + " Home",
		Body:    fmt.Sprintf("<h1>%s</h1><p>Welcome to the %s space.</p>", name, name),
	})
	if err != nil {
		return nil, err
	}

	for _, section := range defaultSections {
		if _, err := s.api.CreatePage(ctx, confluence.CreatePageRequest{
			SpaceID:  space.ID,
			Title:    section,
			ParentID: home.ID,
			Body:     fmt.Sprintf("<h2>%s</h2>", section),
		}); err != nil {
			return nil, err
		}
	}

	s.logger.Info("created project space", "key", space.Key, "sections", len(defaultSections))
	return space, nil
}

// Audit summarizes the content of a space.
type Audit struct {
	SpaceKey   string
	PageCount  int
	EmptyPages []string // titles of pages with no body
	Unlabeled  []string // titles of pages with no labels
}

// AuditSpace walks a space and reports pages that need attention.
func (s *Service) AuditSpace(ctx context.Context, spaceKey string) (*Audit, error) {
	space, err := s.api.GetSpaceByKey(ctx, spaceKey)
	if err != nil {
		return nil, err
	}

	pages, err := s.api.ListPages(ctx, space.ID, 0)
	if err != nil {
		return nil, err
	}

	audit := &Audit{SpaceKey: space.Key, PageCount: len(pages)}
	for _, page := range pages {
		full, err := s.api.GetPage(ctx, page.ID)
		if err != nil {
			return nil, err
		}
		if strings.TrimSpace(full.StorageValue()) == "" {
			audit.EmptyPages = append(audit.EmptyPages, full.Title)
		}

		labels, err := s.api.GetLabels(ctx, page.ID)
		if err != nil {
			return nil, err
		}
		if len(labels) == 0 {
			audit.Unlabeled = append(audit.Unlabeled, full.Title)
		}
	}

	s.logger.Info("audited space",
		"key", audit.SpaceKey, "pages", audit.PageCount,
		"empty", len(audit.EmptyPages), "unlabeled", len(audit.Unlabeled))
	return audit, nil
}

// CloneSpace copies every page of the source space into a new space.
// Parent/child relationships are preserved; pages whose parent lives
// outside the space become top-level pages in the clone.
func (s *Service) CloneSpace(ctx context.Context, sourceKey, newKey, newName string) (*confluence.Space, error) {
	source, err := s.api.GetSpaceByKey(ctx, sourceKey)
	if err != nil {
		return nil, err
	}

	target, err := s.api.CreateSpace(ctx, newKey, newName, "Clone of "+source.Name)
	if err != nil {
		return nil, err
	}

	pages, err := s.api.ListPages(ctx, source.ID, 0)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]confluence.Page, len(pages))
	for _, page := range pages {
		byID[page.ID] = page
	}

	// old page ID -> new page ID, filled in as pages are copied
	cloned := make(map[string]string, len(pages))

	var copyPage func(page confluence.Page) (string, error)
	copyPage = func(page confluence.Page) (string, error) {
		if newID, ok := cloned[page.ID]; ok {
			return newID, nil
		}

		var parentID string
		if parent, ok := byID[page.ParentID]; ok {
			newParentID, err := copyPage(parent)
			if err != nil {
				return "", err
			}
			parentID = newParentID
		}

		full, err := s.api.GetPage(ctx, page.ID)
		if err != nil {
			return "", err
		}
		created, err := s.api.CreatePage(ctx, confluence.CreatePageRequest{
			SpaceID:  target.ID,
			Title:    full.Title,
			ParentID: parentID,
			Body:     full.StorageValue(),
		})
		if err != nil {
			return "", err
		}
		cloned[page.ID] = created.ID
		return created.ID, nil
	}

	for _, page := range pages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if _, err := copyPage(page); err != nil {
			return nil, err
		}
	}

	s.logger.Info("cloned space", "source", source.Key, "target", target.Key, "pages", len(cloned))
	return target, nil
}
