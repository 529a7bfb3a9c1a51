// Package bulk runs batch operations against a Confluence space:
// creating page trees from CSV manifests, updating many pages at
// once, and find/replace sweeps across search results.
package bulk

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"sync"

	goerrors "github.com/goliatone/go-errors"
	glog "github.com/goliatone/go-logger/glog"
	"github.com/google/uuid"

	"github.com/docbridge-io/confluence-md/internal/confluence"
)

// DefaultWorkers is the concurrency used when none is configured.
const DefaultWorkers = 4

// API is the slice of the Confluence client the bulk service uses.
type API interface {
	CreatePage(ctx context.Context, req confluence.CreatePageRequest) (*confluence.Page, error)
	GetPage(ctx context.Context, pageID string) (*confluence.Page, error)
	UpdatePage(ctx context.Context, pageID string, req confluence.UpdatePageRequest) (*confluence.Page, error)
	FindPageByTitle(ctx context.Context, spaceID, title string) (*confluence.Page, error)
	AddLabels(ctx context.Context, pageID string, names []string) error
	SearchCQL(ctx context.Context, cql string, limit int) ([]confluence.SearchResult, error)
}

// Converter turns Markdown into Confluence storage format.
type Converter interface {
	Convert(markdown string) string
}

// Service executes bulk operations.
type Service struct {
	api     API
	conv    Converter
	logger  glog.Logger
	workers int
}

// NewService creates a bulk service. workers <= 0 selects
// DefaultWorkers.
func NewService(api API, conv Converter, logger glog.Logger, workers int) *Service {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	if logger == nil {
		logger = glog.NewLogger(glog.WithLevel(glog.Error))
	}
	return &Service{
		api:     api,
		conv:    conv,
		logger:  logger,
		workers: workers,
	}
}

// Failure records one item that could not be processed.
type Failure struct {
	Item string
	Err  error
}

// Report summarizes a bulk run. RunID ties log lines from the same
// run together.
type Report struct {
	RunID     string
	Succeeded int
	Failures  []Failure
}

// Failed reports the number of failed items.
func (r *Report) Failed() int { return len(r.Failures) }

// csv column layout: title, parent_title, content, labels
const (
	colTitle = iota
	colParentTitle
	colContent
	colLabels
	columnCount
)

// CreatePagesFromCSV creates pages described by a CSV manifest.
// Each row is title, parent_title, content, labels. Content is
// Markdown. parent_title may name a page created by an earlier row,
// or an existing page in the space. Labels are semicolon separated.
// Rows run sequentially so parents exist before their children; a
// failed row is recorded and the run continues.
func (s *Service) CreatePagesFromCSV(ctx context.Context, spaceID string, r io.Reader) (*Report, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryValidation, "failed to parse CSV manifest").
			WithTextCode("BULK_CSV_INVALID")
	}
	if len(rows) == 0 {
		return nil, goerrors.Wrap(fmt.Errorf("manifest is empty"), goerrors.CategoryValidation, "no rows to process").
			WithTextCode("BULK_CSV_INVALID")
	}

	// Skip a header row when the first cell says "title".
	if strings.EqualFold(strings.TrimSpace(rows[0][colTitle]), "title") {
		rows = rows[1:]
	}

	report := &Report{RunID: uuid.NewString()}
	created := map[string]string{} // title -> page ID from this run

	for i, row := range rows {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if len(row) < columnCount {
			report.Failures = append(report.Failures, Failure{
				Item: fmt.Sprintf("row %d", i+1),
				Err:  fmt.Errorf("expected %d columns, got %d", columnCount, len(row)),
			})
			continue
		}

		title := strings.TrimSpace(row[colTitle])
		if title == "" {
			report.Failures = append(report.Failures, Failure{
				Item: fmt.Sprintf("row %d", i+1),
				Err:  fmt.Errorf("title is empty"),
			})
			continue
		}

		parentID, err := s.resolveParent(ctx, spaceID, strings.TrimSpace(row[colParentTitle]), created)
		if err != nil {
			s.logger.Warn("skipping row, parent not found", "run_id", report.RunID, "title", title, "error", err)
			report.Failures = append(report.Failures, Failure{Item: title, Err: err})
			continue
		}

		page, err := s.api.CreatePage(ctx, confluence.CreatePageRequest{
			SpaceID:  spaceID,
			Title:    title,
			ParentID: parentID,
			Body:     s.conv.Convert(row[colContent]),
		})
		if err != nil {
			s.logger.Warn("failed to create page", "run_id", report.RunID, "title", title, "error", err)
			report.Failures = append(report.Failures, Failure{Item: title, Err: err})
			continue
		}

		created[title] = page.ID
		report.Succeeded++

		if labels := splitLabels(row[colLabels]); len(labels) > 0 {
			if err := s.api.AddLabels(ctx, page.ID, labels); err != nil {
				s.logger.Warn("failed to add labels", "run_id", report.RunID, "page_id", page.ID, "error", err)
			}
		}
	}

	s.logger.Info("bulk create finished",
		"run_id", report.RunID, "created", report.Succeeded, "failed", report.Failed())
	return report, nil
}

func (s *Service) resolveParent(ctx context.Context, spaceID, parentTitle string, created map[string]string) (string, error) {
	if parentTitle == "" {
		return "", nil
	}
	if id, ok := created[parentTitle]; ok {
		return id, nil
	}
	page, err := s.api.FindPageByTitle(ctx, spaceID, parentTitle)
	if err != nil {
		return "", err
	}
	return page.ID, nil
}

func splitLabels(field string) []string {
	var labels []string
	for _, part := range strings.Split(field, ";") {
		if label := strings.TrimSpace(part); label != "" {
			labels = append(labels, label)
		}
	}
	return labels
}

// PageUpdate names a page and its replacement Markdown content.
type PageUpdate struct {
	PageID string
	Title  string
	// Markdown replaces the page body after conversion.
	Markdown string
	Message  string
}

// ParseUpdateManifest reads a CSV manifest of page updates. Each row
// is page_id, content, title, message; title and message may be
// omitted. A header row starting with "page_id" is skipped.
func ParseUpdateManifest(r io.Reader) ([]PageUpdate, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryValidation, "failed to parse CSV manifest").
			WithTextCode("BULK_CSV_INVALID")
	}
	if len(rows) > 0 && strings.EqualFold(strings.TrimSpace(rows[0][0]), "page_id") {
		rows = rows[1:]
	}

	var updates []PageUpdate
	for i, row := range rows {
		if len(row) < 2 {
			return nil, goerrors.Wrap(
				fmt.Errorf("row %d: expected at least page_id and content, got %d columns", i+1, len(row)),
				goerrors.CategoryValidation, "invalid update manifest").
				WithTextCode("BULK_CSV_INVALID")
		}
		update := PageUpdate{
			PageID:   strings.TrimSpace(row[0]),
			Markdown: row[1],
		}
		if update.PageID == "" {
			return nil, goerrors.Wrap(
				fmt.Errorf("row %d: page_id is empty", i+1),
				goerrors.CategoryValidation, "invalid update manifest").
				WithTextCode("BULK_CSV_INVALID")
		}
		if len(row) > 2 {
			update.Title = strings.TrimSpace(row[2])
		}
		if len(row) > 3 {
			update.Message = strings.TrimSpace(row[3])
		}
		updates = append(updates, update)
	}
	return updates, nil
}

// UpdatePages rewrites many pages concurrently. Each update fetches
// the current version, converts the new content, and writes the next
// version. Failures are collected per page.
func (s *Service) UpdatePages(ctx context.Context, updates []PageUpdate) *Report {
	report := &Report{RunID: uuid.NewString()}
	if len(updates) == 0 {
		return report
	}

	var (
		mu   sync.Mutex
		wg   sync.WaitGroup
		jobs = make(chan PageUpdate)
	)

	for i := 0; i < s.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for update := range jobs {
				err := s.updateOne(ctx, update)
				mu.Lock()
				if err != nil {
					report.Failures = append(report.Failures, Failure{Item: update.PageID, Err: err})
				} else {
					report.Succeeded++
				}
				mu.Unlock()
			}
		}()
	}

	for _, update := range updates {
		select {
		case jobs <- update:
		case <-ctx.Done():
		}
		if ctx.Err() != nil {
			break
		}
	}
	close(jobs)
	wg.Wait()

	s.logger.Info("bulk update finished",
		"run_id", report.RunID, "updated", report.Succeeded, "failed", report.Failed())
	return report
}

func (s *Service) updateOne(ctx context.Context, update PageUpdate) error {
	current, err := s.api.GetPage(ctx, update.PageID)
	if err != nil {
		return err
	}

	title := update.Title
	if title == "" {
		title = current.Title
	}
	version := 1
	if current.Version != nil {
		version = current.Version.Number
	}

	_, err = s.api.UpdatePage(ctx, update.PageID, confluence.UpdatePageRequest{
		Title:   title,
		Body:    s.conv.Convert(update.Markdown),
		Version: version + 1,
		Message: update.Message,
	})
	return err
}

// FindReplace replaces a literal string across every page matched by
// the CQL query. With dryRun set, matching pages are reported but not
// modified.
func (s *Service) FindReplace(ctx context.Context, cql, find, replace string, dryRun bool) (*Report, error) {
	if find == "" {
		return nil, goerrors.Wrap(fmt.Errorf("search string is empty"), goerrors.CategoryValidation, "nothing to find").
			WithTextCode("BULK_FIND_EMPTY")
	}

	results, err := s.api.SearchCQL(ctx, cql, 0)
	if err != nil {
		return nil, err
	}

	report := &Report{RunID: uuid.NewString()}
	for _, result := range results {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		page, err := s.api.GetPage(ctx, result.ID)
		if err != nil {
			report.Failures = append(report.Failures, Failure{Item: result.ID, Err: err})
			continue
		}

		body := page.StorageValue()
		if !strings.Contains(body, find) {
			continue
		}

		if dryRun {
			s.logger.Info("would update page", "run_id", report.RunID, "page_id", page.ID, "title", page.Title)
			report.Succeeded++
			continue
		}

		version := 1
		if page.Version != nil {
			version = page.Version.Number
		}
		_, err = s.api.UpdatePage(ctx, page.ID, confluence.UpdatePageRequest{
			Title:   page.Title,
			Body:    strings.ReplaceAll(body, find, replace),
			Version: version + 1,
			Message: "bulk find/replace",
		})
		if err != nil {
			report.Failures = append(report.Failures, Failure{Item: page.ID, Err: err})
			continue
		}
		report.Succeeded++
	}

	s.logger.Info("find/replace finished",
		"run_id", report.RunID, "dry_run", dryRun, "changed", report.Succeeded, "failed", report.Failed())
	return report, nil
}
