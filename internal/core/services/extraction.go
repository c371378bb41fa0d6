package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/coursekit/internal/aggregate"
	"github.com/custodia-labs/coursekit/internal/core/domain"
	"github.com/custodia-labs/coursekit/internal/core/ports/driven"
	"github.com/custodia-labs/coursekit/internal/core/ports/driving"
	"github.com/custodia-labs/coursekit/internal/export"
	"github.com/custodia-labs/coursekit/internal/logger"
)

// Ensure ExtractionService implements the interface.
var _ driving.ExtractionService = (*ExtractionService)(nil)

// ExtractionService runs source adapters in precedence order, merges their
// items, and builds the report and text records of a course.
type ExtractionService struct {
	adapters    []driven.SourceAdapter
	pageScan    driven.SourceAdapter
	fallback    driven.SourceAdapter
	collector   driven.ContentCollector
	pageContent driven.ContentCollector
	folders     driven.FolderResolver
	store       driven.RunStore
	settings    domain.ExtractSettings
	now         func() time.Time
}

// ExtractionOption configures an ExtractionService.
type ExtractionOption func(*ExtractionService)

// WithPageScan adds the scan of the loaded page. It runs after the
// API adapters and ranks below them.
func WithPageScan(a driven.SourceAdapter) ExtractionOption {
	return func(s *ExtractionService) { s.pageScan = a }
}

// WithFallback sets the adapter consulted only when every other source
// yields nothing.
func WithFallback(a driven.SourceAdapter) ExtractionOption {
	return func(s *ExtractionService) { s.fallback = a }
}

// WithCollector sets the structured content collector.
func WithCollector(c driven.ContentCollector) ExtractionOption {
	return func(s *ExtractionService) { s.collector = c }
}

// WithPageContent sets a collector reading the loaded page. Its sections
// fill whatever the main collector left empty.
func WithPageContent(c driven.ContentCollector) ExtractionOption {
	return func(s *ExtractionService) { s.pageContent = c }
}

// WithFolderResolver sets the folder id lookup used for placement.
func WithFolderResolver(r driven.FolderResolver) ExtractionOption {
	return func(s *ExtractionService) { s.folders = r }
}

// WithRunStore persists every finished run.
func WithRunStore(store driven.RunStore) ExtractionOption {
	return func(s *ExtractionService) { s.store = store }
}

// WithExtractSettings sets concurrency and record limits.
func WithExtractSettings(settings domain.ExtractSettings) ExtractionOption {
	return func(s *ExtractionService) { s.settings = settings }
}

// NewExtractionService creates an extraction service. Adapters are given
// in precedence order: the first to report an item wins duplicates.
func NewExtractionService(adapters []driven.SourceAdapter, opts ...ExtractionOption) *ExtractionService {
	s := &ExtractionService{
		adapters: adapters,
		settings: domain.DefaultSettings().Extract,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Extract runs one extraction. A run that finds nothing is reported with
// Success=false; the error is reserved for cancellation and storage.
func (s *ExtractionService) Extract(ctx context.Context, opts driving.ExtractOptions) (*domain.ExtractionResult, error) {
	result := &domain.ExtractionResult{
		RunID:     uuid.New().String(),
		StartedAt: s.now(),
	}
	courseID := opts.CourseID

	var sources []driven.SourceAdapter
	if courseID != "" {
		sources = append(sources, s.adapters...)
	} else {
		logger.Warn("extract: no course id, using the page scan only")
	}
	if s.pageScan != nil {
		sources = append(sources, s.pageScan)
	}

	logger.Section("Sources")
	agg := aggregate.New()
	lists, issues := s.fetchAll(ctx, sources, courseID)
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("extract: %w", err)
	}
	result.Issues = append(result.Issues, issues...)
	for i, items := range lists {
		added := agg.Add(items...)
		logger.Info("%s: %d items, %d new", sources[i].Name(), len(items), added)
	}

	if agg.Len() == 0 && s.fallback != nil {
		logger.Info("extract: no items from any source, scanning the page")
		items, fbIssues := s.fallback.Fetch(ctx, courseID)
		result.Issues = append(result.Issues, fbIssues...)
		agg.Add(items...)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("extract: %w", err)
	}

	var content *domain.ExtractedContent
	if !opts.SkipContent {
		logger.Section("Content")
		var contentIssues []domain.Issue
		content, contentIssues = s.collect(ctx, courseID)
		result.Issues = append(result.Issues, contentIssues...)
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("extract: %w", err)
		}
	}

	course := domain.Course{ID: courseID}
	if content != nil {
		if content.Course.ID == "" {
			content.Course.ID = courseID
		}
		course = content.Course
	}
	result.Course = course

	var folderNames map[string]string
	if s.folders != nil && course.ID != "" {
		folderNames = s.folders.Folders(ctx, course.ID)
	}
	agg.AttachFolders(course, folderNames)

	result.Items = agg.Items()
	result.Stats = agg.Stats()
	result.Content = content
	if content != nil {
		result.Report = export.GenerateReport(content)
	}
	result.Records = export.Split(export.TextRecords(content, result.Items), s.settings.MaxRecordChars)

	result.Success = len(result.Items) > 0 || (content != nil && !content.IsEmpty())
	if !result.Success {
		result.Message = domain.NoContentMessage
	}
	result.EndedAt = s.now()

	for _, issue := range result.Issues {
		logger.Warn("%s: %s (%s)", issue.Source, issue.Message, issue.Kind)
	}
	logger.Info("extract: %d items, %d records, %d issues", len(result.Items), len(result.Records), len(result.Issues))

	if s.store != nil {
		if err := s.store.SaveRun(ctx, result); err != nil {
			return result, fmt.Errorf("save run: %w", err)
		}
	}
	return result, nil
}

// fetchAll runs the sources and returns their lists in source order.
// Concurrent runs fill per-source slots so the merge order is unchanged.
func (s *ExtractionService) fetchAll(
	ctx context.Context, sources []driven.SourceAdapter, courseID string,
) ([][]domain.ContentItem, []domain.Issue) {
	lists := make([][]domain.ContentItem, len(sources))
	issues := make([][]domain.Issue, len(sources))

	if s.settings.Concurrent {
		var g errgroup.Group
		for i, src := range sources {
			g.Go(func() error {
				lists[i], issues[i] = src.Fetch(ctx, courseID)
				return nil
			})
		}
		_ = g.Wait()
	} else {
		for i, src := range sources {
			if ctx.Err() != nil {
				break
			}
			logger.Debug("extract: fetching %s", src.Name())
			lists[i], issues[i] = src.Fetch(ctx, courseID)
		}
	}

	var all []domain.Issue
	for _, is := range issues {
		all = append(all, is...)
	}
	return lists, all
}

// collect gathers structured content, filling gaps from the page.
func (s *ExtractionService) collect(ctx context.Context, courseID string) (*domain.ExtractedContent, []domain.Issue) {
	var content *domain.ExtractedContent
	var issues []domain.Issue

	if s.collector != nil && courseID != "" {
		content, issues = s.collector.Collect(ctx, courseID)
	}
	if s.pageContent != nil {
		page, pageIssues := s.pageContent.Collect(ctx, courseID)
		issues = append(issues, pageIssues...)
		if content == nil {
			content = page
		} else {
			content.Merge(page)
		}
	}
	if content != nil && content.ExtractedAt.IsZero() {
		content.ExtractedAt = s.now()
	}
	return content, issues
}
