package mcp

import (
	"context"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/coursekit/internal/core/domain"
)

// maxRecordText bounds the text returned per record by list_records.
const maxRecordText = 4000

// ListRunsInput is the input schema for list_runs.
type ListRunsInput struct {
	CourseID string `json:"course_id,omitempty" jsonschema:"only runs for this course id"`
}

// ListRunsOutput is the output schema for list_runs.
type ListRunsOutput struct {
	Runs  []RunOutput `json:"runs"`
	Count int         `json:"count"`
}

// RunOutput summarises a run.
type RunOutput struct {
	ID         string `json:"id"`
	CourseID   string `json:"course_id"`
	CourseName string `json:"course_name"`
	Success    bool   `json:"success"`
	Message    string `json:"message,omitempty"`
	ItemCount  int    `json:"item_count"`
	StartedAt  string `json:"started_at"`
}

// ListItemsInput is the input schema for list_items.
type ListItemsInput struct {
	RunID  string `json:"run_id" jsonschema:"the extraction run id"`
	Source string `json:"source,omitempty" jsonschema:"only items discovered by this source, e.g. api or module"`
}

// ListItemsOutput is the output schema for list_items.
type ListItemsOutput struct {
	Items []ItemOutput `json:"items"`
	Count int          `json:"count"`
}

// ItemOutput is one downloadable item.
type ItemOutput struct {
	Name        string `json:"name"`
	URL         string `json:"url"`
	ContentType string `json:"content_type"`
	Source      string `json:"source"`
	Folder      string `json:"folder"`
	SizeBytes   int64  `json:"size_bytes,omitempty"`
}

// RunInput selects a run.
type RunInput struct {
	RunID string `json:"run_id" jsonschema:"the extraction run id"`
}

// GetReportOutput is the output schema for get_report.
type GetReportOutput struct {
	RunID  string `json:"run_id"`
	Course string `json:"course"`
	Report string `json:"report"`
}

// ListRecordsOutput is the output schema for list_records.
type ListRecordsOutput struct {
	Records []RecordOutput `json:"records"`
	Count   int            `json:"count"`
}

// RecordOutput is one text record. Text is truncated to a fixed length.
type RecordOutput struct {
	FileName  string `json:"file_name"`
	FileType  string `json:"file_type"`
	SizeBytes int    `json:"size_bytes"`
	Text      string `json:"text"`
	Truncated bool   `json:"truncated,omitempty"`
}

func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_runs",
		Description: "List stored course extraction runs, newest first",
	}, s.handleListRuns)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_items",
		Description: "List the downloadable files and links found by an extraction run",
	}, s.handleListItems)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_report",
		Description: "Get the printable text report of a course extraction run",
	}, s.handleGetReport)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_records",
		Description: "List the plain-text records (syllabus, assignments, pages, ...) of a run",
	}, s.handleListRecords)
}

func (s *Server) handleListRuns(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ListRunsInput,
) (*mcp.CallToolResult, ListRunsOutput, error) {
	runs, err := s.ports.Runs.List(ctx)
	if err != nil {
		return nil, ListRunsOutput{}, err
	}

	out := ListRunsOutput{Runs: []RunOutput{}}
	for _, run := range runs {
		if input.CourseID != "" && run.CourseID != input.CourseID {
			continue
		}
		out.Runs = append(out.Runs, RunOutput{
			ID:         run.ID,
			CourseID:   run.CourseID,
			CourseName: run.CourseName,
			Success:    run.Success,
			Message:    run.Message,
			ItemCount:  run.ItemCount,
			StartedAt:  run.StartedAt.UTC().Format("2006-01-02T15:04:05Z"),
		})
	}
	out.Count = len(out.Runs)
	return nil, out, nil
}

func (s *Server) handleListItems(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ListItemsInput,
) (*mcp.CallToolResult, ListItemsOutput, error) {
	items, err := s.ports.Runs.Items(ctx, input.RunID, domain.Source(strings.TrimSpace(input.Source)))
	if err != nil {
		return nil, ListItemsOutput{}, err
	}

	out := ListItemsOutput{Items: make([]ItemOutput, len(items)), Count: len(items)}
	for i, item := range items {
		out.Items[i] = ItemOutput{
			Name:        item.Name,
			URL:         item.URL,
			ContentType: string(item.ContentType),
			Source:      string(item.Source),
			Folder:      item.FolderPath,
			SizeBytes:   item.SizeBytes,
		}
	}
	return nil, out, nil
}

func (s *Server) handleGetReport(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RunInput,
) (*mcp.CallToolResult, GetReportOutput, error) {
	run, err := s.ports.Runs.Get(ctx, input.RunID)
	if err != nil {
		return nil, GetReportOutput{}, err
	}
	return nil, GetReportOutput{RunID: run.ID, Course: run.CourseName, Report: run.Report}, nil
}

func (s *Server) handleListRecords(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RunInput,
) (*mcp.CallToolResult, ListRecordsOutput, error) {
	recs, err := s.ports.Runs.Records(ctx, input.RunID)
	if err != nil {
		return nil, ListRecordsOutput{}, err
	}

	out := ListRecordsOutput{Records: make([]RecordOutput, len(recs)), Count: len(recs)}
	for i, rec := range recs {
		text, truncated := clip(rec.RawText, maxRecordText)
		out.Records[i] = RecordOutput{
			FileName:  rec.FileName,
			FileType:  rec.FileType,
			SizeBytes: rec.SizeBytes(),
			Text:      text,
			Truncated: truncated,
		}
	}
	return nil, out, nil
}

func clip(s string, limit int) (string, bool) {
	r := []rune(s)
	if len(r) <= limit {
		return s, false
	}
	return string(r[:limit]), true
}
