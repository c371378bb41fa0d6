package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const uriScheme = "coursekit://"

func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "runs",
		Name:        "runs",
		Description: "Stored extraction runs",
		MIMEType:    "application/json",
	}, s.handleRunsResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "runs/{runId}/report",
		Name:        "run-report",
		Description: "Printable report of an extraction run",
		MIMEType:    "text/plain",
	}, s.handleReportResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "runs/{runId}/records/{fileName}",
		Name:        "run-record",
		Description: "Full text of one record of an extraction run",
		MIMEType:    "text/plain",
	}, s.handleRecordResource)
}

func (s *Server) handleRunsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	runs, err := s.ports.Runs.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	data, err := json.Marshal(runs)
	if err != nil {
		return nil, fmt.Errorf("encoding runs: %w", err)
	}
	return textResult(req.Params.URI, "application/json", string(data)), nil
}

func (s *Server) handleReportResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	runID, _, ok := parseRunURI(req.Params.URI)
	if !ok {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	run, err := s.ports.Runs.Get(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("getting run: %w", err)
	}
	return textResult(req.Params.URI, "text/plain", run.Report), nil
}

func (s *Server) handleRecordResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	runID, rest, ok := parseRunURI(req.Params.URI)
	name, found := strings.CutPrefix(rest, "records/")
	if !ok || !found || name == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	recs, err := s.ports.Runs.Records(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("getting records: %w", err)
	}
	for _, rec := range recs {
		if rec.FileName == name {
			return textResult(req.Params.URI, "text/plain", rec.RawText), nil
		}
	}
	return nil, mcp.ResourceNotFoundError(req.Params.URI)
}

// parseRunURI splits coursekit://runs/{id}/{rest}.
func parseRunURI(uri string) (runID, rest string, ok bool) {
	path, found := strings.CutPrefix(uri, uriScheme+"runs/")
	if !found {
		return "", "", false
	}
	runID, rest, _ = strings.Cut(path, "/")
	return runID, rest, runID != ""
}

func textResult(uri, mime, text string) *mcp.ReadResourceResult {
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: mime,
			Text:     text,
		}},
	}
}
