package mcp

import (
	"context"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/coursekit/internal/core/domain"
)

func readRequest(uri string) *mcp.ReadResourceRequest {
	return &mcp.ReadResourceRequest{Params: &mcp.ReadResourceParams{URI: uri}}
}

func TestServer_handleReportResource(t *testing.T) {
	s := newTestServer(t, &stubRuns{runs: []domain.Run{{ID: "r1", Report: "REPORT"}}})

	res, err := s.handleReportResource(context.Background(), readRequest("coursekit://runs/r1/report"))

	require.NoError(t, err)
	require.Len(t, res.Contents, 1)
	assert.Equal(t, "REPORT", res.Contents[0].Text)
	assert.Equal(t, "text/plain", res.Contents[0].MIMEType)
}

func TestServer_handleRecordResource(t *testing.T) {
	s := newTestServer(t, &stubRuns{records: []domain.TextRecord{{FileName: "syllabus.txt", RawText: "Weekly labs."}}})

	res, err := s.handleRecordResource(context.Background(), readRequest("coursekit://runs/r1/records/syllabus.txt"))
	require.NoError(t, err)
	assert.Equal(t, "Weekly labs.", res.Contents[0].Text)

	_, err = s.handleRecordResource(context.Background(), readRequest("coursekit://runs/r1/records/missing.txt"))
	assert.Error(t, err)
}

func TestServer_handleRunsResource(t *testing.T) {
	s := newTestServer(t, &stubRuns{runs: []domain.Run{{ID: "r1", CourseID: "101"}}})

	res, err := s.handleRunsResource(context.Background(), readRequest("coursekit://runs"))

	require.NoError(t, err)
	assert.Contains(t, res.Contents[0].Text, `"id":"r1"`)
	assert.Equal(t, "application/json", res.Contents[0].MIMEType)
}
