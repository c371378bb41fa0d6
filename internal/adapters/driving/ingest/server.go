// Package ingest serves the relay HTTP API on top of a local record sink,
// so extraction runs can be uploaded and listed without the hosted relay.
package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/custodia-labs/coursekit/internal/core/domain"
	"github.com/custodia-labs/coursekit/internal/core/ports/driven"
	"github.com/custodia-labs/coursekit/internal/logger"
)

// Defaults for Config.
const (
	DefaultAddr         = "127.0.0.1:3000"
	DefaultMaxBodyBytes = 50 << 20
)

// Config configures the ingest server.
type Config struct {
	Addr         string
	MaxBodyBytes int64
}

// Server serves /ingest, /ingest-batch, /ping-snowflake and /content.
type Server struct {
	sink   driven.RecordSink
	config Config
	router *mux.Router
}

// NewServer creates a server backed by sink.
func NewServer(sink driven.RecordSink, cfg Config) *Server {
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}
	s := &Server{sink: sink, config: cfg}
	s.router = s.routes()
	return s
}

// Handler returns the HTTP handler with request logging.
func (s *Server) Handler() http.Handler {
	return logRequests(s.router)
}

// Run listens on the configured address until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              s.config.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		httpServer.Shutdown(shutdownCtx) //nolint:errcheck
	}()

	logger.Info("ingest server listening on %s", s.config.Addr)
	err := httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/", s.health).Methods(http.MethodGet)
	r.HandleFunc("/ping-snowflake", s.ping).Methods(http.MethodGet)
	r.HandleFunc("/ingest", s.ingest).Methods(http.MethodPost)
	r.HandleFunc("/ingest-batch", s.ingestBatch).Methods(http.MethodPost)
	r.HandleFunc("/content/{student}/{course}", s.content).Methods(http.MethodGet)
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not found", "")
	})
	return r
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "message": "coursekit ingest server is running"})
}

func (s *Server) ping(w http.ResponseWriter, r *http.Request) {
	if err := s.sink.Ping(r.Context()); err != nil {
		logger.Error("ping failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"ok":      false,
			"error":   err.Error(),
			"status":  "error",
			"details": "check server logs for more information",
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":          true,
		"status":      "connected",
		"server_time": time.Now().UTC().Format(time.RFC3339),
		"message":     "record store is reachable",
	})
}

func (s *Server) ingest(w http.ResponseWriter, r *http.Request) {
	var rec domain.UploadRecord
	if !s.decode(w, r, &rec) {
		return
	}
	normalise(&rec)

	id, err := s.sink.Ingest(r.Context(), rec)
	if err != nil {
		writeError(w, statusFor(err), err.Error(), "")
		return
	}
	logger.Info("ingested %s for %s", rec.FileName, rec.StudentID)
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "id": id})
}

func (s *Server) ingestBatch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Files []domain.UploadRecord `json:"files"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	if req.Files == nil {
		writeError(w, http.StatusBadRequest, "files is required", "")
		return
	}
	for i := range req.Files {
		normalise(&req.Files[i])
	}

	results, err := s.sink.IngestBatch(r.Context(), req.Files)
	if err != nil {
		logger.Error("batch ingest failed: %v", err)
		writeError(w, statusFor(err), err.Error(), "")
		return
	}

	succeeded := 0
	for _, res := range results {
		if res.Status == domain.IngestSuccess {
			succeeded++
		}
	}
	logger.Info("batch ingest: %d of %d stored", succeeded, len(req.Files))
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":        true,
		"processed": len(req.Files),
		"results":   results,
	})
}

// fileRow is one entry of the /content listing.
type fileRow struct {
	FileName      string `json:"file_name"`
	FileType      string `json:"file_type"`
	ContentLength int    `json:"content_length"`
}

func (s *Server) content(w http.ResponseWriter, r *http.Request) {
	courseID := strings.TrimSpace(mux.Vars(r)["course"])
	studentID := domain.StudentIDFor(courseID)

	recs, err := s.sink.Content(r.Context(), studentID, courseID)
	if err != nil {
		writeError(w, statusFor(err), err.Error(), "")
		return
	}

	files := make([]fileRow, len(recs))
	for i, rec := range recs {
		files[i] = fileRow{FileName: rec.FileName, FileType: rec.FileType, ContentLength: rec.FileSizeBytes}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":          true,
		"student_id":  studentID,
		"course_id":   courseID,
		"files":       files,
		"total_files": len(files),
	})
}

// decode reads a JSON body, answering 400 on failure.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	body := http.MaxBytesReader(w, r.Body, s.config.MaxBodyBytes)
	if err := json.NewDecoder(body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body", err.Error())
		return false
	}
	return true
}

// normalise derives the student id from the course id, whatever the
// client sent.
func normalise(rec *domain.UploadRecord) {
	rec.CourseID = strings.TrimSpace(rec.CourseID)
	if rec.CourseID != "" {
		rec.StudentID = domain.StudentIDFor(rec.CourseID)
	}
	if rec.FileSizeBytes == 0 {
		rec.FileSizeBytes = len(rec.RawText)
	}
}

func statusFor(err error) int {
	if errors.Is(err, domain.ErrInvalidInput) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
