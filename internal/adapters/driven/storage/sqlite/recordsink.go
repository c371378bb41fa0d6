package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/coursekit/internal/core/domain"
	"github.com/custodia-labs/coursekit/internal/core/ports/driven"
)

// Ensure RecordSink implements the interface.
var _ driven.RecordSink = (*RecordSink)(nil)

// RecordSink stores ingested records.
type RecordSink struct {
	store *Store
}

// Ingest stores one record and returns its generated id.
func (r *RecordSink) Ingest(ctx context.Context, rec domain.UploadRecord) (string, error) {
	if err := validate(rec); err != nil {
		return "", err
	}
	id := uuid.New().String()
	if err := insertRecord(ctx, r.store.db, id, rec); err != nil {
		return "", err
	}
	return id, nil
}

// IngestBatch stores records in one transaction. Invalid records are
// reported and skipped; a database failure aborts the batch.
func (r *RecordSink) IngestBatch(ctx context.Context, recs []domain.UploadRecord) ([]domain.IngestStatus, error) {
	out := make([]domain.IngestStatus, 0, len(recs))
	err := r.store.inTx(ctx, func(tx *sql.Tx) error {
		for _, rec := range recs {
			if err := validate(rec); err != nil {
				out = append(out, domain.IngestStatus{FileName: rec.FileName, Status: domain.IngestError, Error: err.Error()})
				continue
			}
			id := uuid.New().String()
			if err := insertRecord(ctx, tx, id, rec); err != nil {
				return err
			}
			out = append(out, domain.IngestStatus{ID: id, FileName: rec.FileName, Status: domain.IngestSuccess})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Content lists records for a student and course, newest first.
func (r *RecordSink) Content(ctx context.Context, studentID, courseID string) ([]domain.UploadRecord, error) {
	rows, err := r.store.db.QueryContext(ctx, `
		SELECT id, student_id, course_id, file_name, file_type, raw_text, file_size_bytes
		FROM ingest_records WHERE student_id = ? AND course_id = ?
		ORDER BY rowid DESC`, studentID, courseID)
	if err != nil {
		return nil, fmt.Errorf("list content: %w", err)
	}
	defer rows.Close()

	var out []domain.UploadRecord
	for rows.Next() {
		var rec domain.UploadRecord
		if err := rows.Scan(&rec.ID, &rec.StudentID, &rec.CourseID, &rec.FileName,
			&rec.FileType, &rec.RawText, &rec.FileSizeBytes); err != nil {
			return nil, fmt.Errorf("scan content: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Ping checks the database connection.
func (r *RecordSink) Ping(ctx context.Context) error {
	return r.store.db.PingContext(ctx)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertRecord(ctx context.Context, db execer, id string, rec domain.UploadRecord) error {
	size := rec.FileSizeBytes
	if size == 0 {
		size = len(rec.RawText)
	}
	_, err := db.ExecContext(ctx, `
		INSERT INTO ingest_records (id, student_id, course_id, file_name, file_type, raw_text, file_size_bytes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, rec.StudentID, rec.CourseID, rec.FileName, rec.FileType, rec.RawText, size, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("insert record %s: %w", rec.FileName, err)
	}
	return nil
}

func validate(rec domain.UploadRecord) error {
	var missing []string
	if strings.TrimSpace(rec.StudentID) == "" {
		missing = append(missing, "student_id")
	}
	if strings.TrimSpace(rec.CourseID) == "" {
		missing = append(missing, "course_id")
	}
	if strings.TrimSpace(rec.FileName) == "" {
		missing = append(missing, "file_name")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", domain.ErrInvalidInput, strings.Join(missing, ", "))
	}
	return nil
}
