package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/coursekit/internal/core/domain"
	"github.com/custodia-labs/coursekit/internal/core/ports/driven"
)

// Ensure RunStore implements the interface.
var _ driven.RunStore = (*RunStore)(nil)

// RunStore persists extraction runs.
type RunStore struct {
	store *Store
}

// SaveRun stores a run with its items and records, replacing any run with
// the same id.
func (r *RunStore) SaveRun(ctx context.Context, result *domain.ExtractionResult) error {
	if result == nil || result.RunID == "" {
		return domain.ErrInvalidInput
	}
	issues, err := json.Marshal(result.Issues)
	if err != nil {
		return fmt.Errorf("encode issues: %w", err)
	}
	run := domain.RunFromResult(result)

	return r.store.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, run.ID); err != nil {
			return fmt.Errorf("replace run: %w", err)
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO runs (id, course_id, course_name, success, message, item_count, report, issues, started_at, ended_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			run.ID, run.CourseID, run.CourseName, run.Success, run.Message, run.ItemCount,
			run.Report, string(issues), run.StartedAt.UTC(), nullTime(run.EndedAt),
		)
		if err != nil {
			return fmt.Errorf("insert run: %w", err)
		}

		itemStmt, err := tx.PrepareContext(ctx, `
			INSERT INTO items (run_id, position, url, name, content_type, source, folder, folder_path,
				size_bytes, mime_type, course_id, course_name, page_title, assignment_name,
				module_name, element_type, download_path)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("prepare items: %w", err)
		}
		defer itemStmt.Close()
		for i, it := range result.Items {
			if _, err := itemStmt.ExecContext(ctx, run.ID, i, it.URL, it.Name, string(it.ContentType),
				string(it.Source), it.Folder, it.FolderPath, it.SizeBytes, it.MIMEType, it.CourseID,
				it.CourseName, it.PageTitle, it.AssignmentName, it.ModuleName, it.ElementType,
				it.DownloadPath); err != nil {
				return fmt.Errorf("insert item %d: %w", i, err)
			}
		}

		recStmt, err := tx.PrepareContext(ctx, `
			INSERT INTO records (run_id, position, file_name, file_type, raw_text) VALUES (?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("prepare records: %w", err)
		}
		defer recStmt.Close()
		for i, rec := range result.Records {
			if _, err := recStmt.ExecContext(ctx, run.ID, i, rec.FileName, rec.FileType, rec.RawText); err != nil {
				return fmt.Errorf("insert record %d: %w", i, err)
			}
		}
		return nil
	})
}

// GetRun retrieves a run by id.
func (r *RunStore) GetRun(ctx context.Context, id string) (*domain.Run, error) {
	row := r.store.db.QueryRowContext(ctx, `
		SELECT id, course_id, course_name, success, message, item_count, report, started_at, ended_at
		FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	return run, nil
}

// ListRuns returns runs, newest first. Reports are not loaded.
func (r *RunStore) ListRuns(ctx context.Context) ([]domain.Run, error) {
	rows, err := r.store.db.QueryContext(ctx, `
		SELECT id, course_id, course_name, success, message, item_count, '', started_at, ended_at
		FROM runs ORDER BY started_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []domain.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// Items returns the items of a run in aggregation order.
func (r *RunStore) Items(ctx context.Context, runID string) ([]domain.ContentItem, error) {
	if err := r.exists(ctx, runID); err != nil {
		return nil, err
	}
	rows, err := r.store.db.QueryContext(ctx, `
		SELECT url, name, content_type, source, folder, folder_path, size_bytes, mime_type,
			course_id, course_name, page_title, assignment_name, module_name, element_type, download_path
		FROM items WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	var items []domain.ContentItem
	for rows.Next() {
		var it domain.ContentItem
		var contentType, source string
		if err := rows.Scan(&it.URL, &it.Name, &contentType, &source, &it.Folder, &it.FolderPath,
			&it.SizeBytes, &it.MIMEType, &it.CourseID, &it.CourseName, &it.PageTitle,
			&it.AssignmentName, &it.ModuleName, &it.ElementType, &it.DownloadPath); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		it.ContentType = domain.ContentType(contentType)
		it.Source = domain.Source(source)
		items = append(items, it)
	}
	return items, rows.Err()
}

// Records returns the text records of a run.
func (r *RunStore) Records(ctx context.Context, runID string) ([]domain.TextRecord, error) {
	if err := r.exists(ctx, runID); err != nil {
		return nil, err
	}
	rows, err := r.store.db.QueryContext(ctx, `
		SELECT file_name, file_type, raw_text FROM records WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	var recs []domain.TextRecord
	for rows.Next() {
		var rec domain.TextRecord
		if err := rows.Scan(&rec.FileName, &rec.FileType, &rec.RawText); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

// Issues returns the issues recorded for a run.
func (r *RunStore) Issues(ctx context.Context, runID string) ([]domain.Issue, error) {
	var raw string
	err := r.store.db.QueryRowContext(ctx, `SELECT issues FROM runs WHERE id = ?`, runID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get issues: %w", err)
	}
	var issues []domain.Issue
	if err := json.Unmarshal([]byte(raw), &issues); err != nil {
		return nil, fmt.Errorf("decode issues: %w", err)
	}
	return issues, nil
}

// DeleteRun removes a run; items and records cascade.
func (r *RunStore) DeleteRun(ctx context.Context, id string) error {
	res, err := r.store.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *RunStore) exists(ctx context.Context, runID string) error {
	var one int
	err := r.store.db.QueryRowContext(ctx, `SELECT 1 FROM runs WHERE id = ?`, runID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	return err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*domain.Run, error) {
	var run domain.Run
	var ended sql.NullTime
	if err := row.Scan(&run.ID, &run.CourseID, &run.CourseName, &run.Success, &run.Message,
		&run.ItemCount, &run.Report, &run.StartedAt, &ended); err != nil {
		return nil, err
	}
	if ended.Valid {
		run.EndedAt = ended.Time
	}
	return &run, nil
}

func nullTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}
