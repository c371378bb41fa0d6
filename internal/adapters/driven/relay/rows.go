package relay

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/custodia-labs/coursekit/internal/core/domain"
)

// decodeRow maps a /content row onto an UploadRecord. Warehouse-backed
// relays return upper-case column names, others lower-case.
func decodeRow(row map[string]any) domain.UploadRecord {
	fields := make(map[string]any, len(row))
	for k, v := range row {
		fields[strings.ToLower(k)] = v
	}

	rec := domain.UploadRecord{
		ID:        str(fields["id"]),
		StudentID: str(fields["student_id"]),
		CourseID:  str(fields["course_id"]),
		FileName:  str(fields["file_name"]),
		FileType:  str(fields["file_type"]),
		RawText:   str(fields["raw_text"]),
	}
	rec.FileSizeBytes = num(fields["file_size_bytes"])
	if rec.FileSizeBytes == 0 {
		rec.FileSizeBytes = num(fields["content_length"])
	}
	if rec.FileSizeBytes == 0 {
		rec.FileSizeBytes = len(rec.RawText)
	}
	return rec
}

func str(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprint(t)
	}
}

func num(v any) int {
	switch t := v.(type) {
	case float64:
		return int(t)
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(t))
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}
