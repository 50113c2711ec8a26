package postgres

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/alfredjeanlab/blueprint/internal/model"
)

// scannable is the interface satisfied by both *sql.Row and *sql.Rows.
type scannable interface {
	Scan(dest ...any) error
}

// scanTask scans a single row into a model.BoardTask.
// The row must contain columns in the order defined by taskColumns.
func scanTask(row scannable) (*model.BoardTask, error) {
	var t model.BoardTask
	var specID sql.NullString
	var subtasks, metadata []byte

	err := row.Scan(
		&t.ID,
		&specID,
		&t.ProjectID,
		&t.Title,
		&t.Description,
		&t.Status,
		&subtasks,
		&metadata,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := decodeTaskJSON(&t, specID, subtasks, metadata); err != nil {
		return nil, err
	}
	return &t, nil
}

// scanTaskWithTotal scans a row that has a leading total_count column
// followed by the standard task columns. Used by queryListTasks with
// COUNT(*) OVER().
func scanTaskWithTotal(row scannable) (*model.BoardTask, int, error) {
	var total int
	var t model.BoardTask
	var specID sql.NullString
	var subtasks, metadata []byte

	err := row.Scan(
		&total,
		&t.ID,
		&specID,
		&t.ProjectID,
		&t.Title,
		&t.Description,
		&t.Status,
		&subtasks,
		&metadata,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, 0, err
	}
	if err := decodeTaskJSON(&t, specID, subtasks, metadata); err != nil {
		return nil, 0, err
	}
	return &t, total, nil
}

func decodeTaskJSON(t *model.BoardTask, specID sql.NullString, subtasks, metadata []byte) error {
	t.SpecID = specID.String
	if len(subtasks) > 0 {
		if err := json.Unmarshal(subtasks, &t.Subtasks); err != nil {
			return fmt.Errorf("decode subtasks for %s: %w", t.ID, err)
		}
	}
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &t.Metadata); err != nil {
			return fmt.Errorf("decode metadata for %s: %w", t.ID, err)
		}
	}
	return nil
}

// nullString converts a string to sql.NullString; empty string is null.
func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// jsonbValue encodes v for a JSONB column.
func jsonbValue(v any) ([]byte, error) {
	return json.Marshal(v)
}
