package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/alfredjeanlab/blueprint/internal/model"
	"github.com/alfredjeanlab/blueprint/internal/store"
)

// taskColumns is the column list used for SELECT statements on the board_tasks table.
const taskColumns = `id, spec_id, project_id, title, description, status,
	subtasks, metadata, created_at, updated_at`

// executor is the interface satisfied by both *sql.DB and *sql.Tx.
type executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func queryCreateTask(ctx context.Context, db executor, t *model.BoardTask) error {
	subtasks, err := jsonbValue(t.Subtasks)
	if err != nil {
		return fmt.Errorf("encode subtasks: %w", err)
	}
	metadata, err := jsonbValue(t.Metadata)
	if err != nil {
		return fmt.Errorf("encode metadata: %w", err)
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO board_tasks (
			id, spec_id, project_id, title, description, status,
			subtasks, metadata, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6,
			$7, $8, $9, $10
		)`,
		t.ID,
		nullString(t.SpecID),
		t.ProjectID,
		t.Title,
		t.Description,
		string(t.Status),
		subtasks,
		metadata,
		t.CreatedAt,
		t.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: %s", store.ErrAlreadyExists, t.ID)
	}
	return err
}

// isUniqueViolation reports whether err is a PostgreSQL unique_violation.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

func queryGetTask(ctx context.Context, db executor, id string) (*model.BoardTask, error) {
	row := db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM board_tasks WHERE id = $1`, id)
	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

func queryListTasks(ctx context.Context, db executor, filter model.TaskFilter) ([]*model.BoardTask, int, error) {
	var (
		whereClauses []string
		args         []any
		argIdx       int
	)

	nextArg := func() string {
		argIdx++
		return fmt.Sprintf("$%d", argIdx)
	}

	if filter.ProjectID != "" {
		whereClauses = append(whereClauses, "project_id = "+nextArg())
		args = append(args, filter.ProjectID)
	}

	if len(filter.Status) > 0 {
		placeholders := make([]string, len(filter.Status))
		for i, s := range filter.Status {
			placeholders[i] = nextArg()
			args = append(args, string(s))
		}
		whereClauses = append(whereClauses, "status IN ("+strings.Join(placeholders, ", ")+")")
	}

	whereSQL := ""
	if len(whereClauses) > 0 {
		whereSQL = " WHERE " + strings.Join(whereClauses, " AND ")
	}

	// Single query with COUNT(*) OVER() to get total and rows atomically.
	dataQuery := "SELECT COUNT(*) OVER() AS total_count, " + taskColumns + " FROM board_tasks" + whereSQL + " ORDER BY " + parseSortClause(filter.Sort)

	if filter.Limit > 0 {
		dataQuery += " LIMIT " + nextArg()
		args = append(args, filter.Limit)
	}
	if filter.Offset > 0 {
		dataQuery += " OFFSET " + nextArg()
		args = append(args, filter.Offset)
	}

	rows, err := db.QueryContext(ctx, dataQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list board tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*model.BoardTask
	var total int
	for rows.Next() {
		t, n, err := scanTaskWithTotal(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan board tasks: %w", err)
		}
		total = n
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("scan board tasks: %w", err)
	}

	return tasks, total, nil
}

func queryUpdateTaskStatus(ctx context.Context, db executor, id string, status model.BoardStatus) (*model.BoardTask, error) {
	row := db.QueryRowContext(ctx, `
		UPDATE board_tasks
		SET status = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING `+taskColumns,
		id, string(status),
	)
	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

func queryDeleteTask(ctx context.Context, db executor, id string) error {
	res, err := db.ExecContext(ctx, `DELETE FROM board_tasks WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func parseSortClause(sort string) string {
	if sort == "" {
		return "created_at ASC, id ASC"
	}
	desc := strings.HasPrefix(sort, "-")
	col := strings.TrimPrefix(sort, "-")
	allowed := map[string]bool{
		"id": true, "created_at": true, "updated_at": true,
		"title": true, "status": true,
	}
	if !allowed[col] {
		return "created_at ASC, id ASC"
	}
	if desc {
		return col + " DESC"
	}
	return col + " ASC"
}
