package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"

	"github.com/alfredjeanlab/blueprint/internal/model"
	"github.com/alfredjeanlab/blueprint/internal/store"
)

// newMockDB creates a sqlmock database with automatic cleanup and expectation checking.
func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unfulfilled expectations: %v", err)
		}
		db.Close()
	})
	return db, mock
}

var taskRowColumns = []string{
	"id", "spec_id", "project_id", "title", "description", "status",
	"subtasks", "metadata", "created_at", "updated_at",
}

var taskWithTotalColumns = append([]string{"total_count"}, taskRowColumns...)

const (
	subtasksJSON = `[{"id":"sub-1","title":"Write handler","description":"Write handler","status":"pending"}]`
	metadataJSON = `{"category":"feature","complexity":"small","priority":"high","acceptance_criteria":["Write handler"],"dependencies":["arch-00000002-k1"],"source_task_id":"task-00000001","module_id":"mod-api","phase":2}`
)

func TestParseSortClause(t *testing.T) {
	for _, tc := range []struct {
		input string
		want  string
	}{
		{"", "created_at ASC, id ASC"},
		{"title", "title ASC"},
		{"-updated_at", "updated_at DESC"},
		{"evil_column", "created_at ASC, id ASC"},
		{"-evil_column", "created_at ASC, id ASC"},
	} {
		if got := parseSortClause(tc.input); got != tc.want {
			t.Errorf("parseSortClause(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestScanHelpers(t *testing.T) {
	if nullString("").Valid {
		t.Error("nullString(\"\") should be invalid")
	}
	if ns := nullString("hello"); !ns.Valid || ns.String != "hello" {
		t.Errorf("nullString(\"hello\") = %v", ns)
	}

	b, err := jsonbValue(model.TaskMetadata{Category: "feature"})
	if err != nil {
		t.Fatalf("jsonbValue: %v", err)
	}
	if len(b) == 0 || b[0] != '{' {
		t.Errorf("jsonbValue() = %s, want JSON object", b)
	}
}

func TestQueryCreateTask(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Now().UTC()
	task := &model.BoardTask{
		ID: "arch-00000001-k1", SpecID: "arch-00000001", ProjectID: "proj-1",
		Title: "Build API", Description: "desc", Status: model.BoardBacklog,
		CreatedAt: now, UpdatedAt: now,
	}
	mock.ExpectExec("INSERT INTO board_tasks").
		WithArgs(
			"arch-00000001-k1", sqlmock.AnyArg(), "proj-1", "Build API", "desc", "backlog",
			sqlmock.AnyArg(), sqlmock.AnyArg(), now, now,
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := queryCreateTask(context.Background(), db, task); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestQueryCreateTask_Duplicate(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectExec("INSERT INTO board_tasks").
		WillReturnError(&pq.Error{Code: "23505", Message: "duplicate key value violates unique constraint"})

	err := queryCreateTask(context.Background(), db, &model.BoardTask{ID: "t1", ProjectID: "p", Title: "T"})
	if !errors.Is(err, store.ErrAlreadyExists) {
		t.Fatalf("expected store.ErrAlreadyExists, got %v", err)
	}
}

func TestQueryGetTask(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Now().UTC()

	rows := sqlmock.NewRows(taskRowColumns).AddRow(
		"arch-00000001-k1", "arch-00000001", "proj-1", "Build API", "desc", "backlog",
		[]byte(subtasksJSON), []byte(metadataJSON), now, now,
	)
	mock.ExpectQuery("SELECT .+ FROM board_tasks WHERE id = \\$1").WithArgs("arch-00000001-k1").WillReturnRows(rows)

	task, err := queryGetTask(context.Background(), db, "arch-00000001-k1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if task.ID != "arch-00000001-k1" || task.Status != model.BoardBacklog {
		t.Fatalf("got id=%q status=%q", task.ID, task.Status)
	}
	if len(task.Subtasks) != 1 || task.Subtasks[0].ID != "sub-1" {
		t.Errorf("Subtasks = %+v, want one subtask sub-1", task.Subtasks)
	}
	if task.Metadata.Priority != model.PriorityHigh || task.Metadata.Phase != 2 {
		t.Errorf("Metadata = %+v, want priority high phase 2", task.Metadata)
	}
	if len(task.Metadata.Dependencies) != 1 || task.Metadata.Dependencies[0] != "arch-00000002-k1" {
		t.Errorf("Dependencies = %v", task.Metadata.Dependencies)
	}
}

func TestQueryGetTask_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery("SELECT .+ FROM board_tasks WHERE id = \\$1").WithArgs("nonexistent").WillReturnError(sql.ErrNoRows)

	_, err := queryGetTask(context.Background(), db, "nonexistent")
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected store.ErrNotFound, got %v", err)
	}
}

func TestQueryGetTask_BadMetadata(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Now().UTC()
	rows := sqlmock.NewRows(taskRowColumns).AddRow(
		"t1", nil, "proj-1", "T", "", "backlog", []byte(`[]`), []byte(`{not json`), now, now,
	)
	mock.ExpectQuery("SELECT .+ FROM board_tasks").WithArgs("t1").WillReturnRows(rows)

	if _, err := queryGetTask(context.Background(), db, "t1"); err == nil {
		t.Fatal("expected decode error, got nil")
	}
}

func TestQueryUpdateTaskStatus(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Now().UTC()
	rows := sqlmock.NewRows(taskRowColumns).AddRow(
		"t1", "arch-00000001", "proj-1", "T", "", "in_progress", []byte(`[]`), []byte(`{}`), now, now,
	)
	mock.ExpectQuery("UPDATE board_tasks\\s+SET status = \\$2").WithArgs("t1", "in_progress").WillReturnRows(rows)

	task, err := queryUpdateTaskStatus(context.Background(), db, "t1", model.BoardInProgress)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if task.Status != model.BoardInProgress {
		t.Errorf("Status = %q, want in_progress", task.Status)
	}
}

func TestQueryUpdateTaskStatus_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery("UPDATE board_tasks").WithArgs("missing", "done").WillReturnError(sql.ErrNoRows)

	if _, err := queryUpdateTaskStatus(context.Background(), db, "missing", model.BoardDone); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected store.ErrNotFound, got %v", err)
	}
}

func TestQueryDeleteTask(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectExec("DELETE FROM board_tasks WHERE id = \\$1").WithArgs("t1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := queryDeleteTask(context.Background(), db, "t1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestQueryDeleteTask_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectExec("DELETE FROM board_tasks WHERE id = \\$1").WithArgs("nonexistent").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := queryDeleteTask(context.Background(), db, "nonexistent"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected store.ErrNotFound, got %v", err)
	}
}

func TestQueryListTasks(t *testing.T) {
	now := time.Now().UTC()

	for _, tc := range []struct {
		name      string
		filter    model.TaskFilter
		queryPat  string
		args      []driver.Value
		wantCount int
		wantTotal int
	}{
		{
			name:      "NoFilter",
			filter:    model.TaskFilter{},
			queryPat:  "SELECT COUNT\\(\\*\\) OVER\\(\\) AS total_count, .+ FROM board_tasks ORDER BY created_at ASC, id ASC",
			wantCount: 2,
			wantTotal: 2,
		},
		{
			name:      "FilterByProject",
			filter:    model.TaskFilter{ProjectID: "proj-1"},
			queryPat:  "SELECT .+ FROM board_tasks WHERE project_id = \\$1 ORDER BY",
			args:      []driver.Value{"proj-1"},
			wantCount: 1,
			wantTotal: 1,
		},
		{
			name:      "FilterByStatus",
			filter:    model.TaskFilter{Status: []model.BoardStatus{model.BoardBacklog, model.BoardDone}},
			queryPat:  "SELECT .+ FROM board_tasks WHERE status IN \\(\\$1, \\$2\\) ORDER BY",
			args:      []driver.Value{"backlog", "done"},
			wantCount: 1,
			wantTotal: 1,
		},
		{
			name:      "WithLimitAndOffset",
			filter:    model.TaskFilter{Limit: 10, Offset: 5},
			queryPat:  "SELECT .+ FROM board_tasks ORDER BY .+ LIMIT \\$1 OFFSET \\$2",
			args:      []driver.Value{10, 5},
			wantCount: 1,
			wantTotal: 20,
		},
		{
			name:     "WithSort",
			filter:   model.TaskFilter{Sort: "-updated_at"},
			queryPat: "SELECT .+ FROM board_tasks ORDER BY updated_at DESC",
		},
		{
			name:      "CombinedFilters",
			filter:    model.TaskFilter{ProjectID: "proj-1", Status: []model.BoardStatus{model.BoardBacklog}, Limit: 5},
			queryPat:  "SELECT .+ FROM board_tasks WHERE project_id = \\$1 AND status IN \\(\\$2\\) ORDER BY .+ LIMIT \\$3",
			args:      []driver.Value{"proj-1", "backlog", 5},
			wantCount: 1,
			wantTotal: 3,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			db, mock := newMockDB(t)
			eq := mock.ExpectQuery(tc.queryPat)
			if len(tc.args) > 0 {
				eq.WithArgs(tc.args...)
			}
			r := sqlmock.NewRows(taskWithTotalColumns)
			for i := range tc.wantCount {
				r.AddRow(tc.wantTotal,
					fmt.Sprintf("t-%d", i+1), nil, "proj-1", "T", "", "backlog",
					[]byte(`[]`), []byte(`{}`), now, now)
			}
			eq.WillReturnRows(r)

			tasks, total, err := queryListTasks(context.Background(), db, tc.filter)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(tasks) != tc.wantCount {
				t.Fatalf("expected %d tasks, got %d", tc.wantCount, len(tasks))
			}
			if total != tc.wantTotal {
				t.Fatalf("expected total=%d, got %d", tc.wantTotal, total)
			}
		})
	}
}

func TestRunInTransaction_Commit(t *testing.T) {
	db, mock := newMockDB(t)
	s := &PostgresStore{db: db}
	now := time.Now().UTC()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO board_tasks").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO board_tasks").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := s.RunInTransaction(context.Background(), func(tx store.Store) error {
		for _, id := range []string{"t1", "t2"} {
			task := &model.BoardTask{ID: id, ProjectID: "p", Title: id, Status: model.BoardBacklog, CreatedAt: now, UpdatedAt: now}
			if err := tx.CreateTask(context.Background(), task); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRunInTransaction_Rollback(t *testing.T) {
	db, mock := newMockDB(t)
	s := &PostgresStore{db: db}
	boom := errors.New("boom")

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO board_tasks").WillReturnError(boom)
	mock.ExpectRollback()

	err := s.RunInTransaction(context.Background(), func(tx store.Store) error {
		return tx.CreateTask(context.Background(), &model.BoardTask{ID: "t1", ProjectID: "p", Title: "T"})
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
}
