package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alfredjeanlab/blueprint/internal/model"
	"github.com/alfredjeanlab/blueprint/internal/store"
)

func task(id, project string, status model.BoardStatus, created time.Time) *model.BoardTask {
	return &model.BoardTask{
		ID: id, ProjectID: project, Title: id, Status: status,
		Metadata:  model.TaskMetadata{Dependencies: []string{"dep"}},
		CreatedAt: created, UpdatedAt: created,
	}
}

func TestCreateGet(t *testing.T) {
	ctx := context.Background()
	s := New()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	in := task("t1", "p", model.BoardBacklog, now)
	if err := s.CreateTask(ctx, in); err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	in.Metadata.Dependencies[0] = "mutated"

	got, err := s.GetTask(ctx, "t1")
	if err != nil {
		t.Fatalf("GetTask: %v", err)
	}
	if got.Metadata.Dependencies[0] != "dep" {
		t.Errorf("stored task aliases caller slice: %v", got.Metadata.Dependencies)
	}

	if err := s.CreateTask(ctx, task("t1", "p", model.BoardBacklog, now)); !errors.Is(err, store.ErrAlreadyExists) {
		t.Errorf("duplicate CreateTask = %v, want ErrAlreadyExists", err)
	}
	if _, err := s.GetTask(ctx, "missing"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("GetTask(missing) = %v, want ErrNotFound", err)
	}
}

func TestListTasks(t *testing.T) {
	ctx := context.Background()
	s := New()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	for _, tk := range []*model.BoardTask{
		task("c", "p1", model.BoardBacklog, base.Add(2*time.Second)),
		task("b", "p1", model.BoardDone, base),
		task("a", "p1", model.BoardBacklog, base),
		task("z", "p2", model.BoardBacklog, base),
	} {
		if err := s.CreateTask(ctx, tk); err != nil {
			t.Fatalf("CreateTask(%s): %v", tk.ID, err)
		}
	}

	for _, tc := range []struct {
		name   string
		filter model.TaskFilter
		want   []string
		total  int
	}{
		{"Project", model.TaskFilter{ProjectID: "p1"}, []string{"a", "b", "c"}, 3},
		{"Status", model.TaskFilter{ProjectID: "p1", Status: []model.BoardStatus{model.BoardBacklog}}, []string{"a", "c"}, 2},
		{"Limit", model.TaskFilter{ProjectID: "p1", Limit: 2}, []string{"a", "b"}, 3},
		{"Offset", model.TaskFilter{ProjectID: "p1", Offset: 2}, []string{"c"}, 3},
		{"OffsetPastEnd", model.TaskFilter{ProjectID: "p1", Offset: 9}, nil, 3},
		{"All", model.TaskFilter{}, []string{"a", "b", "z", "c"}, 4},
	} {
		t.Run(tc.name, func(t *testing.T) {
			got, total, err := s.ListTasks(ctx, tc.filter)
			if err != nil {
				t.Fatalf("ListTasks: %v", err)
			}
			if total != tc.total {
				t.Errorf("total = %d, want %d", total, tc.total)
			}
			if len(got) != len(tc.want) {
				t.Fatalf("len = %d, want %d", len(got), len(tc.want))
			}
			for i, id := range tc.want {
				if got[i].ID != id {
					t.Errorf("got[%d] = %s, want %s", i, got[i].ID, id)
				}
			}
		})
	}
}

func TestUpdateTaskStatus(t *testing.T) {
	ctx := context.Background()
	later := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	s := New()
	s.Now = func() time.Time { return later }

	if err := s.CreateTask(ctx, task("t1", "p", model.BoardBacklog, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))); err != nil {
		t.Fatal(err)
	}
	got, err := s.UpdateTaskStatus(ctx, "t1", model.BoardInProgress)
	if err != nil {
		t.Fatalf("UpdateTaskStatus: %v", err)
	}
	if got.Status != model.BoardInProgress || !got.UpdatedAt.Equal(later) {
		t.Errorf("got status=%s updated=%v", got.Status, got.UpdatedAt)
	}
	if _, err := s.UpdateTaskStatus(ctx, "missing", model.BoardDone); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("UpdateTaskStatus(missing) = %v, want ErrNotFound", err)
	}
}

func TestDeleteTask(t *testing.T) {
	ctx := context.Background()
	s := New()
	if err := s.CreateTask(ctx, task("t1", "p", model.BoardBacklog, time.Now())); err != nil {
		t.Fatal(err)
	}
	if err := s.DeleteTask(ctx, "t1"); err != nil {
		t.Fatalf("DeleteTask: %v", err)
	}
	if err := s.DeleteTask(ctx, "t1"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("second DeleteTask = %v, want ErrNotFound", err)
	}
}

func TestRunInTransaction_RollsBack(t *testing.T) {
	ctx := context.Background()
	s := New()
	now := time.Now()
	if err := s.CreateTask(ctx, task("keep", "p", model.BoardBacklog, now)); err != nil {
		t.Fatal(err)
	}

	boom := errors.New("boom")
	err := s.RunInTransaction(ctx, func(tx store.Store) error {
		if err := tx.CreateTask(ctx, task("new", "p", model.BoardBacklog, now)); err != nil {
			return err
		}
		if err := tx.DeleteTask(ctx, "keep"); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("RunInTransaction = %v, want boom", err)
	}
	if _, err := s.GetTask(ctx, "keep"); err != nil {
		t.Errorf("keep missing after rollback: %v", err)
	}
	if _, err := s.GetTask(ctx, "new"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("new present after rollback: %v", err)
	}
}

func TestRunInTransaction_Commits(t *testing.T) {
	ctx := context.Background()
	s := New()
	err := s.RunInTransaction(ctx, func(tx store.Store) error {
		return tx.CreateTask(ctx, task("t1", "p", model.BoardBacklog, time.Now()))
	})
	if err != nil {
		t.Fatalf("RunInTransaction: %v", err)
	}
	if _, err := s.GetTask(ctx, "t1"); err != nil {
		t.Errorf("GetTask after commit: %v", err)
	}
}
