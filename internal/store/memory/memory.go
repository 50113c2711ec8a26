// Package memory implements store.Store in process memory. It backs the CLI
// when no database is configured and is shared by tests.
package memory

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/alfredjeanlab/blueprint/internal/model"
	"github.com/alfredjeanlab/blueprint/internal/store"
)

// Store is an in-memory store.Store. Transactions are not isolated from
// concurrent writers; a failed transaction restores the prior contents.
type Store struct {
	mu    sync.RWMutex
	tasks map[string]*model.BoardTask

	// Now stamps status updates. Defaults to time.Now.
	Now func() time.Time
}

var _ store.Store = (*Store)(nil)

// New returns an empty store.
func New() *Store {
	return &Store{tasks: make(map[string]*model.BoardTask)}
}

func (s *Store) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *Store) CreateTask(_ context.Context, task *model.BoardTask) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tasks[task.ID]; ok {
		return fmt.Errorf("%w: %s", store.ErrAlreadyExists, task.ID)
	}
	s.tasks[task.ID] = clone(task)
	return nil
}

func (s *Store) GetTask(_ context.Context, id string) (*model.BoardTask, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tasks[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return clone(t), nil
}

// ListTasks returns matching tasks ordered by creation time, then ID.
func (s *Store) ListTasks(_ context.Context, filter model.TaskFilter) ([]*model.BoardTask, int, error) {
	s.mu.RLock()
	var result []*model.BoardTask
	for _, t := range s.tasks {
		if filter.ProjectID != "" && t.ProjectID != filter.ProjectID {
			continue
		}
		if len(filter.Status) > 0 && !slices.Contains(filter.Status, t.Status) {
			continue
		}
		result = append(result, clone(t))
	}
	s.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.Before(result[j].CreatedAt)
		}
		return result[i].ID < result[j].ID
	})

	total := len(result)
	if filter.Offset > 0 {
		if filter.Offset >= len(result) {
			return nil, total, nil
		}
		result = result[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(result) {
		result = result[:filter.Limit]
	}
	return result, total, nil
}

func (s *Store) UpdateTaskStatus(_ context.Context, id string, status model.BoardStatus) (*model.BoardTask, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	t.Status = status
	t.UpdatedAt = s.now()
	return clone(t), nil
}

func (s *Store) DeleteTask(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tasks[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.tasks, id)
	return nil
}

// RunInTransaction runs fn against the store and restores the previous
// contents if fn returns an error.
func (s *Store) RunInTransaction(_ context.Context, fn func(tx store.Store) error) error {
	s.mu.RLock()
	snapshot := make(map[string]*model.BoardTask, len(s.tasks))
	for id, t := range s.tasks {
		snapshot[id] = clone(t)
	}
	s.mu.RUnlock()

	if err := fn(s); err != nil {
		s.mu.Lock()
		s.tasks = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *Store) Close() error {
	return nil
}

func clone(t *model.BoardTask) *model.BoardTask {
	cp := *t
	cp.Subtasks = slices.Clone(t.Subtasks)
	cp.Metadata.AcceptanceCriteria = slices.Clone(t.Metadata.AcceptanceCriteria)
	cp.Metadata.Dependencies = slices.Clone(t.Metadata.Dependencies)
	return &cp
}
