package store

import (
	"context"
	"errors"

	"github.com/alfredjeanlab/blueprint/internal/model"
)

var (
	// ErrNotFound is returned when a board task does not exist.
	ErrNotFound = errors.New("board task not found")
	// ErrAlreadyExists is returned when creating a task whose ID is taken.
	ErrAlreadyExists = errors.New("board task already exists")
)

// Store defines the persistence interface for board tasks.
type Store interface {
	CreateTask(ctx context.Context, task *model.BoardTask) error
	GetTask(ctx context.Context, id string) (*model.BoardTask, error)
	ListTasks(ctx context.Context, filter model.TaskFilter) ([]*model.BoardTask, int, error) // returns tasks, total count, error
	UpdateTaskStatus(ctx context.Context, id string, status model.BoardStatus) (*model.BoardTask, error)
	DeleteTask(ctx context.Context, id string) error

	// Transaction support
	RunInTransaction(ctx context.Context, fn func(tx Store) error) error

	// Lifecycle
	Close() error
}
