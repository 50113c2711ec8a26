// Package handoff delivers converted board tasks: it persists them, announces
// them on the event bus and exports the board to the sync destinations.
package handoff

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/alfredjeanlab/blueprint/internal/events"
	"github.com/alfredjeanlab/blueprint/internal/model"
	"github.com/alfredjeanlab/blueprint/internal/store"
	bpsync "github.com/alfredjeanlab/blueprint/internal/sync"
	"github.com/alfredjeanlab/blueprint/internal/taskboard"
)

var (
	// ErrInvalidTask is returned when a board task fails validation.
	ErrInvalidTask = errors.New("invalid board task")
	// ErrNoStore is returned by operations that need persisted tasks.
	ErrNoStore = errors.New("no store configured")
)

// Report summarizes one delivery.
type Report struct {
	ProjectID          string   `json:"project_id"`
	TaskIDs            []string `json:"task_ids"`
	Stored             int      `json:"stored"`
	Published          int      `json:"published"`
	Destinations       int      `json:"destinations"`
	FailedDestinations int      `json:"failed_destinations"`
	Bytes              int      `json:"bytes"`
}

// Service hands converted tasks to the board.
type Service struct {
	store        store.Store
	publisher    events.Publisher
	destinations []bpsync.Destination
	logger       *slog.Logger
}

// New returns a Service. A nil store skips persistence, a nil publisher
// publishes nothing and a nil logger uses slog.Default.
func New(s store.Store, p events.Publisher, destinations []bpsync.Destination, logger *slog.Logger) *Service {
	if p == nil {
		p = &events.NoopPublisher{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:        s,
		publisher:    p,
		destinations: destinations,
		logger:       logger,
	}
}

// Deliver validates every task of result, stores them in one transaction,
// publishes a created event per task and a batch event, then exports the
// project's board to every destination. Nothing is stored or published when any task
// is invalid. Destination failures are logged and counted, not returned.
func (s *Service) Deliver(ctx context.Context, projectID string, result *taskboard.BatchResult) (*Report, error) {
	if result == nil {
		return nil, errors.New("nil batch result")
	}

	report := &Report{ProjectID: projectID, TaskIDs: make([]string, 0, len(result.Tasks))}
	for _, t := range result.Tasks {
		if err := model.ValidateBoardTask(t); err != nil {
			return nil, fmt.Errorf("%w %s: %v", ErrInvalidTask, t.ID, err)
		}
		if t.ProjectID != projectID {
			return nil, fmt.Errorf("%w %s: project %q, want %q", ErrInvalidTask, t.ID, t.ProjectID, projectID)
		}
		report.TaskIDs = append(report.TaskIDs, t.ID)
	}

	if s.store != nil {
		err := s.store.RunInTransaction(ctx, func(tx store.Store) error {
			for _, t := range result.Tasks {
				if err := tx.CreateTask(ctx, t); err != nil {
					return fmt.Errorf("create board task %s: %w", t.ID, err)
				}
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
		report.Stored = len(result.Tasks)
	}

	for _, t := range result.Tasks {
		if s.publish(ctx, events.TopicBoardTaskCreated, events.BoardTaskCreated{Task: t}) {
			report.Published++
		}
	}
	if s.publish(ctx, events.TopicBatchExported, events.BatchExported{
		ProjectID: projectID,
		TaskIDs:   report.TaskIDs,
		Errors:    result.Errors,
		Warnings:  result.Warnings,
	}) {
		report.Published++
	}

	if len(s.destinations) > 0 {
		snap, err := s.snapshot(ctx, projectID, result.Tasks)
		if err != nil {
			return report, fmt.Errorf("export board tasks: %w", err)
		}
		report.Bytes = len(snap.Data)
		report.Destinations = len(s.destinations)
		report.FailedDestinations = bpsync.Push(ctx, snap, s.destinations, s.logger)
	}

	s.logger.Info("delivered board tasks",
		"project_id", projectID,
		"tasks", len(report.TaskIDs),
		"stored", report.Stored,
		"failed_destinations", report.FailedDestinations)
	return report, nil
}

// snapshot exports the project's whole board after a delivery, since a
// destination write replaces the project's previous export. Without a
// store the batch is all there is.
func (s *Service) snapshot(ctx context.Context, projectID string, batch []*model.BoardTask) (*bpsync.Snapshot, error) {
	if s.store != nil {
		return bpsync.StoreSnapshot(ctx, s.store, projectID)
	}
	return bpsync.NewSnapshot(projectID, batch)
}

// UpdateStatus moves a stored task to status and publishes the change.
func (s *Service) UpdateStatus(ctx context.Context, id string, status model.BoardStatus) (*model.BoardTask, error) {
	if s.store == nil {
		return nil, ErrNoStore
	}
	if !status.IsValid() {
		return nil, fmt.Errorf("%w %s: unknown status %q", ErrInvalidTask, id, status)
	}
	t, err := s.store.UpdateTaskStatus(ctx, id, status)
	if err != nil {
		return nil, fmt.Errorf("update board task %s: %w", id, err)
	}
	s.publish(ctx, events.TopicBoardTaskUpdated, events.BoardTaskUpdated{
		Task:    t,
		Changes: map[string]any{"status": string(status)},
	})
	return t, nil
}

// AnnounceDiagrams publishes a summary of a parse result.
func (s *Service) AnnounceDiagrams(ctx context.Context, result model.ParseResult) {
	types := make([]model.DiagramType, len(result.Diagrams))
	for i, d := range result.Diagrams {
		types[i] = d.Type
	}
	s.publish(ctx, events.TopicDiagramsParsed, events.DiagramsParsed{
		Count:  len(result.Diagrams),
		Types:  types,
		Errors: result.ParseErrors,
	})
}

// publish is best-effort: failures are logged and reported as false.
func (s *Service) publish(ctx context.Context, topic string, event any) bool {
	if err := s.publisher.Publish(ctx, topic, event); err != nil {
		s.logger.Warn("failed to publish event", "topic", topic, "err", err)
		return false
	}
	return true
}
