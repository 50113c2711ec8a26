package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/alfredjeanlab/blueprint/internal/model"
)

// Event topic constants
const (
	TopicBoardTaskCreated = "blueprint.board_task.created"
	TopicBoardTaskUpdated = "blueprint.board_task.updated"
	TopicBatchExported    = "blueprint.batch.exported"
	TopicDiagramsParsed   = "blueprint.diagrams.parsed"

	// TopicAll matches every topic above.
	TopicAll = "blueprint.>"
)

// ProjectHeader is the bus header naming the board project of an event.
// Diagram events carry no project.
const ProjectHeader = "Blueprint-Project"

// ErrUnknownTopic is returned by Decode for topics outside this package.
var ErrUnknownTopic = errors.New("unknown event topic")

// Event types

type BoardTaskCreated struct {
	Task *model.BoardTask `json:"task"`
}

type BoardTaskUpdated struct {
	Task    *model.BoardTask `json:"task"`
	Changes map[string]any   `json:"changes"` // field name -> new value
}

// BatchExported summarizes one conversion handed to the board.
type BatchExported struct {
	ProjectID string   `json:"project_id"`
	TaskIDs   []string `json:"task_ids"`
	Errors    []string `json:"errors,omitempty"`
	Warnings  []string `json:"warnings,omitempty"`
}

type DiagramsParsed struct {
	Count  int                 `json:"count"`
	Types  []model.DiagramType `json:"types"`
	Errors []string            `json:"errors,omitempty"`
}

// ProjectOf returns the board project an event belongs to, or "" for
// events that are not tied to a project.
func ProjectOf(event any) string {
	switch e := event.(type) {
	case BoardTaskCreated:
		if e.Task != nil {
			return e.Task.ProjectID
		}
	case BoardTaskUpdated:
		if e.Task != nil {
			return e.Task.ProjectID
		}
	case BatchExported:
		return e.ProjectID
	}
	return ""
}

// Decode unmarshals a payload received on topic into its event type.
func Decode(topic string, data []byte) (any, error) {
	var (
		event any
		err   error
	)
	switch topic {
	case TopicBoardTaskCreated:
		var e BoardTaskCreated
		if err = json.Unmarshal(data, &e); err == nil {
			event = e
		}
	case TopicBoardTaskUpdated:
		var e BoardTaskUpdated
		if err = json.Unmarshal(data, &e); err == nil {
			event = e
		}
	case TopicBatchExported:
		var e BatchExported
		if err = json.Unmarshal(data, &e); err == nil {
			event = e
		}
	case TopicDiagramsParsed:
		var e DiagramsParsed
		if err = json.Unmarshal(data, &e); err == nil {
			event = e
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownTopic, topic)
	}
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", topic, err)
	}
	return event, nil
}

// Message is one event received from the bus.
type Message struct {
	Topic     string
	ProjectID string
	Data      []byte // JSON-encoded event
}

// Publisher is the interface for emitting events.
type Publisher interface {
	Publish(ctx context.Context, topic string, event any) error
	Close() error
}

// Subscriber receives events from the event bus.
type Subscriber interface {
	// Subscribe delivers messages matching topic on the returned channel.
	// The returned cancel function unsubscribes and closes the channel.
	Subscribe(topic string) (<-chan Message, func(), error)
	Close() error
}

// NoopPublisher drops every event. It stands in for the bus when no NATS
// URL is configured.
type NoopPublisher struct{}

func (*NoopPublisher) Publish(context.Context, string, any) error { return nil }

func (*NoopPublisher) Close() error { return nil }
