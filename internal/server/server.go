// Package server exposes the diagram parser, the task converter and the
// board store over HTTP, with a server-sent event stream of board changes.
package server

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/alfredjeanlab/blueprint/internal/events"
	"github.com/alfredjeanlab/blueprint/internal/handoff"
	"github.com/alfredjeanlab/blueprint/internal/model"
	"github.com/alfredjeanlab/blueprint/internal/store"
	bpsync "github.com/alfredjeanlab/blueprint/internal/sync"
)

// Defaults fill conversion options a request leaves empty.
type Defaults struct {
	ProjectID     string
	Category      string
	StatusMapping map[model.SourceStatus]model.BoardStatus
}

// Server serves the HTTP API.
type Server struct {
	store    store.Store
	handoff  *handoff.Service
	sseHub   *sseHub
	defaults Defaults
	logger   *slog.Logger
}

// New returns a Server backed by s. Every event published through the
// handoff service also reaches the SSE stream. A nil logger uses
// slog.Default.
func New(s store.Store, p events.Publisher, destinations []bpsync.Destination, defaults Defaults, logger *slog.Logger) *Server {
	if p == nil {
		p = &events.NoopPublisher{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	srv := &Server{
		store:    s,
		sseHub:   newSSEHub(),
		defaults: defaults,
		logger:   logger,
	}
	srv.handoff = handoff.New(s, &hubPublisher{next: p, srv: srv}, destinations, logger)
	return srv
}

// hubPublisher forwards events to the bus and fans them out to SSE clients.
type hubPublisher struct {
	next events.Publisher
	srv  *Server
}

func (h *hubPublisher) Publish(ctx context.Context, topic string, event any) error {
	h.srv.broadcastEvent(topic, event)
	return h.next.Publish(ctx, topic, event)
}

func (h *hubPublisher) Close() error {
	return h.next.Close()
}

// broadcastEvent fans an event out to SSE clients.
func (s *Server) broadcastEvent(topic string, event any) {
	payload, err := json.Marshal(event)
	if err != nil {
		s.logger.Warn("failed to marshal event for SSE broadcast", "topic", topic, "err", err)
		return
	}
	s.sseHub.broadcast(topic, events.ProjectOf(event), payload)
}

// inputError indicates invalid user input and maps to 400.
type inputError string

func (e inputError) Error() string { return string(e) }
