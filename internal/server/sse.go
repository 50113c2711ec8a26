package server

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/alfredjeanlab/blueprint/internal/events"
)

const (
	// sseReplaySize is how many recent events are kept for Last-Event-ID
	// replay.
	sseReplaySize = 1000

	// sseKeepaliveInterval is how often a comment line keeps idle streams open.
	sseKeepaliveInterval = 15 * time.Second
)

// streamTopics are the topics a stream filter can select from.
var streamTopics = []string{
	events.TopicBoardTaskCreated,
	events.TopicBoardTaskUpdated,
	events.TopicBatchExported,
	events.TopicDiagramsParsed,
}

// sseEvent is one event as sent to stream clients.
type sseEvent struct {
	ID      uint64
	Topic   string
	Project string // empty for events not tied to a project
	Data    []byte // JSON-encoded payload
}

// streamFilter selects the events a client receives. Empty fields match
// everything. Events without a project pass any project filter.
type streamFilter struct {
	topics  []string // NATS-style patterns
	project string
}

func (f streamFilter) matches(evt *sseEvent) bool {
	if f.project != "" && evt.Project != "" && evt.Project != f.project {
		return false
	}
	if len(f.topics) == 0 {
		return true
	}
	for _, pattern := range f.topics {
		if matchTopicPattern(pattern, evt.Topic) {
			return true
		}
	}
	return false
}

// eventRing keeps the most recent events in publish order.
type eventRing struct {
	buf  [sseReplaySize]sseEvent
	next int // next write position
	size int // valid entries
}

func (r *eventRing) add(evt sseEvent) {
	r.buf[r.next] = evt
	r.next = (r.next + 1) % sseReplaySize
	if r.size < sseReplaySize {
		r.size++
	}
}

// since returns events with an ID above lastID, oldest first.
func (r *eventRing) since(lastID uint64) []*sseEvent {
	var out []*sseEvent
	start := (r.next - r.size + sseReplaySize) % sseReplaySize
	for i := range r.size {
		evt := r.buf[(start+i)%sseReplaySize]
		if evt.ID > lastID {
			out = append(out, &evt)
		}
	}
	return out
}

// sseHub fans board and diagram events out to stream clients.
type sseHub struct {
	mu      sync.Mutex
	lastID  uint64
	ring    eventRing
	clients map[*sseClient]struct{}
}

type sseClient struct {
	filter streamFilter
	ch     chan *sseEvent
}

func newSSEHub() *sseHub {
	return &sseHub{clients: make(map[*sseClient]struct{})}
}

// broadcast records an event and hands it to every matching client. Slow
// clients miss events rather than block the publisher.
func (h *sseHub) broadcast(topic, project string, payload []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.lastID++
	evt := sseEvent{ID: h.lastID, Topic: topic, Project: project, Data: payload}
	h.ring.add(evt)

	for c := range h.clients {
		if c.filter.matches(&evt) {
			select {
			case c.ch <- &evt:
			default:
			}
		}
	}
}

// subscribe registers a client. With replayAfter > 0, buffered matching
// events newer than that ID are returned so they can be written before
// live ones; registering and collecting under one lock means no event is
// both replayed and delivered live.
func (h *sseHub) subscribe(filter streamFilter, replayAfter uint64) (*sseClient, []*sseEvent) {
	c := &sseClient{filter: filter, ch: make(chan *sseEvent, 64)}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = struct{}{}

	var replay []*sseEvent
	if replayAfter > 0 {
		for _, evt := range h.ring.since(replayAfter) {
			if filter.matches(evt) {
				replay = append(replay, evt)
			}
		}
	}
	return c, replay
}

func (h *sseHub) unsubscribe(c *sseClient) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
}

// eventsSince returns buffered events with ID > lastID, in order.
func (h *sseHub) eventsSince(lastID uint64) []*sseEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.ring.since(lastID)
}

// matchTopicPattern matches a dot-separated topic against a pattern with
// "*" for one segment and a trailing ">" for one or more segments.
func matchTopicPattern(pattern, topic string) bool {
	if pattern == topic {
		return true
	}

	patParts := strings.Split(pattern, ".")
	topParts := strings.Split(topic, ".")

	for i, pp := range patParts {
		if pp == ">" {
			return i < len(topParts)
		}
		if i >= len(topParts) {
			return false
		}
		if pp != "*" && pp != topParts[i] {
			return false
		}
	}

	return len(patParts) == len(topParts)
}

// parseStreamFilter reads the topics and project_id query parameters.
// A topic pattern that selects none of the stream topics is an input error.
func parseStreamFilter(r *http.Request) (streamFilter, error) {
	q := r.URL.Query()
	filter := streamFilter{project: strings.TrimSpace(q.Get("project_id"))}
	for _, pattern := range strings.Split(q.Get("topics"), ",") {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" {
			continue
		}
		if !selectsAnyTopic(pattern) {
			return streamFilter{}, inputError(fmt.Sprintf("topic pattern %q matches no event", pattern))
		}
		filter.topics = append(filter.topics, pattern)
	}
	return filter, nil
}

func selectsAnyTopic(pattern string) bool {
	for _, topic := range streamTopics {
		if matchTopicPattern(pattern, topic) {
			return true
		}
	}
	return false
}

// handleEventStream handles GET /v1/events/stream.
func (s *Server) handleEventStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}
	filter, err := parseStreamFilter(r)
	if err != nil {
		writeStoreError(w, err, "")
		return
	}

	var lastID uint64
	if v := r.Header.Get("Last-Event-ID"); v != "" {
		lastID, _ = strconv.ParseUint(v, 10, 64)
	}
	client, replay := s.sseHub.subscribe(filter, lastID)
	defer s.sseHub.unsubscribe(client)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // nginx
	w.WriteHeader(http.StatusOK)
	for _, evt := range replay {
		writeSSEEvent(w, evt)
	}
	flusher.Flush()

	keepalive := time.NewTicker(sseKeepaliveInterval)
	defer keepalive.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case evt := <-client.ch:
			writeSSEEvent(w, evt)
			flusher.Flush()
		case <-keepalive.C:
			fmt.Fprint(w, ":keepalive\n\n")
			flusher.Flush()
		}
	}
}

func writeSSEEvent(w http.ResponseWriter, evt *sseEvent) {
	fmt.Fprintf(w, "id:%d\nevent:%s\ndata:%s\n\n", evt.ID, evt.Topic, evt.Data)
}
