package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/google/uuid"
	mstream "github.com/haowjy/meridian-stream-go"

	chatModels "fundscope/internal/domain/models/chat"
	"fundscope/internal/handler/sse"
)

// SSEHandler relays a registered stream's events to one HTTP client as
// Server-Sent Events. It is used both by the direct-stream response on
// POST chat and by the resume endpoint.
type SSEHandler struct {
	registry *mstream.Registry
	logger   *slog.Logger
	config   *sse.Config
}

// NewSSEHandler creates a new SSE handler
func NewSSEHandler(registry *mstream.Registry, logger *slog.Logger, config *sse.Config) *SSEHandler {
	if config == nil {
		config = sse.DefaultConfig()
	}
	return &SSEHandler{
		registry: registry,
		logger:   logger,
		config:   config,
	}
}

// sseWriter serializes writes to the response. Live events and keep-alive
// pings come from different goroutines and must not interleave.
type sseWriter struct {
	mu      sync.Mutex
	w       http.ResponseWriter
	flusher http.Flusher
}

// WriteEvent writes one SSE event (id/event/data lines) and flushes.
func (s *sseWriter) WriteEvent(event mstream.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if event.ID != "" {
		if _, err := fmt.Fprintf(s.w, "id: %s\n", event.ID); err != nil {
			return err
		}
	}
	if event.Type != "" {
		if _, err := fmt.Fprintf(s.w, "event: %s\n", event.Type); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(s.w, "data: %s\n\n", event.Data); err != nil {
		return err
	}

	s.flusher.Flush()
	return nil
}

// WriteKeepAlive implements sse.KeepAliveWriter under the same lock as
// event writes.
func (s *sseWriter) WriteKeepAlive() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := fmt.Fprintf(s.w, ": keepalive\n\n"); err != nil {
		return fmt.Errorf("write keepalive failed: %w", err)
	}
	s.flusher.Flush()

	// Zero-byte write detects closed connections
	if _, err := s.w.Write([]byte{}); err != nil {
		return fmt.Errorf("connection closed: %w", err)
	}
	return nil
}

// writeSSEHeaders sets the headers every SSE response needs.
func writeSSEHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering
}

// RelayStream subscribes to a live stream and writes its events to the
// client until the stream finishes or the client disconnects. Events the
// producer emitted before this client attached are replayed first, so a
// subscriber that lost the race with the generation goroutine (or a
// reconnecting client) still sees the stream from message_start.
func (h *SSEHandler) RelayStream(w http.ResponseWriter, r *http.Request, stream *mstream.Stream, streamID string) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	writeSSEHeaders(w)
	w.WriteHeader(http.StatusOK)

	clientID := uuid.NewString()
	writer := &sseWriter{w: w, flusher: flusher}

	// Subscribe before fetching catchup so no event falls between the two
	eventChan := stream.AddClient(clientID)
	defer func() {
		stream.RemoveClient(clientID)
		h.logger.Debug("SSE client removed", "stream_id", streamID, "client_id", clientID)
	}()

	h.logger.Debug("SSE client registered", "stream_id", streamID, "client_id", clientID)

	// An empty Last-Event-ID replays the full buffer; after the producer
	// persisted and cleared, the stream's CatchupFunc rebuilds the events
	// from the database instead.
	catchup := stream.GetCatchupEvents(r.Header.Get("Last-Event-ID"))
	for _, event := range catchup {
		if err := writer.WriteEvent(event); err != nil {
			h.logger.Info("client disconnected during catchup write",
				"stream_id", streamID,
				"client_id", clientID,
				"error", err,
			)
			return
		}
	}

	// A stream that already finished closed its clients before we
	// subscribed; our channel will never close, so end after catchup.
	if status := stream.Status(); status == mstream.StatusComplete || status == mstream.StatusError || status == mstream.StatusCancelled {
		h.logger.Debug("stream already finished, served catchup only",
			"stream_id", streamID,
			"client_id", clientID,
		)
		return
	}

	keepAlive := sse.NewTickerKeepAlive(h.config.KeepAliveInterval)
	keepAliveDone := keepAlive.Start(writer, h.logger)
	defer keepAlive.Stop()

	for {
		select {
		case event, open := <-eventChan:
			if !open {
				// Stream finished; the terminal event has already been
				// written
				h.logger.Debug("event channel closed, ending stream",
					"stream_id", streamID,
					"client_id", clientID,
				)
				return
			}

			if err := writer.WriteEvent(event); err != nil {
				h.logger.Info("client disconnected during event write",
					"stream_id", streamID,
					"client_id", clientID,
					"error", err,
				)
				return
			}

		case <-keepAliveDone:
			// Keep-alive write failed, connection is gone
			return

		case <-r.Context().Done():
			h.logger.Debug("client context cancelled",
				"stream_id", streamID,
				"client_id", clientID,
			)
			return
		}
	}
}

// ServeEvents writes a fixed batch of events and closes. Used when the
// live stream is gone and history is replayed from the database.
func (h *SSEHandler) ServeEvents(w http.ResponseWriter, events []mstream.Event) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	writeSSEHeaders(w)
	w.WriteHeader(http.StatusOK)

	writer := &sseWriter{w: w, flusher: flusher}
	for _, event := range events {
		if err := writer.WriteEvent(event); err != nil {
			return
		}
	}
}

// ServeError establishes the SSE connection, sends a single
// message_error event, and closes. Clients always get a parseable event
// instead of a broken connection.
func (h *SSEHandler) ServeError(w http.ResponseWriter, chatID, message string) {
	data, _ := json.Marshal(chatModels.MessageErrorEvent{
		ChatID: chatID,
		Error:  message,
	})
	h.ServeEvents(w, []mstream.Event{
		mstream.NewEvent(data).WithType(chatModels.SSEEventMessageError),
	})
}
