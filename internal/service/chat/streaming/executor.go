package streaming

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	mstream "github.com/haowjy/meridian-stream-go"

	chatModels "fundscope/internal/domain/models/chat"
	domainllm "fundscope/internal/domain/services/llm"
)

// CompletionFunc persists the conversation after a successful stream:
// first the original user message, then the assistant reply built from
// the accumulated text. It returns the persisted assistant message id.
// Errors here are logged by the executor and never surfaced to the
// already-finished client stream.
type CompletionFunc func(ctx context.Context, assistantText string, metadata *domainllm.StreamMetadata) (string, error)

// StreamExecutor wraps mstream.Stream and manages one generation for a
// chat. Provider deltas pass through the word smoother before being
// broadcast; the completion hook runs strictly after the last delta.
type StreamExecutor struct {
	stream     *mstream.Stream
	streamID   string
	chatID     string
	model      string
	provider   domainllm.Provider
	onComplete CompletionFunc
	logger     *slog.Logger
	req        *domainllm.GenerateRequest // Stored for workFunc to use
}

// NewStreamExecutor creates a new mstream-based executor for a chat
// generation. The catchup function replays finished responses from the
// database for clients that reconnect after the live stream is gone.
func NewStreamExecutor(
	streamID string,
	chatID string,
	model string,
	provider domainllm.Provider,
	onComplete CompletionFunc,
	catchupFunc mstream.CatchupFunc,
	logger *slog.Logger,
	debugMode bool,
) *StreamExecutor {
	se := &StreamExecutor{
		streamID:   streamID,
		chatID:     chatID,
		model:      model,
		provider:   provider,
		onComplete: onComplete,
		logger:     logger,
	}

	stream := mstream.NewStream(
		streamID,
		se.workFunc,
		mstream.WithCatchup(catchupFunc),
		mstream.WithEventIDs(debugMode), // Enable event IDs only in DEBUG mode
	)
	se.stream = stream

	logger.Debug("stream executor created",
		"stream_id", streamID,
		"chat_id", chatID,
		"debug_mode", debugMode,
	)

	return se
}

// GetStream returns the underlying mstream.Stream
func (se *StreamExecutor) GetStream() *mstream.Stream {
	return se.stream
}

// Start begins streaming execution
func (se *StreamExecutor) Start(req *domainllm.GenerateRequest) {
	// Store request for workFunc to use
	se.req = req

	// Start the stream
	se.stream.Start()
}

// workFunc is the mstream WorkFunc that performs the actual streaming
func (se *StreamExecutor) workFunc(ctx context.Context, send func(mstream.Event)) error {
	req := se.req
	if req == nil {
		return fmt.Errorf("generate request not set")
	}

	se.sendEvent(send, chatModels.SSEEventMessageStart, chatModels.MessageStartEvent{
		ChatID:   se.chatID,
		StreamID: se.streamID,
		Model:    se.model,
	})

	// Start provider streaming
	streamChan, err := se.provider.StreamResponse(ctx, req)
	if err != nil {
		wrapped := fmt.Errorf("failed to start provider streaming: %w", err)
		se.handleError(send, wrapped)
		return wrapped
	}

	smoother := NewWordSmoother()
	var accumulated strings.Builder

	for {
		select {
		case <-ctx.Done():
			err := fmt.Errorf("streaming interrupted: %w", ctx.Err())
			se.handleError(send, err)
			return err

		case streamEvent, ok := <-streamChan:
			if !ok {
				// Stream channel closed without metadata - unexpected
				err := fmt.Errorf("stream closed without metadata")
				se.handleError(send, err)
				return err
			}

			if streamEvent.Error != nil {
				se.handleError(send, streamEvent.Error)
				return streamEvent.Error
			}

			if streamEvent.TextDelta != nil {
				accumulated.WriteString(*streamEvent.TextDelta)
				if release := smoother.Feed(*streamEvent.TextDelta); release != "" {
					se.sendEvent(send, chatModels.SSEEventMessageDelta, chatModels.MessageDeltaEvent{
						TextDelta: release,
					})
				}
			}

			if streamEvent.Metadata != nil {
				// Release any buffered partial word before completing
				if tail := smoother.Flush(); tail != "" {
					se.sendEvent(send, chatModels.SSEEventMessageDelta, chatModels.MessageDeltaEvent{
						TextDelta: tail,
					})
				}
				return se.handleCompletion(ctx, send, accumulated.String(), streamEvent.Metadata)
			}
		}
	}
}

// handleCompletion runs the persistence hook and emits message_complete.
// Persistence runs strictly after the last delta. A persistence failure
// is logged and does not disturb the stream the client already received.
func (se *StreamExecutor) handleCompletion(ctx context.Context, send func(mstream.Event), assistantText string, metadata *domainllm.StreamMetadata) error {
	// Use request model as fallback if provider doesn't send it in metadata
	if metadata.Model == "" {
		metadata.Model = se.model
	}

	var messageID string

	// Persist atomically with clearing the event buffer; once events are
	// cleared, reconnecting clients are served from the database.
	// NOTE: We intentionally do NOT check ctx.Done() before persisting.
	// Even if the client disconnected, the response should be durable so
	// it can be retrieved later via catchup.
	if err := se.stream.PersistAndClear(func(events []mstream.Event) error {
		id, persistErr := se.onComplete(ctx, assistantText, metadata)
		if persistErr != nil {
			return persistErr
		}
		messageID = id
		return nil
	}); err != nil {
		se.logger.Error("failed to persist completed response",
			"error", err,
			"stream_id", se.streamID,
			"chat_id", se.chatID,
		)
	}

	se.sendEvent(send, chatModels.SSEEventMessageComplete, chatModels.MessageCompleteEvent{
		ChatID:           se.chatID,
		MessageID:        messageID,
		StopReason:       metadata.StopReason,
		InputTokens:      metadata.InputTokens,
		OutputTokens:     metadata.OutputTokens,
		ResponseMetadata: metadata.ResponseMetadata,
	})

	return nil
}

// handleError broadcasts a message_error event
func (se *StreamExecutor) handleError(send func(mstream.Event), err error) {
	se.logger.Error("streaming failed",
		"error", err,
		"stream_id", se.streamID,
		"chat_id", se.chatID,
	)

	se.sendEvent(send, chatModels.SSEEventMessageError, chatModels.MessageErrorEvent{
		ChatID: se.chatID,
		Error:  err.Error(),
	})
}

// sendEvent sends an event via mstream.
// Event IDs are automatically generated by the library when DEBUG mode is enabled.
func (se *StreamExecutor) sendEvent(send func(mstream.Event), eventType string, data interface{}) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		se.logger.Error("failed to marshal event data", "error", err, "event_type", eventType)
		return
	}

	event := mstream.NewEvent(jsonData).WithType(eventType)
	send(event)
}
