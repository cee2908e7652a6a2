package streaming

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	mstream "github.com/haowjy/meridian-stream-go"

	chatModels "fundscope/internal/domain/models/chat"
	chatRepo "fundscope/internal/domain/repositories/chat"
)

// buildCatchupFunc creates a catchup function that rebuilds stream
// events from persisted messages. mstream calls it when a client
// connects to a stream whose live event buffer is unavailable, which
// after completion means replaying the finished assistant reply.
func buildCatchupFunc(streams chatRepo.StreamRepository, messages chatRepo.MessageRepository, logger *slog.Logger) mstream.CatchupFunc {
	return func(streamID string, lastEventID string) ([]mstream.Event, error) {
		ctx := context.Background()

		logger.Debug("building catchup events",
			"stream_id", streamID,
			"last_event_id", lastEventID,
		)

		stream, err := streams.GetByID(ctx, streamID)
		if err != nil {
			return nil, fmt.Errorf("failed to get stream: %w", err)
		}

		history, err := messages.ListByChat(ctx, stream.ChatID)
		if err != nil {
			return nil, fmt.Errorf("failed to get messages: %w", err)
		}

		// The reply for this stream is the trailing assistant message
		var reply *chatModels.Message
		for i := len(history) - 1; i >= 0; i-- {
			if history[i].Role == chatModels.RoleAssistant {
				reply = &history[i]
				break
			}
		}

		var events []mstream.Event

		// ALWAYS emit message_start (even if nothing is persisted yet)
		startData, _ := json.Marshal(chatModels.MessageStartEvent{
			ChatID:   stream.ChatID,
			StreamID: streamID,
		})
		events = append(events, mstream.NewEvent(startData).
			WithType(chatModels.SSEEventMessageStart))

		if reply != nil {
			// Send the full reply as a single delta
			deltaData, _ := json.Marshal(chatModels.MessageDeltaEvent{
				TextDelta: reply.Text(),
			})
			events = append(events, mstream.NewEvent(deltaData).
				WithType(chatModels.SSEEventMessageDelta))

			completeData, _ := json.Marshal(chatModels.MessageCompleteEvent{
				ChatID:     stream.ChatID,
				MessageID:  reply.ID,
				StopReason: "end_turn",
			})
			events = append(events, mstream.NewEvent(completeData).
				WithType(chatModels.SSEEventMessageComplete))
		}

		logger.Debug("catchup events built",
			"stream_id", streamID,
			"last_event_id", lastEventID,
			"total_events", len(events),
		)

		return events, nil
	}
}
