package anthropic

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"

	domainllm "fundscope/internal/domain/services/llm"
)

// StreamResponse generates a streaming response from Claude.
// Returns a channel that emits StreamEvent as deltas arrive from the API.
func (p *Provider) StreamResponse(ctx context.Context, req *domainllm.GenerateRequest) (<-chan domainllm.StreamEvent, error) {
	// Validate model
	if !p.SupportsModel(req.Model) {
		return nil, fmt.Errorf("model '%s' is not supported by Anthropic provider", req.Model)
	}

	// Convert domain messages to Anthropic format
	messages, err := convertMessages(req.Messages)
	if err != nil {
		return nil, fmt.Errorf("failed to convert messages: %w", err)
	}

	maxTokens := int64(req.MaxTokens)
	if maxTokens <= 0 {
		maxTokens = 4096
	}

	apiParams := anthropic.MessageNewParams{
		Model:     anthropic.Model(req.Model),
		Messages:  messages,
		MaxTokens: maxTokens,
	}

	// System prompt
	if req.System != "" {
		apiParams.System = []anthropic.TextBlockParam{
			{
				Type: "text",
				Text: req.System,
			},
		}
	}

	// Create streaming channel
	eventChan := make(chan domainllm.StreamEvent, 10) // Buffered to prevent blocking

	// Start streaming goroutine
	go func() {
		defer close(eventChan)

		// Call Anthropic streaming API
		stream := p.client.Messages.NewStreaming(ctx, apiParams)

		// Accumulator for final message metadata
		message := anthropic.Message{}

		// Iterate through streaming events
		for stream.Next() {
			event := stream.Current()

			// Accumulate event into final message
			if err := message.Accumulate(event); err != nil {
				eventChan <- domainllm.StreamEvent{
					Error: fmt.Errorf("failed to accumulate message: %w", err),
				}
				return
			}

			// Transform Anthropic event to domain StreamEvent
			streamEvent := transformStreamEvent(event)
			if streamEvent.TextDelta == nil {
				continue
			}

			// Send to channel (check context in case consumer cancelled)
			select {
			case <-ctx.Done():
				// Consumer cancelled, send error and exit
				eventChan <- domainllm.StreamEvent{
					Error: ctx.Err(),
				}
				return
			case eventChan <- streamEvent:
				// Successfully sent
			}
		}

		// Check for streaming errors
		if err := stream.Err(); err != nil {
			eventChan <- domainllm.StreamEvent{
				Error: fmt.Errorf("anthropic streaming error: %w", err),
			}
			return
		}

		// Send final message metadata
		metadata := &domainllm.StreamMetadata{
			Model:        string(message.Model),
			InputTokens:  int(message.Usage.InputTokens),
			OutputTokens: int(message.Usage.OutputTokens),
			StopReason:   string(message.StopReason),
		}

		// Build response metadata with provider-specific data
		responseMetadata := make(map[string]interface{})
		if message.StopSequence != "" {
			responseMetadata["stop_sequence"] = message.StopSequence
		}
		if message.Usage.CacheCreationInputTokens > 0 {
			responseMetadata["cache_creation_input_tokens"] = int(message.Usage.CacheCreationInputTokens)
		}
		if message.Usage.CacheReadInputTokens > 0 {
			responseMetadata["cache_read_input_tokens"] = int(message.Usage.CacheReadInputTokens)
		}
		metadata.ResponseMetadata = responseMetadata

		eventChan <- domainllm.StreamEvent{
			Metadata: metadata,
		}
	}()

	return eventChan, nil
}

// transformStreamEvent converts an Anthropic streaming event to a domain StreamEvent.
//
// Anthropic stream events include:
// - MessageStart: Contains message metadata (id, model, role)
// - ContentBlockStart: New content block started (index, type)
// - ContentBlockDelta: Incremental content for current block (text_delta)
// - ContentBlockStop: Current block finished
// - MessageDelta: Message-level delta (stop_reason, stop_sequence)
// - MessageStop: Streaming complete
//
// Only text deltas matter here; metadata comes from the accumulated
// message after the stream drains.
func transformStreamEvent(event anthropic.MessageStreamEventUnion) domainllm.StreamEvent {
	switch e := event.AsAny().(type) {
	case anthropic.ContentBlockDeltaEvent:
		if e.Delta.Type == "text_delta" {
			text := e.Delta.Text
			return domainllm.StreamEvent{TextDelta: &text}
		}
		return domainllm.StreamEvent{}

	default:
		return domainllm.StreamEvent{} // Empty event, ignored by consumers
	}
}
