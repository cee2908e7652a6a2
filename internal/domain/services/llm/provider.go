package llm

import (
	"context"

	chatModels "fundscope/internal/domain/models/chat"
)

// Provider defines the interface that all text-generation providers must
// implement. The abstraction keeps the orchestrator independent of any
// one vendor SDK.
type Provider interface {
	// StreamResponse starts a streaming generation. The returned channel
	// emits StreamEvents as deltas arrive and closes after the final
	// metadata event (or an error event). The channel is single-consumer.
	StreamResponse(ctx context.Context, req *GenerateRequest) (<-chan StreamEvent, error)

	// Name returns the provider name (e.g., "anthropic", "lorem")
	Name() string

	// SupportsModel returns true if the provider supports the given model.
	SupportsModel(model string) bool
}

// GenerateRequest contains the parameters for a generation request.
type GenerateRequest struct {
	// System is the resolved system prompt for this turn
	System string

	// Messages is the prepared conversation, oldest first, with the new
	// user message (enhanced and document-injected) last
	Messages []Message

	// Model is the model identifier
	Model string

	// MaxTokens caps the response length; providers apply their own
	// default when zero
	MaxTokens int
}

// Message is the model-facing representation of one conversation turn.
type Message struct {
	// ID mirrors the stored message id (empty for synthesized turns)
	ID string

	// Role is "user", "assistant", or "system"
	Role string

	// Content is the plain-text convenience field. It is intentionally
	// left empty when mapping from storage; Parts are authoritative.
	Content string

	// Parts is the structured content
	Parts []chatModels.Part

	// Attachments carries file metadata alongside the parts
	Attachments []chatModels.Attachment
}

// Text concatenates the message's text parts, falling back to Content.
func (m *Message) Text() string {
	if len(m.Parts) == 0 {
		return m.Content
	}
	var out string
	for i, p := range m.Parts {
		if p.Type != chatModels.PartTypeText {
			continue
		}
		if i > 0 && out != "" {
			out += " "
		}
		out += p.Text
	}
	return out
}

// StreamEvent is one item emitted by a streaming generation.
// Exactly one field is set per event; a Metadata event is terminal.
type StreamEvent struct {
	// TextDelta is an incremental piece of generated text
	TextDelta *string

	// Metadata is the final event of a successful stream
	Metadata *StreamMetadata

	// Error terminates the stream unsuccessfully
	Error error
}

// StreamMetadata is the structured completion result of a generation.
type StreamMetadata struct {
	Model        string
	InputTokens  int
	OutputTokens int
	StopReason   string

	// ResponseMetadata contains provider-specific response data
	ResponseMetadata map[string]interface{}
}
