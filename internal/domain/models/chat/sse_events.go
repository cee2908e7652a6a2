package chat

// SSE event type constants
const (
	SSEEventMessageStart    = "message_start"    // Assistant response streaming has begun
	SSEEventMessageDelta    = "message_delta"    // Incremental response text
	SSEEventMessageComplete = "message_complete" // Response finished successfully
	SSEEventMessageError    = "message_error"    // Response encountered an error
)

// MessageStartEvent signals that streaming has begun for a chat response
type MessageStartEvent struct {
	ChatID   string `json:"chat_id"`
	StreamID string `json:"stream_id"`
	Model    string `json:"model"`
}

// MessageDeltaEvent contains an incremental piece of response text
type MessageDeltaEvent struct {
	TextDelta string `json:"text_delta"`
}

// MessageCompleteEvent signals that the response finished successfully
type MessageCompleteEvent struct {
	ChatID           string                 `json:"chat_id"`
	MessageID        string                 `json:"message_id"`
	StopReason       string                 `json:"stop_reason"` // "end_turn", "max_tokens", "stop_sequence"
	InputTokens      int                    `json:"input_tokens"`
	OutputTokens     int                    `json:"output_tokens"`
	ResponseMetadata map[string]interface{} `json:"response_metadata,omitempty"`
}

// MessageErrorEvent signals that the response encountered an error
type MessageErrorEvent struct {
	ChatID string `json:"chat_id"`
	Error  string `json:"error"`
}
