package chat

import (
	"strings"
	"time"
)

// Message roles
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Part type constants. Parts are a tagged variant so new content kinds
// can be added without loosening the persisted shape.
const (
	PartTypeText = "text"
)

// Part is one structured content part of a message.
// - text: {"type": "text", "text": "..."}
type Part struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// TextPart builds a text part.
func TextPart(text string) Part {
	return Part{Type: PartTypeText, Text: text}
}

// Attachment is file metadata carried alongside a message.
type Attachment struct {
	URL         string `json:"url"`
	Name        string `json:"name"`
	ContentType string `json:"content_type"`
}

// Message is one turn in a chat. Messages are append-only and totally
// ordered by creation time within their chat; the conversation replayed
// to the model preserves this order.
type Message struct {
	ID          string       `json:"id" db:"id"`
	ChatID      string       `json:"chat_id" db:"chat_id"`
	Role        string       `json:"role" db:"role"`
	Parts       []Part       `json:"parts" db:"parts"`
	Attachments []Attachment `json:"attachments" db:"attachments"`
	CreatedAt   time.Time    `json:"created_at" db:"created_at"`
}

// Text concatenates all text-typed parts with single-space separators
// and trims surrounding whitespace.
func (m *Message) Text() string {
	var texts []string
	for _, p := range m.Parts {
		if p.Type == PartTypeText {
			texts = append(texts, p.Text)
		}
	}
	return strings.TrimSpace(strings.Join(texts, " "))
}
