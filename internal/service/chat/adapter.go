package chat

import (
	chatModels "fundscope/internal/domain/models/chat"
	domainllm "fundscope/internal/domain/services/llm"
)

// ToModelMessage converts a stored message to its model-facing
// representation. The plain-text convenience field stays empty; Parts
// carry the content.
func ToModelMessage(msg *chatModels.Message) domainllm.Message {
	parts := make([]chatModels.Part, len(msg.Parts))
	copy(parts, msg.Parts)

	attachments := make([]chatModels.Attachment, len(msg.Attachments))
	copy(attachments, msg.Attachments)

	return domainllm.Message{
		ID:          msg.ID,
		Role:        msg.Role,
		Content:     "",
		Parts:       parts,
		Attachments: attachments,
	}
}

// ToModelMessages converts a stored conversation, preserving order.
func ToModelMessages(msgs []chatModels.Message) []domainllm.Message {
	out := make([]domainllm.Message, len(msgs))
	for i := range msgs {
		out[i] = ToModelMessage(&msgs[i])
	}
	return out
}

// FromModelMessage converts a model-facing message back to the stored
// representation. Absent attachments become an empty list rather than
// nil so the stored shape is stable.
func FromModelMessage(msg *domainllm.Message, chatID string) *chatModels.Message {
	parts := make([]chatModels.Part, len(msg.Parts))
	copy(parts, msg.Parts)

	attachments := msg.Attachments
	if attachments == nil {
		attachments = []chatModels.Attachment{}
	} else {
		copied := make([]chatModels.Attachment, len(attachments))
		copy(copied, attachments)
		attachments = copied
	}

	return &chatModels.Message{
		ID:          msg.ID,
		ChatID:      chatID,
		Role:        msg.Role,
		Parts:       parts,
		Attachments: attachments,
	}
}
