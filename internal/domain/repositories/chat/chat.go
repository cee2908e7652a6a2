package chat

import (
	"context"

	chatModels "fundscope/internal/domain/models/chat"
)

// ChatRepository defines persistence operations for analysis chats.
type ChatRepository interface {
	// CreateChat persists a new chat. A duplicate id returns a
	// ConflictError carrying the existing chat's id so callers can
	// fetch-instead-of-create.
	CreateChat(ctx context.Context, chat *chatModels.Chat) error

	// GetChat retrieves a chat by id. Ownership is checked by the
	// service layer against the caller's workspace.
	GetChat(ctx context.Context, chatID string) (*chatModels.Chat, error)

	// ListBySubject retrieves all chats for a subject, oldest first
	ListBySubject(ctx context.Context, subjectID string) ([]chatModels.Chat, error)

	// CountByOrg counts all chats owned by an organization. Used by the
	// trial quota checker.
	CountByOrg(ctx context.Context, orgID string) (int, error)
}

// MessageRepository defines persistence operations for chat messages.
// Messages are append-only.
type MessageRepository interface {
	// CreateMessage appends a message to its chat
	CreateMessage(ctx context.Context, msg *chatModels.Message) error

	// ListByChat retrieves all messages for a chat ordered ascending by
	// creation time (ties broken by id)
	ListByChat(ctx context.Context, chatID string) ([]chatModels.Message, error)

	// CountByChat counts messages in a chat
	CountByChat(ctx context.Context, chatID string) (int, error)
}

// StreamRepository defines persistence operations for stream records.
type StreamRepository interface {
	// CreateStream records a stream id for a chat before generation begins
	CreateStream(ctx context.Context, stream *chatModels.Stream) error

	// GetByID retrieves a stream record
	GetByID(ctx context.Context, streamID string) (*chatModels.Stream, error)

	// GetLatestByChat retrieves the most recently created stream for a chat
	GetLatestByChat(ctx context.Context, chatID string) (*chatModels.Stream, error)
}
