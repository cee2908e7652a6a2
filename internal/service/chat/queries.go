package chat

import (
	"context"
	"log/slog"

	"fundscope/internal/domain/models"
	chatModels "fundscope/internal/domain/models/chat"
	"fundscope/internal/domain/repositories"
	chatRepo "fundscope/internal/domain/repositories/chat"
)

// QueryService serves read paths for chats and messages. Every read is
// authorized against the caller's workspace before touching chat data.
type QueryService struct {
	subjects repositories.SubjectRepository
	chats    chatRepo.ChatRepository
	messages chatRepo.MessageRepository
	logger   *slog.Logger
}

// NewQueryService creates a new chat query service.
func NewQueryService(
	subjects repositories.SubjectRepository,
	chats chatRepo.ChatRepository,
	messages chatRepo.MessageRepository,
	logger *slog.Logger,
) *QueryService {
	return &QueryService{
		subjects: subjects,
		chats:    chats,
		messages: messages,
		logger:   logger,
	}
}

// ListChats returns all chats for a subject visible to the workspace.
func (s *QueryService) ListChats(ctx context.Context, subjectID string, ws models.Workspace) ([]chatModels.Chat, error) {
	// Subject lookup doubles as the tenant check
	if _, err := s.subjects.GetByID(ctx, subjectID, ws); err != nil {
		return nil, err
	}

	return s.chats.ListBySubject(ctx, subjectID)
}

// ListMessages returns a chat's messages, oldest first, after verifying
// the chat belongs to the caller's workspace.
func (s *QueryService) ListMessages(ctx context.Context, chatID string, ws models.Workspace) ([]chatModels.Message, error) {
	chat, err := s.chats.GetChat(ctx, chatID)
	if err != nil {
		return nil, err
	}

	if err := VerifyOwnership(chat, ws); err != nil {
		return nil, err
	}

	return s.messages.ListByChat(ctx, chatID)
}

// GetChat returns a single chat after the workspace check.
func (s *QueryService) GetChat(ctx context.Context, chatID string, ws models.Workspace) (*chatModels.Chat, error) {
	chat, err := s.chats.GetChat(ctx, chatID)
	if err != nil {
		return nil, err
	}

	if err := VerifyOwnership(chat, ws); err != nil {
		return nil, err
	}

	return chat, nil
}
