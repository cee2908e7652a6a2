package chat

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"fundscope/internal/domain"
	chatModels "fundscope/internal/domain/models/chat"
	chatRepo "fundscope/internal/domain/repositories/chat"
	"fundscope/internal/repository/postgres"
)

// PostgresChatRepository implements the ChatRepository interface using PostgreSQL
type PostgresChatRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
	logger *slog.Logger
}

// NewChatRepository creates a new PostgresChatRepository
func NewChatRepository(config *postgres.RepositoryConfig) chatRepo.ChatRepository {
	return &PostgresChatRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// CreateChat creates a new analysis chat. Chat ids are client-supplied,
// so two concurrent first requests can race on the same id; the unique
// constraint decides the winner and the loser gets a ConflictError
// carrying the surviving id.
func (r *PostgresChatRepository) CreateChat(ctx context.Context, chat *chatModels.Chat) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, subject_id, analysis_type, user_id, org_id, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING created_at
	`, r.tables.Chats)

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		chat.ID,
		chat.SubjectID,
		chat.AnalysisType,
		chat.UserID,
		chat.OrgID,
	).Scan(&chat.CreatedAt)

	if err != nil {
		if postgres.IsPgDuplicateError(err) {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("chat '%s' already exists", chat.ID),
				ResourceType: "chat",
				ResourceID:   chat.ID,
			}
		}
		if postgres.IsPgForeignKeyError(err) {
			return fmt.Errorf("subject %s: %w", chat.SubjectID, domain.ErrNotFound)
		}
		return fmt.Errorf("create chat: %w", err)
	}

	return nil
}

// GetChat retrieves a chat by id
func (r *PostgresChatRepository) GetChat(ctx context.Context, chatID string) (*chatModels.Chat, error) {
	query := fmt.Sprintf(`
		SELECT id, subject_id, analysis_type, user_id, org_id, created_at
		FROM %s
		WHERE id = $1
	`, r.tables.Chats)

	var chat chatModels.Chat
	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, chatID).Scan(
		&chat.ID,
		&chat.SubjectID,
		&chat.AnalysisType,
		&chat.UserID,
		&chat.OrgID,
		&chat.CreatedAt,
	)

	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, fmt.Errorf("chat %s: %w", chatID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get chat: %w", err)
	}

	return &chat, nil
}

// ListBySubject retrieves all chats for a subject, oldest first
func (r *PostgresChatRepository) ListBySubject(ctx context.Context, subjectID string) ([]chatModels.Chat, error) {
	query := fmt.Sprintf(`
		SELECT id, subject_id, analysis_type, user_id, org_id, created_at
		FROM %s
		WHERE subject_id = $1
		ORDER BY created_at ASC, id ASC
	`, r.tables.Chats)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, subjectID)
	if err != nil {
		return nil, fmt.Errorf("list chats: %w", err)
	}
	defer rows.Close()

	var chats []chatModels.Chat
	for rows.Next() {
		var chat chatModels.Chat
		err := rows.Scan(
			&chat.ID,
			&chat.SubjectID,
			&chat.AnalysisType,
			&chat.UserID,
			&chat.OrgID,
			&chat.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan chat: %w", err)
		}
		chats = append(chats, chat)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate chats: %w", err)
	}

	// Return empty slice instead of nil
	if chats == nil {
		chats = []chatModels.Chat{}
	}

	return chats, nil
}

// CountByOrg counts all chats owned by an organization
func (r *PostgresChatRepository) CountByOrg(ctx context.Context, orgID string) (int, error) {
	query := fmt.Sprintf(`
		SELECT COUNT(*) FROM %s WHERE org_id = $1
	`, r.tables.Chats)

	var count int
	executor := postgres.GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, orgID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count chats: %w", err)
	}

	return count, nil
}
