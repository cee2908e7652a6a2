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

// PostgresMessageRepository implements the MessageRepository interface using PostgreSQL
type PostgresMessageRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
	logger *slog.Logger
}

// NewMessageRepository creates a new PostgresMessageRepository
func NewMessageRepository(config *postgres.RepositoryConfig) chatRepo.MessageRepository {
	return &PostgresMessageRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// CreateMessage appends a message to its chat
func (r *PostgresMessageRepository) CreateMessage(ctx context.Context, msg *chatModels.Message) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, chat_id, role, parts, attachments, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING created_at
	`, r.tables.Messages)

	// Absent attachments are stored as an empty list, not NULL
	attachments := msg.Attachments
	if attachments == nil {
		attachments = []chatModels.Attachment{}
	}

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		msg.ID,
		msg.ChatID,
		msg.Role,
		msg.Parts,   // pgx handles slice -> JSONB
		attachments, // pgx handles slice -> JSONB
	).Scan(&msg.CreatedAt)

	if err != nil {
		if postgres.IsPgDuplicateError(err) {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("message '%s' already exists", msg.ID),
				ResourceType: "message",
				ResourceID:   msg.ID,
			}
		}
		if postgres.IsPgForeignKeyError(err) {
			return fmt.Errorf("chat %s: %w", msg.ChatID, domain.ErrNotFound)
		}
		return fmt.Errorf("create message: %w", err)
	}

	return nil
}

// ListByChat retrieves all messages for a chat ordered ascending by
// creation time, ties broken by id
func (r *PostgresMessageRepository) ListByChat(ctx context.Context, chatID string) ([]chatModels.Message, error) {
	query := fmt.Sprintf(`
		SELECT id, chat_id, role, parts, attachments, created_at
		FROM %s
		WHERE chat_id = $1
		ORDER BY created_at ASC, id ASC
	`, r.tables.Messages)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, chatID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	var messages []chatModels.Message
	for rows.Next() {
		var msg chatModels.Message
		err := rows.Scan(
			&msg.ID,
			&msg.ChatID,
			&msg.Role,
			&msg.Parts,       // pgx handles JSONB -> slice
			&msg.Attachments, // pgx handles JSONB -> slice
			&msg.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		messages = append(messages, msg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}

	// Return empty slice instead of nil
	if messages == nil {
		messages = []chatModels.Message{}
	}

	return messages, nil
}

// CountByChat counts messages in a chat
func (r *PostgresMessageRepository) CountByChat(ctx context.Context, chatID string) (int, error) {
	query := fmt.Sprintf(`
		SELECT COUNT(*) FROM %s WHERE chat_id = $1
	`, r.tables.Messages)

	var count int
	executor := postgres.GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, chatID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count messages: %w", err)
	}

	return count, nil
}
