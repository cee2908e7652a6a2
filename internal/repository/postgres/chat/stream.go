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

// PostgresStreamRepository implements the StreamRepository interface using PostgreSQL
type PostgresStreamRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
	logger *slog.Logger
}

// NewStreamRepository creates a new PostgresStreamRepository
func NewStreamRepository(config *postgres.RepositoryConfig) chatRepo.StreamRepository {
	return &PostgresStreamRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// CreateStream records a stream id for a chat before generation begins
func (r *PostgresStreamRepository) CreateStream(ctx context.Context, stream *chatModels.Stream) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, chat_id, created_at)
		VALUES ($1, $2, NOW())
		RETURNING created_at
	`, r.tables.Streams)

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, stream.ID, stream.ChatID).Scan(&stream.CreatedAt)
	if err != nil {
		if postgres.IsPgForeignKeyError(err) {
			return fmt.Errorf("chat %s: %w", stream.ChatID, domain.ErrNotFound)
		}
		return fmt.Errorf("create stream: %w", err)
	}

	return nil
}

// GetLatestByChat retrieves the most recently created stream for a chat
func (r *PostgresStreamRepository) GetLatestByChat(ctx context.Context, chatID string) (*chatModels.Stream, error) {
	query := fmt.Sprintf(`
		SELECT id, chat_id, created_at
		FROM %s
		WHERE chat_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`, r.tables.Streams)

	var stream chatModels.Stream
	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, chatID).Scan(
		&stream.ID,
		&stream.ChatID,
		&stream.CreatedAt,
	)

	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, fmt.Errorf("stream for chat %s: %w", chatID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get latest stream: %w", err)
	}

	return &stream, nil
}

// GetByID retrieves a stream record
func (r *PostgresStreamRepository) GetByID(ctx context.Context, streamID string) (*chatModels.Stream, error) {
	query := fmt.Sprintf(`
		SELECT id, chat_id, created_at
		FROM %s
		WHERE id = $1
	`, r.tables.Streams)

	var stream chatModels.Stream
	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, streamID).Scan(
		&stream.ID,
		&stream.ChatID,
		&stream.CreatedAt,
	)

	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, fmt.Errorf("stream %s: %w", streamID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get stream: %w", err)
	}

	return &stream, nil
}
