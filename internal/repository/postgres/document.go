package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"fundscope/internal/domain"
	"fundscope/internal/domain/models"
	"fundscope/internal/domain/repositories"
)

// PostgresDocumentRepository implements the DocumentRepository interface using PostgreSQL
type PostgresDocumentRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
	logger *slog.Logger
}

// NewDocumentRepository creates a new PostgresDocumentRepository
func NewDocumentRepository(config *RepositoryConfig) repositories.DocumentRepository {
	return &PostgresDocumentRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// Create persists a new document. Documents are immutable after creation.
func (r *PostgresDocumentRepository) Create(ctx context.Context, doc *models.Document) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, subject_id, name, file_type, extracted_text, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING created_at
	`, r.tables.Documents)

	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		doc.ID,
		doc.SubjectID,
		doc.Name,
		doc.FileType,
		doc.ExtractedText,
	).Scan(&doc.CreatedAt)

	if err != nil {
		if IsPgForeignKeyError(err) {
			return fmt.Errorf("subject %s: %w", doc.SubjectID, domain.ErrNotFound)
		}
		return fmt.Errorf("create document: %w", err)
	}

	return nil
}

// ListBySubject retrieves all documents for a subject in creation order
func (r *PostgresDocumentRepository) ListBySubject(ctx context.Context, subjectID string) ([]models.Document, error) {
	query := fmt.Sprintf(`
		SELECT id, subject_id, name, file_type, extracted_text, created_at
		FROM %s
		WHERE subject_id = $1
		ORDER BY created_at ASC, id ASC
	`, r.tables.Documents)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, subjectID)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var docs []models.Document
	for rows.Next() {
		var doc models.Document
		err := rows.Scan(
			&doc.ID,
			&doc.SubjectID,
			&doc.Name,
			&doc.FileType,
			&doc.ExtractedText,
			&doc.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		docs = append(docs, doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}

	// Return empty slice instead of nil
	if docs == nil {
		docs = []models.Document{}
	}

	return docs, nil
}
