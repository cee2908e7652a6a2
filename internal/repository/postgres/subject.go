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

// PostgresSubjectRepository implements the SubjectRepository interface using PostgreSQL
type PostgresSubjectRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
	logger *slog.Logger
}

// NewSubjectRepository creates a new PostgresSubjectRepository
func NewSubjectRepository(config *RepositoryConfig) repositories.SubjectRepository {
	return &PostgresSubjectRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// Create persists a new subject
func (r *PostgresSubjectRepository) Create(ctx context.Context, subject *models.Subject) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, user_id, org_id, name, context, archived, created_at)
		VALUES ($1, $2, $3, $4, $5, false, NOW())
		RETURNING created_at
	`, r.tables.Subjects)

	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		subject.ID,
		subject.UserID,
		subject.OrgID,
		subject.Name,
		subject.Context,
	).Scan(&subject.CreatedAt)

	if err != nil {
		if IsPgDuplicateError(err) {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("subject '%s' already exists", subject.ID),
				ResourceType: "subject",
				ResourceID:   subject.ID,
			}
		}
		return fmt.Errorf("create subject: %w", err)
	}

	return nil
}

// GetByID retrieves a non-archived subject visible to the workspace
func (r *PostgresSubjectRepository) GetByID(ctx context.Context, subjectID string, ws models.Workspace) (*models.Subject, error) {
	wsClause, wsArgs := WorkspaceClause(ws, 2)
	query := fmt.Sprintf(`
		SELECT id, user_id, org_id, name, context, archived, created_at
		FROM %s
		WHERE id = $1 AND %s AND archived = false
	`, r.tables.Subjects, wsClause)

	args := append([]interface{}{subjectID}, wsArgs...)

	var subject models.Subject
	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, args...).Scan(
		&subject.ID,
		&subject.UserID,
		&subject.OrgID,
		&subject.Name,
		&subject.Context,
		&subject.Archived,
		&subject.CreatedAt,
	)

	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("subject %s: %w", subjectID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get subject: %w", err)
	}

	return &subject, nil
}

// List retrieves all non-archived subjects visible to the workspace, newest first
func (r *PostgresSubjectRepository) List(ctx context.Context, ws models.Workspace) ([]models.Subject, error) {
	wsClause, wsArgs := WorkspaceClause(ws, 1)
	query := fmt.Sprintf(`
		SELECT id, user_id, org_id, name, context, archived, created_at
		FROM %s
		WHERE %s AND archived = false
		ORDER BY created_at DESC
	`, r.tables.Subjects, wsClause)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, wsArgs...)
	if err != nil {
		return nil, fmt.Errorf("list subjects: %w", err)
	}
	defer rows.Close()

	var subjects []models.Subject
	for rows.Next() {
		var subject models.Subject
		err := rows.Scan(
			&subject.ID,
			&subject.UserID,
			&subject.OrgID,
			&subject.Name,
			&subject.Context,
			&subject.Archived,
			&subject.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan subject: %w", err)
		}
		subjects = append(subjects, subject)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate subjects: %w", err)
	}

	// Return empty slice instead of nil
	if subjects == nil {
		subjects = []models.Subject{}
	}

	return subjects, nil
}

// Update persists changes to a subject's name and context
func (r *PostgresSubjectRepository) Update(ctx context.Context, subject *models.Subject, ws models.Workspace) error {
	wsClause, wsArgs := WorkspaceClause(ws, 4)
	query := fmt.Sprintf(`
		UPDATE %s
		SET name = $1, context = $2
		WHERE id = $3 AND %s AND archived = false
	`, r.tables.Subjects, wsClause)

	args := append([]interface{}{subject.Name, subject.Context, subject.ID}, wsArgs...)

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update subject: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("subject %s: %w", subject.ID, domain.ErrNotFound)
	}

	return nil
}

// Archive soft-deletes a subject visible to the workspace
func (r *PostgresSubjectRepository) Archive(ctx context.Context, subjectID string, ws models.Workspace) error {
	wsClause, wsArgs := WorkspaceClause(ws, 2)
	query := fmt.Sprintf(`
		UPDATE %s
		SET archived = true
		WHERE id = $1 AND %s AND archived = false
	`, r.tables.Subjects, wsClause)

	args := append([]interface{}{subjectID}, wsArgs...)

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("archive subject: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("subject %s: %w", subjectID, domain.ErrNotFound)
	}

	return nil
}
