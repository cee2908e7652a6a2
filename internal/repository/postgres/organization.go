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

// PostgresOrganizationRepository implements the OrganizationRepository interface using PostgreSQL
type PostgresOrganizationRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
	logger *slog.Logger
}

// NewOrganizationRepository creates a new PostgresOrganizationRepository
func NewOrganizationRepository(config *RepositoryConfig) repositories.OrganizationRepository {
	return &PostgresOrganizationRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// GetByID retrieves an organization
func (r *PostgresOrganizationRepository) GetByID(ctx context.Context, orgID string) (*models.Organization, error) {
	query := fmt.Sprintf(`
		SELECT id, name, plan, trial_chat_limit, created_at
		FROM %s
		WHERE id = $1
	`, r.tables.Organizations)

	var org models.Organization
	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, orgID).Scan(
		&org.ID,
		&org.Name,
		&org.Plan,
		&org.TrialChatLimit,
		&org.CreatedAt,
	)

	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("organization %s: %w", orgID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get organization: %w", err)
	}

	return &org, nil
}
