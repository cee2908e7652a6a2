package repositories

import (
	"context"

	"fundscope/internal/domain/models"
)

// SubjectRepository defines persistence operations for subjects.
// Every read is filtered by the caller's workspace so tenants can never
// observe each other's rows.
type SubjectRepository interface {
	// Create persists a new subject
	Create(ctx context.Context, subject *models.Subject) error

	// GetByID retrieves a non-archived subject visible to the workspace
	GetByID(ctx context.Context, subjectID string, ws models.Workspace) (*models.Subject, error)

	// List retrieves all non-archived subjects visible to the workspace,
	// newest first
	List(ctx context.Context, ws models.Workspace) ([]models.Subject, error)

	// Update persists changes to a subject's name and context. The
	// subject must be visible to the workspace.
	Update(ctx context.Context, subject *models.Subject, ws models.Workspace) error

	// Archive soft-deletes a subject visible to the workspace
	Archive(ctx context.Context, subjectID string, ws models.Workspace) error
}

// DocumentRepository defines persistence operations for subject documents.
// Documents are reached through their subject, which the caller has
// already resolved under a workspace filter.
type DocumentRepository interface {
	// Create persists a new document
	Create(ctx context.Context, doc *models.Document) error

	// ListBySubject retrieves all documents for a subject in stable
	// (creation) order
	ListBySubject(ctx context.Context, subjectID string) ([]models.Document, error)
}

// OrganizationRepository defines persistence operations for organizations.
type OrganizationRepository interface {
	// GetByID retrieves an organization
	GetByID(ctx context.Context, orgID string) (*models.Organization, error)
}
