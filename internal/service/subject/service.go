package subject

import (
	"context"
	"fmt"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"fundscope/internal/config"
	"fundscope/internal/domain"
	"fundscope/internal/domain/models"
	"fundscope/internal/domain/repositories"
)

// Service manages subjects and their documents. Subjects are the
// tenant-scoped anchor of everything else, so every operation takes the
// caller's workspace.
type Service struct {
	subjects repositories.SubjectRepository
	docs     repositories.DocumentRepository
	tx       repositories.TransactionManager
	logger   *slog.Logger
}

// NewService creates a new subject service.
func NewService(subjects repositories.SubjectRepository, docs repositories.DocumentRepository, tx repositories.TransactionManager, logger *slog.Logger) *Service {
	return &Service{
		subjects: subjects,
		docs:     docs,
		tx:       tx,
		logger:   logger,
	}
}

// CreateSubjectRequest is the request to create a subject.
type CreateSubjectRequest struct {
	Name    string  `json:"name"`
	Context *string `json:"context"`
}

// Validate validates the request.
func (r CreateSubjectRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, config.MaxSubjectNameLength)),
		validation.Field(&r.Context, validation.Length(0, config.MaxSubjectContextLength)),
	)
}

// CreateSubject creates a subject in the caller's workspace.
func (s *Service) CreateSubject(ctx context.Context, req *CreateSubjectRequest, ws models.Workspace) (*models.Subject, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	subject := &models.Subject{
		ID:      uuid.NewString(),
		UserID:  ws.UserID,
		OrgID:   ws.OrgID,
		Name:    req.Name,
		Context: req.Context,
	}

	if err := s.subjects.Create(ctx, subject); err != nil {
		return nil, err
	}

	s.logger.Info("subject created", "subject_id", subject.ID, "name", subject.Name, "org_scoped", ws.IsOrg())

	return subject, nil
}

// GetSubject returns a subject visible to the workspace.
func (s *Service) GetSubject(ctx context.Context, subjectID string, ws models.Workspace) (*models.Subject, error) {
	return s.subjects.GetByID(ctx, subjectID, ws)
}

// ListSubjects returns all subjects visible to the workspace.
func (s *Service) ListSubjects(ctx context.Context, ws models.Workspace) ([]models.Subject, error) {
	return s.subjects.List(ctx, ws)
}

// OptionalContext tracks tri-state semantics for context updates (RFC
// 7396 PATCH): absent means keep, null means clear, value means set.
// Transport-agnostic; the handler maps from httputil.OptionalString.
type OptionalContext struct {
	Present bool
	Value   *string
}

// UpdateSubjectRequest is the request to update a subject's mutable
// fields. Nil name means keep the current name.
type UpdateSubjectRequest struct {
	Name    *string
	Context OptionalContext
}

// Validate validates the request.
func (r UpdateSubjectRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Length(1, config.MaxSubjectNameLength)),
	)
}

// UpdateSubject applies a partial update to a subject. The
// read-modify-write runs in a transaction so concurrent patches cannot
// interleave.
func (s *Service) UpdateSubject(ctx context.Context, subjectID string, req *UpdateSubjectRequest, ws models.Workspace) (*models.Subject, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	var subject *models.Subject
	err := s.tx.ExecTx(ctx, func(ctx context.Context) error {
		var err error
		subject, err = s.subjects.GetByID(ctx, subjectID, ws)
		if err != nil {
			return err
		}

		if req.Name != nil {
			subject.Name = *req.Name
		}
		if req.Context.Present {
			subject.Context = req.Context.Value
		}

		return s.subjects.Update(ctx, subject, ws)
	})
	if err != nil {
		return nil, err
	}

	return subject, nil
}

// ArchiveSubject soft-deletes a subject; archived subjects drop out of
// every read path.
func (s *Service) ArchiveSubject(ctx context.Context, subjectID string, ws models.Workspace) error {
	if err := s.subjects.Archive(ctx, subjectID, ws); err != nil {
		return err
	}

	s.logger.Info("subject archived", "subject_id", subjectID)
	return nil
}

// CreateDocumentRequest is the request to attach a document to a
// subject. Extraction happens upstream; this service stores the result.
type CreateDocumentRequest struct {
	Name          string  `json:"name"`
	FileType      string  `json:"file_type"`
	ExtractedText *string `json:"extracted_text"`
}

// Validate validates the request.
func (r CreateDocumentRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, config.MaxDocumentNameLength)),
		validation.Field(&r.FileType, validation.Required),
	)
}

// CreateDocument attaches a document to a subject the caller can see.
// Documents are immutable after creation.
func (s *Service) CreateDocument(ctx context.Context, subjectID string, req *CreateDocumentRequest, ws models.Workspace) (*models.Document, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	if _, err := s.subjects.GetByID(ctx, subjectID, ws); err != nil {
		return nil, err
	}

	doc := &models.Document{
		ID:            uuid.NewString(),
		SubjectID:     subjectID,
		Name:          req.Name,
		FileType:      req.FileType,
		ExtractedText: req.ExtractedText,
	}

	if err := s.docs.Create(ctx, doc); err != nil {
		return nil, err
	}

	s.logger.Info("document created", "document_id", doc.ID, "subject_id", subjectID, "has_text", doc.HasText())

	return doc, nil
}

// ListDocuments returns a subject's documents in creation order.
func (s *Service) ListDocuments(ctx context.Context, subjectID string, ws models.Workspace) ([]models.Document, error) {
	if _, err := s.subjects.GetByID(ctx, subjectID, ws); err != nil {
		return nil, err
	}

	return s.docs.ListBySubject(ctx, subjectID)
}
