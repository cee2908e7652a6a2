package chat

import (
	"context"
	"fmt"

	"fundscope/internal/domain"
	"fundscope/internal/domain/models"
	chatModels "fundscope/internal/domain/models/chat"
)

// In-memory fakes implementing the repository interfaces. They apply the
// same workspace filtering rules as the postgres implementations so
// tenant-isolation behavior can be tested without a database.

type fakeSubjectRepo struct {
	subjects map[string]*models.Subject
}

func newFakeSubjectRepo(subjects ...*models.Subject) *fakeSubjectRepo {
	r := &fakeSubjectRepo{subjects: make(map[string]*models.Subject)}
	for _, s := range subjects {
		r.subjects[s.ID] = s
	}
	return r
}

func (r *fakeSubjectRepo) Create(_ context.Context, subject *models.Subject) error {
	r.subjects[subject.ID] = subject
	return nil
}

func (r *fakeSubjectRepo) GetByID(_ context.Context, subjectID string, ws models.Workspace) (*models.Subject, error) {
	s, ok := r.subjects[subjectID]
	if !ok || s.Archived || !visibleTo(s.UserID, s.OrgID, ws) {
		return nil, fmt.Errorf("subject %s: %w", subjectID, domain.ErrNotFound)
	}
	return s, nil
}

func (r *fakeSubjectRepo) List(_ context.Context, ws models.Workspace) ([]models.Subject, error) {
	out := []models.Subject{}
	for _, s := range r.subjects {
		if !s.Archived && visibleTo(s.UserID, s.OrgID, ws) {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *fakeSubjectRepo) Update(_ context.Context, subject *models.Subject, ws models.Workspace) error {
	if _, err := r.GetByID(context.Background(), subject.ID, ws); err != nil {
		return err
	}
	r.subjects[subject.ID] = subject
	return nil
}

func (r *fakeSubjectRepo) Archive(_ context.Context, subjectID string, ws models.Workspace) error {
	s, err := r.GetByID(context.Background(), subjectID, ws)
	if err != nil {
		return err
	}
	s.Archived = true
	return nil
}

func visibleTo(userID string, orgID *string, ws models.Workspace) bool {
	if ws.IsOrg() {
		return orgID != nil && *orgID == *ws.OrgID
	}
	return userID == ws.UserID && orgID == nil
}

type fakeDocumentRepo struct {
	docs []models.Document
}

func (r *fakeDocumentRepo) Create(_ context.Context, doc *models.Document) error {
	r.docs = append(r.docs, *doc)
	return nil
}

func (r *fakeDocumentRepo) ListBySubject(_ context.Context, subjectID string) ([]models.Document, error) {
	out := []models.Document{}
	for _, d := range r.docs {
		if d.SubjectID == subjectID {
			out = append(out, d)
		}
	}
	return out, nil
}

type fakeOrgRepo struct {
	orgs map[string]*models.Organization
}

func (r *fakeOrgRepo) GetByID(_ context.Context, orgID string) (*models.Organization, error) {
	org, ok := r.orgs[orgID]
	if !ok {
		return nil, fmt.Errorf("organization %s: %w", orgID, domain.ErrNotFound)
	}
	return org, nil
}

type fakeChatRepo struct {
	chats map[string]*chatModels.Chat
}

func newFakeChatRepo(chats ...*chatModels.Chat) *fakeChatRepo {
	r := &fakeChatRepo{chats: make(map[string]*chatModels.Chat)}
	for _, c := range chats {
		r.chats[c.ID] = c
	}
	return r
}

func (r *fakeChatRepo) CreateChat(_ context.Context, chat *chatModels.Chat) error {
	if _, exists := r.chats[chat.ID]; exists {
		return &domain.ConflictError{
			Message:      "chat already exists",
			ResourceType: "chat",
			ResourceID:   chat.ID,
		}
	}
	r.chats[chat.ID] = chat
	return nil
}

func (r *fakeChatRepo) GetChat(_ context.Context, chatID string) (*chatModels.Chat, error) {
	c, ok := r.chats[chatID]
	if !ok {
		return nil, fmt.Errorf("chat %s: %w", chatID, domain.ErrNotFound)
	}
	return c, nil
}

func (r *fakeChatRepo) ListBySubject(_ context.Context, subjectID string) ([]chatModels.Chat, error) {
	out := []chatModels.Chat{}
	for _, c := range r.chats {
		if c.SubjectID == subjectID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *fakeChatRepo) CountByOrg(_ context.Context, orgID string) (int, error) {
	count := 0
	for _, c := range r.chats {
		if c.OrgID != nil && *c.OrgID == orgID {
			count++
		}
	}
	return count, nil
}
