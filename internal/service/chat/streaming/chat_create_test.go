package streaming

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"

	"fundscope/internal/domain"
	"fundscope/internal/domain/models"
	chatModels "fundscope/internal/domain/models/chat"
	chatSvc "fundscope/internal/service/chat"
)

// fakeChatRepo is an in-memory chat store. Setting missNextGet simulates
// the creation race: the first lookup misses, then the winner's insert
// has landed by the time the conflict is resolved.
type fakeChatRepo struct {
	chats       map[string]*chatModels.Chat
	missNextGet bool
	creates     int
}

func newFakeChatRepo() *fakeChatRepo {
	return &fakeChatRepo{chats: make(map[string]*chatModels.Chat)}
}

func (r *fakeChatRepo) CreateChat(_ context.Context, chat *chatModels.Chat) error {
	if _, exists := r.chats[chat.ID]; exists {
		return &domain.ConflictError{
			Message:      fmt.Sprintf("chat '%s' already exists", chat.ID),
			ResourceType: "chat",
			ResourceID:   chat.ID,
		}
	}
	r.creates++
	r.chats[chat.ID] = chat
	return nil
}

func (r *fakeChatRepo) GetChat(_ context.Context, chatID string) (*chatModels.Chat, error) {
	if r.missNextGet {
		r.missNextGet = false
		return nil, fmt.Errorf("chat %s: %w", chatID, domain.ErrNotFound)
	}
	chat, ok := r.chats[chatID]
	if !ok {
		return nil, fmt.Errorf("chat %s: %w", chatID, domain.ErrNotFound)
	}
	return chat, nil
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

func trialOrg(id string, limit int) *models.Organization {
	return &models.Organization{ID: id, Name: "org " + id, Plan: models.PlanTrial, TrialChatLimit: limit}
}

func chatService(chats *fakeChatRepo, orgs *fakeOrgRepo) *Service {
	return &Service{
		chats:  chats,
		quota:  chatSvc.NewTrialQuotaChecker(orgs, chats),
		logger: slog.New(slog.DiscardHandler),
	}
}

func orgChat(id, subjectID, userID, orgID string) *chatModels.Chat {
	return &chatModels.Chat{
		ID:           id,
		SubjectID:    subjectID,
		AnalysisType: "summary",
		UserID:       userID,
		OrgID:        &orgID,
	}
}

func TestLoadOrCreateChatExistingSkipsQuota(t *testing.T) {
	chats := newFakeChatRepo()
	chats.chats["chat-1"] = orgChat("chat-1", "subj-1", "user-1", "org-a")

	// Limit 0 means the quota would reject any new chat; an existing
	// chat must not consult it at all
	orgs := &fakeOrgRepo{orgs: map[string]*models.Organization{"org-a": trialOrg("org-a", 0)}}
	svc := chatService(chats, orgs)

	ws := models.OrgWorkspace("user-1", "org-a")
	req := &ChatRequest{SubjectID: "subj-1", ChatID: "chat-1", UserID: "user-1", OrgID: ws.OrgID}

	chat, err := svc.loadOrCreateChat(context.Background(), req, ws)
	if err != nil {
		t.Fatalf("existing chat must succeed regardless of quota, got %v", err)
	}
	if chat.ID != "chat-1" {
		t.Errorf("chat ID = %q, want chat-1", chat.ID)
	}
	if chats.creates != 0 {
		t.Errorf("creates = %d, want 0", chats.creates)
	}
}

func TestLoadOrCreateChatQuotaExhausted(t *testing.T) {
	chats := newFakeChatRepo()
	chats.chats["chat-1"] = orgChat("chat-1", "subj-1", "user-1", "org-a")

	orgs := &fakeOrgRepo{orgs: map[string]*models.Organization{"org-a": trialOrg("org-a", 1)}}
	svc := chatService(chats, orgs)

	ws := models.OrgWorkspace("user-1", "org-a")
	req := &ChatRequest{SubjectID: "subj-1", ChatID: "chat-2", UserID: "user-1", OrgID: ws.OrgID}

	_, err := svc.loadOrCreateChat(context.Background(), req, ws)

	var quotaErr *domain.QuotaError
	if !errors.As(err, &quotaErr) {
		t.Fatalf("error = %v, want QuotaError", err)
	}
	if quotaErr.Code != domain.QuotaCodeTrialChatLimit {
		t.Errorf("code = %q, want %q", quotaErr.Code, domain.QuotaCodeTrialChatLimit)
	}
	if chats.creates != 0 {
		t.Errorf("creates = %d, want 0 (no insert on quota rejection)", chats.creates)
	}
	if _, exists := chats.chats["chat-2"]; exists {
		t.Error("rejected chat must not be persisted")
	}
}

func TestLoadOrCreateChatCreatesUnderLimit(t *testing.T) {
	chats := newFakeChatRepo()
	orgs := &fakeOrgRepo{orgs: map[string]*models.Organization{"org-a": trialOrg("org-a", 10)}}
	svc := chatService(chats, orgs)

	ws := models.OrgWorkspace("user-1", "org-a")
	req := &ChatRequest{SubjectID: "subj-1", ChatID: "chat-1", UserID: "user-1", OrgID: ws.OrgID, AnalysisType: "bias-analysis"}

	chat, err := svc.loadOrCreateChat(context.Background(), req, ws)
	if err != nil {
		t.Fatal(err)
	}

	if chat.ID != "chat-1" || chat.SubjectID != "subj-1" || chat.AnalysisType != "bias-analysis" {
		t.Errorf("chat = %+v", chat)
	}
	if chat.UserID != "user-1" || chat.OrgID == nil || *chat.OrgID != "org-a" {
		t.Errorf("chat ownership = user %q org %v, want user-1/org-a", chat.UserID, chat.OrgID)
	}
	if chats.creates != 1 {
		t.Errorf("creates = %d, want 1", chats.creates)
	}
}

func TestLoadOrCreateChatPersonalSkipsQuota(t *testing.T) {
	chats := newFakeChatRepo()
	// Empty org repo: a quota consult would error
	svc := chatService(chats, &fakeOrgRepo{orgs: map[string]*models.Organization{}})

	ws := models.PersonalWorkspace("user-1")
	req := &ChatRequest{SubjectID: "subj-1", ChatID: "chat-1", UserID: "user-1", AnalysisType: "summary"}

	chat, err := svc.loadOrCreateChat(context.Background(), req, ws)
	if err != nil {
		t.Fatalf("personal chats are outside quota scope, got %v", err)
	}
	if chat.OrgID != nil {
		t.Errorf("personal chat OrgID = %v, want nil", chat.OrgID)
	}
}

func TestLoadOrCreateChatCreationRaceConverges(t *testing.T) {
	chats := newFakeChatRepo()
	winner := orgChat("chat-1", "subj-1", "user-1", "org-a")
	chats.chats["chat-1"] = winner
	chats.missNextGet = true

	orgs := &fakeOrgRepo{orgs: map[string]*models.Organization{"org-a": trialOrg("org-a", 10)}}
	svc := chatService(chats, orgs)

	ws := models.OrgWorkspace("user-1", "org-a")
	req := &ChatRequest{SubjectID: "subj-1", ChatID: "chat-1", UserID: "user-1", OrgID: ws.OrgID, AnalysisType: "summary"}

	chat, err := svc.loadOrCreateChat(context.Background(), req, ws)
	if err != nil {
		t.Fatalf("losing the creation race must converge on the surviving row, got %v", err)
	}
	if chat != winner {
		t.Errorf("chat = %+v, want the surviving row", chat)
	}
	if chats.creates != 0 {
		t.Errorf("creates = %d, want 0 (insert lost the race)", chats.creates)
	}
}

func TestLoadOrCreateChatRaceForeignWinnerForbidden(t *testing.T) {
	chats := newFakeChatRepo()
	chats.chats["chat-1"] = orgChat("chat-1", "subj-1", "user-2", "org-a")
	chats.missNextGet = true

	orgs := &fakeOrgRepo{orgs: map[string]*models.Organization{"org-a": trialOrg("org-a", 10)}}
	svc := chatService(chats, orgs)

	ws := models.OrgWorkspace("user-1", "org-a")
	req := &ChatRequest{SubjectID: "subj-1", ChatID: "chat-1", UserID: "user-1", OrgID: ws.OrgID, AnalysisType: "summary"}

	_, err := svc.loadOrCreateChat(context.Background(), req, ws)
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("error = %v, want ErrForbidden when the surviving chat belongs to another creator", err)
	}
}
