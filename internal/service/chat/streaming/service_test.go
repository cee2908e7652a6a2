package streaming

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"fundscope/internal/domain"
	"fundscope/internal/domain/models"
	chatModels "fundscope/internal/domain/models/chat"
	domainllm "fundscope/internal/domain/services/llm"
)

// fakeMessageRepo is an append-only in-memory message store that records
// insertion order.
type fakeMessageRepo struct {
	messages []chatModels.Message
	failOn   string // message id whose insert should fail
}

func (r *fakeMessageRepo) CreateMessage(_ context.Context, msg *chatModels.Message) error {
	if r.failOn != "" && msg.ID == r.failOn {
		return errors.New("simulated write failure")
	}
	for _, m := range r.messages {
		if m.ID == msg.ID {
			return &domain.ConflictError{
				Message:      "message already exists",
				ResourceType: "message",
				ResourceID:   msg.ID,
			}
		}
	}
	r.messages = append(r.messages, *msg)
	return nil
}

func (r *fakeMessageRepo) ListByChat(_ context.Context, chatID string) ([]chatModels.Message, error) {
	out := []chatModels.Message{}
	for _, m := range r.messages {
		if m.ChatID == chatID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeMessageRepo) CountByChat(_ context.Context, chatID string) (int, error) {
	msgs, _ := r.ListByChat(context.Background(), chatID)
	return len(msgs), nil
}

func testService(messages *fakeMessageRepo) *Service {
	return &Service{
		messages: messages,
		logger:   slog.New(slog.DiscardHandler),
	}
}

func userMessage(id, text string) *chatModels.Message {
	return &chatModels.Message{
		ID:    id,
		Role:  chatModels.RoleUser,
		Parts: []chatModels.Part{chatModels.TextPart(text)},
	}
}

func TestCompletionHookPersistsUserThenAssistant(t *testing.T) {
	messages := &fakeMessageRepo{}
	svc := testService(messages)

	hook := svc.completionHook("chat-1", userMessage("u1", "Analyze this program"))

	assistantID, err := hook(context.Background(), "The program serves...", &domainllm.StreamMetadata{OutputTokens: 12})
	if err != nil {
		t.Fatal(err)
	}

	if len(messages.messages) != 2 {
		t.Fatalf("persisted %d messages, want 2", len(messages.messages))
	}

	user := messages.messages[0]
	if user.ID != "u1" || user.Role != chatModels.RoleUser || user.ChatID != "chat-1" {
		t.Errorf("user message = %+v", user)
	}
	if user.Text() != "Analyze this program" {
		t.Errorf("user message must be persisted in its original form, got %q", user.Text())
	}

	assistant := messages.messages[1]
	if assistant.Role != chatModels.RoleAssistant || assistant.ChatID != "chat-1" {
		t.Errorf("assistant message = %+v", assistant)
	}
	if assistant.ID != assistantID {
		t.Errorf("returned id %q does not match persisted assistant %q", assistantID, assistant.ID)
	}
	if assistant.Text() != "The program serves..." {
		t.Errorf("assistant text = %q", assistant.Text())
	}
	if assistant.Attachments == nil || len(assistant.Attachments) != 0 {
		t.Errorf("assistant attachments should be an empty list, got %+v", assistant.Attachments)
	}
}

func TestCompletionHookToleratesDuplicateUserMessage(t *testing.T) {
	messages := &fakeMessageRepo{messages: []chatModels.Message{
		{ID: "u1", ChatID: "chat-1", Role: chatModels.RoleUser, Parts: []chatModels.Part{chatModels.TextPart("q")}},
	}}
	svc := testService(messages)

	hook := svc.completionHook("chat-1", userMessage("u1", "q"))

	if _, err := hook(context.Background(), "answer", &domainllm.StreamMetadata{}); err != nil {
		t.Fatalf("duplicate user message must not fail the hook: %v", err)
	}

	// Still exactly one user message, plus the new assistant message
	if len(messages.messages) != 2 {
		t.Errorf("persisted %d messages, want 2", len(messages.messages))
	}
}

func TestCompletionHookEmptyAssistantText(t *testing.T) {
	messages := &fakeMessageRepo{}
	svc := testService(messages)

	hook := svc.completionHook("chat-1", userMessage("u1", "q"))

	if _, err := hook(context.Background(), "", &domainllm.StreamMetadata{}); err == nil {
		t.Fatal("empty assistant text should be an error")
	}

	// The user message is persisted; no assistant row is written
	if len(messages.messages) != 1 || messages.messages[0].Role != chatModels.RoleUser {
		t.Errorf("messages = %+v", messages.messages)
	}
}

func TestCompletionHookUserWriteFailure(t *testing.T) {
	messages := &fakeMessageRepo{failOn: "u1"}
	svc := testService(messages)

	hook := svc.completionHook("chat-1", userMessage("u1", "q"))

	if _, err := hook(context.Background(), "answer", &domainllm.StreamMetadata{}); err == nil {
		t.Fatal("user write failure should surface")
	}
	if len(messages.messages) != 0 {
		t.Errorf("nothing should be persisted after a user write failure, got %+v", messages.messages)
	}
}

func TestVerifyChatOwnershipSubjectMismatch(t *testing.T) {
	svc := testService(&fakeMessageRepo{})
	chat := &chatModels.Chat{ID: "c1", SubjectID: "subj-1", UserID: "user-1"}
	ws := models.PersonalWorkspace("user-1")

	err := svc.verifyChatOwnership(chat, &ChatRequest{SubjectID: "subj-2", UserID: "user-1"}, ws)
	if !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("subject mismatch should be forbidden, got %v", err)
	}

	// Empty subject skips the subject check (resume path)
	if err := svc.verifyChatOwnership(chat, &ChatRequest{UserID: "user-1"}, ws); err != nil {
		t.Errorf("resume-path ownership check failed: %v", err)
	}
}

func TestValidateChatRequest(t *testing.T) {
	svc := testService(&fakeMessageRepo{})

	valid := &ChatRequest{
		SubjectID:    "subj-1",
		UserID:       "user-1",
		ChatID:       "chat-1",
		AnalysisType: "summary",
		Message:      userMessage("m1", "hello"),
	}
	if err := svc.validateChatRequest(valid); err != nil {
		t.Errorf("valid request rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*ChatRequest)
	}{
		{"missing subject", func(r *ChatRequest) { r.SubjectID = "" }},
		{"missing chat id", func(r *ChatRequest) { r.ChatID = "" }},
		{"missing analysis type", func(r *ChatRequest) { r.AnalysisType = "" }},
		{"missing message", func(r *ChatRequest) { r.Message = nil }},
		{"assistant role", func(r *ChatRequest) { r.Message = &chatModels.Message{ID: "m", Role: chatModels.RoleAssistant, Parts: []chatModels.Part{chatModels.TextPart("x")}} }},
		{"no parts", func(r *ChatRequest) { r.Message = &chatModels.Message{ID: "m", Role: chatModels.RoleUser} }},
		{"non-text part", func(r *ChatRequest) {
			r.Message = &chatModels.Message{ID: "m", Role: chatModels.RoleUser, Parts: []chatModels.Part{{Type: "image"}}}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := *valid
			tt.mutate(&req)
			if err := svc.validateChatRequest(&req); err == nil {
				t.Error("invalid request accepted")
			}
		})
	}
}
