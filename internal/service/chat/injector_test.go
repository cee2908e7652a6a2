package chat

import (
	"context"
	"strings"
	"testing"

	"fundscope/internal/domain/models"
	chatModels "fundscope/internal/domain/models/chat"
	domainllm "fundscope/internal/domain/services/llm"
)

func strPtr(s string) *string { return &s }

func modelMessage(id, role, text string) domainllm.Message {
	return domainllm.Message{
		ID:    id,
		Role:  role,
		Parts: []chatModels.Part{chatModels.TextPart(text)},
	}
}

func TestInjectRewritesFirstMessageOnly(t *testing.T) {
	ws := models.PersonalWorkspace("user-1")
	subjects := newFakeSubjectRepo(&models.Subject{
		ID:      "subj-1",
		UserID:  "user-1",
		Name:    "Riverbend Literacy",
		Context: strPtr("Three-year operating grant request."),
	})
	docs := &fakeDocumentRepo{docs: []models.Document{
		{ID: "d1", SubjectID: "subj-1", Name: "proposal.pdf", ExtractedText: strPtr("Full proposal text.")},
		{ID: "d2", SubjectID: "subj-1", Name: "scan.pdf"}, // no extracted text, excluded
	}}

	injector := NewDocumentContextInjector(subjects, docs)

	conversation := []domainllm.Message{
		modelMessage("m1", chatModels.RoleUser, "original question"),
		modelMessage("m2", chatModels.RoleAssistant, "earlier answer"),
		modelMessage("m3", chatModels.RoleUser, "follow-up"),
	}

	out, err := injector.Inject(context.Background(), conversation, "subj-1", ws)
	if err != nil {
		t.Fatal(err)
	}

	first := out[0].Parts[0].Text
	if strings.Contains(first, "original question") {
		t.Error("first message content should be replaced, not extended")
	}
	for _, want := range []string{
		"Base your analysis on the inputs I have provided",
		"Context for Riverbend Literacy: Three-year operating grant request.",
		"I have provided 1 document(s):",
		"- proposal.pdf",
		"## proposal.pdf",
		"Full proposal text.",
		"---",
	} {
		if !strings.Contains(first, want) {
			t.Errorf("synthesized content missing %q:\n%s", want, first)
		}
	}
	if strings.Contains(first, "scan.pdf") {
		t.Error("documents without extracted text must not appear")
	}

	// Later messages pass through untouched
	if out[1].Parts[0].Text != "earlier answer" || out[2].Parts[0].Text != "follow-up" {
		t.Error("messages after the first must pass through unchanged")
	}

	// The input conversation itself is not mutated
	if conversation[0].Parts[0].Text != "original question" {
		t.Error("Inject must not mutate the caller's conversation")
	}
}

func TestInjectEmptyConversation(t *testing.T) {
	injector := NewDocumentContextInjector(newFakeSubjectRepo(), &fakeDocumentRepo{})

	out, err := injector.Inject(context.Background(), nil, "subj-1", models.PersonalWorkspace("user-1"))
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 0 {
		t.Errorf("empty conversation should be a no-op, got %d messages", len(out))
	}
}

func TestInjectNoContextNoDocuments(t *testing.T) {
	ws := models.PersonalWorkspace("user-1")
	subjects := newFakeSubjectRepo(&models.Subject{ID: "subj-1", UserID: "user-1", Name: "Bare Subject"})
	injector := NewDocumentContextInjector(subjects, &fakeDocumentRepo{})

	conversation := []domainllm.Message{modelMessage("m1", chatModels.RoleUser, "hello")}

	out, err := injector.Inject(context.Background(), conversation, "subj-1", ws)
	if err != nil {
		t.Fatal(err)
	}
	if out[0].Parts[0].Text != "hello" {
		t.Error("with nothing to inject the conversation passes through unchanged")
	}
}

func TestInjectMissingSubject(t *testing.T) {
	injector := NewDocumentContextInjector(newFakeSubjectRepo(), &fakeDocumentRepo{})

	conversation := []domainllm.Message{modelMessage("m1", chatModels.RoleUser, "hello")}

	if _, err := injector.Inject(context.Background(), conversation, "ghost", models.PersonalWorkspace("user-1")); err == nil {
		t.Error("missing subject is an invariant violation and must error")
	}
}

func TestInjectDeterministic(t *testing.T) {
	ws := models.PersonalWorkspace("user-1")
	subjects := newFakeSubjectRepo(&models.Subject{
		ID:      "subj-1",
		UserID:  "user-1",
		Name:    "Stable Subject",
		Context: strPtr("ctx"),
	})
	docs := &fakeDocumentRepo{docs: []models.Document{
		{ID: "d1", SubjectID: "subj-1", Name: "a.pdf", ExtractedText: strPtr("text a")},
		{ID: "d2", SubjectID: "subj-1", Name: "b.pdf", ExtractedText: strPtr("text b")},
	}}
	injector := NewDocumentContextInjector(subjects, docs)

	conversation := []domainllm.Message{modelMessage("m1", chatModels.RoleUser, "q")}

	first, err := injector.Inject(context.Background(), conversation, "subj-1", ws)
	if err != nil {
		t.Fatal(err)
	}
	second, err := injector.Inject(context.Background(), conversation, "subj-1", ws)
	if err != nil {
		t.Fatal(err)
	}
	if first[0].Parts[0].Text != second[0].Parts[0].Text {
		t.Error("identical inputs must synthesize identical content")
	}
}
