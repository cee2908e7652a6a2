package chat

import (
	"context"
	"fmt"
	"strings"

	"fundscope/internal/domain/models"
	chatModels "fundscope/internal/domain/models/chat"
	"fundscope/internal/domain/repositories"
	domainllm "fundscope/internal/domain/services/llm"
)

// DocumentContextInjector rewrites the first message of a model-facing
// conversation to carry the subject's context and document text. The
// synthesis is deterministic so identical inputs always produce the
// same prompt. The caller keeps the unmodified original message for
// persistence; this component never sees it again.
type DocumentContextInjector struct {
	subjectRepo repositories.SubjectRepository
	docRepo     repositories.DocumentRepository
}

// NewDocumentContextInjector creates a new injector.
func NewDocumentContextInjector(subjectRepo repositories.SubjectRepository, docRepo repositories.DocumentRepository) *DocumentContextInjector {
	return &DocumentContextInjector{
		subjectRepo: subjectRepo,
		docRepo:     docRepo,
	}
}

// Inject returns a new conversation where the first message's content is
// replaced by the synthesized context block, when the subject has
// context text or documents with extracted text. All other messages
// pass through unchanged. An empty conversation is returned as-is.
//
// A missing subject here is an invariant violation: the orchestrator
// already loaded it under the caller's workspace.
func (inj *DocumentContextInjector) Inject(ctx context.Context, conversation []domainllm.Message, subjectID string, ws models.Workspace) ([]domainllm.Message, error) {
	if len(conversation) == 0 {
		return conversation, nil
	}

	subject, err := inj.subjectRepo.GetByID(ctx, subjectID, ws)
	if err != nil {
		return nil, fmt.Errorf("load subject for context injection: %w", err)
	}

	docs, err := inj.docRepo.ListBySubject(ctx, subjectID)
	if err != nil {
		return nil, fmt.Errorf("load documents for context injection: %w", err)
	}

	// Only documents with extracted text participate
	var withText []models.Document
	for _, doc := range docs {
		if doc.HasText() {
			withText = append(withText, doc)
		}
	}

	if !subject.HasContext() && len(withText) == 0 {
		return conversation, nil
	}

	synthesized := synthesizeContext(subject, withText)

	out := make([]domainllm.Message, len(conversation))
	copy(out, conversation)

	first := out[0]
	first.Parts = []chatModels.Part{chatModels.TextPart(synthesized)}
	out[0] = first

	return out, nil
}

// synthesizeContext builds the replacement content for the first
// message: framing instruction, subject context, document inventory and
// full texts, then a trailing separator.
func synthesizeContext(subject *models.Subject, docs []models.Document) string {
	var sb strings.Builder

	sb.WriteString("Base your analysis on the inputs I have provided about this subject.\n")

	if subject.HasContext() {
		sb.WriteString(fmt.Sprintf("Context for %s: %s\n", subject.Name, *subject.Context))
	}

	if len(docs) > 0 {
		sb.WriteString(fmt.Sprintf("\nI have provided %d document(s):\n", len(docs)))
		for _, doc := range docs {
			sb.WriteString(fmt.Sprintf("- %s\n", doc.Name))
		}
		for _, doc := range docs {
			sb.WriteString(fmt.Sprintf("\n## %s\n", doc.Name))
			sb.WriteString(*doc.ExtractedText)
			sb.WriteString("\n")
		}
	}

	sb.WriteString("\n---\n")

	return sb.String()
}
