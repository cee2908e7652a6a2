package streaming

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	mstream "github.com/haowjy/meridian-stream-go"

	"fundscope/internal/config"
	"fundscope/internal/domain"
	"fundscope/internal/domain/models"
	chatModels "fundscope/internal/domain/models/chat"
	"fundscope/internal/domain/repositories"
	chatRepo "fundscope/internal/domain/repositories/chat"
	domainllm "fundscope/internal/domain/services/llm"
	"fundscope/internal/prompts"
	chatSvc "fundscope/internal/service/chat"
)

// ProviderResolver routes a model identifier to a generation provider.
type ProviderResolver interface {
	ProviderForModel(model string) (domainllm.Provider, error)
}

// ChatRequest is the inbound request for one streamed analysis turn.
// Model is an internal override; when empty the configured default
// model serves the request.
type ChatRequest struct {
	SubjectID    string
	UserID       string
	OrgID        *string
	ChatID       string
	AnalysisType string
	Model        string
	Message      *chatModels.Message
}

// ChatResponse carries the chat and the registered stream. The caller
// becomes the stream's first subscriber and relays its events as SSE.
type ChatResponse struct {
	Chat     *chatModels.Chat
	StreamID string
	Stream   *mstream.Stream
}

// Service is the stream orchestrator: it authorizes the request,
// assembles the model-facing conversation, starts the provider stream
// through the resumable registry, and persists the turn on completion.
type Service struct {
	subjects  repositories.SubjectRepository
	chats     chatRepo.ChatRepository
	messages  chatRepo.MessageRepository
	streams   chatRepo.StreamRepository
	injector  *chatSvc.DocumentContextInjector
	quota     *chatSvc.TrialQuotaChecker
	catalog   *prompts.Catalog
	providers ProviderResolver
	registry  *mstream.Registry
	config    *config.Config
	logger    *slog.Logger
}

// NewService creates a new stream orchestrator service.
func NewService(
	subjects repositories.SubjectRepository,
	chats chatRepo.ChatRepository,
	messages chatRepo.MessageRepository,
	streams chatRepo.StreamRepository,
	injector *chatSvc.DocumentContextInjector,
	quota *chatSvc.TrialQuotaChecker,
	catalog *prompts.Catalog,
	providers ProviderResolver,
	registry *mstream.Registry,
	cfg *config.Config,
	logger *slog.Logger,
) *Service {
	return &Service{
		subjects:  subjects,
		chats:     chats,
		messages:  messages,
		streams:   streams,
		injector:  injector,
		quota:     quota,
		catalog:   catalog,
		providers: providers,
		registry:  registry,
		config:    cfg,
		logger:    logger,
	}
}

// StreamChat runs one turn of an analysis chat. On success the returned
// stream is already registered and started; message persistence happens
// in the stream's completion hook, strictly after the last delta, so
// early failures here never leave partial messages behind.
func (s *Service) StreamChat(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	if err := s.validateChatRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	ws := workspaceFor(req.UserID, req.OrgID)

	// Load the subject under the workspace filter. Subjects outside the
	// tenant look identical to subjects that do not exist.
	if _, err := s.subjects.GetByID(ctx, req.SubjectID, ws); err != nil {
		return nil, err
	}

	chat, err := s.loadOrCreateChat(ctx, req, ws)
	if err != nil {
		return nil, err
	}

	prior, err := s.messages.ListByChat(ctx, chat.ID)
	if err != nil {
		return nil, err
	}

	// "First message" means the post-append conversation has exactly
	// one entry
	isFirst := len(prior) == 0

	enhancement := prompts.ProcessMessageForKeywordEnhancement(req.Message)

	systemPrompt, err := s.catalog.SystemPrompt(chat.AnalysisType, isFirst)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	// Build the candidate conversation: prior messages ascending, then
	// the enhanced form of the new message. The original form is kept
	// for persistence only.
	conversation := chatSvc.ToModelMessages(prior)
	conversation = append(conversation, chatSvc.ToModelMessage(enhancement.Enhanced))

	conversation, err = s.injector.Inject(ctx, conversation, req.SubjectID, ws)
	if err != nil {
		return nil, err
	}

	model := req.Model
	if model == "" {
		model = s.config.DefaultModel
	}

	provider, err := s.providers.ProviderForModel(model)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	// Create the stream record before generation starts; its id is what
	// reconnecting clients use to resume.
	streamRecord := &chatModels.Stream{
		ID:     uuid.NewString(),
		ChatID: chat.ID,
	}
	if err := s.streams.CreateStream(ctx, streamRecord); err != nil {
		return nil, err
	}

	executor := NewStreamExecutor(
		streamRecord.ID,
		chat.ID,
		model,
		provider,
		s.completionHook(chat.ID, enhancement.Original),
		buildCatchupFunc(s.streams, s.messages, s.logger),
		s.logger,
		s.config.Debug,
	)

	// Register IMMEDIATELY so SSE clients can connect while the request
	// is still being prepared
	stream := executor.GetStream()
	s.registry.Register(stream)

	generateReq := &domainllm.GenerateRequest{
		System:   systemPrompt,
		Messages: conversation,
		Model:    model,
	}

	s.logger.Info("stream registered, starting generation",
		"chat_id", chat.ID,
		"stream_id", streamRecord.ID,
		"analysis_type", chat.AnalysisType,
		"model", model,
		"is_first", isFirst,
		"enhanced", enhancement.WasEnhanced,
	)

	// Run generation in the background with a fresh context so a client
	// disconnect cannot cancel persistence
	go func() {
		executor.Start(generateReq)
	}()

	return &ChatResponse{
		Chat:     chat,
		StreamID: streamRecord.ID,
		Stream:   stream,
	}, nil
}

// loadOrCreateChat resolves the chat for this turn. New chats are
// quota-gated for trial organizations before any insert; existing chats
// must belong to the caller's workspace and subject. A creation race on
// the client-supplied id resolves to the surviving row.
func (s *Service) loadOrCreateChat(ctx context.Context, req *ChatRequest, ws models.Workspace) (*chatModels.Chat, error) {
	chat, err := s.chats.GetChat(ctx, req.ChatID)
	if err == nil {
		if verifyErr := s.verifyChatOwnership(chat, req, ws); verifyErr != nil {
			return nil, verifyErr
		}
		return chat, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	// New chat: enforce the trial quota before creating anything
	if ws.IsOrg() {
		if quotaErr := s.quota.CanCreateChat(ctx, *ws.OrgID); quotaErr != nil {
			return nil, quotaErr
		}
	}

	newChat := &chatModels.Chat{
		ID:           req.ChatID,
		SubjectID:    req.SubjectID,
		AnalysisType: req.AnalysisType,
		UserID:       ws.UserID,
		OrgID:        ws.OrgID,
	}

	if createErr := s.chats.CreateChat(ctx, newChat); createErr != nil {
		var conflict *domain.ConflictError
		if errors.As(createErr, &conflict) {
			// Lost a creation race; use the surviving chat
			existing, getErr := s.chats.GetChat(ctx, conflict.ResourceID)
			if getErr != nil {
				return nil, getErr
			}
			if verifyErr := s.verifyChatOwnership(existing, req, ws); verifyErr != nil {
				return nil, verifyErr
			}
			return existing, nil
		}
		return nil, createErr
	}

	return newChat, nil
}

// verifyChatOwnership checks that an existing chat belongs to the
// caller's workspace and the requested subject.
func (s *Service) verifyChatOwnership(chat *chatModels.Chat, req *ChatRequest, ws models.Workspace) error {
	if req.SubjectID != "" && chat.SubjectID != req.SubjectID {
		return fmt.Errorf("chat %s belongs to another subject: %w", chat.ID, domain.ErrForbidden)
	}

	return chatSvc.VerifyOwnership(chat, ws)
}

// completionHook builds the persistence callback for one turn: the
// original (pre-enhancement) user message first, then the assistant
// reply. A replayed completion that finds the user message already
// persisted never writes it twice; an assistant-write failure leaves
// the user row untouched.
func (s *Service) completionHook(chatID string, original *chatModels.Message) CompletionFunc {
	return func(ctx context.Context, assistantText string, metadata *domainllm.StreamMetadata) (string, error) {
		userMsg := *original
		userMsg.ChatID = chatID
		userMsg.Role = chatModels.RoleUser

		if err := s.messages.CreateMessage(ctx, &userMsg); err != nil {
			var conflict *domain.ConflictError
			if !errors.As(err, &conflict) {
				return "", fmt.Errorf("persist user message: %w", err)
			}
			s.logger.Debug("user message already persisted", "message_id", userMsg.ID, "chat_id", chatID)
		}

		if assistantText == "" {
			return "", fmt.Errorf("generation produced no assistant message for chat %s", chatID)
		}

		assistant := &chatModels.Message{
			ID:          uuid.NewString(),
			ChatID:      chatID,
			Role:        chatModels.RoleAssistant,
			Parts:       []chatModels.Part{chatModels.TextPart(assistantText)},
			Attachments: []chatModels.Attachment{},
		}

		if err := s.messages.CreateMessage(ctx, assistant); err != nil {
			return "", fmt.Errorf("persist assistant message: %w", err)
		}

		s.logger.Info("turn persisted",
			"chat_id", chatID,
			"user_message_id", userMsg.ID,
			"assistant_message_id", assistant.ID,
			"output_tokens", metadata.OutputTokens,
		)

		return assistant.ID, nil
	}
}

// ResumeStream resolves the latest stream for a chat the caller owns
// and returns it from the registry. A nil stream with a nil error means
// the live stream is gone; the caller should serve database catchup.
func (s *Service) ResumeStream(ctx context.Context, chatID, userID string, orgID *string) (*chatModels.Stream, *mstream.Stream, error) {
	ws := workspaceFor(userID, orgID)

	chat, err := s.chats.GetChat(ctx, chatID)
	if err != nil {
		return nil, nil, err
	}

	req := &ChatRequest{SubjectID: chat.SubjectID, UserID: userID, OrgID: orgID}
	if err := s.verifyChatOwnership(chat, req, ws); err != nil {
		return nil, nil, err
	}

	record, err := s.streams.GetLatestByChat(ctx, chatID)
	if err != nil {
		return nil, nil, err
	}

	live := s.registry.Get(record.ID)
	return record, live, nil
}

// CatchupEvents replays a finished stream from the database for clients
// whose live stream has already been cleaned up.
func (s *Service) CatchupEvents(streamID, lastEventID string) ([]mstream.Event, error) {
	return buildCatchupFunc(s.streams, s.messages, s.logger)(streamID, lastEventID)
}

func workspaceFor(userID string, orgID *string) models.Workspace {
	if orgID != nil && *orgID != "" {
		return models.OrgWorkspace(userID, *orgID)
	}
	return models.PersonalWorkspace(userID)
}

// Validation

func (s *Service) validateChatRequest(req *ChatRequest) error {
	if err := validation.ValidateStruct(req,
		validation.Field(&req.SubjectID, validation.Required),
		validation.Field(&req.UserID, validation.Required),
		validation.Field(&req.ChatID, validation.Required),
		validation.Field(&req.AnalysisType, validation.Required),
		validation.Field(&req.Message, validation.Required),
	); err != nil {
		return err
	}

	msg := req.Message
	return validation.ValidateStruct(msg,
		validation.Field(&msg.ID, validation.Required),
		validation.Field(&msg.Role,
			validation.Required,
			validation.In(chatModels.RoleUser), // Assistant messages are created internally
		),
		validation.Field(&msg.Parts, validation.Required, validation.Each(validation.By(validatePart))),
	)
}

func validatePart(value interface{}) error {
	part, ok := value.(chatModels.Part)
	if !ok {
		return fmt.Errorf("invalid part type")
	}
	if part.Type != chatModels.PartTypeText {
		return fmt.Errorf("part type must be %q", chatModels.PartTypeText)
	}
	return nil
}
