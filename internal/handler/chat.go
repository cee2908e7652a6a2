package handler

import (
	"log/slog"
	"net/http"

	mstream "github.com/haowjy/meridian-stream-go"

	"fundscope/internal/domain/models"
	chatModels "fundscope/internal/domain/models/chat"
	"fundscope/internal/handler/sse"
	"fundscope/internal/httputil"
	chatSvc "fundscope/internal/service/chat"
	"fundscope/internal/service/chat/streaming"
)

// ChatHandler handles chat HTTP requests
// Follows Clean Architecture: handlers only communicate with services, never repositories
type ChatHandler struct {
	streaming *streaming.Service
	queries   *chatSvc.QueryService
	registry  *mstream.Registry
	sseConfig *sse.Config
	logger    *slog.Logger
}

// NewChatHandler creates a new chat handler
func NewChatHandler(
	streamingService *streaming.Service,
	queries *chatSvc.QueryService,
	registry *mstream.Registry,
	sseConfig *sse.Config,
	logger *slog.Logger,
) *ChatHandler {
	return &ChatHandler{
		streaming: streamingService,
		queries:   queries,
		registry:  registry,
		sseConfig: sseConfig,
		logger:    logger,
	}
}

// chatRequestBody is the JSON body for POST /api/subjects/{subjectId}/chat.
// The chat id is client-supplied so retries and multi-tab sessions
// converge on the same chat. selected_chat_model is the analysis-type
// selector; which LLM serves it is a server-side concern.
type chatRequestBody struct {
	ID                string              `json:"id"`
	Message           *chatModels.Message `json:"message"`
	SelectedChatModel string              `json:"selected_chat_model"`
}

// StreamChat starts one analysis turn and streams the response
// POST /api/subjects/{subjectId}/chat
//
// The response IS the SSE stream: the caller becomes the stream's first
// subscriber. Reconnecting clients use GET /api/chats/{chatId}/stream.
func (h *ChatHandler) StreamChat(w http.ResponseWriter, r *http.Request) {
	subjectID, ok := PathParam(w, r, "subjectId", "Subject ID")
	if !ok {
		return
	}

	var body chatRequestBody
	if err := httputil.ParseJSON(w, r, &body); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	userID := httputil.GetUserID(r)
	var orgID *string
	if org := httputil.GetOrgID(r); org != "" {
		orgID = &org
	}

	req := &streaming.ChatRequest{
		SubjectID:    subjectID,
		UserID:       userID,
		OrgID:        orgID,
		ChatID:       body.ID,
		AnalysisType: body.SelectedChatModel,
		Message:      body.Message,
	}

	resp, err := h.streaming.StreamChat(r.Context(), req)
	if err != nil {
		// Setup failures happen before any SSE bytes are written, so they
		// map to plain HTTP errors (400/402/403/404)
		handleError(w, err)
		return
	}

	NewSSEHandler(h.registry, h.logger, h.sseConfig).
		RelayStream(w, r, resp.Stream, resp.StreamID)
}

// ResumeStream reattaches a client to a chat's latest stream
// GET /api/chats/{chatId}/stream
//
// If the live stream is still registered the client gets catchup plus
// live events; otherwise the finished turn is replayed from the database
// as a synthetic event sequence and the connection closes.
func (h *ChatHandler) ResumeStream(w http.ResponseWriter, r *http.Request) {
	chatID, ok := PathParam(w, r, "chatId", "Chat ID")
	if !ok {
		return
	}

	userID := httputil.GetUserID(r)
	var orgID *string
	if org := httputil.GetOrgID(r); org != "" {
		orgID = &org
	}

	record, live, err := h.streaming.ResumeStream(r.Context(), chatID, userID, orgID)
	if err != nil {
		handleError(w, err)
		return
	}

	sseHandler := NewSSEHandler(h.registry, h.logger, h.sseConfig)

	if live != nil {
		h.logger.Info("resuming live stream", "chat_id", chatID, "stream_id", record.ID)
		sseHandler.RelayStream(w, r, live, record.ID)
		return
	}

	// Live stream already cleaned up; replay from the database
	events, err := h.streaming.CatchupEvents(record.ID, r.Header.Get("Last-Event-ID"))
	if err != nil {
		h.logger.Error("catchup replay failed", "chat_id", chatID, "stream_id", record.ID, "error", err)
		sseHandler.ServeError(w, chatID, "failed to replay stream history")
		return
	}

	h.logger.Info("replaying finished stream", "chat_id", chatID, "stream_id", record.ID, "events", len(events))
	sseHandler.ServeEvents(w, events)
}

// InterruptChat cancels a chat's in-flight stream
// POST /api/chats/{chatId}/interrupt
func (h *ChatHandler) InterruptChat(w http.ResponseWriter, r *http.Request) {
	chatID, ok := PathParam(w, r, "chatId", "Chat ID")
	if !ok {
		return
	}

	userID := httputil.GetUserID(r)
	var orgID *string
	if org := httputil.GetOrgID(r); org != "" {
		orgID = &org
	}

	// ResumeStream doubles as the ownership check and latest-stream lookup
	record, live, err := h.streaming.ResumeStream(r.Context(), chatID, userID, orgID)
	if err != nil {
		handleError(w, err)
		return
	}

	if live == nil {
		httputil.RespondError(w, http.StatusNotFound, "Chat is not currently streaming")
		return
	}

	// Cancel the stream (the executor emits the terminal event)
	live.Cancel()

	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"chat_id":   chatID,
		"stream_id": record.ID,
		"status":    "cancelled",
	})
}

// ListChats retrieves all chats for a subject
// GET /api/subjects/{subjectId}/chats
func (h *ChatHandler) ListChats(w http.ResponseWriter, r *http.Request) {
	subjectID, ok := PathParam(w, r, "subjectId", "Subject ID")
	if !ok {
		return
	}

	chats, err := h.queries.ListChats(r.Context(), subjectID, workspaceFrom(r))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, chats)
}

// ListMessages retrieves a chat's messages, oldest first
// GET /api/chats/{chatId}/messages
func (h *ChatHandler) ListMessages(w http.ResponseWriter, r *http.Request) {
	chatID, ok := PathParam(w, r, "chatId", "Chat ID")
	if !ok {
		return
	}

	messages, err := h.queries.ListMessages(r.Context(), chatID, workspaceFrom(r))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, messages)
}

// GetChat retrieves a single chat by ID
// GET /api/chats/{chatId}
func (h *ChatHandler) GetChat(w http.ResponseWriter, r *http.Request) {
	chatID, ok := PathParam(w, r, "chatId", "Chat ID")
	if !ok {
		return
	}

	chat, err := h.queries.GetChat(r.Context(), chatID, workspaceFrom(r))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, chat)
}

// workspaceFrom derives the tenancy scope from the authenticated request.
func workspaceFrom(r *http.Request) models.Workspace {
	userID := httputil.GetUserID(r)
	if orgID := httputil.GetOrgID(r); orgID != "" {
		return models.OrgWorkspace(userID, orgID)
	}
	return models.PersonalWorkspace(userID)
}
