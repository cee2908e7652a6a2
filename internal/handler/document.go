package handler

import (
	"log/slog"
	"net/http"

	"fundscope/internal/httputil"
	"fundscope/internal/service/subject"
)

// DocumentHandler handles document HTTP requests. Documents are metadata
// plus pre-extracted text; binary upload and extraction happen upstream.
type DocumentHandler struct {
	service *subject.Service
	logger  *slog.Logger
}

// NewDocumentHandler creates a new document handler
func NewDocumentHandler(service *subject.Service, logger *slog.Logger) *DocumentHandler {
	return &DocumentHandler{
		service: service,
		logger:  logger,
	}
}

// CreateDocument attaches a document to a subject
// POST /api/subjects/{subjectId}/documents
func (h *DocumentHandler) CreateDocument(w http.ResponseWriter, r *http.Request) {
	subjectID, ok := PathParam(w, r, "subjectId", "Subject ID")
	if !ok {
		return
	}

	var req subject.CreateDocumentRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	doc, err := h.service.CreateDocument(r.Context(), subjectID, &req, workspaceFrom(r))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, doc)
}

// ListDocuments retrieves a subject's documents in creation order
// GET /api/subjects/{subjectId}/documents
func (h *DocumentHandler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	subjectID, ok := PathParam(w, r, "subjectId", "Subject ID")
	if !ok {
		return
	}

	docs, err := h.service.ListDocuments(r.Context(), subjectID, workspaceFrom(r))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, docs)
}
