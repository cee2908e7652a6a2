package handler

import (
	"log/slog"
	"net/http"

	"fundscope/internal/httputil"
	"fundscope/internal/service/subject"
)

// SubjectHandler handles subject HTTP requests
type SubjectHandler struct {
	service *subject.Service
	logger  *slog.Logger
}

// NewSubjectHandler creates a new subject handler
func NewSubjectHandler(service *subject.Service, logger *slog.Logger) *SubjectHandler {
	return &SubjectHandler{
		service: service,
		logger:  logger,
	}
}

// CreateSubject creates a new subject
// POST /api/subjects
func (h *SubjectHandler) CreateSubject(w http.ResponseWriter, r *http.Request) {
	var req subject.CreateSubjectRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	created, err := h.service.CreateSubject(r.Context(), &req, workspaceFrom(r))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, created)
}

// ListSubjects retrieves all subjects in the caller's workspace
// GET /api/subjects
func (h *SubjectHandler) ListSubjects(w http.ResponseWriter, r *http.Request) {
	subjects, err := h.service.ListSubjects(r.Context(), workspaceFrom(r))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, subjects)
}

// GetSubject retrieves a single subject by ID
// GET /api/subjects/{subjectId}
func (h *SubjectHandler) GetSubject(w http.ResponseWriter, r *http.Request) {
	subjectID, ok := PathParam(w, r, "subjectId", "Subject ID")
	if !ok {
		return
	}

	found, err := h.service.GetSubject(r.Context(), subjectID, workspaceFrom(r))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, found)
}

// updateSubjectBody uses OptionalString for context so PATCH can
// distinguish "leave unchanged" from "clear" (RFC 7396 semantics).
type updateSubjectBody struct {
	Name    *string                 `json:"name"`
	Context httputil.OptionalString `json:"context"`
}

// UpdateSubject applies a partial update to a subject
// PATCH /api/subjects/{subjectId}
func (h *SubjectHandler) UpdateSubject(w http.ResponseWriter, r *http.Request) {
	subjectID, ok := PathParam(w, r, "subjectId", "Subject ID")
	if !ok {
		return
	}

	var body updateSubjectBody
	if err := httputil.ParseJSON(w, r, &body); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req := &subject.UpdateSubjectRequest{
		Name: body.Name,
		Context: subject.OptionalContext{
			Present: body.Context.Present,
			Value:   body.Context.Value,
		},
	}

	updated, err := h.service.UpdateSubject(r.Context(), subjectID, req, workspaceFrom(r))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, updated)
}

// ArchiveSubject soft-deletes a subject
// POST /api/subjects/{subjectId}/archive
func (h *SubjectHandler) ArchiveSubject(w http.ResponseWriter, r *http.Request) {
	subjectID, ok := PathParam(w, r, "subjectId", "Subject ID")
	if !ok {
		return
	}

	if err := h.service.ArchiveSubject(r.Context(), subjectID, workspaceFrom(r)); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
