package handler

import (
	"errors"
	"fmt"
	"net/http"

	"fundscope/internal/domain"
	"fundscope/internal/httputil"
)

// handleError converts domain errors to HTTP responses
func handleError(w http.ResponseWriter, err error) {
	var conflictErr *domain.ConflictError
	var quotaErr *domain.QuotaError
	var httpErr domain.HTTPError

	switch {
	case errors.Is(err, domain.ErrValidation):
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		httputil.RespondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		httputil.RespondError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		httputil.RespondError(w, http.StatusForbidden, err.Error())
	case errors.As(err, &quotaErr):
		// 402 carries a stable error_code so clients can show the upgrade
		// prompt without parsing the detail string
		httputil.RespondErrorWithExtras(w, http.StatusPaymentRequired, quotaErr.Error(),
			map[string]interface{}{"error_code": quotaErr.Code})
	case errors.As(err, &conflictErr):
		httputil.RespondError(w, http.StatusConflict, conflictErr.Error())
	case errors.As(err, &httpErr):
		httputil.RespondError(w, httpErr.StatusCode(), httpErr.Error())
	default:
		httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
	}
}

// PathParam extracts a path value from the Go 1.22 mux and writes a 400
// if it is missing. Returns the value and whether it was present.
func PathParam(w http.ResponseWriter, r *http.Request, name, label string) (string, bool) {
	value := r.PathValue(name)
	if value == "" {
		httputil.RespondError(w, http.StatusBadRequest, fmt.Sprintf("%s is required", label))
		return "", false
	}
	return value, true
}
