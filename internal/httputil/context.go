package httputil

import (
	"context"
	"net/http"
)

// Context key type to avoid collisions
type contextKey string

const (
	userIDKey contextKey = "userID"
	orgIDKey  contextKey = "orgID"
)

// WithIdentity adds the authenticated user ID and optional org ID to the
// request context. orgID is empty for personal-workspace requests.
func WithIdentity(r *http.Request, userID, orgID string) *http.Request {
	ctx := context.WithValue(r.Context(), userIDKey, userID)
	if orgID != "" {
		ctx = context.WithValue(ctx, orgIDKey, orgID)
	}
	return r.WithContext(ctx)
}

// GetUserID retrieves userID from context, returns empty string if not found
func GetUserID(r *http.Request) string {
	userID, _ := r.Context().Value(userIDKey).(string)
	return userID
}

// GetOrgID retrieves the org ID from context. Empty string means the
// request runs in the user's personal workspace.
func GetOrgID(r *http.Request) string {
	orgID, _ := r.Context().Value(orgIDKey).(string)
	return orgID
}
