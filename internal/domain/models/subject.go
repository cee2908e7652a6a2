package models

import "time"

// Subject is a unit of analysis: a nonprofit, grantee, or proposal under
// evaluation. It owns the documents and chats recorded against it.
// Ownership (personal vs organization) is fixed at creation.
type Subject struct {
	ID        string    `json:"id" db:"id"`
	UserID    string    `json:"user_id" db:"user_id"`
	OrgID     *string   `json:"org_id,omitempty" db:"org_id"`
	Name      string    `json:"name" db:"name"`
	Context   *string   `json:"context,omitempty" db:"context"`
	Archived  bool      `json:"archived" db:"archived"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// HasContext returns true if the subject carries non-empty free-form context.
func (s *Subject) HasContext() bool {
	return s.Context != nil && *s.Context != ""
}
