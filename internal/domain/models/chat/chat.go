package chat

import "time"

// Chat is one analysis thread of a given analysis type scoped to a
// subject. The id is client-supplied so a retried first request resolves
// to the same row. Normal operation expects one chat per
// (subject, analysis type) pair, but the model does not enforce it.
type Chat struct {
	ID           string    `json:"id" db:"id"`
	SubjectID    string    `json:"subject_id" db:"subject_id"`
	AnalysisType string    `json:"analysis_type" db:"analysis_type"`
	UserID       string    `json:"user_id" db:"user_id"`
	OrgID        *string   `json:"org_id,omitempty" db:"org_id"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
