package models

import "time"

// Organization plan values
const (
	PlanTrial = "trial"
	PlanPaid  = "paid"
)

// Organization is a paying (or trialing) tenant. Trial organizations are
// limited to TrialChatLimit analysis chats before requiring an upgrade.
type Organization struct {
	ID             string    `json:"id" db:"id"`
	Name           string    `json:"name" db:"name"`
	Plan           string    `json:"plan" db:"plan"`
	TrialChatLimit int       `json:"trial_chat_limit" db:"trial_chat_limit"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}
