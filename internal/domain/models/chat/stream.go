package chat

import "time"

// Stream correlates a generation run with its chat. The id is what a
// dropped client presents to resume an in-flight generation; rows are
// insert-only and never deleted.
type Stream struct {
	ID        string    `json:"id" db:"id"`
	ChatID    string    `json:"chat_id" db:"chat_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
