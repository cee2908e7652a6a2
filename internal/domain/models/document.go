package models

import "time"

// Document is an uploaded or linked file attached to a subject. The
// extracted text is produced by an external pipeline and is immutable
// once written; documents with nil text are awaiting extraction.
type Document struct {
	ID            string    `json:"id" db:"id"`
	SubjectID     string    `json:"subject_id" db:"subject_id"`
	Name          string    `json:"name" db:"name"`
	FileType      string    `json:"file_type" db:"file_type"`
	ExtractedText *string   `json:"extracted_text,omitempty" db:"extracted_text"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

// HasText returns true if extraction produced non-empty text.
func (d *Document) HasText() bool {
	return d.ExtractedText != nil && *d.ExtractedText != ""
}
