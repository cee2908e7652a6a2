package config

const (
	// MaxSubjectNameLength is the maximum length for subject names.
	// Limited to 255 to fit in PostgreSQL VARCHAR(255) and provide
	// reasonable UX (names should be short and descriptive).
	MaxSubjectNameLength = 255

	// MaxDocumentNameLength is the maximum length for document names.
	// Same as subject names for consistency.
	MaxDocumentNameLength = 255

	// MaxSubjectContextLength caps the free-form context blurb attached
	// to a subject. It is injected into prompts, so it stays bounded.
	MaxSubjectContextLength = 10000

	// MaxLogFiles is how many timestamped log files SetupLogFile keeps
	// before pruning the oldest.
	MaxLogFiles = 5
)
