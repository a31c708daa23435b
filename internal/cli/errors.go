package cli

// CLI error codes. Score and layout failures use the codes of the
// scorefile and layout packages instead.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeNotFound    = "E005" // Score file not found or unreadable
	ErrCodeWriteFailed = "E007" // Output file write error
	ErrCodeJournal     = "E008" // Journal could not be opened or read
	ErrCodeCancelled   = "E009" // Interrupted before a result arrived
)
