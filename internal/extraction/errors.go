// Package extraction converts uploaded CV documents into plain text.
package extraction

import "fmt"

// ValidationError represents an upload that fails basic input checks
// (size, name length, empty payload) before any parsing is attempted.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid upload: %s", e.Message)
}

// UnsupportedTypeError represents a declared MIME type outside the
// accepted PDF/Word families. The payload is never sniffed.
type UnsupportedTypeError struct {
	DeclaredType string
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("unsupported file type: %s", e.DeclaredType)
}

// EmptyExtractionError indicates every extraction method ran and none
// produced non-whitespace text.
type EmptyExtractionError struct {
	Format string
}

func (e *EmptyExtractionError) Error() string {
	return fmt.Sprintf("could not extract text from %s: file may be image-based or corrupted", e.Format)
}

// ExtractError wraps an unexpected failure during parsing or temp storage.
type ExtractError struct {
	Message string
	Cause   error
}

func (e *ExtractError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("extraction error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("extraction error: %s", e.Message)
}

func (e *ExtractError) Unwrap() error {
	return e.Cause
}
