// Package rendering wraps the rendercv CLI tool: availability probing,
// invocation, and locating the PDF it produces.
package rendering

import "fmt"

// ToolMissingError indicates rendercv is not installed or not on PATH.
// Callers treat this as a degraded-success condition, not a failure.
type ToolMissingError struct {
	Cause error
}

func (e *ToolMissingError) Error() string {
	return "rendercv CLI tool not found. Install it with: pip install rendercv"
}

func (e *ToolMissingError) Unwrap() error {
	return e.Cause
}

// RenderError wraps a rendercv invocation that started but did not
// complete cleanly.
type RenderError struct {
	Message string
	Output  string
	Cause   error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("failed to generate PDF: %s", e.Message)
}

func (e *RenderError) Unwrap() error {
	return e.Cause
}

// PDFNotFoundError indicates rendercv exited successfully but no PDF could
// be located in any of the known output locations.
type PDFNotFoundError struct {
	OutputDir string
}

func (e *PDFNotFoundError) Error() string {
	return fmt.Sprintf("PDF was not generated; no files found under %s or alternative locations", e.OutputDir)
}
