package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/jonathan/cv-tailor/internal/pipeline"
)

// SSEWriter helps write Server-Sent Events
type SSEWriter struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

// NewSSEWriter creates a new SSE writer
func NewSSEWriter(w http.ResponseWriter) (*SSEWriter, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("streaming not supported")
	}

	// Set SSE headers
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	return &SSEWriter{w: w, flusher: flusher}, nil
}

// WriteEvent sends an SSE event
func (s *SSEWriter) WriteEvent(event string, data any) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return err
	}

	if _, err := fmt.Fprintf(s.w, "event: %s\n", event); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(s.w, "data: %s\n\n", jsonData); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}

// WriteProgress sends a pipeline progress event
func (s *SSEWriter) WriteProgress(event pipeline.ProgressEvent) {
	s.WriteEvent("progress", event) //nolint:errcheck
}

// WriteError sends an error event
func (s *SSEWriter) WriteError(message string) {
	s.WriteEvent("error", map[string]string{"error": message}) //nolint:errcheck
}

// WriteComplete sends a completion event with the run outcome
func (s *SSEWriter) WriteComplete(sessionID string, result *pipeline.RunResult) {
	s.WriteEvent("complete", map[string]any{ //nolint:errcheck
		"session_id":         sessionID,
		"state":              result.State,
		"artifact":           result.ArtifactPath,
		"pdf":                result.PDFPath,
		"renderer_available": result.RendererAvailable,
		"message":            result.Message,
	})
}
