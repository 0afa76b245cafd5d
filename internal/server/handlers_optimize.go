package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/jonathan/cv-tailor/internal/pipeline"
	"github.com/jonathan/cv-tailor/internal/session"
)

// optimizeTimeout bounds a background optimization run end to end,
// including the render step.
const optimizeTimeout = 5 * time.Minute

// OptimizeResponse is the immediate reply to an async optimization
// trigger.
type OptimizeResponse struct {
	SessionID string `json:"session_id"`
	Status    string `json:"status"`
}

func (s *Server) runOptions() pipeline.RunOptions {
	return pipeline.RunOptions{
		APIKey:    s.cfg.ResolveAPIKey(),
		Client:    s.client,
		OutputDir: s.cfg.OutputDir,
		MaxTokens: s.cfg.MaxTokens,
	}
}

// handleOptimize triggers an optimization run in the background. Gate
// failures surface immediately; everything past the gates is reported
// through the session's processing errors.
func (s *Server) handleOptimize(w http.ResponseWriter, r *http.Request) {
	rec := s.sessionFromPath(w, r)
	if rec == nil {
		return
	}
	if !rec.Ready() {
		s.errorResponse(w, http.StatusConflict, readinessMessage(rec.View()))
		return
	}
	if !s.markRunning(rec.ID) {
		s.errorResponse(w, http.StatusConflict, "Optimization already in progress")
		return
	}

	go func() {
		defer s.markDone(rec.ID)
		ctx, cancel := context.WithTimeout(context.Background(), optimizeTimeout)
		defer cancel()
		if _, err := pipeline.Run(ctx, rec, s.runOptions()); err != nil {
			log.Printf("Optimization run failed for session %s: %v", rec.ID, err)
			rec.AddProcessingError(err.Error())
		}
	}()

	s.jsonResponse(w, http.StatusAccepted, OptimizeResponse{
		SessionID: rec.ID.String(),
		Status:    "started",
	})
}

// handleOptimizeStream runs an optimization synchronously and streams
// progress via SSE.
func (s *Server) handleOptimizeStream(w http.ResponseWriter, r *http.Request) {
	rec := s.sessionFromPath(w, r)
	if rec == nil {
		return
	}
	if !rec.Ready() {
		s.errorResponse(w, http.StatusConflict, readinessMessage(rec.View()))
		return
	}
	if !s.markRunning(rec.ID) {
		s.errorResponse(w, http.StatusConflict, "Optimization already in progress")
		return
	}
	defer s.markDone(rec.ID)

	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	opts := s.runOptions()
	opts.OnProgress = sse.WriteProgress

	result, err := pipeline.Run(r.Context(), rec, opts)
	if err != nil {
		log.Printf("Optimization run failed for session %s: %v", rec.ID, err)
		sse.WriteError(err.Error())
		return
	}
	sse.WriteComplete(rec.ID.String(), result)
}

// readinessMessage names the first unmet gate in pipeline order.
func readinessMessage(v session.View) string {
	switch {
	case !v.FileUploaded:
		return "Session not ready: no CV uploaded"
	case !v.JobDescriptionAdded:
		return "Session not ready: no sufficient job description provided"
	default:
		return "Session not ready: no template selected"
	}
}

// handleDownloadArtifact serves the optimized CV YAML
func (s *Server) handleDownloadArtifact(w http.ResponseWriter, r *http.Request) {
	rec := s.sessionFromPath(w, r)
	if rec == nil {
		return
	}
	artifact := rec.View().OptimizedArtifact
	if artifact == "" {
		s.errorResponse(w, http.StatusNotFound, "No optimized CV available")
		return
	}
	s.serveFile(w, r, artifact, "text/yaml")
}

// handleDownloadPDF serves the rendered PDF
func (s *Server) handleDownloadPDF(w http.ResponseWriter, r *http.Request) {
	rec := s.sessionFromPath(w, r)
	if rec == nil {
		return
	}
	pdf := rec.View().RenderedPDF
	if pdf == "" {
		s.errorResponse(w, http.StatusNotFound, "No rendered PDF available")
		return
	}
	s.serveFile(w, r, pdf, "application/pdf")
}

// handleGetKeywords returns the keyword side-channel artifact for this
// session.
func (s *Server) handleGetKeywords(w http.ResponseWriter, r *http.Request) {
	rec := s.sessionFromPath(w, r)
	if rec == nil {
		return
	}
	path := rec.View().KeywordsArtifact
	if path == "" {
		s.errorResponse(w, http.StatusNotFound, "No extracted keywords available")
		return
	}
	s.serveFile(w, r, path, "application/json")
}

func (s *Server) serveFile(w http.ResponseWriter, r *http.Request, path, contentType string) {
	if _, err := os.Stat(path); err != nil {
		s.errorResponse(w, http.StatusNotFound, "Artifact file missing from disk")
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", filepath.Base(path)))
	http.ServeFile(w, r, path)
}
