package server

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/cv-tailor/internal/extraction"
	"github.com/jonathan/cv-tailor/internal/keywords"
	"github.com/jonathan/cv-tailor/internal/pipeline"
	"github.com/jonathan/cv-tailor/internal/session"
	"github.com/jonathan/cv-tailor/internal/templates"
)

// SessionResponse is the JSON snapshot of one tailoring session.
type SessionResponse struct {
	SessionID        string   `json:"session_id"`
	State            string   `json:"state"`
	CVUploaded       bool     `json:"cv_uploaded"`
	CVFilename       string   `json:"cv_filename,omitempty"`
	JDAdded          bool     `json:"job_description_added"`
	JDStatus         string   `json:"job_description_status"`
	WordCount        int      `json:"word_count"`
	TemplateSelected bool     `json:"template_selected"`
	Template         string   `json:"template"`
	Ready            bool     `json:"ready"`
	Optimized        bool     `json:"optimization_complete"`
	Artifact         string   `json:"artifact,omitempty"`
	PDF              string   `json:"pdf,omitempty"`
	ProcessingErrors []string `json:"processing_errors,omitempty"`
	CreatedAt        string   `json:"created_at"`
	UpdatedAt        string   `json:"updated_at"`
}

// JobDescriptionRequest is the body for setting a session's job
// description.
type JobDescriptionRequest struct {
	Text string `json:"text"`
}

// JobDescriptionResponse reports the gate outcome of a job description
// update.
type JobDescriptionResponse struct {
	Status    string `json:"status"`
	WordCount int    `json:"word_count"`
	Accepted  bool   `json:"accepted"`
}

// TemplateRequest is the body for selecting a template.
type TemplateRequest struct {
	Template string `json:"template"`
}

// TemplateInfo describes one available template.
type TemplateInfo struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Description string `json:"description"`
	HeaderStyle string `json:"header_style"`
}

func (s *Server) sessionResponse(rec *session.Record) SessionResponse {
	v := rec.View()
	state := pipeline.CurrentState(v)
	if s.isRunning(v.ID) {
		state = pipeline.StateOptimizing
	}
	return SessionResponse{
		SessionID:        v.ID.String(),
		State:            string(state),
		CVUploaded:       v.FileUploaded,
		CVFilename:       v.CVFilename,
		JDAdded:          v.JobDescriptionAdded,
		JDStatus:         string(v.JobDescriptionStatus()),
		WordCount:        v.WordCount,
		TemplateSelected: v.TemplateSelected,
		Template:         string(v.SelectedTemplate),
		Ready:            v.Ready(),
		Optimized:        v.OptimizationComplete,
		Artifact:         baseName(v.OptimizedArtifact),
		PDF:              baseName(v.RenderedPDF),
		ProcessingErrors: v.ProcessingErrors,
		CreatedAt:        v.CreatedAt.Format(time.RFC3339),
		UpdatedAt:        v.UpdatedAt.Format(time.RFC3339),
	}
}

func baseName(path string) string {
	if path == "" {
		return ""
	}
	return filepath.Base(path)
}

// sessionFromPath resolves the {id} path segment into a session record,
// writing the error response itself on failure.
func (s *Server) sessionFromPath(w http.ResponseWriter, r *http.Request) *session.Record {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid session ID format")
		return nil
	}
	rec, err := s.sessions.Get(id)
	if err != nil {
		s.domainError(w, err)
		return nil
	}
	return rec
}

// handleCreateSession starts a new tailoring session
func (s *Server) handleCreateSession(w http.ResponseWriter, _ *http.Request) {
	rec := s.sessions.Create()
	s.jsonResponse(w, http.StatusCreated, s.sessionResponse(rec))
}

// handleGetSession returns the current session snapshot
func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	rec := s.sessionFromPath(w, r)
	if rec == nil {
		return
	}
	s.jsonResponse(w, http.StatusOK, s.sessionResponse(rec))
}

// handleDeleteSession removes a session
func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid session ID format")
		return
	}
	s.sessions.Delete(id)
	w.WriteHeader(http.StatusNoContent)
}

// handleResetSession clears all session inputs and outputs
func (s *Server) handleResetSession(w http.ResponseWriter, r *http.Request) {
	rec := s.sessionFromPath(w, r)
	if rec == nil {
		return
	}
	if s.isRunning(rec.ID) {
		s.errorResponse(w, http.StatusConflict, "Optimization in progress")
		return
	}
	rec.Reset()
	s.jsonResponse(w, http.StatusOK, s.sessionResponse(rec))
}

// handleUploadCV accepts a multipart CV upload, extracts its text, and
// arms the upload gate.
func (s *Server) handleUploadCV(w http.ResponseWriter, r *http.Request) {
	rec := s.sessionFromPath(w, r)
	if rec == nil {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, extraction.MaxUploadBytes+4096)
	if err := r.ParseMultipartForm(extraction.MaxUploadBytes); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid multipart request: "+err.Error())
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Missing file field")
		return
	}
	defer file.Close()

	declaredType := header.Header.Get("Content-Type")
	if err := extraction.ValidateUpload(header.Filename, declaredType, header.Size); err != nil {
		s.domainError(w, err)
		return
	}

	payload, err := io.ReadAll(file)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Failed to read upload: "+err.Error())
		return
	}

	text, err := extraction.Extract(header.Filename, declaredType, payload)
	if err != nil {
		s.domainError(w, err)
		return
	}

	rec.SetCV(header.Filename, text)
	s.jsonResponse(w, http.StatusOK, s.sessionResponse(rec))
}

// handleClearCV drops the uploaded CV and disarms its gate
func (s *Server) handleClearCV(w http.ResponseWriter, r *http.Request) {
	rec := s.sessionFromPath(w, r)
	if rec == nil {
		return
	}
	rec.ClearCV()
	s.jsonResponse(w, http.StatusOK, s.sessionResponse(rec))
}

// handleSetJobDescription updates the job description. When the text
// reaches the sufficient band, keyword extraction kicks off in the
// background as a side channel; its failure never blocks the update.
func (s *Server) handleSetJobDescription(w http.ResponseWriter, r *http.Request) {
	rec := s.sessionFromPath(w, r)
	if rec == nil {
		return
	}

	var req JobDescriptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	status := rec.SetJobDescription(req.Text)
	v := rec.View()

	if status == session.JDSufficient && s.client != nil {
		jd := v.JobDescription
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
			defer cancel()
			extractor := keywords.NewExtractor(s.client, s.cfg.OutputDir).
				WithFilename(keywords.SessionArtifactName(v.ID.String()))
			path, err := extractor.Extract(ctx, jd)
			if err != nil {
				log.Printf("Keyword extraction failed: %v", err)
				return
			}
			rec.SetKeywordsArtifact(path)
		}()
	}

	s.jsonResponse(w, http.StatusOK, JobDescriptionResponse{
		Status:    string(status),
		WordCount: v.WordCount,
		Accepted:  v.JobDescriptionAdded,
	})
}

// handleSelectTemplate validates and loads the requested template
func (s *Server) handleSelectTemplate(w http.ResponseWriter, r *http.Request) {
	rec := s.sessionFromPath(w, r)
	if rec == nil {
		return
	}

	var req TemplateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	name := templates.Name(req.Template)
	if !templates.Valid(name) {
		s.errorResponse(w, http.StatusBadRequest, "Unknown template: "+req.Template)
		return
	}
	if err := rec.SelectTemplate(name); err != nil {
		s.domainError(w, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, s.sessionResponse(rec))
}

// handleListTemplates returns the available template catalog
func (s *Server) handleListTemplates(w http.ResponseWriter, _ *http.Request) {
	infos := make([]TemplateInfo, 0, len(templates.All()))
	for _, name := range templates.All() {
		cfg, err := templates.Load(name)
		if err != nil {
			log.Printf("Failed to load template %s: %v", name, err)
			continue
		}
		infos = append(infos, TemplateInfo{
			Name:        string(cfg.Name),
			DisplayName: cfg.DisplayName,
			Description: cfg.Description,
			HeaderStyle: cfg.Design.HeaderStyle,
		})
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"templates": infos})
}
