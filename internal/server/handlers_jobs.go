package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/cv-tailor/internal/jobs"
)

var validate = validator.New()

// JobSearchRequest is the body for a multi-board job search.
type JobSearchRequest struct {
	Preferences jobs.Preferences `json:"preferences"`
	MaxResults  int              `json:"max_results,omitempty" validate:"gte=0,lte=500"`
}

// JobSearchResponse carries ranked search results.
type JobSearchResponse struct {
	Listings []jobs.Listing `json:"listings"`
	Count    int            `json:"count"`
}

// JobApplyRequest is the body for batch application submission.
type JobApplyRequest struct {
	Listings    []jobs.Listing   `json:"listings" validate:"min=1,max=100"`
	Preferences jobs.Preferences `json:"preferences"`
	CVContent   string           `json:"cv_content"`
	Profile     jobs.UserProfile `json:"profile"`
}

// JobApplyResponse reports the applications actually submitted.
type JobApplyResponse struct {
	Applications []jobs.Application `json:"applications"`
	Count        int                `json:"count"`
}

// ApplicationUpdateRequest updates one tracked application's status.
type ApplicationUpdateRequest struct {
	Status jobs.Status `json:"status" validate:"required,oneof=pending applied viewed interview rejected offer withdrawn"`
	Note   string      `json:"note,omitempty"`
}

const defaultSearchResults = 50

// handleJobSearch fans a search out across the configured boards and
// returns listings ranked by match score.
func (s *Server) handleJobSearch(w http.ResponseWriter, r *http.Request) {
	var req JobSearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := validate.Struct(req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}
	if len(req.Preferences.TargetRoles) == 0 {
		s.errorResponse(w, http.StatusBadRequest, "At least one target role is required")
		return
	}
	if req.MaxResults == 0 {
		req.MaxResults = defaultSearchResults
	}

	listings, err := s.jobEngine.Search(r.Context(), req.Preferences, req.MaxResults)
	if err != nil {
		s.errorResponse(w, http.StatusBadGateway, "Job search failed: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, JobSearchResponse{
		Listings: listings,
		Count:    len(listings),
	})
}

// handleJobApply submits applications for the given listings, honoring
// the daily cap, and records them in the tracker.
func (s *Server) handleJobApply(w http.ResponseWriter, r *http.Request) {
	var req JobApplyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := validate.Struct(req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	applications, err := s.jobEngine.Apply(r.Context(), req.Listings, req.Preferences, req.CVContent, req.Profile)
	if err != nil {
		s.errorResponse(w, http.StatusBadGateway, "Application submission failed: "+err.Error())
		return
	}

	for _, app := range applications {
		s.tracker.Add(app)
	}

	s.jsonResponse(w, http.StatusOK, JobApplyResponse{
		Applications: applications,
		Count:        len(applications),
	})
}

// handleListApplications returns tracked applications, optionally
// filtered by status and recency.
func (s *Server) handleListApplications(w http.ResponseWriter, r *http.Request) {
	var filter jobs.Filter
	if status := r.URL.Query().Get("status"); status != "" {
		filter.Status = jobs.Status(status)
	}
	if daysStr := r.URL.Query().Get("days"); daysStr != "" {
		days, err := strconv.Atoi(daysStr)
		if err != nil || days < 0 {
			s.errorResponse(w, http.StatusBadRequest, "Invalid days parameter")
			return
		}
		filter.Days = days
	}

	applications := s.tracker.Applications(filter)
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"applications": applications,
		"count":        len(applications),
	})
}

// handleUpdateApplication updates the status of one application
func (s *Server) handleUpdateApplication(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req ApplicationUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := validate.Struct(req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	if err := s.tracker.UpdateStatus(id, req.Status, req.Note); err != nil {
		s.domainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleJobAnalytics returns aggregate application statistics
func (s *Server) handleJobAnalytics(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, s.tracker.Analytics())
}
