package server

import (
	"net/http"

	"github.com/jonathan/job-portal/internal/db"
	"github.com/jonathan/job-portal/internal/types"
)

// ApplicationResponse wraps a single application.
type ApplicationResponse struct {
	Success     bool            `json:"success"`
	Application *db.Application `json:"application"`
}

// ListApplicationsResponse lists a posting's applications, best match first.
type ListApplicationsResponse struct {
	Success      bool             `json:"success"`
	Applications []db.Application `json:"applications"`
	Count        int              `json:"count"`
}

// handleCreateApplication scores an applicant's resume against a posting and
// stores the application. Form fields: resume (PDF), applicantName, applicantEmail.
func (s *Server) handleCreateApplication(w http.ResponseWriter, r *http.Request) {
	posting, err := s.lookupPosting(r)
	if err != nil {
		s.failAnalysis(w, r, endpointApplication, err)
		return
	}

	upload, err := s.receiveResume(w, r)
	if err != nil {
		s.failAnalysis(w, r, endpointApplication, err)
		return
	}
	defer upload.cleanup()

	req := types.CreateApplicationRequest{
		ApplicantName:  r.FormValue("applicantName"),
		ApplicantEmail: r.FormValue("applicantEmail"),
	}
	if err := req.Validate(); err != nil {
		s.failAnalysis(w, r, endpointApplication, err)
		return
	}

	score, err := s.analysis.ScoreApplication(r.Context(), upload.doc, posting.Skills)
	if err != nil {
		s.failAnalysis(w, r, endpointApplication, err)
		return
	}
	s.metrics.recordAnalysis(endpointApplication, nil)

	app, err := s.store.CreateApplication(r.Context(), &db.ApplicationInput{
		JobPostingID:   posting.ID,
		ApplicantName:  req.ApplicantName,
		ApplicantEmail: req.ApplicantEmail,
		ResumeSkills:   score.ResumeSkills,
		MatchedSkills:  score.Match.Matched,
		MissingSkills:  score.Match.Missing,
		MatchScore:     score.Match.Score,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.requestLogger(r).Info("application received",
		"application_id", app.ID,
		"job_posting_id", posting.ID,
		"match_score", app.MatchScore,
	)
	s.jsonResponse(w, http.StatusCreated, ApplicationResponse{Success: true, Application: app})
}

// handleListApplications lists the applications of a posting by match score.
func (s *Server) handleListApplications(w http.ResponseWriter, r *http.Request) {
	posting, err := s.lookupPosting(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	apps, err := s.store.ListApplications(r.Context(), posting.ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, ListApplicationsResponse{Success: true, Applications: apps, Count: len(apps)})
}

// handleGetApplication retrieves an application by its ID.
func (s *Server) handleGetApplication(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	app, err := s.store.GetApplication(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if app == nil {
		s.writeError(w, r, db.ErrNotFound)
		return
	}
	s.jsonResponse(w, http.StatusOK, ApplicationResponse{Success: true, Application: app})
}

// handleUpdateApplicationStatus moves an application along the hiring workflow.
func (s *Server) handleUpdateApplicationStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var req types.UpdateStatusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		s.writeError(w, r, err)
		return
	}

	app, err := s.store.UpdateApplicationStatus(r.Context(), id, req.Status)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, ApplicationResponse{Success: true, Application: app})
}
