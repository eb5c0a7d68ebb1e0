package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/jonathan/job-portal/internal/analysis"
	"github.com/jonathan/job-portal/internal/db"
	"github.com/jonathan/job-portal/internal/server/middleware"
	"github.com/jonathan/job-portal/internal/skills"
	"github.com/jonathan/job-portal/internal/types"
)

// ListJobPostingsResponse represents the response for listing job postings
type ListJobPostingsResponse struct {
	Success  bool            `json:"success"`
	Postings []db.JobPosting `json:"jobPostings"`
	Count    int             `json:"count"`
	Limit    int             `json:"limit"`
	Offset   int             `json:"offset"`
}

// JobPostingResponse wraps a single job posting.
type JobPostingResponse struct {
	Success    bool           `json:"success"`
	JobPosting *db.JobPosting `json:"jobPosting"`
}

// parseQueryInt reads a non-negative integer query parameter.
func parseQueryInt(r *http.Request, key string) (int, error) {
	valStr := r.URL.Query().Get(key)
	if valStr == "" {
		return 0, nil
	}
	val, err := strconv.Atoi(valStr)
	if err != nil || val < 0 {
		return 0, &analysis.ValidationError{Field: key, Message: "must be a non-negative integer"}
	}
	return val, nil
}

// pathID parses the {id} path value.
func pathID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		return uuid.Nil, &analysis.ValidationError{Field: "id", Message: "must be a UUID"}
	}
	return id, nil
}

// decodeJSON decodes a JSON request body into dst, rejecting unknown fields.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return &analysis.ValidationError{Message: "invalid JSON body: " + err.Error()}
	}
	return nil
}

// handleListJobPostings lists job postings with an optional skill filter and pagination
func (s *Server) handleListJobPostings(w http.ResponseWriter, r *http.Request) {
	limit, err := parseQueryInt(r, "limit")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	offset, err := parseQueryInt(r, "offset")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	filter := db.JobPostingFilter{Skill: r.URL.Query().Get("skill"), Limit: limit, Offset: offset}.Normalize()
	postings, err := s.store.ListJobPostings(r.Context(), filter)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, ListJobPostingsResponse{
		Success:  true,
		Postings: postings,
		Count:    len(postings),
		Limit:    filter.Limit,
		Offset:   filter.Offset,
	})
}

// handleGetJobPosting retrieves a job posting by its ID
func (s *Server) handleGetJobPosting(w http.ResponseWriter, r *http.Request) {
	posting, err := s.lookupPosting(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, JobPostingResponse{Success: true, JobPosting: posting})
}

// handleCreateJobPosting creates a posting owned by the calling recruiter.
func (s *Server) handleCreateJobPosting(w http.ResponseWriter, r *http.Request) {
	input, err := s.postingInput(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if userID, err := middleware.GetUserID(r); err == nil {
		input.CreatedBy = &userID
	}

	posting, err := s.store.CreateJobPosting(r.Context(), input)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, JobPostingResponse{Success: true, JobPosting: posting})
}

// handleUpdateJobPosting replaces the writable fields of a posting.
func (s *Server) handleUpdateJobPosting(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	input, err := s.postingInput(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	posting, err := s.store.UpdateJobPosting(r.Context(), id, input)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, JobPostingResponse{Success: true, JobPosting: posting})
}

// handleDeleteJobPosting deletes a posting and its applications.
func (s *Server) handleDeleteJobPosting(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.store.DeleteJobPosting(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handlePostingSkillAnalysis compares an uploaded resume with a stored posting.
func (s *Server) handlePostingSkillAnalysis(w http.ResponseWriter, r *http.Request) {
	posting, err := s.lookupPosting(r)
	if err != nil {
		s.failAnalysis(w, r, endpointPostingAnalysis, err)
		return
	}

	upload, err := s.receiveResume(w, r)
	if err != nil {
		s.failAnalysis(w, r, endpointPostingAnalysis, err)
		return
	}
	defer upload.cleanup()

	result, err := s.analysis.AnalyzePosting(r.Context(), upload.doc, posting.Description, posting.Skills)
	if err != nil {
		s.failAnalysis(w, r, endpointPostingAnalysis, err)
		return
	}

	s.metrics.recordAnalysis(endpointPostingAnalysis, nil)
	s.jsonResponse(w, http.StatusOK, result)
}

// lookupPosting loads the posting named by the {id} path value.
func (s *Server) lookupPosting(r *http.Request) (*db.JobPosting, error) {
	id, err := pathID(r)
	if err != nil {
		return nil, err
	}
	posting, err := s.store.GetJobPosting(r.Context(), id)
	if err != nil {
		return nil, err
	}
	if posting == nil {
		return nil, db.ErrNotFound
	}
	return posting, nil
}

// postingInput decodes and validates a posting body. Listed skills are
// normalized; when none are listed they are extracted from the description.
func (s *Server) postingInput(w http.ResponseWriter, r *http.Request) (*db.JobPostingInput, error) {
	var req types.JobPostingRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	listed := skills.NormalizeList(req.Skills)
	if len(listed) == 0 {
		listed = s.analysis.Extractor().Extract(req.Description)
	}
	if len(listed) == 0 {
		return nil, &analysis.NoSkillsFoundError{Document: analysis.DocumentJobDescription}
	}

	return &db.JobPostingInput{
		Title:       req.Title,
		Company:     req.Company,
		Location:    req.Location,
		Description: req.Description,
		Skills:      listed,
	}, nil
}
