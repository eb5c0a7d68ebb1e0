package server

import (
	"net/http"
)

// Analysis endpoints, used as the skill_analyses_total endpoint label.
const (
	endpointSkillAnalysis   = "skill_analysis"
	endpointMatchJobs       = "match_resume_jobs"
	endpointPostingAnalysis = "posting_skill_analysis"
	endpointApplication     = "application"
)

// handleSkillAnalysis compares an uploaded resume with a job description.
// Form fields: resume (PDF), jobDescription.
func (s *Server) handleSkillAnalysis(w http.ResponseWriter, r *http.Request) {
	upload, err := s.receiveResume(w, r)
	if err != nil {
		s.failAnalysis(w, r, endpointSkillAnalysis, err)
		return
	}
	defer upload.cleanup()

	result, err := s.analysis.AnalyzeSkills(r.Context(), upload.doc, r.FormValue("jobDescription"))
	if err != nil {
		s.failAnalysis(w, r, endpointSkillAnalysis, err)
		return
	}

	s.metrics.recordAnalysis(endpointSkillAnalysis, nil)
	s.jsonResponse(w, http.StatusOK, result)
}

// handleMatchResumeJobs scores an uploaded resume against a list of jobs.
// Form fields: resume (PDF), jobs (JSON array of objects with a skills list).
func (s *Server) handleMatchResumeJobs(w http.ResponseWriter, r *http.Request) {
	upload, err := s.receiveResume(w, r)
	if err != nil {
		s.failAnalysis(w, r, endpointMatchJobs, err)
		return
	}
	defer upload.cleanup()

	result, err := s.analysis.MatchResumeToJobs(r.Context(), upload.doc, r.FormValue("jobs"))
	if err != nil {
		s.failAnalysis(w, r, endpointMatchJobs, err)
		return
	}

	s.metrics.recordAnalysis(endpointMatchJobs, nil)
	s.jsonResponse(w, http.StatusOK, result)
}

func (s *Server) failAnalysis(w http.ResponseWriter, r *http.Request, endpoint string, err error) {
	s.metrics.recordAnalysis(endpoint, err)
	s.writeError(w, r, err)
}
