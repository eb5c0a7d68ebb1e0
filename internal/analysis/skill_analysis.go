package analysis

import (
	"context"
	"strings"
	"time"

	"github.com/jonathan/job-portal/internal/recommend"
	"github.com/jonathan/job-portal/internal/skills"
)

// SkillAnalysis is the result of comparing one resume with one job description.
type SkillAnalysis struct {
	Success            bool               `json:"success"`
	JobFitScore        int                `json:"jobFitScore"`
	ResumeSkills       []string           `json:"resumeSkills"`
	JobSkills          []string           `json:"jobSkills"`
	MatchedSkills      []string           `json:"matchedSkills"`
	MissingSkills      []string           `json:"missingSkills"`
	ExtraSkills        []string           `json:"extraSkills"`
	RecommendedCourses []recommend.Course `json:"recommendedCourses"`
	AnalysisDate       string             `json:"analysisDate"`
}

// AnalyzeSkills extracts skills from the resume and the job description, matches
// them by exact canonical name and recommends courses for what is missing.
func (s *Service) AnalyzeSkills(ctx context.Context, doc Document, jobDescription string) (*SkillAnalysis, error) {
	if strings.TrimSpace(jobDescription) == "" {
		return nil, &ValidationError{Field: "jobDescription", Message: "job description is required"}
	}

	resumeSkills, err := s.ResumeSkills(doc)
	if err != nil {
		return nil, err
	}
	return s.analyze(ctx, resumeSkills, jobDescription)
}

// AnalyzeText is AnalyzeSkills for a resume that is already plain text.
func (s *Service) AnalyzeText(ctx context.Context, resumeText, jobDescription string) (*SkillAnalysis, error) {
	if strings.TrimSpace(jobDescription) == "" {
		return nil, &ValidationError{Field: "jobDescription", Message: "job description is required"}
	}

	resumeSkills, err := s.textSkills(resumeText, DocumentResume, "resume")
	if err != nil {
		return nil, err
	}
	return s.analyze(ctx, resumeSkills, jobDescription)
}

// AnalyzePosting runs AnalyzeSkills against a stored job posting. The posting's
// listed skills are added to those extracted from its description.
func (s *Service) AnalyzePosting(ctx context.Context, doc Document, description string, listed []string) (*SkillAnalysis, error) {
	jobSkills := s.extractor.Extract(description)
	seen := make(map[string]bool, len(jobSkills))
	for _, skill := range jobSkills {
		seen[skill] = true
	}
	for _, skill := range s.canonicalize(listed) {
		if !seen[skill] {
			seen[skill] = true
			jobSkills = append(jobSkills, skill)
		}
	}
	if len(jobSkills) == 0 {
		return nil, &NoSkillsFoundError{Document: DocumentJobDescription}
	}

	resumeSkills, err := s.ResumeSkills(doc)
	if err != nil {
		return nil, err
	}
	return s.compare(ctx, resumeSkills, jobSkills), nil
}

func (s *Service) analyze(ctx context.Context, resumeSkills []string, jobDescription string) (*SkillAnalysis, error) {
	jobSkills, err := s.textSkills(jobDescription, DocumentJobDescription, "jobDescription")
	if err != nil {
		return nil, err
	}
	return s.compare(ctx, resumeSkills, jobSkills), nil
}

func (s *Service) compare(ctx context.Context, resumeSkills, jobSkills []string) *SkillAnalysis {
	result := skills.Match(resumeSkills, jobSkills)
	score := skills.Score(result)
	courses := s.recommend(ctx, result.Missing)

	s.logger.Info("skill analysis complete",
		"score", score,
		"resume_skills", len(resumeSkills),
		"job_skills", len(jobSkills),
		"missing", len(result.Missing),
		"courses", len(courses),
	)

	return &SkillAnalysis{
		Success:            true,
		JobFitScore:        score,
		ResumeSkills:       resumeSkills,
		JobSkills:          jobSkills,
		MatchedSkills:      result.Matched,
		MissingSkills:      result.Missing,
		ExtraSkills:        result.Extra,
		RecommendedCourses: courses,
		AnalysisDate:       s.now().UTC().Format(time.RFC3339),
	}
}
