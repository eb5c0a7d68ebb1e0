package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/jonathan/job-portal/internal/schemas"
	"github.com/jonathan/job-portal/internal/skills"
)

// JobMatch is one job from the request echoed back with its match data.
type JobMatch struct {
	Fields    map[string]any
	MatchData skills.ContainsResult
}

// MarshalJSON writes every input field of the job followed by matchData.
func (m JobMatch) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(m.Fields)+1)
	for k, v := range m.Fields {
		out[k] = v
	}
	out["matchData"] = m.MatchData
	return json.Marshal(out)
}

// JobMatches is the result of scoring one resume against a list of jobs.
type JobMatches struct {
	Success            bool       `json:"success"`
	ResumeSkills       []string   `json:"resumeSkills"`
	TotalJobsMatched   int        `json:"totalJobsMatched"`
	TotalJobsProcessed int        `json:"totalJobsProcessed"`
	MatchedJobs        []JobMatch `json:"matchedJobs"`
	AllMatches         []JobMatch `json:"allMatches"`
}

// ParseJobs validates a JSON job list and decodes it. Numbers are kept as
// json.Number so they are echoed back exactly as sent.
func ParseJobs(jobsJSON string) ([]map[string]any, error) {
	if strings.TrimSpace(jobsJSON) == "" {
		return nil, &ValidationError{Field: "jobs", Message: "jobs are required"}
	}

	if err := schemas.JobList.Validate([]byte(jobsJSON)); err != nil {
		var verr *schemas.ValidationError
		if errors.As(err, &verr) {
			return nil, &ValidationError{Field: "jobs", Message: verr.Summary()}
		}
		return nil, fmt.Errorf("failed to validate jobs: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader([]byte(jobsJSON)))
	dec.UseNumber()
	var jobs []map[string]any
	if err := dec.Decode(&jobs); err != nil {
		return nil, &ValidationError{Field: "jobs", Message: "jobs must be a JSON array of objects"}
	}
	return jobs, nil
}

// MatchResumeToJobs extracts skills from the resume and scores them against the
// listed skills of every job with the substring matcher.
func (s *Service) MatchResumeToJobs(ctx context.Context, doc Document, jobsJSON string) (*JobMatches, error) {
	jobs, err := ParseJobs(jobsJSON)
	if err != nil {
		return nil, err
	}

	resumeSkills, err := s.ResumeSkills(doc)
	if err != nil {
		return nil, err
	}
	return s.MatchJobs(ctx, resumeSkills, jobs), nil
}

// MatchJobs scores resume skills against decoded jobs. Both result lists are
// sorted by score descending; equal scores keep input order.
func (s *Service) MatchJobs(_ context.Context, resumeSkills []string, jobs []map[string]any) *JobMatches {
	all := make([]JobMatch, 0, len(jobs))
	for _, job := range jobs {
		all = append(all, JobMatch{
			Fields:    job,
			MatchData: skills.MatchContains(resumeSkills, s.canonicalize(stringList(job["skills"]))),
		})
	}

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].MatchData.Score > all[j].MatchData.Score
	})

	matched := make([]JobMatch, 0, len(all))
	for _, m := range all {
		if m.MatchData.Score > 0 {
			matched = append(matched, m)
		}
	}

	s.logger.Info("resume matched to jobs",
		"jobs", len(all),
		"matched", len(matched),
		"resume_skills", len(resumeSkills),
	)

	return &JobMatches{
		Success:            true,
		ResumeSkills:       resumeSkills,
		TotalJobsMatched:   len(matched),
		TotalJobsProcessed: len(all),
		MatchedJobs:        matched,
		AllMatches:         all,
	}
}

// ApplicationScore is the substring match of an applicant's resume against a posting.
type ApplicationScore struct {
	ResumeSkills []string
	Match        skills.ContainsResult
}

// ScoreApplication extracts skills from an applicant's resume and scores them
// against the posting's required skills with the substring matcher.
func (s *Service) ScoreApplication(_ context.Context, doc Document, required []string) (*ApplicationScore, error) {
	resumeSkills, err := s.ResumeSkills(doc)
	if err != nil {
		return nil, err
	}
	return &ApplicationScore{
		ResumeSkills: resumeSkills,
		Match:        skills.MatchContains(resumeSkills, s.canonicalize(required)),
	}, nil
}

func stringList(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
