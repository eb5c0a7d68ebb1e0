package db

import (
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/job-portal/internal/types"
)

// JobPosting represents a job_postings row
type JobPosting struct {
	ID          uuid.UUID  `json:"id"`
	Title       string     `json:"title"`
	Company     string     `json:"company"`
	Location    string     `json:"location"`
	Description string     `json:"description"`
	Skills      []string   `json:"skills"`
	CreatedBy   *uuid.UUID `json:"createdBy,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// JobPostingInput holds the writable fields of a job posting.
type JobPostingInput struct {
	Title       string
	Company     string
	Location    string
	Description string
	Skills      []string
	CreatedBy   *uuid.UUID
}

// JobPostingFilter holds optional filters for listing job postings
type JobPostingFilter struct {
	Skill  string
	Limit  int
	Offset int
}

// Listing limits
const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

// Normalize clamps the paging fields and lowercases the skill filter.
func (f JobPostingFilter) Normalize() JobPostingFilter {
	if f.Limit <= 0 {
		f.Limit = DefaultListLimit
	}
	if f.Limit > MaxListLimit {
		f.Limit = MaxListLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	f.Skill = normalizeSkill(f.Skill)
	return f
}

// Application represents an applications row
type Application struct {
	ID             uuid.UUID               `json:"id"`
	JobPostingID   uuid.UUID               `json:"jobPostingId"`
	ApplicantName  string                  `json:"applicantName"`
	ApplicantEmail string                  `json:"applicantEmail"`
	ResumeSkills   []string                `json:"resumeSkills"`
	MatchedSkills  []string                `json:"matchedSkills"`
	MissingSkills  []string                `json:"missingSkills"`
	MatchScore     int                     `json:"matchScore"`
	Status         types.ApplicationStatus `json:"status"`
	CreatedAt      time.Time               `json:"createdAt"`
	UpdatedAt      time.Time               `json:"updatedAt"`
}

// ApplicationInput holds the fields of a new application.
type ApplicationInput struct {
	JobPostingID   uuid.UUID
	ApplicantName  string
	ApplicantEmail string
	ResumeSkills   []string
	MatchedSkills  []string
	MissingSkills  []string
	MatchScore     int
}
