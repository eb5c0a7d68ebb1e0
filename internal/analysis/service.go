// Package analysis runs the resume-to-job skill matching pipeline and shapes its results.
package analysis

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/jonathan/job-portal/internal/ingestion"
	"github.com/jonathan/job-portal/internal/recommend"
	"github.com/jonathan/job-portal/internal/skills"
)

// Document names for error reporting.
const (
	DocumentResume         = "resume"
	DocumentJobDescription = "job description"
)

// Document is an uploaded file awaiting extraction. The caller owns the file.
type Document struct {
	Path        string
	ContentType string
}

// Recommender finds learning resources for missing skills. It must not fail;
// an unavailable source yields an empty list.
type Recommender interface {
	FetchResources(ctx context.Context, missing []string) []recommend.Course
}

// Service runs analyses. It holds no per-request state and is safe for concurrent use.
type Service struct {
	extractor   *skills.Extractor
	recommender Recommender
	logger      *slog.Logger
	now         func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the time source used for analysis dates.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates a Service. recommender may be nil, in which case no courses
// are recommended.
func NewService(extractor *skills.Extractor, recommender Recommender, opts ...Option) *Service {
	s := &Service{
		extractor:   extractor,
		recommender: recommender,
		logger:      slog.Default(),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Extractor returns the skill extractor the service uses.
func (s *Service) Extractor() *skills.Extractor {
	return s.extractor
}

// ResumeSkills extracts the text of doc and the canonical skills it mentions.
// It fails with a ParseError for unreadable files, a ValidationError for empty
// text and a NoSkillsFoundError when no skill is recognized.
func (s *Service) ResumeSkills(doc Document) ([]string, error) {
	if doc.Path == "" {
		return nil, &ValidationError{Field: "resume", Message: "resume file is required"}
	}

	extracted, err := ingestion.Extract(doc.Path, doc.ContentType)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("resume extracted",
		"content_type", extracted.Metadata.ContentType,
		"pages", extracted.Metadata.Pages,
		"characters", extracted.Metadata.Characters,
		"words", extracted.Metadata.Words,
		"hash", extracted.Metadata.Hash,
	)

	return s.textSkills(extracted.Text, DocumentResume, "resume")
}

func (s *Service) textSkills(text, document, field string) ([]string, error) {
	if strings.TrimSpace(text) == "" {
		return nil, &ValidationError{Field: field, Message: document + " contains no text"}
	}
	found := s.extractor.Extract(text)
	if len(found) == 0 {
		return nil, &NoSkillsFoundError{Document: document}
	}
	return found, nil
}

// recommend fetches courses for missing skills. It never fails.
func (s *Service) recommend(ctx context.Context, missing []string) []recommend.Course {
	if s.recommender == nil || len(missing) == 0 {
		return make([]recommend.Course, 0)
	}
	courses := s.recommender.FetchResources(ctx, missing)
	if courses == nil {
		return make([]recommend.Course, 0)
	}
	return courses
}

// canonicalize maps listed job skills onto vocabulary names where the vocabulary
// knows them, so "Node.js" on a job matches "nodejs" from a resume. Unknown skills
// are kept as written, lowercased.
func (s *Service) canonicalize(listed []string) []string {
	vocab := s.extractor.Vocabulary()
	out := make([]string, 0, len(listed))
	for _, skill := range skills.NormalizeList(listed) {
		if canonical, ok := vocab.Canonical(skill); ok {
			skill = canonical
		}
		out = append(out, skill)
	}
	return skills.NormalizeList(out)
}
