package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/job-portal/internal/ingestion"
	"github.com/jonathan/job-portal/internal/recommend"
	"github.com/jonathan/job-portal/internal/skills"
	"github.com/jonathan/job-portal/internal/vocabulary"
)

type fakeRecommender struct {
	mu    sync.Mutex
	calls [][]string
}

func (f *fakeRecommender) FetchResources(_ context.Context, missing []string) []recommend.Course {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, append([]string(nil), missing...))

	courses := make([]recommend.Course, 0, len(missing))
	for _, skill := range missing {
		courses = append(courses, recommend.Course{
			ID:    skill + "-course",
			Title: "Learn " + skill,
			Link:  "https://learn.example.com/" + skill,
			Skill: skill,
			Type:  recommend.TypeCourse,
		})
	}
	return courses
}

var fixedNow = time.Date(2024, 3, 1, 12, 30, 0, 0, time.FixedZone("EST", -5*3600))

func newTestService(t *testing.T, rec Recommender) *Service {
	t.Helper()
	vocab, err := vocabulary.Default()
	require.NoError(t, err)
	return NewService(skills.NewExtractor(vocab), rec, WithClock(func() time.Time { return fixedNow }))
}

func writeResume(t *testing.T, name, content string) Document {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return Document{Path: path, ContentType: "text/plain"}
}

func TestAnalyzeSkills_Scenario(t *testing.T) {
	rec := &fakeRecommender{}
	svc := newTestService(t, rec)
	doc := writeResume(t, "resume.txt", "Backend engineer. Python, Django and PostgreSQL for five years.")

	got, err := svc.AnalyzeSkills(context.Background(), doc, "We need Python, Django, PostgreSQL and AWS experience.")
	require.NoError(t, err)

	assert.True(t, got.Success)
	assert.Equal(t, 75, got.JobFitScore)
	assert.Equal(t, []string{"django", "postgresql", "python"}, got.MatchedSkills)
	assert.Equal(t, []string{"aws"}, got.MissingSkills)
	assert.Empty(t, got.ExtraSkills)
	assert.NotNil(t, got.ExtraSkills)
	assert.Equal(t, "2024-03-01T17:30:00Z", got.AnalysisDate)

	require.Len(t, rec.calls, 1)
	assert.Equal(t, []string{"aws"}, rec.calls[0])
	require.Len(t, got.RecommendedCourses, 1)
	assert.Equal(t, "aws", got.RecommendedCourses[0].Skill)
}

func TestAnalyzeSkills_ZeroBytePDF(t *testing.T) {
	rec := &fakeRecommender{}
	svc := newTestService(t, rec)
	path := filepath.Join(t.TempDir(), "resume.pdf")
	require.NoError(t, os.WriteFile(path, nil, 0o600))

	_, err := svc.AnalyzeSkills(context.Background(), Document{Path: path, ContentType: ingestion.ContentTypePDF}, "Python and AWS")
	require.Error(t, err)

	var perr *ingestion.ParseError
	assert.True(t, errors.As(err, &perr))
	assert.Empty(t, rec.calls)
}

func TestAnalyzeSkills_Errors(t *testing.T) {
	tests := []struct {
		name    string
		resume  string
		job     string
		field   string
		noSkill string
	}{
		{name: "blank job description", resume: "Python", job: "   ", field: "jobDescription"},
		{name: "empty resume text", resume: "  \n ", job: "Python", field: "resume"},
		{name: "resume without skills", resume: "I like long walks.", job: "Python", noSkill: DocumentResume},
		{name: "job without skills", resume: "Python", job: "A friendly team.", noSkill: DocumentJobDescription},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &fakeRecommender{}
			svc := newTestService(t, rec)
			doc := writeResume(t, "resume.txt", tt.resume)

			_, err := svc.AnalyzeSkills(context.Background(), doc, tt.job)
			require.Error(t, err)
			assert.Empty(t, rec.calls)

			if tt.field != "" {
				var verr *ValidationError
				require.True(t, errors.As(err, &verr))
				assert.Equal(t, tt.field, verr.Field)
			}
			if tt.noSkill != "" {
				var nerr *NoSkillsFoundError
				require.True(t, errors.As(err, &nerr))
				assert.Equal(t, tt.noSkill, nerr.Document)
				assert.Contains(t, nerr.Guidance(), tt.noSkill)
			}
		})
	}
}

func TestAnalyzeSkills_MissingFile(t *testing.T) {
	svc := newTestService(t, nil)

	_, err := svc.AnalyzeSkills(context.Background(), Document{}, "Python")
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "resume", verr.Field)
}

func TestAnalyzeText_NoMissingSkillsSkipsRecommendations(t *testing.T) {
	rec := &fakeRecommender{}
	svc := newTestService(t, rec)

	got, err := svc.AnalyzeText(context.Background(), "Golang, Docker and Kubernetes", "Docker and Kubernetes")
	require.NoError(t, err)

	assert.Equal(t, 100, got.JobFitScore)
	assert.Empty(t, got.MissingSkills)
	assert.NotNil(t, got.RecommendedCourses)
	assert.Empty(t, got.RecommendedCourses)
	assert.Empty(t, rec.calls)
}

func TestAnalyzeText_NilRecommender(t *testing.T) {
	svc := newTestService(t, nil)

	got, err := svc.AnalyzeText(context.Background(), "Python", "Python and AWS")
	require.NoError(t, err)
	assert.Equal(t, 50, got.JobFitScore)
	assert.NotNil(t, got.RecommendedCourses)
	assert.Empty(t, got.RecommendedCourses)
}

func TestAnalyzePosting_ListedSkills(t *testing.T) {
	svc := newTestService(t, &fakeRecommender{})
	doc := writeResume(t, "resume.txt", "Python and Docker")

	got, err := svc.AnalyzePosting(context.Background(), doc, "Backend role using Python.", []string{"Docker", "Node.js"})
	require.NoError(t, err)

	assert.Equal(t, []string{"docker", "python"}, got.MatchedSkills)
	assert.Equal(t, []string{"nodejs"}, got.MissingSkills)
	assert.Equal(t, 67, got.JobFitScore)
}

func TestAnalyzePosting_NoSkills(t *testing.T) {
	svc := newTestService(t, nil)
	doc := writeResume(t, "resume.txt", "Python")

	_, err := svc.AnalyzePosting(context.Background(), doc, "A friendly team.", nil)
	var nerr *NoSkillsFoundError
	require.True(t, errors.As(err, &nerr))
	assert.Equal(t, DocumentJobDescription, nerr.Document)
}

func TestMatchResumeToJobs(t *testing.T) {
	svc := newTestService(t, nil)
	doc := writeResume(t, "resume.txt", "Python, Django and Docker")

	jobs := `[
		{"id": 1, "title": "Frontend", "skills": ["React", "CSS"]},
		{"id": 2, "title": "Backend", "skills": ["python", "django", "aws"], "salary": 120000.50},
		{"id": 3, "title": "Platform", "skills": ["Docker"]},
		{"id": 4, "title": "Data", "skills": ["Python", "Spark", "SQL", "Airflow"]}
	]`

	got, err := svc.MatchResumeToJobs(context.Background(), doc, jobs)
	require.NoError(t, err)

	assert.True(t, got.Success)
	assert.Equal(t, 4, got.TotalJobsProcessed)
	assert.Equal(t, 3, got.TotalJobsMatched)
	require.Len(t, got.AllMatches, 4)
	require.Len(t, got.MatchedJobs, 3)

	assert.Equal(t, []int{100, 67, 25, 0}, scores(got.AllMatches))
	assert.Equal(t, "Platform", got.AllMatches[0].Fields["title"])
	assert.Equal(t, "Frontend", got.AllMatches[3].Fields["title"])

	backend := got.AllMatches[1].MatchData
	assert.Equal(t, []string{"python", "django"}, backend.Matched)
	assert.Equal(t, []string{"aws"}, backend.Missing)
	assert.Equal(t, 2, backend.MatchedCount)
	assert.Equal(t, 3, backend.TotalRequired)
}

func TestMatchResumeToJobs_TiesKeepInputOrder(t *testing.T) {
	svc := newTestService(t, nil)

	got := svc.MatchJobs(context.Background(), []string{"python"}, []map[string]any{
		{"title": "a", "skills": []any{"java"}},
		{"title": "b", "skills": []any{"python"}},
		{"title": "c", "skills": []any{"go"}},
		{"title": "d", "skills": []any{"python"}},
	})

	titles := make([]string, 0, len(got.AllMatches))
	for _, m := range got.AllMatches {
		titles = append(titles, m.Fields["title"].(string))
	}
	assert.Equal(t, []string{"b", "d", "a", "c"}, titles)
}

func TestMatchResumeToJobs_InvalidJobs(t *testing.T) {
	tests := []struct {
		name string
		jobs string
	}{
		{"empty", ""},
		{"not json", "[{"},
		{"empty array", "[]"},
		{"missing skills", `[{"title": "x"}]`},
		{"skills not strings", `[{"skills": [1, 2]}]`},
		{"object not array", `{"skills": ["go"]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(t, nil)
			doc := writeResume(t, "resume.txt", "Python")

			_, err := svc.MatchResumeToJobs(context.Background(), doc, tt.jobs)
			var verr *ValidationError
			require.True(t, errors.As(err, &verr), "got %v", err)
			assert.Equal(t, "jobs", verr.Field)
		})
	}
}

func TestJobMatch_MarshalJSON(t *testing.T) {
	jobs, err := ParseJobs(`[{"id": 12345678901234567890, "title": "Backend", "skills": ["Go"]}]`)
	require.NoError(t, err)

	svc := newTestService(t, nil)
	got := svc.MatchJobs(context.Background(), []string{"go"}, jobs)

	data, err := json.Marshal(got.AllMatches[0])
	require.NoError(t, err)

	assert.Contains(t, string(data), `"id":12345678901234567890`)
	assert.Contains(t, string(data), `"title":"Backend"`)
	assert.Contains(t, string(data), `"matchData":{"matchScore":100,"matchedSkills":["go"],"missingSkills":[],"matchedCount":1,"totalRequired":1}`)
}

func TestScoreApplication(t *testing.T) {
	svc := newTestService(t, nil)
	doc := writeResume(t, "resume.txt", "Experienced with PostgreSQL, React Native and Python")

	got, err := svc.ScoreApplication(context.Background(), doc, []string{"Postgres", "React", "Kotlin", " "})
	require.NoError(t, err)

	assert.Equal(t, []string{"postgresql", "react"}, got.Match.Matched)
	assert.Equal(t, []string{"kotlin"}, got.Match.Missing)
	assert.Equal(t, 67, got.Match.Score)
	assert.Contains(t, got.ResumeSkills, "react native")
}

func scores(matches []JobMatch) []int {
	out := make([]int, 0, len(matches))
	for _, m := range matches {
		out = append(out, m.MatchData.Score)
	}
	return out
}
