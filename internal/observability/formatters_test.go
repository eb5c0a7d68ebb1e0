package observability

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/job-portal/internal/analysis"
	"github.com/jonathan/job-portal/internal/recommend"
	"github.com/jonathan/job-portal/internal/skills"
)

func TestPrintSkillAnalysis(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintSkillAnalysis(&analysis.SkillAnalysis{
		JobFitScore:   75,
		AnalysisDate:  "2024-03-01T17:30:00Z",
		MatchedSkills: []string{"django", "postgresql", "python"},
		MissingSkills: []string{"aws"},
		RecommendedCourses: []recommend.Course{
			{Title: "AWS for Beginners", Skill: "aws", Type: recommend.TypeCourse, Platform: "YouTube", Duration: "1h 2m", Rating: 4.5, Link: "https://youtube.com/watch?v=x"},
		},
	})
	output := buf.String()

	assert.Contains(t, output, "SKILL ANALYSIS")
	assert.Contains(t, output, "Job fit score: 75%")
	assert.Contains(t, output, "Matched (3):")
	assert.Contains(t, output, "Missing (1):")
	assert.Contains(t, output, "Extra: none")
	assert.Contains(t, output, "RECOMMENDED COURSES")
	assert.Contains(t, output, "AWS for Beginners")
	assert.Contains(t, output, "4.5★")
}

func TestPrintSkillAnalysis_Nil(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintSkillAnalysis(nil)
	assert.Empty(t, buf.String())
}

func TestPrintCourses_Empty(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintCourses(nil)
	assert.Empty(t, buf.String())
}

func TestPrintSkillAnalysis_LongLists(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintSkillAnalysis(&analysis.SkillAnalysis{
		MatchedSkills: []string{"a", "b", "c", "d", "e", "f", "g"},
	})

	assert.Contains(t, buf.String(), "... and 2 more")
}

func TestPrintJobMatches(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	matches := make([]analysis.JobMatch, 0, 7)
	for i := 0; i < 7; i++ {
		matches = append(matches, analysis.JobMatch{
			Fields:    map[string]any{"id": json.Number("1" + strings.Repeat("0", i))},
			MatchData: skills.ContainsResult{Score: 50, MatchedCount: 1, TotalRequired: 2, Missing: []string{"aws"}},
		})
	}
	matches[0].Fields["title"] = "Backend Engineer"

	p.PrintJobMatches(&analysis.JobMatches{TotalJobsMatched: 7, TotalJobsProcessed: 9, AllMatches: matches})
	output := buf.String()

	assert.Contains(t, output, "JOB MATCHES")
	assert.Contains(t, output, "Matched 7 of 9 jobs")
	assert.Contains(t, output, "#1  Backend Engineer")
	assert.Contains(t, output, "#2  10")
	assert.Contains(t, output, "Score: 50% (1/2)")
	assert.Contains(t, output, "Missing: aws")
	assert.Contains(t, output, "... and 2 more jobs")
}

func TestPrintBox_TruncatesLongLines(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.printBox("TITLE", strings.Repeat("é", 100))

	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		assert.Equal(t, boxWidth, len([]rune(line)), line)
	}
	assert.Contains(t, buf.String(), "...")
}
