// Package observability provides logging setup and formatted output for the CLI.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/job-portal/internal/analysis"
	"github.com/jonathan/job-portal/internal/recommend"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for the analyze command
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintSkillAnalysis outputs the score and skill breakdown of an analysis.
func (p *Printer) PrintSkillAnalysis(result *analysis.SkillAnalysis) {
	if result == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Job fit score: %d%%\n", result.JobFitScore))
	sb.WriteString(fmt.Sprintf("Analyzed:      %s\n\n", result.AnalysisDate))
	writeSkillList(&sb, "Matched", result.MatchedSkills)
	writeSkillList(&sb, "Missing", result.MissingSkills)
	writeSkillList(&sb, "Extra", result.ExtraSkills)

	p.printBox("SKILL ANALYSIS", strings.TrimSuffix(sb.String(), "\n"))
	p.PrintCourses(result.RecommendedCourses)
}

// PrintCourses outputs recommended courses grouped under the skill they teach.
func (p *Printer) PrintCourses(courses []recommend.Course) {
	if len(courses) == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d resources found:\n\n", len(courses)))

	for i, c := range courses {
		sb.WriteString(fmt.Sprintf("• %s\n", c.Title))
		meta := []string{c.Skill, c.Type}
		if c.Platform != "" {
			meta = append(meta, c.Platform)
		}
		if c.Duration != "" {
			meta = append(meta, c.Duration)
		}
		if c.Rating > 0 {
			meta = append(meta, fmt.Sprintf("%.1f★", c.Rating))
		}
		sb.WriteString(fmt.Sprintf("  [%s]\n", strings.Join(meta, " · ")))
		sb.WriteString(fmt.Sprintf("  %s", c.Link))
		if i < len(courses)-1 {
			sb.WriteString("\n\n")
		}
	}

	p.printBox("RECOMMENDED COURSES", sb.String())
}

// PrintJobMatches outputs the top scoring jobs from a resume-to-jobs match.
func (p *Printer) PrintJobMatches(result *analysis.JobMatches) {
	if result == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Matched %d of %d jobs\n", result.TotalJobsMatched, result.TotalJobsProcessed))

	count := min(len(result.AllMatches), maxItemsToShow)
	for i := 0; i < count; i++ {
		m := result.AllMatches[i]
		sb.WriteString(fmt.Sprintf("\n#%d  %s\n", i+1, jobLabel(m.Fields, i)))
		sb.WriteString(fmt.Sprintf("    Score: %d%% (%d/%d)\n", m.MatchData.Score, m.MatchData.MatchedCount, m.MatchData.TotalRequired))
		if len(m.MatchData.Missing) > 0 {
			sb.WriteString(fmt.Sprintf("    Missing: %s\n", strings.Join(m.MatchData.Missing, ", ")))
		}
	}

	if len(result.AllMatches) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n... and %d more jobs", len(result.AllMatches)-maxItemsToShow))
	}

	p.printBox("JOB MATCHES", strings.TrimSuffix(sb.String(), "\n"))
}

func writeSkillList(sb *strings.Builder, label string, skills []string) {
	if len(skills) == 0 {
		sb.WriteString(fmt.Sprintf("%s: none\n", label))
		return
	}
	sb.WriteString(fmt.Sprintf("%s (%d):\n", label, len(skills)))
	count := min(len(skills), maxItemsToShow)
	for i := 0; i < count; i++ {
		sb.WriteString(fmt.Sprintf("  • %s\n", skills[i]))
	}
	if len(skills) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(skills)-maxItemsToShow))
	}
	sb.WriteString("\n")
}

func jobLabel(fields map[string]any, index int) string {
	for _, key := range []string{"title", "name", "id"} {
		if v, ok := fields[key]; ok && v != nil {
			return fmt.Sprint(v)
		}
	}
	return fmt.Sprintf("job %d", index+1)
}

// truncate shortens s to width runes.
func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	return string(r[:width-3]) + "..."
}
