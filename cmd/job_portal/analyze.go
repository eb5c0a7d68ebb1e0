package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/job-portal/internal/analysis"
	"github.com/jonathan/job-portal/internal/ingestion"
	"github.com/jonathan/job-portal/internal/observability"
)

var (
	analyzeResume            string
	analyzeJob               string
	analyzeJobs              string
	analyzeJSON              bool
	analyzeNoRecommendations bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze a resume offline",
	Long: `Run the skill matching pipeline on local files and print the result.
With --job the resume is compared with a job description (text file).
With --jobs it is scored against a JSON array of jobs that each carry a skills list.`,
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeResume, "resume", "r", "", "Path to resume file (PDF or plain text)")
	analyzeCmd.Flags().StringVarP(&analyzeJob, "job", "j", "", "Path to job description text file")
	analyzeCmd.Flags().StringVar(&analyzeJobs, "jobs", "", "Path to JSON file with an array of jobs")
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "Print the result as JSON")
	analyzeCmd.Flags().BoolVar(&analyzeNoRecommendations, "no-recommendations", false, "Skip course recommendations")

	_ = analyzeCmd.MarkFlagRequired("resume")
	analyzeCmd.MarkFlagsOneRequired("job", "jobs")
	analyzeCmd.MarkFlagsMutuallyExclusive("job", "jobs")

	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := loadConfig(os.Stderr)
	if err != nil {
		return err
	}

	var rec analysis.Recommender
	if !analyzeNoRecommendations && analyzeJob != "" {
		r, err := buildRecommender(cmd.Context(), cfg, logger)
		if err != nil {
			return fmt.Errorf("failed to configure recommendations: %w", err)
		}
		defer r.Close() //nolint:errcheck // process exits next
		rec = r.fetcher
	}

	svc, err := newAnalysisService(cfg, rec, logger)
	if err != nil {
		return err
	}

	doc := analysis.Document{Path: analyzeResume}

	var result any
	printer := observability.NewPrinter(cmd.OutOrStdout())
	if analyzeJob != "" {
		jd, err := os.ReadFile(analyzeJob)
		if err != nil {
			return fmt.Errorf("failed to read job description: %w", err)
		}
		analyzed, err := svc.AnalyzeSkills(cmd.Context(), doc, string(jd))
		if err != nil {
			return explain(err)
		}
		result = analyzed
		if !analyzeJSON {
			printer.PrintSkillAnalysis(analyzed)
		}
	} else {
		jobs, err := os.ReadFile(analyzeJobs)
		if err != nil {
			return fmt.Errorf("failed to read jobs: %w", err)
		}
		matches, err := svc.MatchResumeToJobs(cmd.Context(), doc, string(jobs))
		if err != nil {
			return explain(err)
		}
		result = matches
		if !analyzeJSON {
			printer.PrintJobMatches(matches)
		}
	}

	if analyzeJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}
	return nil
}

// explain adds the user guidance carried by pipeline errors.
func explain(err error) error {
	var noSkills *analysis.NoSkillsFoundError
	if errors.As(err, &noSkills) {
		return fmt.Errorf("%w\n%s", err, noSkills.Guidance())
	}
	var parseErr *ingestion.ParseError
	if errors.As(err, &parseErr) {
		return fmt.Errorf("%w\nre-export the resume as a text-based PDF and try again", err)
	}
	return err
}
