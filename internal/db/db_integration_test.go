//go:build integration

package db

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/job-portal/internal/types"
)

func getTestDB(t *testing.T) *DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping integration test")
	}

	ctx := context.Background()
	db, err := Connect(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(db.Close)

	_, err = db.Migrate(ctx)
	require.NoError(t, err)
	return db
}

func createTestPosting(t *testing.T, db *DB, skills []string) *JobPosting {
	t.Helper()
	ctx := context.Background()

	posting, err := db.CreateJobPosting(ctx, &JobPostingInput{
		Title:       "Backend Engineer",
		Company:     "Integration Test Corp",
		Description: "Python and PostgreSQL",
		Skills:      skills,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		_, _ = db.pool.Exec(ctx, "DELETE FROM job_postings WHERE id = $1", posting.ID)
	})
	return posting
}

func TestIntegration_MigrateIsIdempotent(t *testing.T) {
	db := getTestDB(t)

	applied, err := db.Migrate(context.Background())
	require.NoError(t, err)
	assert.Empty(t, applied)
}

func TestIntegration_JobPosting_CRUD(t *testing.T) {
	db := getTestDB(t)
	ctx := context.Background()

	creator := uuid.New()
	posting, err := db.CreateJobPosting(ctx, &JobPostingInput{
		Title:       "Data Engineer",
		Company:     "Integration Test Corp",
		Location:    "Remote",
		Description: "Spark and Python",
		Skills:      []string{"python", "spark-" + uuid.NewString()},
		CreatedBy:   &creator,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.DeleteJobPosting(ctx, posting.ID) })

	assert.NotEqual(t, uuid.Nil, posting.ID)
	require.NotNil(t, posting.CreatedBy)
	assert.Equal(t, creator, *posting.CreatedBy)

	got, err := db.GetJobPosting(ctx, posting.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, posting.Skills, got.Skills)

	list, err := db.ListJobPostings(ctx, JobPostingFilter{Skill: posting.Skills[1]})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, posting.ID, list[0].ID)

	updated, err := db.UpdateJobPosting(ctx, posting.ID, &JobPostingInput{
		Title:       "Senior Data Engineer",
		Company:     "Integration Test Corp",
		Description: "Spark",
	})
	require.NoError(t, err)
	assert.Equal(t, "Senior Data Engineer", updated.Title)
	assert.Equal(t, []string{}, updated.Skills)
	assert.True(t, !updated.UpdatedAt.Before(posting.UpdatedAt))

	require.NoError(t, db.DeleteJobPosting(ctx, posting.ID))
	assert.ErrorIs(t, db.DeleteJobPosting(ctx, posting.ID), ErrNotFound)

	missing, err := db.GetJobPosting(ctx, posting.ID)
	require.NoError(t, err)
	assert.Nil(t, missing)

	_, err = db.UpdateJobPosting(ctx, posting.ID, &JobPostingInput{Title: "x", Company: "x", Description: "x"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestIntegration_Applications(t *testing.T) {
	db := getTestDB(t)
	ctx := context.Background()
	posting := createTestPosting(t, db, []string{"python", "postgresql"})

	low, err := db.CreateApplication(ctx, &ApplicationInput{
		JobPostingID:   posting.ID,
		ApplicantName:  "Low Score",
		ApplicantEmail: "low@example.com",
		ResumeSkills:   []string{"python"},
		MatchedSkills:  []string{"python"},
		MissingSkills:  []string{"postgresql"},
		MatchScore:     50,
	})
	require.NoError(t, err)
	assert.Equal(t, types.StatusApplied, low.Status)

	high, err := db.CreateApplication(ctx, &ApplicationInput{
		JobPostingID:   posting.ID,
		ApplicantName:  "High Score",
		ApplicantEmail: "high@example.com",
		MatchScore:     100,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{}, high.MissingSkills)

	list, err := db.ListApplications(ctx, posting.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, high.ID, list[0].ID)
	assert.Equal(t, low.ID, list[1].ID)

	_, err = db.CreateApplication(ctx, &ApplicationInput{JobPostingID: uuid.New(), ApplicantName: "x", ApplicantEmail: "x@example.com"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestIntegration_ApplicationStatusWorkflow(t *testing.T) {
	db := getTestDB(t)
	ctx := context.Background()
	posting := createTestPosting(t, db, []string{"go"})

	app, err := db.CreateApplication(ctx, &ApplicationInput{
		JobPostingID:   posting.ID,
		ApplicantName:  "Workflow",
		ApplicantEmail: "workflow@example.com",
	})
	require.NoError(t, err)

	updated, err := db.UpdateApplicationStatus(ctx, app.ID, types.StatusReviewing)
	require.NoError(t, err)
	assert.Equal(t, types.StatusReviewing, updated.Status)

	_, err = db.UpdateApplicationStatus(ctx, app.ID, types.StatusHired)
	var terr *types.InvalidTransitionError
	require.True(t, errors.As(err, &terr))
	assert.Equal(t, types.StatusReviewing, terr.From)

	_, err = db.UpdateApplicationStatus(ctx, app.ID, types.StatusRejected)
	require.NoError(t, err)

	_, err = db.UpdateApplicationStatus(ctx, app.ID, types.StatusReviewing)
	require.True(t, errors.As(err, &terr))

	_, err = db.UpdateApplicationStatus(ctx, uuid.New(), types.StatusReviewing)
	assert.ErrorIs(t, err, ErrNotFound)

	got, err := db.GetApplication(ctx, app.ID)
	require.NoError(t, err)
	assert.Equal(t, types.StatusRejected, got.Status)
}
