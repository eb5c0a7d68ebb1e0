package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/job-portal/internal/types"
)

const applicationColumns = `id, job_posting_id, applicant_name, applicant_email, resume_skills,
	matched_skills, missing_skills, match_score, status, created_at, updated_at`

// CreateApplication stores a scored application with status applied. It
// returns ErrNotFound when the posting does not exist.
func (db *DB) CreateApplication(ctx context.Context, input *ApplicationInput) (*Application, error) {
	row := db.pool.QueryRow(ctx,
		`INSERT INTO applications (job_posting_id, applicant_name, applicant_email,
		        resume_skills, matched_skills, missing_skills, match_score, status)
		 SELECT id, $2, $3, $4, $5, $6, $7, $8 FROM job_postings WHERE id = $1
		 RETURNING `+applicationColumns,
		input.JobPostingID, input.ApplicantName, input.ApplicantEmail,
		nonNil(input.ResumeSkills), nonNil(input.MatchedSkills), nonNil(input.MissingSkills),
		input.MatchScore, types.StatusApplied,
	)
	a, err := scanApplication(row)
	if err != nil {
		if isNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to create application: %w", err)
	}
	return a, nil
}

// GetApplication retrieves an application by ID. It returns nil, nil when
// no application exists.
func (db *DB) GetApplication(ctx context.Context, id uuid.UUID) (*Application, error) {
	row := db.pool.QueryRow(ctx,
		`SELECT `+applicationColumns+` FROM applications WHERE id = $1`, id)
	a, err := scanApplication(row)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get application: %w", err)
	}
	return a, nil
}

// ListApplications returns a posting's applications, best match first
func (db *DB) ListApplications(ctx context.Context, jobPostingID uuid.UUID) ([]Application, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+applicationColumns+` FROM applications
		 WHERE job_posting_id = $1
		 ORDER BY match_score DESC, created_at ASC`,
		jobPostingID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	defer rows.Close()

	apps := make([]Application, 0)
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan application: %w", err)
		}
		apps = append(apps, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	return apps, nil
}

// UpdateApplicationStatus moves an application through the hiring workflow.
// It returns ErrNotFound for unknown applications and *types.InvalidTransitionError
// when the workflow forbids the change.
func (db *DB) UpdateApplicationStatus(ctx context.Context, id uuid.UUID, status types.ApplicationStatus) (*Application, error) {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var current types.ApplicationStatus
	err = tx.QueryRow(ctx,
		`SELECT status FROM applications WHERE id = $1 FOR UPDATE`, id,
	).Scan(&current)
	if err != nil {
		if isNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read application status: %w", err)
	}

	if !types.CanTransition(current, status) {
		return nil, &types.InvalidTransitionError{From: current, To: status}
	}

	row := tx.QueryRow(ctx,
		`UPDATE applications SET status = $2, updated_at = NOW()
		 WHERE id = $1
		 RETURNING `+applicationColumns,
		id, status,
	)
	a, err := scanApplication(row)
	if err != nil {
		return nil, fmt.Errorf("failed to update application status: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit status update: %w", err)
	}
	return a, nil
}

func scanApplication(row pgx.Row) (*Application, error) {
	var a Application
	err := row.Scan(&a.ID, &a.JobPostingID, &a.ApplicantName, &a.ApplicantEmail,
		&a.ResumeSkills, &a.MatchedSkills, &a.MissingSkills, &a.MatchScore,
		&a.Status, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	a.ResumeSkills = nonNil(a.ResumeSkills)
	a.MatchedSkills = nonNil(a.MatchedSkills)
	a.MissingSkills = nonNil(a.MissingSkills)
	return &a, nil
}
