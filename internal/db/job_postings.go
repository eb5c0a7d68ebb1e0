package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const jobPostingColumns = `id, title, company, location, description, skills, created_by, created_at, updated_at`

// CreateJobPosting inserts a job posting and returns the stored row
func (db *DB) CreateJobPosting(ctx context.Context, input *JobPostingInput) (*JobPosting, error) {
	row := db.pool.QueryRow(ctx,
		`INSERT INTO job_postings (title, company, location, description, skills, created_by)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING `+jobPostingColumns,
		input.Title, input.Company, input.Location, input.Description, nonNil(input.Skills), input.CreatedBy,
	)
	p, err := scanJobPosting(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create job posting: %w", err)
	}
	return p, nil
}

// GetJobPosting retrieves a job posting by its ID. It returns nil, nil when
// no posting exists.
func (db *DB) GetJobPosting(ctx context.Context, id uuid.UUID) (*JobPosting, error) {
	row := db.pool.QueryRow(ctx,
		`SELECT `+jobPostingColumns+` FROM job_postings WHERE id = $1`, id)
	p, err := scanJobPosting(row)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get job posting: %w", err)
	}
	return p, nil
}

// ListJobPostings returns postings newest first
func (db *DB) ListJobPostings(ctx context.Context, filter JobPostingFilter) ([]JobPosting, error) {
	filter = filter.Normalize()
	query, args := buildListJobPostingsQuery(filter)

	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list job postings: %w", err)
	}
	defer rows.Close()

	postings := make([]JobPosting, 0)
	for rows.Next() {
		p, err := scanJobPosting(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan job posting: %w", err)
		}
		postings = append(postings, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list job postings: %w", err)
	}
	return postings, nil
}

func buildListJobPostingsQuery(filter JobPostingFilter) (string, []any) {
	query := `SELECT ` + jobPostingColumns + ` FROM job_postings WHERE 1=1`
	args := []any{}
	argNum := 1

	if filter.Skill != "" {
		query += fmt.Sprintf(" AND $%d = ANY(skills)", argNum)
		args = append(args, filter.Skill)
		argNum++
	}

	query += fmt.Sprintf(" ORDER BY created_at DESC, id LIMIT $%d OFFSET $%d", argNum, argNum+1)
	args = append(args, filter.Limit, filter.Offset)
	return query, args
}

// UpdateJobPosting replaces the writable fields of a posting. It returns
// ErrNotFound when the posting does not exist.
func (db *DB) UpdateJobPosting(ctx context.Context, id uuid.UUID, input *JobPostingInput) (*JobPosting, error) {
	row := db.pool.QueryRow(ctx,
		`UPDATE job_postings
		 SET title = $2, company = $3, location = $4, description = $5, skills = $6, updated_at = NOW()
		 WHERE id = $1
		 RETURNING `+jobPostingColumns,
		id, input.Title, input.Company, input.Location, input.Description, nonNil(input.Skills),
	)
	p, err := scanJobPosting(row)
	if err != nil {
		if isNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update job posting: %w", err)
	}
	return p, nil
}

// DeleteJobPosting deletes a posting and its applications (via cascade)
func (db *DB) DeleteJobPosting(ctx context.Context, id uuid.UUID) error {
	result, err := db.pool.Exec(ctx, `DELETE FROM job_postings WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete job posting: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanJobPosting(row pgx.Row) (*JobPosting, error) {
	var p JobPosting
	err := row.Scan(&p.ID, &p.Title, &p.Company, &p.Location, &p.Description,
		&p.Skills, &p.CreatedBy, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	p.Skills = nonNil(p.Skills)
	return &p, nil
}

func normalizeSkill(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
