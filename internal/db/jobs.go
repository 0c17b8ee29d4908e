package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/nexwork/nexwork/internal/types"
)

// -----------------------------------------------------------------------------
// Job Methods
// -----------------------------------------------------------------------------

const jobColumns = `id, recruiter_id, title, company, location, description, salary, deadline,
	skills, wallet_address, tx_hash, is_paid, ai_interview_enabled, test_config, created_at`

func scanJob(row pgx.Row) (*types.Job, error) {
	var j types.Job
	var testConfig []string
	err := row.Scan(&j.ID, &j.RecruiterID, &j.Title, &j.Company, &j.Location, &j.Description,
		&j.Salary, &j.Deadline, &j.Skills, &j.WalletAddress, &j.TxHash, &j.IsPaid,
		&j.AIInterviewEnabled, &testConfig, &j.CreatedAt)
	if err != nil {
		return nil, err
	}
	j.TestConfig = make([]types.Difficulty, 0, len(testConfig))
	for _, d := range testConfig {
		j.TestConfig = append(j.TestConfig, types.Difficulty(d))
	}
	return &j, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// CreateJob inserts a posting owned by recruiterID. A posting is paid when
// it carries a transaction hash.
func (db *DB) CreateJob(ctx context.Context, recruiterID uuid.UUID, req *types.CreateJobRequest) (*types.Job, error) {
	testConfig := make([]string, 0, len(req.TestConfig))
	for _, d := range req.TestConfig {
		testConfig = append(testConfig, string(d))
	}

	job, err := scanJob(db.pool.QueryRow(ctx,
		`INSERT INTO jobs (recruiter_id, title, company, location, description, salary, deadline,
		                   skills, wallet_address, tx_hash, is_paid, ai_interview_enabled, test_config)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		 RETURNING `+jobColumns,
		recruiterID, req.Title, req.Company, req.Location, req.Description, req.Salary, req.Deadline,
		nonNil(req.Skills), req.WalletAddress, req.TxHash, req.TxHash != "", req.AIInterviewEnabled, testConfig,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create job: %w", err)
	}
	return job, nil
}

// GetJob retrieves a posting by ID. It returns ErrNotFound when the id is unknown.
func (db *DB) GetJob(ctx context.Context, id uuid.UUID) (*types.Job, error) {
	job, err := scanJob(db.pool.QueryRow(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	return job, nil
}

// ListPaidJobs returns every paid posting, newest first.
func (db *DB) ListPaidJobs(ctx context.Context) ([]types.Job, error) {
	return db.listJobs(ctx, `SELECT `+jobColumns+` FROM jobs WHERE is_paid ORDER BY created_at DESC`)
}

// ListJobsByRecruiter returns the postings owned by a recruiter, paid or not.
func (db *DB) ListJobsByRecruiter(ctx context.Context, recruiterID uuid.UUID) ([]types.Job, error) {
	return db.listJobs(ctx, `SELECT `+jobColumns+` FROM jobs WHERE recruiter_id = $1 ORDER BY created_at DESC`, recruiterID)
}

func (db *DB) listJobs(ctx context.Context, query string, args ...any) ([]types.Job, error) {
	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	defer rows.Close()

	jobs := []types.Job{}
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan job: %w", err)
		}
		jobs = append(jobs, *job)
	}
	return jobs, rows.Err()
}

// DeleteJob removes a posting and, by cascade, its applications.
func (db *DB) DeleteJob(ctx context.Context, id uuid.UUID) error {
	tag, err := db.pool.Exec(ctx, `DELETE FROM jobs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete job: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
