package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/nexwork/nexwork/internal/status"
	"github.com/nexwork/nexwork/internal/types"
)

const applicationColumns = `id, job_id, candidate_id, status, interview_score, created_at, updated_at`

func scanApplication(row pgx.Row) (*types.Application, error) {
	var a types.Application
	var s string
	if err := row.Scan(&a.ID, &a.JobID, &a.CandidateID, &s, &a.InterviewScore, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	a.Status = status.Status(s)
	return &a, nil
}

// FindOrCreateApplication returns the application for (jobID, candidateID),
// creating it with status Applied and score 0 when none exists. created
// reports whether a new row was inserted. Concurrent callers converge on one
// row through the unique constraint.
func (db *DB) FindOrCreateApplication(ctx context.Context, jobID uuid.UUID, candidateID string) (*types.Application, bool, error) {
	app, err := scanApplication(db.pool.QueryRow(ctx,
		`INSERT INTO applications (job_id, candidate_id, status, interview_score)
		 VALUES ($1, $2, $3, 0)
		 ON CONFLICT (job_id, candidate_id) DO NOTHING
		 RETURNING `+applicationColumns,
		jobID, candidateID, string(status.Applied),
	))
	if err == nil {
		return app, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, false, fmt.Errorf("failed to create application: %w", err)
	}

	app, err = scanApplication(db.pool.QueryRow(ctx,
		`SELECT `+applicationColumns+` FROM applications WHERE job_id = $1 AND candidate_id = $2`,
		jobID, candidateID,
	))
	if err != nil {
		return nil, false, fmt.Errorf("failed to find application: %w", err)
	}
	return app, false, nil
}

// GetApplication retrieves an application by ID. It returns ErrNotFound when
// the id is unknown.
func (db *DB) GetApplication(ctx context.Context, id uuid.UUID) (*types.Application, error) {
	app, err := scanApplication(db.pool.QueryRow(ctx,
		`SELECT `+applicationColumns+` FROM applications WHERE id = $1`, id,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get application: %w", err)
	}
	return app, nil
}

// GetStatus returns the current status of an application.
func (db *DB) GetStatus(ctx context.Context, id uuid.UUID) (status.Status, error) {
	app, err := db.GetApplication(ctx, id)
	if err != nil {
		return "", err
	}
	return app.Status, nil
}

// SetStatus overwrites the status and appends a history row in one
// transaction. It performs no transition validation; callers go through
// status.Engine for that.
func (db *DB) SetStatus(ctx context.Context, id uuid.UUID, s status.Status) error {
	_, err := db.setStatus(ctx, id, nil, s)
	return err
}

// SetStatusIf writes s only while the locked row still holds from, so a
// transition validated against a stale read is not applied.
func (db *DB) SetStatusIf(ctx context.Context, id uuid.UUID, from, s status.Status) (bool, error) {
	return db.setStatus(ctx, id, &from, s)
}

func (db *DB) setStatus(ctx context.Context, id uuid.UUID, expected *status.Status, s status.Status) (bool, error) {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var from string
	err = tx.QueryRow(ctx,
		`SELECT status FROM applications WHERE id = $1 FOR UPDATE`, id,
	).Scan(&from)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, ErrNotFound
		}
		return false, fmt.Errorf("failed to lock application: %w", err)
	}
	if expected != nil && status.Status(from) != *expected {
		return false, nil
	}

	if _, err := tx.Exec(ctx,
		`UPDATE applications SET status = $1, updated_at = NOW() WHERE id = $2`,
		string(s), id,
	); err != nil {
		return false, fmt.Errorf("failed to update status: %w", err)
	}
	if _, err := tx.Exec(ctx,
		`INSERT INTO application_history (application_id, from_status, to_status) VALUES ($1, $2, $3)`,
		id, from, string(s),
	); err != nil {
		return false, fmt.Errorf("failed to record history: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("failed to commit status: %w", err)
	}
	return true, nil
}

// SetInterviewScore overwrites the interview score.
func (db *DB) SetInterviewScore(ctx context.Context, id uuid.UUID, score int) error {
	tag, err := db.pool.Exec(ctx,
		`UPDATE applications SET interview_score = $1, updated_at = NOW() WHERE id = $2`,
		score, id,
	)
	if err != nil {
		return fmt.Errorf("failed to set interview score: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteApplication removes an application and its history.
func (db *DB) DeleteApplication(ctx context.Context, id uuid.UUID) error {
	tag, err := db.pool.Exec(ctx, `DELETE FROM applications WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete application: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListApplicationsByCandidate returns a candidate's applications, newest first.
func (db *DB) ListApplicationsByCandidate(ctx context.Context, candidateID string) ([]types.Application, error) {
	return db.listApplications(ctx,
		`SELECT `+applicationColumns+` FROM applications WHERE candidate_id = $1 ORDER BY created_at DESC`,
		candidateID)
}

// ListApplicationsByJob returns every application to a job, newest first.
func (db *DB) ListApplicationsByJob(ctx context.Context, jobID uuid.UUID) ([]types.Application, error) {
	return db.listApplications(ctx,
		`SELECT `+applicationColumns+` FROM applications WHERE job_id = $1 ORDER BY created_at DESC`,
		jobID)
}

func (db *DB) listApplications(ctx context.Context, query string, arg any) ([]types.Application, error) {
	rows, err := db.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	defer rows.Close()

	apps := []types.Application{}
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan application: %w", err)
		}
		apps = append(apps, *app)
	}
	return apps, rows.Err()
}

// ApplicationHistory returns the recorded status changes in the order they
// were applied.
func (db *DB) ApplicationHistory(ctx context.Context, id uuid.UUID) ([]types.HistoryEntry, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT from_status, to_status, changed_at FROM application_history
		 WHERE application_id = $1 ORDER BY id`, id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get history: %w", err)
	}
	defer rows.Close()

	entries := []types.HistoryEntry{}
	for rows.Next() {
		var from, to string
		var e types.HistoryEntry
		if err := rows.Scan(&from, &to, &e.At); err != nil {
			return nil, fmt.Errorf("failed to scan history: %w", err)
		}
		e.From, e.To = status.Status(from), status.Status(to)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
