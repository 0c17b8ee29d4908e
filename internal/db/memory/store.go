// Package memory is an in-process implementation of the application, job and
// user store. It backs local runs without PostgreSQL and the handler tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nexwork/nexwork/internal/db"
	"github.com/nexwork/nexwork/internal/status"
	"github.com/nexwork/nexwork/internal/types"
)

type appKey struct {
	jobID       uuid.UUID
	candidateID string
}

// Store keeps every record in maps guarded by one mutex.
type Store struct {
	mu      sync.RWMutex
	now     func() time.Time
	apps    map[uuid.UUID]*types.Application
	byKey   map[appKey]uuid.UUID
	history map[uuid.UUID][]types.HistoryEntry
	jobs    map[uuid.UUID]*types.Job
	users   map[uuid.UUID]*db.UserRecord
	emails  map[string]uuid.UUID
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		now:     time.Now,
		apps:    make(map[uuid.UUID]*types.Application),
		byKey:   make(map[appKey]uuid.UUID),
		history: make(map[uuid.UUID][]types.HistoryEntry),
		jobs:    make(map[uuid.UUID]*types.Job),
		users:   make(map[uuid.UUID]*db.UserRecord),
		emails:  make(map[string]uuid.UUID),
	}
}

// Ping always succeeds.
func (s *Store) Ping(context.Context) error { return nil }

// Close is a no-op.
func (s *Store) Close() {}

// FindOrCreateApplication mirrors db.DB.FindOrCreateApplication.
func (s *Store) FindOrCreateApplication(_ context.Context, jobID uuid.UUID, candidateID string) (*types.Application, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := appKey{jobID, candidateID}
	if id, ok := s.byKey[key]; ok {
		app := *s.apps[id]
		return &app, false, nil
	}
	now := s.now().UTC()
	app := &types.Application{
		ID:          uuid.New(),
		JobID:       jobID,
		CandidateID: candidateID,
		Status:      status.Applied,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.apps[app.ID] = app
	s.byKey[key] = app.ID
	out := *app
	return &out, true, nil
}

// GetApplication returns a copy of the stored application.
func (s *Store) GetApplication(_ context.Context, id uuid.UUID) (*types.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	app, ok := s.apps[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	out := *app
	return &out, nil
}

// GetStatus returns the current status of an application.
func (s *Store) GetStatus(ctx context.Context, id uuid.UUID) (status.Status, error) {
	app, err := s.GetApplication(ctx, id)
	if err != nil {
		return "", err
	}
	return app.Status, nil
}

// SetStatus overwrites the status and appends a history entry.
func (s *Store) SetStatus(_ context.Context, id uuid.UUID, to status.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	app, ok := s.apps[id]
	if !ok {
		return db.ErrNotFound
	}
	s.setStatus(app, to)
	return nil
}

// SetStatusIf writes to only while the stored status is from.
func (s *Store) SetStatusIf(_ context.Context, id uuid.UUID, from, to status.Status) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	app, ok := s.apps[id]
	if !ok {
		return false, db.ErrNotFound
	}
	if app.Status != from {
		return false, nil
	}
	s.setStatus(app, to)
	return true, nil
}

// setStatus must be called with s.mu held.
func (s *Store) setStatus(app *types.Application, to status.Status) {
	now := s.now().UTC()
	s.history[app.ID] = append(s.history[app.ID], types.HistoryEntry{From: app.Status, To: to, At: now})
	app.Status = to
	app.UpdatedAt = now
}

// SetInterviewScore overwrites the interview score.
func (s *Store) SetInterviewScore(_ context.Context, id uuid.UUID, score int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	app, ok := s.apps[id]
	if !ok {
		return db.ErrNotFound
	}
	app.InterviewScore = score
	app.UpdatedAt = s.now().UTC()
	return nil
}

// DeleteApplication removes an application and its history.
func (s *Store) DeleteApplication(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	app, ok := s.apps[id]
	if !ok {
		return db.ErrNotFound
	}
	delete(s.byKey, appKey{app.JobID, app.CandidateID})
	delete(s.apps, id)
	delete(s.history, id)
	return nil
}

// ListApplicationsByCandidate returns a candidate's applications, newest first.
func (s *Store) ListApplicationsByCandidate(_ context.Context, candidateID string) ([]types.Application, error) {
	return s.filterApplications(func(a *types.Application) bool { return a.CandidateID == candidateID }), nil
}

// ListApplicationsByJob returns every application to a job, newest first.
func (s *Store) ListApplicationsByJob(_ context.Context, jobID uuid.UUID) ([]types.Application, error) {
	return s.filterApplications(func(a *types.Application) bool { return a.JobID == jobID }), nil
}

func (s *Store) filterApplications(keep func(*types.Application) bool) []types.Application {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []types.Application{}
	for _, a := range s.apps {
		if keep(a) {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

// ApplicationHistory returns the recorded status changes in order.
func (s *Store) ApplicationHistory(_ context.Context, id uuid.UUID) ([]types.HistoryEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]types.HistoryEntry{}, s.history[id]...), nil
}

// CreateJob stores a posting owned by recruiterID.
func (s *Store) CreateJob(_ context.Context, recruiterID uuid.UUID, req *types.CreateJobRequest) (*types.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job := &types.Job{
		ID:                 uuid.New(),
		RecruiterID:        recruiterID,
		Title:              req.Title,
		Company:            req.Company,
		Location:           req.Location,
		Description:        req.Description,
		Salary:             req.Salary,
		Deadline:           req.Deadline,
		Skills:             append([]string{}, req.Skills...),
		WalletAddress:      req.WalletAddress,
		TxHash:             req.TxHash,
		IsPaid:             req.TxHash != "",
		AIInterviewEnabled: req.AIInterviewEnabled,
		TestConfig:         append([]types.Difficulty{}, req.TestConfig...),
		CreatedAt:          s.now().UTC(),
	}
	s.jobs[job.ID] = job
	out := *job
	return &out, nil
}

// GetJob returns a copy of the stored posting.
func (s *Store) GetJob(_ context.Context, id uuid.UUID) (*types.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, ok := s.jobs[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	out := *job
	return &out, nil
}

// ListPaidJobs returns every paid posting, newest first.
func (s *Store) ListPaidJobs(context.Context) ([]types.Job, error) {
	return s.filterJobs(func(j *types.Job) bool { return j.IsPaid }), nil
}

// ListJobsByRecruiter returns the postings owned by a recruiter, newest first.
func (s *Store) ListJobsByRecruiter(_ context.Context, recruiterID uuid.UUID) ([]types.Job, error) {
	return s.filterJobs(func(j *types.Job) bool { return j.RecruiterID == recruiterID }), nil
}

func (s *Store) filterJobs(keep func(*types.Job) bool) []types.Job {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []types.Job{}
	for _, j := range s.jobs {
		if keep(j) {
			out = append(out, *j)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

// DeleteJob removes a posting and its applications.
func (s *Store) DeleteJob(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.jobs[id]; !ok {
		return db.ErrNotFound
	}
	delete(s.jobs, id)
	for key, appID := range s.byKey {
		if key.jobID == id {
			delete(s.byKey, key)
			delete(s.apps, appID)
			delete(s.history, appID)
		}
	}
	return nil
}

// CreateUser stores an account. Emails are compared case-insensitively.
func (s *Store) CreateUser(_ context.Context, req *types.RegisterRequest, passwordHash string) (*db.UserRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	email := strings.ToLower(req.Email)
	if _, ok := s.emails[email]; ok {
		return nil, db.ErrDuplicateEmail
	}
	u := &db.UserRecord{
		User: types.User{
			ID:            uuid.New(),
			Name:          req.Name,
			Email:         req.Email,
			Role:          req.Role,
			WalletAddress: req.WalletAddress,
			Skills:        append([]string{}, req.Skills...),
			CreatedAt:     s.now().UTC(),
		},
		PasswordHash: passwordHash,
	}
	s.users[u.ID] = u
	s.emails[email] = u.ID
	out := *u
	return &out, nil
}

// GetUser returns a stored account by ID.
func (s *Store) GetUser(_ context.Context, id uuid.UUID) (*db.UserRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	out := *u
	return &out, nil
}

// GetUserByEmail returns a stored account by email.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*db.UserRecord, error) {
	s.mu.RLock()
	id, ok := s.emails[strings.ToLower(email)]
	s.mu.RUnlock()
	if !ok {
		return nil, db.ErrNotFound
	}
	return s.GetUser(ctx, id)
}
