// Package screening drives a candidate's automated screening for a job: a
// voice round followed by a coding round, each ending in a status
// transition through the status engine.
package screening

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/nexwork/nexwork/internal/evaluator"
	"github.com/nexwork/nexwork/internal/scoring"
	"github.com/nexwork/nexwork/internal/status"
	"github.com/nexwork/nexwork/internal/types"
)

const actorScreening = "screening"

var (
	// ErrSessionNotFound is returned for an unknown session id or one owned by
	// another candidate.
	ErrSessionNotFound = errors.New("screening session not found")
	// ErrWrongPhase is returned when a submission does not match the
	// session's current phase.
	ErrWrongPhase = errors.New("submission does not match the session phase")
	// ErrForbidden is returned when a recruiter acts on another recruiter's job.
	ErrForbidden = errors.New("job belongs to another recruiter")
	// ErrCodingTestUnavailable is returned when no coding questions could be
	// loaded, not even for the default profile. The session stays in the
	// coding phase and the next submission retries.
	ErrCodingTestUnavailable = errors.New("coding test unavailable")
)

// ApplicationStore is the slice of the application store the orchestrator needs.
type ApplicationStore interface {
	FindOrCreateApplication(ctx context.Context, jobID uuid.UUID, candidateID string) (*types.Application, bool, error)
	GetApplication(ctx context.Context, id uuid.UUID) (*types.Application, error)
	SetInterviewScore(ctx context.Context, id uuid.UUID, score int) error
	DeleteApplication(ctx context.Context, id uuid.UUID) error
}

// JobReader gives read-only access to job postings.
type JobReader interface {
	GetJob(ctx context.Context, id uuid.UUID) (*types.Job, error)
}

// VoiceQuestionSource writes and grades voice interview questions.
type VoiceQuestionSource interface {
	GenerateVoiceQuestions(ctx context.Context, jobTitle string, skills []string) ([]string, error)
	ScoreSpokenAnswer(ctx context.Context, question, answer string) (int, error)
}

// CodingTestSource picks and grades coding questions.
type CodingTestSource interface {
	GetTest(ctx context.Context, profile []types.Difficulty) ([]types.CodingQuestion, error)
	ScoreCode(ctx context.Context, q types.CodingQuestion, code string) (int, error)
}

// Options configures an Orchestrator. Every field is required.
type Options struct {
	Applications ApplicationStore
	Jobs         JobReader
	Engine       *status.Engine
	Voice        VoiceQuestionSource
	Coding       CodingTestSource
	Sessions     *SessionRegistry
}

// Orchestrator runs screening sessions. Sessions of different candidates
// share nothing but the registry; submissions to one session are serialised
// by the session's own lock.
type Orchestrator struct {
	apps     ApplicationStore
	jobs     JobReader
	engine   *status.Engine
	voice    VoiceQuestionSource
	coding   CodingTestSource
	sessions *SessionRegistry
	now      func() time.Time
}

// New returns an Orchestrator.
func New(opts Options) *Orchestrator {
	return &Orchestrator{
		apps:     opts.Applications,
		jobs:     opts.Jobs,
		engine:   opts.Engine,
		voice:    opts.Voice,
		coding:   opts.Coding,
		sessions: opts.Sessions,
		now:      time.Now,
	}
}

// Start opens a screening session for (jobID, candidateID). The application
// is found or created first. Jobs with AI interviews disabled return a
// bypassed view and call no evaluator. Applications already past Applied
// return a closed view. A candidate with a live session gets that session
// back instead of a new one.
func (o *Orchestrator) Start(ctx context.Context, jobID uuid.UUID, candidateID string) (*View, error) {
	job, err := o.jobs.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	app, _, err := o.apps.FindOrCreateApplication(ctx, jobID, candidateID)
	if err != nil {
		return nil, fmt.Errorf("find or create application: %w", err)
	}

	if !job.AIInterviewEnabled {
		return staticView(app, PhaseBypassed), nil
	}
	if existing, ok := o.sessions.ForApplication(app.ID); ok {
		if v := o.resume(existing); v != nil {
			return v, nil
		}
	}
	if app.Status != status.Applied {
		return staticView(app, PhaseClosed), nil
	}

	sess := &Session{
		ID:            uuid.New(),
		ApplicationID: app.ID,
		JobID:         jobID,
		CandidateID:   candidateID,
		phase:         PhaseVoice,
		status:        app.Status,
		profile:       job.DifficultyProfile(),
	}

	questions, err := o.voice.GenerateVoiceQuestions(ctx, job.Title, job.Skills)
	if err == nil && len(questions) < scoring.VoiceQuestionCount {
		err = fmt.Errorf("got %d questions, need %d", len(questions), scoring.VoiceQuestionCount)
	}
	if err != nil {
		o.recordFailure(sess, "voice_questions", 0, err)
		questions = evaluator.FallbackVoiceQuestions
	}
	sess.voiceQuestions = append([]string(nil), questions[:scoring.VoiceQuestionCount]...)

	if existing, ok := o.sessions.PutIfAbsent(sess); !ok {
		if v := o.resume(existing); v != nil {
			return v, nil
		}
		o.sessions.Put(sess)
	}
	slog.Info("screening started", "session_id", sess.ID, "application_id", app.ID, "job_id", jobID)

	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.view(), nil
}

// Get returns the current view of a session owned by candidateID.
func (o *Orchestrator) Get(sessionID uuid.UUID, candidateID string) (*View, error) {
	sess, err := o.lookup(sessionID, candidateID)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.view(), nil
}

// SubmitVoiceAnswer grades the answer to the current voice question. After
// the last question the voice round is scored: a pass moves the application
// to ATS and opens the coding round, a fail rejects it.
func (o *Orchestrator) SubmitVoiceAnswer(ctx context.Context, sessionID uuid.UUID, candidateID, answer string) (*View, error) {
	sess, err := o.lookup(sessionID, candidateID)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.touch(o.now())

	if sess.phase != PhaseVoice {
		return sess.view(), ErrWrongPhase
	}

	idx := len(sess.voiceScores)
	score, err := o.voice.ScoreSpokenAnswer(ctx, sess.voiceQuestions[idx], answer)
	if err != nil {
		o.recordFailure(sess, "voice_score", idx, err)
		score = 1
	}
	sess.voiceScores = append(sess.voiceScores, scoring.Normalize(score))

	if len(sess.voiceScores) < len(sess.voiceQuestions) {
		return sess.view(), nil
	}

	if !scoring.VoicePassed(sess.voiceScores) {
		return o.finish(ctx, sess, status.Rejected)
	}
	if err := o.transition(ctx, sess, status.ATS); err != nil {
		return sess.view(), err
	}
	sess.phase = PhaseCoding
	if err := o.ensureCodingTest(ctx, sess); err != nil {
		return sess.view(), err
	}
	return sess.view(), nil
}

// SubmitCode grades the code for the current coding question. After the
// last question the interview score is recorded and the application moves
// to HR on a pass or to Rejected on a fail.
func (o *Orchestrator) SubmitCode(ctx context.Context, sessionID uuid.UUID, candidateID, code string) (*View, error) {
	sess, err := o.lookup(sessionID, candidateID)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.touch(o.now())

	if sess.phase != PhaseCoding {
		return sess.view(), ErrWrongPhase
	}
	if err := o.ensureCodingTest(ctx, sess); err != nil {
		return sess.view(), err
	}

	if idx := len(sess.codingScores); idx < len(sess.codingQuestions) {
		score, err := o.coding.ScoreCode(ctx, sess.codingQuestions[idx], code)
		if err != nil {
			o.recordFailure(sess, "code_score", idx, err)
			score = 1
		}
		sess.codingScores = append(sess.codingScores, scoring.Normalize(score))

		if len(sess.codingScores) < len(sess.codingQuestions) {
			return sess.view(), nil
		}
	}

	// Every answer is graded. Reaching here again means the score write
	// failed last time; only the write and the transition are retried.
	sess.interviewScore = scoring.InterviewScore(sess.codingScores)
	if err := o.apps.SetInterviewScore(ctx, sess.ApplicationID, sess.interviewScore); err != nil {
		return sess.view(), fmt.Errorf("set interview score: %w", err)
	}
	if scoring.CodingPassed(sess.codingScores) {
		return o.finish(ctx, sess, status.HR)
	}
	return o.finish(ctx, sess, status.Rejected)
}

// RecruiterTransition applies a manual stage change on behalf of the
// recruiter owning the application's job. The same state machine rule as
// automated screening applies. A live session for the application is closed
// when the change succeeds.
func (o *Orchestrator) RecruiterTransition(ctx context.Context, recruiterID, applicationID uuid.UUID, requested status.Status) (*types.Application, error) {
	app, err := o.apps.GetApplication(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	job, err := o.jobs.GetJob(ctx, app.JobID)
	if err != nil {
		return nil, err
	}
	if job.RecruiterID != recruiterID {
		return nil, ErrForbidden
	}

	change, err := o.engine.Transition(ctx, applicationID, requested, "recruiter:"+recruiterID.String())
	if err != nil {
		return nil, err
	}
	app.Status = change.To
	app.UpdatedAt = change.At

	if sess, ok := o.sessions.ForApplication(applicationID); ok {
		sess.mu.Lock()
		if sess.active() {
			sess.phase = PhaseClosed
			sess.status = change.To
		}
		sess.mu.Unlock()
	}
	return app, nil
}

// DeleteApplication removes an application on behalf of the recruiter owning
// its job. A live session for it is dropped so later submissions report
// ErrSessionNotFound.
func (o *Orchestrator) DeleteApplication(ctx context.Context, recruiterID, applicationID uuid.UUID) error {
	app, err := o.apps.GetApplication(ctx, applicationID)
	if err != nil {
		return err
	}
	job, err := o.jobs.GetJob(ctx, app.JobID)
	if err != nil {
		return err
	}
	if job.RecruiterID != recruiterID {
		return ErrForbidden
	}

	if err := o.apps.DeleteApplication(ctx, applicationID); err != nil {
		return err
	}
	if sess, ok := o.sessions.ForApplication(applicationID); ok {
		o.sessions.Remove(sess.ID)
	}
	slog.Info("application deleted", "application_id", applicationID, "recruiter_id", recruiterID)
	return nil
}

// resume returns the view of a live session, or nil when it has ended.
func (o *Orchestrator) resume(sess *Session) *View {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if !sess.active() {
		return nil
	}
	sess.touch(o.now())
	return sess.view()
}

func (o *Orchestrator) lookup(sessionID uuid.UUID, candidateID string) (*Session, error) {
	sess, ok := o.sessions.Get(sessionID)
	if !ok || sess.CandidateID != candidateID {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

// ensureCodingTest loads the coding questions once. A failure for the job's
// profile falls back to the default profile.
func (o *Orchestrator) ensureCodingTest(ctx context.Context, sess *Session) error {
	if len(sess.codingQuestions) > 0 {
		return nil
	}
	questions, err := o.coding.GetTest(ctx, sess.profile)
	if err != nil || len(questions) == 0 {
		if err == nil {
			err = errors.New("empty coding test")
		}
		o.recordFailure(sess, "coding_test", 0, err)
		questions, err = o.coding.GetTest(ctx, types.DefaultTestConfig)
	}
	if err != nil || len(questions) == 0 {
		return ErrCodingTestUnavailable
	}
	sess.codingQuestions = questions
	return nil
}

// transition must be called with sess.mu held. A failed transition closes
// the session: the application moved under it, most likely by a recruiter.
func (o *Orchestrator) transition(ctx context.Context, sess *Session, to status.Status) error {
	change, err := o.engine.Transition(ctx, sess.ApplicationID, to, actorScreening)
	if err != nil {
		sess.phase = PhaseClosed
		if app, getErr := o.apps.GetApplication(ctx, sess.ApplicationID); getErr == nil {
			sess.status = app.Status
		}
		return err
	}
	sess.status = change.To
	return nil
}

func (o *Orchestrator) finish(ctx context.Context, sess *Session, to status.Status) (*View, error) {
	if err := o.transition(ctx, sess, to); err != nil {
		return sess.view(), err
	}
	sess.phase = PhaseCompleted
	slog.Info("screening finished",
		"session_id", sess.ID,
		"application_id", sess.ApplicationID,
		"status", sess.status,
		"voice_score", scoring.Sum(sess.voiceScores),
		"coding_score", scoring.Sum(sess.codingScores),
		"failures", len(sess.failures))
	return sess.view(), nil
}

func (o *Orchestrator) recordFailure(sess *Session, stage string, index int, err error) {
	sess.failures = append(sess.failures, Failure{
		Stage: stage,
		Index: index,
		Err:   err.Error(),
		At:    o.now().UTC(),
	})
	slog.Warn("evaluator failed, using fallback",
		"session_id", sess.ID,
		"application_id", sess.ApplicationID,
		"stage", stage,
		"index", index,
		"err", err)
}

func staticView(app *types.Application, phase Phase) *View {
	return &View{
		ApplicationID:  app.ID,
		JobID:          app.JobID,
		Phase:          phase,
		Status:         app.Status,
		InterviewScore: app.InterviewScore,
	}
}
