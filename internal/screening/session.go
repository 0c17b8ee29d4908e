package screening

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/nexwork/nexwork/internal/scoring"
	"github.com/nexwork/nexwork/internal/status"
	"github.com/nexwork/nexwork/internal/types"
)

// Phase is the stage a screening session is in.
type Phase string

const (
	// PhaseVoice waits for spoken answers.
	PhaseVoice Phase = "voice"
	// PhaseCoding waits for code submissions.
	PhaseCoding Phase = "coding"
	// PhaseCompleted means the session produced a final status.
	PhaseCompleted Phase = "completed"
	// PhaseBypassed means the job has AI interviews disabled.
	PhaseBypassed Phase = "bypassed"
	// PhaseClosed means the application is no longer screenable.
	PhaseClosed Phase = "closed"
)

// Failure records an evaluator call that was masked by a fallback.
type Failure struct {
	Stage string    `json:"stage"`
	Index int       `json:"index"`
	Err   string    `json:"error"`
	At    time.Time `json:"at"`
}

// Session is the ephemeral state of one screening run. Only the
// application's status and interview score are durable.
type Session struct {
	ID            uuid.UUID
	ApplicationID uuid.UUID
	JobID         uuid.UUID
	CandidateID   string

	mu              sync.Mutex
	phase           Phase
	status          status.Status
	profile         []types.Difficulty
	voiceQuestions  []string
	voiceScores     []int
	codingQuestions []types.CodingQuestion
	codingScores    []int
	interviewScore  int
	failures        []Failure
	lastActive      atomic.Int64
}

func (s *Session) touch(now time.Time) {
	s.lastActive.Store(now.UnixNano())
}

func (s *Session) idleSince() time.Time {
	return time.Unix(0, s.lastActive.Load())
}

func (s *Session) active() bool {
	return s.phase == PhaseVoice || s.phase == PhaseCoding
}

// View is the caller-facing snapshot of a session.
type View struct {
	SessionID      uuid.UUID             `json:"session_id"`
	ApplicationID  uuid.UUID             `json:"application_id"`
	JobID          uuid.UUID             `json:"job_id"`
	Phase          Phase                 `json:"phase"`
	Status         status.Status         `json:"status"`
	QuestionIndex  int                   `json:"question_index"`
	QuestionCount  int                   `json:"question_count"`
	VoiceQuestion  string                `json:"voice_question,omitempty"`
	CodingQuestion *types.CodingQuestion `json:"coding_question,omitempty"`
	VoiceScore     int                   `json:"voice_score"`
	CodingScore    int                   `json:"coding_score"`
	InterviewScore int                   `json:"interview_score"`
	Failures       []Failure             `json:"failures,omitempty"`
}

// view must be called with s.mu held.
func (s *Session) view() *View {
	v := &View{
		SessionID:      s.ID,
		ApplicationID:  s.ApplicationID,
		JobID:          s.JobID,
		Phase:          s.phase,
		Status:         s.status,
		VoiceScore:     scoring.Sum(s.voiceScores),
		CodingScore:    scoring.Sum(s.codingScores),
		InterviewScore: s.interviewScore,
		Failures:       append([]Failure(nil), s.failures...),
	}
	switch s.phase {
	case PhaseVoice:
		v.QuestionIndex = len(s.voiceScores)
		v.QuestionCount = len(s.voiceQuestions)
		v.VoiceQuestion = s.voiceQuestions[v.QuestionIndex]
	case PhaseCoding:
		v.QuestionIndex = len(s.codingScores)
		v.QuestionCount = len(s.codingQuestions)
		if v.QuestionIndex < v.QuestionCount {
			q := s.codingQuestions[v.QuestionIndex]
			v.CodingQuestion = &q
		}
	}
	return v
}
