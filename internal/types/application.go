//nolint:revive // types is a standard Go package name pattern
package types

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/nexwork/nexwork/internal/status"
)

// Application is one candidate's pipeline record for one job.
type Application struct {
	ID             uuid.UUID     `json:"id"`
	JobID          uuid.UUID     `json:"job_id"`
	CandidateID    string        `json:"candidate_id"`
	Status         status.Status `json:"status"`
	InterviewScore int           `json:"interview_score"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

// HistoryEntry is one recorded status change.
type HistoryEntry struct {
	From status.Status `json:"from"`
	To   status.Status `json:"to"`
	At   time.Time     `json:"at"`
}

// UpdateStatusRequest is the recruiter's manual stage change.
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=Applied ATS HR Manager Hired Rejected"`
}

// StartScreeningRequest opens a screening session for the caller.
type StartScreeningRequest struct {
	JobID string `json:"job_id" validate:"required,uuid"`
}

// VoiceAnswerRequest carries the transcript of one spoken answer. An empty
// transcript is allowed and scored as "No answer".
type VoiceAnswerRequest struct {
	Answer string `json:"answer" validate:"max=20000"`
}

// CodeSubmissionRequest carries the code for the current coding question.
type CodeSubmissionRequest struct {
	Code string `json:"code" validate:"required,max=100000"`
}

// Validate validates the UpdateStatusRequest using the validator.
func (r *UpdateStatusRequest) Validate() error {
	return validator.New().Struct(r)
}

// Validate validates the StartScreeningRequest using the validator.
func (r *StartScreeningRequest) Validate() error {
	return validator.New().Struct(r)
}

// Validate validates the VoiceAnswerRequest using the validator.
func (r *VoiceAnswerRequest) Validate() error {
	return validator.New().Struct(r)
}

// Validate validates the CodeSubmissionRequest using the validator.
func (r *CodeSubmissionRequest) Validate() error {
	return validator.New().Struct(r)
}
