//nolint:revive // types is a standard Go package name pattern
package types

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Difficulty tags a coding question.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// DefaultTestConfig is used when a job carries no difficulty profile.
var DefaultTestConfig = []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard}

// Job is a posting owned by a recruiter. The screening core only reads
// AIInterviewEnabled, TestConfig, Title and Skills.
type Job struct {
	ID                 uuid.UUID    `json:"id"`
	RecruiterID        uuid.UUID    `json:"recruiter_id"`
	Title              string       `json:"title"`
	Company            string       `json:"company"`
	Location           string       `json:"location"`
	Description        string       `json:"description"`
	Salary             string       `json:"salary"`
	Deadline           time.Time    `json:"deadline"`
	Skills             []string     `json:"skills"`
	WalletAddress      string       `json:"wallet_address"`
	TxHash             string       `json:"tx_hash,omitempty"`
	IsPaid             bool         `json:"is_paid"`
	AIInterviewEnabled bool         `json:"ai_interview_enabled"`
	TestConfig         []Difficulty `json:"test_config"`
	CreatedAt          time.Time    `json:"created_at"`
}

// DifficultyProfile returns the job's test config, or the default profile
// when none was configured.
func (j *Job) DifficultyProfile() []Difficulty {
	if len(j.TestConfig) == 0 {
		return DefaultTestConfig
	}
	return j.TestConfig
}

// CreateJobRequest represents a new posting. A non-empty TxHash marks the
// posting as paid.
type CreateJobRequest struct {
	Title              string       `json:"title" validate:"required,max=200"`
	Company            string       `json:"company" validate:"required,max=200"`
	Location           string       `json:"location" validate:"required,max=200"`
	Description        string       `json:"description" validate:"required"`
	Salary             string       `json:"salary" validate:"required,max=100"`
	Deadline           time.Time    `json:"deadline" validate:"required"`
	Skills             []string     `json:"skills" validate:"omitempty,max=50,dive,required"`
	WalletAddress      string       `json:"wallet_address" validate:"required,max=128"`
	TxHash             string       `json:"tx_hash,omitempty" validate:"omitempty,max=128"`
	AIInterviewEnabled bool         `json:"ai_interview_enabled"`
	TestConfig         []Difficulty `json:"test_config" validate:"omitempty,max=10,dive,oneof=easy medium hard"`
}

// Validate validates the CreateJobRequest using the validator.
func (r *CreateJobRequest) Validate() error {
	return validator.New().Struct(r)
}
