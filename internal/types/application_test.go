//nolint:revive // types is a standard Go package name pattern
package types

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateStatusRequest_Validation(t *testing.T) {
	for _, s := range []string{"Applied", "ATS", "HR", "Manager", "Hired", "Rejected"} {
		t.Run(s, func(t *testing.T) {
			assert.NoError(t, (&UpdateStatusRequest{Status: s}).Validate())
		})
	}

	for _, s := range []string{"", "hired", "Offer", "Interview"} {
		t.Run("invalid "+s, func(t *testing.T) {
			assert.Error(t, (&UpdateStatusRequest{Status: s}).Validate())
		})
	}
}

func TestStartScreeningRequest_Validation(t *testing.T) {
	assert.NoError(t, (&StartScreeningRequest{JobID: "7f1f0a54-3a7e-4a52-9d0e-0a5c9a0ad2f1"}).Validate())

	err := (&StartScreeningRequest{JobID: "job-1"}).Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "uuid")
}

func TestCodeSubmissionRequest_Validation(t *testing.T) {
	assert.NoError(t, (&CodeSubmissionRequest{Code: "func main() {}"}).Validate())
	assert.Error(t, (&CodeSubmissionRequest{}).Validate())
}

func TestVoiceAnswerRequest_Validation(t *testing.T) {
	assert.NoError(t, (&VoiceAnswerRequest{}).Validate(), "empty transcript is a valid No answer")
	assert.NoError(t, (&VoiceAnswerRequest{Answer: "I led the migration."}).Validate())
	assert.Error(t, (&VoiceAnswerRequest{Answer: strings.Repeat("a", 20001)}).Validate())
}
