package observability

import (
	"bytes"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"

	"github.com/nexwork/nexwork/internal/screening"
	"github.com/nexwork/nexwork/internal/status"
	"github.com/nexwork/nexwork/internal/types"
)

func TestPrintJob(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintJob(&types.Job{
		Title:              "Backend Engineer",
		Company:            "Acme Corp",
		Skills:             []string{"Go", "SQL", "Redis", "Kafka", "gRPC", "Docker", "K8s"},
		AIInterviewEnabled: true,
	})
	output := buf.String()

	assert.Contains(t, output, "JOB")
	assert.Contains(t, output, "Backend Engineer")
	assert.Contains(t, output, "Acme Corp")
	assert.Contains(t, output, "• gRPC")
	assert.NotContains(t, output, "• Docker")
	assert.Contains(t, output, "... and 2 more")
	assert.Contains(t, output, "Coding test: easy, medium, hard")
	assert.NotContains(t, output, "disabled")
}

func TestPrintJob_Nil(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintJob(nil)
	assert.Empty(t, buf.String())
}

func TestPrintQuestion(t *testing.T) {
	t.Run("voice", func(t *testing.T) {
		var buf bytes.Buffer
		NewPrinter(&buf).PrintQuestion(&screening.View{
			Phase:         screening.PhaseVoice,
			QuestionIndex: 1,
			QuestionCount: 5,
			VoiceQuestion: "How do you approach debugging?",
		})
		assert.Contains(t, buf.String(), "VOICE QUESTION 2/5")
		assert.Contains(t, buf.String(), "How do you approach debugging?")
	})

	t.Run("coding", func(t *testing.T) {
		var buf bytes.Buffer
		NewPrinter(&buf).PrintQuestion(&screening.View{
			Phase:         screening.PhaseCoding,
			QuestionCount: 3,
			CodingQuestion: &types.CodingQuestion{
				Title:       "Two Sum",
				Description: "Return indices of two numbers adding to target.",
				StarterCode: "func twoSum(nums []int, target int) []int {\n}\n",
				Difficulty:  types.DifficultyEasy,
			},
		})
		out := buf.String()
		assert.Contains(t, out, "CODING QUESTION 1/3 (easy)")
		assert.Contains(t, out, "Two Sum")
		assert.Contains(t, out, "func twoSum")
	})

	t.Run("finished sessions print nothing", func(t *testing.T) {
		var buf bytes.Buffer
		NewPrinter(&buf).PrintQuestion(&screening.View{Phase: screening.PhaseCompleted})
		assert.Empty(t, buf.String())
	})
}

func TestPrintResult(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintResult(&screening.View{
		Phase:          screening.PhaseCompleted,
		Status:         status.HR,
		VoiceScore:     4,
		CodingScore:    2,
		InterviewScore: 67,
		Failures:       []screening.Failure{{Stage: "voice", Index: 2, Err: "model timeout"}},
	})
	out := buf.String()

	assert.Contains(t, out, "SCREENING RESULT")
	assert.Contains(t, out, "Status:           HR")
	assert.Contains(t, out, "Voice score:      4/5 (pass at 3)")
	assert.Contains(t, out, "Interview score:  67")
	assert.Contains(t, out, "voice #3: model timeout")
}

func TestPrintResult_VoiceRejected(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintResult(&screening.View{
		Phase:      screening.PhaseCompleted,
		Status:     status.Rejected,
		VoiceScore: 2,
	})
	out := buf.String()
	assert.Contains(t, out, "Rejected")
	assert.NotContains(t, out, "Interview score")
}

func TestWrap(t *testing.T) {
	long := strings.Repeat("word ", 30)
	for _, line := range wrap(long, 20) {
		assert.LessOrEqual(t, utf8.RuneCountInString(line), 20)
	}
	assert.Equal(t, []string{"a", "b"}, wrap("a\nb", 10))
	assert.Equal(t, []string{"abcdefghij", "klm"}, wrap("abcdefghijklm", 10))
}
