// Package evaluator implements the question sources and graders used by the
// screening orchestrator: a model-backed voice interviewer, a YAML coding
// question bank and a model-backed code judge.
package evaluator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/nexwork/nexwork/internal/llm"
	"github.com/nexwork/nexwork/internal/prompts"
	"github.com/nexwork/nexwork/internal/schemas"
	"github.com/nexwork/nexwork/internal/scoring"
)

// NoAnswer replaces transcripts too short to be an answer.
const NoAnswer = "No answer"

// minAnswerLength is the shortest transcript graded as given.
const minAnswerLength = 6

// ErrUnparseableVerdict is returned when a grader reply carries no digit.
var ErrUnparseableVerdict = errors.New("grader reply has no verdict")

// LLMVoiceSource writes voice interview questions for a job and grades the
// transcribed answers.
type LLMVoiceSource struct {
	client llm.Client
}

// NewLLMVoiceSource returns a voice source backed by client.
func NewLLMVoiceSource(client llm.Client) *LLMVoiceSource {
	return &LLMVoiceSource{client: client}
}

type voiceQuestions struct {
	Questions []string `json:"questions"`
}

// GenerateVoiceQuestions returns exactly scoring.VoiceQuestionCount questions
// for the job. Any model or schema failure is returned to the caller, which
// owns the fallback.
func (s *LLMVoiceSource) GenerateVoiceQuestions(ctx context.Context, jobTitle string, skills []string) ([]string, error) {
	prompt, err := prompts.Render(prompts.ScreeningFile, prompts.KeyVoiceQuestions, map[string]string{
		"JobTitle": jobTitle,
		"Skills":   skillList(skills),
		"Count":    strconv.Itoa(scoring.VoiceQuestionCount),
	})
	if err != nil {
		return nil, err
	}

	raw, err := s.client.GenerateJSON(ctx, prompt, llm.TierStandard)
	if err != nil {
		return nil, fmt.Errorf("generate voice questions: %w", err)
	}
	if err := schemas.ValidateJSONString(schemas.VoiceQuestions, raw); err != nil {
		return nil, err
	}

	var out voiceQuestions
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, fmt.Errorf("decode voice questions: %w", err)
	}
	return out.Questions[:scoring.VoiceQuestionCount], nil
}

// ScoreSpokenAnswer grades one transcript as 0 or 1.
func (s *LLMVoiceSource) ScoreSpokenAnswer(ctx context.Context, question, answer string) (int, error) {
	prompt, err := prompts.Render(prompts.ScreeningFile, prompts.KeyScoreSpokenAnswer, map[string]string{
		"Question": question,
		"Answer":   NormalizeTranscript(answer),
	})
	if err != nil {
		return 0, err
	}

	reply, err := s.client.GenerateContent(ctx, prompt, llm.TierLite)
	if err != nil {
		return 0, fmt.Errorf("score spoken answer: %w", err)
	}
	return parseVerdict(reply)
}

// NormalizeTranscript trims the transcript and replaces anything shorter than
// six characters with NoAnswer.
func NormalizeTranscript(answer string) string {
	answer = strings.TrimSpace(answer)
	if len([]rune(answer)) < minAnswerLength {
		return NoAnswer
	}
	return answer
}

func parseVerdict(reply string) (int, error) {
	d, ok := llm.FirstDigit(reply)
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnparseableVerdict, truncate(reply, 80))
	}
	if d == 1 {
		return 1, nil
	}
	return 0, nil
}

func skillList(skills []string) string {
	if len(skills) == 0 {
		return "general software engineering"
	}
	return strings.Join(skills, ", ")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
