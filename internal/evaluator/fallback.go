package evaluator

import (
	"context"
	"strings"

	"github.com/nexwork/nexwork/internal/types"
)

// FallbackVoiceQuestions is used when question generation fails so a session
// can always proceed.
var FallbackVoiceQuestions = []string{
	"Walk me through a project you are proud of and the part you owned.",
	"How do you approach debugging a problem you cannot reproduce locally?",
	"Explain the difference between a process and a thread.",
	"How would you design a URL shortener that handles heavy read traffic?",
	"Describe a time you disagreed with a technical decision and what you did about it.",
}

// StaticVoiceQuestions always returns FallbackVoiceQuestions. It stands in for
// the model-backed source when no API key is configured.
type StaticVoiceQuestions struct{}

// GenerateVoiceQuestions returns a copy of FallbackVoiceQuestions.
func (StaticVoiceQuestions) GenerateVoiceQuestions(context.Context, string, []string) ([]string, error) {
	return append([]string(nil), FallbackVoiceQuestions...), nil
}

// ScoreSpokenAnswer passes every answer that is not empty after normalisation.
func (StaticVoiceQuestions) ScoreSpokenAnswer(_ context.Context, _, answer string) (int, error) {
	if NormalizeTranscript(answer) == NoAnswer {
		return 0, nil
	}
	return 1, nil
}

// StaticCodeJudge passes every non-blank submission. It stands in for the
// model-backed judge when no API key is configured.
type StaticCodeJudge struct{}

// ScoreCode returns 1 for any submission containing non-space text.
func (StaticCodeJudge) ScoreCode(_ context.Context, _ types.CodingQuestion, code string) (int, error) {
	if strings.TrimSpace(code) == "" {
		return 0, nil
	}
	return 1, nil
}
