package evaluator

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexwork/nexwork/internal/llm"
	"github.com/nexwork/nexwork/internal/types"
)

func TestScoreCode(t *testing.T) {
	q := types.CodingQuestion{Title: "Two Sum", Description: "Find two numbers"}

	tests := []struct {
		name  string
		reply string
		want  int
	}{
		{name: "pass", reply: "1", want: 1},
		{name: "fail", reply: "0", want: 0},
		{name: "wrapped", reply: "The verdict is 1.", want: 1},
		{name: "no digit counts as fail", reply: "Looks good to me", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotPrompt string
			client := &MockLLMClient{
				GenerateContentFunc: func(_ context.Context, prompt string, _ llm.ModelTier) (string, error) {
					gotPrompt = prompt
					return tt.reply, nil
				},
			}
			got, err := NewLLMCodeJudge(client).ScoreCode(context.Background(), q, "func twoSum() {}")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Contains(t, gotPrompt, "Two Sum")
			assert.Contains(t, gotPrompt, "func twoSum() {}")
		})
	}
}

func TestScoreCode_ProviderError(t *testing.T) {
	client := &MockLLMClient{
		GenerateContentFunc: func(context.Context, string, llm.ModelTier) (string, error) {
			return "", errors.New("rate limited")
		},
	}
	_, err := NewLLMCodeJudge(client).ScoreCode(context.Background(), types.CodingQuestion{Title: "x"}, "code")
	assert.Error(t, err)
}

func TestStaticSources(t *testing.T) {
	ctx := context.Background()

	qs, err := StaticVoiceQuestions{}.GenerateVoiceQuestions(ctx, "Dev", nil)
	require.NoError(t, err)
	assert.Equal(t, FallbackVoiceQuestions, qs)
	qs[0] = "mutated"
	assert.NotEqual(t, "mutated", FallbackVoiceQuestions[0])

	score, _ := StaticVoiceQuestions{}.ScoreSpokenAnswer(ctx, "q", "")
	assert.Equal(t, 0, score)
	score, _ = StaticVoiceQuestions{}.ScoreSpokenAnswer(ctx, "q", "a real answer")
	assert.Equal(t, 1, score)

	score, _ = StaticCodeJudge{}.ScoreCode(ctx, types.CodingQuestion{}, "  ")
	assert.Equal(t, 0, score)
	score, _ = StaticCodeJudge{}.ScoreCode(ctx, types.CodingQuestion{}, "return 1")
	assert.Equal(t, 1, score)
}
