package evaluator

import (
	"context"
	"fmt"

	"github.com/nexwork/nexwork/internal/llm"
	"github.com/nexwork/nexwork/internal/prompts"
	"github.com/nexwork/nexwork/internal/types"
)

// LLMCodeJudge grades code submissions with a language model.
type LLMCodeJudge struct {
	client llm.Client
}

// NewLLMCodeJudge returns a judge backed by client.
func NewLLMCodeJudge(client llm.Client) *LLMCodeJudge {
	return &LLMCodeJudge{client: client}
}

// ScoreCode returns 1 when the model judges the submission correct. A reply
// without a digit counts as 0; a failed call is returned as an error.
func (j *LLMCodeJudge) ScoreCode(ctx context.Context, q types.CodingQuestion, code string) (int, error) {
	prompt, err := prompts.Render(prompts.ScreeningFile, prompts.KeyScoreCode, map[string]string{
		"Title":       q.Title,
		"Description": q.Description,
		"Code":        code,
	})
	if err != nil {
		return 0, err
	}

	reply, err := j.client.GenerateContent(ctx, prompt, llm.TierLite)
	if err != nil {
		return 0, fmt.Errorf("score code: %w", err)
	}
	d, ok := llm.FirstDigit(reply)
	if !ok || d != 1 {
		return 0, nil
	}
	return 1, nil
}
