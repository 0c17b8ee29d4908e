package evaluator

import (
	"context"

	"github.com/nexwork/nexwork/internal/types"
)

// CodeJudge grades one submission as 0 or 1.
type CodeJudge interface {
	ScoreCode(ctx context.Context, q types.CodingQuestion, code string) (int, error)
}

// CodingTest pairs a question bank with a judge. It satisfies the
// orchestrator's coding test source.
type CodingTest struct {
	*QuestionBank
	CodeJudge
}
