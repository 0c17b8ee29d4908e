package evaluator

import (
	"context"
	_ "embed"
	"fmt"
	"math/rand/v2"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/nexwork/nexwork/internal/schemas"
	"github.com/nexwork/nexwork/internal/types"
)

//go:embed questions.yaml
var defaultBank []byte

// QuestionBank serves coding questions grouped by difficulty.
type QuestionBank struct {
	mu   sync.Mutex
	rng  *rand.Rand
	pool map[types.Difficulty][]types.CodingQuestion
}

// NewQuestionBank parses a YAML bank of the form
// {easy: [...], medium: [...], hard: [...]}. A nil rng uses a randomly seeded source.
func NewQuestionBank(data []byte, rng *rand.Rand) (*QuestionBank, error) {
	var generic map[string]any
	if err := yaml.Unmarshal(data, &generic); err != nil {
		return nil, fmt.Errorf("parse question bank: %w", err)
	}
	if err := schemas.ValidateValue(schemas.CodingBank, generic); err != nil {
		return nil, err
	}

	var raw map[types.Difficulty][]types.CodingQuestion
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse question bank: %w", err)
	}
	for d, qs := range raw {
		for i := range qs {
			qs[i].Difficulty = d
		}
	}

	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &QuestionBank{rng: rng, pool: raw}, nil
}

// DefaultQuestionBank returns the embedded bank.
func DefaultQuestionBank() (*QuestionBank, error) {
	return NewQuestionBank(defaultBank, nil)
}

// GetTest picks one random question per difficulty in profile, in profile
// order. Difficulties without questions are skipped, so the test may be
// shorter than the profile. An empty profile uses types.DefaultTestConfig.
func (b *QuestionBank) GetTest(_ context.Context, profile []types.Difficulty) ([]types.CodingQuestion, error) {
	if len(profile) == 0 {
		profile = types.DefaultTestConfig
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]types.CodingQuestion, 0, len(profile))
	for _, d := range profile {
		pool := b.pool[d]
		if len(pool) == 0 {
			continue
		}
		out = append(out, pool[b.rng.IntN(len(pool))])
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no questions for profile %v", profile)
	}
	return out, nil
}

// Size returns the number of questions for a difficulty.
func (b *QuestionBank) Size(d types.Difficulty) int {
	return len(b.pool[d])
}
