// Package scoring holds the pass/fail policy for the screening stages.
// Everything here is pure: no I/O, no evaluator calls.
package scoring

import "math"

const (
	// VoiceQuestionCount is the number of voice questions in every session.
	VoiceQuestionCount = 5
	// VoicePassThreshold is the minimum number of correct voice answers.
	VoicePassThreshold = 3
	// CodingPassThreshold is an absolute count, independent of how many
	// coding questions the difficulty profile produced.
	CodingPassThreshold = 2
)

// Normalize clamps a raw evaluator score into {0,1}.
func Normalize(score int) int {
	if score > 0 {
		return 1
	}
	return 0
}

// Sum adds up normalized per-question scores.
func Sum(scores []int) int {
	total := 0
	for _, s := range scores {
		total += Normalize(s)
	}
	return total
}

// VoicePassed reports whether the voice stage is passed.
func VoicePassed(scores []int) bool {
	return Sum(scores) >= VoicePassThreshold
}

// CodingPassed reports whether the coding stage is passed.
func CodingPassed(scores []int) bool {
	return Sum(scores) >= CodingPassThreshold
}

// InterviewScore is round(100 * passed / total) over the coding answers.
// An empty slice scores 0.
func InterviewScore(codingScores []int) int {
	if len(codingScores) == 0 {
		return 0
	}
	return int(math.Round(100 * float64(Sum(codingScores)) / float64(len(codingScores))))
}
