//nolint:revive // types is a standard Go package name pattern
package types

// CodingQuestion is one exercise from the coding question bank.
type CodingQuestion struct {
	ID          string     `json:"id" yaml:"id"`
	Title       string     `json:"title" yaml:"title"`
	Description string     `json:"description" yaml:"description"`
	StarterCode string     `json:"starter_code,omitempty" yaml:"starter_code,omitempty"`
	Difficulty  Difficulty `json:"difficulty" yaml:"-"`
}
