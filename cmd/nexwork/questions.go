package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nexwork/nexwork/internal/types"
)

var questionsFile string

var questionsCmd = &cobra.Command{
	Use:   "questions",
	Short: "Validate a coding question bank",
	Long:  "Validates a YAML coding question bank against its schema and prints how many questions each difficulty holds. Without --file the embedded bank is checked.",
	RunE:  runQuestions,
}

func init() {
	questionsCmd.Flags().StringVarP(&questionsFile, "file", "f", "", "Path to YAML question bank (optional)")
	rootCmd.AddCommand(questionsCmd)
}

func runQuestions(cmd *cobra.Command, _ []string) error {
	bank, err := loadQuestionBank(questionsFile)
	if err != nil {
		return fmt.Errorf("invalid question bank: %w", err)
	}

	out := cmd.OutOrStdout()
	empty := 0
	for _, d := range types.DefaultTestConfig {
		n := bank.Size(d)
		if n == 0 {
			empty++
		}
		fmt.Fprintf(out, "%-6s %d\n", d, n)
	}
	if empty == len(types.DefaultTestConfig) {
		return fmt.Errorf("question bank has no questions")
	}
	return nil
}
