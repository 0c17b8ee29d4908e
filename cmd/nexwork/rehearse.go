package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/nexwork/nexwork/internal/config"
	"github.com/nexwork/nexwork/internal/db/memory"
	"github.com/nexwork/nexwork/internal/observability"
	"github.com/nexwork/nexwork/internal/screening"
	"github.com/nexwork/nexwork/internal/status"
	"github.com/nexwork/nexwork/internal/types"
)

var (
	rehearseTitle        string
	rehearseSkills       string
	rehearseTests        string
	rehearseQuestionBank string
)

var rehearseCmd = &cobra.Command{
	Use:   "rehearse",
	Short: "Run a practice screening in the terminal",
	Long: `Runs the voice and coding screening locally against an in-memory job.
Voice answers are read one per line. Each code submission ends with a line
holding a single ".". Uses Gemini when GEMINI_API_KEY is set and the static
graders otherwise.`,
	RunE: runRehearse,
}

func init() {
	rehearseCmd.Flags().StringVarP(&rehearseTitle, "title", "t", "Software Engineer", "Job title")
	rehearseCmd.Flags().StringVarP(&rehearseSkills, "skills", "s", "", "Comma-separated job skills")
	rehearseCmd.Flags().StringVar(&rehearseTests, "tests", "", "Coding difficulty profile, e.g. easy,medium,hard")
	rehearseCmd.Flags().StringVar(&rehearseQuestionBank, "question-bank", "", "Path to YAML question bank (optional)")
	rootCmd.AddCommand(rehearseCmd)
}

func runRehearse(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	var profile []types.Difficulty
	for _, d := range splitList(rehearseTests) {
		switch diff := types.Difficulty(strings.ToLower(strings.TrimSpace(d))); diff {
		case types.DifficultyEasy, types.DifficultyMedium, types.DifficultyHard:
			profile = append(profile, diff)
		default:
			return fmt.Errorf("unknown difficulty %q (want easy, medium or hard)", d)
		}
	}

	a := &app{}
	defer a.Close()
	voice, coding, err := openEvaluators(ctx, &config.Config{
		GeminiAPIKey:     os.Getenv("GEMINI_API_KEY"),
		QuestionBankPath: rehearseQuestionBank,
	}, a)
	if err != nil {
		return err
	}

	store := memory.New()
	job, err := store.CreateJob(ctx, uuid.New(), &types.CreateJobRequest{
		Title:              rehearseTitle,
		Company:            "Rehearsal",
		Location:           "Terminal",
		Description:        "Practice screening",
		Salary:             "-",
		WalletAddress:      "-",
		TxHash:             "rehearsal",
		Deadline:           time.Now().Add(24 * time.Hour),
		Skills:             splitList(rehearseSkills),
		AIInterviewEnabled: true,
		TestConfig:         profile,
	})
	if err != nil {
		return err
	}

	orch := screening.New(screening.Options{
		Applications: store,
		Jobs:         store,
		Engine:       status.NewEngine(store, nil),
		Voice:        voice,
		Coding:       coding,
		Sessions:     screening.NewSessionRegistry(),
	})

	printer := observability.NewPrinter(cmd.OutOrStdout())
	printer.PrintJob(job)

	const candidate = "rehearsal"
	view, err := orch.Start(ctx, job.ID, candidate)
	if err != nil {
		return fmt.Errorf("failed to start screening: %w", err)
	}

	in := bufio.NewReader(cmd.InOrStdin())
	for view.Phase == screening.PhaseVoice || view.Phase == screening.PhaseCoding {
		printer.PrintQuestion(view)

		if view.Phase == screening.PhaseVoice {
			answer, _ := readLine(in)
			view, err = orch.SubmitVoiceAnswer(ctx, view.SessionID, candidate, answer)
		} else {
			code, _ := readBlock(in)
			view, err = orch.SubmitCode(ctx, view.SessionID, candidate, code)
		}
		if err != nil {
			if errors.Is(err, screening.ErrCodingTestUnavailable) || view == nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
		}
	}

	printer.PrintResult(view)
	return nil
}

// readLine returns the next line without its newline. At end of input it
// returns "" so the remaining questions are answered blank.
func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), err
}

// readBlock reads lines up to a line holding a single "." or end of input.
func readBlock(r *bufio.Reader) (string, error) {
	var sb strings.Builder
	for {
		line, err := readLine(r)
		if strings.TrimSpace(line) == "." {
			return sb.String(), nil
		}
		if line != "" || err == nil {
			sb.WriteString(line)
			sb.WriteString("\n")
		}
		if err != nil {
			return sb.String(), err
		}
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
