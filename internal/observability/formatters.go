// Package observability provides formatted terminal output for screening
// rehearsals.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/nexwork/nexwork/internal/scoring"
	"github.com/nexwork/nexwork/internal/screening"
	"github.com/nexwork/nexwork/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to a terminal; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range wrap(content, boxWidth-4) {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// wrap breaks content into lines of at most width runes, splitting on spaces
// where possible. Existing newlines are kept.
func wrap(content string, width int) []string {
	var out []string
	for _, line := range strings.Split(content, "\n") {
		runes := []rune(line)
		for len(runes) > width {
			cut := width
			for i := width; i > 0; i-- {
				if runes[i] == ' ' {
					cut = i
					break
				}
			}
			out = append(out, strings.TrimRight(string(runes[:cut]), " "))
			runes = []rune(strings.TrimLeft(string(runes[cut:]), " "))
		}
		out = append(out, string(runes))
	}
	return out
}

// PrintJob outputs a summary of the posting being screened for.
func (p *Printer) PrintJob(job *types.Job) {
	if job == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Role:     %s\n", job.Title))
	if job.Company != "" {
		sb.WriteString(fmt.Sprintf("Company:  %s\n", job.Company))
	}

	if len(job.Skills) > 0 {
		sb.WriteString("\nSkills:\n")
		count := min(len(job.Skills), maxItemsToShow)
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("  • %s\n", job.Skills[i]))
		}
		if len(job.Skills) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(job.Skills)-maxItemsToShow))
		}
	}

	profile := job.DifficultyProfile()
	names := make([]string, len(profile))
	for i, d := range profile {
		names[i] = string(d)
	}
	sb.WriteString(fmt.Sprintf("\nCoding test: %s", strings.Join(names, ", ")))
	if !job.AIInterviewEnabled {
		sb.WriteString("\nAI interview disabled")
	}

	p.printBox("JOB", sb.String())
}

// PrintQuestion outputs the question the session is waiting on. Views of
// finished sessions print nothing.
func (p *Printer) PrintQuestion(view *screening.View) {
	if view == nil {
		return
	}

	switch view.Phase {
	case screening.PhaseVoice:
		title := fmt.Sprintf("VOICE QUESTION %d/%d", view.QuestionIndex+1, view.QuestionCount)
		p.printBox(title, view.VoiceQuestion)
	case screening.PhaseCoding:
		if view.CodingQuestion == nil {
			return
		}
		q := view.CodingQuestion
		title := fmt.Sprintf("CODING QUESTION %d/%d (%s)", view.QuestionIndex+1, view.QuestionCount, q.Difficulty)
		content := q.Title + "\n\n" + strings.TrimSpace(q.Description)
		if q.StarterCode != "" {
			content += "\n\n" + strings.TrimRight(q.StarterCode, "\n")
		}
		p.printBox(title, content)
	}
}

// PrintResult outputs the outcome of a session.
func (p *Printer) PrintResult(view *screening.View) {
	if view == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Phase:            %s\n", view.Phase))
	sb.WriteString(fmt.Sprintf("Status:           %s\n", view.Status))
	sb.WriteString(fmt.Sprintf("Voice score:      %d/%d (pass at %d)\n",
		view.VoiceScore, scoring.VoiceQuestionCount, scoring.VoicePassThreshold))
	if view.Phase == screening.PhaseCompleted && view.VoiceScore >= scoring.VoicePassThreshold {
		sb.WriteString(fmt.Sprintf("Coding score:     %d (pass at %d)\n", view.CodingScore, scoring.CodingPassThreshold))
		sb.WriteString(fmt.Sprintf("Interview score:  %d\n", view.InterviewScore))
	}

	if len(view.Failures) > 0 {
		sb.WriteString(fmt.Sprintf("\nGrading failures: %d (scored as passed)\n", len(view.Failures)))
		count := min(len(view.Failures), maxItemsToShow)
		for i := 0; i < count; i++ {
			f := view.Failures[i]
			sb.WriteString(fmt.Sprintf("  • %s #%d: %s\n", f.Stage, f.Index+1, f.Err))
		}
		if len(view.Failures) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(view.Failures)-maxItemsToShow))
		}
	}

	p.printBox("SCREENING RESULT", strings.TrimSuffix(sb.String(), "\n"))
}
