package formatters

import (
	"fmt"
	"strings"

	"hiredly/internal/types"
)

// TextResultFormatter prints free-text task output as is, with a heading in
// Markdown mode.
type TextResultFormatter struct {
	markdown bool
}

var textTitles = map[string]string{
	"evaluate_answer":           "Answer Feedback",
	"generate_cover_letter":     "Cover Letter",
	"generate_linkedin_summary": "LinkedIn Summary",
}

func (f *TextResultFormatter) Format(data any) (string, error) {
	result, ok := data.(types.TextResult)
	if !ok {
		return "", fmt.Errorf("expected TextResult, got %T", data)
	}
	text := strings.TrimRight(result.Text, "\n") + "\n"
	title, known := textTitles[result.Task]
	if !f.markdown || !known || strings.HasPrefix(text, "#") {
		return text, nil
	}
	return fmt.Sprintf("# %s\n\n%s", title, text), nil
}

func (f *TextResultFormatter) SupportedType() string {
	return "TextResult"
}

// OptimizationTextFormatter renders a standalone optimization result
type OptimizationTextFormatter struct {
	markdown bool
}

func (f *OptimizationTextFormatter) Format(data any) (string, error) {
	opt, ok := data.(types.OptimizationResult)
	if !ok {
		return "", fmt.Errorf("expected OptimizationResult, got %T", data)
	}
	d := &doc{markdown: f.markdown}
	d.title("Resume Optimization")
	writeOptimization(d, opt)
	return d.String(), nil
}

func (f *OptimizationTextFormatter) SupportedType() string {
	return "OptimizationResult"
}

// QuestionsFormatter renders a list of interview questions
type QuestionsFormatter struct {
	markdown bool
}

func (f *QuestionsFormatter) Format(data any) (string, error) {
	qs, ok := data.([]types.InterviewQuestion)
	if !ok {
		return "", fmt.Errorf("expected []InterviewQuestion, got %T", data)
	}
	d := &doc{markdown: f.markdown}
	d.title("Interview Questions")
	writeQuestions(d, qs)
	return d.String(), nil
}

func (f *QuestionsFormatter) SupportedType() string {
	return "Questions"
}

// RouteOutcomeFormatter prints the user message of an outcome, or delegates
// its result to the formatter registered for the result's type.
type RouteOutcomeFormatter struct {
	registry *FormatterRegistry
	format   string
}

func (f *RouteOutcomeFormatter) Format(data any) (string, error) {
	outcome, ok := data.(types.RouteOutcome)
	if !ok {
		return "", fmt.Errorf("expected RouteOutcome, got %T", data)
	}
	if outcome.Message != "" {
		return outcome.Message + "\n", nil
	}

	out, err := f.registry.Format(outcome.Result, f.format)
	if err != nil {
		return "", err
	}
	if outcome.Record != nil {
		d := &doc{markdown: f.format == "markdown"}
		d.WriteString("\n")
		d.section("Updated Resume")
		writeRecord(d, *outcome.Record)
		out += d.String()
	}
	if outcome.Error != "" {
		out += fmt.Sprintf("\nWarning: %s\n", outcome.Error)
	}
	return out, nil
}

func (f *RouteOutcomeFormatter) SupportedType() string {
	return "RouteOutcome"
}

// HistoryFormatter renders saved analyses as a table
type HistoryFormatter struct {
	markdown bool
}

func (f *HistoryFormatter) Format(data any) (string, error) {
	entries, ok := data.([]types.HistoryEntry)
	if !ok {
		return "", fmt.Errorf("expected []HistoryEntry, got %T", data)
	}
	if len(entries) == 0 {
		return "No saved analyses.\n", nil
	}

	var sb strings.Builder
	if f.markdown {
		sb.WriteString("| Date | Name | ATS Score | Job | ID |\n")
		sb.WriteString("|---|---|---|---|---|\n")
		for _, e := range entries {
			fmt.Fprintf(&sb, "| %s | %s | %.0f | %s | `%s` |\n",
				e.CreatedAt.Format("2006-01-02 15:04"), orDash(e.Record.Name), e.ATSScore, snippet(e.JobDescription, 40), e.ID)
		}
		return sb.String(), nil
	}

	for _, e := range entries {
		fmt.Fprintf(&sb, "%s  %-20s  ATS %3.0f  %s\n    %s\n",
			e.CreatedAt.Format("2006-01-02 15:04"), orDash(e.Record.Name), e.ATSScore, e.ID, snippet(e.JobDescription, 60))
	}
	return sb.String(), nil
}

func (f *HistoryFormatter) SupportedType() string {
	return "History"
}

func snippet(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}
