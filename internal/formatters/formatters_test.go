package formatters

import (
	"strings"
	"testing"
	"time"

	"hiredly/internal/types"
)

func sampleBundle() types.AnalysisBundle {
	return types.AnalysisBundle{
		Record: types.ResumeRecord{
			Name:       "Jane Doe",
			Email:      "jane@example.com",
			Summary:    "Python engineer",
			Skills:     []string{"AWS", "Python"},
			Experience: []string{"Acme, 3 years"},
		},
		ATS: types.ATSResult{
			ATSScore:                72,
			KeywordMatchPercentage:  60.5,
			MissingCriticalKeywords: []string{"Kubernetes"},
		},
		Optimization: types.OptimizationResult{
			OptimizedSummary: "Python engineer",
			MissingKeywords:  []string{"AWS"},
		},
		Questions: []types.InterviewQuestion{
			{Question: "How do you use AWS?", Category: "Technical", Tips: "Be specific"},
		},
		Courses: []types.CourseRecommendation{},
		Issues:  []types.StageIssue{{Stage: "courses", Error: "oracle generate: quota"}},
	}
}

func TestBundleFormatters(t *testing.T) {
	tests := []struct {
		format string
		want   []string
	}{
		{
			format: "text",
			want: []string{
				"=== RESUME ANALYSIS ===",
				"Name: Jane Doe",
				"Phone: -",
				"Profile Completion: 71%",
				"ATS Score: 72/100",
				"Keyword Match: 60.5/100",
				"- Kubernetes",
				"1. [Technical] How do you use AWS?",
				"   Tip: Be specific",
				"No course recommendations.",
				"- courses: oracle generate: quota",
			},
		},
		{
			format: "markdown",
			want: []string{
				"# Resume Analysis",
				"## ATS Compatibility",
				"**ATS Score:** 72/100",
				"### Missing Critical Keywords",
				"1. **[Technical]** How do you use AWS?",
				"## Issues",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			out, err := GlobalRegistry.Format(sampleBundle(), tt.format)
			if err != nil {
				t.Fatalf("Format() error = %v", err)
			}
			for _, want := range tt.want {
				if !strings.Contains(out, want) {
					t.Errorf("output missing %q:\n%s", want, out)
				}
			}
		})
	}
}

func TestJSONFormatterHandlesAnyType(t *testing.T) {
	out, err := GlobalRegistry.Format(map[string]int{"a": 1}, "json")
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	if out != "{\n  \"a\": 1\n}\n" {
		t.Errorf("unexpected json %q", out)
	}

	out, err = GlobalRegistry.Format(sampleBundle(), "json")
	if err != nil || !strings.Contains(out, `"ats_score": 72`) {
		t.Errorf("expected bundle json, got %q, %v", out, err)
	}
}

func TestUnknownFormat(t *testing.T) {
	if _, err := GlobalRegistry.Format(sampleBundle(), "xml"); err == nil {
		t.Error("expected error for unknown format")
	}
	if _, err := GlobalRegistry.Format(42, "text"); err == nil {
		t.Error("expected error when no text formatter exists for the type")
	}
}

func TestRouteOutcomeFormatter(t *testing.T) {
	msg := types.RouteOutcome{Task: "evaluate_answer", Message: "Need both."}
	out, err := GlobalRegistry.Format(msg, "text")
	if err != nil || out != "Need both.\n" {
		t.Errorf("got %q, %v", out, err)
	}

	result := types.RouteOutcome{
		Task:   "generate_questions",
		Result: []types.InterviewQuestion{{Question: "Why Go?", Category: "Technical"}},
		Error:  "partial",
	}
	out, err = GlobalRegistry.Format(result, "markdown")
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	if !strings.Contains(out, "# Interview Questions") || !strings.Contains(out, "Warning: partial") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestRouteOutcomeFormatterShowsUpdatedRecord(t *testing.T) {
	outcome := types.RouteOutcome{
		Task:   "optimize_for_job",
		Result: types.OptimizationResult{OptimizedSummary: "Sharper", MissingKeywords: []string{"AWS"}},
		Record: &types.ResumeRecord{Name: "Jane", Summary: "Sharper", Skills: []string{"AWS", "Python"}},
	}
	out, err := GlobalRegistry.Format(outcome, "text")
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	for _, want := range []string{"--- Updated Resume ---", "Summary: Sharper", "- AWS", "- Python"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestTextResultFormatter(t *testing.T) {
	res := types.TextResult{Task: "generate_cover_letter", Text: "Dear team,\n"}

	out, _ := GlobalRegistry.Format(res, "text")
	if out != "Dear team,\n" {
		t.Errorf("text output = %q", out)
	}
	out, _ = GlobalRegistry.Format(res, "markdown")
	if out != "# Cover Letter\n\nDear team,\n" {
		t.Errorf("markdown output = %q", out)
	}

	feedback := types.TextResult{Task: "evaluate_answer", Text: "## Overall Score\n7/10"}
	out, _ = GlobalRegistry.Format(feedback, "markdown")
	if !strings.HasPrefix(out, "## Overall Score") {
		t.Errorf("feedback headings should be kept as is, got %q", out)
	}
}

func TestHistoryFormatter(t *testing.T) {
	entries := []types.HistoryEntry{{
		ID:             "abc",
		Record:         types.ResumeRecord{Name: "Jane Doe"},
		JobDescription: strings.Repeat("Senior Python engineer ", 10),
		ATSScore:       72,
		CreatedAt:      time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC),
	}}

	out, err := GlobalRegistry.Format(entries, "markdown")
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	if !strings.Contains(out, "| 2026-03-01 09:30 | Jane Doe | 72 |") || !strings.Contains(out, "...") {
		t.Errorf("unexpected table:\n%s", out)
	}

	out, _ = GlobalRegistry.Format([]types.HistoryEntry{}, "text")
	if out != "No saved analyses.\n" {
		t.Errorf("empty history = %q", out)
	}
}

func TestGetSupportedFormats(t *testing.T) {
	got := GlobalRegistry.GetSupportedFormats()
	want := []string{"json", "markdown", "text"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("GetSupportedFormats() = %v, want %v", got, want)
	}
}
