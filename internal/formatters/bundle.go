package formatters

import (
	"fmt"
	"strings"

	"hiredly/internal/types"
)

// doc writes sections either as plain text banners or as Markdown.
type doc struct {
	strings.Builder
	markdown bool
}

func (d *doc) title(s string) {
	if d.markdown {
		fmt.Fprintf(d, "# %s\n\n", s)
		return
	}
	fmt.Fprintf(d, "=== %s ===\n\n", strings.ToUpper(s))
}

func (d *doc) section(s string) {
	if d.markdown {
		fmt.Fprintf(d, "## %s\n\n", s)
		return
	}
	fmt.Fprintf(d, "--- %s ---\n", s)
}

func (d *doc) field(label, value string) {
	if d.markdown {
		fmt.Fprintf(d, "**%s:** %s\n\n", label, value)
		return
	}
	fmt.Fprintf(d, "%s: %s\n", label, value)
}

func (d *doc) list(label string, items []string) {
	if len(items) == 0 {
		return
	}
	if d.markdown {
		fmt.Fprintf(d, "### %s\n\n", label)
	} else {
		fmt.Fprintf(d, "%s:\n", label)
	}
	for _, item := range items {
		fmt.Fprintf(d, "- %s\n", item)
	}
	d.WriteString("\n")
}

func (d *doc) gap() {
	if !d.markdown {
		d.WriteString("\n")
	}
}

// BundleTextFormatter renders a full analysis as a plain text report
type BundleTextFormatter struct{}

func (f *BundleTextFormatter) Format(data any) (string, error) {
	bundle, ok := data.(types.AnalysisBundle)
	if !ok {
		return "", fmt.Errorf("expected AnalysisBundle, got %T", data)
	}
	d := &doc{}
	writeBundle(d, bundle)
	return d.String(), nil
}

func (f *BundleTextFormatter) SupportedType() string {
	return "AnalysisBundle"
}

// BundleMarkdownFormatter renders a full analysis as Markdown
type BundleMarkdownFormatter struct{}

func (f *BundleMarkdownFormatter) Format(data any) (string, error) {
	bundle, ok := data.(types.AnalysisBundle)
	if !ok {
		return "", fmt.Errorf("expected AnalysisBundle, got %T", data)
	}
	d := &doc{markdown: true}
	writeBundle(d, bundle)
	return d.String(), nil
}

func (f *BundleMarkdownFormatter) SupportedType() string {
	return "AnalysisBundle"
}

func writeBundle(d *doc, b types.AnalysisBundle) {
	d.title("Resume Analysis")

	d.section("Profile")
	writeRecord(d, b.Record)
	d.gap()

	d.section("ATS Compatibility")
	d.field("ATS Score", formatScore(b.ATS.ATSScore))
	d.field("Keyword Match", formatScore(b.ATS.KeywordMatchPercentage))
	d.field("Formatting", formatScore(b.ATS.FormattingScore))
	d.field("Content Relevance", formatScore(b.ATS.ContentRelevanceScore))
	d.gap()
	d.list("Missing Critical Keywords", b.ATS.MissingCriticalKeywords)
	d.list("Strengths", b.ATS.Strengths)
	d.list("Improvement Areas", b.ATS.ImprovementAreas)

	d.section("Optimization")
	writeOptimization(d, b.Optimization)

	d.section("Interview Questions")
	writeQuestions(d, b.Questions)

	d.section("Recommended Courses")
	if len(b.Courses) == 0 {
		d.WriteString("No course recommendations.\n\n")
	}
	for i, c := range b.Courses {
		if d.markdown {
			fmt.Fprintf(d, "%d. **%s** (%s, %s)\n   %s\n", i+1, c.CourseName, c.Provider, c.Duration, c.Reason)
			if c.SkillGap != "" {
				fmt.Fprintf(d, "   _Skill gap: %s_\n", c.SkillGap)
			}
		} else {
			fmt.Fprintf(d, "%d. %s (%s, %s)\n   %s\n", i+1, c.CourseName, c.Provider, c.Duration, c.Reason)
			if c.SkillGap != "" {
				fmt.Fprintf(d, "   Skill gap: %s\n", c.SkillGap)
			}
		}
	}
	if len(b.Courses) > 0 {
		d.WriteString("\n")
	}

	if len(b.Issues) > 0 {
		d.section("Issues")
		for _, issue := range b.Issues {
			fmt.Fprintf(d, "- %s: %s\n", issue.Stage, issue.Error)
		}
	}
}

func writeRecord(d *doc, r types.ResumeRecord) {
	d.field("Name", orDash(r.Name))
	d.field("Email", orDash(r.Email))
	d.field("Phone", orDash(r.Phone))
	d.field("Profile Completion", fmt.Sprintf("%.0f%%", r.CompletionScore()))
	if r.Summary != "" {
		d.field("Summary", r.Summary)
	}
	d.gap()
	d.list("Skills", r.Skills)
	d.list("Experience", r.Experience)
	d.list("Education", r.Education)
	d.list("Certifications", r.Certifications)
	d.list("Projects", r.Projects)
}

func writeOptimization(d *doc, o types.OptimizationResult) {
	if o.IsEmpty() {
		d.WriteString("No optimization suggestions.\n\n")
		return
	}
	if o.OptimizedSummary != "" {
		d.field("Optimized Summary", o.OptimizedSummary)
		d.gap()
	}
	d.list("Missing Keywords", o.MissingKeywords)
	d.list("Suggestions", o.ImprovementSuggestions)
}

func writeQuestions(d *doc, qs []types.InterviewQuestion) {
	if len(qs) == 0 {
		d.WriteString("No interview questions.\n\n")
		return
	}
	for i, q := range qs {
		category := q.Category
		if category == "" {
			category = "General"
		}
		if d.markdown {
			fmt.Fprintf(d, "%d. **[%s]** %s\n", i+1, category, q.Question)
			if q.Tips != "" {
				fmt.Fprintf(d, "   _Tip: %s_\n", q.Tips)
			}
		} else {
			fmt.Fprintf(d, "%d. [%s] %s\n", i+1, category, q.Question)
			if q.Tips != "" {
				fmt.Fprintf(d, "   Tip: %s\n", q.Tips)
			}
		}
	}
	d.WriteString("\n")
}

func formatScore(s types.Score) string {
	return fmt.Sprintf("%g/100", s.Float())
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
