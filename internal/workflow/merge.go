package workflow

import (
	"sort"
	"strings"

	"hiredly/internal/types"
)

// DeriveResumeText flattens a record into the text scored by the ATS stage:
// summary, skills and experience, joined by single spaces.
func DeriveResumeText(record types.ResumeRecord) string {
	return strings.Join([]string{
		record.Summary,
		strings.Join(record.Skills, " "),
		strings.Join(record.Experience, " "),
	}, " ")
}

// Merge folds an optimization result into a copy of record.
//
// The summary is replaced only by a non-blank optimized summary. Missing
// keywords are trimmed and unioned into the skills case-insensitively: the
// first spelling seen wins and existing skills are seen first, kept exactly
// as written. Blank skills are dropped and the merged skills are sorted. With no usable keywords the skills are returned untouched.
func Merge(record types.ResumeRecord, opt types.OptimizationResult) types.ResumeRecord {
	out := record

	if summary := strings.TrimSpace(opt.OptimizedSummary); summary != "" {
		out.Summary = summary
	}

	if !hasKeywords(opt.MissingKeywords) {
		return out
	}

	seen := make(map[string]struct{}, len(record.Skills)+len(opt.MissingKeywords))
	skills := make([]string, 0, len(record.Skills)+len(opt.MissingKeywords))
	// Skills are added as spelled; only the lookup key is trimmed.
	add := func(skill string) {
		key := strings.ToLower(strings.TrimSpace(skill))
		if key == "" {
			return
		}
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		skills = append(skills, skill)
	}

	for _, s := range record.Skills {
		add(s)
	}
	for _, kw := range opt.MissingKeywords {
		add(strings.TrimSpace(kw))
	}

	sort.Strings(skills)
	out.Skills = skills
	return out
}

func hasKeywords(keywords []string) bool {
	for _, kw := range keywords {
		if strings.TrimSpace(kw) != "" {
			return true
		}
	}
	return false
}
