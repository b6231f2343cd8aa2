package types

import (
	"encoding/json"
	"strings"
	"time"
)

// ResumeRecord is the canonical structured form of a resume
type ResumeRecord struct {
	Name           string   `json:"name"`
	Email          string   `json:"email"`
	Phone          string   `json:"phone"`
	Summary        string   `json:"summary"`
	Skills         []string `json:"skills"`
	Experience     []string `json:"experience"`
	Education      []string `json:"education"`
	Certifications []string `json:"certifications"`
	Projects       []string `json:"projects"`
}

// IsEmpty reports whether the record carries no extracted content at all.
func (r ResumeRecord) IsEmpty() bool {
	return r.Name == "" && r.Email == "" && r.Phone == "" && r.Summary == "" &&
		len(r.Skills) == 0 && len(r.Experience) == 0 && len(r.Education) == 0 &&
		len(r.Certifications) == 0 && len(r.Projects) == 0
}

// UnmarshalJSON decodes the list fields leniently, see TextList.
func (r *ResumeRecord) UnmarshalJSON(data []byte) error {
	type plain ResumeRecord
	aux := struct {
		*plain
		Skills         TextList `json:"skills"`
		Experience     TextList `json:"experience"`
		Education      TextList `json:"education"`
		Certifications TextList `json:"certifications"`
		Projects       TextList `json:"projects"`
	}{
		plain:          (*plain)(r),
		Skills:         r.Skills,
		Experience:     r.Experience,
		Education:      r.Education,
		Certifications: r.Certifications,
		Projects:       r.Projects,
	}
	// Type mismatches elsewhere still leave the decoded lists in place.
	err := json.Unmarshal(data, &aux)
	r.Skills = aux.Skills
	r.Experience = aux.Experience
	r.Education = aux.Education
	r.Certifications = aux.Certifications
	r.Projects = aux.Projects
	return err
}

// Normalized returns a copy whose list fields are non-nil and free of blank
// entries, so the record always serializes with [] instead of null.
func (r ResumeRecord) Normalized() ResumeRecord {
	r.Skills = compact(r.Skills)
	r.Experience = compact(r.Experience)
	r.Education = compact(r.Education)
	r.Certifications = compact(r.Certifications)
	r.Projects = compact(r.Projects)
	return r
}

func compact(s []string) []string {
	out := make([]string, 0, len(s))
	for _, v := range s {
		if strings.TrimSpace(v) != "" {
			out = append(out, v)
		}
	}
	return out
}

// CompletionScore is the percentage of core profile fields that are filled.
// Core fields: name, email, phone, summary, skills, experience, education.
func (r ResumeRecord) CompletionScore() float64 {
	filled := 0
	for _, s := range []string{r.Name, r.Email, r.Phone, r.Summary} {
		if strings.TrimSpace(s) != "" {
			filled++
		}
	}
	for _, l := range [][]string{r.Skills, r.Experience, r.Education} {
		if len(l) > 0 {
			filled++
		}
	}
	return float64(filled) / 7 * 100
}

// ATSResult is the applicant-tracking-system assessment of a resume against a job.
// Scores are nominally 0..100 but are never clamped.
type ATSResult struct {
	ATSScore                Score    `json:"ats_score"`
	KeywordMatchPercentage  Score    `json:"keyword_match_percentage"`
	MissingCriticalKeywords []string `json:"missing_critical_keywords"`
	Strengths               []string `json:"strengths"`
	ImprovementAreas        []string `json:"improvement_areas"`
	FormattingScore         Score    `json:"formatting_score"`
	ContentRelevanceScore   Score    `json:"content_relevance_score"`
}

// OptimizationResult carries the job-specific rewrite suggestions
type OptimizationResult struct {
	OptimizedSummary       string   `json:"optimized_summary"`
	MissingKeywords        []string `json:"missing_keywords"`
	ImprovementSuggestions []string `json:"improvement_suggestions,omitempty"`
}

// IsEmpty reports whether merging this result would change nothing.
func (o OptimizationResult) IsEmpty() bool {
	return strings.TrimSpace(o.OptimizedSummary) == "" && len(o.MissingKeywords) == 0
}

// InterviewQuestion is a single practice question. Category is nominally
// "Technical", "Behavioral" or "Situational" but any string is accepted.
type InterviewQuestion struct {
	Question string `json:"question"`
	Category string `json:"category"`
	Tips     string `json:"tips"`
}

// CourseRecommendation suggests training for a skill gap
type CourseRecommendation struct {
	CourseName string `json:"course_name"`
	Provider   string `json:"provider"`
	Reason     string `json:"reason"`
	SkillGap   string `json:"skill_gap"`
	Duration   string `json:"duration"`
}

// StageIssue records a workflow stage that degraded to its empty value.
type StageIssue struct {
	Stage string `json:"stage"`
	Error string `json:"error"`
}

// AnalysisBundle is the result of one full workflow run
type AnalysisBundle struct {
	Record       ResumeRecord           `json:"record"`
	ATS          ATSResult              `json:"ats"`
	Optimization OptimizationResult     `json:"optimization"`
	Questions    []InterviewQuestion    `json:"questions"`
	Courses      []CourseRecommendation `json:"courses"`
	Issues       []StageIssue           `json:"issues,omitempty"`
}

// HistoryEntry is a persisted snapshot of an analysis
type HistoryEntry struct {
	ID             string       `json:"id"`
	Record         ResumeRecord `json:"record"`
	JobDescription string       `json:"jobDescription"`
	ATSScore       float64      `json:"atsScore"`
	CreatedAt      time.Time    `json:"createdAt"`
}

// TextResult wraps free-text task output for structured formatters.
type TextResult struct {
	Task string `json:"task"`
	Text string `json:"text"`
}

// RouteOutcome is the result of dispatching a free-form instruction.
// Exactly one of Result or Message is meaningful. Record is set by tasks
// that update the resume, and holds the record with the result applied.
type RouteOutcome struct {
	Task    string        `json:"task,omitempty"`
	Result  any           `json:"result,omitempty"`
	Record  *ResumeRecord `json:"record,omitempty"`
	Message string        `json:"message,omitempty"`
	Error   string        `json:"error,omitempty"`
}
