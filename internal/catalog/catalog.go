// Package catalog defines the fixed set of generation tasks: their prompt
// templates, expected output kind and fallbacks.
package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"text/template"

	"hiredly/internal/errors"
	"hiredly/internal/extract"
	"hiredly/internal/types"

	"github.com/xeipuuv/gojsonschema"
)

// Task names
const (
	TaskAnalyzeResume           = "analyze_resume"
	TaskScoreATS                = "score_ats"
	TaskOptimizeForJob          = "optimize_for_job"
	TaskGenerateQuestions       = "generate_questions"
	TaskEvaluateAnswer          = "evaluate_answer"
	TaskRecommendCourses        = "recommend_courses"
	TaskGenerateCoverLetter     = "generate_cover_letter"
	TaskGenerateLinkedInSummary = "generate_linkedin_summary"
)

// Kind is the output contract of a task.
type Kind int

const (
	KindObject Kind = iota
	KindArray
	KindText
)

func (k Kind) String() string {
	switch k {
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	default:
		return "text"
	}
}

// Shape maps structured kinds onto the extractor's shapes.
func (k Kind) Shape() extract.Shape {
	if k == KindArray {
		return extract.ShapeArray
	}
	return extract.ShapeObject
}

// Input carries every value a template may reference. Each task uses a subset.
type Input struct {
	ResumeText     string
	Record         types.ResumeRecord
	JobDescription string
	Skills         []string
	Question       string
	Answer         string
}

// Task is an immutable catalog entry.
type Task struct {
	Name        string
	Kind        Kind
	Description string
	// Fallback is returned for text tasks when the oracle fails.
	Fallback string

	template *template.Template
	schema   *gojsonschema.Schema
}

// Render produces the final prompt for in.
func (t *Task) Render(in Input) (string, error) {
	var buf bytes.Buffer
	if err := t.template.Execute(&buf, in); err != nil {
		return "", errors.NewInternalError("PROMPT_RENDER_FAILED",
			fmt.Sprintf("failed to render prompt for %s", t.Name), err)
	}
	return buf.String(), nil
}

// SchemaGaps validates a structured payload against the task's schema and
// returns one line per violation. Violations never reject the payload.
func (t *Task) SchemaGaps(payload []byte) []string {
	if t.schema == nil {
		return nil
	}
	result, err := t.schema.Validate(gojsonschema.NewBytesLoader(payload))
	if err != nil {
		return []string{err.Error()}
	}
	if result.Valid() {
		return nil
	}
	gaps := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		gaps = append(gaps, fmt.Sprintf("%s: %s", desc.Field(), desc.Description()))
	}
	return gaps
}

type definition struct {
	name        string
	kind        Kind
	description string
	fallback    string
	template    string
	schema      string
}

var definitions = []definition{
	{
		name:        TaskAnalyzeResume,
		kind:        KindObject,
		description: "Extract a structured resume record from raw text",
		template:    analyzeResumeTemplate,
		schema:      resumeRecordSchema,
	},
	{
		name:        TaskScoreATS,
		kind:        KindObject,
		description: "Score a resume against a job description",
		template:    scoreATSTemplate,
		schema:      atsResultSchema,
	},
	{
		name:        TaskOptimizeForJob,
		kind:        KindObject,
		description: "Tailor the summary and find missing keywords for a job",
		template:    optimizeForJobTemplate,
		schema:      optimizationSchema,
	},
	{
		name:        TaskGenerateQuestions,
		kind:        KindArray,
		description: "Generate tailored interview questions",
		template:    generateQuestionsTemplate,
		schema:      questionsSchema,
	},
	{
		name:        TaskEvaluateAnswer,
		kind:        KindText,
		description: "Give Markdown feedback on an interview answer",
		fallback:    "Feedback could not be generated.",
		template:    evaluateAnswerTemplate,
	},
	{
		name:        TaskRecommendCourses,
		kind:        KindArray,
		description: "Recommend courses that close skill gaps",
		template:    recommendCoursesTemplate,
		schema:      coursesSchema,
	},
	{
		name:        TaskGenerateCoverLetter,
		kind:        KindText,
		description: "Write a cover letter of at most 400 words",
		fallback:    "Cover letter could not be generated.",
		template:    generateCoverLetterTemplate,
	},
	{
		name:        TaskGenerateLinkedInSummary,
		kind:        KindText,
		description: "Write a first-person LinkedIn About section",
		fallback:    "LinkedIn summary could not be generated.",
		template:    generateLinkedInSummaryTemplate,
	},
}

var templateFuncs = template.FuncMap{
	"json": func(v any) (string, error) {
		b, err := json.MarshalIndent(v, "", "  ")
		return string(b), err
	},
	"join": strings.Join,
}

// Catalog is the read-only task table.
type Catalog struct {
	tasks map[string]*Task
}

// New builds the catalog. overrides replaces the default template of the
// named task; an override for an unknown task or one that fails to parse is
// a configuration error.
func New(overrides map[string]string) (*Catalog, error) {
	c := &Catalog{tasks: make(map[string]*Task, len(definitions))}

	for name := range overrides {
		if !isKnown(name) {
			return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig,
				fmt.Sprintf("prompt override for unknown task %q", name), nil)
		}
	}

	for _, def := range definitions {
		text := def.template
		if override := strings.TrimSpace(overrides[def.name]); override != "" {
			text = override
		}

		tmpl, err := template.New(def.name).Funcs(templateFuncs).Option("missingkey=zero").Parse(text)
		if err != nil {
			return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig,
				fmt.Sprintf("invalid prompt template for %s", def.name), err)
		}

		task := &Task{
			Name:        def.name,
			Kind:        def.kind,
			Description: def.description,
			Fallback:    def.fallback,
			template:    tmpl,
		}
		if def.schema != "" {
			schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(def.schema))
			if err != nil {
				return nil, errors.NewInternalError("SCHEMA_INVALID",
					fmt.Sprintf("invalid output schema for %s", def.name), err)
			}
			task.schema = schema
		}
		c.tasks[def.name] = task
	}
	return c, nil
}

// Default returns the catalog with built-in templates.
func Default() *Catalog {
	c, err := New(nil)
	if err != nil {
		panic(err)
	}
	return c
}

// Get looks up a task by name.
func (c *Catalog) Get(name string) (*Task, error) {
	task, ok := c.tasks[name]
	if !ok {
		return nil, errors.NewValidationError(errors.ErrCodeUnknownTask,
			fmt.Sprintf("unknown task %q", name), nil)
	}
	return task, nil
}

// Names lists all task names in sorted order.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.tasks))
	for name := range c.tasks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func isKnown(name string) bool {
	for _, def := range definitions {
		if def.name == name {
			return true
		}
	}
	return false
}
