package catalog

import (
	"context"
	"strings"

	"hiredly/internal/ai"
	"hiredly/internal/errors"
	"hiredly/internal/extract"
	"hiredly/internal/types"
)

// Executor renders catalog tasks, sends them to an oracle and coerces the
// reply into typed values.
//
// Every typed method returns a usable value. When the oracle fails the value
// is the task's safe default and the oracle error is returned alongside it;
// when only extraction fails the default comes back with a nil error.
type Executor struct {
	oracle    ai.Oracle
	catalog   *Catalog
	extractor *extract.Extractor
	logger    *errors.Logger
}

// NewExecutor wires an executor. A nil catalog uses the defaults, a nil
// extractor shares the executor's logger.
func NewExecutor(oracle ai.Oracle, catalog *Catalog, extractor *extract.Extractor, logger *errors.Logger) *Executor {
	if logger == nil {
		logger = errors.Discard()
	}
	if catalog == nil {
		catalog = Default()
	}
	if extractor == nil {
		extractor = extract.New(logger)
	}
	return &Executor{
		oracle:    oracle,
		catalog:   catalog,
		extractor: extractor,
		logger:    logger,
	}
}

// Catalog exposes the task table the executor runs against.
func (x *Executor) Catalog() *Catalog {
	return x.catalog
}

// Run renders the named task for in and returns the raw oracle reply.
func (x *Executor) Run(ctx context.Context, name string, in Input) (string, error) {
	task, err := x.catalog.Get(name)
	if err != nil {
		return "", err
	}
	prompt, err := task.Render(in)
	if err != nil {
		return "", err
	}

	x.logger.Debug("Running task", "task", name, "prompt_length", len(prompt))
	raw, err := x.oracle.Generate(ctx, prompt)
	if err != nil {
		x.logger.LogError(err, "Oracle call failed", "task", name)
		return "", err
	}
	return raw, nil
}

// AnalyzeResume extracts a structured record from raw resume text.
func (x *Executor) AnalyzeResume(ctx context.Context, resumeText string) (types.ResumeRecord, error) {
	rec, err := runStructured[types.ResumeRecord](ctx, x, TaskAnalyzeResume, Input{ResumeText: resumeText})
	return rec.Normalized(), err
}

// ScoreATS rates resume text against a job description.
func (x *Executor) ScoreATS(ctx context.Context, resumeText, jobDescription string) (types.ATSResult, error) {
	res, err := runStructured[types.ATSResult](ctx, x, TaskScoreATS, Input{
		ResumeText:     resumeText,
		JobDescription: jobDescription,
	})
	res.MissingCriticalKeywords = nonNil(res.MissingCriticalKeywords)
	res.Strengths = nonNil(res.Strengths)
	res.ImprovementAreas = nonNil(res.ImprovementAreas)
	return res, err
}

// OptimizeForJob proposes a tailored summary and the keywords the record lacks.
func (x *Executor) OptimizeForJob(ctx context.Context, record types.ResumeRecord, jobDescription string) (types.OptimizationResult, error) {
	res, err := runStructured[types.OptimizationResult](ctx, x, TaskOptimizeForJob, Input{
		Record:         record.Normalized(),
		JobDescription: jobDescription,
	})
	res.MissingKeywords = nonNil(res.MissingKeywords)
	return res, err
}

// GenerateQuestions drafts interview questions for the job.
func (x *Executor) GenerateQuestions(ctx context.Context, jobDescription string, record types.ResumeRecord) ([]types.InterviewQuestion, error) {
	qs, err := runStructured[[]types.InterviewQuestion](ctx, x, TaskGenerateQuestions, Input{
		Record:         record.Normalized(),
		JobDescription: jobDescription,
	})
	return nonNil(qs), err
}

// RecommendCourses suggests courses that close the gap between skills and the job.
func (x *Executor) RecommendCourses(ctx context.Context, skills []string, jobDescription string) ([]types.CourseRecommendation, error) {
	cs, err := runStructured[[]types.CourseRecommendation](ctx, x, TaskRecommendCourses, Input{
		Skills:         skills,
		JobDescription: jobDescription,
	})
	return nonNil(cs), err
}

// EvaluateAnswer returns Markdown feedback on an interview answer.
func (x *Executor) EvaluateAnswer(ctx context.Context, question, answer, jobDescription string) (string, error) {
	return x.runText(ctx, TaskEvaluateAnswer, Input{
		Question:       question,
		Answer:         answer,
		JobDescription: jobDescription,
	})
}

// GenerateCoverLetter writes a cover letter for the job.
func (x *Executor) GenerateCoverLetter(ctx context.Context, record types.ResumeRecord, jobDescription string) (string, error) {
	return x.runText(ctx, TaskGenerateCoverLetter, Input{
		Record:         record.Normalized(),
		JobDescription: jobDescription,
	})
}

// GenerateLinkedInSummary writes a first-person About section.
func (x *Executor) GenerateLinkedInSummary(ctx context.Context, record types.ResumeRecord) (string, error) {
	return x.runText(ctx, TaskGenerateLinkedInSummary, Input{Record: record.Normalized()})
}

func (x *Executor) runText(ctx context.Context, name string, in Input) (string, error) {
	task, err := x.catalog.Get(name)
	if err != nil {
		return "", err
	}
	raw, err := x.Run(ctx, name, in)
	if err != nil {
		return task.Fallback, err
	}
	text := strings.TrimSpace(raw)
	if text == "" {
		return task.Fallback, nil
	}
	return text, nil
}

func runStructured[T any](ctx context.Context, x *Executor, name string, in Input) (T, error) {
	var zero T
	task, err := x.catalog.Get(name)
	if err != nil {
		return zero, err
	}

	raw, err := x.Run(ctx, name, in)
	if err != nil {
		return zero, err
	}

	shape := task.Kind.Shape()
	payload, ok := x.extractor.Payload(raw, shape)
	if !ok {
		return zero, nil
	}
	if gaps := task.SchemaGaps(payload); len(gaps) > 0 {
		x.logger.Warn("Oracle output deviates from task schema",
			"task", name,
			"gaps", gaps)
	}

	out, _ := extract.Unmarshal[T](x.extractor, payload, shape)
	return out, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
