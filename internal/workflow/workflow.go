// Package workflow runs the full resume analysis: extract, score, optimize
// and enrich, tolerating the failure of any single stage.
package workflow

import (
	"context"
	"time"

	"hiredly/internal/ai"
	"hiredly/internal/catalog"
	"hiredly/internal/errors"
	"hiredly/internal/extract"
	"hiredly/internal/types"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"
)

// Stage names, as reported in AnalysisBundle.Issues and metrics.
const (
	StageExtract   = "extract"
	StageScore     = "score"
	StageOptimize  = "optimize"
	StageQuestions = "questions"
	StageCourses   = "courses"
)

// StageObserver receives the outcome of every stage.
type StageObserver interface {
	ObserveStage(ctx context.Context, stage string, seconds float64, err error)
}

// Orchestrator sequences catalog tasks into one analysis. It keeps no state
// between runs and is safe for concurrent use.
type Orchestrator struct {
	tasks        *catalog.Executor
	logger       *errors.Logger
	observer     StageObserver
	retry        RetryPolicy
	stageTimeout time.Duration
}

// Option configures an Orchestrator
type Option func(*Orchestrator)

// WithRetry enables retries of transient oracle failures inside a stage.
func WithRetry(policy RetryPolicy) Option {
	return func(o *Orchestrator) {
		o.retry = policy
	}
}

// WithStageTimeout bounds each stage. Zero leaves stages unbounded.
func WithStageTimeout(d time.Duration) Option {
	return func(o *Orchestrator) {
		o.stageTimeout = d
	}
}

// WithStageObserver reports stage outcomes, typically to metrics.
func WithStageObserver(observer StageObserver) Option {
	return func(o *Orchestrator) {
		o.observer = observer
	}
}

// New builds an orchestrator over oracle. cat and extractor may be nil.
func New(oracle ai.Oracle, cat *catalog.Catalog, extractor *extract.Extractor, logger *errors.Logger, opts ...Option) *Orchestrator {
	if logger == nil {
		logger = errors.Discard()
	}
	o := &Orchestrator{logger: logger}
	for _, opt := range opts {
		opt(o)
	}
	o.tasks = catalog.NewExecutor(withRetry(oracle, o.retry, logger), cat, extractor, logger)
	return o
}

// Run analyzes resumeText against jobDescription. It always returns a
// complete bundle; stages that fail contribute their empty value and an
// entry in Issues.
func (o *Orchestrator) Run(ctx context.Context, resumeText, jobDescription string) types.AnalysisBundle {
	ctx, span := otel.Tracer("hiredly.workflow").Start(ctx, "workflow.run")
	defer span.End()

	start := time.Now()
	var bundle types.AnalysisBundle
	var issues issueList

	// Extract
	err := o.stage(ctx, StageExtract, func(ctx context.Context) error {
		record, err := o.tasks.AnalyzeResume(ctx, resumeText)
		bundle.Record = record
		if err == nil && record.IsEmpty() {
			return errors.NewInternalError(errors.ErrCodeInvalidFormat, "no structured data extracted from resume", nil)
		}
		return err
	})
	issues.add(StageExtract, err)

	// Score
	err = o.stage(ctx, StageScore, func(ctx context.Context) error {
		ats, err := o.tasks.ScoreATS(ctx, DeriveResumeText(bundle.Record), jobDescription)
		bundle.ATS = ats
		return err
	})
	issues.add(StageScore, err)

	// Optimize and merge
	err = o.stage(ctx, StageOptimize, func(ctx context.Context) error {
		opt, err := o.tasks.OptimizeForJob(ctx, bundle.Record, jobDescription)
		bundle.Optimization = opt
		bundle.Record = Merge(bundle.Record, opt)
		return err
	})
	issues.add(StageOptimize, err)

	// Enrich
	questionsErr, coursesErr := o.enrich(ctx, &bundle, jobDescription)
	issues.add(StageQuestions, questionsErr)
	issues.add(StageCourses, coursesErr)

	bundle.Issues = issues.list
	span.SetAttributes(
		attribute.Int("workflow.issues", len(issues.list)),
		attribute.Int("workflow.questions", len(bundle.Questions)),
		attribute.Int("workflow.courses", len(bundle.Courses)),
	)
	o.logger.Info("Analysis workflow completed",
		"duration_ms", time.Since(start).Milliseconds(),
		"issues", len(issues.list),
		"skills", len(bundle.Record.Skills),
		"questions", len(bundle.Questions),
		"courses", len(bundle.Courses))
	return bundle
}

// enrich generates questions and courses concurrently. Neither goroutine
// returns an error to the group, so one failure never cancels the other.
func (o *Orchestrator) enrich(ctx context.Context, bundle *types.AnalysisBundle, jobDescription string) (questionsErr, coursesErr error) {
	record := bundle.Record
	var g errgroup.Group

	g.Go(func() error {
		questionsErr = o.stage(ctx, StageQuestions, func(ctx context.Context) error {
			qs, err := o.tasks.GenerateQuestions(ctx, jobDescription, record)
			bundle.Questions = qs
			return err
		})
		return nil
	})
	g.Go(func() error {
		coursesErr = o.stage(ctx, StageCourses, func(ctx context.Context) error {
			cs, err := o.tasks.RecommendCourses(ctx, record.Skills, jobDescription)
			bundle.Courses = cs
			return err
		})
		return nil
	})

	_ = g.Wait()
	return questionsErr, coursesErr
}

func (o *Orchestrator) stage(ctx context.Context, name string, fn func(context.Context) error) error {
	ctx, span := otel.Tracer("hiredly.workflow").Start(ctx, "workflow."+name)
	defer span.End()

	if o.stageTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.stageTimeout)
		defer cancel()
	}

	start := time.Now()
	err := fn(ctx)
	elapsed := time.Since(start).Seconds()

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		o.logger.Warn("Workflow stage degraded", "stage", name, "error", err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
		o.logger.Debug("Workflow stage completed", "stage", name, "seconds", elapsed)
	}

	if o.observer != nil {
		o.observer.ObserveStage(ctx, name, elapsed, err)
	}
	return err
}

type issueList struct {
	list []types.StageIssue
}

func (l *issueList) add(stage string, err error) {
	if err != nil {
		l.list = append(l.list, types.StageIssue{Stage: stage, Error: err.Error()})
	}
}
