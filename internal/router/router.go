// Package router dispatches a free-form instruction to a single catalog task
// by keyword.
package router

import (
	"context"
	"strings"

	"hiredly/internal/catalog"
	"hiredly/internal/errors"
	"hiredly/internal/types"
	"hiredly/internal/workflow"
)

// User-facing replies that involve no oracle call.
const (
	MessageMissingExtras = "To evaluate an answer, I need both the question and your answer."
	MessageNoMatch       = "I'm sorry, I don't have a tool for that task. Please try asking me to 'optimize your resume' or 'prepare for an interview'."
)

// Keys read from the extras map.
const (
	ExtraQuestion = "question"
	ExtraAnswer   = "answer"
)

type rule struct {
	keywords []string
	task     string
}

// Evaluated top to bottom; the first rule with any matching keyword wins.
var rules = []rule{
	{keywords: []string{"summary", "optimize", "improve"}, task: catalog.TaskOptimizeForJob},
	{keywords: []string{"interview", "question"}, task: catalog.TaskGenerateQuestions},
	{keywords: []string{"evaluate", "feedback"}, task: catalog.TaskEvaluateAnswer},
}

// Match returns the task selected for instruction, or false if none applies.
func Match(instruction string) (string, bool) {
	lowered := strings.ToLower(instruction)
	for _, r := range rules {
		for _, kw := range r.keywords {
			if strings.Contains(lowered, kw) {
				return r.task, true
			}
		}
	}
	return "", false
}

// NeedsRecord reports whether routing instruction reads the resume record.
// Callers use it to skip extracting a record for instructions that are
// answered without one.
func NeedsRecord(instruction string) bool {
	task, ok := Match(instruction)
	return ok && (task == catalog.TaskOptimizeForJob || task == catalog.TaskGenerateQuestions)
}

// DispatchObserver is told which task every instruction resolved to. An
// empty task means no rule matched.
type DispatchObserver interface {
	ObserveDispatch(ctx context.Context, task string, handled bool)
}

// Router executes the matched task through a catalog executor.
type Router struct {
	tasks    *catalog.Executor
	logger   *errors.Logger
	observer DispatchObserver
}

// Option configures a Router
type Option func(*Router)

// WithDispatchObserver reports routing decisions.
func WithDispatchObserver(observer DispatchObserver) Option {
	return func(r *Router) {
		r.observer = observer
	}
}

// New creates a router over tasks.
func New(tasks *catalog.Executor, logger *errors.Logger, opts ...Option) *Router {
	if logger == nil {
		logger = errors.Discard()
	}
	r := &Router{tasks: tasks, logger: logger}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Route runs the task matching instruction. The outcome carries either the
// task's result or a message for the user; oracle failures are reported in
// Error next to the task's safe default. An optimization is also merged
// into record and the merged copy returned in the outcome.
func (r *Router) Route(ctx context.Context, instruction string, record types.ResumeRecord, jobDescription string, extras map[string]string) types.RouteOutcome {
	task, ok := Match(instruction)
	if !ok {
		r.logger.Debug("No route for instruction", "instruction_length", len(instruction))
		r.observe(ctx, "", false)
		return types.RouteOutcome{Message: MessageNoMatch}
	}

	r.logger.Info("Routing instruction", "task", task)

	var (
		result  any
		updated *types.ResumeRecord
		err     error
	)
	switch task {
	case catalog.TaskOptimizeForJob:
		var opt types.OptimizationResult
		opt, err = r.tasks.OptimizeForJob(ctx, record, jobDescription)
		merged := workflow.Merge(record, opt)
		result, updated = opt, &merged
	case catalog.TaskGenerateQuestions:
		result, err = r.tasks.GenerateQuestions(ctx, jobDescription, record)
	case catalog.TaskEvaluateAnswer:
		question := strings.TrimSpace(extras[ExtraQuestion])
		answer := strings.TrimSpace(extras[ExtraAnswer])
		if question == "" || answer == "" {
			r.observe(ctx, task, false)
			return types.RouteOutcome{Task: task, Message: MessageMissingExtras}
		}
		var text string
		text, err = r.tasks.EvaluateAnswer(ctx, question, answer, jobDescription)
		result = types.TextResult{Task: task, Text: text}
	}

	r.observe(ctx, task, true)
	outcome := types.RouteOutcome{Task: task, Result: result, Record: updated}
	if err != nil {
		outcome.Error = err.Error()
	}
	return outcome
}

func (r *Router) observe(ctx context.Context, task string, handled bool) {
	if r.observer != nil {
		r.observer.ObserveDispatch(ctx, task, handled)
	}
}
