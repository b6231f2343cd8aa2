package observability

import (
	"context"
	"fmt"
	"strconv"

	"hiredly/internal/ai"
	"hiredly/internal/config"
	"hiredly/internal/extract"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds the application instruments. Its observer methods plug into
// the oracle, the workflow and the router.
type Metrics struct {
	toggles config.CustomMetricsConfig

	oracleDuration metric.Float64Histogram
	oracleCalls    metric.Int64Counter
	oracleErrors   metric.Int64Counter
	oracleTokens   metric.Int64Counter

	stageDuration      metric.Float64Histogram
	stageCount         metric.Int64Counter
	extractionFailures metric.Int64Counter
	routerDispatch     metric.Int64Counter

	rateLimitHits metric.Int64Counter
}

// NewMetrics registers every instrument on meter.
func NewMetrics(meter metric.Meter, toggles config.CustomMetricsConfig) (*Metrics, error) {
	m := &Metrics{toggles: toggles}
	var err error

	if m.oracleDuration, err = meter.Float64Histogram("hiredly_oracle_duration_seconds",
		metric.WithDescription("Duration of text oracle calls"),
		metric.WithUnit("s")); err != nil {
		return nil, fmt.Errorf("oracle duration histogram: %w", err)
	}
	if m.oracleCalls, err = meter.Int64Counter("hiredly_oracle_calls_total",
		metric.WithDescription("Text oracle calls")); err != nil {
		return nil, fmt.Errorf("oracle calls counter: %w", err)
	}
	if m.oracleErrors, err = meter.Int64Counter("hiredly_oracle_errors_total",
		metric.WithDescription("Failed text oracle calls")); err != nil {
		return nil, fmt.Errorf("oracle errors counter: %w", err)
	}
	if m.oracleTokens, err = meter.Int64Counter("hiredly_oracle_tokens_total",
		metric.WithDescription("Tokens consumed by the text oracle")); err != nil {
		return nil, fmt.Errorf("oracle tokens counter: %w", err)
	}
	if m.stageDuration, err = meter.Float64Histogram("hiredly_workflow_stage_duration_seconds",
		metric.WithDescription("Duration of workflow stages"),
		metric.WithUnit("s")); err != nil {
		return nil, fmt.Errorf("stage duration histogram: %w", err)
	}
	if m.stageCount, err = meter.Int64Counter("hiredly_workflow_stages_total",
		metric.WithDescription("Completed workflow stages")); err != nil {
		return nil, fmt.Errorf("stage counter: %w", err)
	}
	if m.extractionFailures, err = meter.Int64Counter("hiredly_extraction_failures_total",
		metric.WithDescription("Oracle replies that could not be parsed")); err != nil {
		return nil, fmt.Errorf("extraction failures counter: %w", err)
	}
	if m.routerDispatch, err = meter.Int64Counter("hiredly_router_dispatch_total",
		metric.WithDescription("Ad-hoc instructions dispatched per task")); err != nil {
		return nil, fmt.Errorf("router dispatch counter: %w", err)
	}
	if m.rateLimitHits, err = meter.Int64Counter("hiredly_rate_limit_hits_total",
		metric.WithDescription("Requests rejected by the rate limiter")); err != nil {
		return nil, fmt.Errorf("rate limit counter: %w", err)
	}
	return m, nil
}

// ObserveOracleCall records duration, outcome and token usage of one call.
func (m *Metrics) ObserveOracleCall(ctx context.Context, model string, err error, seconds float64, usage *ai.TokenUsage) {
	attrs := metric.WithAttributes(attribute.String("model", model))
	if m.toggles.OracleCalls {
		m.oracleCalls.Add(ctx, 1, attrs)
		m.oracleDuration.Record(ctx, seconds, attrs)
		if err != nil {
			m.oracleErrors.Add(ctx, 1, attrs)
		}
	}
	if m.toggles.TokenUsage && usage != nil {
		m.oracleTokens.Add(ctx, usage.InputTokens, metric.WithAttributes(
			attribute.String("model", model), attribute.String("direction", "input")))
		m.oracleTokens.Add(ctx, usage.OutputTokens, metric.WithAttributes(
			attribute.String("model", model), attribute.String("direction", "output")))
	}
}

// ObserveStage records one workflow stage.
func (m *Metrics) ObserveStage(ctx context.Context, stage string, seconds float64, err error) {
	if !m.toggles.Workflow {
		return
	}
	m.stageDuration.Record(ctx, seconds, metric.WithAttributes(attribute.String("stage", stage)))
	m.stageCount.Add(ctx, 1, metric.WithAttributes(
		attribute.String("stage", stage),
		attribute.String("success", strconv.FormatBool(err == nil))))
}

// ObserveDispatch counts router decisions. Unmatched instructions use the
// task label "none".
func (m *Metrics) ObserveDispatch(ctx context.Context, task string, handled bool) {
	if !m.toggles.Workflow {
		return
	}
	if !handled || task == "" {
		task = "none"
	}
	m.routerDispatch.Add(ctx, 1, metric.WithAttributes(attribute.String("task", task)))
}

// ExtractionFailureHook counts degraded extractions by expected shape.
func (m *Metrics) ExtractionFailureHook() extract.FailureHook {
	return func(shape extract.Shape, reason string) {
		if !m.toggles.Workflow {
			return
		}
		m.extractionFailures.Add(context.Background(), 1,
			metric.WithAttributes(attribute.String("shape", shape.String())))
	}
}

// RecordRateLimitHit counts a rejected request.
func (m *Metrics) RecordRateLimitHit(ctx context.Context, key string) {
	if !m.toggles.Infrastructure {
		return
	}
	m.rateLimitHits.Add(ctx, 1, metric.WithAttributes(attribute.String("limiter", key)))
}
