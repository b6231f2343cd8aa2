package cli

import (
	"context"
	"fmt"
	"time"

	"hiredly/internal/ai"
	"hiredly/internal/catalog"
	"hiredly/internal/config"
	"hiredly/internal/errors"
	"hiredly/internal/extract"
	"hiredly/internal/history"
	"hiredly/internal/observability"
	"hiredly/internal/router"
	"hiredly/internal/workflow"
)

// services is the wired object graph shared by every command.
type services struct {
	obs      *observability.Manager
	oracle   ai.Oracle
	tasks    *catalog.Executor
	workflow *workflow.Orchestrator
	router   *router.Router
	history  history.Store
}

// buildServices wires oracle, catalog, workflow, router and history from cfg.
// With degraded set, a missing API key yields an oracle that fails every
// call instead of an error, so a server can still come up and report it.
func buildServices(ctx context.Context, cfg *config.Config, logger *errors.Logger, degraded bool) (*services, error) {
	obs, err := observability.NewManager(cfg.Observability, Version, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize observability: %w", err)
	}
	metrics := obs.Metrics()

	oracle, err := ai.NewOracle(ctx, cfg, logger, ai.WithUsageObserver(metrics))
	if err != nil {
		if !degraded || !errors.IsCode(err, errors.ErrCodeMissingAPIKey) {
			_ = obs.Shutdown(ctx)
			return nil, err
		}
		logger.Warn("No oracle available, generation requests will fail", "error", err.Error())
		oracle = ai.NopOracle{Reason: err.Error()}
	}

	cat, err := catalog.New(cfg.Prompts.Overrides())
	if err != nil {
		_ = obs.Shutdown(ctx)
		return nil, err
	}
	extractor := extract.New(logger, extract.WithFailureHook(metrics.ExtractionFailureHook()))
	tasks := catalog.NewExecutor(oracle, cat, extractor, logger)

	store, err := openHistory(cfg.History)
	if err != nil {
		_ = obs.Shutdown(ctx)
		return nil, err
	}

	return &services{
		obs:    obs,
		oracle: oracle,
		tasks:  tasks,
		workflow: workflow.New(oracle, cat, extractor, logger,
			workflow.WithRetry(workflow.RetryPolicy{MaxRetries: cfg.Workflow.MaxRetries, BaseDelay: time.Second}),
			workflow.WithStageTimeout(cfg.Workflow.StageTimeout),
			workflow.WithStageObserver(metrics)),
		router:  router.New(tasks, logger, router.WithDispatchObserver(metrics)),
		history: store,
	}, nil
}

func openHistory(cfg config.HistoryConfig) (history.Store, error) {
	if !cfg.Enabled {
		return history.NopStore{}, nil
	}
	store, err := history.OpenSQLite(cfg.DBPath)
	if err != nil {
		return nil, err
	}
	return store, nil
}

// Close releases the history database and flushes telemetry.
func (s *services) Close(logger *errors.Logger) {
	if err := s.history.Close(); err != nil {
		logger.LogError(err, "Failed to close history store")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.obs.Shutdown(ctx); err != nil {
		logger.LogError(err, "Failed to shutdown observability")
	}
}
