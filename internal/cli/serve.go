package cli

import (
	"hiredly/internal/ai"
	"hiredly/internal/server"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Start an HTTP server exposing the analysis workflow and tasks as JSON
endpoints:

- POST /analyze           full analysis of a resume against a job
- POST /route             free-form instruction
- POST /cover-letter      cover letter
- POST /linkedin-summary  LinkedIn summary
- POST /evaluate-answer   interview answer feedback
- GET  /history           saved analyses (when history is enabled)
- GET  /health            model availability and circuit breaker state
- GET  /stats             server statistics and rate limiting info`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringP("port", "p", "", "Port to listen on (default from config)")
	serveCmd.Flags().String("host", "", "Host to bind to (default from config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	if port, _ := cmd.Flags().GetString("port"); port != "" {
		cfg.Server.Port = port
	}
	if host, _ := cmd.Flags().GetString("host"); host != "" {
		cfg.Server.Host = host
	}

	svc, err := buildServices(cmd.Context(), cfg, logger, true)
	if err != nil {
		return err
	}
	defer svc.Close(logger)

	deps := server.Dependencies{
		Analyzer:   svc.workflow,
		Router:     svc.router,
		Tasks:      svc.tasks,
		History:    svc.history,
		TaskNames:  svc.tasks.Catalog().Names(),
		RateLimits: svc.obs.Metrics(),
		Middleware: svc.obs.HTTPMiddleware(),
	}
	if health, ok := svc.oracle.(ai.HealthReporter); ok {
		deps.Health = health
	}

	serverCfg := server.ServerConfig{
		Host:           cfg.Server.Host,
		Port:           cfg.Server.Port,
		Version:        Version,
		APIKeys:        cfg.Server.APIKeys,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxRequestSize: cfg.App.MaxFileSize,
		RateLimit:      &cfg.Server.RateLimit,
		HistoryEnabled: cfg.History.Enabled,
	}
	return server.NewServer(serverCfg, deps, logger).Start(cmd.Context())
}
