package observability

import (
	"fmt"
	"net/http"
	"time"

	"hiredly/internal/config"
	"hiredly/internal/errors"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/sdk/metric"
)

// SetupPrometheusExporter creates the exporter and a mux serving it on the
// configured endpoint.
func SetupPrometheusExporter(cfg config.PrometheusConfig) (metric.Reader, *http.ServeMux, error) {
	exporter, err := prometheus.New()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create Prometheus exporter: %w", err)
	}

	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = "/metrics"
	}

	// The exporter registers with the default registry served by promhttp.
	mux := http.NewServeMux()
	mux.Handle(endpoint, promhttp.Handler())
	return exporter, mux, nil
}

// StartPrometheusServer serves mux in the background on port.
func StartPrometheusServer(mux *http.ServeMux, port string, logger *errors.Logger) *http.Server {
	server := &http.Server{
		Addr:              ":" + port,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	logger.Info("Starting Prometheus metrics server", "address", server.Addr)
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.LogError(err, "Prometheus server failed", "address", server.Addr)
		}
	}()
	return server
}
