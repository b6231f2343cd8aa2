package server

import (
	"context"
	"io"
	"net/http"
	"os"
	"time"

	"hiredly/internal/ai"
	"hiredly/internal/config"
	"hiredly/internal/errors"
	"hiredly/internal/history"
	"hiredly/internal/types"

	"github.com/go-playground/validator/v10"
)

type AnalyzeRequest struct {
	Resume         string `json:"resume" validate:"notblank,max=100000"`
	JobDescription string `json:"jobDescription" validate:"notblank,max=100000"`
}

// AnalyzeResponse is the bundle plus the id under which it was saved.
type AnalyzeResponse struct {
	types.AnalysisBundle
	HistoryID string `json:"historyId,omitempty"`
}

type RouteRequest struct {
	Instruction    string             `json:"instruction" validate:"notblank,max=2000"`
	JobDescription string             `json:"jobDescription" validate:"max=100000"`
	Record         types.ResumeRecord `json:"record"`
	Resume         string             `json:"resume" validate:"max=100000"`
	Question       string             `json:"question" validate:"max=5000"`
	Answer         string             `json:"answer" validate:"max=20000"`
}

// ProfileRequest identifies a candidate either by an extracted record or by
// raw resume text that is extracted on the fly.
type ProfileRequest struct {
	Record         types.ResumeRecord `json:"record"`
	Resume         string             `json:"resume" validate:"max=100000"`
	JobDescription string             `json:"jobDescription" validate:"max=100000"`
}

type EvaluateAnswerRequest struct {
	Question       string `json:"question" validate:"notblank,max=5000"`
	Answer         string `json:"answer" validate:"notblank,max=20000"`
	JobDescription string `json:"jobDescription" validate:"max=100000"`
}

// TextResponse carries free-text output. Warning is set when the text is a
// fallback standing in for a failed generation.
type TextResponse struct {
	types.TextResult
	Warning string `json:"warning,omitempty"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// Analyzer runs the full analysis workflow.
type Analyzer interface {
	Run(ctx context.Context, resumeText, jobDescription string) types.AnalysisBundle
}

// InstructionRouter dispatches free-form instructions.
type InstructionRouter interface {
	Route(ctx context.Context, instruction string, record types.ResumeRecord, jobDescription string, extras map[string]string) types.RouteOutcome
}

// TextTasks are the single catalog tasks exposed directly.
type TextTasks interface {
	AnalyzeResume(ctx context.Context, resumeText string) (types.ResumeRecord, error)
	GenerateCoverLetter(ctx context.Context, record types.ResumeRecord, jobDescription string) (string, error)
	GenerateLinkedInSummary(ctx context.Context, record types.ResumeRecord) (string, error)
	EvaluateAnswer(ctx context.Context, question, answer, jobDescription string) (string, error)
}

// RateLimitObserver is told about every rejected request.
type RateLimitObserver interface {
	RecordRateLimitHit(ctx context.Context, key string)
}

// Dependencies are the domain components the handlers call.
type Dependencies struct {
	Analyzer   Analyzer
	Router     InstructionRouter
	Tasks      TextTasks
	History    history.Store
	Health     ai.HealthReporter
	TaskNames  []string
	RateLimits RateLimitObserver
	Middleware func(http.Handler) http.Handler
}

// Server holds configuration for the HTTP server
type Server struct {
	Host    string
	Port    string
	Version string

	// API Authentication
	APIKeys map[string]bool

	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	MaxRequestSize int64

	RateLimit   *config.RateLimitConfig
	RateLimiter *RateLimiter

	HistoryEnabled bool

	Logger *errors.Logger

	deps     Dependencies
	validate *validator.Validate
	out      io.Writer
}

// ServerConfig holds configuration for creating a Server instance
type ServerConfig struct {
	Host           string
	Port           string
	Version        string
	APIKeys        []string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxRequestSize int64
	RateLimit      *config.RateLimitConfig
	HistoryEnabled bool
}

// NewServer creates a new Server instance from a ServerConfig struct
func NewServer(cfg ServerConfig, deps Dependencies, logger *errors.Logger) *Server {
	if logger == nil {
		logger = errors.Discard()
	}
	if deps.History == nil {
		deps.History = history.NopStore{}
	}

	apiKeyMap := make(map[string]bool)
	for _, key := range cfg.APIKeys {
		if key != "" {
			apiKeyMap[key] = true
		}
	}

	var rateLimiter *RateLimiter
	if cfg.RateLimit != nil && cfg.RateLimit.Enabled {
		rateLimiter = NewRateLimiter(cfg.RateLimit.RequestsPerMin, cfg.RateLimit.BurstCapacity, logger)
	}

	return &Server{
		Host:           cfg.Host,
		Port:           cfg.Port,
		Version:        cfg.Version,
		APIKeys:        apiKeyMap,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		MaxRequestSize: cfg.MaxRequestSize,
		RateLimit:      cfg.RateLimit,
		RateLimiter:    rateLimiter,
		HistoryEnabled: cfg.HistoryEnabled,
		Logger:         logger,
		deps:           deps,
		validate:       newValidator(),
		out:            os.Stdout,
	}
}
