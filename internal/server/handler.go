package server

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"hiredly/internal/catalog"
	"hiredly/internal/history"
	"hiredly/internal/router"
	"hiredly/internal/types"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("hiredly.api")

func (s *Server) analyzeHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracer.Start(r.Context(), "api.analyze")
	defer span.End()

	var req AnalyzeRequest
	if !s.decode(w, r, span, &req) {
		return
	}
	span.SetAttributes(
		attribute.Int("request.resume_length", len(req.Resume)),
		attribute.Int("request.job_length", len(req.JobDescription)),
	)

	bundle := s.deps.Analyzer.Run(ctx, req.Resume, req.JobDescription)
	resp := AnalyzeResponse{AnalysisBundle: bundle}

	if s.HistoryEnabled {
		entry, err := s.deps.History.Save(ctx, bundle.Record, req.JobDescription, float64(bundle.ATS.ATSScore))
		if err != nil {
			// The analysis is still returned; persistence is best effort.
			s.Logger.LogError(err, "Failed to save analysis history")
		} else {
			resp.HistoryID = entry.ID
		}
	}

	span.SetAttributes(
		attribute.Int("response.issues", len(bundle.Issues)),
		attribute.Float64("ats.score", float64(bundle.ATS.ATSScore)),
	)
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) routeHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracer.Start(r.Context(), "api.route")
	defer span.End()

	var req RouteRequest
	if !s.decode(w, r, span, &req) {
		return
	}

	// Only tasks that read the record trigger an extraction.
	record := req.Record.Normalized()
	if router.NeedsRecord(req.Instruction) {
		var err error
		record, err = s.resolveRecord(ctx, req.Record, req.Resume)
		if err != nil {
			span.RecordError(err)
			writeErrorResponse(w, "Failed to extract resume", err.Error(), http.StatusBadGateway)
			return
		}
	}

	extras := map[string]string{}
	if strings.TrimSpace(req.Question) != "" {
		extras[router.ExtraQuestion] = req.Question
	}
	if strings.TrimSpace(req.Answer) != "" {
		extras[router.ExtraAnswer] = req.Answer
	}

	outcome := s.deps.Router.Route(ctx, req.Instruction, record, req.JobDescription, extras)
	span.SetAttributes(attribute.String("route.task", outcome.Task))
	writeJSON(w, http.StatusOK, outcome)
}

func (s *Server) coverLetterHandler(w http.ResponseWriter, r *http.Request) {
	s.profileText(w, r, "api.cover_letter", catalog.TaskGenerateCoverLetter, true,
		func(ctx context.Context, record types.ResumeRecord, jd string) (string, error) {
			return s.deps.Tasks.GenerateCoverLetter(ctx, record, jd)
		})
}

func (s *Server) linkedInHandler(w http.ResponseWriter, r *http.Request) {
	s.profileText(w, r, "api.linkedin_summary", catalog.TaskGenerateLinkedInSummary, false,
		func(ctx context.Context, record types.ResumeRecord, _ string) (string, error) {
			return s.deps.Tasks.GenerateLinkedInSummary(ctx, record)
		})
}

// profileText serves the record-based free-text tasks.
func (s *Server) profileText(w http.ResponseWriter, r *http.Request, spanName, task string, needsJob bool,
	generate func(context.Context, types.ResumeRecord, string) (string, error)) {
	ctx, span := tracer.Start(r.Context(), spanName)
	defer span.End()

	var req ProfileRequest
	if !s.decode(w, r, span, &req) {
		return
	}
	if req.Record.IsEmpty() && strings.TrimSpace(req.Resume) == "" {
		writeErrorResponse(w, "Missing resume", "record or resume field is required", http.StatusBadRequest)
		return
	}
	if needsJob && strings.TrimSpace(req.JobDescription) == "" {
		writeErrorResponse(w, "Missing job description", "jobDescription field is required", http.StatusBadRequest)
		return
	}

	record, err := s.resolveRecord(ctx, req.Record, req.Resume)
	if err != nil {
		span.RecordError(err)
		writeErrorResponse(w, "Failed to extract resume", err.Error(), http.StatusBadGateway)
		return
	}

	text, err := generate(ctx, record, req.JobDescription)
	s.writeText(w, span, task, text, err)
}

func (s *Server) evaluateAnswerHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracer.Start(r.Context(), "api.evaluate_answer")
	defer span.End()

	var req EvaluateAnswerRequest
	if !s.decode(w, r, span, &req) {
		return
	}

	text, err := s.deps.Tasks.EvaluateAnswer(ctx, req.Question, req.Answer, req.JobDescription)
	s.writeText(w, span, catalog.TaskEvaluateAnswer, text, err)
}

func (s *Server) historyListHandler(w http.ResponseWriter, r *http.Request) {
	limit := history.DefaultListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeErrorResponse(w, "Invalid limit", "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = n
	}

	entries, err := s.deps.History.List(r.Context(), limit)
	if err != nil {
		s.Logger.LogError(err, "Failed to list history")
		writeErrorResponse(w, "Failed to list history", err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) historyGetHandler(w http.ResponseWriter, r *http.Request) {
	entry, err := s.deps.History.Get(r.Context(), r.PathValue("id"))
	switch {
	case stderrors.Is(err, history.ErrNotFound):
		writeErrorResponse(w, "Not found", fmt.Sprintf("no analysis with id %q", r.PathValue("id")), http.StatusNotFound)
	case err != nil:
		s.Logger.LogError(err, "Failed to load history entry")
		writeErrorResponse(w, "Failed to load history", err.Error(), http.StatusInternalServerError)
	default:
		writeJSON(w, http.StatusOK, entry)
	}
}

// resolveRecord prefers an explicit record and extracts one from resume
// text otherwise. An empty record is valid input for the tasks.
func (s *Server) resolveRecord(ctx context.Context, record types.ResumeRecord, resume string) (types.ResumeRecord, error) {
	if !record.IsEmpty() || strings.TrimSpace(resume) == "" {
		return record.Normalized(), nil
	}
	return s.deps.Tasks.AnalyzeResume(ctx, resume)
}

// writeText answers 200 even when generation failed: the text is then the
// task's fallback and the failure is reported as a warning.
func (s *Server) writeText(w http.ResponseWriter, span trace.Span, task, text string, err error) {
	resp := TextResponse{TextResult: types.TextResult{Task: task, Text: text}}
	if err != nil {
		span.RecordError(err)
		s.Logger.Warn("Text task degraded to fallback", "task", task, "error", err.Error())
		resp.Warning = err.Error()
	}
	span.SetAttributes(attribute.Int("response.text_length", len(text)))
	writeJSON(w, http.StatusOK, resp)
}

// decode parses and validates the body, answering 400 on failure.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, span trace.Span, v any) bool {
	if err := s.parseJSONRequest(r, v); err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.String("error.type", "validation"))
		writeErrorResponse(w, "Invalid request body", err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}
