package server

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"hiredly/internal/ai"
	"hiredly/internal/catalog"
	"hiredly/internal/config"
	"hiredly/internal/history"
	"hiredly/internal/router"
	"hiredly/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAnalyzer struct {
	bundle types.AnalysisBundle
	calls  int
}

func (f *fakeAnalyzer) Run(ctx context.Context, resumeText, jobDescription string) types.AnalysisBundle {
	f.calls++
	return f.bundle
}

type fakeRouter struct {
	record types.ResumeRecord
	extras map[string]string
}

func (f *fakeRouter) Route(ctx context.Context, instruction string, record types.ResumeRecord, jobDescription string, extras map[string]string) types.RouteOutcome {
	f.record = record
	f.extras = extras
	task, ok := router.Match(instruction)
	if !ok {
		return types.RouteOutcome{Message: router.MessageNoMatch}
	}
	if task == catalog.TaskGenerateQuestions {
		return types.RouteOutcome{Task: task, Result: []types.InterviewQuestion{{Question: "Why Go?", Category: "Technical"}}}
	}
	return types.RouteOutcome{Task: task}
}

type countingOracle struct {
	reply string
	calls int
}

func (c *countingOracle) Generate(ctx context.Context, prompt string) (string, error) {
	c.calls++
	return c.reply, nil
}

type fakeTasks struct {
	record  types.ResumeRecord
	text    string
	err     error
	extract int
}

func (f *fakeTasks) AnalyzeResume(ctx context.Context, resumeText string) (types.ResumeRecord, error) {
	f.extract++
	return f.record, nil
}

func (f *fakeTasks) GenerateCoverLetter(ctx context.Context, record types.ResumeRecord, jobDescription string) (string, error) {
	return f.text, f.err
}

func (f *fakeTasks) GenerateLinkedInSummary(ctx context.Context, record types.ResumeRecord) (string, error) {
	return f.text, f.err
}

func (f *fakeTasks) EvaluateAnswer(ctx context.Context, question, answer, jobDescription string) (string, error) {
	return f.text, f.err
}

type fakeHealth struct{ available bool }

func (f fakeHealth) GetModelInfo(ctx context.Context) *ai.ModelInfo {
	return &ai.ModelInfo{Name: "gemini-test", Available: f.available}
}

func (f fakeHealth) GetCircuitBreakerStats() map[string]any {
	return map[string]any{"overall_healthy": f.available}
}

type hitCounter struct{ keys []string }

func (h *hitCounter) RecordRateLimitHit(ctx context.Context, key string) {
	h.keys = append(h.keys, key)
}

func newTestServer(t *testing.T, cfg ServerConfig, deps Dependencies) *Server {
	t.Helper()
	if deps.Analyzer == nil {
		deps.Analyzer = &fakeAnalyzer{}
	}
	if deps.Router == nil {
		deps.Router = &fakeRouter{}
	}
	if deps.Tasks == nil {
		deps.Tasks = &fakeTasks{}
	}
	s := NewServer(cfg, deps, nil)
	s.out = io.Discard
	t.Cleanup(s.cleanupRateLimiter)
	return s
}

func do(t *testing.T, s *Server, method, path string, body any, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestAnalyzeSavesHistory(t *testing.T) {
	store, err := history.OpenSQLite(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	analyzer := &fakeAnalyzer{bundle: types.AnalysisBundle{
		Record: types.ResumeRecord{Name: "Jane Doe", Skills: []string{"AWS", "Python"}},
		ATS:    types.ATSResult{ATSScore: 72},
	}}
	s := newTestServer(t, ServerConfig{HistoryEnabled: true}, Dependencies{Analyzer: analyzer, History: store})

	rec := do(t, s, http.MethodPost, "/analyze", AnalyzeRequest{Resume: "Jane Doe", JobDescription: "Python role"}, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp AnalyzeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Jane Doe", resp.Record.Name)
	assert.Equal(t, types.Score(72), resp.ATS.ATSScore)
	require.NotEmpty(t, resp.HistoryID)

	rec = do(t, s, http.MethodGet, "/history/"+resp.HistoryID, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var entry types.HistoryEntry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entry))
	assert.Equal(t, 72.0, entry.ATSScore)
	assert.Equal(t, "Python role", entry.JobDescription)

	rec = do(t, s, http.MethodGet, "/history?limit=5", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var entries []types.HistoryEntry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entries))
	assert.Len(t, entries, 1)
}

func TestAnalyzeValidation(t *testing.T) {
	analyzer := &fakeAnalyzer{}
	s := newTestServer(t, ServerConfig{}, Dependencies{Analyzer: analyzer})

	tests := []struct {
		name string
		body any
		want string
	}{
		{"blank resume", AnalyzeRequest{Resume: "  ", JobDescription: "Go"}, "resume field is required"},
		{"missing job", AnalyzeRequest{Resume: "Jane"}, "jobDescription field is required"},
		{"too long", AnalyzeRequest{Resume: strings.Repeat("x", 100001), JobDescription: "Go"}, "resume exceeds 100000 characters"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, http.MethodPost, "/analyze", tt.body, nil)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.want)
		})
	}

	req := httptest.NewRequest(http.MethodPost, "/analyze", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "content-type")

	assert.Zero(t, analyzer.calls)
}

func TestRequestSizeLimit(t *testing.T) {
	s := newTestServer(t, ServerConfig{MaxRequestSize: 64}, Dependencies{})
	rec := do(t, s, http.MethodPost, "/analyze", AnalyzeRequest{Resume: strings.Repeat("a", 100), JobDescription: "Go"}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "too large")
}

func TestRoutePassesExtrasAndExtractsRecord(t *testing.T) {
	rt := &fakeRouter{}
	tasks := &fakeTasks{record: types.ResumeRecord{Name: "Jane Doe"}}
	s := newTestServer(t, ServerConfig{}, Dependencies{Router: rt, Tasks: tasks})

	rec := do(t, s, http.MethodPost, "/route", RouteRequest{
		Instruction: "Prepare interview questions",
		Resume:      "Jane Doe, engineer",
		Question:    "Why Go?",
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"task":"generate_questions","result":[{"question":"Why Go?","category":"Technical","tips":""}]}`, rec.Body.String())
	assert.Equal(t, 1, tasks.extract)
	assert.Equal(t, "Jane Doe", rt.record.Name)
	assert.Equal(t, map[string]string{router.ExtraQuestion: "Why Go?"}, rt.extras)

	rec = do(t, s, http.MethodPost, "/route", RouteRequest{
		Instruction: "optimize my summary",
		Record:      types.ResumeRecord{Name: "Given"},
		Resume:      "ignored",
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, tasks.extract, "explicit record must not be re-extracted")
	assert.Equal(t, "Given", rt.record.Name)

	rec = do(t, s, http.MethodPost, "/route", RouteRequest{Instruction: "tell me a joke", Resume: "Jane Doe"}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, tasks.extract, "unmatched instructions need no record")
	assert.Contains(t, rec.Body.String(), "I don't have a tool for that task")
}

func TestRouteOracleCallsWithRealRouter(t *testing.T) {
	oracle := &countingOracle{reply: `{"name": "Jane Doe", "skills": ["Python"], "optimized_summary": "Sharper", "missing_keywords": ["AWS"]}`}
	exec := catalog.NewExecutor(oracle, nil, nil, nil)
	s := newTestServer(t, ServerConfig{}, Dependencies{Router: router.New(exec, nil), Tasks: exec})

	tests := []struct {
		name      string
		req       RouteRequest
		wantCalls int
		wantBody  string
	}{
		{
			name:      "evaluate without extras",
			req:       RouteRequest{Instruction: "evaluate my feedback", Resume: "Jane Doe, Python"},
			wantCalls: 0,
			wantBody:  router.MessageMissingExtras,
		},
		{
			name:      "no matching task",
			req:       RouteRequest{Instruction: "write a poem", Resume: "Jane Doe, Python"},
			wantCalls: 0,
			wantBody:  "I don't have a tool for that task",
		},
		{
			name:      "evaluate with extras skips extraction",
			req:       RouteRequest{Instruction: "evaluate", Resume: "Jane Doe, Python", Question: "Why Go?", Answer: "Speed."},
			wantCalls: 1,
			wantBody:  `"task":"evaluate_answer"`,
		},
		{
			name:      "optimize extracts then merges",
			req:       RouteRequest{Instruction: "optimize my resume", Resume: "Jane Doe, Python", JobDescription: "Cloud role"},
			wantCalls: 2,
			wantBody:  `"skills":["AWS","Python"]`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			oracle.calls = 0
			rec := do(t, s, http.MethodPost, "/route", tt.req, nil)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			assert.Equal(t, tt.wantCalls, oracle.calls)
			assert.Contains(t, rec.Body.String(), tt.wantBody)
		})
	}
}

func TestTextEndpoints(t *testing.T) {
	tasks := &fakeTasks{text: "Strong answer."}
	s := newTestServer(t, ServerConfig{}, Dependencies{Tasks: tasks})

	rec := do(t, s, http.MethodPost, "/evaluate-answer", EvaluateAnswerRequest{Question: "Why?", Answer: "Because."}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"task":"evaluate_answer","text":"Strong answer."}`, rec.Body.String())

	rec = do(t, s, http.MethodPost, "/cover-letter", ProfileRequest{Record: types.ResumeRecord{Name: "Jane"}}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "jobDescription")

	rec = do(t, s, http.MethodPost, "/linkedin-summary", ProfileRequest{}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	tasks.text = "Error generating LinkedIn summary."
	tasks.err = stderrors.New("oracle unavailable")
	rec = do(t, s, http.MethodPost, "/linkedin-summary", ProfileRequest{Record: types.ResumeRecord{Name: "Jane"}}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp TextResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "generate_linkedin_summary", resp.Task)
	assert.Equal(t, "Error generating LinkedIn summary.", resp.Text)
	assert.Equal(t, "oracle unavailable", resp.Warning)
}

func TestHistoryErrors(t *testing.T) {
	s := newTestServer(t, ServerConfig{}, Dependencies{})

	rec := do(t, s, http.MethodGet, "/history?limit=abc", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, s, http.MethodGet, "/history/missing", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, s, http.MethodGet, "/history", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestAuthMiddleware(t *testing.T) {
	s := newTestServer(t, ServerConfig{APIKeys: []string{"secret-key-123"}}, Dependencies{})
	body := EvaluateAnswerRequest{Question: "Q", Answer: "A"}

	tests := []struct {
		name   string
		header map[string]string
		want   int
	}{
		{"missing", nil, http.StatusUnauthorized},
		{"invalid", map[string]string{"X-API-Key": "wrong"}, http.StatusUnauthorized},
		{"header", map[string]string{"X-API-Key": "secret-key-123"}, http.StatusOK},
		{"bearer", map[string]string{"Authorization": "Bearer secret-key-123"}, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, http.MethodPost, "/evaluate-answer", body, tt.header)
			assert.Equal(t, tt.want, rec.Code)
		})
	}

	rec := do(t, s, http.MethodGet, "/stats", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code, "stats is public")
}

func TestRateLimit(t *testing.T) {
	hits := &hitCounter{}
	s := newTestServer(t, ServerConfig{
		RateLimit: &config.RateLimitConfig{Enabled: true, RequestsPerMin: 1, BurstCapacity: 2, ByIP: true},
	}, Dependencies{RateLimits: hits})
	body := EvaluateAnswerRequest{Question: "Q", Answer: "A"}

	for range 2 {
		assert.Equal(t, http.StatusOK, do(t, s, http.MethodPost, "/evaluate-answer", body, nil).Code)
	}
	rec := do(t, s, http.MethodPost, "/evaluate-answer", body, nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, []string{"ip"}, hits.keys)

	other := do(t, s, http.MethodPost, "/evaluate-answer", body, map[string]string{"X-Forwarded-For": "10.0.0.9"})
	assert.Equal(t, http.StatusOK, other.Code)
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, ServerConfig{Version: "1.2.3"}, Dependencies{Health: fakeHealth{available: true}})
	rec := do(t, s, http.MethodGet, "/health", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "1.2.3", body["version"])

	s = newTestServer(t, ServerConfig{}, Dependencies{Health: fakeHealth{available: false}})
	rec = do(t, s, http.MethodGet, "/health", nil, nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "degraded")

	s = newTestServer(t, ServerConfig{}, Dependencies{})
	assert.Equal(t, http.StatusServiceUnavailable, do(t, s, http.MethodGet, "/health", nil, nil).Code)
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name   string
		header map[string]string
		remote string
		want   string
	}{
		{"forwarded", map[string]string{"X-Forwarded-For": "bogus, 203.0.113.7"}, "192.0.2.1:1234", "203.0.113.7"},
		{"real ip", map[string]string{"X-Real-IP": "198.51.100.2"}, "192.0.2.1:1234", "198.51.100.2"},
		{"remote", nil, "192.0.2.1:1234", "192.0.2.1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.header {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, getClientIP(req))
		})
	}
}
