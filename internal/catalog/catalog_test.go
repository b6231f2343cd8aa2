package catalog

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"hiredly/internal/ai"
	apperrors "hiredly/internal/errors"
	"hiredly/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeOracle struct {
	mu      sync.Mutex
	reply   string
	err     error
	prompts []string
}

func (f *fakeOracle) Generate(ctx context.Context, prompt string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, prompt)
	return f.reply, f.err
}

var testRecord = types.ResumeRecord{
	Name:       "Jane Doe",
	Summary:    "Backend engineer",
	Skills:     []string{"Go", "SQL"},
	Experience: []string{"Acme Corp, 2019-2024"},
}

func TestCatalogHasAllTasks(t *testing.T) {
	c := Default()
	want := []string{
		TaskAnalyzeResume, TaskEvaluateAnswer, TaskGenerateCoverLetter, TaskGenerateLinkedInSummary,
		TaskGenerateQuestions, TaskOptimizeForJob, TaskRecommendCourses, TaskScoreATS,
	}
	assert.Equal(t, want, c.Names())

	kinds := map[string]Kind{
		TaskAnalyzeResume:           KindObject,
		TaskScoreATS:                KindObject,
		TaskOptimizeForJob:          KindObject,
		TaskGenerateQuestions:       KindArray,
		TaskEvaluateAnswer:          KindText,
		TaskRecommendCourses:        KindArray,
		TaskGenerateCoverLetter:     KindText,
		TaskGenerateLinkedInSummary: KindText,
	}
	for name, kind := range kinds {
		task, err := c.Get(name)
		require.NoError(t, err)
		assert.Equal(t, kind, task.Kind, name)
		if kind == KindText {
			assert.NotEmpty(t, task.Fallback, name)
		}
	}
}

func TestGetUnknownTask(t *testing.T) {
	_, err := Default().Get("write_poem")
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperrors.ErrCodeUnknownTask, appErr.Code)
}

func TestPromptsDemandBareOutput(t *testing.T) {
	c := Default()
	in := Input{
		ResumeText:     "Jane Doe, Go developer",
		Record:         testRecord,
		JobDescription: "Senior Go engineer",
		Skills:         []string{"Go", "SQL"},
		Question:       "Tell me about yourself",
		Answer:         "I build APIs",
	}

	for _, name := range c.Names() {
		task, _ := c.Get(name)
		prompt, err := task.Render(in)
		require.NoError(t, err, name)
		assert.Contains(t, prompt, "ONLY", name)
		assert.Contains(t, prompt, "no commentary", name)
	}

	prompt, _ := mustTask(t, c, TaskEvaluateAnswer).Render(in)
	for _, heading := range []string{"Overall Score", "What Went Well", "Areas for Improvement", "Stronger Example Answer"} {
		assert.Contains(t, prompt, "## "+heading)
	}
	assert.Contains(t, prompt, "Tell me about yourself")

	prompt, _ = mustTask(t, c, TaskGenerateCoverLetter).Render(in)
	assert.Contains(t, prompt, "400 words")
	assert.Contains(t, prompt, `"name": "Jane Doe"`)

	prompt, _ = mustTask(t, c, TaskGenerateLinkedInSummary).Render(in)
	assert.Contains(t, prompt, "first person")

	prompt, _ = mustTask(t, c, TaskRecommendCourses).Render(in)
	assert.Contains(t, prompt, "Current Skills: Go, SQL")
}

func TestTemplateOverrides(t *testing.T) {
	c, err := New(map[string]string{TaskGenerateLinkedInSummary: "About {{.Record.Name}}"})
	require.NoError(t, err)

	prompt, err := mustTask(t, c, TaskGenerateLinkedInSummary).Render(Input{Record: testRecord})
	require.NoError(t, err)
	assert.Equal(t, "About Jane Doe", prompt)

	_, err = New(map[string]string{"write_poem": "x"})
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeConfig))

	_, err = New(map[string]string{TaskScoreATS: "{{.Broken"})
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeConfig))
}

func TestSchemaGapsReportButDoNotReject(t *testing.T) {
	task := mustTask(t, Default(), TaskScoreATS)
	assert.Empty(t, task.SchemaGaps([]byte(`{"ats_score": 80, "missing_critical_keywords": []}`)))

	gaps := task.SchemaGaps([]byte(`{"ats_score": 140, "missing_critical_keywords": []}`))
	assert.Len(t, gaps, 1)

	x := NewExecutor(&fakeOracle{reply: `{"ats_score": 140, "missing_critical_keywords": ["Go"]}`}, nil, nil, nil)
	res, err := x.ScoreATS(context.Background(), "resume", "job")
	require.NoError(t, err)
	assert.Equal(t, types.Score(140), res.ATSScore)
}

func TestAnalyzeResume(t *testing.T) {
	oracle := &fakeOracle{reply: "Here you go:\n```json\n" +
		`{"name": "Jane Doe", "email": "jane@example.com", "skills": ["Python", "AWS"]}` +
		"\n```\nLet me know if you need more."}
	x := NewExecutor(oracle, nil, nil, nil)

	rec, err := x.AnalyzeResume(context.Background(), "Jane Doe\nPython, AWS")
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", rec.Name)
	assert.Equal(t, []string{"Python", "AWS"}, rec.Skills)
	assert.NotNil(t, rec.Experience)
	assert.Contains(t, oracle.prompts[0], "Python, AWS")
}

func TestStructuredTasksDegrade(t *testing.T) {
	ctx := context.Background()

	t.Run("unparseable reply", func(t *testing.T) {
		x := NewExecutor(&fakeOracle{reply: "I cannot help with that."}, nil, nil, nil)

		rec, err := x.AnalyzeResume(ctx, "text")
		require.NoError(t, err)
		assert.True(t, rec.IsEmpty())

		qs, err := x.GenerateQuestions(ctx, "job", testRecord)
		require.NoError(t, err)
		assert.NotNil(t, qs)
		assert.Empty(t, qs)
	})

	t.Run("oracle failure", func(t *testing.T) {
		x := NewExecutor(ai.NopOracle{Reason: "offline"}, nil, nil, nil)

		cs, err := x.RecommendCourses(ctx, []string{"Go"}, "job")
		assert.True(t, ai.IsOracleError(err))
		assert.NotNil(t, cs)
		assert.Empty(t, cs)

		opt, err := x.OptimizeForJob(ctx, testRecord, "job")
		assert.Error(t, err)
		assert.True(t, opt.IsEmpty())
	})
}

func TestGenerateQuestions(t *testing.T) {
	reply := `Sure! Questions below:
[{"question": "Describe a Go service you built", "category": "Technical", "tips": "Be concrete"},
 {"question": "Tell me about a conflict", "category": "Leadership", "tips": "Use STAR"}]`
	x := NewExecutor(&fakeOracle{reply: reply}, nil, nil, nil)

	qs, err := x.GenerateQuestions(context.Background(), "job", testRecord)
	require.NoError(t, err)
	require.Len(t, qs, 2)
	assert.Equal(t, "Leadership", qs[1].Category)
}

func TestTextTasks(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name string
		run  func(x *Executor) (string, error)
		want string
	}{
		{
			name: "evaluate answer",
			run: func(x *Executor) (string, error) {
				return x.EvaluateAnswer(ctx, "q", "a", "job")
			},
			want: "Feedback could not be generated.",
		},
		{
			name: "cover letter",
			run: func(x *Executor) (string, error) {
				return x.GenerateCoverLetter(ctx, testRecord, "job")
			},
			want: "Cover letter could not be generated.",
		},
		{
			name: "linkedin summary",
			run: func(x *Executor) (string, error) {
				return x.GenerateLinkedInSummary(ctx, testRecord)
			},
			want: "LinkedIn summary could not be generated.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, err := tt.run(NewExecutor(&fakeOracle{reply: "  Generated text\n"}, nil, nil, nil))
			require.NoError(t, err)
			assert.Equal(t, "Generated text", text)

			text, err = tt.run(NewExecutor(&fakeOracle{err: errors.New("quota")}, nil, nil, nil))
			assert.Error(t, err)
			assert.Equal(t, tt.want, text)
		})
	}
}

func TestRunRejectsUnknownTask(t *testing.T) {
	oracle := &fakeOracle{reply: "x"}
	_, err := NewExecutor(oracle, nil, nil, nil).Run(context.Background(), "nope", Input{})
	assert.Error(t, err)
	assert.Empty(t, oracle.prompts)
}

func mustTask(t *testing.T, c *Catalog, name string) *Task {
	t.Helper()
	task, err := c.Get(name)
	require.NoError(t, err)
	return task
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "text", KindText.String())
	assert.True(t, strings.HasPrefix(KindArray.Shape().String(), "array"))
}
