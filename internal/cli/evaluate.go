package cli

import (
	"context"

	"hiredly/internal/catalog"
	"hiredly/internal/common"
	"hiredly/internal/types"

	"github.com/spf13/cobra"
)

var evaluateAnswerCmd = &cobra.Command{
	Use:   "evaluate-answer --question Q --answer A [job-description-file]",
	Short: "Get feedback on an interview answer",
	Long: `Evaluate an interview answer for relevance, structure and impact. The
optional job description file gives the evaluation the role's context.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runEvaluateAnswer,
}

var (
	evaluateConfig   common.CommandConfig
	evaluateQuestion string
	evaluateAnswer   string
)

func init() {
	addOutputFlags(evaluateAnswerCmd, &evaluateConfig)
	evaluateAnswerCmd.Flags().StringVar(&evaluateQuestion, "question", "", "Interview question (required)")
	evaluateAnswerCmd.Flags().StringVar(&evaluateAnswer, "answer", "", "Your answer (required)")
	_ = evaluateAnswerCmd.MarkFlagRequired("question")
	_ = evaluateAnswerCmd.MarkFlagRequired("answer")
}

func runEvaluateAnswer(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	if err := common.RequireText("question", evaluateQuestion); err != nil {
		return err
	}
	if err := common.RequireText("answer", evaluateAnswer); err != nil {
		return err
	}

	svc, err := buildServices(cmd.Context(), cfg, logger, false)
	if err != nil {
		return err
	}
	defer svc.Close(logger)

	createInput := func(contents []string) (string, error) {
		if len(contents) == 0 {
			return "", nil
		}
		return contents[0], nil
	}

	logDetails := func(jobDescription string, out common.CommandConfig) {
		logger.Info("Evaluating interview answer",
			"question_chars", len(evaluateQuestion),
			"answer_chars", len(evaluateAnswer),
			"has_job", jobDescription != "",
			"output_format", out.OutputFormat)
	}

	operation := func(ctx context.Context, jobDescription string) (types.TextResult, error) {
		text, err := svc.tasks.EvaluateAnswer(ctx, evaluateQuestion, evaluateAnswer, jobDescription)
		if err != nil {
			logger.LogError(err, "Answer evaluation degraded")
		}
		return types.TextResult{Task: catalog.TaskEvaluateAnswer, Text: text}, nil
	}

	runner := common.NewCommandRunner(logger, cfg.App.MaxFileSize)
	return common.RunCommand(cmd.Context(), runner, evaluateConfig, args, createInput, operation, logDetails)
}
