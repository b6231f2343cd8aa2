package cli

import (
	"context"
	"fmt"
	"strings"

	"hiredly/internal/catalog"
	"hiredly/internal/common"
	"hiredly/internal/router"
	"hiredly/internal/types"

	"github.com/spf13/cobra"
)

var askCmd = &cobra.Command{
	Use:   `ask "instruction" [resume-file] [job-description-file]`,
	Short: "Answer a free-form request about your resume",
	Long: `Route a free-form instruction to the matching task. Examples:

  hiredly ask "optimize my resume" resume.pdf job.txt
  hiredly ask "prepare me for the interview" resume.docx job.txt
  hiredly ask "evaluate my answer" resume.txt job.txt --question "..." --answer "..."

Instructions that match no task get a short guidance message instead.`,
	Args: cobra.ExactArgs(3),
	RunE: runAsk,
}

var (
	askConfig   common.CommandConfig
	askQuestion string
	askAnswer   string
)

func init() {
	addOutputFlags(askCmd, &askConfig)
	askCmd.Flags().StringVar(&askQuestion, "question", "", "Interview question, for answer evaluation")
	askCmd.Flags().StringVar(&askAnswer, "answer", "", "Your answer, for answer evaluation")
}

type askInput struct {
	Resume         string
	JobDescription string
}

func runAsk(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	instruction := args[0]
	if err := common.RequireText("instruction", instruction); err != nil {
		return err
	}

	svc, err := buildServices(cmd.Context(), cfg, logger, false)
	if err != nil {
		return err
	}
	defer svc.Close(logger)

	createInput := func(contents []string) (askInput, error) {
		if len(contents) != 2 {
			return askInput{}, fmt.Errorf("expected 2 file paths, got %d", len(contents))
		}
		return askInput{Resume: contents[0], JobDescription: contents[1]}, nil
	}

	logDetails := func(input askInput, out common.CommandConfig) {
		task, _ := router.Match(instruction)
		logger.Info("Routing instruction",
			"task", task,
			"resume_chars", len(input.Resume),
			"output_format", out.OutputFormat)
	}

	extras := map[string]string{}
	if strings.TrimSpace(askQuestion) != "" {
		extras[router.ExtraQuestion] = askQuestion
	}
	if strings.TrimSpace(askAnswer) != "" {
		extras[router.ExtraAnswer] = askAnswer
	}

	operation := func(ctx context.Context, input askInput) (types.RouteOutcome, error) {
		return routeInstruction(ctx, svc.tasks, svc.router, instruction, input, extras)
	}

	runner := common.NewCommandRunner(logger, cfg.App.MaxFileSize)
	return common.RunCommand(cmd.Context(), runner, askConfig, args[1:], createInput, operation, logDetails)
}

// routeInstruction extracts a record from the resume only for tasks that read
// one, then routes the instruction.
func routeInstruction(ctx context.Context, tasks *catalog.Executor, r *router.Router, instruction string, input askInput, extras map[string]string) (types.RouteOutcome, error) {
	var record types.ResumeRecord
	if router.NeedsRecord(instruction) {
		var err error
		record, err = tasks.AnalyzeResume(ctx, input.Resume)
		if err != nil {
			return types.RouteOutcome{}, fmt.Errorf("failed to extract resume: %w", err)
		}
	}
	return r.Route(ctx, instruction, record, input.JobDescription, extras), nil
}
