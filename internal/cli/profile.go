package cli

import (
	"context"
	"fmt"

	"hiredly/internal/catalog"
	"hiredly/internal/common"
	"hiredly/internal/types"

	"github.com/spf13/cobra"
)

var coverLetterCmd = &cobra.Command{
	Use:   "cover-letter [resume-file] [job-description-file]",
	Short: "Write a cover letter for a job description",
	Long: `Write a cover letter of at most 400 words from your resume, addressed to
the role in the job description.`,
	Args: cobra.ExactArgs(2),
	RunE: runCoverLetter,
}

var linkedInCmd = &cobra.Command{
	Use:   "linkedin [resume-file]",
	Short: "Write a first-person LinkedIn summary",
	Args:  cobra.ExactArgs(1),
	RunE:  runLinkedIn,
}

var (
	coverLetterConfig common.CommandConfig
	linkedInConfig    common.CommandConfig
)

func init() {
	addOutputFlags(coverLetterCmd, &coverLetterConfig)
	addOutputFlags(linkedInCmd, &linkedInConfig)
}

func runCoverLetter(cmd *cobra.Command, args []string) error {
	return runProfileText(cmd, args, coverLetterConfig, catalog.TaskGenerateCoverLetter,
		func(ctx context.Context, svc *services, record types.ResumeRecord, jd string) (string, error) {
			return svc.tasks.GenerateCoverLetter(ctx, record, jd)
		})
}

func runLinkedIn(cmd *cobra.Command, args []string) error {
	return runProfileText(cmd, args, linkedInConfig, catalog.TaskGenerateLinkedInSummary,
		func(ctx context.Context, svc *services, record types.ResumeRecord, _ string) (string, error) {
			return svc.tasks.GenerateLinkedInSummary(ctx, record)
		})
}

// runProfileText extracts the resume and feeds the record to a text task.
// args[0] is the resume; args[1], when present, the job description.
func runProfileText(cmd *cobra.Command, args []string, out common.CommandConfig, task string,
	generate func(context.Context, *services, types.ResumeRecord, string) (string, error)) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	svc, err := buildServices(cmd.Context(), cfg, logger, false)
	if err != nil {
		return err
	}
	defer svc.Close(logger)

	createInput := func(contents []string) ([]string, error) {
		if len(contents) == 1 {
			contents = append(contents, "")
		}
		return contents, nil
	}

	logDetails := func(input []string, out common.CommandConfig) {
		logger.Info("Starting text generation",
			"task", task,
			"resume_chars", len(input[0]),
			"output_format", out.OutputFormat)
	}

	operation := func(ctx context.Context, input []string) (types.TextResult, error) {
		record, err := svc.tasks.AnalyzeResume(ctx, input[0])
		if err != nil {
			return types.TextResult{}, fmt.Errorf("failed to extract resume: %w", err)
		}
		text, err := generate(ctx, svc, record, input[1])
		if err != nil {
			// text is the task's fallback; still printed.
			logger.LogError(err, "Text generation degraded", "task", task)
		}
		return types.TextResult{Task: task, Text: text}, nil
	}

	runner := common.NewCommandRunner(logger, cfg.App.MaxFileSize)
	return common.RunCommand(cmd.Context(), runner, out, args, createInput, operation, logDetails)
}
