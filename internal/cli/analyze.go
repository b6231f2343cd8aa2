package cli

import (
	"context"
	"fmt"

	"hiredly/internal/common"
	"hiredly/internal/types"

	"github.com/spf13/cobra"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [resume-file] [job-description-file]",
	Short: "Run the full resume analysis against a job description",
	Long: `Analyze a resume against a job description. The analysis extracts a
structured profile, scores ATS compatibility, merges optimization suggestions
into the profile, and generates interview questions and course
recommendations. Stages that fail are reported as issues; the rest of the
analysis is still produced.

Resumes may be plain text, Markdown, PDF or DOCX.`,
	Args: cobra.ExactArgs(2),
	RunE: runAnalyze,
}

var analyzeConfig common.CommandConfig

func init() {
	addOutputFlags(analyzeCmd, &analyzeConfig)
}

type analyzeInput struct {
	Resume         string
	JobDescription string
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	svc, err := buildServices(cmd.Context(), cfg, logger, false)
	if err != nil {
		return err
	}
	defer svc.Close(logger)

	createInput := func(contents []string) (analyzeInput, error) {
		if len(contents) != 2 {
			return analyzeInput{}, fmt.Errorf("expected 2 file paths, got %d", len(contents))
		}
		return analyzeInput{Resume: contents[0], JobDescription: contents[1]}, nil
	}

	logDetails := func(input analyzeInput, out common.CommandConfig) {
		logger.Info("Starting resume analysis",
			"resume_chars", len(input.Resume),
			"job_chars", len(input.JobDescription),
			"output_format", out.OutputFormat)
	}

	operation := func(ctx context.Context, input analyzeInput) (types.AnalysisBundle, error) {
		bundle := svc.workflow.Run(ctx, input.Resume, input.JobDescription)
		if cfg.History.Enabled {
			entry, err := svc.history.Save(ctx, bundle.Record, input.JobDescription, float64(bundle.ATS.ATSScore))
			if err != nil {
				logger.LogError(err, "Failed to save analysis history")
			} else {
				logger.Info("Analysis saved", "id", entry.ID)
			}
		}
		return bundle, nil
	}

	runner := common.NewCommandRunner(logger, cfg.App.MaxFileSize)
	if err := common.RunCommand(cmd.Context(), runner, analyzeConfig, args, createInput, operation, logDetails); err != nil {
		return fmt.Errorf("failed to analyze resume: %w", err)
	}
	logger.Info("Resume analysis completed")
	return nil
}
