package cli

import (
	"context"

	"hiredly/internal/common"
	"hiredly/internal/config"
	"hiredly/internal/errors"

	"github.com/spf13/cobra"
)

type configKeyType struct{}
type loggerKeyType struct{}

var configKey = configKeyType{}
var loggerKey = loggerKeyType{}

var rootCmd = &cobra.Command{
	Use:   "hiredly",
	Short: "AI-assisted resume analysis and job application toolkit",
	Long: `Hiredly analyzes a resume against a job description with a generative
model: it extracts a structured profile, scores ATS compatibility, suggests
optimizations, and prepares interview questions and course recommendations.
It can also write cover letters and LinkedIn summaries, give feedback on
interview answers, and answer free-form requests.`,
	SilenceUsage: true,
}

// Execute runs the root command with cfg and logger available to subcommands.
func Execute(ctx context.Context, cfg *config.Config, logger *errors.Logger) error {
	ctx = context.WithValue(ctx, configKey, cfg)
	ctx = context.WithValue(ctx, loggerKey, logger)
	rootCmd.SetContext(ctx)
	return rootCmd.Execute()
}

func getConfigFromContext(ctx context.Context) *config.Config {
	if cfg, ok := ctx.Value(configKey).(*config.Config); ok {
		return cfg
	}
	panic("config not found in context")
}

func getLoggerFromContext(ctx context.Context) *errors.Logger {
	if logger, ok := ctx.Value(loggerKey).(*errors.Logger); ok {
		return logger
	}
	panic("logger not found in context")
}

// addOutputFlags registers --output and --format on cmd and resolves the
// default format before the command runs.
func addOutputFlags(cmd *cobra.Command, out *common.CommandConfig) {
	cmd.Flags().StringVarP(&out.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	cmd.Flags().StringVar(&out.OutputFormat, "format", "", "Output format: json, text, or markdown")

	_ = cmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return getConfigFromContext(cmd.Context()).App.SupportedFormats, cobra.ShellCompDirectiveNoFileComp
	})

	cmd.PreRunE = func(cmd *cobra.Command, args []string) error {
		cfg := getConfigFromContext(cmd.Context())
		if out.OutputFormat == "" {
			out.OutputFormat = cfg.App.DefaultFormat
		}
		return common.ValidateOutputFormat(out.OutputFormat, cfg.App.SupportedFormats)
	}
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(coverLetterCmd)
	rootCmd.AddCommand(linkedInCmd)
	rootCmd.AddCommand(evaluateAnswerCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}
