package cli

import (
	"fmt"

	"hiredly/internal/common"
	"hiredly/internal/history"

	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List saved analyses, newest first",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

var (
	historyConfig common.CommandConfig
	historyLimit  int
)

func init() {
	addOutputFlags(historyCmd, &historyConfig)
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", history.DefaultListLimit, "Maximum number of entries")
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	if !cfg.History.Enabled {
		return fmt.Errorf("history is disabled (set history.enabled or HIREDLY_HISTORY_ENABLED)")
	}

	store, err := history.OpenSQLite(cfg.History.DBPath)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.LogError(err, "Failed to close history store")
		}
	}()

	entries, err := store.List(cmd.Context(), historyLimit)
	if err != nil {
		return err
	}
	return common.NewOutputHandler(logger).HandleOutput(entries, historyConfig)
}
