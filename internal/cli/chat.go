package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/kamtechie/zenji/internal/observability"
	"github.com/kamtechie/zenji/internal/tui"
)

var chatLogFile string

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat in the terminal",
	Long: `Open an interactive chat. Type how you feel and press Enter; Esc quits.

The UI owns the terminal, so logs go to --log-file (default: LOG_FILE, or discarded).`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		logFile := chatLogFile
		if logFile == "" {
			logFile = cfg.LogFile
		}

		level := observability.ParseLevel(cfg.LogLevel)
		if verbose {
			level = slog.LevelDebug
		}

		logger, closeLog, err := observability.NewFileLogger(logFile, level)
		if err != nil {
			return err
		}
		defer func() { _ = closeLog() }()

		slog.SetDefault(logger)

		svc, release, err := newChatService(cmd.Context(), cfg, logger)
		if err != nil {
			return fmt.Errorf("start conversation: %w", err)
		}
		defer release()

		return tui.Run(cmd.Context(), svc)
	},
}

func init() {
	chatCmd.Flags().StringVar(&chatLogFile, "log-file", "", "write logs to this file")
}
