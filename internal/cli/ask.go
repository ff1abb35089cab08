package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/kamtechie/zenji/internal/models"
	"github.com/kamtechie/zenji/internal/observability"
)

var errEmptyQuestion = errors.New("nothing to ask: pass text as arguments or on stdin")

var askTimeout time.Duration

var askCmd = &cobra.Command{
	Use:   "ask [text...]",
	Short: "Ask once and print the reply",
	Long: `Send a single message and print the assistant's reply. With no arguments the
message is read from stdin.

Examples:
  zenji ask "I can't stop worrying about work"
  echo "I feel exhausted and impatient" | zenji ask`,
	RunE: runAsk,
}

func init() {
	askCmd.Flags().DurationVar(&askTimeout, "timeout", 2*time.Minute, "give up after this long")
}

func runAsk(cmd *cobra.Command, args []string) error {
	text, err := questionText(args, cmd.InOrStdin())
	if err != nil {
		return err
	}

	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	logger, closeLog := observability.NewLogger(cmd.ErrOrStderr(), level, cfg.LogFile)
	defer func() { _ = closeLog() }()

	ctx, cancel := context.WithTimeout(cmd.Context(), askTimeout)
	defer cancel()

	svc, release, err := newChatService(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("start conversation: %w", err)
	}
	defer release()

	reply, err := svc.SendMessage(ctx, []models.ChatMessage{models.UserMessage(text)})
	if err != nil {
		return fmt.Errorf("ask: %w", err)
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), reply.Content)

	return err //nolint:wrapcheck // stdout write failure
}

// questionText joins args, or reads stdin when there are none.
func questionText(args []string, stdin io.Reader) (string, error) {
	text := strings.Join(args, " ")

	if len(args) == 0 {
		if f, ok := stdin.(*os.File); ok {
			if info, err := f.Stat(); err == nil && info.Mode()&os.ModeCharDevice != 0 {
				return "", errEmptyQuestion
			}
		}

		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}

		text = string(data)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", errEmptyQuestion
	}

	return text, nil
}
