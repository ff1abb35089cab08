// Package cli provides the zenji command-line interface.
package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/kamtechie/zenji/internal/app"
	"github.com/kamtechie/zenji/internal/config"
	"github.com/kamtechie/zenji/internal/models"
	"github.com/kamtechie/zenji/internal/version"
)

var (
	// Global flags
	verbose bool

	// Loaded in PersistentPreRunE for commands that talk to OpenAI and the vector store.
	cfg *config.Config
)

// ChatService answers one conversation turn.
type ChatService interface {
	SendMessage(ctx context.Context, history []models.ChatMessage) (models.ChatMessage, error)
}

// newChatService builds the conversation pipeline; the returned func releases it.
// Tests replace it with a fake.
var newChatService = func(ctx context.Context, cfg *config.Config, logger *slog.Logger) (ChatService, func(), error) {
	components, err := app.NewComponents(ctx, cfg, app.ComponentsParams{Logger: logger})
	if err != nil {
		return nil, nil, err
	}

	return components.Conversation, components.Close, nil
}

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "zenji",
	Short: "Conversational flower-remedy advisor",
	Long: `Zenji is a gentle flower-remedy advisor. Each turn retrieves the remedy excerpts
most similar to what you said and asks the model for grounded, supportive advice.

Configuration comes from the environment (or a .env file): OPENAI_API_KEY is
required; DATABASE_URL points at the pgvector store holding the remedies collection.`,
	Version:       version.String(),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		// Skip config for version and help commands
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}

		loaded, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		cfg = loaded

		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx) //nolint:wrapcheck // cobra errors are already user-facing
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(versionCmd)
}
