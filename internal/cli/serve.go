package cli

import (
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/kamtechie/zenji/internal/app"
	"github.com/kamtechie/zenji/internal/observability"
)

var servePort string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the web chat and HTTP API",
	Long: `Serve the chat page at / and the JSON API at POST /v1/messages.

Examples:
  zenji serve
  zenji serve --port 9090`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if servePort != "" {
			cfg.Port = servePort
		}

		logger, closeLog := observability.NewLogger(os.Stdout, observability.ParseLevel(cfg.LogLevel), cfg.LogFile)
		defer func() { _ = closeLog() }()

		return app.Serve(cmd.Context(), cfg, logger, 30*time.Second)
	},
}

func init() {
	serveCmd.Flags().StringVarP(&servePort, "port", "p", "", "listen port (overrides PORT)")
}
