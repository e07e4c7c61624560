package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/regality/formchat/internal/cli"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Serves the chat, auth and form discovery routes. Each POST /api/chat/next
is one dialogue turn for the session named by the X-Session-ID header (or the
bearer token's identity).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("port") {
			cfg.Port, _ = cmd.Flags().GetString("port")
		}
		metrics, _ := cmd.Flags().GetBool("metrics")

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return cli.Serve(ctx, cli.ServeOptions{
			Config:  cfg,
			Debug:   debugFlag(cmd),
			Metrics: metrics,
		})
	},
}

func init() {
	serveCmd.Flags().StringP("port", "p", "", "Port to listen on (overrides FORMCHAT_PORT)")
	serveCmd.Flags().Bool("metrics", true, "Expose Prometheus metrics at /metrics")
	rootCmd.AddCommand(serveCmd)
}
