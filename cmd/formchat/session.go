package main

import (
	"errors"
	"fmt"

	"github.com/regality/formchat/internal/cli"
	"github.com/spf13/cobra"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage stored sessions",
	Long:  `List, inspect, and remove in-flight sessions in the configured store.`,
}

var sessionLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List all stored sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(app *cli.App) error {
			return cli.ListSessions(cmd.Context(), app, cmd.OutOrStdout())
		})
	},
}

var sessionInspectCmd = &cobra.Command{
	Use:   "inspect <session-id>",
	Short: "Inspect the progress of a session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(app *cli.App) error {
			return cli.InspectSession(cmd.Context(), app, args[0], cmd.OutOrStdout())
		})
	},
}

var sessionRmCmd = &cobra.Command{
	Use:   "rm <session-id>...",
	Short: "Remove one or more sessions",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(app *cli.App) error {
			var errs []error
			for _, id := range args {
				if err := cli.RemoveSession(cmd.Context(), app, id, cmd.OutOrStdout()); err != nil {
					errs = append(errs, err)
				}
			}
			return errors.Join(errs...)
		})
	},
}

var submissionsCmd = &cobra.Command{
	Use:   "submissions",
	Short: "List finished submissions (sqlite and postgres sinks)",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		return withApp(cmd, func(app *cli.App) error {
			return cli.ListSubmissions(cmd.Context(), app, limit, cmd.OutOrStdout())
		})
	},
}

// withApp wires the application from configuration for the duration of fn.
func withApp(cmd *cobra.Command, fn func(*cli.App) error) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	app, err := cli.NewApp(cmd.Context(), cfg, cli.AppOptions{})
	if err != nil {
		return fmt.Errorf("error initializing formchat: %w", err)
	}
	defer app.Close()
	return fn(app)
}

func init() {
	sessionCmd.AddCommand(sessionLsCmd, sessionInspectCmd, sessionRmCmd)
	submissionsCmd.Flags().Int("limit", 20, "Maximum number of submissions (0 for all)")
	rootCmd.AddCommand(sessionCmd, submissionsCmd)
}
