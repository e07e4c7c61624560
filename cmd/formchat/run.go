package main

import (
	"github.com/regality/formchat/internal/cli"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Fill a form interactively",
	Long: `Asks each question of the catalog in turn and prints the filled form.
With --session and a persistent store, an interrupted dialogue resumes at the
question it stopped on.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		sessionID, _ := cmd.Flags().GetString("session")
		fresh, _ := cmd.Flags().GetBool("fresh")
		jsonMode, _ := cmd.Flags().GetBool("json")
		headless, _ := cmd.Flags().GetBool("headless")
		formType, _ := cmd.Flags().GetString("form")

		return cli.Execute(cmd.Context(), cli.RunOptions{
			Config:    cfg,
			SessionID: sessionID,
			Fresh:     fresh,
			JSON:      jsonMode,
			Headless:  headless,
			Debug:     debugFlag(cmd),
			FormType:  formType,
			Stdin:     cmd.InOrStdin(),
			Stdout:    cmd.OutOrStdout(),
		})
	},
}

func init() {
	runCmd.Flags().StringP("session", "s", "", "Session id to create or resume")
	runCmd.Flags().Bool("fresh", false, "Discard stored progress for the session first")
	runCmd.Flags().Bool("json", false, "Speak JSON Lines on stdin/stdout")
	runCmd.Flags().Bool("headless", false, "No banner or markdown rendering")
	runCmd.Flags().String("form", "FC", "Form type used to title the filled document")
	rootCmd.AddCommand(runCmd)

	rootCmd.RunE = runCmd.RunE
	rootCmd.Flags().AddFlagSet(runCmd.Flags())
}
