package main

import (
	"github.com/regality/formchat/internal/cli"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Expose the dialogue as MCP tools over stdio",
	Long:  `Starts a Model Context Protocol server with the submit_answer, current_question, get_form and detect_form tools.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		return cli.ServeMCP(cmd.Context(), cfg, debugFlag(cmd))
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
