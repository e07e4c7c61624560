package main

import (
	"fmt"
	"strings"

	"github.com/regality/formchat"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of formchat",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "formchat version %s\n", strings.TrimSpace(formchat.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
