package main

import (
	"fmt"

	"github.com/regality/formchat/internal/validator"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <catalog-file>",
	Short: "Check a question catalog for errors",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		issues, err := validator.ValidateFile(args[0])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, issue := range issues {
			fmt.Fprintln(out, issue.String())
		}
		if validator.HasErrors(issues) {
			return fmt.Errorf("%s is invalid", args[0])
		}
		fmt.Fprintf(out, "%s is valid.\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
