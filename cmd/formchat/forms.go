package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/regality/formchat/pkg/forms"
	"github.com/spf13/cobra"
)

var formsCmd = &cobra.Command{
	Use:   "forms",
	Short: "Look up form metadata",
}

var formsShowCmd = &cobra.Command{
	Use:   "show [form-code]",
	Short: "Show the checklist of a form, or list the known forms",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, err := loadForms(cmd)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(args) == 0 {
			for _, code := range registry.Codes() {
				fmt.Fprintln(out, code)
			}
			return nil
		}

		meta, err := registry.Lookup(args[0])
		if err != nil {
			return err
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(meta)
	},
}

var formsDetectCmd = &cobra.Command{
	Use:   "detect <text>...",
	Short: "Guess the form type mentioned in a piece of text",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		formType := forms.DetectFormType(strings.Join(args, " "))
		if formType == "" {
			return fmt.Errorf("no form type detected")
		}
		fmt.Fprintln(cmd.OutOrStdout(), formType)
		return nil
	},
}

func loadForms(cmd *cobra.Command) (*forms.Registry, error) {
	path, _ := cmd.Flags().GetString("forms")
	if path == "" {
		return forms.Default(), nil
	}
	return forms.Load(path)
}

func init() {
	formsCmd.AddCommand(formsShowCmd, formsDetectCmd)
	rootCmd.AddCommand(formsCmd)
}
