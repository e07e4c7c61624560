package main

import (
	"fmt"
	"os"

	"github.com/regality/formchat/internal/config"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "formchat",
	Short: "formchat fills regulatory forms one question at a time",
	Long: `formchat walks a user through an ordered catalog of questions, in a
terminal, over HTTP or as MCP tools, and hands the finished record to a
submission store.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("env-file", ".env", "Dotenv file to load before reading FORMCHAT_* variables")
	rootCmd.PersistentFlags().String("catalog", "", "Question catalog (YAML or JSON); empty uses the built-in FC catalog")
	rootCmd.PersistentFlags().String("forms", "", "Form metadata file (YAML or JSON)")
	rootCmd.PersistentFlags().String("store", "", "Session store: memory, file or redis")
	rootCmd.PersistentFlags().String("dir", "", "Directory for file-backed sessions (implies --store=file)")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
}

// loadConfig reads the environment and applies command-line overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	envFile, _ := cmd.Flags().GetString("env-file")
	if err := config.LoadDotEnv(envFile); err != nil {
		return nil, err
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("catalog") {
		cfg.CatalogPath, _ = flags.GetString("catalog")
	}
	if flags.Changed("forms") {
		cfg.FormsPath, _ = flags.GetString("forms")
	}
	if flags.Changed("store") {
		cfg.Store.Backend, _ = flags.GetString("store")
	}
	if flags.Changed("dir") {
		cfg.Store.Dir, _ = flags.GetString("dir")
		if !flags.Changed("store") {
			cfg.Store.Backend = config.StoreFile
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func debugFlag(cmd *cobra.Command) bool {
	debug, _ := cmd.Flags().GetBool("debug")
	return debug
}
