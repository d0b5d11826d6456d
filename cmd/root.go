package cmd

import (
	"fmt"
	"os"

	"melodify/config"
	"melodify/logger"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "melodify",
	Short: "Melodify is a music-sharing API server.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer()
	},
	SilenceUsage: true,
}

// Execute executes the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setup loads configuration and installs the process logger.
func setup() (*config.Config, error) {
	cfg := config.Load()
	if err := logger.InitLogger(logger.Config{
		Level:      cfg.LogLevel,
		OutputPath: cfg.LogFile,
		Compress:   true,
	}); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return cfg, nil
}
