package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sevigo/review-pilot/internal/app"
	"github.com/sevigo/review-pilot/internal/config"
	"github.com/sevigo/review-pilot/internal/logger"
)

var githubToken string

var rootCmd = &cobra.Command{
	Use:   "pilot-cli",
	Short: "pilot-cli is the command-line interface for Review Pilot.",
	Long:  `A CLI for running context-aware pull request reviews and managing the documentation index.`,
}

func init() { //nolint:gochecknoinits // Cobra's init function for command registration
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&githubToken, "github-token", "t", "", "GitHub Token")

	if err := viper.BindPFlag("GITHUB_TOKEN", rootCmd.PersistentFlags().Lookup("github-token")); err != nil {
		slog.Error("Error binding flag", "error", err)
		os.Exit(1)
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	viper.SetEnvPrefix("RP")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

// initApp loads config and wires the application for one CLI invocation.
func initApp(cmd *cobra.Command) (*app.App, *slog.Logger, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	log := logger.NewLogger(logger.Config{
		Level:  cfg.LogLevel.String(),
		Format: cfg.LogFormat,
		Output: "stderr",
	}, nil)

	a, err := app.NewApp(cmd.Context(), cfg, log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize app: %w", err)
	}
	return a, log, nil
}
