// Package cmd contains all the CLI commands for the application,
// built using the Cobra library.
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/naka-gawa/pr-leaderboard/internal/config"
	"github.com/naka-gawa/pr-leaderboard/internal/gateway"
)

var rootCmd = &cobra.Command{
	Use:   "pr-leaderboard",
	Short: "A CLI tool to rank contributors by their labelled, merged pull requests.",
	Long: `pr-leaderboard searches merged pull requests carrying the program label
in every participating repository, scores them by their level labels and
writes a ranked contributor leaderboard as JSON.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func init() {
	// Add a persistent flag for verbose output, available to all commands.
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose/debug logging")
	rootCmd.PersistentFlags().String("log-format", "text", "Log format: text or json")
	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to a YAML config file (default .leaderboard.yaml if present)")
}

// newLogger builds the logger from the persistent flags. Logs go to stderr so
// that JSON written to stdout stays clean.
func newLogger(cmd *cobra.Command, stderr io.Writer) (*logrus.Logger, error) {
	verbose, _ := cmd.Flags().GetBool("verbose")
	format, _ := cmd.Flags().GetString("log-format")

	logger := logrus.New()
	logger.SetOutput(stderr)
	logger.SetLevel(logrus.InfoLevel)
	if verbose {
		logger.SetLevel(logrus.DebugLevel)
	}
	switch format {
	case "text":
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: time.DateTime})
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.DateTime})
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}
	return logger, nil
}

// loadConfig loads and validates the configuration, applying the flags that
// were set on cmd.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("projects") {
		cfg.Projects, _ = flags.GetString("projects")
	}
	if flags.Changed("output") {
		cfg.Output, _ = flags.GetString("output")
	}
	if flags.Changed("from") {
		cfg.Window.From, _ = flags.GetString("from")
	}
	if flags.Changed("to") {
		cfg.Window.To, _ = flags.GetString("to")
	}
	if flags.Changed("request-delay") {
		cfg.Delays.Request, _ = flags.GetDuration("request-delay")
	}
	if flags.Changed("repo-delay") {
		cfg.Delays.Repository, _ = flags.GetDuration("repo-delay")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newGateway(cfg *config.Config, logger logrus.FieldLogger) (*gateway.GitHubGateway, error) {
	gw, err := gateway.NewGitHubGateway(gateway.Options{
		Token:               cfg.GitHub.Token,
		APIEndpoint:         cfg.GitHub.APIEndpoint,
		GraphQLEndpoint:     cfg.GitHub.GraphQLEndpoint,
		Waiter:              gateway.SleepWaiter{Delay: cfg.Delays.Request},
		SecondaryLimitSleep: cfg.GitHub.SecondaryLimitSleep,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create GitHub gateway: %w", err)
	}
	return gw, nil
}
