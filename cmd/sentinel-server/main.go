// Package main is the entry point for the Sentinel authentication gateway.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/prn-tf/sentinel/internal/config"
	"github.com/prn-tf/sentinel/internal/logging"
	"github.com/prn-tf/sentinel/internal/server"
)

// Version information (set at build time)
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	cmd := newRootCmd()
	cmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildTime)

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sentinel-server",
		Short: "Run the Sentinel authentication gateway",
		Long: `Sentinel issues bearer tokens on login and guards the product API.
Configuration is read from the --config file and SENTINEL_* environment variables.`,
		SilenceUsage: true,
	}

	var configFile string
	cmd.Flags().StringVar(&configFile, "config", "", "config file path")
	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		return runServer(cmd, configFile)
	}
	return cmd
}

func runServer(cmd *cobra.Command, configFile string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return err
	}

	logger.Info().
		Str("version", Version).
		Str("build_time", BuildTime).
		Str("git_commit", GitCommit).
		Msg("Starting Sentinel")

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv, err := server.New(ctx, cfg, logger)
	if err != nil {
		logger.Error().Err(err).Msg("failed to initialize server")
		return err
	}
	defer func() {
		if err := srv.Close(); err != nil {
			logger.Warn().Err(err).Msg("failed to release resources")
		}
	}()

	if err := srv.Run(ctx); err != nil {
		logger.Error().Err(err).Msg("server stopped with error")
		return err
	}

	logger.Info().Msg("Server stopped")
	return nil
}
