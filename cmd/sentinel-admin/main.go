// Package main is the entry point for the Sentinel admin CLI.
// This tool manages users, signing keys and tokens without going through the HTTP API.
package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/prn-tf/sentinel/internal/config"
	"github.com/prn-tf/sentinel/internal/logging"
)

// Version information (set at build time)
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// rootOptions holds flags shared by all subcommands of one root command.
type rootOptions struct {
	configFile string
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "sentinel-admin",
		Short:        "Sentinel admin CLI",
		SilenceUsage: true,
	}

	opts := &rootOptions{}
	cmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "config file path")

	cmd.AddCommand(newUserCmd(opts))
	cmd.AddCommand(newKeygenCmd())
	cmd.AddCommand(newTokenCmd(opts))
	cmd.AddCommand(newVersionCmd())

	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Sentinel Admin CLI")
			fmt.Fprintf(out, "Version: %s\n", Version)
			fmt.Fprintf(out, "Build Time: %s\n", BuildTime)
			fmt.Fprintf(out, "Git Commit: %s\n", GitCommit)
		},
	}
}

// loadConfig reads configuration and builds a quiet console logger.
func (o *rootOptions) loadConfig(cmd *cobra.Command) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load(o.configFile)
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	logger := logging.NewWithWriter(cmd.ErrOrStderr(), "console", cfg.Logging.TimeFormat).
		Level(zerolog.WarnLevel)
	return cfg, logger, nil
}
