// Package main is the entry point for the Sentinel database migration tool.
// It applies the embedded schema migrations of the configured driver.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/prn-tf/sentinel/internal/config"
	"github.com/prn-tf/sentinel/internal/logging"
	"github.com/prn-tf/sentinel/internal/repository/postgres"
	"github.com/prn-tf/sentinel/internal/repository/sqlite"
)

// Version information (set at build time)
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// ErrDownUnsupported is returned when rolling back a driver without down migrations.
var ErrDownUnsupported = errors.New("down migrations are only supported for the postgres driver")

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
		Use:   "sentinel-migrate",
		Short: "Manage the Sentinel database schema",
		Long: `Apply or roll back the embedded schema migrations for the driver
selected by database.driver (postgres or sqlite).`,
		SilenceUsage: true,
	}

	opts := &rootOptions{}
	cmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "config file path")

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Run all pending migrations",
		RunE:  opts.runUp,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back all migrations (postgres only)",
		RunE:  opts.runDown,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show the current schema version",
		RunE:  opts.runStatus,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Sentinel Migration Tool")
			fmt.Fprintf(out, "Version: %s\n", Version)
			fmt.Fprintf(out, "Build Time: %s\n", BuildTime)
			fmt.Fprintf(out, "Git Commit: %s\n", GitCommit)
		},
	})

	return cmd
}

func (o *rootOptions) loadConfig(cmd *cobra.Command) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load(o.configFile)
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	logger := logging.NewWithWriter(cmd.ErrOrStderr(), "console", cfg.Logging.TimeFormat).
		Level(zerolog.WarnLevel)
	return cfg, logger, nil
}

// withSQLite opens the configured SQLite database for fn.
func withSQLite(cmd *cobra.Command, cfg *config.Config, logger zerolog.Logger, fn func(db *sqlite.DB) error) error {
	db, err := sqlite.NewDB(cmd.Context(), sqlite.ConfigFromDatabase(cfg.Database), logger)
	if err != nil {
		return err
	}
	defer db.Close()
	return fn(db)
}

// withMigrator opens a postgres migrator for fn.
func withMigrator(cfg *config.Config, fn func(m *postgres.Migrator) error) error {
	m, err := postgres.NewMigrator(cfg.Database.URL())
	if err != nil {
		return err
	}
	defer m.Close()
	return fn(m)
}

func unsupportedDriver(driver string) error {
	return fmt.Errorf("driver %q has no schema to migrate", driver)
}

func (o *rootOptions) runUp(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := o.loadConfig(cmd)
	if err != nil {
		return err
	}

	switch cfg.Database.Driver {
	case "sqlite":
		err = withSQLite(cmd, cfg, logger, func(db *sqlite.DB) error {
			return db.Migrate(cmd.Context())
		})
	case "postgres":
		err = withMigrator(cfg, func(m *postgres.Migrator) error {
			return m.Up()
		})
	default:
		return unsupportedDriver(cfg.Database.Driver)
	}
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), "Migrations completed successfully")
	return nil
}

func (o *rootOptions) runDown(cmd *cobra.Command, _ []string) error {
	cfg, _, err := o.loadConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.Database.Driver != "postgres" {
		return ErrDownUnsupported
	}

	if err := withMigrator(cfg, func(m *postgres.Migrator) error { return m.Down() }); err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), "Migrations rolled back")
	return nil
}

func (o *rootOptions) runStatus(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := o.loadConfig(cmd)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch cfg.Database.Driver {
	case "sqlite":
		return withSQLite(cmd, cfg, logger, func(db *sqlite.DB) error {
			version, err := db.Version(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "driver: sqlite\nversion: %d\n", version)
			return nil
		})
	case "postgres":
		return withMigrator(cfg, func(m *postgres.Migrator) error {
			version, dirty, err := m.Version()
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "driver: postgres\nversion: %d\ndirty: %t\n", version, dirty)
			return nil
		})
	default:
		return unsupportedDriver(cfg.Database.Driver)
	}
}
