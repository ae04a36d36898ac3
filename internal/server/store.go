package server

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/prn-tf/sentinel/internal/config"
	"github.com/prn-tf/sentinel/internal/repository"
	"github.com/prn-tf/sentinel/internal/repository/memory"
	"github.com/prn-tf/sentinel/internal/repository/postgres"
	"github.com/prn-tf/sentinel/internal/repository/sqlite"
)

// ErrUnsupportedDriver is returned for an unknown database driver.
var ErrUnsupportedDriver = errors.New("unsupported database driver")

// Store is an opened credential store backend.
type Store struct {
	// Users is the user repository of the selected driver.
	Users repository.UserRepository

	// Driver is the configured driver name.
	Driver string

	// db is nil for the memory driver.
	db repository.DatabaseHealth
}

// OpenStore connects the configured backend and applies migrations when
// AutoMigrate is set.
func OpenStore(ctx context.Context, cfg config.DatabaseConfig, logger zerolog.Logger) (*Store, error) {
	switch cfg.Driver {
	case "memory":
		logger.Warn().Msg("using in-memory credential store; users are lost on restart")
		return &Store{Users: memory.NewUserRepository(), Driver: cfg.Driver}, nil

	case "sqlite":
		db, err := sqlite.NewDB(ctx, sqlite.ConfigFromDatabase(cfg), logger)
		if err != nil {
			return nil, err
		}
		if cfg.AutoMigrate {
			if err := db.Migrate(ctx); err != nil {
				_ = db.Close()
				return nil, err
			}
		}
		return &Store{Users: sqlite.NewUserRepository(db), Driver: cfg.Driver, db: db}, nil

	case "postgres":
		if cfg.AutoMigrate {
			if err := migratePostgres(cfg, logger); err != nil {
				return nil, err
			}
		}
		db, err := postgres.NewDB(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		return &Store{Users: postgres.NewUserRepository(db.Pool), Driver: cfg.Driver, db: db}, nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, cfg.Driver)
	}
}

func migratePostgres(cfg config.DatabaseConfig, logger zerolog.Logger) error {
	m, err := postgres.NewMigrator(cfg.URL())
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Up(); err != nil {
		return err
	}

	version, dirty, err := m.Version()
	if err != nil {
		return err
	}
	logger.Info().Uint("version", version).Bool("dirty", dirty).Msg("database migrations applied")
	return nil
}

// Ping runs a round-trip query against the backend. The memory driver is
// always reachable.
func (s *Store) Ping(ctx context.Context) error {
	if s.db == nil {
		return nil
	}
	return s.db.Health(ctx)
}

// Close releases the backend connections.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
