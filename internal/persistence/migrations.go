package persistence

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/cockroachdb"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"go.uber.org/zap"

	"github.com/spec-kit/cinemax-auth/internal/config"
)

// ErrNoDatabase is returned when a migration is requested without a DSN.
var ErrNoDatabase = errors.New("no database DSN configured")

// RunMigrations applies all pending up migrations. postgres:// and
// cockroachdb:// DSN schemes are both supported.
func RunMigrations(cfg config.PostgresConfig, logger *zap.Logger) error {
	migrator, err := newMigrator(cfg)
	if err != nil {
		return err
	}
	defer closeMigrator(migrator, logger)

	if err := migrator.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			logger.Info("migrations already up to date")
			return nil
		}
		return fmt.Errorf("migrate up failed: %w", err)
	}

	version, _, _ := migrator.Version()
	logger.Info("migrations applied", zap.Uint("version", version))
	return nil
}

// RollbackMigrations reverts the given number of migrations; steps <= 0 reverts all.
func RollbackMigrations(cfg config.PostgresConfig, steps int, logger *zap.Logger) error {
	migrator, err := newMigrator(cfg)
	if err != nil {
		return err
	}
	defer closeMigrator(migrator, logger)

	if steps > 0 {
		err = migrator.Steps(-steps)
	} else {
		err = migrator.Down()
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate down failed: %w", err)
	}
	logger.Info("migrations rolled back", zap.Int("steps", steps))
	return nil
}

func newMigrator(cfg config.PostgresConfig) (*migrate.Migrate, error) {
	if cfg.MigrateDSN == "" {
		return nil, ErrNoDatabase
	}
	migrator, err := migrate.New(cfg.MigrationsURL, cfg.MigrateDSN)
	if err != nil {
		return nil, fmt.Errorf("init migrator failed: %w", err)
	}
	return migrator, nil
}

func closeMigrator(migrator *migrate.Migrate, logger *zap.Logger) {
	srcErr, dbErr := migrator.Close()
	if srcErr != nil || dbErr != nil {
		logger.Warn("closing migrator", zap.NamedError("source", srcErr), zap.NamedError("database", dbErr))
	}
}
