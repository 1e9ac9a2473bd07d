package migration

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

const pgDriverName = "postgres"

// Migrate applies every pending migration in folderPath. An up-to-date schema is not an error.
func Migrate(dsn, folderPath string) error {
	db, err := sql.Open(pgDriverName, dsn)
	if err != nil {
		return err
	}
	defer db.Close()
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("creating migration driver: %w", err)
	}
	m, err := migrate.NewWithDatabaseInstance(
		"file://"+folderPath,
		pgDriverName, driver)
	if err != nil {
		return fmt.Errorf("loading migrations from %s: %w", folderPath, err)
	}

	err = m.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		zap.L().Info("database schema up to date")
		return nil
	}
	if err != nil {
		return fmt.Errorf("applying migrations: %w", err)
	}
	version, _, _ := m.Version()
	zap.L().Info("database migrated", zap.Uint("version", version))
	return nil
}
