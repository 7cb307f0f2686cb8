package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/ericfisherdev/simplekeystore/internal/domain/port/driven"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// RunMigrations applies the embedded migrations for the objects around the
// keystore table (metadata table, indexes). The keystore table itself is
// created by EnsureTable, which must run first.
func RunMigrations(db *sql.DB) error {
	sourceDriver, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	dbDriver, err := migratesqlite.WithInstance(db, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("create migration db driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "sqlite", dbDriver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("run migrations: %w", err)
	}

	return nil
}

// Prepare readies a freshly opened database: it ensures the keystore table,
// applies migrations and checks that the cipher matches the stored key check.
func Prepare(ctx context.Context, db *DB, cipher driven.Cipher) error {
	if err := EnsureTable(ctx, db.Writer); err != nil {
		return err
	}
	if err := RunMigrations(db.Writer); err != nil {
		return err
	}
	return VerifyKeyCheck(ctx, db, cipher)
}
