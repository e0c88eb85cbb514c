package database

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

// MigrateUp applies every pending migration found under dir in fsys.
// Files follow golang-migrate naming: VERSION_name.up.sql / VERSION_name.down.sql.
// An up-to-date schema is not an error.
func (d *DB) MigrateUp(fsys fs.FS, dir string) error {
	m, err := d.migrator(fsys, dir)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate up: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("migrate version: %w", err)
	}
	d.log.Info("Database schema up to date", map[string]interface{}{
		"version": version,
		"dirty":   dirty,
	})
	return nil
}

// MigrateVersion returns the applied schema version and whether the last
// migration failed halfway.
func (d *DB) MigrateVersion(fsys fs.FS, dir string) (uint, bool, error) {
	m, err := d.migrator(fsys, dir)
	if err != nil {
		return 0, false, err
	}
	return m.Version()
}

// migrator binds golang-migrate to the shared connection pool. The returned
// instance must not be closed: that would close the pool as well.
func (d *DB) migrator(fsys fs.FS, dir string) (*migrate.Migrate, error) {
	sqlDB, err := d.GormDB.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}
	driver, err := sqlite3.WithInstance(sqlDB, &sqlite3.Config{})
	if err != nil {
		return nil, fmt.Errorf("create migrate driver: %w", err)
	}
	source, err := iofs.New(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("open migrations: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", source, "sqlite3", driver)
	if err != nil {
		return nil, fmt.Errorf("create migrator: %w", err)
	}
	return m, nil
}
