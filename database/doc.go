// Package database opens the SQLite credential database through GORM with
// connection pooling, retrying connects and the gateway logger wired into
// GORM's query log.
//
//	db, err := database.Open(ctx, database.Config{DSN: "file:authgate.db"}, log)
//	defer db.Close()
//	err = db.MigrateUp(migrationsFS, "migrations")
//
// Schemas are versioned SQL files applied with golang-migrate.
// GORM is opened with TranslateError enabled, so unique constraint
// violations surface as gorm.ErrDuplicatedKey and can be tested with
// IsDuplicateError.
package database
