package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/janpisl/gowps/internal/config"
)

// SQLiteDialect persists outputs into an embedded database file via
// modernc.org/sqlite.
type SQLiteDialect struct{}

func (d *SQLiteDialect) Name() string       { return "sqlite" }
func (d *SQLiteDialect) DriverName() string { return "sqlite" }

// Setup keeps a single writer and enables WAL so concurrent requests
// can still read.
func (d *SQLiteDialect) Setup(ctx context.Context, db *sql.DB, cfg config.DatabaseConfig) error {
	if dir := filepath.Dir(cfg.Path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create database dir: %w", err)
		}
	}
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		return fmt.Errorf("enable WAL: %w", err)
	}
	return nil
}

// EnsureNamespace is a no-op: the database file itself is the
// namespace, and the driver creates it on first use.
func (d *SQLiteDialect) EnsureNamespace(_ context.Context, _ *sql.DB, _ config.DatabaseConfig) error {
	return nil
}

// StoreVector copies the source feature layer into a table named by
// identifier inside the database file, overwriting a same-named table.
func (d *SQLiteDialect) StoreVector(ctx context.Context, cfg config.DatabaseConfig, file, identifier string) error {
	cmd := exec.CommandContext(ctx, "ogr2ogr",
		"-f", "SQLite", "-update", cfg.Path, file,
		"-nln", identifier,
		"-overwrite")
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("ogr2ogr: %w: %s", err, out)
	}
	return nil
}

// StoreRaster converts the raster into a Rasterlite table. The table
// name is derived with a fixed suffix so it cannot collide with a
// vector table of the same identifier.
func (d *SQLiteDialect) StoreRaster(ctx context.Context, cfg config.DatabaseConfig, file, identifier string) error {
	dest := fmt.Sprintf("RASTERLITE:%s,table=%s_rast", cfg.Path, identifier)
	cmd := exec.CommandContext(ctx, "gdal_translate", "-of", "Rasterlite", file, dest)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("gdal_translate: %w: %s", err, out)
	}
	return nil
}

func (d *SQLiteDialect) OtherTableSQL(_ config.DatabaseConfig, identifier string) string {
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %q (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    uuid       TEXT,
    data       BLOB,
    timestamp  TEXT DEFAULT (datetime('now'))
)`, identifier)
}

func (d *SQLiteDialect) InsertOtherSQL(_ config.DatabaseConfig, identifier string) string {
	return fmt.Sprintf(`INSERT INTO %q (uuid, data) VALUES (?1, ?2)`, identifier)
}

// Location is <database-file>.<identifier>, the embedded-file form.
func (d *SQLiteDialect) Location(cfg config.DatabaseConfig, identifier string) string {
	return fmt.Sprintf("%s.%s", cfg.Path, identifier)
}
