package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/janpisl/gowps/internal/config"
)

// PgDialect persists outputs into a PostGIS-enabled PostgreSQL
// database via the pgx stdlib driver.
type PgDialect struct{}

func (d *PgDialect) Name() string       { return "pg" }
func (d *PgDialect) DriverName() string { return "pgx" }

func (d *PgDialect) Setup(_ context.Context, _ *sql.DB, _ config.DatabaseConfig) error {
	return nil
}

// EnsureNamespace creates the configured schema. Two callers racing on
// first use can both pass IF NOT EXISTS and still collide inside the
// server; the duplicate error is accepted as success.
func (d *PgDialect) EnsureNamespace(ctx context.Context, db *sql.DB, cfg config.DatabaseConfig) error {
	_, err := db.ExecContext(ctx, fmt.Sprintf(`CREATE SCHEMA IF NOT EXISTS %q`, cfg.Schema))
	if err != nil && isDuplicateSchema(err) {
		return nil
	}
	return err
}

func isDuplicateSchema(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "42P06") ||
		strings.Contains(msg, "23505") ||
		strings.Contains(msg, "already exists")
}

// StoreVector copies the source feature layer into
// <schema>.<identifier> with ogr2ogr, overwriting a same-named table.
func (d *PgDialect) StoreVector(ctx context.Context, cfg config.DatabaseConfig, file, identifier string) error {
	cmd := exec.CommandContext(ctx, "ogr2ogr",
		"-f", "PostgreSQL", "PG:"+cfg.ConnString(), file,
		"-nln", cfg.Schema+"."+identifier,
		"-overwrite")
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("ogr2ogr: %w: %s", err, out)
	}
	return nil
}

// StoreRaster loads the raster through raster2pgsql piped into psql,
// the native PostGIS raster path.
func (d *PgDialect) StoreRaster(ctx context.Context, cfg config.DatabaseConfig, file, identifier string) error {
	convert := exec.CommandContext(ctx, "raster2pgsql", "-a", file,
		cfg.Schema+"."+identifier)
	load := exec.CommandContext(ctx, "psql",
		"-h", cfg.Host,
		"-p", strconv.Itoa(cfg.Port),
		"-d", cfg.Name,
		"-U", cfg.User)
	load.Env = append(load.Environ(), "PGPASSWORD="+cfg.Password)

	pipe, err := convert.StdoutPipe()
	if err != nil {
		return fmt.Errorf("raster2pgsql pipe: %w", err)
	}
	load.Stdin = pipe

	if err := convert.Start(); err != nil {
		return fmt.Errorf("raster2pgsql: %w", err)
	}
	if err := load.Start(); err != nil {
		convert.Process.Kill()
		convert.Wait()
		return fmt.Errorf("psql: %w", err)
	}
	convErr := convert.Wait()
	loadErr := load.Wait()
	if convErr != nil {
		return fmt.Errorf("raster2pgsql: %w", convErr)
	}
	if loadErr != nil {
		return fmt.Errorf("psql: %w", loadErr)
	}
	return nil
}

func (d *PgDialect) OtherTableSQL(cfg config.DatabaseConfig, identifier string) string {
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %q.%q (
    id         BIGSERIAL PRIMARY KEY,
    uuid       TEXT,
    data       BYTEA,
    timestamp  TIMESTAMPTZ DEFAULT NOW()
)`, cfg.Schema, identifier)
}

func (d *PgDialect) InsertOtherSQL(cfg config.DatabaseConfig, identifier string) string {
	return fmt.Sprintf(`INSERT INTO %q.%q (uuid, data) VALUES ($1, $2)`,
		cfg.Schema, identifier)
}

// Location is <database>.<schema>.<identifier>, the server-based form.
func (d *PgDialect) Location(cfg config.DatabaseConfig, identifier string) string {
	return fmt.Sprintf("%s.%s.%s", cfg.Name, cfg.Schema, identifier)
}
