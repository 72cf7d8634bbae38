package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"os/exec"
	"regexp"
	"sync"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as database/sql driver
	_ "modernc.org/sqlite"             // register sqlite as database/sql driver

	"github.com/janpisl/gowps/internal/config"
	"github.com/janpisl/gowps/internal/inout"
)

// Dialect abstracts the database-specific parts of output persistence:
// DDL, external conversion tooling and location references.
type Dialect interface {
	// Name returns "pg" or "sqlite".
	Name() string

	// DriverName returns the database/sql driver name.
	DriverName() string

	// Setup applies per-connection settings after the session opens.
	Setup(ctx context.Context, db *sql.DB, cfg config.DatabaseConfig) error

	// EnsureNamespace provisions the isolated namespace for this
	// service instance. Idempotent: "already exists" is not an error,
	// including when two callers race on first use.
	EnsureNamespace(ctx context.Context, db *sql.DB, cfg config.DatabaseConfig) error

	// StoreVector copies the feature layer in file into a table named
	// by identifier, overwriting a same-named table.
	StoreVector(ctx context.Context, cfg config.DatabaseConfig, file, identifier string) error

	// StoreRaster converts the raster in file into the dialect's
	// native raster table for identifier.
	StoreRaster(ctx context.Context, cfg config.DatabaseConfig, file, identifier string) error

	// OtherTableSQL returns DDL ensuring the generic payload table for
	// identifier exists.
	OtherTableSQL(cfg config.DatabaseConfig, identifier string) string

	// InsertOtherSQL returns the insert statement for the generic
	// payload table; parameters are (request id, payload).
	InsertOtherSQL(cfg config.DatabaseConfig, identifier string) string

	// Location returns the dialect-specific reference the caller uses
	// to compose a client-facing URL.
	Location(cfg config.DatabaseConfig, identifier string) string
}

func dialectFor(name string) Dialect {
	switch name {
	case "sqlite":
		return &SQLiteDialect{}
	default:
		return &PgDialect{}
	}
}

// DatabaseBackend persists outputs into a database, dispatching on the
// output's data category. The session is established lazily on first
// use and the namespace provisioned for the lifetime of the instance.
type DatabaseBackend struct {
	cfg     config.DatabaseConfig
	dialect Dialect

	mu sync.Mutex
	db *sql.DB
}

func NewDatabaseBackend(cfg config.DatabaseConfig) *DatabaseBackend {
	return &DatabaseBackend{cfg: cfg, dialect: dialectFor(cfg.Dialect)}
}

func (b *DatabaseBackend) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.db != nil {
		b.db.Close()
		b.db = nil
	}
}

// session opens the connection on first use and provisions the
// namespace. Concurrent first-use callers both succeed.
func (b *DatabaseBackend) session(ctx context.Context) (*sql.DB, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.db != nil {
		return b.db, nil
	}

	db, err := sql.Open(b.dialect.DriverName(), b.cfg.DSN())
	if err != nil {
		return nil, StorageUnavailableError("open database", err)
	}
	if err := b.dialect.Setup(ctx, db, b.cfg); err != nil {
		db.Close()
		return nil, StorageUnavailableError("configure database session", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, StorageUnavailableError("database connection has not been established", err)
	}
	if err := b.dialect.EnsureNamespace(ctx, db, b.cfg); err != nil {
		db.Close()
		return nil, StorageUnavailableError("provision namespace", err)
	}

	b.db = db
	return db, nil
}

func (b *DatabaseBackend) Store(ctx context.Context, output *inout.ComplexOutput) (Descriptor, error) {
	if err := validIdentifier(output.Identifier); err != nil {
		return Descriptor{}, err
	}
	db, err := b.session(ctx)
	if err != nil {
		return Descriptor{}, err
	}
	file, err := output.File()
	if err != nil {
		return Descriptor{}, err
	}

	switch output.Category() {
	case inout.CategoryVector:
		err = b.storeExternal(ctx, func() error {
			return b.dialect.StoreVector(ctx, b.cfg, file, output.Identifier)
		})
	case inout.CategoryRaster:
		err = b.storeExternal(ctx, func() error {
			return b.dialect.StoreRaster(ctx, b.cfg, file, output.Identifier)
		})
	case inout.CategoryOther:
		err = b.storeOther(ctx, db, output, file)
	default:
		return Descriptor{}, UnknownCategoryError(output.Category())
	}
	if err != nil {
		return Descriptor{}, err
	}

	loc := b.dialect.Location(b.cfg, output.Identifier)
	log.Printf("Stored %s output %s at %s", output.Category(), output.Identifier, loc)
	return Descriptor{Kind: KindDatabase, Location: loc, URL: loc}, nil
}

// storeExternal runs a conversion that shells out to an external tool,
// translating a missing binary into an availability failure and
// anything else into a failed write.
func (b *DatabaseBackend) storeExternal(_ context.Context, run func() error) error {
	err := run()
	if err == nil {
		return nil
	}
	var se *StorageError
	if errors.As(err, &se) {
		return err
	}
	if errors.Is(err, exec.ErrNotFound) {
		return StorageUnavailableError("conversion tool not available", err)
	}
	return WriteFailedError("writing output data to the database failed", err)
}

// storeOther ensures the generic payload table exists and inserts
// exactly one row holding the file's raw bytes.
func (b *DatabaseBackend) storeOther(ctx context.Context, db *sql.DB, output *inout.ComplexOutput, file string) error {
	payload, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("read %s: %w", file, err)
	}
	if _, err := db.ExecContext(ctx, b.dialect.OtherTableSQL(b.cfg, output.Identifier)); err != nil {
		return WriteFailedError("ensure table "+output.Identifier, err)
	}
	res, err := db.ExecContext(ctx, b.dialect.InsertOtherSQL(b.cfg, output.Identifier),
		output.RequestID(), payload)
	if err != nil {
		return WriteFailedError("insert into "+output.Identifier, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return WriteFailedError("insert into "+output.Identifier+" affected no rows", nil)
	}
	return nil
}

var identifierRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// validIdentifier guards table naming; identifiers come from process
// declarations, not clients, so a violation is a programming error.
func validIdentifier(id string) error {
	if !identifierRe.MatchString(id) {
		return fmt.Errorf("invalid output identifier %q for database storage", id)
	}
	return nil
}
