// Package migration applies the versioned SQL schema with golang-migrate.
package migration

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

// Source is a tree of NNNNNN_name.{up,down}.sql files
type Source struct {
	name string
	fsys fs.FS
}

// Embedded reads migrations compiled into the binary
func Embedded(fsys fs.FS) Source { return Source{name: "embedded", fsys: fsys} }

// Dir reads migrations from a directory on disk
func Dir(path string) Source { return Source{name: path, fsys: os.DirFS(path)} }

// Migrator moves the integration schema between versions
type Migrator struct {
	m      *migrate.Migrate
	logger *zap.Logger
}

// New binds src to a PostgreSQL connection. Close releases db as well, so give
// it a handle dedicated to migrating.
func New(db *sql.DB, src Source, logger *zap.Logger) (*Migrator, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	files, err := iofs.New(src.fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to open migrations %s: %w", src.name, err)
	}
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", files, "postgres", driver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	return &Migrator{m: m, logger: logger.With(zap.String("migrations", src.name))}, nil
}

// UpDSN opens its own connection to dsn, applies every pending migration of src
// and closes the connection. The server uses it when database.migrate_on_start is set.
func UpDSN(dsn string, src Source, logger *zap.Logger) error {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return fmt.Errorf("failed to open migration connection: %w", err)
	}
	m, err := New(db, src, logger)
	if err != nil {
		_ = db.Close()
		return err
	}
	return errors.Join(m.Up(), m.Close())
}

// Up applies every pending migration
func (mg *Migrator) Up() error {
	return mg.run("up", mg.m.Up)
}

// Down reverts every applied migration
func (mg *Migrator) Down() error {
	return mg.run("down", mg.m.Down)
}

// Steps applies n migrations, reverting when n is negative
func (mg *Migrator) Steps(n int) error {
	return mg.run(fmt.Sprintf("step %d", n), func() error { return mg.m.Steps(n) })
}

// GoTo migrates up or down to version
func (mg *Migrator) GoTo(version uint) error {
	return mg.run(fmt.Sprintf("goto %d", version), func() error { return mg.m.Migrate(version) })
}

// run treats ErrNoChange as success and logs the version reached
func (mg *Migrator) run(op string, fn func() error) error {
	mg.logger.Info("Running migrations", zap.String("op", op))
	if err := fn(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			mg.logger.Info("Schema already up to date", zap.String("op", op))
			return nil
		}
		return fmt.Errorf("migration %s failed: %w", op, err)
	}
	version, dirty, err := mg.Version()
	if err != nil {
		return err
	}
	mg.logger.Info("Migrations applied", zap.String("op", op), zap.Uint("version", version), zap.Bool("dirty", dirty))
	return nil
}

// Version returns the applied version, zero when nothing has run
func (mg *Migrator) Version() (uint, bool, error) {
	version, dirty, err := mg.m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to get migration version: %w", err)
	}
	return version, dirty, nil
}

// Force records version without running anything, clearing a dirty flag
func (mg *Migrator) Force(version int) error {
	mg.logger.Warn("Forcing migration version", zap.Int("version", version))
	if err := mg.m.Force(version); err != nil {
		return fmt.Errorf("failed to force version %d: %w", version, err)
	}
	return nil
}

func (mg *Migrator) Close() error {
	srcErr, dbErr := mg.m.Close()
	return errors.Join(srcErr, dbErr)
}
