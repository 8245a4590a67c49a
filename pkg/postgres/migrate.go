package postgres

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres" // register postgres driver
	_ "github.com/golang-migrate/migrate/v4/source/file"       // register file source driver
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

// Direction selects which way migrations are applied.
type Direction int

const (
	Up Direction = iota
	Down
)

func (d Direction) String() string {
	if d == Down {
		return "down"
	}
	return "up"
}

// RunMigrations applies all pending migrations from a source URL such as
// "file://./migrations". No pending migrations is not an error.
func RunMigrations(dsn string, sourceURL string) error {
	return Migrate(dsn, sourceURL, nil, "", Up)
}

// RunMigrationsDown rolls back all migrations from a source URL.
func RunMigrationsDown(dsn string, sourceURL string) error {
	return Migrate(dsn, sourceURL, nil, "", Down)
}

// RunMigrationsFS applies all pending migrations embedded under dir in fsys.
func RunMigrationsFS(dsn string, fsys fs.FS, dir string) error {
	return Migrate(dsn, "", fsys, dir, Up)
}

// Migrate runs migrations in the given direction. When fsys is non-nil the
// migrations are read from it and sourceURL is ignored.
func Migrate(dsn, sourceURL string, fsys fs.FS, dir string, direction Direction) error {
	m, err := newMigrator(dsn, sourceURL, fsys, dir)
	if err != nil {
		return err
	}
	defer m.Close()

	switch direction {
	case Down:
		err = m.Down()
	default:
		err = m.Up()
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("postgres: run migrations: %w", err)
	}

	return nil
}

// MigrationVersion reports the current schema version and whether the last
// migration left the schema dirty. A fresh database reports version 0.
func MigrationVersion(dsn, sourceURL string, fsys fs.FS, dir string) (uint, bool, error) {
	m, err := newMigrator(dsn, sourceURL, fsys, dir)
	if err != nil {
		return 0, false, err
	}
	defer m.Close()

	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("postgres: read migration version: %w", err)
	}
	return version, dirty, nil
}

func newMigrator(dsn, sourceURL string, fsys fs.FS, dir string) (*migrate.Migrate, error) {
	if fsys == nil {
		m, err := migrate.New(sourceURL, dsn)
		if err != nil {
			return nil, fmt.Errorf("postgres: create migrator: %w", err)
		}
		return m, nil
	}

	src, err := iofs.New(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("postgres: open embedded migrations: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: create migrator: %w", err)
	}
	return m, nil
}
