package testutil

import (
	"context"
	"io/fs"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	pg "github.com/bibbank/frauddetect/pkg/postgres"
)

const (
	postgresImage   = "postgres:16-alpine"
	postgresStartup = 30 * time.Second
)

// PostgresContainer is a throwaway database with a connected pool.
type PostgresContainer struct {
	Container *postgres.PostgresContainer
	Pool      *pgxpool.Pool
	DSN       string
}

// NewPostgresContainer starts PostgreSQL and connects a pool through
// pkg/postgres. Call Cleanup when done.
func NewPostgresContainer(ctx context.Context, t *testing.T) *PostgresContainer {
	t.Helper()

	c, err := postgres.Run(ctx, postgresImage,
		postgres.WithDatabase("frauddetect"),
		postgres.WithUsername("fraud"),
		postgres.WithPassword("fraud"),
		// The server restarts once after init, hence two occurrences.
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(postgresStartup),
		),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}
	pc := &PostgresContainer{Container: c}

	if pc.DSN, err = c.ConnectionString(ctx, "sslmode=disable"); err != nil {
		pc.Cleanup(t)
		t.Fatalf("failed to get postgres connection string: %v", err)
	}
	if pc.Pool, err = pg.NewPool(ctx, pg.Config{URL: pc.DSN, ApplicationName: "fraudd-test"}); err != nil {
		pc.Cleanup(t)
		t.Fatalf("failed to connect to postgres: %v", err)
	}
	return pc
}

// Migrate applies the migrations found under dir in fsys.
func (pc *PostgresContainer) Migrate(t *testing.T, fsys fs.FS, dir string) {
	t.Helper()
	if err := pg.RunMigrationsFS(pc.DSN, fsys, dir); err != nil {
		t.Fatalf("failed to apply migrations: %v", err)
	}
}

// Truncate empties tables in one statement so foreign keys never get in
// the way.
func (pc *PostgresContainer) Truncate(t *testing.T, tables ...string) {
	t.Helper()
	if len(tables) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), terminateTimeout)
	defer cancel()
	stmt := "TRUNCATE TABLE " + strings.Join(tables, ", ") + " RESTART IDENTITY CASCADE"
	if _, err := pc.Pool.Exec(ctx, stmt); err != nil {
		t.Fatalf("failed to truncate %v: %v", tables, err)
	}
}

// Cleanup closes the pool and terminates the container.
func (pc *PostgresContainer) Cleanup(t *testing.T) {
	t.Helper()
	if pc.Pool != nil {
		pc.Pool.Close()
	}
	if pc.Container != nil {
		terminate(t, "postgres", pc.Container)
	}
}
