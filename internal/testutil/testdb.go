package testutil

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/josh-kwaku/fintrack/internal/store"
)

// SetupSQLite returns a store on a fresh database file with the schema in place.
func SetupSQLite(t *testing.T) *store.Store {
	t.Helper()

	s, err := store.Open(store.Options{
		Dialect: store.DialectSQLite,
		Path:    filepath.Join(t.TempDir(), "fintrack.db"),
	})
	if err != nil {
		t.Fatalf("open sqlite store: %v", err)
	}
	if err := s.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("create schema: %v", err)
	}
	return s
}

// SetupPostgres starts a throwaway Postgres container. Skipped with -short.
func SetupPostgres(t *testing.T) *store.Store {
	t.Helper()
	if testing.Short() {
		t.Skip("postgres container skipped in short mode")
	}
	ctx := context.Background()

	container, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("fintrack_test"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("start postgres container: %v", err)
	}

	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("terminate postgres container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("container host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("container port: %v", err)
	}

	s, err := store.Open(store.Options{
		Dialect:  store.DialectPostgres,
		Host:     host,
		Port:     port.Int(),
		Database: "fintrack_test",
		Username: "test",
		Password: "test",
	})
	if err != nil {
		t.Fatalf("open postgres store: %v", err)
	}
	if err := s.EnsureSchema(ctx); err != nil {
		t.Fatalf("create schema: %v", err)
	}
	return s
}
