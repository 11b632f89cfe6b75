package repository

import (
	"context"
	"os/exec"
	"testing"
	"time"

	"kushklicker/internal/migrations"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// checkDockerAvailable checks if Docker is available and running
func checkDockerAvailable() bool {
	return exec.Command("docker", "info").Run() == nil
}

// setupTestDB starts one PostgreSQL container for the whole test and returns
// a function that hands out a freshly truncated store.
func setupTestDB(t *testing.T) func(t *testing.T) Store {
	if testing.Short() {
		t.Skip("skipping postgres integration test in short mode")
	}
	if !checkDockerAvailable() {
		t.Skip("Docker is not available, skipping integration test")
	}

	ctx := context.Background()
	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("kushklicker"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgContainer.Terminate(ctx) })

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, migrations.Apply(ctx, pool))

	return func(t *testing.T) Store {
		_, err := pool.Exec(ctx, `TRUNCATE player_achievements, player_upgrades, achievements, upgrades, players`)
		require.NoError(t, err)
		return NewPostgresStore(pool)
	}
}

func TestPostgresStoreContract(t *testing.T) {
	newStore := setupTestDB(t)
	runStoreContract(t, newStore)
}

func TestPostgresMigrationsAreIdempotent(t *testing.T) {
	newStore := setupTestDB(t)
	s := newStore(t).(*PostgresStore)
	require.NoError(t, migrations.Apply(context.Background(), s.pool))
}
