//go:build integration

// Package testutil spins up throwaway Postgres containers for integration
// tests. Everything here is behind the integration build tag so the unit
// suite stays free of the Docker dependency.
package testutil

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/arenaops/arena-server/db"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

type TestDatabase struct {
	Container *postgres.PostgresContainer
	DB        *sql.DB
	URL       string
}

// SetupTestDatabase starts a Postgres container, applies the embedded
// migrations, and returns an open pool. The container and the pool are torn
// down via t.Cleanup.
func SetupTestDatabase(t *testing.T) *TestDatabase {
	t.Helper()
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("arena_test"),
		postgres.WithUsername("test_user"),
		postgres.WithPassword("test_password"),
		postgres.BasicWaitStrategies(),
		testcontainers.WithLabels(map[string]string{
			"test":      "arena-repositories",
			"test-name": t.Name(),
		}),
	)
	require.NoError(t, err)

	testDB := &TestDatabase{Container: container}
	t.Cleanup(func() {
		cleanupCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if testDB.DB != nil {
			_ = testDB.DB.Close()
		}
		if err := container.Terminate(cleanupCtx); err != nil {
			t.Logf("failed to terminate test container: %v", err)
		}
	})

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := db.Connect(connStr, 10*time.Second)
	require.NoError(t, err)
	require.NoError(t, db.Migrate(pool))

	testDB.DB = pool
	testDB.URL = connStr
	return testDB
}
