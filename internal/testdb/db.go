// Package testdb provides databases and caches for tests: in-memory sqlite
// and, when docker is available, pgvector Postgres and Redis containers.
package testdb

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"

	"github.com/pageza/smartplate/config"
	"github.com/pageza/smartplate/internal/database"
	"github.com/pageza/smartplate/internal/logger"
)

// SQLite opens a migrated sqlite database private to the test
func SQLite(t *testing.T) *gorm.DB {
	t.Helper()
	cfg := &config.Config{
		DBDriver: "sqlite",
		DBPath:   fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_")),
	}
	db, err := database.New(cfg, logger.Discard())
	require.NoError(t, err)
	require.NoError(t, database.RunMigrations(db))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	return db
}

// Postgres starts a pgvector container and returns a migrated connection
func Postgres(t *testing.T) *gorm.DB {
	t.Helper()
	requireDocker(t)

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "pgvector/pgvector:pg16",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "test",
				"POSTGRES_PASSWORD": "test",
				"POSTGRES_DB":       "test",
			},
			WaitingFor: wait.ForAll(
				wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
				wait.ForListeningPort("5432/tcp"),
			).WithDeadline(90 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	cfg := &config.Config{
		DBDriver:   "postgres",
		DBHost:     host,
		DBPort:     port.Port(),
		DBUser:     "test",
		DBPassword: "test",
		DBName:     "test",
		DBSSLMode:  "disable",
	}
	db, err := database.New(cfg, logger.Discard())
	require.NoError(t, err)
	require.NoError(t, database.RunMigrations(db))
	return db
}

// Redis starts a Redis container and returns a connected client
func Redis(t *testing.T) *redis.Client {
	t.Helper()
	requireDocker(t)

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: endpoint})
	t.Cleanup(func() { client.Close() })
	require.NoError(t, client.Ping(ctx).Err())
	return client
}

func requireDocker(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container-based test in short mode")
	}
	if _, err := exec.LookPath("docker"); err != nil {
		t.Skip("docker not installed, skipping container-based test")
	}
}
