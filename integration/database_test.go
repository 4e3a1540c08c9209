//go:build database

package integration

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestLeadtimeWithMySQL tests the leadtime CLI with a MySQL backend.
func TestLeadtimeWithMySQL(t *testing.T) {
	ctx := context.Background()

	// Start MySQL container
	req := testcontainers.ContainerRequest{
		Image:        "mysql:8",
		ExposedPorts: []string{"3306/tcp"},
		Env: map[string]string{
			"MYSQL_ROOT_PASSWORD": "secret123",
			"MYSQL_DATABASE":      "leadtime",
		},
		WaitingFor: wait.ForLog("port: 3306  MySQL Community Server").WithStartupTimeout(60 * time.Second),
	}
	mysqlC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	defer func() { _ = mysqlC.Terminate(ctx) }()

	// Get connection details
	host, err := mysqlC.Host(ctx)
	require.NoError(t, err)
	port, err := mysqlC.MappedPort(ctx, "3306")
	require.NoError(t, err)

	connStr := fmt.Sprintf("root:secret123@tcp(%s:%s)/leadtime?parseTime=true", host, port.Port())
	runStoreRoundTrip(t, "mysql", connStr)
}

// TestLeadtimeWithPostgres tests the leadtime CLI with a PostgreSQL backend.
func TestLeadtimeWithPostgres(t *testing.T) {
	ctx := context.Background()

	// Start Postgres container
	req := testcontainers.ContainerRequest{
		Image:        "postgres:18-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_HOST_AUTH_METHOD": "trust",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).WithStartupTimeout(60 * time.Second),
	}
	pgC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	defer func() { _ = pgC.Terminate(ctx) }()

	// Get connection details
	host, err := pgC.Host(ctx)
	require.NoError(t, err)
	port, err := pgC.MappedPort(ctx, "5432")
	require.NoError(t, err)

	connStr := fmt.Sprintf("host=%s port=%s user=postgres dbname=postgres sslmode=disable", host, port.Port())
	runStoreRoundTrip(t, "postgresql", connStr)
}

// runStoreRoundTrip imports messages, estimates from the store with run tracking
// and exports the run history, all against one database server.
func runStoreRoundTrip(t *testing.T, backend, connStr string) {
	dir := t.TempDir()
	messages := writeMessages(t, dir, 20)
	env := []string{
		"LEADTIME_MESSAGE_BACKEND=" + backend,
		"LEADTIME_MESSAGE_DB_CONNECT=" + connStr,
		"LEADTIME_RUN_BACKEND=" + backend,
		"LEADTIME_RUN_DB_CONNECT=" + connStr,
		"LEADTIME_COLOR=no",
	}

	mustRunLeadtime(t, env, "store", "clear")
	mustRunLeadtime(t, env, "runs", "clear")

	out := mustRunLeadtime(t, env, "store", "import", messages, "--system", "grapes_gfs")
	assert.Contains(t, out, "Imported 40 messages")

	// Importing twice keeps one row per product and cycle.
	mustRunLeadtime(t, env, "store", "import", messages, "--system", "grapes_gfs")
	out = mustRunLeadtime(t, env, "store", "status")
	assert.Contains(t, out, "Total Messages: 40")

	out = mustRunLeadtime(t, env, "estimate", "--input", "store", "--system", "grapes_gfs",
		"--buckets", "00=0,6", "--seed", "42", "--bootstrap-count", "200", "--output", "json")
	assert.Contains(t, out, `"start_hour": "00"`)

	out = mustRunLeadtime(t, env, "runs", "status")
	assert.Contains(t, out, "Total Runs: 1")
	assert.Contains(t, out, "Total Bounds: 2")

	export := filepath.Join(dir, "history")
	mustRunLeadtime(t, env, "runs", "export", "--output-file", export)
	for _, suffix := range []string{".estimate_runs.parquet", ".standard_times.parquet"} {
		info, err := os.Stat(export + suffix)
		require.NoError(t, err)
		assert.Positive(t, info.Size())
	}
}
