// Package testutils holds helpers shared by integration tests.
package testutils

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/joho/godotenv"
	"github.com/surrealdb/surrealdb.go"

	"github.com/nfrund/editorimages/internal/config"
	"github.com/nfrund/editorimages/internal/database"
)

// LoadTestEnv applies the project's .env.test, when it exists, to the
// test's environment.
func LoadTestEnv(t *testing.T) {
	t.Helper()

	path, _ := os.Getwd()
	for {
		if _, err := os.Stat(filepath.Join(path, "go.mod")); err == nil {
			break
		}
		if path == filepath.Dir(path) {
			return
		}
		path = filepath.Dir(path)
	}

	env, err := godotenv.Read(filepath.Join(path, ".env.test"))
	if err != nil {
		return
	}
	for key, value := range env {
		t.Setenv(key, value)
	}
}

// SurrealDB connects to the integration database named by SURREAL_URL and
// applies the schema. The test is skipped in short mode or when no database
// is configured. Tables listed in cleanup are emptied when the test ends.
func SurrealDB(t *testing.T, cleanup ...string) *surrealdb.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	LoadTestEnv(t)
	if os.Getenv("SURREAL_URL") == "" {
		t.Skip("SURREAL_URL not set")
	}

	cfg := &config.Config{
		DBUrl:  os.Getenv("SURREAL_URL"),
		DBUser: os.Getenv("SURREAL_USER"),
		DBPass: os.Getenv("SURREAL_PASS"),
		DBNs:   "test",
		DBDb:   "editorimages_test",
	}

	ctx := context.Background()
	db, err := database.NewDB(ctx, cfg)
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}
	if err := database.EnsureSchema(ctx, db); err != nil {
		t.Fatalf("failed to apply schema: %v", err)
	}

	t.Cleanup(func() {
		for _, table := range cleanup {
			_ = database.Execute(context.Background(), db, "DELETE type::table($table)", map[string]any{"table": table})
		}
		db.Close(context.Background())
	})
	return db
}
