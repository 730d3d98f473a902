package database

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nfrund/editorimages/internal/config"
	"github.com/surrealdb/surrealdb.go"
)

// NewDB creates and configures a new SurrealDB connection.
func NewDB(ctx context.Context, cfg *config.Config) (*surrealdb.DB, error) {
	db, err := surrealdb.FromEndpointURLString(ctx, cfg.DBUrl)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to surrealdb: %w", err)
	}

	if cfg.DBUser != "" {
		authData := &surrealdb.Auth{
			Username: cfg.DBUser,
			Password: cfg.DBPass,
		}
		if _, err = db.SignIn(ctx, authData); err != nil {
			db.Close(ctx)
			return nil, fmt.Errorf("failed to sign in: %w", err)
		}
	}

	if err = db.Use(ctx, cfg.DBNs, cfg.DBDb); err != nil {
		db.Close(ctx)
		return nil, fmt.Errorf("failed to use namespace/db: %w", err)
	}

	slog.Info("Connected to SurrealDB", "url", cfg.DBUrl, "ns", cfg.DBNs, "db", cfg.DBDb)
	return db, nil
}

// schema is applied on startup; every statement is idempotent.
const schema = `
DEFINE TABLE IF NOT EXISTS account SCHEMALESS;
DEFINE INDEX IF NOT EXISTS account_email ON TABLE account COLUMNS email UNIQUE;
DEFINE INDEX IF NOT EXISTS account_uid ON TABLE account COLUMNS uid UNIQUE;
DEFINE INDEX IF NOT EXISTS account_verify_token ON TABLE account COLUMNS verify_token;
`

// EnsureSchema defines the tables and indexes the account store relies on.
func EnsureSchema(ctx context.Context, db *surrealdb.DB) error {
	if err := Execute(ctx, db, schema, nil); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}
