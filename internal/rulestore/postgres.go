package rulestore

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Schema is the SQL DDL for the dictionary_rules table. Execute it via
// [PostgresStore.Migrate] or apply it manually during deployment.
const Schema = `
CREATE TABLE IF NOT EXISTS dictionary_rules (
    name       TEXT PRIMARY KEY,
    rules      TEXT NOT NULL DEFAULT '',
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// DefaultDictionary is the row name used when no dictionary name is given.
const DefaultDictionary = "default"

// DB is the database interface used by [PostgresStore]. Both *pgxpool.Pool
// and *pgx.Conn satisfy this interface.
type DB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresStore is a [Store] backed by a PostgreSQL table holding one row
// per named dictionary.
type PostgresStore struct {
	db   DB
	name string
}

// Compile-time interface check.
var _ Store = (*PostgresStore)(nil)

// NewPostgresStore creates a [PostgresStore] for the dictionary with the
// given name (use [DefaultDictionary] when the deployment has only one).
// The caller is responsible for calling [PostgresStore.Migrate] to ensure
// the schema exists before issuing queries.
func NewPostgresStore(db DB, name string) *PostgresStore {
	if name == "" {
		name = DefaultDictionary
	}
	return &PostgresStore{db: db, name: name}
}

// Migrate executes the [Schema] DDL against the database, creating the
// dictionary_rules table if it does not already exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("rulestore: migrate: %w", err)
	}
	return nil
}

// Load returns the stored rule text. A dictionary without a row loads as
// the empty string.
func (s *PostgresStore) Load(ctx context.Context) (string, error) {
	const query = `SELECT rules FROM dictionary_rules WHERE name = $1`

	var text string
	err := s.db.QueryRow(ctx, query, s.name).Scan(&text)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("rulestore: load %q: %w", s.name, err)
	}
	return text, nil
}

// Save validates text and upserts the dictionary row.
func (s *PostgresStore) Save(ctx context.Context, text string) error {
	if err := checkRuleText(text); err != nil {
		return err
	}

	const query = `
		INSERT INTO dictionary_rules (name, rules, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (name) DO UPDATE SET rules = EXCLUDED.rules, updated_at = now()`

	if _, err := s.db.Exec(ctx, query, s.name, text); err != nil {
		return fmt.Errorf("rulestore: save %q: %w", s.name, err)
	}
	return nil
}

// Ping issues a trivial query to verify connectivity.
func (s *PostgresStore) Ping(ctx context.Context) error {
	var one int
	if err := s.db.QueryRow(ctx, `SELECT 1`).Scan(&one); err != nil {
		return fmt.Errorf("rulestore: ping: %w", err)
	}
	return nil
}
