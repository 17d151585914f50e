package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// pgxAPI is the slice of pgxpool.Pool the Postgres store needs.
type pgxAPI interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Postgres backs the KV contract with a single JSONB table. Prefix scans
// map to LIKE with escaped metacharacters, so arbitrary string prefixes
// work (unlike the DynamoDB backend's partition constraint).
type Postgres struct {
	db pgxAPI
}

// NewPostgres creates a Postgres-backed store.
func NewPostgres(db pgxAPI) (*Postgres, error) {
	if db == nil {
		return nil, errors.New("store: postgres db must not be nil")
	}
	return &Postgres{db: db}, nil
}

// NewPool connects a pgx pool and verifies connectivity.
func NewPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("store: parse database config: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("store: create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("store: ping database: %w", err)
	}
	return pool, nil
}

// RunMigrations applies the embedded schema migrations.
func RunMigrations(databaseURL string, migrationsFS fs.FS) error {
	d, err := iofs.New(migrationsFS, ".")
	if err != nil {
		return fmt.Errorf("store: create migration source: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", d, databaseURL)
	if err != nil {
		return fmt.Errorf("store: create migrate instance: %w", err)
	}
	defer m.Close()
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("store: run migrations: %w", err)
	}
	version, dirty, _ := m.Version()
	slog.Info("migrations applied", "version", version, "dirty", dirty)
	return nil
}

func (p *Postgres) Set(ctx context.Context, key string, value any) error {
	if key == "" {
		return errors.New("store: set: key must not be empty")
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("store: set %q: marshal: %w", key, err)
	}
	_, err = p.db.Exec(ctx,
		`INSERT INTO kv_entries (k, v, updated_at) VALUES ($1, $2, now())
		 ON CONFLICT (k) DO UPDATE SET v = EXCLUDED.v, updated_at = now()`,
		key, raw)
	if err != nil {
		return fmt.Errorf("store: set %q: %w", key, err)
	}
	return nil
}

func (p *Postgres) Get(ctx context.Context, key string) (json.RawMessage, bool, error) {
	var raw []byte
	err := p.db.QueryRow(ctx, `SELECT v FROM kv_entries WHERE k = $1`, key).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("store: get %q: %w", key, err)
	}
	return json.RawMessage(raw), true, nil
}

func (p *Postgres) GetByPrefix(ctx context.Context, prefix string) ([]json.RawMessage, error) {
	rows, err := p.db.Query(ctx,
		`SELECT v FROM kv_entries WHERE k LIKE $1`, likePattern(prefix))
	if err != nil {
		return nil, fmt.Errorf("store: prefix scan %q: %w", prefix, err)
	}
	defer rows.Close()

	var values []json.RawMessage
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("store: prefix scan %q: scan: %w", prefix, err)
		}
		values = append(values, json.RawMessage(raw))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: prefix scan %q: %w", prefix, err)
	}
	return values, nil
}

// likePattern escapes LIKE metacharacters so the prefix matches literally.
func likePattern(prefix string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(prefix) + "%"
}
