package store

import (
	"context"
	"database/sql"
	_ "embed"
	"sync"

	_ "github.com/lib/pq"
	"github.com/pkg/errors"
)

//go:embed migrations.sql
var migrationSQL string

// PostgresStore keeps cart snapshots in kv_items and serves the catalog
// tables (see inventory.go).
type PostgresStore struct {
	DB *sql.DB

	// per-key mutexes so goroutines in this process do not interleave
	// writes of the same snapshot key. Keys are key -> *sync.Mutex
	locks sync.Map
}

func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "open postgres")
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "ping postgres")
	}
	return &PostgresStore{DB: db}, nil
}

// Migrate creates the kv and catalog tables if they are missing.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.DB.ExecContext(ctx, migrationSQL)
	return errors.Wrap(err, "run migrations")
}

func (s *PostgresStore) Close() error { return s.DB.Close() }

// lockForKey acquires the process-local lock for key. Returns unlock func.
func (s *PostgresStore) lockForKey(key string) func() {
	if v, ok := s.locks.Load(key); ok {
		m := v.(*sync.Mutex)
		m.Lock()
		return m.Unlock
	}

	actual, _ := s.locks.LoadOrStore(key, &sync.Mutex{})
	m := actual.(*sync.Mutex)
	m.Lock()
	return m.Unlock
}

// Get returns the value stored under key or ErrNotFound.
func (s *PostgresStore) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := s.DB.QueryRowContext(ctx, `SELECT value FROM kv_items WHERE key=$1`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", ErrNotFound
	}
	if err != nil {
		return "", errors.Wrapf(err, "read key %q", key)
	}
	return value, nil
}

// Set overwrites the value stored under key.
func (s *PostgresStore) Set(ctx context.Context, key, value string) error {
	unlock := s.lockForKey(key)
	defer unlock()

	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO kv_items (key, value) VALUES ($1, $2)
		ON CONFLICT (key)
		DO UPDATE SET value = EXCLUDED.value
	`, key, value)
	return errors.Wrapf(err, "write key %q", key)
}
