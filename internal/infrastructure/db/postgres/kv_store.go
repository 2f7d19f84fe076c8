package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"

	"github.com/fincatec/domain-store/internal/core/ports"
)

var (
	_ ports.KVStore = (*KVStore)(nil)
	_ ports.Pinger  = (*KVStore)(nil)
)

var identPattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// KVStore keeps one row per collection key.
type KVStore struct {
	db    *sql.DB
	table string
}

// NewKVStore uses the table kv_<namespace>. The namespace must be a lower-case
// SQL identifier.
func NewKVStore(db *sql.DB, namespace string) (*KVStore, error) {
	table, err := tableName(namespace)
	if err != nil {
		return nil, err
	}
	return &KVStore{db: db, table: table}, nil
}

// EnsureSchema creates the table if it does not exist.
func (s *KVStore) EnsureSchema(ctx context.Context) error {
	ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		key TEXT PRIMARY KEY,
		value JSONB NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`, s.table)
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("ensure %s: %w", s.table, err)
	}
	return nil
}

func (s *KVStore) Read(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx, fmt.Sprintf(`SELECT value FROM %s WHERE key = $1`, s.table), key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("select %s: %w", key, err)
	}
	return value, true, nil
}

func (s *KVStore) Write(ctx context.Context, key string, value []byte) error {
	q := fmt.Sprintf(`INSERT INTO %s (key, value, updated_at) VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`, s.table)
	if _, err := s.db.ExecContext(ctx, q, key, string(value)); err != nil {
		return fmt.Errorf("upsert %s: %w", key, err)
	}
	return nil
}

func (s *KVStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func tableName(namespace string) (string, error) {
	if namespace == "" {
		return "kv_store", nil
	}
	if !identPattern.MatchString(namespace) {
		return "", fmt.Errorf("invalid namespace %q", namespace)
	}
	return "kv_" + namespace, nil
}
