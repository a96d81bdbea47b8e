package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

// DefaultTable is the key/value table created by the postgres migrations.
const DefaultTable = "landing_kv"

// Dialect selects placeholder and upsert syntax.
type Dialect int

const (
	Postgres Dialect = iota
	SQLite
)

func (d Dialect) String() string {
	if d == SQLite {
		return "sqlite"
	}
	return "postgres"
}

// SQL stores values in a single key/value table.
type SQL struct {
	db      *sql.DB
	dialect Dialect
	table   string

	getQuery    string
	setQuery    string
	removeQuery string
}

// NewSQL builds a store over an open database. An empty table means DefaultTable.
func NewSQL(db *sql.DB, dialect Dialect, table string) *SQL {
	if table == "" {
		table = DefaultTable
	}
	s := &SQL{db: db, dialect: dialect, table: table}
	quoted := pq.QuoteIdentifier(table)

	switch dialect {
	case SQLite:
		s.getQuery = fmt.Sprintf(`SELECT value FROM %s WHERE key = ?`, quoted)
		s.setQuery = fmt.Sprintf(`INSERT INTO %s (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`, quoted)
		s.removeQuery = fmt.Sprintf(`DELETE FROM %s WHERE key = ?`, quoted)
	default:
		s.getQuery = fmt.Sprintf(`SELECT value FROM %s WHERE key = $1`, quoted)
		s.setQuery = fmt.Sprintf(`INSERT INTO %s (key, value, updated_at) VALUES ($1, $2, NOW())
			ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`, quoted)
		s.removeQuery = fmt.Sprintf(`DELETE FROM %s WHERE key = $1`, quoted)
	}
	return s
}

// EnsureSchema creates the key/value table when it does not exist.
func (s *SQL) EnsureSchema(ctx context.Context) error {
	ts := "TIMESTAMPTZ NOT NULL DEFAULT NOW()"
	if s.dialect == SQLite {
		ts = "TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP"
	}
	ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at %s
	)`, pq.QuoteIdentifier(s.table), ts)
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create %s table: %w", s.table, err)
	}
	return nil
}

func (s *SQL) Get(ctx context.Context, key string) ([]byte, error) {
	var value string
	err := s.db.QueryRowContext(ctx, s.getQuery, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	return []byte(value), nil
}

func (s *SQL) Set(ctx context.Context, key string, value []byte) error {
	if _, err := s.db.ExecContext(ctx, s.setQuery, key, string(value)); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

func (s *SQL) Remove(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, s.removeQuery, key); err != nil {
		return fmt.Errorf("remove %s: %w", key, err)
	}
	return nil
}

// Close closes the underlying database.
func (s *SQL) Close() error {
	return s.db.Close()
}
