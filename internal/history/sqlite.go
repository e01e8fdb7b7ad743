package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"studio/internal/sqlinline"
)

// SQLiteMedium keeps each key as one row of a local SQLite database.
type SQLiteMedium struct {
	db *sql.DB
}

// OpenSQLiteMedium opens (or creates) the database at path and ensures the
// history table exists.
func OpenSQLiteMedium(ctx context.Context, path string) (*SQLiteMedium, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("history: ensure sqlite dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("history: open sqlite: %w", err)
	}
	// One writer at a time; also keeps ":memory:" databases on one connection.
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("history: ping sqlite: %w", err)
	}
	if _, err := db.ExecContext(ctx, sqlinline.QSQLiteCreateHistoryTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("history: migrate sqlite: %w", err)
	}
	return &SQLiteMedium{db: db}, nil
}

// Close releases the database handle.
func (m *SQLiteMedium) Close() error {
	return m.db.Close()
}

func (m *SQLiteMedium) Load(ctx context.Context, key string) ([]byte, error) {
	var value string
	err := m.db.QueryRowContext(ctx, sqlinline.QSQLiteSelectHistoryValue, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return []byte(value), nil
}

func (m *SQLiteMedium) Save(ctx context.Context, key string, value []byte) error {
	_, err := m.db.ExecContext(ctx, sqlinline.QSQLiteUpsertHistoryValue, key, string(value))
	return err
}

func (m *SQLiteMedium) Delete(ctx context.Context, key string) error {
	_, err := m.db.ExecContext(ctx, sqlinline.QSQLiteDeleteHistoryValue, key)
	return err
}

var _ Medium = (*SQLiteMedium)(nil)
