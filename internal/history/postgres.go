package history

import (
	"context"
	"fmt"

	"studio/internal/infra"
	"studio/internal/sqlinline"
)

// PostgresMedium keeps each key as one row of history_kv.
type PostgresMedium struct {
	sql infra.SQLExecutor
}

// NewPostgresMedium wraps an audited SQL executor, normally an
// *infra.SQLRunner over a pgx pool.
func NewPostgresMedium(sql infra.SQLExecutor) *PostgresMedium {
	return &PostgresMedium{sql: sql}
}

// Migrate creates the backing table if needed.
func (m *PostgresMedium) Migrate(ctx context.Context) error {
	if _, err := m.sql.Exec(ctx, sqlinline.QCreateHistoryTable); err != nil {
		return fmt.Errorf("history: migrate postgres: %w", err)
	}
	return nil
}

func (m *PostgresMedium) Load(ctx context.Context, key string) ([]byte, error) {
	row := m.sql.QueryRow(ctx, sqlinline.QSelectHistoryValue, key)
	var value string
	if err := row.Scan(&value); err != nil {
		if infra.IsNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return []byte(value), nil
}

func (m *PostgresMedium) Save(ctx context.Context, key string, value []byte) error {
	_, err := m.sql.Exec(ctx, sqlinline.QUpsertHistoryValue, key, string(value))
	return err
}

func (m *PostgresMedium) Delete(ctx context.Context, key string) error {
	_, err := m.sql.Exec(ctx, sqlinline.QDeleteHistoryValue, key)
	return err
}

var _ Medium = (*PostgresMedium)(nil)
