package history

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"studio/internal/infra"
)

// OpenMedium builds the medium selected by cfg.HistoryBackend. The returned
// close function releases pools and database handles and is never nil.
func OpenMedium(ctx context.Context, cfg *infra.Config, logger zerolog.Logger) (Medium, func(), error) {
	noop := func() {}
	switch cfg.HistoryBackend {
	case infra.HistoryBackendMemory:
		return NewMemoryMedium(), noop, nil
	case infra.HistoryBackendFile:
		m, err := NewFileMedium(cfg.HistoryPath)
		if err != nil {
			return nil, noop, err
		}
		return m, noop, nil
	case infra.HistoryBackendSQLite:
		m, err := OpenSQLiteMedium(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, noop, err
		}
		return m, func() { _ = m.Close() }, nil
	case infra.HistoryBackendPostgres:
		pool, err := infra.NewDBPool(ctx, cfg)
		if err != nil {
			return nil, noop, err
		}
		m := NewPostgresMedium(infra.NewSQLRunner(pool, logger))
		if err := m.Migrate(ctx); err != nil {
			pool.Close()
			return nil, noop, err
		}
		return m, pool.Close, nil
	default:
		return nil, noop, fmt.Errorf("history: unsupported backend %q", cfg.HistoryBackend)
	}
}
