package history

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

func exerciseMedium(t *testing.T, m Medium) {
	t.Helper()
	ctx := context.Background()

	if _, err := m.Load(ctx, "k"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Load on empty medium = %v, want ErrNotFound", err)
	}
	if err := m.Save(ctx, "k", []byte(`[1]`)); err != nil {
		t.Fatalf("Save error: %v", err)
	}
	if err := m.Save(ctx, "k", []byte(`[1,2]`)); err != nil {
		t.Fatalf("second Save error: %v", err)
	}
	got, err := m.Load(ctx, "k")
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if string(got) != `[1,2]` {
		t.Fatalf("Load = %s, want [1,2]", got)
	}
	if err := m.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if err := m.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete of missing key error: %v", err)
	}
	if _, err := m.Load(ctx, "k"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Load after delete = %v, want ErrNotFound", err)
	}
}

func TestMemoryMedium(t *testing.T) {
	exerciseMedium(t, NewMemoryMedium())
}

func TestMemoryMediumCopiesValues(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryMedium()
	value := []byte(`[]`)
	_ = m.Save(ctx, "k", value)
	value[0] = 'x'
	got, _ := m.Load(ctx, "k")
	if string(got) != `[]` {
		t.Fatalf("medium must not alias caller bytes, got %s", got)
	}
}

func TestFileMedium(t *testing.T) {
	m, err := NewFileMedium(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileMedium error: %v", err)
	}
	exerciseMedium(t, m)
}

func TestSQLiteMedium(t *testing.T) {
	m, err := OpenSQLiteMedium(context.Background(), filepath.Join(t.TempDir(), "db", "studio.db"))
	if err != nil {
		t.Fatalf("OpenSQLiteMedium error: %v", err)
	}
	defer m.Close()
	exerciseMedium(t, m)
}

func TestSQLiteMediumSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "studio.db")
	m, err := OpenSQLiteMedium(ctx, path)
	if err != nil {
		t.Fatalf("OpenSQLiteMedium error: %v", err)
	}
	NewStore(m, Options{}).Record(ctx, sampleResult(1))
	m.Close()

	reopened, err := OpenSQLiteMedium(ctx, path)
	if err != nil {
		t.Fatalf("reopen error: %v", err)
	}
	defer reopened.Close()
	got := NewStore(reopened, Options{}).List(ctx)
	if len(got) != 1 || got[0].ID != "gen_1" {
		t.Fatalf("unexpected entries after reopen: %v", ids(got))
	}
}

// kvExecutor emulates history_kv for the statements PostgresMedium issues.
type kvExecutor struct {
	rows    map[string]string
	queries []string
}

func newKVExecutor() *kvExecutor {
	return &kvExecutor{rows: make(map[string]string)}
}

func (k *kvExecutor) Exec(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error) {
	k.queries = append(k.queries, query)
	switch {
	case strings.Contains(query, "create table"):
		return pgconn.CommandTag{}, nil
	case strings.Contains(query, "insert into history_kv"):
		k.rows[args[0].(string)] = args[1].(string)
		return pgconn.NewCommandTag("INSERT 0 1"), nil
	case strings.Contains(query, "delete from history_kv"):
		delete(k.rows, args[0].(string))
		return pgconn.NewCommandTag("DELETE 1"), nil
	}
	return pgconn.CommandTag{}, errors.New("unexpected exec")
}

func (k *kvExecutor) QueryRow(ctx context.Context, query string, args ...any) pgx.Row {
	k.queries = append(k.queries, query)
	value, ok := k.rows[args[0].(string)]
	return kvRow{value: value, ok: ok}
}

func (k *kvExecutor) Query(ctx context.Context, query string, args ...any) (pgx.Rows, error) {
	return nil, errors.New("not implemented")
}

type kvRow struct {
	value string
	ok    bool
}

func (r kvRow) Scan(dest ...any) error {
	if !r.ok {
		return pgx.ErrNoRows
	}
	ptr, ok := dest[0].(*string)
	if !ok {
		return errors.New("invalid dest")
	}
	*ptr = r.value
	return nil
}

func TestPostgresMedium(t *testing.T) {
	exec := newKVExecutor()
	m := NewPostgresMedium(exec)
	if err := m.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate error: %v", err)
	}
	exerciseMedium(t, m)
	for _, q := range exec.queries {
		if !strings.HasPrefix(q, "--sql ") {
			t.Fatalf("statement without audit marker: %q", q)
		}
	}
}

func TestPostgresMediumPropagatesErrors(t *testing.T) {
	m := NewPostgresMedium(&brokenExecutor{err: errors.New("connection reset")})
	if _, err := m.Load(context.Background(), "k"); err == nil || errors.Is(err, ErrNotFound) {
		t.Fatalf("Load error = %v, want connection error", err)
	}
	if err := m.Migrate(context.Background()); err == nil {
		t.Fatal("expected migrate error")
	}
}

type brokenExecutor struct {
	err error
}

func (b *brokenExecutor) Exec(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, b.err
}

func (b *brokenExecutor) QueryRow(ctx context.Context, query string, args ...any) pgx.Row {
	return kvRowErr{err: b.err}
}

func (b *brokenExecutor) Query(ctx context.Context, query string, args ...any) (pgx.Rows, error) {
	return nil, b.err
}

type kvRowErr struct {
	err error
}

func (r kvRowErr) Scan(dest ...any) error {
	return r.err
}
