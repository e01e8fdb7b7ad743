package history

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"studio/internal/domain"
)

func sampleResult(i int) domain.GenerationResult {
	return domain.GenerationResult{
		ID:        fmt.Sprintf("gen_%d", i),
		ImageURL:  fmt.Sprintf("https://picsum.photos/800/600?random=%d", i),
		Prompt:    fmt.Sprintf("prompt %d", i),
		Style:     domain.StyleVintage,
		CreatedAt: time.Date(2026, 3, 1, 10, 0, i, 123456789, time.UTC),
	}
}

func ids(entries []Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.ID
	}
	return out
}

func TestRecordPrependsNewestFirst(t *testing.T) {
	ctx := context.Background()
	store := NewStore(NewMemoryMedium(), Options{})

	store.Record(ctx, sampleResult(1))
	store.Record(ctx, sampleResult(2))

	got := store.List(ctx)
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(got))
	}
	if got[0].ID != "gen_2" || got[1].ID != "gen_1" {
		t.Fatalf("unexpected order: %v", ids(got))
	}
}

func TestRecordEvictsOldestBeyondCap(t *testing.T) {
	ctx := context.Background()
	store := NewStore(NewMemoryMedium(), Options{})

	for i := 1; i <= 6; i++ {
		store.Record(ctx, sampleResult(i))
	}

	got := store.List(ctx)
	if len(got) != domain.MaxHistoryItems {
		t.Fatalf("expected %d entries, got %d", domain.MaxHistoryItems, len(got))
	}
	want := []string{"gen_6", "gen_5", "gen_4", "gen_3", "gen_2"}
	for i, id := range want {
		if got[i].ID != id {
			t.Fatalf("entry %d = %q, want %q (all %v)", i, got[i].ID, id, ids(got))
		}
	}
	if _, ok := store.Get(ctx, "gen_1"); ok {
		t.Fatal("oldest entry must be evicted")
	}
}

func TestRemoveByID(t *testing.T) {
	ctx := context.Background()
	medium := NewMemoryMedium()
	store := NewStore(medium, Options{})
	store.Record(ctx, sampleResult(1))
	store.Record(ctx, sampleResult(2))

	store.Remove(ctx, "gen_1")
	got := store.List(ctx)
	if len(got) != 1 || got[0].ID != "gen_2" {
		t.Fatalf("unexpected entries after remove: %v", ids(got))
	}
}

func TestRemoveUnknownIDLeavesStoreUnchanged(t *testing.T) {
	ctx := context.Background()
	medium := NewMemoryMedium()
	store := NewStore(medium, Options{})
	store.Record(ctx, sampleResult(1))
	before, _ := medium.Load(ctx, DefaultKey)

	store.Remove(ctx, "gen_missing")

	after, _ := medium.Load(ctx, DefaultKey)
	if string(before) != string(after) {
		t.Fatalf("persisted value changed:\nbefore %s\nafter  %s", before, after)
	}
}

func TestRecordRefusesEmptyID(t *testing.T) {
	ctx := context.Background()
	medium := NewMemoryMedium()
	store := NewStore(medium, Options{})
	store.Record(ctx, sampleResult(1))
	before, _ := medium.Load(ctx, DefaultKey)

	for _, id := range []string{"", "   "} {
		result := sampleResult(2)
		result.ID = id
		store.Record(ctx, result)
	}

	after, _ := medium.Load(ctx, DefaultKey)
	if string(before) != string(after) {
		t.Fatalf("persisted value changed:\nbefore %s\nafter  %s", before, after)
	}
	if got := store.List(ctx); len(got) != 1 || got[0].ID != "gen_1" {
		t.Fatalf("unexpected entries: %v", ids(got))
	}
}

func TestClear(t *testing.T) {
	ctx := context.Background()
	store := NewStore(NewMemoryMedium(), Options{})
	store.Record(ctx, sampleResult(1))

	store.Clear(ctx)
	if got := store.List(ctx); len(got) != 0 {
		t.Fatalf("expected empty history, got %v", ids(got))
	}
	store.Clear(ctx)
}

func TestRoundTripAcrossRestart(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	plus7 := time.FixedZone("WIB", 7*60*60)
	want := domain.GenerationResult{
		ID:        "gen_1767225600000_k3j9x0abc",
		ImageURL:  "https://picsum.photos/800/600?random=42",
		Prompt:    "golden hour portrait",
		Style:     domain.StyleDramatic,
		CreatedAt: time.Date(2026, 1, 1, 7, 0, 0, 987654321, plus7),
	}

	first, err := NewFileMedium(dir)
	if err != nil {
		t.Fatalf("NewFileMedium error: %v", err)
	}
	NewStore(first, Options{}).Record(ctx, want)

	// A fresh medium and store over the same directory simulate a restart.
	second, err := NewFileMedium(dir)
	if err != nil {
		t.Fatalf("NewFileMedium error: %v", err)
	}
	got := NewStore(second, Options{}).List(ctx)
	if len(got) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(got))
	}
	e := got[0]
	if e.ID != want.ID || e.ImageURL != want.ImageURL || e.Prompt != want.Prompt || e.Style != want.Style {
		t.Fatalf("entry mismatch: got %+v want %+v", e, want)
	}
	if !e.CreatedAt.Equal(want.CreatedAt) {
		t.Fatalf("CreatedAt = %v, want %v", e.CreatedAt, want.CreatedAt)
	}
	_, gotOffset := e.CreatedAt.Zone()
	_, wantOffset := want.CreatedAt.Zone()
	if gotOffset != wantOffset {
		t.Fatalf("offset = %d, want %d", gotOffset, wantOffset)
	}
}

func TestListSkipsMalformedEntries(t *testing.T) {
	ctx := context.Background()
	medium := NewMemoryMedium()
	raw := `[
		{"id":"gen_ok","imageUrl":"u","prompt":"p","style":"vintage","createdAt":"2026-01-01T00:00:00.000Z"},
		{"id":"","imageUrl":"u","prompt":"p","style":"vintage","createdAt":"2026-01-01T00:00:00Z"},
		{"id":"gen_bad_time","createdAt":"yesterday"},
		"garbage",
		{"id":"gen_ok2","imageUrl":"u2","prompt":"p2","style":"editorial","createdAt":"2025-12-31T23:59:59Z"}
	]`
	if err := medium.Save(ctx, DefaultKey, []byte(raw)); err != nil {
		t.Fatalf("Save error: %v", err)
	}

	got := NewStore(medium, Options{}).List(ctx)
	if len(got) != 2 || got[0].ID != "gen_ok" || got[1].ID != "gen_ok2" {
		t.Fatalf("unexpected entries: %v", ids(got))
	}
}

func TestListToleratesCorruptValue(t *testing.T) {
	ctx := context.Background()
	medium := NewMemoryMedium()
	_ = medium.Save(ctx, DefaultKey, []byte(`{not json`))
	store := NewStore(medium, Options{})

	if got := store.List(ctx); len(got) != 0 {
		t.Fatalf("expected empty list, got %v", ids(got))
	}

	// Recording over a corrupt value replaces it.
	store.Record(ctx, sampleResult(1))
	if got := store.List(ctx); len(got) != 1 {
		t.Fatalf("expected 1 entry after record, got %d", len(got))
	}
}

type failingMedium struct {
	loadErr error
	saveErr error
	saves   int
}

func (f *failingMedium) Load(ctx context.Context, key string) ([]byte, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return nil, ErrNotFound
}

func (f *failingMedium) Save(ctx context.Context, key string, value []byte) error {
	f.saves++
	return f.saveErr
}

func (f *failingMedium) Delete(ctx context.Context, key string) error {
	return f.saveErr
}

func TestPersistenceFailuresAreSwallowed(t *testing.T) {
	ctx := context.Background()
	medium := &failingMedium{loadErr: errors.New("disk unavailable"), saveErr: errors.New("quota exceeded")}
	store := NewStore(medium, Options{})

	store.Record(ctx, sampleResult(1))
	store.Remove(ctx, "gen_1")
	store.Clear(ctx)
	if got := store.List(ctx); len(got) != 0 {
		t.Fatalf("expected empty list, got %v", ids(got))
	}
	if medium.saves != 1 {
		t.Fatalf("expected a single save attempt, got %d", medium.saves)
	}
}

func TestCustomKey(t *testing.T) {
	ctx := context.Background()
	medium := NewMemoryMedium()
	store := NewStore(medium, Options{Key: "tab_a"})
	store.Record(ctx, sampleResult(1))

	if _, err := medium.Load(ctx, DefaultKey); !errors.Is(err, ErrNotFound) {
		t.Fatalf("default key should be untouched, got %v", err)
	}
	if _, err := medium.Load(ctx, "tab_a"); err != nil {
		t.Fatalf("custom key missing: %v", err)
	}
}
