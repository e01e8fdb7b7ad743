package history

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/rs/zerolog"

	"studio/internal/domain"
	"studio/internal/infra"
)

// DefaultKey is the key the history array is persisted under.
const DefaultKey = "ai_studio_generations"

// Entry is a generation result persisted in history.
type Entry = domain.GenerationResult

// Options configures a Store.
type Options struct {
	Key    string
	Logger *infra.Logger
}

// Store is the bounded, newest-first generation history. Every call re-reads
// the medium; nothing is cached between calls. Persistence failures are
// logged and swallowed so history can never fail a generation.
type Store struct {
	medium Medium
	key    string
	limit  int
	logger *infra.Logger

	// mu serialises read-modify-write cycles within this process. Writers in
	// other processes are last-write-wins.
	mu sync.Mutex
}

// NewStore builds a Store over medium.
func NewStore(medium Medium, opts Options) *Store {
	key := opts.Key
	if key == "" {
		key = DefaultKey
	}
	logger := opts.Logger
	if logger == nil {
		l := infra.Logger(zerolog.New(io.Discard))
		logger = &l
	}
	return &Store{
		medium: medium,
		key:    key,
		limit:  domain.MaxHistoryItems,
		logger: logger,
	}
}

// Record prepends result and truncates the history to its cap. Results
// without an id are logged and not written.
func (s *Store) Record(ctx context.Context, result domain.GenerationResult) {
	if !validID(result.ID) {
		s.logger.Warn().Err(errMissingID).Msg("history: refusing to record generation")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.load(ctx)
	updated := make([]Entry, 0, len(entries)+1)
	updated = append(updated, result)
	updated = append(updated, entries...)
	if len(updated) > s.limit {
		updated = updated[:s.limit]
	}
	if err := s.save(ctx, updated); err != nil {
		s.logger.Error().Err(err).Str("id", result.ID).Msg("history: error saving to history")
		return
	}
	s.logger.Debug().Str("id", result.ID).Int("size", len(updated)).Msg("history: recorded generation")
}

// List returns the entries newest first. Malformed persisted records are
// skipped.
func (s *Store) List(ctx context.Context) []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

// Get looks up one entry by id.
func (s *Store) Get(ctx context.Context, id string) (Entry, bool) {
	for _, e := range s.List(ctx) {
		if e.ID == id {
			return e, true
		}
	}
	return Entry{}, false
}

// Remove drops the entry with id. Unknown ids leave the store untouched.
func (s *Store) Remove(ctx context.Context, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.load(ctx)
	filtered := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if e.ID != id {
			filtered = append(filtered, e)
		}
	}
	if len(filtered) == len(entries) {
		return
	}
	if err := s.save(ctx, filtered); err != nil {
		s.logger.Error().Err(err).Str("id", id).Msg("history: error removing from history")
	}
}

// Clear empties the history.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.medium.Delete(ctx, s.key); err != nil {
		s.logger.Error().Err(err).Msg("history: error clearing history")
	}
}

func (s *Store) load(ctx context.Context) []Entry {
	data, err := s.medium.Load(ctx, s.key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.logger.Error().Err(err).Msg("history: error reading history")
		}
		return []Entry{}
	}
	entries, skipped, err := decodeEntries(data)
	if err != nil {
		s.logger.Warn().Err(err).Msg("history: persisted value is not a list, ignoring it")
		return []Entry{}
	}
	for _, sk := range skipped {
		s.logger.Warn().Err(sk.Reason).Int("index", sk.Index).Msg("history: skipping malformed entry")
	}
	if len(entries) > s.limit {
		entries = entries[:s.limit]
	}
	return entries
}

func (s *Store) save(ctx context.Context, entries []Entry) error {
	data, err := encodeEntries(entries)
	if err != nil {
		return err
	}
	return s.medium.Save(ctx, s.key, data)
}
