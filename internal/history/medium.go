package history

import (
	"context"
	"errors"
	"sync"

	"studio/internal/domain"
	"studio/internal/storage"
)

// ErrNotFound is returned by a Medium for keys that hold no value.
var ErrNotFound = domain.ErrNotFound

// Medium is the keyed persistence the store writes whole values to. It is the
// only thing that differs between backends.
type Medium interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// MemoryMedium keeps values in process memory.
type MemoryMedium struct {
	mu     sync.Mutex
	values map[string][]byte
}

// NewMemoryMedium returns an empty in-memory medium.
func NewMemoryMedium() *MemoryMedium {
	return &MemoryMedium{values: make(map[string][]byte)}
}

func (m *MemoryMedium) Load(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (m *MemoryMedium) Save(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = append([]byte(nil), value...)
	return nil
}

func (m *MemoryMedium) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

// FileMedium stores each key as a file below a root directory.
type FileMedium struct {
	files *storage.FileStore
}

// NewFileMedium roots a medium at dir, creating it when missing.
func NewFileMedium(dir string) (*FileMedium, error) {
	files, err := storage.NewFileStore(dir)
	if err != nil {
		return nil, err
	}
	return &FileMedium{files: files}, nil
}

func (m *FileMedium) Load(ctx context.Context, key string) ([]byte, error) {
	data, err := m.files.Read(ctx, key+".json")
	if errors.Is(err, storage.ErrNotExist) {
		return nil, ErrNotFound
	}
	return data, err
}

func (m *FileMedium) Save(ctx context.Context, key string, value []byte) error {
	_, err := m.files.Write(ctx, key+".json", value)
	return err
}

func (m *FileMedium) Delete(ctx context.Context, key string) error {
	return m.files.Delete(ctx, key+".json")
}

var (
	_ Medium = (*MemoryMedium)(nil)
	_ Medium = (*FileMedium)(nil)
)
