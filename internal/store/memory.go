package store

import (
	"sort"
	"sync"
	"time"
)

type memoryFile struct {
	content   string
	updatedAt time.Time
}

// MemoryStore is a concurrency-safe map-backed FileStore.
type MemoryStore struct {
	mu    sync.RWMutex
	files map[string]memoryFile
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		files: make(map[string]memoryFile),
	}
}

// Write creates or replaces the named file.
func (s *MemoryStore) Write(name, content string) error {
	if name == "" {
		return ErrEmptyName
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.files[name] = memoryFile{content: content, updatedAt: time.Now().UTC()}
	return nil
}

func (s *MemoryStore) Read(name string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	f, ok := s.files[name]
	if !ok {
		return "", ErrNotFound
	}
	return f.content, nil
}

// List returns every file ordered by name.
func (s *MemoryStore) List() ([]File, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]File, 0, len(s.files))
	for name, f := range s.files {
		out = append(out, File{Name: name, Size: len(f.content), UpdatedAt: f.updatedAt})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *MemoryStore) Delete(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.files[name]; !ok {
		return ErrNotFound
	}
	delete(s.files, name)
	return nil
}

func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files = make(map[string]memoryFile)
	return nil
}
