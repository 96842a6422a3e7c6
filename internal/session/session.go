package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bobby-s-dev/flight-concierge/internal/models"
	"github.com/bobby-s-dev/flight-concierge/internal/store"
)

// Session is the per-conversation context. It owns the interaction log, the
// chat history and the scratch file table, and is discarded on exit.
type Session struct {
	ID        string
	StartedAt time.Time

	mu      sync.Mutex
	log     []models.InteractionLogEntry
	history string
	files   store.FileStore
	now     func() time.Time
}

func New(files store.FileStore) *Session {
	if files == nil {
		files = store.NewMemoryStore()
	}
	return &Session{
		ID:        uuid.NewString(),
		StartedAt: time.Now(),
		log:       []models.InteractionLogEntry{},
		files:     files,
		now:       time.Now,
	}
}

// Record appends one interaction to the log. Entries are never removed.
func (s *Session) Record(endpoint string, request, response interface{}) models.InteractionLogEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := models.InteractionLogEntry{
		Timestamp: s.now(),
		Endpoint:  endpoint,
		Request:   request,
		Response:  response,
	}
	s.log = append(s.log, entry)
	return entry
}

// Log returns a copy of the interaction log in insertion order.
func (s *Session) Log() []models.InteractionLogEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.InteractionLogEntry, len(s.log))
	copy(out, s.log)
	return out
}

func (s *Session) History() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history
}

func (s *Session) AppendExchange(user, assistant string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history += "\nUser: " + user + "\nAssistant: " + assistant
}

func (s *Session) Files() store.FileStore {
	return s.files
}

func (s *Session) Close() error {
	return s.files.Close()
}
