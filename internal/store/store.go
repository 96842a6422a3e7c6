package store

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotFound is returned when no file with the given name exists.
	ErrNotFound  = errors.New("file not found")
	ErrEmptyName = errors.New("file name cannot be empty")
)

type File struct {
	Name      string    `json:"name"`
	Size      int       `json:"size"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FileStore is the session's scratch file table. Contents live as long as
// the process.
type FileStore interface {
	Write(name, content string) error
	Read(name string) (string, error)
	List() ([]File, error)
	Delete(name string) error
	Close() error
}

// New opens the backend named by kind: "memory" or "sqlite".
func New(kind string) (FileStore, error) {
	switch kind {
	case "", "memory":
		return NewMemoryStore(), nil
	case "sqlite":
		return NewSQLiteStore(":memory:")
	default:
		return nil, fmt.Errorf("unknown file store %q", kind)
	}
}
