package store

import (
	"database/sql"
	"errors"
	"time"

	_ "modernc.org/sqlite"
)

type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens dsn and creates the files table. With ":memory:" every
// pooled connection would see its own database, so the pool is pinned to one.
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	s := &SQLiteStore{db: db}
	if err := s.Init(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) Init() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS files (
		name TEXT PRIMARY KEY,
		content TEXT NOT NULL,
		updated_at DATETIME NOT NULL
	);`)
	return err
}

func (s *SQLiteStore) Write(name, content string) error {
	if name == "" {
		return ErrEmptyName
	}
	_, err := s.db.Exec(`INSERT INTO files(name,content,updated_at) VALUES(?,?,?)
		ON CONFLICT(name) DO UPDATE SET content=excluded.content, updated_at=excluded.updated_at`,
		name, content, time.Now().UTC())
	return err
}

func (s *SQLiteStore) Read(name string) (string, error) {
	var content string
	err := s.db.QueryRow(`SELECT content FROM files WHERE name=?`, name).Scan(&content)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	return content, err
}

func (s *SQLiteStore) List() ([]File, error) {
	rows, err := s.db.Query(`SELECT name, length(CAST(content AS BLOB)), updated_at FROM files ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []File{}
	for rows.Next() {
		var f File
		if err := rows.Scan(&f.Name, &f.Size, &f.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Delete(name string) error {
	res, err := s.db.Exec(`DELETE FROM files WHERE name=?`, name)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
