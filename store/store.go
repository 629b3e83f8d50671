// Package store is a content-addressed cache of compiled images backed by
// SQLite. Host applications use it to keep images between runs so a script
// is only recompiled when its source changes: the store key is the
// SHA-256 of the image bytes, and names are advisory labels on top.
package store

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/chazu/squib/buffer"
)

var (
	// ErrImageNotFound indicates no stored image matches the given key.
	ErrImageNotFound = errors.New("image not found")

	// ErrEmptyImage indicates an attempt to store a buffer with no data.
	ErrEmptyImage = errors.New("cannot store an empty image")
)

// Store holds compiled images in a single SQLite database file.
type Store struct {
	db *sql.DB
	mu sync.Mutex // serializes writers; readers go straight to the db
}

// Entry describes one stored image.
type Entry struct {
	Hash      string
	Name      string
	Size      int
	CreatedAt time.Time
}

// Open opens or creates the image store at the given database path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening image store: %w", err)
	}

	// Busy timeout covers concurrent access from other processes.
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS images (
		hash TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		size INTEGER NOT NULL,
		data BLOB NOT NULL,
		created_at INTEGER NOT NULL
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating images table: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// HashOf returns the store key for image bytes: lowercase-hex SHA-256.
func HashOf(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// Put stores the buffer's image under the given name and returns its
// hash. Storing identical bytes twice is idempotent apart from the name
// and timestamp, which are replaced.
func (s *Store) Put(name string, buf *buffer.Buffer) (string, error) {
	if buf.Size() == 0 {
		return "", ErrEmptyImage
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	hash := HashOf(buf.Data())
	_, err := s.db.Exec(
		"INSERT OR REPLACE INTO images (hash, name, size, data, created_at) VALUES (?, ?, ?, ?, ?)",
		hash, name, buf.Size(), buf.Data(), time.Now().Unix(),
	)
	if err != nil {
		return "", fmt.Errorf("storing image %q: %w", name, err)
	}
	return hash, nil
}

// Get returns a fresh buffer holding the image with the given hash, read
// cursor at the start.
func (s *Store) Get(hash string) (*buffer.Buffer, error) {
	var data []byte
	err := s.db.QueryRow("SELECT data FROM images WHERE hash = ?", hash).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrImageNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading image %s: %w", hash, err)
	}
	return buffer.NewFromBytes(data), nil
}

// GetByName returns the newest image stored under the given name, along
// with its hash.
func (s *Store) GetByName(name string) (*buffer.Buffer, string, error) {
	var (
		hash string
		data []byte
	)
	err := s.db.QueryRow(
		"SELECT hash, data FROM images WHERE name = ? ORDER BY created_at DESC, hash LIMIT 1",
		name,
	).Scan(&hash, &data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, "", ErrImageNotFound
	}
	if err != nil {
		return nil, "", fmt.Errorf("loading image %q: %w", name, err)
	}
	return buffer.NewFromBytes(data), hash, nil
}

// Has reports whether an image with the given hash is stored.
func (s *Store) Has(hash string) (bool, error) {
	var one int
	err := s.db.QueryRow("SELECT 1 FROM images WHERE hash = ?", hash).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("probing image %s: %w", hash, err)
	}
	return true, nil
}

// List returns all stored images, newest first.
func (s *Store) List() ([]Entry, error) {
	rows, err := s.db.Query(
		"SELECT hash, name, size, created_at FROM images ORDER BY created_at DESC, hash",
	)
	if err != nil {
		return nil, fmt.Errorf("listing images: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e       Entry
			created int64
		)
		if err := rows.Scan(&e.Hash, &e.Name, &e.Size, &created); err != nil {
			return nil, fmt.Errorf("scanning image row: %w", err)
		}
		e.CreatedAt = time.Unix(created, 0)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing images: %w", err)
	}
	return entries, nil
}

// Delete removes the image with the given hash. Deleting an unknown hash
// is ErrImageNotFound.
func (s *Store) Delete(hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec("DELETE FROM images WHERE hash = ?", hash)
	if err != nil {
		return fmt.Errorf("deleting image %s: %w", hash, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting image %s: %w", hash, err)
	}
	if n == 0 {
		return ErrImageNotFound
	}
	return nil
}
