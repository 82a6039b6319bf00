// Package cache remembers which files are already formatted so repeated
// runs can skip them, and memoizes short-lived lookups for the server.
package cache

import (
	"database/sql"
	"encoding/hex"
	"os"
	"path/filepath"
	"time"

	"github.com/zeebo/blake3"

	"github.com/FocuswithJustin/ohfmt/core/errors"
	"github.com/FocuswithJustin/ohfmt/core/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS formatted (
	path       TEXT PRIMARY KEY,
	digest     TEXT NOT NULL,
	updated_at INTEGER NOT NULL
)`

// Store records the digest of each file's formatted content.
type Store struct {
	db   *sql.DB
	path string
}

// DefaultPath is the cache database under the user cache directory.
func DefaultPath() (string, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", errors.NewIO("locate cache directory", "", err)
	}
	return filepath.Join(dir, "ohfmt", "cache.db"), nil
}

// Open opens or creates the cache database at path.
func Open(path string) (*Store, error) {
	db, err := sqlite.OpenFile(path)
	if err != nil {
		return nil, errors.NewIO("open cache", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, errors.NewIO("initialize cache", path, err)
	}
	return &Store{db: db, path: path}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file.
func (s *Store) Path() string {
	return s.path
}

// Digest hashes content together with the options fingerprint it was
// formatted under.
func Digest(content []byte, fingerprint string) string {
	h := blake3.New()
	h.Write([]byte(fingerprint))
	h.Write([]byte{0})
	h.Write(content)
	return hex.EncodeToString(h.Sum(nil))
}

// Fresh reports whether path was last stored with digest.
func (s *Store) Fresh(path, digest string) (bool, error) {
	var stored string
	err := s.db.QueryRow(`SELECT digest FROM formatted WHERE path = ?`, key(path)).Scan(&stored)
	switch {
	case err == sql.ErrNoRows:
		return false, nil
	case err != nil:
		return false, errors.NewIO("query cache", path, err)
	}
	return stored == digest, nil
}

// Put records digest as the formatted state of path.
func (s *Store) Put(path, digest string) error {
	_, err := s.db.Exec(`
		INSERT INTO formatted (path, digest, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET digest = excluded.digest, updated_at = excluded.updated_at`,
		key(path), digest, time.Now().Unix())
	if err != nil {
		return errors.NewIO("update cache", path, err)
	}
	return nil
}

// Clear removes every entry and returns how many there were.
func (s *Store) Clear() (int64, error) {
	res, err := s.db.Exec(`DELETE FROM formatted`)
	if err != nil {
		return 0, errors.NewIO("clear cache", s.path, err)
	}
	return res.RowsAffected()
}

// Len returns the number of cached files.
func (s *Store) Len() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM formatted`).Scan(&n); err != nil {
		return 0, errors.NewIO("query cache", s.path, err)
	}
	return n, nil
}

func key(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}
