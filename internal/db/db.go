package db

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/rs/zerolog"
	"go.uber.org/multierr"
	_ "modernc.org/sqlite"
)

// ErrLocked is returned by Open when another process holds the database.
var ErrLocked = errors.New("cellar database is in use by another process")

const schema = `
CREATE TABLE IF NOT EXISTS kv (
    key        TEXT PRIMARY KEY,
    value      TEXT NOT NULL,
    updated_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ','now'))
);
`

// Store is the key-value persistence for both collections.
type Store struct {
	db   *sql.DB
	lock *flock.Flock
	path string
	log  zerolog.Logger
	now  func() time.Time
}

// Option customizes a Store.
type Option func(*Store)

// WithLogger sets the logger for decode warnings.
func WithLogger(log zerolog.Logger) Option {
	return func(s *Store) {
		s.log = log
	}
}

// WithClock overrides the clock used for updated_at stamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// Open opens or creates the SQLite database at dbPath and initializes the schema.
// A sibling "<dbPath>.lock" file keeps a second process from opening it.
func Open(dbPath string, opts ...Option) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	lock := flock.New(dbPath + ".lock")
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire database lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLocked, dbPath)
	}

	dsn := "file:" + dbPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, multierr.Append(fmt.Errorf("failed to open database: %w", err), lock.Unlock())
	}

	if err := db.Ping(); err != nil {
		return nil, multierr.Combine(fmt.Errorf("failed to ping database: %w", err), db.Close(), lock.Unlock())
	}

	if _, err := db.Exec(schema); err != nil {
		return nil, multierr.Combine(fmt.Errorf("failed to initialize schema: %w", err), db.Close(), lock.Unlock())
	}

	s := &Store{
		db:   db,
		lock: lock,
		path: dbPath,
		log:  zerolog.Nop(),
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Close closes the database and releases the lock.
func (s *Store) Close() error {
	var err error
	if s.db != nil {
		err = multierr.Append(err, s.db.Close())
	}
	if s.lock != nil {
		err = multierr.Append(err, s.lock.Unlock())
	}
	return err
}
