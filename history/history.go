// Package history keeps recent transcripts in a local SQLite database.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

type Entry struct {
	ID        string
	Session   string
	Binding   string
	Text      string
	Audio     time.Duration
	Took      time.Duration
	CreatedAt time.Time
}

type Store struct {
	db    *sql.DB
	limit int
}

// DefaultPath returns the database location under the user config dir.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "uttr", "history.sqlite"), nil
}

const schema = `
CREATE TABLE IF NOT EXISTS transcripts (
	id        TEXT PRIMARY KEY,
	session   TEXT NOT NULL,
	binding   TEXT NOT NULL,
	text      TEXT NOT NULL,
	audio_ms  INTEGER NOT NULL,
	took_ms   INTEGER NOT NULL,
	createdAt REAL NOT NULL
);
CREATE INDEX IF NOT EXISTS transcripts_created ON transcripts(createdAt);
`

// Open opens or creates the database at path, keeping at most limit
// entries. ":memory:" gives a private in-memory store.
func Open(path string, limit int) (*Store, error) {
	dsn := path
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create history dir: %w", err)
		}
		dsn = fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(2000)", path)
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}
	// An in-memory database exists per connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{db: db, limit: limit}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Save stores e and trims the oldest entries beyond the limit. ID and
// CreatedAt are filled in when empty.
func (s *Store) Save(ctx context.Context, e Entry) (Entry, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO transcripts (id, session, binding, text, audio_ms, took_ms, createdAt)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, e.ID, e.Session, e.Binding, e.Text, e.Audio.Milliseconds(), e.Took.Milliseconds(), unixFromTime(e.CreatedAt))
	if err != nil {
		return e, fmt.Errorf("insert transcript: %w", err)
	}

	if s.limit > 0 {
		_, err = s.db.ExecContext(ctx, `
			DELETE FROM transcripts WHERE id NOT IN (
				SELECT id FROM transcripts ORDER BY createdAt DESC LIMIT ?
			)
		`, s.limit)
		if err != nil {
			return e, fmt.Errorf("trim history: %w", err)
		}
	}
	return e, nil
}

// Recent returns up to n entries, newest first.
func (s *Store) Recent(ctx context.Context, n int) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, session, binding, text, audio_ms, took_ms, createdAt
		FROM transcripts
		ORDER BY createdAt DESC
		LIMIT ?
	`, n)
	if err != nil {
		return nil, fmt.Errorf("query transcripts: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Last returns the newest entry. ok is false when the history is empty.
func (s *Store) Last(ctx context.Context) (e Entry, ok bool, err error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, session, binding, text, audio_ms, took_ms, createdAt
		FROM transcripts
		ORDER BY createdAt DESC
		LIMIT 1
	`)
	e, err = scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, err
	}
	return e, true, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(r scanner) (Entry, error) {
	var e Entry
	var audioMs, tookMs int64
	var createdAt float64
	if err := r.Scan(&e.ID, &e.Session, &e.Binding, &e.Text, &audioMs, &tookMs, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return e, err
		}
		return e, fmt.Errorf("scan transcript: %w", err)
	}
	e.Audio = time.Duration(audioMs) * time.Millisecond
	e.Took = time.Duration(tookMs) * time.Millisecond
	e.CreatedAt = timeFromUnix(createdAt)
	return e, nil
}

func unixFromTime(t time.Time) float64 {
	return float64(t.UnixNano()) / 1e9
}

func timeFromUnix(f float64) time.Time {
	sec := int64(f)
	nsec := int64((f - float64(sec)) * 1e9)
	return time.Unix(sec, nsec)
}
