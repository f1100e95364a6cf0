package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"github.com/alex/affect/internal/affect"
)

const timeLayout = time.RFC3339Nano

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB

	mu      sync.Mutex
	entropy io.Reader
}

// NewSQLiteStore opens or creates a SQLite database at the given path.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &SQLiteStore{
		db:      db,
		entropy: ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0),
	}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) newID(at time.Time) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, err := ulid.New(ulid.Timestamp(at), s.entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS temperament (
		id         INTEGER PRIMARY KEY CHECK (id = 1),
		valence    REAL NOT NULL,
		arousal    REAL NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS events (
		key        TEXT PRIMARY KEY,
		keyword    TEXT NOT NULL,
		valence    REAL NOT NULL,
		arousal    REAL NOT NULL,
		touch      REAL NOT NULL DEFAULT 0,
		rest       REAL NOT NULL DEFAULT 0,
		social     REAL NOT NULL DEFAULT 0,
		hunger     REAL NOT NULL DEFAULT 0,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS responses (
		id         TEXT PRIMARY KEY,
		trigger    TEXT NOT NULL,
		display    TEXT NOT NULL,
		valence    REAL NOT NULL,
		arousal    REAL NOT NULL,
		mood       TEXT NOT NULL,
		created_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_responses_trigger ON responses(trigger);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStore) SaveTemperament(ctx context.Context, t affect.Vector) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO temperament (id, valence, arousal, updated_at) VALUES (1, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET valence = excluded.valence, arousal = excluded.arousal, updated_at = excluded.updated_at`,
		t.Valence, t.Arousal, time.Now().UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("save temperament: %w", err)
	}
	return nil
}

func (s *SQLiteStore) LoadTemperament(ctx context.Context) (affect.Vector, bool, error) {
	var t affect.Vector
	err := s.db.QueryRowContext(ctx, `SELECT valence, arousal FROM temperament WHERE id = 1`).Scan(&t.Valence, &t.Arousal)
	if errors.Is(err, sql.ErrNoRows) {
		return affect.Vector{}, false, nil
	}
	if err != nil {
		return affect.Vector{}, false, fmt.Errorf("load temperament: %w", err)
	}
	return t, true, nil
}

func (s *SQLiteStore) SaveEvent(ctx context.Context, p affect.EventProfile) error {
	key := eventKey(p.Keyword)
	if key == "" {
		return fmt.Errorf("save event: empty keyword")
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO events (key, keyword, valence, arousal, touch, rest, social, hunger, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET
			keyword = excluded.keyword, valence = excluded.valence, arousal = excluded.arousal,
			touch = excluded.touch, rest = excluded.rest, social = excluded.social,
			hunger = excluded.hunger, updated_at = excluded.updated_at`,
		key, strings.TrimSpace(p.Keyword), p.Valence, p.Arousal, p.Touch, p.Rest, p.Social, p.Hunger,
		time.Now().UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("save event: %w", err)
	}
	return nil
}

func (s *SQLiteStore) DeleteEvent(ctx context.Context, keyword string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM events WHERE key = ?`, eventKey(keyword))
	if err != nil {
		return false, fmt.Errorf("delete event: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *SQLiteStore) ListEvents(ctx context.Context) ([]affect.EventProfile, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT keyword, valence, arousal, touch, rest, social, hunger FROM events ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var out []affect.EventProfile
	for rows.Next() {
		var p affect.EventProfile
		if err := rows.Scan(&p.Keyword, &p.Valence, &p.Arousal, &p.Touch, &p.Rest, &p.Social, &p.Hunger); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) RecordResponse(ctx context.Context, r affect.ResponseResult) (string, error) {
	at := r.At
	if at.IsZero() {
		at = time.Now()
	}
	id, err := s.newID(at)
	if err != nil {
		return "", fmt.Errorf("new id: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO responses (id, trigger, display, valence, arousal, mood, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, r.Trigger, string(r.Display), r.Valence, r.Arousal, string(r.Mood), at.UTC().Format(timeLayout))
	if err != nil {
		return "", fmt.Errorf("insert response: %w", err)
	}
	return id, nil
}

// RecentResponses orders by ID, which sorts by creation time.
func (s *SQLiteStore) RecentResponses(ctx context.Context, limit int) ([]ResponseRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, trigger, display, valence, arousal, mood, created_at
		 FROM responses ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("recent responses: %w", err)
	}
	defer rows.Close()

	var out []ResponseRecord
	for rows.Next() {
		rec, err := scanResponse(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Observe records every response from a runner step and saves the drifted
// temperament so it survives restarts.
func (s *SQLiteStore) Observe(ctx context.Context, results []affect.ResponseResult, snap affect.Snapshot) error {
	if len(results) == 0 {
		return nil
	}
	for _, r := range results {
		if _, err := s.RecordResponse(ctx, r); err != nil {
			return err
		}
	}
	return s.SaveTemperament(ctx, affect.Vector{Valence: snap.Temperament.Valence, Arousal: snap.Temperament.Arousal})
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanResponse(row scanner) (ResponseRecord, error) {
	var rec ResponseRecord
	var display, mood, createdAt string
	err := row.Scan(&rec.ID, &rec.Trigger, &display, &rec.Valence, &rec.Arousal, &mood, &createdAt)
	if err != nil {
		return rec, err
	}
	rec.Display = affect.DisplayEmotion(display)
	rec.Mood = affect.MoodCategory(mood)
	rec.At, err = time.Parse(timeLayout, createdAt)
	if err != nil {
		return rec, fmt.Errorf("parse created_at: %w", err)
	}
	return rec, nil
}

func eventKey(keyword string) string {
	return strings.ToLower(strings.TrimSpace(keyword))
}
