package database

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/vincentbai/browsetrace-recorder/internal/models"
	_ "modernc.org/sqlite" // CGO-free SQLite
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionStopped  = errors.New("session is not recording")
	ErrInvalidEvent    = errors.New("invalid event")
)

type Database struct {
	db              *sql.DB
	validEventKinds map[models.EventKind]bool
}

func NewDatabase(databasePath string) (*Database, error) {
	// WAL + busy timeout to avoid "database is locked"
	db, err := sql.Open("sqlite", databasePath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := createTables(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Database{
		db: db,
		validEventKinds: map[models.EventKind]bool{
			models.KindClick: true,
			models.KindInput: true,
		},
	}, nil
}

func createTables(db *sql.DB) error {
	_, err := db.Exec(`
	CREATE TABLE IF NOT EXISTS sessions(
	  id         TEXT    PRIMARY KEY,
	  start_url  TEXT    NOT NULL,
	  recording  INTEGER NOT NULL DEFAULT 1,
	  started_at INTEGER NOT NULL,
	  ended_at   INTEGER
	);
	CREATE TABLE IF NOT EXISTS events(
	  id         INTEGER PRIMARY KEY,
	  session_id TEXT    NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
	  kind       TEXT    NOT NULL CHECK (kind IN ('click','input')),
	  selector   TEXT    NOT NULL,
	  value      TEXT    NOT NULL DEFAULT '',
	  text       TEXT    NOT NULL DEFAULT '',
	  ts         INTEGER NOT NULL,
	  url        TEXT    NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_events_session ON events(session_id, id);
	CREATE INDEX IF NOT EXISTS idx_sessions_started ON sessions(started_at);
	`)
	if err != nil {
		return fmt.Errorf("failed to create database tables: %w", err)
	}
	return nil
}

func (d *Database) Close() error {
	return d.db.Close()
}

// ValidateEvent rejects records the store cannot keep. An empty selector is
// allowed: normalization skips such events, the store keeps the capture as-is.
func (d *Database) ValidateEvent(event models.RawEvent) error {
	if event.PageURL == "" {
		return fmt.Errorf("URL cannot be empty")
	}
	if event.Kind == "" {
		return fmt.Errorf("kind cannot be empty")
	}
	if !d.validEventKinds[event.Kind] {
		return fmt.Errorf("invalid event kind: %s", event.Kind)
	}
	if event.Timestamp <= 0 {
		return fmt.Errorf("timestamp must be positive")
	}
	return nil
}

func (d *Database) CreateSession(startURL string, startedAt int64) (models.Session, error) {
	if startURL == "" {
		return models.Session{}, fmt.Errorf("start URL cannot be empty")
	}
	session := models.Session{
		ID:        uuid.NewString(),
		StartURL:  startURL,
		Recording: true,
		StartedAt: startedAt,
	}
	_, err := d.db.Exec(`INSERT INTO sessions(id, start_url, recording, started_at) VALUES(?,?,1,?)`,
		session.ID, session.StartURL, session.StartedAt)
	if err != nil {
		return models.Session{}, fmt.Errorf("failed to create session: %w", err)
	}
	return session, nil
}

// GetSession loads a session, with its events in capture order when withEvents is set.
func (d *Database) GetSession(id string, withEvents bool) (models.Session, error) {
	session, err := scanSession(d.db.QueryRow(
		`SELECT id, start_url, recording, started_at, ended_at FROM sessions WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Session{}, ErrSessionNotFound
	}
	if err != nil {
		return models.Session{}, fmt.Errorf("failed to load session: %w", err)
	}
	if !withEvents {
		return session, nil
	}

	rows, err := d.db.Query(
		`SELECT kind, selector, value, text, ts, url FROM events WHERE session_id = ? ORDER BY id`, id)
	if err != nil {
		return models.Session{}, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	session.Events = []models.RawEvent{}
	for rows.Next() {
		var event models.RawEvent
		if err := rows.Scan(&event.Kind, &event.Selector, &event.Value, &event.Text, &event.Timestamp, &event.PageURL); err != nil {
			return models.Session{}, fmt.Errorf("failed to scan event: %w", err)
		}
		session.Events = append(session.Events, event)
	}
	if err := rows.Err(); err != nil {
		return models.Session{}, fmt.Errorf("failed to read events: %w", err)
	}
	return session, nil
}

// ListSessions returns all sessions, newest first, without their events.
func (d *Database) ListSessions() ([]models.Session, error) {
	rows, err := d.db.Query(
		`SELECT id, start_url, recording, started_at, ended_at FROM sessions ORDER BY started_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	sessions := []models.Session{}
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read sessions: %w", err)
	}
	return sessions, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (models.Session, error) {
	var (
		session   models.Session
		recording int
		endedAt   sql.NullInt64
	)
	if err := row.Scan(&session.ID, &session.StartURL, &recording, &session.StartedAt, &endedAt); err != nil {
		return models.Session{}, err
	}
	session.Recording = recording == 1
	if endedAt.Valid {
		session.EndedAt = &endedAt.Int64
	}
	return session, nil
}

// InsertEvents appends a batch to a recording session. The batch is stored
// atomically: one invalid event rejects all of it.
func (d *Database) InsertEvents(sessionID string, events []models.RawEvent) error {
	transaction, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	var recording int
	err = transaction.QueryRow(`SELECT recording FROM sessions WHERE id = ?`, sessionID).Scan(&recording)
	if errors.Is(err, sql.ErrNoRows) {
		_ = transaction.Rollback()
		return ErrSessionNotFound
	}
	if err != nil {
		_ = transaction.Rollback()
		return fmt.Errorf("failed to load session: %w", err)
	}
	if recording != 1 {
		_ = transaction.Rollback()
		return ErrSessionStopped
	}

	statement, err := transaction.Prepare(`INSERT INTO events(session_id, kind, selector, value, text, ts, url) VALUES(?,?,?,?,?,?,?)`)
	if err != nil {
		_ = transaction.Rollback()
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer statement.Close()

	for _, event := range events {
		if err := d.ValidateEvent(event); err != nil {
			_ = transaction.Rollback()
			return fmt.Errorf("%w: %w", ErrInvalidEvent, err)
		}
		if _, err := statement.Exec(sessionID, string(event.Kind), event.Selector, event.Value, event.Text, event.Timestamp, event.PageURL); err != nil {
			_ = transaction.Rollback()
			return fmt.Errorf("failed to execute statement: %w", err)
		}
	}
	if err := transaction.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// StopSession ends recording. Stopping a stopped session keeps its first end time.
func (d *Database) StopSession(id string, endedAt int64) error {
	result, err := d.db.Exec(
		`UPDATE sessions SET recording = 0, ended_at = COALESCE(ended_at, ?) WHERE id = ?`, endedAt, id)
	if err != nil {
		return fmt.Errorf("failed to stop session: %w", err)
	}
	return requireAffected(result)
}

func (d *Database) DeleteSession(id string) error {
	transaction, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if _, err := transaction.Exec(`DELETE FROM events WHERE session_id = ?`, id); err != nil {
		_ = transaction.Rollback()
		return fmt.Errorf("failed to delete events: %w", err)
	}
	result, err := transaction.Exec(`DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		_ = transaction.Rollback()
		return fmt.Errorf("failed to delete session: %w", err)
	}
	if err := requireAffected(result); err != nil {
		_ = transaction.Rollback()
		return err
	}
	if err := transaction.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func requireAffected(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return ErrSessionNotFound
	}
	return nil
}
