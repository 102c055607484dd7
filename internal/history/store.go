package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"

	"github.com/aakanksha-singh-hub/QueryBot/internal/domain"
)

// Store persists conversation transcripts to a local SQLite file so past
// sessions can be reopened read-only. It implements session.Observer.
type Store struct {
	db *sql.DB
}

// Entry is a stored session summary for the history list.
type Entry struct {
	ID        uuid.UUID
	Title     string
	Domain    string
	UpdatedAt time.Time
	Messages  int
}

// Open opens (or creates) the history database at path and migrates the
// schema.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("history database path is required")
	}

	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite only supports one writer
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping history database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s.db != nil {
		err := s.db.Close()
		s.db = nil
		return err
	}
	return nil
}

func (s *Store) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS sessions (
			id         TEXT PRIMARY KEY,
			title      TEXT NOT NULL DEFAULT '',
			domain     TEXT NOT NULL DEFAULT '',
			updated_at TEXT NOT NULL
		);
		CREATE TABLE IF NOT EXISTS messages (
			session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
			seq        INTEGER NOT NULL,
			kind       TEXT NOT NULL,
			body       TEXT NOT NULL,
			created_at TEXT NOT NULL,
			PRIMARY KEY (session_id, seq)
		);
	`)
	if err != nil {
		return fmt.Errorf("failed to migrate history schema: %w", err)
	}
	return nil
}

// MessageAppended records one transcript message. Failures are logged, not
// surfaced: history persistence must never break the conversation.
func (s *Store) MessageAppended(sessionID uuid.UUID, seq int, msg domain.Message) {
	body, err := json.Marshal(msg)
	if err != nil {
		log.Error().Err(err).Msg("failed to encode history message")
		return
	}

	_, err = s.db.Exec(`
		INSERT OR REPLACE INTO messages (session_id, seq, kind, body, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, sessionID.String(), seq, string(msg.Kind), string(body), msg.CreatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		log.Error().Err(err).Str("session_id", sessionID.String()).Msg("failed to persist history message")
		return
	}

	_, err = s.db.Exec(`
		UPDATE sessions SET updated_at = ? WHERE id = ?
	`, time.Now().UTC().Format(time.RFC3339Nano), sessionID.String())
	if err != nil {
		log.Error().Err(err).Msg("failed to touch history session")
	}
}

// SessionReset registers a fresh session row. The active domain may be nil
// when the session starts without one.
func (s *Store) SessionReset(sessionID uuid.UUID, active *domain.Domain) {
	domainID := ""
	if active != nil {
		domainID = active.ID
	}

	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO sessions (id, title, domain, updated_at)
		VALUES (?, '', ?, ?)
	`, sessionID.String(), domainID, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		log.Error().Err(err).Str("session_id", sessionID.String()).Msg("failed to register history session")
	}
}

// SetTitle stores the session title derived from its first question.
func (s *Store) SetTitle(sessionID uuid.UUID, title string) {
	_, err := s.db.Exec(`UPDATE sessions SET title = ? WHERE id = ?`, title, sessionID.String())
	if err != nil {
		log.Error().Err(err).Msg("failed to store session title")
	}
}

// List returns stored sessions, most recently updated first.
func (s *Store) List(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT s.id, s.title, s.domain, s.updated_at,
		       (SELECT COUNT(*) FROM messages m WHERE m.session_id = s.id)
		FROM sessions s
		ORDER BY s.updated_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var id, updatedAt string
		if err := rows.Scan(&id, &e.Title, &e.Domain, &updatedAt, &e.Messages); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		e.ID, err = uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("corrupt session id %q: %w", id, err)
		}
		e.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedAt)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return entries, nil
}

// Load returns a stored session's transcript in append order.
func (s *Store) Load(ctx context.Context, sessionID uuid.UUID) ([]domain.Message, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT body FROM messages WHERE session_id = ? ORDER BY seq
	`, sessionID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	defer rows.Close()

	var messages []domain.Message
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		var msg domain.Message
		if err := json.Unmarshal([]byte(body), &msg); err != nil {
			return nil, fmt.Errorf("corrupt stored message: %w", err)
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return messages, nil
}

// Delete removes a stored session and its messages.
func (s *Store) Delete(ctx context.Context, sessionID uuid.UUID) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM messages WHERE session_id = ?`, sessionID.String()); err != nil {
		return fmt.Errorf("failed to delete session messages: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, sessionID.String()); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
