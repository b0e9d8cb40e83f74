package telegram

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"honeyeat/internal/database"
	"honeyeat/internal/recommend"
)

// Session types.
const (
	SessionQuestionnaire = "questionnaire"
)

// Questionnaire steps, in the order they are asked.
const (
	StepSlot     = "slot"
	StepMood     = "mood"
	StepAppetite = "appetite"
	StepFlavor   = "flavor"
	StepTime     = "time"
	StepExclude  = "exclude"
	StepDone     = "done"
)

// Session represents an active user session (e.g., a questionnaire in progress)
type Session struct {
	ID          int64
	UserID      string
	SessionType string
	State       string
	ContextData string
	ExpiresAt   time.Time
	CreatedAt   time.Time
}

// SessionContextData holds structured data stored in the context_data JSON field
type SessionContextData struct {
	Mode    string            `json:"mode"`
	Answers recommend.Answers `json:"answers"`
}

// SessionRepository provides access to session persistence operations
type SessionRepository struct {
	db *sql.DB
}

// NewSessionRepository creates a new SessionRepository instance
func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create replaces any session of the same type for the user and returns the
// new session's ID.
func (sr *SessionRepository) Create(ctx context.Context, userID, sessionType, state string, contextData SessionContextData, ttl time.Duration) (int64, error) {
	jsonData, err := json.Marshal(contextData)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal session context: %w", err)
	}

	now := time.Now().UTC()
	if _, err := sr.db.ExecContext(ctx,
		`DELETE FROM bot_sessions WHERE user_id = ? AND session_type = ?`, userID, sessionType,
	); err != nil {
		return 0, fmt.Errorf("failed to drop previous session: %w", err)
	}
	res, err := sr.db.ExecContext(ctx,
		`INSERT INTO bot_sessions (user_id, session_type, state, context_data, expires_at, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		userID, sessionType, state, string(jsonData),
		now.Add(ttl).Format(database.TimestampLayout), now.Format(database.TimestampLayout),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to create session: %w", err)
	}
	return res.LastInsertId()
}

// GetActive retrieves the most recent active session for a user (non-expired)
func (sr *SessionRepository) GetActive(ctx context.Context, userID, sessionType string, now time.Time) (*Session, error) {
	var (
		s         Session
		expiresAt string
		createdAt string
	)
	err := sr.db.QueryRowContext(ctx,
		`SELECT id, user_id, session_type, state, context_data, expires_at, created_at
		 FROM bot_sessions WHERE user_id = ? AND session_type = ? AND expires_at > ?
		 ORDER BY id DESC LIMIT 1`,
		userID, sessionType, now.UTC().Format(database.TimestampLayout),
	).Scan(&s.ID, &s.UserID, &s.SessionType, &s.State, &s.ContextData, &expiresAt, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get active session: %w", err)
	}
	s.ExpiresAt, _ = time.Parse(database.TimestampLayout, expiresAt)
	s.CreatedAt, _ = time.Parse(database.TimestampLayout, createdAt)
	return &s, nil
}

// GetContextData unmarshals the context_data JSON field
func (s *Session) GetContextData() (SessionContextData, error) {
	var data SessionContextData
	err := json.Unmarshal([]byte(s.ContextData), &data)
	return data, err
}

// Update updates the state and context_data for a session
func (sr *SessionRepository) Update(ctx context.Context, sessionID int64, state string, contextData SessionContextData) error {
	jsonData, err := json.Marshal(contextData)
	if err != nil {
		return fmt.Errorf("failed to marshal session context: %w", err)
	}
	if _, err := sr.db.ExecContext(ctx,
		`UPDATE bot_sessions SET state = ?, context_data = ? WHERE id = ?`, state, string(jsonData), sessionID,
	); err != nil {
		return fmt.Errorf("failed to update session %d: %w", sessionID, err)
	}
	return nil
}

// Delete removes a session
func (sr *SessionRepository) Delete(ctx context.Context, sessionID int64) error {
	if _, err := sr.db.ExecContext(ctx, `DELETE FROM bot_sessions WHERE id = ?`, sessionID); err != nil {
		return fmt.Errorf("failed to delete session %d: %w", sessionID, err)
	}
	return nil
}

// CleanupExpired removes all expired sessions and returns how many were removed.
func (sr *SessionRepository) CleanupExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := sr.db.ExecContext(ctx,
		`DELETE FROM bot_sessions WHERE expires_at <= ?`, now.UTC().Format(database.TimestampLayout),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to clean up sessions: %w", err)
	}
	return res.RowsAffected()
}
