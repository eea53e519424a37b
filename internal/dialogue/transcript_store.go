package dialogue

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TranscriptStore persists session turns to PostgreSQL for long-term history.
type TranscriptStore struct {
	db *sql.DB
}

// NewTranscriptStore creates a new transcript store.
func NewTranscriptStore(db *sql.DB) *TranscriptStore {
	if db == nil {
		return nil
	}
	return &TranscriptStore{db: db}
}

// SessionRecord represents a dialogue session in the database.
type SessionRecord struct {
	ID            uuid.UUID
	SessionID     string
	Status        string
	TurnCount     int
	UserTurnCount int
	AITurnCount   int
	StartedAt     time.Time
	LastTurnAt    *time.Time
	EndedAt       *time.Time
}

// TurnRecord represents a single turn in the database.
type TurnRecord struct {
	ID        uuid.UUID
	SessionID string
	Role      string
	Content   string
	CreatedAt time.Time
}

// EnsureSession creates or updates a session record. Returns the session UUID.
func (s *TranscriptStore) EnsureSession(ctx context.Context, sessionID string) (uuid.UUID, error) {
	if s == nil || s.db == nil {
		return uuid.Nil, nil
	}
	if strings.TrimSpace(sessionID) == "" {
		return uuid.Nil, fmt.Errorf("dialogue: session id is required")
	}

	var existingID uuid.UUID
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM sessions WHERE session_id = $1`,
		sessionID,
	).Scan(&existingID)

	if err == nil {
		if _, err := s.db.ExecContext(ctx,
			`UPDATE sessions SET updated_at = $1 WHERE id = $2`,
			time.Now(), existingID,
		); err != nil {
			return uuid.Nil, fmt.Errorf("dialogue: failed to touch session: %w", err)
		}
		return existingID, nil
	}

	if err != sql.ErrNoRows {
		return uuid.Nil, fmt.Errorf("dialogue: failed to check existing session: %w", err)
	}

	newID := uuid.New()
	now := time.Now()

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO sessions (
			id, session_id, status,
			turn_count, user_turn_count, ai_turn_count,
			started_at, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, newID, sessionID, "active", 0, 0, 0, now, now, now)

	if err != nil {
		// Another process may have created it concurrently.
		if strings.Contains(err.Error(), "duplicate key") {
			return s.EnsureSession(ctx, sessionID)
		}
		return uuid.Nil, fmt.Errorf("dialogue: failed to create session: %w", err)
	}

	return newID, nil
}

// AppendTurn persists a turn and updates session counters.
func (s *TranscriptStore) AppendTurn(ctx context.Context, sessionID, role, content string) error {
	if s == nil || s.db == nil {
		return nil
	}

	if _, err := s.EnsureSession(ctx, sessionID); err != nil {
		return err
	}

	now := time.Now()
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO session_turns (
			id, session_id, role, content, created_at
		) VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO NOTHING
	`, uuid.New(), sessionID, role, content, now)

	if err != nil {
		return fmt.Errorf("dialogue: failed to insert turn: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("dialogue: failed to read insert result: %w", err)
	}
	if rowsAffected == 0 {
		return nil
	}

	counterColumn := "user_turn_count"
	if role == ChatRoleAssistant {
		counterColumn = "ai_turn_count"
	}

	_, err = s.db.ExecContext(ctx, fmt.Sprintf(`
		UPDATE sessions SET
			turn_count = turn_count + 1,
			%s = %s + 1,
			last_turn_at = $1,
			updated_at = $1
		WHERE session_id = $2
	`, counterColumn, counterColumn), now, sessionID)

	if err != nil {
		return fmt.Errorf("dialogue: failed to update counters: %w", err)
	}

	return nil
}

// EndSession marks a session as ended.
func (s *TranscriptStore) EndSession(ctx context.Context, sessionID string) error {
	if s == nil || s.db == nil {
		return nil
	}

	now := time.Now()
	_, err := s.db.ExecContext(ctx, `
		UPDATE sessions SET
			status = 'ended',
			ended_at = $1,
			updated_at = $1
		WHERE session_id = $2 AND ended_at IS NULL
	`, now, sessionID)

	return err
}

// GetSession retrieves a session by its ID.
func (s *TranscriptStore) GetSession(ctx context.Context, sessionID string) (*SessionRecord, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}

	var rec SessionRecord
	var lastTurnAt, endedAt sql.NullTime

	err := s.db.QueryRowContext(ctx, `
		SELECT id, session_id, status,
			   turn_count, user_turn_count, ai_turn_count,
			   started_at, last_turn_at, ended_at
		FROM sessions
		WHERE session_id = $1
	`, sessionID).Scan(
		&rec.ID, &rec.SessionID, &rec.Status,
		&rec.TurnCount, &rec.UserTurnCount, &rec.AITurnCount,
		&rec.StartedAt, &lastTurnAt, &endedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("dialogue: failed to get session: %w", err)
	}

	if lastTurnAt.Valid {
		rec.LastTurnAt = &lastTurnAt.Time
	}
	if endedAt.Valid {
		rec.EndedAt = &endedAt.Time
	}

	return &rec, nil
}

// GetTurns retrieves turns for a session in chronological order.
func (s *TranscriptStore) GetTurns(ctx context.Context, sessionID string, limit int) ([]TurnRecord, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}

	query := `
		SELECT id, session_id, role, content, created_at
		FROM session_turns
		WHERE session_id = $1
		ORDER BY created_at ASC
	`
	args := []any{sessionID}

	if limit > 0 {
		query += " LIMIT $2"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("dialogue: failed to get turns: %w", err)
	}
	defer rows.Close()

	var turns []TurnRecord
	for rows.Next() {
		var t TurnRecord
		err := rows.Scan(&t.ID, &t.SessionID, &t.Role, &t.Content, &t.CreatedAt)
		if err != nil {
			continue
		}
		turns = append(turns, t)
	}

	return turns, nil
}
