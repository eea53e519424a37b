package dialogue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const defaultSessionTTL = 24 * time.Hour

// ErrSessionNotFound signals an unknown or expired session.
var ErrSessionNotFound = errors.New("dialogue: session not found")

// SessionState is everything the engine persists between turns: the
// slot board plus the accumulated conversation context.
type SessionState struct {
	Board   *SlotBoard           `json:"board"`
	Context *ConversationContext `json:"context"`
}

// NewSessionState returns a fresh state for a new session.
func NewSessionState() *SessionState {
	return &SessionState{
		Board:   NewSlotBoard(),
		Context: NewConversationContext(),
	}
}

// SessionStore persists per-session dialogue state in Redis.
type SessionStore struct {
	redis  *redis.Client
	ttl    time.Duration
	tracer trace.Tracer
}

// NewSessionStore creates a session store. A zero TTL uses the default.
func NewSessionStore(client *redis.Client, ttl time.Duration, tracer trace.Tracer) *SessionStore {
	if client == nil {
		panic("dialogue: redis client cannot be nil")
	}
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	if tracer == nil {
		tracer = otel.Tracer("shopguide.internal.dialogue.sessions")
	}
	return &SessionStore{
		redis:  client,
		ttl:    ttl,
		tracer: tracer,
	}
}

// Save persists the state for a session and refreshes its TTL.
func (s *SessionStore) Save(ctx context.Context, sessionID string, state *SessionState) error {
	ctx, span := s.tracer.Start(ctx, "dialogue.save_session")
	defer span.End()

	data, err := json.Marshal(state)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("dialogue: failed to marshal session state: %w", err)
	}
	if err := s.redis.Set(ctx, sessionKey(sessionID), data, s.ttl).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("dialogue: failed to persist session state: %w", err)
	}
	return nil
}

// Load retrieves the state for a session.
func (s *SessionStore) Load(ctx context.Context, sessionID string) (*SessionState, error) {
	ctx, span := s.tracer.Start(ctx, "dialogue.load_session")
	defer span.End()

	data, err := s.redis.Get(ctx, sessionKey(sessionID)).Bytes()
	if err != nil {
		span.RecordError(err)
		if err == redis.Nil {
			return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
		}
		return nil, fmt.Errorf("dialogue: failed to load session state: %w", err)
	}

	var state SessionState
	if err := json.Unmarshal(data, &state); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("dialogue: failed to decode session state: %w", err)
	}
	if state.Board == nil {
		state.Board = NewSlotBoard()
	}
	if state.Context == nil {
		state.Context = NewConversationContext()
	}
	return &state, nil
}

// Delete removes a session's state entirely.
func (s *SessionStore) Delete(ctx context.Context, sessionID string) error {
	ctx, span := s.tracer.Start(ctx, "dialogue.delete_session")
	defer span.End()

	if err := s.redis.Del(ctx, sessionKey(sessionID)).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("dialogue: failed to delete session state: %w", err)
	}
	return nil
}

func sessionKey(id string) string {
	return fmt.Sprintf("session:%s", id)
}
