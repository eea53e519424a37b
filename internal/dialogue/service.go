package dialogue

import (
	"context"
	"time"
)

// Service describes how the dialogue engine behaves.
type Service interface {
	StartSession(ctx context.Context, req StartRequest) (*Response, error)
	ProcessTurn(ctx context.Context, req TurnRequest) (*Response, error)
	ResetSession(ctx context.Context, sessionID string) error
	EndSession(ctx context.Context, sessionID string) error
}

// Outcome discriminates the per-turn response.
type Outcome string

const (
	OutcomeRecommend Outcome = "recommend"
	OutcomeRequery   Outcome = "requery"
	OutcomeInvalid   Outcome = "invalid"
	OutcomeConsult   Outcome = "consult"
)

// StartRequest opens a new shopping session.
type StartRequest struct {
	SessionID string            `json:"session_id,omitempty"`
	Intent    IntentTag         `json:"intent,omitempty"`
	Source    string            `json:"source,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// TurnRequest is one shopper message within a session.
type TurnRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

// RecommendedItem is one product surfaced to the shopper.
type RecommendedItem struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Brand      string `json:"brand,omitempty"`
	PriceCents int    `json:"price_cents"`
	ProductURL string `json:"product_url,omitempty"`
	Score      int    `json:"score"`
}

// Response is the discriminated per-turn DTO returned to the API layer.
// Message carries the question (requery), the explanation (recommend),
// or the canonical failure text (invalid/consult).
type Response struct {
	SessionID   string            `json:"session_id"`
	Outcome     Outcome           `json:"outcome"`
	Message     string            `json:"message"`
	Items       []RecommendedItem `json:"items,omitempty"`
	Phase       Phase             `json:"phase"`
	AllowSearch bool              `json:"allow_search"`
	Reason      string            `json:"reason,omitempty"`
	Timestamp   time.Time         `json:"timestamp"`
}
