package dialogue

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/shopguide/shopguide-ai-platform/pkg/logging"
)

// Handler wires HTTP requests to the dialogue service.
type Handler struct {
	service     Service
	transcripts *TranscriptStore
	logger      *logging.Logger
}

// HandlerOption configures optional handler collaborators.
type HandlerOption func(*Handler)

// WithTranscripts lets the handler serve stored session transcripts.
func WithTranscripts(ts *TranscriptStore) HandlerOption {
	return func(h *Handler) {
		h.transcripts = ts
	}
}

// NewHandler creates a dialogue handler.
func NewHandler(service Service, logger *logging.Logger, opts ...HandlerOption) *Handler {
	h := &Handler{
		service: service,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// TranscriptTurn is one stored turn in a transcript response.
type TranscriptTurn struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// TranscriptResponse is the stored history of one session.
type TranscriptResponse struct {
	SessionID     string           `json:"session_id"`
	Status        string           `json:"status"`
	TurnCount     int              `json:"turn_count"`
	UserTurnCount int              `json:"user_turn_count"`
	AITurnCount   int              `json:"ai_turn_count"`
	StartedAt     time.Time        `json:"started_at"`
	LastTurnAt    *time.Time       `json:"last_turn_at,omitempty"`
	EndedAt       *time.Time       `json:"ended_at,omitempty"`
	Turns         []TranscriptTurn `json:"turns"`
}

// Start handles POST /sessions/start.
func (h *Handler) Start(w http.ResponseWriter, r *http.Request) {
	var req StartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode start request", "error", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	resp, err := h.service.StartSession(r.Context(), req)
	if err != nil {
		h.logger.Error("failed to start session", "error", err)
		http.Error(w, "Failed to start session", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusCreated, resp)
}

// Message handles POST /sessions/message.
func (h *Handler) Message(w http.ResponseWriter, r *http.Request) {
	var req TurnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode message request", "error", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.SessionID == "" {
		http.Error(w, "session_id is required", http.StatusBadRequest)
		return
	}

	resp, err := h.service.ProcessTurn(r.Context(), req)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			http.Error(w, "Session not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to process message", "error", err, "session_id", req.SessionID)
		http.Error(w, "Failed to process message", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, resp)
}

// Reset handles POST /sessions/{sessionID}/reset.
func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if sessionID == "" {
		http.Error(w, "session_id is required", http.StatusBadRequest)
		return
	}

	if err := h.service.ResetSession(r.Context(), sessionID); err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			http.Error(w, "Session not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to reset session", "error", err, "session_id", sessionID)
		http.Error(w, "Failed to reset session", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{
		"session_id": sessionID,
		"status":     "reset",
	})
}

// End handles DELETE /sessions/{sessionID}.
func (h *Handler) End(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if sessionID == "" {
		http.Error(w, "session_id is required", http.StatusBadRequest)
		return
	}

	if err := h.service.EndSession(r.Context(), sessionID); err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			http.Error(w, "Session not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to end session", "error", err, "session_id", sessionID)
		http.Error(w, "Failed to end session", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{
		"session_id": sessionID,
		"status":     "ended",
	})
}

// Transcript handles GET /sessions/{sessionID}/transcript.
func (h *Handler) Transcript(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if sessionID == "" {
		http.Error(w, "session_id is required", http.StatusBadRequest)
		return
	}
	if h.transcripts == nil {
		http.Error(w, "Transcript storage is not configured", http.StatusServiceUnavailable)
		return
	}

	rec, err := h.transcripts.GetSession(r.Context(), sessionID)
	if err != nil {
		h.logger.Error("failed to load transcript session", "error", err, "session_id", sessionID)
		http.Error(w, "Failed to load transcript", http.StatusInternalServerError)
		return
	}
	if rec == nil {
		http.Error(w, "Session not found", http.StatusNotFound)
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 0 {
		limit = 0
	}

	turns, err := h.transcripts.GetTurns(r.Context(), sessionID, limit)
	if err != nil {
		h.logger.Error("failed to load transcript turns", "error", err, "session_id", sessionID)
		http.Error(w, "Failed to load transcript", http.StatusInternalServerError)
		return
	}

	resp := TranscriptResponse{
		SessionID:     rec.SessionID,
		Status:        rec.Status,
		TurnCount:     rec.TurnCount,
		UserTurnCount: rec.UserTurnCount,
		AITurnCount:   rec.AITurnCount,
		StartedAt:     rec.StartedAt,
		LastTurnAt:    rec.LastTurnAt,
		EndedAt:       rec.EndedAt,
		Turns:         make([]TranscriptTurn, 0, len(turns)),
	}
	for _, t := range turns {
		resp.Turns = append(resp.Turns, TranscriptTurn{
			Role:      t.Role,
			Content:   t.Content,
			CreatedAt: t.CreatedAt,
		})
	}

	h.writeJSON(w, http.StatusOK, resp)
}

// HealthCheck handles GET /health.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", "error", err)
	}
}
