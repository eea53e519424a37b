package dialogue

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopguide/shopguide-ai-platform/pkg/logging"
)

type fakeService struct {
	startResp *Response
	turnResp  *Response
	startErr  error
	turnErr   error
	resetErr  error
	endErr    error

	lastStart StartRequest
	lastTurn  TurnRequest
	lastReset string
	lastEnd   string
}

func (f *fakeService) StartSession(_ context.Context, req StartRequest) (*Response, error) {
	f.lastStart = req
	return f.startResp, f.startErr
}

func (f *fakeService) ProcessTurn(_ context.Context, req TurnRequest) (*Response, error) {
	f.lastTurn = req
	return f.turnResp, f.turnErr
}

func (f *fakeService) ResetSession(_ context.Context, sessionID string) error {
	f.lastReset = sessionID
	return f.resetErr
}

func (f *fakeService) EndSession(_ context.Context, sessionID string) error {
	f.lastEnd = sessionID
	return f.endErr
}

func newHandlerRouter(svc Service, opts ...HandlerOption) http.Handler {
	h := NewHandler(svc, logging.Default(), opts...)
	r := chi.NewRouter()
	r.Post("/sessions/start", h.Start)
	r.Post("/sessions/message", h.Message)
	r.Post("/sessions/{sessionID}/reset", h.Reset)
	r.Delete("/sessions/{sessionID}", h.End)
	r.Get("/sessions/{sessionID}/transcript", h.Transcript)
	r.Get("/health", h.HealthCheck)
	return r
}

func TestHandlerStart(t *testing.T) {
	svc := &fakeService{
		startResp: &Response{
			SessionID: "s-1",
			Outcome:   OutcomeRequery,
			Message:   "What are you shopping for?",
			Phase:     PhaseDiscovery,
		},
	}
	router := newHandlerRouter(svc)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/sessions/start", strings.NewReader(`{"intent":"shopping"}`))
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, IntentTagShopping, svc.lastStart.Intent)

	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "s-1", resp.SessionID)
	assert.Equal(t, OutcomeRequery, resp.Outcome)
}

func TestHandlerStartBadBody(t *testing.T) {
	router := newHandlerRouter(&fakeService{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/sessions/start", strings.NewReader(`{not json`))
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlerMessage(t *testing.T) {
	svc := &fakeService{
		turnResp: &Response{
			SessionID:   "s-1",
			Outcome:     OutcomeRecommend,
			AllowSearch: true,
			Phase:       PhaseSearching,
		},
	}
	router := newHandlerRouter(svc)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/sessions/message",
		strings.NewReader(`{"session_id":"s-1","message":"a wireless headset"}`))
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "a wireless headset", svc.lastTurn.Message)
}

func TestHandlerMessageRequiresSessionID(t *testing.T) {
	router := newHandlerRouter(&fakeService{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/sessions/message",
		strings.NewReader(`{"message":"hello"}`))
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlerMessageSessionNotFound(t *testing.T) {
	router := newHandlerRouter(&fakeService{turnErr: ErrSessionNotFound})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/sessions/message",
		strings.NewReader(`{"session_id":"missing","message":"hello"}`))
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandlerReset(t *testing.T) {
	svc := &fakeService{}
	router := newHandlerRouter(svc)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/sessions/s-1/reset", nil)
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "s-1", svc.lastReset)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "reset", resp["status"])
}

func TestHandlerResetSessionNotFound(t *testing.T) {
	router := newHandlerRouter(&fakeService{resetErr: ErrSessionNotFound})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/sessions/missing/reset", nil)
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandlerEnd(t *testing.T) {
	svc := &fakeService{}
	router := newHandlerRouter(svc)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/sessions/s-1", nil)
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "s-1", svc.lastEnd)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ended", resp["status"])
}

func TestHandlerEndSessionNotFound(t *testing.T) {
	router := newHandlerRouter(&fakeService{endErr: ErrSessionNotFound})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/sessions/missing", nil)
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandlerTranscriptUnavailableWithoutStore(t *testing.T) {
	router := newHandlerRouter(&fakeService{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/sessions/s-1/transcript", nil)
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHandlerTranscript(t *testing.T) {
	store, mock := newTranscriptStoreWithMock(t)
	router := newHandlerRouter(&fakeService{}, WithTranscripts(store))

	now := time.Now()
	mock.ExpectQuery(`SELECT id, session_id, status`).
		WithArgs("s-1").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "session_id", "status",
			"turn_count", "user_turn_count", "ai_turn_count",
			"started_at", "last_turn_at", "ended_at",
		}).AddRow("0c2e64e2-47c5-4bd7-9c35-44262de0f7a4", "s-1", "active", 2, 1, 1, now, now, nil))
	mock.ExpectQuery(`SELECT id, session_id, role, content, created_at`).
		WithArgs("s-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "session_id", "role", "content", "created_at"}).
			AddRow("1d3f75f3-58d6-5ce8-a046-55373ef1a8b5", "s-1", ChatRoleUser, "a headset", now).
			AddRow("2e4086a4-69e7-6df9-b157-66484fa2b9c6", "s-1", ChatRoleAssistant, "What is your budget?", now))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/sessions/s-1/transcript", nil)
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp TranscriptResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "s-1", resp.SessionID)
	assert.Equal(t, 2, resp.TurnCount)
	require.Len(t, resp.Turns, 2)
	assert.Equal(t, "a headset", resp.Turns[0].Content)
	assert.Equal(t, ChatRoleAssistant, resp.Turns[1].Role)
}

func TestHandlerTranscriptSessionNotFound(t *testing.T) {
	store, mock := newTranscriptStoreWithMock(t)
	router := newHandlerRouter(&fakeService{}, WithTranscripts(store))

	mock.ExpectQuery(`SELECT id, session_id, status`).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/sessions/missing/transcript", nil)
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandlerHealthCheck(t *testing.T) {
	router := newHandlerRouter(&fakeService{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}
