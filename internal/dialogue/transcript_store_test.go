package dialogue

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTranscriptStoreWithMock(t *testing.T) (*TranscriptStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewTranscriptStore(db), mock
}

func TestTranscriptStoreNilSafety(t *testing.T) {
	var store *TranscriptStore
	ctx := context.Background()

	id, err := store.EnsureSession(ctx, "s-1")
	require.NoError(t, err)
	assert.Equal(t, uuid.Nil, id)

	require.NoError(t, store.AppendTurn(ctx, "s-1", ChatRoleUser, "hi"))
	require.NoError(t, store.EndSession(ctx, "s-1"))
}

func TestEnsureSessionCreatesWhenMissing(t *testing.T) {
	store, mock := newTranscriptStoreWithMock(t)

	mock.ExpectQuery(`SELECT id FROM sessions WHERE session_id`).
		WithArgs("s-1").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectExec(`INSERT INTO sessions`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	id, err := store.EnsureSession(context.Background(), "s-1")
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, id)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureSessionReturnsExisting(t *testing.T) {
	store, mock := newTranscriptStoreWithMock(t)

	existing := "0c2e64e2-47c5-4bd7-9c35-44262de0f7a4"
	mock.ExpectQuery(`SELECT id FROM sessions WHERE session_id`).
		WithArgs("s-1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(existing))
	mock.ExpectExec(`UPDATE sessions SET updated_at`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	id, err := store.EnsureSession(context.Background(), "s-1")
	require.NoError(t, err)
	assert.Equal(t, existing, id.String())
}

func TestEnsureSessionReportsTouchFailure(t *testing.T) {
	store, mock := newTranscriptStoreWithMock(t)

	existing := "0c2e64e2-47c5-4bd7-9c35-44262de0f7a4"
	mock.ExpectQuery(`SELECT id FROM sessions WHERE session_id`).
		WithArgs("s-1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(existing))
	mock.ExpectExec(`UPDATE sessions SET updated_at`).
		WillReturnError(errors.New("connection closed"))

	id, err := store.EnsureSession(context.Background(), "s-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to touch session")
	assert.Equal(t, uuid.Nil, id)
}

func TestAppendTurnUpdatesCounters(t *testing.T) {
	store, mock := newTranscriptStoreWithMock(t)

	existing := "0c2e64e2-47c5-4bd7-9c35-44262de0f7a4"
	mock.ExpectQuery(`SELECT id FROM sessions WHERE session_id`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(existing))
	mock.ExpectExec(`UPDATE sessions SET updated_at`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO session_turns`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`ai_turn_count = ai_turn_count \+ 1`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := store.AppendTurn(context.Background(), "s-1", ChatRoleAssistant, "Here are some picks")
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAppendTurnSkipsCountersOnConflict(t *testing.T) {
	store, mock := newTranscriptStoreWithMock(t)

	existing := "0c2e64e2-47c5-4bd7-9c35-44262de0f7a4"
	mock.ExpectQuery(`SELECT id FROM sessions WHERE session_id`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(existing))
	mock.ExpectExec(`UPDATE sessions SET updated_at`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO session_turns`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := store.AppendTurn(context.Background(), "s-1", ChatRoleUser, "hello")
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEndSession(t *testing.T) {
	store, mock := newTranscriptStoreWithMock(t)

	mock.ExpectExec(`UPDATE sessions SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, store.EndSession(context.Background(), "s-1"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetTurns(t *testing.T) {
	store, mock := newTranscriptStoreWithMock(t)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "session_id", "role", "content", "created_at"}).
		AddRow("0c2e64e2-47c5-4bd7-9c35-44262de0f7a4", "s-1", ChatRoleUser, "hi", now).
		AddRow("1d3f75f3-58d6-5ce8-a046-55373ef1a8b5", "s-1", ChatRoleAssistant, "What are you shopping for?", now)

	mock.ExpectQuery(`SELECT id, session_id, role, content, created_at`).
		WithArgs("s-1").
		WillReturnRows(rows)

	turns, err := store.GetTurns(context.Background(), "s-1", 0)
	require.NoError(t, err)
	require.Len(t, turns, 2)
	assert.Equal(t, ChatRoleUser, turns[0].Role)
	assert.Equal(t, "What are you shopping for?", turns[1].Content)
}
