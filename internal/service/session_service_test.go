package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"go_4_vocab_quiz/internal/catalog"
	"go_4_vocab_quiz/internal/config"
	"go_4_vocab_quiz/internal/model"
	"go_4_vocab_quiz/internal/repository/mocks"
	"go_4_vocab_quiz/internal/session"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func testConfig() config.Config {
	return config.Config{
		Quiz:    config.QuizConfig{OptionCount: 3},
		Session: config.SessionConfig{TTL: time.Minute, CleanupInterval: time.Minute},
	}
}

// newTestStore は voca1 (3語) と voca2 (1語) を持つモックストアを返します
func newTestStore(t *testing.T) *mocks.VocabularyStore {
	store := mocks.NewVocabularyStore(t)
	store.On("ListIDs", mock.Anything).Return([]string{"voca2", "voca1"}, nil).Maybe()
	store.On("Fetch", mock.Anything, "voca1").Return([]model.RawEntry{
		{Key: "chat", Fields: map[string]any{"german": "Katze"}},
		{Key: "chien", Fields: map[string]any{"german": "Hund"}},
		{Key: "maison", Fields: map[string]any{"german": "Haus"}},
	}, nil).Maybe()
	store.On("Fetch", mock.Anything, "voca2").Return([]model.RawEntry{
		{Key: "pomme", Fields: map[string]any{"german": "Apfel"}},
	}, nil).Maybe()
	return store
}

func newTestSessionService(t *testing.T, cfg config.Config) SessionService {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewSessionService(catalog.New(newTestStore(t)), cfg, logger)
}

func dispatch(t *testing.T, svc SessionService, id uuid.UUID, typ, value string) *SessionResponse {
	t.Helper()
	resp, err := svc.Dispatch(context.Background(), id, &model.SessionEventRequest{Type: typ, Value: value})
	require.NoError(t, err)
	require.NotNil(t, resp.Outcome)
	return resp
}

func TestSessionService_CreateSession(t *testing.T) {
	svc := newTestSessionService(t, testConfig())

	resp, err := svc.CreateSession(context.Background())
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, resp.ID)
	assert.Nil(t, resp.Outcome)
	assert.Equal(t, session.ScreenFileSelection, resp.View.Screen)
	assert.Equal(t, model.DirectionFrToDe, resp.View.Direction)
	assert.Equal(t, []session.FileOption{{ID: "ALL"}, {ID: "voca1"}, {ID: "voca2"}}, resp.View.Files)
}

func TestSessionService_QuizFlow(t *testing.T) {
	svc := newTestSessionService(t, testConfig())
	created, err := svc.CreateSession(context.Background())
	require.NoError(t, err)
	id := created.ID

	resp := dispatch(t, svc, id, "select_file", "voca1")
	assert.Equal(t, session.OutcomeOK, resp.Outcome.Code)
	assert.Equal(t, session.ScreenModeSelection, resp.View.Screen)
	assert.True(t, resp.View.Files[1].Selected)

	dispatch(t, svc, id, "select_mode", "quiz")
	resp = dispatch(t, svc, id, "start_quiz", "")
	require.Equal(t, session.OutcomeOK, resp.Outcome.Code)
	require.NotNil(t, resp.View.Question)
	assert.Len(t, resp.View.Question.Options, 3)

	resp = dispatch(t, svc, id, "submit_answer", "   ")
	assert.Equal(t, session.OutcomeNoAnswerProvided, resp.Outcome.Code)
	assert.Equal(t, session.ScreenQuestion, resp.View.Screen)

	resp = dispatch(t, svc, id, "submit_answer", "Katze")
	assert.Equal(t, session.OutcomeOK, resp.Outcome.Code)
	require.NotNil(t, resp.View.Feedback)
	require.NotNil(t, resp.View.Score)
	assert.Equal(t, 1, resp.View.Score.Answered)

	got, err := svc.GetSession(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, session.ScreenFeedback, got.View.Screen)
}

func TestSessionService_Dispatch_Errors(t *testing.T) {
	svc := newTestSessionService(t, testConfig())
	created, err := svc.CreateSession(context.Background())
	require.NoError(t, err)

	tests := []struct {
		name    string
		id      uuid.UUID
		req     model.SessionEventRequest
		wantErr error
	}{
		{name: "異常系: 存在しないセッション", id: uuid.New(), req: model.SessionEventRequest{Type: "back"}, wantErr: model.ErrSessionNotFound},
		{name: "異常系: 不正な向き", id: created.ID, req: model.SessionEventRequest{Type: "select_direction", Value: "fr-en"}, wantErr: model.ErrInvalidInput},
		{name: "異常系: 不明なイベント", id: created.ID, req: model.SessionEventRequest{Type: "dance"}, wantErr: model.ErrInvalidInput},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Dispatch(context.Background(), tc.id, &tc.req)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestSessionService_PreconditionFailedKeepsState(t *testing.T) {
	svc := newTestSessionService(t, testConfig())
	created, err := svc.CreateSession(context.Background())
	require.NoError(t, err)

	resp := dispatch(t, svc, created.ID, "select_file", "voca9")
	assert.Equal(t, session.OutcomePreconditionFailed, resp.Outcome.Code)
	assert.Equal(t, created.View, resp.View)
}

func TestSessionService_DeleteSession(t *testing.T) {
	svc := newTestSessionService(t, testConfig())
	ctx := context.Background()
	created, err := svc.CreateSession(ctx)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteSession(ctx, created.ID))

	_, err = svc.GetSession(ctx, created.ID)
	assert.ErrorIs(t, err, model.ErrSessionNotFound)
	assert.ErrorIs(t, svc.DeleteSession(ctx, created.ID), model.ErrSessionNotFound)
}

func TestSessionService_Expiry(t *testing.T) {
	cfg := testConfig()
	cfg.Session = config.SessionConfig{TTL: 50 * time.Millisecond, CleanupInterval: 10 * time.Millisecond}
	svc := newTestSessionService(t, cfg)
	ctx := context.Background()

	created, err := svc.CreateSession(ctx)
	require.NoError(t, err)

	// GetSession は期限を延長するので、期限切れまで触らずに待つ
	time.Sleep(cfg.Session.TTL + 2*cfg.Session.CleanupInterval)

	_, err = svc.GetSession(ctx, created.ID)
	assert.ErrorIs(t, err, model.ErrSessionNotFound)
}

func TestSessionService_SlidingExpiry(t *testing.T) {
	cfg := testConfig()
	cfg.Session = config.SessionConfig{TTL: 200 * time.Millisecond, CleanupInterval: 10 * time.Millisecond}
	svc := newTestSessionService(t, cfg)
	ctx := context.Background()

	created, err := svc.CreateSession(ctx)
	require.NoError(t, err)

	// TTL の3倍の間アクセスし続ければ期限切れにならない
	deadline := time.Now().Add(3 * cfg.Session.TTL)
	for time.Now().Before(deadline) {
		_, err := svc.GetSession(ctx, created.ID)
		require.NoError(t, err)
		time.Sleep(cfg.Session.TTL / 10)
	}
}

func TestSessionService_IndependentSessions(t *testing.T) {
	svc := newTestSessionService(t, testConfig())
	ctx := context.Background()
	a, err := svc.CreateSession(ctx)
	require.NoError(t, err)
	b, err := svc.CreateSession(ctx)
	require.NoError(t, err)

	dispatch(t, svc, a.ID, "select_direction", "de-fr")

	gotA, err := svc.GetSession(ctx, a.ID)
	require.NoError(t, err)
	gotB, err := svc.GetSession(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, model.DirectionDeToFr, gotA.View.Direction)
	assert.Equal(t, model.DirectionFrToDe, gotB.View.Direction)
}

func TestSessionService_ConcurrentDispatch(t *testing.T) {
	svc := newTestSessionService(t, testConfig())
	ctx := context.Background()
	created, err := svc.CreateSession(ctx)
	require.NoError(t, err)
	dispatch(t, svc, created.ID, "select_file", "voca1")
	dispatch(t, svc, created.ID, "select_mode", "quiz")

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Dispatch(ctx, created.ID, &model.SessionEventRequest{Type: "next_question"})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := svc.GetSession(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, got.View.Question)
	assert.Equal(t, session.ScreenQuestion, got.View.Screen)
}

func TestSessionService_CatalogUnavailable(t *testing.T) {
	store := mocks.NewVocabularyStore(t)
	store.On("ListIDs", mock.Anything).Return(nil, errors.New("disk gone"))
	svc := NewSessionService(catalog.New(store), testConfig(), slog.New(slog.NewTextHandler(io.Discard, nil)))

	resp, err := svc.CreateSession(context.Background())
	require.NoError(t, err)
	assert.Equal(t, session.ScreenError, resp.View.Screen)
	require.NotNil(t, resp.View.Error)
	assert.Equal(t, session.ErrorKindCatalogUnavailable, resp.View.Error.Kind)
	assert.Equal(t, []session.FileOption{{ID: "ALL"}}, resp.View.Files)
}
