//go:generate mockery --name SessionService --output ./mocks --outpkg mocks --case=underscore
package service

import (
	"context"
	"encoding/binary"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"

	"go_4_vocab_quiz/internal/catalog"
	"go_4_vocab_quiz/internal/config"
	"go_4_vocab_quiz/internal/middleware"
	"go_4_vocab_quiz/internal/model"
	"go_4_vocab_quiz/internal/session"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// SessionResponse はセッションの現在の画面と、直前のイベントの結果
type SessionResponse struct {
	ID      uuid.UUID         `json:"session_id"`
	View    session.ViewModel `json:"view"`
	Outcome *session.Outcome  `json:"outcome,omitempty"`
}

type SessionService interface {
	CreateSession(ctx context.Context) (*SessionResponse, error)
	GetSession(ctx context.Context, sessionID uuid.UUID) (*SessionResponse, error)
	Dispatch(ctx context.Context, sessionID uuid.UUID, req *model.SessionEventRequest) (*SessionResponse, error)
	DeleteSession(ctx context.Context, sessionID uuid.UUID) error
}

// sessionEntry は1セッション分の状態。mu を保持している間だけ state と rng に触れる。
type sessionEntry struct {
	mu      sync.Mutex
	state   session.State
	rng     *rand.Rand
	deleted bool
}

type sessionService struct {
	catalog  *catalog.Catalog
	sessions *cache.Cache
	cfg      config.Config
	logger   *slog.Logger
}

// NewSessionService はアイドル状態が cfg.Session.TTL 続いたセッションを破棄するレジストリを作成します
func NewSessionService(cat *catalog.Catalog, cfg config.Config, logger *slog.Logger) SessionService {
	ttl := cfg.Session.TTL
	if ttl <= 0 {
		ttl = config.DefaultSessionTTL
	}
	cleanup := cfg.Session.CleanupInterval
	if cleanup <= 0 {
		cleanup = config.DefaultSessionCleanup
	}

	sessions := cache.New(ttl, cleanup)
	sessions.OnEvicted(func(key string, _ interface{}) {
		logger.Debug("Session evicted", slog.String("session_id", key))
	})

	return &sessionService{
		catalog:  cat,
		sessions: sessions,
		cfg:      cfg,
		logger:   logger,
	}
}

func (s *sessionService) CreateSession(ctx context.Context) (*SessionResponse, error) {
	id := uuid.New()
	entry := &sessionEntry{
		state: session.NewState(s.cfg.Quiz.OptionCount),
		rng:   newSessionRand(id),
	}
	s.sessions.Set(id.String(), entry, cache.DefaultExpiration)

	middleware.GetLogger(ctx).Info("Session created", slog.String("session_id", id.String()))
	return &SessionResponse{ID: id, View: s.buildView(ctx, entry.state)}, nil
}

func (s *sessionService) GetSession(ctx context.Context, sessionID uuid.UUID) (*SessionResponse, error) {
	entry, err := s.lockEntry(sessionID)
	if err != nil {
		return nil, err
	}
	defer entry.mu.Unlock()

	s.touch(sessionID, entry)
	return &SessionResponse{ID: sessionID, View: s.buildView(ctx, entry.state)}, nil
}

// Dispatch はイベントをセッションに適用します。同じセッションへのイベントは直列に処理されます。
func (s *sessionService) Dispatch(ctx context.Context, sessionID uuid.UUID, req *model.SessionEventRequest) (*SessionResponse, error) {
	logger := middleware.GetLogger(ctx)

	ev, err := session.ParseEvent(req.Type, req.Value)
	if err != nil {
		return nil, fmt.Errorf("sessionService.Dispatch: %w", err)
	}

	entry, err := s.lockEntry(sessionID)
	if err != nil {
		return nil, err
	}
	defer entry.mu.Unlock()

	next, outcome := session.Apply(ctx, entry.state, ev, session.Deps{Source: s.catalog, Rand: entry.rng})
	entry.state = next
	s.touch(sessionID, entry)

	if outcome.Code == session.OutcomeError {
		logger.Warn("Session event failed",
			slog.String("event", string(ev.Kind)),
			slog.Any("error", outcome.Err),
		)
	}
	return &SessionResponse{ID: sessionID, View: s.buildView(ctx, next), Outcome: &outcome}, nil
}

func (s *sessionService) DeleteSession(ctx context.Context, sessionID uuid.UUID) error {
	entry, err := s.lockEntry(sessionID)
	if err != nil {
		return err
	}
	defer entry.mu.Unlock()

	entry.deleted = true
	s.sessions.Delete(sessionID.String())
	middleware.GetLogger(ctx).Info("Session deleted")
	return nil
}

// lockEntry はセッションを取り出してロックします。呼び出し側で Unlock すること。
func (s *sessionService) lockEntry(sessionID uuid.UUID) (*sessionEntry, error) {
	v, found := s.sessions.Get(sessionID.String())
	if !found {
		return nil, model.ErrSessionNotFound
	}
	entry := v.(*sessionEntry)
	entry.mu.Lock()
	// ロック待ちの間に削除されている場合がある
	if entry.deleted {
		entry.mu.Unlock()
		return nil, model.ErrSessionNotFound
	}
	return entry, nil
}

// touch は有効期限を延長します (go-cache は Get では延長しない)
func (s *sessionService) touch(sessionID uuid.UUID, entry *sessionEntry) {
	s.sessions.Set(sessionID.String(), entry, cache.DefaultExpiration)
}

// buildView は単語帳一覧を取得して ViewModel を組み立てます。
// ファイル選択画面で一覧が取得できない場合はエラー画面として表示します。
func (s *sessionService) buildView(ctx context.Context, st session.State) session.ViewModel {
	files, err := s.catalog.ListAvailable(ctx)
	if err != nil {
		middleware.GetLogger(ctx).Warn("Vocabulary list unavailable for view", slog.Any("error", err))
		if st.Screen == session.ScreenFileSelection {
			st = session.RecordError(st, err)
		}
		files = nil
	}
	return session.BuildView(st, files)
}

// newSessionRand はセッションIDをシードにした乱数源を作成します
func newSessionRand(id uuid.UUID) *rand.Rand {
	return rand.New(rand.NewPCG(binary.BigEndian.Uint64(id[:8]), binary.BigEndian.Uint64(id[8:])))
}
