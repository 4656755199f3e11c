// internal/middleware/session.go
package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"go_4_vocab_quiz/internal/model"
	"go_4_vocab_quiz/internal/webutil"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type sessionCtxKey struct{}

// SessionIDParam はセッションIDを表すURLパラメータ名
const SessionIDParam = "session_id"

// SessionContextMiddleware は URL の {session_id} を UUID として検証し、コンテキストに設定します。
// セッションの存在チェックはサービス層で行います。
func SessionContextMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := GetLogger(r.Context())

		raw := chi.URLParam(r, SessionIDParam)
		sessionID, err := uuid.Parse(raw)
		if err != nil {
			logger.Warn("Invalid session ID format in URL", slog.String("session_id_str", raw), slog.String("error", err.Error()))
			appErr := model.NewAppError("INVALID_URL_PARAM", "session_idの形式が正しくありません。", SessionIDParam, model.ErrInvalidInput)
			webutil.HandleError(w, logger, appErr)
			return
		}

		ctx := context.WithValue(r.Context(), sessionCtxKey{}, sessionID)
		ctx = WithLogger(ctx, logger.With(slog.String("session_id", sessionID.String())))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetSessionIDFromContext はミドルウェアが設定したセッションIDを取得します。
func GetSessionIDFromContext(ctx context.Context) (uuid.UUID, error) {
	value, ok := ctx.Value(sessionCtxKey{}).(uuid.UUID)
	if !ok {
		// ミドルウェアが適用されていない (ルーティング設定の誤り)
		return uuid.Nil, model.NewAppError("INTERNAL_SERVER_ERROR", "コンテキストからセッション情報を取得できませんでした。", "", model.ErrInternalServer)
	}
	return value, nil
}
