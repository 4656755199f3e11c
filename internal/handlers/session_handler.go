// internal/handlers/session_handler.go
package handlers

import (
	"log/slog"
	"net/http"

	"go_4_vocab_quiz/internal/middleware"
	"go_4_vocab_quiz/internal/model"
	"go_4_vocab_quiz/internal/service"
	"go_4_vocab_quiz/internal/webutil"
)

type SessionHandler struct {
	service service.SessionService
	logger  *slog.Logger
}

func NewSessionHandler(s service.SessionService, logger *slog.Logger) *SessionHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionHandler{
		service: s,
		logger:  logger,
	}
}

// PostSession は新しいクイズセッションを作成するためのハンドラ
func (h *SessionHandler) PostSession(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "PostSession"))

	resp, err := h.service.CreateSession(r.Context())
	if err != nil {
		logger.Error("Error creating session in service", slog.Any("error", err))
		webutil.HandleError(w, logger, toAppError(err))
		return
	}

	logger.Info("Session created successfully", slog.String("session_id", resp.ID.String()))
	webutil.RespondWithJSON(w, http.StatusCreated, resp, logger)
}

// GetSession はセッションの現在の画面を返すハンドラ
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "GetSession"))

	sessionID, err := middleware.GetSessionIDFromContext(r.Context())
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	logger = logger.With(slog.String("session_id", sessionID.String()))

	resp, err := h.service.GetSession(r.Context(), sessionID)
	if err != nil {
		logger.Info("Session could not be retrieved", slog.Any("error", err))
		webutil.HandleError(w, logger, toAppError(err))
		return
	}
	webutil.RespondWithJSON(w, http.StatusOK, resp, logger)
}

// PostEvent はレンダラーからのイベントをセッションに適用するハンドラ。
// 前提条件を満たさないイベントもステータスは200で、結果は outcome で返す。
func (h *SessionHandler) PostEvent(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "PostEvent"))

	sessionID, err := middleware.GetSessionIDFromContext(r.Context())
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	logger = logger.With(slog.String("session_id", sessionID.String()))

	var req model.SessionEventRequest
	if err := webutil.DecodeAndValidate(w, r, &req); err != nil {
		logger.Warn("Invalid event request", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	resp, err := h.service.Dispatch(r.Context(), sessionID, &req)
	if err != nil {
		logger.Warn("Error dispatching event", slog.String("event", req.Type), slog.Any("error", err))
		webutil.HandleError(w, logger, toAppError(err))
		return
	}

	logger.Info("Event applied",
		slog.String("event", req.Type),
		slog.String("outcome", string(resp.Outcome.Code)),
		slog.String("screen", string(resp.View.Screen)),
	)
	webutil.RespondWithJSON(w, http.StatusOK, resp, logger)
}

// DeleteSession はセッションを終了するハンドラ
func (h *SessionHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "DeleteSession"))

	sessionID, err := middleware.GetSessionIDFromContext(r.Context())
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	logger = logger.With(slog.String("session_id", sessionID.String()))

	if err := h.service.DeleteSession(r.Context(), sessionID); err != nil {
		logger.Info("Session could not be deleted", slog.Any("error", err))
		webutil.HandleError(w, logger, toAppError(err))
		return
	}

	logger.Info("Session deleted successfully")
	w.WriteHeader(http.StatusNoContent)
}
