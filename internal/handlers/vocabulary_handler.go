// internal/handlers/vocabulary_handler.go
package handlers

import (
	"log/slog"
	"net/http"

	"go_4_vocab_quiz/internal/service"
	"go_4_vocab_quiz/internal/webutil"

	"github.com/go-chi/chi/v5"
)

// ListIDParam は単語帳IDを表すURLパラメータ名
const ListIDParam = "list_id"

type VocabularyHandler struct {
	service service.VocabularyService
	logger  *slog.Logger
}

func NewVocabularyHandler(s service.VocabularyService, logger *slog.Logger) *VocabularyHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &VocabularyHandler{
		service: s,
		logger:  logger,
	}
}

// GetVocabularies は選択可能な単語帳IDの一覧を返すハンドラ
func (h *VocabularyHandler) GetVocabularies(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "GetVocabularies"))

	ids, err := h.service.ListVocabularies(r.Context())
	if err != nil {
		logger.Error("Error listing vocabularies in service", slog.Any("error", err))
		webutil.HandleError(w, logger, toAppError(err))
		return
	}

	logger.Info("Vocabularies listed successfully", slog.Int("count", len(ids)))
	webutil.RespondWithJSON(w, http.StatusOK, map[string][]string{"lists": ids}, logger)
}

// GetVocabulary は単語帳の内容を返すハンドラ ("ALL" は全単語帳のマージ結果)
func (h *VocabularyHandler) GetVocabulary(w http.ResponseWriter, r *http.Request) {
	listID := chi.URLParam(r, ListIDParam)
	logger := h.logger.With(slog.String("handler", "GetVocabulary"), slog.String("list_id", listID))

	vocab, err := h.service.GetVocabulary(r.Context(), listID)
	if err != nil {
		logger.Warn("Error loading vocabulary in service", slog.Any("error", err))
		webutil.HandleError(w, logger, toAppError(err))
		return
	}

	logger.Info("Vocabulary loaded successfully", slog.Int("count", vocab.Count))
	webutil.RespondWithJSON(w, http.StatusOK, vocab, logger)
}
