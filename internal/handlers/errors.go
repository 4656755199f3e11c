package handlers

import (
	"errors"
	"fmt"

	"go_4_vocab_quiz/internal/model"
)

// toAppError はサービス層のエラーをクライアント向けの AppError に変換します。
// 変換できないエラーはそのまま返し、HandleError で500として扱います。
func toAppError(err error) error {
	var appErr *model.AppError
	if errors.As(err, &appErr) {
		return err
	}

	listID := ""
	var vErr *model.VocabularyError
	if errors.As(err, &vErr) {
		listID = vErr.ListID
	}

	switch {
	case errors.Is(err, model.ErrSessionNotFound):
		return model.NewAppError("SESSION_NOT_FOUND", "セッションが見つからないか、有効期限が切れています。", "", err)
	case errors.Is(err, model.ErrNotFound):
		return model.NewAppError("VOCABULARY_NOT_FOUND", fmt.Sprintf("単語帳「%s」が見つかりません。", listID), "list_id", err)
	case errors.Is(err, model.ErrMalformedData):
		return model.NewAppError("MALFORMED_VOCABULARY", fmt.Sprintf("単語帳「%s」の形式が正しくありません。", listID), "list_id", err)
	case errors.Is(err, model.ErrCatalogUnavailable):
		return model.NewAppError("CATALOG_UNAVAILABLE", "単語帳を読み込めません。しばらくしてから再度お試しください。", "", err)
	case errors.Is(err, model.ErrInvalidInput):
		return model.NewAppError("INVALID_EVENT", "イベントの値が正しくありません。", "value", err)
	default:
		return err
	}
}
