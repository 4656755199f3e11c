// internal/model/error.go
package model

import (
	"errors"
	"fmt"
)

// アプリケーション固有のエラー
var (
	ErrNotFound       = errors.New("resource not found")
	ErrInvalidInput   = errors.New("invalid input")
	ErrInternalServer = errors.New("internal server error")

	// 単語帳まわりのエラー
	ErrCatalogUnavailable = errors.New("vocabulary catalog unavailable")
	ErrMalformedData      = errors.New("malformed vocabulary data")
	ErrEmptyVocabulary    = errors.New("vocabulary is empty")

	// セッション遷移の検証結果 (致命的ではない)
	ErrNoAnswerProvided   = errors.New("no answer provided")
	ErrPreconditionFailed = errors.New("transition precondition not met")
	ErrSessionNotFound    = errors.New("session not found or expired")
)

// VocabularyError は単語帳の読み込み失敗を、原因となった単語帳IDと一緒に保持します。
// errors.Is(err, ErrNotFound) のように Kind で判定できます。
type VocabularyError struct {
	Kind   error
	ListID string
	Err    error
}

func (e *VocabularyError) Error() string {
	msg := e.Kind.Error()
	if e.ListID != "" {
		msg = fmt.Sprintf("%s (list %q)", msg, e.ListID)
	}
	if e.Err != nil && e.Err != e.Kind {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *VocabularyError) Is(target error) bool {
	return target == e.Kind
}

func (e *VocabularyError) Unwrap() error {
	return e.Err
}

// NewVocabularyError は kind と listID から VocabularyError を生成します。
func NewVocabularyError(kind error, listID string, err error) *VocabularyError {
	return &VocabularyError{Kind: kind, ListID: listID, Err: err}
}

// ErrorDetail はクライアントに返すエラー内容
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// APIErrorResponse はAPIエラーレスポンスの構造体
type APIErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// AppError はAPI向けの詳細 (コード・メッセージ・フィールド) と、
// ステータス判定用の元エラーをまとめたエラー型です。
type AppError struct {
	Code    string
	Message string
	Field   string
	Err     error
}

func NewAppError(code, message, field string, err error) *AppError {
	return &AppError{Code: code, Message: message, Field: field, Err: err}
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Detail はレスポンス用の ErrorDetail を返します
func (e *AppError) Detail() ErrorDetail {
	return ErrorDetail{Code: e.Code, Message: e.Message, Field: e.Field}
}
