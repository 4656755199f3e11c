//go:generate mockery --name VocabularyStore --output ./mocks --outpkg mocks --case=underscore
package repository

import (
	"context"

	"go_4_vocab_quiz/internal/model"
)

// VocabularyStore は単語帳の保存先 (ディレクトリ・DBなど) を抽象化します。
type VocabularyStore interface {
	// ListIDs は保存されている単語帳IDを返します (順序は保証しない)
	ListIDs(ctx context.Context) ([]string, error)
	// Fetch は単語帳の中身を保存順で返します。
	// 存在しなければ model.ErrNotFound、解析できなければ model.ErrMalformedData をラップして返します。
	Fetch(ctx context.Context, id string) ([]model.RawEntry, error)
}
