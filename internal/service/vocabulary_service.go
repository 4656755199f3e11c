//go:generate mockery --name VocabularyService --output ./mocks --outpkg mocks --case=underscore
package service

import (
	"context"
	"log/slog"

	"go_4_vocab_quiz/internal/catalog"
	"go_4_vocab_quiz/internal/middleware"
	"go_4_vocab_quiz/internal/model"
)

// VocabularyResponse は単語帳1つ分 (ALL の場合はマージ結果) の内容
type VocabularyResponse struct {
	ListID  string                  `json:"list_id"`
	Count   int                     `json:"count"`
	Entries []model.VocabularyEntry `json:"entries"`
}

type VocabularyService interface {
	// ListVocabularies は選択可能な単語帳ID ("ALL" + 辞書順) を返します
	ListVocabularies(ctx context.Context) ([]string, error)
	GetVocabulary(ctx context.Context, listID string) (*VocabularyResponse, error)
}

type vocabularyService struct {
	catalog *catalog.Catalog
}

func NewVocabularyService(cat *catalog.Catalog) VocabularyService {
	return &vocabularyService{catalog: cat}
}

func (s *vocabularyService) ListVocabularies(ctx context.Context) ([]string, error) {
	ids, err := s.catalog.ListAvailable(ctx)
	if err != nil {
		return nil, err
	}
	return append([]string{model.AllListsID}, ids...), nil
}

func (s *vocabularyService) GetVocabulary(ctx context.Context, listID string) (*VocabularyResponse, error) {
	vocab, err := s.catalog.Resolve(ctx, listID)
	if err != nil {
		middleware.GetLogger(ctx).Info("Vocabulary could not be loaded", slog.String("list_id", listID), slog.Any("error", err))
		return nil, err
	}
	return &VocabularyResponse{
		ListID:  listID,
		Count:   vocab.Len(),
		Entries: vocab.Entries(),
	}, nil
}
