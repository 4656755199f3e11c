// internal/repository/gorm_store.go
package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go_4_vocab_quiz/internal/middleware"
	"go_4_vocab_quiz/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// importBatchSize は ImportList で一度にINSERTする行数
const importBatchSize = 200

// GormStore は vocabulary_lists / vocabulary_words テーブルを読み書きするストアです
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) ListIDs(ctx context.Context) ([]string, error) {
	logger := middleware.GetLogger(ctx)
	var ids []string
	result := s.db.WithContext(ctx).Model(&model.VocabularyList{}).Order("list_id").Pluck("list_id", &ids)
	if result.Error != nil {
		logger.Error("Error listing vocabulary lists in DB", slog.Any("error", result.Error))
		return nil, fmt.Errorf("GormStore.ListIDs: %w", result.Error)
	}
	return ids, nil
}

func (s *GormStore) Fetch(ctx context.Context, id string) ([]model.RawEntry, error) {
	logger := middleware.GetLogger(ctx)

	var list model.VocabularyList
	result := s.db.WithContext(ctx).
		Preload("Words", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Where("list_id = ?", id).
		First(&list)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("GormStore.Fetch %q: %w", id, model.ErrNotFound)
		}
		logger.Error("Error fetching vocabulary list from DB", slog.String("list_id", id), slog.Any("error", result.Error))
		return nil, fmt.Errorf("GormStore.Fetch %q: %w", id, result.Error)
	}

	entries := make([]model.RawEntry, 0, len(list.Words))
	for _, w := range list.Words {
		entries = append(entries, model.RawEntry{
			Key:    w.French,
			Fields: map[string]any{"german": w.German},
		})
	}
	return entries, nil
}

// ImportList は単語帳 id の内容を entries で置き換えます (トランザクション内で削除→挿入)
func (s *GormStore) ImportList(ctx context.Context, id string, entries []model.VocabularyEntry) error {
	logger := middleware.GetLogger(ctx).With(slog.String("list_id", id))
	if id == "" || id == model.AllListsID {
		return fmt.Errorf("GormStore.ImportList: reserved or empty list id %q: %w", id, model.ErrInvalidInput)
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		list := model.VocabularyList{ListID: id}
		if err := tx.Where(model.VocabularyList{ListID: id}).FirstOrCreate(&list).Error; err != nil {
			logger.Error("Error upserting vocabulary list", slog.Any("error", err))
			return fmt.Errorf("GormStore.ImportList: %w", err)
		}
		if err := tx.Where("list_id = ?", id).Delete(&model.VocabularyWord{}).Error; err != nil {
			logger.Error("Error clearing vocabulary words", slog.Any("error", err))
			return fmt.Errorf("GormStore.ImportList: %w", err)
		}
		if len(entries) == 0 {
			return nil
		}

		words := make([]model.VocabularyWord, 0, len(entries))
		for i, e := range entries {
			words = append(words, model.VocabularyWord{
				WordID:   uuid.New(),
				ListID:   id,
				Position: i,
				French:   e.French,
				German:   e.German,
			})
		}
		if err := tx.CreateInBatches(words, importBatchSize).Error; err != nil {
			logger.Error("Error inserting vocabulary words", slog.Any("error", err))
			return fmt.Errorf("GormStore.ImportList: %w", err)
		}
		// Save で updated_at を更新する
		if err := tx.Save(&list).Error; err != nil {
			return fmt.Errorf("GormStore.ImportList: %w", err)
		}
		logger.Info("Vocabulary list imported", slog.Int("count", len(words)))
		return nil
	})
}
