// internal/catalog/catalog.go
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"go_4_vocab_quiz/internal/middleware"
	"go_4_vocab_quiz/internal/model"
	"go_4_vocab_quiz/internal/repository"
)

// germanField は各レコードで必須となる訳語のフィールド名
const germanField = "german"

// Catalog は単語帳の一覧取得・読み込み・検証・マージを担当します。
type Catalog struct {
	store repository.VocabularyStore
}

func New(store repository.VocabularyStore) *Catalog {
	return &Catalog{store: store}
}

// ListAvailable は単語帳IDを辞書順で返します。
func (c *Catalog) ListAvailable(ctx context.Context) ([]string, error) {
	ids, err := c.store.ListIDs(ctx)
	if err != nil {
		middleware.GetLogger(ctx).Error("Vocabulary catalog could not be enumerated", slog.Any("error", err))
		return nil, model.NewVocabularyError(model.ErrCatalogUnavailable, "", err)
	}
	sorted := slices.Clone(ids)
	slices.Sort(sorted)
	return slices.Compact(sorted), nil
}

// Load は単語帳 id を読み込み、検証済みの Mapping を返します。
func (c *Catalog) Load(ctx context.Context, id string) (model.VocabularyMapping, error) {
	logger := middleware.GetLogger(ctx).With(slog.String("list_id", id))

	raw, err := c.store.Fetch(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrNotFound):
			return model.VocabularyMapping{}, model.NewVocabularyError(model.ErrNotFound, id, err)
		case errors.Is(err, model.ErrMalformedData):
			logger.Warn("Vocabulary list is malformed", slog.Any("error", err))
			return model.VocabularyMapping{}, model.NewVocabularyError(model.ErrMalformedData, id, err)
		default:
			logger.Error("Vocabulary list could not be read", slog.Any("error", err))
			return model.VocabularyMapping{}, model.NewVocabularyError(model.ErrCatalogUnavailable, id, err)
		}
	}

	entries, err := validate(raw)
	if err != nil {
		logger.Warn("Vocabulary list is malformed", slog.Any("error", err))
		return model.VocabularyMapping{}, model.NewVocabularyError(model.ErrMalformedData, id, err)
	}
	return model.NewVocabularyMapping(entries), nil
}

// LoadAll は全単語帳を辞書順にマージします。同じキーは後の単語帳の値で上書きされます。
// 壊れた単語帳が1つでもあればスキップせずにエラーを返します。
func (c *Catalog) LoadAll(ctx context.Context) (model.VocabularyMapping, error) {
	ids, err := c.ListAvailable(ctx)
	if err != nil {
		return model.VocabularyMapping{}, err
	}

	var merged model.VocabularyMapping
	for _, id := range ids {
		m, err := c.Load(ctx, id)
		if err != nil {
			return model.VocabularyMapping{}, err
		}
		merged = merged.Merge(m)
	}
	return merged, nil
}

// Resolve は選択値に応じて単語帳を読み込みます ("ALL" または未選択なら全件マージ)。
func (c *Catalog) Resolve(ctx context.Context, selection string) (model.VocabularyMapping, error) {
	if selection == "" || selection == model.AllListsID {
		return c.LoadAll(ctx)
	}
	return c.Load(ctx, selection)
}

// Contains は id が選択可能な単語帳かどうかを返します ("ALL" は常に選択可能)。
func (c *Catalog) Contains(ctx context.Context, id string) (bool, error) {
	if id == model.AllListsID {
		return true, nil
	}
	ids, err := c.ListAvailable(ctx)
	if err != nil {
		return false, err
	}
	_, found := slices.BinarySearch(ids, id)
	return found, nil
}

// validate は生レコードを検証し VocabularyEntry に変換します。
// キーと german は空でない文字列であること、単語帳内でキーが重複しないことが条件です。
func validate(raw []model.RawEntry) ([]model.VocabularyEntry, error) {
	entries := make([]model.VocabularyEntry, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for i, r := range raw {
		if strings.TrimSpace(r.Key) == "" {
			return nil, fmt.Errorf("record #%d: empty key", i+1)
		}
		if _, dup := seen[r.Key]; dup {
			return nil, fmt.Errorf("record %q: duplicate key", r.Key)
		}
		seen[r.Key] = struct{}{}

		german, ok := r.Fields[germanField].(string)
		if !ok || strings.TrimSpace(german) == "" {
			return nil, fmt.Errorf("record %q: missing or empty %q", r.Key, germanField)
		}
		entries = append(entries, model.VocabularyEntry{French: r.Key, German: german})
	}
	return entries, nil
}
