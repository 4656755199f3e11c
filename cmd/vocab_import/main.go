// cmd/vocab_import/main.go
//
// 単語帳ディレクトリ (voca*.json / voca*.yaml) の内容をデータベースに取り込むツール。
//
//	go run ./cmd/vocab_import -dir data
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"go_4_vocab_quiz/internal/catalog"
	"go_4_vocab_quiz/internal/config"
	"go_4_vocab_quiz/internal/repository"

	"github.com/lmittmann/tint"
)

func main() {
	configPath := flag.String("config", "configs", "config.yaml のあるディレクトリ")
	dir := flag.String("dir", "", "取り込む単語帳ディレクトリ (省略時は vocabulary.data_dir)")
	only := flag.String("list", "", "指定した単語帳IDだけを取り込む")
	flag.Parse()

	if err := config.LoadConfig(*configPath); err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *dir == "" {
		*dir = config.Cfg.Vocabulary.DataDir
	}

	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{TimeFormat: time.Kitchen}))
	slog.SetDefault(logger)

	if err := run(context.Background(), logger, *dir, *only); err != nil {
		logger.Error("Import failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger, dir, only string) error {
	// --- 1. 読み込み元 (ファイル) ---
	fileStore, err := repository.NewFileStore(dir, config.Cfg.Vocabulary.Pattern)
	if err != nil {
		return err
	}
	source := catalog.New(fileStore)

	ids, err := source.ListAvailable(ctx)
	if err != nil {
		return err
	}
	if only != "" {
		ids = []string{only}
	}
	if len(ids) == 0 {
		logger.Warn("No vocabulary files found", slog.String("dir", dir), slog.String("pattern", config.Cfg.Vocabulary.Pattern))
		return nil
	}

	// --- 2. 書き込み先 (データベース) ---
	db, err := repository.NewDB(config.Cfg.Database.Driver, config.Cfg.Database.URL, logger)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	if err := repository.Migrate(db); err != nil {
		return err
	}
	dbStore := repository.NewGormStore(db)

	// --- 3. 単語帳ごとに検証して取り込む (1つでも壊れていれば中断) ---
	for _, id := range ids {
		vocab, err := source.Load(ctx, id)
		if err != nil {
			return fmt.Errorf("load %q: %w", id, err)
		}
		if err := dbStore.ImportList(ctx, id, vocab.Entries()); err != nil {
			return fmt.Errorf("import %q: %w", id, err)
		}
		logger.Info("Imported vocabulary list", slog.String("list_id", id), slog.Int("count", vocab.Len()))
	}

	fmt.Printf("Imported %d vocabulary list(s) from %s\n", len(ids), dir)
	return nil
}
