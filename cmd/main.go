// cmd/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/lmittmann/tint"
	"github.com/rs/cors"

	"go_4_vocab_quiz/internal/catalog"
	"go_4_vocab_quiz/internal/config"
	"go_4_vocab_quiz/internal/handlers"
	"go_4_vocab_quiz/internal/middleware"
	"go_4_vocab_quiz/internal/repository"
	"go_4_vocab_quiz/internal/service"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

func main() {
	//　設定ファイル読み込み用の一時的なロガー設定
	tempLogger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(tempLogger)
	log.Println("Log Config Loading...")

	configPath := os.Getenv("APP_CONFIG_PATH")
	if configPath == "" {
		configPath = "configs"
	}
	if err := config.LoadConfig(configPath); err != nil {
		slog.Error("Error loading configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger := newLogger(tempLogger)
	log.Println("Log Config Loaded...")
	slog.SetDefault(logger)

	slog.Info("Application starting...", slog.String("app", config.AppName), slog.String("version", config.AppVersion))

	// 1. 単語帳の読み込み元
	store, closeStore, err := newVocabularyStore(logger)
	if err != nil {
		slog.Error("Error initializing vocabulary store", slog.Any("error", err))
		os.Exit(1)
	}
	defer closeStore()

	// 2. Dependency Injection
	vocabCatalog := catalog.New(store)
	sessionService := service.NewSessionService(vocabCatalog, config.Cfg, logger)
	vocabularyService := service.NewVocabularyService(vocabCatalog)

	sessionHandler := handlers.NewSessionHandler(sessionService, logger)
	vocabularyHandler := handlers.NewVocabularyHandler(vocabularyService, logger)

	// 3. Setup Router
	r := chi.NewRouter()

	// Middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.LoggingMiddleware(logger))

	// CORS 設定と適用 (設定ファイルから読み込んだ値を使用)
	corsOptions := cors.Options{
		AllowedOrigins:   config.Cfg.CORS.AllowedOrigins,
		AllowedMethods:   config.Cfg.CORS.AllowedMethods,
		AllowedHeaders:   config.Cfg.CORS.AllowedHeaders,
		ExposedHeaders:   config.Cfg.CORS.ExposedHeaders,
		AllowCredentials: config.Cfg.CORS.AllowCredentials,
		MaxAge:           config.Cfg.CORS.MaxAge,
		Debug:            false,
	}
	r.Use(cors.New(corsOptions).Handler)

	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))

	// API Routes
	handlers.RegisterRoutes(r, sessionHandler, vocabularyHandler)

	// Health Check (単語帳の一覧が取得できれば OK)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if _, err := vocabCatalog.ListAvailable(ctx); err != nil {
			slog.ErrorContext(ctx, "Health check failed: vocabulary catalog unavailable", slog.Any("error", err))
			http.Error(w, "Health check failed", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// 4. Start Server
	server := &http.Server{
		Addr:         config.Cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("Server listening", slog.String("port", config.Cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Could not listen on port", slog.String("port", config.Cfg.Server.Port), slog.Any("error", err))
			os.Exit(1)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", slog.Any("error", err))
	}

	log.Println("Server exiting")
}

// newLogger は設定に基づいて slog ロガーを作成します (APP_ENV=dev なら tint)
func newLogger(tempLogger *slog.Logger) *slog.Logger {
	logLevel := new(slog.LevelVar)
	switch strings.ToLower(config.Cfg.Log.Level) {
	case "debug":
		logLevel.Set(slog.LevelDebug)
	case "info":
		logLevel.Set(slog.LevelInfo)
	case "warn", "warning":
		logLevel.Set(slog.LevelWarn)
	case "error":
		logLevel.Set(slog.LevelError)
	default:
		logLevel.Set(slog.LevelInfo)
		slog.Warn("Unknown log level specified in config, defaulting to INFO", slog.String("level", config.Cfg.Log.Level))
	}

	var handler slog.Handler
	appEnv := os.Getenv("APP_ENV")
	if strings.ToLower(appEnv) == "dev" {
		handler = tint.NewHandler(os.Stderr, &tint.Options{
			Level:      logLevel,
			TimeFormat: time.RFC3339,
		})
		tempLogger.Info("Using TINT log handler", slog.String("APP_ENV", appEnv))
	} else {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
			Level:     logLevel,
			AddSource: true,
		})
		tempLogger.Info("Using JSON log handler", slog.String("APP_ENV", appEnv))
	}
	return slog.New(handler)
}

// newVocabularyStore は vocabulary.source に応じたストアと、終了時に呼ぶ関数を返します
func newVocabularyStore(logger *slog.Logger) (repository.VocabularyStore, func(), error) {
	switch config.Cfg.Vocabulary.Source {
	case config.VocabularySourceDatabase:
		db, err := repository.NewDB(config.Cfg.Database.Driver, config.Cfg.Database.URL, logger)
		if err != nil {
			return nil, nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, nil, err
		}
		if err := repository.Migrate(db); err != nil {
			sqlDB.Close()
			return nil, nil, err
		}
		closeDB := func() {
			if err := sqlDB.Close(); err != nil {
				slog.Error("Error closing database connection", slog.Any("error", err))
			} else {
				slog.Info("Database connection closed.")
			}
		}
		logger.Info("Using database vocabulary store", slog.String("driver", config.Cfg.Database.Driver))
		return repository.NewGormStore(db), closeDB, nil

	case config.VocabularySourceFile:
		store, err := repository.NewFileStore(config.Cfg.Vocabulary.DataDir, config.Cfg.Vocabulary.Pattern)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("Using file vocabulary store",
			slog.String("dir", config.Cfg.Vocabulary.DataDir),
			slog.String("pattern", config.Cfg.Vocabulary.Pattern),
		)
		return store, func() {}, nil

	default:
		return nil, nil, fmt.Errorf("unknown vocabulary source %q", config.Cfg.Vocabulary.Source)
	}
}
