// internal/config/config.go
package config

import (
	"errors"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type ServerConfig struct {
	Port string `mapstructure:"port"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	ExposedHeaders   []string `mapstructure:"exposed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

type DatabaseConfig struct {
	Driver string `mapstructure:"driver"` // "postgres" or "sqlite"
	URL    string `mapstructure:"url"`
}

// VocabularyConfig は単語帳の読み込み元の設定
type VocabularyConfig struct {
	Source  string `mapstructure:"source"`   // "file" or "database"
	DataDir string `mapstructure:"data_dir"` // source=file の場合の読み込みディレクトリ
	Pattern string `mapstructure:"pattern"`  // ファイル名 (拡張子なし) のglobパターン
}

type QuizConfig struct {
	OptionCount int `mapstructure:"option_count"`
}

type SessionConfig struct {
	TTL             time.Duration `mapstructure:"ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Log        LogConfig        `mapstructure:"log"`
	CORS       CORSConfig       `mapstructure:"cors"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Vocabulary VocabularyConfig `mapstructure:"vocabulary"`
	Quiz       QuizConfig       `mapstructure:"quiz"`
	Session    SessionConfig    `mapstructure:"session"`
}

var Cfg Config

// LoadConfig は path 配下の config.yaml と APP_ 接頭辞の環境変数から設定を読み込み、Cfg に格納します。
func LoadConfig(path string) error {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(path)
	v.AddConfigPath(".")

	// 例: APP_SERVER_PORT, APP_VOCABULARY_DATA_DIR
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.BindEnv("database.url", "DATABASE_URL") // DATABASE_URL も受け付ける

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			log.Println("Warning: Config file not found. Using default settings or environment variables if available.")
		} else {
			log.Printf("Error reading config file: %s\n", err)
			return err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		log.Printf("Error unmarshalling config: %s\n", err)
		return err
	}

	// --- 不正値の補正 ---
	if cfg.Quiz.OptionCount < 2 {
		log.Printf("Quiz option count %d is invalid, using default '%d'", cfg.Quiz.OptionCount, DefaultOptionCount)
		cfg.Quiz.OptionCount = DefaultOptionCount
	}
	if cfg.Session.TTL <= 0 {
		log.Println("Session TTL not set or invalid, using default")
		cfg.Session.TTL = DefaultSessionTTL
	}
	switch cfg.Vocabulary.Source {
	case VocabularySourceFile, VocabularySourceDatabase:
	default:
		log.Printf("Unknown vocabulary source %q, falling back to %q", cfg.Vocabulary.Source, VocabularySourceFile)
		cfg.Vocabulary.Source = VocabularySourceFile
	}
	if cfg.Vocabulary.Source == VocabularySourceDatabase && cfg.Database.URL == "" {
		log.Println("Warning: Database URL is not set in config.")
	}

	Cfg = cfg

	log.Println("Config loaded successfully")
	log.Printf("Server Port: %s", Cfg.Server.Port)
	log.Printf("Vocabulary Source: %s", Cfg.Vocabulary.Source)
	log.Printf("Option Count: %d", Cfg.Quiz.OptionCount)

	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", DefaultServerPort)
	v.SetDefault("log.level", DefaultLogLevel)
	v.SetDefault("cors.allowed_origins", []string{"*"})
	v.SetDefault("cors.allowed_methods", []string{"GET", "POST", "DELETE", "OPTIONS"})
	v.SetDefault("cors.allowed_headers", []string{"Content-Type"})
	v.SetDefault("cors.exposed_headers", []string{})
	v.SetDefault("cors.allow_credentials", false)
	v.SetDefault("cors.max_age", 300)
	v.SetDefault("database.driver", DefaultDatabaseDriver)
	v.SetDefault("database.url", "")
	v.SetDefault("vocabulary.source", VocabularySourceFile)
	v.SetDefault("vocabulary.data_dir", DefaultDataDir)
	v.SetDefault("vocabulary.pattern", DefaultFilePattern)
	v.SetDefault("quiz.option_count", DefaultOptionCount)
	v.SetDefault("session.ttl", DefaultSessionTTL)
	v.SetDefault("session.cleanup_interval", DefaultSessionCleanup)
}
