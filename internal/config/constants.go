// internal/config/constants.go
package config

import "time"

// アプリケーション情報
const (
	AppName    = "VocabQuiz"
	AppVersion = "0.3.0"
)

// 単語帳の読み込み元
const (
	VocabularySourceFile     = "file"
	VocabularySourceDatabase = "database"
)

// デフォルト設定値
const (
	DefaultServerPort     = ":8080"
	DefaultLogLevel       = "info"
	DefaultDatabaseDriver = "postgres"
	DefaultDataDir        = "data"
	DefaultFilePattern    = "voca*"
	DefaultOptionCount    = 3
	DefaultSessionTTL     = 2 * time.Hour
	DefaultSessionCleanup = 10 * time.Minute
)
