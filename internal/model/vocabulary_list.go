// internal/model/vocabulary_list.go
package model

import (
	"time"

	"github.com/google/uuid"
)

// VocabularyList はDBに保存された単語帳 (ファイル1つ分に相当)
type VocabularyList struct {
	ListID    string    `gorm:"type:varchar(255);primaryKey" json:"list_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// 関連 (Preload用)
	Words []VocabularyWord `gorm:"foreignKey:ListID;references:ListID;constraint:OnDelete:CASCADE" json:"-"`
}

func (VocabularyList) TableName() string {
	return "vocabulary_lists"
}

// VocabularyWord は単語帳の1行。Position でファイル内の順序を保持する。
type VocabularyWord struct {
	WordID   uuid.UUID `gorm:"type:uuid;primaryKey" json:"word_id"`
	ListID   string    `gorm:"type:varchar(255);not null;uniqueIndex:uq_list_french;index:idx_list_position,priority:1" json:"list_id"`
	Position int       `gorm:"not null;index:idx_list_position,priority:2" json:"position"`
	French   string    `gorm:"not null;uniqueIndex:uq_list_french" json:"french"` // 単語帳内で一意
	German   string    `gorm:"not null" json:"german"`
}

func (VocabularyWord) TableName() string {
	return "vocabulary_words"
}
