// internal/model/vocabulary.go
package model

import "fmt"

// AllListsID は全単語帳をマージした仮想的な単語帳のID
const AllListsID = "ALL"

// Language は学習対象の言語
type Language string

const (
	LanguageFrench Language = "french"
	LanguageGerman Language = "german"
)

// Label は画面の列見出しに使う表示名を返します
func (l Language) Label() string {
	switch l {
	case LanguageFrench:
		return "French"
	case LanguageGerman:
		return "German"
	default:
		return string(l)
	}
}

// Direction は出題の向き (どちらの言語で問題を出すか)
type Direction string

const (
	DirectionFrToDe Direction = "fr-de"
	DirectionDeToFr Direction = "de-fr"
)

func (d Direction) Valid() bool {
	return d == DirectionFrToDe || d == DirectionDeToFr
}

func ParseDirection(s string) (Direction, error) {
	d := Direction(s)
	if !d.Valid() {
		return "", fmt.Errorf("unknown direction %q: %w", s, ErrInvalidInput)
	}
	return d, nil
}

// LanguagesFor は向きから (出題側, 解答側) の言語を決定します。
// 向きに関する判定はすべてこの関数を経由すること。
func LanguagesFor(d Direction) (source, target Language) {
	if d == DirectionDeToFr {
		return LanguageGerman, LanguageFrench
	}
	return LanguageFrench, LanguageGerman
}

// VocabularyEntry はフランス語の単語 (キー) とドイツ語訳の組
type VocabularyEntry struct {
	French string `json:"french"`
	German string `json:"german"`
}

// Side は指定言語側の文字列を返します
func (e VocabularyEntry) Side(lang Language) string {
	if lang == LanguageGerman {
		return e.German
	}
	return e.French
}

// RawEntry はストアから読み出したままの1レコード (キー → フィールド群)。
// 形式チェックはカタログ側で行う。
type RawEntry struct {
	Key    string
	Fields map[string]any
}

// VocabularyMapping はキー (フランス語) が一意な、順序付きの単語集合です。
// 生成後は読み取り専用として扱います。
type VocabularyMapping struct {
	entries []VocabularyEntry
	index   map[string]int
}

// NewVocabularyMapping は entries から Mapping を生成します。
// 同じキーが複数回出現した場合は、最初の位置のまま後の値で上書きします。
func NewVocabularyMapping(entries []VocabularyEntry) VocabularyMapping {
	m := VocabularyMapping{
		entries: make([]VocabularyEntry, 0, len(entries)),
		index:   make(map[string]int, len(entries)),
	}
	for _, e := range entries {
		m.put(e)
	}
	return m
}

func (m *VocabularyMapping) put(e VocabularyEntry) {
	if i, ok := m.index[e.French]; ok {
		m.entries[i] = e
		return
	}
	m.index[e.French] = len(m.entries)
	m.entries = append(m.entries, e)
}

// Merge は m の後ろに other を重ねた新しい Mapping を返します (m, other は変更しない)。
// キーが重複した場合は other の値が優先されます。
func (m VocabularyMapping) Merge(other VocabularyMapping) VocabularyMapping {
	merged := NewVocabularyMapping(m.entries)
	for _, e := range other.entries {
		merged.put(e)
	}
	return merged
}

func (m VocabularyMapping) Len() int {
	return len(m.entries)
}

func (m VocabularyMapping) At(i int) VocabularyEntry {
	return m.entries[i]
}

// Entries はエントリのコピーを返します
func (m VocabularyMapping) Entries() []VocabularyEntry {
	out := make([]VocabularyEntry, len(m.entries))
	copy(out, m.entries)
	return out
}

func (m VocabularyMapping) Lookup(french string) (VocabularyEntry, bool) {
	i, ok := m.index[french]
	if !ok {
		return VocabularyEntry{}, false
	}
	return m.entries[i], true
}
