package quiz

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Evaluation は解答の判定結果
type Evaluation struct {
	Correct   bool   `json:"correct"`
	Submitted string `json:"submitted"`
	Expected  string `json:"expected"`
}

// Normalize は比較用に文字列を正規化します (前後の空白除去 → NFC → Unicode case folding)。
// アクセント記号は残るので "chateau" と "château" は別の文字列のままです。
func Normalize(s string) string {
	s = strings.TrimSpace(s)
	s = norm.NFC.String(s)
	// cases.Caser は状態を持つので呼び出しごとに作る
	return cases.Fold().String(s)
}

// Evaluate は submitted が expected と一致するかを判定します。
func Evaluate(submitted, expected string) Evaluation {
	return Evaluation{
		Correct:   Normalize(submitted) == Normalize(expected),
		Submitted: submitted,
		Expected:  expected,
	}
}
