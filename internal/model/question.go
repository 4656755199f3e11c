package model

import "fmt"

// QuizType は解答方法 (選択式 or 入力式)
type QuizType string

const (
	QuizTypeMultipleChoice QuizType = "multiple_choice"
	QuizTypeTypeAnswer     QuizType = "type_answer"
)

func (t QuizType) Valid() bool {
	return t == QuizTypeMultipleChoice || t == QuizTypeTypeAnswer
}

func ParseQuizType(s string) (QuizType, error) {
	t := QuizType(s)
	if !t.Valid() {
		return "", fmt.Errorf("unknown quiz type %q: %w", s, ErrInvalidInput)
	}
	return t, nil
}

// Mode は学習モード。未選択はゼロ値 ModeUnset。
type Mode string

const (
	ModeUnset    Mode = ""
	ModeLearning Mode = "learning"
	ModeQuiz     Mode = "quiz"
)

func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case ModeLearning, ModeQuiz:
		return m, nil
	default:
		return ModeUnset, fmt.Errorf("unknown mode %q: %w", s, ErrInvalidInput)
	}
}

// Question は1問分の出題内容。
// 選択式の場合 Options は CorrectAnswer をちょうど1つ含み、重複はない。
type Question struct {
	Prompt        string    `json:"prompt"`
	CorrectAnswer string    `json:"correct_answer"`
	Options       []string  `json:"options,omitempty"`
	Direction     Direction `json:"direction"`
	QuizType      QuizType  `json:"quiz_type"`
}
