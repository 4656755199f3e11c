// internal/session/state.go
package session

import (
	"errors"

	"go_4_vocab_quiz/internal/model"
	"go_4_vocab_quiz/internal/quiz"
)

// Screen は現在表示している画面。Back の戻り先もこれで決まる。
type Screen string

const (
	ScreenFileSelection Screen = "file_selection"
	ScreenModeSelection Screen = "mode_selection"
	ScreenLearning      Screen = "learning"
	ScreenQuizOptions   Screen = "quiz_options"
	ScreenQuestion      Screen = "question"
	ScreenFeedback      Screen = "feedback"
	ScreenNothingToQuiz Screen = "nothing_to_quiz"
	ScreenError         Screen = "error"
)

// Feedback は直前の解答に対する判定
type Feedback struct {
	Correct       bool   `json:"correct"`
	CorrectAnswer string `json:"correct_answer"`
}

// Score はセッション内の成績 (永続化はしない)
type Score struct {
	Answered int `json:"answered"`
	Correct  int `json:"correct"`
}

// エラー種別 (StateError.Kind)
const (
	ErrorKindCatalogUnavailable = "catalog_unavailable"
	ErrorKindNotFound           = "not_found"
	ErrorKindMalformedData      = "malformed_data"
	ErrorKindEmptyVocabulary    = "empty_vocabulary"
	ErrorKindInternal           = "internal"
)

// StateError は読み込み・出題で発生したエラーを画面表示用に保持します
type StateError struct {
	Kind    string `json:"kind"`
	ListID  string `json:"list_id,omitempty"`
	Message string `json:"message"`
}

// State は1セッション分の状態です。
// 値として受け渡し、遷移は Apply が新しい State を返すことでのみ行います。
// ポインタのフィールドが指す先は書き換えず、常に差し替えること。
type State struct {
	SelectedFileID  string
	Direction       model.Direction
	Mode            model.Mode
	QuizType        model.QuizType
	OptionCount     int
	CurrentQuestion *model.Question
	Answered        bool
	LastSubmission  *string
	Feedback        *Feedback
	Score           Score
	Screen          Screen
	Error           *StateError

	// 選択中の単語帳のスナップショット (未読み込みなら nil)
	Vocabulary *model.VocabularyMapping
}

// NewState は初期状態 (FR→DE、モード未選択、ファイル選択画面) を返します。
func NewState(optionCount int) State {
	if optionCount <= 0 {
		optionCount = quiz.DefaultOptionCount
	}
	return State{
		Direction:   model.DirectionFrToDe,
		Mode:        model.ModeUnset,
		QuizType:    model.QuizTypeMultipleChoice,
		OptionCount: optionCount,
		Screen:      ScreenFileSelection,
	}
}

// clearQuestion は出題・解答・フィードバックをリセットします
func (s State) clearQuestion() State {
	s.CurrentQuestion = nil
	s.Answered = false
	s.LastSubmission = nil
	s.Feedback = nil
	return s
}

// newStateError は err を画面表示用の StateError に変換します
func newStateError(err error) *StateError {
	se := &StateError{Kind: ErrorKindInternal, Message: err.Error()}
	switch {
	case errors.Is(err, model.ErrEmptyVocabulary):
		se.Kind = ErrorKindEmptyVocabulary
	case errors.Is(err, model.ErrNotFound):
		se.Kind = ErrorKindNotFound
	case errors.Is(err, model.ErrMalformedData):
		se.Kind = ErrorKindMalformedData
	case errors.Is(err, model.ErrCatalogUnavailable):
		se.Kind = ErrorKindCatalogUnavailable
	}
	var vErr *model.VocabularyError
	if errors.As(err, &vErr) {
		se.ListID = vErr.ListID
	}
	return se
}
