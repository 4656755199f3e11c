package session

import (
	"context"
	"fmt"

	"go_4_vocab_quiz/internal/model"
	"go_4_vocab_quiz/internal/quiz"
)

// EventKind はレンダラーから届くイベントの種類 (閉じた集合)
type EventKind string

const (
	EventSelectMode      EventKind = "select_mode"
	EventSelectFile      EventKind = "select_file"
	EventSelectDirection EventKind = "select_direction"
	EventSelectQuizType  EventKind = "select_quiz_type"
	EventStartQuiz       EventKind = "start_quiz"
	EventNextQuestion    EventKind = "next_question"
	EventSubmitAnswer    EventKind = "submit_answer"
	EventBack            EventKind = "back"
)

// Event は1つのユーザー操作。Value の意味は Kind ごとに異なる。
type Event struct {
	Kind  EventKind
	Value string
}

func SelectMode(m model.Mode) Event           { return Event{Kind: EventSelectMode, Value: string(m)} }
func SelectFile(id string) Event              { return Event{Kind: EventSelectFile, Value: id} }
func SelectDirection(d model.Direction) Event { return Event{Kind: EventSelectDirection, Value: string(d)} }
func SelectQuizType(t model.QuizType) Event   { return Event{Kind: EventSelectQuizType, Value: string(t)} }
func StartQuiz() Event                        { return Event{Kind: EventStartQuiz} }
func NextQuestion() Event                     { return Event{Kind: EventNextQuestion} }
func SubmitAnswer(text string) Event          { return Event{Kind: EventSubmitAnswer, Value: text} }
func Back() Event                             { return Event{Kind: EventBack} }

// ParseEvent は文字列の種類と値から Event を作成し、値の形式を検証します。
func ParseEvent(kind, value string) (Event, error) {
	ev := Event{Kind: EventKind(kind), Value: value}
	var err error
	switch ev.Kind {
	case EventSelectMode:
		_, err = model.ParseMode(value)
	case EventSelectDirection:
		_, err = model.ParseDirection(value)
	case EventSelectQuizType:
		_, err = model.ParseQuizType(value)
	case EventSelectFile:
		if value == "" {
			err = fmt.Errorf("file id is required: %w", model.ErrInvalidInput)
		}
	case EventStartQuiz, EventNextQuestion, EventSubmitAnswer, EventBack:
	default:
		err = fmt.Errorf("unknown event %q: %w", kind, model.ErrInvalidInput)
	}
	if err != nil {
		return Event{}, err
	}
	return ev, nil
}

// OutcomeCode は遷移結果の分類
type OutcomeCode string

const (
	OutcomeOK                 OutcomeCode = "ok"
	OutcomeNoAnswerProvided   OutcomeCode = "no_answer_provided"
	OutcomePreconditionFailed OutcomeCode = "precondition_failed"
	OutcomeError              OutcomeCode = "error"
)

// Outcome は1回の遷移の結果。OK 以外の場合 Err に原因が入る。
type Outcome struct {
	Code    OutcomeCode `json:"code"`
	Message string      `json:"message,omitempty"`
	Err     error       `json:"-"`
}

func succeeded() Outcome {
	return Outcome{Code: OutcomeOK}
}

func preconditionFailed(format string, args ...any) Outcome {
	msg := fmt.Sprintf(format, args...)
	return Outcome{
		Code:    OutcomePreconditionFailed,
		Message: msg,
		Err:     fmt.Errorf("%s: %w", msg, model.ErrPreconditionFailed),
	}
}

// VocabSource は遷移関数が単語帳を取得するための依存 (*catalog.Catalog が満たす)
type VocabSource interface {
	Resolve(ctx context.Context, selection string) (model.VocabularyMapping, error)
	Contains(ctx context.Context, id string) (bool, error)
}

// Deps は Apply に渡す外部依存
type Deps struct {
	Source VocabSource
	Rand   quiz.Rand
}
