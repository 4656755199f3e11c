// internal/session/machine.go
package session

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"go_4_vocab_quiz/internal/middleware"
	"go_4_vocab_quiz/internal/model"
	"go_4_vocab_quiz/internal/quiz"
)

// Apply は st に ev を適用した新しい State と結果を返します。st 自体は変更しません。
//
// 前提条件を満たさないイベントや空の解答では st をそのまま返します。
// 単語帳の読み込みや出題に失敗した場合は State.Error に記録し、OutcomeError を返します。
func Apply(ctx context.Context, st State, ev Event, deps Deps) (State, Outcome) {
	logger := middleware.GetLogger(ctx)

	next, out := apply(ctx, st, ev, deps)
	if out.Code != OutcomeOK {
		logger.Debug("Session event not applied",
			slog.String("event", string(ev.Kind)),
			slog.String("outcome", string(out.Code)),
			slog.String("message", out.Message),
		)
	}
	return next, out
}

func apply(ctx context.Context, st State, ev Event, deps Deps) (State, Outcome) {
	switch ev.Kind {
	case EventSelectMode:
		return selectMode(ctx, st, ev.Value, deps)
	case EventSelectFile:
		return selectFile(ctx, st, ev.Value, deps)
	case EventSelectDirection:
		return selectDirection(st, ev.Value, deps)
	case EventSelectQuizType:
		return selectQuizType(st, ev.Value)
	case EventStartQuiz, EventNextQuestion:
		return nextQuestion(ctx, st, deps)
	case EventSubmitAnswer:
		return submitAnswer(st, ev.Value)
	case EventBack:
		return back(st)
	default:
		return st, preconditionFailed("unknown event %q", ev.Kind)
	}
}

func selectMode(ctx context.Context, st State, value string, deps Deps) (State, Outcome) {
	mode, err := model.ParseMode(value)
	if err != nil {
		return st, preconditionFailed("invalid mode %q", value)
	}

	next := st.clearQuestion()
	next.Mode = mode
	next.Score = Score{}
	next.Error = nil

	if mode == model.ModeQuiz {
		next.Screen = ScreenQuizOptions
		return next, succeeded()
	}

	// 学習モードは単語の一覧を表示するので、ここで単語帳を読み込む
	next, err = ensureVocabulary(ctx, next, deps)
	if err != nil {
		return fail(next, err)
	}
	next.Screen = ScreenLearning
	return next, succeeded()
}

func selectFile(ctx context.Context, st State, id string, deps Deps) (State, Outcome) {
	if id == "" {
		return st, preconditionFailed("file id is required")
	}
	found, err := deps.Source.Contains(ctx, id)
	if err != nil {
		return fail(st, err)
	}
	if !found {
		return st, preconditionFailed("unknown vocabulary file %q", id)
	}

	// 前の単語帳から作った問題とスコアは引き継がない
	next := st.clearQuestion()
	next.SelectedFileID = id
	next.Mode = model.ModeUnset
	next.Score = Score{}
	next.Error = nil
	next.Vocabulary = nil

	vocab, err := deps.Source.Resolve(ctx, id)
	if err != nil {
		return fail(next, err)
	}
	next.Vocabulary = &vocab
	next.Screen = ScreenModeSelection
	return next, succeeded()
}

func selectDirection(st State, value string, deps Deps) (State, Outcome) {
	direction, err := model.ParseDirection(value)
	if err != nil {
		return st, preconditionFailed("invalid direction %q", value)
	}

	next := st
	next.Direction = direction
	if st.Mode != model.ModeQuiz || st.CurrentQuestion == nil || st.Vocabulary == nil {
		return next, succeeded()
	}

	// 出題中なら新しい向きで問題を作り直す
	return generate(next, deps)
}

func selectQuizType(st State, value string) (State, Outcome) {
	if st.Mode != model.ModeQuiz {
		return st, preconditionFailed("quiz type can only be selected in quiz mode")
	}
	quizType, err := model.ParseQuizType(value)
	if err != nil {
		return st, preconditionFailed("invalid quiz type %q", value)
	}

	next := st.clearQuestion()
	next.QuizType = quizType
	next.Screen = ScreenQuizOptions
	return next, succeeded()
}

func nextQuestion(ctx context.Context, st State, deps Deps) (State, Outcome) {
	if st.Mode != model.ModeQuiz {
		return st, preconditionFailed("questions are only available in quiz mode")
	}
	next, err := ensureVocabulary(ctx, st, deps)
	if err != nil {
		return fail(next.clearQuestion(), err)
	}
	return generate(next, deps)
}

func submitAnswer(st State, text string) (State, Outcome) {
	if st.CurrentQuestion == nil {
		return st, preconditionFailed("no question to answer")
	}
	if st.Answered {
		return st, preconditionFailed("question already answered")
	}
	if strings.TrimSpace(text) == "" {
		return st, Outcome{
			Code:    OutcomeNoAnswerProvided,
			Message: "please enter an answer",
			Err:     model.ErrNoAnswerProvided,
		}
	}

	result := quiz.Evaluate(text, st.CurrentQuestion.CorrectAnswer)

	next := st
	submitted := result.Submitted
	next.Answered = true
	next.LastSubmission = &submitted
	next.Feedback = &Feedback{Correct: result.Correct, CorrectAnswer: result.Expected}
	next.Score.Answered++
	if result.Correct {
		next.Score.Correct++
	}
	next.Screen = ScreenFeedback
	return next, succeeded()
}

// back は1つ前の画面に戻ります。
// フィードバック/問題 → クイズ設定 → モード選択 → ファイル選択 の順。
func back(st State) (State, Outcome) {
	switch st.Screen {
	case ScreenQuestion, ScreenFeedback:
		next := st.clearQuestion()
		next.Screen = ScreenQuizOptions
		return next, succeeded()
	case ScreenQuizOptions, ScreenLearning:
		next := st.clearQuestion()
		next.Mode = model.ModeUnset
		next.Screen = ScreenModeSelection
		return next, succeeded()
	case ScreenModeSelection, ScreenError, ScreenNothingToQuiz:
		next := st.clearQuestion()
		next.SelectedFileID = ""
		next.Mode = model.ModeUnset
		next.Vocabulary = nil
		next.Error = nil
		next.Score = Score{}
		next.Screen = ScreenFileSelection
		return next, succeeded()
	default:
		return st, preconditionFailed("already at file selection")
	}
}

// ensureVocabulary は単語帳が未読み込みなら選択中のファイル (未選択なら全件) を読み込みます
func ensureVocabulary(ctx context.Context, st State, deps Deps) (State, error) {
	if st.Vocabulary != nil {
		return st, nil
	}
	vocab, err := deps.Source.Resolve(ctx, st.SelectedFileID)
	if err != nil {
		return st, err
	}
	st.Vocabulary = &vocab
	return st, nil
}

// generate は st の設定で新しい問題を作成します
func generate(st State, deps Deps) (State, Outcome) {
	q, err := quiz.Generate(*st.Vocabulary, st.Direction, st.QuizType, st.OptionCount, deps.Rand)
	if err != nil {
		return fail(st.clearQuestion(), err)
	}
	next := st.clearQuestion()
	next.CurrentQuestion = &q
	next.Error = nil
	next.Screen = ScreenQuestion
	return next, succeeded()
}

// fail はエラーを State に記録し、エラー画面 (空の単語帳なら「出題できる単語がない」画面) に切り替えます
func fail(st State, err error) (State, Outcome) {
	st.Error = newStateError(err)
	if st.Error.Kind == ErrorKindEmptyVocabulary {
		st.Screen = ScreenNothingToQuiz
	} else {
		st.Screen = ScreenError
	}
	return st, Outcome{
		Code:    OutcomeError,
		Message: fmt.Sprintf("%s: %s", st.Error.Kind, st.Error.Message),
		Err:     err,
	}
}

// RecordError は err を st に記録したエラー表示用の State を返します
func RecordError(st State, err error) State {
	next, _ := fail(st, err)
	return next
}
