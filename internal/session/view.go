package session

import (
	"fmt"
	"slices"

	"go_4_vocab_quiz/internal/model"
)

// FileOption はファイル選択画面のボタン1つ分
type FileOption struct {
	ID       string `json:"id"`
	Selected bool   `json:"selected"`
}

// LearningTable は学習モードの単語一覧 (列見出しは向きによって入れ替わる)
type LearningTable struct {
	Headers [2]string   `json:"headers"`
	Rows    [][2]string `json:"rows"`
}

type QuestionView struct {
	Prompt   string         `json:"prompt"`
	Options  []string       `json:"options,omitempty"`
	QuizType model.QuizType `json:"quiz_type"`
	Answered bool           `json:"answered"`
}

type FeedbackView struct {
	Correct       bool   `json:"correct"`
	Message       string `json:"message"`
	CorrectAnswer string `json:"correct_answer"`
	Submitted     string `json:"submitted,omitempty"`
}

type ScoreView struct {
	Answered int    `json:"answered"`
	Correct  int    `json:"correct"`
	Text     string `json:"text"`
}

// ViewModel はレンダラーに渡す画面の内容です。HTML などの表現はレンダラー側の責務。
type ViewModel struct {
	Screen       Screen          `json:"screen"`
	Mode         model.Mode      `json:"mode,omitempty"`
	Direction    model.Direction `json:"direction"`
	QuizType     model.QuizType  `json:"quiz_type"`
	SelectedFile string          `json:"selected_file,omitempty"`
	Files        []FileOption    `json:"files"`
	Learning     *LearningTable  `json:"learning,omitempty"`
	Question     *QuestionView   `json:"question,omitempty"`
	Feedback     *FeedbackView   `json:"feedback,omitempty"`
	Score        *ScoreView      `json:"score,omitempty"`
	Error        *StateError     `json:"error,omitempty"`
	Actions      []EventKind     `json:"actions"`
}

// BuildView は st と単語帳ID一覧 (辞書順) から ViewModel を組み立てます。
// 先頭には常に "ALL" が入ります。
func BuildView(st State, files []string) ViewModel {
	vm := ViewModel{
		Screen:       st.Screen,
		Mode:         st.Mode,
		Direction:    st.Direction,
		QuizType:     st.QuizType,
		SelectedFile: st.SelectedFileID,
		Error:        st.Error,
		Actions:      actionsFor(st),
	}

	vm.Files = make([]FileOption, 0, len(files)+1)
	vm.Files = append(vm.Files, FileOption{ID: model.AllListsID, Selected: st.SelectedFileID == model.AllListsID})
	for _, id := range files {
		vm.Files = append(vm.Files, FileOption{ID: id, Selected: id == st.SelectedFileID})
	}

	if st.Screen == ScreenLearning && st.Vocabulary != nil {
		vm.Learning = buildLearningTable(*st.Vocabulary, st.Direction)
	}

	if st.CurrentQuestion != nil {
		q := st.CurrentQuestion
		vm.Question = &QuestionView{
			Prompt:   q.Prompt,
			Options:  slices.Clone(q.Options),
			QuizType: q.QuizType,
			Answered: st.Answered,
		}
	}

	if st.Feedback != nil {
		fb := &FeedbackView{
			Correct:       st.Feedback.Correct,
			CorrectAnswer: st.Feedback.CorrectAnswer,
		}
		if st.LastSubmission != nil {
			fb.Submitted = *st.LastSubmission
		}
		if fb.Correct {
			fb.Message = "Correct!"
		} else {
			fb.Message = fmt.Sprintf("Incorrect. The correct answer is: %s", fb.CorrectAnswer)
		}
		vm.Feedback = fb
	}

	if st.Mode == model.ModeQuiz {
		vm.Score = &ScoreView{
			Answered: st.Score.Answered,
			Correct:  st.Score.Correct,
			Text:     fmt.Sprintf("Score: %d/%d", st.Score.Correct, st.Score.Answered),
		}
	}
	return vm
}

func buildLearningTable(vocab model.VocabularyMapping, direction model.Direction) *LearningTable {
	source, target := model.LanguagesFor(direction)
	table := &LearningTable{
		Headers: [2]string{source.Label(), target.Label()},
		Rows:    make([][2]string, 0, vocab.Len()),
	}
	for i := 0; i < vocab.Len(); i++ {
		e := vocab.At(i)
		table.Rows = append(table.Rows, [2]string{e.Side(source), e.Side(target)})
	}
	return table
}

// actionsFor は現在の画面で受け付けるイベントを返します。
// ファイル選択と向きの切り替えはどの画面からでも可能です。
func actionsFor(st State) []EventKind {
	actions := []EventKind{EventSelectFile, EventSelectDirection}
	switch st.Screen {
	case ScreenModeSelection:
		actions = append(actions, EventSelectMode, EventBack)
	case ScreenLearning:
		actions = append(actions, EventSelectMode, EventBack)
	case ScreenQuizOptions:
		actions = append(actions, EventSelectMode, EventSelectQuizType, EventStartQuiz, EventBack)
	case ScreenQuestion:
		if !st.Answered {
			actions = append(actions, EventSubmitAnswer)
		}
		actions = append(actions, EventNextQuestion, EventBack)
	case ScreenFeedback:
		actions = append(actions, EventNextQuestion, EventBack)
	case ScreenNothingToQuiz, ScreenError:
		actions = append(actions, EventBack)
	}
	return actions
}
