package session

import (
	"context"
	"errors"
	"math/rand/v2"
	"testing"

	"go_4_vocab_quiz/internal/model"

	"github.com/stretchr/testify/suite"
)

// fakeSource はメモリ上の単語帳を返す VocabSource です
type fakeSource struct {
	lists       map[string]model.VocabularyMapping
	order       []string
	resolveErr  error
	containsErr error
	resolved    []string
}

func (f *fakeSource) Resolve(_ context.Context, selection string) (model.VocabularyMapping, error) {
	f.resolved = append(f.resolved, selection)
	if f.resolveErr != nil {
		return model.VocabularyMapping{}, f.resolveErr
	}
	if selection == "" || selection == model.AllListsID {
		var merged model.VocabularyMapping
		for _, id := range f.order {
			merged = merged.Merge(f.lists[id])
		}
		return merged, nil
	}
	m, ok := f.lists[selection]
	if !ok {
		return model.VocabularyMapping{}, model.NewVocabularyError(model.ErrNotFound, selection, nil)
	}
	return m, nil
}

func (f *fakeSource) Contains(_ context.Context, id string) (bool, error) {
	if f.containsErr != nil {
		return false, f.containsErr
	}
	if id == model.AllListsID {
		return true, nil
	}
	_, ok := f.lists[id]
	return ok, nil
}

type MachineSuite struct {
	suite.Suite
	ctx    context.Context
	source *fakeSource
	deps   Deps
}

func TestMachineSuite(t *testing.T) {
	suite.Run(t, new(MachineSuite))
}

func (s *MachineSuite) SetupTest() {
	s.ctx = context.Background()
	s.source = &fakeSource{
		lists: map[string]model.VocabularyMapping{
			"voca1": model.NewVocabularyMapping([]model.VocabularyEntry{
				{French: "chat", German: "Katze"},
				{French: "chien", German: "Hund"},
				{French: "maison", German: "Haus"},
			}),
			"voca2": model.NewVocabularyMapping([]model.VocabularyEntry{
				{French: "pomme", German: "Apfel"},
			}),
			"voca_empty": model.NewVocabularyMapping(nil),
		},
		order: []string{"voca1", "voca2", "voca_empty"},
	}
	s.deps = Deps{Source: s.source, Rand: rand.New(rand.NewPCG(1, 1))}
}

// apply は ev を順に適用し、最後の結果を返します。途中で OK 以外になったらテストを失敗させます
func (s *MachineSuite) apply(st State, events ...Event) (State, Outcome) {
	var out Outcome
	for i, ev := range events {
		st, out = Apply(s.ctx, st, ev, s.deps)
		if i < len(events)-1 {
			s.Require().Equal(OutcomeOK, out.Code, "event %d (%s): %s", i, ev.Kind, out.Message)
		}
	}
	return st, out
}

// quizState は voca1 を選んでクイズを開始した状態を返します
func (s *MachineSuite) quizState() State {
	st, out := s.apply(NewState(3), SelectFile("voca1"), SelectMode(model.ModeQuiz), StartQuiz())
	s.Require().Equal(OutcomeOK, out.Code)
	return st
}

func (s *MachineSuite) TestNewState_Defaults() {
	st := NewState(0)
	s.Equal(model.DirectionFrToDe, st.Direction)
	s.Equal(model.ModeUnset, st.Mode)
	s.Equal(model.QuizTypeMultipleChoice, st.QuizType)
	s.Equal(3, st.OptionCount)
	s.Equal(ScreenFileSelection, st.Screen)
	s.Nil(st.CurrentQuestion)
	s.Nil(st.Error)
}

func (s *MachineSuite) TestSelectFile() {
	st, out := s.apply(NewState(3), SelectFile("voca1"))
	s.Equal(OutcomeOK, out.Code)
	s.Equal("voca1", st.SelectedFileID)
	s.Equal(ScreenModeSelection, st.Screen)
	s.Require().NotNil(st.Vocabulary)
	s.Equal(3, st.Vocabulary.Len())
}

func (s *MachineSuite) TestSelectFile_All() {
	st, out := s.apply(NewState(3), SelectFile(model.AllListsID))
	s.Equal(OutcomeOK, out.Code)
	s.Require().NotNil(st.Vocabulary)
	s.Equal(4, st.Vocabulary.Len())
}

func (s *MachineSuite) TestSelectFile_Unknown() {
	before := NewState(3)
	st, out := s.apply(before, SelectFile("voca9"))
	s.Equal(OutcomePreconditionFailed, out.Code)
	s.ErrorIs(out.Err, model.ErrPreconditionFailed)
	s.Equal(before, st)
}

func (s *MachineSuite) TestSelectFile_ResetsQuestionAndScore() {
	st := s.quizState()
	st, _ = s.apply(st, SubmitAnswer(st.CurrentQuestion.CorrectAnswer))
	s.Equal(1, st.Score.Correct)

	st, out := s.apply(st, SelectFile("voca2"))
	s.Equal(OutcomeOK, out.Code)
	s.Nil(st.CurrentQuestion)
	s.Nil(st.Feedback)
	s.Equal(Score{}, st.Score)
	s.Equal(model.ModeUnset, st.Mode)
}

func (s *MachineSuite) TestSelectFile_CatalogUnavailable() {
	s.source.containsErr = model.NewVocabularyError(model.ErrCatalogUnavailable, "", errors.New("disk gone"))

	st, out := s.apply(NewState(3), SelectFile("voca1"))
	s.Equal(OutcomeError, out.Code)
	s.ErrorIs(out.Err, model.ErrCatalogUnavailable)
	s.Require().NotNil(st.Error)
	s.Equal(ErrorKindCatalogUnavailable, st.Error.Kind)
	s.Equal(ScreenError, st.Screen)
}

func (s *MachineSuite) TestSelectFile_Malformed() {
	s.source.resolveErr = model.NewVocabularyError(model.ErrMalformedData, "voca1", errors.New("record \"chat\": missing \"german\""))

	st, out := s.apply(NewState(3), SelectFile("voca1"))
	s.Equal(OutcomeError, out.Code)
	s.Require().NotNil(st.Error)
	s.Equal(ErrorKindMalformedData, st.Error.Kind)
	s.Equal("voca1", st.Error.ListID)
	s.Nil(st.Vocabulary)
}

func (s *MachineSuite) TestSelectMode_Learning() {
	st, out := s.apply(NewState(3), SelectFile("voca1"), SelectMode(model.ModeLearning))
	s.Equal(OutcomeOK, out.Code)
	s.Equal(model.ModeLearning, st.Mode)
	s.Equal(ScreenLearning, st.Screen)
}

func (s *MachineSuite) TestSelectMode_WithoutFileLoadsAll() {
	st, out := s.apply(NewState(3), SelectMode(model.ModeLearning))
	s.Equal(OutcomeOK, out.Code)
	s.Equal([]string{""}, s.source.resolved)
	s.Require().NotNil(st.Vocabulary)
	s.Equal(4, st.Vocabulary.Len())
}

func (s *MachineSuite) TestSelectMode_ClearsQuestion() {
	st := s.quizState()
	st, out := s.apply(st, SelectMode(model.ModeLearning))
	s.Equal(OutcomeOK, out.Code)
	s.Nil(st.CurrentQuestion)
	s.Nil(st.Feedback)
	s.False(st.Answered)
}

func (s *MachineSuite) TestSelectMode_Invalid() {
	before := NewState(3)
	st, out := s.apply(before, Event{Kind: EventSelectMode, Value: "sleep"})
	s.Equal(OutcomePreconditionFailed, out.Code)
	s.Equal(before, st)
}

func (s *MachineSuite) TestStartQuiz() {
	st := s.quizState()
	s.Require().NotNil(st.CurrentQuestion)
	s.Equal(ScreenQuestion, st.Screen)
	s.False(st.Answered)
	s.Len(st.CurrentQuestion.Options, 3)
	s.Contains(st.CurrentQuestion.Options, st.CurrentQuestion.CorrectAnswer)
}

func (s *MachineSuite) TestStartQuiz_RequiresQuizMode() {
	for _, before := range []State{
		NewState(3),
		func() State { st, _ := s.apply(NewState(3), SelectFile("voca1"), SelectMode(model.ModeLearning)); return st }(),
	} {
		st, out := s.apply(before, StartQuiz())
		s.Equal(OutcomePreconditionFailed, out.Code)
		s.Equal(before, st)
	}
}

func (s *MachineSuite) TestStartQuiz_EmptyVocabulary() {
	st, out := s.apply(NewState(3), SelectFile("voca_empty"), SelectMode(model.ModeQuiz), StartQuiz())
	s.Equal(OutcomeError, out.Code)
	s.ErrorIs(out.Err, model.ErrEmptyVocabulary)
	s.Equal(ScreenNothingToQuiz, st.Screen)
	s.Require().NotNil(st.Error)
	s.Equal(ErrorKindEmptyVocabulary, st.Error.Kind)
	s.Nil(st.CurrentQuestion)
}

func (s *MachineSuite) TestStartQuiz_OptionCount() {
	st, out := s.apply(NewState(2), SelectFile("voca1"), SelectMode(model.ModeQuiz), StartQuiz())
	s.Equal(OutcomeOK, out.Code)
	s.Len(st.CurrentQuestion.Options, 2)
}

func (s *MachineSuite) TestSubmitAnswer_Correct() {
	st := s.quizState()
	answer := st.CurrentQuestion.CorrectAnswer

	st, out := s.apply(st, SubmitAnswer("  "+answer+" "))
	s.Equal(OutcomeOK, out.Code)
	s.True(st.Answered)
	s.Equal(ScreenFeedback, st.Screen)
	s.Require().NotNil(st.Feedback)
	s.True(st.Feedback.Correct)
	s.Equal(answer, st.Feedback.CorrectAnswer)
	s.Require().NotNil(st.LastSubmission)
	s.Equal("  "+answer+" ", *st.LastSubmission)
	s.Equal(Score{Answered: 1, Correct: 1}, st.Score)
}

func (s *MachineSuite) TestSubmitAnswer_Incorrect() {
	st := s.quizState()

	st, out := s.apply(st, SubmitAnswer("Baum"))
	s.Equal(OutcomeOK, out.Code)
	s.Require().NotNil(st.Feedback)
	s.False(st.Feedback.Correct)
	s.Equal(Score{Answered: 1, Correct: 0}, st.Score)
}

func (s *MachineSuite) TestSubmitAnswer_Empty() {
	for _, text := range []string{"", "   ", "\t\n"} {
		before := s.quizState()
		st, out := s.apply(before, SubmitAnswer(text))
		s.Equal(OutcomeNoAnswerProvided, out.Code, "text=%q", text)
		s.ErrorIs(out.Err, model.ErrNoAnswerProvided)
		s.False(st.Answered)
		s.Equal(before, st)
	}
}

func (s *MachineSuite) TestSubmitAnswer_Preconditions() {
	// 問題がない
	before := NewState(3)
	st, out := s.apply(before, SubmitAnswer("Katze"))
	s.Equal(OutcomePreconditionFailed, out.Code)
	s.Equal(before, st)

	// 解答済み
	answered, _ := s.apply(s.quizState(), SubmitAnswer("Katze"))
	st, out = s.apply(answered, SubmitAnswer("Hund"))
	s.Equal(OutcomePreconditionFailed, out.Code)
	s.Equal(answered, st)
}

func (s *MachineSuite) TestNextQuestion() {
	st := s.quizState()
	st, _ = s.apply(st, SubmitAnswer("Katze"))

	st, out := s.apply(st, NextQuestion())
	s.Equal(OutcomeOK, out.Code)
	s.NotNil(st.CurrentQuestion)
	s.False(st.Answered)
	s.Nil(st.Feedback)
	s.Nil(st.LastSubmission)
	s.Equal(1, st.Score.Answered)
	s.Equal(ScreenQuestion, st.Screen)
}

func (s *MachineSuite) TestSelectDirection_RegeneratesLiveQuestion() {
	st := s.quizState()
	s.Require().Equal(model.DirectionFrToDe, st.CurrentQuestion.Direction)

	st, out := s.apply(st, SelectDirection(model.DirectionDeToFr))
	s.Equal(OutcomeOK, out.Code)
	s.Equal(model.DirectionDeToFr, st.Direction)
	s.Require().NotNil(st.CurrentQuestion)
	s.Equal(model.DirectionDeToFr, st.CurrentQuestion.Direction)
	entry, found := st.Vocabulary.Lookup(st.CurrentQuestion.CorrectAnswer)
	s.Require().True(found, "answer should be a French word")
	s.Equal(entry.German, st.CurrentQuestion.Prompt)
}

func (s *MachineSuite) TestSelectDirection_RegeneratesAfterAnswer() {
	st, _ := s.apply(s.quizState(), SubmitAnswer("Katze"))
	s.Require().Equal(ScreenFeedback, st.Screen)
	s.Require().True(st.Answered)

	st, out := s.apply(st, SelectDirection(model.DirectionDeToFr))
	s.Equal(OutcomeOK, out.Code)
	s.Require().NotNil(st.CurrentQuestion)
	s.Equal(model.DirectionDeToFr, st.CurrentQuestion.Direction)
	s.False(st.Answered)
	s.Nil(st.Feedback)
	s.Nil(st.LastSubmission)
	s.Equal(ScreenQuestion, st.Screen)
	// スコアは残る
	s.Equal(1, st.Score.Answered)
}

func (s *MachineSuite) TestSelectDirection_WithoutQuestion() {
	st, out := s.apply(NewState(3), SelectDirection(model.DirectionDeToFr))
	s.Equal(OutcomeOK, out.Code)
	s.Equal(model.DirectionDeToFr, st.Direction)
	s.Nil(st.CurrentQuestion)
	s.Equal(ScreenFileSelection, st.Screen)
}

func (s *MachineSuite) TestSelectQuizType() {
	st := s.quizState()
	st, out := s.apply(st, SelectQuizType(model.QuizTypeTypeAnswer))
	s.Equal(OutcomeOK, out.Code)
	s.Equal(model.QuizTypeTypeAnswer, st.QuizType)
	s.Nil(st.CurrentQuestion)
	s.Equal(ScreenQuizOptions, st.Screen)

	st, out = s.apply(st, StartQuiz())
	s.Equal(OutcomeOK, out.Code)
	s.Empty(st.CurrentQuestion.Options)
}

func (s *MachineSuite) TestSelectQuizType_RequiresQuizMode() {
	before := NewState(3)
	st, out := s.apply(before, SelectQuizType(model.QuizTypeTypeAnswer))
	s.Equal(OutcomePreconditionFailed, out.Code)
	s.Equal(before, st)
}

func (s *MachineSuite) TestBack_Chain() {
	st, _ := s.apply(s.quizState(), SubmitAnswer("Katze"))
	s.Require().Equal(ScreenFeedback, st.Screen)

	want := []Screen{ScreenQuizOptions, ScreenModeSelection, ScreenFileSelection}
	for _, screen := range want {
		var out Outcome
		st, out = s.apply(st, Back())
		s.Equal(OutcomeOK, out.Code)
		s.Equal(screen, st.Screen)
	}
	s.Nil(st.CurrentQuestion)
	s.Equal(model.ModeUnset, st.Mode)
	s.Empty(st.SelectedFileID)
	s.Nil(st.Vocabulary)

	before := st
	st, out := s.apply(st, Back())
	s.Equal(OutcomePreconditionFailed, out.Code)
	s.Equal(before, st)
}

func (s *MachineSuite) TestBack_FromError() {
	st, _ := s.apply(NewState(3), SelectFile("voca_empty"), SelectMode(model.ModeQuiz), StartQuiz())
	s.Require().Equal(ScreenNothingToQuiz, st.Screen)

	st, out := s.apply(st, Back())
	s.Equal(OutcomeOK, out.Code)
	s.Equal(ScreenFileSelection, st.Screen)
	s.Nil(st.Error)
}

func (s *MachineSuite) TestApply_DoesNotMutateInput() {
	before := s.quizState()
	q := *before.CurrentQuestion

	_, _ = s.apply(before, SubmitAnswer("Katze"))
	s.False(before.Answered)
	s.Nil(before.Feedback)
	s.Equal(q, *before.CurrentQuestion)
}

func (s *MachineSuite) TestApply_UnknownEvent() {
	before := NewState(3)
	st, out := s.apply(before, Event{Kind: "dance"})
	s.Equal(OutcomePreconditionFailed, out.Code)
	s.Equal(before, st)
}
