// internal/quiz/generator.go
package quiz

import (
	"fmt"

	"go_4_vocab_quiz/internal/model"
)

// DefaultOptionCount は選択肢の数が指定されなかった場合の既定値
const DefaultOptionCount = 3

// Rand は出題に使う乱数源。*math/rand/v2.Rand がそのまま満たします。
type Rand interface {
	IntN(n int) int
	Shuffle(n int, swap func(i, j int))
}

// Generate は vocab から1問を作成します。
//
// 出題する単語を一様に1つ選び、direction に従って問題文と正解を決めます。
// 選択式の場合は、残りの単語の訳語から重複しないものを非復元抽出で集め、
// 正解を含めて optionCount 個 (足りなければ集まった数) の選択肢をシャッフルして返します。
func Generate(vocab model.VocabularyMapping, direction model.Direction, quizType model.QuizType, optionCount int, rng Rand) (model.Question, error) {
	if vocab.Len() == 0 {
		return model.Question{}, model.ErrEmptyVocabulary
	}
	if !direction.Valid() {
		return model.Question{}, fmt.Errorf("quiz.Generate: unknown direction %q: %w", direction, model.ErrInvalidInput)
	}
	if !quizType.Valid() {
		return model.Question{}, fmt.Errorf("quiz.Generate: unknown quiz type %q: %w", quizType, model.ErrInvalidInput)
	}
	if optionCount <= 0 {
		optionCount = DefaultOptionCount
	}

	source, target := model.LanguagesFor(direction)
	picked := rng.IntN(vocab.Len())
	entry := vocab.At(picked)

	q := model.Question{
		Prompt:        entry.Side(source),
		CorrectAnswer: entry.Side(target),
		Direction:     direction,
		QuizType:      quizType,
	}
	if quizType == model.QuizTypeTypeAnswer {
		return q, nil
	}

	pool := make([]string, 0, vocab.Len()-1)
	for i := 0; i < vocab.Len(); i++ {
		if i != picked {
			pool = append(pool, vocab.At(i).Side(target))
		}
	}

	options := make([]string, 0, optionCount)
	options = append(options, q.CorrectAnswer)
	seen := map[string]struct{}{q.CorrectAnswer: {}}
	for len(options) < optionCount && len(pool) > 0 {
		j := rng.IntN(len(pool))
		candidate := pool[j]
		// 引いた要素は末尾と入れ替えて取り除く
		pool[j] = pool[len(pool)-1]
		pool = pool[:len(pool)-1]

		if _, dup := seen[candidate]; dup {
			continue
		}
		seen[candidate] = struct{}{}
		options = append(options, candidate)
	}

	rng.Shuffle(len(options), func(i, j int) {
		options[i], options[j] = options[j], options[i]
	})
	q.Options = options
	return q, nil
}
