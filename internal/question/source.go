package question

import (
	"context"
	"strconv"

	"github.com/prepgrid/prepgrid/internal/quiz"
)

// Source adapts a bank Store to the quiz engine's QuestionSource contract.
// Auth is enforced upstream by the HTTP middleware; the token only gates
// whether a call is made at all, which the engine checks itself.
type Source struct {
	store Store
}

func NewSource(store Store) *Source {
	return &Source{store: store}
}

func (s *Source) FetchQuestions(ctx context.Context, token string, f quiz.Filter) ([]quiz.Question, error) {
	if token == "" {
		return nil, quiz.NewError(quiz.KindAuth, "not authenticated; please log in")
	}
	year := 0
	if f.Year != "" {
		y, err := strconv.Atoi(f.Year)
		if err != nil {
			return nil, quiz.NewError(quiz.KindData, "invalid year filter")
		}
		year = y
	}
	qs, err := s.store.List(ctx, Filter{Exam: f.Exam, Year: year, Subject: f.Subject, Topic: f.Topic})
	if err != nil {
		return nil, quiz.NewError(quiz.KindNetwork, "could not load questions: "+err.Error())
	}
	out := make([]quiz.Question, len(qs))
	for i, q := range qs {
		out[i] = toSessionQuestion(q)
	}
	return out, nil
}

func toSessionQuestion(q Question) quiz.Question {
	return quiz.Question{
		ID:   q.ID,
		Text: q.QuestionText,
		Options: []quiz.Option{
			{Label: "A", Text: q.OptionA},
			{Label: "B", Text: q.OptionB},
			{Label: "C", Text: q.OptionC},
			{Label: "D", Text: q.OptionD},
		},
		CorrectOption: q.CorrectOption,
		Explanation:   q.ExplanationText,
		Exam:          q.Exam,
		Subject:       q.Subject,
		Topic:         q.Topic,
		Year:          q.Year,
	}
}
