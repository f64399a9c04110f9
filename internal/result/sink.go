package result

import (
	"context"

	"github.com/prepgrid/prepgrid/internal/quiz"
)

// Sink adapts the SQL store to the quiz engine's ResultStore contract for a
// single user's session.
type Sink struct {
	store  Store
	userID string
}

func NewSink(store Store, userID string) *Sink {
	return &Sink{store: store, userID: userID}
}

func (s *Sink) SaveResult(ctx context.Context, token string, r quiz.Result) error {
	if token == "" {
		return quiz.NewError(quiz.KindAuth, "not authenticated")
	}
	answers := make([]AnswerRecord, len(r.UserAnswers))
	for i, ua := range r.UserAnswers {
		answers[i] = AnswerRecord{QuestionID: ua.QuestionID, Answer: ua.Answer}
	}
	_, err := s.store.Save(ctx, TestResult{
		UserID:      s.userID,
		QuizTitle:   r.Title,
		QuestionIDs: r.QuestionIDs,
		UserAnswers: answers,
		Score: ScoreCard{
			CorrectCount:     r.Score.CorrectCount,
			IncorrectCount:   r.Score.IncorrectCount,
			UnattemptedCount: r.Score.UnattemptedCount,
			FinalScore:       r.Score.FinalScore,
			MaxScore:         r.Score.MaxScore,
		},
	})
	return err
}
