package question

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("question not found")

// Store is the question-bank persistence contract. SQL (sqlite/postgres) and
// Mongo implementations are provided; the serving layer does not care which.
type Store interface {
	Put(ctx context.Context, q Question) (Question, error)
	PutBatch(ctx context.Context, qs []Question) ([]Question, error)
	Get(ctx context.Context, id string) (Question, error)
	Update(ctx context.Context, q Question) (Question, error)
	Delete(ctx context.Context, ids []string) error

	// List returns questions matching the filter ordered by year descending,
	// then paper question number ascending. That order is what quiz sessions
	// treat as fixed.
	List(ctx context.Context, f Filter) ([]Question, error)

	// Topics returns the distinct subject/topic pairs present in the bank.
	Topics(ctx context.Context) ([]SubjectTopics, error)

	// Exams returns the exam/year combinations that have questions, with
	// per-exam counts, years descending. Entries without an exam or year
	// are skipped.
	Exams(ctx context.Context) ([]YearExams, error)
}
