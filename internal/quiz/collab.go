package quiz

import "context"

// QuestionSource fetches the question set for a filter. The returned order is
// the session's fixed order. Implementations report auth rejections as
// *Error with KindAuth and empty/invalid payloads as KindData.
type QuestionSource interface {
	FetchQuestions(ctx context.Context, token string, f Filter) ([]Question, error)
}

// Result is the payload handed to the ResultStore on save.
type Result struct {
	Title       string       `json:"title"`
	QuestionIDs []string     `json:"question_ids"`
	UserAnswers []UserAnswer `json:"user_answers"`
	Score       Results      `json:"score"`
}

type ResultStore interface {
	SaveResult(ctx context.Context, token string, r Result) error
}

// CredentialProvider yields the caller's auth token; empty string means not
// authenticated.
type CredentialProvider interface {
	AuthToken(ctx context.Context) string
}

// SnapshotStore is a key-value store scoped to one user's active session.
type SnapshotStore interface {
	Get(key string) (*Snapshot, error)
	Set(key string, snap Snapshot) error
	Remove(key string) error
}

type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
)

// NotificationSink receives fire-and-forget user-facing messages.
type NotificationSink interface {
	Show(message string, severity Severity)
}

type nopSink struct{}

func (nopSink) Show(string, Severity) {}
