package quiz

import "errors"

// ErrorKind routes load failures to different recovery paths: auth errors
// offer re-login, everything else offers retry or back-to-dashboard.
type ErrorKind string

const (
	KindAuth    ErrorKind = "auth"
	KindData    ErrorKind = "data"
	KindNetwork ErrorKind = "network"
)

type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string { return e.Message }

func NewError(kind ErrorKind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// KindOf classifies an error for the caller. Unclassified errors are treated
// as transport failures.
func KindOf(err error) ErrorKind {
	var qe *Error
	if errors.As(err, &qe) {
		return qe.Kind
	}
	return KindNetwork
}

// ErrSuperseded is returned when a load completes after a newer load has
// already replaced the session; its result is discarded.
var ErrSuperseded = errors.New("quiz: load superseded by a newer session")
