package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	authmw "github.com/prepgrid/prepgrid/internal/auth/middleware"
	"github.com/prepgrid/prepgrid/internal/notify"
	"github.com/prepgrid/prepgrid/internal/quiz"
	"github.com/prepgrid/prepgrid/internal/result"
	"github.com/prepgrid/prepgrid/internal/snapshot"
)

// SessionHub owns one quiz engine per authenticated user and exposes the
// engine's operations over HTTP. The hub also manages each session's test
// timer goroutine, so timers never outlive the mode that needs them.
type SessionHub struct {
	mu       sync.Mutex
	sessions map[string]*userSession

	source  quiz.QuestionSource
	results result.Store
	snaps   quiz.SnapshotStore
}

type userSession struct {
	eng  *quiz.Engine
	feed *notify.Feed

	timerMu sync.Mutex
	cancel  context.CancelFunc // stops the running test timer, if any
}

func NewSessionHub(source quiz.QuestionSource, results result.Store, snaps quiz.SnapshotStore) *SessionHub {
	return &SessionHub{
		sessions: map[string]*userSession{},
		source:   source,
		results:  results,
		snaps:    snaps,
	}
}

// ctxCredentials resolves the caller's token from the request context, where
// the JWT middleware put it.
type ctxCredentials struct{}

func (ctxCredentials) AuthToken(ctx context.Context) string {
	return authmw.TokenFromContext(ctx)
}

func (h *SessionHub) session(userID string) *userSession {
	h.mu.Lock()
	defer h.mu.Unlock()
	if s, ok := h.sessions[userID]; ok {
		return s
	}
	feed := notify.NewFeed()
	s := &userSession{
		feed: feed,
		eng: quiz.New(quiz.Options{
			Source:      h.source,
			Results:     result.NewSink(h.results, userID),
			Credentials: ctxCredentials{},
			Snapshots:   snapshot.Scoped(h.snaps, userID),
			Notifier:    notify.Logger{Next: feed},
		}),
	}
	h.sessions[userID] = s
	return s
}

func (h *SessionHub) sessionFor(r *http.Request) *userSession {
	return h.session(authmw.SubjectFromContext(r.Context()))
}

func (s *userSession) startTimer() {
	s.timerMu.Lock()
	defer s.timerMu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	go s.eng.RunTimer(ctx)
}

func (s *userSession) stopTimer() {
	s.timerMu.Lock()
	defer s.timerMu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

// POST /quiz/load  { "exam": "...", "year": "...", "subject": "...", "topic": "..." }
func (h *SessionHub) LoadHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var f quiz.Filter
		if err := json.NewDecoder(r.Body).Decode(&f); err != nil {
			http.Error(w, "bad json", 400)
			return
		}
		s := h.sessionFor(r)
		s.stopTimer()
		if err := s.eng.LoadAndStartQuiz(r.Context(), f); err != nil {
			writeQuizError(w, err)
			return
		}
		// a restored snapshot can land the session straight back in test mode
		if s.eng.Mode() == quiz.ModeTest {
			s.startTimer()
		}
		h.writeState(w, s)
	}
}

// GET /quiz
func (h *SessionHub) StateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.writeState(w, h.sessionFor(r))
	}
}

// POST /quiz/answer  { "question_id": "...", "answer": "A" }
func (h *SessionHub) AnswerHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			QuestionID string `json:"question_id"`
			Answer     string `json:"answer"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", 400)
			return
		}
		s := h.sessionFor(r)
		s.eng.HandleAnswerSelect(req.QuestionID, req.Answer)
		h.writeState(w, s)
	}
}

// POST /quiz/bookmark  { "question_id": "..." }
func (h *SessionHub) BookmarkHandler() http.HandlerFunc {
	return h.toggleHandler(func(e *quiz.Engine, id string) { e.ToggleBookmark(id) })
}

// POST /quiz/review  { "question_id": "..." }
func (h *SessionHub) ReviewHandler() http.HandlerFunc {
	return h.toggleHandler(func(e *quiz.Engine, id string) { e.ToggleMarkForReview(id) })
}

func (h *SessionHub) toggleHandler(apply func(*quiz.Engine, string)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			QuestionID string `json:"question_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", 400)
			return
		}
		s := h.sessionFor(r)
		apply(s.eng, req.QuestionID)
		h.writeState(w, s)
	}
}

// POST /quiz/start-test
func (h *SessionHub) StartTestHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s := h.sessionFor(r)
		s.eng.StartTest()
		if s.eng.Mode() == quiz.ModeTest {
			s.startTimer()
		}
		h.writeState(w, s)
	}
}

// POST /quiz/submit
func (h *SessionHub) SubmitHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s := h.sessionFor(r)
		s.eng.SubmitTest()
		s.stopTimer()
		h.writeState(w, s)
	}
}

// POST /quiz/solution: move from the report to the detailed-solution view.
func (h *SessionHub) DetailedSolutionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s := h.sessionFor(r)
		s.eng.HandleDetailedSolution()
		h.writeState(w, s)
	}
}

// GET /quiz/report
func (h *SessionHub) ReportHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s := h.sessionFor(r)
		mode := s.eng.Mode()
		if mode != quiz.ModeReport && mode != quiz.ModeDetailedSolution {
			http.Error(w, "no report available", 409)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"results": s.eng.CalculateResults(),
			"stats":   s.eng.PerformanceStats(),
		})
	}
}

// POST /quiz/save
func (h *SessionHub) SaveResultHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s := h.sessionFor(r)
		if err := s.eng.SaveTestResult(r.Context()); err != nil {
			http.Error(w, "could not save result", http.StatusBadGateway)
			return
		}
		s.stopTimer()
		h.writeState(w, s)
	}
}

// POST /quiz/reset
func (h *SessionHub) ResetHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s := h.sessionFor(r)
		s.eng.ResetTest()
		s.stopTimer()
		h.writeState(w, s)
	}
}

// GET /quiz/notifications: drain buffered engine notifications.
func (h *SessionHub) NotificationsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items := h.sessionFor(r).feed.Drain()
		if items == nil {
			items = []notify.Notification{}
		}
		_ = json.NewEncoder(w).Encode(items)
	}
}

type quizStateView struct {
	Mode            quiz.Mode         `json:"mode"`
	Title           string            `json:"title"`
	GroupKey        quiz.GroupKey     `json:"group_key"`
	GroupingEnabled bool              `json:"grouping_enabled"`
	TimeLeft        int               `json:"time_left"`
	TotalTime       int               `json:"total_time"`
	Questions       []quiz.Question   `json:"questions"`
	Answers         []quiz.UserAnswer `json:"answers"`
	Bookmarked      []string          `json:"bookmarked"`
	MarkedForReview []string          `json:"marked_for_review"`
	Attempted       int               `json:"attempted"`
	NotAttempted    int               `json:"not_attempted"`
}

func (h *SessionHub) writeState(w http.ResponseWriter, s *userSession) {
	eng := s.eng
	mode := eng.Mode()
	questions := eng.Questions()
	// feedback is withheld during a timed test
	if mode == quiz.ModeTest {
		for i := range questions {
			questions[i].CorrectOption = ""
			questions[i].Explanation = ""
		}
	}
	key, enabled := eng.Grouping()
	_ = json.NewEncoder(w).Encode(quizStateView{
		Mode:            mode,
		Title:           eng.Title(),
		GroupKey:        key,
		GroupingEnabled: enabled,
		TimeLeft:        eng.TimeLeft(),
		TotalTime:       eng.TotalTime(),
		Questions:       questions,
		Answers:         eng.Answers(),
		Bookmarked:      eng.Bookmarked(),
		MarkedForReview: eng.MarkedForReview(),
		Attempted:       eng.AttemptedCount(),
		NotAttempted:    eng.NotAttemptedCount(),
	})
}

func writeQuizError(w http.ResponseWriter, err error) {
	if errors.Is(err, quiz.ErrSuperseded) {
		// a newer load replaced this one; nothing to render
		w.WriteHeader(http.StatusConflict)
		_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "error": err.Error()})
		return
	}
	status := http.StatusBadGateway
	switch quiz.KindOf(err) {
	case quiz.KindAuth:
		status = http.StatusUnauthorized
	case quiz.KindData:
		status = http.StatusNotFound
	}
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": false,
		"error":   err.Error(),
		"type":    string(quiz.KindOf(err)),
	})
}
