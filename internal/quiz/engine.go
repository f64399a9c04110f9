package quiz

import (
	"context"
	"math"
	"sync"
	"time"
)

// SnapshotKey is the single well-known key under which the active session
// snapshot lives. Stores handed to an engine are already scoped to one user.
const SnapshotKey = "quiz:session"

// idealSecondsPerQuestion matches the 1.2 min/question time allocation.
const idealSecondsPerQuestion = 72

// Options wires an Engine to its collaborators. Source and Credentials are
// required; the rest may be nil and default to no-ops.
type Options struct {
	Source      QuestionSource
	Results     ResultStore
	Credentials CredentialProvider
	Snapshots   SnapshotStore
	Notifier    NotificationSink
}

// Engine owns all state of one quiz session: question order, answers,
// bookmarks, mode transitions, the test timer and persistence snapshotting.
// Every public method runs to completion under the engine lock, so callers
// may drive it from HTTP handlers and the timer goroutine concurrently.
type Engine struct {
	mu sync.Mutex

	source QuestionSource
	store  ResultStore
	creds  CredentialProvider
	snaps  SnapshotStore
	notify NotificationSink

	// epoch increments on every load; a completion holding a stale epoch
	// discards its result instead of clobbering the newer session.
	epoch int

	mode            Mode
	filter          Filter
	title           string
	groupKey        GroupKey
	groupingEnabled bool

	questions []Question
	byID      map[string]int
	answers   map[string]UserAnswer
	bookmark  map[string]bool
	review    map[string]bool

	totalTime int
	timeLeft  int

	halfNotified   bool
	tenMinNotified bool
	oneMinNotified bool

	stats *PerformanceStats
}

func New(opts Options) *Engine {
	e := &Engine{
		source: opts.Source,
		store:  opts.Results,
		creds:  opts.Credentials,
		snaps:  opts.Snapshots,
		notify: opts.Notifier,
		mode:   ModeIdle,
	}
	if e.notify == nil {
		e.notify = nopSink{}
	}
	if e.snaps == nil {
		e.snaps = nopSnapshots{}
	}
	e.clearSessionLocked()
	return e
}

// LoadAndStartQuiz replaces the entire session with questions matching the
// filter. It fails immediately with an auth error when no credential is
// available, before any network call. A persisted snapshot for the same
// filter restores prior answers and the timer.
func (e *Engine) LoadAndStartQuiz(ctx context.Context, f Filter) error {
	token := ""
	if e.creds != nil {
		token = e.creds.AuthToken(ctx)
	}
	if token == "" {
		return NewError(KindAuth, "not authenticated; please log in")
	}

	e.mu.Lock()
	e.epoch++
	epoch := e.epoch
	e.clearSessionLocked()
	e.filter = f
	e.title, e.groupKey, e.groupingEnabled = deriveTitle(f)
	e.mode = ModeLoading
	e.mu.Unlock()

	questions, err := e.source.FetchQuestions(ctx, token, f)

	e.mu.Lock()
	defer e.mu.Unlock()
	if epoch != e.epoch {
		return ErrSuperseded
	}
	if err != nil {
		e.mode = ModeIdle
		if _, ok := err.(*Error); ok {
			return err
		}
		return NewError(KindNetwork, "could not load questions: "+err.Error())
	}
	if len(questions) == 0 {
		e.mode = ModeIdle
		return NewError(KindData, "no questions were found for your selection")
	}

	e.questions = make([]Question, len(questions))
	e.byID = make(map[string]int, len(questions))
	for i, q := range questions {
		q.DisplayNumber = i + 1
		if q.ExamYear == "" && q.Exam != "" && q.Year != 0 {
			q.ExamYear = composeExamYear(q.Exam, q.Year)
		}
		e.questions[i] = q
		e.byID[q.ID] = i
	}
	e.totalTime = int(math.Round(float64(len(questions)) * 1.2 * 60))
	e.timeLeft = e.totalTime
	e.mode = ModePractice

	if snap, err := e.snaps.Get(SnapshotKey); err == nil && snap != nil && snap.Filter == f {
		e.restoreLocked(*snap)
		e.persistLocked()
	}
	return nil
}

// restoreLocked merges a snapshot into a freshly loaded session. Entries
// referring to questions absent from the loaded set are dropped.
func (e *Engine) restoreLocked(snap Snapshot) {
	for _, ua := range snap.UserAnswers {
		if _, ok := e.byID[ua.QuestionID]; ok {
			e.answers[ua.QuestionID] = ua
		}
	}
	for _, id := range snap.Bookmarked {
		if _, ok := e.byID[id]; ok {
			e.bookmark[id] = true
		}
	}
	for _, id := range snap.MarkedForReview {
		if _, ok := e.byID[id]; ok {
			e.review[id] = true
		}
	}
	if snap.IsTestMode {
		e.mode = ModeTest
		e.timeLeft = clamp(snap.TimeLeft, 0, e.totalTime)
	}
}

// StartTest switches a loaded practice session into timed test mode with a
// clean slate. No-op without questions or outside practice mode.
func (e *Engine) StartTest() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.mode != ModePractice || len(e.questions) == 0 {
		return
	}
	e.answers = map[string]UserAnswer{}
	e.bookmark = map[string]bool{}
	e.review = map[string]bool{}
	e.timeLeft = e.totalTime
	e.halfNotified = false
	e.tenMinNotified = false
	e.oneMinNotified = false
	e.stats = nil
	e.mode = ModeTest
	e.persistLocked()
}

// HandleAnswerSelect records an answer. In test mode the first committed
// answer is final; in practice mode the last write wins. Unknown question
// IDs are ignored.
func (e *Engine) HandleAnswerSelect(questionID, answer string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.byID[questionID]; !ok {
		return
	}
	if e.mode == ModeTest {
		if _, exists := e.answers[questionID]; exists {
			return
		}
	}
	e.answers[questionID] = UserAnswer{QuestionID: questionID, Answer: answer}
	if e.mode == ModeTest {
		e.persistLocked()
	}
}

func (e *Engine) ToggleBookmark(questionID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.bookmark[questionID] {
		delete(e.bookmark, questionID)
	} else {
		e.bookmark[questionID] = true
	}
	if e.mode == ModeTest {
		e.persistLocked()
	}
}

func (e *Engine) ToggleMarkForReview(questionID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.review[questionID] {
		delete(e.review, questionID)
	} else {
		e.review[questionID] = true
	}
	if e.mode == ModeTest {
		e.persistLocked()
	}
}

// Tick advances the test timer by one second. It reports whether the timer
// is still running; reaching zero forces exactly one submit.
func (e *Engine) Tick() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.mode != ModeTest {
		return false
	}
	if e.timeLeft > 0 {
		e.timeLeft--
	}
	if !e.halfNotified && e.timeLeft <= e.totalTime/2 {
		e.halfNotified = true
		e.notify.Show("Half time passed", SeverityInfo)
	}
	if !e.tenMinNotified && e.timeLeft <= 600 {
		e.tenMinNotified = true
		e.notify.Show("10 minutes remaining", SeverityWarning)
	}
	if !e.oneMinNotified && e.timeLeft <= 60 {
		e.oneMinNotified = true
		e.notify.Show("1 minute remaining", SeverityWarning)
	}
	if e.timeLeft == 0 {
		e.submitLocked()
		return false
	}
	e.persistLocked()
	return true
}

// RunTimer drives Tick once per second until the session leaves test mode or
// the context is cancelled. Run it in its own goroutine.
func (e *Engine) RunTimer(ctx context.Context) {
	t := time.NewTicker(time.Second)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if !e.Tick() {
				return
			}
		}
	}
}

// SubmitTest ends the timed attempt and enters the report view. The
// persisted snapshot is discarded.
func (e *Engine) SubmitTest() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.mode != ModeTest {
		return
	}
	e.submitLocked()
}

func (e *Engine) submitLocked() {
	e.mode = ModeReport
	e.computeStatsLocked()
	_ = e.snaps.Remove(SnapshotKey)
}

// HandleDetailedSolution moves from the report summary to the per-question
// review view.
func (e *Engine) HandleDetailedSolution() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.mode != ModeReport {
		return
	}
	e.mode = ModeDetailedSolution
	e.computeStatsLocked()
	_ = e.snaps.Remove(SnapshotKey)
}

// SaveTestResult hands the finished attempt to the result store and resets
// the session. A missing credential or a store failure surfaces as a warning
// notification, never as a fatal condition; on store failure the session is
// left intact so the user may retry.
func (e *Engine) SaveTestResult(ctx context.Context) error {
	token := ""
	if e.creds != nil {
		token = e.creds.AuthToken(ctx)
	}
	if token == "" {
		e.notify.Show("You must be signed in to save your result.", SeverityWarning)
		return nil
	}

	e.mu.Lock()
	if e.mode != ModeReport && e.mode != ModeDetailedSolution {
		e.mu.Unlock()
		return nil
	}
	payload := Result{
		Title:       e.title,
		QuestionIDs: make([]string, len(e.questions)),
		UserAnswers: e.answersLocked(),
		Score:       scoreOf(e.questions, e.answers),
	}
	for i, q := range e.questions {
		payload.QuestionIDs[i] = q.ID
	}
	e.mu.Unlock()

	if e.store == nil {
		e.notify.Show("Saving results is not available right now.", SeverityWarning)
		return nil
	}
	if err := e.store.SaveResult(ctx, token, payload); err != nil {
		e.notify.Show("Could not save your result. Please try again.", SeverityWarning)
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	_ = e.snaps.Remove(SnapshotKey)
	e.clearSessionLocked()
	return nil
}

// ResetTest discards the session and any persisted snapshot without saving.
func (e *Engine) ResetTest() {
	e.mu.Lock()
	defer e.mu.Unlock()
	_ = e.snaps.Remove(SnapshotKey)
	e.clearSessionLocked()
}

// CalculateResults scores the current session. Pure with respect to the
// session's (questions, answers); same inputs always yield the same result.
func (e *Engine) CalculateResults() Results {
	e.mu.Lock()
	defer e.mu.Unlock()
	return scoreOf(e.questions, e.answers)
}

func (e *Engine) clearSessionLocked() {
	e.mode = ModeIdle
	e.filter = Filter{}
	e.title = ""
	e.groupKey = GroupNone
	e.groupingEnabled = false
	e.questions = nil
	e.byID = map[string]int{}
	e.answers = map[string]UserAnswer{}
	e.bookmark = map[string]bool{}
	e.review = map[string]bool{}
	e.totalTime = 0
	e.timeLeft = 0
	e.halfNotified = false
	e.tenMinNotified = false
	e.oneMinNotified = false
	e.stats = nil
}

func (e *Engine) persistLocked() {
	snap := Snapshot{
		Filter:          e.filter,
		IsTestMode:      e.mode == ModeTest,
		UserAnswers:     e.answersLocked(),
		TimeLeft:        e.timeLeft,
		Bookmarked:      sortedKeys(e.bookmark),
		MarkedForReview: sortedKeys(e.review),
	}
	// Snapshot writes are best-effort; a failed write only costs resumability.
	_ = e.snaps.Set(SnapshotKey, snap)
}

// answersLocked returns answers in question display order.
func (e *Engine) answersLocked() []UserAnswer {
	out := make([]UserAnswer, 0, len(e.answers))
	for _, q := range e.questions {
		if ua, ok := e.answers[q.ID]; ok {
			out = append(out, ua)
		}
	}
	return out
}

type nopSnapshots struct{}

func (nopSnapshots) Get(string) (*Snapshot, error) { return nil, nil }

func (nopSnapshots) Set(string, Snapshot) error { return nil }

func (nopSnapshots) Remove(string) error { return nil }

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
