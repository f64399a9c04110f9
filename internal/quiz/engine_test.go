package quiz_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/prepgrid/prepgrid/internal/quiz"
)

// ---- In-memory fakes for the engine's collaborators ----

type fakeSource struct {
	mu        sync.Mutex
	questions []quiz.Question
	err       error
	calls     int
}

func (s *fakeSource) FetchQuestions(ctx context.Context, token string, f quiz.Filter) ([]quiz.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	out := make([]quiz.Question, len(s.questions))
	copy(out, s.questions)
	return out, nil
}

type fakeCreds struct {
	mu    sync.Mutex
	token string
}

func (c *fakeCreds) AuthToken(context.Context) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

func (c *fakeCreds) set(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

type fakeResults struct {
	saved []quiz.Result
	err   error
}

func (r *fakeResults) SaveResult(ctx context.Context, token string, res quiz.Result) error {
	if r.err != nil {
		return r.err
	}
	r.saved = append(r.saved, res)
	return nil
}

type memSnaps struct {
	mu    sync.Mutex
	snaps map[string]quiz.Snapshot
}

func newMemSnaps() *memSnaps { return &memSnaps{snaps: map[string]quiz.Snapshot{}} }

func (m *memSnaps) Get(key string) (*quiz.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	snap, ok := m.snaps[key]
	if !ok {
		return nil, nil
	}
	return &snap, nil
}

func (m *memSnaps) Set(key string, snap quiz.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snaps[key] = snap
	return nil
}

func (m *memSnaps) Remove(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.snaps, key)
	return nil
}

func (m *memSnaps) has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.snaps[key]
	return ok
}

type fakeSink struct {
	mu   sync.Mutex
	msgs []string
}

func (s *fakeSink) Show(message string, _ quiz.Severity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.msgs = append(s.msgs, message)
}

func (s *fakeSink) count(msg string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, m := range s.msgs {
		if m == msg {
			n++
		}
	}
	return n
}

// ---- helpers ----

func makeQuestions(n int) []quiz.Question {
	out := make([]quiz.Question, n)
	for i := range out {
		out[i] = quiz.Question{
			ID:   fmt.Sprintf("q%d", i+1),
			Text: fmt.Sprintf("question %d", i+1),
			Options: []quiz.Option{
				{Label: "A", Text: "first"}, {Label: "B", Text: "second"},
				{Label: "C", Text: "third"}, {Label: "D", Text: "fourth"},
			},
			CorrectOption: "A",
			Exam:          "UPSC CSE",
			Year:          2023,
		}
	}
	return out
}

type harness struct {
	eng     *quiz.Engine
	source  *fakeSource
	results *fakeResults
	creds   *fakeCreds
	snaps   *memSnaps
	sink    *fakeSink
}

func newHarness(n int) *harness {
	h := &harness{
		source:  &fakeSource{questions: makeQuestions(n)},
		results: &fakeResults{},
		creds:   &fakeCreds{token: "tok"},
		snaps:   newMemSnaps(),
		sink:    &fakeSink{},
	}
	h.eng = quiz.New(quiz.Options{
		Source:      h.source,
		Results:     h.results,
		Credentials: h.creds,
		Snapshots:   h.snaps,
		Notifier:    h.sink,
	})
	return h
}

func mustLoad(t *testing.T, h *harness, f quiz.Filter) {
	t.Helper()
	if err := h.eng.LoadAndStartQuiz(context.Background(), f); err != nil {
		t.Fatalf("load: %v", err)
	}
}

// ---- load & filter derivation ----

func TestTitleAndGroupingFromFilter(t *testing.T) {
	cases := []struct {
		name     string
		filter   quiz.Filter
		title    string
		groupKey quiz.GroupKey
		enabled  bool
	}{
		{"subject and topic", quiz.Filter{Subject: "Polity", Topic: "Fundamental Rights"},
			"Polity - Fundamental Rights", quiz.GroupExamYear, true},
		{"subject alone", quiz.Filter{Subject: "Polity"},
			"Polity - All Questions", quiz.GroupTopic, true},
		{"exam and year", quiz.Filter{Exam: "UPSC CSE", Year: "2023"},
			"UPSC CSE - 2023", quiz.GroupNone, false},
		{"empty filter", quiz.Filter{},
			"Exam Practice", quiz.GroupNone, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(3)
			mustLoad(t, h, tc.filter)
			if got := h.eng.Title(); got != tc.title {
				t.Errorf("title = %q, want %q", got, tc.title)
			}
			key, enabled := h.eng.Grouping()
			if key != tc.groupKey || enabled != tc.enabled {
				t.Errorf("grouping = (%q,%v), want (%q,%v)", key, enabled, tc.groupKey, tc.enabled)
			}
		})
	}
}

func TestLoadComputesTotalTime(t *testing.T) {
	h := newHarness(20)
	mustLoad(t, h, quiz.Filter{Subject: "Polity"})
	if got := h.eng.TotalTime(); got != 1440 {
		t.Fatalf("total time = %d, want 1440", got)
	}
	if got := h.eng.TimeLeft(); got != 1440 {
		t.Fatalf("time left = %d, want 1440", got)
	}
	if h.eng.Mode() != quiz.ModePractice {
		t.Fatalf("mode = %s, want practice", h.eng.Mode())
	}
}

func TestLoadNumbersAndComposesExamYear(t *testing.T) {
	h := newHarness(3)
	mustLoad(t, h, quiz.Filter{Subject: "Polity"})
	qs := h.eng.Questions()
	for i, q := range qs {
		if q.DisplayNumber != i+1 {
			t.Errorf("question %s display number = %d, want %d", q.ID, q.DisplayNumber, i+1)
		}
		if q.ExamYear != "UPSC CSE-2023" {
			t.Errorf("question %s exam year = %q", q.ID, q.ExamYear)
		}
	}
}

func TestLoadWithoutCredentialFailsBeforeFetch(t *testing.T) {
	h := newHarness(3)
	h.creds.set("")
	h.eng = quiz.New(quiz.Options{
		Source:      h.source,
		Credentials: h.creds,
		Snapshots:   h.snaps,
	})
	err := h.eng.LoadAndStartQuiz(context.Background(), quiz.Filter{Subject: "Polity"})
	if quiz.KindOf(err) != quiz.KindAuth {
		t.Fatalf("error kind = %v, want auth", quiz.KindOf(err))
	}
	if h.source.calls != 0 {
		t.Fatalf("source called %d times, want 0", h.source.calls)
	}
}

func TestLoadEmptyResultIsDataError(t *testing.T) {
	h := newHarness(0)
	err := h.eng.LoadAndStartQuiz(context.Background(), quiz.Filter{Subject: "Geology"})
	if quiz.KindOf(err) != quiz.KindData {
		t.Fatalf("error kind = %v, want data", quiz.KindOf(err))
	}
	if h.eng.Mode() != quiz.ModeIdle {
		t.Fatalf("mode = %s, want idle", h.eng.Mode())
	}
}

func TestLoadAuthRejectionSurfacesAsAuthError(t *testing.T) {
	h := newHarness(3)
	h.source.err = quiz.NewError(quiz.KindAuth, "session expired")
	err := h.eng.LoadAndStartQuiz(context.Background(), quiz.Filter{Subject: "Polity"})
	if quiz.KindOf(err) != quiz.KindAuth {
		t.Fatalf("error kind = %v, want auth", quiz.KindOf(err))
	}
}

func TestLoadTransportFailureIsNetworkError(t *testing.T) {
	h := newHarness(3)
	h.source.err = errors.New("connection refused")
	err := h.eng.LoadAndStartQuiz(context.Background(), quiz.Filter{Subject: "Polity"})
	if quiz.KindOf(err) != quiz.KindNetwork {
		t.Fatalf("error kind = %v, want network", quiz.KindOf(err))
	}
}

// ---- answers, bookmarks, review marks ----

func TestPracticeAnswerLastWriteWins(t *testing.T) {
	h := newHarness(3)
	mustLoad(t, h, quiz.Filter{Subject: "Polity"})
	h.eng.HandleAnswerSelect("q1", "A")
	h.eng.HandleAnswerSelect("q1", "C")
	answers := h.eng.Answers()
	if len(answers) != 1 || answers[0].Answer != "C" {
		t.Fatalf("answers = %+v, want single answer C", answers)
	}
}

func TestTestModeFirstAnswerIsFinal(t *testing.T) {
	h := newHarness(3)
	mustLoad(t, h, quiz.Filter{Subject: "Polity"})
	h.eng.StartTest()
	h.eng.HandleAnswerSelect("q1", "B")
	h.eng.HandleAnswerSelect("q1", "A")
	answers := h.eng.Answers()
	if len(answers) != 1 || answers[0].Answer != "B" {
		t.Fatalf("answers = %+v, want locked answer B", answers)
	}
}

func TestUnknownQuestionIgnored(t *testing.T) {
	h := newHarness(3)
	mustLoad(t, h, quiz.Filter{Subject: "Polity"})
	h.eng.HandleAnswerSelect("nope", "A")
	if got := h.eng.AttemptedCount(); got != 0 {
		t.Fatalf("attempted = %d, want 0", got)
	}
}

func TestAnswersNeverExceedQuestions(t *testing.T) {
	h := newHarness(2)
	mustLoad(t, h, quiz.Filter{Subject: "Polity"})
	for _, id := range []string{"q1", "q2", "q1", "q2", "bogus"} {
		h.eng.HandleAnswerSelect(id, "D")
		if h.eng.AttemptedCount() > len(h.eng.Questions()) {
			t.Fatalf("attempted %d exceeds question count", h.eng.AttemptedCount())
		}
	}
}

func TestToggleBookmarkIdempotent(t *testing.T) {
	h := newHarness(3)
	mustLoad(t, h, quiz.Filter{Subject: "Polity"})
	h.eng.ToggleBookmark("q2")
	if got := h.eng.Bookmarked(); len(got) != 1 || got[0] != "q2" {
		t.Fatalf("bookmarked = %v, want [q2]", got)
	}
	h.eng.ToggleBookmark("q2")
	if got := h.eng.Bookmarked(); len(got) != 0 {
		t.Fatalf("bookmarked = %v, want empty", got)
	}
}

func TestStartTestClearsPracticeState(t *testing.T) {
	h := newHarness(3)
	mustLoad(t, h, quiz.Filter{Subject: "Polity"})
	h.eng.HandleAnswerSelect("q1", "A")
	h.eng.ToggleBookmark("q1")
	h.eng.ToggleMarkForReview("q2")
	h.eng.StartTest()
	if h.eng.Mode() != quiz.ModeTest {
		t.Fatalf("mode = %s, want test", h.eng.Mode())
	}
	if h.eng.AttemptedCount() != 0 || len(h.eng.Bookmarked()) != 0 || len(h.eng.MarkedForReview()) != 0 {
		t.Fatal("test start did not reset session state")
	}
	if h.eng.TimeLeft() != h.eng.TotalTime() {
		t.Fatal("test start did not reset the timer")
	}
}

func TestStartTestWithoutQuestionsIsNoop(t *testing.T) {
	h := newHarness(3)
	h.eng.StartTest()
	if h.eng.Mode() != quiz.ModeIdle {
		t.Fatalf("mode = %s, want idle", h.eng.Mode())
	}
}

// ---- timer ----

func TestTimerThresholdsFireExactlyOnce(t *testing.T) {
	h := newHarness(10) // totalTime 720
	mustLoad(t, h, quiz.Filter{Subject: "Polity"})
	h.eng.StartTest()

	ticks := 0
	for {
		ticks++
		if ticks > 1000 {
			t.Fatal("timer never reached zero")
		}
		if !h.eng.Tick() {
			break
		}
	}

	if ticks != 720 {
		t.Fatalf("timer ran %d ticks, want 720", ticks)
	}
	for _, msg := range []string{"Half time passed", "10 minutes remaining", "1 minute remaining"} {
		if got := h.sink.count(msg); got != 1 {
			t.Errorf("%q fired %d times, want 1", msg, got)
		}
	}
	if h.eng.Mode() != quiz.ModeReport {
		t.Fatalf("mode = %s, want report after auto-submit", h.eng.Mode())
	}
}

func TestTimeLeftNeverNegative(t *testing.T) {
	h := newHarness(1) // totalTime 72
	mustLoad(t, h, quiz.Filter{Subject: "Polity"})
	h.eng.StartTest()
	for i := 0; i < 200; i++ {
		h.eng.Tick()
	}
	if got := h.eng.TimeLeft(); got < 0 {
		t.Fatalf("time left = %d, want >= 0", got)
	}
}

func TestTimerZeroForcesSingleSubmit(t *testing.T) {
	h := newHarness(1)
	mustLoad(t, h, quiz.Filter{Subject: "Polity"})
	h.eng.StartTest()
	for h.eng.Tick() {
	}
	if h.eng.Mode() != quiz.ModeReport {
		t.Fatalf("mode = %s, want report", h.eng.Mode())
	}
	// further ticks outside test mode do nothing
	if h.eng.Tick() {
		t.Fatal("Tick reported a running timer after submit")
	}
}

// ---- snapshots ----

func TestTestModeMutationsPersistSnapshot(t *testing.T) {
	h := newHarness(3)
	mustLoad(t, h, quiz.Filter{Subject: "Polity"})
	h.eng.StartTest()
	h.eng.HandleAnswerSelect("q1", "A")
	if !h.snaps.has("quiz:session") {
		t.Fatal("no snapshot persisted in test mode")
	}
}

func TestSubmitDiscardsSnapshot(t *testing.T) {
	h := newHarness(3)
	mustLoad(t, h, quiz.Filter{Subject: "Polity"})
	h.eng.StartTest()
	h.eng.HandleAnswerSelect("q1", "A")
	h.eng.SubmitTest()
	if h.snaps.has("quiz:session") {
		t.Fatal("snapshot survived submit")
	}
}

func TestSnapshotRestoreRoundTripsScore(t *testing.T) {
	h := newHarness(5)
	filter := quiz.Filter{Subject: "Polity"}
	mustLoad(t, h, filter)
	h.eng.StartTest()
	h.eng.HandleAnswerSelect("q1", "A")
	h.eng.HandleAnswerSelect("q2", "B")
	h.eng.ToggleBookmark("q3")
	h.eng.Tick()
	h.eng.Tick()
	want := h.eng.CalculateResults()
	timeLeft := h.eng.TimeLeft()

	// a second engine sharing the snapshot store resumes the same session
	restored := quiz.New(quiz.Options{
		Source:      h.source,
		Credentials: &fakeCreds{token: "tok"},
		Snapshots:   h.snaps,
	})
	if err := restored.LoadAndStartQuiz(context.Background(), filter); err != nil {
		t.Fatalf("restore load: %v", err)
	}
	if restored.Mode() != quiz.ModeTest {
		t.Fatalf("restored mode = %s, want test", restored.Mode())
	}
	if got := restored.TimeLeft(); got != timeLeft {
		t.Fatalf("restored time left = %d, want %d", got, timeLeft)
	}
	if got := restored.CalculateResults(); got != want {
		t.Fatalf("restored results = %+v, want %+v", got, want)
	}
	if got := restored.Bookmarked(); len(got) != 1 || got[0] != "q3" {
		t.Fatalf("restored bookmarks = %v, want [q3]", got)
	}
}

func TestSnapshotIgnoredForDifferentFilter(t *testing.T) {
	h := newHarness(5)
	mustLoad(t, h, quiz.Filter{Subject: "Polity"})
	h.eng.StartTest()
	h.eng.HandleAnswerSelect("q1", "A")

	other := quiz.New(quiz.Options{
		Source:      h.source,
		Credentials: &fakeCreds{token: "tok"},
		Snapshots:   h.snaps,
	})
	if err := other.LoadAndStartQuiz(context.Background(), quiz.Filter{Subject: "History"}); err != nil {
		t.Fatalf("load: %v", err)
	}
	if other.Mode() != quiz.ModePractice || other.AttemptedCount() != 0 {
		t.Fatal("snapshot for a different filter was restored")
	}
}

// ---- save & reset ----

func TestSaveResultWithoutCredentialWarnsOnly(t *testing.T) {
	h := newHarness(3)
	mustLoad(t, h, quiz.Filter{Subject: "Polity"})
	h.eng.StartTest()
	h.eng.SubmitTest()

	h.creds.set("")
	if err := h.eng.SaveTestResult(context.Background()); err != nil {
		t.Fatalf("save without credential should not error, got %v", err)
	}
	if len(h.results.saved) != 0 {
		t.Fatalf("saved %d results, want 0", len(h.results.saved))
	}
	if h.eng.Mode() != quiz.ModeReport {
		t.Fatalf("mode = %s, want report preserved", h.eng.Mode())
	}
	if h.sink.count("You must be signed in to save your result.") != 1 {
		t.Fatal("missing sign-in warning")
	}
}

func TestSaveResultSuccess(t *testing.T) {
	h := newHarness(3)
	mustLoad(t, h, quiz.Filter{Subject: "Polity"})
	h.eng.StartTest()
	h.eng.SubmitTest()
	if err := h.eng.SaveTestResult(context.Background()); err != nil {
		t.Fatalf("save: %v", err)
	}
	if len(h.results.saved) != 1 {
		t.Fatalf("saved %d results, want 1", len(h.results.saved))
	}
	if h.eng.Mode() != quiz.ModeIdle {
		t.Fatalf("mode = %s, want idle after save", h.eng.Mode())
	}
	if h.snaps.has("quiz:session") {
		t.Fatal("snapshot survived save")
	}
}

func TestSaveResultFailureKeepsSession(t *testing.T) {
	h := newHarness(3)
	mustLoad(t, h, quiz.Filter{Subject: "Polity"})
	h.eng.StartTest()
	h.eng.HandleAnswerSelect("q1", "A")
	h.eng.SubmitTest()

	h.results.err = errors.New("store down")
	if err := h.eng.SaveTestResult(context.Background()); err == nil {
		t.Fatal("expected save error")
	}
	if h.eng.Mode() != quiz.ModeReport {
		t.Fatalf("mode = %s, want report preserved for retry", h.eng.Mode())
	}
	if h.sink.count("Could not save your result. Please try again.") != 1 {
		t.Fatal("missing save-failure warning")
	}
}

func TestSaveResultPayload(t *testing.T) {
	h := newHarness(3)
	mustLoad(t, h, quiz.Filter{Subject: "Polity"})
	h.eng.StartTest()
	h.eng.HandleAnswerSelect("q1", "A")
	h.eng.HandleAnswerSelect("q2", "C")
	h.eng.SubmitTest()
	if err := h.eng.SaveTestResult(context.Background()); err != nil {
		t.Fatalf("save: %v", err)
	}
	saved := h.results.saved[0]
	if saved.Title != "Polity - All Questions" {
		t.Errorf("title = %q", saved.Title)
	}
	if len(saved.QuestionIDs) != 3 || len(saved.UserAnswers) != 2 {
		t.Errorf("payload = %d questions, %d answers", len(saved.QuestionIDs), len(saved.UserAnswers))
	}
	if saved.Score.CorrectCount != 1 || saved.Score.IncorrectCount != 1 {
		t.Errorf("score = %+v", saved.Score)
	}
}

func TestResetClearsSessionAndSnapshot(t *testing.T) {
	h := newHarness(3)
	mustLoad(t, h, quiz.Filter{Subject: "Polity"})
	h.eng.StartTest()
	h.eng.HandleAnswerSelect("q1", "A")
	h.eng.ResetTest()
	if h.eng.Mode() != quiz.ModeIdle {
		t.Fatalf("mode = %s, want idle", h.eng.Mode())
	}
	if len(h.eng.Questions()) != 0 {
		t.Fatal("questions survived reset")
	}
	if h.snaps.has("quiz:session") {
		t.Fatal("snapshot survived reset")
	}
}

func TestDetailedSolutionFollowsReport(t *testing.T) {
	h := newHarness(3)
	mustLoad(t, h, quiz.Filter{Subject: "Polity"})

	// not reachable from practice
	h.eng.HandleDetailedSolution()
	if h.eng.Mode() != quiz.ModePractice {
		t.Fatalf("mode = %s, want practice", h.eng.Mode())
	}

	h.eng.StartTest()
	h.eng.SubmitTest()
	h.eng.HandleDetailedSolution()
	if h.eng.Mode() != quiz.ModeDetailedSolution {
		t.Fatalf("mode = %s, want detailed solution", h.eng.Mode())
	}
}

// ---- stale loads ----

type gatedSource struct {
	inner   *fakeSource
	entered chan struct{} // closed once the first fetch is in flight
	release chan struct{}
	first   bool
	mu      sync.Mutex
}

func (s *gatedSource) FetchQuestions(ctx context.Context, token string, f quiz.Filter) ([]quiz.Question, error) {
	s.mu.Lock()
	wait := s.first
	s.first = false
	s.mu.Unlock()
	if wait {
		close(s.entered)
		<-s.release
	}
	return s.inner.FetchQuestions(ctx, token, f)
}

func TestStaleLoadIsDiscarded(t *testing.T) {
	src := &gatedSource{
		inner:   &fakeSource{questions: makeQuestions(3)},
		entered: make(chan struct{}),
		release: make(chan struct{}),
		first:   true,
	}
	snaps := newMemSnaps()
	eng := quiz.New(quiz.Options{
		Source:      src,
		Credentials: &fakeCreds{token: "tok"},
		Snapshots:   snaps,
	})

	firstDone := make(chan error, 1)
	go func() {
		firstDone <- eng.LoadAndStartQuiz(context.Background(), quiz.Filter{Subject: "Polity"})
	}()
	<-src.entered

	// second load wins while the first is stuck in flight
	if err := eng.LoadAndStartQuiz(context.Background(), quiz.Filter{Subject: "History"}); err != nil {
		t.Fatalf("second load: %v", err)
	}
	close(src.release)

	if err := <-firstDone; !errors.Is(err, quiz.ErrSuperseded) {
		t.Fatalf("first load error = %v, want ErrSuperseded", err)
	}
	if got := eng.Title(); got != "History - All Questions" {
		t.Fatalf("title = %q; stale load clobbered the newer session", got)
	}
}
