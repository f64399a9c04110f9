package snapshot_test

import (
	"testing"

	"github.com/prepgrid/prepgrid/internal/quiz"
	"github.com/prepgrid/prepgrid/internal/snapshot"
)

func TestMemoryRoundTrip(t *testing.T) {
	m := snapshot.NewMemory()

	if snap, err := m.Get("quiz:session"); err != nil || snap != nil {
		t.Fatalf("empty get = (%v, %v), want (nil, nil)", snap, err)
	}

	want := quiz.Snapshot{
		Filter:      quiz.Filter{Subject: "Polity"},
		IsTestMode:  true,
		TimeLeft:    300,
		UserAnswers: []quiz.UserAnswer{{QuestionID: "q1", Answer: "A"}},
		Bookmarked:  []string{"q2"},
	}
	if err := m.Set("quiz:session", want); err != nil {
		t.Fatalf("set: %v", err)
	}

	got, err := m.Get("quiz:session")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil || got.TimeLeft != 300 || got.Filter != want.Filter || !got.IsTestMode {
		t.Fatalf("get = %+v, want %+v", got, want)
	}

	if err := m.Remove("quiz:session"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if snap, _ := m.Get("quiz:session"); snap != nil {
		t.Fatal("snapshot survived remove")
	}
}

func TestMemoryGetReturnsCopy(t *testing.T) {
	m := snapshot.NewMemory()
	_ = m.Set("k", quiz.Snapshot{TimeLeft: 10})

	first, _ := m.Get("k")
	first.TimeLeft = 99

	second, _ := m.Get("k")
	if second.TimeLeft != 10 {
		t.Fatalf("stored snapshot mutated through returned pointer: %d", second.TimeLeft)
	}
}

func TestScopedIsolatesUsers(t *testing.T) {
	shared := snapshot.NewMemory()
	alice := snapshot.Scoped(shared, "alice")
	bob := snapshot.Scoped(shared, "bob")

	if err := alice.Set("quiz:session", quiz.Snapshot{TimeLeft: 100}); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := bob.Set("quiz:session", quiz.Snapshot{TimeLeft: 200}); err != nil {
		t.Fatalf("set: %v", err)
	}

	a, _ := alice.Get("quiz:session")
	b, _ := bob.Get("quiz:session")
	if a == nil || a.TimeLeft != 100 {
		t.Fatalf("alice snapshot = %+v, want TimeLeft 100", a)
	}
	if b == nil || b.TimeLeft != 200 {
		t.Fatalf("bob snapshot = %+v, want TimeLeft 200", b)
	}

	if err := alice.Remove("quiz:session"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if a, _ := alice.Get("quiz:session"); a != nil {
		t.Fatal("alice snapshot survived remove")
	}
	if b, _ := bob.Get("quiz:session"); b == nil {
		t.Fatal("removing alice's snapshot also removed bob's")
	}
}
