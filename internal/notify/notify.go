// Package notify delivers the quiz engine's fire-and-forget notifications.
package notify

import (
	"log"
	"sync"

	"github.com/prepgrid/prepgrid/internal/quiz"
)

type Notification struct {
	Message  string        `json:"message"`
	Severity quiz.Severity `json:"severity"`
}

// Feed buffers notifications for one user until the client drains them.
type Feed struct {
	mu    sync.Mutex
	items []Notification
}

func NewFeed() *Feed {
	return &Feed{}
}

func (f *Feed) Show(message string, severity quiz.Severity) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items = append(f.items, Notification{Message: message, Severity: severity})
}

// Drain returns buffered notifications and clears the feed.
func (f *Feed) Drain() []Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := f.items
	f.items = nil
	return out
}

// Logger mirrors every notification to the process log.
type Logger struct {
	Next quiz.NotificationSink
}

func (l Logger) Show(message string, severity quiz.Severity) {
	log.Printf("notify [%s]: %s", severity, message)
	if l.Next != nil {
		l.Next.Show(message, severity)
	}
}
