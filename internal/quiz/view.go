package quiz

// Read-side accessors. Each returns a copy so callers can render without
// holding the engine lock.

func (e *Engine) Mode() Mode {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mode
}

func (e *Engine) Title() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.title
}

func (e *Engine) Filter() Filter {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.filter
}

// Grouping reports the active grouping key and whether grouping is enabled.
func (e *Engine) Grouping() (GroupKey, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.groupKey, e.groupingEnabled
}

func (e *Engine) Questions() []Question {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Question, len(e.questions))
	copy(out, e.questions)
	return out
}

// Answers returns recorded answers in question display order.
func (e *Engine) Answers() []UserAnswer {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.answersLocked()
}

func (e *Engine) Bookmarked() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return sortedKeys(e.bookmark)
}

func (e *Engine) MarkedForReview() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return sortedKeys(e.review)
}

func (e *Engine) TimeLeft() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.timeLeft
}

func (e *Engine) TotalTime() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.totalTime
}

func (e *Engine) AttemptedCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.answers)
}

func (e *Engine) NotAttemptedCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.questions) - len(e.answers)
}

// PerformanceStats returns the metrics computed on the last transition into
// the report or detailed-solution view, or nil before any submit.
func (e *Engine) PerformanceStats() *PerformanceStats {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stats == nil {
		return nil
	}
	s := *e.stats
	return &s
}
