package quiz

import (
	"fmt"
	"math"
	"sort"
)

// Marking scheme: +2 per correct answer, -2/3 per incorrect answer,
// unattempted contributes nothing.
const (
	marksPerCorrect   = 2.0
	negativeMarkRatio = 2.0 / 3.0
)

func scoreOf(questions []Question, answers map[string]UserAnswer) Results {
	var correct, incorrect int
	for _, q := range questions {
		ua, ok := answers[q.ID]
		if !ok {
			continue
		}
		if ua.Answer == q.CorrectOption {
			correct++
		} else {
			incorrect++
		}
	}
	total := len(questions)
	return Results{
		CorrectCount:     correct,
		IncorrectCount:   incorrect,
		UnattemptedCount: total - correct - incorrect,
		FinalScore:       round2(float64(correct)*marksPerCorrect - float64(incorrect)*negativeMarkRatio),
		MaxScore:         float64(total) * marksPerCorrect,
	}
}

// computeStatsLocked derives the performance metrics shown on the report and
// detailed-solution views.
func (e *Engine) computeStatsLocked() {
	res := scoreOf(e.questions, e.answers)
	attempted := res.CorrectCount + res.IncorrectCount

	stats := PerformanceStats{FinalScore: res.FinalScore, Pacing: "On Pace"}
	if attempted > 0 {
		stats.Accuracy = int(math.Round(float64(res.CorrectCount) / float64(attempted) * 100))
		stats.AvgTimePerQuestion = int(math.Round(float64(e.totalTime-e.timeLeft) / float64(attempted)))
	}
	switch {
	case stats.AvgTimePerQuestion > idealSecondsPerQuestion+10:
		stats.Pacing = "Behind"
	case stats.AvgTimePerQuestion < idealSecondsPerQuestion-10:
		stats.Pacing = "Ahead"
	}
	e.stats = &stats
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func composeExamYear(exam string, year int) string {
	return fmt.Sprintf("%s-%d", exam, year)
}

func sortedKeys(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
