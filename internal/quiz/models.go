package quiz

import "fmt"

// Mode is the lifecycle phase of a session.
type Mode string

const (
	ModeIdle             Mode = "idle"
	ModeLoading          Mode = "loading"
	ModePractice         Mode = "practice"
	ModeTest             Mode = "test"
	ModeReport           Mode = "report"
	ModeDetailedSolution Mode = "detailed_solution"
)

// GroupKey selects the attribute used to cluster questions for navigation.
type GroupKey string

const (
	GroupNone     GroupKey = ""
	GroupTopic    GroupKey = "topic"
	GroupExamYear GroupKey = "exam_year"
)

type Option struct {
	Label string `json:"label"` // A|B|C|D
	Text  string `json:"text"`
}

// Question is immutable once loaded into a session.
type Question struct {
	ID            string   `json:"id"`
	DisplayNumber int      `json:"display_number"` // 1-based position in session order
	Text          string   `json:"text"`
	Options       []Option `json:"options"`
	CorrectOption string   `json:"correct_option,omitempty"` // empty when unset
	Explanation   string   `json:"explanation,omitempty"`

	Exam     string `json:"exam,omitempty"`
	Subject  string `json:"subject,omitempty"`
	Topic    string `json:"topic,omitempty"`
	Year     int    `json:"year,omitempty"`
	ExamYear string `json:"exam_year,omitempty"` // composite "{exam}-{year}" grouping key
}

type UserAnswer struct {
	QuestionID string `json:"question_id"`
	Answer     string `json:"answer"`
}

// Filter narrows the question set loaded into a session. All fields optional.
type Filter struct {
	Exam    string `json:"exam,omitempty"`
	Year    string `json:"year,omitempty"`
	Subject string `json:"subject,omitempty"`
	Topic   string `json:"topic,omitempty"`
}

// Snapshot is the durable form of an in-progress session, written on every
// mutation in test mode and cleared on terminal transitions.
type Snapshot struct {
	Filter          Filter       `json:"filter"`
	IsTestMode      bool         `json:"is_test_mode"`
	UserAnswers     []UserAnswer `json:"user_answers"`
	TimeLeft        int          `json:"time_left"`
	Bookmarked      []string     `json:"bookmarked_questions"`
	MarkedForReview []string     `json:"marked_for_review"`
}

// Results is the scoring outcome over (questions, answers).
type Results struct {
	CorrectCount     int     `json:"correct_count"`
	IncorrectCount   int     `json:"incorrect_count"`
	UnattemptedCount int     `json:"unattempted_count"`
	FinalScore       float64 `json:"final_score"`
	MaxScore         float64 `json:"max_score"`
}

// PerformanceStats are derived whenever a session enters the report or
// detailed-solution view.
type PerformanceStats struct {
	FinalScore         float64 `json:"final_score"`
	Accuracy           int     `json:"accuracy"` // percent
	AvgTimePerQuestion int     `json:"avg_time_per_question"`
	Pacing             string  `json:"pacing"` // Behind | Ahead | On Pace
}

// deriveTitle maps a filter shape onto the session title and grouping policy.
// Evaluated in priority order: subject+topic, subject alone, exam+year, default.
func deriveTitle(f Filter) (title string, key GroupKey, enabled bool) {
	switch {
	case f.Subject != "" && f.Topic != "":
		return fmt.Sprintf("%s - %s", f.Subject, f.Topic), GroupExamYear, true
	case f.Subject != "":
		return fmt.Sprintf("%s - All Questions", f.Subject), GroupTopic, true
	case f.Exam != "" && f.Year != "":
		return fmt.Sprintf("%s - %s", f.Exam, f.Year), GroupNone, false
	default:
		return "Exam Practice", GroupNone, false
	}
}
