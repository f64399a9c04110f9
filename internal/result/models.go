package result

// TestResult is one saved attempt, as submitted from a finished quiz session.
type TestResult struct {
	ID          string         `json:"id"`
	UserID      string         `json:"user_id"`
	QuizTitle   string         `json:"quiz_title"`
	QuestionIDs []string       `json:"question_ids"`
	UserAnswers []AnswerRecord `json:"user_answers"`
	Score       ScoreCard      `json:"score"`
	CreatedAt   int64          `json:"created_at"`
}

type AnswerRecord struct {
	QuestionID string `json:"question_id"`
	Answer     string `json:"answer"`
}

type ScoreCard struct {
	CorrectCount     int     `json:"correct_count"`
	IncorrectCount   int     `json:"incorrect_count"`
	UnattemptedCount int     `json:"unattempted_count"`
	FinalScore       float64 `json:"final_score"`
	MaxScore         float64 `json:"max_score"`
}
