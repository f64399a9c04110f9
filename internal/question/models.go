package question

// Question is one entry in the question bank. Options are the four fixed
// choices A-D; CorrectOption may be empty while a question is being drafted.
type Question struct {
	ID                  string `json:"id" bson:"_id,omitempty"`
	Exam                string `json:"exam" bson:"exam"`
	Year                int    `json:"year,omitempty" bson:"year,omitempty"`
	Subject             string `json:"subject,omitempty" bson:"subject,omitempty"`
	Topic               string `json:"topic,omitempty" bson:"topic,omitempty"`
	PaperQuestionNumber int    `json:"paper_question_number,omitempty" bson:"paperQuestionNumber,omitempty"`

	QuestionText  string `json:"question_text" bson:"questionText"`
	OptionA       string `json:"option_a" bson:"optionA"`
	OptionB       string `json:"option_b" bson:"optionB"`
	OptionC       string `json:"option_c" bson:"optionC"`
	OptionD       string `json:"option_d" bson:"optionD"`
	CorrectOption string `json:"correct_option,omitempty" bson:"correctOption,omitempty"` // A|B|C|D or empty

	Difficulty      string `json:"difficulty,omitempty" bson:"difficulty,omitempty"` // Easy|Medium|Hard or empty
	ExplanationText string `json:"explanation_text,omitempty" bson:"explanationText,omitempty"`
	ExplanationPDF  string `json:"explanation_pdf,omitempty" bson:"explanationPDF,omitempty"`
	Image           string `json:"image,omitempty" bson:"image,omitempty"`

	CreatedAt int64 `json:"created_at,omitempty" bson:"createdAt,omitempty"`
}

// Filter narrows List results. Zero fields are ignored; Year is matched
// exactly when non-zero.
type Filter struct {
	Exam    string
	Year    int
	Subject string
	Topic   string
}

// SubjectTopics lists the topics available under one subject, for the
// dashboard selection UI.
type SubjectTopics struct {
	Subject string   `json:"subject"`
	Topics  []string `json:"topics"`
}

// ExamCount is one exam's question count within a year.
type ExamCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// YearExams lists the exams that have questions for one year, for the
// dashboard's exam-year quiz picker.
type YearExams struct {
	Year  int         `json:"year"`
	Exams []ExamCount `json:"exams"`
}
