package question

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

const questionColumns = `id,exam,year,subject,topic,paper_question_number,question_text,
option_a,option_b,option_c,option_d,correct_option,difficulty,
explanation_text,explanation_pdf,image,created_at`

func (s *SQLStore) Put(ctx context.Context, q Question) (Question, error) {
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	if q.CreatedAt == 0 {
		q.CreatedAt = time.Now().Unix()
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO questions (`+questionColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)`,
		q.ID, q.Exam, q.Year, q.Subject, q.Topic, q.PaperQuestionNumber, q.QuestionText,
		q.OptionA, q.OptionB, q.OptionC, q.OptionD, q.CorrectOption, q.Difficulty,
		q.ExplanationText, q.ExplanationPDF, q.Image, q.CreatedAt)
	if err != nil {
		return Question{}, err
	}
	return q, nil
}

func (s *SQLStore) PutBatch(ctx context.Context, qs []Question) ([]Question, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	out := make([]Question, 0, len(qs))
	for _, q := range qs {
		if q.ID == "" {
			q.ID = uuid.NewString()
		}
		if q.CreatedAt == 0 {
			q.CreatedAt = time.Now().Unix()
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO questions (`+questionColumns+`)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)`,
			q.ID, q.Exam, q.Year, q.Subject, q.Topic, q.PaperQuestionNumber, q.QuestionText,
			q.OptionA, q.OptionB, q.OptionC, q.OptionD, q.CorrectOption, q.Difficulty,
			q.ExplanationText, q.ExplanationPDF, q.Image, q.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *SQLStore) Get(ctx context.Context, id string) (Question, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+questionColumns+` FROM questions WHERE id=$1`, id)
	q, err := scanQuestion(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Question{}, ErrNotFound
	}
	return q, err
}

func (s *SQLStore) Update(ctx context.Context, q Question) (Question, error) {
	res, err := s.db.ExecContext(ctx, `UPDATE questions SET
		exam=$1, year=$2, subject=$3, topic=$4, paper_question_number=$5,
		question_text=$6, option_a=$7, option_b=$8, option_c=$9, option_d=$10,
		correct_option=$11, difficulty=$12, explanation_text=$13,
		explanation_pdf=$14, image=$15
		WHERE id=$16`,
		q.Exam, q.Year, q.Subject, q.Topic, q.PaperQuestionNumber,
		q.QuestionText, q.OptionA, q.OptionB, q.OptionC, q.OptionD,
		q.CorrectOption, q.Difficulty, q.ExplanationText,
		q.ExplanationPDF, q.Image, q.ID)
	if err != nil {
		return Question{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return Question{}, ErrNotFound
	}
	return s.Get(ctx, q.ID)
}

func (s *SQLStore) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	ph := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		ph[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM questions WHERE id IN (`+strings.Join(ph, ",")+`)`, args...)
	return err
}

func (s *SQLStore) List(ctx context.Context, f Filter) ([]Question, error) {
	var conds []string
	var args []any
	add := func(expr string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(expr, len(args)))
	}
	if f.Exam != "" {
		add("exam=$%d", f.Exam)
	}
	if f.Year != 0 {
		add("year=$%d", f.Year)
	}
	if f.Subject != "" {
		add("subject=$%d", f.Subject)
	}
	if f.Topic != "" {
		add("topic=$%d", f.Topic)
	}
	query := `SELECT ` + questionColumns + ` FROM questions`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY year DESC, paper_question_number ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Question
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

func (s *SQLStore) Topics(ctx context.Context) ([]SubjectTopics, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT subject, topic FROM questions
		WHERE subject <> '' ORDER BY subject, topic`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SubjectTopics
	for rows.Next() {
		var subject, topic string
		if err := rows.Scan(&subject, &topic); err != nil {
			return nil, err
		}
		if len(out) == 0 || out[len(out)-1].Subject != subject {
			out = append(out, SubjectTopics{Subject: subject})
		}
		if topic != "" {
			last := &out[len(out)-1]
			last.Topics = append(last.Topics, topic)
		}
	}
	return out, rows.Err()
}

func (s *SQLStore) Exams(ctx context.Context) ([]YearExams, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT year, exam, COUNT(*) FROM questions
		WHERE year <> 0 AND exam <> ''
		GROUP BY year, exam ORDER BY year DESC, exam`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []YearExams
	for rows.Next() {
		var year, count int
		var exam string
		if err := rows.Scan(&year, &exam, &count); err != nil {
			return nil, err
		}
		if len(out) == 0 || out[len(out)-1].Year != year {
			out = append(out, YearExams{Year: year})
		}
		last := &out[len(out)-1]
		last.Exams = append(last.Exams, ExamCount{Name: exam, Count: count})
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanQuestion(row rowScanner) (Question, error) {
	var q Question
	err := row.Scan(&q.ID, &q.Exam, &q.Year, &q.Subject, &q.Topic, &q.PaperQuestionNumber,
		&q.QuestionText, &q.OptionA, &q.OptionB, &q.OptionC, &q.OptionD, &q.CorrectOption,
		&q.Difficulty, &q.ExplanationText, &q.ExplanationPDF, &q.Image, &q.CreatedAt)
	return q, err
}
