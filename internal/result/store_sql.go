package result

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type Store interface {
	Save(ctx context.Context, r TestResult) (TestResult, error)
	ListByUser(ctx context.Context, userID string) ([]TestResult, error)
}

type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) Save(ctx context.Context, r TestResult) (TestResult, error) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt == 0 {
		r.CreatedAt = time.Now().Unix()
	}
	qids, err := json.Marshal(r.QuestionIDs)
	if err != nil {
		return TestResult{}, err
	}
	answers, err := json.Marshal(r.UserAnswers)
	if err != nil {
		return TestResult{}, err
	}
	score, err := json.Marshal(r.Score)
	if err != nil {
		return TestResult{}, err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO test_results
		(id,user_id,quiz_title,question_ids_json,user_answers_json,score_json,created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		r.ID, r.UserID, r.QuizTitle, string(qids), string(answers), string(score), r.CreatedAt)
	if err != nil {
		return TestResult{}, err
	}
	return r, nil
}

func (s *SQLStore) ListByUser(ctx context.Context, userID string) ([]TestResult, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id,user_id,quiz_title,question_ids_json,
		user_answers_json,score_json,created_at
		FROM test_results WHERE user_id=$1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TestResult
	for rows.Next() {
		var r TestResult
		var qids, answers, score string
		if err := rows.Scan(&r.ID, &r.UserID, &r.QuizTitle, &qids, &answers, &score, &r.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(qids), &r.QuestionIDs); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(answers), &r.UserAnswers); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(score), &r.Score); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
