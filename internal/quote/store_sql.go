// Package quote stores the motivational quotes shown on the dashboard.
package quote

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("quote not found")

type Quote struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Author    string `json:"author,omitempty"`
	CreatedAt int64  `json:"created_at,omitempty"`
}

type Store interface {
	Put(ctx context.Context, q Quote) (Quote, error)
	Random(ctx context.Context) (Quote, error)
	Delete(ctx context.Context, id string) error
}

type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) Put(ctx context.Context, q Quote) (Quote, error) {
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	if q.CreatedAt == 0 {
		q.CreatedAt = time.Now().Unix()
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO quotes (id,text,author,created_at)
		VALUES ($1,$2,$3,$4)`, q.ID, q.Text, q.Author, q.CreatedAt)
	if err != nil {
		return Quote{}, err
	}
	return q, nil
}

// Random works on both sqlite and postgres; RANDOM() exists in each dialect.
func (s *SQLStore) Random(ctx context.Context) (Quote, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id,text,author,created_at FROM quotes
		ORDER BY RANDOM() LIMIT 1`)
	var q Quote
	if err := row.Scan(&q.ID, &q.Text, &q.Author, &q.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Quote{}, ErrNotFound
		}
		return Quote{}, err
	}
	return q, nil
}

func (s *SQLStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM quotes WHERE id=$1`, id)
	return err
}
