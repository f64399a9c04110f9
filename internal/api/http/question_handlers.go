package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/prepgrid/prepgrid/internal/question"
)

func filterFromQuery(r *http.Request) question.Filter {
	f := question.Filter{
		Exam:    r.URL.Query().Get("exam"),
		Subject: r.URL.Query().Get("subject"),
		Topic:   r.URL.Query().Get("topic"),
	}
	if y := r.URL.Query().Get("year"); y != "" {
		if n, err := strconv.Atoi(y); err == nil {
			f.Year = n
		}
	}
	return f
}

// GET /questions?exam=&year=&subject=&topic=
func ListQuestionsHandler(store question.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		qs, err := store.List(r.Context(), filterFromQuery(r))
		if err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		if qs == nil {
			qs = []question.Question{}
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "data": qs})
	}
}

// GET /questions/{questionID}
func GetQuestionHandler(store question.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q, err := store.Get(r.Context(), chi.URLParam(r, "questionID"))
		if errors.Is(err, question.ErrNotFound) {
			http.Error(w, "question not found", 404)
			return
		}
		if err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		_ = json.NewEncoder(w).Encode(q)
	}
}

// POST /questions: accepts a single question object or an array for bulk
// import, matching the admin editor's single and bulk-add flows.
func CreateQuestionsHandler(store question.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var raw json.RawMessage
		if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
			http.Error(w, "bad json", 400)
			return
		}

		var batch []question.Question
		if len(raw) > 0 && raw[0] == '[' {
			if err := json.Unmarshal(raw, &batch); err != nil {
				http.Error(w, "bad json", 400)
				return
			}
		} else {
			var q question.Question
			if err := json.Unmarshal(raw, &q); err != nil {
				http.Error(w, "bad json", 400)
				return
			}
			batch = []question.Question{q}
		}
		for _, q := range batch {
			if q.QuestionText == "" {
				http.Error(w, "question_text required", 400)
				return
			}
		}

		out, err := store.PutBatch(r.Context(), batch)
		if err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "data": out})
	}
}

// PUT /questions/{questionID}
func UpdateQuestionHandler(store question.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var q question.Question
		if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
			http.Error(w, "bad json", 400)
			return
		}
		q.ID = chi.URLParam(r, "questionID")
		out, err := store.Update(r.Context(), q)
		if errors.Is(err, question.ErrNotFound) {
			http.Error(w, "question not found", 404)
			return
		}
		if err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		_ = json.NewEncoder(w).Encode(out)
	}
}

// DELETE /questions: body { "ids": [...] }, batch delete.
func DeleteQuestionsHandler(store question.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			IDs []string `json:"ids"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.IDs) == 0 {
			http.Error(w, "ids required", 400)
			return
		}
		if err := store.Delete(r.Context(), req.IDs); err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"success": true})
	}
}

// GET /quizzes: the exam/year combinations that have questions, with
// per-exam counts, for the exam-year quiz picker.
func QuizzesHandler(store question.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		quizzes, err := store.Exams(r.Context())
		if err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		if quizzes == nil {
			quizzes = []question.YearExams{}
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "data": quizzes})
	}
}

// GET /topics: distinct subject/topic pairs for the dashboard selector.
func TopicsHandler(store question.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		topics, err := store.Topics(r.Context())
		if err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		if topics == nil {
			topics = []question.SubjectTopics{}
		}
		_ = json.NewEncoder(w).Encode(topics)
	}
}
