package http

import (
	"encoding/json"
	"net/http"

	authmw "github.com/prepgrid/prepgrid/internal/auth/middleware"
	"github.com/prepgrid/prepgrid/internal/result"
)

// POST /test-results: direct save path for clients that score locally.
func SaveResultHandler(store result.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var tr result.TestResult
		if err := json.NewDecoder(r.Body).Decode(&tr); err != nil {
			http.Error(w, "bad json", 400)
			return
		}
		tr.UserID = authmw.SubjectFromContext(r.Context())
		if tr.QuizTitle == "" {
			http.Error(w, "quiz_title required", 400)
			return
		}
		out, err := store.Save(r.Context(), tr)
		if err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "data": out})
	}
}

// GET /test-results: the caller's saved attempts, newest first.
func ListMyResultsHandler(store result.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := store.ListByUser(r.Context(), authmw.SubjectFromContext(r.Context()))
		if err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		if out == nil {
			out = []result.TestResult{}
		}
		_ = json.NewEncoder(w).Encode(out)
	}
}
